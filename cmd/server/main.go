package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"cloudbite/config"
	"cloudbite/internal/handlers"
	"cloudbite/internal/middleware"
	"cloudbite/internal/service"
	"cloudbite/internal/storage"
	"cloudbite/internal/utils"
)

func main() {
	cfg := config.LoadConfig()

	if cfg.Auth.JWTSecret != "" {
		utils.JwtSecret = []byte(cfg.Auth.JWTSecret)
	}

	store, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	if cfg.Storage.Seed {
		if err := storage.Seed(store); err != nil {
			log.Fatalf("Failed to seed storage: %v", err)
		}
	}

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache, err = config.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("Warning: Redis unavailable, catalog cache disabled: %v", err)
			cache = nil
		}
	}

	catalogService := service.NewCatalogService(store, cache)
	orderService := service.NewOrderService(store)

	authHandler := handlers.NewAuthHandler(store, cfg.Auth.TokenTTL)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	orderHandler := handlers.NewOrderHandler(orderService, store)
	accountHandler := handlers.NewAccountHandler(store)
	adminHandler := handlers.NewAdminHandler(store, catalogService, orderService)

	r := gin.Default()

	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg.Server.RateLimit))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.JWTAuth(), authHandler.Me)
		}

		api.GET("/categories", catalogHandler.GetCategories)
		api.GET("/categories/:id", catalogHandler.GetCategory)
		api.GET("/menu-items", catalogHandler.GetMenuItems)
		api.GET("/menu-items/:id", catalogHandler.GetMenuItem)

		orders := api.Group("/orders")
		{
			orders.POST("", middleware.OptionalJWT(), orderHandler.Create)
			orders.GET("", orderHandler.List)
			orders.GET("/:id", orderHandler.Get)
			orders.GET("/track/:orderNumber", orderHandler.Track)
		}

		account := api.Group("")
		account.Use(middleware.JWTAuth())
		{
			account.GET("/addresses", accountHandler.ListAddresses)
			account.POST("/addresses", accountHandler.CreateAddress)
			account.PUT("/addresses/:id", accountHandler.UpdateAddress)
			account.DELETE("/addresses/:id", accountHandler.DeleteAddress)
			account.POST("/reviews", accountHandler.CreateReview)
		}

		api.GET("/reviews", accountHandler.ListReviews)

		admin := api.Group("/admin")
		admin.Use(middleware.JWTAuth(), middleware.AdminOnly())
		{
			admin.GET("/stats", adminHandler.Stats)
			admin.GET("/orders/recent", adminHandler.RecentOrders)
			admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)

			admin.POST("/menu-items", adminHandler.CreateMenuItem)
			admin.PATCH("/menu-items/:id", adminHandler.UpdateMenuItem)
			admin.DELETE("/menu-items/:id", adminHandler.DeleteMenuItem)

			admin.POST("/categories", adminHandler.CreateCategory)
			admin.PATCH("/categories/:id", adminHandler.UpdateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

			admin.GET("/coupons", adminHandler.ListCoupons)
			admin.POST("/coupons", adminHandler.CreateCoupon)
			admin.PATCH("/coupons/:id", adminHandler.UpdateCoupon)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"backend":   cfg.Storage.Backend,
			"timestamp": time.Now(),
		})
	})

	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func openStorage(cfg config.Config) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := storage.OpenPostgres(cfg.DB.DSN())
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresStorage(db)
	default:
		return storage.NewMemoryStorage(), nil
	}
}
