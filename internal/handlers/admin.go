package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cloudbite/internal/models"
	"cloudbite/internal/service"
	"cloudbite/internal/storage"
)

type AdminHandler struct {
	store   storage.Storage
	catalog *service.CatalogService
	orders  *service.OrderService
}

func NewAdminHandler(store storage.Storage, catalog *service.CatalogService, orders *service.OrderService) *AdminHandler {
	return &AdminHandler{store: store, catalog: catalog, orders: orders}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.store.GetAdminStats()
	if err != nil {
		writeError(c, err, "Stats unavailable")
		return
	}

	// Growth figures are placeholders until a time-series store exists.
	c.JSON(http.StatusOK, gin.H{
		"todayOrders":     stats.TodayOrders,
		"revenue":         stats.Revenue,
		"activeCustomers": stats.ActiveCustomers,
		"averageRating":   stats.AverageRating,
		"orderGrowth":     12,
		"revenueGrowth":   8,
		"customerGrowth":  5,
		"ratingGrowth":    0.2,
	})
}

func (h *AdminHandler) RecentOrders(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	orders, err := h.store.GetRecentOrders(limit)
	if err != nil {
		writeError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, orders)
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status is required"})
		return
	}

	order, err := h.orders.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, order)
}

// -- Menu item management --

type MenuItemRequest struct {
	CategoryID      string             `json:"categoryId" binding:"required"`
	Name            string             `json:"name" binding:"required"`
	Description     *string            `json:"description,omitempty"`
	Price           string             `json:"price" binding:"required"`
	OriginalPrice   *string            `json:"originalPrice,omitempty"`
	Image           *string            `json:"image,omitempty"`
	IsVegetarian    *bool              `json:"isVegetarian,omitempty"`
	IsAvailable     *bool              `json:"isAvailable,omitempty"`
	PreparationTime *int               `json:"preparationTime,omitempty"`
	Tags            models.StringArray `json:"tags,omitempty"`
	Allergens       models.StringArray `json:"allergens,omitempty"`
	NutritionInfo   models.JSONMap     `json:"nutritionInfo,omitempty"`
}

func validMoney(value string) bool {
	_, err := decimal.NewFromString(value)
	return err == nil
}

func boolOr(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}

func intOr(value *int, fallback int) int {
	if value != nil {
		return *value
	}
	return fallback
}

func (h *AdminHandler) CreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !validMoney(req.Price) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid price"})
		return
	}

	item, err := h.catalog.CreateMenuItem(c.Request.Context(), models.MenuItem{
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		OriginalPrice:   req.OriginalPrice,
		Image:           req.Image,
		IsVegetarian:    boolOr(req.IsVegetarian, true),
		IsAvailable:     boolOr(req.IsAvailable, true),
		PreparationTime: intOr(req.PreparationTime, 15),
		Tags:            req.Tags,
		Allergens:       req.Allergens,
		NutritionInfo:   req.NutritionInfo,
	})
	if err != nil {
		writeError(c, err, "Menu item not found")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *AdminHandler) UpdateMenuItem(c *gin.Context) {
	var patch models.MenuItemPatch
	if err := bindPatch(c, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if patch.Price != nil && !validMoney(*patch.Price) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid price"})
		return
	}

	item, err := h.catalog.UpdateMenuItem(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "Menu item not found")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *AdminHandler) DeleteMenuItem(c *gin.Context) {
	if err := h.catalog.DeleteMenuItem(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "Menu item not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// -- Category management --

type CategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	SortOrder   int     `json:"sortOrder"`
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), models.Category{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    boolOr(req.IsActive, true),
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		writeError(c, err, "Category not found")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	var patch models.CategoryPatch
	if err := bindPatch(c, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "Category not found")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "Category not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// -- Coupon management --

type CouponRequest struct {
	Code               string    `json:"code" binding:"required"`
	Name               string    `json:"name" binding:"required"`
	Description        *string   `json:"description,omitempty"`
	DiscountType       string    `json:"discountType" binding:"required,oneof=percentage fixed"`
	DiscountValue      string    `json:"discountValue" binding:"required"`
	MinimumOrderAmount string    `json:"minimumOrderAmount,omitempty"`
	MaxDiscountAmount  *string   `json:"maxDiscountAmount,omitempty"`
	UsageLimit         *int      `json:"usageLimit,omitempty"`
	IsActive           *bool     `json:"isActive,omitempty"`
	ValidFrom          time.Time `json:"validFrom" binding:"required"`
	ValidUntil         time.Time `json:"validUntil" binding:"required"`
}

func (h *AdminHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.store.GetCoupons()
	if err != nil {
		writeError(c, err, "Coupon not found")
		return
	}
	c.JSON(http.StatusOK, coupons)
}

func (h *AdminHandler) CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !validMoney(req.DiscountValue) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid discount value"})
		return
	}

	coupon, err := h.store.CreateCoupon(models.Coupon{
		Code:               req.Code,
		Name:               req.Name,
		Description:        req.Description,
		DiscountType:       req.DiscountType,
		DiscountValue:      req.DiscountValue,
		MinimumOrderAmount: req.MinimumOrderAmount,
		MaxDiscountAmount:  req.MaxDiscountAmount,
		UsageLimit:         req.UsageLimit,
		IsActive:           boolOr(req.IsActive, true),
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
	})
	if err != nil {
		writeError(c, err, "Coupon not found")
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

func (h *AdminHandler) UpdateCoupon(c *gin.Context) {
	var patch models.CouponPatch
	if err := bindPatch(c, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	coupon, err := h.store.UpdateCoupon(c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "Coupon not found")
		return
	}
	c.JSON(http.StatusOK, coupon)
}
