package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudbite/internal/middleware"
	"cloudbite/internal/models"
	"cloudbite/internal/service"
	"cloudbite/internal/storage"
	"cloudbite/internal/utils"
)

// newTestRouter wires the full route table against a fresh in-memory store,
// mirroring the server wiring minus CORS and rate limiting.
func newTestRouter(t *testing.T) (*gin.Engine, *storage.MemoryStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStorage()
	catalogService := service.NewCatalogService(store, nil)
	orderService := service.NewOrderService(store)

	authHandler := NewAuthHandler(store, time.Hour)
	catalogHandler := NewCatalogHandler(catalogService)
	orderHandler := NewOrderHandler(orderService, store)
	accountHandler := NewAccountHandler(store)
	adminHandler := NewAdminHandler(store, catalogService, orderService)

	r := gin.New()
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

	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, _, err := utils.GenerateToken(user.ID, user.Email, user.Role, time.Hour)
	require.NoError(t, err)
	return token
}

func createUser(t *testing.T, store *storage.MemoryStorage, email, role string) models.User {
	t.Helper()
	user, err := store.CreateUser(models.User{
		Email:     email,
		Password:  "secret",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
	})
	require.NoError(t, err)
	return user
}

func createMenuItem(t *testing.T, store *storage.MemoryStorage, name, price string) models.MenuItem {
	t.Helper()
	category, err := store.CreateCategory(models.Category{Name: name + " category", IsActive: true})
	require.NoError(t, err)
	item, err := store.CreateMenuItem(models.MenuItem{
		CategoryID:   category.ID,
		Name:         name,
		Price:        price,
		IsVegetarian: true,
		IsAvailable:  true,
	})
	require.NoError(t, err)
	return item
}

func orderPayload(userID, menuItemID string, quantity int) map[string]interface{} {
	return map[string]interface{}{
		"userId": userID,
		"items": []map[string]interface{}{
			{"menuItemId": menuItemID, "quantity": quantity},
		},
		"deliveryAddress": map[string]interface{}{
			"addressLine1": "42 Main St",
			"city":         "Mumbai",
			"state":        "MH",
			"postalCode":   "400001",
		},
	}
}

// -- Auth --

func TestRegisterAndLogin(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":     "new@example.com",
		"password":  "secret",
		"firstName": "New",
		"lastName":  "User",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "new@example.com", body["email"])
	assert.Equal(t, models.RoleCustomer, body["role"])
	assert.NotContains(t, body, "password")

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "new@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["expiresAt"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, store := newTestRouter(t)
	createUser(t, store, "taken@example.com", models.RoleCustomer)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":     "taken@example.com",
		"password":  "secret",
		"firstName": "Other",
		"lastName":  "User",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", decodeBody(t, w)["message"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, store := newTestRouter(t)
	createUser(t, store, "known@example.com", models.RoleCustomer)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "known@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, w)["message"])
}

func TestMeRequiresToken(t *testing.T) {
	r, store := newTestRouter(t)
	user := createUser(t, store, "me@example.com", models.RoleCustomer)

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", tokenFor(t, user), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID, decodeBody(t, w)["id"])
}

// -- Catalog --

func TestMenuItemsFilterQuery(t *testing.T) {
	r, store := newTestRouter(t)
	createMenuItem(t, store, "Margherita Pizza", "299.00")
	nonVeg, err := store.CreateMenuItem(models.MenuItem{
		CategoryID:  "c2",
		Name:        "Classic Burger",
		Price:       "249.00",
		IsAvailable: true,
	})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/api/menu-items", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.MenuItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = doJSON(t, r, http.MethodGet, "/api/menu-items?isVegetarian=false", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var filtered []models.MenuItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, nonVeg.ID, filtered[0].ID)

	w = doJSON(t, r, http.MethodGet, "/api/menu-items?search=burger", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, nonVeg.ID, filtered[0].ID)
}

func TestGetMenuItemJoinsCategory(t *testing.T) {
	r, store := newTestRouter(t)
	item := createMenuItem(t, store, "Margherita Pizza", "299.00")

	w := doJSON(t, r, http.MethodGet, "/api/menu-items/"+item.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, item.ID, body["id"])
	category, ok := body["category"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Margherita Pizza category", category["name"])

	w = doJSON(t, r, http.MethodGet, "/api/menu-items/missing", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Menu item not found", decodeBody(t, w)["message"])
}

// -- Orders --

func TestCreateOrderAnonymous(t *testing.T) {
	r, store := newTestRouter(t)
	user := createUser(t, store, "buyer@example.com", models.RoleCustomer)
	item := createMenuItem(t, store, "Margherita Pizza", "299.00")

	w := doJSON(t, r, http.MethodPost, "/api/orders", "", orderPayload(user.ID, item.ID, 2))
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "598.00", body["subtotal"])
	assert.Equal(t, "657.80", body["totalAmount"])
	assert.Equal(t, "pending", body["status"])
	assert.NotEmpty(t, body["orderNumber"])
}

func TestCreateOrderTokenIdentityWins(t *testing.T) {
	r, store := newTestRouter(t)
	createUser(t, store, "spoofed@example.com", models.RoleCustomer)
	actual := createUser(t, store, "actual@example.com", models.RoleCustomer)
	item := createMenuItem(t, store, "Margherita Pizza", "299.00")

	payload := orderPayload("someone-else", item.ID, 1)
	w := doJSON(t, r, http.MethodPost, "/api/orders", tokenFor(t, actual), payload)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, actual.ID, decodeBody(t, w)["userId"])
}

func TestCreateOrderUnknownMenuItem(t *testing.T) {
	r, store := newTestRouter(t)
	user := createUser(t, store, "buyer@example.com", models.RoleCustomer)

	w := doJSON(t, r, http.MethodPost, "/api/orders", "", orderPayload(user.ID, "missing", 1))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["message"], "not found")
}

func TestTrackOrderByNumber(t *testing.T) {
	r, store := newTestRouter(t)
	user := createUser(t, store, "buyer@example.com", models.RoleCustomer)
	item := createMenuItem(t, store, "Margherita Pizza", "299.00")

	w := doJSON(t, r, http.MethodPost, "/api/orders", "", orderPayload(user.ID, item.ID, 1))
	require.Equal(t, http.StatusCreated, w.Code)
	number, _ := decodeBody(t, w)["orderNumber"].(string)
	require.NotEmpty(t, number)

	w = doJSON(t, r, http.MethodGet, "/api/orders/track/"+number, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, number, decodeBody(t, w)["orderNumber"])

	w = doJSON(t, r, http.MethodGet, "/api/orders/track/CB99999999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/orders/missing", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", decodeBody(t, w)["message"])
}

// -- Account --

func TestAddressOwnership(t *testing.T) {
	r, store := newTestRouter(t)
	owner := createUser(t, store, "owner@example.com", models.RoleCustomer)
	other := createUser(t, store, "other@example.com", models.RoleCustomer)

	w := doJSON(t, r, http.MethodPost, "/api/addresses", tokenFor(t, owner), map[string]interface{}{
		"type":         "home",
		"addressLine1": "42 Main St",
		"city":         "Mumbai",
		"state":        "MH",
		"postalCode":   "400001",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	addressID, _ := decodeBody(t, w)["id"].(string)
	require.NotEmpty(t, addressID)

	// Another user cannot see or edit it.
	w = doJSON(t, r, http.MethodPut, "/api/addresses/"+addressID, tokenFor(t, other), map[string]interface{}{
		"city": "Pune",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/addresses/"+addressID, tokenFor(t, owner), map[string]interface{}{
		"city": "Pune",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pune", decodeBody(t, w)["city"])

	w = doJSON(t, r, http.MethodDelete, "/api/addresses/"+addressID, tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateReviewRequiresAuth(t *testing.T) {
	r, store := newTestRouter(t)
	user := createUser(t, store, "reviewer@example.com", models.RoleCustomer)

	payload := map[string]interface{}{"orderId": "o1", "rating": 5}

	w := doJSON(t, r, http.MethodPost, "/api/reviews", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/reviews", tokenFor(t, user), payload)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, user.ID, decodeBody(t, w)["userId"])
}

// -- Admin --

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r, store := newTestRouter(t)
	customer := createUser(t, store, "customer@example.com", models.RoleCustomer)

	w := doJSON(t, r, http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/admin/stats", tokenFor(t, customer), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", decodeBody(t, w)["message"])
}

func TestAdminStats(t *testing.T) {
	r, store := newTestRouter(t)
	admin := createUser(t, store, "admin@example.com", models.RoleAdmin)

	w := doJSON(t, r, http.MethodGet, "/api/admin/stats", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 0.0, body["todayOrders"])
	assert.Equal(t, 1.0, body["activeCustomers"])
	assert.Contains(t, body, "orderGrowth")
	assert.Contains(t, body, "revenueGrowth")
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	r, store := newTestRouter(t)
	admin := createUser(t, store, "admin@example.com", models.RoleAdmin)
	user := createUser(t, store, "buyer@example.com", models.RoleCustomer)
	item := createMenuItem(t, store, "Margherita Pizza", "299.00")

	w := doJSON(t, r, http.MethodPost, "/api/orders", "", orderPayload(user.ID, item.ID, 1))
	require.Equal(t, http.StatusCreated, w.Code)
	orderID, _ := decodeBody(t, w)["id"].(string)

	w = doJSON(t, r, http.MethodPatch, "/api/admin/orders/"+orderID+"/status", tokenFor(t, admin), map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Status is required", decodeBody(t, w)["message"])

	w = doJSON(t, r, http.MethodPatch, "/api/admin/orders/"+orderID+"/status", tokenFor(t, admin), map[string]interface{}{
		"status": "confirmed",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", decodeBody(t, w)["status"])

	// Backwards transition is rejected.
	w = doJSON(t, r, http.MethodPatch, "/api/admin/orders/"+orderID+"/status", tokenFor(t, admin), map[string]interface{}{
		"status": "pending",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminMenuItemCRUD(t *testing.T) {
	r, store := newTestRouter(t)
	admin := createUser(t, store, "admin@example.com", models.RoleAdmin)
	category, err := store.CreateCategory(models.Category{Name: "Pizza", IsActive: true})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/admin/menu-items", tokenFor(t, admin), map[string]interface{}{
		"categoryId": category.ID,
		"name":       "Margherita Pizza",
		"price":      "not-a-number",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid price", decodeBody(t, w)["message"])

	w = doJSON(t, r, http.MethodPost, "/api/admin/menu-items", tokenFor(t, admin), map[string]interface{}{
		"categoryId": category.ID,
		"name":       "Margherita Pizza",
		"price":      "299.00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	itemID, _ := decodeBody(t, w)["id"].(string)
	require.NotEmpty(t, itemID)

	w = doJSON(t, r, http.MethodPatch, "/api/admin/menu-items/"+itemID, tokenFor(t, admin), map[string]interface{}{
		"price": "349.00",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "349.00", decodeBody(t, w)["price"])

	// Unknown patch fields are rejected outright.
	w = doJSON(t, r, http.MethodPatch, "/api/admin/menu-items/"+itemID, tokenFor(t, admin), map[string]interface{}{
		"id": "hijacked",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/admin/menu-items/"+itemID, tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/menu-items/"+itemID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCouponDuplicateCode(t *testing.T) {
	r, store := newTestRouter(t)
	admin := createUser(t, store, "admin@example.com", models.RoleAdmin)

	payload := map[string]interface{}{
		"code":          "WELCOME10",
		"name":          "Welcome",
		"discountType":  "percentage",
		"discountValue": "10.00",
		"validFrom":     time.Now().Format(time.RFC3339),
		"validUntil":    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}

	w := doJSON(t, r, http.MethodPost, "/api/admin/coupons", tokenFor(t, admin), payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/admin/coupons", tokenFor(t, admin), payload)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Duplicate record", decodeBody(t, w)["message"])
}
