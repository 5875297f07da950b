package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cloudbite/internal/middleware"
	"cloudbite/internal/models"
	"cloudbite/internal/service"
	"cloudbite/internal/storage"
)

type OrderHandler struct {
	orders *service.OrderService
	store  storage.Storage
}

func NewOrderHandler(orders *service.OrderService, store storage.Storage) *OrderHandler {
	return &OrderHandler{orders: orders, store: store}
}

type CreateOrderRequest struct {
	UserID          string                 `json:"userId"`
	Items           []service.OrderLine    `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress models.DeliveryAddress `json:"deliveryAddress" binding:"required"`
	PaymentMethod   *string                `json:"paymentMethod,omitempty"`
	CustomerNotes   *string                `json:"customerNotes,omitempty"`
}

// Create prices and persists an order. The caller's JWT identity wins over
// the userId in the body when both are present.
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	userID := req.UserID
	if claims := middleware.GetClaims(c); claims != nil {
		userID = claims.UserID
	}

	order, err := h.orders.CreateOrder(service.CreateOrderInput{
		UserID:          userID,
		Items:           req.Items,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		CustomerNotes:   req.CustomerNotes,
	})
	if err != nil {
		writeError(c, err, "Order not found")
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.store.GetOrders(c.Query("userId"))
	if err != nil {
		writeError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.store.GetOrderWithItems(c.Param("id"))
	if err != nil {
		writeError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, order)
}

// Track looks an order up by its human-facing number.
func (h *OrderHandler) Track(c *gin.Context) {
	order, err := h.store.GetOrderByNumber(c.Param("orderNumber"))
	if err != nil {
		writeError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, order)
}
