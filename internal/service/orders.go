package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cloudbite/internal/models"
	"cloudbite/internal/storage"
)

// Flat tax/delivery model: 10% tax, free delivery above the threshold,
// otherwise a flat fee. Coupons are not applied at creation yet, so the
// discount is always zero.
var (
	taxRate             = decimal.RequireFromString("0.10")
	freeDeliveryAbove   = decimal.NewFromInt(500)
	flatDeliveryFee     = decimal.NewFromInt(30)
	zeroDiscount        = decimal.Zero
	orderNumberAttempts = 5
	orderNumberModulus  = int64(100000000) // 8 digits after the CB prefix
)

// ValidationError marks input the caller should fix; handlers surface it as a
// 400 with the message verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type OrderLine struct {
	MenuItemID          string  `json:"menuItemId" binding:"required"`
	Quantity            int     `json:"quantity" binding:"required,min=1"`
	SpecialInstructions *string `json:"specialInstructions,omitempty"`
}

type CreateOrderInput struct {
	UserID          string
	Items           []OrderLine
	DeliveryAddress models.DeliveryAddress
	PaymentMethod   *string
	CustomerNotes   *string
}

type OrderService struct {
	store storage.Storage
}

func NewOrderService(store storage.Storage) *OrderService {
	return &OrderService{store: store}
}

// CreateOrder validates the cart, prices it, mints an order number and
// persists order plus line items as one unit. If any menu item id fails to
// resolve the whole creation aborts and nothing is persisted.
func (s *OrderService) CreateOrder(in CreateOrderInput) (models.OrderWithItems, error) {
	if in.UserID == "" {
		return models.OrderWithItems{}, validationf("userId is required")
	}
	if _, err := s.store.GetUser(in.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.OrderWithItems{}, validationf("User %s not found", in.UserID)
		}
		return models.OrderWithItems{}, err
	}
	if len(in.Items) == 0 {
		return models.OrderWithItems{}, validationf("Order must contain at least one item")
	}

	// Resolve every line up front; unit prices are snapshotted from this
	// read and never re-read later.
	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		if line.Quantity < 1 {
			return models.OrderWithItems{}, validationf("Quantity must be at least 1")
		}
		menuItem, err := s.store.GetMenuItem(line.MenuItemID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return models.OrderWithItems{}, validationf("Menu item %s not found", line.MenuItemID)
			}
			return models.OrderWithItems{}, err
		}
		unitPrice, err := decimal.NewFromString(menuItem.Price)
		if err != nil {
			return models.OrderWithItems{}, fmt.Errorf("menu item %s has malformed price %q: %w", menuItem.ID, menuItem.Price, err)
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, models.OrderItem{
			MenuItemID:          line.MenuItemID,
			Quantity:            line.Quantity,
			UnitPrice:           unitPrice.StringFixed(2),
			TotalPrice:          lineTotal.StringFixed(2),
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	tax := subtotal.Mul(taxRate)
	deliveryFee := flatDeliveryFee
	if subtotal.GreaterThan(freeDeliveryAbove) {
		deliveryFee = decimal.Zero
	}
	total := subtotal.Add(tax).Add(deliveryFee).Sub(zeroDiscount)

	order := models.Order{
		UserID:          in.UserID,
		Status:          models.OrderStatusPending,
		Subtotal:        subtotal.StringFixed(2),
		TaxAmount:       tax.StringFixed(2),
		DeliveryFee:     deliveryFee.StringFixed(2),
		DiscountAmount:  zeroDiscount.StringFixed(2),
		TotalAmount:     total.StringFixed(2),
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		DeliveryAddress: in.DeliveryAddress,
		CustomerNotes:   in.CustomerNotes,
	}

	created, err := s.persistWithFreshNumber(order, items)
	if err != nil {
		return models.OrderWithItems{}, err
	}
	return s.store.GetOrderWithItems(created.ID)
}

// persistWithFreshNumber mints "CB" + 8 digits from the epoch-millisecond
// clock and retries against the storage's unique-number constraint, so the
// human-facing format survives while the truncated-timestamp collision of the
// naive scheme does not.
func (s *OrderService) persistWithFreshNumber(order models.Order, items []models.OrderItem) (models.Order, error) {
	base := time.Now().UnixMilli()
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		n := (base + int64(attempt)) % orderNumberModulus
		order.OrderNumber = fmt.Sprintf("CB%08d", n)

		created, err := s.store.CreateOrderWithItems(order, items)
		if errors.Is(err, storage.ErrConflict) {
			continue
		}
		if err != nil {
			return models.Order{}, err
		}
		return created, nil
	}
	return models.Order{}, fmt.Errorf("could not mint a unique order number after %d attempts", orderNumberAttempts)
}

var statusRank = map[string]int{
	models.OrderStatusPending:        0,
	models.OrderStatusConfirmed:      1,
	models.OrderStatusPreparing:      2,
	models.OrderStatusReady:          3,
	models.OrderStatusOutForDelivery: 4,
	models.OrderStatusDelivered:      5,
}

func isTerminal(status string) bool {
	return status == models.OrderStatusDelivered || status == models.OrderStatusCancelled
}

// UpdateStatus enforces the lifecycle: forward transitions only, with
// cancellation reachable from any non-terminal state.
func (s *OrderService) UpdateStatus(id string, status string) (models.Order, error) {
	if _, ok := statusRank[status]; !ok && status != models.OrderStatusCancelled {
		return models.Order{}, validationf("Invalid order status %q", status)
	}

	current, err := s.store.GetOrder(id)
	if err != nil {
		return models.Order{}, err
	}

	if isTerminal(current.Status) {
		return models.Order{}, validationf("Order is already %s", current.Status)
	}
	if status != models.OrderStatusCancelled && statusRank[status] <= statusRank[current.Status] {
		return models.Order{}, validationf("Cannot move order from %s to %s", current.Status, status)
	}

	return s.store.UpdateOrderStatus(id, status)
}
