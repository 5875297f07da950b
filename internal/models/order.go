package models

import "time"

// Order lifecycle. Forward transitions only; cancelled is reachable from any
// non-terminal state.
const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusReady          = "ready"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// All monetary fields are fixed-point decimal strings with two fraction
// digits, never binary floats. total = subtotal + tax + deliveryFee - discount
// exactly as computed at creation; never recomputed afterward.
type Order struct {
	ID                    string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID                string          `json:"userId" gorm:"index;not null;type:varchar(36)"`
	OrderNumber           string          `json:"orderNumber" gorm:"uniqueIndex;type:varchar(20);not null"`
	Status                string          `json:"status" gorm:"not null;default:pending"`
	Subtotal              string          `json:"subtotal" gorm:"type:varchar(32);not null"`
	TaxAmount             string          `json:"taxAmount" gorm:"type:varchar(32);not null;default:'0.00'"`
	DeliveryFee           string          `json:"deliveryFee" gorm:"type:varchar(32);not null;default:'0.00'"`
	DiscountAmount        string          `json:"discountAmount" gorm:"type:varchar(32);not null;default:'0.00'"`
	TotalAmount           string          `json:"totalAmount" gorm:"type:varchar(32);not null"`
	PaymentMethod         *string         `json:"paymentMethod,omitempty"`
	PaymentStatus         string          `json:"paymentStatus" gorm:"not null;default:pending"`
	DeliveryAddress       DeliveryAddress `json:"deliveryAddress" gorm:"type:jsonb"`
	CustomerNotes         *string         `json:"customerNotes,omitempty" gorm:"type:text"`
	EstimatedDeliveryTime *time.Time      `json:"estimatedDeliveryTime,omitempty"`
	ActualDeliveryTime    *time.Time      `json:"actualDeliveryTime,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
}

// OrderItem snapshots the menu item's unit price at order time; later price
// edits never change it. TotalPrice = UnitPrice * Quantity.
type OrderItem struct {
	ID                  string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID             string  `json:"orderId" gorm:"index;not null;type:varchar(36)"`
	MenuItemID          string  `json:"menuItemId" gorm:"not null;type:varchar(36)"`
	Quantity            int     `json:"quantity" gorm:"not null"`
	UnitPrice           string  `json:"unitPrice" gorm:"type:varchar(32);not null"`
	TotalPrice          string  `json:"totalPrice" gorm:"type:varchar(32);not null"`
	SpecialInstructions *string `json:"specialInstructions,omitempty" gorm:"type:text"`
}

type OrderItemDetail struct {
	OrderItem
	MenuItem MenuItem `json:"menuItem"`
}

// OrderWithItems is the composite view assembled at query time, not stored.
type OrderWithItems struct {
	Order
	Items []OrderItemDetail `json:"items"`
	User  UserSummary       `json:"user"`
}

type Review struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `json:"userId" gorm:"index;not null;type:varchar(36)"`
	OrderID    string    `json:"orderId" gorm:"not null;type:varchar(36)"`
	MenuItemID *string   `json:"menuItemId,omitempty" gorm:"index;type:varchar(36)"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    *string   `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Coupon struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Code               string    `json:"code" gorm:"uniqueIndex;type:varchar(20);not null"`
	Name               string    `json:"name" gorm:"not null"`
	Description        *string   `json:"description,omitempty"`
	DiscountType       string    `json:"discountType" gorm:"not null"`
	DiscountValue      string    `json:"discountValue" gorm:"type:varchar(32);not null"`
	MinimumOrderAmount string    `json:"minimumOrderAmount" gorm:"type:varchar(32);default:'0.00'"`
	MaxDiscountAmount  *string   `json:"maxDiscountAmount,omitempty" gorm:"type:varchar(32)"`
	UsageLimit         *int      `json:"usageLimit,omitempty"`
	UsedCount          int       `json:"usedCount" gorm:"not null;default:0"`
	IsActive           bool      `json:"isActive" gorm:"not null;default:true"`
	ValidFrom          time.Time `json:"validFrom" gorm:"not null"`
	ValidUntil         time.Time `json:"validUntil" gorm:"not null"`
}

type CouponPatch struct {
	Name               *string    `json:"name,omitempty"`
	Description        *string    `json:"description,omitempty"`
	DiscountType       *string    `json:"discountType,omitempty"`
	DiscountValue      *string    `json:"discountValue,omitempty"`
	MinimumOrderAmount *string    `json:"minimumOrderAmount,omitempty"`
	MaxDiscountAmount  *string    `json:"maxDiscountAmount,omitempty"`
	UsageLimit         *int       `json:"usageLimit,omitempty"`
	UsedCount          *int       `json:"usedCount,omitempty"`
	IsActive           *bool      `json:"isActive,omitempty"`
	ValidFrom          *time.Time `json:"validFrom,omitempty"`
	ValidUntil         *time.Time `json:"validUntil,omitempty"`
}

// AdminStats are the dashboard aggregates, recomputed from a full scan on each
// request.
type AdminStats struct {
	TodayOrders     int     `json:"todayOrders"`
	Revenue         float64 `json:"revenue"`
	ActiveCustomers int     `json:"activeCustomers"`
	AverageRating   float64 `json:"averageRating"`
}
