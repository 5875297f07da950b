package storage

import (
	"errors"

	"cloudbite/internal/models"
)

var (
	// ErrNotFound signals a lookup, update or ownership check against an id
	// that does not exist. Callers map it to a 404-equivalent.
	ErrNotFound = errors.New("record not found")

	// ErrConflict signals a duplicate unique key (email, coupon code, order
	// number).
	ErrConflict = errors.New("duplicate key")

	// ErrEmptyOrder signals an order+items batch with zero items, which is a
	// data-integrity violation.
	ErrEmptyOrder = errors.New("order must contain at least one item")
)

// MenuItemFilters compose with AND semantics; every filter is optional.
// Search is a case-insensitive substring match over name, description and
// tags.
type MenuItemFilters struct {
	CategoryID   string
	IsVegetarian *bool
	IsAvailable  *bool
	Search       string
}

func (f MenuItemFilters) IsZero() bool {
	return f.CategoryID == "" && f.IsVegetarian == nil && f.IsAvailable == nil && f.Search == ""
}

type ReviewFilters struct {
	MenuItemID string
	UserID     string
}

// Storage is the sole owner of entity state. Create operations assign fresh
// identifiers and defaults; updates merge explicit patch structs and fail with
// ErrNotFound on missing ids; deletes are idempotent. Implementations must be
// safe for concurrent use.
type Storage interface {
	// Users
	GetUser(id string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	CreateUser(user models.User) (models.User, error)
	UpdateUser(id string, patch models.UserPatch) (models.User, error)

	// Categories
	GetCategories() ([]models.Category, error)
	GetCategory(id string) (models.Category, error)
	CreateCategory(category models.Category) (models.Category, error)
	UpdateCategory(id string, patch models.CategoryPatch) (models.Category, error)
	DeleteCategory(id string) error

	// Menu items
	GetMenuItems(filters MenuItemFilters) ([]models.MenuItem, error)
	GetMenuItem(id string) (models.MenuItem, error)
	GetMenuItemWithCategory(id string) (models.MenuItemWithCategory, error)
	CreateMenuItem(item models.MenuItem) (models.MenuItem, error)
	UpdateMenuItem(id string, patch models.MenuItemPatch) (models.MenuItem, error)
	DeleteMenuItem(id string) error

	// Orders. CreateOrderWithItems persists the order and its item batch as
	// one unit of work: either all of it becomes visible or none of it.
	GetOrders(userID string) ([]models.Order, error)
	GetOrder(id string) (models.Order, error)
	GetOrderWithItems(id string) (models.OrderWithItems, error)
	GetOrderByNumber(orderNumber string) (models.OrderWithItems, error)
	CreateOrderWithItems(order models.Order, items []models.OrderItem) (models.Order, error)
	UpdateOrderStatus(id string, status string) (models.Order, error)
	GetOrderItems(orderID string) ([]models.OrderItem, error)
	GetRecentOrders(limit int) ([]models.OrderWithItems, error)

	// Addresses
	GetUserAddresses(userID string) ([]models.Address, error)
	CreateAddress(address models.Address) (models.Address, error)
	UpdateAddress(id string, patch models.AddressPatch) (models.Address, error)
	DeleteAddress(id string) error

	// Reviews
	GetReviews(filters ReviewFilters) ([]models.Review, error)
	CreateReview(review models.Review) (models.Review, error)

	// Coupons
	GetCoupons() ([]models.Coupon, error)
	GetCouponByCode(code string) (models.Coupon, error)
	CreateCoupon(coupon models.Coupon) (models.Coupon, error)
	UpdateCoupon(id string, patch models.CouponPatch) (models.Coupon, error)

	// Admin aggregates
	GetAdminStats() (models.AdminStats, error)
}
