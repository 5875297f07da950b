package storage

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cloudbite/internal/models"
)

// MemoryStorage keeps all entity state in process memory. A single RWMutex
// serializes mutations so the unique-order-number and atomic order+items
// invariants hold under concurrent requests. Construct one per process (or
// per test) and inject it; there is no package-level instance.
type MemoryStorage struct {
	mu sync.RWMutex

	users      map[string]models.User
	categories map[string]models.Category
	menuItems  map[string]models.MenuItem
	orders     map[string]models.Order
	orderItems map[string][]models.OrderItem // keyed by order id
	addresses  map[string][]models.Address   // keyed by user id
	reviews    map[string]models.Review
	coupons    map[string]models.Coupon

	// insertion sequence, used to keep sorts stable across map iteration
	seq     uint64
	created map[string]uint64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:      make(map[string]models.User),
		categories: make(map[string]models.Category),
		menuItems:  make(map[string]models.MenuItem),
		orders:     make(map[string]models.Order),
		orderItems: make(map[string][]models.OrderItem),
		addresses:  make(map[string][]models.Address),
		reviews:    make(map[string]models.Review),
		coupons:    make(map[string]models.Coupon),
		created:    make(map[string]uint64),
	}
}

func (s *MemoryStorage) nextID() string {
	id := uuid.NewString()
	s.seq++
	s.created[id] = s.seq
	return id
}

// -- Users --

func (s *MemoryStorage) GetUser(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *MemoryStorage) GetUserByEmail(email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryStorage) CreateUser(user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return models.User{}, ErrConflict
		}
	}

	user.ID = s.nextID()
	user.CreatedAt = time.Now()
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryStorage) UpdateUser(id string, patch models.UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}

	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		user.Phone = patch.Phone
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.Password != nil {
		user.Password = *patch.Password
	}

	s.users[id] = user
	return user, nil
}

// -- Categories --

func (s *MemoryStorage) GetCategories() ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return s.created[categories[i].ID] < s.created[categories[j].ID]
	})
	return categories, nil
}

func (s *MemoryStorage) GetCategory(id string) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return models.Category{}, ErrNotFound
	}
	return category, nil
}

func (s *MemoryStorage) CreateCategory(category models.Category) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category.ID = s.nextID()
	s.categories[category.ID] = category
	return category, nil
}

func (s *MemoryStorage) UpdateCategory(id string, patch models.CategoryPatch) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, ok := s.categories[id]
	if !ok {
		return models.Category{}, ErrNotFound
	}

	if patch.Name != nil {
		category.Name = *patch.Name
	}
	if patch.Description != nil {
		category.Description = patch.Description
	}
	if patch.Image != nil {
		category.Image = patch.Image
	}
	if patch.IsActive != nil {
		category.IsActive = *patch.IsActive
	}
	if patch.SortOrder != nil {
		category.SortOrder = *patch.SortOrder
	}

	s.categories[id] = category
	return category, nil
}

func (s *MemoryStorage) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.categories, id)
	return nil
}

// -- Menu items --

func matchesFilters(item models.MenuItem, filters MenuItemFilters) bool {
	if filters.CategoryID != "" && item.CategoryID != filters.CategoryID {
		return false
	}
	if filters.IsVegetarian != nil && item.IsVegetarian != *filters.IsVegetarian {
		return false
	}
	if filters.IsAvailable != nil && item.IsAvailable != *filters.IsAvailable {
		return false
	}
	if filters.Search != "" {
		query := strings.ToLower(filters.Search)
		if strings.Contains(strings.ToLower(item.Name), query) {
			return true
		}
		if item.Description != nil && strings.Contains(strings.ToLower(*item.Description), query) {
			return true
		}
		for _, tag := range item.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				return true
			}
		}
		return false
	}
	return true
}

func (s *MemoryStorage) GetMenuItems(filters MenuItemFilters) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(s.menuItems))
	for _, item := range s.menuItems {
		if matchesFilters(item, filters) {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return s.created[items[i].ID] < s.created[items[j].ID]
	})
	return items, nil
}

func (s *MemoryStorage) GetMenuItem(id string) (models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.menuItems[id]
	if !ok {
		return models.MenuItem{}, ErrNotFound
	}
	return item, nil
}

func (s *MemoryStorage) GetMenuItemWithCategory(id string) (models.MenuItemWithCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.menuItems[id]
	if !ok {
		return models.MenuItemWithCategory{}, ErrNotFound
	}
	category, ok := s.categories[item.CategoryID]
	if !ok {
		return models.MenuItemWithCategory{}, ErrNotFound
	}
	return models.MenuItemWithCategory{MenuItem: item, Category: category}, nil
}

func (s *MemoryStorage) CreateMenuItem(item models.MenuItem) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.nextID()
	item.CreatedAt = time.Now()
	if item.Rating == "" {
		item.Rating = "0.00"
	}
	if item.Tags == nil {
		item.Tags = models.StringArray{}
	}
	if item.Allergens == nil {
		item.Allergens = models.StringArray{}
	}
	s.menuItems[item.ID] = item
	return item, nil
}

func (s *MemoryStorage) UpdateMenuItem(id string, patch models.MenuItemPatch) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.menuItems[id]
	if !ok {
		return models.MenuItem{}, ErrNotFound
	}

	if patch.CategoryID != nil {
		item.CategoryID = *patch.CategoryID
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = patch.Description
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.OriginalPrice != nil {
		item.OriginalPrice = patch.OriginalPrice
	}
	if patch.Image != nil {
		item.Image = patch.Image
	}
	if patch.IsVegetarian != nil {
		item.IsVegetarian = *patch.IsVegetarian
	}
	if patch.IsAvailable != nil {
		item.IsAvailable = *patch.IsAvailable
	}
	if patch.PreparationTime != nil {
		item.PreparationTime = *patch.PreparationTime
	}
	if patch.Rating != nil {
		item.Rating = *patch.Rating
	}
	if patch.ReviewCount != nil {
		item.ReviewCount = *patch.ReviewCount
	}
	if patch.Tags != nil {
		item.Tags = *patch.Tags
	}
	if patch.Allergens != nil {
		item.Allergens = *patch.Allergens
	}
	if patch.NutritionInfo != nil {
		item.NutritionInfo = *patch.NutritionInfo
	}

	s.menuItems[id] = item
	return item, nil
}

func (s *MemoryStorage) DeleteMenuItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.menuItems, id)
	return nil
}

// -- Orders --

func (s *MemoryStorage) GetOrders(userID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		if userID == "" || order.UserID == userID {
			orders = append(orders, order)
		}
	}
	s.sortNewestFirst(orders)
	return orders, nil
}

func (s *MemoryStorage) sortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return s.created[orders[i].ID] > s.created[orders[j].ID]
	})
}

func (s *MemoryStorage) GetOrder(id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return order, nil
}

// orderWithItemsLocked assembles the composite view. Caller holds the lock.
func (s *MemoryStorage) orderWithItemsLocked(id string) (models.OrderWithItems, error) {
	order, ok := s.orders[id]
	if !ok {
		return models.OrderWithItems{}, ErrNotFound
	}
	user, ok := s.users[order.UserID]
	if !ok {
		return models.OrderWithItems{}, ErrNotFound
	}

	items := s.orderItems[id]
	details := make([]models.OrderItemDetail, 0, len(items))
	for _, item := range items {
		menuItem, ok := s.menuItems[item.MenuItemID]
		if !ok {
			continue
		}
		details = append(details, models.OrderItemDetail{OrderItem: item, MenuItem: menuItem})
	}

	return models.OrderWithItems{
		Order: order,
		Items: details,
		User: models.UserSummary{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
	}, nil
}

func (s *MemoryStorage) GetOrderWithItems(id string) (models.OrderWithItems, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.orderWithItemsLocked(id)
}

func (s *MemoryStorage) GetOrderByNumber(orderNumber string) (models.OrderWithItems, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, order := range s.orders {
		if order.OrderNumber == orderNumber {
			return s.orderWithItemsLocked(id)
		}
	}
	return models.OrderWithItems{}, ErrNotFound
}

func (s *MemoryStorage) CreateOrderWithItems(order models.Order, items []models.OrderItem) (models.Order, error) {
	if len(items) == 0 {
		return models.Order{}, ErrEmptyOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return models.Order{}, ErrConflict
		}
	}

	order.ID = s.nextID()
	order.CreatedAt = time.Now()
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentStatusPending
	}

	stored := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		item.ID = s.nextID()
		item.OrderID = order.ID
		stored = append(stored, item)
	}

	s.orders[order.ID] = order
	s.orderItems[order.ID] = stored
	return order, nil
}

func (s *MemoryStorage) UpdateOrderStatus(id string, status string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}

	order.Status = status
	if status == models.OrderStatusDelivered && order.ActualDeliveryTime == nil {
		now := time.Now()
		order.ActualDeliveryTime = &now
	}
	s.orders[id] = order
	return order, nil
}

func (s *MemoryStorage) GetOrderItems(orderID string) ([]models.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.orderItems[orderID]
	out := make([]models.OrderItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryStorage) GetRecentOrders(limit int) ([]models.OrderWithItems, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, order)
	}
	s.sortNewestFirst(orders)
	if len(orders) > limit {
		orders = orders[:limit]
	}

	out := make([]models.OrderWithItems, 0, len(orders))
	for _, order := range orders {
		view, err := s.orderWithItemsLocked(order.ID)
		if err != nil {
			continue
		}
		out = append(out, view)
	}
	return out, nil
}

// -- Addresses --

func (s *MemoryStorage) GetUserAddresses(userID string) ([]models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addresses := s.addresses[userID]
	out := make([]models.Address, len(addresses))
	copy(out, addresses)
	return out, nil
}

func (s *MemoryStorage) CreateAddress(address models.Address) (models.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	address.ID = s.nextID()
	s.addresses[address.UserID] = append(s.addresses[address.UserID], address)
	return address, nil
}

func (s *MemoryStorage) UpdateAddress(id string, patch models.AddressPatch) (models.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, addresses := range s.addresses {
		for i, address := range addresses {
			if address.ID != id {
				continue
			}
			if patch.Type != nil {
				address.Type = *patch.Type
			}
			if patch.AddressLine1 != nil {
				address.AddressLine1 = *patch.AddressLine1
			}
			if patch.AddressLine2 != nil {
				address.AddressLine2 = patch.AddressLine2
			}
			if patch.City != nil {
				address.City = *patch.City
			}
			if patch.State != nil {
				address.State = *patch.State
			}
			if patch.PostalCode != nil {
				address.PostalCode = *patch.PostalCode
			}
			if patch.Landmark != nil {
				address.Landmark = patch.Landmark
			}
			if patch.IsDefault != nil {
				address.IsDefault = *patch.IsDefault
			}
			s.addresses[userID][i] = address
			return address, nil
		}
	}
	return models.Address{}, ErrNotFound
}

func (s *MemoryStorage) DeleteAddress(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, addresses := range s.addresses {
		for i, address := range addresses {
			if address.ID == id {
				s.addresses[userID] = append(addresses[:i], addresses[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

// -- Reviews --

func (s *MemoryStorage) GetReviews(filters ReviewFilters) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews := make([]models.Review, 0, len(s.reviews))
	for _, review := range s.reviews {
		if filters.MenuItemID != "" && (review.MenuItemID == nil || *review.MenuItemID != filters.MenuItemID) {
			continue
		}
		if filters.UserID != "" && review.UserID != filters.UserID {
			continue
		}
		reviews = append(reviews, review)
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		if !reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		}
		return s.created[reviews[i].ID] > s.created[reviews[j].ID]
	})
	return reviews, nil
}

func (s *MemoryStorage) CreateReview(review models.Review) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review.ID = s.nextID()
	review.CreatedAt = time.Now()
	s.reviews[review.ID] = review
	return review, nil
}

// -- Coupons --

func (s *MemoryStorage) GetCoupons() ([]models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coupons := make([]models.Coupon, 0, len(s.coupons))
	for _, coupon := range s.coupons {
		coupons = append(coupons, coupon)
	}
	sort.SliceStable(coupons, func(i, j int) bool {
		return s.created[coupons[i].ID] < s.created[coupons[j].ID]
	})
	return coupons, nil
}

func (s *MemoryStorage) GetCouponByCode(code string) (models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, coupon := range s.coupons {
		if coupon.Code == code {
			return coupon, nil
		}
	}
	return models.Coupon{}, ErrNotFound
}

func (s *MemoryStorage) CreateCoupon(coupon models.Coupon) (models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.coupons {
		if existing.Code == coupon.Code {
			return models.Coupon{}, ErrConflict
		}
	}

	coupon.ID = s.nextID()
	if coupon.MinimumOrderAmount == "" {
		coupon.MinimumOrderAmount = "0.00"
	}
	s.coupons[coupon.ID] = coupon
	return coupon, nil
}

func (s *MemoryStorage) UpdateCoupon(id string, patch models.CouponPatch) (models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coupon, ok := s.coupons[id]
	if !ok {
		return models.Coupon{}, ErrNotFound
	}

	if patch.Name != nil {
		coupon.Name = *patch.Name
	}
	if patch.Description != nil {
		coupon.Description = patch.Description
	}
	if patch.DiscountType != nil {
		coupon.DiscountType = *patch.DiscountType
	}
	if patch.DiscountValue != nil {
		coupon.DiscountValue = *patch.DiscountValue
	}
	if patch.MinimumOrderAmount != nil {
		coupon.MinimumOrderAmount = *patch.MinimumOrderAmount
	}
	if patch.MaxDiscountAmount != nil {
		coupon.MaxDiscountAmount = patch.MaxDiscountAmount
	}
	if patch.UsageLimit != nil {
		coupon.UsageLimit = patch.UsageLimit
	}
	if patch.UsedCount != nil {
		coupon.UsedCount = *patch.UsedCount
	}
	if patch.IsActive != nil {
		coupon.IsActive = *patch.IsActive
	}
	if patch.ValidFrom != nil {
		coupon.ValidFrom = *patch.ValidFrom
	}
	if patch.ValidUntil != nil {
		coupon.ValidUntil = *patch.ValidUntil
	}

	s.coupons[id] = coupon
	return coupon, nil
}

// -- Admin stats --

func (s *MemoryStorage) GetAdminStats() (models.AdminStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	todayOrders := 0
	revenue := decimal.Zero
	for _, order := range s.orders {
		if !order.CreatedAt.Before(midnight) {
			todayOrders++
		}
		if order.Status == models.OrderStatusDelivered {
			if total, err := decimal.NewFromString(order.TotalAmount); err == nil {
				revenue = revenue.Add(total)
			}
		}
	}

	averageRating := 0.0
	if len(s.menuItems) > 0 {
		sum := decimal.Zero
		for _, item := range s.menuItems {
			if rating, err := decimal.NewFromString(item.Rating); err == nil {
				sum = sum.Add(rating)
			}
		}
		avg, _ := sum.Div(decimal.NewFromInt(int64(len(s.menuItems)))).Float64()
		averageRating = math.Round(avg*10) / 10
	}

	stats := models.AdminStats{
		TodayOrders:     todayOrders,
		ActiveCustomers: len(s.users),
		AverageRating:   averageRating,
	}
	stats.Revenue, _ = revenue.Float64()
	return stats, nil
}
