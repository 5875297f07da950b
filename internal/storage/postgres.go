package storage

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cloudbite/internal/models"
)

// PostgresStorage honors the same contract as MemoryStorage against a real
// database. The order+items batch is wrapped in a transaction so the atomicity
// invariant survives a crash, which the in-memory engine cannot promise.
type PostgresStorage struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return db, nil
}

func NewPostgresStorage(db *gorm.DB) (*PostgresStorage, error) {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Address{},
		&models.Review{},
		&models.Coupon{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &PostgresStorage{db: db}, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// -- Users --

func (s *PostgresStorage) GetUser(id string) (models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func (s *PostgresStorage) GetUserByEmail(email string) (models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func (s *PostgresStorage) CreateUser(user models.User) (models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, ErrConflict
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	if err := s.db.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *PostgresStorage) UpdateUser(id string, patch models.UserPatch) (models.User, error) {
	updates := map[string]interface{}{}
	if patch.FirstName != nil {
		updates["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates["last_name"] = *patch.LastName
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.Password != nil {
		updates["password"] = *patch.Password
	}
	return applyPatch[models.User](s.db, id, updates)
}

// applyPatch merges column updates onto an existing row, returning ErrNotFound
// when the id does not exist and the updated row otherwise.
func applyPatch[T any](db *gorm.DB, id string, updates map[string]interface{}) (T, error) {
	var entity T
	if err := db.Where("id = ?", id).First(&entity).Error; err != nil {
		return entity, translate(err)
	}
	if len(updates) > 0 {
		if err := db.Model(&entity).Updates(updates).Error; err != nil {
			return entity, err
		}
	}
	if err := db.Where("id = ?", id).First(&entity).Error; err != nil {
		return entity, translate(err)
	}
	return entity, nil
}

// -- Categories --

func (s *PostgresStorage) GetCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("sort_order asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *PostgresStorage) GetCategory(id string) (models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ?", id).First(&category).Error; err != nil {
		return models.Category{}, translate(err)
	}
	return category, nil
}

func (s *PostgresStorage) CreateCategory(category models.Category) (models.Category, error) {
	category.ID = uuid.NewString()
	if err := s.db.Create(&category).Error; err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (s *PostgresStorage) UpdateCategory(id string, patch models.CategoryPatch) (models.Category, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Image != nil {
		updates["image"] = *patch.Image
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.SortOrder != nil {
		updates["sort_order"] = *patch.SortOrder
	}
	return applyPatch[models.Category](s.db, id, updates)
}

func (s *PostgresStorage) DeleteCategory(id string) error {
	return s.db.Where("id = ?", id).Delete(&models.Category{}).Error
}

// -- Menu items --

func (s *PostgresStorage) GetMenuItems(filters MenuItemFilters) ([]models.MenuItem, error) {
	query := s.db.Model(&models.MenuItem{})
	if filters.CategoryID != "" {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	if filters.IsVegetarian != nil {
		query = query.Where("is_vegetarian = ?", *filters.IsVegetarian)
	}
	if filters.IsAvailable != nil {
		query = query.Where("is_available = ?", *filters.IsAvailable)
	}
	if filters.Search != "" {
		term := "%" + filters.Search + "%"
		query = query.Where(
			"name ILIKE ? OR description ILIKE ? OR tags::text ILIKE ?",
			term, term, term,
		)
	}

	var items []models.MenuItem
	if err := query.Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStorage) GetMenuItem(id string) (models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.Where("id = ?", id).First(&item).Error; err != nil {
		return models.MenuItem{}, translate(err)
	}
	return item, nil
}

func (s *PostgresStorage) GetMenuItemWithCategory(id string) (models.MenuItemWithCategory, error) {
	item, err := s.GetMenuItem(id)
	if err != nil {
		return models.MenuItemWithCategory{}, err
	}
	category, err := s.GetCategory(item.CategoryID)
	if err != nil {
		return models.MenuItemWithCategory{}, err
	}
	return models.MenuItemWithCategory{MenuItem: item, Category: category}, nil
}

func (s *PostgresStorage) CreateMenuItem(item models.MenuItem) (models.MenuItem, error) {
	item.ID = uuid.NewString()
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
	if err := s.db.Create(&item).Error; err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}

func (s *PostgresStorage) UpdateMenuItem(id string, patch models.MenuItemPatch) (models.MenuItem, error) {
	updates := map[string]interface{}{}
	if patch.CategoryID != nil {
		updates["category_id"] = *patch.CategoryID
	}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.OriginalPrice != nil {
		updates["original_price"] = *patch.OriginalPrice
	}
	if patch.Image != nil {
		updates["image"] = *patch.Image
	}
	if patch.IsVegetarian != nil {
		updates["is_vegetarian"] = *patch.IsVegetarian
	}
	if patch.IsAvailable != nil {
		updates["is_available"] = *patch.IsAvailable
	}
	if patch.PreparationTime != nil {
		updates["preparation_time"] = *patch.PreparationTime
	}
	if patch.Rating != nil {
		updates["rating"] = *patch.Rating
	}
	if patch.ReviewCount != nil {
		updates["review_count"] = *patch.ReviewCount
	}
	if patch.Tags != nil {
		updates["tags"] = *patch.Tags
	}
	if patch.Allergens != nil {
		updates["allergens"] = *patch.Allergens
	}
	if patch.NutritionInfo != nil {
		updates["nutrition_info"] = *patch.NutritionInfo
	}
	return applyPatch[models.MenuItem](s.db, id, updates)
}

func (s *PostgresStorage) DeleteMenuItem(id string) error {
	return s.db.Where("id = ?", id).Delete(&models.MenuItem{}).Error
}

// -- Orders --

func (s *PostgresStorage) GetOrders(userID string) ([]models.Order, error) {
	query := s.db.Model(&models.Order{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *PostgresStorage) GetOrder(id string) (models.Order, error) {
	var order models.Order
	if err := s.db.Where("id = ?", id).First(&order).Error; err != nil {
		return models.Order{}, translate(err)
	}
	return order, nil
}

func (s *PostgresStorage) orderWithItems(order models.Order) (models.OrderWithItems, error) {
	user, err := s.GetUser(order.UserID)
	if err != nil {
		return models.OrderWithItems{}, translate(err)
	}

	items, err := s.GetOrderItems(order.ID)
	if err != nil {
		return models.OrderWithItems{}, err
	}

	details := make([]models.OrderItemDetail, 0, len(items))
	for _, item := range items {
		menuItem, err := s.GetMenuItem(item.MenuItemID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return models.OrderWithItems{}, err
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

func (s *PostgresStorage) GetOrderWithItems(id string) (models.OrderWithItems, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return models.OrderWithItems{}, err
	}
	return s.orderWithItems(order)
}

func (s *PostgresStorage) GetOrderByNumber(orderNumber string) (models.OrderWithItems, error) {
	var order models.Order
	if err := s.db.Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return models.OrderWithItems{}, translate(err)
	}
	return s.orderWithItems(order)
}

func (s *PostgresStorage) CreateOrderWithItems(order models.Order, items []models.OrderItem) (models.Order, error) {
	if len(items) == 0 {
		return models.Order{}, ErrEmptyOrder
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Order{}).Where("order_number = ?", order.OrderNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}

		order.ID = uuid.NewString()
		order.CreatedAt = time.Now()
		if order.Status == "" {
			order.Status = models.OrderStatusPending
		}
		if order.PaymentStatus == "" {
			order.PaymentStatus = models.PaymentStatusPending
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].ID = uuid.NewString()
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *PostgresStorage) UpdateOrderStatus(id string, status string) (models.Order, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return models.Order{}, err
	}

	updates := map[string]interface{}{"status": status}
	if status == models.OrderStatusDelivered && order.ActualDeliveryTime == nil {
		updates["actual_delivery_time"] = time.Now()
	}
	return applyPatch[models.Order](s.db, id, updates)
}

func (s *PostgresStorage) GetOrderItems(orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := s.db.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStorage) GetRecentOrders(limit int) ([]models.OrderWithItems, error) {
	if limit <= 0 {
		limit = 10
	}

	var orders []models.Order
	if err := s.db.Order("created_at desc").Limit(limit).Find(&orders).Error; err != nil {
		return nil, err
	}

	out := make([]models.OrderWithItems, 0, len(orders))
	for _, order := range orders {
		view, err := s.orderWithItems(order)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// -- Addresses --

func (s *PostgresStorage) GetUserAddresses(userID string) ([]models.Address, error) {
	var addresses []models.Address
	if err := s.db.Where("user_id = ?", userID).Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *PostgresStorage) CreateAddress(address models.Address) (models.Address, error) {
	address.ID = uuid.NewString()
	if err := s.db.Create(&address).Error; err != nil {
		return models.Address{}, err
	}
	return address, nil
}

func (s *PostgresStorage) UpdateAddress(id string, patch models.AddressPatch) (models.Address, error) {
	updates := map[string]interface{}{}
	if patch.Type != nil {
		updates["type"] = *patch.Type
	}
	if patch.AddressLine1 != nil {
		updates["address_line1"] = *patch.AddressLine1
	}
	if patch.AddressLine2 != nil {
		updates["address_line2"] = *patch.AddressLine2
	}
	if patch.City != nil {
		updates["city"] = *patch.City
	}
	if patch.State != nil {
		updates["state"] = *patch.State
	}
	if patch.PostalCode != nil {
		updates["postal_code"] = *patch.PostalCode
	}
	if patch.Landmark != nil {
		updates["landmark"] = *patch.Landmark
	}
	if patch.IsDefault != nil {
		updates["is_default"] = *patch.IsDefault
	}
	return applyPatch[models.Address](s.db, id, updates)
}

func (s *PostgresStorage) DeleteAddress(id string) error {
	return s.db.Where("id = ?", id).Delete(&models.Address{}).Error
}

// -- Reviews --

func (s *PostgresStorage) GetReviews(filters ReviewFilters) ([]models.Review, error) {
	query := s.db.Model(&models.Review{})
	if filters.MenuItemID != "" {
		query = query.Where("menu_item_id = ?", filters.MenuItemID)
	}
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	var reviews []models.Review
	if err := query.Order("created_at desc").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *PostgresStorage) CreateReview(review models.Review) (models.Review, error) {
	review.ID = uuid.NewString()
	review.CreatedAt = time.Now()
	if err := s.db.Create(&review).Error; err != nil {
		return models.Review{}, err
	}
	return review, nil
}

// -- Coupons --

func (s *PostgresStorage) GetCoupons() ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := s.db.Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (s *PostgresStorage) GetCouponByCode(code string) (models.Coupon, error) {
	var coupon models.Coupon
	if err := s.db.Where("code = ?", code).First(&coupon).Error; err != nil {
		return models.Coupon{}, translate(err)
	}
	return coupon, nil
}

func (s *PostgresStorage) CreateCoupon(coupon models.Coupon) (models.Coupon, error) {
	var count int64
	if err := s.db.Model(&models.Coupon{}).Where("code = ?", coupon.Code).Count(&count).Error; err != nil {
		return models.Coupon{}, err
	}
	if count > 0 {
		return models.Coupon{}, ErrConflict
	}

	coupon.ID = uuid.NewString()
	if coupon.MinimumOrderAmount == "" {
		coupon.MinimumOrderAmount = "0.00"
	}
	if err := s.db.Create(&coupon).Error; err != nil {
		return models.Coupon{}, err
	}
	return coupon, nil
}

func (s *PostgresStorage) UpdateCoupon(id string, patch models.CouponPatch) (models.Coupon, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.DiscountType != nil {
		updates["discount_type"] = *patch.DiscountType
	}
	if patch.DiscountValue != nil {
		updates["discount_value"] = *patch.DiscountValue
	}
	if patch.MinimumOrderAmount != nil {
		updates["minimum_order_amount"] = *patch.MinimumOrderAmount
	}
	if patch.MaxDiscountAmount != nil {
		updates["max_discount_amount"] = *patch.MaxDiscountAmount
	}
	if patch.UsageLimit != nil {
		updates["usage_limit"] = *patch.UsageLimit
	}
	if patch.UsedCount != nil {
		updates["used_count"] = *patch.UsedCount
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.ValidFrom != nil {
		updates["valid_from"] = *patch.ValidFrom
	}
	if patch.ValidUntil != nil {
		updates["valid_until"] = *patch.ValidUntil
	}
	return applyPatch[models.Coupon](s.db, id, updates)
}

// -- Admin stats --

func (s *PostgresStorage) GetAdminStats() (models.AdminStats, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var todayOrders int64
	if err := s.db.Model(&models.Order{}).Where("created_at >= ?", midnight).Count(&todayOrders).Error; err != nil {
		return models.AdminStats{}, err
	}

	var delivered []models.Order
	if err := s.db.Where("status = ?", models.OrderStatusDelivered).Find(&delivered).Error; err != nil {
		return models.AdminStats{}, err
	}
	revenue := decimal.Zero
	for _, order := range delivered {
		if total, err := decimal.NewFromString(order.TotalAmount); err == nil {
			revenue = revenue.Add(total)
		}
	}

	var userCount int64
	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return models.AdminStats{}, err
	}

	var items []models.MenuItem
	if err := s.db.Find(&items).Error; err != nil {
		return models.AdminStats{}, err
	}
	averageRating := 0.0
	if len(items) > 0 {
		sum := decimal.Zero
		for _, item := range items {
			if rating, err := decimal.NewFromString(item.Rating); err == nil {
				sum = sum.Add(rating)
			}
		}
		avg, _ := sum.Div(decimal.NewFromInt(int64(len(items)))).Float64()
		averageRating = math.Round(avg*10) / 10
	}

	stats := models.AdminStats{
		TodayOrders:     int(todayOrders),
		ActiveCustomers: int(userCount),
		AverageRating:   averageRating,
	}
	stats.Revenue, _ = revenue.Float64()
	return stats, nil
}
