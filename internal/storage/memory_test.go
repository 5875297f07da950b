package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudbite/internal/models"
)

func seedUser(t *testing.T, s *MemoryStorage, email string) models.User {
	t.Helper()
	user, err := s.CreateUser(models.User{
		Email:     email,
		Password:  "secret",
		FirstName: "Test",
		LastName:  "User",
		Role:      models.RoleCustomer,
		IsActive:  true,
	})
	require.NoError(t, err)
	return user
}

func seedMenuItem(t *testing.T, s *MemoryStorage, categoryID, name, price string) models.MenuItem {
	t.Helper()
	item, err := s.CreateMenuItem(models.MenuItem{
		CategoryID:   categoryID,
		Name:         name,
		Price:        price,
		IsVegetarian: true,
		IsAvailable:  true,
	})
	require.NoError(t, err)
	return item
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := NewMemoryStorage()

	seedUser(t, s, "alice@example.com")
	_, err := s.CreateUser(models.User{Email: "alice@example.com", Password: "x", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetUserByEmail(t *testing.T) {
	s := NewMemoryStorage()

	created := seedUser(t, s, "bob@example.com")
	found, err := s.GetUserByEmail("bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = s.GetUserByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserMergesPatch(t *testing.T) {
	s := NewMemoryStorage()

	user := seedUser(t, s, "carol@example.com")
	name := "Caroline"
	updated, err := s.UpdateUser(user.ID, models.UserPatch{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Caroline", updated.FirstName)
	assert.Equal(t, user.LastName, updated.LastName)
	assert.Equal(t, user.Email, updated.Email)

	_, err = s.UpdateUser("missing", models.UserPatch{FirstName: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoriesSortedBySortOrder(t *testing.T) {
	s := NewMemoryStorage()

	_, err := s.CreateCategory(models.Category{Name: "Desserts", SortOrder: 3})
	require.NoError(t, err)
	_, err = s.CreateCategory(models.Category{Name: "Pizza", SortOrder: 1})
	require.NoError(t, err)
	_, err = s.CreateCategory(models.Category{Name: "Burgers", SortOrder: 2})
	require.NoError(t, err)

	categories, err := s.GetCategories()
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Pizza", categories[0].Name)
	assert.Equal(t, "Burgers", categories[1].Name)
	assert.Equal(t, "Desserts", categories[2].Name)
}

func TestDeleteCategoryIdempotent(t *testing.T) {
	s := NewMemoryStorage()

	category, err := s.CreateCategory(models.Category{Name: "Pizza"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCategory(category.ID))
	require.NoError(t, s.DeleteCategory(category.ID))

	_, err = s.GetCategory(category.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMenuItemFiltersCompose(t *testing.T) {
	s := NewMemoryStorage()

	pizza, err := s.CreateCategory(models.Category{Name: "Pizza"})
	require.NoError(t, err)
	burgers, err := s.CreateCategory(models.Category{Name: "Burgers"})
	require.NoError(t, err)

	margherita := seedMenuItem(t, s, pizza.ID, "Margherita Pizza", "299.00")
	burger, err := s.CreateMenuItem(models.MenuItem{
		CategoryID:   burgers.ID,
		Name:         "Classic Burger",
		Price:        "249.00",
		IsVegetarian: false,
		IsAvailable:  true,
		Tags:         models.StringArray{"bestseller"},
	})
	require.NoError(t, err)
	_, err = s.CreateMenuItem(models.MenuItem{
		CategoryID:   pizza.ID,
		Name:         "Pepperoni Pizza",
		Price:        "399.00",
		IsVegetarian: false,
		IsAvailable:  false,
	})
	require.NoError(t, err)

	all, err := s.GetMenuItems(MenuItemFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byCategory, err := s.GetMenuItems(MenuItemFilters{CategoryID: pizza.ID})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	veg := true
	vegOnly, err := s.GetMenuItems(MenuItemFilters{IsVegetarian: &veg})
	require.NoError(t, err)
	require.Len(t, vegOnly, 1)
	assert.Equal(t, margherita.ID, vegOnly[0].ID)

	// Filters AND together.
	available := true
	nonVeg := false
	combined, err := s.GetMenuItems(MenuItemFilters{IsVegetarian: &nonVeg, IsAvailable: &available})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, burger.ID, combined[0].ID)
}

func TestMenuItemSearchIsCaseInsensitive(t *testing.T) {
	s := NewMemoryStorage()

	category, err := s.CreateCategory(models.Category{Name: "Burgers"})
	require.NoError(t, err)
	burger, err := s.CreateMenuItem(models.MenuItem{
		CategoryID:  category.ID,
		Name:        "Classic Burger",
		Price:       "249.00",
		IsAvailable: true,
		Tags:        models.StringArray{"bestseller"},
	})
	require.NoError(t, err)
	seedMenuItem(t, s, category.ID, "Margherita Pizza", "299.00")

	byName, err := s.GetMenuItems(MenuItemFilters{Search: "BURGER"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, burger.ID, byName[0].ID)

	byTag, err := s.GetMenuItems(MenuItemFilters{Search: "bestseller"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, burger.ID, byTag[0].ID)

	none, err := s.GetMenuItems(MenuItemFilters{Search: "sushi"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMenuItemDefaultsOnCreate(t *testing.T) {
	s := NewMemoryStorage()

	item, err := s.CreateMenuItem(models.MenuItem{CategoryID: "c1", Name: "Plain", Price: "99.00"})
	require.NoError(t, err)
	assert.Equal(t, "0.00", item.Rating)
	assert.NotNil(t, item.Tags)
	assert.NotNil(t, item.Allergens)
}

func TestGetMenuItemWithCategory(t *testing.T) {
	s := NewMemoryStorage()

	category, err := s.CreateCategory(models.Category{Name: "Pizza"})
	require.NoError(t, err)
	item := seedMenuItem(t, s, category.ID, "Margherita Pizza", "299.00")

	joined, err := s.GetMenuItemWithCategory(item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, joined.ID)
	assert.Equal(t, "Pizza", joined.Category.Name)

	_, err = s.GetMenuItemWithCategory("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testOrder(userID, number string) models.Order {
	return models.Order{
		UserID:      userID,
		OrderNumber: number,
		Subtotal:    "598.00",
		TaxAmount:   "59.80",
		DeliveryFee: "0.00",
		TotalAmount: "657.80",
		DeliveryAddress: models.DeliveryAddress{
			AddressLine1: "42 Main St", City: "Mumbai", State: "MH", PostalCode: "400001",
		},
	}
}

func TestCreateOrderWithItemsRejectsEmptyBatch(t *testing.T) {
	s := NewMemoryStorage()
	user := seedUser(t, s, "dave@example.com")

	_, err := s.CreateOrderWithItems(testOrder(user.ID, "CB00000001"), nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	orders, err := s.GetOrders("")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderWithItemsDuplicateNumber(t *testing.T) {
	s := NewMemoryStorage()
	user := seedUser(t, s, "erin@example.com")
	item := seedMenuItem(t, s, "c1", "Margherita Pizza", "299.00")

	lines := []models.OrderItem{{MenuItemID: item.ID, Quantity: 2, UnitPrice: "299.00", TotalPrice: "598.00"}}

	_, err := s.CreateOrderWithItems(testOrder(user.ID, "CB00000001"), lines)
	require.NoError(t, err)

	_, err = s.CreateOrderWithItems(testOrder(user.ID, "CB00000001"), lines)
	assert.ErrorIs(t, err, ErrConflict)

	orders, err := s.GetOrders("")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestOrderLookupsAgree(t *testing.T) {
	s := NewMemoryStorage()
	user := seedUser(t, s, "frank@example.com")
	item := seedMenuItem(t, s, "c1", "Margherita Pizza", "299.00")

	lines := []models.OrderItem{{MenuItemID: item.ID, Quantity: 2, UnitPrice: "299.00", TotalPrice: "598.00"}}
	order, err := s.CreateOrderWithItems(testOrder(user.ID, "CB00000042"), lines)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)

	byID, err := s.GetOrderWithItems(order.ID)
	require.NoError(t, err)
	byNumber, err := s.GetOrderByNumber("CB00000042")
	require.NoError(t, err)
	assert.Equal(t, byID, byNumber)

	require.Len(t, byID.Items, 1)
	assert.Equal(t, order.ID, byID.Items[0].OrderID)
	assert.Equal(t, "Margherita Pizza", byID.Items[0].MenuItem.Name)
	assert.Equal(t, user.Email, byID.User.Email)
}

func TestUpdateOrderStatusStampsDeliveryTime(t *testing.T) {
	s := NewMemoryStorage()
	user := seedUser(t, s, "gwen@example.com")
	item := seedMenuItem(t, s, "c1", "Margherita Pizza", "299.00")

	lines := []models.OrderItem{{MenuItemID: item.ID, Quantity: 1, UnitPrice: "299.00", TotalPrice: "299.00"}}
	order, err := s.CreateOrderWithItems(testOrder(user.ID, "CB00000007"), lines)
	require.NoError(t, err)
	assert.Nil(t, order.ActualDeliveryTime)

	updated, err := s.UpdateOrderStatus(order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)
	assert.NotNil(t, updated.ActualDeliveryTime)

	_, err = s.UpdateOrderStatus("missing", models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRecentOrdersHonorsLimit(t *testing.T) {
	s := NewMemoryStorage()
	user := seedUser(t, s, "hank@example.com")
	item := seedMenuItem(t, s, "c1", "Margherita Pizza", "299.00")

	for i := 0; i < 5; i++ {
		lines := []models.OrderItem{{MenuItemID: item.ID, Quantity: 1, UnitPrice: "299.00", TotalPrice: "299.00"}}
		order := testOrder(user.ID, "CB0000010"+string(rune('0'+i)))
		_, err := s.CreateOrderWithItems(order, lines)
		require.NoError(t, err)
	}

	recent, err := s.GetRecentOrders(3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	// Newest first; same-timestamp ties resolve by insertion order.
	assert.Equal(t, "CB00000104", recent[0].OrderNumber)
	assert.Equal(t, "CB00000103", recent[1].OrderNumber)
	assert.Equal(t, "CB00000102", recent[2].OrderNumber)
}

func TestGetOrdersFiltersByUser(t *testing.T) {
	s := NewMemoryStorage()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	item := seedMenuItem(t, s, "c1", "Margherita Pizza", "299.00")

	lines := []models.OrderItem{{MenuItemID: item.ID, Quantity: 1, UnitPrice: "299.00", TotalPrice: "299.00"}}
	_, err := s.CreateOrderWithItems(testOrder(alice.ID, "CB00000201"), lines)
	require.NoError(t, err)
	_, err = s.CreateOrderWithItems(testOrder(bob.ID, "CB00000202"), lines)
	require.NoError(t, err)

	aliceOrders, err := s.GetOrders(alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceOrders, 1)
	assert.Equal(t, alice.ID, aliceOrders[0].UserID)

	all, err := s.GetOrders("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAddressLifecycle(t *testing.T) {
	s := NewMemoryStorage()
	user := seedUser(t, s, "ivy@example.com")

	address, err := s.CreateAddress(models.Address{
		UserID:       user.ID,
		Type:         "home",
		AddressLine1: "42 Main St",
		City:         "Mumbai",
		State:        "MH",
		PostalCode:   "400001",
	})
	require.NoError(t, err)

	city := "Pune"
	updated, err := s.UpdateAddress(address.ID, models.AddressPatch{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Pune", updated.City)
	assert.Equal(t, "42 Main St", updated.AddressLine1)

	require.NoError(t, s.DeleteAddress(address.ID))
	require.NoError(t, s.DeleteAddress(address.ID))

	addresses, err := s.GetUserAddresses(user.ID)
	require.NoError(t, err)
	assert.Empty(t, addresses)
}

func TestReviewFilters(t *testing.T) {
	s := NewMemoryStorage()
	user := seedUser(t, s, "jane@example.com")
	item := seedMenuItem(t, s, "c1", "Margherita Pizza", "299.00")

	_, err := s.CreateReview(models.Review{UserID: user.ID, OrderID: "o1", MenuItemID: &item.ID, Rating: 5})
	require.NoError(t, err)
	_, err = s.CreateReview(models.Review{UserID: user.ID, OrderID: "o2", Rating: 3})
	require.NoError(t, err)

	byItem, err := s.GetReviews(ReviewFilters{MenuItemID: item.ID})
	require.NoError(t, err)
	assert.Len(t, byItem, 1)

	byUser, err := s.GetReviews(ReviewFilters{UserID: user.ID})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)
}

func TestCouponCodeUnique(t *testing.T) {
	s := NewMemoryStorage()

	coupon, err := s.CreateCoupon(models.Coupon{Code: "WELCOME10", Name: "Welcome", DiscountType: "percentage", DiscountValue: "10.00"})
	require.NoError(t, err)
	assert.Equal(t, "0.00", coupon.MinimumOrderAmount)

	_, err = s.CreateCoupon(models.Coupon{Code: "WELCOME10", Name: "Again", DiscountType: "percentage", DiscountValue: "5.00"})
	assert.ErrorIs(t, err, ErrConflict)

	found, err := s.GetCouponByCode("WELCOME10")
	require.NoError(t, err)
	assert.Equal(t, coupon.ID, found.ID)
}

func TestAdminStatsEmptyStore(t *testing.T) {
	s := NewMemoryStorage()

	stats, err := s.GetAdminStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TodayOrders)
	assert.Equal(t, 0.0, stats.Revenue)
	assert.Equal(t, 0, stats.ActiveCustomers)
	assert.Equal(t, 0.0, stats.AverageRating)
}

func TestAdminStatsAggregates(t *testing.T) {
	s := NewMemoryStorage()
	user := seedUser(t, s, "kim@example.com")

	item, err := s.CreateMenuItem(models.MenuItem{CategoryID: "c1", Name: "A", Price: "100.00", Rating: "4.50"})
	require.NoError(t, err)
	_, err = s.CreateMenuItem(models.MenuItem{CategoryID: "c1", Name: "B", Price: "100.00", Rating: "3.60"})
	require.NoError(t, err)

	lines := []models.OrderItem{{MenuItemID: item.ID, Quantity: 1, UnitPrice: "100.00", TotalPrice: "100.00"}}

	delivered := testOrder(user.ID, "CB00000301")
	delivered.TotalAmount = "657.80"
	created, err := s.CreateOrderWithItems(delivered, lines)
	require.NoError(t, err)
	_, err = s.UpdateOrderStatus(created.ID, models.OrderStatusDelivered)
	require.NoError(t, err)

	pending := testOrder(user.ID, "CB00000302")
	pending.TotalAmount = "999.00"
	_, err = s.CreateOrderWithItems(pending, lines)
	require.NoError(t, err)

	stats, err := s.GetAdminStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TodayOrders)
	assert.InDelta(t, 657.80, stats.Revenue, 0.001)
	assert.Equal(t, 1, stats.ActiveCustomers)
	assert.InDelta(t, 4.1, stats.AverageRating, 0.001)
}
