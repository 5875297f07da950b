package storage

import (
	"fmt"

	"cloudbite/internal/models"
)

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Seed loads the development catalog and the default admin account. It is a
// no-op when categories already exist so a durable backend is not re-seeded
// on every restart.
func Seed(s Storage) error {
	existing, err := s.GetCategories()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	categories := []models.Category{
		{Name: "Pizza", Description: strPtr("Delicious handcrafted pizzas"), IsActive: true, SortOrder: 1},
		{Name: "Burgers", Description: strPtr("Gourmet burgers"), IsActive: true, SortOrder: 2},
		{Name: "Indian", Description: strPtr("Authentic Indian cuisine"), IsActive: true, SortOrder: 3},
		{Name: "Chinese", Description: strPtr("Fresh Chinese delicacies"), IsActive: true, SortOrder: 4},
	}
	ids := make([]string, 0, len(categories))
	for _, category := range categories {
		created, err := s.CreateCategory(category)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", category.Name, err)
		}
		ids = append(ids, created.ID)
	}

	items := []models.MenuItem{
		{
			CategoryID:      ids[0],
			Name:            "Margherita Pizza",
			Description:     strPtr("Fresh tomato sauce, mozzarella, and basil leaves"),
			Price:           "299.00",
			OriginalPrice:   strPtr("349.00"),
			IsVegetarian:    true,
			IsAvailable:     true,
			PreparationTime: 15,
			Rating:          "4.5",
			ReviewCount:     120,
			Tags:            models.StringArray{"popular", "classic"},
			Allergens:       models.StringArray{"gluten", "dairy"},
		},
		{
			CategoryID:      ids[1],
			Name:            "Classic Burger",
			Description:     strPtr("Beef patty, cheese, lettuce, tomato, pickles"),
			Price:           "249.00",
			IsVegetarian:    false,
			IsAvailable:     true,
			PreparationTime: 12,
			Rating:          "4.3",
			ReviewCount:     85,
			Tags:            models.StringArray{"bestseller"},
			Allergens:       models.StringArray{"gluten", "dairy"},
		},
		{
			CategoryID:      ids[2],
			Name:            "Chicken Biryani",
			Description:     strPtr("Aromatic basmati rice with spiced chicken"),
			Price:           "349.00",
			IsVegetarian:    false,
			IsAvailable:     true,
			PreparationTime: 25,
			Rating:          "4.7",
			ReviewCount:     200,
			Tags:            models.StringArray{"spicy", "aromatic"},
			Allergens:       models.StringArray{},
		},
	}
	for _, item := range items {
		if _, err := s.CreateMenuItem(item); err != nil {
			return fmt.Errorf("seed menu item %q: %w", item.Name, err)
		}
	}

	admin := models.User{
		Email:     "admin@cloudbite.com",
		Password:  "admin123", // dev-only credential
		FirstName: "Admin",
		LastName:  "User",
		Phone:     strPtr("+1234567890"),
		Role:      models.RoleAdmin,
		IsActive:  true,
	}
	if _, err := s.CreateUser(admin); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	return nil
}
