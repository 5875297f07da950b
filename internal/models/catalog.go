package models

import "time"

type Category struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string  `json:"name" gorm:"not null"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	IsActive    bool    `json:"isActive" gorm:"not null;default:true"`
	SortOrder   int     `json:"sortOrder" gorm:"not null;default:0"`
}

type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
}

type MenuItem struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CategoryID      string      `json:"categoryId" gorm:"index;not null;type:varchar(36)"`
	Name            string      `json:"name" gorm:"not null"`
	Description     *string     `json:"description,omitempty"`
	Price           string      `json:"price" gorm:"type:varchar(32);not null"`
	OriginalPrice   *string     `json:"originalPrice,omitempty" gorm:"type:varchar(32)"`
	Image           *string     `json:"image,omitempty"`
	IsVegetarian    bool        `json:"isVegetarian" gorm:"not null;default:true"`
	IsAvailable     bool        `json:"isAvailable" gorm:"not null;default:true"`
	PreparationTime int         `json:"preparationTime" gorm:"not null;default:15"`
	Rating          string      `json:"rating" gorm:"type:varchar(32);default:'0.00'"`
	ReviewCount     int         `json:"reviewCount" gorm:"not null;default:0"`
	Tags            StringArray `json:"tags" gorm:"type:jsonb"`
	Allergens       StringArray `json:"allergens" gorm:"type:jsonb"`
	NutritionInfo   JSONMap     `json:"nutritionInfo,omitempty" gorm:"type:jsonb"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type MenuItemPatch struct {
	CategoryID      *string      `json:"categoryId,omitempty"`
	Name            *string      `json:"name,omitempty"`
	Description     *string      `json:"description,omitempty"`
	Price           *string      `json:"price,omitempty"`
	OriginalPrice   *string      `json:"originalPrice,omitempty"`
	Image           *string      `json:"image,omitempty"`
	IsVegetarian    *bool        `json:"isVegetarian,omitempty"`
	IsAvailable     *bool        `json:"isAvailable,omitempty"`
	PreparationTime *int         `json:"preparationTime,omitempty"`
	Rating          *string      `json:"rating,omitempty"`
	ReviewCount     *int         `json:"reviewCount,omitempty"`
	Tags            *StringArray `json:"tags,omitempty"`
	Allergens       *StringArray `json:"allergens,omitempty"`
	NutritionInfo   *JSONMap     `json:"nutritionInfo,omitempty"`
}

// MenuItemWithCategory is the joined projection returned by single-item reads.
type MenuItemWithCategory struct {
	MenuItem
	Category Category `json:"category"`
}
