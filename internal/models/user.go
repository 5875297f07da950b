package models

import "time"

const (
	RoleCustomer     = "customer"
	RoleAdmin        = "admin"
	RoleKitchenStaff = "kitchen_staff"
)

type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	FirstName string    `json:"firstName" gorm:"not null"`
	LastName  string    `json:"lastName" gorm:"not null"`
	Phone     *string   `json:"phone,omitempty" gorm:"type:varchar(15)"`
	Role      string    `json:"role" gorm:"not null;default:customer"`
	IsActive  bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is the reduced projection joined into order views. The
// credential never leaves the storage layer.
type UserSummary struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// UserPatch names the mutable user fields. Absent fields keep their value.
type UserPatch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      *string `json:"role,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
	Password  *string `json:"password,omitempty"`
}

type Address struct {
	ID           string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string  `json:"userId" gorm:"index;not null;type:varchar(36)"`
	Type         string  `json:"type" gorm:"not null"`
	AddressLine1 string  `json:"addressLine1" gorm:"not null"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city" gorm:"not null"`
	State        string  `json:"state" gorm:"not null"`
	PostalCode   string  `json:"postalCode" gorm:"type:varchar(10);not null"`
	Landmark     *string `json:"landmark,omitempty"`
	IsDefault    bool    `json:"isDefault" gorm:"not null;default:false"`
}

type AddressPatch struct {
	Type         *string `json:"type,omitempty"`
	AddressLine1 *string `json:"addressLine1,omitempty"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	PostalCode   *string `json:"postalCode,omitempty"`
	Landmark     *string `json:"landmark,omitempty"`
	IsDefault    *bool   `json:"isDefault,omitempty"`
}
