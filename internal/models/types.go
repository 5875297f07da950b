package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringArray stores a string slice as a json column so the same model works
// against postgres and in memory.
type StringArray []string

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StringArray: %v", value)
	}
	return json.Unmarshal(bytes, a)
}

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// JSONMap stores free-form json objects (nutrition info).
type JSONMap map[string]interface{}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONMap: %v", value)
	}
	return json.Unmarshal(bytes, m)
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// DeliveryAddress is the structured address snapshot captured on an order at
// creation time. It is stored by value, not as a reference, so later address
// edits never change past orders.
type DeliveryAddress struct {
	Type         string  `json:"type,omitempty"`
	AddressLine1 string  `json:"addressLine1" binding:"required"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city" binding:"required"`
	State        string  `json:"state" binding:"required"`
	PostalCode   string  `json:"postalCode" binding:"required"`
	Landmark     *string `json:"landmark,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

func (d *DeliveryAddress) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan DeliveryAddress: %v", value)
	}
	return json.Unmarshal(bytes, d)
}

func (d DeliveryAddress) Value() (driver.Value, error) {
	return json.Marshal(d)
}
