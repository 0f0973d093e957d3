package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address belongs to exactly one User and is only ever written as part of a full replacement.
type Address struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"index;size:36;not null" json:"userId"`
	Type        string    `gorm:"size:32" json:"type"`
	HouseNumber string    `gorm:"size:64" json:"houseNumber"`
	Street      string    `gorm:"size:255" json:"street"`
	Landmark    string    `gorm:"size:255" json:"landmark"`
	Area        string    `gorm:"size:255" json:"area"`
	City        string    `gorm:"size:128" json:"city"`
	State       string    `gorm:"size:128" json:"state"`
	PostalCode  string    `gorm:"size:16" json:"postalCode"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	IsDefault   bool      `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
