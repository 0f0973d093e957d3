package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a profile keyed by the identity provider's uid.
type User struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"id"`
	SupabaseUID        string     `gorm:"column:supabase_uid;uniqueIndex;size:128;not null" json:"supabaseUid"`
	Email              string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone              *string    `gorm:"size:32" json:"phone"`
	Name               *string    `gorm:"size:255" json:"name"`
	Title              *string    `gorm:"size:64" json:"title"`
	BirthDate          *time.Time `json:"birthDate"`
	Gender             *string    `gorm:"size:32" json:"gender"`
	BloodGroup         *string    `gorm:"size:8" json:"bloodGroup"`
	Height             *int       `json:"height"`
	Weight             *int       `json:"weight"`
	MaritalStatus      *string    `gorm:"size:32" json:"maritalStatus"`
	ContactNumber      *string    `gorm:"size:32" json:"contactNumber"`
	AlternateNumber    *string    `gorm:"size:32" json:"alternateNumber"`
	SmokingHabit       *string    `gorm:"size:64" json:"smokingHabit"`
	AlcoholConsumption *string    `gorm:"size:64" json:"alcoholConsumption"`
	ActivityLevel      *string    `gorm:"size:64" json:"activityLevel"`
	DietHabit          *string    `gorm:"size:64" json:"dietHabit"`
	Occupation         *string    `gorm:"size:128" json:"occupation"`
	Allergies          StringList `gorm:"type:text" json:"allergies"`
	Medications        StringList `gorm:"type:text" json:"medications"`
	ChronicDiseases    StringList `gorm:"type:text" json:"chronicDiseases"`
	Injuries           StringList `gorm:"type:text" json:"injuries"`
	Surgeries          StringList `gorm:"type:text" json:"surgeries"`
	CreatedAt          time.Time  `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime:false" json:"updatedAt"`
	Addresses          []Address  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
