package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Client struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`

	Name     string `gorm:"not null" json:"name"`
	Document string `gorm:"index" json:"document"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`

	ZipCode      string `json:"zipCode"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `gorm:"type:varchar(2)" json:"state"`
	Notes        string `gorm:"type:text" json:"notes"`

	Vehicles []Vehicle `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"vehicles"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Vehicle struct {
	Base
	UserID   uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`

	Brand string `gorm:"not null" json:"brand"`
	Model string `gorm:"not null" json:"model"`
	Plate string `gorm:"index" json:"plate"`
	Year  int    `json:"year"`
	Color string `json:"color"`
}

// Label is the short description used in reminders and sale summaries.
func (v Vehicle) Label() string {
	label := v.Brand + " " + v.Model
	if v.Plate != "" {
		label += " (" + v.Plate + ")"
	}
	return label
}
