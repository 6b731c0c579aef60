package models

import (
	"database/sql/driver"
	"detailpro-backend/utils"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Base carries the identity and timestamps shared by every table.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Password     string `gorm:"not null" json:"-"`
	Name         string `gorm:"not null" json:"name"`
	Phone        string `json:"phone"`
	BusinessName string `json:"businessName"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`

	Settings *UserSettings `gorm:"foreignKey:UserID" json:"settings,omitempty"`
}

// Initialize UUID and hash the password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if err = u.Base.BeforeCreate(tx); err != nil {
		return err
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}

// DayHours is the opening time of one weekday.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WorkingHours maps a lowercase weekday name to its opening hours.
type WorkingHours map[string]DayHours

var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func DefaultWorkingHours() WorkingHours {
	wh := WorkingHours{}
	for _, day := range Weekdays {
		wh[day] = DayHours{Open: "08:00", Close: "18:00"}
	}
	wh["saturday"] = DayHours{Open: "08:00", Close: "12:00"}
	wh["sunday"] = DayHours{Closed: true}
	return wh
}

func (w WorkingHours) Value() (driver.Value, error) {
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (w *WorkingHours) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*w = WorkingHours{}
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, w)
}

func (WorkingHours) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
