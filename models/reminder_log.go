// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type ReminderLog struct {
	Base
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	QuoteID      uuid.UUID `gorm:"type:uuid;index;not null" json:"quoteId"`
	ClientID     uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"errorMessage"`
	Channel      string    `gorm:"type:varchar(20)" json:"channel"` // whatsapp, sms
	SentAt       time.Time `json:"sentAt"`
}
