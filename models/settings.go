package models

import (
	"detailpro-backend/pricing"

	"github.com/google/uuid"
)

// UserSettings holds the per-business knobs used by the quote calculator and
// the reminder scheduler.
type UserSettings struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`

	CostCalculationMode string       `gorm:"type:varchar(20);not null" json:"costCalculationMode"`
	DefaultMarginPct    float64      `gorm:"type:decimal(5,2)" json:"defaultMarginPct"`
	WorkingHours        WorkingHours `json:"workingHours"`

	AppointmentReminders  bool   `json:"appointmentReminders"`
	WhatsAppNotifications bool   `json:"whatsAppNotifications"`
	SMSNotifications      bool   `json:"smsNotifications"`
	ReminderMessage       string `gorm:"type:text" json:"reminderMessage"`
}

const DefaultReminderMessage = "Hi [ClientName], this is a reminder of your [Services] appointment on [Date] at [Time]. See you soon!"

func DefaultSettings(userID uuid.UUID) UserSettings {
	return UserSettings{
		UserID:               userID,
		CostCalculationMode:  pricing.CostModePerService,
		DefaultMarginPct:     30,
		WorkingHours:         DefaultWorkingHours(),
		AppointmentReminders: true,
		ReminderMessage:      DefaultReminderMessage,
	}
}

// Schedule converts the stored opening hours into the weekly schedule used by
// the hourly cost calculation. Closed days have no start or end.
func (s UserSettings) Schedule() pricing.WeeklySchedule {
	week := make(pricing.WeeklySchedule, 0, len(Weekdays))
	for _, day := range Weekdays {
		h, ok := s.WorkingHours[day]
		if !ok || h.Closed {
			week = append(week, pricing.DaySchedule{Day: day})
			continue
		}
		week = append(week, pricing.DaySchedule{Day: day, Start: h.Open, End: h.Close})
	}
	return week
}

type OperationalCost struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Name   string    `gorm:"not null" json:"name"`
	Type   string    `gorm:"type:varchar(10);not null" json:"type"` // fixed, variable
	Value  float64   `gorm:"type:decimal(12,2);not null" json:"value"`
}

func (c OperationalCost) ToPricing() pricing.OperationalCost {
	return pricing.OperationalCost{Name: c.Name, Type: c.Type, Value: c.Value}
}
