// services/reminder_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"detailpro-backend/config"
	"detailpro-backend/models"
	"detailpro-backend/utils"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"

	ReminderSent   = "sent"
	ReminderFailed = "failed"
)

// MessageSender delivers a text message and returns the provider message id.
type MessageSender interface {
	Send(ctx context.Context, channel, to, body string) (string, error)
}

type TwilioSender struct {
	client       *twilio.RestClient
	phoneNumber  string
	whatsAppFrom string
}

func NewTwilioSender(cfg config.TwilioConfig) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		phoneNumber:  cfg.PhoneNumber,
		whatsAppFrom: cfg.WhatsAppNumber,
	}
}

func (s *TwilioSender) Send(_ context.Context, channel, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)
	if channel == ChannelWhatsApp {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + s.whatsAppFrom)
	} else {
		params.SetTo(to)
		params.SetFrom(s.phoneNumber)
	}

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// ReminderService texts clients the day before a scheduled service.
type ReminderService struct {
	db     *gorm.DB
	sender MessageSender
	log    *zap.Logger
}

func NewReminderService(db *gorm.DB, sender MessageSender, log *zap.Logger) *ReminderService {
	return &ReminderService{db: db, sender: sender, log: log}
}

// SendDailyReminders handles every user with reminders enabled. Appointments
// on the day after now are reminded.
func (s *ReminderService) SendDailyReminders(ctx context.Context, now time.Time) {
	s.log.Info("Starting daily reminder processing")

	var settings []models.UserSettings
	if err := s.db.WithContext(ctx).Where("appointment_reminders = ?", true).Find(&settings).Error; err != nil {
		s.log.Error("Failed to fetch reminder settings", zap.Error(err))
		return
	}

	start := utils.BeginningOfDay(now).AddDate(0, 0, 1)
	end := start.AddDate(0, 0, 1)
	for _, us := range settings {
		sent, err := s.ProcessUserReminders(ctx, us, start, end)
		if err != nil {
			s.log.Error("Failed to process reminders",
				zap.String("user_id", us.UserID.String()),
				zap.Error(err),
			)
			continue
		}
		if sent > 0 {
			s.log.Info("Reminders sent",
				zap.String("user_id", us.UserID.String()),
				zap.Int("count", sent),
			)
		}
	}

	s.log.Info("Daily reminder processing completed")
}

// ProcessUserReminders sends one reminder per quote scheduled in [start, end)
// and logs every attempt. Quotes already reminded successfully are skipped.
func (s *ReminderService) ProcessUserReminders(ctx context.Context, us models.UserSettings, start, end time.Time) (int, error) {
	channel := reminderChannel(us)
	if channel == "" {
		return 0, nil
	}

	var quotes []models.Quote
	err := s.db.WithContext(ctx).Preload("Client").Preload("Vehicle").
		Where("user_id = ? AND client_id IS NOT NULL AND scheduled_date >= ? AND scheduled_date < ?", us.UserID, start, end).
		Where("status IN ?", []string{models.QuoteStatusPending, models.QuoteStatusAccepted}).
		Order("scheduled_date, scheduled_time").
		Find(&quotes).Error
	if err != nil {
		return 0, err
	}

	template := us.ReminderMessage
	if strings.TrimSpace(template) == "" {
		template = models.DefaultReminderMessage
	}

	sent := 0
	for _, q := range quotes {
		if q.Client == nil {
			continue
		}
		done, err := s.alreadyReminded(ctx, q.ID)
		if err != nil {
			return sent, err
		}
		if done {
			continue
		}

		if s.deliver(ctx, us.UserID, q, channel, RenderReminder(template, q)) {
			sent++
		}
	}
	return sent, nil
}

func (s *ReminderService) deliver(ctx context.Context, userID uuid.UUID, q models.Quote, channel, message string) bool {
	entry := models.ReminderLog{
		UserID:   userID,
		QuoteID:  q.ID,
		ClientID: q.Client.ID,
		Message:  message,
		Status:   ReminderSent,
		Channel:  channel,
		SentAt:   time.Now(),
	}

	phone := normalizePhone(q.Client.Phone)
	var sid string
	var err error
	if !utils.ValidatePhone(phone) {
		err = errors.New("invalid phone number")
	} else {
		sid, err = s.sender.Send(ctx, channel, phone, message)
	}

	if err != nil {
		s.log.Warn("Failed to send reminder",
			zap.String("quote_id", q.ID.String()),
			zap.String("channel", channel),
			zap.Error(err),
		)
		entry.Status = ReminderFailed
		entry.ErrorMessage = err.Error()
	} else {
		s.log.Debug("Reminder sent", zap.String("quote_id", q.ID.String()), zap.String("sid", sid))
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Error("Failed to log reminder", zap.String("quote_id", q.ID.String()), zap.Error(err))
	}
	return entry.Status == ReminderSent
}

func (s *ReminderService) alreadyReminded(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ReminderLog{}).
		Where("quote_id = ? AND status = ?", quoteID, ReminderSent).
		Count(&count).Error
	return count > 0, err
}

// WhatsApp wins when both channels are enabled.
func reminderChannel(us models.UserSettings) string {
	switch {
	case us.WhatsAppNotifications:
		return ChannelWhatsApp
	case us.SMSNotifications:
		return ChannelSMS
	default:
		return ""
	}
}

// RenderReminder fills the placeholders of a reminder template.
func RenderReminder(template string, q models.Quote) string {
	date, vehicle := "", q.ManualVehicleInfo
	if q.ScheduledDate != nil {
		date = q.ScheduledDate.Format("02/01/2006")
	}
	if q.Vehicle != nil {
		vehicle = q.Vehicle.Label()
	}

	r := strings.NewReplacer(
		"[ClientName]", q.ClientLabel(),
		"[Services]", q.ServiceNames(),
		"[Date]", date,
		"[Time]", q.ScheduledTime,
		"[Vehicle]", vehicle,
	)
	return r.Replace(template)
}

func normalizePhone(phone string) string {
	digits := utils.OnlyDigits(phone)
	if digits == "" {
		return ""
	}
	return "+" + digits
}
