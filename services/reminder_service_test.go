package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"detailpro-backend/models"
	"detailpro-backend/pricing"
	"detailpro-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type sentMessage struct {
	channel, to, body string
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, channel, to, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{channel, to, body})
	return "SM123", nil
}

func seedScheduledQuote(t *testing.T, db *gorm.DB, userID uuid.UUID, phone string, day time.Time) models.Quote {
	t.Helper()
	client := models.Client{UserID: userID, Name: "Maria", Phone: phone}
	require.NoError(t, db.Create(&client).Error)

	q := models.Quote{
		UserID:          userID,
		ClientID:        &client.ID,
		ServicesSummary: datatypes.NewJSONType([]pricing.QuotedService{{Name: "Wash"}, {Name: "Wax"}}),
		TotalPrice:      150,
		Status:          models.QuoteStatusAccepted,
		ScheduledDate:   &day,
		ScheduledTime:   "10:00",
	}
	require.NoError(t, db.Create(&q).Error)
	return q
}

func TestSendDailyReminders(t *testing.T) {
	db := setupTestDB(t)
	sender := &fakeSender{}
	reminders := NewReminderService(db, sender, zap.NewNop())
	user := seedUser(t, db, "remind@example.com")

	settings := models.DefaultSettings(user.ID)
	settings.SMSNotifications = true
	settings.ReminderMessage = "Hi [ClientName], [Services] on [Date] at [Time]"
	require.NoError(t, db.Create(&settings).Error)

	now := time.Now()
	tomorrow := utils.BeginningOfDay(now).AddDate(0, 0, 1)
	seedScheduledQuote(t, db, user.ID, "(11) 98765-4321", tomorrow)
	seedScheduledQuote(t, db, user.ID, "+5511900000000", tomorrow.AddDate(0, 0, 3))

	reminders.SendDailyReminders(context.Background(), now)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, ChannelSMS, sender.sent[0].channel)
	assert.Equal(t, "+11987654321", sender.sent[0].to)
	assert.Equal(t, "Hi Maria, Wash, Wax on "+tomorrow.Format("02/01/2006")+" at 10:00", sender.sent[0].body)

	var logs []models.ReminderLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, ReminderSent, logs[0].Status)

	// A second run does not remind the same appointment twice.
	reminders.SendDailyReminders(context.Background(), now)
	assert.Len(t, sender.sent, 1)
}

func TestProcessUserRemindersLogsFailures(t *testing.T) {
	db := setupTestDB(t)
	sender := &fakeSender{err: errors.New("twilio down")}
	reminders := NewReminderService(db, sender, zap.NewNop())
	user := seedUser(t, db, "fail@example.com")

	settings := models.DefaultSettings(user.ID)
	settings.WhatsAppNotifications = true
	tomorrow := utils.BeginningOfDay(time.Now()).AddDate(0, 0, 1)
	q := seedScheduledQuote(t, db, user.ID, "+5511912345678", tomorrow)

	sent, err := reminders.ProcessUserReminders(context.Background(), settings, tomorrow, tomorrow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, sent)

	var entry models.ReminderLog
	require.NoError(t, db.First(&entry, "quote_id = ?", q.ID).Error)
	assert.Equal(t, ReminderFailed, entry.Status)
	assert.Equal(t, ChannelWhatsApp, entry.Channel)
	assert.Equal(t, "twilio down", entry.ErrorMessage)
}

func TestProcessUserRemindersNoChannel(t *testing.T) {
	db := setupTestDB(t)
	sender := &fakeSender{}
	reminders := NewReminderService(db, sender, zap.NewNop())
	user := seedUser(t, db, "quiet@example.com")

	tomorrow := utils.BeginningOfDay(time.Now()).AddDate(0, 0, 1)
	seedScheduledQuote(t, db, user.ID, "+5511912345678", tomorrow)

	sent, err := reminders.ProcessUserReminders(context.Background(), models.DefaultSettings(user.ID), tomorrow, tomorrow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, sender.sent)
}

func TestRenderReminder(t *testing.T) {
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.Local)
	q := models.Quote{
		ManualClientName: "Ana",
		ServicesSummary:  datatypes.NewJSONType([]pricing.QuotedService{{Name: "Polish"}}),
		ScheduledDate:    &day,
		ScheduledTime:    "14:30",
		Vehicle:          &models.Vehicle{Brand: "Honda", Model: "Fit", Plate: "ABC1D23"},
	}

	got := RenderReminder(models.DefaultReminderMessage+" [Vehicle]", q)
	assert.Equal(t, "Hi Ana, this is a reminder of your Polish appointment on 04/05/2026 at 14:30. See you soon! Honda Fit (ABC1D23)", got)
}
