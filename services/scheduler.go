package services

import (
	"context"
	"time"

	"detailpro-backend/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartScheduler registers the daily jobs and starts the cron runner. The
// caller stops the returned cron on shutdown. Reminders are skipped when no
// reminder service is given.
func StartScheduler(cfg config.JobsConfig, reminders *ReminderService, ledger *LedgerService, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	if reminders != nil {
		if _, err := c.AddFunc(cfg.ReminderCron, func() {
			reminders.SendDailyReminders(context.Background(), time.Now())
		}); err != nil {
			return nil, err
		}
	}

	if _, err := c.AddFunc(cfg.OverdueCron, func() {
		n, err := ledger.MarkOverduePlannedItems(context.Background(), time.Now())
		if err != nil {
			log.Error("Failed to mark overdue planned items", zap.Error(err))
			return
		}
		log.Info("Planned items marked overdue", zap.Int64("count", n))
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.Info("Scheduler started",
		zap.String("reminders", cfg.ReminderCron),
		zap.String("overdue", cfg.OverdueCron),
		zap.Bool("reminders_enabled", reminders != nil),
	)
	return c, nil
}
