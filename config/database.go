package config

import (
	"errors"
	"fmt"

	"detailpro-backend/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDB opens the database selected by cfg.Driver and tunes the pool.
func ConnectDB(cfg DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		if cfg.URL == "" {
			return nil, errors.New("DB_URL is required for postgres")
		}
		dialector = postgres.Open(cfg.URL)
	case "sqlite":
		dsn := cfg.URL
		if dsn == "" {
			dsn = "file:detailpro.db?_foreign_keys=on"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Info("Database migrated", zap.String("driver", cfg.Driver))
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
