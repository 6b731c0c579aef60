package services

import (
	"testing"

	"detailpro-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "secret123", Name: "Owner"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedAccount(t *testing.T, db *gorm.DB, userID uuid.UUID, balance int64) models.FinancialAccount {
	t.Helper()
	a := models.FinancialAccount{UserID: userID, Name: "Main", Type: models.AccountTypeBank, Balance: decimal.NewFromInt(balance)}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func balanceOf(t *testing.T, db *gorm.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()
	var a models.FinancialAccount
	require.NoError(t, db.First(&a, "id = ?", id).Error)
	return a.Balance
}
