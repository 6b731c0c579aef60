package services

import (
	"context"
	"testing"
	"time"

	"detailpro-backend/models"
	"detailpro-backend/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func TestDashboard(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, zap.NewNop())
	reports, err := NewReportService(db)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedUser(t, db, "dash@example.com")
	other := seedUser(t, db, "otherdash@example.com")
	seedAccount(t, db, user.ID, 100)
	seedAccount(t, db, other.ID, 999)

	now := time.Now()
	sale := func(userID uuid.UUID, services []pricing.QuotedService, total float64) {
		q := &models.Quote{
			UserID:          userID,
			ServicesSummary: datatypes.NewJSONType(services),
			TotalPrice:      total,
			NetProfit:       total / 2,
			Status:          models.QuoteStatusPending,
			Installments:    1,
		}
		require.NoError(t, ledger.RecordSale(ctx, q, CloseSaleInput{Date: now}))
	}
	sale(user.ID, []pricing.QuotedService{{Name: "Wash", Price: 50}, {Name: "Wax", Price: 150}}, 200)
	sale(user.ID, []pricing.QuotedService{{Name: "Wash", Price: 50}}, 50)
	sale(other.ID, []pricing.QuotedService{{Name: "Wash", Price: 50}}, 50)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	pending := &models.Quote{
		UserID:           user.ID,
		ManualClientName: "Carlos",
		ServicesSummary:  datatypes.NewJSONType([]pricing.QuotedService{{Name: "Polish", Price: 300}}),
		TotalPrice:       300,
		Status:           models.QuoteStatusPending,
		ScheduledDate:    &today,
		ScheduledTime:    "08:00",
	}
	require.NoError(t, db.Create(pending).Error)

	require.NoError(t, db.Create(&models.PlannedItem{
		UserID:  user.ID,
		Type:    models.PlannedReceivable,
		Amount:  decimal.NewFromInt(40),
		DueDate: now,
		Status:  models.PlannedStatusPending,
	}).Error)
	require.NoError(t, db.Create(&models.Client{UserID: user.ID, Name: "Carlos"}).Error)

	d, err := reports.Dashboard(ctx, user.ID, now)
	require.NoError(t, err)

	assert.Equal(t, 250.0, d.MonthRevenue)
	assert.Equal(t, 2, d.MonthSales)
	assert.Equal(t, 125.0, d.AverageTicket)
	assert.Equal(t, 125.0, d.MonthNetProfit)
	assert.Equal(t, 100.0, d.MonthGrowth)
	assert.Equal(t, 1, d.PendingQuotes)
	assert.Equal(t, 1, d.TotalClients)
	assert.True(t, d.TotalBalance.Equal(decimal.NewFromInt(100)), d.TotalBalance.String())
	assert.True(t, d.PendingReceivable.Equal(decimal.NewFromInt(40)))
	assert.True(t, d.PendingPayable.IsZero())

	require.Len(t, d.TodayAgenda, 1)
	assert.Equal(t, "Carlos", d.TodayAgenda[0].Client)
	assert.Equal(t, "Polish", d.TodayAgenda[0].Services)
	assert.Equal(t, pending.ID, d.TodayAgenda[0].QuoteID)

	require.Len(t, d.TopServices, 2)
	assert.Equal(t, ServiceSummary{Name: "Wax", Count: 1, Revenue: 150}, d.TopServices[0])
	assert.Equal(t, ServiceSummary{Name: "Wash", Count: 2, Revenue: 100}, d.TopServices[1])
}

func TestGrowthPercentage(t *testing.T) {
	assert.Equal(t, 0.0, GrowthPercentage(0, 0))
	assert.Equal(t, 100.0, GrowthPercentage(10, 0))
	assert.Equal(t, 50.0, GrowthPercentage(150, 100))
	assert.Equal(t, -25.0, GrowthPercentage(75, 100))
}
