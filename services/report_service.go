// services/report_service.go
package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"detailpro-backend/pricing"
	"detailpro-backend/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportService runs the dashboard aggregates with plain SQL over the same
// connection pool gorm uses.
type ReportService struct {
	db *sqlx.DB
}

// NewReportService wraps the gorm pool in sqlx.
func NewReportService(gdb *gorm.DB) (*ReportService, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	driver := gdb.Dialector.Name()
	if driver == "sqlite" {
		driver = "sqlite3"
	}
	return &ReportService{db: sqlx.NewDb(sqlDB, driver)}, nil
}

type Dashboard struct {
	MonthRevenue      float64          `json:"monthRevenue"`
	LastMonthRevenue  float64          `json:"lastMonthRevenue"`
	MonthGrowth       float64          `json:"monthGrowth"`
	MonthSales        int              `json:"monthSales"`
	AverageTicket     float64          `json:"averageTicket"`
	MonthNetProfit    float64          `json:"monthNetProfit"`
	PendingQuotes     int              `json:"pendingQuotes"`
	TotalClients      int              `json:"totalClients"`
	TotalBalance      decimal.Decimal  `json:"totalBalance"`
	PendingReceivable decimal.Decimal  `json:"pendingReceivable"`
	PendingPayable    decimal.Decimal  `json:"pendingPayable"`
	TodayAgenda       []AgendaEntry    `json:"todayAgenda"`
	TopServices       []ServiceSummary `json:"topServices"`
}

type AgendaEntry struct {
	QuoteID       uuid.UUID `json:"quoteId"`
	Client        string    `json:"client"`
	ScheduledTime string    `json:"scheduledTime"`
	Services      string    `json:"services"`
	Status        string    `json:"status"`
	TotalPrice    float64   `json:"totalPrice"`
}

type ServiceSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type salesTotals struct {
	Count     int     `db:"count"`
	Revenue   float64 `db:"revenue"`
	NetProfit float64 `db:"net_profit"`
}

type agendaRow struct {
	ID               string                                      `db:"id"`
	ClientName       *string                                     `db:"client_name"`
	ManualClientName *string                                     `db:"manual_client_name"`
	ScheduledTime    *string                                     `db:"scheduled_time"`
	Status           string                                      `db:"status"`
	TotalPrice       float64                                     `db:"total_price"`
	Services         datatypes.JSONType[[]pricing.QuotedService] `db:"services_summary"`
}

// Dashboard summarizes the month of now for the user.
func (s *ReportService) Dashboard(ctx context.Context, userID uuid.UUID, now time.Time) (*Dashboard, error) {
	monthStart := utils.BeginningOfMonth(now)
	nextMonth := monthStart.AddDate(0, 1, 0)
	lastMonth := monthStart.AddDate(0, -1, 0)

	current, err := s.salesTotals(ctx, userID, monthStart, nextMonth)
	if err != nil {
		return nil, err
	}
	previous, err := s.salesTotals(ctx, userID, lastMonth, monthStart)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		MonthRevenue:     current.Revenue,
		LastMonthRevenue: previous.Revenue,
		MonthGrowth:      GrowthPercentage(current.Revenue, previous.Revenue),
		MonthSales:       current.Count,
		MonthNetProfit:   current.NetProfit,
	}
	if current.Count > 0 {
		d.AverageTicket = current.Revenue / float64(current.Count)
	}

	if err := s.count(ctx, &d.PendingQuotes,
		`SELECT COUNT(*) FROM quotes WHERE user_id = ? AND status = 'pending' AND is_sale = ?`, userID, false); err != nil {
		return nil, err
	}
	if err := s.count(ctx, &d.TotalClients,
		`SELECT COUNT(*) FROM clients WHERE user_id = ? AND deleted_at IS NULL`, userID); err != nil {
		return nil, err
	}

	if d.TotalBalance, err = s.sum(ctx,
		`SELECT COALESCE(SUM(balance), 0) FROM financial_accounts WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	if d.PendingReceivable, err = s.sum(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM planned_items WHERE user_id = ? AND type = 'receivable' AND status <> 'realized'`, userID); err != nil {
		return nil, err
	}
	if d.PendingPayable, err = s.sum(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM planned_items WHERE user_id = ? AND type = 'payable' AND status <> 'realized'`, userID); err != nil {
		return nil, err
	}

	if d.TodayAgenda, err = s.agenda(ctx, userID, utils.BeginningOfDay(now), utils.BeginningOfDay(now).AddDate(0, 0, 1)); err != nil {
		return nil, err
	}
	if d.TopServices, err = s.topServices(ctx, userID, monthStart, nextMonth, 5); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *ReportService) salesTotals(ctx context.Context, userID uuid.UUID, start, end time.Time) (salesTotals, error) {
	var t salesTotals
	query := s.db.Rebind(`
		SELECT COUNT(*) AS count,
			COALESCE(SUM(total_price), 0) AS revenue,
			COALESCE(SUM(net_profit), 0) AS net_profit
		FROM quotes
		WHERE user_id = ? AND is_sale = ? AND closed_at >= ? AND closed_at < ?`)
	err := s.db.GetContext(ctx, &t, query, userID, true, start, end)
	return t, err
}

func (s *ReportService) count(ctx context.Context, dest *int, query string, args ...interface{}) error {
	return s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *ReportService) sum(ctx context.Context, query string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.GetContext(ctx, &total, s.db.Rebind(query), args...)
	return total, err
}

func (s *ReportService) agenda(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]AgendaEntry, error) {
	var rows []agendaRow
	query := s.db.Rebind(`
		SELECT q.id, c.name AS client_name, q.manual_client_name, q.scheduled_time,
			q.status, q.total_price, q.services_summary
		FROM quotes q
		LEFT JOIN clients c ON c.id = q.client_id
		WHERE q.user_id = ? AND q.scheduled_date >= ? AND q.scheduled_date < ?
			AND q.status <> 'rejected'
		ORDER BY q.scheduled_date, q.scheduled_time`)
	if err := s.db.SelectContext(ctx, &rows, query, userID, start, end); err != nil {
		return nil, err
	}

	entries := make([]AgendaEntry, 0, len(rows))
	for _, r := range rows {
		id, _ := uuid.Parse(r.ID)
		var names []string
		for _, svc := range r.Services.Data() {
			names = append(names, svc.Name)
		}
		entries = append(entries, AgendaEntry{
			QuoteID:       id,
			Client:        firstNonEmpty(r.ClientName, r.ManualClientName),
			ScheduledTime: firstNonEmpty(r.ScheduledTime),
			Services:      strings.Join(names, ", "),
			Status:        r.Status,
			TotalPrice:    r.TotalPrice,
		})
	}
	return entries, nil
}

// topServices ranks the services sold in the period by revenue. The services
// live in each sale's JSON snapshot, so the ranking is done here rather than in
// SQL.
func (s *ReportService) topServices(ctx context.Context, userID uuid.UUID, start, end time.Time, limit int) ([]ServiceSummary, error) {
	var snapshots []datatypes.JSONType[[]pricing.QuotedService]
	query := s.db.Rebind(`
		SELECT services_summary FROM quotes
		WHERE user_id = ? AND is_sale = ? AND closed_at >= ? AND closed_at < ?`)
	if err := s.db.SelectContext(ctx, &snapshots, query, userID, true, start, end); err != nil {
		return nil, err
	}

	byName := map[string]*ServiceSummary{}
	for _, snap := range snapshots {
		for _, svc := range snap.Data() {
			sum, ok := byName[svc.Name]
			if !ok {
				sum = &ServiceSummary{Name: svc.Name}
				byName[svc.Name] = sum
			}
			sum.Count++
			sum.Revenue += svc.EffectivePrice()
		}
	}

	top := make([]ServiceSummary, 0, len(byName))
	for _, sum := range byName {
		top = append(top, *sum)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Revenue != top[j].Revenue {
			return top[i].Revenue > top[j].Revenue
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

// GrowthPercentage compares two periods. Growth from nothing counts as 100%.
func GrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / previous * 100
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
