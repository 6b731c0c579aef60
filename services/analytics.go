package services

import (
	"context"
	"time"

	"detailpro-backend/utils"

	"github.com/google/uuid"
)

// Analytics compares sales revenue across the month, quarter and year of now
// with the period before each.
type Analytics struct {
	CurrentMonthRevenue   float64          `json:"currentMonthRevenue"`
	MonthGrowth           float64          `json:"monthGrowth"`
	CurrentQuarterRevenue float64          `json:"currentQuarterRevenue"`
	QuarterGrowth         float64          `json:"quarterGrowth"`
	CurrentYearRevenue    float64          `json:"currentYearRevenue"`
	YearGrowth            float64          `json:"yearGrowth"`
	TopServices           []ServiceSummary `json:"topServices"`
	TopClients            []ClientSummary  `json:"topClients"`
	QuickStats            QuickStats       `json:"quickStats"`
}

type ClientSummary struct {
	Name   string  `json:"name" db:"name"`
	Visits int     `json:"visits" db:"visits"`
	Spent  float64 `json:"spent" db:"spent"`
}

type QuickStats struct {
	TotalClients     int     `json:"totalClients"`
	TotalSales       int     `json:"totalSales"`
	AvgMonthlySales  float64 `json:"avgMonthlySales"`
	AverageTicket    float64 `json:"averageTicket"`
	TotalNetProfit   float64 `json:"totalNetProfit"`
	AverageMarginPct float64 `json:"averageMarginPct"`
}

func quarterStart(t time.Time) time.Time {
	month := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, t.Location())
}

// growthOver returns the revenue of [start, end) and its growth over the
// period of the same length right before it.
func (s *ReportService) growthOver(ctx context.Context, userID uuid.UUID, start, end, prevStart time.Time) (float64, float64, error) {
	current, err := s.salesTotals(ctx, userID, start, end)
	if err != nil {
		return 0, 0, err
	}
	previous, err := s.salesTotals(ctx, userID, prevStart, start)
	if err != nil {
		return 0, 0, err
	}
	return current.Revenue, GrowthPercentage(current.Revenue, previous.Revenue), nil
}

func (s *ReportService) Analytics(ctx context.Context, userID uuid.UUID, now time.Time) (*Analytics, error) {
	a := &Analytics{}
	var err error

	month := utils.BeginningOfMonth(now)
	if a.CurrentMonthRevenue, a.MonthGrowth, err = s.growthOver(ctx, userID, month, month.AddDate(0, 1, 0), month.AddDate(0, -1, 0)); err != nil {
		return nil, err
	}
	quarter := quarterStart(now)
	if a.CurrentQuarterRevenue, a.QuarterGrowth, err = s.growthOver(ctx, userID, quarter, quarter.AddDate(0, 3, 0), quarter.AddDate(0, -3, 0)); err != nil {
		return nil, err
	}
	year := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	if a.CurrentYearRevenue, a.YearGrowth, err = s.growthOver(ctx, userID, year, year.AddDate(1, 0, 0), year.AddDate(-1, 0, 0)); err != nil {
		return nil, err
	}

	if a.TopServices, err = s.topServices(ctx, userID, month, month.AddDate(0, 1, 0), 4); err != nil {
		return nil, err
	}
	if a.TopClients, err = s.topClients(ctx, userID, month, month.AddDate(0, 1, 0), 4); err != nil {
		return nil, err
	}
	if a.QuickStats, err = s.quickStats(ctx, userID, now); err != nil {
		return nil, err
	}
	return a, nil
}

// topClients ranks registered clients by what they spent in the period.
// Quick sales with a typed client name are left out.
func (s *ReportService) topClients(ctx context.Context, userID uuid.UUID, start, end time.Time, limit int) ([]ClientSummary, error) {
	top := []ClientSummary{}
	query := s.db.Rebind(`
		SELECT c.name AS name, COUNT(q.id) AS visits, COALESCE(SUM(q.total_price), 0) AS spent
		FROM quotes q
		JOIN clients c ON c.id = q.client_id
		WHERE q.user_id = ? AND q.is_sale = ? AND q.closed_at >= ? AND q.closed_at < ?
		GROUP BY c.id, c.name
		ORDER BY spent DESC, c.name
		LIMIT ?`)
	err := s.db.SelectContext(ctx, &top, query, userID, true, start, end, limit)
	return top, err
}

func (s *ReportService) quickStats(ctx context.Context, userID uuid.UUID, now time.Time) (QuickStats, error) {
	var qs QuickStats
	if err := s.count(ctx, &qs.TotalClients,
		`SELECT COUNT(*) FROM clients WHERE user_id = ? AND deleted_at IS NULL`, userID); err != nil {
		return qs, err
	}

	var row struct {
		Count     int     `db:"count"`
		Revenue   float64 `db:"revenue"`
		NetProfit float64 `db:"net_profit"`
		Margin    float64 `db:"margin"`
		FirstSale *string `db:"first_sale"`
	}
	query := s.db.Rebind(`
		SELECT COUNT(*) AS count,
			COALESCE(SUM(total_price), 0) AS revenue,
			COALESCE(SUM(net_profit), 0) AS net_profit,
			COALESCE(AVG(margin_pct), 0) AS margin,
			CAST(MIN(closed_at) AS TEXT) AS first_sale
		FROM quotes WHERE user_id = ? AND is_sale = ?`)
	if err := s.db.GetContext(ctx, &row, query, userID, true); err != nil {
		return qs, err
	}

	qs.TotalSales = row.Count
	qs.TotalNetProfit = row.NetProfit
	qs.AverageMarginPct = row.Margin
	if row.Count > 0 {
		qs.AverageTicket = row.Revenue / float64(row.Count)
		qs.AvgMonthlySales = float64(row.Count)
		if first, ok := parseStoredTime(row.FirstSale); ok {
			months := monthsBetween(first, now) + 1
			qs.AvgMonthlySales = float64(row.Count) / float64(months)
		}
	}
	return qs, nil
}

// parseStoredTime reads a timestamp cast to text by either database.
func parseStoredTime(v *string) (time.Time, bool) {
	if v == nil || *v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999-07",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, *v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func monthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if months < 0 {
		return 0
	}
	return months
}
