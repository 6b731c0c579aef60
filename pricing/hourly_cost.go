package pricing

import "strings"

const (
	CostTypeFixed    = "fixed"
	CostTypeVariable = "variable"

	weeksPerMonth     = 4
	lunchBreakMinutes = 60
	minutesPerHour    = 60.0
)

// OperationalCost is a recurring monthly expense of the business.
type OperationalCost struct {
	Name  string
	Type  string
	Value float64
}

// DaySchedule holds the opening and closing time of one weekday as "HH:MM".
// Both empty means the shop is closed that day.
type DaySchedule struct {
	Day   string
	Start string
	End   string
}

type WeeklySchedule []DaySchedule

// HourlyCostResult is the labor cost per hour implied by the monthly expenses
// and the opening hours, along with the intermediate figures.
type HourlyCostResult struct {
	TotalMonthlyExpenses    float64 `json:"totalMonthlyExpenses"`
	FixedExpenses           float64 `json:"fixedExpenses"`
	VariableExpenses        float64 `json:"variableExpenses"`
	ActiveDaysPerWeek       int     `json:"activeDaysPerWeek"`
	TotalWeeklyMinutes      int     `json:"totalWeeklyMinutes"`
	TotalWorkingDaysInMonth int     `json:"totalWorkingDaysInMonth"`
	AverageDailyHours       float64 `json:"averageDailyHours"`
	HourlyCost              float64 `json:"hourlyCost"`
}

// CalculateHourlyCost spreads the monthly expenses over the working days of a
// month (active weekdays times four) and then over the average worked hours of
// a day. A one hour lunch break is taken out of every day longer than an hour.
func CalculateHourlyCost(costs []OperationalCost, week WeeklySchedule) HourlyCostResult {
	var res HourlyCostResult

	for _, c := range costs {
		v := c.Value
		if !positive(v) {
			continue
		}
		res.TotalMonthlyExpenses += v
		if strings.EqualFold(c.Type, CostTypeVariable) {
			res.VariableExpenses += v
		} else {
			res.FixedExpenses += v
		}
	}

	daysWithHours := 0
	for _, d := range week {
		if strings.TrimSpace(d.Start) == "" && strings.TrimSpace(d.End) == "" {
			continue
		}
		res.ActiveDaysPerWeek++

		worked := WorkedMinutes(d.Start, d.End)
		if worked > 0 {
			daysWithHours++
			res.TotalWeeklyMinutes += worked
		}
	}

	res.TotalWorkingDaysInMonth = res.ActiveDaysPerWeek * weeksPerMonth
	if daysWithHours > 0 {
		res.AverageDailyHours = float64(res.TotalWeeklyMinutes) / float64(daysWithHours) / minutesPerHour
	}

	if res.TotalWorkingDaysInMonth > 0 && res.AverageDailyHours > 0 {
		dailyExpenses := res.TotalMonthlyExpenses / float64(res.TotalWorkingDaysInMonth)
		res.HourlyCost = dailyExpenses / res.AverageDailyHours
	}

	return res
}

// WorkedMinutes is the time between start and end minus the lunch break. Days of
// an hour or less, and days ending before they start, count as zero.
func WorkedMinutes(start, end string) int {
	raw := ParseHHMMToMinutes(end) - ParseHHMMToMinutes(start)
	if raw <= lunchBreakMinutes {
		return 0
	}
	return raw - lunchBreakMinutes
}
