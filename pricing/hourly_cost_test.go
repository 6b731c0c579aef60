package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateHourlyCost(t *testing.T) {
	costs := []OperationalCost{
		{Name: "Rent", Type: CostTypeFixed, Value: 2000},
		{Name: "Water", Type: CostTypeVariable, Value: 400},
	}
	// Five days of 08:00-18:00 (9 worked hours), one closed day, one day too
	// short to count.
	week := WeeklySchedule{
		{Day: "monday", Start: "08:00", End: "18:00"},
		{Day: "tuesday", Start: "08:00", End: "18:00"},
		{Day: "wednesday", Start: "08:00", End: "18:00"},
		{Day: "thursday", Start: "08:00", End: "18:00"},
		{Day: "friday", Start: "08:00", End: "18:00"},
		{Day: "saturday", Start: "08:00", End: "08:30"},
		{Day: "sunday"},
	}

	res := CalculateHourlyCost(costs, week)

	assert.Equal(t, 2400.0, res.TotalMonthlyExpenses)
	assert.Equal(t, 2000.0, res.FixedExpenses)
	assert.Equal(t, 400.0, res.VariableExpenses)
	assert.Equal(t, 6, res.ActiveDaysPerWeek)
	assert.Equal(t, 24, res.TotalWorkingDaysInMonth)
	assert.Equal(t, 5*540, res.TotalWeeklyMinutes)
	assert.InDelta(t, 9.0, res.AverageDailyHours, 1e-9)
	assert.InDelta(t, 2400.0/24/9, res.HourlyCost, 1e-9)
}

func TestCalculateHourlyCostGuardsDivisions(t *testing.T) {
	res := CalculateHourlyCost([]OperationalCost{{Type: CostTypeFixed, Value: 1000}}, nil)
	assert.Equal(t, 0.0, res.HourlyCost)
	assert.Equal(t, 0, res.TotalWorkingDaysInMonth)

	res = CalculateHourlyCost(nil, WeeklySchedule{{Day: "monday", Start: "09:00", End: "09:45"}})
	assert.Equal(t, 1, res.ActiveDaysPerWeek)
	assert.Equal(t, 0.0, res.AverageDailyHours)
	assert.Equal(t, 0.0, res.HourlyCost)
}

func TestWorkedMinutes(t *testing.T) {
	assert.Equal(t, 480, WorkedMinutes("08:00", "17:00"))
	assert.Equal(t, 0, WorkedMinutes("08:00", "09:00"))
	assert.Equal(t, 0, WorkedMinutes("18:00", "08:00"))
	assert.Equal(t, 0, WorkedMinutes("", ""))
}
