package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormValueUnmarshal(t *testing.T) {
	var form QuoteForm
	err := json.Unmarshal([]byte(`{"commission": 10, "discount": "5,5", "installments": null}`), &form)
	require.NoError(t, err)

	assert.Equal(t, FormValue("10"), form.Commission)
	assert.Equal(t, FormValue("5,5"), form.Discount)
	assert.True(t, form.Installments.Blank())
}

func TestQuoteFormParse(t *testing.T) {
	in, err := QuoteForm{
		OtherCosts:       "12.5",
		Commission:       "10",
		CommissionType:   ValueTypeAmount,
		Discount:         "5",
		Installments:     "3",
		DesiredMarginPct: "40",
	}.Parse()
	require.NoError(t, err)

	assert.Equal(t, 12.5, in.OtherCosts)
	assert.Equal(t, 10.0, in.Commission)
	assert.Equal(t, ValueTypeAmount, in.CommissionType)
	assert.Equal(t, ValueTypePercentage, in.DiscountType)
	assert.Equal(t, 3, in.Installments)
	assert.Equal(t, 40.0, in.DesiredMarginPct)
}

func TestQuoteFormParseErrors(t *testing.T) {
	_, err := QuoteForm{
		Commission:       "ten",
		CommissionType:   "bogus",
		Discount:         "-1",
		Installments:     "13",
		DesiredMarginPct: "100",
	}.Parse()
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "commission")
	assert.Contains(t, verrs, "commissionType")
	assert.Contains(t, verrs, "discount")
	assert.Contains(t, verrs, "installments")
	assert.Contains(t, verrs, "desiredMarginPct")
	assert.Contains(t, err.Error(), "commission: must be a number")
}

func TestQuoteFormRejectsNonFiniteNumbers(t *testing.T) {
	for _, raw := range []FormValue{"NaN", "nan", "Inf", "+Inf", "-Inf", "infinity"} {
		in, err := QuoteForm{OtherCosts: raw, Commission: raw, Discount: raw, DesiredMarginPct: raw}.Parse()

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs, "input %q", raw)
		for _, field := range []string{"otherCosts", "commission", "discount", "desiredMarginPct"} {
			assert.Equal(t, "must be a number", verrs[field], "%s with %q", field, raw)
		}
		assert.Zero(t, in.OtherCosts)
		assert.Zero(t, in.Commission)
		assert.Zero(t, in.Discount)
		assert.Zero(t, in.DesiredMarginPct)
	}
}

func TestServiceFormParse(t *testing.T) {
	fields, err := ServiceForm{
		Name:             " Polish ",
		Price:            "250",
		LaborCostPerHour: "35",
		ExecutionTime:    "02:30",
		Products: []ServiceProductForm{
			{ProductID: "p1", UsagePerVehicle: "30", DilutionRatio: "1:100", ContainerSize: "500"},
			{ProductID: "p2", UsagePerVehicle: "10"},
		},
	}.Parse()
	require.NoError(t, err)

	assert.Equal(t, "Polish", fields.Name)
	assert.Equal(t, 150, fields.ExecutionTimeMinutes)
	require.Len(t, fields.Products, 2)
	require.NotNil(t, fields.Products[0].DilutionRatio)
	assert.Equal(t, 100.0, *fields.Products[0].DilutionRatio)
	assert.Equal(t, 500.0, *fields.Products[0].ContainerSizeMl)
	assert.Nil(t, fields.Products[1].DilutionRatio)

	fields, err = ServiceForm{Name: "Wash", Price: "50", ExecutionTime: "45"}.Parse()
	require.NoError(t, err)
	assert.Equal(t, 45, fields.ExecutionTimeMinutes)
}

func TestServiceFormParseErrors(t *testing.T) {
	_, err := ServiceForm{
		Price:         "0",
		ExecutionTime: "1:75",
		Products:      []ServiceProductForm{{DilutionRatio: "one to ten"}},
	}.Parse()

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "is required", verrs["name"])
	assert.Equal(t, "must be greater than zero", verrs["price"])
	assert.Equal(t, "must be HH:MM", verrs["executionTime"])
	assert.Equal(t, "is required", verrs["products[0].productId"])
	assert.Equal(t, "must look like 1:100", verrs["products[0].dilutionRatio"])
}

func TestServiceFormRejectsNonFiniteNumbers(t *testing.T) {
	for _, raw := range []FormValue{"NaN", "Inf", "infinity"} {
		fields, err := ServiceForm{
			Name:             "Wash",
			Price:            raw,
			LaborCostPerHour: raw,
			OtherCosts:       raw,
			ExecutionTime:    raw,
			Products:         []ServiceProductForm{{ProductID: "p1", UsagePerVehicle: raw, DilutionRatio: raw, ContainerSize: raw}},
		}.Parse()

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs, "input %q", raw)
		assert.Equal(t, "must be a number", verrs["price"])
		assert.Equal(t, "must be a number", verrs["laborCostPerHour"])
		assert.Equal(t, "must be a number", verrs["otherCosts"])
		assert.Equal(t, "must be HH:MM or minutes", verrs["executionTime"])
		assert.Equal(t, "must be a number", verrs["products[0].usagePerVehicleMl"])
		assert.Equal(t, "must look like 1:100", verrs["products[0].dilutionRatio"])
		assert.Equal(t, "must be a number", verrs["products[0].containerSizeMl"])
		assert.Zero(t, fields.Price)
		assert.Zero(t, fields.LaborCostPerHour)
	}
}
