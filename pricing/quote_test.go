package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCalculateQuoteSingleService(t *testing.T) {
	res := CalculateQuote(QuoteInput{
		Services: []QuotedService{{
			Name:                 "Simple wash",
			Price:                100,
			LaborCostPerHour:     30,
			ExecutionTimeMinutes: 30,
		}},
		Commission:     10,
		CommissionType: ValueTypeAmount,
		DiscountType:   ValueTypeAmount,
		PaymentMethod:  &PaymentMethod{Type: PaymentTypeCash},
		CostMode:       CostModePerService,
	})

	assert.InDelta(t, 100, res.TotalServiceValue, 1e-9)
	assert.InDelta(t, 15, res.TotalLaborCost, 1e-9)
	assert.InDelta(t, 10, res.CalculatedCommission, 1e-9)
	assert.InDelta(t, 25, res.TotalCost, 1e-9)
	assert.InDelta(t, 0, res.PaymentFee, 1e-9)
	assert.InDelta(t, 75, res.NetProfit, 1e-9)
	assert.InDelta(t, 75, res.MarginPct, 1e-9)
	require.Len(t, res.Services, 1)
	assert.InDelta(t, 15, res.Services[0].TotalCost, 1e-9)
}

func TestCalculateQuoteCommissionPercentage(t *testing.T) {
	res := CalculateQuote(QuoteInput{
		Services:       []QuotedService{{Price: 100, LaborCostPerHour: 30, ExecutionTimeMinutes: 30}},
		Commission:     10,
		CommissionType: ValueTypePercentage,
	})
	assert.InDelta(t, 10, res.CalculatedCommission, 1e-9)
	assert.InDelta(t, 75, res.MarginPct, 1e-9)
}

func TestCalculateQuoteDiscountClamp(t *testing.T) {
	res := CalculateQuote(QuoteInput{
		Services:     []QuotedService{{Price: 100}},
		Discount:     150,
		DiscountType: ValueTypePercentage,
	})
	assert.InDelta(t, 100, res.CalculatedDiscount, 1e-9)
	assert.InDelta(t, 0, res.ValueAfterDiscount, 1e-9)
	assert.Equal(t, 0.0, res.MarginPct)

	res = CalculateQuote(QuoteInput{
		Services:     []QuotedService{{Price: 100}},
		Discount:     250,
		DiscountType: ValueTypeAmount,
	})
	assert.InDelta(t, 100, res.CalculatedDiscount, 1e-9)
	assert.GreaterOrEqual(t, res.ValueAfterDiscount, 0.0)
}

func TestCalculateQuotePaymentFees(t *testing.T) {
	credit := &PaymentMethod{
		Type: PaymentTypeCreditCard,
		Rate: 9,
		Installments: map[int]float64{
			1: 3,
			3: 6,
		},
	}
	services := []QuotedService{{Price: 200}}

	tests := []struct {
		name         string
		method       *PaymentMethod
		installments int
		wantFee      float64
	}{
		{"cash", &PaymentMethod{Type: PaymentTypeCash, Rate: 5}, 0, 0},
		{"pix", &PaymentMethod{Type: PaymentTypePix, Rate: 5}, 0, 0},
		{"debit", &PaymentMethod{Type: PaymentTypeDebitCard, Rate: 2}, 0, 4},
		{"credit 3x", credit, 3, 12},
		{"credit without selection uses 1x", credit, 0, 6},
		{"credit unknown count uses 1x", credit, 7, 6},
		{"credit without rows uses base rate", &PaymentMethod{Type: PaymentTypeCreditCard, Rate: 4}, 2, 8},
		{"no method", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CalculateQuote(QuoteInput{
				Services:      services,
				PaymentMethod: tt.method,
				Installments:  tt.installments,
			})
			assert.InDelta(t, tt.wantFee, res.PaymentFee, 1e-9)
			assert.InDelta(t, 200-tt.wantFee, res.FinalPriceWithFee, 1e-9)
		})
	}
}

func TestCalculateQuoteProductsAndCostMode(t *testing.T) {
	service := QuotedService{
		Name:                 "Full detail",
		Price:                300,
		LaborCostPerHour:     40,
		ExecutionTimeMinutes: 90,
		OtherCosts:           5,
		Products: []QuotedProduct{{
			Name:              "Shampoo",
			Type:              ProductTypeReadyToUse,
			GallonPrice:       20,
			GallonVolumeMl:    1000,
			UsagePerVehicleMl: 50,
		}},
	}

	perService := CalculateQuote(QuoteInput{
		Services:   []QuotedService{service},
		OtherCosts: 10,
		CostMode:   CostModePerService,
	})
	assert.InDelta(t, 1, perService.TotalProductsCost, 1e-9)
	assert.InDelta(t, 60, perService.TotalLaborCost, 1e-9)
	assert.InDelta(t, 15, perService.TotalOtherCosts, 1e-9)
	assert.InDelta(t, 76, perService.TotalCost, 1e-9)

	monthly := CalculateQuote(QuoteInput{
		Services:   []QuotedService{service},
		OtherCosts: 10,
		CostMode:   CostModeMonthlyAverage,
	})
	assert.Equal(t, 0.0, monthly.TotalProductsCost)
	assert.InDelta(t, 75, monthly.TotalCost, 1e-9)
}

func TestQuotedServiceOverrides(t *testing.T) {
	s := QuotedService{
		Price:                100,
		LaborCostPerHour:     30,
		ExecutionTimeMinutes: 60,
		OtherCosts:           2,
		Products: []QuotedProduct{{
			Type: ProductTypeReadyToUse, GallonPrice: 10, GallonVolumeMl: 100, UsagePerVehicleMl: 10,
		}},
		PriceOverride:            ptr(150.0),
		LaborCostPerHourOverride: ptr(60.0),
		ExecutionTimeOverride:    ptr(30),
		OtherCostsOverride:       ptr(0.0),
		ProductsOverride:         []QuotedProduct{},
	}

	assert.Equal(t, 150.0, s.EffectivePrice())
	assert.InDelta(t, 30, s.LaborCost(), 1e-9)
	assert.Equal(t, 0.0, s.EffectiveOtherCosts())
	assert.Equal(t, 0.0, s.ProductsCost())

	s.ProductsOverride = nil
	assert.InDelta(t, 1, s.ProductsCost(), 1e-9)
}

func TestSuggestedPrice(t *testing.T) {
	assert.InDelta(t, 50, SuggestedPrice(25, 50), 1e-9)
	assert.InDelta(t, 25, SuggestedPrice(25, 0), 1e-9)
	assert.Equal(t, 0.0, SuggestedPrice(25, 100))
	assert.Equal(t, 0.0, SuggestedPrice(25, 150))
	assert.Equal(t, 0.0, SuggestedPrice(25, -10))

	res := CalculateQuote(QuoteInput{
		Services:         []QuotedService{{Price: 100, LaborCostPerHour: 30, ExecutionTimeMinutes: 30}},
		DesiredMarginPct: 40,
	})
	assert.InDelta(t, 25, res.SuggestedPrice, 1e-9)
}
