package pricing

import "math"

const (
	ValueTypeAmount     = "amount"
	ValueTypePercentage = "percentage"

	CostModePerService     = "per_service"
	CostModeMonthlyAverage = "monthly_average"

	PaymentTypeCash       = "cash"
	PaymentTypePix        = "pix"
	PaymentTypeCreditCard = "credit_card"
	PaymentTypeDebitCard  = "debit_card"
)

// QuotedProduct is the copy of a catalog product attached to a quoted service.
type QuotedProduct struct {
	ProductID         string  `json:"productId,omitempty"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	GallonPrice       float64 `json:"gallonPrice"`
	GallonVolumeMl    float64 `json:"gallonVolumeMl"`
	DilutionRatio     float64 `json:"dilutionRatio"`
	UsagePerVehicleMl float64 `json:"usagePerVehicleMl"`
	ContainerSizeMl   float64 `json:"containerSizeMl"`
}

func (p QuotedProduct) Cost() float64 {
	return CalculateProductCost(ProductCostInput{
		GallonPrice:       p.GallonPrice,
		GallonVolumeMl:    p.GallonVolumeMl,
		DilutionRatio:     p.DilutionRatio,
		UsagePerVehicleMl: p.UsagePerVehicleMl,
		Type:              p.Type,
		ContainerSizeMl:   p.ContainerSizeMl,
	})
}

// QuotedService is a per-quote snapshot of a catalog service. Override fields,
// when set, win over the catalog values so editing a quote never touches the
// catalog.
type QuotedService struct {
	ServiceID            string          `json:"serviceId,omitempty"`
	Name                 string          `json:"name"`
	Price                float64         `json:"price"`
	LaborCostPerHour     float64         `json:"laborCostPerHour"`
	ExecutionTimeMinutes int             `json:"executionTimeMinutes"`
	OtherCosts           float64         `json:"otherCosts"`
	Products             []QuotedProduct `json:"products,omitempty"`

	PriceOverride            *float64        `json:"priceOverride,omitempty"`
	LaborCostPerHourOverride *float64        `json:"laborCostPerHourOverride,omitempty"`
	ExecutionTimeOverride    *int            `json:"executionTimeOverride,omitempty"`
	OtherCostsOverride       *float64        `json:"otherCostsOverride,omitempty"`
	ProductsOverride         []QuotedProduct `json:"productsOverride"`
}

func (s QuotedService) EffectivePrice() float64 {
	if s.PriceOverride != nil {
		return *s.PriceOverride
	}
	return s.Price
}

func (s QuotedService) EffectiveLaborCostPerHour() float64 {
	if s.LaborCostPerHourOverride != nil {
		return *s.LaborCostPerHourOverride
	}
	return s.LaborCostPerHour
}

func (s QuotedService) EffectiveExecutionMinutes() int {
	if s.ExecutionTimeOverride != nil {
		return *s.ExecutionTimeOverride
	}
	return s.ExecutionTimeMinutes
}

func (s QuotedService) EffectiveOtherCosts() float64 {
	if s.OtherCostsOverride != nil {
		return *s.OtherCostsOverride
	}
	return s.OtherCosts
}

func (s QuotedService) EffectiveProducts() []QuotedProduct {
	if s.ProductsOverride != nil {
		return s.ProductsOverride
	}
	return s.Products
}

// LaborCost is the execution time in hours times the hourly labor cost.
func (s QuotedService) LaborCost() float64 {
	minutes := s.EffectiveExecutionMinutes()
	if minutes <= 0 {
		return 0
	}
	return float64(minutes) / 60 * s.EffectiveLaborCostPerHour()
}

func (s QuotedService) ProductsCost() float64 {
	var total float64
	for _, p := range s.EffectiveProducts() {
		total += p.Cost()
	}
	return total
}

// PaymentMethod carries what the fee calculation needs. Installments maps an
// installment count to its fee rate in percent.
type PaymentMethod struct {
	Type         string
	Rate         float64
	Installments map[int]float64
}

// FeeRate returns the percentage charged for the given installment count.
func (m *PaymentMethod) FeeRate(installments int) float64 {
	if m == nil {
		return 0
	}
	switch m.Type {
	case PaymentTypeDebitCard:
		return m.Rate
	case PaymentTypeCreditCard:
		if rate, ok := m.Installments[installments]; ok {
			return rate
		}
		if rate, ok := m.Installments[1]; ok {
			return rate
		}
		return m.Rate
	default:
		return 0
	}
}

// QuoteInput groups the services of a quote with its global knobs.
type QuoteInput struct {
	Services         []QuotedService
	OtherCosts       float64
	Commission       float64
	CommissionType   string
	Discount         float64
	DiscountType     string
	PaymentMethod    *PaymentMethod
	Installments     int
	DesiredMarginPct float64
	CostMode         string
}

type ServiceBreakdown struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	LaborCost    float64 `json:"laborCost"`
	ProductsCost float64 `json:"productsCost"`
	OtherCosts   float64 `json:"otherCosts"`
	TotalCost    float64 `json:"totalCost"`
}

// QuoteResult holds every derived total of a quote.
type QuoteResult struct {
	TotalServiceValue    float64            `json:"totalServiceValue"`
	TotalProductsCost    float64            `json:"totalProductsCost"`
	TotalLaborCost       float64            `json:"totalLaborCost"`
	TotalOtherCosts      float64            `json:"totalOtherCosts"`
	CalculatedCommission float64            `json:"calculatedCommission"`
	CalculatedDiscount   float64            `json:"calculatedDiscount"`
	TotalCost            float64            `json:"totalCost"`
	ValueAfterDiscount   float64            `json:"valueAfterDiscount"`
	PaymentFeeRate       float64            `json:"paymentFeeRate"`
	PaymentFee           float64            `json:"paymentFee"`
	FinalPriceWithFee    float64            `json:"finalPriceWithFee"`
	NetProfit            float64            `json:"netProfit"`
	MarginPct            float64            `json:"marginPct"`
	SuggestedPrice       float64            `json:"suggestedPrice"`
	Services             []ServiceBreakdown `json:"services"`
}

// CalculateQuote derives costs, fees, profit and margin for a quote. In the
// monthly average cost mode product consumption is already part of the hourly
// labor cost, so per-service product costs are left out.
func CalculateQuote(in QuoteInput) QuoteResult {
	res := QuoteResult{Services: make([]ServiceBreakdown, 0, len(in.Services))}
	includeProducts := in.CostMode != CostModeMonthlyAverage

	var serviceOtherCosts float64
	for _, s := range in.Services {
		b := ServiceBreakdown{
			Name:       s.Name,
			Price:      s.EffectivePrice(),
			LaborCost:  s.LaborCost(),
			OtherCosts: s.EffectiveOtherCosts(),
		}
		if includeProducts {
			b.ProductsCost = s.ProductsCost()
		}
		b.TotalCost = b.LaborCost + b.ProductsCost + b.OtherCosts

		res.TotalServiceValue += b.Price
		res.TotalLaborCost += b.LaborCost
		res.TotalProductsCost += b.ProductsCost
		serviceOtherCosts += b.OtherCosts
		res.Services = append(res.Services, b)
	}

	res.TotalOtherCosts = serviceOtherCosts + in.OtherCosts
	res.CalculatedCommission = applyValueType(in.Commission, in.CommissionType, res.TotalServiceValue)
	res.CalculatedDiscount = clamp(applyValueType(in.Discount, in.DiscountType, res.TotalServiceValue), 0, res.TotalServiceValue)

	res.TotalCost = res.TotalProductsCost + res.TotalLaborCost + res.TotalOtherCosts + res.CalculatedCommission
	res.ValueAfterDiscount = res.TotalServiceValue - res.CalculatedDiscount

	res.PaymentFeeRate = in.PaymentMethod.FeeRate(in.Installments)
	res.PaymentFee = res.ValueAfterDiscount * res.PaymentFeeRate / 100

	res.FinalPriceWithFee = res.ValueAfterDiscount - res.PaymentFee
	res.NetProfit = res.FinalPriceWithFee - res.TotalCost
	if res.FinalPriceWithFee > 0 {
		res.MarginPct = res.NetProfit / res.FinalPriceWithFee * 100
	}

	res.SuggestedPrice = SuggestedPrice(res.TotalCost, in.DesiredMarginPct)
	return res
}

// SuggestedPrice is the price that yields the desired margin over totalCost.
// Margins outside [0, 100) have no meaningful price and return 0.
func SuggestedPrice(totalCost, desiredMarginPct float64) float64 {
	if desiredMarginPct < 0 || desiredMarginPct >= 100 || math.IsNaN(desiredMarginPct) {
		return 0
	}
	return totalCost / (1 - desiredMarginPct/100)
}

func applyValueType(value float64, valueType string, base float64) float64 {
	if valueType == ValueTypeAmount {
		return value
	}
	return base * value / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
