package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateProductCostReadyToUse(t *testing.T) {
	cost := CalculateProductCost(ProductCostInput{
		GallonPrice:       20,
		GallonVolumeMl:    1000,
		UsagePerVehicleMl: 50,
		Type:              ProductTypeReadyToUse,
	})
	assert.InDelta(t, 1.0, cost, 1e-9)
}

func TestCalculateProductCostDiluted(t *testing.T) {
	// 5 l gallon for 100, mixed 1:9 in a 1 l bottle, 200 ml per car:
	// 20 ml of concentrate at 0.02 per ml.
	cost := CalculateProductCost(ProductCostInput{
		GallonPrice:       100,
		GallonVolumeMl:    5000,
		DilutionRatio:     9,
		UsagePerVehicleMl: 200,
		Type:              ProductTypeDiluted,
		ContainerSizeMl:   1000,
	})
	assert.InDelta(t, 0.4, cost, 1e-9)
}

func TestCalculateProductCostDegenerate(t *testing.T) {
	base := ProductCostInput{
		GallonPrice:       100,
		GallonVolumeMl:    5000,
		DilutionRatio:     9,
		UsagePerVehicleMl: 200,
		Type:              ProductTypeDiluted,
		ContainerSizeMl:   1000,
	}

	cases := map[string]func(in *ProductCostInput){
		"zero ratio":       func(in *ProductCostInput) { in.DilutionRatio = 0 },
		"zero container":   func(in *ProductCostInput) { in.ContainerSizeMl = 0 },
		"zero volume":      func(in *ProductCostInput) { in.GallonVolumeMl = 0 },
		"negative ratio":   func(in *ProductCostInput) { in.DilutionRatio = -1 },
		"nan ratio":        func(in *ProductCostInput) { in.DilutionRatio = math.NaN() },
		"zero usage":       func(in *ProductCostInput) { in.UsagePerVehicleMl = 0 },
		"unknown type":     func(in *ProductCostInput) { in.Type = "powder" },
		"ratio and volume": func(in *ProductCostInput) { in.DilutionRatio, in.ContainerSizeMl = 0, 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			cost := CalculateProductCost(in)
			assert.False(t, math.IsNaN(cost))
			assert.GreaterOrEqual(t, cost, 0.0)
			assert.Equal(t, 0.0, cost)
		})
	}
}

func TestLitersToMl(t *testing.T) {
	assert.Equal(t, 5000.0, LitersToMl(5))
	assert.Equal(t, 0.0, LitersToMl(-1))
}
