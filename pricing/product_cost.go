package pricing

import "math"

const (
	ProductTypeDiluted    = "diluted"
	ProductTypeReadyToUse = "ready-to-use"
)

// ProductCostInput describes one product used in one service execution. Gallon
// fields refer to the container the product is bought in; ContainerSizeMl is the
// bottle the diluted solution is mixed into.
type ProductCostInput struct {
	GallonPrice       float64
	GallonVolumeMl    float64
	DilutionRatio     float64
	UsagePerVehicleMl float64
	Type              string
	ContainerSizeMl   float64
}

// CalculateProductCost returns the cost of one application of a product.
//
// Diluted products are mixed one part concentrate to DilutionRatio parts water,
// so a container holds ContainerSizeMl/(ratio+1) ml of concentrate. Degenerate
// inputs yield 0.
func CalculateProductCost(in ProductCostInput) float64 {
	if !positive(in.GallonPrice) || !positive(in.GallonVolumeMl) || !positive(in.UsagePerVehicleMl) {
		return 0
	}
	pricePerMl := in.GallonPrice / in.GallonVolumeMl

	switch in.Type {
	case ProductTypeReadyToUse:
		return pricePerMl * in.UsagePerVehicleMl
	case ProductTypeDiluted:
		if !positive(in.DilutionRatio) || !positive(in.ContainerSizeMl) {
			return 0
		}
		concentratePerContainer := in.ContainerSizeMl / (in.DilutionRatio + 1)
		containerCost := concentratePerContainer * pricePerMl
		return containerCost * (in.UsagePerVehicleMl / in.ContainerSizeMl)
	default:
		return 0
	}
}

// LitersToMl converts catalog container sizes, which are stored in liters.
func LitersToMl(liters float64) float64 {
	if !positive(liters) {
		return 0
	}
	return liters * 1000
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
