package models

import (
	"detailpro-backend/pricing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogProduct struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`

	Name                 string  `gorm:"not null" json:"name"`
	Brand                string  `json:"brand"`
	ContainerSizeLiters  float64 `gorm:"type:decimal(10,3);not null" json:"containerSizeLiters"`
	Price                float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Type                 string  `gorm:"type:varchar(20);not null" json:"type"` // diluted, ready-to-use
	DefaultDilutionRatio float64 `gorm:"type:decimal(10,2);default:0" json:"defaultDilutionRatio"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Service struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`

	Name                 string  `gorm:"not null" json:"name"`
	Description          string  `json:"description"`
	Price                float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	LaborCostPerHour     float64 `gorm:"type:decimal(10,2);default:0" json:"laborCostPerHour"`
	ExecutionTimeMinutes int     `json:"executionTimeMinutes"`
	OtherCosts           float64 `gorm:"type:decimal(10,2);default:0" json:"otherCosts"`
	IsActive             bool    `gorm:"default:true" json:"isActive"`

	Products []ServiceProduct `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE" json:"products"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ServiceProduct links a catalog product to a service. Nil overrides fall back
// to the catalog product.
type ServiceProduct struct {
	Base
	ServiceID uuid.UUID      `gorm:"type:uuid;index;not null" json:"serviceId"`
	ProductID uuid.UUID      `gorm:"type:uuid;index;not null" json:"productId"`
	Product   CatalogProduct `gorm:"foreignKey:ProductID" json:"product"`

	UsagePerVehicleMl float64  `gorm:"type:decimal(10,2);not null" json:"usagePerVehicleMl"`
	DilutionRatio     *float64 `gorm:"type:decimal(10,2)" json:"dilutionRatio"`
	ContainerSizeMl   *float64 `gorm:"type:decimal(10,2)" json:"containerSizeMl"`
}

// ToQuoted snapshots a linked product with its overrides resolved. Without a
// container override the solution is assumed to be mixed in the product's own
// container.
func (sp ServiceProduct) ToQuoted() pricing.QuotedProduct {
	gallonMl := pricing.LitersToMl(sp.Product.ContainerSizeLiters)

	ratio := sp.Product.DefaultDilutionRatio
	if sp.DilutionRatio != nil {
		ratio = *sp.DilutionRatio
	}
	container := gallonMl
	if sp.ContainerSizeMl != nil {
		container = *sp.ContainerSizeMl
	}

	return pricing.QuotedProduct{
		ProductID:         sp.ProductID.String(),
		Name:              sp.Product.Name,
		Type:              sp.Product.Type,
		GallonPrice:       sp.Product.Price,
		GallonVolumeMl:    gallonMl,
		DilutionRatio:     ratio,
		UsagePerVehicleMl: sp.UsagePerVehicleMl,
		ContainerSizeMl:   container,
	}
}

// ToQuoted snapshots the catalog service for use in a quote.
func (s Service) ToQuoted() pricing.QuotedService {
	q := pricing.QuotedService{
		ServiceID:            s.ID.String(),
		Name:                 s.Name,
		Price:                s.Price,
		LaborCostPerHour:     s.LaborCostPerHour,
		ExecutionTimeMinutes: s.ExecutionTimeMinutes,
		OtherCosts:           s.OtherCosts,
	}
	for _, sp := range s.Products {
		q.Products = append(q.Products, sp.ToQuoted())
	}
	return q
}
