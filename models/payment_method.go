package models

import (
	"detailpro-backend/pricing"

	"github.com/google/uuid"
)

const MaxInstallments = 12

type PaymentMethod struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`

	Name     string  `gorm:"not null" json:"name"`
	Type     string  `gorm:"type:varchar(20);not null" json:"type"` // cash, pix, credit_card, debit_card
	Rate     float64 `gorm:"type:decimal(5,2);default:0" json:"rate"`
	IsActive bool    `gorm:"default:true" json:"isActive"`

	Installments []PaymentMethodInstallment `gorm:"foreignKey:PaymentMethodID;constraint:OnDelete:CASCADE" json:"installments"`
}

type PaymentMethodInstallment struct {
	Base
	PaymentMethodID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_method_installments,priority:1;not null" json:"paymentMethodId"`
	Installments    int       `gorm:"uniqueIndex:idx_method_installments,priority:2;not null" json:"installments"`
	Rate            float64   `gorm:"type:decimal(5,2);default:0" json:"rate"`
}

// ToPricing returns the fee view of the payment method.
func (m PaymentMethod) ToPricing() *pricing.PaymentMethod {
	pm := &pricing.PaymentMethod{Type: m.Type, Rate: m.Rate}
	if len(m.Installments) > 0 {
		pm.Installments = make(map[int]float64, len(m.Installments))
		for _, i := range m.Installments {
			pm.Installments[i.Installments] = i.Rate
		}
	}
	return pm
}

// DefaultInstallments builds the 1x..12x rows of a credit card method. Rates
// missing from the given map default to the base rate.
func DefaultInstallments(baseRate float64, rates map[int]float64) []PaymentMethodInstallment {
	rows := make([]PaymentMethodInstallment, 0, MaxInstallments)
	for n := 1; n <= MaxInstallments; n++ {
		rate, ok := rates[n]
		if !ok {
			rate = baseRate
		}
		rows = append(rows, PaymentMethodInstallment{Installments: n, Rate: rate})
	}
	return rows
}
