package models

import (
	"detailpro-backend/pricing"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	QuoteStatusPending  = "pending"
	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"
	QuoteStatusClosed   = "closed"
)

// Quote is a price proposal for one or more services. Once closed it is a
// sale. The quoted services are stored as a JSON snapshot so later catalog
// edits never change an existing quote.
type Quote struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`

	ClientID          *uuid.UUID `gorm:"type:uuid;index" json:"clientId"`
	Client            *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	VehicleID         *uuid.UUID `gorm:"type:uuid;index" json:"vehicleId"`
	Vehicle           *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	ManualClientName  string     `json:"manualClientName"`
	ManualVehicleInfo string     `json:"manualVehicleInfo"`

	ServicesSummary datatypes.JSONType[[]pricing.QuotedService] `json:"servicesSummary"`

	OtherCosts     float64 `gorm:"type:decimal(10,2);default:0" json:"otherCosts"`
	Discount       float64 `gorm:"type:decimal(10,2);default:0" json:"discount"`
	DiscountType   string  `gorm:"type:varchar(12)" json:"discountType"`
	Commission     float64 `gorm:"type:decimal(10,2);default:0" json:"commission"`
	CommissionType string  `gorm:"type:varchar(12)" json:"commissionType"`

	PaymentMethodID *uuid.UUID     `gorm:"type:uuid;index" json:"paymentMethodId"`
	PaymentMethod   *PaymentMethod `gorm:"foreignKey:PaymentMethodID" json:"paymentMethod,omitempty"`
	Installments    int            `gorm:"default:1" json:"installments"`

	TotalPrice float64 `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	PaymentFee float64 `gorm:"type:decimal(10,2);default:0" json:"paymentFee"`
	TotalCost  float64 `gorm:"type:decimal(10,2);default:0" json:"totalCost"`
	NetProfit  float64 `gorm:"type:decimal(10,2);default:0" json:"netProfit"`
	MarginPct  float64 `gorm:"type:decimal(7,2);default:0" json:"marginPct"`

	Status        string     `gorm:"type:varchar(10);index;not null" json:"status"`
	IsSale        bool       `gorm:"index" json:"isSale"`
	ScheduledDate *time.Time `gorm:"index" json:"scheduledDate"`
	ScheduledTime string     `gorm:"type:varchar(5)" json:"scheduledTime"`
	Notes         string     `gorm:"type:text" json:"notes"`

	ClosedAt  *time.Time `json:"closedAt"`
	AccountID *uuid.UUID `gorm:"type:uuid" json:"accountId"`
}

func (q Quote) Services() []pricing.QuotedService {
	return q.ServicesSummary.Data()
}

// ClientLabel is the client name, or the manual text of a quick sale.
func (q Quote) ClientLabel() string {
	if q.Client != nil && q.Client.Name != "" {
		return q.Client.Name
	}
	return q.ManualClientName
}

func (q Quote) ServiceNames() string {
	services := q.Services()
	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

// ApplyResult stores the calculated totals on the quote.
func (q *Quote) ApplyResult(res pricing.QuoteResult) {
	q.TotalPrice = res.ValueAfterDiscount
	q.PaymentFee = res.PaymentFee
	q.TotalCost = res.TotalCost
	q.NetProfit = res.NetProfit
	q.MarginPct = res.MarginPct
}

func ValidQuoteStatus(status string) bool {
	switch status {
	case QuoteStatusPending, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusClosed:
		return true
	}
	return false
}
