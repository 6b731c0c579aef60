package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Money goes out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	AccountTypeBank = "bank"
	AccountTypeCash = "cash"

	TransactionCredit = "credit"
	TransactionDebit  = "debit"

	PlannedPayable    = "payable"
	PlannedReceivable = "receivable"

	PlannedStatusPending  = "pending"
	PlannedStatusRealized = "realized"
	PlannedStatusOverdue  = "overdue"
)

type FinancialAccount struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`

	Name     string          `gorm:"not null" json:"name"`
	Type     string          `gorm:"type:varchar(10);not null" json:"type"` // bank, cash
	Balance  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Color    string          `gorm:"type:varchar(9)" json:"color"`
	BankCode string          `gorm:"type:varchar(10)" json:"bankCode"`
}

type FinancialTransaction struct {
	Base
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	AccountID *uuid.UUID `gorm:"type:uuid;index" json:"accountId"`

	Type         string          `gorm:"type:varchar(10);not null" json:"type"` // credit, debit
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Counterparty string          `json:"counterparty"`
	Date         time.Time       `gorm:"index;not null" json:"date"`

	QuoteID       *uuid.UUID `gorm:"type:uuid;index" json:"quoteId"`
	PlannedItemID *uuid.UUID `gorm:"type:uuid;index" json:"plannedItemId"`
}

// SignedAmount is the effect of the transaction on its account balance.
func (t FinancialTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// PlannedItem is a future payable or receivable that has not hit an account yet.
type PlannedItem struct {
	Base
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	AccountID *uuid.UUID `gorm:"type:uuid;index" json:"accountId"`

	Type         string          `gorm:"type:varchar(10);not null" json:"type"` // payable, receivable
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Counterparty string          `json:"counterparty"`
	DueDate      time.Time       `gorm:"index;not null" json:"dueDate"`
	Status       string          `gorm:"type:varchar(10);index;not null" json:"status"`

	RealizedAt    *time.Time `json:"realizedAt"`
	TransactionID *uuid.UUID `gorm:"type:uuid" json:"transactionId"`
}

// OpenStatus is the status of an item not yet realized: overdue once its due
// date is before the day of now.
func (p PlannedItem) OpenStatus(now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if p.DueDate.Before(today) {
		return PlannedStatusOverdue
	}
	return PlannedStatusPending
}

// TransactionType is the ledger direction a planned item turns into.
func (p PlannedItem) TransactionType() string {
	if p.Type == PlannedPayable {
		return TransactionDebit
	}
	return TransactionCredit
}
