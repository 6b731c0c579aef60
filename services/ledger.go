// services/ledger.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"detailpro-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService keeps account balances in step with the transactions that
// touch them. Every write that moves money runs in a single database
// transaction.
type LedgerService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewLedgerService(db *gorm.DB, log *zap.Logger) *LedgerService {
	return &LedgerService{db: db, log: log}
}

type TransactionInput struct {
	AccountID    *uuid.UUID
	Type         string
	Amount       decimal.Decimal
	Description  string
	Category     string
	Counterparty string
	Date         time.Time
}

func (in TransactionInput) validate() error {
	if in.Type != models.TransactionCredit && in.Type != models.TransactionDebit {
		return fmt.Errorf("%w: type must be credit or debit", ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	return nil
}

// adjustBalance adds delta to the account. A nil account is a transaction
// recorded outside any account and leaves balances alone.
func adjustBalance(tx *gorm.DB, userID uuid.UUID, accountID *uuid.UUID, delta decimal.Decimal) error {
	if accountID == nil {
		return nil
	}
	res := tx.Model(&models.FinancialAccount{}).
		Where("id = ? AND user_id = ?", *accountID, userID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %w", ErrNotFound)
	}
	return nil
}

func (s *LedgerService) CreateTransaction(ctx context.Context, userID uuid.UUID, in TransactionInput) (*models.FinancialTransaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	t := models.FinancialTransaction{
		UserID:       userID,
		AccountID:    in.AccountID,
		Type:         in.Type,
		Amount:       in.Amount,
		Description:  in.Description,
		Category:     in.Category,
		Counterparty: in.Counterparty,
		Date:         in.Date,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		return adjustBalance(tx, userID, t.AccountID, t.SignedAmount())
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTransaction reverses the old effect on its account and applies the new
// one, so moving a transaction between accounts keeps both balances right.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, in TransactionInput) (*models.FinancialTransaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var t models.FinancialTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return notFound(err, "transaction")
		}
		if err := adjustBalance(tx, userID, t.AccountID, t.SignedAmount().Neg()); err != nil {
			return err
		}

		t.AccountID = in.AccountID
		t.Type = in.Type
		t.Amount = in.Amount
		t.Description = in.Description
		t.Category = in.Category
		t.Counterparty = in.Counterparty
		if !in.Date.IsZero() {
			t.Date = in.Date
		}
		if err := tx.Save(&t).Error; err != nil {
			return err
		}
		return adjustBalance(tx, userID, t.AccountID, t.SignedAmount())
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTransaction removes the entry and reverses its effect on the balance.
// A planned item realized by the transaction goes back to pending.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.FinancialTransaction
		if err := tx.First(&t, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return notFound(err, "transaction")
		}
		return deleteTransactionTx(tx, userID, t)
	})
}

func deleteTransactionTx(tx *gorm.DB, userID uuid.UUID, t models.FinancialTransaction) error {
	if err := tx.Delete(&t).Error; err != nil {
		return err
	}
	if t.PlannedItemID != nil {
		var item models.PlannedItem
		err := tx.Where("id = ? AND user_id = ?", *t.PlannedItemID, userID).Limit(1).Find(&item).Error
		if err != nil {
			return err
		}
		if item.ID != uuid.Nil {
			err = tx.Model(&item).Updates(map[string]interface{}{
				"status":         item.OpenStatus(time.Now()),
				"realized_at":    nil,
				"transaction_id": nil,
			}).Error
			if err != nil {
				return err
			}
		}
	}
	return adjustBalance(tx, userID, t.AccountID, t.SignedAmount().Neg())
}

// RealizePlannedItem books the planned item as a transaction on the given
// account, or on the item's own account when none is given.
func (s *LedgerService) RealizePlannedItem(ctx context.Context, userID, id uuid.UUID, accountID *uuid.UUID, date time.Time) (*models.PlannedItem, error) {
	if date.IsZero() {
		date = time.Now()
	}

	var item models.PlannedItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return notFound(err, "planned item")
		}
		if item.Status == models.PlannedStatusRealized {
			return fmt.Errorf("%w: planned item already realized", ErrInvalidState)
		}
		if accountID != nil {
			item.AccountID = accountID
		}

		t := models.FinancialTransaction{
			UserID:        userID,
			AccountID:     item.AccountID,
			Type:          item.TransactionType(),
			Amount:        item.Amount,
			Description:   item.Description,
			Category:      item.Category,
			Counterparty:  item.Counterparty,
			Date:          date,
			PlannedItemID: &item.ID,
		}
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		if err := adjustBalance(tx, userID, t.AccountID, t.SignedAmount()); err != nil {
			return err
		}

		item.Status = models.PlannedStatusRealized
		item.RealizedAt = &date
		item.TransactionID = &t.ID
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// MarkOverduePlannedItems flags every pending item due before today.
func (s *LedgerService) MarkOverduePlannedItems(ctx context.Context, now time.Time) (int64, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	res := s.db.WithContext(ctx).Model(&models.PlannedItem{}).
		Where("status = ? AND due_date < ?", models.PlannedStatusPending, today).
		Update("status", models.PlannedStatusOverdue)
	return res.RowsAffected, res.Error
}

type CloseSaleInput struct {
	// AccountID receives the sale amount net of the payment fee. Nil closes
	// the sale without touching the ledger.
	AccountID *uuid.UUID
	Date      time.Time
}

// CloseSale turns a quote into a sale.
func (s *LedgerService) CloseSale(ctx context.Context, userID, quoteID uuid.UUID, in CloseSaleInput) (*models.Quote, error) {
	var quote models.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Client").First(&quote, "id = ? AND user_id = ?", quoteID, userID).Error; err != nil {
			return notFound(err, "quote")
		}
		if quote.Status == models.QuoteStatusClosed {
			return fmt.Errorf("%w: quote already closed", ErrInvalidState)
		}
		return closeQuoteTx(tx, &quote, in)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Sale closed",
		zap.String("quote_id", quote.ID.String()),
		zap.Float64("total", quote.TotalPrice),
	)
	return &quote, nil
}

// RecordSale stores a new quote already closed as a sale, used by quick sales.
func (s *LedgerService) RecordSale(ctx context.Context, quote *models.Quote, in CloseSaleInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(quote).Error; err != nil {
			return err
		}
		return closeQuoteTx(tx, quote, in)
	})
}

func closeQuoteTx(tx *gorm.DB, quote *models.Quote, in CloseSaleInput) error {
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	quote.Status = models.QuoteStatusClosed
	quote.IsSale = true
	quote.ClosedAt = &date
	quote.AccountID = in.AccountID
	if err := tx.Model(quote).Select("status", "is_sale", "closed_at", "account_id").Updates(quote).Error; err != nil {
		return err
	}

	if in.AccountID == nil {
		return nil
	}
	net := decimal.NewFromFloat(quote.TotalPrice).Sub(decimal.NewFromFloat(quote.PaymentFee)).Round(2)
	if !net.IsPositive() {
		return nil
	}

	t := models.FinancialTransaction{
		UserID:       quote.UserID,
		AccountID:    in.AccountID,
		Type:         models.TransactionCredit,
		Amount:       net,
		Description:  "Sale: " + quote.ServiceNames(),
		Category:     "sales",
		Counterparty: quote.ClientLabel(),
		Date:         date,
		QuoteID:      &quote.ID,
	}
	if err := tx.Create(&t).Error; err != nil {
		return err
	}
	return adjustBalance(tx, quote.UserID, in.AccountID, t.Amount)
}

// DeleteQuote removes a quote or sale together with the ledger entries the
// sale produced.
func (s *LedgerService) DeleteQuote(ctx context.Context, userID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quote models.Quote
		if err := tx.First(&quote, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return notFound(err, "quote")
		}

		var linked []models.FinancialTransaction
		if err := tx.Where("quote_id = ? AND user_id = ?", quote.ID, userID).Find(&linked).Error; err != nil {
			return err
		}
		for _, t := range linked {
			if err := deleteTransactionTx(tx, userID, t); err != nil {
				return err
			}
		}
		return tx.Delete(&quote).Error
	})
}

func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return err
}
