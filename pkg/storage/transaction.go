package storage

import (
	"context"
	"fmt"
	"time"
)

// TransactionType custom type for our enum
type TransactionType int

// Enum values for TransactionType
const (
	TxPurchase TransactionType = 0
	TxUsage    TransactionType = 1
	TxRefund   TransactionType = 2
)

func (t TransactionType) String() string {
	switch t {
	case TxPurchase:
		return "purchase"
	case TxUsage:
		return "usage"
	case TxRefund:
		return "refund"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// TokenTransaction is append-only: rows are only ever created, through
// ReserveTokens and CreditTokens.
type TokenTransaction struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time

	UserID       string `gorm:"index;not null"`
	GenerationID *string

	Type        TransactionType `gorm:"not null;default:0"`
	TokenAmount int             `gorm:"not null;default:0"`

	PriceUSD    float64 `gorm:"not null;default:0"`
	PaymentID   string  `gorm:"not null;default:''"`
	PackageName string  `gorm:"not null;default:''"`
}

func (s *Store) ListTransactions(ctx context.Context, page, size int, orderBy string, filter ...Filter) ([]*TokenTransaction, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * size
	vs := []*TokenTransaction{}

	q := s.db.Offset(offset).Limit(size)
	for _, f := range filter {
		q = q.Where(f.Query, f.Args...)
	}
	if orderBy != "" {
		q = q.Order(orderBy)
	}
	if err := q.Find(&vs).Error; err != nil {
		return nil, fmt.Errorf("storage: failed to list TokenTransactions: %w", err)
	}
	return vs, nil
}

// SumTransactions returns the sum of a user's transaction amounts.
// Profiles start at zero tokens, so the sum always equals the current
// balance.
func (s *Store) SumTransactions(ctx context.Context, userID string) (int, error) {
	var sum *int
	if err := s.db.Model(&TokenTransaction{}).
		Where("user_id = ?", userID).
		Select("SUM(token_amount)").
		Scan(&sum).Error; err != nil {
		return 0, fmt.Errorf("storage: failed to sum TokenTransactions for %s: %w", userID, err)
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
