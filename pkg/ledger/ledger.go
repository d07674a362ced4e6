package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
)

// Store is the subset of the record store the ledger needs. It is
// satisfied by *storage.Store. ReserveTokens must be atomic with
// respect to concurrent reserves on the same profile and return
// storage.ErrInsufficientBalance without mutation when the balance is
// short. CreditTokens must apply the balance update and the
// transaction append together.
type Store interface {
	GetProfile(ctx context.Context, id string) (*storage.Profile, error)
	ReserveTokens(ctx context.Context, userID string, amount int, generationID string) error
	CreditTokens(ctx context.Context, v *storage.TokenTransaction) error
}

// Ledger owns the token balance of every profile. Balance fields are
// never written by anyone else.
type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{
		store: store,
	}
}

// Reserve debits amount tokens from the user for the given generation,
// appending the usage transaction. Returns
// storage.ErrInsufficientBalance when the user can't cover it.
func (l *Ledger) Reserve(ctx context.Context, userID string, amount int, generationID string) error {
	if amount <= 0 {
		return fmt.Errorf("ledger: invalid reserve amount %d", amount)
	}
	return l.store.ReserveTokens(ctx, userID, amount, generationID)
}

// Refund returns the tokens reserved for a failed generation.
func (l *Ledger) Refund(ctx context.Context, userID string, amount int, generationID string) error {
	if amount <= 0 {
		return fmt.Errorf("ledger: invalid refund amount %d", amount)
	}
	v := &storage.TokenTransaction{
		UserID:      userID,
		Type:        storage.TxRefund,
		TokenAmount: amount,
	}
	if generationID != "" {
		v.GenerationID = &generationID
	}
	return l.store.CreditTokens(ctx, v)
}

// Purchase credits the tokens of a package to the user, recording the
// price and payment reference on the transaction.
func (l *Ledger) Purchase(ctx context.Context, userID string, pack *storage.TokenPackage, paymentID string) error {
	if pack.TokenAmount <= 0 {
		return fmt.Errorf("ledger: invalid package amount %d", pack.TokenAmount)
	}
	if paymentID == "" {
		paymentID = fmt.Sprintf("sim_%d", time.Now().UnixMilli())
	}
	return l.store.CreditTokens(ctx, &storage.TokenTransaction{
		UserID:      userID,
		Type:        storage.TxPurchase,
		TokenAmount: pack.TokenAmount,
		PriceUSD:    pack.PriceUSD,
		PaymentID:   paymentID,
		PackageName: pack.Name,
	})
}

// Balance returns the user's current token balance.
func (l *Ledger) Balance(ctx context.Context, userID string) (int, error) {
	p, err := l.store.GetProfile(ctx, userID)
	if err != nil {
		return 0, err
	}
	return p.TokenBalance, nil
}
