package topup

import (
	"context"
	"fmt"
	"log"

	"github.com/sandlovubiz-ctrl/mureza/pkg/ledger"
	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
)

type Config struct {
	Debug  bool
	DBType string
	DBConn string

	User      string
	Package   string
	PaymentID string
}

// Run purchases a token package for a user. Payments are simulated:
// without an explicit payment reference the ledger records a sim_
// identifier, the way the hosted product does while billing is stubbed.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.User == "" {
		return fmt.Errorf("topup: user is empty")
	}
	if cfg.Package == "" {
		return fmt.Errorf("topup: package is empty")
	}

	store, err := storage.New(cfg.DBType, cfg.DBConn, cfg.Debug)
	if err != nil {
		return fmt.Errorf("topup: couldn't create orm store: %w", err)
	}
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("topup: couldn't start orm store: %w", err)
	}

	profile, err := store.GetProfileByEmail(ctx, cfg.User)
	if err != nil {
		return fmt.Errorf("topup: couldn't get profile %s: %w", cfg.User, err)
	}
	pack, err := store.GetPackage(ctx, cfg.Package)
	if err != nil {
		return fmt.Errorf("topup: couldn't get package %s: %w", cfg.Package, err)
	}
	if !pack.Active {
		return fmt.Errorf("topup: package %s is not active", pack.Name)
	}

	l := ledger.New(store)
	if err := l.Purchase(ctx, profile.ID, pack, cfg.PaymentID); err != nil {
		return fmt.Errorf("topup: couldn't purchase package: %w", err)
	}
	balance, err := l.Balance(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("topup: couldn't get balance: %w", err)
	}
	log.Printf("topup: added %d tokens to %s, balance is now %d\n", pack.TokenAmount, profile.Email, balance)
	return nil
}
