package signup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
	"github.com/sandlovubiz-ctrl/mureza/pkg/tokens"
)

type Config struct {
	Debug  bool
	DBType string
	DBConn string

	Email        string
	FullName     string
	DefaultModel string
}

// Run creates a profile. Profiles start with a zero token balance so
// that the transaction history always sums to the current balance;
// tokens arrive through topup.
func Run(ctx context.Context, cfg *Config) error {
	email := strings.TrimSpace(strings.ToLower(cfg.Email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("signup: invalid email %q", cfg.Email)
	}
	model := tokens.Tier1
	if cfg.DefaultModel != "" {
		var err error
		model, err = tokens.Parse(cfg.DefaultModel)
		if err != nil {
			return fmt.Errorf("signup: %w", err)
		}
	}

	store, err := storage.New(cfg.DBType, cfg.DBConn, cfg.Debug)
	if err != nil {
		return fmt.Errorf("signup: couldn't create orm store: %w", err)
	}
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("signup: couldn't start orm store: %w", err)
	}

	if _, err := store.GetProfileByEmail(ctx, email); err == nil {
		return fmt.Errorf("signup: profile for %s already exists", email)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("signup: couldn't check profile: %w", err)
	}

	profile := &storage.Profile{
		ID:                 ulid.Make().String(),
		Email:              email,
		FullName:           strings.TrimSpace(cfg.FullName),
		DefaultModel:       string(model),
		EmailNotifications: true,
	}
	if err := store.SetProfile(ctx, profile); err != nil {
		return fmt.Errorf("signup: couldn't create profile: %w", err)
	}
	log.Printf("signup: created profile %s for %s\n", profile.ID, email)
	return nil
}
