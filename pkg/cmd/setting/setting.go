package setting

import (
	"context"
	"fmt"
	"log"

	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
	"github.com/sandlovubiz-ctrl/mureza/pkg/tokens"
)

type Config struct {
	Debug  bool
	DBType string
	DBConn string

	// Service key settings, e.g. the synthesis API key.
	Service string
	Account string
	Value   string

	// Profile settings.
	User               string
	DefaultModel       string
	AutoDownload       string
	EmailNotifications string
}

func Run(ctx context.Context, cfg *Config) error {
	store, err := storage.New(cfg.DBType, cfg.DBConn, cfg.Debug)
	if err != nil {
		return fmt.Errorf("setting: couldn't create orm store: %w", err)
	}
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("setting: couldn't start orm store: %w", err)
	}

	if cfg.Service != "" {
		return runKey(ctx, store, cfg)
	}
	if cfg.User != "" {
		return runProfile(ctx, store, cfg)
	}
	return fmt.Errorf("setting: either service or user must be set")
}

func runKey(ctx context.Context, store *storage.Store, cfg *Config) error {
	if cfg.Account == "" {
		return fmt.Errorf("setting: account is empty")
	}
	if cfg.Value == "" {
		return fmt.Errorf("setting: value is empty")
	}
	switch cfg.Service {
	case "synth":
	default:
		return fmt.Errorf("setting: unknown service: %s", cfg.Service)
	}
	if err := store.NewKeyStore(cfg.Service, cfg.Account).SetKey(ctx, cfg.Value); err != nil {
		return fmt.Errorf("setting: couldn't save key: %w", err)
	}
	log.Printf("setting: saved %s key for %s\n", cfg.Service, cfg.Account)
	return nil
}

func runProfile(ctx context.Context, store *storage.Store, cfg *Config) error {
	profile, err := store.GetProfileByEmail(ctx, cfg.User)
	if err != nil {
		return fmt.Errorf("setting: couldn't get profile %s: %w", cfg.User, err)
	}
	if cfg.DefaultModel != "" {
		model, err := tokens.Parse(cfg.DefaultModel)
		if err != nil {
			return fmt.Errorf("setting: %w", err)
		}
		profile.DefaultModel = string(model)
	}
	if cfg.AutoDownload != "" {
		v, err := parseBool(cfg.AutoDownload)
		if err != nil {
			return fmt.Errorf("setting: auto-download: %w", err)
		}
		profile.AutoDownload = v
	}
	if cfg.EmailNotifications != "" {
		v, err := parseBool(cfg.EmailNotifications)
		if err != nil {
			return fmt.Errorf("setting: email-notifications: %w", err)
		}
		profile.EmailNotifications = v
	}
	if err := store.UpdateProfileSettings(ctx, profile); err != nil {
		return fmt.Errorf("setting: couldn't update profile: %w", err)
	}
	log.Printf("setting: updated profile %s\n", profile.Email)
	return nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value %q", s)
	}
}
