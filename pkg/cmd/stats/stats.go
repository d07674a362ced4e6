package stats

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sandlovubiz-ctrl/mureza/pkg/stats"
	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
)

type Config struct {
	Debug  bool
	DBType string
	DBConn string

	User string
}

// Run prints the monthly dashboard summary for a user.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.User == "" {
		return fmt.Errorf("stats: user is empty")
	}
	store, err := storage.New(cfg.DBType, cfg.DBConn, cfg.Debug)
	if err != nil {
		return fmt.Errorf("stats: couldn't create orm store: %w", err)
	}
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("stats: couldn't start orm store: %w", err)
	}

	profile, err := store.GetProfileByEmail(ctx, cfg.User)
	if err != nil {
		return fmt.Errorf("stats: couldn't get profile %s: %w", cfg.User, err)
	}

	start := stats.MonthStart(time.Now().UTC())
	gens, err := store.ListGenerations(ctx, 1, 10000, "created_at desc",
		storage.Where("user_id = ?", profile.ID),
		storage.Where("created_at >= ?", start))
	if err != nil {
		return fmt.Errorf("stats: couldn't list generations: %w", err)
	}
	s := stats.Summarize(gens)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("%s since %s", profile.Email, start.Format("2006-01-02")))
	tw.AppendRow(table.Row{"generations", s.Generations})
	tw.AppendRow(table.Row{"tokens used", s.TokensUsed})
	tw.AppendRow(table.Row{"avg completion", fmt.Sprintf("%ds", s.AvgSeconds)})
	tw.AppendRow(table.Row{"favorite model", s.FavoriteModel.String()})
	tw.AppendRow(table.Row{"token balance", profile.TokenBalance})
	tw.Render()
	return nil
}
