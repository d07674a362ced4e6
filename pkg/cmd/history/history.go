package history

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
)

type Config struct {
	Debug  bool
	DBType string
	DBConn string

	User   string
	Status string
	Page   int
	Size   int
}

// Run lists a user's generations, newest first.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.User == "" {
		return fmt.Errorf("history: user is empty")
	}
	store, err := storage.New(cfg.DBType, cfg.DBConn, cfg.Debug)
	if err != nil {
		return fmt.Errorf("history: couldn't create orm store: %w", err)
	}
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("history: couldn't start orm store: %w", err)
	}

	profile, err := store.GetProfileByEmail(ctx, cfg.User)
	if err != nil {
		return fmt.Errorf("history: couldn't get profile %s: %w", cfg.User, err)
	}

	filters := []storage.Filter{storage.Where("user_id = ?", profile.ID)}
	if cfg.Status != "" {
		status, err := parseStatus(cfg.Status)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		filters = append(filters, storage.Where("status = ?", status))
	}
	size := cfg.Size
	if size == 0 {
		size = 20
	}
	gens, err := store.ListGenerations(ctx, cfg.Page, size, "created_at desc", filters...)
	if err != nil {
		return fmt.Errorf("history: couldn't list generations: %w", err)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"date", "status", "model", "duration", "tokens", "prompt"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, WidthMax: 48},
	})
	for _, g := range gens {
		prompt := g.Prompt
		if len(prompt) > 48 {
			prompt = prompt[:45] + "..."
		}
		tw.AppendRow(table.Row{
			g.CreatedAt.Format("2006-01-02 15:04"),
			g.Status.String(),
			g.Model,
			formatDuration(g.DurationSeconds),
			g.TokensReserved,
			prompt,
		})
	}
	tw.Render()
	return nil
}

func parseStatus(s string) (storage.Status, error) {
	for _, status := range []storage.Status{
		storage.StatusPending,
		storage.StatusProcessing,
		storage.StatusCompleted,
		storage.StatusFailed,
	} {
		if status.String() == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

func formatDuration(seconds int) string {
	minutes := seconds / 60
	rest := seconds % 60
	if minutes == 0 {
		return fmt.Sprintf("%ds", seconds)
	}
	if rest == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, rest)
}
