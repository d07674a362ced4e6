package billing

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
)

type Config struct {
	Debug  bool
	DBType string
	DBConn string

	User  string
	Limit int
}

// Run lists the active token packages and, when a user is given, their
// recent transactions.
func Run(ctx context.Context, cfg *Config) error {
	store, err := storage.New(cfg.DBType, cfg.DBConn, cfg.Debug)
	if err != nil {
		return fmt.Errorf("billing: couldn't create orm store: %w", err)
	}
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("billing: couldn't start orm store: %w", err)
	}

	packs, err := store.ListPackages(ctx)
	if err != nil {
		return fmt.Errorf("billing: couldn't list packages: %w", err)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Token packages")
	tw.AppendHeader(table.Row{"package", "tokens", "price", "description"})
	for _, p := range packs {
		tw.AppendRow(table.Row{p.Name, p.TokenAmount, fmt.Sprintf("$%.2f", p.PriceUSD), p.Description})
	}
	tw.Render()

	if cfg.User == "" {
		return nil
	}
	profile, err := store.GetProfileByEmail(ctx, cfg.User)
	if err != nil {
		return fmt.Errorf("billing: couldn't get profile %s: %w", cfg.User, err)
	}
	limit := cfg.Limit
	if limit == 0 {
		limit = 20
	}
	txs, err := store.ListTransactions(ctx, 1, limit, "created_at desc",
		storage.Where("user_id = ?", profile.ID))
	if err != nil {
		return fmt.Errorf("billing: couldn't list transactions: %w", err)
	}

	tw = table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("Transactions of %s (balance %d)", profile.Email, profile.TokenBalance))
	tw.AppendHeader(table.Row{"date", "type", "tokens", "package", "payment"})
	for _, tx := range txs {
		tw.AppendRow(table.Row{
			tx.CreatedAt.Format("2006-01-02 15:04"),
			tx.Type.String(),
			tx.TokenAmount,
			tx.PackageName,
			tx.PaymentID,
		})
	}
	tw.Render()
	return nil
}
