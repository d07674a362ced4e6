package stats

import (
	"time"

	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
	"github.com/sandlovubiz-ctrl/mureza/pkg/tokens"
)

// Summary aggregates a set of generations for display.
type Summary struct {
	Generations   int
	TokensUsed    int
	AvgSeconds    int
	FavoriteModel tokens.Model
}

// Summarize computes the dashboard summary for the given generations.
// TokensUsed counts reservations, regardless of later refunds. The
// average completion time only considers generations that reached a
// terminal state. Favorite-model ties break by tier declaration order.
func Summarize(gens []*storage.Generation) Summary {
	s := Summary{
		Generations:   len(gens),
		FavoriteModel: tokens.Tier1,
	}
	counts := map[tokens.Model]int{}
	var totalSeconds float64
	var completed int
	for _, g := range gens {
		s.TokensUsed += g.TokensReserved
		counts[tokens.Model(g.Model)]++
		if g.CompletedAt != nil {
			totalSeconds += g.CompletedAt.Sub(g.CreatedAt).Seconds()
			completed++
		}
	}
	if completed > 0 {
		s.AvgSeconds = int(totalSeconds/float64(completed) + 0.5)
	}
	best := 0
	for _, m := range tokens.Models {
		if counts[m] > best {
			best = counts[m]
			s.FavoriteModel = m
		}
	}
	return s
}

// MonthStart returns the first instant of now's month, the window the
// dashboard aggregates over.
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
