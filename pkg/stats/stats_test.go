package stats

import (
	"testing"
	"time"

	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
	"github.com/sandlovubiz-ctrl/mureza/pkg/tokens"
)

func gen(model tokens.Model, reserved int, createdAt time.Time, took time.Duration) *storage.Generation {
	g := &storage.Generation{
		Model:          string(model),
		TokensReserved: reserved,
		CreatedAt:      createdAt,
	}
	if took > 0 {
		at := createdAt.Add(took)
		g.CompletedAt = &at
	}
	return g
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	gens := []*storage.Generation{
		gen(tokens.Tier1, 10, now, 20*time.Second),
		gen(tokens.Tier1, 20, now, 40*time.Second),
		gen(tokens.Tier3, 25, now, 0),
	}
	s := Summarize(gens)
	if s.Generations != 3 {
		t.Fatalf("Generations = %d; want 3", s.Generations)
	}
	if s.TokensUsed != 55 {
		t.Fatalf("TokensUsed = %d; want 55", s.TokensUsed)
	}
	if s.AvgSeconds != 30 {
		t.Fatalf("AvgSeconds = %d; want 30", s.AvgSeconds)
	}
	if s.FavoriteModel != tokens.Tier1 {
		t.Fatalf("FavoriteModel = %v; want %v", s.FavoriteModel, tokens.Tier1)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Generations != 0 || s.TokensUsed != 0 || s.AvgSeconds != 0 {
		t.Fatalf("Summarize(nil) = %+v; want zeros", s)
	}
	if s.FavoriteModel != tokens.Tier1 {
		t.Fatalf("FavoriteModel = %v; want %v", s.FavoriteModel, tokens.Tier1)
	}
}

func TestFavoriteModelTieBreak(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		models []tokens.Model
		want   tokens.Model
	}{
		{"tier2 vs tier3 tie", []tokens.Model{tokens.Tier3, tokens.Tier2}, tokens.Tier2},
		{"three way tie", []tokens.Model{tokens.Tier3, tokens.Tier2, tokens.Tier1}, tokens.Tier1},
		{"clear winner", []tokens.Model{tokens.Tier3, tokens.Tier3, tokens.Tier1}, tokens.Tier3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gens []*storage.Generation
			for _, m := range tt.models {
				gens = append(gens, gen(m, 10, now, time.Second))
			}
			if got := Summarize(gens).FavoriteModel; got != tt.want {
				t.Fatalf("FavoriteModel = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestMonthStart(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 34, 56, 0, time.UTC)
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := MonthStart(now); !got.Equal(want) {
		t.Fatalf("MonthStart() = %v; want %v", got, want)
	}
}
