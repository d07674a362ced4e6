package generate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sandlovubiz-ctrl/mureza/pkg/ledger"
	"github.com/sandlovubiz-ctrl/mureza/pkg/session"
	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
	"github.com/sandlovubiz-ctrl/mureza/pkg/synth"
	"github.com/sandlovubiz-ctrl/mureza/pkg/tokens"
	"github.com/sandlovubiz-ctrl/mureza/pkg/workflow"
)

type Config struct {
	Debug   bool
	DBType  string
	DBConn  string
	Proxy   string
	Timeout time.Duration

	Account string
	Host    string
	Wait    time.Duration

	User     string
	Prompt   string
	Model    string
	Duration int
	Count    int

	Output string
}

// Run submits generation requests and plays back the session results.
func Run(ctx context.Context, cfg *Config) error {
	log.Println("generate: process started")
	defer log.Println("generate: process ended")

	if cfg.User == "" {
		return fmt.Errorf("generate: user is empty")
	}
	if cfg.Prompt == "" {
		return fmt.Errorf("generate: prompt is empty")
	}

	store, err := storage.New(cfg.DBType, cfg.DBConn, cfg.Debug)
	if err != nil {
		return fmt.Errorf("generate: couldn't create orm store: %w", err)
	}
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("generate: couldn't start orm store: %w", err)
	}

	profile, err := store.GetProfileByEmail(ctx, cfg.User)
	if err != nil {
		return fmt.Errorf("generate: couldn't get profile %s: %w", cfg.User, err)
	}
	model := tokens.Model(profile.DefaultModel)
	if cfg.Model != "" {
		model, err = tokens.Parse(cfg.Model)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
	}
	duration := cfg.Duration
	if duration == 0 {
		duration = 60
	}

	httpClient := &http.Client{
		Timeout: 2 * time.Minute,
	}
	if cfg.Proxy != "" {
		u, err := url.Parse(cfg.Proxy)
		if err != nil {
			return fmt.Errorf("generate: invalid proxy URL: %w", err)
		}
		httpClient.Transport = &http.Transport{
			Proxy: http.ProxyURL(u),
		}
	}
	generator := synth.New(&synth.Config{
		Wait:     cfg.Wait,
		Debug:    cfg.Debug,
		Client:   httpClient,
		Host:     cfg.Host,
		KeyStore: store.NewKeyStore("synth", cfg.Account),
	})
	if err := generator.Start(ctx); err != nil {
		return fmt.Errorf("generate: couldn't start synth client: %w", err)
	}
	defer func() {
		if err := generator.Stop(ctx); err != nil {
			log.Printf("generate: couldn't stop synth client: %v\n", err)
		}
	}()

	tracks := session.NewCache()
	w := workflow.New(&workflow.Config{
		Ledger:      ledger.New(store),
		Store:       store,
		Synthesizer: generator,
		Tracks:      tracks,
		Timeout:     cfg.Timeout,
		Debug:       cfg.Debug,
	})

	count := cfg.Count
	if count == 0 {
		count = 1
	}
	cost := tokens.Cost(model, duration)
	log.Printf("generate: %d x %s for %ds (%d tokens each)\n", count, model, duration, cost)
	for i := 0; i < count; i++ {
		gen, err := w.Submit(ctx, profile.ID, cfg.Prompt, model, duration)
		switch {
		case errors.Is(err, storage.ErrInsufficientBalance):
			return fmt.Errorf("generate: %w, top up with the topup command", err)
		case err != nil:
			return fmt.Errorf("generate: %w", err)
		}
		log.Printf("generate: submitted %s\n", gen.ID)
	}
	w.Wait()

	printTracks(tracks)
	if cfg.Output != "" || profile.AutoDownload {
		output := cfg.Output
		if output == "" {
			output = ".cache"
		}
		if err := download(ctx, generator, tracks, output); err != nil {
			return fmt.Errorf("generate: %w", err)
		}
	}
	return nil
}

func printTracks(tracks *session.Cache) {
	ts := tracks.Tracks()
	if len(ts) == 0 {
		log.Println("generate: no tracks in this session")
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Session tracks (in memory only, gone when this session ends)")
	tw.AppendHeader(table.Row{"title", "id", "audio"})
	for _, t := range ts {
		tw.AppendRow(table.Row{t.Title, t.ID, t.AudioURL})
	}
	tw.Render()
}

func download(ctx context.Context, generator *synth.Client, tracks *session.Cache, output string) error {
	if err := os.MkdirAll(output, 0755); err != nil {
		return fmt.Errorf("couldn't create output folder: %w", err)
	}
	for _, t := range tracks.Tracks() {
		path := filepath.Join(output, fmt.Sprintf("%s.mp3", t.ID))
		if err := generator.Download(ctx, &synth.Track{ID: t.ID, Audio: t.AudioURL}, path); err != nil {
			return err
		}
	}
	return nil
}
