package mureza

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/sandlovubiz-ctrl/mureza/pkg/synth"
	"github.com/sandlovubiz-ctrl/mureza/pkg/tokens"
)

type Config struct {
	Proxy string
	Wait  time.Duration
	Debug bool
	Host  string
	Key   string
}

// Generate synthesizes a track given a prompt, talking to the synthesis
// service directly without touching the token ledger.
func Generate(ctx context.Context, cfg *Config, prompt string, model tokens.Model, durationSeconds int, output string) error {
	if err := tokens.ValidateDuration(model, durationSeconds); err != nil {
		return err
	}
	httpClient := &http.Client{
		Timeout: 2 * time.Minute,
	}
	if cfg.Proxy != "" {
		u, err := url.Parse(cfg.Proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
		httpClient.Transport = &http.Transport{
			Proxy: http.ProxyURL(u),
		}
	}
	client := synth.New(&synth.Config{
		Wait:     cfg.Wait,
		Debug:    cfg.Debug,
		Client:   httpClient,
		Host:     cfg.Host,
		KeyStore: synth.NewKeyStore(cfg.Key),
	})
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("couldn't start synth client: %w", err)
	}
	defer func() {
		if err := client.Stop(ctx); err != nil {
			log.Printf("couldn't stop synth client: %v\n", err)
		}
	}()
	track, err := client.Generate(ctx, prompt, model, durationSeconds)
	if err != nil {
		return fmt.Errorf("couldn't generate track: %w", err)
	}
	log.Println("id:", track.ID)
	log.Println("title:", track.Title)
	log.Println("url:", track.Audio)
	if output == "" {
		return nil
	}
	if err := client.Download(ctx, track, output); err != nil {
		return fmt.Errorf("couldn't download track: %w", err)
	}
	return nil
}
