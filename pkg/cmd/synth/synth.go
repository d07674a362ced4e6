package synth

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sandlovubiz-ctrl/mureza"
	"github.com/sandlovubiz-ctrl/mureza/pkg/tokens"
)

type Config struct {
	Debug bool
	Proxy string
	Wait  time.Duration
	Host  string
	Key   string

	Prompt   string
	Model    string
	Duration int
	Output   string
}

// Run talks to the synthesis service directly, without profiles or
// token accounting. Useful to smoke-test a key before wiring it into a
// profile.
func Run(ctx context.Context, cfg *Config) error {
	log.Println("synth: process started")
	defer log.Println("synth: process ended")

	if cfg.Prompt == "" {
		return fmt.Errorf("synth: prompt is empty")
	}
	if cfg.Key == "" {
		return fmt.Errorf("synth: key file is empty")
	}
	model := tokens.Tier1
	if cfg.Model != "" {
		var err error
		model, err = tokens.Parse(cfg.Model)
		if err != nil {
			return fmt.Errorf("synth: %w", err)
		}
	}
	duration := cfg.Duration
	if duration == 0 {
		duration = 60
	}
	return mureza.Generate(ctx, &mureza.Config{
		Proxy: cfg.Proxy,
		Wait:  cfg.Wait,
		Debug: cfg.Debug,
		Host:  cfg.Host,
		Key:   cfg.Key,
	}, cfg.Prompt, model, duration, cfg.Output)
}
