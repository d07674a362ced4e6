package synth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sandlovubiz-ctrl/mureza/pkg/tokens"
)

// Track is the artifact reference returned by the synthesis service.
// The audio URL is a handle to remote audio, never audio bytes.
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Audio    string  `json:"audio_url"`
	Image    string  `json:"image_url"`
	Duration float32 `json:"duration"`
}

type generateRequest struct {
	Prompt          string `json:"prompt"`
	Model           string `json:"model"`
	DurationSeconds int    `json:"duration_seconds"`

	// IdempotencyKey lets the service deduplicate a submit that gets
	// retried after a gateway error.
	IdempotencyKey string `json:"idempotency_key"`
}

type generateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type jobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
	Track  *Track `json:"track"`
}

// Generate submits a synthesis job and waits for its terminal state,
// polling until the service reports completed or failed. The caller
// bounds the wait through the context deadline.
func (c *Client) Generate(ctx context.Context, prompt string, model tokens.Model, durationSeconds int) (*Track, error) {
	req := &generateRequest{
		Prompt:          prompt,
		Model:           string(model),
		DurationSeconds: durationSeconds,
		IdempotencyKey:  ulid.Make().String(),
	}
	var resp generateResponse
	if _, err := c.do(ctx, "POST", "v1/generations", req, &resp); err != nil {
		return nil, fmt.Errorf("synth: couldn't submit generation: %w", err)
	}
	if resp.ID == "" {
		return nil, errors.New("synth: empty job id")
	}
	return c.waitJob(ctx, resp.ID)
}

func (c *Client) waitJob(ctx context.Context, id string) (*Track, error) {
	u := fmt.Sprintf("v1/generations/%s", id)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.poll):
		}
		var resp jobResponse
		if _, err := c.do(ctx, "GET", u, nil, &resp); err != nil {
			return nil, fmt.Errorf("synth: couldn't get job %s: %w", id, err)
		}
		track, done, err := jobResult(&resp)
		if err != nil {
			return nil, err
		}
		if done {
			return track, nil
		}
		c.log("synth: job %s still %s", id, resp.Status)
	}
}

// jobResult interprets a job response: done reports whether the job
// reached its terminal state.
func jobResult(resp *jobResponse) (*Track, bool, error) {
	switch resp.Status {
	case "completed":
		if resp.Track == nil || resp.Track.Audio == "" {
			return nil, false, fmt.Errorf("synth: job %s completed without audio", resp.ID)
		}
		return resp.Track, true, nil
	case "failed":
		msg := resp.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, false, fmt.Errorf("synth: job %s failed: %s", resp.ID, msg)
	case "queued", "processing":
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("synth: job %s has unknown status %q", resp.ID, resp.Status)
	}
}

// Download fetches the audio behind a track handle into a local file.
func (c *Client) Download(ctx context.Context, track *Track, output string) error {
	b, err := c.do(ctx, "GET", track.Audio, nil, nil)
	if err != nil {
		return fmt.Errorf("synth: couldn't download track %s: %w", track.ID, err)
	}
	if err := os.WriteFile(output, b, 0644); err != nil {
		return fmt.Errorf("synth: couldn't write track %s: %w", track.ID, err)
	}
	log.Printf("synth: track %s downloaded to %s\n", track.ID, output)
	return nil
}
