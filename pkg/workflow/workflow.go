package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sandlovubiz-ctrl/mureza/pkg/session"
	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
	"github.com/sandlovubiz-ctrl/mureza/pkg/synth"
	"github.com/sandlovubiz-ctrl/mureza/pkg/tokens"
)

// ErrInvalidRequest rejects a submission before any side effect.
var ErrInvalidRequest = errors.New("workflow: invalid request")

// Ledger reserves and returns tokens. Satisfied by *ledger.Ledger.
type Ledger interface {
	Reserve(ctx context.Context, userID string, amount int, generationID string) error
	Refund(ctx context.Context, userID string, amount int, generationID string) error
}

// Store persists generation records. Satisfied by *storage.Store.
type Store interface {
	SetGeneration(ctx context.Context, v *storage.Generation) error
}

// Synthesizer produces an audio artifact for a prompt, blocking until
// the external service reports a terminal outcome. Satisfied by
// *synth.Client.
type Synthesizer interface {
	Generate(ctx context.Context, prompt string, model tokens.Model, durationSeconds int) (*synth.Track, error)
}

type Config struct {
	Ledger      Ledger
	Store       Store
	Synthesizer Synthesizer
	Tracks      *session.Cache

	// Timeout bounds the wait for a synthesis outcome; beyond it the
	// generation fails and is refunded.
	Timeout time.Duration
	Debug   bool
}

// Workflow drives a generation request from submission to a terminal
// state: Pending, then Processing, then Completed or Failed. Tokens are
// reserved before the record exists and refunded exactly once if the
// outcome is a failure.
type Workflow struct {
	ledger  Ledger
	store   Store
	synth   Synthesizer
	tracks  *session.Cache
	timeout time.Duration
	debug   bool
	wg      sync.WaitGroup
}

func New(cfg *Config) *Workflow {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Workflow{
		ledger:  cfg.Ledger,
		store:   cfg.Store,
		synth:   cfg.Synthesizer,
		tracks:  cfg.Tracks,
		timeout: timeout,
		debug:   cfg.Debug,
	}
}

func (w *Workflow) log(format string, args ...interface{}) {
	if w.debug {
		format += "\n"
		log.Printf(format, args...)
	}
}

// Submit validates the request, reserves its token cost and creates the
// Pending generation record, then drives it to a terminal state in the
// background. The drive runs on a detached context: a caller that goes
// away cannot leave a debited record without its completion or refund.
// The returned record is a submission-time snapshot; current state is
// always in the store.
func (w *Workflow) Submit(ctx context.Context, userID, prompt string, model tokens.Model, durationSeconds int) (*storage.Generation, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: empty prompt", ErrInvalidRequest)
	}
	if err := tokens.ValidateDuration(model, durationSeconds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	cost := tokens.Cost(model, durationSeconds)
	id := ulid.Make().String()

	// The reservation commits before the record exists.
	if err := w.ledger.Reserve(ctx, userID, cost, id); err != nil {
		return nil, err
	}

	gen := &storage.Generation{
		ID:              id,
		UserID:          userID,
		Prompt:          prompt,
		Model:           string(model),
		DurationSeconds: durationSeconds,
		TokensReserved:  cost,
		Status:          storage.StatusPending,
	}
	if err := w.store.SetGeneration(ctx, gen); err != nil {
		// The debit committed but the record didn't: undo the debit
		// right away so no tokens are lost.
		if rerr := w.ledger.Refund(ctx, userID, cost, id); rerr != nil {
			log.Printf("workflow: couldn't refund %s after failed record create: %v\n", id, rerr)
		}
		return nil, fmt.Errorf("workflow: couldn't create generation: %w", err)
	}
	w.log("workflow: submitted %s (%d tokens)", id, cost)

	// The goroutine drives its own copy so the record handed to the
	// caller is never written concurrently.
	driven := *gen
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.drive(context.WithoutCancel(ctx), &driven)
	}()
	return gen, nil
}

// Wait blocks until every in-flight generation has reached a terminal
// state.
func (w *Workflow) Wait() {
	w.wg.Wait()
}

func (w *Workflow) drive(ctx context.Context, gen *storage.Generation) {
	// The record reaches Processing before synthesis starts.
	update := *gen
	update.Status = storage.StatusProcessing
	if err := w.store.SetGeneration(ctx, &update); err != nil {
		w.fail(ctx, gen, err)
		return
	}
	*gen = update

	// Only the synthesis call is bounded by the timeout. Compensation
	// and terminal writes run on the detached context, so an expired
	// deadline can never block the refund it caused.
	sctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	track, err := w.synth.Generate(sctx, gen.Prompt, tokens.Model(gen.Model), gen.DurationSeconds)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("synthesis timed out after %s", w.timeout)
		}
		w.fail(ctx, gen, err)
		return
	}
	w.complete(ctx, gen, track)
}

// fail moves the generation to Failed, refunding its reservation
// first. The refund fires only on the transition out of a non-terminal
// state, so re-observing a failure can't refund twice. If the refund
// itself can't be committed the record is left non-terminal: a Failed
// state is never observable without its compensation.
func (w *Workflow) fail(ctx context.Context, gen *storage.Generation, cause error) {
	if gen.Status.Terminal() {
		return
	}
	if err := w.ledger.Refund(ctx, gen.UserID, gen.TokensReserved, gen.ID); err != nil {
		log.Printf("workflow: couldn't refund %s: %v\n", gen.ID, err)
		return
	}
	now := time.Now().UTC()
	update := *gen
	update.Status = storage.StatusFailed
	update.CompletedAt = &now
	update.ErrorMessage = cause.Error()
	if err := w.store.SetGeneration(ctx, &update); err != nil {
		log.Printf("workflow: couldn't mark %s failed: %v\n", gen.ID, err)
		return
	}
	*gen = update
	w.log("workflow: %s failed and refunded %d tokens: %v", gen.ID, gen.TokensReserved, cause)
}

// complete moves the generation to Completed and registers the session
// track, once. If the terminal record write doesn't commit, the user
// has no observable result, so the failure path runs instead.
func (w *Workflow) complete(ctx context.Context, gen *storage.Generation, track *synth.Track) {
	if gen.Status.Terminal() {
		return
	}
	now := time.Now().UTC()
	update := *gen
	update.Status = storage.StatusCompleted
	update.CompletedAt = &now
	update.Title = track.Title
	if err := w.store.SetGeneration(ctx, &update); err != nil {
		w.fail(ctx, gen, fmt.Errorf("couldn't store result: %w", err))
		return
	}
	*gen = update
	if w.tracks != nil {
		w.tracks.Add(&session.Track{
			ID:         gen.ID,
			Title:      track.Title,
			AudioURL:   track.Audio,
			Generation: gen,
		})
	}
	w.log("workflow: %s completed", gen.ID)
}
