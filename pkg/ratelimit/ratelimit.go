package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Lock serializes access to a resource while enforcing a minimum wait
// between consecutive uses.
type Lock interface {
	Lock(ctx context.Context) func()
}

type lock struct {
	wait time.Duration
	lck  sync.Mutex
	last time.Time
}

func New(wait time.Duration) Lock {
	return &lock{
		wait: wait,
	}
}

// Lock blocks until the resource is free and the wait since the last
// release has elapsed, then returns the unlock function.
func (l *lock) Lock(ctx context.Context) func() {
	l.lck.Lock()
	elapsed := time.Since(l.last)
	if elapsed < l.wait {
		t := time.NewTimer(l.wait - elapsed)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}
	return func() {
		l.last = time.Now()
		l.lck.Unlock()
	}
}
