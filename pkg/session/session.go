package session

import (
	"fmt"
	"sync"

	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
)

// Track is a playable result of a completed generation. The audio URL
// is a transient handle: tracks live only in process memory and are
// gone when the session ends.
type Track struct {
	ID         string
	Title      string
	AudioURL   string
	Generation *storage.Generation
}

// Cache holds the tracks of the current session, most recent first,
// with an active selection. It is not persisted and has no eviction:
// its lifetime is the session, nothing else.
type Cache struct {
	lck    sync.Mutex
	tracks []*Track
	active *Track
}

func NewCache() *Cache {
	return &Cache{}
}

// Add prepends the track and makes it the active one. Tracks without a
// title get a session-scoped default.
func (c *Cache) Add(t *Track) {
	c.lck.Lock()
	defer c.lck.Unlock()
	if t.Title == "" {
		t.Title = fmt.Sprintf("Generation %d", len(c.tracks)+1)
	}
	c.tracks = append([]*Track{t}, c.tracks...)
	c.active = t
}

// Select makes the track with the given id active.
func (c *Cache) Select(id string) (*Track, bool) {
	c.lck.Lock()
	defer c.lck.Unlock()
	for _, t := range c.tracks {
		if t.ID == id {
			c.active = t
			return t, true
		}
	}
	return nil, false
}

// Active returns the currently selected track, or nil.
func (c *Cache) Active() *Track {
	c.lck.Lock()
	defer c.lck.Unlock()
	return c.active
}

// Get returns the track for a generation id.
func (c *Cache) Get(id string) (*Track, bool) {
	c.lck.Lock()
	defer c.lck.Unlock()
	for _, t := range c.tracks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Tracks returns the session tracks, most recent first.
func (c *Cache) Tracks() []*Track {
	c.lck.Lock()
	defer c.lck.Unlock()
	out := make([]*Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

func (c *Cache) Len() int {
	c.lck.Lock()
	defer c.lck.Unlock()
	return len(c.tracks)
}
