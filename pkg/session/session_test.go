package session

import "testing"

func TestAddOrder(t *testing.T) {
	c := NewCache()
	c.Add(&Track{ID: "a"})
	c.Add(&Track{ID: "b"})
	c.Add(&Track{ID: "c"})

	tracks := c.Tracks()
	if len(tracks) != 3 {
		t.Fatalf("Tracks() len = %d; want 3", len(tracks))
	}
	want := []string{"c", "b", "a"}
	for i, id := range want {
		if tracks[i].ID != id {
			t.Fatalf("Tracks()[%d] = %s; want %s", i, tracks[i].ID, id)
		}
	}
}

func TestAddSetsActive(t *testing.T) {
	c := NewCache()
	if c.Active() != nil {
		t.Fatal("Active() != nil on empty cache")
	}
	c.Add(&Track{ID: "a"})
	c.Add(&Track{ID: "b"})
	if got := c.Active(); got == nil || got.ID != "b" {
		t.Fatalf("Active() = %v; want b", got)
	}
}

func TestSelect(t *testing.T) {
	c := NewCache()
	c.Add(&Track{ID: "a"})
	c.Add(&Track{ID: "b"})

	track, ok := c.Select("a")
	if !ok {
		t.Fatal("Select(a) = false; want true")
	}
	if track.ID != "a" {
		t.Fatalf("Select(a) = %s; want a", track.ID)
	}
	if got := c.Active(); got.ID != "a" {
		t.Fatalf("Active() = %s; want a", got.ID)
	}
	if _, ok := c.Select("missing"); ok {
		t.Fatal("Select(missing) = true; want false")
	}
	// A failed select doesn't move the selection.
	if got := c.Active(); got.ID != "a" {
		t.Fatalf("Active() = %s; want a", got.ID)
	}
}

func TestDefaultTitle(t *testing.T) {
	c := NewCache()
	c.Add(&Track{ID: "a"})
	c.Add(&Track{ID: "b", Title: "Custom"})
	c.Add(&Track{ID: "c"})

	tests := []struct {
		id   string
		want string
	}{
		{"a", "Generation 1"},
		{"b", "Custom"},
		{"c", "Generation 3"},
	}
	for _, tt := range tests {
		track, ok := c.Get(tt.id)
		if !ok {
			t.Fatalf("Get(%s) = false; want true", tt.id)
		}
		if track.Title != tt.want {
			t.Fatalf("title of %s = %q; want %q", tt.id, track.Title, tt.want)
		}
	}
}
