package synth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sandlovubiz-ctrl/mureza/pkg/tokens"
)

func TestGenerate(t *testing.T) {
	var lck sync.Mutex
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/generations":
			var req generateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode submit body: %v", err)
			}
			lck.Lock()
			keys = append(keys, req.IdempotencyKey)
			lck.Unlock()
			_ = json.NewEncoder(w).Encode(generateResponse{ID: "j1", Status: "queued"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/generations/j1":
			_ = json.NewEncoder(w).Encode(jobResponse{
				ID:     "j1",
				Status: "completed",
				Track:  &Track{ID: "t1", Title: "Night Drive", Audio: "https://cdn/t1.mp3"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(&Config{
		Wait: time.Millisecond,
		Poll: time.Millisecond,
		Host: srv.URL,
	})
	c.key = "test-key"

	track, err := c.Generate(context.Background(), "a night drive synthwave track", tokens.Tier1, 60)
	if err != nil {
		t.Fatalf("Generate() err = %v; want nil", err)
	}
	if track.ID != "t1" {
		t.Fatalf("Generate() track = %s; want t1", track.ID)
	}
	if track.Audio != "https://cdn/t1.mp3" {
		t.Fatalf("Generate() audio = %s; want https://cdn/t1.mp3", track.Audio)
	}
	// Every submit carries a deduplication key, generated once per
	// Generate call so a retried request repeats the same one.
	if len(keys) != 1 || keys[0] == "" {
		t.Fatalf("idempotency keys = %v; want one non-empty key", keys)
	}
}

func TestJobResult(t *testing.T) {
	tests := []struct {
		name     string
		resp     jobResponse
		wantDone bool
		wantErr  bool
		wantID   string
	}{
		{
			name:     "queued",
			resp:     jobResponse{ID: "j1", Status: "queued"},
			wantDone: false,
		},
		{
			name:     "processing",
			resp:     jobResponse{ID: "j1", Status: "processing"},
			wantDone: false,
		},
		{
			name:     "completed",
			resp:     jobResponse{ID: "j1", Status: "completed", Track: &Track{ID: "t1", Audio: "https://cdn/t1.mp3"}},
			wantDone: true,
			wantID:   "t1",
		},
		{
			name:    "completed without audio",
			resp:    jobResponse{ID: "j1", Status: "completed", Track: &Track{ID: "t1"}},
			wantErr: true,
		},
		{
			name:    "completed without track",
			resp:    jobResponse{ID: "j1", Status: "completed"},
			wantErr: true,
		},
		{
			name:    "failed",
			resp:    jobResponse{ID: "j1", Status: "failed", Error: "model overloaded"},
			wantErr: true,
		},
		{
			name:    "failed without message",
			resp:    jobResponse{ID: "j1", Status: "failed"},
			wantErr: true,
		},
		{
			name:    "unknown status",
			resp:    jobResponse{ID: "j1", Status: "paused"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, done, err := jobResult(&tt.resp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("jobResult() err = %v; want error %v", err, tt.wantErr)
			}
			if done != tt.wantDone {
				t.Fatalf("jobResult() done = %v; want %v", done, tt.wantDone)
			}
			if tt.wantID != "" && (track == nil || track.ID != tt.wantID) {
				t.Fatalf("jobResult() track = %v; want %s", track, tt.wantID)
			}
		})
	}
}
