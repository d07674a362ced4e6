package storage

import (
	"context"
	"testing"
)

func TestNewUnknownType(t *testing.T) {
	if _, err := New("bolt", "data.db", false); err == nil {
		t.Fatal("New() err = nil; want error")
	}
}

func TestStartOpenFailure(t *testing.T) {
	store, err := New("mysql", "not-a-dsn", false)
	if err != nil {
		t.Fatalf("New() err = %v; want nil", err)
	}
	if err := store.Start(context.Background()); err == nil {
		t.Fatal("Start() err = nil; want error")
	}
}
