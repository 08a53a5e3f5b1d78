package jsonstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Makepad-fr/bingo/internal/model"
)

func TestLoadBundledCard(t *testing.T) {
	g, err := New("", 8).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g.Len() != 64 {
		t.Fatalf("len = %d, want 64", g.Len())
	}
	first, ok := g.Item(0, 0)
	if !ok || first.Name != "Find a cat" || !first.Done {
		t.Fatalf("first cell = %+v", first)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.json")
	if err := os.WriteFile(path, []byte(`{"A":false,"B":false}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(path, 2)
	g, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := g.SetItemCompleted(0, 1, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Save(g); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := s.Game(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if it, _ := back.Item(0, 1); !it.Done {
		t.Fatal("saved state was not reloaded")
	}
}

func TestSaveBundledCardFails(t *testing.T) {
	s := New("", 8)
	g, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.Save(g); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.json"), 8).Load(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"A":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New(path, 8).Load()
	var pe *model.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestGameHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New("", 8).Game(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSaveKeepsFileOrderAndTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.json")
	if err := os.WriteFile(path, []byte(`{"Zebra":false,"Apple":false,"Extra":true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(path, 1)
	g, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := g.SetItemCompleted(0, 0, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Save(g); err != nil {
		t.Fatalf("save: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"Zebra":true,"Apple":false,"Extra":true}`; string(b) != want {
		t.Fatalf("file = %s, want %s", b, want)
	}
}

func TestSaveCreatesMissingFile(t *testing.T) {
	g, err := New("", 8).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	path := filepath.Join(t.TempDir(), "new.json")
	if err := New(path, 8).Save(g); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := New(path, 8).Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.Len() != 64 {
		t.Fatalf("len = %d, want 64", back.Len())
	}
}

func TestSaveRejectsCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.json")
	if err := os.WriteFile(path, []byte(`{"A":false}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(path, 2)
	g, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := os.WriteFile(path, []byte(`not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	var pe *model.ParseError
	if err := s.Save(g); !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if b, _ := os.ReadFile(path); string(b) != "not json" {
		t.Fatalf("corrupted file was overwritten: %s", b)
	}
}
