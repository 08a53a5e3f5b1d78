package jsonstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Makepad-fr/bingo/internal/model"
)

// JSON-backed card storage. A single human-readable file holding a
// name -> done object, or the card bundled into the binary.
// No locking; one local process owns the file.

//go:embed default.json
var defaultCard []byte

// ErrReadOnly is returned when saving over the bundled card.
var ErrReadOnly = errors.New("bundled card is read-only, pass a data file to save")

// Default returns the bundled card.
func Default() []byte { return defaultCard }

type Store struct {
	path     string
	gridSize int
}

// New returns a store for the card at path. An empty path selects the bundled card.
func New(path string, gridSize int) *Store {
	return &Store{path: path, gridSize: gridSize}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Load() (*model.Game, error) {
	b := defaultCard
	if s.path != "" {
		var err error
		b, err = os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
	}
	g, err := model.Load(b, s.gridSize)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.name(), err)
	}
	return g, nil
}

// Game loads a fresh copy of the card on every call.
func (s *Store) Game(ctx context.Context) (*model.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Load()
}

// Save writes g over the card file. The file's entries keep their order and
// the ones past the grid keep their values; only done flags change.
func (s *Store) Save(g *model.Game) error {
	if s.path == "" {
		return ErrReadOnly
	}
	b := g.Save()
	doc, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		b, err = g.SaveOver(doc)
		if err != nil {
			return fmt.Errorf("rewrite %s: %w", s.path, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("read file: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *Store) name() string {
	if s.path == "" {
		return "bundled card"
	}
	return s.path
}
