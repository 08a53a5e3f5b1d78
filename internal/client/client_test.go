package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/bingo/internal/model"
	"github.com/Makepad-fr/bingo/internal/server"
	"github.com/Makepad-fr/bingo/internal/store/jsonstore"
)

func newServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)
	ts := httptest.NewServer(server.New(jsonstore.New("", 8), server.Options{Token: token}, logger))
	t.Cleanup(ts.Close)
	return ts
}

func TestFetchGame(t *testing.T) {
	ts := newServer(t, "")
	g, err := New(ts.URL+"/", "", ts.Client()).FetchGame(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if g.GridSize() != 8 || g.Len() != 64 {
		t.Fatalf("grid %d len %d", g.GridSize(), g.Len())
	}
	local, err := jsonstore.New("", 8).Load()
	if err != nil {
		t.Fatalf("local load: %v", err)
	}
	for i, it := range local.Items() {
		if got := g.Items()[i]; got != it {
			t.Fatalf("item %d = %+v, want %+v", i, got, it)
		}
	}
}

func TestFetchGameWithToken(t *testing.T) {
	ts := newServer(t, "tok")

	_, err := New(ts.URL, "", ts.Client()).FetchGame(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}

	if _, err := New(ts.URL, "tok", ts.Client()).FetchGame(context.Background()); err != nil {
		t.Fatalf("fetch with token: %v", err)
	}
}

func TestFetchGameBadPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"grid_size":0,"items":[]}`))
	}))
	defer ts.Close()

	_, err := New(ts.URL, "", ts.Client()).FetchGame(context.Background())
	var pe *model.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestFetchGameCanceled(t *testing.T) {
	ts := newServer(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(ts.URL, "", ts.Client()).FetchGame(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
