package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/bingo/internal/model"
)

type stubSource struct {
	data  string
	grid  int
	err   error
	calls int
}

func (s *stubSource) Game(ctx context.Context) (*model.Game, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return model.Load([]byte(s.data), s.grid)
}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func do(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetBingo(t *testing.T) {
	src := &stubSource{data: `{"A":false,"B":true,"C":false}`, grid: 2}
	e := New(src, Options{}, quietLogger())

	rec := do(t, e, "/api/bingo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var g model.Game
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.GridSize() != 2 || g.Len() != 3 {
		t.Fatalf("unexpected game: grid %d len %d", g.GridSize(), g.Len())
	}
	if it, _ := g.Item(0, 1); it.Name != "B" || !it.Done {
		t.Fatalf("cell (0,1) = %+v", it)
	}

	do(t, e, "/api/bingo", "")
	if src.calls != 2 {
		t.Fatalf("source calls = %d, every request loads a fresh card", src.calls)
	}
}

func TestExportBingo(t *testing.T) {
	src := &stubSource{data: `{"A":false,"B":true}`, grid: 2}
	rec := do(t, New(src, Options{}, quietLogger()), "/api/bingo/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"A":false,"B":true}` {
		t.Fatalf("export = %s", got)
	}
}

func TestSourceError(t *testing.T) {
	src := &stubSource{err: errors.New("disk on fire")}
	rec := do(t, New(src, Options{}, quietLogger()), "/api/bingo", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "disk on fire") {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestTokenRequired(t *testing.T) {
	src := &stubSource{data: `{"A":false}`, grid: 1}
	e := New(src, Options{Token: "s3cret"}, quietLogger())

	if rec := do(t, e, "/api/bingo", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d", rec.Code)
	}
	if rec := do(t, e, "/api/bingo", "wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d", rec.Code)
	}
	if rec := do(t, e, "/api/bingo", "s3cret"); rec.Code != http.StatusOK {
		t.Fatalf("good token: status = %d", rec.Code)
	}
	if rec := do(t, e, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: status = %d", rec.Code)
	}
	if src.calls != 1 {
		t.Fatalf("source calls = %d, rejected requests must not load", src.calls)
	}
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>bingo</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := New(&stubSource{data: `{}`, grid: 1}, Options{StaticDir: dir}, quietLogger())
	rec := do(t, e, "/index.html", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "bingo") {
		t.Fatalf("static: %d %s", rec.Code, rec.Body)
	}
}
