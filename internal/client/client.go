package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Makepad-fr/bingo/internal/model"
)

// StatusError is a non-2xx answer from the bingo server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bingo server returned %d", e.Code)
	}
	return fmt.Sprintf("bingo server returned %d: %s", e.Code, e.Body)
}

type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

// New returns a client for the server at baseURL. A nil hc uses http.DefaultClient.
func New(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, hc: hc}
}

// FetchGame makes one request for the card; it never retries.
func (c *Client) FetchGame(ctx context.Context) (*model.Game, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/bingo", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bingo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	var g model.Game
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, fmt.Errorf("decode bingo: %w", err)
	}
	return &g, nil
}
