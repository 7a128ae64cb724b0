// Package snapshot fetches initial state over plain HTTP before the realtime
// channel starts delivering deltas. Every call is best-effort: a failed fetch
// leaves the surface rendering whatever it already has.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/tablero-live/surfaces/pkg/wire"
)

const defaultTimeout = 5 * time.Second

type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

func New(baseURL string, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: defaultTimeout},
		log:  log.Named("snapshot"),
	}, nil
}

// GameState fetches /api/game_state.
func (c *Client) GameState(ctx context.Context) (wire.GameState, error) {
	var out wire.GameState
	err := c.get(ctx, "/api/game_state", &out)
	return out, err
}

// Questions fetches the question list for one question type.
func (c *Client) Questions(ctx context.Context, questionType string) ([]wire.Question, error) {
	var out []wire.Question
	err := c.get(ctx, "/api/questions/"+url.PathEscape(questionType), &out)
	return out, err
}

// OverlayChat fetches the recent chat buffer for the chat widget.
func (c *Client) OverlayChat(ctx context.Context) ([]wire.ChatMessage, error) {
	var out struct {
		Messages []wire.ChatMessage `json:"messages"`
	}
	if err := c.get(ctx, "/api/overlay/chat", &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// OverlayScoreboard fetches the scoreboard widget snapshot.
func (c *Client) OverlayScoreboard(ctx context.Context) (wire.FullState, error) {
	var out wire.FullState
	err := c.get(ctx, "/api/overlay/scoreboard", &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	u := *c.base
	u.Path = path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode body: %w", path, err)
	}
	return nil
}
