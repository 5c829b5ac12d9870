// Package suggest talks to the workspace name-suggestion service to offer
// autocomplete candidates for person-name fields. Failures at this layer
// never block the wizard: callers fall back to treating the raw text as the
// field value.
package suggest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/anupamar/intake/types"
)

// ErrUnavailable reports that no remote call could be made right now
// (cooldown window, missing configuration). It is a signal to degrade, not
// an error to surface.
var ErrUnavailable = errors.New("suggest: service unavailable")

const (
	defaultLimit    = 5
	defaultCacheLen = 128
	defaultCooldown = time.Second
)

// SuggestResponse is the ranked candidate list for a partial name.
type SuggestResponse struct {
	Suggestions []types.NameSuggestion `json:"suggestions"`
	TotalFound  int                    `json:"total_found"`
}

// MatchResponse is the exact/fuzzy match result for a full name.
type MatchResponse struct {
	Found           bool                   `json:"found"`
	User            *types.NameSuggestion  `json:"user,omitempty"`
	ConfidenceScore float64                `json:"confidence_score,omitempty"`
	Suggestions     []types.NameSuggestion `json:"suggestions,omitempty"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	suggestions *responseCache[*SuggestResponse]
	matches     *responseCache[*MatchResponse]
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	suggestions, err := newResponseCache[*SuggestResponse](defaultCacheLen, defaultCooldown)
	if err != nil {
		return nil, err
	}
	matches, err := newResponseCache[*MatchResponse](defaultCacheLen, defaultCooldown)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:     baseURL,
		token:       token,
		httpClient:  http.DefaultClient,
		suggestions: suggestions,
		matches:     matches,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Suggest returns ranked candidates for a partial name. Identical queries
// are served from cache; calls inside the cooldown window return
// ErrUnavailable instead of hitting the service.
func (c *Client) Suggest(ctx context.Context, partialName string, limit int) (*SuggestResponse, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	key := partialName + "#" + strconv.Itoa(limit)
	if cached, ok := c.suggestions.get(key); ok {
		return cached, nil
	}
	if !c.suggestions.allowCall() {
		return nil, ErrUnavailable
	}

	var resp SuggestResponse
	err := c.post(ctx, "/users/suggestions", map[string]any{
		"partial_name": partialName,
		"limit":        limit,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.suggestions.put(key, &resp)
	slog.Debug("name suggestions fetched", "partial", partialName, "found", resp.TotalFound)
	return &resp, nil
}

// Match resolves a full name to a workspace user, or to further suggestions
// when no confident match exists.
func (c *Client) Match(ctx context.Context, name string) (*MatchResponse, error) {
	if cached, ok := c.matches.get(name); ok {
		return cached, nil
	}
	if !c.matches.allowCall() {
		return nil, ErrUnavailable
	}

	var resp MatchResponse
	if err := c.post(ctx, "/users/match", map[string]any{"name": name}, &resp); err != nil {
		return nil, err
	}
	c.matches.put(name, &resp)
	slog.Debug("name match attempted", "name", name, "found", resp.Found)
	return &resp, nil
}

// ResolveUserID maps a validated name to a workspace user id for people
// properties. A miss or any transport failure simply reports not-found.
func (c *Client) ResolveUserID(ctx context.Context, name string) (string, bool) {
	match, err := c.Match(ctx, name)
	if err != nil || !match.Found || match.User == nil || match.User.ID == "" {
		return "", false
	}
	return match.User.ID, true
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	if c.baseURL == "" {
		return ErrUnavailable
	}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, string(raw))
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
