// Package notion writes the finished intake record to the external document
// database and maps failures back onto form fields. The database schema is
// treated as opaque: the only introspection is the select-options lookup and
// error-message pattern matching.
package notion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/anupamar/intake/registry"
	"github.com/anupamar/intake/types"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	notionVersion  = "2022-06-28"
)

// ErrNotConfigured is returned when token or database id is missing.
var ErrNotConfigured = errors.New("notion: integration not configured")

// Resolver turns a person name into a workspace user id. Implemented by the
// suggest client; resolution failures fall back to storing the plain name.
type Resolver interface {
	ResolveUserID(ctx context.Context, name string) (string, bool)
}

type Client struct {
	token      string
	databaseID string
	baseURL    string
	httpClient *http.Client
	resolver   Resolver
	now        func() time.Time
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithResolver enables people-property resolution for owner and created_by.
func WithResolver(resolver Resolver) Option {
	return func(c *Client) { c.resolver = resolver }
}

func NewClient(token, databaseID string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		databaseID: databaseID,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether both the token and the database id are set.
func (c *Client) Configured() bool {
	return c.token != "" && c.databaseID != ""
}

// CreateRecord submits the record plus attachments as a new database page
// and returns the created page id.
func (c *Client) CreateRecord(ctx context.Context, record types.FormRecord, attachments []types.Attachment) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	properties := c.buildProperties(ctx, record, attachments)
	pageData := map[string]any{
		"parent":     map[string]any{"database_id": c.databaseID},
		"properties": properties,
	}

	body, err := sonic.Marshal(pageData)
	if err != nil {
		return "", fmt.Errorf("marshal page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := sonic.Unmarshal(raw, &created); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	slog.Info("record created", "page_id", created.ID)
	return created.ID, nil
}

func (c *Client) buildProperties(ctx context.Context, record types.FormRecord, attachments []types.Attachment) map[string]any {
	properties := map[string]any{
		"Request Title":       titleProp(record.StringValue(registry.KeyTitle)),
		"Request Type":        selectProp(record.StringValue(registry.KeyType)),
		"Request Description": richTextProp(record.StringValue(registry.KeyDescription)),
		"Module":              richTextProp(joinValues(record, registry.KeyModule)),
		"Requesting Client":   richTextProp(joinValues(record, registry.KeyClient)),
		"Due Date":            dateProp(record.StringValue(registry.KeyDueDate)),
		"Created Date":        dateProp(c.now().UTC().Format(time.RFC3339)),
	}

	// A record submitted without a priority stays without one; the database
	// never gets a value the user didn't give.
	if priority := record.StringValue(registry.KeyPriority); priority != "" {
		properties["Priority"] = selectProp(c.remapPriority(ctx, priority))
	}

	properties["Request Owner"] = c.personProp(ctx, joinValues(record, registry.KeyOwner))
	if createdBy := record.StringValue(registry.KeyCreatedBy); createdBy != "" {
		properties["Created By"] = c.personProp(ctx, createdBy)
	}

	if link := record.StringValue(registry.KeyReferenceLink); link != "" {
		properties["Reference Link"] = map[string]any{"url": link}
	}

	var files []map[string]any
	for _, att := range attachments {
		if att.Status == types.AttachmentError || att.RemoteURL == "" {
			continue
		}
		files = append(files, map[string]any{
			"name":     att.Name,
			"external": map[string]any{"url": att.RemoteURL},
		})
	}
	if len(files) > 0 {
		properties["Attachments"] = map[string]any{"files": files}
	}

	return properties
}

// personProp resolves a name to a people property when possible and falls
// back to plain rich text.
func (c *Client) personProp(ctx context.Context, name string) map[string]any {
	if c.resolver != nil && name != "" {
		if id, ok := c.resolver.ResolveUserID(ctx, name); ok {
			return map[string]any{"people": []map[string]any{{"id": id}}}
		}
	}
	return richTextProp(name)
}

func titleProp(text string) map[string]any {
	return map[string]any{
		"title": []map[string]any{{"text": map[string]any{"content": text}}},
	}
}

func richTextProp(text string) map[string]any {
	return map[string]any{
		"rich_text": []map[string]any{{"text": map[string]any{"content": text}}},
	}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func dateProp(start string) map[string]any {
	return map[string]any{"date": map[string]any{"start": start}}
}

func joinValues(record types.FormRecord, key string) string {
	values := record.Values(key)
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	out := values[0]
	for _, v := range values[1:] {
		out += ", " + v
	}
	return out
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionVersion)
}
