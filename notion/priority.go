package notion

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

// fallbackPriorityMap maps conversational canonical values to the database's
// default select options when the schema cannot be introspected.
var fallbackPriorityMap = map[string]string{
	"0 - critical": "Critical", "0": "Critical", "critical": "Critical",
	"1 - high": "High", "1": "High", "high": "High",
	"2 - medium": "Medium", "2": "Medium", "medium": "Medium",
	"3 - low": "Low", "3": "Low", "low": "Low",
}

// remapPriority converts the wizard's canonical priority ("1 - High") to an
// option the database actually declares. The schema lookup is best effort;
// on any failure the fixed fallback map applies. Values outside the map pass
// through untouched so a rejection routes back to the priority field instead
// of being papered over.
func (c *Client) remapPriority(ctx context.Context, value string) string {
	key := strings.ToLower(strings.TrimSpace(value))
	mapped, ok := fallbackPriorityMap[key]
	if !ok {
		return value
	}

	options := c.fetchPriorityOptions(ctx)
	if len(options) == 0 {
		return mapped
	}
	for _, opt := range options {
		if strings.EqualFold(opt, mapped) {
			return opt
		}
	}
	// The database renamed its options; pass the wizard value through and
	// let error recovery handle a rejection.
	return value
}

// fetchPriorityOptions reads the Priority select options from the database
// schema. Returns nil when the schema is unreachable.
func (c *Client) fetchPriorityOptions(ctx context.Context) []string {
	if !c.Configured() {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/databases/"+c.databaseID, nil)
	if err != nil {
		return nil
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("schema introspection failed", "err", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	var schema struct {
		Properties map[string]struct {
			Select struct {
				Options []struct {
					Name string `json:"name"`
				} `json:"options"`
			} `json:"select"`
		} `json:"properties"`
	}
	if err := sonic.Unmarshal(raw, &schema); err != nil {
		return nil
	}
	priority, ok := schema.Properties["Priority"]
	if !ok {
		return nil
	}
	options := make([]string, 0, len(priority.Select.Options))
	for _, opt := range priority.Select.Options {
		options = append(options, opt.Name)
	}
	return options
}
