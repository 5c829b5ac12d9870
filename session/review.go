package session

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"

	"github.com/anupamar/intake/registry"
	"github.com/anupamar/intake/types"
)

// renderReview builds the review screen: every field with a state icon, the
// completion percentage, and concrete issues split by severity.
func (s *Session) renderReview() string {
	statuses := s.Statuses()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here's your request so far (%d%% complete):\n\n", s.completionPercent())

	table := tablewriter.NewTable(&sb, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("", "Field", "Value")
	for _, key := range registry.ReviewOrder {
		def := registry.MustLookup(key)
		_ = table.Append(statusIcon(statuses[key]), def.DisplayName, displayValue(s.record, key))
	}
	_ = table.Render()

	if len(s.attachments) > 0 {
		fmt.Fprintf(&sb, "\nAttachments (%d):\n", len(s.attachments))
		for _, att := range s.attachments {
			fmt.Fprintf(&sb, "- %s [%s]\n", att.Name, att.Status)
		}
	}

	issues := s.Issues()
	critical := criticalIssues(issues)
	if len(critical) > 0 {
		sb.WriteString("\nNeeds fixing before submit:\n")
		for _, issue := range critical {
			fmt.Fprintf(&sb, "❌ %s\n", issue.Message)
		}
	}
	var suggestions []types.Issue
	for _, issue := range issues {
		if issue.Severity == types.SeveritySuggestion {
			suggestions = append(suggestions, issue)
		}
	}
	if len(suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for _, issue := range suggestions {
			fmt.Fprintf(&sb, "💡 %s\n", issue.Message)
		}
	}

	if len(critical) == 0 {
		sb.WriteString("\nLooks good — say 'submit' to file it, or 'edit <field>' to change something.")
	} else {
		sb.WriteString("\nSay 'edit <field>' to fix things, or 'cancel' to stop.")
	}
	return sb.String()
}

func statusIcon(status types.FieldStatus) string {
	switch status {
	case types.StatusCompleted:
		return "✅"
	case types.StatusSkipped, types.StatusNeedReview, types.StatusWarning:
		return "🟡"
	default:
		return "❌"
	}
}

func displayValue(record types.FormRecord, key string) string {
	values := record.Values(key)
	switch len(values) {
	case 0:
		return "—"
	case 1:
		if values[0] == "" {
			return "—"
		}
		return values[0]
	}
	return strings.Join(values, ", ")
}
