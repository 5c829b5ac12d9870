package session

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/anupamar/intake/registry"
	"github.com/anupamar/intake/types"
)

// Quality thresholds feeding the status heuristics and review suggestions.
const (
	shortTitleLen       = 10
	shortDescriptionLen = 25
)

// deriveStatus recomputes one field's status purely from the record. Status
// is never stored, so it cannot drift from the value.
func deriveStatus(def registry.FieldDefinition, record types.FormRecord, now time.Time) types.FieldStatus {
	value, present := record[def.Key]
	if !present {
		return types.StatusPending
	}

	scalar, _ := value.(string)
	if values := record.Values(def.Key); len(values) == 1 {
		scalar = values[0]
	} else if len(values) > 1 {
		// Multi-valued answers count as completed once any element is real.
		scalar = values[0]
	}

	switch scalar {
	case types.SentinelTBD, types.SentinelNA:
		return types.StatusSkipped
	case "":
		if def.Key == registry.KeyReferenceLink {
			// Empty string is the link field's "no link" sentinel.
			return types.StatusSkipped
		}
		return types.StatusPending
	}

	switch def.Key {
	case registry.KeyTitle:
		if utf8.RuneCountInString(scalar) < shortTitleLen {
			return types.StatusWarning
		}
	case registry.KeyDescription:
		if utf8.RuneCountInString(scalar) < shortDescriptionLen {
			return types.StatusWarning
		}
	case registry.KeyType, registry.KeyPriority:
		if !containsOption(def.Options, scalar) {
			return types.StatusNeedReview
		}
	case registry.KeyDueDate:
		if due, err := time.Parse("2006-01-02", scalar); err != nil {
			return types.StatusNeedReview
		} else if due.Before(truncateDay(now)) {
			return types.StatusNeedReview
		}
	}
	return types.StatusCompleted
}

// Statuses derives the status of every field.
func (s *Session) Statuses() map[string]types.FieldStatus {
	out := make(map[string]types.FieldStatus, len(registry.AskOrder))
	for _, key := range registry.AskOrder {
		out[key] = deriveStatus(registry.MustLookup(key), s.record, s.now())
	}
	return out
}

// completionPercent counts answered fields (completed, warning, or skipped)
// against the full field order.
func (s *Session) completionPercent() int {
	answered := 0
	for _, status := range s.Statuses() {
		switch status {
		case types.StatusCompleted, types.StatusWarning, types.StatusSkipped:
			answered++
		}
	}
	return answered * 100 / len(registry.AskOrder)
}

// Issues lists concrete problems with the current record, critical first.
func (s *Session) Issues() []types.Issue {
	var issues []types.Issue
	statuses := s.Statuses()
	for _, key := range registry.ReviewOrder {
		def := registry.MustLookup(key)
		status := statuses[key]
		value := s.record.StringValue(key)

		switch {
		case def.Required && status == types.StatusPending:
			issues = append(issues, types.Issue{
				Field: key, Severity: types.SeverityCritical,
				Message: fmt.Sprintf("%s is required and still missing.", def.DisplayName),
			})
		case def.Required && status == types.StatusSkipped:
			issues = append(issues, types.Issue{
				Field: key, Severity: types.SeverityCritical,
				Message: fmt.Sprintf("%s can't be left as %q.", def.DisplayName, value),
			})
		case status == types.StatusNeedReview && def.Key == registry.KeyDueDate:
			issues = append(issues, types.Issue{
				Field: key, Severity: types.SeverityCritical,
				Message: "The due date is in the past.",
			})
		case status == types.StatusNeedReview:
			issues = append(issues, types.Issue{
				Field: key, Severity: types.SeverityCritical,
				Message: fmt.Sprintf("%s has a value the database won't accept.", def.DisplayName),
			})
		case status == types.StatusSkipped && !def.Required:
			issues = append(issues, types.Issue{
				Field: key, Severity: types.SeveritySuggestion,
				Message: fmt.Sprintf("%s is still %q — fill it in if you know it.", def.DisplayName, value),
			})
		case status == types.StatusWarning && key == registry.KeyTitle:
			issues = append(issues, types.Issue{
				Field: key, Severity: types.SeveritySuggestion,
				Message: "The title is quite short; a more specific one helps triage.",
			})
		case status == types.StatusWarning && key == registry.KeyDescription:
			issues = append(issues, types.Issue{
				Field: key, Severity: types.SeveritySuggestion,
				Message: "The description is brief; more detail speeds things up.",
			})
		}
	}
	return issues
}

func criticalIssues(issues []types.Issue) []types.Issue {
	var out []types.Issue
	for _, issue := range issues {
		if issue.Severity == types.SeverityCritical {
			out = append(out, issue)
		}
	}
	return out
}

func containsOption(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
