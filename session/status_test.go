package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/anupamar/intake/registry"
	"github.com/anupamar/intake/types"
)

var statusNow = time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)

func statusSession(record types.FormRecord) *Session {
	s := New(WithClock(func() time.Time { return statusNow }))
	s.record = record
	return s
}

func TestDeriveStatus(t *testing.T) {
	t.Parallel()
	s := statusSession(types.FormRecord{
		"title":          "Add CSV export to reports",
		"type":           "Feature",
		"client":         types.SentinelTBD,
		"description":    "short one",
		"priority":       "definitely high",
		"due_date":       "2020-01-01",
		"reference_link": "",
	})
	statuses := s.Statuses()

	assert.Equal(t, types.StatusCompleted, statuses[registry.KeyTitle])
	assert.Equal(t, types.StatusCompleted, statuses[registry.KeyType])
	assert.Equal(t, types.StatusSkipped, statuses[registry.KeyClient])
	assert.Equal(t, types.StatusPending, statuses[registry.KeyModule])
	assert.Equal(t, types.StatusWarning, statuses[registry.KeyDescription])
	assert.Equal(t, types.StatusNeedReview, statuses[registry.KeyPriority])
	assert.Equal(t, types.StatusNeedReview, statuses[registry.KeyDueDate])
	assert.Equal(t, types.StatusSkipped, statuses[registry.KeyReferenceLink])
	assert.Equal(t, types.StatusPending, statuses[registry.KeyOwner])
	assert.Equal(t, types.StatusPending, statuses[registry.KeyCreatedBy])
}

func TestDeriveStatusShortTitle(t *testing.T) {
	t.Parallel()
	s := statusSession(types.FormRecord{"title": "Fix bug"})
	assert.Equal(t, types.StatusWarning, s.Statuses()[registry.KeyTitle])
}

func TestStatusIsRecomputedNotStored(t *testing.T) {
	t.Parallel()
	s := statusSession(types.FormRecord{"due_date": "2025-03-12"})
	assert.Equal(t, types.StatusCompleted, s.Statuses()[registry.KeyDueDate])

	// The same record read on a later day flips to need_review with no write
	// in between.
	s.now = func() time.Time { return statusNow.AddDate(0, 0, 5) }
	assert.Equal(t, types.StatusNeedReview, s.Statuses()[registry.KeyDueDate])
}

func TestCompletionPercent(t *testing.T) {
	t.Parallel()
	s := statusSession(types.FormRecord{})
	assert.Equal(t, 0, s.completionPercent())

	s.record = types.FormRecord{
		"title":  "Add CSV export to reports",
		"client": types.SentinelTBD,
	}
	assert.Equal(t, 20, s.completionPercent())
}

func TestIssues(t *testing.T) {
	t.Parallel()
	s := statusSession(types.FormRecord{
		"title":    "Add CSV export to reports",
		"client":   types.SentinelTBD,
		"due_date": "2020-01-01",
	})
	issues := s.Issues()

	critical := criticalIssues(issues)
	var fields []string
	for _, issue := range critical {
		fields = append(fields, issue.Field)
	}
	// Missing required fields plus the past due date.
	assert.Contains(t, fields, registry.KeyType)
	assert.Contains(t, fields, registry.KeyDescription)
	assert.Contains(t, fields, registry.KeyOwner)
	assert.Contains(t, fields, registry.KeyPriority)
	assert.Contains(t, fields, registry.KeyDueDate)
	assert.Contains(t, fields, registry.KeyCreatedBy)
	assert.NotContains(t, fields, registry.KeyTitle)
	assert.NotContains(t, fields, registry.KeyClient)

	var suggestion []string
	for _, issue := range issues {
		if issue.Severity == types.SeveritySuggestion {
			suggestion = append(suggestion, issue.Field)
		}
	}
	assert.Contains(t, suggestion, registry.KeyClient)
}
