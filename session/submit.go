package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anupamar/intake/notion"
	"github.com/anupamar/intake/registry"
	"github.com/anupamar/intake/types"
)

// commandSubmit runs the submit guard and, when it passes, the actual
// submission. force is the `submit anyway` path: it tolerates missing or
// sentinel values everywhere except created_by, which has no override.
func (s *Session) commandSubmit(ctx context.Context, force bool) (*Reply, error) {
	if blocked := s.guardCreatedBy(); blocked != nil {
		return blocked, nil
	}

	if !force {
		if warning := s.guardRequired(); warning != nil {
			return warning, nil
		}
	}
	return s.performSubmit(ctx)
}

// guardCreatedBy blocks submission while created_by is missing or vague.
// This one field has no `submit anyway` escape.
func (s *Session) guardCreatedBy() *Reply {
	status := deriveStatus(registry.MustLookup(registry.KeyCreatedBy), s.record, s.now())
	if status == types.StatusPending || status == types.StatusSkipped {
		s.phase = types.PhaseEditing
		s.currentField = registry.KeyCreatedBy
		return s.reply("I can't file this without knowing who it's from. What's your name? (This one can't be skipped.)")
	}
	return nil
}

// guardRequired reports missing required fields and stale sentinels,
// offering `submit anyway` for everything it finds.
func (s *Session) guardRequired() *Reply {
	var problems []string
	statuses := s.Statuses()
	for _, key := range registry.ReviewOrder {
		def := registry.MustLookup(key)
		status := statuses[key]
		switch {
		case def.Required && status == types.StatusPending:
			problems = append(problems, def.DisplayName+" is missing")
		case def.Required && status == types.StatusSkipped:
			problems = append(problems, def.DisplayName+" is still a placeholder")
		case !def.Required && status == types.StatusSkipped && s.record.StringValue(key) == types.SentinelTBD:
			problems = append(problems, def.DisplayName+" is still TBD")
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return s.reply(fmt.Sprintf(
		"Before I file this: %s. Say 'submit anyway' to send it as-is, or 'edit <field>' to fill things in.",
		strings.Join(problems, "; ")))
}

func (s *Session) performSubmit(ctx context.Context) (*Reply, error) {
	if s.submitter == nil {
		return s.reply("Submission isn't configured in this setup, so I can't file the request."), nil
	}

	s.phase = types.PhaseSubmitting
	s.submitAttempts++
	slog.Info("submitting record", "attempt", s.submitAttempts)

	pageID, err := s.submitter.CreateRecord(ctx, s.Record(), s.Attachments())
	if err != nil {
		return s.handleSubmitFailure(err), nil
	}

	export, _ := s.exportJSON()
	s.finish(ctx)
	r := s.reply(fmt.Sprintf(
		"🎉 Done! Your request is filed (record %s).\n\nHere's a copy of what was submitted:\n```json\n%s\n```",
		pageID, export))
	r.PageID = pageID
	r.Export = export
	return r, nil
}

// handleSubmitFailure classifies a submission error, routes it back to a
// field as a forced edit when one can be inferred, and otherwise drops to
// review with the cleaned message.
func (s *Session) handleSubmitFailure(err error) *Reply {
	message := err.Error()
	var subErr *notion.SubmissionError
	if errors.As(err, &subErr) {
		message = subErr.Message()
	} else {
		message = notion.CleanMessage(message)
	}
	s.lastFailure = &Failure{Message: message, At: s.now()}
	slog.Warn("submission failed", "attempt", s.submitAttempts, "err", message)

	if field, ok := notion.InferField(message); ok {
		def := registry.MustLookup(field)
		s.phase = types.PhaseEditing
		s.currentField = field
		current := displayValue(s.record, field)
		return s.reply(fmt.Sprintf(
			"The database rejected the request: %s\n\nThat points at %s (currently %q). What should it be instead?",
			message, def.DisplayName, current))
	}

	s.phase = types.PhaseReview
	return s.reply(fmt.Sprintf(
		"The database rejected the request: %s\n\nSay 'retry' to try again, or 'edit <field>' to change something first.",
		message))
}
