package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/anupamar/intake/registry"
	"github.com/anupamar/intake/types"
	"github.com/anupamar/intake/validate"
)

// handleCommand recognizes command keywords and runs their fixed side
// effects. Commands are never interpreted as field data; the second return
// is false when the input is not a command.
func (s *Session) handleCommand(ctx context.Context, input string) (*Reply, bool, error) {
	norm := strings.ToLower(strings.TrimSpace(input))

	switch norm {
	case "help":
		def := registry.MustLookup(s.activeOrFirstField())
		return s.reply(s.guidance(ctx, def, input)), true, nil

	case "summary", "review":
		if s.phase == types.PhaseAsking || s.phase == types.PhaseEditing {
			s.phase = types.PhaseReview
		}
		return s.reply(s.renderReview()), true, nil

	case "back":
		return s.commandBack(), true, nil

	case "clear":
		return s.commandClear(), true, nil

	case "restart":
		s.resetForm()
		return s.reply("Starting over.\n\n" + s.prompt(s.currentField)), true, nil

	case "cancel":
		s.finish(ctx)
		return s.reply("Okay, I've cancelled this request. Nothing was filed."), true, nil

	case "skip":
		return s.commandSkip(), true, nil

	case "submit":
		reply, err := s.commandSubmit(ctx, false)
		return reply, true, err

	case "submit anyway":
		reply, err := s.commandSubmit(ctx, true)
		return reply, true, err

	case "retry":
		if s.lastFailure == nil {
			return s.reply("There's nothing to retry."), true, nil
		}
		reply, err := s.commandSubmit(ctx, true)
		return reply, true, err

	case "debug":
		return s.commandDebug(), true, nil

	case "save":
		return s.commandSave(ctx), true, nil

	case "export":
		return s.commandExport(), true, nil
	}

	if field, ok := strings.CutPrefix(norm, "edit "); ok {
		return s.commandEdit(strings.TrimSpace(field)), true, nil
	}

	return nil, false, nil
}

func (s *Session) activeOrFirstField() string {
	if s.currentField != "" && (s.phase == types.PhaseAsking || s.phase == types.PhaseEditing) {
		return s.currentField
	}
	return registry.AskOrder[0]
}

func (s *Session) commandBack() *Reply {
	if s.phase != types.PhaseAsking && s.phase != types.PhaseEditing {
		s.phase = types.PhaseAsking
		s.currentField = registry.AskOrder[0]
		return s.reply("Back to the questions.\n\n" + s.prompt(s.currentField))
	}
	prev := ""
	for _, key := range registry.AskOrder {
		if key == s.currentField {
			break
		}
		prev = key
	}
	if prev == "" {
		return s.reply("We're already at the first question.\n\n" + s.prompt(s.currentField))
	}
	s.currentField = prev
	s.clearSuggestions()
	def := registry.MustLookup(prev)
	current := s.record.StringValue(prev)
	if current != "" {
		return s.reply(fmt.Sprintf("Back to %s (currently %q).\n\n%s", def.DisplayName, current, s.prompt(prev)))
	}
	return s.reply("Going back.\n\n" + s.prompt(prev))
}

func (s *Session) commandClear() *Reply {
	if s.phase != types.PhaseAsking && s.phase != types.PhaseEditing {
		return s.reply("Nothing to clear here. Say 'edit <field>' to change an answer.")
	}
	def := registry.MustLookup(s.currentField)
	delete(s.record, s.currentField)
	s.clearSuggestions()
	return s.reply(fmt.Sprintf("Cleared %s.\n\n%s", def.DisplayName, s.prompt(s.currentField)))
}

func (s *Session) commandSkip() *Reply {
	if s.phase != types.PhaseAsking && s.phase != types.PhaseEditing {
		return s.reply("There's nothing to skip right now.")
	}
	def := registry.MustLookup(s.currentField)
	if !def.Skippable {
		return s.reply(fmt.Sprintf("%s is required, so I can't skip it. %s", def.DisplayName, def.Description))
	}
	result, err := validate.FieldAt(def.Key, "skip", s.now())
	if err != nil {
		return s.reply(err.Error())
	}
	return s.acceptValue(def, result, "skip")
}

func (s *Session) commandEdit(fieldInput string) *Reply {
	if fieldInput == "" {
		return s.reply("Which field? Say e.g. 'edit title'.")
	}
	key, ok := registry.Resolve(fieldInput)
	if !ok {
		return s.reply(fmt.Sprintf("I don't know a field called %q. Fields: %s.", fieldInput, strings.Join(registry.Keys(), ", ")))
	}
	def := registry.MustLookup(key)
	s.phase = types.PhaseEditing
	s.currentField = key
	s.clearSuggestions()
	current := s.record.StringValue(key)
	if values := s.record.Values(key); len(values) > 1 {
		current = strings.Join(values, ", ")
	}
	if current == "" {
		return s.reply(fmt.Sprintf("Sure — %s is empty right now. %s", def.DisplayName, s.prompt(key)))
	}
	return s.reply(fmt.Sprintf("Sure — %s is currently %q. What should it be?", def.DisplayName, current))
}

func (s *Session) commandDebug() *Reply {
	snapshot := map[string]any{
		"phase":           s.phase,
		"current_field":   s.currentField,
		"record":          s.record,
		"statuses":        s.Statuses(),
		"submit_attempts": s.submitAttempts,
	}
	dump, err := sonic.MarshalString(snapshot)
	if err != nil {
		return s.reply("debug: " + err.Error())
	}
	return s.reply("```\n" + dump + "\n```")
}

func (s *Session) commandSave(ctx context.Context) *Reply {
	if s.store == nil {
		return s.reply("There's no place to save to in this setup, but your answers are safe for this session.")
	}
	if err := s.store.Save(ctx, s.snapshot()); err != nil {
		return s.reply("I couldn't save a draft, but your answers are safe for this session.")
	}
	return s.reply("Draft saved.")
}

func (s *Session) commandExport() *Reply {
	export, err := s.exportJSON()
	if err != nil {
		return s.reply("I couldn't build the export: " + err.Error())
	}
	r := s.reply("Here's the current data as JSON:\n```json\n" + export + "\n```")
	r.Export = export
	return r
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:             s.id,
		Phase:          s.phase,
		CurrentField:   s.currentField,
		Record:         s.Record(),
		Attachments:    s.Attachments(),
		Transcript:     s.Transcript(),
		SubmitAttempts: s.submitAttempts,
	}
}

// Restore rebuilds session state from an advisory snapshot.
func (s *Session) Restore(snap Snapshot) {
	if snap.ID != "" {
		s.id = snap.ID
	}
	if snap.Phase != "" {
		s.phase = snap.Phase
	}
	if snap.CurrentField != "" {
		s.currentField = snap.CurrentField
	}
	if snap.Record != nil {
		s.record = snap.Record
	}
	s.attachments = snap.Attachments
	s.transcript = snap.Transcript
	s.submitAttempts = snap.SubmitAttempts
}

func (s *Session) exportJSON() (string, error) {
	payload := map[string]any{
		"record":      s.record,
		"attachments": s.attachments,
		"exported_at": s.now().UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	return sonic.MarshalString(payload)
}

func (s *Session) resetForm() {
	s.record = types.FormRecord{}
	s.attachments = nil
	s.phase = types.PhaseAsking
	s.currentField = registry.AskOrder[0]
	s.clearSuggestions()
	s.submitAttempts = 0
	s.lastFailure = nil
}
