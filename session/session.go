// Package session owns the conversation state machine: one Session per
// wizard run, advancing field by field through free-text turns until the
// record is submitted or the user cancels. All mutable state lives on the
// Session and is only touched by one turn at a time.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anupamar/intake/assist"
	"github.com/anupamar/intake/nlp"
	"github.com/anupamar/intake/patch"
	"github.com/anupamar/intake/registry"
	"github.com/anupamar/intake/suggest"
	"github.com/anupamar/intake/types"
	"github.com/anupamar/intake/validate"
)

// Suggester is the slice of the suggestion client the session uses.
type Suggester interface {
	Suggest(ctx context.Context, partialName string, limit int) (*suggest.SuggestResponse, error)
	Match(ctx context.Context, name string) (*suggest.MatchResponse, error)
}

// Submitter writes the finished record to the document database.
type Submitter interface {
	CreateRecord(ctx context.Context, record types.FormRecord, attachments []types.Attachment) (string, error)
}

// Reply is what one turn produces for the host to render.
type Reply struct {
	Message string
	Phase   types.Phase
	// Field is the active field key while the phase is asking or editing.
	Field string
	// Done is set when the session reached its terminal state this turn.
	Done bool
	// PageID is the created record id after a successful submit.
	PageID string
	// Export carries a JSON snapshot when the turn produced one.
	Export string
}

// Failure keeps the most recent submission failure for display. It survives
// until reset, even across a later success.
type Failure struct {
	Message string
	At      time.Time
}

type Session struct {
	id           string
	phase        types.Phase
	currentField string
	record       types.FormRecord
	transcript   []types.Turn
	attachments  []types.Attachment

	// Open suggestion loop, cleared on selection or field advance.
	openSuggestions []types.NameSuggestion
	suggestionsFor  string

	submitAttempts int
	lastFailure    *Failure

	classifier assist.Classifier
	guide      assist.Guide
	suggester  Suggester
	submitter  Submitter
	store      *SnapshotStore
	onDone     func(phase types.Phase)
	now        func() time.Time
}

type Option func(*Session)

func WithClassifier(c assist.Classifier) Option {
	return func(s *Session) { s.classifier = c }
}

func WithGuide(g assist.Guide) Option {
	return func(s *Session) { s.guide = g }
}

func WithSuggester(sg Suggester) Option {
	return func(s *Session) { s.suggester = sg }
}

func WithSubmitter(sub Submitter) Option {
	return func(s *Session) { s.submitter = sub }
}

// WithSnapshotStore attaches the advisory convenience cache.
func WithSnapshotStore(store *SnapshotStore) Option {
	return func(s *Session) { s.store = store }
}

// WithOnDone registers the completion signal fired when the session reaches
// its terminal state, letting the embedding surface reclaim control.
func WithOnDone(fn func(phase types.Phase)) Option {
	return func(s *Session) { s.onDone = fn }
}

// WithClock overrides the clock for date-sensitive behavior in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func New(opts ...Option) *Session {
	s := &Session{
		id:           uuid.NewString(),
		phase:        types.PhaseAsking,
		currentField: registry.AskOrder[0],
		record:       types.FormRecord{},
		classifier:   assist.LocalClassifier{},
		guide:        assist.LocalGuide{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string              { return s.id }
func (s *Session) Phase() types.Phase      { return s.phase }
func (s *Session) CurrentField() string    { return s.currentField }
func (s *Session) Record() types.FormRecord {
	out := make(types.FormRecord, len(s.record))
	for k, v := range s.record {
		out[k] = v
	}
	return out
}
func (s *Session) Transcript() []types.Turn       { return append([]types.Turn(nil), s.transcript...) }
func (s *Session) Attachments() []types.Attachment {
	return append([]types.Attachment(nil), s.attachments...)
}
func (s *Session) SubmitAttempts() int  { return s.submitAttempts }
func (s *Session) LastFailure() *Failure { return s.lastFailure }

// Start opens the conversation with a greeting and the first prompt.
func (s *Session) Start(ctx context.Context) *Reply {
	greeting, err := s.guide.Greeting(ctx)
	if err != nil {
		greeting = "Hi! Let's get your request filed."
	}
	return s.reply(greeting + "\n\n" + s.prompt(s.currentField))
}

// HandleTurn processes one user utterance and returns the next assistant
// message. It is the single entry point for the per-turn algorithm.
func (s *Session) HandleTurn(ctx context.Context, input string) (*Reply, error) {
	if s.phase == types.PhaseDone {
		return s.reply("This session is finished. Start a new one to file another request."), nil
	}

	s.appendTurn(types.RoleUser, input)
	input = nlp.Sanitize(input)
	if input == "" {
		return s.reply("I didn't catch anything usable in that. " + s.prompt(s.currentField)), nil
	}

	// Commands short-circuit everything and are never stored as field data.
	if reply, handled, err := s.handleCommand(ctx, input); handled {
		return reply, err
	}

	// An open suggestion loop captures the input before validation.
	if len(s.openSuggestions) > 0 && s.suggestionsFor == s.currentField {
		return s.handleSuggestionSelection(ctx, input)
	}

	switch s.phase {
	case types.PhaseAsking, types.PhaseEditing:
		return s.handleFieldInput(ctx, input)
	case types.PhaseReview:
		return s.reply("We're at the review step. Say 'edit <field>' to change something, 'submit' to file it, or 'cancel' to stop."), nil
	case types.PhaseSubmitting:
		return s.reply("Hold on — I'm still submitting the request."), nil
	}
	return s.reply(s.prompt(s.currentField)), nil
}

// handleFieldInput runs the soft vague check, the suggestion trigger, and
// the field validator for the active field.
func (s *Session) handleFieldInput(ctx context.Context, input string) (*Reply, error) {
	def := registry.MustLookup(s.currentField)

	vague, err := s.classifier.Classify(ctx, &assist.Request{Field: def, Input: input})
	if err != nil {
		slog.Debug("vague classifier unavailable", "err", err)
		vague = false
	}
	if vague {
		guidance := s.guidance(ctx, def, input)
		return s.reply(guidance), nil
	}

	// Name-bearing fields open the suggestion loop when the service has
	// candidates. Any failure falls through to normal validation.
	if def.Suggesting && s.suggester != nil && len(input) >= 2 {
		if resp, sErr := s.suggester.Suggest(ctx, input, 5); sErr == nil && len(resp.Suggestions) > 0 {
			s.openSuggestions = resp.Suggestions
			s.suggestionsFor = s.currentField
			return s.reply(s.renderSuggestions(def, resp.Suggestions)), nil
		}
	}

	result, vErr := validate.FieldAt(s.currentField, input, s.now())
	if vErr != nil {
		return s.reply(vErr.Error() + "\n\n" + s.prompt(s.currentField)), nil
	}
	return s.acceptValue(def, result, input), nil
}

// acceptValue stores a validated value and advances the conversation.
func (s *Session) acceptValue(def registry.FieldDefinition, result validate.Result, raw string) *Reply {
	s.record[def.Key] = result.Value
	s.clearSuggestions()
	slog.Debug("field accepted", "field", def.Key, "skipped", result.Skipped)

	extra := s.mergeExtractedFields(def.Key, raw)

	if s.phase == types.PhaseEditing {
		s.phase = types.PhaseReview
		msg := fmt.Sprintf("Updated %s.", def.DisplayName)
		if extra != "" {
			msg += "\n" + extra
		}
		return s.reply(msg + "\n\n" + s.renderReview())
	}

	ack := fmt.Sprintf("%s %s: %s", def.Icon, def.DisplayName, result.String())
	if result.Skipped {
		ack = fmt.Sprintf("%s %s skipped for now.", def.Icon, def.DisplayName)
	}
	if extra != "" {
		ack += "\n" + extra
	}

	next := s.nextPendingField()
	if next == "" {
		s.phase = types.PhaseReview
		return s.reply(ack + "\n\nThat's everything!\n\n" + s.renderReview())
	}
	s.currentField = next
	return s.reply(ack + "\n\n" + s.prompt(next))
}

// mergeExtractedFields opportunistically fills still-pending fields from a
// long utterance, applying the extracted values as patch operations. Every
// candidate still goes through its own validator.
func (s *Session) mergeExtractedFields(answeredKey, raw string) string {
	if answeredKey != registry.KeyDescription && answeredKey != registry.KeyTitle {
		return ""
	}
	if len(raw) < 40 {
		return ""
	}

	entities := nlp.Extract(raw)
	candidates := map[string]string{}
	if entities.Priority != "" {
		candidates[registry.KeyPriority] = entities.Priority
	}
	if entities.Date != "" {
		candidates[registry.KeyDueDate] = entities.Date
	}
	if len(entities.URLs) > 0 {
		candidates[registry.KeyReferenceLink] = entities.URLs[0]
	}
	if len(entities.Modules) > 0 {
		candidates[registry.KeyModule] = titleWord(entities.Modules[0])
	}

	var ops []patch.Operation
	var filled []string
	statuses := s.Statuses()
	for key, text := range candidates {
		if statuses[key] != types.StatusPending {
			continue
		}
		result, err := validate.FieldAt(key, text, s.now())
		if err != nil {
			continue
		}
		ops = append(ops, patch.Set(key, result.Value))
		filled = append(filled, fmt.Sprintf("%s → %s", registry.MustLookup(key).DisplayName, result.String()))
	}
	if len(ops) == 0 {
		return ""
	}

	patched, err := patch.Apply(s.record, ops)
	if err != nil {
		slog.Debug("extraction merge failed", "err", err)
		return ""
	}
	s.record = patched
	return "I also picked up: " + strings.Join(filled, "; ") + ". Say 'edit <field>' if any of those are wrong."
}

// nextPendingField returns the first field in ask order that still has no
// value, preferring fields after the current one.
func (s *Session) nextPendingField() string {
	statuses := s.Statuses()
	started := false
	for _, key := range registry.AskOrder {
		if key == s.currentField {
			started = true
			continue
		}
		if started && statuses[key] == types.StatusPending {
			return key
		}
	}
	for _, key := range registry.AskOrder {
		if key == s.currentField {
			break
		}
		if statuses[key] == types.StatusPending {
			return key
		}
	}
	return ""
}

func (s *Session) prompt(key string) string {
	if key == "" {
		return "Say 'review' to see where we are."
	}
	def := registry.MustLookup(key)
	return fmt.Sprintf("%s What's the %s? %s", def.Icon, strings.ToLower(def.DisplayName), def.Description)
}

func (s *Session) guidance(ctx context.Context, def registry.FieldDefinition, input string) string {
	text, err := s.guide.Guidance(ctx, &assist.Request{Field: def, Input: input})
	if err != nil {
		text, _ = assist.LocalGuide{}.Guidance(ctx, &assist.Request{Field: def, Input: input})
	}
	return text
}

// renderSuggestions enumerates candidates and switches input interpretation
// to select-by-number.
func (s *Session) renderSuggestions(def registry.FieldDefinition, suggestions []types.NameSuggestion) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "I found these people for %s:\n", def.DisplayName)
	for i, sug := range suggestions {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, sug.Name, sug.Email)
	}
	sb.WriteString("Reply with a number, or type the exact name.")
	return sb.String()
}

// handleSuggestionSelection interprets input while a suggestion list is
// open: a number picks a candidate, free text goes through match, and a
// total miss falls back to normal validation.
func (s *Session) handleSuggestionSelection(ctx context.Context, input string) (*Reply, error) {
	def := registry.MustLookup(s.currentField)

	if n, err := strconv.Atoi(strings.TrimSpace(input)); err == nil {
		if n >= 1 && n <= len(s.openSuggestions) {
			picked := s.openSuggestions[n-1]
			result, vErr := validate.FieldAt(def.Key, picked.Name, s.now())
			if vErr != nil {
				result = validate.Result{Value: picked.Name}
			}
			return s.acceptValue(def, result, picked.Name), nil
		}
		s.supersedeSuggestionPrompt()
		return s.reply(fmt.Sprintf("There's no option %d. Pick 1-%d or type the name.", n, len(s.openSuggestions))), nil
	}

	if s.suggester != nil {
		if match, err := s.suggester.Match(ctx, input); err == nil {
			if match.Found && match.User != nil {
				result, vErr := validate.FieldAt(def.Key, match.User.Name, s.now())
				if vErr != nil {
					result = validate.Result{Value: match.User.Name}
				}
				return s.acceptValue(def, result, match.User.Name), nil
			}
			if len(match.Suggestions) > 0 {
				s.supersedeSuggestionPrompt()
				s.openSuggestions = match.Suggestions
				return s.reply("No exact match — closest I have:\n" + s.renderSuggestions(def, match.Suggestions)), nil
			}
		}
	}

	// Total miss: soft vague check, then accept as freeform text through
	// the normal validator.
	s.clearSuggestions()
	return s.handleFieldInputWithoutSuggestions(ctx, input)
}

// handleFieldInputWithoutSuggestions is the validator path with the
// suggestion trigger disabled, used when the loop already struck out.
func (s *Session) handleFieldInputWithoutSuggestions(ctx context.Context, input string) (*Reply, error) {
	def := registry.MustLookup(s.currentField)
	vague, err := s.classifier.Classify(ctx, &assist.Request{Field: def, Input: input})
	if err == nil && vague {
		return s.reply(s.guidance(ctx, def, input)), nil
	}
	result, vErr := validate.FieldAt(s.currentField, input, s.now())
	if vErr != nil {
		return s.reply(vErr.Error() + "\n\n" + s.prompt(s.currentField)), nil
	}
	return s.acceptValue(def, result, input), nil
}

func (s *Session) clearSuggestions() {
	s.openSuggestions = nil
	s.suggestionsFor = ""
}

// supersedeSuggestionPrompt flags the previous suggestion prompt so a host
// can collapse it; the transcript itself stays append-only.
func (s *Session) supersedeSuggestionPrompt() {
	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].Role == types.RoleAssistant {
			s.transcript[i].Superseded = true
			return
		}
	}
}

// AddAttachmentURL appends a bare external link as an attachment.
func (s *Session) AddAttachmentURL(url string) types.Attachment {
	att := types.Attachment{
		ID:        uuid.NewString(),
		Name:      url,
		RemoteURL: url,
		Status:    types.AttachmentSuccess,
	}
	s.attachments = append(s.attachments, att)
	return att
}

// AddAttachment records an upload result from the file-store collaborator.
func (s *Session) AddAttachment(att types.Attachment) {
	s.attachments = append(s.attachments, att)
}

// RemoveAttachment drops an attachment by id.
func (s *Session) RemoveAttachment(id string) bool {
	for i, att := range s.attachments {
		if att.ID == id {
			s.attachments = append(s.attachments[:i], s.attachments[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Session) appendTurn(role types.Role, text string) {
	s.transcript = append(s.transcript, types.Turn{Role: role, Text: text, At: s.now()})
}

// reply records the assistant message in the transcript and bundles the
// current machine state for the host.
func (s *Session) reply(message string) *Reply {
	s.appendTurn(types.RoleAssistant, message)
	r := &Reply{
		Message: message,
		Phase:   s.phase,
		Done:    s.phase == types.PhaseDone,
	}
	if s.phase == types.PhaseAsking || s.phase == types.PhaseEditing {
		r.Field = s.currentField
	}
	return r
}

// finish moves the session to done and fires the completion signal.
func (s *Session) finish(ctx context.Context) {
	s.phase = types.PhaseDone
	if s.store != nil {
		_ = s.store.Clear(ctx, s.id)
	}
	if s.onDone != nil {
		s.onDone(types.PhaseDone)
	}
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
