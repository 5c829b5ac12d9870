package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupamar/intake/notion"
	"github.com/anupamar/intake/registry"
	"github.com/anupamar/intake/suggest"
	"github.com/anupamar/intake/types"
)

// Tuesday 2025-03-11.
var sessionNow = time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)

type fakeSuggester struct {
	suggestions []types.NameSuggestion
	matchUser   *types.NameSuggestion
	calls       int
}

func (f *fakeSuggester) Suggest(_ context.Context, _ string, _ int) (*suggest.SuggestResponse, error) {
	f.calls++
	if len(f.suggestions) == 0 {
		return nil, suggest.ErrUnavailable
	}
	return &suggest.SuggestResponse{Suggestions: f.suggestions, TotalFound: len(f.suggestions)}, nil
}

func (f *fakeSuggester) Match(_ context.Context, name string) (*suggest.MatchResponse, error) {
	if f.matchUser != nil && f.matchUser.Name == name {
		return &suggest.MatchResponse{Found: true, User: f.matchUser}, nil
	}
	return &suggest.MatchResponse{Found: false}, nil
}

type fakeSubmitter struct {
	pageID  string
	errs    []error
	records []types.FormRecord
}

func (f *fakeSubmitter) CreateRecord(_ context.Context, record types.FormRecord, _ []types.Attachment) (string, error) {
	f.records = append(f.records, record)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	if f.pageID == "" {
		return "page-1", nil
	}
	return f.pageID, nil
}

func newTestSession(opts ...Option) *Session {
	base := []Option{WithClock(func() time.Time { return sessionNow })}
	return New(append(base, opts...)...)
}

func turn(t *testing.T, s *Session, input string) *Reply {
	t.Helper()
	reply, err := s.HandleTurn(context.Background(), input)
	require.NoError(t, err, "input %q", input)
	return reply
}

// fillAll answers every field without touching optional ones beyond skips.
func fillAll(t *testing.T, s *Session) {
	t.Helper()
	for _, input := range []string{
		"Improve dashboard load time", // title
		"improvement",                 // type
		"Acme Corp",                   // client
		"Reporting",                   // module
		"Dashboards take over ten seconds to load for large accounts.", // description
		"jane smith",  // owner
		"high",        // priority
		"2025-06-01",  // due date
		"skip",        // reference link
		"priya patel", // created_by
	} {
		turn(t, s, input)
	}
}

func TestStartAsksFirstField(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	reply := s.Start(context.Background())
	assert.Equal(t, types.PhaseAsking, reply.Phase)
	assert.Equal(t, registry.KeyTitle, reply.Field)
	assert.NotEmpty(t, reply.Message)
}

func TestFullWalkthroughReachesReview(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	fillAll(t, s)

	assert.Equal(t, types.PhaseReview, s.Phase())
	record := s.Record()
	assert.Equal(t, "Improvement", record.StringValue(registry.KeyType))
	assert.Equal(t, "1 - High", record.StringValue(registry.KeyPriority))
	assert.Equal(t, "Jane Smith", record.StringValue(registry.KeyOwner))
	assert.Equal(t, "Priya Patel", record.StringValue(registry.KeyCreatedBy))
	assert.Empty(t, criticalIssues(s.Issues()))
}

func TestRejectedInputRepromptsSameField(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())

	reply := turn(t, s, "ab")
	assert.Equal(t, registry.KeyTitle, reply.Field)
	assert.NotContains(t, s.Record(), registry.KeyTitle)

	reply = turn(t, s, "Improve dashboard load time")
	assert.Equal(t, registry.KeyType, reply.Field)
}

func TestSkipCommand(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())

	// Required fields refuse the skip command.
	reply := turn(t, s, "skip")
	assert.Equal(t, registry.KeyTitle, reply.Field)
	assert.Contains(t, reply.Message, "required")

	turn(t, s, "Improve dashboard load time")
	turn(t, s, "feature")

	// Skippable client takes the sentinel and advances.
	reply = turn(t, s, "skip")
	assert.Equal(t, registry.KeyModule, reply.Field)
	assert.Equal(t, types.SentinelTBD, s.Record().StringValue(registry.KeyClient))
}

func TestEditCommand(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	fillAll(t, s)

	reply := turn(t, s, "edit priority")
	assert.Equal(t, types.PhaseEditing, reply.Phase)
	assert.Equal(t, registry.KeyPriority, reply.Field)
	assert.Contains(t, reply.Message, "1 - High")

	reply = turn(t, s, "low")
	assert.Equal(t, types.PhaseReview, reply.Phase)
	assert.Equal(t, "3 - Low", s.Record().StringValue(registry.KeyPriority))
}

func TestEditUnknownField(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	reply := turn(t, s, "edit frobnicator")
	assert.Contains(t, reply.Message, "frobnicator")
	assert.Equal(t, types.PhaseAsking, s.Phase())
}

func TestBackAndClear(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	turn(t, s, "Improve dashboard load time")

	reply := turn(t, s, "back")
	assert.Equal(t, registry.KeyTitle, reply.Field)
	assert.Contains(t, reply.Message, "Improve dashboard load time")

	turn(t, s, "clear")
	assert.NotContains(t, s.Record(), registry.KeyTitle)
}

func TestRestartResetsEverything(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	turn(t, s, "Improve dashboard load time")

	reply := turn(t, s, "restart")
	assert.Equal(t, registry.KeyTitle, reply.Field)
	assert.Empty(t, s.Record())
	assert.Equal(t, types.PhaseAsking, s.Phase())
}

func TestCancelFinishes(t *testing.T) {
	t.Parallel()
	var done bool
	s := newTestSession(WithOnDone(func(types.Phase) { done = true }))
	s.Start(context.Background())

	reply := turn(t, s, "cancel")
	assert.True(t, reply.Done)
	assert.True(t, done)

	after := turn(t, s, "hello again")
	assert.Contains(t, after.Message, "finished")
}

func TestCommandsAreNeverStoredAsData(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	turn(t, s, "summary")
	turn(t, s, "help")
	assert.NotContains(t, s.Record(), registry.KeyTitle)
}

func TestSanitizedEmptyInputReprompts(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	reply := turn(t, s, "<script>alert(1)</script>")
	assert.Equal(t, registry.KeyTitle, reply.Field)
	assert.NotContains(t, s.Record(), registry.KeyTitle)
}

func TestVagueInputGetsGuidanceNotStorage(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	reply := turn(t, s, "what do you mean?")
	assert.Equal(t, registry.KeyTitle, reply.Field)
	assert.NotContains(t, s.Record(), registry.KeyTitle)
	assert.NotEmpty(t, reply.Message)
}

func TestSuggestionLoopPickByNumber(t *testing.T) {
	t.Parallel()
	sug := &fakeSuggester{suggestions: []types.NameSuggestion{
		{ID: "u1", Name: "Jane Smith", Email: "jane@example.com"},
		{ID: "u2", Name: "Janet Smythe", Email: "janet@example.com"},
	}}
	s := newTestSession(WithSuggester(sug))
	s.Start(context.Background())
	for _, input := range []string{
		"Improve dashboard load time", "feature", "skip", "skip",
		"Dashboards take over ten seconds to load for large accounts.",
	} {
		turn(t, s, input)
	}

	reply := turn(t, s, "jan")
	assert.Contains(t, reply.Message, "1. Jane Smith")
	assert.Contains(t, reply.Message, "2. Janet Smythe")

	reply = turn(t, s, "2")
	assert.Equal(t, "Janet Smythe", s.Record().StringValue(registry.KeyOwner))
	assert.Equal(t, registry.KeyPriority, reply.Field)
}

func TestSuggestionLoopOutOfRangeSupersedes(t *testing.T) {
	t.Parallel()
	sug := &fakeSuggester{suggestions: []types.NameSuggestion{
		{ID: "u1", Name: "Jane Smith", Email: "jane@example.com"},
	}}
	s := newTestSession(WithSuggester(sug))
	s.Start(context.Background())
	for _, input := range []string{
		"Improve dashboard load time", "feature", "skip", "skip",
		"Dashboards take over ten seconds to load for large accounts.",
	} {
		turn(t, s, input)
	}
	turn(t, s, "jan")

	reply := turn(t, s, "9")
	assert.Contains(t, reply.Message, "no option 9")
	assert.NotContains(t, s.Record(), registry.KeyOwner)

	// The superseded flag lands on an earlier assistant turn; the transcript
	// itself keeps every turn.
	transcript := s.Transcript()
	superseded := 0
	for _, tr := range transcript {
		if tr.Superseded {
			superseded++
		}
	}
	assert.Equal(t, 1, superseded)

	turn(t, s, "1")
	assert.Equal(t, "Jane Smith", s.Record().StringValue(registry.KeyOwner))
}

func TestSuggestionLoopFreeTextMatch(t *testing.T) {
	t.Parallel()
	sug := &fakeSuggester{
		suggestions: []types.NameSuggestion{{ID: "u1", Name: "Jane Smith", Email: "jane@example.com"}},
		matchUser:   &types.NameSuggestion{ID: "u3", Name: "Priya Patel"},
	}
	s := newTestSession(WithSuggester(sug))
	s.Start(context.Background())
	for _, input := range []string{
		"Improve dashboard load time", "feature", "skip", "skip",
		"Dashboards take over ten seconds to load for large accounts.",
	} {
		turn(t, s, input)
	}
	turn(t, s, "jan")

	turn(t, s, "Priya Patel")
	assert.Equal(t, "Priya Patel", s.Record().StringValue(registry.KeyOwner))
}

func TestSuggestionServiceFailureFallsBack(t *testing.T) {
	t.Parallel()
	sug := &fakeSuggester{} // always ErrUnavailable
	s := newTestSession(WithSuggester(sug))
	s.Start(context.Background())
	for _, input := range []string{
		"Improve dashboard load time", "feature", "skip", "skip",
		"Dashboards take over ten seconds to load for large accounts.",
	} {
		turn(t, s, input)
	}

	// Degrades silently to plain validation.
	reply := turn(t, s, "jane smith")
	assert.NotContains(t, reply.Message, "unavailable")
	assert.Equal(t, "Jane Smith", s.Record().StringValue(registry.KeyOwner))
}

func TestExtractionMergeFromDescription(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	turn(t, s, "Improve dashboard load time")
	turn(t, s, "feature")
	turn(t, s, "skip") // client
	turn(t, s, "skip") // module

	reply := turn(t, s, "The billing dashboard is slow, this is urgent, fix by next week, see https://wiki.example.com/perf")
	assert.Contains(t, reply.Message, "I also picked up")

	record := s.Record()
	assert.Equal(t, "0 - Critical", record.StringValue(registry.KeyPriority))
	assert.Equal(t, "https://wiki.example.com/perf", record.StringValue(registry.KeyReferenceLink))
	assert.NotEmpty(t, record.StringValue(registry.KeyDueDate))
	// Module was already answered (skipped), so extraction leaves it alone.
	assert.Equal(t, types.SentinelTBD, record.StringValue(registry.KeyModule))
}

func TestExtractionMergeIsAnnouncedWhileEditing(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	turn(t, s, "Improve dashboard load time")
	turn(t, s, "feature")

	// Jump into editing the description before the later fields are asked.
	turn(t, s, "edit description")
	reply := turn(t, s, "The billing dashboard is slow, this is urgent, see https://wiki.example.com/perf")

	assert.Equal(t, types.PhaseReview, reply.Phase)
	assert.Contains(t, reply.Message, "I also picked up")
	assert.Equal(t, "0 - Critical", s.Record().StringValue(registry.KeyPriority))
	assert.Equal(t, "https://wiki.example.com/perf", s.Record().StringValue(registry.KeyReferenceLink))
}

func TestSubmitBlocksOnCreatedBy(t *testing.T) {
	t.Parallel()
	sub := &fakeSubmitter{}
	s := newTestSession(WithSubmitter(sub))
	s.Start(context.Background())
	for _, input := range []string{
		"Improve dashboard load time", "improvement", "skip", "skip",
		"Dashboards take over ten seconds to load for large accounts.",
		"jane smith", "high", "2025-06-01", "skip",
	} {
		turn(t, s, input)
	}

	// created_by still pending: submit and submit anyway both refuse.
	reply := turn(t, s, "submit")
	assert.Equal(t, types.PhaseEditing, reply.Phase)
	assert.Equal(t, registry.KeyCreatedBy, reply.Field)
	assert.Empty(t, sub.records)

	reply = turn(t, s, "submit anyway")
	assert.Equal(t, registry.KeyCreatedBy, reply.Field)
	assert.Empty(t, sub.records)

	turn(t, s, "priya patel")
	// Skipped client/module still draw the soft warning, which submit anyway
	// overrides now that created_by is real.
	reply = turn(t, s, "submit")
	assert.Contains(t, reply.Message, "submit anyway")
	reply = turn(t, s, "submit anyway")
	assert.True(t, reply.Done)
	assert.Equal(t, "page-1", reply.PageID)
	require.Len(t, sub.records, 1)
}

func TestSubmitAnywayCoversOptionalGaps(t *testing.T) {
	t.Parallel()
	sub := &fakeSubmitter{}
	s := newTestSession(WithSubmitter(sub))
	s.Start(context.Background())
	fillAll(t, s)

	// client/module TBD would warn on plain submit if they were sentinels;
	// here they're real, so submit goes straight through.
	reply := turn(t, s, "submit")
	assert.True(t, reply.Done)
	assert.NotEmpty(t, reply.Export)
}

func TestSubmitWarnsOnSentinels(t *testing.T) {
	t.Parallel()
	sub := &fakeSubmitter{}
	s := newTestSession(WithSubmitter(sub))
	s.Start(context.Background())
	for _, input := range []string{
		"Improve dashboard load time", "improvement", "skip", "skip",
		"Dashboards take over ten seconds to load for large accounts.",
		"jane smith", "high", "2025-06-01", "skip", "priya patel",
	} {
		turn(t, s, input)
	}

	reply := turn(t, s, "submit")
	assert.Contains(t, reply.Message, "submit anyway")
	assert.Empty(t, sub.records)

	reply = turn(t, s, "submit anyway")
	assert.True(t, reply.Done)
	require.Len(t, sub.records, 1)
}

func TestSubmitFailureRoutesToField(t *testing.T) {
	t.Parallel()
	sub := &fakeSubmitter{errs: []error{&notion.SubmissionError{
		StatusCode: 400,
		Body:       `{"message":"body failed validation: Priority is expected to be select."}`,
	}}}
	s := newTestSession(WithSubmitter(sub))
	s.Start(context.Background())
	fillAll(t, s)

	reply := turn(t, s, "submit")
	assert.Equal(t, types.PhaseEditing, reply.Phase)
	assert.Equal(t, registry.KeyPriority, reply.Field)
	assert.Contains(t, reply.Message, "Priority is expected to be select.")
	require.NotNil(t, s.LastFailure())
	assert.Equal(t, 1, s.SubmitAttempts())

	// Correct the field, land on review, then the retried submit succeeds.
	reply = turn(t, s, "medium")
	assert.Equal(t, types.PhaseReview, reply.Phase)
	reply = turn(t, s, "submit")
	assert.True(t, reply.Done)
	assert.Equal(t, 2, s.SubmitAttempts())
	assert.Equal(t, "2 - Medium", sub.records[1].StringValue(registry.KeyPriority))
}

func TestSubmitFailureWithoutFieldOffersRetry(t *testing.T) {
	t.Parallel()
	sub := &fakeSubmitter{errs: []error{errors.New("quota exceeded for workspace"), nil}}
	s := newTestSession(WithSubmitter(sub))
	s.Start(context.Background())
	fillAll(t, s)

	reply := turn(t, s, "submit")
	assert.Equal(t, types.PhaseReview, reply.Phase)
	assert.Contains(t, reply.Message, "retry")

	reply = turn(t, s, "retry")
	assert.True(t, reply.Done)
	assert.Len(t, sub.records, 2)
}

func TestSubmitWithoutSubmitter(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	fillAll(t, s)

	reply := turn(t, s, "submit")
	assert.False(t, reply.Done)
	assert.Contains(t, reply.Message, "isn't configured")
}

func TestSnapshotSaveAndRestore(t *testing.T) {
	t.Parallel()
	store := NewMemorySnapshotStore()
	s := newTestSession(WithSnapshotStore(store))
	s.Start(context.Background())
	turn(t, s, "Improve dashboard load time")
	turn(t, s, "save")

	snap, ok, err := store.Load(context.Background(), s.ID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Improve dashboard load time", snap.Record.StringValue(registry.KeyTitle))

	restored := newTestSession(WithSnapshotStore(store))
	restored.Restore(snap)
	assert.Equal(t, s.ID(), restored.ID())
	assert.Equal(t, registry.KeyType, restored.CurrentField())
	assert.Equal(t, "Improve dashboard load time", restored.Record().StringValue(registry.KeyTitle))
}

func TestSnapshotClearedOnFinish(t *testing.T) {
	t.Parallel()
	store := NewMemorySnapshotStore()
	s := newTestSession(WithSnapshotStore(store))
	s.Start(context.Background())
	turn(t, s, "Improve dashboard load time")
	turn(t, s, "save")
	turn(t, s, "cancel")

	_, ok, err := store.Load(context.Background(), s.ID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExportCommand(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	turn(t, s, "Improve dashboard load time")

	reply := turn(t, s, "export")
	assert.NotEmpty(t, reply.Export)
	assert.Contains(t, reply.Export, "Improve dashboard load time")
}

func TestTranscriptIsAppendOnly(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	s.Start(context.Background())
	turn(t, s, "Improve dashboard load time")
	turn(t, s, "feature")

	transcript := s.Transcript()
	// Greeting + 2 user turns + 2 assistant replies.
	assert.Len(t, transcript, 5)
	assert.Equal(t, types.RoleAssistant, transcript[0].Role)
	assert.Equal(t, types.RoleUser, transcript[1].Role)
}

func TestAttachments(t *testing.T) {
	t.Parallel()
	s := newTestSession()
	att := s.AddAttachmentURL("https://files.example.com/spec.pdf")
	assert.Equal(t, types.AttachmentSuccess, att.Status)

	s.AddAttachment(types.Attachment{ID: "a2", Name: "x.png", Status: types.AttachmentError, Error: "too large"})
	assert.Len(t, s.Attachments(), 2)

	assert.True(t, s.RemoveAttachment(att.ID))
	assert.False(t, s.RemoveAttachment("missing"))
	assert.Len(t, s.Attachments(), 1)
}
