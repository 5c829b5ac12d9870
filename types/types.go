package types

import "time"

// Phase is the conversation-level state of a wizard session.
type Phase string

const (
	PhaseAsking     Phase = "asking"
	PhaseEditing    Phase = "editing"
	PhaseReview     Phase = "review"
	PhaseSubmitting Phase = "submitting"
	PhaseDone       Phase = "done"
)

// FieldStatus is derived from the current field value; it is never stored.
type FieldStatus string

const (
	StatusPending    FieldStatus = "pending"
	StatusCompleted  FieldStatus = "completed"
	StatusSkipped    FieldStatus = "skipped"
	StatusNeedReview FieldStatus = "need_review"
	StatusWarning    FieldStatus = "warning"
)

// Sentinel values stored in place of real data for skipped fields.
const (
	SentinelTBD = "TBD"
	SentinelNA  = "N/A"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one transcript entry. The transcript is append-only; prompts that
// belong to an abandoned suggestion loop are flagged instead of removed.
type Turn struct {
	Role       Role      `json:"role"`
	Text       string    `json:"text"`
	At         time.Time `json:"at"`
	Superseded bool      `json:"superseded,omitempty"`
}

// FormRecord maps field keys to their current value: a string, or a
// []string for multi-valued input.
type FormRecord map[string]any

// StringValue returns the record value for key when it is a plain string.
func (r FormRecord) StringValue(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Values returns the record value for key as a slice, wrapping a scalar.
func (r FormRecord) Values(key string) []string {
	switch v := r[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

type AttachmentStatus string

const (
	AttachmentUploading AttachmentStatus = "uploading"
	AttachmentSuccess   AttachmentStatus = "success"
	AttachmentError     AttachmentStatus = "error"
)

// Attachment is either an uploaded file (Name/Size/MimeType/RemoteURL set by
// the file-store collaborator) or a bare external URL.
type Attachment struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	Size      int64            `json:"size,omitempty"`
	MimeType  string           `json:"mime_type,omitempty"`
	RemoteURL string           `json:"remote_url,omitempty"`
	Status    AttachmentStatus `json:"status,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// NameSuggestion is one ranked candidate from the name-suggestion service.
type NameSuggestion struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Score float64 `json:"score"`
}

type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeveritySuggestion Severity = "suggestion"
)

// Issue is one concrete problem reported on the review screen.
type Issue struct {
	Field    string   `json:"field"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}
