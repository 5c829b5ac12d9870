package notion

import (
	"strings"

	"github.com/bytedance/sonic"

	"github.com/anupamar/intake/registry"
)

// SubmissionError is a failed create-record call with whatever the service
// sent back.
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	return "create record failed: " + e.Body
}

// Message extracts the human-readable part of the failure: the structured
// service message when one is embedded, otherwise the raw body, with known
// boilerplate fragments stripped.
func (e *SubmissionError) Message() string {
	msg := e.Body
	var structured struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := sonic.UnmarshalString(e.Body, &structured); err == nil && structured.Message != "" {
		msg = structured.Message
	}
	return CleanMessage(msg)
}

// boilerplateFragments are prefixes and fillers the service wraps around the
// useful part of an error.
var boilerplateFragments = []string{
	"Failed to create database entry:",
	"Failed to create feature request:",
	"body failed validation:",
	"body failed validation.",
	"validation_error:",
	"APIResponseError:",
	"Error:",
}

// CleanMessage strips known boilerplate fragments and surrounding noise from
// a service error message.
func CleanMessage(msg string) string {
	out := strings.TrimSpace(msg)
	for changed := true; changed; {
		changed = false
		for _, fragment := range boilerplateFragments {
			if strings.HasPrefix(out, fragment) {
				out = strings.TrimSpace(out[len(fragment):])
				changed = true
			}
		}
	}
	return out
}

// InferField pattern-matches a cleaned error message against each field's
// name and keywords and returns the single field to re-prompt. Display names
// are tried before keywords so "Priority is expected to be select" routes to
// priority, not to the type field's "select" keyword. The review order puts
// required fields first, so those win ties.
func InferField(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, key := range registry.ReviewOrder {
		def := registry.MustLookup(key)
		if strings.Contains(lower, strings.ToLower(def.DisplayName)) {
			return key, true
		}
	}
	for _, key := range registry.ReviewOrder {
		def := registry.MustLookup(key)
		for _, keyword := range def.Keywords {
			if strings.Contains(lower, keyword) {
				return key, true
			}
		}
	}
	return "", false
}
