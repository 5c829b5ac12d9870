// Package assist is the soft layer over the wizard: it decides whether an
// utterance is vague (help-seeking, confusion, filler) and produces guidance
// text. The deterministic stage is always available; the tool-based stage
// enriches it when a chat model is configured and is never on the
// correctness path.
package assist

import (
	"context"

	"github.com/anupamar/intake/registry"
)

// Request carries the active field and the raw utterance being judged.
type Request struct {
	Field registry.FieldDefinition
	Input string
}

// Classifier decides whether input is vague, i.e. contains no usable field
// data and should be answered with guidance instead of a validation error.
type Classifier interface {
	Classify(ctx context.Context, req *Request) (bool, error)
}

// Guide produces the help text shown for a vague turn or a `help` command,
// and the session-opening greeting.
type Guide interface {
	Guidance(ctx context.Context, req *Request) (string, error)
	Greeting(ctx context.Context) (string, error)
}
