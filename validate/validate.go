// Package validate turns raw chat text into accepted, normalized field
// values. Every validator is a pure function of its input and the clock; none
// of them touch conversation state. Dispatch is a lookup table keyed by field
// id, not a branch ladder.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/anupamar/intake/registry"
)

// Result is an accepted answer. Value is the normalized value to store: a
// string, or a []string when comma-separated input hit a multi-valued field.
// Skipped marks a skip-word accepted on a skippable field; Value then holds
// the field's sentinel.
type Result struct {
	Value   any
	Skipped bool
}

// String returns the scalar form of the normalized value.
func (r Result) String() string {
	switch v := r.Value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	}
	return ""
}

type fieldValidator func(raw string, now time.Time) (Result, error)

var validators = map[string]fieldValidator{
	registry.KeyTitle:         validateTitle,
	registry.KeyType:          validateType,
	registry.KeyClient:        validateClient,
	registry.KeyModule:        validateModule,
	registry.KeyDescription:   validateDescription,
	registry.KeyOwner:         validatePersonName,
	registry.KeyCreatedBy:     validatePersonName,
	registry.KeyPriority:      validatePriority,
	registry.KeyDueDate:       validateDueDate,
	registry.KeyReferenceLink: validateReferenceLink,
}

// Field validates raw input for the given field key against the current
// clock. The returned error text is user-facing.
func Field(key, raw string) (Result, error) {
	return FieldAt(key, raw, time.Now())
}

// FieldAt is Field with an explicit clock, for date-sensitive rules.
func FieldAt(key, raw string, now time.Time) (Result, error) {
	def, ok := registry.Lookup(key)
	if !ok {
		return Result{}, fmt.Errorf("I don't know a field called %q.", key)
	}
	fn, ok := validators[key]
	if !ok {
		return Result{}, fmt.Errorf("I can't validate %s yet.", def.DisplayName)
	}

	raw = strings.TrimSpace(raw)
	if def.MultiValued && strings.Contains(raw, ",") && !isSkipWord(raw) {
		return multiValue(def, fn, raw, now)
	}
	return fn(raw, now)
}

// multiValue splits comma-separated input, validates every element with the
// field's own scalar rule, and fails the whole input if any element fails.
func multiValue(def registry.FieldDefinition, fn fieldValidator, raw string, now time.Time) (Result, error) {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		res, err := fn(part, now)
		if err != nil {
			return Result{}, fmt.Errorf("%q doesn't work for %s: %s", part, def.DisplayName, err.Error())
		}
		values = append(values, res.String())
	}
	if len(values) == 0 {
		return Result{}, fmt.Errorf("I couldn't find any usable values for %s in that.", def.DisplayName)
	}
	if len(values) == 1 {
		return Result{Value: values[0]}, nil
	}
	return Result{Value: values}, nil
}

// requiredGuard rejects skip-words and vague utterances on required fields.
func requiredGuard(def registry.FieldDefinition, raw string, extras ...string) error {
	if isSkipWord(raw) {
		return fmt.Errorf("%s is required and can't be skipped. %s", def.DisplayName, def.Description)
	}
	if isVague(raw, extras...) {
		return fmt.Errorf("I need a real value for %s. %s", def.DisplayName, def.Description)
	}
	return nil
}
