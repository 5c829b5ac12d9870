package assist

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/anupamar/intake/registry"
)

// vaguePatterns match help-seeking, confusion, and filler utterances.
var vaguePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(what|which|how|why|where)\b.*\?$`),
	regexp.MustCompile(`(?i)\bwhat (do|should|can) i\b`),
	regexp.MustCompile(`(?i)\bhow do(es)? (i|this|it)\b`),
	regexp.MustCompile(`(?i)\b(i('m| am)? )?(so )?(confused|lost|stuck)\b`),
	regexp.MustCompile(`(?i)\bi don'?t (understand|get it|follow)\b`),
	regexp.MustCompile(`(?i)^(um+|uh+|hmm+|err+|huh)[.!?]*$`),
	regexp.MustCompile(`(?i)^(can|could) you (help|explain|give an example)`),
	regexp.MustCompile(`(?i)\bwhat does (this|that) mean\b`),
	regexp.MustCompile(`(?i)^(example|examples)\??$`),
}

// LocalClassifier is the deterministic pattern stage.
type LocalClassifier struct{}

func (LocalClassifier) Classify(_ context.Context, req *Request) (bool, error) {
	input := strings.TrimSpace(req.Input)
	if utf8.RuneCountInString(input) < 2 {
		return true, nil
	}
	for _, re := range vaguePatterns {
		if re.MatchString(input) {
			return true, nil
		}
	}
	return false, nil
}

// fieldExamples give one concrete sample answer per field for guidance text.
var fieldExamples = map[string]string{
	registry.KeyTitle:         "Improve dashboard load time",
	registry.KeyType:          "Feature",
	registry.KeyClient:        "Acme Corp",
	registry.KeyModule:        "Reporting",
	registry.KeyDescription:   "The weekly report export times out for accounts with more than 10k rows; it should stream instead.",
	registry.KeyOwner:         "Priya Sharma",
	registry.KeyPriority:      "high",
	registry.KeyDueDate:       "next friday",
	registry.KeyReferenceLink: "https://example.com/spec.pdf",
	registry.KeyCreatedBy:     "Anupama Rajaram",
}

// LocalGuide renders guidance from the field registry.
type LocalGuide struct{}

func (LocalGuide) Guidance(_ context.Context, req *Request) (string, error) {
	def := req.Field
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s — %s", def.Icon, def.DisplayName, def.Description)
	if len(def.Options) > 0 {
		fmt.Fprintf(&sb, "\nOptions: %s.", strings.Join(def.Options, ", "))
	}
	if example, ok := fieldExamples[def.Key]; ok {
		fmt.Fprintf(&sb, "\nFor example: %q.", example)
	}
	if def.Skippable {
		sb.WriteString("\nSay 'skip' to leave it blank for now.")
	}
	return sb.String(), nil
}

func (LocalGuide) Greeting(_ context.Context) (string, error) {
	return "Hi! I'll help you file a request. I'll ask a few questions one at a time — " +
		"answer in your own words, or say 'help' on any of them. Let's start.", nil
}
