package assist

import (
	"context"
	"fmt"
)

// FailbackClassifier tries each classifier in order and returns the first
// answer. With the tool stage first and LocalClassifier last it degrades to
// deterministic behavior whenever the model is absent or failing.
type FailbackClassifier struct {
	classifiers []Classifier
}

func NewFailbackClassifier(classifiers ...Classifier) *FailbackClassifier {
	return &FailbackClassifier{classifiers: classifiers}
}

func (f *FailbackClassifier) Classify(ctx context.Context, req *Request) (bool, error) {
	var lastErr error
	for _, c := range f.classifiers {
		vague, err := c.Classify(ctx, req)
		if err == nil {
			return vague, nil
		}
		lastErr = err
	}
	return false, fmt.Errorf("all classifiers failed: %w", lastErr)
}

// FailbackGuide tries each guide in order.
type FailbackGuide struct {
	guides []Guide
}

func NewFailbackGuide(guides ...Guide) *FailbackGuide {
	return &FailbackGuide{guides: guides}
}

func (f *FailbackGuide) Guidance(ctx context.Context, req *Request) (string, error) {
	var lastErr error
	for _, g := range f.guides {
		text, err := g.Guidance(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all guides failed: %w", lastErr)
}

func (f *FailbackGuide) Greeting(ctx context.Context) (string, error) {
	var lastErr error
	for _, g := range f.guides {
		text, err := g.Greeting(ctx)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all guides failed: %w", lastErr)
}

var (
	_ Classifier = (*LocalClassifier)(nil)
	_ Classifier = (*ToolBasedClassifier)(nil)
	_ Classifier = (*FailbackClassifier)(nil)
	_ Guide      = (*LocalGuide)(nil)
	_ Guide      = (*ToolBasedGuide)(nil)
	_ Guide      = (*FailbackGuide)(nil)
)
