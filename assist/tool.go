package assist

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/anupamar/intake/structured"
)

const (
	classifyToolName = "classify_field_answer"
	classifyToolDesc = "Decide whether the user's message contains a usable answer for the current form field."
)

type classifyResult struct {
	Vague bool `json:"vague" jsonschema:"required,description=true when the message is a question, confusion, or filler rather than an answer"`
}

// ToolBasedClassifier asks a chat model whether the utterance answers the
// active field. Callers must treat any error as "use the local stage".
type ToolBasedClassifier struct {
	chain *structured.Chain[*Request, classifyResult]
}

func NewToolBasedClassifier(chatModel model.ToolCallingChatModel) (*ToolBasedClassifier, error) {
	chain, err := structured.NewChain[*Request, classifyResult](
		chatModel,
		buildClassifyPrompt,
		classifyToolName,
		classifyToolDesc,
	)
	if err != nil {
		return nil, fmt.Errorf("create classify chain: %w", err)
	}
	return &ToolBasedClassifier{chain: chain}, nil
}

func (c *ToolBasedClassifier) Classify(ctx context.Context, req *Request) (bool, error) {
	result, err := c.chain.Invoke(ctx, req)
	if err != nil {
		return false, err
	}
	return result.Vague, nil
}

func buildClassifyPrompt(_ context.Context, req *Request) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`You are helping a form-filling assistant interpret one user message.

The assistant just asked for the field %q (%s).

Decide whether the user's message is an ANSWER to that field, or VAGUE input:
- vague: questions about the form, confusion, filler words, meta-requests for help or examples.
- not vague: anything that plausibly contains a value for the field, even if imperfect. Validation happens elsewhere; do not judge correctness.

Call the '%s' tool with the result.`, req.Field.DisplayName, req.Field.Description, classifyToolName)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(req.Input),
	}, nil
}

// ToolBasedGuide generates conversational guidance text with a chat model.
type ToolBasedGuide struct {
	chatModel model.ToolCallingChatModel
}

func NewToolBasedGuide(chatModel model.ToolCallingChatModel) *ToolBasedGuide {
	return &ToolBasedGuide{chatModel: chatModel}
}

func (g *ToolBasedGuide) Guidance(ctx context.Context, req *Request) (string, error) {
	systemPrompt := fmt.Sprintf(`You are a friendly assistant guiding someone through an intake form, one field at a time.

The current field is %q: %s

The user seems unsure. In two or three sentences, explain what to enter and give one concrete example. No lists, no markdown.`, req.Field.DisplayName, req.Field.Description)

	response, err := g.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(req.Input),
	})
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response.Content, nil
}

func (g *ToolBasedGuide) Greeting(ctx context.Context) (string, error) {
	response, err := g.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage("You open a short conversation that collects a product request through chat, one field at a time. Greet the user in one or two warm sentences and say you'll ask a few questions. No lists."),
	})
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response.Content, nil
}
