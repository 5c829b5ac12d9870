// Package agent exposes an intake session as an eino adk.Agent so the
// wizard can run inside a multi-agent host alongside other agents.
package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"

	"github.com/anupamar/intake/session"
)

var _ adk.Agent = (*Agent)(nil)

type Agent struct {
	name        string
	description string
	session     *session.Session
}

func NewAgent(name, description string, sess *session.Session) *Agent {
	return &Agent{
		name:        name,
		description: description,
		session:     sess,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

// Run feeds the newest user message into the session turn loop. The first
// call with no messages yields the greeting and the opening question.
func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()

		var reply *session.Reply
		if len(input.Messages) == 0 {
			reply = a.session.Start(ctx)
		} else {
			turn, err := a.session.HandleTurn(ctx, input.Messages[len(input.Messages)-1].Content)
			if err != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("session turn failed: %w", err),
				})
				return
			}
			reply = turn
		}
		gen.Send(&adk.AgentEvent{
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message: &schema.Message{
						Role:    schema.Assistant,
						Content: reply.Message,
					},
					Role: schema.Assistant,
				},
			},
		})
	}()
	return iter
}
