// SPDX-License-Identifier: AGPL-3.0-only
package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chatloop/chatloop/internal/config"
	"github.com/chatloop/chatloop/internal/errors"
	"github.com/chatloop/chatloop/internal/logging"
)

// ToolSource supplies tool descriptors for completion requests and
// executes the tool calls the model issues.
type ToolSource interface {
	// Definitions returns the registered tool descriptors in
	// registration order.
	Definitions() []ToolDefinition
	// Execute runs one tool call and returns its serialized result.
	Execute(ctx context.Context, call ToolCall) (string, error)
}

// State is the orchestrator's position in the conversation round.
type State int

const (
	StateAwaitingInput State = iota
	StateRequestingCompletion
	StateExecutingTools
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateRequestingCompletion:
		return "requesting_completion"
	case StateExecutingTools:
		return "executing_tools"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Orchestrator owns one conversation's message history and drives the
// request/execute/respond loop against a ChatProvider. It is not safe
// for concurrent use: one conversation is processed strictly
// sequentially, and the history is exclusively owned by this instance.
type Orchestrator struct {
	provider  ChatProvider
	tools     ToolSource
	logger    *logging.Logger
	model     string
	systemMsg string
	maxRounds int

	state   State
	history []Message
}

// NewOrchestrator creates an Orchestrator for a single conversation.
// tools may be nil, in which case every request is a plain completion.
func NewOrchestrator(provider ChatProvider, tools ToolSource, cfg *config.Config, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	return &Orchestrator{
		provider:  provider,
		tools:     tools,
		logger:    logger,
		model:     cfg.AI.Model,
		systemMsg: cfg.AI.SystemPrompt,
		maxRounds: cfg.AI.MaxToolRounds,
		state:     StateAwaitingInput,
	}
}

// State returns the orchestrator's current state.
func (o *Orchestrator) State() State {
	return o.state
}

// History returns a copy of the conversation history so far.
func (o *Orchestrator) History() []Message {
	out := make([]Message, len(o.history))
	copy(out, o.history)
	return out
}

// Run processes one user message in whole-response mode and returns
// the final assistant text. Tool calls issued by the model are executed
// sequentially in issuance order; each receives exactly one tool-result
// message before the follow-up completion request. The loop is capped
// at MaxToolRounds completion requests.
func (o *Orchestrator) Run(ctx context.Context, userText string) (string, error) {
	o.history = append(o.history, Message{Role: "user", Content: userText})

	defs := o.definitions()
	for round := 0; round < o.maxRounds; round++ {
		o.state = StateRequestingCompletion
		o.logger.Debugf("Completion round %d (%d messages)", round+1, len(o.history))

		resp, err := o.provider.CreateCompletion(ctx, o.model, o.systemMsg, o.history, defs)
		if err != nil {
			return "", &errors.TransportError{Err: err}
		}
		o.history = append(o.history, *resp)

		if len(resp.ToolCalls) == 0 {
			o.state = StateDone
			return resp.Content, nil
		}

		if err := o.executeToolCalls(ctx, resp.ToolCalls); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("tool loop exceeded maximum rounds (%d)", o.maxRounds)
}

// RunStream processes one user message in streaming mode. Text deltas
// are forwarded to onText as they arrive; tool-call fragments are
// reassembled before execution. If the stream is cancelled or fails,
// partially reconstructed tool calls are discarded and nothing from the
// failed round is appended to history.
func (o *Orchestrator) RunStream(ctx context.Context, userText string, onText func(string) error) (string, error) {
	o.history = append(o.history, Message{Role: "user", Content: userText})

	defs := o.definitions()
	for round := 0; round < o.maxRounds; round++ {
		o.state = StateRequestingCompletion
		o.logger.Debugf("Streamed completion round %d (%d messages)", round+1, len(o.history))

		asm := NewAssembler()
		var emitErr error
		err := o.provider.StreamCompletion(ctx, o.model, o.systemMsg, o.history, defs, func(ev StreamEvent) error {
			if ev.TextDelta != "" && onText != nil {
				if err := onText(ev.TextDelta); err != nil {
					emitErr = err
					return err
				}
			}
			asm.Apply(ev)
			return nil
		})
		if err != nil {
			if emitErr != nil {
				return "", emitErr
			}
			return "", &errors.TransportError{Err: err}
		}

		resp, err := asm.Message()
		if err != nil {
			return "", err
		}
		o.history = append(o.history, *resp)

		if len(resp.ToolCalls) == 0 {
			o.state = StateDone
			return resp.Content, nil
		}

		if err := o.executeToolCalls(ctx, resp.ToolCalls); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("tool loop exceeded maximum rounds (%d)", o.maxRounds)
}

// executeToolCalls runs each call in issuance order and appends one
// tool-result message per call. Per-call failures become an error
// payload the model can see and react to; they never abort the round.
func (o *Orchestrator) executeToolCalls(ctx context.Context, calls []ToolCall) error {
	o.state = StateExecutingTools
	for i, call := range calls {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.logger.Debugf("Tool call %d/%d: %s", i+1, len(calls), call.Name)

		out, err := o.tools.Execute(ctx, call)
		if err != nil {
			o.logger.Warnf("Tool call %s failed: %v", call.Name, err)
			out = errorPayload(err)
		}
		o.history = append(o.history, Message{
			Role:       "tool",
			Content:    out,
			ToolCallID: call.ID,
		})
	}
	return nil
}

func (o *Orchestrator) definitions() []ToolDefinition {
	if o.tools == nil {
		return nil
	}
	return o.tools.Definitions()
}

// errorPayload serializes err into the tool-result text so the exchange
// stays well-formed even when a call fails.
func errorPayload(err error) string {
	data, jsonErr := json.Marshal(map[string]string{"error": err.Error()})
	if jsonErr != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(data)
}
