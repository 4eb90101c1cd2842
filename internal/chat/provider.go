// SPDX-License-Identifier: AGPL-3.0-only
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatloop/chatloop/internal/config"
)

// ToolCallDelta is one partial update of a tool call's fields during a
// streamed response, keyed by the positional Index the provider
// assigned to the call. Any subset of the remaining fields may be set.
type ToolCallDelta struct {
	Index          int
	ID             string
	NameDelta      string
	ArgumentsDelta string
}

// StreamEvent is one incremental update from a streamed completion.
// Text and tool-call reconstruction are independent sub-streams
// multiplexed into the same event sequence.
type StreamEvent struct {
	TextDelta    string
	ToolCalls    []ToolCallDelta
	FinishReason string
}

// ChatProvider abstracts a chat-completion backend so the orchestrator
// can work with any LLM provider.
type ChatProvider interface {
	// CreateCompletion sends a chat completion request and returns the
	// assistant's response message. systemMsg is an optional system-level
	// instruction prepended to the conversation (empty string to omit).
	CreateCompletion(ctx context.Context, model string, systemMsg string, messages []Message, tools []ToolDefinition) (*Message, error)

	// StreamCompletion sends a streamed chat completion request and
	// invokes emit for every event, in arrival order. Returning a
	// non-nil error from emit stops the stream and is returned as-is.
	StreamCompletion(ctx context.Context, model string, systemMsg string, messages []Message, tools []ToolDefinition, emit func(StreamEvent) error) error
}

// NewChatProvider builds the appropriate ChatProvider based on
// cfg.AI.Provider.
func NewChatProvider(cfg *config.Config) (ChatProvider, error) {
	provider := strings.ToLower(cfg.AI.Provider)
	switch provider {
	case "anthropic":
		apiKey := cfg.AI.AnthropicAPIKey
		if apiKey == "" {
			apiKey = cfg.AI.APIKey
		}
		if apiKey == "" {
			return nil, fmt.Errorf("Anthropic API key is not set in configuration")
		}
		return NewAnthropicProvider(apiKey), nil
	default: // "openai" or empty
		apiKey := cfg.AI.OpenAIAPIKey
		if apiKey == "" {
			apiKey = cfg.AI.APIKey
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is not set in configuration")
		}
		return NewOpenAIProvider(apiKey, cfg.AI.BaseURL), nil
	}
}
