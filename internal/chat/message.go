// SPDX-License-Identifier: AGPL-3.0-only
package chat

// ToolDefinition is a provider-agnostic representation of a tool that
// can be offered to an LLM during a chat completion.
type ToolDefinition struct {
	Name        string
	Description string
	// Parameters is a JSON-Schema object describing the tool arguments.
	Parameters map[string]interface{}
}

// ToolCall represents a single tool invocation requested by the model.
// Arguments is the raw, not-yet-parsed JSON payload. A ToolCall is
// immutable once it appears in a Message.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is a provider-agnostic chat message.
type Message struct {
	Role       string     // "user", "assistant", "tool"
	Content    string     // text content
	ToolCalls  []ToolCall // tool calls requested by the assistant
	ToolCallID string     // set when Role == "tool" to correlate with a ToolCall
}
