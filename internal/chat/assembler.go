// SPDX-License-Identifier: AGPL-3.0-only
package chat

import (
	"sort"
	"strings"

	"github.com/chatloop/chatloop/internal/errors"
)

// Assembler reconstructs complete tool calls from the partial updates
// of one streamed response. Fragments for the same index must be
// applied in arrival order; indices themselves may interleave freely.
// An Assembler serves exactly one stream and is discarded afterwards.
type Assembler struct {
	text  strings.Builder
	calls map[int]*partialCall
}

// partialCall accumulates one tool call's fields. The id is written at
// most once; name and arguments only ever grow by appending.
type partialCall struct {
	id   string
	name strings.Builder
	args strings.Builder
}

// NewAssembler creates an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{calls: make(map[int]*partialCall)}
}

// Apply folds one stream event into the accumulated state. An
// accumulator is created the first time an index is seen, so fragments
// for a not-yet-seen index are never dropped.
func (a *Assembler) Apply(ev StreamEvent) {
	a.text.WriteString(ev.TextDelta)
	for _, d := range ev.ToolCalls {
		pc, ok := a.calls[d.Index]
		if !ok {
			pc = &partialCall{}
			a.calls[d.Index] = pc
		}
		if pc.id == "" {
			pc.id = d.ID
		}
		pc.name.WriteString(d.NameDelta)
		pc.args.WriteString(d.ArgumentsDelta)
	}
}

// Message finalizes the accumulated state into an assistant message
// with tool calls ordered by ascending index. A call whose name never
// arrived means the transport violated protocol expectations; that is
// reported as a MalformedStreamError rather than silently dropped.
func (a *Assembler) Message() (*Message, error) {
	msg := &Message{
		Role:    "assistant",
		Content: a.text.String(),
	}
	if len(a.calls) == 0 {
		return msg, nil
	}

	indices := make([]int, 0, len(a.calls))
	for idx := range a.calls {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	msg.ToolCalls = make([]ToolCall, 0, len(indices))
	for _, idx := range indices {
		pc := a.calls[idx]
		if pc.name.Len() == 0 {
			return nil, &errors.MalformedStreamError{
				Index:  idx,
				Reason: "stream ended before a tool name was received",
			}
		}
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:        pc.id,
			Name:      pc.name.String(),
			Arguments: pc.args.String(),
		})
	}
	return msg, nil
}
