// SPDX-License-Identifier: AGPL-3.0-only
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chatloop/chatloop/internal/chat"
	errs "github.com/chatloop/chatloop/internal/errors"
	"github.com/chatloop/chatloop/internal/logging"
)

// Dispatcher routes model-issued tool calls to registered handlers
// with validated arguments. It implements chat.ToolSource.
type Dispatcher struct {
	registry *Registry
	logger   *logging.Logger
}

// NewDispatcher creates a Dispatcher over reg.
func NewDispatcher(reg *Registry, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	return &Dispatcher{registry: reg, logger: logger}
}

// Definitions returns the registry's tool descriptors in registration
// order.
func (d *Dispatcher) Definitions() []chat.ToolDefinition {
	return d.registry.Definitions()
}

// Execute resolves call.Name, parses and validates call.Arguments, and
// invokes the handler.
//
// Resolution and argument failures are returned as typed errors
// (UnknownToolError, ArgumentParseError, ArgumentValidationError) for
// the caller to fold into a tool-result payload. A handler failure is
// serialized into an {"error": ...} result here instead of propagating,
// so the conversation always receives some tool-result text.
func (d *Dispatcher) Execute(ctx context.Context, call chat.ToolCall) (string, error) {
	e, ok := d.registry.lookup(call.Name)
	if !ok {
		return "", &errs.UnknownToolError{Tool: call.Name}
	}

	raw := call.Arguments
	if raw == "" {
		raw = "{}"
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", &errs.ArgumentParseError{Tool: call.Name, Arguments: call.Arguments, Err: err}
	}
	if e.schema != nil {
		if err := e.schema.Validate(parsed); err != nil {
			return "", &errs.ArgumentValidationError{Tool: call.Name, Arguments: call.Arguments, Err: err}
		}
	}

	out, err := e.handler(ctx, json.RawMessage(raw))
	if err != nil {
		d.logger.Warnf("Tool %s handler failed: %v", call.Name, err)
		return handlerErrorPayload(err), nil
	}
	return out, nil
}

func handlerErrorPayload(err error) string {
	data, jsonErr := json.Marshal(map[string]string{"error": err.Error()})
	if jsonErr != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(data)
}
