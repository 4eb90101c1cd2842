// SPDX-License-Identifier: AGPL-3.0-only
package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chatloop/chatloop/internal/chat"
	errs "github.com/chatloop/chatloop/internal/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Handler executes one tool call. It receives the raw argument payload
// after schema validation has passed and returns a serialized result.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// entry pairs a tool descriptor with its compiled schema and handler.
type entry struct {
	def     chat.ToolDefinition
	schema  *jsonschema.Schema // nil when the tool declares no parameters
	handler Handler
}

// Registry is a catalog mapping tool names to schema-described
// handlers. It is populated at startup and read-only afterwards, so it
// may be shared by any number of concurrent conversations.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds a tool under def.Name. The parameter schema is compiled
// once here so every later dispatch is a lookup plus a validation, not
// a recompile. Registering a name twice is a configuration fault and
// returns a DuplicateToolError.
func (r *Registry) Register(def chat.ToolDefinition, h Handler) error {
	if def.Name == "" {
		return fmt.Errorf("register tool: name must not be empty")
	}
	if h == nil {
		return fmt.Errorf("register tool %s: handler must not be nil", def.Name)
	}

	var schema *jsonschema.Schema
	if def.Parameters != nil {
		var err error
		schema, err = compileSchema(def.Name, def.Parameters)
		if err != nil {
			return fmt.Errorf("register tool %s: compile schema: %w", def.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[def.Name]; exists {
		return &errs.DuplicateToolError{Tool: def.Name}
	}
	r.entries[def.Name] = &entry{def: def, schema: schema, handler: h}
	r.order = append(r.order, def.Name)
	return nil
}

// Definitions returns the registered tool descriptors in registration
// order. The model treats the set as unordered; a deterministic order
// keeps tests stable.
func (r *Registry) Definitions() []chat.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]chat.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].def)
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) lookup(name string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// compileSchema builds a validator from a JSON-Schema parameter map.
// The map is round-tripped through JSON so typed values (e.g. []string
// for "required") become the plain decoded form the compiler expects.
func compileSchema(name string, params map[string]interface{}) (*jsonschema.Schema, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	url := "chatloop:///tools/" + name + ".json"
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}
