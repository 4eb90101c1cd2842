// SPDX-License-Identifier: AGPL-3.0-only
package tool

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects a JSON-Schema parameter map from a typed
// argument struct. Fields without ",omitempty" become required; use
// jsonschema struct tags for descriptions and enums.
func GenerateSchema[T any]() (map[string]interface{}, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	var v T
	schema := r.Reflect(&v)

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal reflected schema: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal reflected schema: %w", err)
	}

	// Providers only want the plain object schema, not draft metadata.
	delete(m, "$schema")
	delete(m, "$id")
	return m, nil
}

// MustGenerateSchema is GenerateSchema for statically known argument
// structs registered at startup, where a reflection failure is a
// programming error.
func MustGenerateSchema[T any]() map[string]interface{} {
	m, err := GenerateSchema[T]()
	if err != nil {
		panic(err)
	}
	return m
}
