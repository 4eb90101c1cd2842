// SPDX-License-Identifier: AGPL-3.0-only

// Package builtin provides the demo tool set registered by default:
// a simulated weather lookup, price arithmetic, and a simulated web
// search. All handlers are pure functions of their arguments.
package builtin

import (
	"github.com/chatloop/chatloop/internal/tool"
)

// RegisterAll registers every builtin tool into reg.
func RegisterAll(reg *tool.Registry) error {
	if err := reg.Register(WeatherDefinition(), Weather); err != nil {
		return err
	}
	if err := reg.Register(PriceDefinition(), Price); err != nil {
		return err
	}
	if err := reg.Register(SearchDefinition(), Search); err != nil {
		return err
	}
	return nil
}
