// SPDX-License-Identifier: AGPL-3.0-only
package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/chatloop/chatloop/internal/chat"
	"github.com/chatloop/chatloop/internal/tool"
)

// WeatherArgs are the arguments for the get_current_weather tool.
type WeatherArgs struct {
	Location string `json:"location" jsonschema:"description=City and country to look up"`
	Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit,description=Temperature unit"`
}

var conditions = []string{"sunny", "partly cloudy", "overcast", "light rain", "thunderstorm", "windy"}

// WeatherDefinition describes the simulated weather lookup tool.
func WeatherDefinition() chat.ToolDefinition {
	return chat.ToolDefinition{
		Name:        "get_current_weather",
		Description: "Gets the current weather for a location.",
		Parameters:  tool.MustGenerateSchema[WeatherArgs](),
	}
}

// Weather is the handler for get_current_weather. The lookup is
// simulated: conditions derive deterministically from the location so
// repeated calls with the same arguments return the same result.
func Weather(ctx context.Context, raw json.RawMessage) (string, error) {
	var args WeatherArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("decode weather arguments: %w", err)
	}
	if strings.TrimSpace(args.Location) == "" {
		return "", fmt.Errorf("location must not be blank")
	}
	unit := args.Unit
	if unit == "" {
		unit = "celsius"
	}

	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(args.Location))))
	sum := h.Sum32()

	tempC := int(sum%35) + 2 // 2..36 C
	temp := tempC
	if unit == "fahrenheit" {
		temp = tempC*9/5 + 32
	}
	condition := conditions[int(sum/35)%len(conditions)]

	out, err := json.Marshal(map[string]interface{}{
		"location":    args.Location,
		"temperature": temp,
		"unit":        unit,
		"condition":   condition,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
