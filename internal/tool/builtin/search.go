// SPDX-License-Identifier: AGPL-3.0-only
package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chatloop/chatloop/internal/chat"
	"github.com/chatloop/chatloop/internal/tool"
)

// SearchArgs are the arguments for the web_search tool.
type SearchArgs struct {
	Query      string `json:"query" jsonschema:"description=Search query"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"description=Maximum number of results to return"`
}

// SearchDefinition describes the simulated search tool.
func SearchDefinition() chat.ToolDefinition {
	return chat.ToolDefinition{
		Name:        "web_search",
		Description: "Searches the web and returns a list of result snippets.",
		Parameters:  tool.MustGenerateSchema[SearchArgs](),
	}
}

// Search is the handler for web_search. Results are simulated and
// derived from the query text.
func Search(ctx context.Context, raw json.RawMessage) (string, error) {
	var args SearchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("decode search arguments: %w", err)
	}
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return "", fmt.Errorf("query must not be blank")
	}
	max := args.MaxResults
	if max < 1 || max > 10 {
		max = 3
	}

	results := make([]map[string]string, 0, max)
	for i := 0; i < max; i++ {
		slug := strings.ReplaceAll(strings.ToLower(query), " ", "-")
		results = append(results, map[string]string{
			"title":   fmt.Sprintf("Result %d for %q", i+1, query),
			"url":     fmt.Sprintf("https://example.com/%s/%d", slug, i+1),
			"snippet": fmt.Sprintf("Summary %d of information about %s.", i+1, query),
		})
	}

	out, err := json.Marshal(map[string]interface{}{
		"query":   query,
		"results": results,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
