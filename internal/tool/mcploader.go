// SPDX-License-Identifier: AGPL-3.0-only
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/chatloop/chatloop/internal/chat"
	"github.com/chatloop/chatloop/internal/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// mcpConfig mirrors the common mcpServers JSON layout.
type mcpConfig struct {
	MCP map[string]struct {
		Command string   `json:"command,omitempty"`
		Args    []string `json:"args,omitempty"`
		URL     string   `json:"url,omitempty"`
	} `json:"mcpServers"`
}

// LoadMCPTools connects to every MCP server declared in the config
// file at path and registers each remote tool into reg behind a
// session-backed handler. Server connection and listing failures are
// logged and skipped so one bad server does not block the rest. The
// returned closer shuts down all established sessions.
func LoadMCPTools(ctx context.Context, path string, reg *Registry, logger *logging.Logger) (func(), error) {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read MCP config: %w", err)
	}
	var cfg mcpConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse MCP config: %w", err)
	}

	var sessions []*mcp.ClientSession
	closer := func() {
		for _, s := range sessions {
			_ = s.Close()
		}
	}

	for name, spec := range cfg.MCP {
		var tp mcp.Transport
		switch {
		case spec.Command != "":
			tp = &mcp.CommandTransport{Command: exec.Command(spec.Command, spec.Args...)}
		case spec.URL != "":
			tp = &mcp.SSEClientTransport{Endpoint: spec.URL}
		default:
			continue
		}

		cli := mcp.NewClient(&mcp.Implementation{Name: "chatloop", Version: "1.0.0"}, nil)
		session, err := cli.Connect(ctx, tp, nil)
		if err != nil {
			logger.Warnf("Failed to connect to MCP server %s: %v", name, err)
			continue
		}
		sessions = append(sessions, session)

		resp, err := session.ListTools(ctx, nil)
		if err != nil {
			logger.Warnf("Failed to list tools for MCP server %s: %v", name, err)
			continue
		}
		for _, tl := range resp.Tools {
			def, err := mcpToolDefinition(tl)
			if err != nil {
				logger.Warnf("Skipping MCP tool %s: %v", tl.Name, err)
				continue
			}
			if err := reg.Register(def, mcpHandler(session, tl.Name)); err != nil {
				logger.Warnf("Skipping MCP tool %s from server %s: %v", tl.Name, name, err)
				continue
			}
			logger.Debugf("Registered MCP tool %s from server %s", tl.Name, name)
		}
	}
	return closer, nil
}

// mcpToolDefinition converts an MCP tool listing into the
// provider-agnostic descriptor.
func mcpToolDefinition(tl *mcp.Tool) (chat.ToolDefinition, error) {
	var params map[string]interface{}
	if tl.InputSchema != nil {
		data, err := json.Marshal(tl.InputSchema)
		if err != nil {
			return chat.ToolDefinition{}, fmt.Errorf("marshal input schema: %w", err)
		}
		if err := json.Unmarshal(data, &params); err != nil {
			return chat.ToolDefinition{}, fmt.Errorf("unmarshal input schema: %w", err)
		}
	}

	// Some providers reject object schemas with no properties; give
	// parameterless tools a placeholder argument instead.
	if params != nil && params["type"] == "object" {
		props, _ := params["properties"].(map[string]interface{})
		if len(props) == 0 {
			params["properties"] = map[string]interface{}{
				"random_string": map[string]interface{}{
					"type":        "string",
					"description": "Dummy parameter for no-parameter tools",
				},
			}
			params["required"] = []string{"random_string"}
		}
	}

	return chat.ToolDefinition{
		Name:        tl.Name,
		Description: tl.Description,
		Parameters:  params,
	}, nil
}

// mcpHandler wraps one remote tool behind the local Handler contract.
func mcpHandler(session *mcp.ClientSession, name string) Handler {
	return func(ctx context.Context, raw json.RawMessage) (string, error) {
		var args map[string]interface{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return "", fmt.Errorf("unmarshal arguments: %w", err)
			}
		}
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		})
		if err != nil {
			return "", err
		}
		// Flatten the tool response into a single string.
		out, _ := json.Marshal(res.Content)
		return string(out), nil
	}
}
