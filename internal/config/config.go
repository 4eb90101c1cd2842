// SPDX-License-Identifier: AGPL-3.0-only
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	App     AppConfig
	AI      AIConfig
	Logging LoggingConfig
	Store   StoreConfig
}

// AppConfig identifies the application.
type AppConfig struct {
	Name    string
	Version string
}

// AIConfig configures the chat-completion provider and the tool loop.
type AIConfig struct {
	// Provider selects the backend: "openai" (default) or "anthropic".
	Provider string
	// Model is the model identifier sent to the provider.
	Model string
	// APIKey is a generic key used when a provider-specific key is unset.
	APIKey          string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	// BaseURL overrides the OpenAI endpoint; allows any OpenAI-compatible
	// server (Ollama, vLLM, Groq, LiteLLM).
	BaseURL string
	// SystemPrompt is an optional system-level instruction prepended to
	// every conversation.
	SystemPrompt string
	// MaxToolRounds caps the number of completion/tool-execution rounds
	// in one conversation turn.
	MaxToolRounds int
	// MCPConfigFilePath points at a JSON file declaring MCP servers whose
	// tools are registered alongside the builtins. Empty disables MCP.
	MCPConfigFilePath string
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error, fatal.
	Level string
	// FilePath redirects log output to a file (default: stderr).
	FilePath string
}

// StoreConfig configures run-result persistence.
type StoreConfig struct {
	// DBPath is the SQLite database location for run results.
	DBPath string
	// Enabled turns result persistence on or off.
	Enabled bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		App: AppConfig{
			Name:    "chatloop",
			Version: "0.3.0",
		},
		AI: AIConfig{
			Provider:      "openai",
			Model:         "gpt-4o",
			MaxToolRounds: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Store: StoreConfig{
			DBPath:  filepath.Join(home, ".chatloop", "results.db"),
			Enabled: true,
		},
	}
}

// FromEnv overrides cfg fields from environment variables.
func FromEnv(cfg *Config) {
	if v := os.Getenv("CHATLOOP_AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := os.Getenv("CHATLOOP_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("CHATLOOP_AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("CHATLOOP_SYSTEM_PROMPT"); v != "" {
		cfg.AI.SystemPrompt = v
	}
	if v := os.Getenv("CHATLOOP_MAX_TOOL_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AI.MaxToolRounds = n
		}
	}
	if v := os.Getenv("CHATLOOP_MCP_CONFIG"); v != "" {
		cfg.AI.MCPConfigFilePath = v
	}
	if v := os.Getenv("CHATLOOP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CHATLOOP_LOG_FILE"); v != "" {
		cfg.Logging.FilePath = v
	}
	if v := os.Getenv("CHATLOOP_DB_PATH"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := os.Getenv("CHATLOOP_DB_DISABLED"); v == "1" || strings.EqualFold(v, "true") {
		cfg.Store.Enabled = false
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.AI.AnthropicAPIKey = v
	}
}

// Validate checks the configuration for fatal misconfiguration.
func (c *Config) Validate() error {
	switch strings.ToLower(c.AI.Provider) {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("invalid AI provider %q (want openai or anthropic)", c.AI.Provider)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("AI model must not be empty")
	}
	if c.AI.MaxToolRounds < 1 {
		return fmt.Errorf("max tool rounds must be at least 1, got %d", c.AI.MaxToolRounds)
	}
	if c.Store.Enabled && c.Store.DBPath == "" {
		return fmt.Errorf("store is enabled but db path is empty")
	}
	return nil
}
