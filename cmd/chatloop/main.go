// SPDX-License-Identifier: AGPL-3.0-only
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chatloop/chatloop/internal/chat"
	"github.com/chatloop/chatloop/internal/config"
	errs "github.com/chatloop/chatloop/internal/errors"
	"github.com/chatloop/chatloop/internal/logging"
	"github.com/chatloop/chatloop/internal/model"
	"github.com/chatloop/chatloop/internal/singleton"
	"github.com/chatloop/chatloop/internal/store"
	"github.com/chatloop/chatloop/internal/tool"
	"github.com/chatloop/chatloop/internal/tool/builtin"
)

var (
	aiProvider    = flag.String("ai-provider", "", "AI provider: openai or anthropic (default: openai)")
	aiBaseURL     = flag.String("ai-base-url", "", "Custom base URL for OpenAI-compatible endpoints (e.g. Ollama, vLLM, Groq, LiteLLM)")
	aiModel       = flag.String("ai-model", "", "AI model to use (default: gpt-4o)")
	systemPrompt  = flag.String("system", "", "System prompt prepended to the conversation")
	maxToolRounds = flag.Int("max-tool-rounds", 0, "Maximum completion/tool-execution rounds per turn (default: 10)")
	streamMode    = flag.Bool("stream", false, "Stream assistant text as it is generated")
	interactive   = flag.Bool("i", false, "Interactive mode: read prompts from stdin until EOF")
	logLevel      = flag.String("log-level", "", "Logging level: debug, info, warn, error, fatal")
	logFile       = flag.String("log-file", "", "Log file path (default: stderr)")
	mcpConfigPath = flag.String("mcp-config-path", "", "Path to MCP configuration file (empty: MCP disabled)")
	dbPath        = flag.String("db-path", "", "Path to SQLite database for result history (default: ~/.chatloop/results.db)")
	noStore       = flag.Bool("no-store", false, "Disable result persistence")
	version       = flag.Bool("version", false, "Show version information and exit")
)

func main() {
	flag.Parse()

	cfg := loadConfig()

	if *version {
		log.Printf("%s version %s", cfg.App.Name, cfg.App.Version)
		os.Exit(0)
	}

	logger := logging.New(logging.Options{
		Level:    logging.ParseLevel(cfg.Logging.Level),
		FilePath: cfg.Logging.FilePath,
	})
	logging.SetDefaultLogger(logger)

	prompt := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if prompt == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "usage: chatloop [flags] <prompt>  (or chatloop -i)")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Cancel the run on interrupt so a mid-stream Ctrl-C discards
	// partial state instead of hanging on the transport.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, prompt); err != nil {
		logger.Errorf("Run failed: %v", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration from defaults, environment and command
// line flags, in that order.
func loadConfig() *config.Config {
	cfg := config.DefaultConfig()
	config.FromEnv(cfg)
	applyCommandLineFlagsToConfig(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// applyCommandLineFlagsToConfig applies command line flags to the configuration
func applyCommandLineFlagsToConfig(cfg *config.Config) {
	if *aiProvider != "" {
		cfg.AI.Provider = *aiProvider
	}
	if *aiBaseURL != "" {
		cfg.AI.BaseURL = *aiBaseURL
	}
	if *aiModel != "" {
		cfg.AI.Model = *aiModel
	}
	if *systemPrompt != "" {
		cfg.AI.SystemPrompt = *systemPrompt
	}
	if *maxToolRounds > 0 {
		cfg.AI.MaxToolRounds = *maxToolRounds
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Logging.FilePath = *logFile
	}
	if *mcpConfigPath != "" {
		cfg.AI.MCPConfigFilePath = *mcpConfigPath
	}
	if *dbPath != "" {
		cfg.Store.DBPath = *dbPath
	}
	if *noStore {
		cfg.Store.Enabled = false
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, prompt string) error {
	resultStore, release := openResultStore(cfg, logger)
	defer release()

	registry := tool.NewRegistry()
	if err := builtin.RegisterAll(registry); err != nil {
		return fmt.Errorf("register builtin tools: %w", err)
	}
	if cfg.AI.MCPConfigFilePath != "" {
		closer, err := tool.LoadMCPTools(ctx, cfg.AI.MCPConfigFilePath, registry, logger)
		if err != nil {
			logger.Warnf("MCP tools unavailable: %v", err)
		} else {
			defer closer()
		}
	}
	logger.Infof("%d tools registered", registry.Len())

	provider, err := chat.NewChatProvider(cfg)
	if err != nil {
		return err
	}

	dispatcher := tool.NewDispatcher(registry, logger)
	orch := chat.NewOrchestrator(provider, dispatcher, cfg, logger)

	if *interactive {
		return runInteractive(ctx, orch, resultStore, logger, prompt)
	}
	return runOnce(ctx, orch, resultStore, logger, prompt)
}

// openResultStore opens the SQLite result store guarded by a
// single-writer lock. A secondary instance, or any open failure, runs
// without persistence instead of aborting the conversation.
func openResultStore(cfg *config.Config, logger *logging.Logger) (model.ResultStore, func()) {
	if !cfg.Store.Enabled {
		return nil, func() {}
	}

	lock, isPrimary, err := singleton.TryAcquire(cfg.Store.DBPath)
	if err != nil {
		logger.Warnf("Result store lock unavailable: %v", err)
		return nil, func() {}
	}
	if !isPrimary {
		logger.Warnf("Another instance owns %s; running without result persistence", cfg.Store.DBPath)
		return nil, func() {}
	}

	s, err := store.NewSQLiteStore(cfg.Store.DBPath)
	if err != nil {
		logger.Warnf("Result store unavailable: %v", err)
		_ = lock.Release()
		return nil, func() {}
	}
	return s, func() {
		_ = s.Close()
		_ = lock.Release()
	}
}

func runOnce(ctx context.Context, orch *chat.Orchestrator, resultStore model.ResultStore, logger *logging.Logger, prompt string) error {
	output, err := executeTurn(ctx, orch, resultStore, logger, prompt)
	if err != nil {
		return err
	}
	if !*streamMode {
		fmt.Println(output)
	}
	return nil
}

func runInteractive(ctx context.Context, orch *chat.Orchestrator, resultStore model.ResultStore, logger *logging.Logger, first string) error {
	if first != "" {
		if err := printTurn(ctx, orch, resultStore, logger, first); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}
		if err := printTurn(ctx, orch, resultStore, logger, line); err != nil {
			if errs.RoundAborting(err) {
				// History up to the failed round is intact; the same
				// message can simply be sent again.
				fmt.Fprintf(os.Stderr, "error: %v (retry to resume)\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

func printTurn(ctx context.Context, orch *chat.Orchestrator, resultStore model.ResultStore, logger *logging.Logger, prompt string) error {
	output, err := executeTurn(ctx, orch, resultStore, logger, prompt)
	if err != nil {
		return err
	}
	if !*streamMode {
		fmt.Println(output)
	}
	return nil
}

// executeTurn runs one conversation turn and persists its outcome.
func executeTurn(ctx context.Context, orch *chat.Orchestrator, resultStore model.ResultStore, logger *logging.Logger, prompt string) (string, error) {
	result := &model.Result{
		ConversationID: fmt.Sprintf("conv-%d", time.Now().UnixNano()),
		Prompt:         prompt,
		StartTime:      time.Now(),
	}

	var output string
	var err error
	if *streamMode {
		output, err = orch.RunStream(ctx, prompt, func(delta string) error {
			fmt.Print(delta)
			return nil
		})
		fmt.Println()
	} else {
		output, err = orch.Run(ctx, prompt)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime).String()
	result.Output = output
	result.Rounds, result.ToolCalls = countRounds(orch.History())
	if err != nil {
		result.Error = err.Error()
	}

	model.PersistAndLogResult(resultStore, result, logger)
	return output, err
}

// countRounds derives round and tool-call counts from the history.
func countRounds(history []chat.Message) (rounds, toolCalls int) {
	for _, m := range history {
		if m.Role == "assistant" {
			rounds++
			toolCalls += len(m.ToolCalls)
		}
	}
	return rounds, toolCalls
}
