package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/reagent-ai/reagent/internal/agent"
	"github.com/reagent-ai/reagent/internal/audit"
	"github.com/reagent-ai/reagent/internal/cli"
	"github.com/reagent-ai/reagent/internal/config"
	"github.com/reagent-ai/reagent/internal/memory"
	"github.com/reagent-ai/reagent/internal/server"
	"github.com/reagent-ai/reagent/internal/service"
	"github.com/reagent-ai/reagent/internal/tools"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	serve := flag.Bool("serve", false, "run the HTTP API instead of the interactive shell")
	flag.Parse()

	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *serve {
		runServer(ctx, cfg)
		return
	}
	runShell(ctx, cfg)
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func runServer(ctx context.Context, cfg *config.Config) {
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("server setup failed")
	}

	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("starting server")
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func runShell(ctx context.Context, cfg *config.Config) {
	if cfg.AnthropicAPIKey == "" {
		fmt.Fprintln(os.Stderr, "Missing ANTHROPIC_API_KEY; export it before running.")
		os.Exit(1)
	}

	// The shell keeps everything in process; audit events go to the log only.
	auditor := audit.NewLogger(cfg.EnableAuditLogging, nil)
	store := memory.NewMemoryStore()
	defer store.Close()

	var catalog *tools.MCPCatalog
	if cfg.MCPServerURL != "" {
		catalog = tools.NewMCPCatalog(cfg.MCPServerURL, cfg.MCPAPIKey, "1.0.0")
		if _, err := catalog.Refresh(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: MCP server unreachable, continuing with built-in tools: %v\n", err)
		}
		defer catalog.Close()
	}

	runner := agent.New(cfg.AnthropicAPIKey, cfg.Model, cfg.AnthropicBaseURL, cfg.AgentMaxIter, auditor)
	chat := service.NewChatService(runner, store, catalog)

	repl := cli.New(chat, os.Stdin, os.Stdout, os.Stderr)
	if err := repl.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
