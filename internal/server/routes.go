package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/reagent-ai/reagent/internal/agent"
	"github.com/reagent-ai/reagent/internal/audit"
	"github.com/reagent-ai/reagent/internal/handler"
	"github.com/reagent-ai/reagent/internal/memory"
	"github.com/reagent-ai/reagent/internal/middleware"
	"github.com/reagent-ai/reagent/internal/service"
	"github.com/reagent-ai/reagent/internal/tools"
	"github.com/rs/zerolog/log"
)

// setupRoutes builds the service graph and the chi router. The returned
// store and catalog are held by the server for graceful close.
func (s *Server) setupRoutes() (http.Handler, memory.Store, *tools.MCPCatalog, error) {
	cfg := s.cfg
	ctx := context.Background()

	// ─── Checkpoint Store ───────────────────────────────────────────────────────
	var store memory.Store
	var pinger handler.Pinger
	if cfg.MemoryBackend == "postgres" {
		pg, err := memory.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		store = pg
		pinger = pg
	} else {
		store = memory.NewMemoryStore()
	}

	// ─── Audit ──────────────────────────────────────────────────────────────────
	var sink audit.Sink
	if cfg.EnableAuditLogging && cfg.AuditSink == "elasticsearch" {
		es, err := audit.NewElasticSink(
			cfg.ElasticsearchScheme,
			cfg.ElasticsearchHost,
			cfg.ElasticsearchPort,
			cfg.ElasticsearchUser,
			cfg.ElasticsearchPassword,
			cfg.ElasticsearchAuditIndex,
			cfg.ElasticsearchVerifyCerts,
			cfg.ElasticsearchMaxRetries,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Elasticsearch audit sink unavailable - falling back to log-only audit")
		} else {
			sink = es
		}
	}
	auditor := audit.NewLogger(cfg.EnableAuditLogging, sink)

	// ─── MCP Tool Catalog ───────────────────────────────────────────────────────
	var catalog *tools.MCPCatalog
	if cfg.MCPServerURL != "" {
		catalog = tools.NewMCPCatalog(cfg.MCPServerURL, cfg.MCPAPIKey, version)
		refreshCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if _, err := catalog.Refresh(refreshCtx); err != nil {
			// Built-in tools keep working without the MCP server.
			log.Warn().Err(err).Str("endpoint", cfg.MCPServerURL).Msg("MCP server unreachable - continuing with built-in tools")
		}
		cancel()
	}

	// ─── Agent ──────────────────────────────────────────────────────────────────
	if cfg.AnthropicAPIKey == "" {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - chat requests will fail")
	}
	runner := agent.New(cfg.AnthropicAPIKey, cfg.Model, cfg.AnthropicBaseURL, cfg.AgentMaxIter, auditor)
	chatSvc := service.NewChatService(runner, store, catalog)

	log.Info().
		Str("model", cfg.Model).
		Str("memory_backend", cfg.MemoryBackend).
		Bool("mcp_enabled", catalog != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - all API requests will be rejected")
	}

	// ─── Handlers ───────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(cfg.AnthropicAPIKey != "", pinger, catalog)
	chatH := handler.NewChatHandler(chatSvc)
	sessionH := handler.NewSessionHandler(chatSvc)
	toolsH := handler.NewToolsHandler(chatSvc)

	// ─── Router ─────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	// Auth + rate limiting for API routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Post("/chat", chatH.Chat)
			r.Get("/tools", toolsH.List)
			r.Route("/sessions/{sessionID}", func(r chi.Router) {
				r.Get("/history", sessionH.History)
				r.Delete("/", sessionH.Clear)
			})
		})
	})

	return r, store, catalog, nil
}
