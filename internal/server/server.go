package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/reagent-ai/reagent/internal/config"
	"github.com/reagent-ai/reagent/internal/memory"
	"github.com/reagent-ai/reagent/internal/tools"
	"github.com/rs/zerolog/log"
)

const version = "1.0.0"

type Server struct {
	cfg     *config.Config
	http    *http.Server
	store   memory.Store      // held for graceful close
	catalog *tools.MCPCatalog // optional, held for graceful close
}

func New(cfg *config.Config) (*Server, error) {
	s := &Server{cfg: cfg}

	router, store, catalog, err := s.setupRoutes()
	if err != nil {
		return nil, fmt.Errorf("setup routes: %w", err)
	}
	s.store = store
	s.catalog = catalog

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // streaming responses manage their own deadline
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.http.Shutdown(shutdownCtx)

		s.store.Close()
		if s.catalog != nil {
			if closeErr := s.catalog.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("error closing MCP session")
			}
		}

		return err
	case err := <-errCh:
		return err
	}
}
