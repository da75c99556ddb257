// Package server exposes the menu scanning pipeline over HTTP. It is a
// thin adapter: multipart image in, JSON ScanResult out. All
// reconstruction logic lives in internal/menu and all OCR in internal/ocr.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"menuscan/internal/config"
	"menuscan/internal/logger"
	"menuscan/internal/ocr"
)

// Server serves the menu scan endpoint.
type Server struct {
	blocks ocr.BlockService
	cfg    *config.Config
	log    zerolog.Logger
}

// New creates a Server around an OCR backend and the loaded configuration.
func New(blocks ocr.BlockService, cfg *config.Config) *Server {
	return &Server{
		blocks: blocks,
		cfg:    cfg,
		log:    logger.WithComponent("server"),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/menu/scan", s.handleScan)
	return mux
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info().Str("addr", addr).Msg("HTTP server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
