package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"menuscan/internal/config"
	"menuscan/internal/logger"
	"menuscan/internal/ocr"
	"menuscan/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the menu scanning HTTP server",
	Long: `Start an HTTP server exposing the menu reconstruction pipeline.

Endpoints:
  POST /v1/menu/scan - multipart upload (field "image"), returns detected items as JSON
  GET  /healthz      - liveness probe

The server shuts down gracefully on SIGINT or SIGTERM.`,
	Example: `  # Serve on the configured address (LISTEN_ADDR, default :8080)
  menuscan serve

  # Serve on a specific address
  menuscan serve --addr :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: from LISTEN_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.ListenAddr = addr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	blockService, err := ocr.NewBlockService(ctx, cfg.OCRBackend)
	if err != nil {
		return handleScanError(err, log)
	}
	defer func() {
		if closeErr := blockService.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close OCR service")
		}
	}()

	srv := server.New(blockService, cfg)

	log.Info().
		Str("addr", cfg.ListenAddr).
		Str("backend", cfg.OCRBackend).
		Msg("Starting menu scan server")

	if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
