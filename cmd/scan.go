package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"menuscan/internal/config"
	"menuscan/internal/logger"
	"menuscan/internal/menu"
	"menuscan/internal/ocr"
	"menuscan/pkg/models"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image-file]",
	Short: "Reconstruct menu items from a menu photograph",
	Long: `Process a menu photograph with an OCR backend and reconstruct the
(dish name, price) pairs printed on it.

The default backend is Google Cloud Vision document text detection,
which handles multi-column vertical Japanese menus well. Items whose
pairing is uncertain are flagged for review instead of being dropped.

Required environment variables (Google backends):
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_CLOUD_PROJECT - Your Google Cloud project ID`,
	Example: `  # Scan a menu photo and print the detected items
  menuscan scan menu.jpg

  # Emit the full result as JSON
  menuscan scan menu.jpg --json -o result.json

  # Use the Document AI backend with a custom column gap
  menuscan scan menu.jpg --backend documentai --column-gap 80

  # Local Tesseract (requires a build with -tags ocr)
  menuscan scan menu.jpg --backend tesseract`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	scanCmd.Flags().Bool("json", false, "Output as JSON")
	scanCmd.Flags().BoolP("metadata", "m", false, "Include metadata in output")
	scanCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
	scanCmd.Flags().String("backend", "", "OCR backend: vision, documentai or tesseract (default: from config)")
	scanCmd.Flags().Int("max-columns", 0, "Cap on detected menu columns (default: from config)")
	scanCmd.Flags().Float64("column-gap", 0, "Largest horizontal gap within one column, in pixels")
	scanCmd.Flags().Float64("match-distance", 0, "Vertical distance cutoff for name/price pairing, in pixels")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	includeMetadata, _ := cmd.Flags().GetBool("metadata")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	engineCfg, backend, err := applyScanFlags(cmd, cfg)
	if err != nil {
		return err
	}

	log.Info().
		Str("file", imagePath).
		Str("backend", backend).
		Str("output", outputPath).
		Bool("json", jsonOutput).
		Int("timeout", timeoutSecs).
		Msg("Starting menu scan")

	fileInfo, err := validateImageFile(imagePath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	blockService, err := ocr.NewBlockService(ctx, backend)
	if err != nil {
		return handleScanError(err, log)
	}
	defer func() {
		if closeErr := blockService.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close OCR service")
		}
	}()

	parser, err := menu.NewParser(engineCfg)
	if err != nil {
		return err
	}

	imgFile, err := os.Open(imagePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", imagePath).
			Msg("Failed to open image file")
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer func() {
		if closeErr := imgFile.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close image file")
		}
	}()

	startTime := time.Now()
	detection, err := blockService.DetectBlocks(ctx, imgFile, engineCfg.LanguageHints)
	if err != nil {
		return handleScanError(err, log)
	}

	items := parser.ParseBlocks(detection.Blocks)
	result := models.ScanResult{
		Items:              items,
		BlockCount:         len(detection.Blocks),
		ImageWidth:         detection.ImageWidth,
		ImageHeight:        detection.ImageHeight,
		LanguageCodes:      detection.LanguageCodes,
		OCRConfidence:      detection.Confidence,
		ProcessedAt:        time.Now(),
		ProcessingDuration: time.Since(startTime),
	}

	log.Info().
		Int("blocks", result.BlockCount).
		Int("items", len(result.Items)).
		Float32("ocr_confidence", result.OCRConfidence).
		Dur("duration", result.ProcessingDuration).
		Msg("Menu scan completed successfully")

	return outputScanResult(&result, fileInfo, outputPath, jsonOutput, includeMetadata, log)
}

// applyScanFlags merges command-line overrides into the configured engine
// settings and resolves the backend name.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) (menu.Config, string, error) {
	engineCfg := cfg.EngineConfig()
	backend := cfg.OCRBackend

	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		backend = v
	}
	if v, _ := cmd.Flags().GetInt("max-columns"); v != 0 {
		engineCfg.MaxColumns = v
	}
	if v, _ := cmd.Flags().GetFloat64("column-gap"); v != 0 {
		engineCfg.MaxColumnGap = v
	}
	if v, _ := cmd.Flags().GetFloat64("match-distance"); v != 0 {
		engineCfg.MaxMatchDistance = v
	}

	if err := engineCfg.Validate(); err != nil {
		return engineCfg, backend, err
	}
	return engineCfg, backend, nil
}

// validateImageFile checks if the file exists, is readable, and looks like
// a supported image.
func validateImageFile(imagePath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Image file not found")
			return nil, fmt.Errorf("image file not found: %s", imagePath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Permission denied accessing image file")
			return nil, fmt.Errorf("permission denied accessing image file: %s", imagePath)
		}
		return nil, fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", imagePath).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", imagePath)
	}

	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		log.Warn().
			Str("file", imagePath).
			Msg("File does not have a common image extension")
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", imagePath).
			Msg("Image file is empty")
		return nil, fmt.Errorf("image file is empty: %s", imagePath)
	}

	if fileInfo.Size() > ocr.MaxImageSizeBytes {
		log.Error().
			Str("file", imagePath).
			Int64("size", fileInfo.Size()).
			Int64("max_size", ocr.MaxImageSizeBytes).
			Msg("Image file exceeds maximum size limit")
		return nil, fmt.Errorf("image file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), ocr.MaxImageSizeBytes)
	}

	return fileInfo, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling menu scan")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// handleScanError provides user-friendly error messages for OCR failures
func handleScanError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Menu scan failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("menu scan timed out. Try increasing --timeout or a smaller image")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("menu scan was canceled")
	case errors.Is(err, ocr.ErrImageTooLarge):
		return fmt.Errorf("image is too large (maximum 20MB). Try resizing the photo")
	case errors.Is(err, ocr.ErrInvalidImage):
		return fmt.Errorf("unsupported or corrupted image. Supported formats: JPEG, PNG, WebP")
	case errors.Is(err, ocr.ErrEmptyImage):
		return fmt.Errorf("no readable text found in the image. Retake the photo with better lighting and focus")
	case errors.Is(err, ocr.ErrTesseractNotEnabled):
		return fmt.Errorf("this build has no Tesseract support. Rebuild with: go build -tags ocr")
	case errors.Is(err, ocr.ErrUnknownBackend):
		return fmt.Errorf("unknown OCR backend. Valid backends: vision, documentai, tesseract")
	case errors.Is(err, ocr.ErrMissingCredentials):
		return fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n"+
			"1. Export GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON:\n"+
			"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n"+
			"2. Export GOOGLE_CREDENTIALS with inline JSON\n\n"+
			"3. Use Application Default Credentials (if gcloud is configured):\n"+
			"   gcloud auth application-default login\n\n"+
			"Original error: %w", err)
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "auth:"):
		return fmt.Errorf("Google Cloud authentication failed. Verify your service account credentials "+
			"and ensure the account has the 'Cloud Vision API User' role. Original error: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED") ||
		strings.Contains(errStr, "forbidden"):
		return fmt.Errorf("permission denied. Please ensure your Google Cloud service account has access to the selected OCR API")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") ||
		strings.Contains(errStr, "quota"):
		return fmt.Errorf("OCR API quota exceeded. Check your project quotas in the Google Cloud Console")
	case errors.Is(err, ocr.ErrOCRFailed):
		return fmt.Errorf("OCR processing failed. This may be due to network issues, API quota limits, or service unavailability: %w", err)
	default:
		return fmt.Errorf("menu scan failed: %w", err)
	}
}

// outputScanResult formats and writes the scan results.
func outputScanResult(result *models.ScanResult, fileInfo os.FileInfo, outputPath string, jsonOutput, includeMetadata bool, log zerolog.Logger) error {
	var outputData []byte

	if jsonOutput {
		var err error
		outputData, err = json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		var output strings.Builder
		if includeMetadata {
			output.WriteString(fmt.Sprintf("=== Scan results for %s ===\n", filepath.Base(fileInfo.Name())))
			output.WriteString(fmt.Sprintf("File size: %d bytes\n", fileInfo.Size()))
			if result.ImageWidth > 0 {
				output.WriteString(fmt.Sprintf("Image: %dx%d px\n", result.ImageWidth, result.ImageHeight))
			}
			output.WriteString(fmt.Sprintf("Text blocks: %d\n", result.BlockCount))
			if result.OCRConfidence > 0 {
				output.WriteString(fmt.Sprintf("OCR confidence: %.1f%%\n", result.OCRConfidence*100))
			}
			if len(result.LanguageCodes) > 0 {
				output.WriteString(fmt.Sprintf("Languages: %s\n", strings.Join(result.LanguageCodes, ", ")))
			}
			output.WriteString(fmt.Sprintf("Processing time: %v\n", result.ProcessingDuration))
			output.WriteString("\n=== Detected items ===\n\n")
		}

		for _, item := range result.Items {
			switch {
			case item.Price != nil && !item.NeedsReview:
				output.WriteString(fmt.Sprintf("%s\t%d円\n", item.Name, *item.Price))
			case item.Price != nil:
				output.WriteString(fmt.Sprintf("%s\t%d円\t[review: %.0f%%]\n", item.Name, *item.Price, item.Confidence*100))
			default:
				output.WriteString(fmt.Sprintf("%s\t-\t[review]\n", item.Name))
			}
		}
		outputData = []byte(output.String())
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("Scan results written to file")
		return nil
	}

	if _, err := os.Stdout.Write(outputData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
