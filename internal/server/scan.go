package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"menuscan/internal/logger"
	"menuscan/internal/menu"
	"menuscan/internal/ocr"
	"menuscan/pkg/models"
)

// maxUploadBytes bounds the whole multipart body, with headroom over the
// OCR image size cap for the form framing.
const maxUploadBytes = ocr.MaxImageSizeBytes + 1<<20

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

// handleScan accepts a menu photograph as multipart form field "image",
// runs OCR and reconstruction, and responds with a ScanResult.
//
// Optional form fields maxColumns, maxColumnGap and maxMatchDistance
// override the configured engine settings per request.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	requestID := uuid.NewString()
	log := logger.WithRequestID(requestID)
	startTime := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Warn().Err(err).Msg("Failed to parse multipart form")
		writeError(w, http.StatusBadRequest, "expected a multipart form with an \"image\" field", requestID)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing \"image\" form field", requestID)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close uploaded file")
		}
	}()

	engineCfg, err := s.engineConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}
	parser, err := menu.NewParser(engineCfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	log.Info().
		Str("file", header.Filename).
		Int64("size", header.Size).
		Msg("Scanning menu image")

	detection, err := s.blocks.DetectBlocks(r.Context(), file, engineCfg.LanguageHints)
	if err != nil {
		s.writeOCRError(w, log, err, requestID)
		return
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
		Dur("duration", result.ProcessingDuration).
		Msg("Menu scan completed")

	writeJSON(w, http.StatusOK, result)
}

// engineConfig applies per-request overrides to the configured engine settings.
func (s *Server) engineConfig(r *http.Request) (menu.Config, error) {
	cfg := s.cfg.EngineConfig()

	if v := r.FormValue("maxColumns"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, errors.New("maxColumns must be an integer")
		}
		cfg.MaxColumns = n
	}
	if v := r.FormValue("maxColumnGap"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, errors.New("maxColumnGap must be a number")
		}
		cfg.MaxColumnGap = f
	}
	if v := r.FormValue("maxMatchDistance"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, errors.New("maxMatchDistance must be a number")
		}
		cfg.MaxMatchDistance = f
	}

	return cfg, nil
}

// writeOCRError maps OCR failures to HTTP statuses.
func (s *Server) writeOCRError(w http.ResponseWriter, log zerolog.Logger, err error, requestID string) {
	log.Error().Err(err).Msg("OCR processing failed")

	switch {
	case errors.Is(err, ocr.ErrImageTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "image exceeds the 20MB limit", requestID)
	case errors.Is(err, ocr.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "unsupported image format; send JPEG, PNG or WebP", requestID)
	case errors.Is(err, ocr.ErrEmptyImage):
		writeError(w, http.StatusUnprocessableEntity, "no readable text found in the image", requestID)
	default:
		writeError(w, http.StatusBadGateway, "OCR backend failure", requestID)
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg, requestID string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: requestID})
}
