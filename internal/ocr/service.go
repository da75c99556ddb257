// Package ocr turns a menu photograph into positioned text blocks for the
// reconstruction engine in internal/menu.
//
// Three interchangeable backends implement BlockService:
//   - Google Cloud Vision document text detection (default)
//   - Google Cloud Document AI with a generic OCR processor
//   - Local Tesseract via gosseract (requires the "ocr" build tag and a
//     system Tesseract install with the jpn and jpn_vert trained data)
//
// Required Environment Variables (Google backends):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT: Google Cloud project ID
//
// Limitations:
//   - Maximum image size: 20MB for synchronous processing
//   - Supported formats: JPEG, PNG, WebP
//
// The package only adapts backend output to the engine's block contract;
// all reconstruction logic lives in internal/menu.
package ocr

import (
	"bytes"
	"context"
	"image"
	"io"
	"time"

	// Image formats accepted for menu photographs.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"menuscan/internal/config"
	"menuscan/internal/menu"
)

// MaxImageSizeBytes is the maximum image size for synchronous processing (20MB)
const MaxImageSizeBytes = 20 * 1024 * 1024

// BlockService defines the interface for OCR block detection backends.
type BlockService interface {
	// DetectBlocks runs OCR over one menu image and returns the recognized
	// text blocks with pixel bounding boxes. languageHints are forwarded to
	// the backend when it supports them.
	DetectBlocks(ctx context.Context, img io.Reader, languageHints []string) (*DetectResult, error)

	// Close releases backend resources.
	Close() error
}

// DetectResult contains the detected blocks with backend metadata.
type DetectResult struct {
	// Blocks are the recognized text fragments in backend order.
	Blocks []menu.Block `json:"blocks"`

	// ImageWidth and ImageHeight are the processed image dimensions in pixels.
	ImageWidth  int `json:"image_width"`
	ImageHeight int `json:"image_height"`

	// Confidence is the backend's average text detection confidence (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	// LanguageCodes contains the languages the backend detected.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// ProcessedAt is the timestamp when detection completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the backend call took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// NewBlockService creates the backend selected by name.
func NewBlockService(ctx context.Context, backend string) (BlockService, error) {
	const op = "NewBlockService"

	switch backend {
	case config.BackendVision, "":
		return NewGoogleVisionBlockService(ctx)
	case config.BackendDocumentAI:
		return NewDocumentAIBlockService(ctx)
	case config.BackendTesseract:
		return NewTesseractBlockService()
	default:
		return nil, NewOCRError(op, ErrUnknownBackend, backend)
	}
}

// readImage drains and validates an uploaded image: size cap and a decode
// of the header to confirm the format and learn the pixel dimensions.
func readImage(op string, r io.Reader) (data []byte, width, height int, err error) {
	data, err = io.ReadAll(io.LimitReader(r, MaxImageSizeBytes+1))
	if err != nil {
		return nil, 0, 0, WrapOCRError(op, err, "failed to read image data")
	}
	if len(data) > MaxImageSizeBytes {
		return nil, 0, 0, WrapOCRError(op, ErrImageTooLarge, "image exceeds 20MB")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, WrapOCRError(op, ErrInvalidImage, err.Error())
	}
	return data, cfg.Width, cfg.Height, nil
}
