package ocr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"menuscan/internal/logger"
	"menuscan/internal/menu"
)

// DocumentAIConfig holds configuration for the Document AI backend.
type DocumentAIConfig struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processing location (e.g., "us", "eu").
	Location string

	// ProcessorID identifies an OCR processor.
	ProcessorID string

	// ProcessorVersion optionally pins a processor version.
	ProcessorVersion string

	// Timeout is the maximum time to wait for processing. Default: 60s.
	Timeout time.Duration
}

// DocumentAIBlockService implements BlockService using Google Document AI
// with a generic OCR processor. It is an alternative to the Vision backend
// for projects already running Document AI.
type DocumentAIBlockService struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIBlockService creates the backend with credentials from environment.
// Expects: GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS
// Requires: GOOGLE_CLOUD_PROJECT, DOCUMENT_AI_PROCESSOR_ID
// Optional: GOOGLE_CLOUD_LOCATION (default "us"), DOCUMENT_AI_PROCESSOR_VERSION
func NewDocumentAIBlockService(ctx context.Context) (BlockService, error) {
	const op = "NewDocumentAIBlockService"

	config := DocumentAIConfig{
		ProjectID:        os.Getenv("GOOGLE_CLOUD_PROJECT"),
		Location:         os.Getenv("GOOGLE_CLOUD_LOCATION"),
		ProcessorID:      os.Getenv("DOCUMENT_AI_PROCESSOR_ID"),
		ProcessorVersion: os.Getenv("DOCUMENT_AI_PROCESSOR_VERSION"),
		Timeout:          60 * time.Second,
	}

	if config.ProjectID == "" {
		return nil, NewOCRError(op, ErrOCRFailed, "GOOGLE_CLOUD_PROJECT is required")
	}
	if config.ProcessorID == "" {
		return nil, NewOCRError(op, ErrOCRFailed, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}

	var clientOptions []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(clientOptions) == 0 {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return &DocumentAIBlockService{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}, nil
}

// NewDocumentAIBlockServiceWithConfig creates the backend with explicit config and client (for testing).
func NewDocumentAIBlockServiceWithConfig(config DocumentAIConfig, client *documentai.DocumentProcessorClient) BlockService {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	return &DocumentAIBlockService{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}
}

// DetectBlocks runs the OCR processor over one menu image.
func (d *DocumentAIBlockService) DetectBlocks(ctx context.Context, img io.Reader, languageHints []string) (*DetectResult, error) {
	const op = "DetectBlocks"
	startTime := time.Now()

	data, width, height, err := readImage(op, img)
	if err != nil {
		return nil, err
	}

	// Document AI OCR processors auto-detect language; hints are unused.
	_ = languageHints

	processCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: d.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: http.DetectContentType(data),
			},
		},
	}

	resp, err := d.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, d.handleProcessingError(op, err)
	}
	if resp.Document == nil {
		return nil, WrapOCRError(op, ErrOCRFailed, "no document in response")
	}

	result, err := convertDocument(resp.Document)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to extract blocks from Document AI response")
	}
	if result.ImageWidth == 0 {
		result.ImageWidth, result.ImageHeight = width, height
	}

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)
	return result, nil
}

// processorName constructs the full processor resource name.
func (d *DocumentAIBlockService) processorName() string {
	if d.config.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			d.config.ProjectID, d.config.Location, d.config.ProcessorID, d.config.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		d.config.ProjectID, d.config.Location, d.config.ProcessorID)
}

// handleProcessingError converts Document AI errors to OCR errors.
func (d *DocumentAIBlockService) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return WrapOCRError(op, ErrMissingCredentials, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "NOT_FOUND"):
		return WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("processor not found: %s", d.config.ProcessorID))
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return WrapOCRError(op, ErrInvalidImage, "image format not supported or corrupted")
	case strings.Contains(errStr, "DeadlineExceeded") || strings.Contains(errStr, "context deadline exceeded"):
		return WrapOCRError(op, context.DeadlineExceeded, "processing timeout")
	case strings.Contains(errStr, "Canceled") || strings.Contains(errStr, "context canceled"):
		return WrapOCRError(op, ErrContextCanceled, "processing was canceled")
	default:
		return WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// convertDocument flattens Document AI page blocks into the engine's block
// contract. Token boxes whose centers fall inside a block's box become its
// word-level sub-blocks.
func convertDocument(doc *documentaipb.Document) (*DetectResult, error) {
	if len(doc.Pages) == 0 {
		return nil, ErrEmptyImage
	}

	result := &DetectResult{}
	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)

	for _, page := range doc.Pages {
		if result.ImageWidth == 0 && page.Dimension != nil {
			result.ImageWidth = int(page.Dimension.Width)
			result.ImageHeight = int(page.Dimension.Height)
		}
		for _, lang := range page.DetectedLanguages {
			if lang.LanguageCode != "" {
				languageSet[lang.LanguageCode] = true
			}
		}

		words := make([]menu.Word, 0, len(page.Tokens))
		for _, token := range page.Tokens {
			if token.Layout == nil {
				continue
			}
			text := strings.TrimSpace(anchorText(doc.Text, token.Layout.TextAnchor))
			if text == "" {
				continue
			}
			words = append(words, menu.Word{
				Text:   text,
				Bounds: boundsFromDocPoly(token.Layout.BoundingPoly, page.Dimension),
			})
		}

		for _, block := range page.Blocks {
			if block.Layout == nil {
				continue
			}
			text := strings.TrimSpace(anchorText(doc.Text, block.Layout.TextAnchor))
			if text == "" {
				continue
			}

			bounds := boundsFromDocPoly(block.Layout.BoundingPoly, page.Dimension)
			converted := menu.Block{
				Text:   text,
				Bounds: bounds,
				Words:  wordsWithin(words, bounds),
			}

			if block.Layout.Confidence > 0 {
				confidenceSum += block.Layout.Confidence
				confidenceCount++
			}
			result.Blocks = append(result.Blocks, converted)
		}
	}

	if len(result.Blocks) == 0 {
		return nil, ErrEmptyImage
	}

	if confidenceCount > 0 {
		result.Confidence = confidenceSum / float32(confidenceCount)
	}
	for lang := range languageSet {
		result.LanguageCodes = append(result.LanguageCodes, lang)
	}
	sort.Strings(result.LanguageCodes)

	return result, nil
}

// anchorText resolves a text anchor against the document's full text.
func anchorText(fullText string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil {
		return ""
	}
	var b strings.Builder
	for _, segment := range anchor.TextSegments {
		start, end := segment.StartIndex, segment.EndIndex
		if start < 0 || end > int64(len(fullText)) || start > end {
			continue
		}
		b.WriteString(fullText[start:end])
	}
	return b.String()
}

// boundsFromDocPoly converts a Document AI bounding polygon, preferring
// absolute vertices and falling back to normalized ones scaled by the page
// dimension.
func boundsFromDocPoly(poly *documentaipb.BoundingPoly, dim *documentaipb.Document_Page_Dimension) menu.Bounds {
	if poly == nil {
		return menu.Bounds{}
	}

	var xs, ys []float64
	for _, v := range poly.Vertices {
		xs = append(xs, float64(v.X))
		ys = append(ys, float64(v.Y))
	}
	if len(xs) == 0 && dim != nil {
		for _, v := range poly.NormalizedVertices {
			xs = append(xs, float64(v.X)*float64(dim.Width))
			ys = append(ys, float64(v.Y)*float64(dim.Height))
		}
	}
	if len(xs) == 0 {
		return menu.Bounds{}
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < len(xs); i++ {
		if xs[i] < minX {
			minX = xs[i]
		}
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}

	return menu.Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// wordsWithin selects the word boxes whose centers fall inside bounds.
func wordsWithin(words []menu.Word, bounds menu.Bounds) []menu.Word {
	var out []menu.Word
	for _, w := range words {
		cx := w.Bounds.X + w.Bounds.Width/2
		cy := w.Bounds.CenterY()
		if cx >= bounds.Left() && cx <= bounds.Right() &&
			cy >= bounds.Y && cy <= bounds.Y+bounds.Height {
			out = append(out, w)
		}
	}
	return out
}

// Close closes the underlying Document AI client.
func (d *DocumentAIBlockService) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
