package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"menuscan/internal/menu"
)

// GoogleVisionBlockService implements BlockService using Google Cloud Vision API.
type GoogleVisionBlockService struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVisionBlockService creates a new OCR service with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewGoogleVisionBlockService(ctx context.Context) (BlockService, error) {
	const op = "NewGoogleVisionBlockService"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		// Use credentials file
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionBlockService{
		client: client,
	}, nil
}

// NewGoogleVisionBlockServiceWithClient creates a new OCR service with an explicit client (for testing).
func NewGoogleVisionBlockServiceWithClient(client *vision.ImageAnnotatorClient) BlockService {
	return &GoogleVisionBlockService{
		client: client,
	}
}

// DetectBlocks runs document text detection over one menu image.
func (g *GoogleVisionBlockService) DetectBlocks(ctx context.Context, img io.Reader, languageHints []string) (*DetectResult, error) {
	const op = "DetectBlocks"
	startTime := time.Now()

	data, width, height, err := readImage(op, img)
	if err != nil {
		return nil, err
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{
					LanguageHints: languageHints,
				},
			},
		},
	}

	resp, err := g.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	annotation := resp.Responses[0]
	if annotation.Error != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", annotation.Error.Message))
	}

	result, err := convertTextAnnotation(annotation.FullTextAnnotation)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to process Vision API response")
	}
	if result.ImageWidth == 0 {
		result.ImageWidth, result.ImageHeight = width, height
	}

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)
	return result, nil
}

// convertTextAnnotation flattens the Vision page/block/paragraph/word
// hierarchy into the engine's block contract. Block-level boxes become
// menu.Blocks, word-level boxes become their Words.
func convertTextAnnotation(annotation *visionpb.TextAnnotation) (*DetectResult, error) {
	if annotation == nil || len(annotation.Pages) == 0 {
		return nil, ErrEmptyImage
	}

	result := &DetectResult{}
	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)

	for _, page := range annotation.Pages {
		if result.ImageWidth == 0 {
			result.ImageWidth = int(page.Width)
			result.ImageHeight = int(page.Height)
		}
		if page.Property != nil {
			for _, lang := range page.Property.DetectedLanguages {
				if lang.LanguageCode != "" {
					languageSet[lang.LanguageCode] = true
				}
			}
		}

		for _, block := range page.Blocks {
			converted := menu.Block{
				Bounds: boundsFromPoly(block.BoundingBox),
			}

			var text strings.Builder
			for _, paragraph := range block.Paragraphs {
				for _, word := range paragraph.Words {
					wordText := wordText(word)
					text.WriteString(wordText)
					converted.Words = append(converted.Words, menu.Word{
						Text:   wordText,
						Bounds: boundsFromPoly(word.BoundingBox),
					})
					if breakAfter(word) {
						text.WriteString(" ")
					}
				}
			}
			converted.Text = strings.TrimSpace(text.String())
			if converted.Text == "" {
				continue
			}

			if block.Confidence > 0 {
				confidenceSum += block.Confidence
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

// wordText concatenates a word's symbols.
func wordText(word *visionpb.Word) string {
	var b strings.Builder
	for _, symbol := range word.Symbols {
		b.WriteString(symbol.Text)
	}
	return b.String()
}

// breakAfter reports whether Vision detected a break after the word's
// last symbol. The engine's normalizers strip the inserted spaces from
// price text again, so over-splitting is harmless.
func breakAfter(word *visionpb.Word) bool {
	if len(word.Symbols) == 0 {
		return false
	}
	last := word.Symbols[len(word.Symbols)-1]
	if last.Property == nil || last.Property.DetectedBreak == nil {
		return false
	}
	switch last.Property.DetectedBreak.Type {
	case visionpb.TextAnnotation_DetectedBreak_SPACE,
		visionpb.TextAnnotation_DetectedBreak_SURE_SPACE,
		visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE,
		visionpb.TextAnnotation_DetectedBreak_LINE_BREAK:
		return true
	}
	return false
}

// boundsFromPoly converts a bounding polygon to the engine's axis-aligned
// box by taking the vertex extremes. Vision polys for rotated text are not
// axis-aligned; the extremes still bound the fragment.
func boundsFromPoly(poly *visionpb.BoundingPoly) menu.Bounds {
	if poly == nil || len(poly.Vertices) == 0 {
		return menu.Bounds{}
	}

	minX, minY := float64(poly.Vertices[0].X), float64(poly.Vertices[0].Y)
	maxX, maxY := minX, minY
	for _, v := range poly.Vertices[1:] {
		x, y := float64(v.X), float64(v.Y)
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}

	return menu.Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Close closes the underlying Vision client.
func (g *GoogleVisionBlockService) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
