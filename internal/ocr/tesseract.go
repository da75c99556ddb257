//go:build ocr

package ocr

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"menuscan/internal/menu"
)

// TesseractBlockService implements BlockService with a local Tesseract
// install via gosseract. It needs no network or cloud credentials, at the
// cost of lower accuracy on handwritten or decorative menus. The jpn and
// jpn_vert trained data must be installed for Japanese menus.
type TesseractBlockService struct {
	client *gosseract.Client
}

// NewTesseractBlockService creates the local backend.
// The service should be closed when no longer needed to release resources.
func NewTesseractBlockService() (BlockService, error) {
	return &TesseractBlockService{client: gosseract.NewClient()}, nil
}

// DetectBlocks runs Tesseract over one menu image. Line-level boxes become
// blocks, word-level boxes become their word sub-blocks.
func (t *TesseractBlockService) DetectBlocks(ctx context.Context, img io.Reader, languageHints []string) (*DetectResult, error) {
	const op = "DetectBlocks"
	startTime := time.Now()

	data, width, height, err := readImage(op, img)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, WrapOCRError(op, ErrContextCanceled, err.Error())
	}

	if err := t.client.SetLanguage(tesseractLanguages(languageHints)...); err != nil {
		return nil, WrapOCRError(op, err, "failed to set languages")
	}
	if err := t.client.SetImageFromBytes(data); err != nil {
		return nil, WrapOCRError(op, ErrInvalidImage, err.Error())
	}

	lines, err := t.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, err.Error())
	}
	words, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, err.Error())
	}

	result := &DetectResult{
		ImageWidth:  width,
		ImageHeight: height,
	}

	var confidenceSum float64
	for _, line := range lines {
		text := strings.TrimSpace(line.Word)
		if text == "" {
			continue
		}
		bounds := menu.Bounds{
			X:      float64(line.Box.Min.X),
			Y:      float64(line.Box.Min.Y),
			Width:  float64(line.Box.Dx()),
			Height: float64(line.Box.Dy()),
		}

		block := menu.Block{Text: text, Bounds: bounds}
		for _, w := range words {
			wt := strings.TrimSpace(w.Word)
			if wt == "" || !line.Box.Overlaps(w.Box) {
				continue
			}
			block.Words = append(block.Words, menu.Word{
				Text: wt,
				Bounds: menu.Bounds{
					X:      float64(w.Box.Min.X),
					Y:      float64(w.Box.Min.Y),
					Width:  float64(w.Box.Dx()),
					Height: float64(w.Box.Dy()),
				},
			})
		}

		confidenceSum += line.Confidence
		result.Blocks = append(result.Blocks, block)
	}

	if len(result.Blocks) == 0 {
		return nil, WrapOCRError(op, ErrEmptyImage, "")
	}

	// Tesseract reports confidences as 0-100.
	result.Confidence = float32(confidenceSum / float64(len(result.Blocks)) / 100)
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)
	return result, nil
}

// tesseractLanguages maps BCP-47 hints to Tesseract trained data names.
// Japanese adds the vertical model, which is what most printed menus need.
func tesseractLanguages(hints []string) []string {
	var langs []string
	for _, h := range hints {
		switch h {
		case "ja", "jpn":
			langs = append(langs, "jpn", "jpn_vert")
		case "en", "eng":
			langs = append(langs, "eng")
		default:
			langs = append(langs, h)
		}
	}
	if len(langs) == 0 {
		langs = []string{"jpn", "jpn_vert"}
	}
	return langs
}

// Close releases Tesseract resources.
func (t *TesseractBlockService) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}
