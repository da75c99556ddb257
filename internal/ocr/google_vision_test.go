package ocr

import (
	"errors"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
)

func poly(x, y, w, h int32) *visionpb.BoundingPoly {
	return &visionpb.BoundingPoly{
		Vertices: []*visionpb.Vertex{
			{X: x, Y: y},
			{X: x + w, Y: y},
			{X: x + w, Y: y + h},
			{X: x, Y: y + h},
		},
	}
}

func word(text string, x, y, w, h int32) *visionpb.Word {
	symbols := make([]*visionpb.Symbol, 0, len([]rune(text)))
	for _, r := range text {
		symbols = append(symbols, &visionpb.Symbol{Text: string(r)})
	}
	return &visionpb.Word{BoundingBox: poly(x, y, w, h), Symbols: symbols}
}

func TestConvertTextAnnotation(t *testing.T) {
	annotation := &visionpb.TextAnnotation{
		Pages: []*visionpb.Page{
			{
				Width:  1000,
				Height: 1500,
				Property: &visionpb.TextAnnotation_TextProperty{
					DetectedLanguages: []*visionpb.TextAnnotation_DetectedLanguage{
						{LanguageCode: "ja"},
					},
				},
				Blocks: []*visionpb.Block{
					{
						BoundingBox: poly(400, 100, 40, 200),
						Confidence:  0.92,
						Paragraphs: []*visionpb.Paragraph{
							{Words: []*visionpb.Word{word("かしわ", 400, 100, 40, 200)}},
						},
					},
					{
						BoundingBox: poly(400, 320, 40, 120),
						Confidence:  0.88,
						Paragraphs: []*visionpb.Paragraph{
							{Words: []*visionpb.Word{word("一二〇円", 400, 320, 40, 120)}},
						},
					},
				},
			},
		},
	}

	result, err := convertTextAnnotation(annotation)
	if err != nil {
		t.Fatalf("convertTextAnnotation: %v", err)
	}

	if len(result.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(result.Blocks))
	}
	if result.ImageWidth != 1000 || result.ImageHeight != 1500 {
		t.Errorf("image size = %dx%d, want 1000x1500", result.ImageWidth, result.ImageHeight)
	}

	b := result.Blocks[0]
	if b.Text != "かしわ" {
		t.Errorf("block text = %q", b.Text)
	}
	if b.Bounds.X != 400 || b.Bounds.Y != 100 || b.Bounds.Width != 40 || b.Bounds.Height != 200 {
		t.Errorf("block bounds = %+v", b.Bounds)
	}
	if len(b.Words) != 1 || b.Words[0].Text != "かしわ" {
		t.Errorf("block words = %+v", b.Words)
	}

	if len(result.LanguageCodes) != 1 || result.LanguageCodes[0] != "ja" {
		t.Errorf("languages = %v", result.LanguageCodes)
	}
	if result.Confidence < 0.89 || result.Confidence > 0.91 {
		t.Errorf("confidence = %v, want the block average (0.90)", result.Confidence)
	}
}

func TestConvertTextAnnotationEmpty(t *testing.T) {
	for name, annotation := range map[string]*visionpb.TextAnnotation{
		"nil":      nil,
		"no pages": {},
		"blank block": {Pages: []*visionpb.Page{{Blocks: []*visionpb.Block{
			{BoundingBox: poly(0, 0, 10, 10), Paragraphs: []*visionpb.Paragraph{
				{Words: []*visionpb.Word{word("  ", 0, 0, 10, 10)}},
			}},
		}}}},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := convertTextAnnotation(annotation); !errors.Is(err, ErrEmptyImage) {
				t.Errorf("error = %v, want ErrEmptyImage", err)
			}
		})
	}
}

func TestBoundsFromPolyRotated(t *testing.T) {
	// Rotated text: the poly is not axis-aligned; extremes still bound it.
	p := &visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{
		{X: 10, Y: 50}, {X: 60, Y: 20}, {X: 80, Y: 60}, {X: 30, Y: 90},
	}}
	b := boundsFromPoly(p)
	if b.X != 10 || b.Y != 20 || b.Width != 70 || b.Height != 70 {
		t.Errorf("bounds = %+v", b)
	}
}

func TestBreakAfterInsertsWordSpacing(t *testing.T) {
	w := word("ささみ", 0, 0, 30, 90)
	w.Symbols[len(w.Symbols)-1].Property = &visionpb.TextAnnotation_TextProperty{
		DetectedBreak: &visionpb.TextAnnotation_DetectedBreak{
			Type: visionpb.TextAnnotation_DetectedBreak_SPACE,
		},
	}

	annotation := &visionpb.TextAnnotation{
		Pages: []*visionpb.Page{{
			Blocks: []*visionpb.Block{{
				BoundingBox: poly(0, 0, 30, 200),
				Paragraphs: []*visionpb.Paragraph{
					{Words: []*visionpb.Word{w, word("梅", 0, 100, 30, 30)}},
				},
			}},
		}},
	}

	result, err := convertTextAnnotation(annotation)
	if err != nil {
		t.Fatalf("convertTextAnnotation: %v", err)
	}
	if result.Blocks[0].Text != "ささみ 梅" {
		t.Errorf("block text = %q, want %q", result.Blocks[0].Text, "ささみ 梅")
	}
}
