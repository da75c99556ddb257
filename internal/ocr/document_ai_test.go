package ocr

import (
	"errors"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

func docPoly(x, y, w, h int32) *documentaipb.BoundingPoly {
	return &documentaipb.BoundingPoly{
		Vertices: []*documentaipb.Vertex{
			{X: x, Y: y},
			{X: x + w, Y: y},
			{X: x + w, Y: y + h},
			{X: x, Y: y + h},
		},
	}
}

func docLayout(start, end int64, x, y, w, h int32) *documentaipb.Document_Page_Layout {
	return &documentaipb.Document_Page_Layout{
		TextAnchor: &documentaipb.Document_TextAnchor{
			TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
				{StartIndex: start, EndIndex: end},
			},
		},
		BoundingPoly: docPoly(x, y, w, h),
		Confidence:   0.9,
	}
}

func TestConvertDocument(t *testing.T) {
	fullText := "かしわ\n一二〇円\n"
	// Byte offsets: かしわ = 0..9, 一二〇円 = 10..22.
	doc := &documentaipb.Document{
		Text: fullText,
		Pages: []*documentaipb.Document_Page{
			{
				Dimension: &documentaipb.Document_Page_Dimension{Width: 1000, Height: 1500},
				DetectedLanguages: []*documentaipb.Document_Page_DetectedLanguage{
					{LanguageCode: "ja"},
				},
				Blocks: []*documentaipb.Document_Page_Block{
					{Layout: docLayout(0, 9, 400, 100, 40, 200)},
					{Layout: docLayout(10, 22, 400, 320, 40, 120)},
				},
				Tokens: []*documentaipb.Document_Page_Token{
					{Layout: docLayout(0, 9, 402, 105, 36, 190)},
				},
			},
		},
	}

	result, err := convertDocument(doc)
	if err != nil {
		t.Fatalf("convertDocument: %v", err)
	}

	if len(result.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(result.Blocks))
	}
	if result.Blocks[0].Text != "かしわ" || result.Blocks[1].Text != "一二〇円" {
		t.Errorf("block texts = %q, %q", result.Blocks[0].Text, result.Blocks[1].Text)
	}
	if len(result.Blocks[0].Words) != 1 {
		t.Errorf("first block words = %+v, want the contained token", result.Blocks[0].Words)
	}
	if len(result.Blocks[1].Words) != 0 {
		t.Errorf("second block words = %+v, want none", result.Blocks[1].Words)
	}
	if result.ImageWidth != 1000 || result.ImageHeight != 1500 {
		t.Errorf("image size = %dx%d", result.ImageWidth, result.ImageHeight)
	}
	if len(result.LanguageCodes) != 1 || result.LanguageCodes[0] != "ja" {
		t.Errorf("languages = %v", result.LanguageCodes)
	}
}

func TestConvertDocumentEmpty(t *testing.T) {
	if _, err := convertDocument(&documentaipb.Document{}); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("error = %v, want ErrEmptyImage", err)
	}
}

func TestAnchorTextBounds(t *testing.T) {
	full := "abcdef"
	anchor := &documentaipb.Document_TextAnchor{
		TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
			{StartIndex: 0, EndIndex: 3},
			{StartIndex: 100, EndIndex: 200}, // out of range, skipped
			{StartIndex: 3, EndIndex: 6},
		},
	}
	if got := anchorText(full, anchor); got != "abcdef" {
		t.Errorf("anchorText = %q", got)
	}
	if got := anchorText(full, nil); got != "" {
		t.Errorf("anchorText(nil) = %q", got)
	}
}

func TestBoundsFromDocPolyNormalizedFallback(t *testing.T) {
	poly := &documentaipb.BoundingPoly{
		NormalizedVertices: []*documentaipb.NormalizedVertex{
			{X: 0.1, Y: 0.2}, {X: 0.5, Y: 0.2}, {X: 0.5, Y: 0.4}, {X: 0.1, Y: 0.4},
		},
	}
	dim := &documentaipb.Document_Page_Dimension{Width: 1000, Height: 500}

	b := boundsFromDocPoly(poly, dim)
	if b.X != 100 || b.Y != 100 || b.Width != 400 || b.Height != 100 {
		t.Errorf("bounds = %+v", b)
	}
}
