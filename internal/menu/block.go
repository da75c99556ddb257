// Package menu reconstructs (dish name, price) pairs from raw OCR output
// for photographed restaurant menus.
//
// The input is a set of recognized text blocks with pixel bounding boxes,
// as delivered by an OCR backend. The package handles noisy layout,
// multi-column vertical Japanese typesetting, and mixed numeral notations
// (kanji digits, full-width Arabic digits, decorative separators).
//
// The whole package is a pure, deterministic transformation: it performs
// no I/O, holds no state across calls, and may be invoked concurrently
// for independent images. Two calls with identical blocks and
// configuration produce identical output.
//
// Pipeline:
//  1. Classify each block as a name candidate or a price candidate,
//     using the numeral parser as the discriminating oracle.
//  2. Group all blocks into vertical columns by horizontal position.
//  3. Within each column, pair each name with its vertically nearest
//     price block.
//  4. Attach confidence scores and review flags to the merged results.
package menu

import "math"

// Bounds is an axis-aligned bounding box in pixel coordinates,
// origin top-left, y increasing downward.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Left returns the left edge of the box.
func (b Bounds) Left() float64 { return b.X }

// Right returns the right edge of the box.
func (b Bounds) Right() float64 { return b.X + b.Width }

// CenterY returns the vertical center coordinate of the box.
func (b Bounds) CenterY() float64 { return b.Y + b.Height/2 }

// Valid reports whether the box has finite coordinates, non-negative
// position and non-negative size. OCR backends occasionally emit
// degenerate boxes; those blocks are excluded from matching.
func (b Bounds) Valid() bool {
	for _, v := range [...]float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.X >= 0 && b.Y >= 0 && b.Width >= 0 && b.Height >= 0
}

// Word is a finer-grained sub-block within a Block. Word boxes are not
// required by the matching algorithm itself but are kept for refinement.
type Word struct {
	Text   string `json:"text"`
	Bounds Bounds `json:"bounds"`
}

// Block is one recognized text fragment produced by the OCR backend for a
// single image. Blocks are immutable: the engine consumes them within one
// parse call and never retains them.
type Block struct {
	// Text is the raw recognized string. It may contain internal
	// whitespace, decorative marks and OCR noise.
	Text string `json:"text"`

	// Bounds is the block's pixel bounding box.
	Bounds Bounds `json:"bounds"`

	// Words are the word-level sub-blocks in reading order, when the
	// backend provides them.
	Words []Word `json:"words,omitempty"`
}
