package models

import "time"

// MenuItem is one reconstructed (dish name, price) pair from a scanned menu.
type MenuItem struct {
	// Name is the dish name with edge whitespace and decorative marks removed.
	Name string `json:"name"`

	// Price is the detected price in yen. Nil when no price block could be
	// matched to this name, or when the matched block did not parse.
	Price *int64 `json:"price,omitempty"`

	// RawText preserves the original OCR text of the matched blocks
	// (name text, then price text, space-joined) for human audit.
	RawText string `json:"raw_text"`

	// NeedsReview marks items whose pairing is uncertain and should be
	// confirmed by a human before use.
	NeedsReview bool `json:"needs_review"`

	// Confidence is a heuristic score (0.0 to 1.0) reflecting match distance
	// and numeral-parse certainty. Higher values indicate a more reliable pair.
	Confidence float32 `json:"confidence"`

	// Note carries an optional human-readable remark about the detection.
	Note string `json:"note,omitempty"`
}

// ScanResult is the full outcome of scanning one menu image.
type ScanResult struct {
	// Items are the reconstructed menu items in column reading order.
	Items []MenuItem `json:"items"`

	// BlockCount is the number of OCR text blocks the image produced.
	BlockCount int `json:"block_count"`

	// ImageWidth and ImageHeight are the scanned image dimensions in pixels.
	ImageWidth  int `json:"image_width,omitempty"`
	ImageHeight int `json:"image_height,omitempty"`

	// LanguageCodes contains the languages the OCR backend detected.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// OCRConfidence is the OCR backend's average text detection confidence.
	OCRConfidence float32 `json:"ocr_confidence,omitempty"`

	// ProcessedAt is when processing completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long OCR plus reconstruction took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}
