package menu

import "golang.org/x/text/width"

// maxPriceDigits bounds the accepted digit run length. Menu prices are
// small; anything longer is OCR garbage, not a price.
const maxPriceDigits = 18

// Kanji numerals read as positional decimal digits. Vertically printed
// Japanese menu prices use each glyph as a single digit concatenated
// top-to-bottom ("一二〇" is the digit string "120"), which is distinct
// from standard place-value kanji numeral reading.
var kanjiDigits = map[rune]int64{
	'〇': 0, '零': 0,
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9,
}

// PriceParse is the detailed outcome of a successful numeral extraction.
type PriceParse struct {
	// Value is the extracted price in yen.
	Value int64

	// Mixed reports that the digit run mixed kanji and Arabic digits
	// (e.g. "四50"). Such runs parse fine but are more likely to contain
	// an OCR misread, so they lower the item's confidence.
	Mixed bool
}

// ParsePrice extracts an integer price from raw OCR text. The text is
// normalized internally, so callers pass block text as recognized.
//
// Extraction reads the longest contiguous run of digit-bearing glyphs:
// kanji digits (一二三四五六七八九〇), ASCII digits and full-width Arabic
// digits (０-９), freely mixed, interpreted positionally as base 10.
// A trailing 円 is allowed and ignored.
//
// The boolean is false when the text carries no digit run at all. That is
// not an error: it is the expected signal that the block is a dish name,
// a decorative mark, or other non-price text.
func ParsePrice(raw string) (int64, bool) {
	p, ok := ParsePriceDetail(raw)
	return p.Value, ok
}

// ParsePriceDetail is ParsePrice with parse-ambiguity details attached,
// for confidence scoring.
func ParsePriceDetail(raw string) (PriceParse, bool) {
	// Full-width Arabic digits fold to their ASCII equivalents.
	text := width.Fold.String(NormalizePriceText(raw))

	type run struct {
		digits        []int64
		kanji, arabic bool
	}
	var best, cur run

	flush := func() {
		if len(cur.digits) > len(best.digits) {
			best = cur
		}
		cur = run{}
	}

	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			cur.digits = append(cur.digits, int64(r-'0'))
			cur.arabic = true
		default:
			if d, ok := kanjiDigits[r]; ok {
				cur.digits = append(cur.digits, d)
				cur.kanji = true
			} else {
				flush()
			}
		}
	}
	flush()

	if len(best.digits) == 0 || len(best.digits) > maxPriceDigits {
		return PriceParse{}, false
	}

	var value int64
	for _, d := range best.digits {
		value = value*10 + d
	}
	return PriceParse{Value: value, Mixed: best.kanji && best.arabic}, true
}
