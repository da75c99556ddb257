package menu

import (
	"strings"
	"unicode"
)

// Decorative glyphs used as digit separators or leaders in vertical
// Japanese price print. Stripped from price text entirely and from the
// edges of name text.
func isSeparator(r rune) bool {
	switch r {
	case '・', '･', '•', '·', '‥', '…':
		return true
	}
	return false
}

// NormalizePriceText compacts raw price text so that digits printed down a
// vertical column become adjacent: every whitespace character (including
// the full-width space U+3000) and every decorative separator glyph is
// removed. Digits, currency markers and all other script characters are
// kept as-is.
func NormalizePriceText(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || isSeparator(r) {
			return -1
		}
		return r
	}, raw)
}

// NormalizeName trims leading and trailing whitespace and decorative
// separator glyphs from a dish name. Internal whitespace is preserved:
// compound dish names legitimately contain spaces as word separators.
func NormalizeName(raw string) string {
	return strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || isSeparator(r)
	})
}
