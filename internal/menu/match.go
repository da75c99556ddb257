package menu

import "math"

// DefaultMaxMatchDistance is the fallback vertical distance cutoff in
// pixels, chosen larger than any realistic menu line spacing.
const DefaultMaxMatchDistance = 300

// MatchedItem is one name block paired (or not) with a price block.
type MatchedItem struct {
	// Name is the normalized dish name.
	Name string

	// Price is the parsed price in yen, nil when unmatched or when the
	// matched block failed to parse.
	Price *int64

	// RawText is the original name text and, if matched, the original
	// price text, joined by a single space.
	RawText string

	// NeedsReview is true whenever Price is nil.
	NeedsReview bool

	// Distance is the vertical center distance to the matched price
	// block. Meaningless when Price is nil.
	Distance float64

	// Mixed reports that the matched price parsed from a mixed
	// kanji/Arabic digit run.
	Mixed bool
}

// MatchNameAndPrice pairs each name block with its most plausible price
// block by vertical bounding-box distance: the absolute difference of the
// two boxes' vertical centers. Horizontal position is ignored here; the
// column grouper already feeds the matcher column-local block sets.
//
// Matching is greedy nearest-neighbor per name, not a global assignment,
// so two names may select the same price block on dense layouts. Ties on
// distance resolve to the earliest price block in slice order, keeping
// output deterministic for identical input ordering.
//
// A name with no price block within maxDistance, or with a malformed
// bounding box, yields an unmatched item: nil Price, NeedsReview set, and
// RawText equal to the name text alone.
func MatchNameAndPrice(names, prices []Block, maxDistance float64) []MatchedItem {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxMatchDistance
	}

	items := make([]MatchedItem, 0, len(names))
	for _, name := range names {
		items = append(items, matchOne(name, prices, maxDistance))
	}
	return items
}

func matchOne(name Block, prices []Block, maxDistance float64) MatchedItem {
	item := MatchedItem{
		Name:        NormalizeName(name.Text),
		RawText:     name.Text,
		NeedsReview: true,
	}

	if !name.Bounds.Valid() {
		return item
	}

	center := name.Bounds.CenterY()
	bestIdx := -1
	bestDist := math.Inf(1)
	for i, p := range prices {
		if !p.Bounds.Valid() {
			continue
		}
		if d := math.Abs(p.Bounds.CenterY() - center); d < bestDist {
			bestIdx, bestDist = i, d
		}
	}

	if bestIdx < 0 || bestDist > maxDistance {
		return item
	}

	matched := prices[bestIdx]
	item.RawText = name.Text + " " + matched.Text
	item.Distance = bestDist

	// The assembler only feeds price candidates here, but the matcher
	// does not assume the block still parses.
	p, ok := ParsePriceDetail(matched.Text)
	if !ok {
		return item
	}

	value := p.Value
	item.Price = &value
	item.Mixed = p.Mixed
	item.NeedsReview = false
	return item
}
