package menu

const (
	// scoreNoPrice is the confidence floor for items without a price.
	scoreNoPrice = 0.2

	// mixedRunPenalty discounts prices parsed from a mixed kanji/Arabic
	// digit run.
	mixedRunPenalty = 0.85

	// ReviewThreshold is the confidence below which an item is flagged
	// for human review even when a price was found.
	ReviewThreshold = 0.5
)

// Score computes the heuristic confidence for a detected item from the
// matched vertical distance, the distance ceiling, and the numeral-parse
// ambiguity flag. It is a pure function so it can be tested without
// running the pipeline.
//
// The score decreases monotonically with distance and with parse
// ambiguity, never the reverse.
func Score(distance, maxDistance float64, mixed, priceFound bool) float32 {
	if !priceFound {
		return scoreNoPrice
	}
	if maxDistance <= 0 {
		maxDistance = DefaultMaxMatchDistance
	}
	s := 1 - distance/maxDistance
	if s < 0 {
		s = 0
	}
	if mixed {
		s *= mixedRunPenalty
	}
	return float32(s)
}
