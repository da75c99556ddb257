package menu

// Kind tags the classification outcome for a block.
type Kind int

const (
	// NameCandidate marks a block whose text yields no parseable price.
	NameCandidate Kind = iota

	// PriceCandidate marks a block whose normalized text yields an integer.
	PriceCandidate
)

// Classification is the tagged outcome of classifying one block.
type Classification struct {
	Kind Kind

	// Price and Mixed are meaningful only for PriceCandidate.
	Price int64
	Mixed bool
}

// Classify partitions a block into name candidate or price candidate,
// using the numeral parser as the discriminating oracle: a block is a
// price candidate iff an integer can be extracted from its text.
func Classify(b Block) Classification {
	if p, ok := ParsePriceDetail(b.Text); ok {
		return Classification{Kind: PriceCandidate, Price: p.Value, Mixed: p.Mixed}
	}
	return Classification{Kind: NameCandidate}
}
