package menu

import (
	"github.com/rs/zerolog"

	"menuscan/internal/logger"
	"menuscan/pkg/models"
)

// Parser reconstructs menu items from OCR blocks. A Parser is stateless
// apart from its configuration and safe for concurrent use.
type Parser struct {
	cfg Config
	log zerolog.Logger
}

// NewParser validates the configuration and returns a Parser.
func NewParser(cfg Config) (*Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Parser{
		cfg: cfg,
		log: logger.WithComponent("menu-parser"),
	}, nil
}

// ParseBlocks runs the full reconstruction pipeline over one image's OCR
// blocks: classify, group into columns, match per column, score. Items are
// returned in column reading order (rightmost column first). Empty input
// yields an empty list.
func (p *Parser) ParseBlocks(blocks []Block) []models.MenuItem {
	valid, dropped := splitMalformed(blocks)
	if len(dropped) > 0 {
		p.log.Debug().
			Int("dropped", len(dropped)).
			Msg("Excluded blocks with malformed bounding boxes from matching")
	}

	items := make([]models.MenuItem, 0, len(valid))
	for _, col := range GroupIntoColumns(valid, p.cfg.MaxColumns, p.cfg.MaxColumnGap) {
		items = append(items, p.parseColumn(col)...)
	}

	// Malformed boxes cannot participate in distance computation; their
	// name text is still surfaced as unmatched items.
	for _, b := range dropped {
		if Classify(b).Kind != NameCandidate {
			continue
		}
		name := NormalizeName(b.Text)
		if name == "" {
			continue
		}
		items = append(items, models.MenuItem{
			Name:        name,
			RawText:     b.Text,
			NeedsReview: true,
			Confidence:  Score(0, p.cfg.matchDistance(), false, false),
			Note:        "bounding box unreadable",
		})
	}

	p.log.Debug().
		Int("blocks", len(blocks)).
		Int("items", len(items)).
		Msg("Menu reconstruction completed")
	return items
}

// parseColumn partitions a column's blocks by classification and matches
// names against prices within the column only.
func (p *Parser) parseColumn(col Column) []models.MenuItem {
	var names, prices []Block
	for _, b := range col.Blocks {
		switch Classify(b).Kind {
		case PriceCandidate:
			prices = append(prices, b)
		default:
			names = append(names, b)
		}
	}

	maxDistance := p.cfg.matchDistance()
	items := make([]models.MenuItem, 0, len(names))
	for _, m := range MatchNameAndPrice(names, prices, maxDistance) {
		if m.Name == "" {
			continue
		}

		conf := Score(m.Distance, maxDistance, m.Mixed, m.Price != nil)
		item := models.MenuItem{
			Name:        m.Name,
			Price:       m.Price,
			RawText:     m.RawText,
			NeedsReview: m.NeedsReview || conf < ReviewThreshold,
			Confidence:  conf,
		}
		if m.Price == nil {
			item.Note = "no price matched within distance cutoff"
		}
		items = append(items, item)
	}
	return items
}

// splitMalformed separates blocks with valid bounding boxes from the rest.
func splitMalformed(blocks []Block) (valid, dropped []Block) {
	for _, b := range blocks {
		if b.Bounds.Valid() {
			valid = append(valid, b)
		} else {
			dropped = append(dropped, b)
		}
	}
	return valid, dropped
}
