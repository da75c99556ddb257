package menu

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func newTestParser(t *testing.T, cfg Config) *Parser {
	t.Helper()
	p, err := NewParser(cfg)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p
}

func TestParseBlocksEndToEnd(t *testing.T) {
	p := newTestParser(t, DefaultConfig())

	blocks := []Block{
		blockAt("かしわ", 100, 120, 30, 40),  // center 140
		blockAt("一二〇円", 100, 125, 30, 40), // center 145
	}

	items := p.ParseBlocks(blocks)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(items), items)
	}

	item := items[0]
	if item.Name != "かしわ" {
		t.Errorf("Name = %q, want かしわ", item.Name)
	}
	if item.Price == nil || *item.Price != 120 {
		t.Fatalf("Price = %v, want 120", item.Price)
	}
	if item.NeedsReview {
		t.Error("NeedsReview = true for a clean nearby match")
	}
	if item.Confidence < ReviewThreshold {
		t.Errorf("Confidence = %v, below review threshold", item.Confidence)
	}
}

func TestParseBlocksEmptyInput(t *testing.T) {
	p := newTestParser(t, DefaultConfig())
	if items := p.ParseBlocks(nil); len(items) != 0 {
		t.Errorf("empty input produced %d items", len(items))
	}
}

func TestParseBlocksIdempotent(t *testing.T) {
	p := newTestParser(t, DefaultConfig())
	blocks := []Block{
		blockAt("かしわ", 400, 100, 30, 60),
		blockAt("一二〇円", 400, 170, 30, 50),
		blockAt("ささみ 梅・わさび", 300, 100, 30, 90),
		blockAt("１８０円", 300, 200, 30, 50),
		blockAt("おすすめ", 100, 50, 30, 80),
	}

	first := p.ParseBlocks(blocks)
	for i := 0; i < 5; i++ {
		if got := p.ParseBlocks(blocks); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs from first run:\n%+v\nvs\n%+v", i, got, first)
		}
	}
}

func TestParseBlocksColumnIsolation(t *testing.T) {
	// The price sits far to the left of the name; with a narrow column
	// gap they land in different columns and must not pair, even though
	// they are vertically adjacent.
	cfg := DefaultConfig()
	cfg.MaxColumnGap = 30

	p := newTestParser(t, cfg)
	blocks := []Block{
		blockAt("かしわ", 500, 100, 30, 40),
		blockAt("一二〇円", 100, 105, 30, 40),
	}

	items := p.ParseBlocks(blocks)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Price != nil {
		t.Errorf("cross-column match produced price %d", *items[0].Price)
	}
	if !items[0].NeedsReview {
		t.Error("unmatched name must carry NeedsReview")
	}
}

func TestParseBlocksColumnReadingOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxColumnGap = 30

	p := newTestParser(t, cfg)
	blocks := []Block{
		blockAt("左の品", 100, 100, 30, 40),
		blockAt("３００円", 100, 150, 30, 40),
		blockAt("右の品", 500, 100, 30, 40),
		blockAt("４５０円", 500, 150, 30, 40),
	}

	items := p.ParseBlocks(blocks)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "右の品" || items[1].Name != "左の品" {
		t.Errorf("items out of right-to-left column order: %q, %q", items[0].Name, items[1].Name)
	}
}

func TestParseBlocksDropsMalformedPriceKeepsName(t *testing.T) {
	p := newTestParser(t, DefaultConfig())
	blocks := []Block{
		blockAt("かしわ", 100, 120, 30, 40),
		{Text: "一二〇円", Bounds: Bounds{X: math.NaN(), Y: 0, Width: 10, Height: 10}},
		{Text: "串焼", Bounds: Bounds{X: 10, Y: 10, Width: -5, Height: 10}},
	}

	items := p.ParseBlocks(blocks)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}

	// The valid name has no valid price block left to match.
	if items[0].Name != "かしわ" || items[0].Price != nil || !items[0].NeedsReview {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	// The malformed name block is surfaced name-only, flagged for review.
	if items[1].Name != "串焼" || items[1].Price != nil || !items[1].NeedsReview {
		t.Errorf("unexpected malformed-box item: %+v", items[1])
	}
}

func TestParseBlocksSkipsDecorationOnlyNames(t *testing.T) {
	p := newTestParser(t, DefaultConfig())
	items := p.ParseBlocks([]Block{blockAt("・・・", 100, 100, 30, 40)})
	if len(items) != 0 {
		t.Errorf("decoration-only block produced items: %+v", items)
	}
}

func TestNewParserRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero columns", Config{MaxColumns: 0, MaxColumnGap: 10}, ErrInvalidMaxColumns},
		{"negative columns", Config{MaxColumns: -1, MaxColumnGap: 10}, ErrInvalidMaxColumns},
		{"negative gap", Config{MaxColumns: 4, MaxColumnGap: -1}, ErrInvalidColumnGap},
		{"negative distance", Config{MaxColumns: 4, MaxColumnGap: 10, MaxMatchDistance: -5}, ErrInvalidMatchDistance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewParser(tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("NewParser error = %v, want %v", err, tt.want)
			}
		})
	}
}
