package menu

import (
	"math"
	"testing"
)

func TestMatchNameAndPriceSelectsNearest(t *testing.T) {
	// Name center 140; price candidates at centers 85 and 145.
	names := []Block{blockAt("かしわ", 100, 120, 30, 40)}
	prices := []Block{
		blockAt("八五〇円", 100, 65, 30, 40),  // center 85
		blockAt("一二〇円", 100, 125, 30, 40), // center 145
	}

	items := MatchNameAndPrice(names, prices, DefaultMaxMatchDistance)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	item := items[0]
	if item.Price == nil || *item.Price != 120 {
		t.Fatalf("matched price = %v, want 120", item.Price)
	}
	if item.NeedsReview {
		t.Error("NeedsReview = true for a clean match")
	}
	if item.RawText != "かしわ 一二〇円" {
		t.Errorf("RawText = %q", item.RawText)
	}
	if math.Abs(item.Distance-5) > 1e-9 {
		t.Errorf("Distance = %v, want 5", item.Distance)
	}
}

func TestMatchNameAndPriceDistanceCutoff(t *testing.T) {
	names := []Block{blockAt("串焼", 100, 100, 30, 40)} // center 120
	prices := []Block{blockAt("三〇〇円", 100, 280, 30, 40)} // center 300

	items := MatchNameAndPrice(names, prices, 50)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Price != nil {
		t.Errorf("Price = %v, want nil beyond cutoff", *items[0].Price)
	}
	if !items[0].NeedsReview {
		t.Error("NeedsReview = false for an unmatched name")
	}
	if items[0].RawText != "串焼" {
		t.Errorf("RawText = %q, want name text alone", items[0].RawText)
	}
}

func TestMatchNameAndPriceNoPrices(t *testing.T) {
	names := []Block{blockAt("かしわ", 0, 0, 30, 40)}
	items := MatchNameAndPrice(names, nil, DefaultMaxMatchDistance)
	if len(items) != 1 || items[0].Price != nil || !items[0].NeedsReview {
		t.Fatalf("unexpected result without prices: %+v", items)
	}
}

func TestMatchNameAndPriceTieIsDeterministic(t *testing.T) {
	names := []Block{blockAt("name", 0, 100, 30, 0)} // center 100
	prices := []Block{
		blockAt("100", 0, 90, 10, 0),  // center 90, distance 10
		blockAt("200", 0, 110, 10, 0), // center 110, distance 10
	}

	for i := 0; i < 10; i++ {
		items := MatchNameAndPrice(names, prices, DefaultMaxMatchDistance)
		if items[0].Price == nil || *items[0].Price != 100 {
			t.Fatalf("tie resolved to %v, want earliest price block (100)", items[0].Price)
		}
	}
}

func TestMatchNameAndPriceSharedPriceBlock(t *testing.T) {
	// Greedy matching: both names may claim the single price block.
	names := []Block{
		blockAt("焼き鳥", 0, 95, 30, 10),
		blockAt("つくね", 0, 105, 30, 10),
	}
	prices := []Block{blockAt("四〇〇円", 0, 100, 30, 10)}

	items := MatchNameAndPrice(names, prices, DefaultMaxMatchDistance)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	for _, item := range items {
		if item.Price == nil || *item.Price != 400 {
			t.Errorf("item %q price = %v, want 400", item.Name, item.Price)
		}
	}
}

func TestMatchNameAndPriceMalformedBoxes(t *testing.T) {
	badName := Block{Text: "かしわ", Bounds: Bounds{X: math.NaN(), Y: 0, Width: 10, Height: 10}}
	goodName := blockAt("串焼", 0, 100, 30, 10)
	badPrice := Block{Text: "一二〇円", Bounds: Bounds{X: 0, Y: -5, Width: -10, Height: 10}}
	goodPrice := blockAt("三五〇円", 0, 104, 30, 10)

	items := MatchNameAndPrice([]Block{badName, goodName}, []Block{badPrice, goodPrice}, DefaultMaxMatchDistance)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Price != nil || !items[0].NeedsReview {
		t.Errorf("malformed name box should be unmatched: %+v", items[0])
	}
	if items[1].Price == nil || *items[1].Price != 350 {
		t.Errorf("valid name should match the valid price block: %+v", items[1])
	}
}

func TestMatchNameAndPriceUnparseablePriceBlock(t *testing.T) {
	// Defensive path: a block handed in as a price candidate that does
	// not actually parse yields a nil price, not a panic.
	names := []Block{blockAt("かしわ", 0, 100, 30, 10)}
	prices := []Block{blockAt("※", 0, 102, 30, 10)}

	items := MatchNameAndPrice(names, prices, DefaultMaxMatchDistance)
	if items[0].Price != nil {
		t.Errorf("Price = %v, want nil for unparseable block", *items[0].Price)
	}
	if !items[0].NeedsReview {
		t.Error("NeedsReview = false for an unparseable price block")
	}
}
