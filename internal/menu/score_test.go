package menu

import "testing"

func TestScoreDecreasesWithDistance(t *testing.T) {
	prev := Score(0, 300, false, true)
	for _, d := range []float64{10, 50, 150, 299, 300, 500} {
		s := Score(d, 300, false, true)
		if s > prev {
			t.Fatalf("Score(%v) = %v, greater than score at smaller distance (%v)", d, s, prev)
		}
		prev = s
	}
}

func TestScoreAmbiguityPenalty(t *testing.T) {
	for _, d := range []float64{0, 100, 250} {
		clean := Score(d, 300, false, true)
		mixed := Score(d, 300, true, true)
		if mixed > clean {
			t.Errorf("mixed-run score %v exceeds clean score %v at distance %v", mixed, clean, d)
		}
	}
}

func TestScoreNoPrice(t *testing.T) {
	s := Score(0, 300, false, false)
	if s <= 0 || s >= ReviewThreshold {
		t.Errorf("no-price score = %v, want a low nonzero value below the review threshold", s)
	}
}

func TestScoreRange(t *testing.T) {
	for _, d := range []float64{0, 150, 300, 1000} {
		for _, mixed := range []bool{false, true} {
			if s := Score(d, 300, mixed, true); s < 0 || s > 1 {
				t.Errorf("Score(%v, 300, %v, true) = %v out of [0,1]", d, mixed, s)
			}
		}
	}
}

func TestScoreZeroCeilingFallsBackToDefault(t *testing.T) {
	if s := Score(0, 0, false, true); s != 1 {
		t.Errorf("Score with zero ceiling = %v, want 1", s)
	}
}
