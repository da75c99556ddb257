package menu

import "sort"

// Column is a horizontally contiguous cluster of blocks. Columns bound the
// matching search space on multi-column vertical menus so that names are
// never paired with prices from an unrelated column.
type Column struct {
	// Left and Right are the horizontal extent covered by the column.
	Left, Right float64

	// Blocks are the member blocks. Order within a column carries no
	// meaning.
	Blocks []Block
}

// GroupIntoColumns partitions blocks into vertical columns by projecting
// each block's horizontal extent onto the x axis: after sorting by
// position, adjacent blocks join the same column while the gap between
// their extents is at most maxColumnGap, and start a new column otherwise.
//
// When more blocks than maxColumns columns emerge, the adjacent pair with
// the narrowest inter-column gap is merged repeatedly until the count
// fits. This is a configuration-driven heuristic for decorative layouts,
// not a correctness guarantee.
//
// Columns are returned right to left, the natural reading order of a
// vertical Japanese menu.
func GroupIntoColumns(blocks []Block, maxColumns int, maxColumnGap float64) []Column {
	if len(blocks) == 0 || maxColumns <= 0 {
		return nil
	}

	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Bounds.X != b.Bounds.X {
			return a.Bounds.X < b.Bounds.X
		}
		if a.Bounds.Y != b.Bounds.Y {
			return a.Bounds.Y < b.Bounds.Y
		}
		return a.Text < b.Text
	})

	var cols []Column
	for _, b := range sorted {
		if n := len(cols); n > 0 && b.Bounds.Left()-cols[n-1].Right <= maxColumnGap {
			col := &cols[n-1]
			col.Blocks = append(col.Blocks, b)
			if r := b.Bounds.Right(); r > col.Right {
				col.Right = r
			}
			continue
		}
		cols = append(cols, Column{
			Left:   b.Bounds.Left(),
			Right:  b.Bounds.Right(),
			Blocks: []Block{b},
		})
	}

	for len(cols) > maxColumns {
		cols = mergeNarrowestGap(cols)
	}

	// Rightmost column reads first.
	for i, j := 0, len(cols)-1; i < j; i, j = i+1, j-1 {
		cols[i], cols[j] = cols[j], cols[i]
	}
	return cols
}

// mergeNarrowestGap joins the adjacent column pair separated by the
// smallest horizontal gap. cols must be sorted left to right.
func mergeNarrowestGap(cols []Column) []Column {
	best := 0
	bestGap := cols[1].Left - cols[0].Right
	for i := 1; i < len(cols)-1; i++ {
		if gap := cols[i+1].Left - cols[i].Right; gap < bestGap {
			best, bestGap = i, gap
		}
	}

	merged := cols[best]
	merged.Blocks = append(merged.Blocks, cols[best+1].Blocks...)
	if cols[best+1].Right > merged.Right {
		merged.Right = cols[best+1].Right
	}

	out := cols[:best]
	out = append(out, merged)
	return append(out, cols[best+2:]...)
}
