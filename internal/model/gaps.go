package model

import "sort"

// Gap is an empty rectangle inside a layout's bounding box.
type Gap struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the area of the gap.
func (g Gap) Area() int {
	return g.Width * g.Height
}

// DetectGaps partitions the empty space of the bounding box into disjoint
// rectangles and returns those with at least minArea, largest first.
//
// The box is cut along every tile edge into a compressed grid. Free cells
// are then merged greedily, scanning row by row: each gap grows right as far
// as the row stays free, then upwards while the whole span stays free.
// Every tile must be placed and the layout must be overlap-free.
func DetectGaps(cfg Configuration, minArea int) []Gap {
	m, err := cfg.Evaluate()
	if err != nil || m.Area == 0 {
		return nil
	}

	xs := edges(cfg.Tiles, m.MaxX, func(t Tile) (int, int) { return t.X, t.Right() })
	ys := edges(cfg.Tiles, m.MaxY, func(t Tile) (int, int) { return t.Y, t.Top() })
	cols, rows := len(xs)-1, len(ys)-1

	xIndex := indexOf(xs)
	yIndex := indexOf(ys)

	// used marks cells covered by a tile or already assigned to a gap.
	used := make([][]bool, rows)
	for r := range used {
		used[r] = make([]bool, cols)
	}
	for _, t := range cfg.Tiles {
		for r := yIndex[t.Y]; r < yIndex[t.Top()]; r++ {
			for c := xIndex[t.X]; c < xIndex[t.Right()]; c++ {
				used[r][c] = true
			}
		}
	}

	var gaps []Gap
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if used[r][c] {
				continue
			}
			c1 := c + 1
			for c1 < cols && !used[r][c1] {
				c1++
			}
			r1 := r + 1
			for r1 < rows && spanFree(used[r1], c, c1) {
				r1++
			}
			for rr := r; rr < r1; rr++ {
				for cc := c; cc < c1; cc++ {
					used[rr][cc] = true
				}
			}
			g := Gap{X: xs[c], Y: ys[r], Width: xs[c1] - xs[c], Height: ys[r1] - ys[r]}
			if g.Area() >= minArea {
				gaps = append(gaps, g)
			}
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Area() > gaps[j].Area()
	})
	return gaps
}

// TotalGapArea returns the summed area of the gaps.
func TotalGapArea(gaps []Gap) int {
	total := 0
	for _, g := range gaps {
		total += g.Area()
	}
	return total
}

// edges returns the sorted distinct coordinates of tile edges along one
// axis, including 0 and limit.
func edges(tiles []Tile, limit int, span func(Tile) (int, int)) []int {
	seen := map[int]bool{0: true, limit: true}
	for _, t := range tiles {
		lo, hi := span(t)
		seen[lo], seen[hi] = true, true
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func indexOf(coords []int) map[int]int {
	idx := make(map[int]int, len(coords))
	for i, v := range coords {
		idx[v] = i
	}
	return idx
}

func spanFree(row []bool, from, to int) bool {
	for c := from; c < to; c++ {
		if row[c] {
			return false
		}
	}
	return true
}
