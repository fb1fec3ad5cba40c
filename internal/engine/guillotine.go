package engine

import (
	"github.com/piwi3910/floorplan/internal/model"
)

// GuillotinePlacer places tiles with a free-rectangle packer using the
// best-area-fit heuristic. For each tile it compares both orientations and
// takes the tighter fit, flipping the tile when the rotated footprint wins.
type GuillotinePlacer struct{}

func (GuillotinePlacer) Name() string { return string(model.PlacerGuillotine) }

func (GuillotinePlacer) Place(cfg *model.Configuration, bounds model.CanvasBounds) error {
	packer := newGuillotinePacker(bounds.Width, bounds.Height)

	for _, i := range placementOrder(cfg.Tiles) {
		t := &cfg.Tiles[i]

		normalFit := packer.bestFit(t.Width, t.Height)
		rotatedFit := -1
		if t.Width != t.Height {
			rotatedFit = packer.bestFit(t.Height, t.Width)
		}

		preferRotated := false
		if normalFit < 0 && rotatedFit >= 0 {
			preferRotated = true
		} else if normalFit >= 0 && rotatedFit >= 0 && rotatedFit < normalFit {
			preferRotated = true
		}
		if preferRotated {
			t.Flip()
		}

		if ok, x, y := packer.choose(t.Width, t.Height); ok && cfg.TryMove(i, x, y, bounds) {
			packer.splitAroundPlacement(rect{x: x, y: y, w: t.Width, h: t.Height})
			t.Placed = true
			continue
		}
		if preferRotated {
			t.Flip()
		}

		// The free list can miss a spot after heavy pruning; fall back to an
		// exhaustive scan and keep the packer in sync with the result.
		if !firstFit(cfg, i, bounds) {
			return infeasible(cfg, i, bounds)
		}
		packer.splitAroundPlacement(rect{x: t.X, y: t.Y, w: t.Width, h: t.Height})
	}
	return nil
}

// guillotinePacker maintains a list of maximal free rectangles and splits
// every overlapping one around each placement.
type guillotinePacker struct {
	freeRects []rect
}

type rect struct {
	x, y, w, h int
}

func newGuillotinePacker(width, height int) *guillotinePacker {
	return &guillotinePacker{
		freeRects: []rect{{0, 0, width, height}},
	}
}

// choose returns the best-area-fit origin for a w x h tile without
// modifying the free list.
func (gp *guillotinePacker) choose(w, h int) (bool, int, int) {
	bestIdx := -1
	bestAreaFit := -1

	for i, r := range gp.freeRects {
		if w <= r.w && h <= r.h {
			areaFit := r.w*r.h - w*h
			if bestIdx < 0 || areaFit < bestAreaFit {
				bestIdx = i
				bestAreaFit = areaFit
			}
		}
	}

	if bestIdx < 0 {
		return false, 0, 0
	}

	chosen := gp.freeRects[bestIdx]
	return true, chosen.x, chosen.y
}

// splitAroundPlacement removes all free rects that overlap with the placed rect
// and generates maximal sub-rects from each overlap. Then prunes contained rects.
func (gp *guillotinePacker) splitAroundPlacement(placed rect) {
	var newRects []rect

	for _, r := range gp.freeRects {
		if !rectsOverlap(r, placed) {
			newRects = append(newRects, r)
			continue
		}

		// Left strip
		if placed.x > r.x {
			newRects = append(newRects, rect{x: r.x, y: r.y, w: placed.x - r.x, h: r.h})
		}
		// Right strip
		if placed.x+placed.w < r.x+r.w {
			newRects = append(newRects, rect{
				x: placed.x + placed.w, y: r.y,
				w: (r.x + r.w) - (placed.x + placed.w), h: r.h,
			})
		}
		// Bottom strip
		if placed.y > r.y {
			newRects = append(newRects, rect{x: r.x, y: r.y, w: r.w, h: placed.y - r.y})
		}
		// Top strip
		if placed.y+placed.h < r.y+r.h {
			newRects = append(newRects, rect{
				x: r.x, y: placed.y + placed.h,
				w: r.w, h: (r.y + r.h) - (placed.y + placed.h),
			})
		}
	}

	gp.freeRects = pruneContained(newRects)
}

// rectsOverlap returns true if two rectangles overlap (not just touch).
func rectsOverlap(a, b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x &&
		a.y < b.y+b.h && a.y+a.h > b.y
}

// pruneContained removes any rect that is fully contained within another.
// Of two identical rects only the first is kept.
func pruneContained(rects []rect) []rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !containsRect(b, a) {
				continue
			}
			if a == b && j > i {
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

// containsRect returns true if outer fully contains inner.
func containsRect(outer, inner rect) bool {
	return outer.x <= inner.x && outer.y <= inner.y &&
		outer.x+outer.w >= inner.x+inner.w &&
		outer.y+outer.h >= inner.y+inner.h
}

// bestFit returns the area waste for inserting a tile of size w x h
// without modifying the packer state. Returns -1 if it doesn't fit.
func (gp *guillotinePacker) bestFit(w, h int) int {
	best := -1
	for _, r := range gp.freeRects {
		if w <= r.w && h <= r.h {
			areaFit := r.w*r.h - w*h
			if best < 0 || areaFit < best {
				best = areaFit
			}
		}
	}
	return best
}
