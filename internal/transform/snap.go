package transform

import (
	"math"
	"slices"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
)

// SnapThreshold is the snap distance in screen pixels. It is divided by zoom so it
// feels the same at every zoom level.
const SnapThreshold = 10.0

// snapLineTolerance decides which targets a snapped resize visibly touches.
const snapLineTolerance = 0.1

// targets holds candidate reference lines in insertion order without duplicates.
// Vertical lines are x coordinates, horizontal lines are y coordinates.
type targets struct {
	vertical   []float64
	horizontal []float64
}

func addUnique(s []float64, v float64) []float64 {
	if slices.Contains(s, v) {
		return s
	}
	return append(s, v)
}

// snapTargets collects guides, the canvas edges and centerlines, and the edges and
// centers of every layer that is not part of the gesture.
func snapTargets(p *document.Project, moving map[string]Snapshot) targets {
	var t targets
	for _, g := range p.Canvas.Guides.Items {
		if g.Orientation == document.Vertical {
			t.vertical = addUnique(t.vertical, g.Position)
		} else {
			t.horizontal = addUnique(t.horizontal, g.Position)
		}
	}

	for _, v := range []float64{0, p.Canvas.Width / 2, p.Canvas.Width} {
		t.vertical = addUnique(t.vertical, v)
	}
	for _, v := range []float64{0, p.Canvas.Height / 2, p.Canvas.Height} {
		t.horizontal = addUnique(t.horizontal, v)
	}

	for _, l := range p.Layers {
		b := l.LayerBase()
		if _, ok := moving[b.ID]; ok {
			continue
		}
		tr := b.Transform
		for _, v := range []float64{tr.X, tr.X + tr.Width/2, tr.X + tr.Width} {
			t.vertical = addUnique(t.vertical, v)
		}
		for _, v := range []float64{tr.Y, tr.Y + tr.Height/2, tr.Y + tr.Height} {
			t.horizontal = addUnique(t.horizontal, v)
		}
	}
	return t
}

// nearest finds the closest target to any of the candidate positions within threshold.
// Candidates are scanned in order and only a strictly closer match replaces the current
// best, so ties go to the first pair encountered. delta is what must be added to the
// matching candidate to land on target.
func nearest(candidates, lines []float64, threshold float64) (delta, target float64, ok bool) {
	best := threshold
	for _, c := range candidates {
		for _, line := range lines {
			diff := c - line
			if math.Abs(diff) < best {
				best = math.Abs(diff)
				delta = -diff
				target = line
				ok = true
			}
		}
	}
	return delta, target, ok
}

func snapThreshold(zoom float64) float64 {
	return SnapThreshold / zoom
}

// SnapToGuides snaps a canvas point onto nearby guides, as used when placing new layers.
// Later guides win over earlier ones that are also within reach.
func SnapToGuides(p *document.Project, pt geom.Vec) geom.Vec {
	if !p.Canvas.Guides.SnapActive() {
		return pt
	}
	threshold := snapThreshold(p.ZoomOrOne())
	out := pt
	for _, g := range p.Canvas.Guides.Items {
		if g.Orientation == document.Vertical && math.Abs(pt.X-g.Position) < threshold {
			out.X = g.Position
		}
		if g.Orientation == document.Horizontal && math.Abs(pt.Y-g.Position) < threshold {
			out.Y = g.Position
		}
	}
	return out
}
