package transform

import (
	"math"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
)

const (
	// MinFontSize is the smallest font size a text resize produces.
	MinFontSize = 4.0

	// RotationStep is the increment rotations snap to while shift is held.
	RotationStep = 15.0
)

// Input is everything a move, resize or rotate frame depends on. Delta and Pointer are
// screen pixels; Pointer is relative to the artboard origin so canvas = Pointer / zoom.
type Input struct {
	Project *document.Project
	Action  *Action
	Delta   geom.Vec
	Pointer geom.Vec
	Bounds  BoundsProvider
}

type Result struct {
	Layers    []document.Layer
	SnapLines SnapLines
}

// Apply computes one frame of a move, resize or rotate gesture. Layers outside the
// gesture are returned as is; changed layers are fresh copies.
func Apply(in Input) Result {
	p, a := in.Project, in.Action
	zoom := p.ZoomOrOne()
	d := in.Delta.Scale(1 / zoom)

	res := Result{
		Layers:    make([]document.Layer, len(p.Layers)),
		SnapLines: SnapLines{Horizontal: []float64{}, Vertical: []float64{}},
	}

	snap := p.Canvas.Guides.SnapActive()
	var tg targets
	if snap && (a.Kind == KindMove || a.Kind == KindResize) {
		tg = snapTargets(p, a.Initial)
	}
	threshold := snapThreshold(zoom)

	var (
		pivot     geom.Vec
		havePivot bool
	)
	if a.Kind == KindRotate && in.Bounds != nil {
		var r geom.Rect
		r, havePivot = in.Bounds.SelectionBounds(capturedIDs(p, a.Initial))
		pivot = r.Center().Scale(zoom)
	}

	for i, l := range p.Layers {
		id := l.LayerBase().ID
		s, ok := a.Initial[id]
		if !ok {
			res.Layers[i] = l
			continue
		}

		switch {
		case a.Kind == KindMove:
			res.Layers[i] = move(l, s, d, snap, tg, threshold, &res.SnapLines)

		case a.Kind == KindResize && a.Handle.Valid():
			if p.CroppingLayerID == id && document.HasImageFill(l) {
				res.Layers[i] = crop(l, s, a.Handle, d)
				continue
			}
			res.Layers[i] = resize(l, s, a.Handle, d, snap, tg, threshold, &res.SnapLines)

		case a.Kind == KindRotate && havePivot:
			res.Layers[i] = rotate(l, s, a.Start, in.Pointer, pivot, a.Shift)

		default:
			res.Layers[i] = l
		}
	}
	return res
}

func capturedIDs(p *document.Project, initial map[string]Snapshot) []string {
	ids := make([]string, 0, len(initial))
	for _, l := range p.Layers {
		if _, ok := initial[l.LayerBase().ID]; ok {
			ids = append(ids, l.LayerBase().ID)
		}
	}
	return ids
}

func move(l document.Layer, s Snapshot, d geom.Vec, snap bool, tg targets, threshold float64, lines *SnapLines) document.Layer {
	t := s.Transform
	t.X += d.X
	t.Y += d.Y

	if snap {
		xs := []float64{t.X, t.X + t.Width/2, t.X + t.Width}
		if delta, target, ok := nearest(xs, tg.vertical, threshold); ok {
			t.X += delta
			lines.Vertical = addUnique(lines.Vertical, target)
		}
		ys := []float64{t.Y, t.Y + t.Height/2, t.Y + t.Height}
		if delta, target, ok := nearest(ys, tg.horizontal, threshold); ok {
			t.Y += delta
			lines.Horizontal = addUnique(lines.Horizontal, target)
		}
	}
	return document.WithTransform(l, t)
}

// handleSnapPoints lists, per handle, which of the resized box's reference points may
// snap: 0-3 corners clockwise from top-left, 4-7 edge midpoints top/right/bottom/left,
// 8 the center.
var handleSnapPoints = map[Handle][]int{
	HandleTopLeft:      {0, 4, 7, 8},
	HandleTopMiddle:    {4, 8},
	HandleTopRight:     {1, 4, 5, 8},
	HandleMiddleLeft:   {7, 8},
	HandleMiddleRight:  {5, 8},
	HandleBottomLeft:   {3, 6, 7, 8},
	HandleBottomMiddle: {6, 8},
	HandleBottomRight:  {2, 5, 6, 8},
}

// centerShift is how far the box center moves in world space when the dragged side
// grows by dw and dh, keeping the opposite side in place.
func centerShift(h Handle, dw, dh, rotation float64) geom.Vec {
	var c geom.Vec
	if h.right() {
		c.X = dw / 2
	} else if h.left() {
		c.X = -dw / 2
	}
	if h.bottom() {
		c.Y = dh / 2
	} else if h.top() {
		c.Y = -dh / 2
	}
	return geom.ToWorld(c, rotation)
}

// referencePoints returns the world positions of a w by h box centered at c.
func referencePoints(c geom.Vec, w, h, rotation float64) [9]geom.Vec {
	hw, hh := w/2, h/2
	local := [4]geom.Vec{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
	var pts [9]geom.Vec
	for i, p := range local {
		pts[i] = c.Add(p.Rotate(rotation))
	}
	for i := 0; i < 4; i++ {
		pts[4+i] = pts[i].Lerp(pts[(i+1)%4], 0.5)
	}
	pts[8] = c
	return pts
}

func resize(l document.Layer, s Snapshot, h Handle, d geom.Vec, snap bool, tg targets, threshold float64, lines *SnapLines) document.Layer {
	t := s.Transform
	local := geom.ToLocal(d, t.Rotation)

	if snap {
		local = snapResize(t, h, local, tg, threshold, lines)
	}

	var widthChange, heightChange float64
	if h.left() {
		widthChange = -local.X
	} else if h.right() {
		widthChange = local.X
	}
	if h.top() {
		heightChange = -local.Y
	} else if h.bottom() {
		heightChange = local.Y
	}

	corner := h.IsCorner()
	aspect := t.Width / t.Height
	w, ht := t.Width, t.Height
	if corner {
		if math.Abs(widthChange) > math.Abs(heightChange) {
			w = t.Width + widthChange
			ht = w / aspect
		} else {
			ht = t.Height + heightChange
			w = ht * aspect
		}
	} else {
		w = t.Width + widthChange
		ht = t.Height + heightChange
	}

	if w < document.MinSize {
		w = document.MinSize
		if corner {
			ht = w / aspect
		}
	}
	if ht < document.MinSize {
		ht = document.MinSize
		if corner {
			w = ht * aspect
		}
	}

	center := t.Center().Add(centerShift(h, w-t.Width, ht-t.Height, t.Rotation))
	next := t
	next.Width, next.Height = w, ht
	next.X, next.Y = center.X-w/2, center.Y-ht/2

	if text, ok := l.(*document.TextLayer); ok && corner && s.FontSize > 0 {
		c := text.Clone().(*document.TextLayer)
		c.Transform = next
		c.Font.Size = scaleFont(s.FontSize, w/t.Width, ht/t.Height)
		return c
	}
	return document.WithTransform(l, next)
}

// snapResize adjusts a local resize delta so the dragged side lands on a reference
// line. It runs before the aspect lock: on a corner handle the dominant axis decides the
// final size, so a snapped edge on the other axis may end up off its line while the
// line is still reported.
func snapResize(t document.Transform, h Handle, local geom.Vec, tg targets, threshold float64, lines *SnapLines) geom.Vec {
	w, ht := t.Width, t.Height
	if h.left() {
		w -= local.X
	} else if h.right() {
		w += local.X
	}
	if h.top() {
		ht -= local.Y
	} else if h.bottom() {
		ht += local.Y
	}

	center := t.Center().Add(centerShift(h, w-t.Width, ht-t.Height, t.Rotation))
	all := referencePoints(center, w, ht, t.Rotation)

	idx := handleSnapPoints[h]
	xs := make([]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, k := range idx {
		xs[i], ys[i] = all[k].X, all[k].Y
	}

	dx, _, okX := nearest(xs, tg.vertical, threshold)
	dy, _, okY := nearest(ys, tg.horizontal, threshold)
	if !okX && !okY {
		return local
	}

	for _, x := range xs {
		for _, v := range tg.vertical {
			if math.Abs(x+dx-v) < snapLineTolerance {
				lines.Vertical = addUnique(lines.Vertical, v)
			}
		}
	}
	for _, y := range ys {
		for _, v := range tg.horizontal {
			if math.Abs(y+dy-v) < snapLineTolerance {
				lines.Horizontal = addUnique(lines.Horizontal, v)
			}
		}
	}
	return local.Add(geom.ToLocal(geom.Vec{X: dx, Y: dy}, t.Rotation))
}

func scaleFont(initial, wRatio, hRatio float64) float64 {
	return math.Max(MinFontSize, initial*(wRatio+hRatio)/2)
}

// crop moves the inset of the dragged sides instead of resizing the frame. Insets stay
// non-negative and an opposing pair never leaves less than nothing visible.
func crop(l document.Layer, s Snapshot, h Handle, d geom.Vec) document.Layer {
	t := s.Transform
	local := geom.ToLocal(d, t.Rotation)

	c := s.Crop
	if h.top() {
		c.Top += local.Y / t.Height * 100
	}
	if h.bottom() {
		c.Bottom += -local.Y / t.Height * 100
	}
	if h.left() {
		c.Left += local.X / t.Width * 100
	}
	if h.right() {
		c.Right += -local.X / t.Width * 100
	}

	c.Top = math.Max(0, c.Top)
	c.Right = math.Max(0, c.Right)
	c.Bottom = math.Max(0, c.Bottom)
	c.Left = math.Max(0, c.Left)

	if c.Left+c.Right >= 100 {
		if h.left() {
			c.Left = 100 - c.Right
		} else {
			c.Right = 100 - c.Left
		}
	}
	if c.Top+c.Bottom >= 100 {
		if h.top() {
			c.Top = 100 - c.Bottom
		} else {
			c.Bottom = 100 - c.Top
		}
	}

	switch v := l.Clone().(type) {
	case *document.ImageLayer:
		v.Crop = c
		return v
	case *document.ShapeLayer:
		v.Shape.FillImage.Crop = c
		return v
	}
	return l
}

func rotate(l document.Layer, s Snapshot, start, pointer, pivot geom.Vec, shift bool) document.Layer {
	from := math.Atan2(start.Y-pivot.Y, start.X-pivot.X)
	to := math.Atan2(pointer.Y-pivot.Y, pointer.X-pivot.X)

	t := s.Transform
	t.Rotation += geom.Degrees(to - from)
	if shift {
		t.Rotation = math.Floor(t.Rotation/RotationStep+0.5) * RotationStep
	}
	return document.WithTransform(l, t)
}
