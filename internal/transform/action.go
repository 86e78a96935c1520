// Package transform turns pointer drags into new layer geometry. Every entry point is a
// pure function of the project, the captured gesture and the drag delta.
package transform

import (
	"slices"
	"strings"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/nodegraph"
)

type Kind string

const (
	KindMove       Kind = "move"
	KindResize     Kind = "resize"
	KindRotate     Kind = "rotate"
	KindMoveNode   Kind = "move-node"
	KindMoveHandle Kind = "move-handle"
	KindPanImage   Kind = "pan-image"
	KindMoveGuide  Kind = "move-guide"
)

// Handle names one of the eight resize grips: t/m/b for the row, l/m/r for the column.
type Handle string

const (
	HandleTopLeft      Handle = "tl"
	HandleTopMiddle    Handle = "tm"
	HandleTopRight     Handle = "tr"
	HandleMiddleLeft   Handle = "ml"
	HandleMiddleRight  Handle = "mr"
	HandleBottomLeft   Handle = "bl"
	HandleBottomMiddle Handle = "bm"
	HandleBottomRight  Handle = "br"
)

var Handles = []Handle{
	HandleTopLeft, HandleTopMiddle, HandleTopRight,
	HandleMiddleLeft, HandleMiddleRight,
	HandleBottomLeft, HandleBottomMiddle, HandleBottomRight,
}

func (h Handle) Valid() bool { return slices.Contains(Handles, h) }

// IsCorner reports whether the handle resizes both axes with a locked aspect ratio.
func (h Handle) IsCorner() bool { return h.Valid() && !strings.Contains(string(h), "m") }

func (h Handle) top() bool    { return h[0] == 't' }
func (h Handle) bottom() bool { return h[0] == 'b' }
func (h Handle) left() bool   { return h[1] == 'l' }
func (h Handle) right() bool  { return h[1] == 'r' }

// Snapshot is the pre-gesture state of one layer. FontSize is set for text layers;
// Pan and Crop for layers showing an image.
type Snapshot struct {
	Transform document.Transform
	FontSize  float64
	Pan       document.Pan
	Crop      document.Crop
}

// Action is the captured state of one gesture. It never changes while the gesture runs,
// so every frame is computed from the original geometry.
type Action struct {
	Kind  Kind
	Start geom.Vec
	Shift bool

	// move, resize, rotate, pan-image
	Handle  Handle
	Initial map[string]Snapshot

	// move-node, move-handle, pan-image
	LayerID       string
	PointID       string
	Which         nodegraph.Handle
	InitialPoints []document.PathPoint

	// move-guide
	GuideID         string
	InitialPosition float64
}

// Capture snapshots the layers with the given ids.
func Capture(p *document.Project, ids []string) map[string]Snapshot {
	out := make(map[string]Snapshot, len(ids))
	for _, l := range p.Layers {
		b := l.LayerBase()
		if !slices.Contains(ids, b.ID) {
			continue
		}
		s := Snapshot{Transform: b.Transform}
		switch v := l.(type) {
		case *document.TextLayer:
			s.FontSize = v.Font.Size
		case *document.ImageLayer:
			s.Pan, s.Crop = v.Pan, v.Crop
		case *document.ShapeLayer:
			if v.Shape.FillImage != nil {
				s.Pan, s.Crop = v.Shape.FillImage.Pan, v.Shape.FillImage.Crop
			}
		}
		out[b.ID] = s
	}
	return out
}

// SnapLines are the reference coordinates the dragged geometry currently aligns to.
// They are for display only and never persisted.
type SnapLines struct {
	Horizontal []float64 `json:"horizontal"`
	Vertical   []float64 `json:"vertical"`
}

func (s SnapLines) Empty() bool {
	return len(s.Horizontal) == 0 && len(s.Vertical) == 0
}

// BoundsProvider reports the on-screen bounds of a set of layers, in canvas units. The
// rotate gesture pivots around its center.
type BoundsProvider interface {
	SelectionBounds(ids []string) (geom.Rect, bool)
}

// FixedBounds is a BoundsProvider that always returns the same rectangle.
type FixedBounds geom.Rect

func (f FixedBounds) SelectionBounds([]string) (geom.Rect, bool) {
	return geom.Rect(f), true
}

// ProjectBounds computes selection bounds from layer transforms: the union of each
// layer's rotated box.
type ProjectBounds struct {
	Project *document.Project
}

func (b ProjectBounds) SelectionBounds(ids []string) (geom.Rect, bool) {
	var (
		r     geom.Rect
		found bool
	)
	for _, l := range b.Project.Layers {
		base := l.LayerBase()
		if !slices.Contains(ids, base.ID) {
			continue
		}
		t := base.Transform
		lb := t.Matrix().TransformRect(geom.Rect{Width: t.Width, Height: t.Height})
		if !found {
			r, found = lb, true
			continue
		}
		r = r.Union(lb)
	}
	return r, found
}
