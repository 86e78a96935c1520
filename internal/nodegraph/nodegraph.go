// Package nodegraph edits the bezier node list of a path shape. Every function is pure:
// it returns a new slice and never mutates the points it is given. Coordinates are the
// shape's local, unrotated percentage space.
package nodegraph

import (
	"math"
	"slices"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
)

const (
	// MinPoints is the smallest node count a path may be reduced to.
	MinPoints = 3

	curveHandleOffset  = 15.0
	insertHandleOffset = 10.0
)

type Handle string

const (
	HandleIn  Handle = "in"
	HandleOut Handle = "out"
)

func (h Handle) Opposite() Handle {
	if h == HandleIn {
		return HandleOut
	}
	return HandleIn
}

func indexOf(points []document.PathPoint, id string) int {
	return slices.IndexFunc(points, func(p document.PathPoint) bool { return p.ID == id })
}

// ToggleNodeType flips a node between corner and curve. A curve becomes a corner by
// collapsing both handles onto the node. A corner with collapsed handles gets handles
// offset horizontally so the curve is visible; diverging handles are kept.
func ToggleNodeType(points []document.PathPoint, id string) []document.PathPoint {
	i := indexOf(points, id)
	if i < 0 {
		return points
	}

	out := slices.Clone(points)
	p := out[i]
	at := p.Pos()
	if p.Type == document.PointCurve {
		p.Type = document.PointCorner
		p.Handles = document.Handles{In: at, Out: at}
	} else {
		p.Type = document.PointCurve
		if p.Handles.In == at && p.Handles.Out == at {
			p.Handles = document.Handles{
				In:  geom.Vec{X: p.X - curveHandleOffset, Y: p.Y},
				Out: geom.Vec{X: p.X + curveHandleOffset, Y: p.Y},
			}
		}
	}
	out[i] = p
	return out
}

// DeleteNode removes a node. Paths with MinPoints or fewer nodes are returned unchanged.
func DeleteNode(points []document.PathPoint, id string) []document.PathPoint {
	if len(points) <= MinPoints {
		return points
	}
	i := indexOf(points, id)
	if i < 0 {
		return points
	}
	return slices.Delete(slices.Clone(points), i, i+1)
}

// NearestSegment finds the segment whose chord lies closest to click. Distances are
// measured in box units for a w by h box so wide shapes are not distorted. The closing
// segment is considered only when isClosed is set. Zero-length chords are skipped.
// It returns -1 when no segment qualifies.
func NearestSegment(points []document.PathPoint, isClosed bool, click geom.Vec, w, h float64) (index int, dist float64) {
	n := len(points)
	segments := n - 1
	if isClosed {
		segments = n
	}

	scale := func(p geom.Vec) geom.Vec { return geom.Vec{X: p.X / 100 * w, Y: p.Y / 100 * h} }
	c := scale(click)

	index, dist = -1, math.Inf(1)
	for i := 0; i < segments; i++ {
		a := scale(points[i].Pos())
		b := scale(points[(i+1)%n].Pos())
		_, _, d, ok := geom.ProjectOnSegment(c, a, b)
		if !ok {
			continue
		}
		if d < dist {
			index, dist = i, d
		}
	}
	return index, dist
}

// InsertNodeOnSegment adds a curve node at click, right after the start of the nearest
// segment. It returns the new list and the index of the inserted node, or the input
// and -1 when there is no usable segment.
func InsertNodeOnSegment(points []document.PathPoint, isClosed bool, click geom.Vec, w, h float64, id string) ([]document.PathPoint, int) {
	seg, _ := NearestSegment(points, isClosed, click, w, h)
	if seg < 0 {
		return points, -1
	}

	p := document.PathPoint{
		ID:   id,
		X:    click.X,
		Y:    click.Y,
		Type: document.PointCurve,
		Handles: document.Handles{
			In:  geom.Vec{X: click.X - insertHandleOffset, Y: click.Y},
			Out: geom.Vec{X: click.X + insertHandleOffset, Y: click.Y},
		},
	}
	return slices.Insert(slices.Clone(points), seg+1, p), seg + 1
}

// MoveNode translates a node and both handles by delta. Pass the points captured when
// the drag started so repeated frames do not accumulate error.
func MoveNode(points []document.PathPoint, id string, delta geom.Vec) []document.PathPoint {
	i := indexOf(points, id)
	if i < 0 {
		return points
	}

	out := slices.Clone(points)
	p := out[i]
	p.X += delta.X
	p.Y += delta.Y
	p.Handles.In = p.Handles.In.Add(delta)
	p.Handles.Out = p.Handles.Out.Add(delta)
	out[i] = p
	return out
}

// MoveHandle moves one handle of a node by delta. On a curve node the opposite handle is
// mirrored through the node at the same distance unless breakSymmetry is set.
func MoveHandle(points []document.PathPoint, id string, which Handle, delta geom.Vec, breakSymmetry bool) []document.PathPoint {
	i := indexOf(points, id)
	if i < 0 {
		return points
	}

	out := slices.Clone(points)
	p := out[i]
	moved := handle(p, which).Add(delta)
	setHandle(&p, which, moved)

	if p.Type == document.PointCurve && !breakSymmetry {
		node := p.Pos()
		v := moved.Sub(node)
		angle := math.Atan2(v.Y, v.X)
		d := v.Len()
		setHandle(&p, which.Opposite(), geom.Vec{
			X: node.X - d*math.Cos(angle),
			Y: node.Y - d*math.Sin(angle),
		})
	}
	out[i] = p
	return out
}

func handle(p document.PathPoint, which Handle) geom.Vec {
	if which == HandleIn {
		return p.Handles.In
	}
	return p.Handles.Out
}

func setHandle(p *document.PathPoint, which Handle, v geom.Vec) {
	if which == HandleIn {
		p.Handles.In = v
	} else {
		p.Handles.Out = v
	}
}

// ScreenToLocal converts a screen pointer position into the percentage space of a layer.
// origin is the screen position of the canvas top-left corner.
func ScreenToLocal(pointer, origin geom.Vec, zoom float64, t document.Transform) geom.Vec {
	if zoom <= 0 {
		zoom = 1
	}
	canvas := pointer.Sub(origin).Scale(1 / zoom)
	center := t.Center()
	unrotated := center.Add(geom.ToLocal(canvas.Sub(center), t.Rotation))
	return geom.Vec{
		X: (unrotated.X - t.X) / t.Width * 100,
		Y: (unrotated.Y - t.Y) / t.Height * 100,
	}
}

// ScreenDeltaToLocal converts a screen drag delta into a percentage delta of a layer.
func ScreenDeltaToLocal(delta geom.Vec, zoom float64, t document.Transform) geom.Vec {
	if zoom <= 0 {
		zoom = 1
	}
	d := geom.ToLocal(delta.Scale(1/zoom), t.Rotation)
	return geom.Vec{X: d.X / t.Width * 100, Y: d.Y / t.Height * 100}
}

// LocalToCanvas maps a percentage point of a layer onto the canvas.
func LocalToCanvas(p geom.Vec, t document.Transform) geom.Vec {
	return t.Matrix().TransformPoint(geom.Vec{X: p.X / 100 * t.Width, Y: p.Y / 100 * t.Height})
}
