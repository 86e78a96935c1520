package shape

import (
	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/typeid"
)

// IDFunc mints ids for new path points.
type IDFunc func() string

// ToPath converts a parametric shape layer into an editable path layer. The input is
// returned unchanged when it is already a path, when it already carries points, or when
// the primitive has no conversion. A rect with rounded corners keeps them: each rounded
// corner becomes a pair of curve nodes sized for the layer's current box.
func ToPath(l *document.ShapeLayer, newID IDFunc) *document.ShapeLayer {
	if l.Shape.Primitive == document.PrimitivePath || l.Shape.Points != nil {
		return l
	}
	if newID == nil {
		newID = typeid.NewPointID
	}

	var (
		points []document.PathPoint
		closed bool
		ok     bool
	)
	t := l.Transform
	if l.Shape.Primitive == document.PrimitiveRect && l.Shape.BorderRadius != nil {
		points, ok = RoundedRectPoints(t.Width, t.Height, l.Shape.BorderRadius.Radii(), newID)
		closed = true
	}
	if !ok {
		points, closed, ok = PrimitivePoints(l.Shape.Primitive, newID)
	}
	if !ok {
		return l
	}

	c := l.Clone().(*document.ShapeLayer)
	c.Shape.Primitive = document.PrimitivePath
	c.Shape.Points = points
	c.Shape.IsClosed = closed
	c.Shape.BorderRadius = nil
	return c
}

// RoundedRectPoints returns the path of a w by h rect whose corners are rounded by r,
// in percent of the box. Corners are clamped the same way the rect is drawn. It reports
// false when no corner is rounded.
func RoundedRectPoints(w, h float64, r document.CornerRadii, newID IDFunc) ([]document.PathPoint, bool) {
	tl := clampRadius(r.TL, w, h)
	tr := clampRadius(r.TR, w, h)
	br := clampRadius(r.BR, w, h)
	bl := clampRadius(r.BL, w, h)
	if tl == 0 && tr == 0 && br == 0 && bl == 0 {
		return nil, false
	}

	toPct := func(v geom.Vec) geom.Vec { return geom.Vec{X: v.X / w * 100, Y: v.Y / h * 100} }
	var points []document.PathPoint
	// corner appends the square corner at c, or the two ends of its arc: a leaves the
	// previous edge with an outgoing handle, b joins the next edge with an incoming one.
	corner := func(radius float64, c, a, aOut, b, bIn geom.Vec) {
		if radius == 0 {
			v := toPct(c)
			points = append(points, document.CornerPoint(newID(), v.X, v.Y))
			return
		}
		pa, pb := toPct(a), toPct(b)
		points = append(points,
			document.PathPoint{
				ID: newID(), X: pa.X, Y: pa.Y, Type: document.PointCurve,
				Handles: document.Handles{In: pa, Out: toPct(aOut)},
			},
			document.PathPoint{
				ID: newID(), X: pb.X, Y: pb.Y, Type: document.PointCurve,
				Handles: document.Handles{In: toPct(bIn), Out: pb},
			},
		)
	}

	k := Kappa
	corner(tl, geom.Vec{},
		geom.Vec{X: 0, Y: tl}, geom.Vec{X: 0, Y: tl - tl*k},
		geom.Vec{X: tl, Y: 0}, geom.Vec{X: tl - tl*k, Y: 0})
	corner(tr, geom.Vec{X: w},
		geom.Vec{X: w - tr, Y: 0}, geom.Vec{X: w - tr + tr*k, Y: 0},
		geom.Vec{X: w, Y: tr}, geom.Vec{X: w, Y: tr - tr*k})
	corner(br, geom.Vec{X: w, Y: h},
		geom.Vec{X: w, Y: h - br}, geom.Vec{X: w, Y: h - br + br*k},
		geom.Vec{X: w - br, Y: h}, geom.Vec{X: w - br + br*k, Y: h})
	corner(bl, geom.Vec{Y: h},
		geom.Vec{X: bl, Y: h}, geom.Vec{X: bl - bl*k, Y: h},
		geom.Vec{X: 0, Y: h - bl}, geom.Vec{X: 0, Y: h - bl + bl*k})
	return points, true
}

// PrimitivePoints returns the fixed point set a primitive converts to.
func PrimitivePoints(p document.Primitive, newID IDFunc) (points []document.PathPoint, closed bool, ok bool) {
	corners := func(vs [][2]float64) []document.PathPoint {
		out := make([]document.PathPoint, len(vs))
		for i, v := range vs {
			out[i] = document.CornerPoint(newID(), v[0], v[1])
		}
		return out
	}
	curve := func(x, y float64, in, out geom.Vec) document.PathPoint {
		return document.PathPoint{
			ID: newID(), X: x, Y: y, Type: document.PointCurve,
			Handles: document.Handles{In: in, Out: out},
		}
	}

	switch p {
	case document.PrimitiveRect:
		return corners([][2]float64{{0, 0}, {100, 0}, {100, 100}, {0, 100}}), true, true

	case document.PrimitiveCircle:
		k := 50 * Kappa
		return []document.PathPoint{
			curve(50, 0, geom.Vec{X: 50 - k, Y: 0}, geom.Vec{X: 50 + k, Y: 0}),
			curve(100, 50, geom.Vec{X: 100, Y: 50 - k}, geom.Vec{X: 100, Y: 50 + k}),
			curve(50, 100, geom.Vec{X: 50 + k, Y: 100}, geom.Vec{X: 50 - k, Y: 100}),
			curve(0, 50, geom.Vec{X: 0, Y: 50 + k}, geom.Vec{X: 0, Y: 50 - k}),
		}, true, true

	case document.PrimitivePentagon:
		return corners(pentagonVertices), true, true

	case document.PrimitiveStar:
		return corners(starVertices), true, true

	case document.PrimitiveHeart:
		return []document.PathPoint{
			curve(50, 30, geom.Vec{X: 70, Y: 10}, geom.Vec{X: 30, Y: 10}),
			curve(10, 50, geom.Vec{X: 10, Y: 30}, geom.Vec{X: 10, Y: 70}),
			document.CornerPoint(newID(), 50, 90),
			curve(90, 50, geom.Vec{X: 90, Y: 70}, geom.Vec{X: 90, Y: 30}),
		}, true, true

	case document.PrimitiveLine, document.PrimitiveDashedLine:
		return corners([][2]float64{{0, 50}, {100, 50}}), false, true
	}
	return nil, false, false
}
