// Package shape converts parametric primitives into editable paths and derives the
// drawable outline that both the editor and every exporter render.
package shape

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/geom"
)

// Kappa places cubic handles so four segments approximate a quarter ellipse each.
// k = 4 * (sqrt(2) - 1) / 3
const Kappa = 0.5522847498

type Op string

const (
	MoveTo  Op = "M"
	LineTo  Op = "L"
	CubicTo Op = "C"
	Close   Op = "Z"
)

// Segment is one drawing command. C1 and C2 are only used by CubicTo.
type Segment struct {
	Op     Op
	C1, C2 geom.Vec
	To     geom.Vec
}

// MarshalJSON uses the Canvas2D command layout: ["M", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
func (s Segment) MarshalJSON() ([]byte, error) {
	switch s.Op {
	case CubicTo:
		return json.Marshal([]interface{}{s.Op, s.C1.X, s.C1.Y, s.C2.X, s.C2.Y, s.To.X, s.To.Y})
	case Close:
		return json.Marshal([]interface{}{s.Op})
	default:
		return json.Marshal([]interface{}{s.Op, s.To.X, s.To.Y})
	}
}

// Drawable is an outline in box-local units.
type Drawable []Segment

// SVG renders the outline as an SVG path "d" attribute.
func (d Drawable) SVG() string {
	var b strings.Builder
	for i, s := range d {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(s.Op))
		switch s.Op {
		case CubicTo:
			writePoint(&b, s.C1)
			b.WriteByte(',')
			writePoint(&b, s.C2)
			b.WriteByte(',')
			writePoint(&b, s.To)
		case MoveTo, LineTo:
			writePoint(&b, s.To)
		}
	}
	return b.String()
}

func writePoint(b *strings.Builder, p geom.Vec) {
	b.WriteByte(' ')
	b.WriteString(formatFloat(p.X))
	b.WriteByte(' ')
	b.WriteString(formatFloat(p.Y))
}

func formatFloat(v float64) string {
	// Round away float noise such as 99.99999999999999.
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Transform maps every point of the outline through m.
func (d Drawable) Transform(m geom.Matrix2D) Drawable {
	out := make(Drawable, len(d))
	for i, s := range d {
		out[i] = Segment{
			Op: s.Op,
			C1: m.TransformPoint(s.C1),
			C2: m.TransformPoint(s.C2),
			To: m.TransformPoint(s.To),
		}
	}
	return out
}

// Bounds returns the box of all anchor and control points.
func (d Drawable) Bounds() geom.Rect {
	var r geom.Rect
	first := true
	add := func(p geom.Vec) {
		if first {
			r = geom.Rect{X: p.X, Y: p.Y}
			first = false
			return
		}
		r = r.Extend(p)
	}
	for _, s := range d {
		switch s.Op {
		case CubicTo:
			add(s.C1)
			add(s.C2)
			add(s.To)
		case MoveTo, LineTo:
			add(s.To)
		}
	}
	return r
}

// Flatten samples the outline into polylines, one per subpath. Each line or curve
// contributes n steps.
func (d Drawable) Flatten(n int) [][]geom.Vec {
	if n < 1 {
		n = 1
	}
	var (
		out   [][]geom.Vec
		cur   []geom.Vec
		pen   geom.Vec
		start geom.Vec
	)
	for _, s := range d {
		switch s.Op {
		case MoveTo:
			if len(cur) > 0 {
				out = append(out, cur)
			}
			cur = []geom.Vec{s.To}
			pen, start = s.To, s.To
		case LineTo:
			for i := 1; i <= n; i++ {
				cur = append(cur, pen.Lerp(s.To, float64(i)/float64(n)))
			}
			pen = s.To
		case CubicTo:
			for i := 1; i <= n; i++ {
				cur = append(cur, cubicAt(pen, s.C1, s.C2, s.To, float64(i)/float64(n)))
			}
			pen = s.To
		case Close:
			if pen != start {
				for i := 1; i <= n; i++ {
					cur = append(cur, pen.Lerp(start, float64(i)/float64(n)))
				}
			}
			pen = start
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func cubicAt(p0, p1, p2, p3 geom.Vec, t float64) geom.Vec {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	e := t * t * t
	return geom.Vec{
		X: a*p0.X + b*p1.X + c*p2.X + e*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + e*p3.Y,
	}
}

func pct(p geom.Vec, w, h float64) geom.Vec {
	return geom.Vec{X: p.X / 100 * w, Y: p.Y / 100 * h}
}

// PathToDrawable builds cubic segments from percentage points scaled to a w by h box.
// Segment i runs from point i to i+1 with point i's out handle and point i+1's in handle.
// A closed path gets a final segment back to the first point.
func PathToDrawable(points []document.PathPoint, isClosed bool, w, h float64) Drawable {
	if len(points) == 0 {
		return nil
	}

	d := Drawable{{Op: MoveTo, To: pct(points[0].Pos(), w, h)}}
	if len(points) == 1 {
		return d
	}
	for i := 1; i < len(points); i++ {
		prev, p := points[i-1], points[i]
		d = append(d, Segment{
			Op: CubicTo,
			C1: pct(prev.Handles.Out, w, h),
			C2: pct(p.Handles.In, w, h),
			To: pct(p.Pos(), w, h),
		})
	}
	if isClosed {
		last, first := points[len(points)-1], points[0]
		d = append(d,
			Segment{
				Op: CubicTo,
				C1: pct(last.Handles.Out, w, h),
				C2: pct(first.Handles.In, w, h),
				To: pct(first.Pos(), w, h),
			},
			Segment{Op: Close},
		)
	}
	return d
}

var (
	pentagonVertices = [][2]float64{{50, 0}, {100, 38}, {81, 100}, {19, 100}, {0, 38}}
	starVertices     = [][2]float64{
		{50, 0}, {61.2, 35.2}, {98.2, 35.2}, {68.5, 57}, {79.7, 92.2},
		{50, 70}, {20.3, 92.2}, {31.5, 57}, {1.8, 35.2}, {38.8, 35.2},
	}
)

// PrimitiveToDrawable derives the outline of any shape in a w by h box. Path shapes are
// delegated to PathToDrawable.
func PrimitiveToDrawable(s document.Shape, w, h float64) Drawable {
	switch s.Primitive {
	case document.PrimitivePath:
		return PathToDrawable(s.Points, s.IsClosed, w, h)
	case document.PrimitiveRect:
		var r document.CornerRadii
		if s.BorderRadius != nil {
			r = s.BorderRadius.Radii()
		}
		return roundedRect(w, h, r)
	case document.PrimitiveCircle:
		return ellipse(w, h)
	case document.PrimitivePentagon:
		return polygon(pentagonVertices, w, h)
	case document.PrimitiveStar:
		return polygon(starVertices, w, h)
	case document.PrimitiveHeart:
		return heart(w, h)
	case document.PrimitiveLine, document.PrimitiveDashedLine:
		return Drawable{
			{Op: MoveTo, To: geom.Vec{X: 0, Y: h / 2}},
			{Op: LineTo, To: geom.Vec{X: w, Y: h / 2}},
		}
	}
	return nil
}

func clampRadius(r, w, h float64) float64 {
	return math.Max(0, math.Min(r, math.Min(w/2, h/2)))
}

func roundedRect(w, h float64, r document.CornerRadii) Drawable {
	tl := clampRadius(r.TL, w, h)
	tr := clampRadius(r.TR, w, h)
	br := clampRadius(r.BR, w, h)
	bl := clampRadius(r.BL, w, h)

	d := Drawable{{Op: MoveTo, To: geom.Vec{X: tl, Y: 0}}}
	d = append(d, Segment{Op: LineTo, To: geom.Vec{X: w - tr, Y: 0}})
	if tr > 0 {
		d = append(d, Segment{Op: CubicTo,
			C1: geom.Vec{X: w - tr + tr*Kappa, Y: 0},
			C2: geom.Vec{X: w, Y: tr - tr*Kappa},
			To: geom.Vec{X: w, Y: tr}})
	}
	d = append(d, Segment{Op: LineTo, To: geom.Vec{X: w, Y: h - br}})
	if br > 0 {
		d = append(d, Segment{Op: CubicTo,
			C1: geom.Vec{X: w, Y: h - br + br*Kappa},
			C2: geom.Vec{X: w - br + br*Kappa, Y: h},
			To: geom.Vec{X: w - br, Y: h}})
	}
	d = append(d, Segment{Op: LineTo, To: geom.Vec{X: bl, Y: h}})
	if bl > 0 {
		d = append(d, Segment{Op: CubicTo,
			C1: geom.Vec{X: bl - bl*Kappa, Y: h},
			C2: geom.Vec{X: 0, Y: h - bl + bl*Kappa},
			To: geom.Vec{X: 0, Y: h - bl}})
	}
	d = append(d, Segment{Op: LineTo, To: geom.Vec{X: 0, Y: tl}})
	if tl > 0 {
		d = append(d, Segment{Op: CubicTo,
			C1: geom.Vec{X: 0, Y: tl - tl*Kappa},
			C2: geom.Vec{X: tl - tl*Kappa, Y: 0},
			To: geom.Vec{X: tl, Y: 0}})
	}
	return append(d, Segment{Op: Close})
}

// ellipse starts at the top and runs clockwise, matching the converted circle.
func ellipse(w, h float64) Drawable {
	rx, ry := w/2, h/2
	kx, ky := rx*Kappa, ry*Kappa
	return Drawable{
		{Op: MoveTo, To: geom.Vec{X: rx, Y: 0}},
		{Op: CubicTo, C1: geom.Vec{X: rx + kx, Y: 0}, C2: geom.Vec{X: w, Y: ry - ky}, To: geom.Vec{X: w, Y: ry}},
		{Op: CubicTo, C1: geom.Vec{X: w, Y: ry + ky}, C2: geom.Vec{X: rx + kx, Y: h}, To: geom.Vec{X: rx, Y: h}},
		{Op: CubicTo, C1: geom.Vec{X: rx - kx, Y: h}, C2: geom.Vec{X: 0, Y: ry + ky}, To: geom.Vec{X: 0, Y: ry}},
		{Op: CubicTo, C1: geom.Vec{X: 0, Y: ry - ky}, C2: geom.Vec{X: rx - kx, Y: 0}, To: geom.Vec{X: rx, Y: 0}},
		{Op: Close},
	}
}

func polygon(vertices [][2]float64, w, h float64) Drawable {
	d := make(Drawable, 0, len(vertices)+1)
	for i, v := range vertices {
		op := LineTo
		if i == 0 {
			op = MoveTo
		}
		d = append(d, Segment{Op: op, To: pct(geom.Vec{X: v[0], Y: v[1]}, w, h)})
	}
	return append(d, Segment{Op: Close})
}

func heart(w, h float64) Drawable {
	p := func(x, y float64) geom.Vec { return pct(geom.Vec{X: x, Y: y}, w, h) }
	return Drawable{
		{Op: MoveTo, To: p(50, 30)},
		{Op: CubicTo, C1: p(30, 10), C2: p(10, 30), To: p(10, 50)},
		{Op: CubicTo, C1: p(10, 70), C2: p(50, 90), To: p(50, 90)},
		{Op: CubicTo, C1: p(50, 90), C2: p(90, 70), To: p(90, 50)},
		{Op: CubicTo, C1: p(90, 30), C2: p(70, 10), To: p(50, 30)},
		{Op: Close},
	}
}
