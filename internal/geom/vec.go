// Package geom holds the 2D primitives shared by the path model, the node editor and
// the transform engine.
package geom

import "math"

// Vec is a point or a displacement. The JSON shape matches path handles: {"x":..,"y":..}.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Len returns the euclidean length.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the distance between two points.
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }

// Near reports whether both components are within eps.
func (v Vec) Near(o Vec, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Lerp interpolates between v and o.
func (v Vec) Lerp(o Vec, t float64) Vec {
	return Vec{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Rotate rotates v by degrees around the origin (clockwise on a y-down canvas).
func (v Vec) Rotate(degrees float64) Vec {
	rad := Radians(degrees)
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Vec{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// ToLocal expresses a world-space delta in the frame of an object rotated by degrees.
func ToLocal(delta Vec, degrees float64) Vec {
	return delta.Rotate(-degrees)
}

// ToWorld is the inverse of ToLocal.
func ToWorld(delta Vec, degrees float64) Vec {
	return delta.Rotate(degrees)
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// ProjectOnSegment returns the closest point to p on segment ab, its clamped parameter
// and the distance from p. ok is false for a zero-length segment.
func ProjectOnSegment(p, a, b Vec) (proj Vec, t, dist float64, ok bool) {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return a, 0, p.Dist(a), false
	}
	t = ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = Clamp(t, 0, 1)
	proj = a.Add(ab.Scale(t))
	return proj, t, p.Dist(proj), true
}
