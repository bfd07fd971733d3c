// Package geometry implements the wrapped-space math LoBotomy plays on: a
// toroidal field where movement, blast radii and scans all wrap at the
// edges instead of stopping at them.
package geometry

import "math"

// Point is a coordinate in the field. It carries no notion of which field it
// belongs to; callers pair it with a Field when wrapping matters.
type Point struct {
	X, Y float64
}

// Field is the toroidal battlefield: both axes wrap modulo their size.
type Field struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle, half-open on the high edge: a point p
// is contained iff X1 <= p.X < X2 and Y1 <= p.Y < Y2.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// Contains reports whether p lies within r under half-open containment.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X1 && p.X < r.X2 && p.Y >= r.Y1 && p.Y < r.Y2
}

// mod is the mathematical (always non-negative) modulo, unlike Go's %.
func mod(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	return r
}

// Angle returns the bearing from a to b: atan2(dx, dy) mod 2*pi. Note the
// atan2(dx, dy) argument order rather than the usual atan2(dy, dx) — 0
// points along +y, increasing clockwise in screen convention. This order is
// observable over the wire via detect and hit and must not be "fixed".
func Angle(a, b Point) float64 {
	return mod(math.Atan2(b.X-a.X, b.Y-a.Y), 2*math.Pi)
}

// Distance returns the (non-wrapped) Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// MoveWrapped returns p displaced by distance along angle, wrapped into f.
// angle uses the same bearing convention as Angle: 0 moves along +y and
// pi/2 along +x.
func MoveWrapped(p Point, angle, distance float64, f Field) Point {
	x := mod(p.X+math.Sin(angle)*distance, f.Width)
	y := mod(p.Y+math.Cos(angle)*distance, f.Height)
	return Point{X: x, Y: y}
}

// shiftsPerAxis are the torus translates considered when resolving wrapped
// distance: -1, 0 and +1 field widths/heights.
var shiftsPerAxis = [3]float64{-1, 0, 1}

// WrappedRadius answers whether some torus translate of p — p shifted by
// (i*f.Width, j*f.Height) for i, j in {-1, 0, 1} — lies within r of center.
// It returns the translate that minimizes the distance to center (the short,
// wrapped path), which is what detect/hit report bearings along; the
// boolean is whether that translate is within r.
//
// Because the shift that minimizes |center - translate| is exactly the
// minimum-image convention, it is computed directly rather than by trying
// all nine shift combinations, but the result is identical to the brute
// force search the spec describes.
func WrappedRadius(field Field, center, p Point, r float64) (Point, bool) {
	dx := p.X - center.X
	dx -= field.Width * math.Round(dx/field.Width)
	dy := p.Y - center.Y
	dy -= field.Height * math.Round(dy/field.Height)

	translate := Point{X: center.X + dx, Y: center.Y + dy}
	dist := math.Sqrt(dx*dx + dy*dy)
	return translate, dist <= r
}

// axisIntervals splits the (possibly out-of-field) interval [lo, hi) along
// one axis of size `size` into sub-intervals whose union is the interval's
// wrapped image: the primary clip, plus a mirror for whichever edge the
// interval spills past. An interval no longer than size yields at most two
// in-field sub-intervals; one that spills past both edges yields three, and
// its mirrors are not clipped to [0, size).
func axisIntervals(lo, hi, size float64) [][2]float64 {
	var out [][2]float64

	clo, chi := math.Max(lo, 0), math.Min(hi, size)
	if clo < chi {
		out = append(out, [2]float64{clo, chi})
	}
	if lo < 0 {
		wlo, whi := size+lo, size
		if wlo < whi {
			out = append(out, [2]float64{wlo, whi})
		}
	}
	if hi > size {
		wlo, whi := 0.0, hi-size
		if wlo < whi {
			out = append(out, [2]float64{wlo, whi})
		}
	}
	return out
}

// GenerateWrappedBounds yields one or more sub-rectangles, all fully inside
// field, whose union covers the wrapped image of target: the clipped target
// itself plus up to three mirrored rectangles for edge/corner spillover.
// That holds for a target no larger than field on either axis; a larger
// target yields more rectangles, some of which reach outside field.
// Used to turn a radius query centered anywhere (including near an edge)
// into a handful of in-field box queries against the spatial index.
func GenerateWrappedBounds(field Field, target Rect) []Rect {
	xs := axisIntervals(target.X1, target.X2, field.Width)
	ys := axisIntervals(target.Y1, target.Y2, field.Height)

	rects := make([]Rect, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			rects = append(rects, Rect{X1: x[0], Y1: y[0], X2: x[1], Y2: y[1]})
		}
	}
	return rects
}
