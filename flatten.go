package pathstream

import "math"

// DefaultTolerance is the maximum deviation between a curve and its
// linear approximation, in device pixels.
const DefaultTolerance = 0.25

// maxFlattenDepth bounds recursive subdivision so that huge or
// non-finite control points cannot recurse without end.
const maxFlattenDepth = 16

// Polyline is one flattened subpath.
type Polyline struct {
	Points []Point
	Closed bool
}

// Flatten converts the path into polylines, subdividing curves until they
// deviate from their chords by at most tolerance. Empty subpaths are dropped
// and consecutive duplicate points are merged.
func (p *Path) Flatten(tolerance float64) []Polyline {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	f := flattener{tol: tolerance}
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			f.finish(false)
			f.cur = append(f.cur, e.Point)
			f.start = e.Point
		case LineTo:
			f.ensureStarted()
			f.add(e.Point)
		case QuadTo:
			f.ensureStarted()
			f.quad(f.last(), e.Control, e.Point, 0)
		case CubicTo:
			f.ensureStarted()
			f.cubic(f.last(), e.Control1, e.Control2, e.Point, 0)
		case Close:
			f.finish(true)
		}
	}
	f.finish(false)
	return f.out
}

type flattener struct {
	tol   float64
	start Point
	cur   []Point
	out   []Polyline
}

func (f *flattener) ensureStarted() {
	if len(f.cur) == 0 {
		f.cur = append(f.cur, f.start)
	}
}

func (f *flattener) last() Point {
	return f.cur[len(f.cur)-1]
}

func (f *flattener) add(pt Point) {
	if pt != f.last() {
		f.cur = append(f.cur, pt)
	}
}

func (f *flattener) finish(closed bool) {
	if len(f.cur) > 1 && closed && f.cur[len(f.cur)-1] == f.cur[0] {
		f.cur = f.cur[:len(f.cur)-1]
	}
	if len(f.cur) > 1 {
		f.out = append(f.out, Polyline{Points: f.cur, Closed: closed})
	}
	if len(f.cur) > 0 {
		// A new subpath after Close starts at the previous start point.
		f.start = f.cur[0]
	}
	f.cur = nil
}

// quad uses de Casteljau subdivision at t=0.5 until the curve midpoint is
// within tolerance of the chord midpoint.
func (f *flattener) quad(p0, c, p1 Point, depth int) {
	mid := p0.Mul(0.25).Add(c.Mul(0.5)).Add(p1.Mul(0.25))
	d := mid.Sub(p0.Lerp(p1, 0.5))
	if depth >= maxFlattenDepth || d.Dot(d) <= f.tol*f.tol {
		f.add(p1)
		return
	}
	a := p0.Lerp(c, 0.5)
	b := c.Lerp(p1, 0.5)
	m := a.Lerp(b, 0.5)
	f.quad(p0, a, m, depth+1)
	f.quad(m, b, p1, depth+1)
}

// cubic checks both control points against the chord. The factor of 16
// accounts for the cubic approximation error bound.
func (f *flattener) cubic(p0, c1, c2, p1 Point, depth int) {
	u := c1.Mul(3).Sub(p0.Mul(2)).Sub(p1)
	v := c2.Mul(3).Sub(p0).Sub(p1.Mul(2))
	distSq := math.Max(u.Dot(u), v.Dot(v))
	if depth >= maxFlattenDepth || distSq <= 16*f.tol*f.tol {
		f.add(p1)
		return
	}
	ab1 := p0.Lerp(c1, 0.5)
	ab2 := c1.Lerp(c2, 0.5)
	ab3 := c2.Lerp(p1, 0.5)
	bc1 := ab1.Lerp(ab2, 0.5)
	bc2 := ab2.Lerp(ab3, 0.5)
	m := bc1.Lerp(bc2, 0.5)
	f.cubic(p0, ab1, bc1, m, depth+1)
	f.cubic(m, bc2, ab3, p1, depth+1)
}

// SignedArea returns twice the signed area of the polyline treated as a
// closed polygon. Positive means counter-clockwise in a Y-up frame.
func (pl Polyline) SignedArea() float64 {
	n := len(pl.Points)
	area := 0.0
	for i := range n {
		area += pl.Points[i].Cross(pl.Points[(i+1)%n])
	}
	return area
}
