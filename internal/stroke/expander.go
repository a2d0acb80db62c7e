package stroke

import (
	"math"

	"github.com/gogpu/pathstream"
)

// Cap specifies the shape of open subpath endpoints.
type Cap int

const (
	// CapButt ends the stroke flat at the endpoint.
	CapButt Cap = iota
	// CapRound adds a semicircle of radius width/2.
	CapRound
	// CapSquare extends the stroke by width/2 past the endpoint.
	CapSquare
)

// Join specifies the shape of corners between segments.
type Join int

const (
	// JoinMiter extends the outer edges until they meet, within MiterLimit.
	JoinMiter Join = iota
	// JoinRound connects the outer edges with a circular arc.
	JoinRound
	// JoinBevel connects the outer edges with a straight line.
	JoinBevel
)

// Style defines the stroke geometry.
type Style struct {
	Width      float64
	Cap        Cap
	Join       Join
	MiterLimit float64
}

// DefaultStyle returns the SVG defaults: width 1, butt caps, miter joins
// with limit 4.
func DefaultStyle() Style {
	return Style{
		Width:      1,
		Cap:        CapButt,
		Join:       JoinMiter,
		MiterLimit: 4,
	}
}

// Expander converts flattened subpaths into a fill outline.
type Expander struct {
	style     Style
	halfWidth float64
	tolerance float64
}

// NewExpander returns an expander for style using the default tolerance
// for round joins and caps.
func NewExpander(style Style) *Expander {
	if style.MiterLimit < 1 {
		style.MiterLimit = 1
	}
	return &Expander{
		style:     style,
		halfWidth: math.Abs(style.Width) / 2,
		tolerance: pathstream.DefaultTolerance,
	}
}

// SetTolerance sets the maximum deviation of round joins and caps from a
// true arc. Non-positive values are ignored.
func (e *Expander) SetTolerance(tol float64) {
	if tol > 0 {
		e.tolerance = tol
	}
}

// Expand returns the fill outline of the stroked subpaths. A zero width
// stroke produces an empty path.
func (e *Expander) Expand(lines []pathstream.Polyline) *pathstream.Path {
	out := pathstream.NewPath()
	if e.halfWidth == 0 {
		return out
	}
	for _, pl := range lines {
		pts := dedupe(pl.Points)
		switch {
		case len(pts) == 0:
		case len(pts) == 1:
			e.dot(out, pts[0])
		case pl.Closed && len(pts) > 2:
			emitLoop(out, e.offsetLoop(pts))
			emitLoop(out, e.offsetLoop(reversed(pts)))
		default:
			e.open(out, pts)
		}
	}
	return out
}

// open emits one polygon around an open polyline.
func (e *Expander) open(out *pathstream.Path, pts []pathstream.Point) {
	rev := reversed(pts)
	var ring []pathstream.Point
	ring = append(ring, e.offsetOpen(pts)...)
	ring = append(ring, e.capPoints(pts[len(pts)-1], direction(pts[len(pts)-2], pts[len(pts)-1]))...)
	ring = append(ring, e.offsetOpen(rev)...)
	ring = append(ring, e.capPoints(pts[0], direction(pts[1], pts[0]))...)
	emitLoop(out, ring)
}

// dot handles a zero-length subpath: only round and square caps are visible.
func (e *Expander) dot(out *pathstream.Path, p pathstream.Point) {
	hw := e.halfWidth
	switch e.style.Cap {
	case CapRound:
		emitLoop(out, e.arc(p, 0, 2*math.Pi, false))
	case CapSquare:
		emitLoop(out, []pathstream.Point{
			p.Add(pathstream.Pt(-hw, -hw)), p.Add(pathstream.Pt(hw, -hw)),
			p.Add(pathstream.Pt(hw, hw)), p.Add(pathstream.Pt(-hw, hw)),
		})
	}
}

// offsetOpen walks pts emitting the left offset with joins at interior
// vertices.
func (e *Expander) offsetOpen(pts []pathstream.Point) []pathstream.Point {
	n := len(pts)
	res := make([]pathstream.Point, 0, 2*n)
	d := direction(pts[0], pts[1])
	res = append(res, pts[0].Add(e.normal(d)))
	for i := 1; i < n-1; i++ {
		dNext := direction(pts[i], pts[i+1])
		res = append(res, e.join(pts[i], d, dNext)...)
		d = dNext
	}
	res = append(res, pts[n-1].Add(e.normal(d)))
	return res
}

// offsetLoop emits the left offset of a closed polyline with joins at every
// vertex.
func (e *Expander) offsetLoop(pts []pathstream.Point) []pathstream.Point {
	n := len(pts)
	res := make([]pathstream.Point, 0, 2*n)
	for i := range n {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		res = append(res, e.join(pts[i], direction(prev, pts[i]), direction(pts[i], next))...)
	}
	return res
}

// join returns the offset points at vertex p between incoming direction d0
// and outgoing direction d1, on the left side.
func (e *Expander) join(p, d0, d1 pathstream.Point) []pathstream.Point {
	n0 := e.normal(d0)
	n1 := e.normal(d1)
	cross := d0.Cross(d1)
	if math.Abs(cross) < 1e-9 && d0.Dot(d1) > 0 {
		return []pathstream.Point{p.Add(n0)}
	}
	if cross > 0 {
		// Inner side: route through the vertex to keep winding positive.
		return []pathstream.Point{p.Add(n0), p, p.Add(n1)}
	}

	switch e.style.Join {
	case JoinRound:
		a0 := math.Atan2(n0.Y, n0.X)
		a1 := math.Atan2(n1.Y, n1.X)
		return e.arc(p, a0, a1, true)
	case JoinMiter:
		// Miter length ratio is 1/sin(theta/2) where theta is the interior angle.
		cosTheta := -d0.Dot(d1)
		ratio := math.Sqrt(2 / (1 - cosTheta))
		if ratio <= e.style.MiterLimit {
			bis := n0.Add(n1).Normalize()
			return []pathstream.Point{p.Add(bis.Mul(e.halfWidth * ratio))}
		}
	}
	return []pathstream.Point{p.Add(n0), p.Add(n1)}
}

// capPoints returns the points connecting the left offset of an endpoint
// to its right offset, for a stroke arriving with direction d.
func (e *Expander) capPoints(p, d pathstream.Point) []pathstream.Point {
	n := e.normal(d)
	switch e.style.Cap {
	case CapRound:
		// Sweep from the left offset through p+d to the right offset.
		a0 := math.Atan2(n.Y, n.X)
		arc := e.arc(p, a0, a0-math.Pi, false)
		// The endpoints are already emitted by the offsets.
		return arc[1 : len(arc)-1]
	case CapSquare:
		ext := d.Mul(e.halfWidth)
		return []pathstream.Point{p.Add(n).Add(ext), p.Sub(n).Add(ext)}
	}
	return nil
}

// arc returns points on a circle of radius halfWidth around c from angle a0
// to a1. When shortest is set the arc takes the shorter way round; otherwise
// it sweeps exactly a1-a0.
func (e *Expander) arc(c pathstream.Point, a0, a1 float64, shortest bool) []pathstream.Point {
	sweep := a1 - a0
	if shortest {
		for sweep > math.Pi {
			sweep -= 2 * math.Pi
		}
		for sweep < -math.Pi {
			sweep += 2 * math.Pi
		}
	}
	step := 2 * math.Acos(math.Max(-1, 1-e.tolerance/e.halfWidth))
	if step <= 0 || math.IsNaN(step) {
		step = math.Pi / 8
	}
	segs := max(int(math.Ceil(math.Abs(sweep)/step)), 1)
	pts := make([]pathstream.Point, 0, segs+1)
	for i := 0; i <= segs; i++ {
		a := a0 + sweep*float64(i)/float64(segs)
		sin, cos := math.Sincos(a)
		pts = append(pts, c.Add(pathstream.Pt(cos, sin).Mul(e.halfWidth)))
	}
	return pts
}

// normal returns the left normal of unit direction d scaled to half width.
// Left is the side a positive cross product turns toward.
func (e *Expander) normal(d pathstream.Point) pathstream.Point {
	return d.Perp().Mul(e.halfWidth)
}

func direction(a, b pathstream.Point) pathstream.Point {
	return b.Sub(a).Normalize()
}

func dedupe(pts []pathstream.Point) []pathstream.Point {
	res := make([]pathstream.Point, 0, len(pts))
	for _, p := range pts {
		if len(res) == 0 || res[len(res)-1] != p {
			res = append(res, p)
		}
	}
	return res
}

func reversed(pts []pathstream.Point) []pathstream.Point {
	res := make([]pathstream.Point, len(pts))
	for i, p := range pts {
		res[len(pts)-1-i] = p
	}
	return res
}

func emitLoop(out *pathstream.Path, ring []pathstream.Point) {
	if len(ring) < 3 {
		return
	}
	out.MoveTo(ring[0].X, ring[0].Y)
	for _, p := range ring[1:] {
		out.LineTo(p.X, p.Y)
	}
	out.Close()
}
