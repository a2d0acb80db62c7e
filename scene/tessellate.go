package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/pathstream"
)

var (
	// ErrBehindCamera is a path error for geometry projected onto or
	// behind the perspective eye plane.
	ErrBehindCamera = errors.New("scene: geometry behind the camera")

	// ErrNonFiniteGeometry is a path error for NaN or infinite coordinates.
	ErrNonFiniteGeometry = errors.New("scene: non-finite coordinates")

	// ErrGeometryTooLarge is a path error for outlines exceeding
	// MaxTriangles after flattening.
	ErrGeometryTooLarge = errors.New("scene: geometry too large")
)

// MaxTriangles bounds the fan triangles of a single path.
const MaxTriangles = 1 << 22

// coverPadding is added around the bounds of the cover quad so that
// anti-aliased edges are fully covered during the cover pass.
const coverPadding = 1.0

// miterClamp bounds how far a dilated vertex may move, as a multiple of
// the dilation, at sharp corners.
const miterClamp = 4.0

// Tessellation is the device-space geometry of one path.
type Tessellation struct {
	// Vertices holds fan triangles as (x, y) pairs, 6 floats per triangle.
	Vertices []float32

	// Cover is the padded bounding quad as two triangles.
	Cover [12]float32

	// Bounds is the tight bounding box of Vertices.
	Bounds pathstream.Rect

	// Rule is the effective fill rule; stroked paths always use non-zero.
	Rule pathstream.FillRule

	// Culled is set when the path lies entirely outside the view box.
	Culled bool
}

// TriangleCount returns the number of fan triangles.
func (t *Tessellation) TriangleCount() int {
	return len(t.Vertices) / 6
}

func tessellate(dp *DrawPath, proj projection, viewBox pathstream.Rect, opts BuildOptions) (*Tessellation, error) {
	tol := opts.tolerance()
	if opts.SubpixelAA {
		tol /= 3
	}
	scale := proj.localScale(dp.Outline.Bounds().Min)
	localTol := tol
	if scale > 0 && !math.IsInf(scale, 0) && !math.IsNaN(scale) {
		localTol = tol / scale
	}

	outline := dp.Outline
	rule := dp.FillRule
	if dp.Stroke != nil {
		outline = dp.Stroke.expander(localTol).Expand(outline.Flatten(localTol))
		rule = pathstream.FillRuleNonZero
	}

	contours := outline.Flatten(localTol)
	for ci := range contours {
		pts := contours[ci].Points
		for k, p := range pts {
			q, ok := proj.apply(p)
			if !ok {
				return nil, ErrBehindCamera
			}
			if !q.IsFinite() {
				return nil, fmt.Errorf("%w: %v", ErrNonFiniteGeometry, q)
			}
			pts[k] = q
		}
	}

	if !opts.Dilation.IsZero() {
		if sign := outwardSign(contours); sign != 0 {
			for ci := range contours {
				contours[ci].Points = dilate(contours[ci].Points, opts.Dilation, sign)
			}
		}
	}

	t := &Tessellation{Rule: rule}
	var ft fanTessellator
	for _, c := range contours {
		ft.addContour(c.Points)
		if ft.triangleCount() > MaxTriangles {
			return nil, fmt.Errorf("%w: more than %d triangles", ErrGeometryTooLarge, MaxTriangles)
		}
	}
	if ft.triangleCount() == 0 {
		return t, nil
	}
	if !intersects(ft.bounds(), viewBox) {
		t.Culled = true
		return t, nil
	}

	if opts.SubpixelAA {
		ft.scaleX(3)
	}
	t.Vertices = ft.vertices
	t.Bounds = ft.bounds()
	t.Cover = coverQuad(t.Bounds)
	return t, nil
}

func intersects(a, b pathstream.Rect) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y
}

// outwardSign returns the factor that turns a left edge normal into an
// outward one for the whole outline, or 0 for an outline with no area.
// Holes wound against the outer contour shrink under that same factor.
func outwardSign(contours []pathstream.Polyline) float64 {
	area := 0.0
	for _, c := range contours {
		if len(c.Points) >= 3 {
			area += c.SignedArea()
		}
	}
	switch {
	case area > 0:
		// Positive area turns left, so the left normal points inward.
		return -1
	case area < 0:
		return 1
	}
	return 0
}

// dilate moves every vertex of a closed contour along the bisector of its
// adjacent edge normals, scaled per axis by d. sign comes from outwardSign.
func dilate(pts []pathstream.Point, d pathstream.Point, sign float64) []pathstream.Point {
	n := len(pts)
	if n < 3 {
		return pts
	}

	out := make([]pathstream.Point, n)
	for i := range n {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		n0 := pts[i].Sub(prev).Normalize().Perp().Mul(sign)
		n1 := next.Sub(pts[i]).Normalize().Perp().Mul(sign)
		bis := n0.Add(n1).Normalize()
		if bis.IsZero() {
			bis = n1
		}
		k := miterClamp
		if c := bis.Dot(n1); c > 1/miterClamp {
			k = 1 / c
		}
		out[i] = pts[i].Add(bis.Mul(k).Hadamard(d))
	}
	return out
}

// coverQuad returns 6 vertices (2 triangles) covering r plus coverPadding.
//
//	Triangle 1: (minX, minY), (maxX, minY), (maxX, maxY)
//	Triangle 2: (minX, minY), (maxX, maxY), (minX, maxY)
func coverQuad(r pathstream.Rect) [12]float32 {
	minX := float32(r.Min.X - coverPadding)
	minY := float32(r.Min.Y - coverPadding)
	maxX := float32(r.Max.X + coverPadding)
	maxY := float32(r.Max.Y + coverPadding)
	return [12]float32{
		minX, minY, maxX, minY, maxX, maxY,
		minX, minY, maxX, maxY, minX, maxY,
	}
}

// fanTessellator emits triangle fans for closed contours.
//
// For each contour the first vertex is the fan center and every following
// edge contributes the triangle (v0, vi, vi+1). The closing edge back to
// v0 is degenerate and never emitted. The stencil pass resolves winding,
// so this is correct for any topology.
type fanTessellator struct {
	vertices  []float32
	min, max  pathstream.Point
	hasBounds bool
}

func (ft *fanTessellator) addContour(pts []pathstream.Point) {
	if len(pts) < 3 {
		return
	}
	v0 := pts[0]
	for i := 1; i+1 < len(pts); i++ {
		ft.emit(v0, pts[i], pts[i+1])
	}
}

// emit appends triangle (a, b, c), skipping those with zero area.
func (ft *fanTessellator) emit(a, b, c pathstream.Point) {
	if b.Sub(a).Cross(c.Sub(a)) == 0 {
		return
	}
	ft.vertices = append(ft.vertices,
		float32(a.X), float32(a.Y),
		float32(b.X), float32(b.Y),
		float32(c.X), float32(c.Y),
	)
	ft.grow(a)
	ft.grow(b)
	ft.grow(c)
}

func (ft *fanTessellator) grow(p pathstream.Point) {
	if !ft.hasBounds {
		ft.min, ft.max = p, p
		ft.hasBounds = true
		return
	}
	ft.min = pathstream.Pt(math.Min(ft.min.X, p.X), math.Min(ft.min.Y, p.Y))
	ft.max = pathstream.Pt(math.Max(ft.max.X, p.X), math.Max(ft.max.Y, p.Y))
}

func (ft *fanTessellator) triangleCount() int {
	return len(ft.vertices) / 6
}

func (ft *fanTessellator) bounds() pathstream.Rect {
	return pathstream.Rect{Min: ft.min, Max: ft.max}
}

func (ft *fanTessellator) scaleX(k float64) {
	for i := 0; i < len(ft.vertices); i += 2 {
		ft.vertices[i] *= float32(k)
	}
	ft.min.X *= k
	ft.max.X *= k
}
