package pathstream

import "math"

// Rect is an axis-aligned rectangle given by its min and max corners.
type Rect struct {
	Min, Max Point
}

// NewRect creates a rectangle from an origin and a size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{Min: Pt(x, y), Max: Pt(x+w, y+h)}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return r.Min
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Size returns (width, height) as a Point.
func (r Rect) Size() Point {
	return Pt(r.Width(), r.Height())
}

// IsValid reports whether the rectangle has finite, strictly positive size.
func (r Rect) IsValid() bool {
	w, h := r.Width(), r.Height()
	return r.Min.IsFinite() && r.Max.IsFinite() && w > 0 && h > 0 &&
		!math.IsInf(w, 0) && !math.IsInf(h, 0)
}

// Scale returns the rectangle with both corners multiplied by k.
func (r Rect) Scale(k float64) Rect {
	return Rect{Min: r.Min.Mul(k), Max: r.Max.Mul(k)}
}

// Union returns the smallest rectangle containing both r and o.
// The zero Rect acts as the empty set.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	if o == (Rect{}) {
		return r
	}
	return Rect{
		Min: Pt(math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)),
		Max: Pt(math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)),
	}
}
