package pathstream

import (
	"math"
	"testing"
)

func TestRectanglePath(t *testing.T) {
	p := Rectangle(10, 20, 30, 40)
	if p.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", p.Len())
	}
	if _, ok := p.Elements()[0].(MoveTo); !ok {
		t.Errorf("first element = %T, want MoveTo", p.Elements()[0])
	}
	if _, ok := p.Elements()[4].(Close); !ok {
		t.Errorf("last element = %T, want Close", p.Elements()[4])
	}
	b := p.Bounds()
	if b != NewRect(10, 20, 30, 40) {
		t.Errorf("Bounds() = %+v", b)
	}
}

func TestPathTransform(t *testing.T) {
	p := NewPath()
	p.MoveTo(1, 2)
	p.QuadraticTo(3, 4, 5, 6)
	p.CubicTo(7, 8, 9, 10, 11, 12)
	p.Close()

	m := Scale(2, -1)
	q := p.Transform(m)
	if q.Len() != p.Len() {
		t.Fatalf("Len() = %d, want %d", q.Len(), p.Len())
	}
	c, ok := q.Elements()[2].(CubicTo)
	if !ok {
		t.Fatalf("element 2 = %T, want CubicTo", q.Elements()[2])
	}
	if c.Control1 != Pt(14, -8) || c.Point != Pt(22, -12) {
		t.Errorf("transformed cubic = %+v", c)
	}
	// Source untouched.
	if p.Elements()[0].(MoveTo).Point != Pt(1, 2) {
		t.Error("Transform modified the source path")
	}
}

func TestPathCloneIndependent(t *testing.T) {
	p := Rectangle(0, 0, 1, 1)
	c := p.Clone()
	c.LineTo(5, 5)
	if p.Len() == c.Len() {
		t.Error("Clone shares element storage")
	}
}

func TestCircleBounds(t *testing.T) {
	b := Circle(50, 50, 10).Bounds()
	if math.Abs(b.Width()-20) > 1e-9 || math.Abs(b.Height()-20) > 1e-9 {
		t.Errorf("circle bounds = %+v", b)
	}
}

func TestEmptyPathBounds(t *testing.T) {
	if b := NewPath().Bounds(); b != (Rect{}) {
		t.Errorf("empty bounds = %+v, want zero", b)
	}
}

func TestRectIsValid(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"unit", NewRect(0, 0, 1, 1), true},
		{"offset", NewRect(-5, -5, 10, 2), true},
		{"zero width", NewRect(0, 0, 0, 1), false},
		{"negative height", NewRect(0, 0, 1, -1), false},
		{"nan", NewRect(math.NaN(), 0, 1, 1), false},
		{"inf", NewRect(0, 0, math.Inf(1), 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectScaleAndUnion(t *testing.T) {
	r := NewRect(0, 0, 1139, 774).Scale(2)
	if r.Width() != 2278 || r.Height() != 1548 {
		t.Errorf("Scale(2) = %+v", r)
	}
	u := NewRect(0, 0, 1, 1).Union(NewRect(2, -1, 1, 1))
	if u != (Rect{Min: Pt(0, -1), Max: Pt(3, 1)}) {
		t.Errorf("Union = %+v", u)
	}
	if got := (Rect{}).Union(r); got != r {
		t.Errorf("empty Union = %+v", got)
	}
}

func TestFlattenLines(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(10, 0) // duplicate, merged
	p.LineTo(10, 10)
	p.LineTo(0, 0) // back to start, dropped on close
	p.Close()
	p.MoveTo(50, 50) // empty subpath, dropped

	lines := p.Flatten(DefaultTolerance)
	if len(lines) != 1 {
		t.Fatalf("Flatten() returned %d polylines, want 1", len(lines))
	}
	if !lines[0].Closed {
		t.Error("polyline should be closed")
	}
	if len(lines[0].Points) != 3 {
		t.Errorf("got %d points, want 3: %v", len(lines[0].Points), lines[0].Points)
	}
}

func TestFlattenCurveWithinTolerance(t *testing.T) {
	const r = 100.0
	lines := Circle(0, 0, r).Flatten(0.1)
	if len(lines) != 1 {
		t.Fatalf("Flatten() returned %d polylines", len(lines))
	}
	pts := lines[0].Points
	if len(pts) < 16 {
		t.Errorf("circle flattened to only %d points", len(pts))
	}
	for _, pt := range pts {
		if d := math.Abs(pt.Length() - r); d > 0.2 {
			t.Errorf("point %v is %.3f off the circle", pt, d)
		}
	}
}

func TestFlattenOpenSubpath(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.QuadraticTo(5, 10, 10, 0)
	lines := p.Flatten(0.25)
	if len(lines) != 1 || lines[0].Closed {
		t.Fatalf("unexpected flatten result: %+v", lines)
	}
	last := lines[0].Points[len(lines[0].Points)-1]
	if last != Pt(10, 0) {
		t.Errorf("last point = %v, want (10, 0)", last)
	}
}

func TestFlattenNonFiniteTerminates(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.CubicTo(math.Inf(1), 0, 0, math.Inf(1), 1, 1)
	_ = p.Flatten(0.25)
}

func TestSignedArea(t *testing.T) {
	pl := Polyline{Points: []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, Closed: true}
	if got := pl.SignedArea(); got != 200 {
		t.Errorf("SignedArea() = %v, want 200", got)
	}
}
