package svg

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/command"
	"github.com/gogpu/pathstream/scene"
)

func mustParse(t *testing.T, doc string) *scene.Scene {
	t.Helper()
	s, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func rectApprox(a, b pathstream.Rect) bool {
	return approx(a.Min.X, b.Min.X) && approx(a.Min.Y, b.Min.Y) &&
		approx(a.Max.X, b.Max.X) && approx(a.Max.Y, b.Max.Y)
}

func TestParseViewBox(t *testing.T) {
	tests := []struct {
		doc  string
		want pathstream.Rect
	}{
		{`<svg viewBox="0 0 1139 774"/>`, pathstream.NewRect(0, 0, 1139, 774)},
		{`<svg viewBox="-10,-20,30,40"></svg>`, pathstream.NewRect(-10, -20, 30, 40)},
		{`<svg width="200px" height="100"/>`, pathstream.NewRect(0, 0, 200, 100)},
		{`<?xml version="1.0"?><!-- c --><svg xmlns="http://www.w3.org/2000/svg" width="5" height="6"/>`, pathstream.NewRect(0, 0, 5, 6)},
	}
	for _, tt := range tests {
		if got := mustParse(t, tt.doc).ViewBox(); got != tt.want {
			t.Errorf("%s: ViewBox() = %+v, want %+v", tt.doc, got, tt.want)
		}
	}
}

func TestParseRootErrors(t *testing.T) {
	tests := []struct {
		doc  string
		want error
	}{
		{``, ErrNoRoot},
		{`<html/>`, ErrNoRoot},
		{`<svg/>`, ErrNoViewBox},
		{`<svg viewBox="0 0 10"/>`, ErrNoViewBox},
		{`<svg width="10em" height="10"/>`, ErrNoViewBox},
		{`<svg viewBox="0 0 0 10"/>`, scene.ErrDegenerateViewBox},
	}
	for _, tt := range tests {
		if _, err := Parse(strings.NewReader(tt.doc)); !errors.Is(err, tt.want) {
			t.Errorf("%q: err = %v, want %v", tt.doc, err, tt.want)
		}
	}
}

func TestParseShapes(t *testing.T) {
	s := mustParse(t, `<svg viewBox="0 0 100 100">
		<rect x="10" y="20" width="30" height="40" fill="red"/>
		<circle cx="50" cy="50" r="10"/>
		<ellipse cx="50" cy="50" rx="20" ry="5"/>
		<polygon points="0,0 10,0 10,10"/>
		<polyline points="0 0 5 5 10 0" fill="none" stroke="blue"/>
		<line x1="0" y1="0" x2="10" y2="10" stroke="black"/>
		<rect width="0" height="10"/>
		<defs><rect width="10" height="10"/></defs>
		<text>ignored</text>
	</svg>`)

	paths := s.Paths()
	if len(paths) != 6 {
		t.Fatalf("got %d paths, want 6", len(paths))
	}
	if got := paths[0].Outline.Bounds(); got != pathstream.NewRect(10, 20, 30, 40) {
		t.Errorf("rect bounds = %+v", got)
	}
	if paths[0].Color != pathstream.RGB(1, 0, 0) {
		t.Errorf("rect color = %+v", paths[0].Color)
	}
	if paths[1].Color != pathstream.Black {
		t.Errorf("default fill = %+v, want black", paths[1].Color)
	}
	if got := paths[2].Outline.Bounds(); !rectApprox(got, pathstream.NewRect(30, 45, 40, 10)) {
		t.Errorf("ellipse bounds = %+v", got)
	}
	if paths[3].Stroke != nil {
		t.Error("polygon should be filled")
	}
	if paths[4].Stroke == nil || paths[4].Color != pathstream.RGB(0, 0, 1) {
		t.Errorf("polyline = %+v, want blue stroke", paths[4])
	}
	if paths[5].Stroke == nil {
		t.Error("line should only be stroked")
	}
	if paths[0].Name != "rect" {
		t.Errorf("Name = %q", paths[0].Name)
	}
}

func TestParseInheritance(t *testing.T) {
	s := mustParse(t, `<svg viewBox="0 0 100 100">
		<g fill="#00ff00" fill-rule="evenodd" opacity="0.5" transform="translate(10,20)">
			<g style="fill-opacity: 0.5; stroke: red; stroke-width: 2">
				<rect id="inner" width="10" height="10" transform="scale(2)"/>
			</g>
			<rect width="1" height="1" fill="inherit" fill-rule="nonzero"/>
		</g>
	</svg>`)

	paths := s.Paths()
	if len(paths) != 3 {
		t.Fatalf("got %d paths, want 3", len(paths))
	}

	fill, stroke, sibling := paths[0], paths[1], paths[2]
	if fill.FillRule != pathstream.FillRuleEvenOdd {
		t.Errorf("fill rule = %v, want inherited evenodd", fill.FillRule)
	}
	if want := (pathstream.RGBA{G: 1, A: 0.25}); fill.Color != want {
		t.Errorf("fill color = %+v, want %+v", fill.Color, want)
	}
	if got := fill.Outline.Bounds(); got != pathstream.NewRect(10, 20, 20, 20) {
		t.Errorf("transformed bounds = %+v", got)
	}
	if stroke.Stroke == nil || stroke.Stroke.Width != 4 {
		t.Errorf("stroke = %+v, want width scaled to 4", stroke.Stroke)
	}
	if want := (pathstream.RGBA{R: 1, A: 0.5}); stroke.Color != want {
		t.Errorf("stroke color = %+v, want %+v", stroke.Color, want)
	}
	if fill.Name != "rect id=inner" {
		t.Errorf("Name = %q", fill.Name)
	}
	if sibling.FillRule != pathstream.FillRuleNonZero || sibling.Color != (pathstream.RGBA{G: 1, A: 0.5}) {
		t.Errorf("sibling = %+v", sibling)
	}
}

func TestParsePaint(t *testing.T) {
	tests := []struct {
		in   string
		want *pathstream.RGBA
	}{
		{"none", nil},
		{"#f00", &pathstream.RGBA{R: 1, A: 1}},
		{"#0000ff", &pathstream.RGBA{B: 1, A: 1}},
		{"rgb(255, 0, 0)", &pathstream.RGBA{R: 1, A: 1}},
		{"rgb(0%, 100%, 0%)", &pathstream.RGBA{G: 1, A: 1}},
		{"White", &pathstream.RGBA{R: 1, G: 1, B: 1, A: 1}},
	}
	for _, tt := range tests {
		p, err := parsePaint(tt.in, noPaint)
		if err != nil {
			t.Errorf("parsePaint(%q): %v", tt.in, err)
			continue
		}
		switch {
		case tt.want == nil && p.color != nil:
			t.Errorf("parsePaint(%q) = %+v, want none", tt.in, *p.color)
		case tt.want != nil && (p.color == nil || *p.color != *tt.want):
			t.Errorf("parsePaint(%q) = %+v, want %+v", tt.in, p.color, *tt.want)
		}
	}
	for _, bad := range []string{"#12", "rgb(1,2)", "notacolor", "url(#grad)"} {
		if _, err := parsePaint(bad, noPaint); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("parsePaint(%q) = %v, want ErrInvalidColor", bad, err)
		}
	}
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		in   string
		p    pathstream.Point
		want pathstream.Point
	}{
		{"translate(10)", pathstream.Pt(1, 1), pathstream.Pt(11, 1)},
		{"translate(10 20) scale(2)", pathstream.Pt(1, 1), pathstream.Pt(12, 22)},
		{"scale(2, 3)", pathstream.Pt(1, 1), pathstream.Pt(2, 3)},
		{"matrix(1 0 0 1 5 6)", pathstream.Pt(0, 0), pathstream.Pt(5, 6)},
		{"rotate(90)", pathstream.Pt(1, 0), pathstream.Pt(0, 1)},
		{"rotate(180 5 5)", pathstream.Pt(0, 0), pathstream.Pt(10, 10)},
		{"skewX(45)", pathstream.Pt(0, 1), pathstream.Pt(1, 1)},
		{"skewY(45)", pathstream.Pt(1, 0), pathstream.Pt(1, 1)},
	}
	for _, tt := range tests {
		m, err := parseTransform(tt.in)
		if err != nil {
			t.Errorf("parseTransform(%q): %v", tt.in, err)
			continue
		}
		got := m.TransformPoint(tt.p)
		if !approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) {
			t.Errorf("%q applied to %v = %v, want %v", tt.in, tt.p, got, tt.want)
		}
	}
	for _, bad := range []string{"translate(1 2 3)", "spin(4)", "scale(", "matrix(1 2 3 4 5)"} {
		if _, err := parseTransform(bad); !errors.Is(err, ErrInvalidTransform) {
			t.Errorf("parseTransform(%q) = %v, want ErrInvalidTransform", bad, err)
		}
	}
}

func TestParsePathData(t *testing.T) {
	p, err := parsePathData("M10 10 h10 v10 H10 z m5,5 l1,0 L20-5 Q 0 0 1 1 T 2 2 C1 1 2 2 3 3 s1 1 2 2")
	if err != nil {
		t.Fatal(err)
	}
	elems := p.Elements()
	want := []pathstream.PathElement{
		pathstream.MoveTo{Point: pathstream.Pt(10, 10)},
		pathstream.LineTo{Point: pathstream.Pt(20, 10)},
		pathstream.LineTo{Point: pathstream.Pt(20, 20)},
		pathstream.LineTo{Point: pathstream.Pt(10, 20)},
		pathstream.Close{},
		pathstream.MoveTo{Point: pathstream.Pt(15, 15)},
		pathstream.LineTo{Point: pathstream.Pt(16, 15)},
		pathstream.LineTo{Point: pathstream.Pt(20, -5)},
		pathstream.QuadTo{Control: pathstream.Pt(0, 0), Point: pathstream.Pt(1, 1)},
		pathstream.QuadTo{Control: pathstream.Pt(2, 2), Point: pathstream.Pt(2, 2)},
		pathstream.CubicTo{Control1: pathstream.Pt(1, 1), Control2: pathstream.Pt(2, 2), Point: pathstream.Pt(3, 3)},
		pathstream.CubicTo{Control1: pathstream.Pt(4, 4), Control2: pathstream.Pt(4, 4), Point: pathstream.Pt(5, 5)},
	}
	if len(elems) != len(want) {
		t.Fatalf("got %d elements, want %d: %+v", len(elems), len(want), elems)
	}
	for i := range want {
		if elems[i] != want[i] {
			t.Errorf("element %d = %+v, want %+v", i, elems[i], want[i])
		}
	}
}

func TestParsePathDataImplicitLineTo(t *testing.T) {
	p, err := parsePathData("m1 1 2 0 0 2z")
	if err != nil {
		t.Fatal(err)
	}
	last := p.Elements()[2].(pathstream.LineTo).Point
	if last != pathstream.Pt(3, 3) {
		t.Errorf("implicit relative lineto ended at %v, want (3,3)", last)
	}
}

func TestParsePathDataErrors(t *testing.T) {
	for _, bad := range []string{"L 1 1", "M 1", "M 0 0 X 1 1", "M0 0 A 1 1 0 2 0 1 1", "M0 0 z 1 1"} {
		if _, err := parsePathData(bad); !errors.Is(err, ErrInvalidPathData) {
			t.Errorf("parsePathData(%q) = %v, want ErrInvalidPathData", bad, err)
		}
	}
	if p, err := parsePathData("  "); err != nil || p.Len() != 0 {
		t.Errorf("empty path data = %v, %v", p, err)
	}
}

func TestArcSemicircle(t *testing.T) {
	p, err := parsePathData("M0 0 A10 10 0 0 1 20 0")
	if err != nil {
		t.Fatal(err)
	}
	elems := p.Elements()
	if len(elems) != 3 {
		t.Fatalf("half circle = %d elements, want moveto plus 2 cubics", len(elems))
	}
	end := elems[2].(pathstream.CubicTo).Point
	if end != pathstream.Pt(20, 0) {
		t.Errorf("arc ends at %v", end)
	}
	// sweep=1 in a Y-down frame runs through negative y.
	mid := elems[1].(pathstream.CubicTo).Point
	if !approx(mid.X, 10) || !approx(mid.Y, -10) {
		t.Errorf("arc midpoint = %v, want (10,-10)", mid)
	}
	for _, pl := range p.Flatten(0.01) {
		for _, pt := range pl.Points {
			if r := pt.Sub(pathstream.Pt(10, 0)).Length(); math.Abs(r-10) > 0.05 {
				t.Errorf("point %v is %.3f from center", pt, r)
			}
		}
	}
}

func TestArcDegenerate(t *testing.T) {
	p, err := parsePathData("M0 0 A0 5 0 0 1 10 0 A5 5 0 0 1 10 0")
	if err != nil {
		t.Fatal(err)
	}
	elems := p.Elements()
	if len(elems) != 2 {
		t.Fatalf("got %+v, want moveto and one lineto", elems)
	}
	if _, ok := elems[1].(pathstream.LineTo); !ok {
		t.Errorf("zero radius arc = %T, want LineTo", elems[1])
	}

	// Radii too small are scaled up to reach the end point.
	p, err = parsePathData("M0 0 A1 1 0 0 1 10 0")
	if err != nil {
		t.Fatal(err)
	}
	mid := p.Elements()[1].(pathstream.CubicTo).Point
	if !approx(mid.X, 5) || !approx(mid.Y, -5) {
		t.Errorf("scaled arc midpoint = %v, want (5,-5)", mid)
	}
}

func TestElementErrors(t *testing.T) {
	docs := []string{
		`<svg viewBox="0 0 10 10"><path d="Q"/></svg>`,
		`<svg viewBox="0 0 10 10"><rect width="1" height="1" fill="nope"/></svg>`,
		`<svg viewBox="0 0 10 10"><g transform="turn(1)"><rect/></g></svg>`,
		`<svg viewBox="0 0 10 10"><rect width="1" height="1" fill-rule="odd"/></svg>`,
	}
	for _, doc := range docs {
		_, err := Parse(strings.NewReader(doc))
		var ee *ElementError
		if !errors.As(err, &ee) {
			t.Errorf("%s: err = %v, want *ElementError", doc, err)
		}
	}
}

func TestParseBuilds(t *testing.T) {
	s := mustParse(t, `<svg viewBox="0 0 100 100">
		<path d="M10 10 L90 10 L50 90 Z" fill="#336699"/>
		<path d="M20 50 A30 30 0 1 0 80 50 A30 30 0 1 0 20 50" fill-rule="evenodd"/>
	</svg>`)
	report, err := s.Build(scene.BuildOptions{}, scene.ListenerFunc(func(command.RenderCommand) error { return nil }), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Paths != 2 || report.Drawn != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestParseLatin1(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<svg viewBox=\"0 0 10 10\"><rect id=\"caf\xe9\" width=\"5\" height=\"5\"/></svg>"
	s := mustParse(t, doc)
	if got := s.Paths()[0].Name; got != "rect id=café" {
		t.Errorf("Name = %q", got)
	}
	bad := "<?xml version=\"1.0\" encoding=\"x-no-such\"?><svg viewBox=\"0 0 10 10\"/>"
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Error("unknown encoding accepted")
	}
}
