package scene

import (
	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/internal/stroke"
)

// LineCap specifies the shape of open stroke endpoints.
type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// LineJoin specifies the shape of stroke corners.
type LineJoin int

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// StrokeStyle describes how an outline is stroked. Width is in the
// path's own coordinates, so it scales with the transform.
type StrokeStyle struct {
	Width      float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
}

// DefaultStrokeStyle returns width 1, butt caps and miter joins with
// limit 4.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{Width: 1, Cap: LineCapButt, Join: LineJoinMiter, MiterLimit: 4}
}

func (st StrokeStyle) expander(tolerance float64) *stroke.Expander {
	e := stroke.NewExpander(stroke.Style{
		Width:      st.Width,
		Cap:        stroke.Cap(st.Cap),
		Join:       stroke.Join(st.Join),
		MiterLimit: st.MiterLimit,
	})
	e.SetTolerance(tolerance)
	return e
}

// DrawPath is one drawable element of a scene.
type DrawPath struct {
	// Name identifies the path in errors and logs. Optional.
	Name string

	// Outline is the geometry in scene coordinates.
	Outline *pathstream.Path

	// Color is straight (not premultiplied) alpha.
	Color pathstream.RGBA

	// FillRule applies to filled paths. Stroked paths always fill their
	// expanded outline with the non-zero rule.
	FillRule pathstream.FillRule

	// Stroke, when set, strokes the outline instead of filling it.
	Stroke *StrokeStyle
}

// Fill returns a non-zero filled DrawPath.
func Fill(outline *pathstream.Path, color pathstream.RGBA) DrawPath {
	return DrawPath{Outline: outline, Color: color, FillRule: pathstream.FillRuleNonZero}
}

// Stroked returns a DrawPath that strokes outline with style.
func Stroked(outline *pathstream.Path, color pathstream.RGBA, style StrokeStyle) DrawPath {
	return DrawPath{Outline: outline, Color: color, Stroke: &style}
}
