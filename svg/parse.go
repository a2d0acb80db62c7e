package svg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/scene"
)

var (
	// ErrNoRoot is returned when the document has no svg element.
	ErrNoRoot = errors.New("svg: no <svg> root element")

	// ErrNoViewBox is returned when the root has neither a viewBox nor
	// width and height.
	ErrNoViewBox = errors.New("svg: root has no viewBox or size")
)

// ElementError reports a malformed element.
type ElementError struct {
	// Element is the tag name, with its id when present.
	Element string
	Err     error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("svg: <%s>: %v", e.Element, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

// style is the inherited presentation state.
type style struct {
	fill          paint
	fillRule      pathstream.FillRule
	fillOpacity   float64
	stroke        paint
	strokeOpacity float64
	strokeStyle   scene.StrokeStyle
	opacity       float64
	ctm           pathstream.Matrix
}

func rootStyle() style {
	return style{
		fill:          solid(pathstream.Black),
		fillRule:      pathstream.FillRuleNonZero,
		fillOpacity:   1,
		stroke:        noPaint,
		strokeOpacity: 1,
		strokeStyle:   scene.DefaultStrokeStyle(),
		opacity:       1,
		ctm:           pathstream.Identity(),
	}
}

// Parse reads an SVG document and returns its scene. The view box is the
// root viewBox, or 0 0 width height when it has none.
func Parse(r io.Reader) (*scene.Scene, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.CharsetReader = charsetReader

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRoot
		}
		if err != nil {
			return nil, fmt.Errorf("svg: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "svg" {
			return nil, fmt.Errorf("%w: found <%s>", ErrNoRoot, se.Name.Local)
		}
		return parseRoot(dec, se)
	}
}

// charsetReader decodes documents declaring a non-UTF-8 encoding.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("svg: encoding %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("svg: unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func parseRoot(dec *xml.Decoder, se xml.StartElement) (*scene.Scene, error) {
	attrs := attrMap(se)
	vb, err := viewBox(attrs)
	if err != nil {
		return nil, err
	}
	s, err := scene.New(vb)
	if err != nil {
		return nil, fmt.Errorf("svg: %w", err)
	}
	st, err := apply(rootStyle(), attrs)
	if err != nil {
		return nil, &ElementError{Element: "svg", Err: err}
	}
	b := &builder{dec: dec, scene: s}
	if err := b.children(st); err != nil {
		return nil, err
	}
	pathstream.Logger().Debug("svg: parsed", "paths", s.Len(), "viewBox", vb)
	return s, nil
}

func viewBox(attrs map[string]string) (pathstream.Rect, error) {
	if v, ok := attrs["viewBox"]; ok {
		n, err := parseNumbers(v)
		if err != nil || len(n) != 4 {
			return pathstream.Rect{}, fmt.Errorf("%w: viewBox %q", ErrNoViewBox, v)
		}
		return pathstream.NewRect(n[0], n[1], n[2], n[3]), nil
	}
	w, errW := lengthAttr(attrs, "width", 0)
	h, errH := lengthAttr(attrs, "height", 0)
	if err := errors.Join(errW, errH); err != nil {
		return pathstream.Rect{}, fmt.Errorf("%w: %w", ErrNoViewBox, err)
	}
	if w <= 0 || h <= 0 {
		return pathstream.Rect{}, ErrNoViewBox
	}
	return pathstream.NewRect(0, 0, w, h), nil
}

func attrMap(se xml.StartElement) map[string]string {
	m := make(map[string]string, len(se.Attr))
	for _, a := range se.Attr {
		m[a.Name.Local] = a.Value
	}
	// Declarations in style override presentation attributes.
	if decl, ok := m["style"]; ok {
		for _, kv := range strings.Split(decl, ";") {
			k, v, ok := strings.Cut(kv, ":")
			if ok {
				m[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}
	}
	return m
}

// apply derives the style of an element from its parent's.
func apply(st style, attrs map[string]string) (style, error) {
	var err error
	if v, ok := attrs["transform"]; ok {
		m, terr := parseTransform(v)
		if terr != nil {
			return st, terr
		}
		st.ctm = st.ctm.Multiply(m)
	}
	if v, ok := attrs["fill"]; ok {
		if st.fill, err = parsePaint(v, st.fill); err != nil {
			return st, err
		}
	}
	if v, ok := attrs["stroke"]; ok {
		if st.stroke, err = parsePaint(v, st.stroke); err != nil {
			return st, err
		}
	}
	if v, ok := attrs["fill-rule"]; ok {
		switch v {
		case "nonzero":
			st.fillRule = pathstream.FillRuleNonZero
		case "evenodd":
			st.fillRule = pathstream.FillRuleEvenOdd
		default:
			return st, fmt.Errorf("fill-rule %q", v)
		}
	}
	for name, dst := range map[string]*float64{
		"fill-opacity":   &st.fillOpacity,
		"stroke-opacity": &st.strokeOpacity,
	} {
		if v, ok := attrs[name]; ok {
			o, oerr := parseOpacity(v)
			if oerr != nil {
				return st, fmt.Errorf("%s: %w", name, oerr)
			}
			*dst = o
		}
	}
	if v, ok := attrs["opacity"]; ok {
		o, oerr := parseOpacity(v)
		if oerr != nil {
			return st, fmt.Errorf("opacity: %w", oerr)
		}
		st.opacity *= o
	}
	if st.strokeStyle.Width, err = lengthAttr(attrs, "stroke-width", st.strokeStyle.Width); err != nil {
		return st, err
	}
	if st.strokeStyle.MiterLimit, err = lengthAttr(attrs, "stroke-miterlimit", st.strokeStyle.MiterLimit); err != nil {
		return st, err
	}
	if v, ok := attrs["stroke-linecap"]; ok {
		switch v {
		case "butt":
			st.strokeStyle.Cap = scene.LineCapButt
		case "round":
			st.strokeStyle.Cap = scene.LineCapRound
		case "square":
			st.strokeStyle.Cap = scene.LineCapSquare
		default:
			return st, fmt.Errorf("stroke-linecap %q", v)
		}
	}
	if v, ok := attrs["stroke-linejoin"]; ok {
		switch v {
		case "miter":
			st.strokeStyle.Join = scene.LineJoinMiter
		case "round":
			st.strokeStyle.Join = scene.LineJoinRound
		case "bevel":
			st.strokeStyle.Join = scene.LineJoinBevel
		default:
			return st, fmt.Errorf("stroke-linejoin %q", v)
		}
	}
	return st, nil
}

type builder struct {
	dec   *xml.Decoder
	scene *scene.Scene
}

// children consumes tokens up to the end of the current element.
func (b *builder) children(st style) error {
	for {
		tok, err := b.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("svg: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := b.element(t, st); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (b *builder) element(se xml.StartElement, parent style) error {
	name := se.Name.Local
	switch name {
	case "g", "svg", "path", "rect", "circle", "ellipse", "line", "polyline", "polygon":
	default:
		return b.dec.Skip()
	}

	attrs := attrMap(se)
	label := name
	if id := attrs["id"]; id != "" {
		label = name + " id=" + id
	}
	st, err := apply(parent, attrs)
	if err != nil {
		return &ElementError{Element: label, Err: err}
	}

	if name == "g" || name == "svg" {
		return b.children(st)
	}

	outline, err := shape(name, attrs)
	if err != nil {
		return &ElementError{Element: label, Err: err}
	}
	if outline != nil && outline.Len() > 0 {
		if err := b.push(label, name, outline, st); err != nil {
			return &ElementError{Element: label, Err: err}
		}
	}
	return b.dec.Skip()
}

func (b *builder) push(label, name string, outline *pathstream.Path, st style) error {
	outline = outline.Transform(st.ctm)
	if st.fill.color != nil && name != "line" {
		dp := scene.Fill(outline, st.fill.color.WithAlpha(st.fillOpacity*st.opacity))
		dp.Name = label
		dp.FillRule = st.fillRule
		if err := b.scene.Push(dp); err != nil {
			return err
		}
	}
	if st.stroke.color != nil && st.strokeStyle.Width > 0 {
		ss := st.strokeStyle
		ss.Width *= st.ctm.ScaleFactor()
		dp := scene.Stroked(outline, st.stroke.color.WithAlpha(st.strokeOpacity*st.opacity), ss)
		dp.Name = label
		if err := b.scene.Push(dp); err != nil {
			return err
		}
	}
	return nil
}

// shape builds the untransformed outline of a basic shape. A nil path
// means the shape is disabled, e.g. a zero radius.
func shape(name string, attrs map[string]string) (*pathstream.Path, error) {
	num := func(k string) (float64, error) { return lengthAttr(attrs, k, 0) }
	switch name {
	case "path":
		return parsePathData(attrs["d"])
	case "rect":
		x, err1 := num("x")
		y, err2 := num("y")
		w, err3 := num("width")
		h, err4 := num("height")
		if err := errors.Join(err1, err2, err3, err4); err != nil {
			return nil, err
		}
		if w <= 0 || h <= 0 {
			return nil, nil
		}
		return pathstream.Rectangle(x, y, w, h), nil
	case "circle":
		cx, err1 := num("cx")
		cy, err2 := num("cy")
		r, err3 := num("r")
		if err := errors.Join(err1, err2, err3); err != nil {
			return nil, err
		}
		if r <= 0 {
			return nil, nil
		}
		return pathstream.Circle(cx, cy, r), nil
	case "ellipse":
		cx, err1 := num("cx")
		cy, err2 := num("cy")
		rx, err3 := num("rx")
		ry, err4 := num("ry")
		if err := errors.Join(err1, err2, err3, err4); err != nil {
			return nil, err
		}
		if rx <= 0 || ry <= 0 {
			return nil, nil
		}
		return pathstream.Ellipse(cx, cy, rx, ry), nil
	case "line":
		x1, err1 := num("x1")
		y1, err2 := num("y1")
		x2, err3 := num("x2")
		y2, err4 := num("y2")
		if err := errors.Join(err1, err2, err3, err4); err != nil {
			return nil, err
		}
		p := pathstream.NewPath()
		p.MoveTo(x1, y1)
		p.LineTo(x2, y2)
		return p, nil
	case "polyline", "polygon":
		pts, err := parseNumbers(attrs["points"])
		if err != nil {
			return nil, err
		}
		if len(pts)%2 == 1 {
			pts = pts[:len(pts)-1]
		}
		if len(pts) < 4 {
			return nil, nil
		}
		p := pathstream.NewPath()
		p.MoveTo(pts[0], pts[1])
		for i := 2; i+1 < len(pts); i += 2 {
			p.LineTo(pts[i], pts[i+1])
		}
		if name == "polygon" {
			p.Close()
		}
		return p, nil
	}
	return nil, nil
}
