package svg

import (
	"errors"
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2/strconv"

	"github.com/gogpu/pathstream"
)

// ErrInvalidPathData is returned for malformed d attributes.
var ErrInvalidPathData = errors.New("svg: invalid path data")

var cmdLens = map[byte]int{
	'M': 2,
	'Z': 0,
	'L': 2,
	'H': 1,
	'V': 1,
	'C': 6,
	'S': 4,
	'Q': 4,
	'T': 2,
	'A': 7,
}

func isNumberStart(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+'
}

// parsePathData parses SVG path data. Arcs become cubic curves.
func parsePathData(s string) (*pathstream.Path, error) {
	p := pathstream.NewPath()
	d := []byte(s)
	i := skipCommaWhitespace(d)
	if i == len(d) {
		return p, nil
	}
	if c := d[i] | 0x20; c != 'm' {
		return nil, fmt.Errorf("%w: must start with moveto, got %q", ErrInvalidPathData, d[i])
	}

	var f [7]float64
	var p0, start, ctrl pathstream.Point
	prevCmd := byte('z')
	for {
		i += skipCommaWhitespace(d[i:])
		if i >= len(d) {
			break
		}

		cmd := prevCmd
		if cmd == 'z' || cmd == 'Z' || !isNumberStart(d[i]) {
			cmd = d[i]
			i++
			i += skipCommaWhitespace(d[i:])
		}

		upper := cmd &^ 0x20
		n, ok := cmdLens[upper]
		if !ok {
			return nil, fmt.Errorf("%w: unknown command %q at offset %d", ErrInvalidPathData, cmd, i)
		}
		for j := range n {
			if upper == 'A' && (j == 3 || j == 4) {
				if i >= len(d) || (d[i] != '0' && d[i] != '1') {
					return nil, fmt.Errorf("%w: arc flag must be 0 or 1 at offset %d", ErrInvalidPathData, i)
				}
				f[j] = float64(d[i] - '0')
				i++
			} else {
				v, k := strconv.ParseFloat(d[i:])
				if k == 0 {
					return nil, fmt.Errorf("%w: command %q needs %d numbers at offset %d", ErrInvalidPathData, cmd, n, i)
				}
				f[j] = v
				i += k
			}
			i += skipCommaWhitespace(d[i:])
		}

		rel := cmd != upper
		at := func(x, y float64) pathstream.Point {
			if rel {
				return pathstream.Pt(p0.X+x, p0.Y+y)
			}
			return pathstream.Pt(x, y)
		}

		var p1 pathstream.Point
		switch upper {
		case 'M':
			p1 = at(f[0], f[1])
			p.MoveTo(p1.X, p1.Y)
			start = p1
			// Further pairs are implicit linetos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'Z':
			p.Close()
			p1 = start
		case 'L':
			p1 = at(f[0], f[1])
			p.LineTo(p1.X, p1.Y)
		case 'H':
			p1 = pathstream.Pt(f[0], p0.Y)
			if rel {
				p1.X += p0.X
			}
			p.LineTo(p1.X, p1.Y)
		case 'V':
			p1 = pathstream.Pt(p0.X, f[0])
			if rel {
				p1.Y += p0.Y
			}
			p.LineTo(p1.X, p1.Y)
		case 'C':
			c1, c2 := at(f[0], f[1]), at(f[2], f[3])
			p1 = at(f[4], f[5])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p1.X, p1.Y)
			ctrl = c2
		case 'S':
			c1 := p0
			if u := prevCmd &^ 0x20; u == 'C' || u == 'S' {
				c1 = p0.Mul(2).Sub(ctrl)
			}
			c2 := at(f[0], f[1])
			p1 = at(f[2], f[3])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p1.X, p1.Y)
			ctrl = c2
		case 'Q':
			c := at(f[0], f[1])
			p1 = at(f[2], f[3])
			p.QuadraticTo(c.X, c.Y, p1.X, p1.Y)
			ctrl = c
		case 'T':
			c := p0
			if u := prevCmd &^ 0x20; u == 'Q' || u == 'T' {
				c = p0.Mul(2).Sub(ctrl)
			}
			p1 = at(f[0], f[1])
			p.QuadraticTo(c.X, c.Y, p1.X, p1.Y)
			ctrl = c
		case 'A':
			p1 = at(f[5], f[6])
			arcTo(p, p0, f[0], f[1], f[2], f[3] == 1, f[4] == 1, p1)
		}
		prevCmd = cmd
		p0 = p1
	}
	return p, nil
}

// arcTo appends the elliptical arc from p0 to p1 as cubic curves, one per
// quarter turn at most. Radii too small to reach p1 are scaled up, and a
// zero radius degrades to a straight line.
func arcTo(p *pathstream.Path, p0 pathstream.Point, rx, ry, rotDeg float64, large, sweep bool, p1 pathstream.Point) {
	if p0 == p1 {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		p.LineTo(p1.X, p1.Y)
		return
	}

	sinPhi, cosPhi := math.Sincos(radians(rotDeg))
	dx, dy := (p0.X-p1.X)/2, (p0.Y-p1.Y)/2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx, ry = rx*s, ry*s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := math.Sqrt(math.Max(0, num/den))
	if large == sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx
	cx := cosPhi*cx1 - sinPhi*cy1 + (p0.X+p1.X)/2
	cy := sinPhi*cx1 + cosPhi*cy1 + (p0.Y+p1.Y)/2

	theta := math.Atan2((y1-cy1)/ry, (x1-cx1)/rx)
	end := math.Atan2((-y1-cy1)/ry, (-x1-cx1)/rx)
	delta := end - theta
	if sweep && delta < 0 {
		delta += 2 * math.Pi
	} else if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	}

	// point maps an angle on the unit circle onto the rotated ellipse.
	point := func(ux, uy float64) pathstream.Point {
		return pathstream.Pt(
			cx+rx*cosPhi*ux-ry*sinPhi*uy,
			cy+rx*sinPhi*ux+ry*cosPhi*uy,
		)
	}

	segments := int(math.Ceil(math.Abs(delta) / (math.Pi / 2)))
	step := delta / float64(segments)
	alpha := math.Sin(step) * (math.Sqrt(4+3*math.Tan(step/2)*math.Tan(step/2)) - 1) / 3
	a := theta
	for k := range segments {
		b := a + step
		sa, ca := math.Sincos(a)
		sb, cb := math.Sincos(b)
		c1 := point(ca-alpha*sa, sa+alpha*ca)
		c2 := point(cb+alpha*sb, sb-alpha*cb)
		to := point(cb, sb)
		if k == segments-1 {
			to = p1
		}
		p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, to.X, to.Y)
		a = b
	}
}
