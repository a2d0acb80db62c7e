package svg

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/pathstream"
)

// ErrInvalidTransform is returned for malformed transform attributes.
var ErrInvalidTransform = errors.New("svg: invalid transform")

// parseTransform parses a transform list such as
// "translate(10 20) rotate(45)". Functions apply right to left, so the
// result is their product in reading order.
func parseTransform(s string) (pathstream.Matrix, error) {
	m := pathstream.Identity()
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		closing := strings.IndexByte(rest, ')')
		if open < 0 || closing < open {
			return m, fmt.Errorf("%w: %q", ErrInvalidTransform, s)
		}
		name := strings.TrimSpace(rest[:open])
		args, err := parseNumbers(rest[open+1 : closing])
		if err != nil {
			return m, fmt.Errorf("%w: %s: %w", ErrInvalidTransform, name, err)
		}
		f, err := transformFunc(name, args)
		if err != nil {
			return m, err
		}
		m = m.Multiply(f)
		rest = strings.TrimLeft(rest[closing+1:], " ,\t\r\n")
	}
	return m, nil
}

func transformFunc(name string, a []float64) (pathstream.Matrix, error) {
	bad := func() (pathstream.Matrix, error) {
		return pathstream.Identity(), fmt.Errorf("%w: %s with %d arguments", ErrInvalidTransform, name, len(a))
	}
	switch name {
	case "matrix":
		if len(a) != 6 {
			return bad()
		}
		return pathstream.Matrix{A: a[0], B: a[2], C: a[4], D: a[1], E: a[3], F: a[5]}, nil
	case "translate":
		switch len(a) {
		case 1:
			return pathstream.Translate(a[0], 0), nil
		case 2:
			return pathstream.Translate(a[0], a[1]), nil
		}
		return bad()
	case "scale":
		switch len(a) {
		case 1:
			return pathstream.Scale(a[0], a[0]), nil
		case 2:
			return pathstream.Scale(a[0], a[1]), nil
		}
		return bad()
	case "rotate":
		switch len(a) {
		case 1:
			return pathstream.Rotate(radians(a[0])), nil
		case 3:
			c := pathstream.Translate(a[1], a[2])
			return c.Multiply(pathstream.Rotate(radians(a[0]))).Multiply(pathstream.Translate(-a[1], -a[2])), nil
		}
		return bad()
	case "skewX":
		if len(a) != 1 {
			return bad()
		}
		return pathstream.Shear(math.Tan(radians(a[0])), 0), nil
	case "skewY":
		if len(a) != 1 {
			return bad()
		}
		return pathstream.Shear(0, math.Tan(radians(a[0]))), nil
	}
	return pathstream.Identity(), fmt.Errorf("%w: unknown function %q", ErrInvalidTransform, name)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
