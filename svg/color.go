package svg

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/gogpu/pathstream"
)

// ErrInvalidColor is returned for paint values that cannot be parsed.
var ErrInvalidColor = errors.New("svg: invalid color")

// paint is a fill or stroke value. A nil color means none.
type paint struct {
	color *pathstream.RGBA
}

var noPaint = paint{}

func solid(c pathstream.RGBA) paint {
	return paint{color: &c}
}

// parsePaint accepts none, #rgb, #rrggbb, rgb(r, g, b) with numbers or
// percentages, and the CSS color keywords. current is the inherited
// paint, used for inherit.
func parsePaint(s string, current paint) (paint, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "none", "transparent":
		return noPaint, nil
	case "inherit":
		return current, nil
	}
	if strings.HasPrefix(s, "#") {
		c, ok := pathstream.Hex(s)
		if !ok {
			return noPaint, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return solid(c), nil
	}
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		return parseRGBFunc(s)
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return solid(pathstream.FromColor(c)), nil
	}
	return noPaint, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

func parseRGBFunc(s string) (paint, error) {
	parts := strings.Split(s[len("rgb("):len(s)-1], ",")
	if len(parts) != 3 {
		return noPaint, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	var ch [3]float64
	for i, p := range parts {
		p = strings.TrimSpace(p)
		scale := 255.0
		if strings.HasSuffix(p, "%") {
			p, scale = strings.TrimSuffix(p, "%"), 100
		}
		v, err := parseLength(p)
		if err != nil {
			return noPaint, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		ch[i] = min(max(v/scale, 0), 1)
	}
	return solid(pathstream.RGB(ch[0], ch[1], ch[2])), nil
}

// parseOpacity parses a number in [0, 1]; values outside are clamped.
func parseOpacity(s string) (float64, error) {
	v, err := parseLength(s)
	if err != nil {
		return 0, err
	}
	return min(max(v, 0), 1), nil
}
