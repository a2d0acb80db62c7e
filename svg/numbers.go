package svg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

// ErrInvalidNumber is returned for malformed numeric attributes.
var ErrInvalidNumber = errors.New("svg: invalid number")

func isSeparator(c byte) bool {
	return c == ' ' || c == ',' || c == '\n' || c == '\r' || c == '\t'
}

func skipCommaWhitespace(b []byte) int {
	i := 0
	for i < len(b) && isSeparator(b[i]) {
		i++
	}
	return i
}

// parseNumbers scans a comma or whitespace separated list of numbers.
func parseNumbers(s string) ([]float64, error) {
	b := []byte(s)
	var out []float64
	i := skipCommaWhitespace(b)
	for i < len(b) {
		v, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidNumber, s, i)
		}
		out = append(out, v)
		i += n
		i += skipCommaWhitespace(b[i:])
	}
	return out, nil
}

// parseLength parses a user-space length. Only unitless and px values are
// accepted.
func parseLength(s string) (float64, error) {
	b := []byte(strings.TrimSpace(s))
	v, n := strconv.ParseFloat(b)
	if n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	if unit := string(b[n:]); unit != "" && unit != "px" {
		return 0, fmt.Errorf("%w: unsupported unit %q", ErrInvalidNumber, unit)
	}
	return v, nil
}

// lengthAttr returns the attribute as a length, or def when absent.
func lengthAttr(attrs map[string]string, name string, def float64) (float64, error) {
	s, ok := attrs[name]
	if !ok {
		return def, nil
	}
	v, err := parseLength(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}
