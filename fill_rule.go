package pathstream

// FillRule specifies how to determine which areas are inside a path.
type FillRule int

const (
	// FillRuleNonZero uses the non-zero winding rule.
	FillRuleNonZero FillRule = iota
	// FillRuleEvenOdd uses the even-odd rule.
	FillRuleEvenOdd
)

// String returns "nonzero" or "evenodd".
func (r FillRule) String() string {
	switch r {
	case FillRuleNonZero:
		return "nonzero"
	case FillRuleEvenOdd:
		return "evenodd"
	}
	return "unknown"
}

// IsValid reports whether r is a known fill rule.
func (r FillRule) IsValid() bool {
	return r == FillRuleNonZero || r == FillRuleEvenOdd
}
