package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// RFD is one relaxed functional dependency over a fixed attribute schema:
// whenever every thresholded non-RHS attribute matches within its bound,
// the RHS attribute matches within its own. An absent threshold leaves the
// attribute unconstrained. RFDs are immutable once built.
type RFD struct {
	rhs        string
	attrs      []string
	thresholds map[string]float64
}

// NewRFD builds a dependency. The RHS must be one of the schema attributes
// and must carry a threshold of its own; thresholds on attributes outside
// the schema are rejected.
func NewRFD(rhs string, attrs []string, thresholds map[string]float64) (RFD, error) {
	if rhs == "" {
		return RFD{}, WrapError(ErrInvalidInput, "build rfd", fmt.Errorf("empty RHS attribute"))
	}
	known := make(map[string]struct{}, len(attrs))
	schema := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		if attr == "" {
			return RFD{}, WrapError(ErrInvalidInput, "build rfd", fmt.Errorf("empty attribute name"))
		}
		if _, dup := known[attr]; dup {
			return RFD{}, WrapError(ErrInvalidInput, "build rfd", fmt.Errorf("duplicate attribute %q", attr))
		}
		known[attr] = struct{}{}
		schema = append(schema, attr)
	}
	if _, ok := known[rhs]; !ok {
		return RFD{}, WrapError(ErrInvalidInput, "build rfd", fmt.Errorf("RHS %q is not a schema attribute", rhs))
	}
	bounds := make(map[string]float64, len(thresholds))
	for attr, t := range thresholds {
		if _, ok := known[attr]; !ok {
			return RFD{}, WrapError(ErrInvalidInput, "build rfd", fmt.Errorf("threshold on unknown attribute %q", attr))
		}
		bounds[attr] = t
	}
	if _, ok := bounds[rhs]; !ok {
		return RFD{}, WrapError(ErrInvalidInput, "build rfd", fmt.Errorf("RHS %q has no threshold", rhs))
	}
	return RFD{rhs: rhs, attrs: schema, thresholds: bounds}, nil
}

// RHS returns the dependent attribute.
func (r RFD) RHS() string { return r.rhs }

// Attributes returns the schema attribute names in order.
func (r RFD) Attributes() []string {
	out := make([]string, len(r.attrs))
	copy(out, r.attrs)
	return out
}

// Threshold returns the bound on attr; ok is false when the attribute is
// unconstrained.
func (r RFD) Threshold(attr string) (float64, bool) {
	t, ok := r.thresholds[attr]
	return t, ok
}

// WildcardCount counts the schema attributes carrying no threshold.
func (r RFD) WildcardCount() int {
	n := 0
	for _, attr := range r.attrs {
		if _, ok := r.thresholds[attr]; !ok {
			n++
		}
	}
	return n
}

// String renders the dependency for logs and traces, thresholded non-RHS
// attributes first, then the RHS implication.
func (r RFD) String() string {
	var b strings.Builder
	for _, attr := range r.attrs {
		if attr == r.rhs {
			continue
		}
		t, ok := r.thresholds[attr]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "(%s <= %s) ", attr, formatThreshold(t))
	}
	fmt.Fprintf(&b, "---> (%s <= %s)", r.rhs, formatThreshold(r.thresholds[r.rhs]))
	return b.String()
}

func formatThreshold(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}
