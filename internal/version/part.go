package version

import (
	"fmt"
	"strconv"
)

// Part is a live value bound to a PartSpec.
//
// Parts are immutable; Advance and Reset return new values.
type Part struct {
	Spec  PartSpec
	Value string
}

// NewPart binds a captured value to its spec. An empty captured value
// (unmatched optional group) takes the spec's optional value, mirroring
// how an omitted part round-trips back to the value that justified
// omitting it.
func NewPart(spec PartSpec, value string) (Part, error) {
	if value == "" {
		return Part{Spec: spec, Value: spec.OptionalValue}, nil
	}

	if spec.Enumerated() {
		if !containsValue(spec.Values, value) {
			return Part{}, fmt.Errorf(
				"%w: value %q of part %q is not in the configured list %v",
				ErrParse, value, spec.Name, spec.Values)
		}

		return Part{Spec: spec, Value: value}, nil
	}

	if !isNumericValue(value) {
		return Part{}, fmt.Errorf(
			"%w: value %q of part %q is not a non-negative integer",
			ErrParse, value, spec.Name)
	}

	return Part{Spec: spec, Value: value}, nil
}

// Advance returns the part at its next value.
//
// Numeric parts increment. Enumerated parts step to the next configured
// value and fail with ErrExhaustedDomain at the end of the list; there is
// no wraparound.
func (p Part) Advance() (Part, error) {
	if p.Spec.Enumerated() {
		idx := indexOfValue(p.Spec.Values, p.Value)
		if idx < 0 || idx+1 >= len(p.Spec.Values) {
			return Part{}, fmt.Errorf(
				"%w: part %q is already at %q, the last value in %v",
				ErrExhaustedDomain, p.Spec.Name, p.Value, p.Spec.Values)
		}

		return Part{Spec: p.Spec, Value: p.Spec.Values[idx+1]}, nil
	}

	n, err := strconv.ParseUint(p.Value, 10, 64)
	if err != nil {
		return Part{}, fmt.Errorf("%w: part %q holds non-numeric value %q", ErrParse, p.Spec.Name, p.Value)
	}

	return Part{Spec: p.Spec, Value: strconv.FormatUint(n+1, 10)}, nil
}

// Reset returns the part at its reset value (first_value unless the spec
// overrides it).
func (p Part) Reset() Part {
	return Part{Spec: p.Spec, Value: p.Spec.ResetValue}
}

// IsOptional reports whether the part may be omitted from a serialized
// form at its current value.
func (p Part) IsOptional() bool {
	return p.Value == p.Spec.OptionalValue
}

// IsIndependent reports whether the part is excluded from the
// reset-on-bump cascade.
func (p Part) IsIndependent() bool {
	return p.Spec.Independent
}

func containsValue(values []string, v string) bool {
	return indexOfValue(values, v) >= 0
}

func indexOfValue(values []string, v string) int {
	for i, candidate := range values {
		if candidate == v {
			return i
		}
	}

	return -1
}
