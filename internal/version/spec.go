package version

import (
	"fmt"
	"slices"
	"strconv"
)

// PartSpec describes how one named part of a version behaves when it is
// advanced or reset.
//
// A part is either numeric (non-negative integers rendered as decimal
// strings) or enumerated (an explicit ordered list of values). The domain
// is decided by Values: a nil/empty list means numeric.
type PartSpec struct {
	// Name is the part name, matching a named capture group in the
	// parse pattern.
	Name string

	// Values is the ordered value list for enumerated parts.
	// Empty means the part is numeric.
	Values []string

	// FirstValue is the value a freshly reset part takes.
	// Defaults to "0" for numeric parts, Values[0] for enumerated parts.
	FirstValue string

	// OptionalValue is the value at which the part may be omitted from a
	// serialized form. Defaults to FirstValue.
	OptionalValue string

	// ResetValue overrides the value used when the part is reset as a
	// side effect of bumping a more significant part.
	// Defaults to FirstValue.
	ResetValue string

	// Independent parts are never reset when another part is bumped.
	Independent bool
}

// Enumerated reports whether the part draws values from an explicit list.
func (s PartSpec) Enumerated() bool {
	return len(s.Values) > 0
}

// NumericSpec returns the default spec used for capture groups that have
// no explicit configuration.
func NumericSpec(name string) PartSpec {
	spec, _ := PartSpec{Name: name}.Normalized()

	return spec
}

// Normalized fills in defaulted fields and validates the spec.
//
// Numeric parts: FirstValue defaults to "0" and must be a decimal
// non-negative integer. Enumerated parts: values must be distinct and
// non-empty, and FirstValue/OptionalValue/ResetValue must be members of
// the value list when set.
func (s PartSpec) Normalized() (PartSpec, error) {
	if s.Name == "" {
		return PartSpec{}, fmt.Errorf("%w: part name is empty", ErrSpecInvalid)
	}

	if s.Enumerated() {
		return s.normalizedEnumerated()
	}

	return s.normalizedNumeric()
}

func (s PartSpec) normalizedNumeric() (PartSpec, error) {
	if s.FirstValue == "" {
		s.FirstValue = "0"
	}

	if !isNumericValue(s.FirstValue) {
		return PartSpec{}, fmt.Errorf(
			"%w: part %q: first_value %q is not a non-negative integer",
			ErrSpecInvalid, s.Name, s.FirstValue)
	}

	if s.OptionalValue == "" {
		s.OptionalValue = s.FirstValue
	} else if !isNumericValue(s.OptionalValue) {
		return PartSpec{}, fmt.Errorf(
			"%w: part %q: optional_value %q is not a non-negative integer",
			ErrSpecInvalid, s.Name, s.OptionalValue)
	}

	if s.ResetValue == "" {
		s.ResetValue = s.FirstValue
	} else if !isNumericValue(s.ResetValue) {
		return PartSpec{}, fmt.Errorf(
			"%w: part %q: reset_value %q is not a non-negative integer",
			ErrSpecInvalid, s.Name, s.ResetValue)
	}

	return s, nil
}

func (s PartSpec) normalizedEnumerated() (PartSpec, error) {
	seen := make(map[string]bool, len(s.Values))

	for _, v := range s.Values {
		if v == "" {
			return PartSpec{}, fmt.Errorf("%w: part %q: empty value in list", ErrSpecInvalid, s.Name)
		}

		if seen[v] {
			return PartSpec{}, fmt.Errorf("%w: part %q: duplicate value %q", ErrSpecInvalid, s.Name, v)
		}

		seen[v] = true
	}

	if s.FirstValue == "" {
		s.FirstValue = s.Values[0]
	}

	if s.OptionalValue == "" {
		s.OptionalValue = s.FirstValue
	}

	if s.ResetValue == "" {
		s.ResetValue = s.FirstValue
	}

	for _, pair := range [][2]string{
		{"first_value", s.FirstValue},
		{"optional_value", s.OptionalValue},
		{"reset_value", s.ResetValue},
	} {
		if !slices.Contains(s.Values, pair[1]) {
			return PartSpec{}, fmt.Errorf(
				"%w: part %q: %s %q is not in the value list",
				ErrSpecInvalid, s.Name, pair[0], pair[1])
		}
	}

	return s, nil
}

// isNumericValue reports whether v is a decimal non-negative integer.
func isNumericValue(v string) bool {
	_, err := strconv.ParseUint(v, 10, 64)

	return err == nil
}
