package version

import (
	"fmt"
	"strings"
)

// Identifier is an ordered mapping of part name to Part.
//
// Order equals left-to-right significance: the order in which the named
// capture groups appear in the parse pattern, most significant first.
// The reset cascade in Bump depends on this order, so it is kept as an
// explicit slice rather than relying on map iteration.
type Identifier struct {
	names    []string
	parts    map[string]Part
	original string
}

func newIdentifier(names []string, parts map[string]Part, original string) *Identifier {
	return &Identifier{names: names, parts: parts, original: original}
}

// Names returns the part names in significance order.
func (v *Identifier) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)

	return out
}

// Part returns the named part.
func (v *Identifier) Part(name string) (Part, bool) {
	p, ok := v.parts[name]

	return p, ok
}

// Original returns the raw string this identifier was parsed from.
// Empty for identifiers produced by Bump.
func (v *Identifier) Original() string {
	return v.original
}

// String renders the identifier for diagnostics as "major=1, minor=2".
func (v *Identifier) String() string {
	pairs := make([]string, 0, len(v.names))
	for _, name := range v.names {
		pairs = append(pairs, name+"="+v.parts[name].Value)
	}

	return strings.Join(pairs, ", ")
}

// Bump returns a new identifier with the named part advanced.
//
// Parts more significant than the target keep their values. Parts less
// significant are reset to their reset value, unless they are marked
// independent, in which case they keep their values too.
func (v *Identifier) Bump(partName string) (*Identifier, error) {
	target, ok := v.parts[partName]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have: %s)", ErrUnknownPart, partName, strings.Join(v.names, ", "))
	}

	newParts := make(map[string]Part, len(v.parts))
	bumped := false

	for _, name := range v.names {
		part := v.parts[name]

		switch {
		case name == partName:
			advanced, err := target.Advance()
			if err != nil {
				return nil, err
			}

			newParts[name] = advanced
			bumped = true
		case bumped && !part.IsIndependent():
			newParts[name] = part.Reset()
		default:
			newParts[name] = part
		}
	}

	return newIdentifier(v.Names(), newParts, ""), nil
}
