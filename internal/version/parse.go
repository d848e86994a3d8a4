package version

import (
	"fmt"
	"regexp"
)

// Schema holds a compiled parse pattern together with the part specs the
// pattern's capture groups bind to.
type Schema struct {
	pattern *regexp.Regexp
	specs   map[string]PartSpec
	order   []string
}

// CompileSchema compiles the structural pattern and resolves each named
// capture group to a part spec. Groups without an explicit spec default
// to numeric with first value 0. Specs are normalized here, so callers
// can pass sparsely filled ones straight from configuration.
func CompileSchema(pattern string, specs []PartSpec) (*Schema, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("parse pattern %q is not a valid regexp: %w", pattern, err)
	}

	byName := make(map[string]PartSpec, len(specs))

	for _, spec := range specs {
		normalized, err := spec.Normalized()
		if err != nil {
			return nil, err
		}

		byName[normalized.Name] = normalized
	}

	var order []string

	resolved := make(map[string]PartSpec)

	for _, name := range re.SubexpNames() {
		if name == "" {
			continue
		}

		if _, ok := resolved[name]; ok {
			return nil, fmt.Errorf("%w: pattern captures part %q more than once", ErrSpecInvalid, name)
		}

		spec, ok := byName[name]
		if !ok {
			spec = NumericSpec(name)
		}

		resolved[name] = spec
		order = append(order, name)
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("%w: pattern %q has no named capture groups", ErrSpecInvalid, pattern)
	}

	return &Schema{pattern: re, specs: resolved, order: order}, nil
}

// Pattern returns the source text of the parse pattern.
func (s *Schema) Pattern() string {
	return s.pattern.String()
}

// PartNames returns the part names in significance order.
func (s *Schema) PartNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)

	return out
}

// Parse matches the pattern against raw and materializes an Identifier
// from the named captures. The match is a search, not anchored, matching
// how version strings are usually embedded in larger config values.
func (s *Schema) Parse(raw string) (*Identifier, error) {
	match := s.pattern.FindStringSubmatch(raw)
	if match == nil {
		return nil, fmt.Errorf("%w: %q does not match %q", ErrParse, raw, s.pattern.String())
	}

	parts := make(map[string]Part, len(s.order))

	for i, name := range s.pattern.SubexpNames() {
		if name == "" {
			continue
		}

		part, err := NewPart(s.specs[name], match[i])
		if err != nil {
			return nil, err
		}

		parts[name] = part
	}

	return newIdentifier(s.PartNames(), parts, raw), nil
}
