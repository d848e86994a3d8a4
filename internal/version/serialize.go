package version

import (
	"fmt"
	"strings"
)

// Serialize renders v to a string by selecting the best-fitting candidate
// template.
//
// Candidates are ordered most detailed to least detailed. A candidate is
// valid iff every name it references is bound in the context and every
// part of v it does not reference is currently at its optional value.
// The candidates are scanned in order and the last valid one wins, so
// the least detailed representation that loses no information is chosen.
// When no candidate is valid the first (most detailed) one is used,
// which then either renders or surfaces the authoring error.
func Serialize(v *Identifier, candidates []string, ctx *Context) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no serialization candidates configured", ErrSerialization)
	}

	chosen := -1

	for i, candidate := range candidates {
		valid, err := candidateValid(v, candidate, ctx)
		if err != nil {
			return "", err
		}

		if valid {
			chosen = i
		}
	}

	if chosen == -1 {
		chosen = 0
	}

	// Defensive: the validity rule guarantees the chosen candidate omits
	// only optional parts, except on the fallback path.
	if missing := omittedRequiredParts(v, candidates[chosen]); len(missing) > 0 {
		return "", fmt.Errorf(
			"%w: format %q omits non-optional parts: %s",
			ErrSerialization, candidates[chosen], strings.Join(missing, ", "))
	}

	return Render(candidates[chosen], ctx)
}

// candidateValid reports whether the candidate can represent v without
// information loss. A malformed template is an error, not invalidity.
func candidateValid(v *Identifier, candidate string, ctx *Context) (bool, error) {
	names, err := Placeholders(candidate)
	if err != nil {
		return false, err
	}

	for _, name := range names {
		if name == "now" || name == "utcnow" {
			continue
		}

		if _, ok := ctx.resolve(name, ""); !ok {
			return false, nil
		}
	}

	return len(omittedRequiredParts(v, candidate)) == 0, nil
}

// omittedRequiredParts returns the parts of v that candidate does not
// reference but whose values differ from their optional values.
func omittedRequiredParts(v *Identifier, candidate string) []string {
	names, err := Placeholders(candidate)
	if err != nil {
		return nil
	}

	referenced := make(map[string]bool, len(names))
	for _, name := range names {
		referenced[name] = true
	}

	var missing []string

	for _, name := range v.Names() {
		part, _ := v.Part(name)
		if !referenced[name] && !part.IsOptional() {
			missing = append(missing, name)
		}
	}

	return missing
}
