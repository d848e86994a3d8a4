package version

import (
	"fmt"
	"time"
)

// Bumper orchestrates one bump operation:
// parse -> advance target part -> reset dependents -> serialize.
type Bumper struct {
	Schema     *Schema
	Candidates []string

	// Environ provides the env bindings for render contexts,
	// in "KEY=value" form as returned by os.Environ.
	Environ []string

	// Now is the local clock reading used for {now} bindings.
	// The zero value means time.Now().
	Now time.Time
}

// Result holds the outcome of a bump operation.
type Result struct {
	// Current is the identifier parsed from the input string.
	Current *Identifier

	// New is the identifier after the bump (or the re-parsed override).
	New *Identifier

	// CurrentSerialized is the current identifier rendered through the
	// configured candidates. Callers use it as the default search text.
	CurrentSerialized string

	// NewSerialized is the new version string.
	NewSerialized string
}

// Bump computes a new version from rawCurrent.
//
// When newOverride is non-empty it is used verbatim as the new version
// string, bypassing the advance/reset computation; it is still parsed
// against the schema so a malformed override fails with ErrParse.
func (b *Bumper) Bump(rawCurrent, partName, newOverride string) (*Result, error) {
	current, err := b.Schema.Parse(rawCurrent)
	if err != nil {
		return nil, err
	}

	currentSerialized, err := Serialize(current, b.Candidates, b.Context(current))
	if err != nil {
		return nil, err
	}

	if newOverride != "" {
		overridden, err := b.Schema.Parse(newOverride)
		if err != nil {
			return nil, fmt.Errorf("new version override is invalid: %w", err)
		}

		return &Result{
			Current:           current,
			New:               overridden,
			CurrentSerialized: currentSerialized,
			NewSerialized:     newOverride,
		}, nil
	}

	bumped, err := current.Bump(partName)
	if err != nil {
		return nil, err
	}

	newSerialized, err := Serialize(bumped, b.Candidates, b.Context(bumped))
	if err != nil {
		return nil, err
	}

	return &Result{
		Current:           current,
		New:               bumped,
		CurrentSerialized: currentSerialized,
		NewSerialized:     newSerialized,
	}, nil
}

// Context builds a fresh render context for v using the bumper's
// environment and clock.
func (b *Bumper) Context(v *Identifier) *Context {
	now := b.Now
	if now.IsZero() {
		now = time.Now()
	}

	return NewContext(v, b.Environ, now, now.UTC())
}
