// Package patch applies rendered search/replace edits to text files with
// two-phase validate-then-write semantics: every rule's search text is
// located (and every replacement computed in memory) before any file is
// written, so a failing rule leaves all files untouched.
package patch

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

// Error variables for patch operations.
var (
	ErrSearchNotFound = errors.New("search text not found in file")
	ErrEmptySearch    = errors.New("search text is empty")
	ErrNoRules        = errors.New("no file rules given")
)

// Rule is one (file, search, replace) edit. Search and Replace are
// literal text, already rendered by the caller; Search is matched as an
// exact substring, never as a pattern.
type Rule struct {
	Path    string
	Search  string
	Replace string
}

// Edit reports the outcome of one rule.
type Edit struct {
	// Path is the rule's target file.
	Path string

	// Occurrences is how many times the search text was found.
	// Every occurrence is replaced.
	Occurrences int

	// Changed reports whether the rule altered the content. False when
	// search and replace render to the same text.
	Changed bool

	// Search and Replace echo the rendered texts for reporting.
	Search  string
	Replace string
}

// Plan holds validated, in-memory edits ready to be written.
type Plan struct {
	edits  []Edit
	order  []string
	finals map[string]string
}

// Compute reads every rule's target file, locates the search text and
// computes the replaced content in memory. Rules apply in declaration
// order; later rules on the same file see the edits of earlier ones.
//
// No file is written. A rule with an empty search text fails the whole
// plan with ErrEmptySearch; one whose search text is absent fails it
// with ErrSearchNotFound.
func Compute(rules []Rule) (*Plan, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	plan := &Plan{finals: make(map[string]string, len(rules))}

	for _, rule := range rules {
		// An empty search matches between every byte and would shred the
		// file on ReplaceAll. It can only come from a template that
		// rendered to nothing, so it is always a configuration error.
		if rule.Search == "" {
			return nil, fmt.Errorf("%w: for %s", ErrEmptySearch, rule.Path)
		}

		content, ok := plan.finals[rule.Path]
		if !ok {
			data, err := os.ReadFile(rule.Path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", rule.Path, err)
			}

			content = string(data)
			plan.order = append(plan.order, rule.Path)
		}

		count := strings.Count(content, rule.Search)
		if count == 0 {
			return nil, fmt.Errorf("%w: %q in %s", ErrSearchNotFound, rule.Search, rule.Path)
		}

		updated := strings.ReplaceAll(content, rule.Search, rule.Replace)

		plan.finals[rule.Path] = updated
		plan.edits = append(plan.edits, Edit{
			Path:        rule.Path,
			Occurrences: count,
			Changed:     updated != content,
			Search:      rule.Search,
			Replace:     rule.Replace,
		})
	}

	return plan, nil
}

// Edits returns the per-rule results in declaration order.
func (p *Plan) Edits() []Edit {
	out := make([]Edit, len(p.edits))
	copy(out, p.edits)

	return out
}

// Apply writes every touched file's final content back atomically.
func (p *Plan) Apply() error {
	for _, path := range p.order {
		err := atomic.WriteFile(path, strings.NewReader(p.finals[path]))
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	return nil
}
