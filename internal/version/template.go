package version

import (
	"fmt"
	"strings"
)

// Templates use {name} placeholders with an optional format spec after a
// colon, e.g. "{major}.{minor}" or "v{new_version}+{utcnow:%Y%m%d}".
// Literal braces are written doubled: "{{" and "}}".

// Render substitutes every placeholder in tmpl with its context binding.
// It fails with ErrUnknownPlaceholder when tmpl references a name the
// context does not bind.
func Render(tmpl string, ctx *Context) (string, error) {
	var b strings.Builder

	err := scanTemplate(tmpl, func(literal string) {
		b.WriteString(literal)
	}, func(name, spec string) error {
		v, ok := ctx.resolve(name, spec)
		if !ok {
			return fmt.Errorf("%w: %q in template %q", ErrUnknownPlaceholder, name, tmpl)
		}

		b.WriteString(v)

		return nil
	})
	if err != nil {
		return "", err
	}

	return b.String(), nil
}

// Placeholders returns the placeholder names referenced by tmpl, in
// order of appearance, without format specs.
func Placeholders(tmpl string) ([]string, error) {
	var names []string

	err := scanTemplate(tmpl, func(string) {}, func(name, _ string) error {
		names = append(names, name)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

// scanTemplate walks tmpl, invoking literal for literal runs and field
// for each {name:spec} placeholder.
func scanTemplate(tmpl string, literal func(string), field func(name, spec string) error) error {
	for len(tmpl) > 0 {
		open := strings.IndexByte(tmpl, '{')
		closeIdx := strings.IndexByte(tmpl, '}')

		// Handle "}}" escapes that precede any "{".
		if closeIdx >= 0 && (open < 0 || closeIdx < open) {
			if closeIdx+1 < len(tmpl) && tmpl[closeIdx+1] == '}' {
				literal(tmpl[:closeIdx+1])
				tmpl = tmpl[closeIdx+2:]

				continue
			}

			return fmt.Errorf("%w: single '}' in %q", ErrTemplateInvalid, tmpl)
		}

		if open < 0 {
			literal(tmpl)

			return nil
		}

		if open+1 < len(tmpl) && tmpl[open+1] == '{' {
			literal(tmpl[:open+1])
			tmpl = tmpl[open+2:]

			continue
		}

		literal(tmpl[:open])
		tmpl = tmpl[open+1:]

		end := strings.IndexByte(tmpl, '}')
		if end < 0 {
			return fmt.Errorf("%w: unclosed '{' in %q", ErrTemplateInvalid, tmpl)
		}

		name, spec, _ := strings.Cut(tmpl[:end], ":")
		if name == "" {
			return fmt.Errorf("%w: empty placeholder name in %q", ErrTemplateInvalid, tmpl)
		}

		if err := field(name, spec); err != nil {
			return err
		}

		tmpl = tmpl[end+1:]
	}

	return nil
}
