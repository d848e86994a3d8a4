package version

import (
	"fmt"
	"strings"
	"time"
)

// EnvPrefix is prepended to environment variable names in the render
// context. A regexp capture group name can never start with '$', so env
// bindings cannot shadow part values.
const EnvPrefix = "$"

// Context is the read-only environment a template renders against.
//
// It is rebuilt fresh for each render: the old-version render and the
// new-version render never share one.
type Context struct {
	values map[string]string
	now    time.Time
	utcnow time.Time
}

// NewContext builds a render context from an identifier's current part
// values, the process environment, and two clock readings.
//
// Part values bind under their own names and win over everything else.
// Environment variables bind under EnvPrefix+name. The "now" and
// "utcnow" names are reserved for the clock readings and support
// strftime-style format specs at render time.
func NewContext(v *Identifier, environ []string, now, utcnow time.Time) *Context {
	ctx := &Context{
		values: make(map[string]string),
		now:    now,
		utcnow: utcnow,
	}

	for _, e := range environ {
		if k, val, ok := strings.Cut(e, "="); ok {
			ctx.values[EnvPrefix+k] = val
		}
	}

	if v != nil {
		for _, name := range v.Names() {
			part, _ := v.Part(name)
			ctx.values[name] = part.Value
		}
	}

	return ctx
}

// Bind adds or replaces a plain string binding, e.g. "current_version".
func (c *Context) Bind(name, value string) {
	c.values[name] = value
}

// resolve returns the rendering of name with the given format spec.
// Only the clock bindings honor a format spec; plain strings ignore it.
func (c *Context) resolve(name, spec string) (string, bool) {
	switch name {
	case "now":
		return formatTimestamp(c.now, spec), true
	case "utcnow":
		return formatTimestamp(c.utcnow, spec), true
	}

	v, ok := c.values[name]

	return v, ok
}

// defaultTimestampLayout renders like time.Time.String without the
// monotonic suffix, close to Python's str(datetime).
const defaultTimestampLayout = "2006-01-02 15:04:05"

// formatTimestamp renders t according to a strftime-style format spec.
// An empty spec uses the default layout.
func formatTimestamp(t time.Time, spec string) string {
	if spec == "" {
		return t.Format(defaultTimestampLayout)
	}

	var b strings.Builder

	for i := 0; i < len(spec); i++ {
		if spec[i] != '%' || i+1 >= len(spec) {
			b.WriteByte(spec[i])
			continue
		}

		i++

		switch spec[i] {
		case 'Y':
			b.WriteString(t.Format("2006"))
		case 'y':
			b.WriteString(t.Format("06"))
		case 'm':
			b.WriteString(t.Format("01"))
		case 'd':
			b.WriteString(t.Format("02"))
		case 'H':
			b.WriteString(t.Format("15"))
		case 'M':
			b.WriteString(t.Format("04"))
		case 'S':
			b.WriteString(t.Format("05"))
		case 'j':
			b.WriteString(fmt.Sprintf("%03d", t.YearDay()))
		case 'b':
			b.WriteString(t.Format("Jan"))
		case 'B':
			b.WriteString(t.Format("January"))
		case 'a':
			b.WriteString(t.Format("Mon"))
		case 'A':
			b.WriteString(t.Format("Monday"))
		case 'p':
			b.WriteString(t.Format("PM"))
		case '%':
			b.WriteByte('%')
		default:
			// Unknown directive passes through verbatim.
			b.WriteByte('%')
			b.WriteByte(spec[i])
		}
	}

	return b.String()
}
