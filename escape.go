package views

import (
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

var (
	// ErrUnknownContext is returned when an escaping context name isn't
	// one of the supported contexts.
	ErrUnknownContext = errors.New("unknown escape context")
)

// Context names the output context a value is escaped for.
type Context string

const (
	// ContextHTML escapes for HTML element content.
	ContextHTML Context = "html"

	// ContextAttr escapes for HTML attribute values.
	ContextAttr Context = "attr"

	// ContextJS escapes for JavaScript string literals.
	ContextJS Context = "js"

	// ContextCSS escapes for CSS values.
	ContextCSS Context = "css"

	// ContextURL escapes for URL path segments and query values.
	ContextURL Context = "url"

	// ContextRaw leaves values alone.
	ContextRaw Context = "raw"
)

// ParseContext returns the Context called name. An empty name is
// ContextRaw.
func ParseContext(name string) (Context, error) {
	switch c := Context(strings.ToLower(strings.TrimSpace(name))); c {
	case "":
		return ContextRaw, nil
	case ContextHTML, ContextAttr, ContextJS, ContextCSS, ContextURL, ContextRaw:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContext, name)
}

// Escaper turns a value into a string that's safe to write in the passed
// Context.
type Escaper interface {
	Escape(value any, c Context) string
}

// EscaperFunc adapts a function into an Escaper.
type EscaperFunc func(value any, c Context) string

// Escape implements Escaper.
func (f EscaperFunc) Escape(value any, c Context) string {
	return f(value, c)
}

// DefaultEscaper is the Escaper Renderers use unless WithEscaper says
// otherwise. Unknown contexts are escaped as HTML.
var DefaultEscaper Escaper = EscaperFunc(escape)

func escape(value any, c Context) string {
	s := toString(value)
	switch c {
	case "", ContextRaw:
		return s
	case ContextAttr:
		return escapeAttr(s)
	case ContextJS:
		return template.JSEscapeString(s)
	case ContextCSS:
		return escapeCSS(s)
	case ContextURL:
		return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	default:
		return template.HTMLEscapeString(s)
	}
}

// EscapeValue runs value through e for c. Maps and slices are escaped
// element by element and keep their shape; everything else becomes a
// string.
func EscapeValue(e Escaper, value any, c Context) any {
	if c == "" || c == ContextRaw {
		return value
	}
	switch v := value.(type) {
	case Data:
		out := make(Data, len(v))
		for k, val := range v {
			out[k] = EscapeValue(e, val, c)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = EscapeValue(e, val, c)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = EscapeValue(e, val, c)
		}
		return out
	case []string:
		out := make([]string, len(v))
		for i, val := range v {
			out[i] = e.Escape(val, c)
		}
		return out
	}
	return e.Escape(value, c)
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func escapeAttr(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case isAlnum(r), r == ',', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == '&':
			b.WriteString("&amp;")
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case r == '"':
			b.WriteString("&quot;")
		default:
			fmt.Fprintf(&b, "&#x%X;", r)
		}
	}
	return b.String()
}

func escapeCSS(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlnum(r) {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, "\\%X ", r)
	}
	return b.String()
}
