package views

import (
	"context"
	"html/template"
)

const (
	// DefaultExcerptLength is how long Excerpt lets strings get when no
	// length is given.
	DefaultExcerptLength = 20

	ellipsis = "..."
)

// Funcs returns the functions built-in Executors make available to
// templates, bound to r and ctx:
//
//   - extend "layout": declare the layout the view extends
//   - section "name" / endSection: capture output into a section
//   - renderSection "name": emit and drain a section
//   - include "view": render another view in place
//   - setVar "name" value ["context"]: set a variable for the rest of the pass
//   - esc value "context": escape a value
//   - excerpt text [length]: shorten text
//   - currentView: the identifier of the view being rendered
func (r *Renderer) Funcs(ctx context.Context) map[string]any {
	return map[string]any{
		"extend": func(layout string) string {
			r.Extend(ctx, layout)
			return ""
		},
		"section": func(name string) string {
			r.Section(name)
			return ""
		},
		"endSection": func() (string, error) {
			return "", r.EndSection()
		},
		"renderSection": func(name string) template.HTML {
			return template.HTML(r.RenderSection(name)) // #nosec G203 -- already rendered by a template
		},
		"include": func(view string) (template.HTML, error) {
			out, err := r.Include(ctx, view)
			if err != nil {
				return "", err
			}
			return template.HTML(out), nil // #nosec G203 -- already rendered by a template
		},
		"setVar": func(name string, value any, escapeContext ...string) (string, error) {
			c := ContextRaw
			if len(escapeContext) > 0 {
				var err error
				c, err = ParseContext(escapeContext[0])
				if err != nil {
					return "", err
				}
			}
			r.SetVar(name, value, c)
			return "", nil
		},
		"esc": func(value any, escapeContext string) (string, error) {
			c, err := ParseContext(escapeContext)
			if err != nil {
				return "", err
			}
			return r.Escape(value, c), nil
		},
		"excerpt": func(text string, length ...int) string {
			n := DefaultExcerptLength
			if len(length) > 0 {
				n = length[0]
			}
			return Excerpt(text, n)
		},
		"currentView": func() string {
			state, _ := r.State()
			return state.View
		},
	}
}

// Excerpt shortens text to at most length characters, ending it with an
// ellipsis when it had to be cut.
func Excerpt(text string, length int) string {
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	keep := max(length-len(ellipsis), 0)
	return string(runes[:keep]) + ellipsis
}
