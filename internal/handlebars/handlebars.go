// Package handlebars runs views written in Handlebars syntax, using
// raymond.
//
// Views get the same functions the built-in executors offer, as helpers.
// Sections are block helpers:
//
//	{{extend "layout"}}
//	{{#section "content"}}<p>{{name}}</p>{{/section}}
//
// and layouts emit them with {{renderSection "content"}}.
package handlebars

import (
	"context"
	"fmt"
	"io"

	"github.com/aymerick/raymond"

	"impractical.co/views"
)

var _ views.Executor = Executor{}

// Executor is a views.Executor for Handlebars templates.
type Executor struct {
	// Helpers are registered on every template, replacing built-in
	// helpers with the same name.
	Helpers map[string]any
}

// Execute implements views.Executor.
func (e Executor) Execute(ctx context.Context, out io.Writer, tmpl views.Template, data views.Data, r *views.Renderer) error {
	parsed, err := raymond.Parse(tmpl.Source)
	if err != nil {
		return fmt.Errorf("error parsing %q: %w", tmpl.Name, err)
	}
	helpers := builtins(ctx, out, r)
	for name, helper := range e.Helpers {
		helpers[name] = helper
	}
	parsed.RegisterHelpers(helpers)

	result, err := parsed.Exec(map[string]any(data))
	if err != nil {
		return fmt.Errorf("error executing %q: %w", tmpl.Name, err)
	}
	_, err = io.WriteString(out, result)
	return err
}

// builtins returns the helpers bound to r. raymond helpers can't return
// errors, so failures panic with the error, which Exec hands back.
func builtins(ctx context.Context, out io.Writer, r *views.Renderer) map[string]any {
	return map[string]any{
		"extend": func(layout string) string {
			r.Extend(ctx, layout)
			return ""
		},
		"section": func(name string, options *raymond.Options) raymond.SafeString {
			r.Section(name)
			// out writes to the section's capture until it's closed
			if _, err := io.WriteString(out, options.Fn()); err != nil {
				panic(err)
			}
			if err := r.EndSection(); err != nil {
				panic(err)
			}
			return ""
		},
		"renderSection": func(name string) raymond.SafeString {
			return raymond.SafeString(r.RenderSection(name))
		},
		"include": func(view string) raymond.SafeString {
			output, err := r.Include(ctx, view)
			if err != nil {
				panic(err)
			}
			return raymond.SafeString(output)
		},
		"setVar": func(name string, value any) string {
			r.SetVar(name, value, views.ContextRaw)
			return ""
		},
		"esc": func(value any, escapeContext string) raymond.SafeString {
			c, err := views.ParseContext(escapeContext)
			if err != nil {
				panic(err)
			}
			return raymond.SafeString(r.Escape(value, c))
		},
		"excerpt": func(text string, length int) string {
			return views.Excerpt(text, length)
		},
		"currentView": func() string {
			state, _ := r.State()
			return state.View
		},
	}
}
