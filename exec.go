package views

import (
	"context"
	"fmt"
	htmltemplate "html/template"
	"io"
	texttemplate "text/template"
)

// Template is a template ready to be executed.
type Template struct {
	// Name is the template identifier. For templates rendered from
	// strings, it's "string".
	Name string

	// Path is the file the template was read from, relative to the view
	// root. It's empty for templates rendered from strings.
	Path string

	// Source is the template text.
	Source string
}

// Executor runs templates. Execute writes tmpl's output to out, with data
// as the variables in scope. It may call back into r while it runs, to
// render other views, open and close sections, or declare a layout; those
// calls must happen before Execute returns, on the same goroutine.
type Executor interface {
	Execute(ctx context.Context, out io.Writer, tmpl Template, data Data, r *Renderer) error
}

// HTMLExecutor executes templates with html/template, so output is
// escaped according to where it lands in the HTML document. It's the
// default Executor.
type HTMLExecutor struct {
	// Funcs are added to the functions templates can call, replacing
	// built-in functions with the same name.
	Funcs htmltemplate.FuncMap
}

// Execute implements Executor.
func (e HTMLExecutor) Execute(ctx context.Context, out io.Writer, tmpl Template, data Data, r *Renderer) error {
	funcs := mergeFuncMaps(r.Funcs(ctx), e.Funcs)
	parsed, err := htmltemplate.New(tmpl.Name).Funcs(funcs).Parse(tmpl.Source)
	if err != nil {
		return fmt.Errorf("error parsing %q: %w", tmpl.Name, err)
	}
	return parsed.Execute(out, data)
}

// TextExecutor executes templates with text/template. Nothing is escaped
// unless the template asks for it.
type TextExecutor struct {
	// Funcs are added to the functions templates can call, replacing
	// built-in functions with the same name.
	Funcs texttemplate.FuncMap
}

// Execute implements Executor.
func (e TextExecutor) Execute(ctx context.Context, out io.Writer, tmpl Template, data Data, r *Renderer) error {
	funcs := mergeFuncMaps(r.Funcs(ctx), e.Funcs)
	parsed, err := texttemplate.New(tmpl.Name).Funcs(funcs).Parse(tmpl.Source)
	if err != nil {
		return fmt.Errorf("error parsing %q: %w", tmpl.Name, err)
	}
	return parsed.Execute(out, data)
}

// mergeFuncMaps flattens two function maps into one, with the values in
// `extra` overriding the values in `in` if they have the same keys.
func mergeFuncMaps[M ~map[string]any](in map[string]any, extra M) map[string]any {
	res := make(map[string]any, len(in)+len(extra))
	for k, v := range in {
		res[k] = v
	}
	for k, v := range extra {
		res[k] = v
	}
	return res
}
