package views

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// stringView is the identifier templates rendered by RenderString
	// execute under.
	stringView = "string"

	tracerName = "impractical.co/views"
)

var tracer = otel.Tracer(tracerName)

// Renderer renders views. It carries the state of the render in progress,
// so templates can call back into it, and the data that persists between
// renders.
//
// A Renderer must not be used from more than one goroutine at a time. Get
// a fresh one for each request from Site.Renderer, or build one with New;
// its empty value is not usable.
type Renderer struct {
	*settings

	data     dataScope
	sections sectionStack
	captures captureStack
	states   stateStack

	// calls counts the render calls in progress, so the outermost one
	// knows to end the pass.
	calls int
}

// New returns a Renderer that loads views from fsys.
func New(fsys fs.FS, opts ...Option) (*Renderer, error) {
	s, err := newSettings(fsys, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating renderer: %w", err)
	}
	return &Renderer{settings: s}, nil
}

// Render resolves view, executes it with the Renderer's data in scope, and
// returns its output. If the view extends a layout, the layout is rendered
// in its place and its output is returned instead.
//
// Views without an extension get the Renderer's default extension. If the
// file isn't there, the Locator gets a chance to find it; if it can't,
// Render returns an error matching ErrTemplateNotFound.
func (r *Renderer) Render(ctx context.Context, view string, opts ...CallOption) (string, error) {
	return r.render(ctx, view, newCallSettings(opts))
}

// Include is Render with the call's data saved by default. Layouts and
// views use it to pull in other views.
func (r *Renderer) Include(ctx context.Context, view string, opts ...CallOption) (string, error) {
	return r.render(ctx, view, newCallSettings(append([]CallOption{SaveData(true)}, opts...)))
}

// RenderString executes source as a template with the Renderer's data in
// scope and returns its output. There's no file to resolve; a layout
// declared by source is ignored.
func (r *Renderer) RenderString(ctx context.Context, source string, opts ...CallOption) (output string, err error) {
	call := newCallSettings(opts)
	save := r.effectiveSave(call)

	ctx, span := r.startSpan(ctx, stringView, save)
	defer endSpan(span, &err)

	r.calls++
	defer r.endCall()

	state := &RenderState{
		View:    stringView,
		Options: call.options,
		Start:   time.Now(),
	}
	defer func() { r.observe(ctx, *state, err) }()

	output, err = r.execute(ctx, state, Template{Name: stringView, Source: source}, save)
	if err != nil {
		return "", err
	}
	if layout, ok := state.layout.take(); ok {
		logger(ctx).DebugContext(ctx, "ignoring layout declared by template string", "layout", layout)
	}
	return output, nil
}

func (r *Renderer) render(ctx context.Context, view string, call callSettings) (output string, err error) {
	save := r.effectiveSave(call)

	ctx, span := r.startSpan(ctx, view, save)
	defer endSpan(span, &err)

	r.calls++
	defer r.endCall()

	state := &RenderState{
		View:    identifier(view, r.ext),
		Options: call.options,
		Start:   time.Now(),
	}
	defer func() { r.observe(ctx, *state, err) }()

	state.File, err = r.resolve(ctx, view, state.View)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("views.file", state.File))

	source, err := fs.ReadFile(r.fsys, state.File)
	if err != nil {
		return "", fmt.Errorf("error reading %q: %w", state.File, err)
	}

	output, err = r.execute(ctx, state, Template{
		Name:   state.View,
		Path:   state.File,
		Source: string(source),
	}, save)
	if err != nil {
		return "", err
	}

	layout, ok := state.layout.take()
	if !ok {
		return output, nil
	}
	if r.sections.depth() > 0 {
		return "", &UnclosedSectionError{View: state.View, Sections: r.openSectionNames()}
	}
	logger(ctx).DebugContext(ctx, "rendering layout", "view", state.View, "layout", layout)
	output, err = r.render(ctx, layout, callSettings{options: call.options, save: &save})
	if err != nil {
		return "", fmt.Errorf("error rendering layout for %q: %w", state.View, err)
	}
	return output, nil
}

// resolve finds the file for view, whose template identifier is ident.
func (r *Renderer) resolve(ctx context.Context, view, ident string) (string, error) {
	if isFile(r.fsys, ident) {
		return ident, nil
	}
	file, err := r.locator.Locate(ctx, r.fsys, view, r.ext)
	if err != nil {
		return "", err
	}
	logger(ctx).DebugContext(ctx, "located view", "view", view, "file", file)
	return file, nil
}

// execute runs tmpl with the data in scope and returns what it wrote. The
// call's RenderState is on top of the state stack while it runs, and the
// capture and section stacks are back where they started when it returns.
func (r *Renderer) execute(ctx context.Context, state *RenderState, tmpl Template, save bool) (string, error) {
	r.data.prepare(save)

	captureDepth := r.captures.depth()
	sectionDepth := r.sections.depth()

	r.states.push(state)
	buf := r.captures.push()
	err := r.executor.Execute(ctx, &r.captures, tmpl, r.data.get(), r)
	r.captures.truncate(captureDepth)
	r.states.pop()

	if err != nil {
		r.sections.truncate(sectionDepth)
		return "", fmt.Errorf("error executing %q: %w", tmpl.Name, err)
	}
	if open := r.sections.truncate(sectionDepth); len(open) > 0 {
		return "", &UnclosedSectionError{View: tmpl.Name, Sections: open}
	}
	return buf.String(), nil
}

func (r *Renderer) effectiveSave(call callSettings) bool {
	if call.save != nil {
		return *call.save
	}
	return r.saveData
}

// endCall finishes a render call, ending the pass if it was the outermost
// one.
func (r *Renderer) endCall() {
	r.calls--
	if r.calls == 0 {
		r.data.clearTransient()
	}
}

func (r *Renderer) openSectionNames() []string {
	names := make([]string, 0, len(r.sections.open))
	for _, open := range r.sections.open {
		names = append(names, open.name)
	}
	return names
}

func (r *Renderer) observe(ctx context.Context, state RenderState, err error) {
	if r.observer == nil {
		return
	}
	r.observer.ObserveRender(ctx, state, err)
}

func (r *Renderer) startSpan(ctx context.Context, view string, save bool) (context.Context, trace.Span) {
	return tracer.Start(ctx, "views.render", trace.WithAttributes(
		attribute.String("views.view", view),
		attribute.Bool("views.save_data", save),
		attribute.Int("views.depth", r.calls),
	))
}

func endSpan(span trace.Span, errp *error) {
	if err := *errp; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// State returns the RenderState of the innermost render call in progress.
// It returns false when nothing is rendering.
func (r *Renderer) State() (RenderState, bool) {
	top := r.states.top()
	if top == nil {
		return RenderState{}, false
	}
	return *top, true
}

// Extend declares that the view being rendered extends layout. When the
// view finishes, its output is replaced by layout's. Only the last layout
// declared by a view counts, and it's used once.
//
// Extend does nothing when no view is rendering.
func (r *Renderer) Extend(ctx context.Context, layout string) {
	top := r.states.top()
	if top == nil {
		logger(ctx).WarnContext(ctx, "extend called outside of a render", "layout", layout)
		return
	}
	top.layout.put(layout)
}

// SetData merges values into the data for the current render pass,
// escaping each of them for c first unless c is empty or ContextRaw. It
// returns the Renderer so calls can be chained.
func (r *Renderer) SetData(values Data, c Context) *Renderer {
	escaped := make(Data, len(values))
	for k, v := range values {
		escaped[k] = EscapeValue(r.escaper, v, c)
	}
	r.data.merge(escaped)
	return r
}

// SetVar sets a single variable for the current render pass, escaping it
// for c first unless c is empty or ContextRaw. It returns the Renderer so
// calls can be chained.
func (r *Renderer) SetVar(name string, value any, c Context) *Renderer {
	r.data.set(name, EscapeValue(r.escaper, value, c))
	return r
}

// GetData returns a copy of the data a render would see right now: the
// current pass's data if one has started, the persistent data otherwise.
func (r *Renderer) GetData() Data {
	return r.data.get()
}

// ResetData forgets the persistent data. It returns the Renderer so calls
// can be chained.
func (r *Renderer) ResetData() *Renderer {
	r.data.reset()
	return r
}

// Escape runs value through the Renderer's Escaper.
func (r *Renderer) Escape(value any, c Context) string {
	return r.escaper.Escape(value, c)
}

// IsNotFound reports whether err means a view couldn't be found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}
