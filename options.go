package views

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNoViewRoot is returned when a Renderer or Site is built without
	// an fs.FS to load views from.
	ErrNoViewRoot = errors.New("no view root")
)

const (
	// DefaultExtension is appended to view names that don't carry an
	// extension of their own.
	DefaultExtension = ".tmpl"
)

// Observer is notified when each render call, nested calls included,
// finishes. err is nil for successful calls.
type Observer interface {
	ObserveRender(ctx context.Context, state RenderState, err error)
}

// Option configures a Renderer or a Site.
type Option func(*settings)

// WithRoot sets the directory within the fs.FS that view names are resolved
// against. Trailing separators are ignored.
func WithRoot(dir string) Option {
	return func(s *settings) {
		s.root = dir
	}
}

// WithExtension sets the extension appended to view names that have none.
// It defaults to DefaultExtension.
func WithExtension(ext string) Option {
	return func(s *settings) {
		s.ext = ext
	}
}

// WithSaveData sets whether render calls promote their data to persistent
// data when they don't say otherwise. It defaults to true.
func WithSaveData(save bool) Option {
	return func(s *settings) {
		s.saveData = save
	}
}

// WithLocator sets the Locator used when a view's file isn't found
// directly. It defaults to an ExtensionLocator with no alternates.
func WithLocator(l Locator) Option {
	return func(s *settings) {
		s.locator = l
	}
}

// WithExecutor sets the Executor templates are run with. It defaults to
// HTMLExecutor.
func WithExecutor(e Executor) Option {
	return func(s *settings) {
		s.executor = e
	}
}

// WithEscaper sets the Escaper SetData, SetVar, and the esc template
// function use. It defaults to DefaultEscaper.
func WithEscaper(e Escaper) Option {
	return func(s *settings) {
		s.escaper = e
	}
}

// WithObserver sets an Observer to notify as render calls finish.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		s.observer = o
	}
}

// WithErrorView sets the view Site.Render falls back to when rendering
// fails.
func WithErrorView(view string) Option {
	return func(s *settings) {
		s.errorView = view
	}
}

// settings is the read-only configuration a Site shares with every
// Renderer it hands out.
type settings struct {
	fsys      fs.FS
	root      string
	ext       string
	saveData  bool
	locator   Locator
	executor  Executor
	escaper   Escaper
	observer  Observer
	errorView string
}

func newSettings(fsys fs.FS, opts ...Option) (*settings, error) {
	if fsys == nil {
		return nil, ErrNoViewRoot
	}
	s := &settings{
		ext:      DefaultExtension,
		saveData: true,
		locator:  ExtensionLocator{},
		executor: HTMLExecutor{},
		escaper:  DefaultEscaper,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ext = normalizeExt(s.ext)

	s.fsys = fsys
	if root := normalizeRoot(s.root); root != "." {
		sub, err := fs.Sub(fsys, root)
		if err != nil {
			return nil, fmt.Errorf("error setting view root %q: %w", s.root, err)
		}
		s.fsys = sub
	}
	return s, nil
}

// CallOption configures a single render call.
type CallOption func(*callSettings)

type callSettings struct {
	options Options
	save    *bool
}

// CallOptions passes an options bag through the render call.
func CallOptions(o Options) CallOption {
	return func(c *callSettings) {
		c.options = o
	}
}

// SaveData overrides the Renderer's default for whether the call's data
// is kept for later calls.
func SaveData(save bool) CallOption {
	return func(c *callSettings) {
		c.save = &save
	}
}

func newCallSettings(opts []CallOption) callSettings {
	var c callSettings
	for _, opt := range opts {
		opt(&c)
	}
	if c.options == nil {
		c.options = Options{}
	}
	return c
}
