package views

import (
	"context"
	"fmt"
	"io"
	"io/fs"
)

// Site is the singleton a server renders views through. It holds the fs.FS
// the views live in and the configuration every Renderer shares, and hands
// out a fresh Renderer per request. A Site must be instantiated through
// NewSite; its empty value is not usable.
//
// A Site can safely be used by multiple goroutines. The Renderers it hands
// out can't.
type Site struct {
	settings *settings
}

// NewSite returns a Site that loads views from fsys.
func NewSite(fsys fs.FS, opts ...Option) (*Site, error) {
	s, err := newSettings(fsys, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating site: %w", err)
	}
	return &Site{settings: s}, nil
}

// Renderer returns a new Renderer configured like the Site, with no data.
func (s *Site) Renderer() *Renderer {
	return &Renderer{settings: s.settings}
}

// ViewDir returns the fs.FS view names are resolved against, after the
// view root has been applied.
func (s *Site) ViewDir() fs.FS {
	return s.settings.fsys
}

// Render renders view with data in scope, using a new Renderer, and writes
// the output to out. If it can't, an error page is written instead: the
// Site's error view if it has one, a plain text message if it doesn't, or
// if the error view fails too.
//
// Render returns the error that stopped view from rendering, after it's
// been logged and the error page written, so callers can pick a status
// code.
func (s *Site) Render(ctx context.Context, out io.Writer, view string, data Data, opts ...CallOption) error {
	r := s.Renderer()
	r.SetData(data, ContextRaw)
	output, err := r.Render(ctx, view, opts...)
	if err != nil {
		s.RenderError(ctx, out, err)
		return err
	}
	_, err = io.WriteString(out, output)
	if err != nil {
		logger(ctx).ErrorContext(ctx, "error writing rendered view", "view", view, "error", err)
		return err
	}
	return nil
}

// RenderError logs err and writes an error page to out. The error view, if
// the Site has one, is rendered with the error available as .Error.
func (s *Site) RenderError(ctx context.Context, out io.Writer, err error) {
	// logging it is the least we can do
	logger(ctx).ErrorContext(ctx, "error rendering view", "error", err)

	if s.settings.errorView != "" {
		r := s.Renderer()
		r.SetVar("Error", err.Error(), ContextRaw)
		output, pageErr := r.Render(ctx, s.settings.errorView, SaveData(false))
		if pageErr == nil {
			_, pageErr = io.WriteString(out, output)
			if pageErr == nil {
				return
			}
		}
		// if we can't do that, everything's doomed
		// just log it and fall back to the message
		logger(ctx).ErrorContext(ctx, "error rendering error view", "view", s.settings.errorView, "error", pageErr)
	}

	_, err = io.WriteString(out, "Server error.")
	if err != nil {
		logger(ctx).ErrorContext(ctx, "error writing server error message", "error", err)
	}
}
