// Package server serves views over HTTP, one view per request path.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"impractical.co/views"
)

// IndexView is rendered for paths that end in a slash.
const IndexView = "index"

const shutdownTimeout = 10 * time.Second

type Options struct {
	// Escape is the context query parameters are escaped for before
	// they're in scope.
	Escape views.Context

	// Gatherer, if set, is served in the Prometheus text format at
	// MetricsPath.
	Gatherer    prometheus.Gatherer
	MetricsPath string
}

// New returns a handler that renders the view named by each GET request's
// path, with the query parameters in scope. Every request gets its own
// Renderer from site.
//
// Views that can't be found are a 404, other failures a 500; either way
// the site's error view is rendered in the response.
func New(site *views.Site, logger *slog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	if opts.Gatherer != nil && opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/*", renderView(site, opts.Escape))
	return r
}

func renderView(site *views.Site, escape views.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		renderer := site.Renderer()
		renderer.SetData(queryData(req), escape)

		out, err := renderer.Render(ctx, viewName(chi.URLParam(req, "*")), views.CallOptions(views.Options{
			"method": req.Method,
			"path":   req.URL.Path,
		}))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err != nil {
			status := http.StatusInternalServerError
			if views.IsNotFound(err) {
				status = http.StatusNotFound
			}
			w.WriteHeader(status)
			site.RenderError(ctx, w, err)
			return
		}
		if _, err := w.Write([]byte(out)); err != nil {
			views.LoggerFromContext(ctx).ErrorContext(ctx, "error writing response", "error", err)
		}
	}
}

// viewName maps a request path, without its leading slash, to a view.
func viewName(path string) string {
	if path == "" || strings.HasSuffix(path, "/") {
		return path + IndexView
	}
	return path
}

// queryData puts each query parameter in scope, as a string when it has
// one value and a []string when it has several.
func queryData(req *http.Request) views.Data {
	query := req.URL.Query()
	data := make(views.Data, len(query))
	for name, values := range query {
		if len(values) == 1 {
			data[name] = values[0]
			continue
		}
		data[name] = values
	}
	return data
}

// requestLogger puts a logger for the request in its context and logs the
// request when it's done.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			reqLogger := logger.With("request_id", middleware.GetReqID(req.Context()))
			ctx := views.LoggingContext(req.Context(), reqLogger)

			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req.WithContext(ctx))

			reqLogger.InfoContext(ctx, "request handled",
				"method", req.Method,
				"path", req.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
			)
		})
	}
}

// ListenAndServe serves handler on addr until ctx is done, then shuts the
// server down.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errs := make(chan error, 1)
	go func() {
		views.LoggerFromContext(ctx).InfoContext(ctx, "starting server", "address", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
