// Package metrics records view renders as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"impractical.co/views"
)

// Render statuses used as the status label.
const (
	StatusOK              = "ok"
	StatusNotFound        = "not_found"
	StatusUnclosedSection = "unclosed_section"
	StatusError           = "error"
)

// DefaultNamespace prefixes metric names when no namespace is set.
const DefaultNamespace = "views"

// UnknownView is the view label for renders that never resolved a file.
const UnknownView = ""

var _ views.Observer = (*Recorder)(nil)

// Recorder is a views.Observer that counts renders and times them. Every
// render call is recorded, including nested includes and layouts. Views
// that couldn't be found share the UnknownView label, so requests for
// arbitrary names can't create arbitrary series.
type Recorder struct {
	renders  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder registers the render metrics with reg and returns a Recorder
// that updates them. An empty namespace means DefaultNamespace.
func NewRecorder(reg prometheus.Registerer, namespace string) *Recorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)
	return &Recorder{
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of view renders, by view and status",
		}, []string{"view", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "View render duration in seconds, including nested renders",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
	}
}

// ObserveRender implements views.Observer.
func (r *Recorder) ObserveRender(_ context.Context, state views.RenderState, err error) {
	view := state.View
	if state.File == "" && views.IsNotFound(err) {
		view = UnknownView
	}
	r.renders.WithLabelValues(view, Status(err)).Inc()
	if !state.Start.IsZero() {
		r.duration.WithLabelValues(view).Observe(time.Since(state.Start).Seconds())
	}
}

// Status maps a render error to its status label.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case views.IsNotFound(err):
		return StatusNotFound
	case errors.Is(err, views.ErrUnclosedSection):
		return StatusUnclosedSection
	default:
		return StatusError
	}
}
