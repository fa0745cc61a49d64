package handlebars_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impractical.co/views"
	"impractical.co/views/internal/handlebars"
)

func newRenderer(t *testing.T, files map[string]string, opts ...views.Option) *views.Renderer {
	t.Helper()

	fsys := fstest.MapFS{}
	for name, contents := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(contents)}
	}
	opts = append([]views.Option{
		views.WithExtension(".hbs"),
		views.WithExecutor(handlebars.Executor{}),
	}, opts...)
	r, err := views.New(fsys, opts...)
	require.NoError(t, err)
	return r
}

func TestExecutorLayout(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, map[string]string{
		"home.hbs":   `{{extend "layout"}}ignored{{#section "content"}}<p>{{name}}</p>{{/section}}`,
		"layout.hbs": `<main>{{renderSection "content"}}</main>`,
	})
	out, err := r.SetVar("name", "<gopher>", views.ContextRaw).Render(context.Background(), "home")
	require.NoError(t, err)
	assert.Equal(t, "<main><p>&lt;gopher&gt;</p></main>", out)
}

func TestExecutorSectionsDrain(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, map[string]string{
		"page.hbs": `{{#section "s"}}A{{/section}}{{#section "s"}}B{{/section}}[{{renderSection "s"}}][{{renderSection "s"}}]`,
	})
	out, err := r.Render(context.Background(), "page")
	require.NoError(t, err)
	assert.Equal(t, "[AB][]", out)
}

func TestExecutorNestedSections(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, map[string]string{
		"page.hbs": `{{#section "outer"}}<{{#section "inner"}}i{{/section}}>{{/section}}{{renderSection "outer"}}{{renderSection "inner"}}`,
	})
	out, err := r.Render(context.Background(), "page")
	require.NoError(t, err)
	assert.Equal(t, "<>i", out)
}

func TestExecutorInclude(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, map[string]string{
		"outer.hbs":   `{{currentView}}|{{include "partial"}}|{{currentView}}`,
		"partial.hbs": `{{currentView}}`,
	})
	out, err := r.Render(context.Background(), "outer")
	require.NoError(t, err)
	assert.Equal(t, "outer.hbs|partial.hbs|outer.hbs", out)
}

func TestExecutorHelpers(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, map[string]string{
		"page.hbs":  `{{setVar "who" "gopher"}}{{include "greet"}} {{esc query "url"}} {{excerpt long 8}}`,
		"greet.hbs": `{{shout who}}`,
	}, views.WithExecutor(handlebars.Executor{
		Helpers: map[string]any{
			"shout": func(s string) string { return s + "!" },
		},
	}))
	out, err := r.SetData(views.Data{
		"query": "a b",
		"long":  "abcdefghijkl",
	}, views.ContextRaw).Render(context.Background(), "page")
	require.NoError(t, err)
	assert.Equal(t, "gopher! a%20b abcde...", out)
}

func TestExecutorErrors(t *testing.T) {
	t.Parallel()

	t.Run("parse", func(t *testing.T) {
		t.Parallel()

		r := newRenderer(t, map[string]string{"page.hbs": `{{#section "s"}}`})
		_, err := r.Render(context.Background(), "page")
		require.Error(t, err)
	})

	t.Run("include", func(t *testing.T) {
		t.Parallel()

		r := newRenderer(t, map[string]string{"page.hbs": `{{include "missing"}}`})
		_, err := r.Render(context.Background(), "page")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing.hbs")
	})

	t.Run("escapeContext", func(t *testing.T) {
		t.Parallel()

		r := newRenderer(t, map[string]string{"page.hbs": `{{esc "x" "xml"}}`})
		_, err := r.Render(context.Background(), "page")
		require.Error(t, err)
		assert.True(t, errors.Is(err, views.ErrUnknownContext))
	})
}
