package views_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impractical.co/views"
)

func TestExtensionLocator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("verbatimFirst", func(t *testing.T) {
		t.Parallel()

		fsys := newRecordingFS(map[string]string{
			"about.txt":      "verbatim",
			"about.txt.tmpl": "appended",
		})
		file, err := views.ExtensionLocator{}.Locate(ctx, fsys, "about.txt", ".tmpl")
		require.NoError(t, err)
		assert.Equal(t, "about.txt", file)
		assert.Equal(t, []string{"about.txt"}, fsys.opened)
	})

	t.Run("thenDefaultExtension", func(t *testing.T) {
		t.Parallel()

		fsys := newRecordingFS(map[string]string{
			"about.txt.tmpl": "appended",
		})
		file, err := views.ExtensionLocator{}.Locate(ctx, fsys, "about.txt", ".tmpl")
		require.NoError(t, err)
		assert.Equal(t, "about.txt.tmpl", file)
		assert.Equal(t, []string{"about.txt", "about.txt.tmpl"}, fsys.opened)
	})

	t.Run("extensionless", func(t *testing.T) {
		t.Parallel()

		fsys := newRecordingFS(map[string]string{
			"home.tmpl": "home",
		})
		file, err := views.ExtensionLocator{}.Locate(ctx, fsys, "home", "tmpl")
		require.NoError(t, err)
		assert.Equal(t, "home.tmpl", file)
	})

	t.Run("alternates", func(t *testing.T) {
		t.Parallel()

		fsys := newRecordingFS(map[string]string{
			"home.gohtml": "home",
		})
		file, err := views.ExtensionLocator{Alternates: []string{"html", ".gohtml"}}.Locate(ctx, fsys, "home", ".tmpl")
		require.NoError(t, err)
		assert.Equal(t, "home.gohtml", file)
		assert.Equal(t, []string{"home.tmpl", "home.html", "home.gohtml"}, fsys.opened)
	})

	t.Run("notFound", func(t *testing.T) {
		t.Parallel()

		fsys := newRecordingFS(map[string]string{})
		_, err := views.ExtensionLocator{Alternates: []string{".html"}}.Locate(ctx, fsys, "missing.txt", ".tmpl")
		require.Error(t, err)
		assert.True(t, errors.Is(err, views.ErrTemplateNotFound))

		var notFound *views.NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "missing.txt", notFound.View)
		assert.Equal(t, []string{"missing.txt", "missing.txt.tmpl", "missing.txt.html"}, notFound.Tried)
	})

	t.Run("directoriesDoNotCount", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{
			"posts.tmpl/index.tmpl": {Data: []byte("nested")},
		}
		_, err := views.ExtensionLocator{}.Locate(ctx, fsys, "posts", ".tmpl")
		assert.True(t, views.IsNotFound(err))
	})
}
