package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impractical.co/views"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}

func runRender(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "views", "home.tmpl"), `{{ extend "layout" }}{{ section "body" }}{{ .greeting }}, {{ .who }}{{ range .items }} {{ .name }}{{ end }}{{ endSection }}`)
	writeFile(t, filepath.Join(dir, "views", "layout.tmpl"), `[{{ renderSection "body" }}]`)
	writeFile(t, filepath.Join(dir, "data.yml"), "greeting: hello\nwho: file\nitems:\n  - name: a\n  - name: b\n")
	writeFile(t, filepath.Join(dir, "views.yml"), "views:\n  root: "+filepath.Join(dir, "views")+"\n  engine: text\nlogging:\n  level: error\n")

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"render", "--config", filepath.Join(dir, "views.yml"), "--data", filepath.Join(dir, "data.yml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	out, err := runRender(t, "home", "--set", "who=flag")
	require.NoError(t, err)
	assert.Equal(t, "[hello, flag a b]", out)
}

func TestRenderCommandString(t *testing.T) {
	out, err := runRender(t, "--string", "--escape", "html", "--set", "who=<b>", "{{ .who }}")
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;", out)
}

func TestRenderCommandErrors(t *testing.T) {
	_, err := runRender(t, "missing")
	require.Error(t, err)
	assert.True(t, views.IsNotFound(err))

	_, err = runRender(t, "home", "--set", "novalue")
	assert.Error(t, err)

	_, err = runRender(t, "home", "--escape", "xml")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	in := map[any]any{
		"a": []any{map[any]any{1: "one"}},
		"b": "x",
	}
	assert.Equal(t, map[string]any{
		"a": []any{map[string]any{"1": "one"}},
		"b": "x",
	}, normalize(in))
}
