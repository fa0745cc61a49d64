package views

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

var (
	// ErrTemplateNotFound is returned when a view name can't be resolved
	// to a template file, no matter which strategies were tried.
	ErrTemplateNotFound = errors.New("template not found")
)

// NotFoundError describes a failed lookup. It matches ErrTemplateNotFound
// with errors.Is.
type NotFoundError struct {
	// View is the logical name that was asked for.
	View string

	// Tried lists the paths that were checked, in order.
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q (tried %s)", ErrTemplateNotFound, e.View, strings.Join(e.Tried, ", "))
}

// Is reports whether target is ErrTemplateNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}

// Locator resolves a logical view name to the path of a template file in
// fsys. ext is the Renderer's default extension, with its leading dot.
type Locator interface {
	Locate(ctx context.Context, fsys fs.FS, view, ext string) (string, error)
}

// ExtensionLocator is the default Locator. It tries the view name as given
// when it carries an extension, then the name with the default extension
// appended, then the name with each of Alternates appended.
type ExtensionLocator struct {
	// Alternates are extra extensions to try, in order, when neither the
	// name as given nor the name plus the default extension exist.
	Alternates []string
}

// Locate implements Locator.
func (l ExtensionLocator) Locate(_ context.Context, fsys fs.FS, view, ext string) (string, error) {
	name := cleanViewName(view)
	candidates := make([]string, 0, 2+len(l.Alternates))
	if path.Ext(name) != "" {
		candidates = append(candidates, name)
	}
	candidates = append(candidates, name+normalizeExt(ext))
	for _, alt := range l.Alternates {
		candidates = append(candidates, name+normalizeExt(alt))
	}

	var tried []string
	seen := map[string]struct{}{}
	for _, candidate := range candidates {
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		tried = append(tried, candidate)
		if isFile(fsys, candidate) {
			return candidate, nil
		}
	}
	return "", &NotFoundError{View: view, Tried: tried}
}

// identifier returns the template identifier for view: the name itself if
// it has an extension, the name plus ext otherwise.
func identifier(view, ext string) string {
	name := cleanViewName(view)
	if path.Ext(name) != "" {
		return name
	}
	return name + normalizeExt(ext)
}

func cleanViewName(view string) string {
	return strings.TrimLeft(strings.ReplaceAll(view, "\\", "/"), "/")
}

func normalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// normalizeRoot trims the trailing separators and spaces off a view root.
func normalizeRoot(root string) string {
	root = strings.TrimRight(strings.ReplaceAll(root, "\\", "/"), "/ ")
	if root == "" {
		return "."
	}
	return root
}

func isFile(fsys fs.FS, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
