package views

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoOpenSection is returned by EndSection when there's no section
	// open in the view being rendered.
	ErrNoOpenSection = errors.New("no open section")

	// ErrUnclosedSection is returned when a render finishes, or tries to
	// switch to its layout, while sections are still open.
	ErrUnclosedSection = errors.New("unclosed section")
)

// UnclosedSectionError reports the sections still open when View finished
// rendering. It matches ErrUnclosedSection with errors.Is.
type UnclosedSectionError struct {
	View     string
	Sections []string
}

func (e *UnclosedSectionError) Error() string {
	return fmt.Sprintf("%s in %q: %s", ErrUnclosedSection, e.View, strings.Join(e.Sections, ", "))
}

// Is reports whether target is ErrUnclosedSection.
func (e *UnclosedSectionError) Is(target error) bool {
	return target == ErrUnclosedSection
}

// captureStack holds the buffers output is currently being captured into.
// Writes always land in the innermost buffer.
type captureStack struct {
	bufs []*bytes.Buffer
}

func (c *captureStack) push() *bytes.Buffer {
	buf := &bytes.Buffer{}
	c.bufs = append(c.bufs, buf)
	return buf
}

func (c *captureStack) depth() int {
	return len(c.bufs)
}

func (c *captureStack) truncate(n int) {
	if n < len(c.bufs) {
		c.bufs = c.bufs[:n]
	}
}

// Write implements io.Writer. With nothing capturing, output is dropped.
func (c *captureStack) Write(p []byte) (int, error) {
	if len(c.bufs) == 0 {
		return len(p), nil
	}
	return c.bufs[len(c.bufs)-1].Write(p)
}

type openSection struct {
	name string

	// capture is the position of the section's buffer in the
	// captureStack.
	capture int
}

// sectionStack tracks open sections and the fragments captured for each
// closed one.
type sectionStack struct {
	open      []openSection
	fragments map[string][]string
}

func (s *sectionStack) depth() int {
	return len(s.open)
}

// truncate closes every section above depth n without keeping their
// contents, returning their names, outermost first.
func (s *sectionStack) truncate(n int) []string {
	if n >= len(s.open) {
		return nil
	}
	names := make([]string, 0, len(s.open)-n)
	for _, open := range s.open[n:] {
		names = append(names, open.name)
	}
	s.open = s.open[:n]
	return names
}

func (s *sectionStack) store(name, contents string) {
	if s.fragments == nil {
		s.fragments = map[string][]string{}
	}
	s.fragments[name] = append(s.fragments[name], contents)
}

func (s *sectionStack) drain(name string) string {
	frags, ok := s.fragments[name]
	if !ok {
		return ""
	}
	delete(s.fragments, name)
	return strings.Join(frags, "")
}

// Section opens the section called name. Output written after it, up to
// the matching EndSection, is captured for the section instead of being
// part of the view's output. Sections may be nested.
func (r *Renderer) Section(name string) {
	r.sections.open = append(r.sections.open, openSection{
		name:    name,
		capture: r.captures.depth(),
	})
	r.captures.push()
}

// EndSection closes the most recently opened section and stores what it
// captured. Sections close in the reverse order they were opened,
// whatever name the caller has in mind.
//
// EndSection returns ErrNoOpenSection if no section is open, or if the
// innermost open section belongs to a view that's including the current
// one. The section stack is left untouched when it fails.
func (r *Renderer) EndSection() error {
	if len(r.sections.open) == 0 {
		return ErrNoOpenSection
	}
	top := r.sections.open[len(r.sections.open)-1]
	if top.capture != r.captures.depth()-1 {
		return fmt.Errorf("%w: section %q was opened outside the current view", ErrNoOpenSection, top.name)
	}
	contents := r.captures.bufs[top.capture].String()
	r.captures.truncate(top.capture)
	r.sections.open = r.sections.open[:len(r.sections.open)-1]
	r.sections.store(top.name, contents)
	return nil
}

// RenderSection returns everything captured for the section called name,
// in the order it was captured, and forgets it. Rendering a section
// nothing was captured for, or one that's already been rendered, returns
// an empty string.
func (r *Renderer) RenderSection(name string) string {
	return r.sections.drain(name)
}
