package views

import "time"

// Options is a free-form bag of values passed through a render call. The
// Renderer never looks inside it; it's there for Executors, Observers, and
// templates that need engine-specific hints.
type Options map[string]any

// RenderState is the bookkeeping for one render call: what was asked for,
// which file it resolved to, the options it was called with, and when it
// started.
type RenderState struct {
	// View is the template identifier: the view name, with the default
	// extension appended if it had none.
	View string

	// File is the path of the template within the view root.
	File string

	// Options is the options bag the call was made with.
	Options Options

	// Start is when the call began.
	Start time.Time

	layout pendingLayout
}

// pendingLayout is a one-shot layout reference, set by extend and read
// once when the render call that set it finishes.
type pendingLayout struct {
	name string
	set  bool
}

func (p *pendingLayout) put(name string) {
	p.name = name
	p.set = true
}

// take returns the pending layout, if any, and clears it.
func (p *pendingLayout) take() (string, bool) {
	name, ok := p.name, p.set
	p.name, p.set = "", false
	return name, ok
}

// stateStack holds one RenderState per render call in progress, innermost
// last. Pushing on entry and popping on exit means every call sees its own
// bookkeeping again once the calls it made have returned.
type stateStack struct {
	frames []*RenderState
}

func (s *stateStack) push(state *RenderState) {
	s.frames = append(s.frames, state)
}

func (s *stateStack) pop() *RenderState {
	if len(s.frames) == 0 {
		return nil
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top
}

func (s *stateStack) top() *RenderState {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *stateStack) depth() int {
	return len(s.frames)
}
