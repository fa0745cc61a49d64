package views

import "maps"

// Data is the set of variables in scope when a template executes.
type Data map[string]any

// Clone returns a shallow copy of d. Cloning a nil Data returns an empty,
// non-nil Data.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	maps.Copy(out, d)
	return out
}

// dataScope tracks persistent data, which survives across renders, and
// transient data, which lives for a single top-level render pass.
type dataScope struct {
	persistent Data

	// transient is nil when no pass has initialized it yet; reads fall
	// back to persistent in that case.
	transient Data
}

func (s *dataScope) ensureTransient() {
	if s.transient == nil {
		s.transient = s.persistent.Clone()
	}
}

// prepare initializes the transient data for a render pass, and makes it
// durable when save is set.
func (s *dataScope) prepare(save bool) {
	s.ensureTransient()
	if save {
		s.persistent = s.transient.Clone()
	}
}

func (s *dataScope) merge(values Data) {
	s.ensureTransient()
	for k, v := range values {
		s.transient[k] = v
	}
}

func (s *dataScope) set(name string, value any) {
	s.ensureTransient()
	s.transient[name] = value
}

func (s *dataScope) get() Data {
	if s.transient != nil {
		return s.transient.Clone()
	}
	return s.persistent.Clone()
}

// reset drops persistent data. A transient scope that's already been
// initialized is left alone until its pass ends.
func (s *dataScope) reset() {
	s.persistent = nil
}

func (s *dataScope) clearTransient() {
	s.transient = nil
}
