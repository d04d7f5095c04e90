package runtime

import "slices"

// Session records the files loaded during one run and the value each file
// evaluated to, keyed by absolute path.
type Session struct {
	results map[string]Value
	order   []string
}

func NewSession() *Session {
	return &Session{results: make(map[string]Value)}
}

func (s *Session) Has(path string) bool {
	_, ok := s.results[path]
	return ok
}

func (s *Session) ReturnValue(path string) (Value, bool) {
	v, ok := s.results[path]
	return v, ok
}

// Record stores the result of path. Re-recording a path updates its value
// without changing load order.
func (s *Session) Record(path string, value Value) {
	if _, ok := s.results[path]; !ok {
		s.order = append(s.order, path)
	}
	s.results[path] = value
}

// Forget drops path so the next require runs the file again.
func (s *Session) Forget(path string) {
	if _, ok := s.results[path]; !ok {
		return
	}
	delete(s.results, path)
	s.order = slices.DeleteFunc(s.order, func(p string) bool { return p == path })
}

// Files lists loaded paths in load order.
func (s *Session) Files() []string {
	return append([]string(nil), s.order...)
}
