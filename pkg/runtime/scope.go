package runtime

import "sort"

// Scope maps names to values and links to the scope it was created in.
// Function call scopes link to the function's closure instead of the caller.
type Scope struct {
	values map[string]Value
	parent *Scope
	locked bool
}

func NewScope(parent *Scope) *Scope {
	return &Scope{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the enclosing scope (nil for the root).
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Root walks up to the outermost scope.
func (s *Scope) Root() *Scope {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// Declare binds name in this scope, shadowing any outer binding.
func (s *Scope) Declare(name string, value Value) error {
	if s.locked {
		return Errorf(ErrLockedScope, "cannot declare '%s' in a locked scope", name)
	}
	s.values[name] = value
	return nil
}

// Write updates the nearest scope that already binds name.
func (s *Scope) Write(name string, value Value) error {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.values[name]; ok {
			cur.values[name] = value
			return nil
		}
	}
	return Errorf(ErrUndefinedVariable, "undefined variable '%s'", name)
}

// Read looks name up through the scope chain.
func (s *Scope) Read(name string) (Value, error) {
	if v, ok := s.Lookup(name); ok {
		return v, nil
	}
	return nil, Errorf(ErrUndefinedVariable, "undefined variable '%s'", name)
}

func (s *Scope) Lookup(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Contains checks this scope only.
func (s *Scope) Contains(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Get reads a binding of this scope only.
func (s *Scope) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Set writes name into this scope only: an existing binding is updated, a
// new one is declared, which fails once the scope is locked.
func (s *Scope) Set(name string, value Value) error {
	if _, ok := s.values[name]; ok {
		s.values[name] = value
		return nil
	}
	return s.Declare(name, value)
}

func (s *Scope) Delete(name string) {
	delete(s.values, name)
}

// Lock forbids further declarations. Existing bindings stay writable.
func (s *Scope) Lock() {
	s.locked = true
}

func (s *Scope) Locked() bool {
	return s.locked
}

// Keys returns the bindings of this scope in sorted order.
func (s *Scope) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
