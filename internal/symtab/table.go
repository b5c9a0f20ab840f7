// Package symtab implements a scoped symbol table: a stack of frames mapping names to
// values, searched innermost-frame-first. It is generic so the same implementation
// backs both elaboration (values are types) and code generation (values are symbols).
package symtab

import "github.com/pkg/errors"

// Table is a stack of lexical scopes, each mapping a name to a value of type V.
// The zero value is not usable; construct one with New.
type Table[V any] struct {
	frames []map[string]V
}

// New returns a table with a single global frame.
func New[V any]() *Table[V] {
	return &Table[V]{frames: []map[string]V{make(map[string]V)}}
}

// Push opens a new, empty scope nested inside the current one.
func (t *Table[V]) Push() {
	t.frames = append(t.frames, make(map[string]V))
}

// Pop closes the innermost scope. It refuses to pop the last remaining (global) frame.
func (t *Table[V]) Pop() error {
	if len(t.frames) <= 1 {
		return errors.New("symtab: cannot pop the global scope")
	}
	t.frames = t.frames[:len(t.frames)-1]
	return nil
}

// Add binds name to value in the innermost scope. It fails if name is already bound
// in that same scope, so that redefinition is always an explicit decision at the call
// site rather than a silent shadow-overwrite.
func (t *Table[V]) Add(name string, value V) error {
	top := t.frames[len(t.frames)-1]
	if _, exists := top[name]; exists {
		return errors.Errorf("symtab: %q already declared in this scope", name)
	}
	top[name] = value
	return nil
}

// Get looks up name starting from the innermost scope outward, returning the first match.
func (t *Table[V]) Get(name string) (V, bool) {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if v, ok := t.frames[i][name]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Depth reports the number of open scopes, including the global one.
func (t *Table[V]) Depth() int {
	return len(t.frames)
}
