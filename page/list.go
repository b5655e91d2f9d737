package page

import (
	"errors"
	"fmt"
	"slices"
)

// ErrModuleNotFound is returned when list has no module with requested id.
var ErrModuleNotFound = errors.New("module not found")

// List is ordered sequence of split modules, position defines export order.
// It is not safe for concurrent use, owner serializes access.
type List struct {
	modules []HTMLModule
}

// NewList copies modules into new list. Modules with duplicate or empty ids
// get fresh identifiers so ids stay unique for list lifetime.
func NewList(modules []HTMLModule) *List {
	l := &List{modules: make([]HTMLModule, 0, len(modules))}
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if m.ID == "" || seen[m.ID] {
			m.ID = NewModuleID(m.Kind)
		}
		seen[m.ID] = true
		l.modules = append(l.modules, m)
	}
	return l
}

func (l *List) Len() int {
	return len(l.modules)
}

// Modules returns copy of list content.
func (l *List) Modules() []HTMLModule {
	return slices.Clone(l.modules)
}

// IDs returns module identifiers in order.
func (l *List) IDs() []string {
	ids := make([]string, len(l.modules))
	for i, m := range l.modules {
		ids[i] = m.ID
	}
	return ids
}

// Index returns position of module or -1.
func (l *List) Index(id string) int {
	return slices.IndexFunc(l.modules, func(m HTMLModule) bool { return m.ID == id })
}

func (l *List) Get(id string) (HTMLModule, bool) {
	if i := l.Index(id); i >= 0 {
		return l.modules[i], true
	}
	return HTMLModule{}, false
}

// SetHTML replaces module markup keeping its identity and kind.
func (l *List) SetHTML(id, html string) (HTMLModule, error) {
	i := l.Index(id)
	if i < 0 {
		return HTMLModule{}, fmt.Errorf("set html of %q: %w", id, ErrModuleNotFound)
	}
	l.modules[i].HTML = html
	return l.modules[i], nil
}

// Delete removes module, its id is never handed out again.
func (l *List) Delete(id string) (HTMLModule, error) {
	i := l.Index(id)
	if i < 0 {
		return HTMLModule{}, fmt.Errorf("delete %q: %w", id, ErrModuleNotFound)
	}
	m := l.modules[i]
	l.modules = slices.Delete(l.modules, i, i+1)
	return m, nil
}

// Move puts module at position to, which is clamped to list bounds.
func (l *List) Move(id string, to int) error {
	i := l.Index(id)
	if i < 0 {
		return fmt.Errorf("move %q: %w", id, ErrModuleNotFound)
	}
	m := l.modules[i]
	l.modules = slices.Delete(l.modules, i, i+1)
	to = max(0, min(to, len(l.modules)))
	l.modules = slices.Insert(l.modules, to, m)
	return nil
}

// Insert adds module at position at (clamped) assigning id when missing.
func (l *List) Insert(at int, m HTMLModule) HTMLModule {
	if m.ID == "" || l.Index(m.ID) >= 0 {
		m.ID = NewModuleID(m.Kind)
	}
	at = max(0, min(at, len(l.modules)))
	l.modules = slices.Insert(l.modules, at, m)
	return m
}
