/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package namespace resolves dotted paths against a tree of modules.
// A module is a named node that may hold one value (typically a class) and any
// number of child modules, so "a.b.C" and "a.b.C.Inner" can coexist.
package namespace

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrInvalidPath is returned for a path that is not identifier(.identifier)*.
	ErrInvalidPath = errors.New("dos(namespace): invalid path")
	// ErrOccupied is returned when placing a value into a module that already holds one.
	ErrOccupied = errors.New("dos(namespace): path already occupied")
)

var pathRe = regexp.MustCompile(`^[$_A-Za-z][$_A-Za-z0-9]*(\.[$_A-Za-z][$_A-Za-z0-9]*)*$`)

// ValidPath reports whether p is a dotted identifier path.
func ValidPath(p string) bool {
	return pathRe.MatchString(p)
}

// Module is one node of a namespace tree.
type Module struct {
	name     string
	parent   *Module
	children map[string]*Module
	value    any
	occupied bool
}

// NewRoot returns an empty, unnamed root module.
func NewRoot() *Module {
	return &Module{}
}

// Name returns the last path segment ("" for a root).
func (m *Module) Name() string {
	return m.name
}

// Path returns the dotted path from the root.
func (m *Module) Path() string {
	if m.parent == nil {
		return m.name
	}
	if p := m.parent.Path(); p != "" {
		return p + "." + m.name
	}
	return m.name
}

// Parent returns the enclosing module, or nil for a root.
func (m *Module) Parent() *Module {
	return m.parent
}

// Value returns the value held by m and whether one is set.
func (m *Module) Value() (any, bool) {
	return m.value, m.occupied
}

// Children returns the child modules sorted by name.
func (m *Module) Children() []*Module {
	out := make([]*Module, 0, len(m.children))
	for _, c := range m.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Ensure returns the module at path, creating intermediate levels on demand.
func (m *Module) Ensure(path string) (*Module, error) {
	if !ValidPath(path) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	cur := m
	for _, seg := range strings.Split(path, ".") {
		next, ok := cur.children[seg]
		if !ok {
			if cur.children == nil {
				cur.children = make(map[string]*Module)
			}
			next = &Module{name: seg, parent: cur}
			cur.children[seg] = next
		}
		cur = next
	}
	return cur, nil
}

// Resolve returns the module at path without creating anything.
func (m *Module) Resolve(path string) (*Module, bool) {
	if !ValidPath(path) {
		return nil, false
	}
	cur := m
	for _, seg := range strings.Split(path, ".") {
		next, ok := cur.children[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Lookup returns the value held at path.
func (m *Module) Lookup(path string) (any, bool) {
	n, ok := m.Resolve(path)
	if !ok || !n.occupied {
		return nil, false
	}
	return n.value, true
}

// Place stores v at path. It fails if the module already holds a value.
func (m *Module) Place(path string, v any) (*Module, error) {
	n, err := m.Ensure(path)
	if err != nil {
		return nil, err
	}
	if n.occupied {
		return nil, fmt.Errorf("%w: %q", ErrOccupied, n.Path())
	}
	n.value, n.occupied = v, true
	return n, nil
}

// Remove clears the value at path. Intermediate modules are kept.
// It reports whether a value was removed.
func (m *Module) Remove(path string) bool {
	n, ok := m.Resolve(path)
	if !ok || !n.occupied {
		return false
	}
	n.value, n.occupied = nil, false
	return true
}

// Walk visits m and its descendants depth-first in name order until fn returns false.
func (m *Module) Walk(fn func(*Module) bool) bool {
	if !fn(m) {
		return false
	}
	for _, c := range m.Children() {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
