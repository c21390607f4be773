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

package dos

import (
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Method is a callable member.
type Method func(args ...any) (any, error)

// Getter reads an accessor member.
type Getter func() any

// Setter writes an accessor member.
type Setter func(v any) error

// Visibility names one of the member buckets of a class level.
type Visibility uint8

const (
	VisPublic Visibility = iota
	VisProtected
	VisPrivate
	VisSuper
)

func (v Visibility) String() string {
	switch v {
	case VisPublic:
		return "Public"
	case VisProtected:
		return "Protected"
	case VisPrivate:
		return "Private"
	case VisSuper:
		return "Super"
	}
	return fmt.Sprintf("Visibility(%d)", uint8(v))
}

// MemberKind classifies a scope member.
type MemberKind uint8

const (
	// MemberData is a plain value slot (raw fields and constants).
	MemberData MemberKind = iota
	// MemberAccessor is a getter and/or setter pair.
	MemberAccessor
	// MemberMethod is a callable.
	MemberMethod
	// MemberObligation is an interface requirement not implemented yet.
	MemberObligation
	// MemberBuiltin is a runtime-provided introspection member.
	MemberBuiltin
)

func (k MemberKind) String() string {
	switch k {
	case MemberData:
		return "data"
	case MemberAccessor:
		return "accessor"
	case MemberMethod:
		return "method"
	case MemberObligation:
		return "obligation"
	case MemberBuiltin:
		return "builtin"
	}
	return fmt.Sprintf("MemberKind(%d)", uint8(k))
}

// MemberInfo describes a member for introspection.
type MemberInfo struct {
	Name     string
	Kind     MemberKind
	Readable bool
	Writable bool
}

// member is one entry of a scope table.
type member struct {
	kind MemberKind

	// data
	value    any
	writable bool
	slot     *fieldSlot

	// accessor
	get Getter
	set Setter

	// method, or callable builtin
	fn Method
}

func (m *member) clone() *member {
	c := *m
	return &c
}

func (m *member) readable() bool {
	switch m.kind {
	case MemberAccessor:
		return m.get != nil
	case MemberObligation:
		return false
	}
	return true
}

func (m *member) canWrite() bool {
	switch m.kind {
	case MemberData:
		return m.writable
	case MemberAccessor:
		return m.set != nil
	}
	return false
}

// Scope is an ordered member table of one visibility.
//
// Definition helpers (Method, Getter, Setter, Field, Const, Class) only work
// while the owning class level is being defined. The runtime accessors
// (Get, Set, Call, Has) work at any time.
type Scope struct {
	vis     Visibility
	owner   *Class
	members *linkedhashmap.Map
	def     *defContext
}

func newScope(vis Visibility, owner *Class) *Scope {
	return &Scope{vis: vis, owner: owner, members: linkedhashmap.New()}
}

// Visibility returns the bucket this scope represents.
func (s *Scope) Visibility() Visibility {
	return s.vis
}

func (s *Scope) lookup(name string) (*member, bool) {
	v, ok := s.members.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*member), true
}

func (s *Scope) put(name string, m *member) {
	s.members.Put(name, m)
}

func (s *Scope) remove(name string) {
	s.members.Remove(name)
}

func (s *Scope) className() string {
	if s.owner == nil {
		return ""
	}
	return s.owner.name
}

func (s *Scope) noMember(name string) error {
	return fmt.Errorf("%w: %s.%s of %q", ErrNoMember, s.vis, name, s.className())
}

// Has reports whether the scope holds an implemented member called name.
func (s *Scope) Has(name string) bool {
	m, ok := s.lookup(name)
	return ok && m.kind != MemberObligation
}

// Names returns the implemented member names in definition order.
func (s *Scope) Names() []string {
	out := make([]string, 0, s.members.Size())
	it := s.members.Iterator()
	for it.Next() {
		if it.Value().(*member).kind == MemberObligation {
			continue
		}
		out = append(out, it.Key().(string))
	}
	return out
}

// Members describes every member, obligations included, in definition order.
func (s *Scope) Members() []MemberInfo {
	out := make([]MemberInfo, 0, s.members.Size())
	it := s.members.Iterator()
	for it.Next() {
		m := it.Value().(*member)
		out = append(out, MemberInfo{
			Name:     it.Key().(string),
			Kind:     m.kind,
			Readable: m.readable(),
			Writable: m.canWrite(),
		})
	}
	return out
}

// Get reads a member. Methods are returned as Method values; a write-only
// accessor reads as nil.
func (s *Scope) Get(name string) (any, error) {
	m, ok := s.lookup(name)
	if !ok || m.kind == MemberObligation {
		return nil, s.noMember(name)
	}
	switch m.kind {
	case MemberAccessor:
		if m.get == nil {
			return nil, nil
		}
		return m.get(), nil
	case MemberMethod:
		return m.fn, nil
	case MemberBuiltin:
		if m.fn != nil {
			return m.fn, nil
		}
	}
	return m.value, nil
}

// Set writes a member through its setter or into its data slot.
func (s *Scope) Set(name string, v any) error {
	m, ok := s.lookup(name)
	if !ok || m.kind == MemberObligation {
		return s.noMember(name)
	}
	switch {
	case m.kind == MemberAccessor && m.set != nil:
		return m.set(v)
	case m.kind == MemberData && m.writable:
		m.value = v
		return nil
	}
	return fmt.Errorf("%w: %s.%s of %q", ErrReadOnly, s.vis, name, s.className())
}

// Call invokes a method member.
func (s *Scope) Call(name string, args ...any) (any, error) {
	m, ok := s.lookup(name)
	if !ok || m.kind == MemberObligation {
		return nil, s.noMember(name)
	}
	fn := m.fn
	if fn == nil && m.kind == MemberData {
		fn, _ = m.value.(Method)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %s.%s of %q", ErrNotCallable, s.vis, name, s.className())
	}
	return fn(args...)
}

// copyMembers clones every implemented member of src into dst.
func copyMembers(dst, src *Scope) {
	it := src.members.Iterator()
	for it.Next() {
		m := it.Value().(*member)
		if m.kind == MemberObligation || m.kind == MemberBuiltin {
			continue
		}
		dst.put(it.Key().(string), m.clone())
	}
}

// splitAccessor reports whether a and b form a getter-only / setter-only pair.
func splitAccessor(a, b *member) bool {
	if a.kind != MemberAccessor || b.kind != MemberAccessor {
		return false
	}
	return (a.get != nil && a.set == nil && b.get == nil && b.set != nil) ||
		(a.get == nil && a.set != nil && b.get != nil && b.set == nil)
}

// snapshotSuper builds the Super view: Public members overlaid by Protected
// ones. A name may only live in both when the two halves split an accessor.
func snapshotSuper(c *Class, pub, prot *Scope) (*Scope, error) {
	sup := newScope(VisSuper, c)
	copyMembers(sup, pub)
	it := prot.members.Iterator()
	for it.Next() {
		name := it.Key().(string)
		m := it.Value().(*member)
		if m.kind == MemberObligation {
			continue
		}
		if pm, ok := sup.lookup(name); ok {
			if !splitAccessor(pm, m) {
				return nil, defErr(c.name, "protected member %q collides with public member", name)
			}
			merged := pm.clone()
			if merged.get == nil {
				merged.get = m.get
			}
			if merged.set == nil {
				merged.set = m.set
			}
			sup.put(name, merged)
			continue
		}
		sup.put(name, m.clone())
	}
	return sup, nil
}

// checkClash applies the Public/Protected coexistence rule after a body ran.
func checkClash(c *Class, pub, prot *Scope) error {
	it := prot.members.Iterator()
	for it.Next() {
		name := it.Key().(string)
		m := it.Value().(*member)
		if m.kind == MemberObligation {
			continue
		}
		pm, ok := pub.lookup(name)
		if !ok || pm.kind == MemberObligation || pm.kind == MemberBuiltin {
			continue
		}
		if !splitAccessor(pm, m) {
			return defErr(c.name, "protected member %q collides with public member", name)
		}
	}
	return nil
}
