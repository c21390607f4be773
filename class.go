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
	"slices"
	"strings"

	"dirpx.dev/dos/apis"
	"dirpx.dev/dos/namespace"
)

// ClassID is the arena slot of a class. Zero is never a valid class.
type ClassID uint32

// Flags is the flag set of a class.
type Flags uint16

const (
	FlagAbstract Flags = 1 << iota
	FlagInterface
	FlagStatic
	FlagStaticOnly
	FlagInner
	FlagRoot
	FlagRawParams
	FlagManualSuperInit
	FlagException
	FlagAllocator
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{FlagAbstract, "abstract"},
	{FlagInterface, "interface"},
	{FlagStatic, "static"},
	{FlagStaticOnly, "static-only"},
	{FlagInner, "inner"},
	{FlagRoot, "root"},
	{FlagRawParams, "raw-params"},
	{FlagManualSuperInit, "manual-super-init"},
	{FlagException, "exception"},
	{FlagAllocator, "allocator"},
}

// Has reports whether every bit of f2 is set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.f) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Class is a defined class. Its RTTI is immutable after definition.
type Class struct {
	rt         *Runtime
	id         ClassID
	name       string
	simpleName string
	kind       ClassKind
	flags      Flags
	super      *Class
	interfaces []*Class
	hierarchy  []*Class
	ns         *namespace.Module
	module     *namespace.Module

	body BodyFunc

	allocator   Allocator
	allocParams map[string]any

	// owner is the class a static section belongs to.
	owner *Class
	// staticClass and section are the static companion of a non-static class.
	staticClass *Class
	section     *StaticSection
	// instance is the single object of a static class.
	instance *Object

	constructible bool
	pending       []*Object
	inner         []*Class
}

var _ apis.ClassNode = (*Class)(nil)

// ID returns the arena slot.
func (c *Class) ID() ClassID { return c.id }

// Name returns the canonical dotted name.
func (c *Class) Name() string { return c.name }

// EntityName implements apis.Namer.
func (c *Class) EntityName() string { return c.name }

// SimpleName returns the last path segment.
func (c *Class) SimpleName() string { return c.simpleName }

// Kind returns the definer used for the class.
func (c *Class) Kind() ClassKind { return c.kind }

// Flags returns the flag set.
func (c *Class) Flags() Flags { return c.flags }

// Super returns the superclass, or nil for roots.
func (c *Class) Super() *Class { return c.super }

// Interfaces returns the classes listed in implements.
func (c *Class) Interfaces() []*Class { return slices.Clone(c.interfaces) }

// Hierarchy returns the ancestor chain, self first.
func (c *Class) Hierarchy() []*Class { return slices.Clone(c.hierarchy) }

// RootModule returns the namespace the class was defined in.
func (c *Class) RootModule() *namespace.Module { return c.ns }

// Module returns the namespace node holding the class.
func (c *Class) Module() *namespace.Module { return c.module }

// Runtime returns the defining runtime.
func (c *Class) Runtime() *Runtime { return c.rt }

// IsAbstract reports whether the class cannot be instantiated directly.
func (c *Class) IsAbstract() bool { return c.flags.Has(FlagAbstract) }

// IsInterface reports whether the class is an interface.
func (c *Class) IsInterface() bool { return c.flags.Has(FlagInterface) }

// IsException reports whether the class is an exception class.
func (c *Class) IsException() bool { return c.flags.Has(FlagException) }

func (c *Class) isStatic() bool { return c.flags.Has(FlagStatic) }

// described is the class RTTI members talk about: the owner for static sections.
func (c *Class) described() *Class {
	if c.owner != nil {
		return c.owner
	}
	return c
}

// InstanceOf reports whether other is in the ancestor chain of c.
func (c *Class) InstanceOf(other *Class) bool {
	if other == nil {
		return false
	}
	for _, h := range c.hierarchy {
		if h == other {
			return true
		}
	}
	return false
}

// Implements reports whether other is listed in implements at any ancestor level.
func (c *Class) Implements(other *Class) bool {
	if other == nil {
		return false
	}
	for _, h := range c.hierarchy {
		if slices.Contains(h.interfaces, other) {
			return true
		}
	}
	return false
}

// AllDescendants returns the registered classes having c as an ancestor, c excluded.
func (c *Class) AllDescendants() []*Class {
	return c.rt.nodes(c.rt.reg.DescendantsOf(c))
}

// AllImplementors returns the registered classes implementing interface c.
func (c *Class) AllImplementors() ([]*Class, error) {
	if !c.IsInterface() {
		return nil, defErr(c.name, "AllImplementors on a class that is not an interface")
	}
	return c.rt.nodes(c.rt.reg.ImplementorsOf(c)), nil
}

// NodeID implements apis.ClassNode.
func (c *Class) NodeID() int64 { return int64(c.id) }

// InstanceOfNode implements apis.ClassNode.
func (c *Class) InstanceOfNode(other apis.ClassNode) bool {
	o, ok := other.(*Class)
	return ok && c.InstanceOf(o)
}

// ImplementsNode implements apis.ClassNode.
func (c *Class) ImplementsNode(other apis.ClassNode) bool {
	o, ok := other.(*Class)
	return ok && c.Implements(o)
}

// BaseNodes implements apis.ClassNode: the superclass, then the interfaces.
func (c *Class) BaseNodes() []apis.ClassNode {
	out := make([]apis.ClassNode, 0, 1+len(c.interfaces))
	if c.super != nil {
		out = append(out, c.super)
	}
	for _, i := range c.interfaces {
		out = append(out, i)
	}
	return out
}

// Static returns the static section.
func (c *Class) Static() *StaticSection { return c.section }

// StaticClass returns the static companion class.
func (c *Class) StaticClass() *Class { return c.staticClass }

// Owner returns the class a static companion belongs to.
func (c *Class) Owner() *Class { return c.owner }

// Allocator returns the allocator of concrete classes.
func (c *Class) Allocator() Allocator { return c.allocator }

func (c *Class) staticPublic() (*Scope, error) {
	if c.section == nil || c.section.obj == nil || c.section.obj.leaf == nil {
		return nil, fmt.Errorf("%w: %q has no static section", ErrNoMember, c.name)
	}
	if c.section.obj.disposed {
		return nil, fmt.Errorf("%w: static section of %q was deinitialized", ErrNoMember, c.name)
	}
	return c.section.obj.public, nil
}

// Get reads a static Public member.
func (c *Class) Get(name string) (any, error) {
	s, err := c.staticPublic()
	if err != nil {
		return nil, err
	}
	return s.Get(name)
}

// Set writes a static Public member.
func (c *Class) Set(name string, v any) error {
	s, err := c.staticPublic()
	if err != nil {
		return err
	}
	return s.Set(name, v)
}

// Call invokes a static Public method.
func (c *Class) Call(name string, args ...any) (any, error) {
	s, err := c.staticPublic()
	if err != nil {
		return nil, err
	}
	return s.Call(name, args...)
}

// Has reports whether the static Public scope holds name.
func (c *Class) Has(name string) bool {
	s, err := c.staticPublic()
	return err == nil && s.Has(name)
}

// Obligations builds a probe instance tree of c and returns the interface
// requirements left open, as "Scope.name" keys. A concrete class with open
// keys fails at construction.
func (c *Class) Obligations() ([]string, error) {
	if c.isStatic() {
		return nil, nil
	}
	probe := &Object{class: c}
	probe.public = newScope(VisPublic, c)
	probe.protected = newScope(VisProtected, c)
	tr := newTracker()
	if _, err := c.buildLevel(probe, probe.public, probe.protected, tr); err != nil {
		return nil, err
	}
	return tr.pending(), nil
}

func (c *Class) String() string {
	return c.name
}
