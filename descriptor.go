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
	"maps"
	"slices"

	"dirpx.dev/dos/namespace"
)

// ClassKind selects the definer of a class.
type ClassKind uint8

const (
	KindClass ClassKind = iota
	KindAbstract
	KindRoot
	KindInterface
	KindStatic
	KindAllocator
	KindException
)

var kindNames = [...]string{
	KindClass:     "class",
	KindAbstract:  "abstract",
	KindRoot:      "root",
	KindInterface: "interface",
	KindStatic:    "static",
	KindAllocator: "allocator",
	KindException: "exception",
}

func (k ClassKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ClassKind(%d)", uint8(k))
}

// ParseClassKind parses the name of a kind.
func ParseClassKind(s string) (ClassKind, error) {
	for k, name := range kindNames {
		if name == s {
			return ClassKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown class kind %q", ErrDefinition, s)
}

// Descriptor describes a class to define.
type Descriptor struct {
	// Extends is the superclass.
	Extends *Class
	// Implements lists interfaces and mixin classes.
	Implements []*Class
	// Abstract and Exception are set by the definers; the map form may
	// carry them and they are checked against the kind.
	Abstract  bool
	Exception bool
	// UseRawParams hands plain maps to InitRaw instead of *Params.
	UseRawParams bool
	// ManualSuperInit leaves the super constructors to Body.SuperInit.
	ManualSuperInit bool
	// Allocator overrides the runtime default allocator.
	Allocator       AllocatorFactory
	AllocatorParams map[string]any
	// DefaultAllocator makes an allocator class the runtime default.
	DefaultAllocator bool
	// Namespace is the root the class path resolves against; nil is the
	// runtime namespace.
	Namespace *namespace.Module
	// Body declares the instance members.
	Body BodyFunc
	// Static declares the static section.
	Static BodyFunc
}

// descriptorKeys is the option set of the map form.
var descriptorKeys = map[string]struct{}{
	"$":                  {},
	"extends":            {},
	"implements":         {},
	"static":             {},
	"abstract":           {},
	"allocator":          {},
	"isDefaultAllocator": {},
	"allocatorParams":    {},
	"useRawParams":       {},
	"manualSuperInit":    {},
	"exception":          {},
	"namespace":          {},
}

// DescriptorFromMap converts the map form of a descriptor. Classes may be
// given by value or by path; "allocator" also accepts "pool", "direct",
// "counting" or an allocator class.
func DescriptorFromMap(rt *Runtime, name string, m map[string]any) (Descriptor, error) {
	var d Descriptor
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if _, ok := descriptorKeys[k]; !ok {
			return d, defErr(name, "unknown descriptor key %q", k)
		}
	}
	var err error
	if v, ok := m["extends"]; ok && v != nil {
		if d.Extends, err = classRef(rt, name, "extends", v); err != nil {
			return d, err
		}
	}
	if v, ok := m["implements"]; ok && v != nil {
		if d.Implements, err = classRefs(rt, name, v); err != nil {
			return d, err
		}
	}
	flags := []struct {
		key string
		dst *bool
	}{
		{"abstract", &d.Abstract},
		{"exception", &d.Exception},
		{"useRawParams", &d.UseRawParams},
		{"manualSuperInit", &d.ManualSuperInit},
		{"isDefaultAllocator", &d.DefaultAllocator},
	}
	for _, f := range flags {
		v, ok := m[f.key]
		if !ok {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return d, defErr(name, "descriptor key %q must be a bool, got %T", f.key, v)
		}
		*f.dst = b
	}
	if v, ok := m["allocator"]; ok && v != nil {
		if d.Allocator, err = allocatorRef(rt, name, v); err != nil {
			return d, err
		}
	}
	if v, ok := m["allocatorParams"]; ok && v != nil {
		p, ok := v.(map[string]any)
		if !ok {
			return d, defErr(name, "allocatorParams must be a map, got %T", v)
		}
		d.AllocatorParams = p
	}
	if v, ok := m["namespace"]; ok && v != nil {
		ns, ok := v.(*namespace.Module)
		if !ok {
			return d, defErr(name, "namespace must be a *namespace.Module, got %T", v)
		}
		d.Namespace = ns
	}
	if d.Body, err = bodyRef(name, "$", m["$"]); err != nil {
		return d, err
	}
	if d.Static, err = bodyRef(name, "static", m["static"]); err != nil {
		return d, err
	}
	return d, nil
}

func classRef(rt *Runtime, name, key string, v any) (*Class, error) {
	switch x := v.(type) {
	case *Class:
		return x, nil
	case string:
		c, err := rt.Import(x)
		if err != nil {
			return nil, wrapErr(name, ErrDefinition, "invalid "+key, err)
		}
		return c, nil
	}
	return nil, defErr(name, "%s must be a class or a path, got %T", key, v)
}

func classRefs(rt *Runtime, name string, v any) ([]*Class, error) {
	var items []any
	switch x := v.(type) {
	case []*Class:
		return x, nil
	case []string:
		for _, s := range x {
			items = append(items, s)
		}
	case []any:
		items = x
	default:
		return nil, defErr(name, "implements must be a list, got %T", v)
	}
	out := make([]*Class, 0, len(items))
	for _, it := range items {
		c, err := classRef(rt, name, "implements", it)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func allocatorRef(rt *Runtime, name string, v any) (AllocatorFactory, error) {
	switch x := v.(type) {
	case AllocatorFactory:
		return x, nil
	case func(*Class, map[string]any) (Allocator, error):
		return x, nil
	case *Class:
		return ClassAllocator(x), nil
	case string:
		switch x {
		case "pool":
			return Pool(rt.cfg.PoolCapacity), nil
		case "direct":
			return Direct(), nil
		case "counting":
			return Counting(Pool(rt.cfg.PoolCapacity)), nil
		}
		c, err := rt.Import(x)
		if err != nil {
			return nil, wrapErr(name, ErrDefinition, "invalid allocator", err)
		}
		return ClassAllocator(c), nil
	}
	return nil, defErr(name, "invalid allocator %T", v)
}

func bodyRef(name, key string, v any) (BodyFunc, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case BodyFunc:
		return x, nil
	case func(*Body):
		return x, nil
	}
	return nil, defErr(name, "%s must be a body function, got %T", key, v)
}

// validateDescriptor checks name and d against kind before anything is placed.
func validateDescriptor(kind ClassKind, name string, d *Descriptor) error {
	if !namespace.ValidPath(name) {
		return defErr(name, "invalid class name")
	}
	for i, c := range d.Implements {
		if c == nil {
			return defErr(name, "implements[%d] is nil", i)
		}
		if c.isStatic() || c.flags.Has(FlagStaticOnly) {
			return defErr(name, "cannot implement static class %q", c.name)
		}
	}
	if s := d.Extends; s != nil {
		switch {
		case s.isStatic() || s.flags.Has(FlagStaticOnly):
			return defErr(name, "cannot extend static class %q", s.name)
		case kind != KindInterface && s.IsInterface():
			return defErr(name, "cannot extend interface %q, implement it instead", s.name)
		case kind == KindInterface && !s.IsInterface():
			return defErr(name, "interfaces can only extend interfaces, %q is a class", s.name)
		case kind == KindException && !s.IsException():
			return defErr(name, "exceptions can only extend exceptions, %q is not one", s.name)
		}
	}
	if d.DefaultAllocator && kind != KindAllocator {
		return defErr(name, "only allocator classes can be the default allocator")
	}
	if d.AllocatorParams != nil && d.Allocator == nil {
		return defErr(name, "allocator params without an allocator")
	}

	switch kind {
	case KindClass, KindRoot, KindAllocator:
		if d.Abstract {
			return defErr(name, "a %s cannot be abstract", kind)
		}
		if d.Exception {
			return defErr(name, "a %s cannot be an exception", kind)
		}
		if kind == KindRoot && d.Extends != nil {
			return defErr(name, "a root class cannot extend %q", d.Extends.name)
		}
		if kind == KindAllocator && d.Allocator != nil {
			return defErr(name, "an allocator class cannot have an allocator")
		}
	case KindAbstract:
		if d.Exception {
			return defErr(name, "an abstract class cannot be an exception")
		}
		if d.Allocator != nil {
			return defErr(name, "an abstract class cannot have an allocator")
		}
	case KindException:
		if d.Abstract {
			return defErr(name, "an exception cannot be abstract")
		}
	case KindStatic:
		switch {
		case d.Body != nil:
			return defErr(name, "a static class cannot have a class body")
		case d.Abstract, d.Exception:
			return defErr(name, "a static class cannot be abstract or an exception")
		case d.Allocator != nil:
			return defErr(name, "a static class cannot have an allocator")
		case d.Extends != nil, len(d.Implements) > 0:
			return defErr(name, "a static class cannot extend or implement")
		}
	case KindInterface:
		switch {
		case d.Abstract, d.Exception:
			return defErr(name, "an interface cannot be abstract or an exception")
		case d.Allocator != nil:
			return defErr(name, "an interface cannot have an allocator")
		case d.Static != nil:
			return defErr(name, "an interface cannot have a static body")
		case len(d.Implements) > 0:
			return defErr(name, "interfaces extend interfaces, they do not implement them")
		case d.UseRawParams, d.ManualSuperInit:
			return defErr(name, "an interface has no constructor options")
		}
	default:
		return defErr(name, "unknown class kind %s", kind)
	}
	return nil
}
