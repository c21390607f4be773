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
	"errors"
	"maps"
	"slices"
)

// staticSuffix names the companion class of a static section.
const staticSuffix = ".$Static"

// StaticSection is the class-level object shared by every instance of a
// class. Subclass sections start from a copy of the super section members.
type StaticSection struct {
	class *Class
	obj   *Object
}

// Class returns the class owning the section.
func (s *StaticSection) Class() *Class { return s.class }

// Public returns the public static scope. While the section is being
// built this is the scope under construction.
func (s *StaticSection) Public() *Scope { return s.obj.public }

// Protected returns the protected static scope.
func (s *StaticSection) Protected() *Scope { return s.obj.protected }

// Private returns the private static scope of the owning class, or nil
// while the section is being built.
func (s *StaticSection) Private() *Scope {
	if s.obj.leaf == nil {
		return nil
	}
	return s.obj.leaf.private
}

// Get reads a public static member.
func (s *StaticSection) Get(name string) (any, error) { return s.obj.public.Get(name) }

// Set writes a public static member.
func (s *StaticSection) Set(name string, v any) error { return s.obj.public.Set(name, v) }

// Call invokes a public static method.
func (s *StaticSection) Call(name string, args ...any) (any, error) {
	return s.obj.public.Call(name, args...)
}

// Has reports whether the public static scope holds name.
func (s *StaticSection) Has(name string) bool { return s.obj.public.Has(name) }

// buildStatic creates the static instance of c, runs its initializer and
// constructs the instances of c requested meanwhile.
func (rt *Runtime) buildStatic(c *Class) error {
	sc := c.staticClass
	obj := &Object{}
	c.section = &StaticSection{class: c, obj: obj}
	sc.instance = obj

	if err := sc.buildObject(obj); err != nil {
		return err
	}
	lv := obj.leaf
	obj.constructing = true
	err := lv.initFields()
	if err == nil && lv.staticInit != nil {
		err = lv.staticInit()
	}
	obj.constructing = false
	if err != nil {
		_ = releaseAll(lv.fields)
		return err
	}
	lv.lockConsts()

	sc.constructible = true
	c.constructible = true
	rt.statics = append(rt.statics, obj)
	rt.log.Debug("static section created", "class", c.name, "statics", len(rt.statics))

	return c.resolvePending()
}

// resolvePending constructs the pending instances of c. Instances
// reachable from static members go first, nested ones before their
// holders; the remaining ones follow in request order.
func (c *Class) resolvePending() error {
	if len(c.pending) == 0 {
		return nil
	}
	seen := make(map[*Object]bool)
	var order []*Object
	var visit func(v any)
	visit = func(v any) {
		switch x := v.(type) {
		case *Object:
			if x == nil || x.pending == nil || x.class != c || seen[x] {
				return
			}
			seen[x] = true
			visit(x.pending.params)
			order = append(order, x)
		case map[string]any:
			for _, k := range slices.Sorted(maps.Keys(x)) {
				visit(x[k])
			}
		case []any:
			for _, e := range x {
				visit(e)
			}
		}
	}

	obj := c.section.obj
	for _, s := range []*Scope{obj.public, obj.protected, obj.leaf.private} {
		it := s.members.Iterator()
		for it.Next() {
			m := it.Value().(*member)
			switch {
			case m.kind == MemberData:
				visit(m.value)
			case m.kind == MemberAccessor && m.get != nil:
				visit(m.get())
			}
		}
	}
	for _, o := range c.pending {
		if !seen[o] {
			seen[o] = true
			order = append(order, o)
		}
	}
	c.pending = nil

	var errs []error
	for _, o := range order {
		if o.pending == nil {
			// disposed while pending
			continue
		}
		errs = append(errs, c.fill(o))
	}
	return errors.Join(errs...)
}

// fill constructs a pending instance in place.
func (c *Class) fill(o *Object) error {
	params := o.pending.params
	o.pending = nil
	if err := c.buildObject(o); err != nil {
		return err
	}
	if err := o.construct(params); err != nil {
		o.abandon()
		return err
	}
	return nil
}
