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
)

// BodyFunc declares the members of one class level.
type BodyFunc func(b *Body)

// Body is handed to a BodyFunc. Its scopes accept definitions only while
// the body runs; closures kept by the body may use the runtime accessors later.
type Body struct {
	// Public is shared by every level of the instance.
	Public *Scope
	// Super is a snapshot of Public and Protected taken before this level ran.
	Super *Scope
	// Protected is shared by every level of the instance.
	Protected *Scope
	// Private belongs to this level only.
	Private *Scope
	// Static is the static section of the class. While the static section
	// itself is being built it is the section under construction.
	Static *StaticSection

	lv *level
}

// reserved names are injected on every Public by the runtime.
var reserved = map[string]struct{}{
	"className":       {},
	"simpleClassName": {},
	"class":           {},
	"implements":      {},
	"instanceof":      {},
	"classHierarchy":  {},
}

// defContext is the mutable state of one definition window.
type defContext struct {
	lv      *level
	class   *Class
	tracker *tracker
	static  bool
	iface   bool
	reflect bool
	err     error
}

// record keeps the first error of the window.
func (d *defContext) record(err error) error {
	if err != nil && d.err == nil {
		d.err = err
	}
	return err
}

// open makes d the active context of scopes and returns the closer.
func (d *defContext) open(scopes ...*Scope) func() {
	prev := make([]*defContext, len(scopes))
	for i, s := range scopes {
		prev[i] = s.def
		s.def = d
	}
	return func() {
		for i, s := range scopes {
			s.def = prev[i]
		}
	}
}

func (s *Scope) window() (*defContext, error) {
	if s.def == nil {
		return nil, fmt.Errorf("%w: %s of %q", ErrSealed, s.vis, s.className())
	}
	return s.def, nil
}

// declare emits an interface requirement.
func (d *defContext) declare(s *Scope, name string, k memberBits) error {
	if d.reflect || d.tracker == nil {
		return defErr(d.class.name, "interface %q cannot be declared by reflection", name)
	}
	return d.tracker.emit(s, name, k, d.class)
}

// define installs m as s.name, applying the redefinition rules and
// discharging matching requirements.
func (d *defContext) define(s *Scope, name string, m *member, k memberBits) error {
	if s.vis == VisSuper {
		return defErr(d.class.name, "cannot define %q on Super", name)
	}
	if _, ok := reserved[name]; ok && s.vis == VisPublic {
		return defErr(d.class.name, "%q is a reserved member name", name)
	}
	if old, ok := s.lookup(name); ok {
		switch {
		case old.kind == MemberObligation:
		case old.kind == MemberBuiltin:
			return defErr(d.class.name, "%q is a reserved member name", name)
		case (old.kind == MemberMethod) != (m.kind == MemberMethod):
			return defErr(d.class.name, "cannot redefine %s %s.%s as %s", old.kind, s.vis, name, m.kind)
		case old.kind == MemberAccessor && m.kind == MemberAccessor:
			merged := old.clone()
			if m.get != nil {
				merged.get = m.get
			}
			if m.set != nil {
				merged.set = m.set
			}
			m = merged
		}
	}
	if d.tracker != nil {
		if err := d.tracker.resolve(s, name, k, d.class); err != nil {
			return err
		}
	}
	s.put(name, m)
	return nil
}

// Method defines a method. A nil fn declares an interface requirement.
func (s *Scope) Method(name string, fn Method) error {
	d, err := s.window()
	if err != nil {
		return err
	}
	if fn == nil {
		return d.record(d.declare(s, name, bitMethod))
	}
	if d.iface {
		return d.record(defErr(d.class.name, "interface cannot implement method %q", name))
	}
	return d.record(d.define(s, name, &member{kind: MemberMethod, fn: fn}, bitMethod))
}

// Getter defines the read half of an accessor. A nil fn declares an
// interface requirement.
func (s *Scope) Getter(name string, fn Getter) error {
	d, err := s.window()
	if err != nil {
		return err
	}
	if fn == nil {
		return d.record(d.declare(s, name, bitGetter))
	}
	if d.iface {
		return d.record(defErr(d.class.name, "interface cannot implement getter %q", name))
	}
	return d.record(d.define(s, name, &member{kind: MemberAccessor, get: fn}, bitGetter))
}

// Setter defines the write half of an accessor. A nil fn declares an
// interface requirement.
func (s *Scope) Setter(name string, fn Setter) error {
	d, err := s.window()
	if err != nil {
		return err
	}
	if fn == nil {
		return d.record(d.declare(s, name, bitSetter))
	}
	if d.iface {
		return d.record(defErr(d.class.name, "interface cannot implement setter %q", name))
	}
	return d.record(d.define(s, name, &member{kind: MemberAccessor, set: fn}, bitSetter))
}

// Class defines an inner class Outer.name and exposes it as a constant of s.
// Only static bodies may define inner classes.
func (s *Scope) Class(name string, kind ClassKind, desc Descriptor) (*Class, error) {
	d, err := s.window()
	if err != nil {
		return nil, err
	}
	if !d.static || d.class.owner == nil {
		return nil, d.record(defErr(d.class.name, "inner class %q outside of a static body", name))
	}
	outer := d.class.owner
	if desc.Namespace == nil {
		desc.Namespace = outer.ns
	}
	c, err := outer.rt.define(kind, outer.name+"."+name, desc, FlagInner)
	if err != nil {
		return nil, d.record(err)
	}
	outer.inner = append(outer.inner, c)
	if err := d.define(s, name, &member{kind: MemberData, value: c}, bitAccessor); err != nil {
		return nil, d.record(err)
	}
	return c, nil
}

func (b *Body) window() (*defContext, error) {
	if b.lv.def == nil {
		return nil, fmt.Errorf("%w: body of %q", ErrSealed, b.lv.class.name)
	}
	return b.lv.def, nil
}

// Init sets the constructor of this level.
func (b *Body) Init(fn func(p *Params) error) error {
	d, err := b.window()
	if err != nil {
		return err
	}
	switch {
	case d.static:
		return d.record(defErr(d.class.name, "static bodies use StaticInit"))
	case d.iface:
		return d.record(defErr(d.class.name, "interfaces cannot have constructors"))
	case d.class.flags.Has(FlagRawParams):
		return d.record(defErr(d.class.name, "class uses raw params, use InitRaw"))
	case b.lv.init != nil:
		return d.record(defErr(d.class.name, "init defined twice"))
	}
	b.lv.init = fn
	return nil
}

// InitRaw sets the constructor of a level of a class using raw params.
func (b *Body) InitRaw(fn func(params map[string]any) error) error {
	d, err := b.window()
	if err != nil {
		return err
	}
	switch {
	case d.static:
		return d.record(defErr(d.class.name, "static bodies use StaticInit"))
	case d.iface:
		return d.record(defErr(d.class.name, "interfaces cannot have constructors"))
	case !d.class.flags.Has(FlagRawParams):
		return d.record(defErr(d.class.name, "class uses wrapped params, use Init"))
	case b.lv.initRaw != nil:
		return d.record(defErr(d.class.name, "init defined twice"))
	}
	b.lv.initRaw = fn
	return nil
}

// StaticInit sets the initializer of a static section.
func (b *Body) StaticInit(fn func() error) error {
	d, err := b.window()
	if err != nil {
		return err
	}
	if !d.static {
		return d.record(defErr(d.class.name, "StaticInit outside of a static body"))
	}
	b.lv.staticInit = fn
	return nil
}

// Defaults sets the default params contributor of this level.
func (b *Body) Defaults(fn func(defaults map[string]any)) error {
	d, err := b.window()
	if err != nil {
		return err
	}
	if d.iface {
		return d.record(defErr(d.class.name, "interfaces cannot have defaults"))
	}
	b.lv.defaults = fn
	return nil
}

// Dispose sets the destructor of this level.
func (b *Body) Dispose(fn func() error) error {
	d, err := b.window()
	if err != nil {
		return err
	}
	if d.iface {
		return d.record(defErr(d.class.name, "interfaces cannot have destructors"))
	}
	b.lv.dispose = fn
	return nil
}

// Self returns the instance this level belongs to.
func (b *Body) Self() *Object {
	return b.lv.obj
}

// Import resolves a class by path in the runtime namespace.
func (b *Body) Import(path string) (*Class, error) {
	return b.lv.class.rt.Import(path)
}

// SuperInit runs the super chain constructors of a class defined with
// ManualSuperInit. params is a *Params or a map[string]any.
func (b *Body) SuperInit(params any) error {
	lv := b.lv
	if lv.super == nil {
		return instErr(lv.class.name, "SuperInit without a super class")
	}
	if lv.superInited {
		return instErr(lv.class.name, "SuperInit called twice")
	}
	lv.superInited = true
	switch p := params.(type) {
	case *Params:
		return lv.super.runInit(p)
	case map[string]any:
		ps := newParams(p, lv.class.rt.cfg)
		defer ps.Dispose()
		return lv.super.runInit(ps)
	case nil:
		ps := newParams(nil, lv.class.rt.cfg)
		defer ps.Dispose()
		return lv.super.runInit(ps)
	}
	return paramErr("", "SuperInit params must be *Params or map[string]any, got %T", params)
}

// Reflect amends the instance while it is under construction. fn may add
// implementations to the scopes of this level, but no interface requirements
// and no fields.
func (b *Body) Reflect(fn func(pub, prot, priv *Scope)) error {
	lv := b.lv
	if lv.obj == nil || !lv.obj.constructing {
		return fmt.Errorf("%w: reflection outside of construction of %q", ErrSealed, lv.class.name)
	}
	d := &defContext{lv: lv, class: lv.class, static: lv.class.isStatic(), reflect: true}
	done := d.open(lv.public, lv.protected, lv.private)
	fn(lv.public, lv.protected, lv.private)
	done()
	return d.err
}
