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
)

// level is the part of an instance introduced by one class.
type level struct {
	class  *Class
	obj    *Object
	super  *level
	mixins []*level

	public, protected, private, superScope *Scope
	body                                   *Body

	fields     []*fieldSlot
	fieldNames map[string]struct{}

	init        func(*Params) error
	initRaw     func(map[string]any) error
	defaults    func(map[string]any)
	dispose     func() error
	staticInit  func() error
	superInited bool

	def *defContext
}

// buildLevel applies c onto the shared Public and Protected scopes:
// super chain first, then implemented classes, then c's own body.
func (c *Class) buildLevel(obj *Object, pub, prot *Scope, tr *tracker) (*level, error) {
	lv := &level{
		class:      c,
		obj:        obj,
		public:     pub,
		protected:  prot,
		private:    newScope(VisPrivate, c),
		fieldNames: make(map[string]struct{}),
	}

	if c.super != nil {
		if c.isStatic() {
			// Static sections inherit the members of the super static instance.
			ss := c.super.instance
			if ss == nil || ss.leaf == nil {
				return nil, defErr(c.name, "super static section %q is not built", c.super.name)
			}
			copyMembers(pub, ss.public)
			copyMembers(prot, ss.protected)
		} else {
			sup, err := c.super.buildLevel(obj, pub, prot, tr)
			if err != nil {
				return nil, err
			}
			lv.super = sup
		}
	}

	for _, ic := range c.interfaces {
		il, err := ic.buildLevel(obj, pub, prot, tr)
		if err != nil {
			return nil, err
		}
		if !ic.IsInterface() {
			lv.mixins = append(lv.mixins, il)
		}
	}

	snap, err := snapshotSuper(c, pub, prot)
	if err != nil {
		return nil, err
	}
	lv.superScope = snap

	b := &Body{Public: pub, Super: snap, Protected: prot, Private: lv.private, lv: lv}
	if c.owner != nil {
		b.Static = c.owner.section
	} else {
		b.Static = c.section
	}
	lv.body = b

	if c.body != nil {
		d := &defContext{
			lv:      lv,
			class:   c,
			tracker: tr,
			static:  c.isStatic(),
			iface:   c.IsInterface(),
		}
		lv.def = d
		done := d.open(pub, prot, lv.private, snap)
		c.body(b)
		done()
		lv.def = nil
		if d.err != nil {
			return nil, d.err
		}
	}

	if err := checkClash(c, pub, prot); err != nil {
		return nil, err
	}
	return lv, nil
}

// buildObject synthesizes the scopes of o for its class.
func (c *Class) buildObject(o *Object) error {
	o.class = c
	o.public = newScope(VisPublic, c)
	o.protected = newScope(VisProtected, c)
	tr := newTracker()
	lv, err := c.buildLevel(o, o.public, o.protected, tr)
	if err != nil {
		return err
	}
	if !c.isStatic() {
		if err := tr.validate(c); err != nil {
			return err
		}
	}
	injectRTTI(o.public, c.described())
	o.leaf = lv
	return nil
}

// injectRTTI adds the introspection members of c to pub.
func injectRTTI(pub *Scope, c *Class) {
	pub.put("className", &member{kind: MemberBuiltin, value: c.name})
	pub.put("simpleClassName", &member{kind: MemberBuiltin, value: c.simpleName})
	pub.put("class", &member{kind: MemberBuiltin, value: c})
	pub.put("classHierarchy", &member{kind: MemberBuiltin, value: c.Hierarchy()})
	pub.put("instanceof", &member{kind: MemberBuiltin, fn: func(args ...any) (any, error) {
		other, err := classArg("instanceof", args)
		if err != nil {
			return nil, err
		}
		return c.InstanceOf(other), nil
	}})
	pub.put("implements", &member{kind: MemberBuiltin, fn: func(args ...any) (any, error) {
		other, err := classArg("implements", args)
		if err != nil {
			return nil, err
		}
		return c.Implements(other), nil
	}})
}

func classArg(method string, args []any) (*Class, error) {
	if len(args) != 1 {
		return nil, paramErr("class", "%s expects one class argument", method)
	}
	c, ok := args[0].(*Class)
	if !ok {
		return nil, paramErr("class", "%s expects a class argument, got %T", method, args[0])
	}
	return c, nil
}

// walk visits lv and its super and mixin levels, bases first.
func (lv *level) walk(fn func(*level)) {
	if lv.super != nil {
		lv.super.walk(fn)
	}
	for _, m := range lv.mixins {
		m.walk(fn)
	}
	fn(lv)
}

// initFields binds every field slot of the instance, root first.
func (lv *level) initFields() error {
	var err error
	lv.walk(func(l *level) {
		for _, fs := range l.fields {
			if err == nil {
				err = fs.bind()
			}
		}
	})
	return err
}

// collectDefaults fills d with the defaults of every level, super first.
func (lv *level) collectDefaults(d map[string]any) {
	lv.walk(func(l *level) {
		if l.defaults != nil {
			l.defaults(d)
		}
	})
}

// hasInit reports whether any level defines a constructor.
func (lv *level) hasInit() bool {
	found := false
	lv.walk(func(l *level) {
		found = found || l.init != nil || l.initRaw != nil
	})
	return found
}

// runInit runs the constructors: super (unless manual), mixins, own.
func (lv *level) runInit(ps *Params) error {
	c := lv.class
	lv.superInited = false
	if lv.super != nil && !c.flags.Has(FlagManualSuperInit) {
		lv.superInited = true
		if err := lv.super.runInit(ps); err != nil {
			return err
		}
	}
	for _, m := range lv.mixins {
		if err := m.runInit(ps); err != nil {
			return err
		}
	}
	switch {
	case lv.initRaw != nil:
		return lv.initRaw(ps.Raw())
	case lv.init != nil:
		return lv.init(ps)
	}
	return nil
}

// lockConsts seals the raw const fields of every level.
func (lv *level) lockConsts() {
	lv.walk(func(l *level) {
		for _, fs := range l.fields {
			fs.lock()
		}
	})
}

// destroy runs the destructors (own, super, mixins) and releases the fields.
func (lv *level) destroy() error {
	var errs []error
	if lv.dispose != nil {
		errs = append(errs, lv.dispose())
	}
	if lv.super != nil {
		errs = append(errs, lv.super.destroy())
	}
	for _, m := range lv.mixins {
		errs = append(errs, m.destroy())
	}
	errs = append(errs, releaseAll(lv.fields))
	return errors.Join(errs...)
}
