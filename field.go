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
	"fmt"
	"slices"

	"dirpx.dev/dos/apis"
	"dirpx.dev/dos/config"
	uref "dirpx.dev/dos/utils/reflect"
)

// fieldOptions collects the declaration of a field.
type fieldOptions struct {
	raw         bool
	typ         Type
	typesafe    *bool
	polymorphic bool
	autoDispose bool
	transient   bool
	readOnly    bool
	value       any
	hasValue    bool
	getters     []*Scope
	setters     []*Scope
	onValue     func(newV, oldV any)
	onType      func(newT, oldT Type)
}

// FieldOption configures a field declaration.
type FieldOption func(*fieldOptions)

// Raw declares an unwrapped data slot.
func Raw() FieldOption { return func(o *fieldOptions) { o.raw = true } }

// Typed declares the initial type of a wrapped field.
func Typed(t Type) FieldOption { return func(o *fieldOptions) { o.typ = t } }

// Typesafe overrides the configured type-safety of a wrapped field.
func Typesafe(on bool) FieldOption { return func(o *fieldOptions) { o.typesafe = &on } }

// Polymorphic lets a wrapped field keep its type across assignments.
func Polymorphic() FieldOption { return func(o *fieldOptions) { o.polymorphic = true } }

// AutoDispose disposes a replaced managed instance.
func AutoDispose() FieldOption { return func(o *fieldOptions) { o.autoDispose = true } }

// Transient excludes the field from snapshots.
func Transient() FieldOption { return func(o *fieldOptions) { o.transient = true } }

// ConstValue makes a raw field read-only after construction, and a wrapped
// field accept its first write only.
func ConstValue() FieldOption { return func(o *fieldOptions) { o.readOnly = true } }

// Value sets the initial value of a raw field.
func Value(v any) FieldOption {
	return func(o *fieldOptions) {
		o.value = v
		o.hasValue = true
	}
}

// GetterOn also exposes the field getter on the given scopes.
func GetterOn(scopes ...*Scope) FieldOption {
	return func(o *fieldOptions) { o.getters = append(o.getters, scopes...) }
}

// SetterOn also exposes the field setter on the given scopes.
func SetterOn(scopes ...*Scope) FieldOption {
	return func(o *fieldOptions) { o.setters = append(o.setters, scopes...) }
}

// OnValueChange is called after a write changed the value.
func OnValueChange(fn func(newV, oldV any)) FieldOption {
	return func(o *fieldOptions) { o.onValue = fn }
}

// OnTypeChange is called after a write changed the type.
func OnTypeChange(fn func(newT, oldT Type)) FieldOption {
	return func(o *fieldOptions) { o.onType = fn }
}

// ClassType returns the Type of instances of c.
func ClassType(c *Class) Type {
	return Type{Tag: TagInstance, Class: c}
}

// Field is a managed value holder.
type Field struct {
	name        string
	owner       string
	value       any
	typ         Type
	typesafe    bool
	polymorphic bool
	autoDispose bool
	transient   bool
	writeOnce   bool
	written     bool
	maxUnwrap   int
	onValue     func(newV, oldV any)
	onType      func(newT, oldT Type)
}

// NewField builds a standalone wrapped field. Raw and binding options are ignored.
func NewField(name string, opts ...FieldOption) *Field {
	var o fieldOptions
	for _, opt := range opts {
		opt(&o)
	}
	return newField(name, "", &o, config.DefaultConfig())
}

func newField(name, owner string, o *fieldOptions, cfg apis.Config) *Field {
	f := &Field{
		name:        name,
		owner:       owner,
		typ:         o.typ,
		typesafe:    cfg.Typesafe,
		polymorphic: o.polymorphic,
		autoDispose: o.autoDispose,
		transient:   o.transient,
		writeOnce:   o.readOnly,
		maxUnwrap:   cfg.MaxUnwrap,
		onValue:     o.onValue,
		onType:      o.onType,
	}
	if f.typ.Tag == "" {
		f.typ = Undefined
	}
	if o.typesafe != nil {
		f.typesafe = *o.typesafe
	}
	return f
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Get returns the current value.
func (f *Field) Get() any { return f.value }

// Type returns the current type.
func (f *Field) Type() Type { return f.typ }

// Transient reports whether snapshots skip the field.
func (f *Field) Transient() bool { return f.transient }

// OnValueChange replaces the value-change callback.
func (f *Field) OnValueChange(fn func(newV, oldV any)) { f.onValue = fn }

// OnTypeChange replaces the type-change callback.
func (f *Field) OnTypeChange(fn func(newT, oldT Type)) { f.onType = fn }

// check enforces type-safety between managed classes.
func (f *Field) check(newType Type) error {
	if !f.typesafe || f.polymorphic || f.typ == Undefined || f.typ == newType {
		return nil
	}
	if f.typ.Class == nil || newType.Class == nil {
		return nil
	}
	if newType.Class.InstanceOf(f.typ.Class) || newType.Class.Implements(f.typ.Class) {
		return nil
	}
	return typeErr(f.owner, "cannot assign %q to typesafe property of type: %q", newType.String(), f.typ.String())
}

// init stores the initial value without notifying.
func (f *Field) init(v any) error {
	t := typeOf(v, f.maxUnwrap)
	if t != Undefined {
		if err := f.check(t); err != nil {
			return err
		}
		f.typ = t
	}
	f.value = v
	return nil
}

// Set writes v. A write-once field drops every write after the first
// accepted one. A non-polymorphic field takes the type of each non-nil
// value it accepts.
func (f *Field) Set(v any) error {
	if f.writeOnce && f.written {
		return nil
	}
	newType := typeOf(v, f.maxUnwrap)
	if newType != Undefined {
		if err := f.check(newType); err != nil {
			return err
		}
	}
	if f.writeOnce {
		f.written = true
	}
	oldType := f.typ
	typeChanged := false
	if newType != Undefined {
		if !f.polymorphic {
			typeChanged = newType != f.typ
			f.typ = newType
		}
	}
	old := f.value
	valueChanged := !uref.Identical(v, old)
	f.value = v
	if typeChanged && f.onType != nil {
		f.onType(f.typ, oldType)
	}
	if valueChanged && f.onValue != nil {
		f.onValue(v, old)
	}
	if f.autoDispose && valueChanged {
		if o, ok := old.(*Object); ok && o.live() {
			return o.Dispose()
		}
	}
	return nil
}

// Dispose releases the held value when the field auto-disposes, then clears it.
func (f *Field) Dispose() error {
	var err error
	if f.autoDispose {
		if o, ok := f.value.(*Object); ok && o.live() {
			err = o.Dispose()
		}
	}
	f.value = nil
	f.onValue = nil
	f.onType = nil
	return err
}

// fieldSlot is the per-level declaration of a field. Wrapped slots hold
// the Field of the current construction; raw slots own a data member.
type fieldSlot struct {
	name  string
	scope *Scope
	lv    *level
	opts  fieldOptions
	field *Field
}

func (fs *fieldSlot) get() any {
	if fs.field == nil {
		return nil
	}
	return fs.field.Get()
}

func (fs *fieldSlot) set(v any) error {
	if fs.field == nil {
		return fmt.Errorf("%w: field %q of %q is released", ErrReadOnly, fs.name, fs.lv.class.name)
	}
	return fs.field.Set(v)
}

// rawMember returns the data member still owned by a raw slot.
func (fs *fieldSlot) rawMember() (*member, bool) {
	m, ok := fs.scope.lookup(fs.name)
	if !ok || m.slot != fs {
		return nil, false
	}
	return m, true
}

// bind prepares the slot for a new construction.
func (fs *fieldSlot) bind() error {
	if fs.opts.raw {
		if m, ok := fs.rawMember(); ok {
			m.value = fs.opts.value
			m.writable = !(fs.opts.readOnly && fs.opts.hasValue)
		}
		return nil
	}
	f := newField(fs.name, fs.lv.class.name, &fs.opts, fs.lv.class.rt.cfg)
	if fs.opts.hasValue {
		if err := f.init(fs.opts.value); err != nil {
			return err
		}
	}
	fs.field = f
	return nil
}

// lock seals a raw const slot after construction.
func (fs *fieldSlot) lock() {
	if !fs.opts.raw || !fs.opts.readOnly {
		return
	}
	if m, ok := fs.rawMember(); ok {
		m.writable = false
	}
}

// release detaches the slot from its value.
func (fs *fieldSlot) release() error {
	if fs.opts.raw {
		if m, ok := fs.rawMember(); ok {
			m.value = nil
			m.writable = true
		}
		return nil
	}
	f := fs.field
	fs.field = nil
	if f == nil {
		return nil
	}
	return f.Dispose()
}

// snapshotValue returns the current value and whether it is serializable.
func (fs *fieldSlot) snapshotValue() (any, bool) {
	if fs.opts.transient {
		return nil, false
	}
	if fs.opts.raw {
		m, ok := fs.rawMember()
		if !ok {
			return nil, false
		}
		return m.value, true
	}
	if fs.field == nil {
		return nil, false
	}
	return fs.field.Get(), true
}

// restoreValue writes a snapshot value, bypassing read-only locks.
func (fs *fieldSlot) restoreValue(v any) error {
	if fs.opts.raw {
		if m, ok := fs.rawMember(); ok {
			m.value = v
		}
		return nil
	}
	if fs.field == nil {
		return fmt.Errorf("%w: field %q of %q is released", ErrReadOnly, fs.name, fs.lv.class.name)
	}
	return fs.field.Set(v)
}

// Field declares a field on s.
//
// A wrapped field is exposed as an accessor on s and on every GetterOn and
// SetterOn target. A raw field is a data member of s. Writable fields of
// static sections are always wrapped.
func (s *Scope) Field(name string, opts ...FieldOption) error {
	d, err := s.window()
	if err != nil {
		return err
	}
	var o fieldOptions
	for _, opt := range opts {
		opt(&o)
	}
	return d.record(d.field(s, name, o))
}

// Const declares a read-only raw field of a static section.
func (s *Scope) Const(name string, v any) error {
	d, err := s.window()
	if err != nil {
		return err
	}
	if !d.static {
		return d.record(defErr(d.class.name, "constant %q outside of a static body", name))
	}
	return d.record(d.field(s, name, fieldOptions{raw: true, readOnly: true, value: v, hasValue: true}))
}

func (d *defContext) field(s *Scope, name string, o fieldOptions) error {
	cn := d.class.name
	switch {
	case d.iface:
		return defErr(cn, "interfaces cannot declare field %q", name)
	case d.reflect:
		return defErr(cn, "field %q cannot be added by reflection", name)
	case s.vis == VisSuper:
		return defErr(cn, "cannot declare field %q on Super", name)
	}

	forced := false
	if d.static && o.raw && !o.readOnly {
		o.raw = false
		forced = true
	}
	switch {
	case o.raw && o.autoDispose:
		return defErr(cn, "raw field %q cannot auto-dispose", name)
	case o.raw && (len(o.getters) > 0 || len(o.setters) > 0):
		return defErr(cn, "raw field %q cannot bind getters or setters", name)
	case !o.raw && o.hasValue && !forced:
		return defErr(cn, "only raw fields may carry an initial value: %q", name)
	}

	lv := d.lv
	same := func(t *Scope) bool { return t == lv.public || t == lv.protected || t == lv.private }
	for _, t := range slices.Concat(o.getters, o.setters) {
		if t == nil || !same(t) {
			return defErr(cn, "binding target of field %q must be a scope of the same level", name)
		}
	}

	key := s.vis.String() + "." + name
	if _, dup := lv.fieldNames[key]; dup {
		return defErr(cn, "field %q already defined in %s", name, s.vis)
	}

	fs := &fieldSlot{name: name, scope: s, lv: lv, opts: o}
	if o.raw {
		m := &member{kind: MemberData, value: o.value, writable: true, slot: fs}
		if err := d.define(s, name, m, bitAccessor); err != nil {
			return err
		}
	} else {
		getters := append([]*Scope{s}, o.getters...)
		setters := append([]*Scope{s}, o.setters...)
		var targets []*Scope
		for _, t := range slices.Concat(getters, setters) {
			if !slices.Contains(targets, t) {
				targets = append(targets, t)
			}
		}
		for _, t := range targets {
			m := &member{kind: MemberAccessor}
			var k memberBits
			if slices.Contains(getters, t) {
				m.get = fs.get
				k |= bitGetter
			}
			if slices.Contains(setters, t) {
				m.set = fs.set
				k |= bitSetter
			}
			if err := d.define(t, name, m, k); err != nil {
				return err
			}
		}
	}
	lv.fieldNames[key] = struct{}{}
	lv.fields = append(lv.fields, fs)
	return nil
}

// releaseAll releases every slot and joins the errors.
func releaseAll(slots []*fieldSlot) error {
	var errs []error
	for _, fs := range slots {
		if err := fs.release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
