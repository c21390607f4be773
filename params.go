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
	"maps"
	"reflect"
	"slices"

	"dario.cat/mergo"
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"dirpx.dev/dos/apis"
	"dirpx.dev/dos/config"
	uref "dirpx.dev/dos/utils/reflect"
)

// Params is the named parameter bag handed to constructors. Each entry is
// held by an untyped Field, so lookups can check the type it was set with.
type Params struct {
	entries *linkedhashmap.Map
	cfg     apis.Config
}

// NewParams wraps raw. Keys are entered in sorted order.
func NewParams(raw map[string]any) *Params {
	return newParams(raw, config.DefaultConfig())
}

func newParams(raw map[string]any, cfg apis.Config) *Params {
	p := &Params{entries: linkedhashmap.New(), cfg: cfg}
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		p.Set(k, raw[k])
	}
	return p
}

// Set stores v under name, replacing any previous entry.
func (p *Params) Set(name string, v any) {
	f := newField(name, "", &fieldOptions{}, p.cfg)
	f.typesafe = false
	_ = f.init(v)
	p.entries.Put(name, f)
}

// GetRaw returns the field holding name.
func (p *Params) GetRaw(name string) (*Field, bool) {
	v, ok := p.entries.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Field), true
}

// Has reports whether name is set.
func (p *Params) Has(name string) bool {
	_, ok := p.entries.Get(name)
	return ok
}

// Delete removes name and reports whether it was set.
func (p *Params) Delete(name string) bool {
	if !p.Has(name) {
		return false
	}
	p.entries.Remove(name)
	return true
}

// Len returns the number of entries.
func (p *Params) Len() int { return p.entries.Size() }

// Names returns the entry names in insertion order.
func (p *Params) Names() []string {
	out := make([]string, 0, p.entries.Size())
	for _, k := range p.entries.Keys() {
		out = append(out, k.(string))
	}
	return out
}

func (p *Params) required(name string) (*Field, error) {
	f, ok := p.GetRaw(name)
	if !ok || f.Get() == nil {
		return nil, paramErr(name, "%s is a required param", name)
	}
	return f, nil
}

// Get returns the value of a required param.
func (p *Params) Get(name string, validators ...Validator) (any, error) {
	f, err := p.required(name)
	if err != nil {
		return nil, err
	}
	return f.Get(), validate(name, f.Get(), validators)
}

// GetType returns the value of a required param of type want. Instances of
// subclasses and implementors match class types.
func (p *Params) GetType(name string, want Type, validators ...Validator) (any, error) {
	f, err := p.required(name)
	if err != nil {
		return nil, err
	}
	if !typeMatches(f, want) {
		return nil, paramErr(name, "%s is of invalid type (should be %q but is %q)", name, want.String(), f.Type().String())
	}
	return f.Get(), validate(name, f.Get(), validators)
}

// GetOptional returns the value of name, or nil when absent.
func (p *Params) GetOptional(name string, validators ...Validator) (any, error) {
	f, ok := p.GetRaw(name)
	if !ok || f.Get() == nil {
		return nil, nil
	}
	return f.Get(), validate(name, f.Get(), validators)
}

// GetOptionalType returns the value of name when present and of type want.
func (p *Params) GetOptionalType(name string, want Type, validators ...Validator) (any, error) {
	f, ok := p.GetRaw(name)
	if !ok || f.Get() == nil {
		return nil, nil
	}
	if !typeMatches(f, want) {
		return nil, paramErr(name, "%s is of invalid type (should be %q but is %q)", name, want.String(), f.Type().String())
	}
	return f.Get(), validate(name, f.Get(), validators)
}

func typeMatches(f *Field, want Type) bool {
	got := f.Type()
	if got == want {
		return true
	}
	if want.Class == nil {
		return false
	}
	if got.Class != nil && (got.Class.InstanceOf(want.Class) || got.Class.Implements(want.Class)) {
		return true
	}
	o, ok := f.Get().(*Object)
	return ok && o != nil && (o.InstanceOf(want.Class) || o.Implements(want.Class))
}

// Merge copies the entries of other over p and disposes other.
func (p *Params) Merge(other *Params) {
	if other == nil {
		return
	}
	it := other.entries.Iterator()
	for it.Next() {
		p.entries.Put(it.Key(), it.Value())
	}
	other.Dispose()
}

// Raw returns the entries as a plain map.
func (p *Params) Raw() map[string]any {
	return p.RawFiltered(nil)
}

// RawFiltered returns the entries accepted by keep as a plain map.
func (p *Params) RawFiltered(keep func(name string, v any) bool) map[string]any {
	out := make(map[string]any, p.entries.Size())
	it := p.entries.Iterator()
	for it.Next() {
		name, v := it.Key().(string), it.Value().(*Field).Get()
		if keep == nil || keep(name, v) {
			out[name] = v
		}
	}
	return out
}

// Dispose clears every entry.
func (p *Params) Dispose() {
	p.entries.Clear()
}

// ParamAs returns a required param converted to T.
func ParamAs[T any](p *Params, name string, validators ...Validator) (T, error) {
	var zero T
	v, err := p.Get(name, validators...)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, paramErr(name, "%s is of invalid type (should be %q but is %q)",
			name, reflect.TypeFor[T]().String(), reflect.TypeOf(v).String())
	}
	return t, nil
}

// RequireInstanceOf fails unless v is an instance of c or of a subclass.
func RequireInstanceOf(name string, v any, c *Class) error {
	o, ok := v.(*Object)
	if !ok || o == nil || !o.InstanceOf(c) {
		return paramErr(name, "%s is not an instance of %q", name, c.Name())
	}
	return nil
}

// RequireImplements fails unless v is an instance of a class implementing c.
func RequireImplements(name string, v any, c *Class) error {
	o, ok := v.(*Object)
	if !ok || o == nil || !o.Implements(c) {
		return paramErr(name, "%s does not implement %q", name, c.Name())
	}
	return nil
}

// refsAsValues keeps pointers (managed instances among them) out of the
// deep merge: they are assigned, never merged into.
type refsAsValues struct{}

func (refsAsValues) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t.Kind() == reflect.Ptr {
		return func(_, _ reflect.Value) error { return nil }
	}
	return nil
}

// mergeParams overlays src onto dst. Nested maps present on both sides are
// deep merged key by key; everything else is replaced.
func mergeParams(dst, src map[string]any) error {
	for _, k := range slices.Sorted(maps.Keys(src)) {
		v := src[k]
		dm, dok := dst[k].(map[string]any)
		sm, sok := v.(map[string]any)
		if dok && sok {
			merged := maps.Clone(dm)
			if err := mergo.Merge(&merged, nonEmpty(sm),
				mergo.WithOverride,
				mergo.WithTransformers(refsAsValues{}),
			); err != nil {
				return err
			}
			// mergo never lets an empty source value override.
			overlayEmpty(merged, sm)
			dst[k] = merged
			continue
		}
		dst[k] = v
	}
	return nil
}

// nonEmpty returns a copy of src without its nil and zero values.
func nonEmpty(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		if m, ok := v.(map[string]any); ok {
			out[k] = nonEmpty(m)
			continue
		}
		if !isEmpty(v) {
			out[k] = v
		}
	}
	return out
}

// overlayEmpty copies the nil and zero values of src into dst.
func overlayEmpty(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				overlayEmpty(dm, sm)
				continue
			}
		}
		if isEmpty(v) {
			dst[k] = v
		}
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	}
	return rv.IsZero()
}

// Validator checks a param value.
type Validator func(name string, v any) error

func validate(name string, v any, validators []Validator) error {
	for _, fn := range validators {
		if err := fn(name, v); err != nil {
			return err
		}
	}
	return nil
}

func numeric(name string, v any) (float64, error) {
	f, ok := uref.Float(v)
	if !ok {
		return 0, paramErr(name, "%s is of invalid type (should be %q but is %q)", name, TagNumber, TypeOf(v).String())
	}
	return f, nil
}

// Between accepts numbers in [lo, hi].
func Between(lo, hi float64) Validator {
	return func(name string, v any) error {
		f, err := numeric(name, v)
		if err != nil {
			return err
		}
		if f < lo || f > hi {
			return paramErr(name, "%s must be between %v and %v but is %v", name, lo, hi, f)
		}
		return nil
	}
}

// Less accepts numbers below x.
func Less(x float64) Validator {
	return compare(func(f float64) bool { return f < x }, "less than", x)
}

// LessOrEqual accepts numbers up to x.
func LessOrEqual(x float64) Validator {
	return compare(func(f float64) bool { return f <= x }, "less than or equal to", x)
}

// Greater accepts numbers above x.
func Greater(x float64) Validator {
	return compare(func(f float64) bool { return f > x }, "greater than", x)
}

// GreaterOrEqual accepts numbers from x.
func GreaterOrEqual(x float64) Validator {
	return compare(func(f float64) bool { return f >= x }, "greater than or equal to", x)
}

func compare(ok func(float64) bool, rel string, x float64) Validator {
	return func(name string, v any) error {
		f, err := numeric(name, v)
		if err != nil {
			return err
		}
		if !ok(f) {
			return paramErr(name, "%s must be %s %v but is %v", name, rel, x, f)
		}
		return nil
	}
}

// ArrayOf accepts slices whose elements all carry tag.
func ArrayOf(tag Tag) Validator {
	return func(name string, v any) error {
		elems, ok := uref.Elems(v)
		if !ok {
			return paramErr(name, "%s is of invalid type (should be %q but is %q)", name, TagArray, TypeOf(v).String())
		}
		for i, e := range elems {
			if t := TypeOf(e); t.Tag != tag {
				return paramErr(name, "%s[%d] is of invalid type (should be %q but is %q)", name, i, tag, t.String())
			}
		}
		return nil
	}
}

// ArrayOfClass accepts slices of instances of c, its subclasses or implementors.
func ArrayOfClass(c *Class) Validator {
	return func(name string, v any) error {
		elems, ok := uref.Elems(v)
		if !ok {
			return paramErr(name, "%s is of invalid type (should be %q but is %q)", name, TagArray, TypeOf(v).String())
		}
		for i, e := range elems {
			o, ok := e.(*Object)
			if !ok || o == nil || !(o.InstanceOf(c) || o.Implements(c)) {
				return paramErr(name, "%s[%d] is of invalid type (should be %q but is %q)", name, i, c.Name(), TypeOf(e).String())
			}
		}
		return nil
	}
}

// OneOf accepts values identical to one of values.
func OneOf(values ...any) Validator {
	return func(name string, v any) error {
		for _, x := range values {
			if uref.Identical(v, x) {
				return nil
			}
		}
		return paramErr(name, "%s must be one of %v but is %v", name, values, v)
	}
}
