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

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// memberBits is the kind of an interface requirement.
type memberBits uint8

const (
	bitMethod memberBits = 1 << iota
	bitGetter
	bitSetter

	bitAccessor = bitGetter | bitSetter
)

func (k memberBits) String() string {
	switch k {
	case bitMethod:
		return "$method"
	case bitGetter:
		return "$getter"
	case bitSetter:
		return "$setter"
	case bitAccessor:
		return "$getter/$setter"
	}
	return "$unknown"
}

// bitsOf returns the requirement kinds an existing member can satisfy.
func bitsOf(m *member) memberBits {
	switch m.kind {
	case MemberMethod:
		return bitMethod
	case MemberAccessor:
		var k memberBits
		if m.get != nil {
			k |= bitGetter
		}
		if m.set != nil {
			k |= bitSetter
		}
		return k
	case MemberData:
		return bitAccessor
	}
	return 0
}

// compatible reports whether two requirement kinds may live under one name.
func compatible(cur, k memberBits) bool {
	return cur&k != 0 || (cur&bitMethod == 0 && k&bitMethod == 0)
}

// obligation is an open interface requirement.
type obligation struct {
	vis  Visibility
	name string
	kind memberBits
	from *Class
}

// tracker threads open obligations through one instance build.
// Entries are keyed by "Scope.name" and kept in emission order.
type tracker struct {
	open *linkedhashmap.Map
}

func newTracker() *tracker {
	return &tracker{open: linkedhashmap.New()}
}

func obKey(vis Visibility, name string) string {
	return vis.String() + "." + name
}

// emit records that iface requires name of kind k in s.
func (t *tracker) emit(s *Scope, name string, k memberBits, iface *Class) error {
	switch {
	case s.vis == VisPrivate:
		return defErr(iface.name, "Private interfaces are invalid: %q", name)
	case s.vis == VisSuper:
		return defErr(iface.name, "interfaces cannot be declared on Super: %q", name)
	case iface.isStatic():
		return defErr(iface.name, "static classes cannot declare interfaces: %q", name)
	}

	key := obKey(s.vis, name)
	if v, ok := t.open.Get(key); ok {
		ob := v.(*obligation)
		if !compatible(ob.kind, k) {
			return defErr(iface.name, "interface %q of type %q is incompatible with inherited %q from %q",
				key, k.String(), ob.kind.String(), ob.from.name)
		}
		ob.kind |= k
		return nil
	}

	if m, ok := s.lookup(name); ok && m.kind != MemberObligation {
		if m.kind == MemberBuiltin || !compatible(bitsOf(m), k) {
			return defErr(iface.name, "interface %q of type %q conflicts with an existing member", key, k.String())
		}
		// Already implemented further up the chain.
		return nil
	}

	t.open.Put(key, &obligation{vis: s.vis, name: name, kind: k, from: iface})
	s.put(name, &member{kind: MemberObligation})
	return nil
}

// resolve discharges the kinds k of an open obligation on s.name.
func (t *tracker) resolve(s *Scope, name string, k memberBits, by *Class) error {
	if s.vis == VisPrivate || by.isStatic() {
		return nil
	}
	key := obKey(s.vis, name)
	v, ok := t.open.Get(key)
	if !ok {
		return nil
	}
	ob := v.(*obligation)
	if ob.kind&k == 0 {
		return defErr(by.name, "cannot implement interface %q of type %q inherited from %q with %q",
			key, ob.kind.String(), ob.from.name, k.String())
	}
	ob.kind &^= k
	if ob.kind == 0 {
		t.open.Remove(key)
	}
	return nil
}

// validate fails with one error per obligation still open.
func (t *tracker) validate(c *Class) error {
	var errs []error
	it := t.open.Iterator()
	for it.Next() {
		ob := it.Value().(*obligation)
		errs = append(errs, contractErr(c.name,
			"failed to implement interface %q of type %q inherited from %q",
			it.Key().(string), ob.kind.String(), ob.from.name))
	}
	return errors.Join(errs...)
}

// pending returns the open obligation keys in emission order.
func (t *tracker) pending() []string {
	out := make([]string, 0, t.open.Size())
	for _, k := range t.open.Keys() {
		out = append(out, k.(string))
	}
	return out
}
