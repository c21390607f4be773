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

package registry_test

import (
	"errors"
	"strings"
	"testing"

	"dirpx.dev/dos/apis"
	"dirpx.dev/dos/config"
	"dirpx.dev/dos/registry"
)

// fake is a minimal ClassNode: super is a single parent, ifaces are implemented interfaces.
type fake struct {
	id     int64
	name   string
	iface  bool
	super  *fake
	ifaces []*fake
}

func (f *fake) EntityName() string { return f.name }
func (f *fake) NodeID() int64      { return f.id }
func (f *fake) IsInterface() bool  { return f.iface }

func (f *fake) InstanceOfNode(other apis.ClassNode) bool {
	for c := f; c != nil; c = c.super {
		if c.id == other.NodeID() {
			return true
		}
	}
	return false
}

func (f *fake) ImplementsNode(other apis.ClassNode) bool {
	for c := f; c != nil; c = c.super {
		for _, i := range c.ifaces {
			if i.id == other.NodeID() {
				return true
			}
		}
	}
	return false
}

func (f *fake) BaseNodes() []apis.ClassNode {
	var out []apis.ClassNode
	if f.super != nil {
		out = append(out, f.super)
	}
	for _, i := range f.ifaces {
		out = append(out, i)
	}
	return out
}

func names(cs []apis.ClassNode) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.EntityName()
	}
	return strings.Join(parts, ",")
}

func fixture(t *testing.T) (apis.Registry, map[string]*fake) {
	t.Helper()
	a := &fake{id: 1, name: "A", iface: true}
	b := &fake{id: 2, name: "B", iface: true}
	c := &fake{id: 3, name: "C", iface: true}
	d := &fake{id: 4, name: "D", iface: true}
	x := &fake{id: 5, name: "X", ifaces: []*fake{a, b}}
	y := &fake{id: 6, name: "Y", super: x, ifaces: []*fake{c, d}}
	z := &fake{id: 7, name: "Z", super: y}

	reg := registry.New(config.DefaultConfig())
	for _, f := range []*fake{a, b, c, d, x, y, z} {
		if err := reg.Register(f); err != nil {
			t.Fatalf("Register(%s): unexpected error: %v", f.name, err)
		}
	}
	return reg, map[string]*fake{"A": a, "B": b, "C": c, "D": d, "X": x, "Y": y, "Z": z}
}

func TestRegister_OrderAndLookup(t *testing.T) {
	reg, fx := fixture(t)

	if got := names(reg.Entries()); got != "A,B,C,D,X,Y,Z" {
		t.Fatalf("Entries: got %q, want A,B,C,D,X,Y,Z", got)
	}
	if reg.Count() != 7 {
		t.Fatalf("Count() = %d, want 7", reg.Count())
	}
	if c, ok := reg.Lookup("Y"); !ok || c.NodeID() != fx["Y"].id {
		t.Fatalf("Lookup(Y): got (%v,%v), want (Y,true)", c, ok)
	}
	if _, ok := reg.Lookup("nope"); ok {
		t.Fatalf("Lookup(nope): want false")
	}
}

func TestRegister_Errors(t *testing.T) {
	reg, fx := fixture(t)

	if err := reg.Register(nil); !errors.Is(err, registry.ErrNilClass) {
		t.Fatalf("nil: want ErrNilClass, got %v", err)
	}
	if err := reg.Register(&fake{id: 99}); !errors.Is(err, registry.ErrEmptyName) {
		t.Fatalf("empty: want ErrEmptyName, got %v", err)
	}
	if err := reg.Register(fx["X"]); err != nil {
		t.Fatalf("same class twice: want nil, got %v", err)
	}
	if reg.Count() != 7 {
		t.Fatalf("Count() after errors = %d, want 7", reg.Count())
	}
}

func TestRegister_SharedName(t *testing.T) {
	reg, fx := fixture(t)

	other := &fake{id: 100, name: "X", super: fx["Z"]}
	if err := reg.Register(other); err != nil {
		t.Fatalf("second X: got (%v), want (nil)", err)
	}
	if reg.Count() != 8 {
		t.Fatalf("Count() = %d, want 8", reg.Count())
	}
	if c, ok := reg.Lookup("X"); !ok || c.NodeID() != fx["X"].id {
		t.Fatalf("Lookup(X): got (%v,%v), want (first X,true)", c, ok)
	}
	if got := names(reg.DescendantsOf(fx["Z"])); got != "X" {
		t.Fatalf("DescendantsOf(Z): got %q, want X", got)
	}
}

func TestImplementorsAndDescendants(t *testing.T) {
	reg, fx := fixture(t)

	cases := []struct {
		name string
		got  []apis.ClassNode
		want string
	}{
		{"implementors of A", reg.ImplementorsOf(fx["A"]), "X,Y,Z"},
		{"implementors of D", reg.ImplementorsOf(fx["D"]), "Y,Z"},
		{"descendants of X", reg.DescendantsOf(fx["X"]), "Y,Z"},
		{"descendants of Z", reg.DescendantsOf(fx["Z"]), ""},
	}
	for _, tc := range cases {
		if got := names(tc.got); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSorted_BasesFirst(t *testing.T) {
	reg, _ := fixture(t)

	sorted, err := reg.Sorted()
	if err != nil {
		t.Fatalf("Sorted: unexpected error: %v", err)
	}
	pos := map[string]int{}
	for i, c := range sorted {
		pos[c.EntityName()] = i
	}
	if len(pos) != 7 {
		t.Fatalf("Sorted: got %d classes, want 7", len(pos))
	}
	for _, pair := range [][2]string{{"A", "X"}, {"X", "Y"}, {"D", "Y"}, {"Y", "Z"}} {
		if pos[pair[0]] > pos[pair[1]] {
			t.Fatalf("Sorted: %s after %s in %q", pair[0], pair[1], names(sorted))
		}
	}
}

func TestMarshalDOT(t *testing.T) {
	reg, _ := fixture(t)

	out, err := reg.MarshalDOT("classes")
	if err != nil {
		t.Fatalf("MarshalDOT: unexpected error: %v", err)
	}
	s := string(out)
	for _, want := range []string{"digraph", "classes", "Y", "dashed"} {
		if !strings.Contains(s, want) {
			t.Fatalf("MarshalDOT: output missing %q:\n%s", want, s)
		}
	}
}
