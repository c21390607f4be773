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

package dos_test

import (
	"strings"
	"testing"

	"dirpx.dev/dos"
)

func newRuntime(t *testing.T, opts ...dos.Option) *dos.Runtime {
	t.Helper()
	rt, err := dos.NewRuntime(opts...)
	if err != nil {
		t.Fatalf("NewRuntime: got (%v), want (nil)", err)
	}
	return rt
}

func define(t *testing.T, rt *dos.Runtime, kind dos.ClassKind, name string, d dos.Descriptor) *dos.Class {
	t.Helper()
	c, err := rt.Define(kind, name, d)
	if err != nil {
		t.Fatalf("Define(%s %s): got (%v), want (nil)", kind, name, err)
	}
	return c
}

func instance(t *testing.T, c *dos.Class, params map[string]any) *dos.Object {
	t.Helper()
	o, err := c.New(params)
	if err != nil {
		t.Fatalf("%s.New(%v): got (%v), want (nil)", c.Name(), params, err)
	}
	return o
}

// member is the read side shared by objects, classes and scopes.
type member interface {
	Get(name string) (any, error)
	Call(name string, args ...any) (any, error)
}

func get(t *testing.T, m member, name string) any {
	t.Helper()
	v, err := m.Get(name)
	if err != nil {
		t.Fatalf("Get(%q): got (%v), want (nil)", name, err)
	}
	return v
}

func call(t *testing.T, m member, name string, args ...any) any {
	t.Helper()
	v, err := m.Call(name, args...)
	if err != nil {
		t.Fatalf("Call(%q): got (%v), want (nil)", name, err)
	}
	return v
}

func classNames(cs []*dos.Class) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.Name()
	}
	return strings.Join(parts, ",")
}

// numberField declares Private.x exposed on Public and an init reading
// an optional number param x into it.
func numberField(b *dos.Body) {
	_ = b.Private.Field("x", dos.GetterOn(b.Public), dos.SetterOn(b.Public))
	_ = b.Init(func(p *dos.Params) error {
		x, err := p.GetOptionalType("x", dos.TypeOfTag(dos.TagNumber))
		if err != nil {
			return err
		}
		return b.Private.Set("x", x)
	})
	_ = b.Public.Method("getX", func(...any) (any, error) {
		return b.Private.Get("x")
	})
}
