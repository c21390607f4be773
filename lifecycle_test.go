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
	"errors"
	"maps"
	"slices"
	"strings"
	"testing"

	"dirpx.dev/dos"
)

var errSetterCalled = errors.New("access to setter")

func TestPoolRebindsAccessors(t *testing.T) {
	rt := newRuntime(t)
	c := define(t, rt, dos.KindClass, "rebind.WithAutoGetter", dos.Descriptor{
		Body: func(b *dos.Body) {
			_ = b.Private.Field("x", dos.GetterOn(b.Public))
			_ = b.Init(func(p *dos.Params) error {
				x, err := p.GetOptionalType("x", dos.TypeOfTag(dos.TagNumber))
				if err != nil {
					return err
				}
				return b.Private.Set("x", x)
			})
			_ = b.Public.Setter("x", func(v any) error {
				if err := b.Private.Set("x", v); err != nil {
					return err
				}
				return errSetterCalled
			})
		},
	})

	first := instance(t, c, map[string]any{"x": 42})
	if got := get(t, first, "x"); got != 42 {
		t.Fatalf("x: got (%v), want (42)", got)
	}
	if err := first.Set("x", 43); !errors.Is(err, errSetterCalled) {
		t.Fatalf("Set(43): got (%v), want (%v)", err, errSetterCalled)
	}
	if got := get(t, first, "x"); got != 43 {
		t.Fatalf("x after set: got (%v), want (43)", got)
	}
	if err := first.Dispose(); err != nil {
		t.Fatalf("Dispose: got (%v), want (nil)", err)
	}
	if err := first.Set("x", 1); !errors.Is(err, dos.ErrReadOnly) {
		t.Fatalf("Set on released field: got (%v), want (ErrReadOnly)", err)
	}

	second := instance(t, c, map[string]any{"x": 44})
	if second != first {
		t.Fatalf("pool did not recycle the released instance")
	}
	if got := get(t, second, "x"); got != 44 {
		t.Fatalf("x after rebind: got (%v), want (44)", got)
	}
	if err := second.Set("x", 45); !errors.Is(err, errSetterCalled) {
		t.Fatalf("Set(45): got (%v), want (%v)", err, errSetterCalled)
	}
	if got := get(t, second, "x"); got != 45 {
		t.Fatalf("x after rebound set: got (%v), want (45)", got)
	}
	if err := second.Dispose(); err != nil {
		t.Fatalf("Dispose: got (%v), want (nil)", err)
	}
}

func TestInheritedAccessors(t *testing.T) {
	rt := newRuntime(t)
	base := define(t, rt, dos.KindClass, "accessors.Base", dos.Descriptor{Body: numberField})
	child := define(t, rt, dos.KindClass, "accessors.Child", dos.Descriptor{Extends: base})

	for _, c := range []*dos.Class{base, child} {
		o := instance(t, c, map[string]any{"x": 42})
		if got, want := get(t, o, "x"), call(t, o, "getX"); got != want || got != 42 {
			t.Fatalf("%s x: got (%v, %v), want (42, 42)", c.Name(), got, want)
		}
		o = instance(t, c, nil)
		if err := o.Set("x", 23); err != nil {
			t.Fatalf("%s Set(x): got (%v), want (nil)", c.Name(), err)
		}
		if got := call(t, o, "getX"); got != 23 {
			t.Fatalf("%s getX: got (%v), want (23)", c.Name(), got)
		}
	}

	if _, err := base.New(map[string]any{"x": "text"}); !errors.Is(err, dos.ErrParam) {
		t.Fatalf("wrong param type: got (%v), want (ErrParam)", err)
	}
}

func TestDefaultsMerge(t *testing.T) {
	rt := newRuntime(t)
	var seen map[string]any
	base := define(t, rt, dos.KindClass, "defaults.Base", dos.Descriptor{
		Body: func(b *dos.Body) {
			_ = b.Defaults(func(d map[string]any) {
				d["opts"] = map[string]any{"a": 1, "b": 2}
				d["n"] = 1
			})
		},
	})
	derived := define(t, rt, dos.KindClass, "defaults.Derived", dos.Descriptor{
		Extends: base,
		Body: func(b *dos.Body) {
			_ = b.Defaults(func(d map[string]any) { d["n"] = 2 })
			_ = b.Init(func(p *dos.Params) error {
				seen = p.Raw()
				return nil
			})
		},
	})

	tests := []struct {
		name   string
		params map[string]any
		want   map[string]any
	}{
		{
			name:   "partial nested override",
			params: map[string]any{"opts": map[string]any{"b": 3}, "extra": true},
			want:   map[string]any{"opts": map[string]any{"a": 1, "b": 3}, "n": 2, "extra": true},
		},
		{
			name:   "zero values override",
			params: map[string]any{"opts": map[string]any{"a": 0}, "n": 0},
			want:   map[string]any{"opts": map[string]any{"a": 0, "b": 2}, "n": 0},
		},
		{
			name:   "nil overrides",
			params: map[string]any{"opts": map[string]any{"b": nil}},
			want:   map[string]any{"opts": map[string]any{"a": 1, "b": nil}, "n": 2},
		},
		{
			name:   "no params",
			params: nil,
			want:   map[string]any{"opts": map[string]any{"a": 1, "b": 2}, "n": 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance(t, derived, tt.params)
			if !maps.EqualFunc(seen, tt.want, func(x, y any) bool {
				xm, xok := x.(map[string]any)
				ym, yok := y.(map[string]any)
				if xok && yok {
					return maps.Equal(xm, ym)
				}
				return x == y
			}) {
				t.Fatalf("merged params: got (%v), want (%v)", seen, tt.want)
			}
		})
	}
}

func throwingBase(t *testing.T, rt *dos.Runtime) *dos.Class {
	t.Helper()
	return define(t, rt, dos.KindClass, "manual.ThrowingInitBase", dos.Descriptor{
		Body: func(b *dos.Body) {
			_ = b.Init(func(*dos.Params) error {
				return rt.Throw(nil, "called init of manualSuperInit base")
			})
		},
	})
}

func TestManualSuperInit(t *testing.T) {
	rt := newRuntime(t)
	base := throwingBase(t, rt)
	noop := func(b *dos.Body) { _ = b.Init(func(*dos.Params) error { return nil }) }

	manual := define(t, rt, dos.KindClass, "manual.NoSuperPropagation", dos.Descriptor{
		Extends: base, ManualSuperInit: true, Body: noop,
	})
	instance(t, manual, nil)

	auto := define(t, rt, dos.KindClass, "manual.SuperPropagation", dos.Descriptor{
		Extends: base, Body: noop,
	})
	_, err := auto.New(nil)
	var exc *dos.ExceptionError
	if !errors.As(err, &exc) {
		t.Fatalf("propagated init: got (%v), want (*ExceptionError)", err)
	}
	if got := err.Error(); got != "dos.Exception: called init of manualSuperInit base" {
		t.Fatalf("message: got (%q), want (dos.Exception: called init of manualSuperInit base)", got)
	}

	explicit := define(t, rt, dos.KindClass, "manual.Explicit", dos.Descriptor{
		Extends: base, ManualSuperInit: true,
		Body: func(b *dos.Body) {
			_ = b.Init(func(*dos.Params) error { return b.SuperInit(nil) })
		},
	})
	if _, err := explicit.New(nil); !errors.As(err, &exc) {
		t.Fatalf("explicit SuperInit: got (%v), want (*ExceptionError)", err)
	}

	var calls int
	counted := define(t, rt, dos.KindClass, "manual.Counted", dos.Descriptor{
		Body: func(b *dos.Body) {
			_ = b.Init(func(*dos.Params) error { calls++; return nil })
		},
	})
	twice := define(t, rt, dos.KindClass, "manual.Twice", dos.Descriptor{
		Extends: counted, ManualSuperInit: true,
		Body: func(b *dos.Body) {
			_ = b.Init(func(p *dos.Params) error {
				if err := b.SuperInit(p); err != nil {
					return err
				}
				return b.SuperInit(map[string]any{})
			})
		},
	})
	if _, err := twice.New(nil); !errors.Is(err, dos.ErrInstantiation) || calls != 1 {
		t.Fatalf("SuperInit twice: got (%v, %d calls), want (ErrInstantiation, 1 call)", err, calls)
	}
}

func TestDisposeOrder(t *testing.T) {
	rt := newRuntime(t)
	var log []string
	disposer := func(name string) func(b *dos.Body) {
		return func(b *dos.Body) {
			_ = b.Dispose(func() error { log = append(log, name); return nil })
		}
	}
	base := define(t, rt, dos.KindClass, "order.Base", dos.Descriptor{Body: disposer("base")})
	mixin := define(t, rt, dos.KindClass, "order.Mixin", dos.Descriptor{Body: disposer("mixin")})
	leaf := define(t, rt, dos.KindClass, "order.Leaf", dos.Descriptor{
		Extends: base, Implements: []*dos.Class{mixin}, Body: disposer("leaf"),
	})

	o := instance(t, leaf, nil)
	if err := o.Dispose(); err != nil {
		t.Fatalf("Dispose: got (%v), want (nil)", err)
	}
	if want := []string{"leaf", "base", "mixin"}; !slices.Equal(log, want) {
		t.Fatalf("dispose order: got (%v), want (%v)", log, want)
	}
	if !o.Disposed() {
		t.Fatalf("Disposed: got (false), want (true)")
	}
}

func TestRawParams(t *testing.T) {
	rt := newRuntime(t)
	var got map[string]any
	raw := define(t, rt, dos.KindClass, "params.Raw", dos.Descriptor{
		UseRawParams: true,
		Body: func(b *dos.Body) {
			_ = b.Defaults(func(d map[string]any) { d["a"] = 1 })
			_ = b.InitRaw(func(p map[string]any) error { got = p; return nil })
		},
	})
	instance(t, raw, map[string]any{"b": 2})
	if len(got) != 2 || got["a"] != 1 || got["b"] != 2 {
		t.Fatalf("raw params: got (%v), want (map[a:1 b:2])", got)
	}

	wrongInit := define(t, rt, dos.KindClass, "params.WrongInit", dos.Descriptor{
		UseRawParams: true,
		Body: func(b *dos.Body) {
			_ = b.Init(func(*dos.Params) error { return nil })
		},
	})
	if _, err := wrongInit.New(nil); !errors.Is(err, dos.ErrDefinition) {
		t.Fatalf("Init on raw class: got (%v), want (ErrDefinition)", err)
	}
	wrongRaw := define(t, rt, dos.KindClass, "params.WrongRaw", dos.Descriptor{
		Body: func(b *dos.Body) {
			_ = b.InitRaw(func(map[string]any) error { return nil })
		},
	})
	if _, err := wrongRaw.New(nil); !errors.Is(err, dos.ErrDefinition) {
		t.Fatalf("InitRaw on wrapped class: got (%v), want (ErrDefinition)", err)
	}
}

func TestDefaultInterfaceWithReflection(t *testing.T) {
	rt := newRuntime(t)
	partial := define(t, rt, dos.KindClass, "partial.PartialInterface", dos.Descriptor{
		Static: func(b *dos.Body) {
			_ = b.Private.Field("id", dos.Raw())
			_ = b.Public.Const("constant", "someConstantString")
			_ = b.StaticInit(func() error { return b.Private.Set("id", 0) })
			_ = b.Protected.Getter("id", func() any {
				v, _ := b.Private.Get("id")
				return v
			})
			_ = b.Protected.Setter("id", func(v any) error { return b.Private.Set("id", v) })
		},
		Body: func(b *dos.Body) {
			_ = b.Init(func(*dos.Params) error {
				id, err := b.Static.Protected().Get("id")
				if err != nil {
					return err
				}
				return b.Static.Protected().Set("id", id.(int)+1)
			})
			_ = b.Public.Method("getId", nil)
		},
	})
	impl := define(t, rt, dos.KindClass, "partial.ImplementPartialInterface", dos.Descriptor{
		Extends: partial,
		Body: func(b *dos.Body) {
			if _, err := b.Import(dos.ExceptionName); err != nil {
				t.Errorf("Import(%s): got (%v), want (nil)", dos.ExceptionName, err)
			}
			_ = b.Init(func(*dos.Params) error {
				return b.Reflect(func(pub, _, _ *dos.Scope) {
					_ = pub.Method("reflectedMethod", func(...any) (any, error) { return "reflected!", nil })
				})
			})
			_ = b.Public.Method("getId", func(...any) (any, error) {
				return b.Static.Protected().Get("id")
			})
		},
	})

	if _, err := partial.New(nil); !errors.Is(err, dos.ErrInterfaceContract) {
		t.Fatalf("New(partial): got (%v), want (ErrInterfaceContract)", err)
	}
	x := instance(t, impl, nil)
	if got := call(t, x, "getId"); got != 1 {
		t.Fatalf("x.getId: got (%v), want (1)", got)
	}
	if got := call(t, x, "reflectedMethod"); got != "reflected!" {
		t.Fatalf("reflectedMethod: got (%v), want (reflected!)", got)
	}
	y := instance(t, impl, nil)
	if got := call(t, y, "getId"); got != 2 {
		t.Fatalf("y.getId: got (%v), want (2)", got)
	}
	if got := get(t, impl, "constant"); got != "someConstantString" {
		t.Fatalf("constant: got (%v), want (someConstantString)", got)
	}
	if _, err := impl.StaticClass().New(nil); !errors.Is(err, dos.ErrInstantiation) {
		t.Fatalf("New(static class): got (%v), want (ErrInstantiation)", err)
	}
}

// checkingAllocator recycles instances and rejects double releases.
func checkingAllocator(t *testing.T, rt *dos.Runtime) *dos.Class {
	t.Helper()
	return define(t, rt, dos.KindAllocator, "alloc.ThrowingCheckingAllocator", dos.Descriptor{
		UseRawParams: true,
		Body: func(b *dos.Body) {
			_ = b.Private.Field("unused", dos.Raw())
			_ = b.InitRaw(func(map[string]any) error {
				return b.Private.Set("unused", []*dos.Object{})
			})
			unused := func() []*dos.Object {
				v, _ := b.Private.Get("unused")
				return v.([]*dos.Object)
			}
			_ = b.Public.Method("alloc", func(args ...any) (any, error) {
				build := args[1].(func() (*dos.Object, error))
				free := unused()
				if len(free) == 0 {
					return build()
				}
				o := free[len(free)-1]
				return o, b.Private.Set("unused", free[:len(free)-1])
			})
			_ = b.Public.Method("dealloc", func(args ...any) (any, error) {
				o := args[0].(*dos.Object)
				free := unused()
				for _, u := range free {
					if u == o {
						return nil, errors.New("duplicate dispose")
					}
					if u.ClassName() != o.ClassName() {
						return nil, errors.New("different type")
					}
				}
				return nil, b.Private.Set("unused", append(free, o))
			})
		},
	})
}

func TestAllocatorClassDispose(t *testing.T) {
	rt := newRuntime(t)
	payload := define(t, rt, dos.KindClass, "alloc.SomePayload", dos.Descriptor{
		Allocator: dos.ClassAllocator(checkingAllocator(t, rt)),
		Body: func(b *dos.Body) {
			_ = b.Public.Field("publicField")
			_ = b.Protected.Field("protectedField")
		},
	})
	child := define(t, rt, dos.KindClass, "alloc.SomePayloadChild", dos.Descriptor{Extends: payload})
	if err := instance(t, child, nil).Dispose(); err != nil {
		t.Fatalf("child Dispose: got (%v), want (nil)", err)
	}

	x := instance(t, payload, nil)
	if err := x.Set("publicField", "value"); err != nil {
		t.Fatalf("Set(publicField): got (%v), want (nil)", err)
	}
	if err := x.Dispose(); err != nil {
		t.Fatalf("Dispose: got (%v), want (nil)", err)
	}
	if err := x.Dispose(); err == nil || !strings.Contains(err.Error(), "duplicate dispose") {
		t.Fatalf("double Dispose: got (%v), want (duplicate dispose)", err)
	}
	y := instance(t, payload, nil)
	if y != x {
		t.Fatalf("allocator class did not recycle the released instance")
	}
	if got := get(t, y, "publicField"); got != nil {
		t.Fatalf("publicField after recycle: got (%v), want (nil)", got)
	}
}

func TestPendingInstanceIsUnusable(t *testing.T) {
	rt := newRuntime(t)
	var pending *dos.Object
	define(t, rt, dos.KindClass, "pending.Probe", dos.Descriptor{
		Static: func(b *dos.Body) {
			_ = b.StaticInit(func() error {
				c, err := b.Import("pending.Probe")
				if err != nil {
					return err
				}
				if pending, err = c.New(nil); err != nil {
					return err
				}
				if !pending.Pending() {
					return errors.New("instance requested during static init is not pending")
				}
				if _, err := pending.Get("className"); !errors.Is(err, dos.ErrPending) {
					return errors.New("pending instance is usable")
				}
				return nil
			})
		},
	})
	if pending == nil || pending.Pending() {
		t.Fatalf("pending instance: got (%v), want constructed", pending)
	}
	if got := get(t, pending, "className"); got != "pending.Probe" {
		t.Fatalf("className: got (%v), want (pending.Probe)", got)
	}
}
