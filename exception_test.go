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
	"testing"

	"dirpx.dev/dos"
)

func TestThrow(t *testing.T) {
	rt := newRuntime(t)
	err := rt.Throw(nil, "something broke")
	var exc *dos.ExceptionError
	if !errors.As(err, &exc) {
		t.Fatalf("Throw: got (%T), want (*dos.ExceptionError)", err)
	}
	if got := err.Error(); got != "dos.Exception: something broke" {
		t.Fatalf("Error: got (%q), want (dos.Exception: something broke)", got)
	}
	if got := get(t, exc.Object, "message"); got != "something broke" {
		t.Fatalf("message: got (%v), want (something broke)", got)
	}

	if got := rt.Throw(nil, "").Error(); got != "dos.Exception" {
		t.Fatalf("empty message: got (%q), want (dos.Exception)", got)
	}
}

func TestCustomException(t *testing.T) {
	rt := newRuntime(t)
	custom := define(t, rt, dos.KindException, "errors.NotFound", dos.Descriptor{
		Body: func(b *dos.Body) {
			_ = b.Private.Field("key", dos.GetterOn(b.Public))
			_ = b.Init(func(p *dos.Params) error {
				key, err := p.GetOptional("key")
				if err != nil {
					return err
				}
				return b.Private.Set("key", key)
			})
		},
	})
	if custom.Super() != rt.ExceptionClass() {
		t.Fatalf("Super: got (%v), want (%s)", custom.Super(), dos.ExceptionName)
	}

	o := instance(t, custom, map[string]any{"what": "no such key", "key": "k1"})
	err := o.AsError()
	if got := err.Error(); got != "errors.NotFound: no such key" {
		t.Fatalf("Error: got (%q), want (errors.NotFound: no such key)", got)
	}
	if got := get(t, o, "key"); got != "k1" {
		t.Fatalf("key: got (%v), want (k1)", got)
	}
	if errors.Is(err, dos.ErrParam) {
		t.Fatalf("custom exception matches ErrParam")
	}

	plain := define(t, rt, dos.KindClass, "errors.Plain", dos.Descriptor{})
	if instance(t, plain, nil).AsError() != nil {
		t.Fatalf("AsError on a plain instance: want nil")
	}
	if err := rt.Throw(plain, "x"); !errors.Is(err, dos.ErrInstantiation) {
		t.Fatalf("Throw(plain): got (%v), want (ErrInstantiation)", err)
	}
	if _, err := rt.Exception("errors.Bad", dos.Descriptor{Extends: plain}); !errors.Is(err, dos.ErrDefinition) {
		t.Fatalf("exception extending a class: got (%v), want (ErrDefinition)", err)
	}
}

func TestThrowParam(t *testing.T) {
	rt := newRuntime(t)
	err := rt.ThrowParam("size", "size must be positive")
	if !errors.Is(err, dos.ErrParam) {
		t.Fatalf("ThrowParam: got (%v), want (ErrParam)", err)
	}
	var exc *dos.ExceptionError
	if !errors.As(err, &exc) {
		t.Fatalf("ThrowParam: got (%T), want (*dos.ExceptionError)", err)
	}
	if got := get(t, exc.Object, "param"); got != "size" {
		t.Fatalf("param: got (%v), want (size)", got)
	}
	if !exc.Object.InstanceOf(rt.ExceptionClass()) {
		t.Fatalf("ParamException is not an Exception")
	}
}
