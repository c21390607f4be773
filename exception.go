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

// Names of the built-in exception classes.
const (
	ExceptionName      = "dos.Exception"
	ParamExceptionName = "dos.ParamException"
)

// defineBuiltins defines the exception classes every runtime carries.
func (rt *Runtime) defineBuiltins() error {
	exc, err := rt.define(KindException, ExceptionName, Descriptor{Body: exceptionBody}, 0)
	if err != nil {
		return err
	}
	rt.exception = exc
	pe, err := rt.define(KindException, ParamExceptionName, Descriptor{Extends: exc, Body: paramExceptionBody}, 0)
	if err != nil {
		return err
	}
	rt.paramException = pe
	return nil
}

// exceptionBody holds the message of an exception in "what" and exposes
// "message" and "toString" on Public.
func exceptionBody(b *Body) {
	_ = b.Private.Field("what", GetterOn(b.Public))
	_ = b.Private.Field("name")
	_ = b.Defaults(func(d map[string]any) { d["what"] = "" })
	_ = b.Init(func(p *Params) error {
		what, err := p.GetOptionalType("what", TypeOfTag(TagString))
		if err != nil {
			return err
		}
		if err := b.Private.Set("what", what); err != nil {
			return err
		}
		return b.Private.Set("name", b.Self().ClassName())
	})
	_ = b.Public.Getter("message", func() any {
		v, _ := b.Private.Get("what")
		return v
	})
	_ = b.Public.Method("toString", func(...any) (any, error) {
		name, _ := b.Private.Get("name")
		what, _ := b.Private.Get("what")
		if what == nil || what == "" {
			return name, nil
		}
		return fmt.Sprintf("%v: %v", name, what), nil
	})
}

// paramExceptionBody adds the offending param name.
func paramExceptionBody(b *Body) {
	_ = b.Private.Field("param", GetterOn(b.Public))
	_ = b.Init(func(p *Params) error {
		v, err := p.GetOptionalType("param", TypeOfTag(TagString))
		if err != nil {
			return err
		}
		return b.Private.Set("param", v)
	})
}

// ExceptionClass returns dos.Exception.
func (rt *Runtime) ExceptionClass() *Class { return rt.exception }

// ParamExceptionClass returns dos.ParamException.
func (rt *Runtime) ParamExceptionClass() *Class { return rt.paramException }

// ExceptionError carries an exception instance through Go error returns.
type ExceptionError struct {
	Object *Object
}

func (e *ExceptionError) Error() string {
	v, err := e.Object.Call("toString")
	if err != nil {
		return e.Object.String()
	}
	return fmt.Sprint(v)
}

// Unwrap lets errors.Is match the kind of a built-in exception.
func (e *ExceptionError) Unwrap() error {
	if e.Object.InstanceOf(e.Object.class.rt.paramException) {
		return ErrParam
	}
	return nil
}

// AsError wraps an exception instance as an error. It returns nil for
// instances of other classes.
func (o *Object) AsError() error {
	if o == nil || !o.class.described().IsException() {
		return nil
	}
	return &ExceptionError{Object: o}
}

// Throw instantiates exception class c, dos.Exception when nil, with what
// as its message and returns it as an error.
func (rt *Runtime) Throw(c *Class, what string) error {
	if c == nil {
		c = rt.exception
	}
	if !c.IsException() {
		return instErr(c.name, "cannot throw a class that is not an exception")
	}
	o, err := c.New(map[string]any{"what": what})
	if err != nil {
		return err
	}
	return o.AsError()
}

// ThrowParam returns a dos.ParamException for the invalid param name.
func (rt *Runtime) ThrowParam(name, what string) error {
	o, err := rt.paramException.New(map[string]any{"what": what, "param": name})
	if err != nil {
		return err
	}
	return o.AsError()
}
