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

// Object is an instance of a class. Only Public is reachable from outside;
// Protected and Private are visible to the class bodies.
type Object struct {
	class     *Class
	public    *Scope
	protected *Scope
	leaf      *level

	// pending holds the params of an instance requested before its class
	// finished its static initialization.
	pending *pendingCtor

	constructing bool
	disposed     bool
}

type pendingCtor struct {
	params map[string]any
}

// Class returns the class of o.
func (o *Object) Class() *Class { return o.class }

// EntityName implements apis.Namer.
func (o *Object) EntityName() string { return o.class.described().name }

// ClassName returns the canonical name of the class of o.
func (o *Object) ClassName() string { return o.class.described().name }

// SimpleClassName returns the last path segment of the class name.
func (o *Object) SimpleClassName() string { return o.class.described().simpleName }

// ClassHierarchy returns the ancestor chain of the class, self first.
func (o *Object) ClassHierarchy() []*Class { return o.class.described().Hierarchy() }

// InstanceOf reports whether c is in the ancestor chain of the class of o.
func (o *Object) InstanceOf(c *Class) bool { return o.class.described().InstanceOf(c) }

// Implements reports whether the class of o implements c.
func (o *Object) Implements(c *Class) bool { return o.class.described().Implements(c) }

// Pending reports whether construction is deferred until the static
// initialization of the class completes.
func (o *Object) Pending() bool { return o.pending != nil }

// Disposed reports whether o was disposed and not reconstructed since.
func (o *Object) Disposed() bool { return o.disposed }

// live reports whether o holds a constructed instance.
func (o *Object) live() bool {
	return o != nil && o.pending == nil && o.leaf != nil && !o.disposed
}

func (o *Object) usable() error {
	if o.pending != nil {
		return fmt.Errorf("%w: %q", ErrPending, o.class.name)
	}
	if o.leaf == nil {
		return fmt.Errorf("%w: %q is not constructed", ErrNoMember, o.class.name)
	}
	return nil
}

// Public returns the public scope.
func (o *Object) Public() (*Scope, error) {
	if err := o.usable(); err != nil {
		return nil, err
	}
	return o.public, nil
}

// Get reads a public member.
func (o *Object) Get(name string) (any, error) {
	if err := o.usable(); err != nil {
		return nil, err
	}
	return o.public.Get(name)
}

// Set writes a public member.
func (o *Object) Set(name string, v any) error {
	if err := o.usable(); err != nil {
		return err
	}
	return o.public.Set(name, v)
}

// Call invokes a public method.
func (o *Object) Call(name string, args ...any) (any, error) {
	if err := o.usable(); err != nil {
		return nil, err
	}
	return o.public.Call(name, args...)
}

// Has reports whether the public scope holds name.
func (o *Object) Has(name string) bool {
	return o.usable() == nil && o.public.Has(name)
}

func (o *Object) String() string {
	switch {
	case o.pending != nil:
		return "[pending " + o.class.name + "]"
	case o.disposed:
		return "[disposed " + o.class.name + "]"
	}
	return "[object " + o.ClassName() + "]"
}
