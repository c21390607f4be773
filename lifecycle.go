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
	"slices"
)

func (c *Class) checkInstantiable() error {
	switch {
	case c.flags.Has(FlagStatic), c.flags.Has(FlagStaticOnly):
		return instErr(c.name, "cannot instantiate static class")
	case c.IsInterface():
		return instErr(c.name, "cannot instantiate interface")
	case c.IsAbstract():
		return instErr(c.name, "cannot instantiate abstract class")
	}
	return nil
}

// needsInit reports whether the hierarchy root was defined with Root.
func (c *Class) needsInit() bool {
	root := c.hierarchy[len(c.hierarchy)-1]
	return root.flags.Has(FlagRoot)
}

// New creates an instance. params override the defaults of every level.
//
// Before the static initialization of c has finished, New returns a pending
// instance that is constructed right after it.
func (c *Class) New(params map[string]any) (*Object, error) {
	if err := c.checkInstantiable(); err != nil {
		return nil, err
	}
	if !c.constructible {
		o := &Object{class: c, pending: &pendingCtor{params: params}}
		c.pending = append(c.pending, o)
		return o, nil
	}
	o, err := c.allocator.Alloc(c, c.fresh)
	if err != nil {
		return nil, err
	}
	if err := o.construct(params); err != nil {
		o.abandon()
		return nil, err
	}
	return o, nil
}

// fresh builds an unconstructed instance for allocators.
func (c *Class) fresh() (*Object, error) {
	o := &Object{}
	if err := c.buildObject(o); err != nil {
		return nil, err
	}
	return o, nil
}

// construct binds the fields and runs the constructors of o.
func (o *Object) construct(params map[string]any) error {
	c := o.class
	lv := o.leaf
	if c.needsInit() && !lv.hasInit() {
		return wrapErr(c.name, ErrInstantiation, "root class without constructor", ErrNoConstructor)
	}

	o.disposed = false
	o.constructing = true
	defer func() { o.constructing = false }()

	if err := lv.initFields(); err != nil {
		return err
	}
	defaults := make(map[string]any)
	lv.collectDefaults(defaults)
	if err := mergeParams(defaults, params); err != nil {
		return wrapErr(c.name, ErrParam, "merge params", err)
	}
	ps := newParams(defaults, c.rt.cfg)
	defer ps.Dispose()
	if err := lv.runInit(ps); err != nil {
		return err
	}
	lv.lockConsts()
	return nil
}

// abandon drops an instance whose construction failed.
func (o *Object) abandon() {
	if o.leaf != nil {
		o.leaf.walk(func(l *level) { _ = releaseAll(l.fields) })
	}
	o.disposed = true
}

// Dispose runs the destructors, releases the fields and hands o back to
// its allocator. Double disposal is left to the allocator to detect.
func (o *Object) Dispose() error {
	c := o.class
	if o.pending != nil {
		c.pending = slices.DeleteFunc(c.pending, func(p *Object) bool { return p == o })
		o.pending = nil
		o.disposed = true
		return nil
	}
	if o.leaf == nil {
		return instErr(c.name, "dispose of an instance that was never constructed")
	}
	o.disposed = true
	err := o.leaf.destroy()
	if c.isStatic() || c.allocator == nil {
		return err
	}
	return errors.Join(err, c.allocator.Dealloc(o))
}
