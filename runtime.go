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
	"log/slog"
	"slices"
	"strings"

	"fortio.org/safecast"

	"dirpx.dev/dos/apis"
	"dirpx.dev/dos/builder"
	"dirpx.dev/dos/config"
	"dirpx.dev/dos/namespace"
)

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("dos: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("dos: builder returned nil resolver")
)

// Runtime owns a class universe: its namespace, the class registry, the
// arena of class records and the static instances.
//
// A runtime is meant to be used from one goroutine. Classes are defined
// during load, instances are built and disposed synchronously.
type Runtime struct {
	cfg apis.Config
	log *slog.Logger
	bld apis.Builder
	reg apis.Registry
	res apis.Resolver
	ns  *namespace.Module

	// arena holds every class record by ID. Slot 0 is reserved.
	arena   []*Class
	statics []*Object

	defaultAlloc AllocatorFactory

	exception      *Class
	paramException *Class
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithConfig sets the configuration.
func WithConfig(cfg apis.Config) Option {
	return func(rt *Runtime) { rt.cfg = cfg }
}

// WithLogger sets the logger. Definitions, rollbacks and the static
// lifecycle are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.log = l
		}
	}
}

// WithBuilder sets the builder of the registry and the type-name resolver.
func WithBuilder(b apis.Builder) Option {
	return func(rt *Runtime) {
		if b != nil {
			rt.bld = b
		}
	}
}

// WithNamespace sets the root namespace classes are placed in.
func WithNamespace(m *namespace.Module) Option {
	return func(rt *Runtime) {
		if m != nil {
			rt.ns = m
		}
	}
}

// WithDefaultAllocator sets the allocator of classes defined without one.
func WithDefaultAllocator(f AllocatorFactory) Option {
	return func(rt *Runtime) { rt.defaultAlloc = f }
}

// NewRuntime creates a runtime and defines the built-in classes.
func NewRuntime(opts ...Option) (*Runtime, error) {
	rt := &Runtime{
		cfg:   config.DefaultConfig(),
		log:   slog.New(slog.DiscardHandler),
		bld:   builder.New(),
		ns:    namespace.NewRoot(),
		arena: make([]*Class, 1),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.reg = rt.bld.BuildRegistry(rt.cfg, nil)
	if rt.reg == nil {
		return nil, ErrNilRegistry
	}
	rt.res = rt.bld.BuildResolver(rt.cfg, rt.reg)
	if rt.res == nil {
		return nil, ErrNilResolver
	}
	if rt.defaultAlloc == nil {
		rt.defaultAlloc = Pool(rt.cfg.PoolCapacity)
		if rt.cfg.CountAllocations {
			rt.defaultAlloc = Counting(rt.defaultAlloc)
		}
	}
	if err := rt.defineBuiltins(); err != nil {
		return nil, err
	}
	return rt, nil
}

// Config returns the configuration.
func (rt *Runtime) Config() apis.Config { return rt.cfg }

// Logger returns the logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.log }

// Namespace returns the root namespace.
func (rt *Runtime) Namespace() *namespace.Module { return rt.ns }

// Registry returns the class registry.
func (rt *Runtime) Registry() apis.Registry { return rt.reg }

// Class defines a concrete class.
func (rt *Runtime) Class(name string, d Descriptor) (*Class, error) {
	return rt.define(KindClass, name, d, 0)
}

// Abstract defines an abstract class.
func (rt *Runtime) Abstract(name string, d Descriptor) (*Class, error) {
	return rt.define(KindAbstract, name, d, 0)
}

// Root defines a root class: it cannot be instantiated unless a constructor
// exists somewhere in the hierarchy of the instantiated class.
func (rt *Runtime) Root(name string, d Descriptor) (*Class, error) {
	return rt.define(KindRoot, name, d, 0)
}

// Interface defines an interface. Its body may only declare requirements.
func (rt *Runtime) Interface(name string, d Descriptor) (*Class, error) {
	return rt.define(KindInterface, name, d, 0)
}

// Static defines a class made of a static section only.
func (rt *Runtime) Static(name string, d Descriptor) (*Class, error) {
	return rt.define(KindStatic, name, d, 0)
}

// AllocatorClass defines a class whose instances serve as allocators.
func (rt *Runtime) AllocatorClass(name string, d Descriptor) (*Class, error) {
	return rt.define(KindAllocator, name, d, 0)
}

// Exception defines an exception class. Without Extends it extends
// dos.Exception.
func (rt *Runtime) Exception(name string, d Descriptor) (*Class, error) {
	return rt.define(KindException, name, d, 0)
}

// Define defines a class of the given kind.
func (rt *Runtime) Define(kind ClassKind, name string, d Descriptor) (*Class, error) {
	return rt.define(kind, name, d, 0)
}

func kindFlags(kind ClassKind) Flags {
	switch kind {
	case KindAbstract:
		return FlagAbstract
	case KindRoot:
		return FlagRoot
	case KindInterface:
		return FlagInterface | FlagAbstract
	case KindStatic:
		return FlagStaticOnly | FlagAbstract
	case KindAllocator:
		return FlagAllocator
	case KindException:
		return FlagException
	}
	return 0
}

// define validates d, places the class in its namespace and completes it.
// On failure after placement the namespace entry is removed again.
func (rt *Runtime) define(kind ClassKind, name string, d Descriptor, extra Flags) (*Class, error) {
	if kind == KindException && d.Extends == nil && rt.exception != nil {
		d.Extends = rt.exception
	}
	if err := validateDescriptor(kind, name, &d); err != nil {
		rt.log.Debug("class rejected", "class", name, "err", err)
		return nil, err
	}
	for _, dep := range append([]*Class{d.Extends}, d.Implements...) {
		if dep != nil && dep.rt != rt {
			return nil, defErr(name, "%q belongs to another runtime", dep.name)
		}
	}

	ns := d.Namespace
	if ns == nil {
		ns = rt.ns
	}
	c := &Class{
		rt:         rt,
		name:       name,
		simpleName: name[strings.LastIndexByte(name, '.')+1:],
		kind:       kind,
		flags:      extra | kindFlags(kind),
		super:      d.Extends,
		interfaces: slices.Clone(d.Implements),
		ns:         ns,
		body:       d.Body,
	}
	if d.UseRawParams {
		c.flags |= FlagRawParams
	}
	if d.ManualSuperInit {
		c.flags |= FlagManualSuperInit
	}

	mod, err := ns.Place(name, c)
	if err != nil {
		if errors.Is(err, namespace.ErrOccupied) {
			// The slot is cleared like any failed definition; the
			// earlier class stays registered.
			ns.Remove(name)
			rt.log.Debug("class definition rolled back", "class", name, "err", "double definition")
			return nil, defErr(name, "double definition of class")
		}
		return nil, wrapErr(name, ErrDefinition, "cannot place class", err)
	}
	c.module = mod

	if err := rt.complete(c, &d); err != nil {
		ns.Remove(name)
		for _, in := range c.inner {
			in.ns.Remove(in.name)
		}
		rt.dropStatic(c)
		rt.log.Debug("class definition rolled back", "class", name, "err", err)
		return nil, err
	}
	rt.log.Debug("class defined", "class", name, "kind", kind.String(), "id", c.id)
	return c, nil
}

// complete allocates the class records, builds the static section and
// registers the class.
func (rt *Runtime) complete(c *Class, d *Descriptor) error {
	if err := rt.slot(c); err != nil {
		return err
	}
	c.hierarchy = []*Class{c}
	if c.super != nil {
		c.hierarchy = append(c.hierarchy, c.super.hierarchy...)
	}

	if !c.IsAbstract() {
		f := d.Allocator
		switch {
		case c.flags.Has(FlagAllocator):
			f = Direct()
		case f == nil:
			f = rt.defaultAlloc
		}
		a, err := f(c, d.AllocatorParams)
		if err != nil {
			return wrapErr(c.name, ErrDefinition, "cannot create allocator", err)
		}
		c.allocator = a
		c.allocParams = d.AllocatorParams
	}

	sc := &Class{
		rt:         rt,
		name:       c.name + staticSuffix,
		simpleName: c.simpleName + staticSuffix,
		kind:       KindStatic,
		flags:      FlagStatic | FlagRawParams,
		ns:         c.ns,
		module:     c.module,
		body:       d.Static,
		owner:      c,
	}
	if c.super != nil {
		sc.super = c.super.staticClass
	}
	if err := rt.slot(sc); err != nil {
		return err
	}
	sc.hierarchy = []*Class{sc}
	if sc.super != nil {
		sc.hierarchy = append(sc.hierarchy, sc.super.hierarchy...)
	}
	c.staticClass = sc

	if err := rt.buildStatic(c); err != nil {
		return err
	}
	if err := rt.reg.Register(c); err != nil {
		return wrapErr(c.name, ErrDefinition, "cannot register class", err)
	}
	if d.DefaultAllocator {
		rt.defaultAlloc = ClassAllocator(c)
	}
	return nil
}

// dropStatic forgets and disposes the static instance of a class whose
// definition failed after its static section was built.
func (rt *Runtime) dropStatic(c *Class) {
	if c.section == nil {
		return
	}
	obj := c.section.obj
	i := slices.Index(rt.statics, obj)
	if i < 0 {
		return
	}
	rt.statics = slices.Delete(rt.statics, i, i+1)
	_ = obj.Dispose()
}

// slot assigns the next arena ID to c.
func (rt *Runtime) slot(c *Class) error {
	id, err := safecast.Conv[uint32](len(rt.arena))
	if err != nil {
		return wrapErr(c.name, ErrDefinition, "class arena exhausted", err)
	}
	c.id = ClassID(id)
	rt.arena = append(rt.arena, c)
	return nil
}

// ClassByID returns the class stored in an arena slot.
func (rt *Runtime) ClassByID(id ClassID) (*Class, bool) {
	if id == 0 || int(id) >= len(rt.arena) {
		return nil, false
	}
	return rt.arena[id], true
}

// Import resolves a class by its path in the runtime namespace.
func (rt *Runtime) Import(path string) (*Class, error) {
	v, ok := rt.ns.Lookup(path)
	if c, isClass := v.(*Class); ok && isClass {
		return c, nil
	}
	return nil, fmt.Errorf("dos: $import of %q failed: %w", path, ErrNoMember)
}

// Lookup returns a registered class by canonical name.
func (rt *Runtime) Lookup(name string) (*Class, bool) {
	n, ok := rt.reg.Lookup(name)
	if !ok {
		return nil, false
	}
	c, ok := n.(*Class)
	return c, ok
}

// Classes returns the registered classes in definition order.
func (rt *Runtime) Classes() []*Class {
	return rt.nodes(rt.reg.Entries())
}

// Sorted returns the registered classes with bases before derived classes.
func (rt *Runtime) Sorted() ([]*Class, error) {
	nodes, err := rt.reg.Sorted()
	if err != nil {
		return nil, err
	}
	return rt.nodes(nodes), nil
}

// MarshalDOT renders the class graph in Graphviz DOT format.
func (rt *Runtime) MarshalDOT(name string) ([]byte, error) {
	return rt.reg.MarshalDOT(name)
}

func (rt *Runtime) nodes(in []apis.ClassNode) []*Class {
	out := make([]*Class, 0, len(in))
	for _, n := range in {
		if c, ok := n.(*Class); ok {
			out = append(out, c)
		}
	}
	return out
}

// TypeName names any value: classes and instances by class name, declared
// Go types as "pkg.Type", everything else by type tag.
func (rt *Runtime) TypeName(v any) string {
	return rt.res.Resolve(v, rt.cfg)
}

// StaticCount returns the number of live static instances.
func (rt *Runtime) StaticCount() int {
	return len(rt.statics)
}

// Deinit disposes every static instance in reverse creation order and
// forgets them. The registry is left untouched.
func (rt *Runtime) Deinit() error {
	var errs []error
	for i := len(rt.statics) - 1; i >= 0; i-- {
		if err := rt.statics[i].Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.log.Debug("statics disposed", "count", len(rt.statics), "errors", len(errs))
	rt.statics = nil
	return errors.Join(errs...)
}
