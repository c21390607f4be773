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

	"github.com/emirpasic/gods/stacks/arraystack"

	uref "dirpx.dev/dos/utils/reflect"
)

// Allocator provides instances of one class.
//
// Alloc returns a recycled instance or calls build for a fresh one. The
// instance is constructed by the caller. Dealloc takes back a disposed instance.
type Allocator interface {
	Alloc(c *Class, build func() (*Object, error)) (*Object, error)
	Dealloc(o *Object) error
}

// AllocatorFactory creates the allocator of a class at definition time.
type AllocatorFactory func(c *Class, params map[string]any) (Allocator, error)

// DirectAllocator builds every instance and drops released ones.
type DirectAllocator struct{}

func (DirectAllocator) Alloc(_ *Class, build func() (*Object, error)) (*Object, error) {
	return build()
}

func (DirectAllocator) Dealloc(*Object) error { return nil }

// Direct is the factory of DirectAllocator.
func Direct() AllocatorFactory {
	return func(*Class, map[string]any) (Allocator, error) { return DirectAllocator{}, nil }
}

// PoolAllocator recycles released instances of one class.
type PoolAllocator struct {
	free     *arraystack.Stack
	pooled   map[*Object]struct{}
	capacity int
}

// NewPoolAllocator returns a pool keeping up to capacity released
// instances; zero keeps all of them.
func NewPoolAllocator(capacity int) *PoolAllocator {
	return &PoolAllocator{
		free:     arraystack.New(),
		pooled:   make(map[*Object]struct{}),
		capacity: capacity,
	}
}

// Alloc pops a released instance, or builds one when the pool is empty.
func (p *PoolAllocator) Alloc(_ *Class, build func() (*Object, error)) (*Object, error) {
	if v, ok := p.free.Pop(); ok {
		o := v.(*Object)
		delete(p.pooled, o)
		return o, nil
	}
	return build()
}

// Dealloc pushes o onto the free list. Releasing an instance already in
// the pool fails with ErrDoubleRelease.
func (p *PoolAllocator) Dealloc(o *Object) error {
	if _, ok := p.pooled[o]; ok {
		return fmt.Errorf("%w: %s", ErrDoubleRelease, o.class.name)
	}
	if p.capacity > 0 && p.free.Size() >= p.capacity {
		return nil
	}
	p.free.Push(o)
	p.pooled[o] = struct{}{}
	return nil
}

// Len returns the number of pooled instances.
func (p *PoolAllocator) Len() int { return p.free.Size() }

// Pool is the factory of PoolAllocator. A "capacity" allocator param
// overrides capacity.
func Pool(capacity int) AllocatorFactory {
	return func(c *Class, params map[string]any) (Allocator, error) {
		n := capacity
		if v, ok := params["capacity"]; ok {
			f, ok := uref.Float(v)
			if !ok || f < 0 {
				return nil, defErr(c.name, "invalid pool capacity %v", v)
			}
			n = int(f)
		}
		return NewPoolAllocator(n), nil
	}
}

// AllocStats counts the traffic of a CountingAllocator.
type AllocStats struct {
	Allocs   int
	Deallocs int
}

// Live returns the number of instances handed out and not released.
func (s AllocStats) Live() int { return s.Allocs - s.Deallocs }

// CountingAllocator counts the allocations passing to another allocator.
type CountingAllocator struct {
	next  Allocator
	stats AllocStats
}

// NewCountingAllocator wraps next.
func NewCountingAllocator(next Allocator) *CountingAllocator {
	return &CountingAllocator{next: next}
}

func (a *CountingAllocator) Alloc(c *Class, build func() (*Object, error)) (*Object, error) {
	o, err := a.next.Alloc(c, build)
	if err == nil {
		a.stats.Allocs++
	}
	return o, err
}

func (a *CountingAllocator) Dealloc(o *Object) error {
	err := a.next.Dealloc(o)
	if err == nil {
		a.stats.Deallocs++
	}
	return err
}

// Stats returns the counters.
func (a *CountingAllocator) Stats() AllocStats { return a.stats }

// Counting wraps the allocators of next with counters.
func Counting(next AllocatorFactory) AllocatorFactory {
	return func(c *Class, params map[string]any) (Allocator, error) {
		inner, err := next(c, params)
		if err != nil {
			return nil, err
		}
		return NewCountingAllocator(inner), nil
	}
}

// classAllocator drives an instance of an allocator class through its
// public "alloc" and "dealloc" methods.
type classAllocator struct {
	obj *Object
}

// ClassAllocator makes allocators out of instances of ac, a class defined
// with AllocatorClass. Its "alloc" method receives the class and the build
// function; its "dealloc" method receives the released instance.
func ClassAllocator(ac *Class) AllocatorFactory {
	return func(c *Class, params map[string]any) (Allocator, error) {
		if !ac.flags.Has(FlagAllocator) {
			return nil, defErr(c.name, "%q is not an allocator class", ac.name)
		}
		obj, err := ac.New(params)
		if err != nil {
			return nil, err
		}
		return &classAllocator{obj: obj}, nil
	}
}

func (a *classAllocator) Alloc(c *Class, build func() (*Object, error)) (*Object, error) {
	v, err := a.obj.Call("alloc", c, build)
	if err != nil {
		return nil, err
	}
	o, ok := v.(*Object)
	if !ok || o == nil {
		return nil, instErr(c.name, "allocator %q returned %T", a.obj.ClassName(), v)
	}
	return o, nil
}

func (a *classAllocator) Dealloc(o *Object) error {
	_, err := a.obj.Call("dealloc", o)
	return err
}
