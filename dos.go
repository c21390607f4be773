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
	"sync"
	"sync/atomic"
)

// init installs the process-wide default runtime.
func init() {
	rt, err := NewRuntime()
	if err != nil {
		panic(err)
	}
	cur.Store(rt)
}

var (
	// cur is the default runtime used by the package-level helpers.
	cur atomic.Pointer[Runtime]
	// buildMu serializes replacements of the default runtime.
	buildMu sync.Mutex
)

// Default returns the process-wide default runtime.
func Default() *Runtime {
	return cur.Load()
}

// SetDefault installs rt as the default runtime and returns the previous
// one. A nil rt leaves the default unchanged.
func SetDefault(rt *Runtime) *Runtime {
	if rt == nil {
		return cur.Load()
	}
	buildMu.Lock()
	defer buildMu.Unlock()
	return cur.Swap(rt)
}

// Reset replaces the default runtime with a fresh one built from opts. The
// statics of the previous runtime are disposed first.
func Reset(opts ...Option) error {
	buildMu.Lock()
	defer buildMu.Unlock()

	rt, err := NewRuntime(opts...)
	if err != nil {
		return err
	}
	old := cur.Swap(rt)
	return old.Deinit()
}

// Define defines a class of the given kind in the default runtime.
func Define(kind ClassKind, name string, d Descriptor) (*Class, error) {
	return cur.Load().Define(kind, name, d)
}

// Import resolves a class path in the default runtime.
func Import(path string) (*Class, error) {
	return cur.Load().Import(path)
}

// Lookup returns a class of the default runtime by canonical name.
func Lookup(name string) (*Class, bool) {
	return cur.Load().Lookup(name)
}

// TypeName names v with the resolver of the default runtime.
func TypeName(v any) string {
	return cur.Load().TypeName(v)
}

// Throw returns an exception of the default runtime as an error.
func Throw(c *Class, what string) error {
	return cur.Load().Throw(c, what)
}

// Deinit disposes the statics of the default runtime.
func Deinit() error {
	return cur.Load().Deinit()
}
