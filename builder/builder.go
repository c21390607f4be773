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

package builder

import (
	"slices"

	"dirpx.dev/dos/apis"
	"dirpx.dev/dos/registry"
	"dirpx.dev/dos/resolver"
	"dirpx.dev/dos/strategy"
)

// New creates an apis.Builder. Extra strategies name values before the
// built-in ones, so applications can name their own Go types.
func New(extra ...apis.Strategy) apis.Builder {
	return &builder{extra: extra}
}

type builder struct {
	extra []apis.Strategy
}

// BuildRegistry builds a new class registry. Classes of prev, if any, are
// re-registered in their original definition order.
func (b *builder) BuildRegistry(cfg apis.Config, prev apis.Registry) apis.Registry {
	nreg := registry.New(cfg)
	if prev != nil {
		for _, c := range prev.Entries() {
			_ = nreg.Register(c)
		}
	}
	return nreg
}

// BuildResolver builds the naming chain used in diagnostics: the extra
// strategies, then classes and objects, declared Go types and type tags.
func (b *builder) BuildResolver(_ apis.Config, _ apis.Registry) apis.Resolver {
	chain := slices.Concat(b.extra, []apis.Strategy{
		strategy.Entities(),
		strategy.Declared(),
		strategy.Tags(),
	})
	return resolver.New(chain...)
}
