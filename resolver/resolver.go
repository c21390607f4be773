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

// Package resolver chains naming strategies into an apis.Resolver.
package resolver

import (
	"dirpx.dev/dos/apis"
)

// Chain tries its strategies in order. The first one that handles a value
// names it.
type Chain []apis.Strategy

var _ apis.Resolver = Chain(nil)

// New returns a Chain of the non-nil strategies.
func New(strategies ...apis.Strategy) Chain {
	c := make(Chain, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			c = append(c, s)
		}
	}
	return c
}

// Resolve returns the name given by the first handling strategy, or "".
func (c Chain) Resolve(v any, cfg apis.Config) string {
	for _, s := range c {
		if name, ok := s.Name(v, cfg); ok {
			return name
		}
	}
	return ""
}
