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

package apis

// Namer is implemented by values that know their own canonical name.
// Classes and objects implement it.
type Namer interface {
	// EntityName returns the canonical dotted name, e.g. "shapes.Circle".
	EntityName() string
}

// Strategy names one family of values for diagnostics. It reports false to
// pass the value on to the next strategy.
type Strategy interface {
	Name(v any, cfg Config) (string, bool)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(v any, cfg Config) (string, bool)

// Name calls f.
func (f StrategyFunc) Name(v any, cfg Config) (string, bool) { return f(v, cfg) }

// Resolver names any value: classes and instances by class name, declared
// Go types as "pkg.Type", everything else by type tag.
type Resolver interface {
	Resolve(v any, cfg Config) string
}
