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

// Config carries read-only runtime knobs.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Typesafe is the default typesafe flag of wrapped fields that do not set one.
	Typesafe bool

	// PoolCapacity bounds the free list of each pooling allocator.
	// Zero means unbounded.
	PoolCapacity int

	// CountAllocations wraps default allocators with allocation counters.
	CountAllocations bool

	// MaxUnwrap limits pointer unwrapping when classifying values into type tags
	// and when naming types in diagnostics.
	MaxUnwrap int

	// LogLevel is the minimum level of runtime log records ("debug", "info", "warn", "error").
	LogLevel string
}
