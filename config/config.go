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

package config

import (
	"dirpx.dev/dos/apis"
)

const (
	// DefaultTypesafe represents the default for Typesafe.
	// Wrapped fields reject incompatible class assignments unless told otherwise.
	DefaultTypesafe = true
	// DefaultPoolCapacity represents the default for PoolCapacity.
	// Zero keeps every released instance.
	DefaultPoolCapacity = 0
	// DefaultCountAllocations represents the default for CountAllocations.
	DefaultCountAllocations = false
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
	// DefaultLogLevel represents the default for LogLevel.
	DefaultLogLevel = "info"
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxUnwrap < 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	if cfg.PoolCapacity < 0 {
		cfg.PoolCapacity = DefaultPoolCapacity
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Typesafe:         DefaultTypesafe,
		PoolCapacity:     DefaultPoolCapacity,
		CountAllocations: DefaultCountAllocations,
		MaxUnwrap:        DefaultMaxUnwrap,
		LogLevel:         DefaultLogLevel,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithTypesafe sets the Typesafe option.
func WithTypesafe(typesafe bool) Option {
	return func(c *apis.Config) {
		c.Typesafe = typesafe
	}
}

// WithPoolCapacity sets the PoolCapacity option.
// A negative value resets to the default.
func WithPoolCapacity(n int) Option {
	return func(c *apis.Config) {
		if n < 0 {
			c.PoolCapacity = DefaultPoolCapacity
			return
		}
		c.PoolCapacity = n
	}
}

// WithCountAllocations sets the CountAllocations option.
func WithCountAllocations(count bool) Option {
	return func(c *apis.Config) {
		c.CountAllocations = count
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A negative value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max < 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}

// WithLogLevel sets the LogLevel option.
func WithLogLevel(level string) Option {
	return func(c *apis.Config) {
		c.LogLevel = level
	}
}
