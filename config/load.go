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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"dirpx.dev/dos/apis"
)

var (
	// ErrUnknownFormat is returned when a config file extension is neither TOML nor YAML.
	ErrUnknownFormat = errors.New("dos(config): unknown config file format")
	// ErrUnknownLogLevel is returned for a log level slog does not know.
	ErrUnknownLogLevel = errors.New("dos(config): unknown log level")
)

// File is the on-disk shape of a runtime configuration.
// Absent keys keep their defaults.
type File struct {
	Typesafe         *bool   `toml:"typesafe" yaml:"typesafe"`
	PoolCapacity     *int    `toml:"pool_capacity" yaml:"pool_capacity"`
	CountAllocations *bool   `toml:"count_allocations" yaml:"count_allocations"`
	MaxUnwrap        *int    `toml:"max_unwrap" yaml:"max_unwrap"`
	LogLevel         *string `toml:"log_level" yaml:"log_level"`
}

// Options converts the present keys of f into functional options.
func (f File) Options() []Option {
	var opts []Option
	if f.Typesafe != nil {
		opts = append(opts, WithTypesafe(*f.Typesafe))
	}
	if f.PoolCapacity != nil {
		opts = append(opts, WithPoolCapacity(*f.PoolCapacity))
	}
	if f.CountAllocations != nil {
		opts = append(opts, WithCountAllocations(*f.CountAllocations))
	}
	if f.MaxUnwrap != nil {
		opts = append(opts, WithMaxUnwrap(*f.MaxUnwrap))
	}
	if f.LogLevel != nil {
		opts = append(opts, WithLogLevel(*f.LogLevel))
	}
	return opts
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) config file.
// Extra options are applied after the file.
func Load(path string, extra ...Option) (apis.Config, error) {
	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return apis.Config{}, fmt.Errorf("dos(config): decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return apis.Config{}, fmt.Errorf("dos(config): read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return apis.Config{}, fmt.Errorf("dos(config): decode %s: %w", path, err)
		}
	default:
		return apis.Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
	cfg := NewConfig(append(f.Options(), extra...)...)
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return apis.Config{}, err
	}
	return cfg, nil
}

// ParseLevel maps a LogLevel string onto a slog.Level. An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLogLevel, s)
	}
	return l, nil
}
