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

// Package manifest declares classes in YAML or TOML documents.
//
// A manifest lists classes in definition order. Interfaces declare
// obligations; data classes declare fields whose values are taken from the
// constructor params. Static constants go to the static section.
//
//	classes:
//	  - name: shapes.Shape
//	    kind: interface
//	    getters: [area]
//	  - name: shapes.Square
//	    implements: [shapes.Shape]
//	    fields:
//	      - name: area
//	        type: number
//	        getter: [public]
//	        default: 1
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"dirpx.dev/dos"
)

var (
	// ErrUnknownFormat is returned when a manifest is neither TOML nor YAML.
	ErrUnknownFormat = errors.New("dos(manifest): unknown manifest format")
	// ErrInvalid is returned for manifest entries that cannot describe a class.
	ErrInvalid = errors.New("dos(manifest): invalid manifest")
)

// Format names a manifest encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// Manifest is a list of class declarations.
type Manifest struct {
	Classes []Class `yaml:"classes" toml:"classes"`
}

// Class declares one class.
type Class struct {
	Name            string         `yaml:"name" toml:"name"`
	Kind            string         `yaml:"kind" toml:"kind"`
	Extends         string         `yaml:"extends" toml:"extends"`
	Implements      []string       `yaml:"implements" toml:"implements"`
	UseRawParams    bool           `yaml:"use_raw_params" toml:"use_raw_params"`
	ManualSuperInit bool           `yaml:"manual_super_init" toml:"manual_super_init"`
	Allocator       string         `yaml:"allocator" toml:"allocator"`
	AllocatorParams map[string]any `yaml:"allocator_params" toml:"allocator_params"`
	Methods         []string       `yaml:"methods" toml:"methods"`
	Getters         []string       `yaml:"getters" toml:"getters"`
	Setters         []string       `yaml:"setters" toml:"setters"`
	Fields          []Field        `yaml:"fields" toml:"fields"`
	Constants       map[string]any `yaml:"constants" toml:"constants"`
}

// Field declares a field of a data class.
type Field struct {
	Name        string   `yaml:"name" toml:"name"`
	Scope       string   `yaml:"scope" toml:"scope"`
	Type        string   `yaml:"type" toml:"type"`
	Getter      []string `yaml:"getter" toml:"getter"`
	Setter      []string `yaml:"setter" toml:"setter"`
	Default     any      `yaml:"default" toml:"default"`
	Required    bool     `yaml:"required" toml:"required"`
	Raw         bool     `yaml:"raw" toml:"raw"`
	Const       bool     `yaml:"const" toml:"const"`
	Transient   bool     `yaml:"transient" toml:"transient"`
	Polymorphic bool     `yaml:"polymorphic" toml:"polymorphic"`
	AutoDispose bool     `yaml:"auto_dispose" toml:"auto_dispose"`
}

// Load reads a manifest file, picking the format from its extension.
func Load(path string) (*Manifest, error) {
	var f Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		f = TOML
	case ".yaml", ".yml":
		f = YAML
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dos(manifest): read %s: %w", path, err)
	}
	m, err := Parse(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest.
func Parse(data []byte, f Format) (*Manifest, error) {
	var m Manifest
	switch f {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("dos(manifest): decode yaml: %w", err)
		}
	case TOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&m)
		if err != nil {
			return nil, fmt.Errorf("dos(manifest): decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return &m, nil
}

// Define defines the classes of m on rt in order. A failing entry does not
// stop the following ones; the errors are joined.
func Define(rt *dos.Runtime, m *Manifest) ([]*dos.Class, error) {
	var (
		out  []*dos.Class
		errs []error
	)
	for i, spec := range m.Classes {
		c, err := defineClass(rt, spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("classes[%d] %s: %w", i, spec.Name, err))
			continue
		}
		out = append(out, c)
	}
	return out, errors.Join(errs...)
}

func defineClass(rt *dos.Runtime, spec Class) (*dos.Class, error) {
	kind := dos.KindClass
	if spec.Kind != "" {
		k, err := dos.ParseClassKind(spec.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	fields, err := resolveFields(rt, spec.Fields)
	if err != nil {
		return nil, err
	}

	raw := map[string]any{}
	if spec.Extends != "" {
		raw["extends"] = spec.Extends
	}
	if len(spec.Implements) > 0 {
		raw["implements"] = spec.Implements
	}
	if spec.UseRawParams {
		raw["useRawParams"] = true
	}
	if spec.ManualSuperInit {
		raw["manualSuperInit"] = true
	}
	if spec.Allocator != "" {
		raw["allocator"] = spec.Allocator
	}
	if spec.AllocatorParams != nil {
		raw["allocatorParams"] = spec.AllocatorParams
	}
	if kind != dos.KindStatic {
		raw["$"] = dos.BodyFunc(instanceBody(kind, spec, fields))
	}
	if len(spec.Constants) > 0 {
		raw["static"] = dos.BodyFunc(staticBody(spec.Constants))
	}

	d, err := dos.DescriptorFromMap(rt, spec.Name, raw)
	if err != nil {
		return nil, err
	}
	return rt.Define(kind, spec.Name, d)
}

// field is a Field with its type resolved.
type field struct {
	Field
	typ    dos.Type
	typed  bool
	scope  string
	getter []string
	setter []string
}

var tags = map[string]dos.Tag{
	"boolean": dos.TagBoolean,
	"number":  dos.TagNumber,
	"string":  dos.TagString,
	"array":   dos.TagArray,
	"object":  dos.TagObject,
	"date":    dos.TagDate,
}

func resolveFields(rt *dos.Runtime, specs []Field) ([]field, error) {
	out := make([]field, 0, len(specs))
	for _, fs := range specs {
		f := field{Field: fs, scope: strings.ToLower(fs.Scope)}
		if f.scope == "" {
			f.scope = "public"
		}
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field without a name", ErrInvalid)
		}
		for _, s := range slices.Concat([]string{f.scope}, fs.Getter, fs.Setter) {
			if !validScope(s) {
				return nil, fmt.Errorf("%w: field %q: unknown scope %q", ErrInvalid, f.Name, s)
			}
		}
		f.getter = lower(fs.Getter)
		f.setter = lower(fs.Setter)
		if fs.Type != "" {
			if tag, ok := tags[fs.Type]; ok {
				f.typ = dos.TypeOfTag(tag)
			} else {
				c, err := rt.Import(fs.Type)
				if err != nil {
					return nil, fmt.Errorf("%w: field %q: %w", ErrInvalid, f.Name, err)
				}
				f.typ = dos.ClassType(c)
			}
			f.typed = true
		}
		out = append(out, f)
	}
	return out, nil
}

func validScope(s string) bool {
	switch strings.ToLower(s) {
	case "public", "protected", "private":
		return true
	}
	return false
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func scopeOf(b *dos.Body, name string) *dos.Scope {
	switch name {
	case "protected":
		return b.Protected
	case "private":
		return b.Private
	}
	return b.Public
}

// instanceBody declares the obligations and fields of spec, and a
// constructor copying params into the fields.
func instanceBody(kind dos.ClassKind, spec Class, fields []field) func(b *dos.Body) {
	return func(b *dos.Body) {
		for _, name := range spec.Methods {
			_ = b.Public.Method(name, nil)
		}
		for _, name := range spec.Getters {
			_ = b.Public.Getter(name, nil)
		}
		for _, name := range spec.Setters {
			_ = b.Public.Setter(name, nil)
		}
		if kind == dos.KindInterface {
			return
		}

		for _, f := range fields {
			var opts []dos.FieldOption
			for _, s := range f.getter {
				opts = append(opts, dos.GetterOn(scopeOf(b, s)))
			}
			for _, s := range f.setter {
				opts = append(opts, dos.SetterOn(scopeOf(b, s)))
			}
			if f.typed {
				opts = append(opts, dos.Typed(f.typ))
			}
			if f.Raw {
				opts = append(opts, dos.Raw())
			}
			if f.Const {
				opts = append(opts, dos.ConstValue())
			}
			if f.Transient {
				opts = append(opts, dos.Transient())
			}
			if f.Polymorphic {
				opts = append(opts, dos.Polymorphic())
			}
			if f.AutoDispose {
				opts = append(opts, dos.AutoDispose())
			}
			_ = scopeOf(b, f.scope).Field(f.Name, opts...)
		}

		_ = b.Defaults(func(d map[string]any) {
			for _, f := range fields {
				if f.Default != nil {
					d[f.Name] = f.Default
				}
			}
		})
		if spec.UseRawParams {
			_ = b.InitRaw(func(p map[string]any) error {
				for _, f := range fields {
					v, ok := p[f.Name]
					if !ok || v == nil {
						if f.Required {
							return &dos.ParamError{Param: f.Name, Msg: f.Name + " is a required param"}
						}
						continue
					}
					if err := scopeOf(b, f.scope).Set(f.Name, v); err != nil {
						return err
					}
				}
				return nil
			})
			return
		}
		_ = b.Init(func(p *dos.Params) error {
			for _, f := range fields {
				v, err := param(p, f)
				if err != nil {
					return err
				}
				if v == nil {
					continue
				}
				if err := scopeOf(b, f.scope).Set(f.Name, v); err != nil {
					return err
				}
			}
			return nil
		})
	}
}

func param(p *dos.Params, f field) (any, error) {
	switch {
	case f.Required && f.typed:
		return p.GetType(f.Name, f.typ)
	case f.Required:
		return p.Get(f.Name)
	case f.typed:
		return p.GetOptionalType(f.Name, f.typ)
	}
	return p.GetOptional(f.Name)
}

func staticBody(constants map[string]any) func(b *dos.Body) {
	return func(b *dos.Body) {
		for _, k := range slices.Sorted(maps.Keys(constants)) {
			_ = b.Public.Const(k, constants[k])
		}
	}
}
