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

package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dirpx.dev/dos"
	"dirpx.dev/dos/manifest"
)

const shapesYAML = `
classes:
  - name: shapes.Shape
    kind: interface
    getters: [area]
  - name: shapes.Square
    implements: [shapes.Shape]
    fields:
      - name: side
        scope: private
        type: number
        getter: [public]
        setter: [public]
        default: 2
      - name: area
        type: number
        raw: true
        const: true
        required: true
    constants:
      SIDES: 4
`

const shapesTOML = `
[[classes]]
name = "shapes.Shape"
kind = "interface"
getters = ["area"]

[[classes]]
name = "shapes.Square"
implements = ["shapes.Shape"]
constants = { SIDES = 4 }

[[classes.fields]]
name = "side"
scope = "private"
type = "number"
getter = ["public"]
setter = ["public"]
default = 2

[[classes.fields]]
name = "area"
type = "number"
raw = true
const = true
required = true
`

func newRuntime(t *testing.T) *dos.Runtime {
	t.Helper()
	rt, err := dos.NewRuntime()
	if err != nil {
		t.Fatalf("NewRuntime: got (%v), want (nil)", err)
	}
	return rt
}

func TestDefineShapes(t *testing.T) {
	tests := []struct {
		name   string
		format manifest.Format
		doc    string
		sides  any
	}{
		{"yaml", manifest.YAML, shapesYAML, 4},
		{"toml", manifest.TOML, shapesTOML, int64(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := manifest.Parse([]byte(tt.doc), tt.format)
			if err != nil {
				t.Fatalf("Parse: got (%v), want (nil)", err)
			}
			rt := newRuntime(t)
			classes, err := manifest.Define(rt, m)
			if err != nil {
				t.Fatalf("Define: got (%v), want (nil)", err)
			}
			if len(classes) != 2 {
				t.Fatalf("Define: got (%d classes), want (2)", len(classes))
			}
			shape, square := classes[0], classes[1]
			if !shape.IsInterface() || !square.Implements(shape) {
				t.Fatalf("kinds: got (interface=%v implements=%v), want (true true)", shape.IsInterface(), square.Implements(shape))
			}
			if v, err := square.Get("SIDES"); err != nil || v != tt.sides {
				t.Fatalf("SIDES: got (%v, %v), want (%v, nil)", v, err, tt.sides)
			}

			o, err := square.New(map[string]any{"area": 4})
			if err != nil {
				t.Fatalf("New: got (%v), want (nil)", err)
			}
			if v, err := o.Get("side"); err != nil || v != 2 && v != int64(2) {
				t.Fatalf("side: got (%v, %v), want (2, nil)", v, err)
			}
			if err := o.Set("side", 3); err != nil {
				t.Fatalf("Set(side): got (%v), want (nil)", err)
			}
			if _, err := square.New(map[string]any{"area": 4, "side": "wide"}); !errors.Is(err, dos.ErrParam) {
				t.Fatalf("New(side string): got (%v), want (%v)", err, dos.ErrParam)
			}
			if err := o.Set("area", 9); !errors.Is(err, dos.ErrReadOnly) {
				t.Fatalf("Set(area): got (%v), want (%v)", err, dos.ErrReadOnly)
			}

			_, err = square.New(nil)
			var pe *dos.ParamError
			if !errors.As(err, &pe) || pe.Param != "area" {
				t.Fatalf("New without area: got (%v), want (ParamError area)", err)
			}
		})
	}
}

func TestRawParamsClass(t *testing.T) {
	doc := `
classes:
  - name: raw.Point
    use_raw_params: true
    fields:
      - name: x
        default: 1
      - name: "y"
        required: true
`
	m, err := manifest.Parse([]byte(doc), manifest.YAML)
	if err != nil {
		t.Fatalf("Parse: got (%v), want (nil)", err)
	}
	rt := newRuntime(t)
	classes, err := manifest.Define(rt, m)
	if err != nil {
		t.Fatalf("Define: got (%v), want (nil)", err)
	}
	o, err := classes[0].New(map[string]any{"y": 5})
	if err != nil {
		t.Fatalf("New: got (%v), want (nil)", err)
	}
	if x, _ := o.Get("x"); x != 1 {
		t.Fatalf("x: got (%v), want (1)", x)
	}
	if _, err := classes[0].New(nil); !errors.Is(err, dos.ErrParam) {
		t.Fatalf("New without y: got (%v), want (%v)", err, dos.ErrParam)
	}
}

func TestDefineCollectsErrors(t *testing.T) {
	doc := `
classes:
  - name: bad.Missing
    extends: bad.Nowhere
  - name: bad.Scope
    fields:
      - name: a
        scope: global
  - name: bad.Kind
    kind: trait
  - name: good.One
    fields:
      - name: a
`
	m, err := manifest.Parse([]byte(doc), manifest.YAML)
	if err != nil {
		t.Fatalf("Parse: got (%v), want (nil)", err)
	}
	rt := newRuntime(t)
	classes, err := manifest.Define(rt, m)
	if len(classes) != 1 || classes[0].Name() != "good.One" {
		t.Fatalf("Define: got (%v), want ([good.One])", classes)
	}
	for _, want := range []error{dos.ErrDefinition, manifest.ErrInvalid} {
		if !errors.Is(err, want) {
			t.Fatalf("Define: got (%v), want (%v)", err, want)
		}
	}
	if _, ok := rt.Lookup("bad.Missing"); ok {
		t.Fatalf("Lookup(bad.Missing): got (true), want (false)")
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name   string
		format manifest.Format
		doc    string
	}{
		{"yaml", manifest.YAML, "classes:\n  - name: a.B\n    colour: red\n"},
		{"toml", manifest.TOML, "[[classes]]\nname = \"a.B\"\ncolour = \"red\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manifest.Parse([]byte(tt.doc), tt.format); err == nil {
				t.Fatalf("Parse: got (nil), want (error)")
			}
		})
	}
	if _, err := manifest.Parse(nil, "json"); !errors.Is(err, manifest.ErrUnknownFormat) {
		t.Fatalf("Parse(json): got (%v), want (%v)", err, manifest.ErrUnknownFormat)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	for name, doc := range map[string]string{"shapes.yml": shapesYAML, "shapes.toml": shapesTOML} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("WriteFile: got (%v), want (nil)", err)
		}
		m, err := manifest.Load(path)
		if err != nil {
			t.Fatalf("Load(%s): got (%v), want (nil)", name, err)
		}
		if len(m.Classes) != 2 || m.Classes[1].Name != "shapes.Square" || len(m.Classes[1].Fields) != 2 {
			t.Fatalf("Load(%s): got (%+v), want (2 classes)", name, m.Classes)
		}
	}
	if _, err := manifest.Load(filepath.Join(dir, "shapes.ini")); !errors.Is(err, manifest.ErrUnknownFormat) {
		t.Fatalf("Load(ini): got (%v), want (%v)", err, manifest.ErrUnknownFormat)
	}
}
