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

// Package demo defines a small set of classes used by the dos command and
// its tests.
package demo

import (
	"errors"
	"fmt"
	"math"

	"dirpx.dev/dos"
	uref "dirpx.dev/dos/utils/reflect"
)

// Class paths defined by Define.
const (
	FirstClass = "module.path.MyFirstDOSClass"
	Shape      = "demo.shapes.Shape"
	Polygon    = "demo.shapes.Polygon"
	Square     = "demo.shapes.Square"
	Circle     = "demo.shapes.Circle"
	Shapes     = "demo.shapes.Shapes"
)

// Define defines the demo classes on rt, bases first.
func Define(rt *dos.Runtime) ([]*dos.Class, error) {
	steps := []struct {
		kind dos.ClassKind
		name string
		desc func() (dos.Descriptor, error)
	}{
		{dos.KindClass, FirstClass, plain(firstBody)},
		{dos.KindInterface, Shape, plain(shapeBody)},
		{dos.KindAbstract, Polygon, func() (dos.Descriptor, error) {
			return dos.DescriptorFromMap(rt, Polygon, map[string]any{
				"implements": []string{Shape},
				"$":          dos.BodyFunc(polygonBody),
			})
		}},
		{dos.KindClass, Square, func() (dos.Descriptor, error) {
			return dos.DescriptorFromMap(rt, Square, map[string]any{
				"extends": Polygon,
				"$":       dos.BodyFunc(squareBody),
			})
		}},
		{dos.KindClass, Circle, func() (dos.Descriptor, error) {
			return dos.DescriptorFromMap(rt, Circle, map[string]any{
				"implements": []string{Shape},
				"$":          dos.BodyFunc(circleBody),
				"static":     dos.BodyFunc(circleStatic),
			})
		}},
		{dos.KindStatic, Shapes, func() (dos.Descriptor, error) {
			return dos.Descriptor{Static: shapesStatic(rt)}, nil
		}},
	}
	out := make([]*dos.Class, 0, len(steps))
	for _, s := range steps {
		d, err := s.desc()
		if err != nil {
			return out, err
		}
		c, err := rt.Define(s.kind, s.name, d)
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

func plain(body dos.BodyFunc) func() (dos.Descriptor, error) {
	return func() (dos.Descriptor, error) { return dos.Descriptor{Body: body}, nil }
}

func firstBody(b *dos.Body) {
	_ = b.Private.Field("myMember")
	_ = b.Init(func(p *dos.Params) error {
		v, err := p.Get("myMember")
		if err != nil {
			return err
		}
		return b.Private.Set("myMember", v)
	})
	_ = b.Dispose(func() error { return nil })
	_ = b.Public.Method("myMethod", func(...any) (any, error) {
		return b.Private.Get("myMember")
	})
}

func shapeBody(b *dos.Body) {
	_ = b.Public.Method("area", nil)
	_ = b.Public.Getter("name", nil)
}

func polygonBody(b *dos.Body) {
	_ = b.Private.Field("sides", dos.GetterOn(b.Public))
	_ = b.Init(func(p *dos.Params) error {
		n, err := p.GetType("sides", dos.TypeOfTag(dos.TagNumber), dos.GreaterOrEqual(3))
		if err != nil {
			return err
		}
		return b.Private.Set("sides", n)
	})
	_ = b.Public.Getter("name", func() any {
		n, _ := b.Private.Get("sides")
		return fmt.Sprintf("%s(%v)", b.Self().SimpleClassName(), n)
	})
}

func squareBody(b *dos.Body) {
	_ = b.Private.Field("side", dos.Typed(dos.TypeOfTag(dos.TagNumber)), dos.GetterOn(b.Public), dos.SetterOn(b.Public))
	_ = b.Defaults(func(d map[string]any) {
		d["sides"] = 4
		d["side"] = 1
	})
	_ = b.Init(func(p *dos.Params) error {
		v, err := p.GetType("side", dos.TypeOfTag(dos.TagNumber), dos.Greater(0))
		if err != nil {
			return err
		}
		return b.Private.Set("side", v)
	})
	_ = b.Public.Method("area", func(...any) (any, error) {
		side, err := number(b.Private, "side")
		if err != nil {
			return nil, err
		}
		return side * side, nil
	})
}

func circleBody(b *dos.Body) {
	_ = b.Private.Field("radius", dos.GetterOn(b.Public))
	_ = b.Defaults(func(d map[string]any) { d["radius"] = 1 })
	_ = b.Init(func(p *dos.Params) error {
		v, err := p.GetType("radius", dos.TypeOfTag(dos.TagNumber), dos.GreaterOrEqual(0))
		if err != nil {
			return err
		}
		return b.Private.Set("radius", v)
	})
	_ = b.Public.Getter("name", func() any { return "Circle" })
	_ = b.Public.Method("area", func(...any) (any, error) {
		r, err := number(b.Private, "radius")
		if err != nil {
			return nil, err
		}
		pi, err := number(b.Static, "PI")
		if err != nil {
			return nil, err
		}
		return pi * r * r, nil
	})
}

func circleStatic(b *dos.Body) {
	_ = b.Public.Const("PI", math.Pi)
	if unit, err := b.Static.Class().New(map[string]any{"radius": 1}); err == nil {
		_ = b.Public.Const("UNIT", unit)
	}
}

// shapesStatic builds shapes by kind name.
func shapesStatic(rt *dos.Runtime) dos.BodyFunc {
	return func(b *dos.Body) {
		_ = b.Private.Field("built", dos.Raw())
		_ = b.StaticInit(func() error { return b.Private.Set("built", 0) })
		_ = b.Public.Getter("built", func() any {
			v, _ := b.Private.Get("built")
			return v
		})
		_ = b.Public.Method("make", func(args ...any) (any, error) {
			if len(args) != 2 {
				return nil, errors.New("make takes a kind and a size")
			}
			var (
				path  string
				param string
			)
			switch args[0] {
			case "square":
				path, param = Square, "side"
			case "circle":
				path, param = Circle, "radius"
			default:
				return nil, rt.ThrowParam("kind", fmt.Sprintf("unknown shape kind %v", args[0]))
			}
			c, err := rt.Import(path)
			if err != nil {
				return nil, err
			}
			o, err := c.New(map[string]any{param: args[1]})
			if err != nil {
				return nil, err
			}
			n, _ := b.Private.Get("built")
			return o, b.Private.Set("built", n.(int)+1)
		})
	}
}

type getter interface {
	Get(name string) (any, error)
}

func number(s getter, name string) (float64, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	f, ok := uref.Float(v)
	if !ok {
		return 0, fmt.Errorf("%s is not a number: %v", name, v)
	}
	return f, nil
}
