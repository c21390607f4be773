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

// Package strategy holds the naming steps used for type names in
// diagnostics. Each step is an apis.StrategyFunc; resolver chains them.
package strategy

import (
	"path"
	"reflect"
	"strings"
	"sync"

	"dirpx.dev/dos/apis"
	"dirpx.dev/dos/config"
	uref "dirpx.dev/dos/utils/reflect"
)

// Entities names classes and objects by their canonical name. Typed nil
// pointers and empty names fall through.
func Entities() apis.Strategy {
	return apis.StrategyFunc(func(v any, _ apis.Config) (string, bool) {
		n, ok := v.(apis.Namer)
		if !ok || isNilPointer(v) {
			return "", false
		}
		name := n.EntityName()
		return name, name != ""
	})
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Declared names values whose type, after unwrapping containers, is a type
// declared in a package, as "pkg.Type". Builtin and unnamed types fall through.
func Declared() apis.Strategy {
	return apis.StrategyFunc(func(v any, cfg apis.Config) (string, bool) {
		if v == nil {
			return "", false
		}
		name := declaredName(reflect.TypeOf(v), cfg.MaxUnwrap)
		return name, name != ""
	})
}

// Tags names any value by its type tag ("number", "array", "object", ...).
// It handles everything, so it goes last.
func Tags() apis.Strategy {
	return apis.StrategyFunc(func(v any, cfg apis.Config) (string, bool) {
		return uref.Tag(v, cfg.MaxUnwrap), true
	})
}

type nameKey struct {
	t         reflect.Type
	maxUnwrap int
}

// declaredNames memoizes declaredName; "" marks types that fall through.
var declaredNames sync.Map

func declaredName(t reflect.Type, maxUnwrap int) string {
	if maxUnwrap <= 0 {
		maxUnwrap = config.DefaultMaxUnwrap
	}
	key := nameKey{t: t, maxUnwrap: maxUnwrap}
	if v, ok := declaredNames.Load(key); ok {
		return v.(string)
	}
	name := ""
	if base := declaredType(t, maxUnwrap); base != nil && base.PkgPath() != "" {
		name = path.Base(base.PkgPath()) + "." + stripTypeArgs(base.Name())
	}
	declaredNames.Store(key, name)
	return name
}

// declaredType unwraps pointers, slices, arrays and channels, and the
// element of maps, at most maxUnwrap times. It returns the first named type
// it reaches, or nil.
func declaredType(t reflect.Type, maxUnwrap int) reflect.Type {
	for range maxUnwrap {
		if t.Name() != "" {
			return t
		}
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Chan, reflect.Map:
			t = t.Elem()
		default:
			return nil
		}
	}
	if t.Name() != "" {
		return t
	}
	return nil
}

// stripTypeArgs turns "T[int,string]" into "T".
func stripTypeArgs(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}
