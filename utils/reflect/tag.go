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

package reflect

import (
	"reflect"
	"regexp"
	"time"

	"dirpx.dev/dos/config"
)

// Primitive type tags. Values of managed classes are tagged by their class instead.
const (
	TagUndefined    = "undefined"
	TagBoolean      = "boolean"
	TagNumber       = "number"
	TagString       = "string"
	TagArray        = "array"
	TagObject       = "object"
	TagFunction     = "function"
	TagError        = "Error"
	TagDate         = "Date"
	TagRegExp       = "RegExp"
	TagInt8Array    = "Int8Array"
	TagUint8Array   = "Uint8Array"
	TagInt16Array   = "Int16Array"
	TagUint16Array  = "Uint16Array"
	TagInt32Array   = "Int32Array"
	TagUint32Array  = "Uint32Array"
	TagFloat32Array = "Float32Array"
	TagFloat64Array = "Float64Array"
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	regexpType = reflect.TypeOf(regexp.Regexp{})
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// typedArrays maps slice element kinds onto typed array tags.
var typedArrays = map[reflect.Kind]string{
	reflect.Int8:    TagInt8Array,
	reflect.Uint8:   TagUint8Array,
	reflect.Int16:   TagInt16Array,
	reflect.Uint16:  TagUint16Array,
	reflect.Int32:   TagInt32Array,
	reflect.Uint32:  TagUint32Array,
	reflect.Float32: TagFloat32Array,
	reflect.Float64: TagFloat64Array,
}

// Tag classifies v into a primitive type tag.
// Pointers are followed up to maxUnwrap levels; a nil value is undefined.
func Tag(v any, maxUnwrap int) string {
	if v == nil {
		return TagUndefined
	}
	if maxUnwrap <= 0 {
		maxUnwrap = config.DefaultMaxUnwrap
	}
	rv := reflect.ValueOf(v)
	if rv.Type().Implements(errorType) {
		return TagError
	}
	for i := 0; rv.Kind() == reflect.Ptr && i < maxUnwrap; i++ {
		if rv.IsNil() {
			return TagUndefined
		}
		rv = rv.Elem()
	}
	return tagOf(rv)
}

func tagOf(rv reflect.Value) string {
	switch rv.Type() {
	case timeType:
		return TagDate
	case regexpType:
		return TagRegExp
	}
	switch rv.Kind() {
	case reflect.Bool:
		return TagBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return TagNumber
	case reflect.String:
		return TagString
	case reflect.Slice, reflect.Array:
		if tag, ok := typedArrays[rv.Type().Elem().Kind()]; ok && rv.Type().Elem().PkgPath() == "" {
			return tag
		}
		return TagArray
	case reflect.Func:
		return TagFunction
	case reflect.Interface:
		if rv.IsNil() {
			return TagUndefined
		}
		return tagOf(rv.Elem())
	default:
		return TagObject
	}
}

// Identical reports strict identity: == for comparable values, reference
// identity for maps, slices and funcs. Values of different dynamic types are never identical.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// Float converts any numeric value to float64.
func Float(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// Elems returns the elements of a slice or array value.
func Elems(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
