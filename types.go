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

package dos

import (
	"dirpx.dev/dos/config"
	uref "dirpx.dev/dos/utils/reflect"
)

// Tag is a primitive type tag.
type Tag string

// Type tags. TagInstance marks a Type whose Class is set.
const (
	TagUndefined    Tag = uref.TagUndefined
	TagBoolean      Tag = uref.TagBoolean
	TagNumber       Tag = uref.TagNumber
	TagString       Tag = uref.TagString
	TagArray        Tag = uref.TagArray
	TagObject       Tag = uref.TagObject
	TagFunction     Tag = uref.TagFunction
	TagError        Tag = uref.TagError
	TagDate         Tag = uref.TagDate
	TagRegExp       Tag = uref.TagRegExp
	TagInt8Array    Tag = uref.TagInt8Array
	TagUint8Array   Tag = uref.TagUint8Array
	TagInt16Array   Tag = uref.TagInt16Array
	TagUint16Array  Tag = uref.TagUint16Array
	TagInt32Array   Tag = uref.TagInt32Array
	TagUint32Array  Tag = uref.TagUint32Array
	TagFloat32Array Tag = uref.TagFloat32Array
	TagFloat64Array Tag = uref.TagFloat64Array
	TagInstance     Tag = "instance"
)

// Type is the type of a value: a primitive tag, or the class of a managed instance.
// Types are comparable with ==.
type Type struct {
	Tag   Tag
	Class *Class
}

// TypeOfTag returns the primitive Type for t.
func TypeOfTag(t Tag) Type {
	return Type{Tag: t}
}

// Undefined is the type of nil.
var Undefined = Type{Tag: TagUndefined}

// IsClass reports whether t is a managed class type.
func (t Type) IsClass() bool {
	return t.Class != nil
}

// String returns the class name for class types and the tag otherwise.
func (t Type) String() string {
	if t.Class != nil {
		return t.Class.Name()
	}
	return string(t.Tag)
}

// TypeOf classifies v. Instances are typed by their class, class references are functions.
func TypeOf(v any) Type {
	return typeOf(v, config.DefaultMaxUnwrap)
}

func typeOf(v any, maxUnwrap int) Type {
	switch x := v.(type) {
	case *Object:
		if x == nil {
			return Undefined
		}
		return Type{Tag: TagInstance, Class: x.class}
	case *Class:
		if x == nil {
			return Undefined
		}
		return Type{Tag: TagFunction}
	case Method, Getter, Setter:
		return Type{Tag: TagFunction}
	}
	return Type{Tag: Tag(uref.Tag(v, maxUnwrap))}
}
