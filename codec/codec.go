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

// Package codec encodes instances as msgpack documents and restores them.
//
// A document carries the class name and the per-level field values of
// Object.Snapshot. Managed instances held by fields are nested as
// {"$object": document}, class references as {"$class": name}. Decoding
// looks classes up in a runtime and rebuilds instances with Class.Restore,
// so no constructor runs.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"

	"dirpx.dev/dos"
)

// schemaVersion is bumped whenever the document layout changes.
const schemaVersion uint16 = 1

const (
	objectKey = "$object"
	classKey  = "$class"
)

var (
	// ErrCycle is returned when an instance reaches itself through its fields.
	ErrCycle = errors.New("dos(codec): reference cycle")
	// ErrUnknownClass is returned when a document names a class the runtime does not know.
	ErrUnknownClass = errors.New("dos(codec): unknown class")
	// ErrSchema is returned for documents of another schema version.
	ErrSchema = errors.New("dos(codec): unsupported schema")
	// ErrUnsupported is returned for field values that cannot be encoded.
	ErrUnsupported = errors.New("dos(codec): unsupported value")
)

// Document is the encoded form of one instance.
type Document struct {
	Schema uint16           `msgpack:"schema"`
	Class  string           `msgpack:"class"`
	Levels []dos.LevelState `msgpack:"levels"`
}

// Encoder writes documents to a stream.
type Encoder struct {
	enc *msgpack.Encoder
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return &Encoder{enc: enc}
}

// Encode writes the document of o.
func (e *Encoder) Encode(o *dos.Object) error {
	doc, err := document(o, make(map[*dos.Object]bool))
	if err != nil {
		return err
	}
	return e.enc.Encode(doc)
}

// Decoder reads documents from a stream and restores them in a runtime.
type Decoder struct {
	dec *msgpack.Decoder
	rt  *dos.Runtime
}

// NewDecoder returns a decoder reading from r and resolving classes in rt.
func NewDecoder(r io.Reader, rt *dos.Runtime) *Decoder {
	return &Decoder{dec: newMsgpackDecoder(r), rt: rt}
}

// Decode reads the next document and restores its instance.
func (d *Decoder) Decode() (*dos.Object, error) {
	var doc Document
	if err := d.dec.Decode(&doc); err != nil {
		return nil, err
	}
	return restore(d.rt, doc)
}

// Marshal returns the encoded document of o.
func Marshal(o *dos.Object) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal restores an instance from data.
func Unmarshal(rt *dos.Runtime, data []byte) (*dos.Object, error) {
	return NewDecoder(bytes.NewReader(data), rt).Decode()
}

func newMsgpackDecoder(r io.Reader) *msgpack.Decoder {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)
	return dec
}

// document snapshots o, replacing nested instances by their documents.
// visiting holds the instances on the current path.
func document(o *dos.Object, visiting map[*dos.Object]bool) (Document, error) {
	if visiting[o] {
		return Document{}, fmt.Errorf("%w: %s", ErrCycle, o.ClassName())
	}
	visiting[o] = true
	defer delete(visiting, o)

	levels, err := o.Snapshot()
	if err != nil {
		return Document{}, err
	}
	for _, l := range levels {
		for vis, fields := range l.Fields {
			enc := make(map[string]any, len(fields))
			for name, v := range fields {
				ev, err := encodeValue(v, visiting)
				if err != nil {
					return Document{}, fmt.Errorf("%s.%s.%s: %w", l.Class, vis, name, err)
				}
				enc[name] = ev
			}
			l.Fields[vis] = enc
		}
	}
	return Document{Schema: schemaVersion, Class: o.ClassName(), Levels: levels}, nil
}

func encodeValue(v any, visiting map[*dos.Object]bool) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case *dos.Object:
		if x == nil {
			return nil, nil
		}
		doc, err := document(x, visiting)
		if err != nil {
			return nil, err
		}
		return map[string]any{objectKey: doc}, nil
	case *dos.Class:
		if x == nil {
			return nil, nil
		}
		return map[string]any{classKey: x.Name()}, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			ev, err := encodeValue(e, visiting)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			ev, err := encodeValue(e, visiting)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
	return v, nil
}

// restore rebuilds the instance of doc, nested instances first.
func restore(rt *dos.Runtime, doc Document) (*dos.Object, error) {
	if doc.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: version %d", ErrSchema, doc.Schema)
	}
	c, ok := rt.Lookup(doc.Class)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, doc.Class)
	}
	for _, l := range doc.Levels {
		for vis, fields := range l.Fields {
			for name, v := range fields {
				dv, err := decodeValue(rt, v)
				if err != nil {
					return nil, fmt.Errorf("%s.%s.%s: %w", l.Class, vis, name, err)
				}
				fields[name] = dv
			}
		}
	}
	return c.Restore(doc.Levels)
}

func decodeValue(rt *dos.Runtime, v any) (any, error) {
	switch x := v.(type) {
	case []any:
		for i, e := range x {
			dv, err := decodeValue(rt, e)
			if err != nil {
				return nil, err
			}
			x[i] = dv
		}
		return x, nil
	case map[string]any:
		if len(x) == 1 {
			if inner, ok := x[objectKey]; ok {
				doc, err := nestedDocument(inner)
				if err != nil {
					return nil, err
				}
				return restore(rt, doc)
			}
			if name, ok := x[classKey].(string); ok {
				c, found := rt.Lookup(name)
				if !found {
					return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
				}
				return c, nil
			}
		}
		for k, e := range x {
			dv, err := decodeValue(rt, e)
			if err != nil {
				return nil, err
			}
			x[k] = dv
		}
		return x, nil
	}
	return v, nil
}

// nestedDocument turns a loosely decoded nested document back into a Document.
func nestedDocument(v any) (Document, error) {
	var doc Document
	b, err := msgpack.Marshal(v)
	if err != nil {
		return doc, err
	}
	err = newMsgpackDecoder(bytes.NewReader(b)).Decode(&doc)
	return doc, err
}
