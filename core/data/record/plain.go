// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package record

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"reflect"
	"time"
)

// Named is implemented by values that present themselves as a type name and
// an ordered set of named fields.
type Named interface {
	RecordType() string
	RecordFields() (names []string, values []interface{})
}

// RefKey is the key of the marker that replaces a value already being
// converted further up the graph.
const RefKey = "$ref"

// TypeKey is the key holding the type name of a Named value.
const TypeKey = "$type"

// Plain converts v into a tree of maps, slices and scalars that any of the
// record formats can encode. Pointers back to a value that encloses them are
// replaced by a map holding RefKey and the path of that value.
func Plain(v interface{}) interface{} {
	p := plainer{onPath: map[uintptr]string{}}
	return p.convert(reflect.ValueOf(v), "$")
}

type plainer struct {
	onPath map[uintptr]string
}

var (
	tTime          = reflect.TypeOf(time.Time{})
	tBytes         = reflect.TypeOf([]byte{})
	tNamed         = reflect.TypeOf((*Named)(nil)).Elem()
	tTextMarshaler = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	tStringer      = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
)

func (p *plainer) convert(v reflect.Value, path string) interface{} {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return p.convert(v.Elem(), path)
	case reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		if at, ok := p.onPath[v.Pointer()]; ok {
			return map[string]interface{}{RefKey: at}
		}
		p.onPath[v.Pointer()] = path
		defer delete(p.onPath, v.Pointer())
	}

	t := v.Type()
	switch {
	case t == tTime:
		return v.Interface().(time.Time).Format(time.RFC3339Nano)
	case t == tBytes:
		return base64.StdEncoding.EncodeToString(v.Bytes())
	case t.Implements(tNamed):
		names, values := v.Interface().(Named).RecordFields()
		out := map[string]interface{}{TypeKey: v.Interface().(Named).RecordType()}
		for i, name := range names {
			out[name] = p.convert(reflect.ValueOf(values[i]), path+"."+name)
		}
		return out
	case t.Implements(tTextMarshaler):
		if text, err := v.Interface().(encoding.TextMarshaler).MarshalText(); err == nil {
			return string(text)
		}
	case t.Implements(tStringer) && t.Kind() == reflect.Ptr:
		return v.Interface().(fmt.Stringer).String()
	}

	switch v.Kind() {
	case reflect.Ptr:
		return p.convert(v.Elem(), path)
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		out := make([]interface{}, v.Len())
		for i := range out {
			out[i] = p.convert(v.Index(i), fmt.Sprintf("%s[%d]", path, i))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]interface{}, v.Len())
		it := v.MapRange()
		for it.Next() {
			k := fmt.Sprint(p.convert(it.Key(), path))
			out[k] = p.convert(it.Value(), path+"."+k)
		}
		return out
	case reflect.Struct:
		out := make(map[string]interface{}, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			out[f.Name] = p.convert(v.Field(i), path+"."+f.Name)
		}
		return out
	}
	return fmt.Sprint(v.Interface())
}
