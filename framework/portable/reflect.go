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

package portable

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Reflective returns a UserSerializer that reads the exported fields of a
// struct by name. A `portable:"name"` tag renames a field and
// `portable:"-"` skips it.
func Reflective() UserSerializer {
	return UserSerializer{Read: readReflect}
}

type fieldPlan struct {
	index []int
	name  string
	read  func(r *Reader, name string, v reflect.Value)
}

var plans sync.Map // reflect.Type -> []fieldPlan

var (
	tTime     = reflect.TypeOf(time.Time{})
	tTimePtr  = reflect.TypeOf(&time.Time{})
	tUUID     = reflect.TypeOf(uuid.UUID{})
	tUUIDPtr  = reflect.TypeOf(&uuid.UUID{})
	tDecimal  = reflect.TypeOf(&Decimal{})
	tEnum     = reflect.TypeOf(Enum{})
	tTimes    = reflect.TypeOf([]*time.Time{})
	tUUIDs    = reflect.TypeOf([]*uuid.UUID{})
	tDecimals = reflect.TypeOf([]*Decimal{})
	tEnums    = reflect.TypeOf([]*Enum{})
)

func readReflect(obj interface{}, r *Reader) error {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return misuse(r.in.Position(), "Reflective serializer used with %T", obj)
	}
	s := v.Elem()
	for _, p := range planFor(s.Type()) {
		p.read(r, p.name, s.FieldByIndex(p.index))
		if r.err.First() != nil {
			break
		}
	}
	return nil
}

func planFor(t reflect.Type) []fieldPlan {
	if p, ok := plans.Load(t); ok {
		return p.([]fieldPlan)
	}
	out := []fieldPlan{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("portable"); ok {
			tag = strings.Split(tag, ",")[0]
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		out = append(out, fieldPlan{index: f.Index, name: name, read: readerFor(f.Type)})
	}
	p, _ := plans.LoadOrStore(t, out)
	return p.([]fieldPlan)
}

func set(v reflect.Value, x interface{}) {
	v.Set(reflect.ValueOf(x).Convert(v.Type()))
}

func readerFor(t reflect.Type) func(r *Reader, name string, v reflect.Value) {
	switch t {
	case tTime:
		return func(r *Reader, name string, v reflect.Value) {
			if ts := r.ReadTimestamp(name); ts != nil {
				v.Set(reflect.ValueOf(*ts))
			}
		}
	case tTimePtr:
		return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadTimestamp(name)) }
	case tUUID:
		return func(r *Reader, name string, v reflect.Value) {
			if u := r.ReadGUID(name); u != nil {
				v.Set(reflect.ValueOf(*u))
			}
		}
	case tUUIDPtr:
		return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadGUID(name)) }
	case tDecimal:
		return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadDecimal(name)) }
	case tEnum:
		return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadEnum(name)) }
	case tTimes:
		return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadTimestampArray(name)) }
	case tUUIDs:
		return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadGUIDArray(name)) }
	case tDecimals:
		return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadDecimalArray(name)) }
	case tEnums:
		return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadEnumArray(name)) }
	}

	switch t.Kind() {
	case reflect.Bool:
		return func(r *Reader, name string, v reflect.Value) { v.SetBool(r.ReadBool(name)) }
	case reflect.Int8:
		return func(r *Reader, name string, v reflect.Value) { v.SetInt(int64(int8(r.ReadUint8(name)))) }
	case reflect.Uint8:
		return func(r *Reader, name string, v reflect.Value) { v.SetUint(uint64(r.ReadUint8(name))) }
	case reflect.Int16:
		return func(r *Reader, name string, v reflect.Value) { v.SetInt(int64(r.ReadInt16(name))) }
	case reflect.Uint16:
		return func(r *Reader, name string, v reflect.Value) { v.SetUint(uint64(r.ReadChar(name))) }
	case reflect.Int32:
		return func(r *Reader, name string, v reflect.Value) { v.SetInt(int64(r.ReadInt32(name))) }
	case reflect.Uint32:
		return func(r *Reader, name string, v reflect.Value) { v.SetUint(uint64(uint32(r.ReadInt32(name)))) }
	case reflect.Int, reflect.Int64:
		return func(r *Reader, name string, v reflect.Value) { v.SetInt(r.ReadInt64(name)) }
	case reflect.Uint, reflect.Uint64:
		return func(r *Reader, name string, v reflect.Value) { v.SetUint(uint64(r.ReadInt64(name))) }
	case reflect.Float32:
		return func(r *Reader, name string, v reflect.Value) { v.SetFloat(float64(r.ReadFloat32(name))) }
	case reflect.Float64:
		return func(r *Reader, name string, v reflect.Value) { v.SetFloat(r.ReadFloat64(name)) }
	case reflect.String:
		return func(r *Reader, name string, v reflect.Value) { v.SetString(r.ReadString(name)) }
	case reflect.Slice:
		switch t.Elem().Kind() {
		case reflect.Bool:
			return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadBoolArray(name)) }
		case reflect.Uint8:
			return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadByteArray(name)) }
		case reflect.Int16:
			return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadInt16Array(name)) }
		case reflect.Uint16:
			return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadCharArray(name)) }
		case reflect.Int32:
			return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadInt32Array(name)) }
		case reflect.Int64:
			return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadInt64Array(name)) }
		case reflect.Float32:
			return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadFloat32Array(name)) }
		case reflect.Float64:
			return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadFloat64Array(name)) }
		case reflect.String:
			return func(r *Reader, name string, v reflect.Value) { set(v, r.ReadStringArray(name)) }
		}
	}
	return readAssigned
}

func readAssigned(r *Reader, name string, v reflect.Value) {
	pos := r.in.Position()
	x := r.ReadObject(name)
	if r.err.First() != nil {
		return
	}
	if !assign(v, x) {
		r.fail(misuse(pos, "Cannot assign %T to field %s of type %v", x, name, v.Type()))
	}
}

// assign stores x in dst, converting the generic containers produced by the
// decoder to the destination's slice and map types.
func assign(dst reflect.Value, x interface{}) bool {
	if x == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return true
	}
	src := reflect.ValueOf(x)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return true
	}
	switch dst.Kind() {
	case reflect.Slice:
		items, ok := x.([]interface{})
		if !ok {
			break
		}
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, item := range items {
			if !assign(out.Index(i), item) {
				return false
			}
		}
		dst.Set(out)
		return true
	case reflect.Map:
		m, ok := x.(map[interface{}]interface{})
		if !ok {
			break
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(m))
		for k, e := range m {
			kv := reflect.New(dst.Type().Key()).Elem()
			ev := reflect.New(dst.Type().Elem()).Elem()
			if !assign(kv, k) || !assign(ev, e) {
				return false
			}
			out.SetMapIndex(kv, ev)
		}
		dst.Set(out)
		return true
	case reflect.Struct:
		if src.Kind() == reflect.Ptr && src.Type().Elem() == dst.Type() && !src.IsNil() {
			dst.Set(src.Elem())
			return true
		}
	}
	if numeric(src.Kind()) && numeric(dst.Kind()) {
		dst.Set(src.Convert(dst.Type()))
		return true
	}
	return false
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
