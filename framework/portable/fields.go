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
	"io"
	"time"

	"github.com/Rudiarius/ignite/core/data/binary"
	"github.com/google/uuid"
)

// seekField moves the cursor to the value of the field with the given id in
// the current object. The scan starts at the cursor and wraps around to the
// start of the field section. If the field is absent, false is returned and
// the cursor is left where it was.
func (r *Reader) seekField(f *frame, id int32) bool {
	in := r.in
	start, end := f.fieldsStart(), f.fieldsEnd()
	initial := in.Position()
	if initial < start || initial > end {
		initial = start
		in.Seek(start, io.SeekStart)
	}
	if r.scan(id, initial, end) {
		return true
	}
	in.Seek(start, io.SeekStart)
	if r.scan(id, start, initial) {
		return true
	}
	in.Seek(initial, io.SeekStart)
	return false
}

func (r *Reader) scan(id int32, from, to int) bool {
	in := r.in
	for pos := from; pos+8 <= to; {
		fieldID := in.Int32()
		length := int(in.Int32())
		if in.Error() != nil || length < 0 {
			return false
		}
		if fieldID == id {
			return true
		}
		pos = in.Seek(length, io.SeekCurrent)
	}
	return false
}

// seekNamed positions the cursor on the tag of the named field of the
// current object.
func (r *Reader) seekNamed(name string) bool {
	if r.err.First() != nil {
		return false
	}
	f := r.top()
	if f == nil {
		r.fail(misuse(r.in.Position(), "Named field %q read outside of an object", name))
		return false
	}
	if f.raw {
		r.fail(misuse(r.in.Position(), "Cannot read named field %q after raw data", name))
		return false
	}
	return r.seekField(f, f.fields.fieldID(name))
}

// seekTagged positions the cursor after the tag of the named field. It
// returns false if the field is absent or null.
func (r *Reader) seekTagged(name string, tag byte) bool {
	if !r.seekNamed(name) {
		return false
	}
	return r.expect(tag)
}

// expect consumes a value tag, returning false for null and recording an
// error for any tag other than the expected one.
func (r *Reader) expect(tag byte) bool {
	in := r.in
	pos := in.Position()
	t := in.Uint8()
	switch {
	case in.Error() != nil:
		r.fail(truncated(pos, in.Error()))
		return false
	case t == TagNull:
		return false
	case t != tag:
		r.fail(badTag(pos, t, "Expected tag %d", tag))
		return false
	}
	return true
}

func (r *Reader) check(err error) {
	if err != nil {
		r.fail(err)
	} else if err := r.in.Error(); err != nil {
		r.fail(truncated(r.in.Position(), err))
	}
}

func named[T any](r *Reader, name string, tag byte, read func(binary.Reader) T) T {
	var zero T
	if !r.seekTagged(name, tag) {
		return zero
	}
	v := read(r.in)
	r.check(nil)
	return v
}

func namedChecked[T any](r *Reader, name string, tag byte, read func(*Reader) (T, error)) T {
	var zero T
	if !r.seekTagged(name, tag) {
		return zero
	}
	v, err := read(r)
	r.check(err)
	if err != nil {
		return zero
	}
	return v
}

func plain[T any](read func(binary.Reader) T) func(*Reader) (T, error) {
	return func(r *Reader) (T, error) { return read(r.in), nil }
}

// ReadBool reads the named bool field.
func (r *Reader) ReadBool(name string) bool {
	return named(r, name, TagBool, binary.Reader.Bool)
}

// ReadBoolArray reads the named bool array field.
func (r *Reader) ReadBoolArray(name string) []bool {
	return namedChecked(r, name, TagBoolArray, primitives(1, binary.Reader.Bool))
}

// ReadUint8 reads the named byte field.
func (r *Reader) ReadUint8(name string) byte {
	return named(r, name, TagByte, binary.Reader.Uint8)
}

// ReadByteArray reads the named byte array field.
func (r *Reader) ReadByteArray(name string) []byte {
	return namedChecked(r, name, TagByteArray, primitives(1, binary.Reader.Uint8))
}

// ReadInt16 reads the named 16 bit integer field.
func (r *Reader) ReadInt16(name string) int16 {
	return named(r, name, TagShort, binary.Reader.Int16)
}

// ReadInt16Array reads the named 16 bit integer array field.
func (r *Reader) ReadInt16Array(name string) []int16 {
	return namedChecked(r, name, TagShortArray, primitives(2, binary.Reader.Int16))
}

// ReadChar reads the named UTF-16 code unit field.
func (r *Reader) ReadChar(name string) uint16 {
	return named(r, name, TagChar, binary.Reader.Uint16)
}

// ReadCharArray reads the named UTF-16 code unit array field.
func (r *Reader) ReadCharArray(name string) []uint16 {
	return namedChecked(r, name, TagCharArray, primitives(2, binary.Reader.Uint16))
}

// ReadInt32 reads the named 32 bit integer field.
func (r *Reader) ReadInt32(name string) int32 {
	return named(r, name, TagInt, binary.Reader.Int32)
}

// ReadInt32Array reads the named 32 bit integer array field.
func (r *Reader) ReadInt32Array(name string) []int32 {
	return namedChecked(r, name, TagIntArray, primitives(4, binary.Reader.Int32))
}

// ReadInt64 reads the named 64 bit integer field.
func (r *Reader) ReadInt64(name string) int64 {
	return named(r, name, TagLong, binary.Reader.Int64)
}

// ReadInt64Array reads the named 64 bit integer array field.
func (r *Reader) ReadInt64Array(name string) []int64 {
	return namedChecked(r, name, TagLongArray, primitives(8, binary.Reader.Int64))
}

// ReadFloat32 reads the named 32 bit float field.
func (r *Reader) ReadFloat32(name string) float32 {
	return named(r, name, TagFloat, binary.Reader.Float32)
}

// ReadFloat32Array reads the named 32 bit float array field.
func (r *Reader) ReadFloat32Array(name string) []float32 {
	return namedChecked(r, name, TagFloatArray, primitives(4, binary.Reader.Float32))
}

// ReadFloat64 reads the named 64 bit float field.
func (r *Reader) ReadFloat64(name string) float64 {
	return named(r, name, TagDouble, binary.Reader.Float64)
}

// ReadFloat64Array reads the named 64 bit float array field.
func (r *Reader) ReadFloat64Array(name string) []float64 {
	return namedChecked(r, name, TagDoubleArray, primitives(8, binary.Reader.Float64))
}

// ReadDecimal reads the named decimal field.
func (r *Reader) ReadDecimal(name string) *Decimal {
	return namedChecked(r, name, TagDecimal, readDecimal)
}

// ReadDecimalArray reads the named decimal array field.
func (r *Reader) ReadDecimalArray(name string) []*Decimal {
	return namedChecked(r, name, TagDecimalArray, elements(TagDecimal, readDecimal))
}

// ReadDate reads the named date field.
func (r *Reader) ReadDate(name string) *time.Time {
	return namedChecked(r, name, TagDate, pointer(readDate))
}

// ReadDateArray reads the named date array field.
func (r *Reader) ReadDateArray(name string) []*time.Time {
	return namedChecked(r, name, TagDateArray, elements(TagDate, pointer(readDate)))
}

// ReadTimestamp reads the named timestamp field.
func (r *Reader) ReadTimestamp(name string) *time.Time {
	return namedChecked(r, name, TagTimestamp, pointer(readTimestamp))
}

// ReadTimestampArray reads the named timestamp array field.
func (r *Reader) ReadTimestampArray(name string) []*time.Time {
	return namedChecked(r, name, TagTimestampArray, elements(TagTimestamp, pointer(readTimestamp)))
}

// ReadString reads the named string field.
func (r *Reader) ReadString(name string) string {
	return namedChecked(r, name, TagString, readString)
}

// ReadStringArray reads the named string array field.
func (r *Reader) ReadStringArray(name string) []string {
	return namedChecked(r, name, TagStringArray, elements(TagString, readString))
}

// ReadGUID reads the named GUID field.
func (r *Reader) ReadGUID(name string) *uuid.UUID {
	return namedChecked(r, name, TagGUID, pointer(readGUID))
}

// ReadGUIDArray reads the named GUID array field.
func (r *Reader) ReadGUIDArray(name string) []*uuid.UUID {
	return namedChecked(r, name, TagGUIDArray, elements(TagGUID, pointer(readGUID)))
}

// ReadEnum reads the named enum field.
func (r *Reader) ReadEnum(name string) Enum {
	return named(r, name, TagEnum, readEnum)
}

// ReadEnumArray reads the named enum array field.
func (r *Reader) ReadEnumArray(name string) []*Enum {
	return namedChecked(r, name, TagEnumArray, readEnumArray)
}

// ReadObject reads the named field as an arbitrary value.
func (r *Reader) ReadObject(name string) interface{} {
	return ReadObject[interface{}](r, name)
}

// ReadObjectArray reads the named object array field.
func (r *Reader) ReadObjectArray(name string) []interface{} {
	return namedChecked(r, name, TagArray, readObjectArray)
}

// ReadCollection reads the named collection field.
func (r *Reader) ReadCollection(name string) []interface{} {
	return namedChecked(r, name, TagCollection, readCollection)
}

// ReadDictionary reads the named dictionary field.
func (r *Reader) ReadDictionary(name string) map[interface{}]interface{} {
	return namedChecked(r, name, TagDictionary, readDictionary)
}

// ReadObject reads the named field of the current object as a T. An absent
// field yields the zero value.
func ReadObject[T any](r *Reader, name string) T {
	var zero T
	if !r.seekNamed(name) {
		return zero
	}
	v, err := Deserialize[T](r)
	if err != nil {
		r.fail(err)
	}
	return v
}
