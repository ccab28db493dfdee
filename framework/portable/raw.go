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

// RawReader reads the values of the raw section of the current object, in
// the order they were written. Primitives are untagged; all other values
// carry their tag.
type RawReader struct {
	r *Reader
}

// GetRawReader switches the current object to raw reading. Named field reads
// of the object fail afterwards.
func (r *Reader) GetRawReader() *RawReader {
	if f := r.top(); f != nil && !f.raw {
		r.in.Seek(f.pos+f.rawOffset, io.SeekStart)
		r.markRaw()
	}
	return &RawReader{r: r}
}

func raw[T any](w *RawReader, read func(binary.Reader) T) T {
	v := read(w.r.in)
	w.r.check(nil)
	return v
}

func rawTagged[T any](w *RawReader, tag byte, read func(*Reader) (T, error)) T {
	var zero T
	r := w.r
	if r.err.First() != nil || !r.expect(tag) {
		return zero
	}
	v, err := read(r)
	r.check(err)
	if err != nil {
		return zero
	}
	return v
}

// ReadBool reads an untagged bool.
func (w *RawReader) ReadBool() bool { return raw(w, binary.Reader.Bool) }

// ReadUint8 reads an untagged byte.
func (w *RawReader) ReadUint8() byte { return raw(w, binary.Reader.Uint8) }

// ReadInt16 reads an untagged 16 bit integer.
func (w *RawReader) ReadInt16() int16 { return raw(w, binary.Reader.Int16) }

// ReadChar reads an untagged UTF-16 code unit.
func (w *RawReader) ReadChar() uint16 { return raw(w, binary.Reader.Uint16) }

// ReadInt32 reads an untagged 32 bit integer.
func (w *RawReader) ReadInt32() int32 { return raw(w, binary.Reader.Int32) }

// ReadInt64 reads an untagged 64 bit integer.
func (w *RawReader) ReadInt64() int64 { return raw(w, binary.Reader.Int64) }

// ReadFloat32 reads an untagged 32 bit float.
func (w *RawReader) ReadFloat32() float32 { return raw(w, binary.Reader.Float32) }

// ReadFloat64 reads an untagged 64 bit float.
func (w *RawReader) ReadFloat64() float64 { return raw(w, binary.Reader.Float64) }

func (w *RawReader) ReadBoolArray() []bool {
	return rawTagged(w, TagBoolArray, primitives(1, binary.Reader.Bool))
}

func (w *RawReader) ReadByteArray() []byte {
	return rawTagged(w, TagByteArray, primitives(1, binary.Reader.Uint8))
}

func (w *RawReader) ReadInt16Array() []int16 {
	return rawTagged(w, TagShortArray, primitives(2, binary.Reader.Int16))
}

func (w *RawReader) ReadCharArray() []uint16 {
	return rawTagged(w, TagCharArray, primitives(2, binary.Reader.Uint16))
}

func (w *RawReader) ReadInt32Array() []int32 {
	return rawTagged(w, TagIntArray, primitives(4, binary.Reader.Int32))
}

func (w *RawReader) ReadInt64Array() []int64 {
	return rawTagged(w, TagLongArray, primitives(8, binary.Reader.Int64))
}

func (w *RawReader) ReadFloat32Array() []float32 {
	return rawTagged(w, TagFloatArray, primitives(4, binary.Reader.Float32))
}

func (w *RawReader) ReadFloat64Array() []float64 {
	return rawTagged(w, TagDoubleArray, primitives(8, binary.Reader.Float64))
}

func (w *RawReader) ReadDecimal() *Decimal {
	return rawTagged(w, TagDecimal, readDecimal)
}

func (w *RawReader) ReadDecimalArray() []*Decimal {
	return rawTagged(w, TagDecimalArray, elements(TagDecimal, readDecimal))
}

func (w *RawReader) ReadDate() *time.Time {
	return rawTagged(w, TagDate, pointer(readDate))
}

func (w *RawReader) ReadDateArray() []*time.Time {
	return rawTagged(w, TagDateArray, elements(TagDate, pointer(readDate)))
}

func (w *RawReader) ReadTimestamp() *time.Time {
	return rawTagged(w, TagTimestamp, pointer(readTimestamp))
}

func (w *RawReader) ReadTimestampArray() []*time.Time {
	return rawTagged(w, TagTimestampArray, elements(TagTimestamp, pointer(readTimestamp)))
}

func (w *RawReader) ReadString() string {
	return rawTagged(w, TagString, readString)
}

func (w *RawReader) ReadStringArray() []string {
	return rawTagged(w, TagStringArray, elements(TagString, readString))
}

func (w *RawReader) ReadGUID() *uuid.UUID {
	return rawTagged(w, TagGUID, pointer(readGUID))
}

func (w *RawReader) ReadGUIDArray() []*uuid.UUID {
	return rawTagged(w, TagGUIDArray, elements(TagGUID, pointer(readGUID)))
}

func (w *RawReader) ReadEnum() Enum {
	return rawTagged(w, TagEnum, plain(readEnum))
}

func (w *RawReader) ReadEnumArray() []*Enum {
	return rawTagged(w, TagEnumArray, readEnumArray)
}

func (w *RawReader) ReadObjectArray() []interface{} {
	return rawTagged(w, TagArray, readObjectArray)
}

func (w *RawReader) ReadCollection() []interface{} {
	return rawTagged(w, TagCollection, readCollection)
}

func (w *RawReader) ReadDictionary() map[interface{}]interface{} {
	return rawTagged(w, TagDictionary, readDictionary)
}

// ReadRemaining returns a copy of the unread bytes of the current object's
// raw section.
func (w *RawReader) ReadRemaining() []byte {
	r := w.r
	f := r.top()
	if f == nil || r.err.First() != nil {
		return nil
	}
	n := f.end - r.in.Position()
	if n <= 0 {
		return []byte{}
	}
	b := r.in.Bytes(n)
	r.check(nil)
	return b
}

// ReadObject reads the next value of any kind.
func (w *RawReader) ReadObject() interface{} {
	return RawObject[interface{}](w)
}

// RawObject reads the next value of the raw section as a T.
func RawObject[T any](w *RawReader) T {
	v, err := Deserialize[T](w.r)
	if err != nil {
		w.r.fail(err)
	}
	return v
}
