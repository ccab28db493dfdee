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

// Package test builds encoded portable streams for tests.
package test

import (
	eb "encoding/binary"
	"math/big"
	"time"

	"github.com/Rudiarius/ignite/core/data/endian"
	"github.com/Rudiarius/ignite/framework/portable"
	"github.com/google/uuid"
)

// Stream accumulates encoded values.
type Stream struct {
	w *endian.BufferWriter
}

// New returns an empty stream.
func New() *Stream { return &Stream{w: endian.Writer(eb.LittleEndian)} }

// Bytes returns the encoded data.
func (s *Stream) Bytes() []byte { return s.w.Bytes() }

// Pos returns the position of the next value.
func (s *Stream) Pos() int { return s.w.Len() }

// Tag writes a bare tag byte.
func (s *Stream) Tag(tag byte) *Stream { s.w.Uint8(tag); return s }

// Data writes bytes verbatim.
func (s *Stream) Data(b ...byte) *Stream { s.w.Data(b); return s }

func (s *Stream) Null() *Stream { return s.Tag(portable.TagNull) }

func (s *Stream) Bool(v bool) *Stream       { s.Tag(portable.TagBool); s.w.Bool(v); return s }
func (s *Stream) Uint8(v uint8) *Stream     { s.Tag(portable.TagByte); s.w.Uint8(v); return s }
func (s *Stream) Int16(v int16) *Stream     { s.Tag(portable.TagShort); s.w.Int16(v); return s }
func (s *Stream) Char(v uint16) *Stream     { s.Tag(portable.TagChar); s.w.Uint16(v); return s }
func (s *Stream) Int32(v int32) *Stream     { s.Tag(portable.TagInt); s.w.Int32(v); return s }
func (s *Stream) Int64(v int64) *Stream     { s.Tag(portable.TagLong); s.w.Int64(v); return s }
func (s *Stream) Float32(v float32) *Stream { s.Tag(portable.TagFloat); s.w.Float32(v); return s }
func (s *Stream) Float64(v float64) *Stream { s.Tag(portable.TagDouble); s.w.Float64(v); return s }

func (s *Stream) String(v string) *Stream {
	s.Tag(portable.TagString)
	return s.rawString(v)
}

func (s *Stream) GUID(u uuid.UUID) *Stream {
	s.Tag(portable.TagGUID)
	s.w.Int64(int64(eb.BigEndian.Uint64(u[0:8])))
	s.w.Int64(int64(eb.BigEndian.Uint64(u[8:16])))
	return s
}

func (s *Stream) Date(t time.Time) *Stream {
	s.Tag(portable.TagDate)
	s.w.Int64(t.UnixMilli())
	return s
}

func (s *Stream) Timestamp(t time.Time) *Stream {
	s.Tag(portable.TagTimestamp)
	s.w.Int64(t.UnixMilli())
	s.w.Int32(int32(t.Nanosecond() % int(time.Millisecond)))
	return s
}

// Decimal writes unscaled × 10^-scale.
func (s *Stream) Decimal(unscaled *big.Int, scale int32) *Stream {
	s.Tag(portable.TagDecimal)
	s.w.Int32(scale)
	mag := new(big.Int).Abs(unscaled).Bytes()
	if len(mag) == 0 || mag[0]&0x80 != 0 {
		mag = append([]byte{0}, mag...)
	}
	if unscaled.Sign() < 0 {
		mag[0] |= 0x80
	}
	s.w.Int32(int32(len(mag)))
	s.w.Data(mag)
	return s
}

func (s *Stream) Enum(typeID, ordinal int32) *Stream {
	s.Tag(portable.TagEnum)
	s.w.Int32(typeID)
	s.w.Int32(ordinal)
	return s
}

func (s *Stream) ByteArray(v ...byte) *Stream {
	s.Tag(portable.TagByteArray)
	s.w.Int32(int32(len(v)))
	s.w.Data(v)
	return s
}

func (s *Stream) Int32Array(v ...int32) *Stream {
	s.Tag(portable.TagIntArray)
	s.w.Int32(int32(len(v)))
	for _, e := range v {
		s.w.Int32(e)
	}
	return s
}

func (s *Stream) Int64Array(v ...int64) *Stream {
	s.Tag(portable.TagLongArray)
	s.w.Int32(int32(len(v)))
	for _, e := range v {
		s.w.Int64(e)
	}
	return s
}

func (s *Stream) Float64Array(v ...float64) *Stream {
	s.Tag(portable.TagDoubleArray)
	s.w.Int32(int32(len(v)))
	for _, e := range v {
		s.w.Float64(e)
	}
	return s
}

func (s *Stream) BoolArray(v ...bool) *Stream {
	s.Tag(portable.TagBoolArray)
	s.w.Int32(int32(len(v)))
	for _, e := range v {
		s.w.Bool(e)
	}
	return s
}

// StringArray writes a string array. Nil elements are written as null.
func (s *Stream) StringArray(v ...*string) *Stream {
	s.Tag(portable.TagStringArray)
	s.w.Int32(int32(len(v)))
	for _, e := range v {
		if e == nil {
			s.Null()
		} else {
			s.String(*e)
		}
	}
	return s
}

// Array writes an object array holding the values written by each element.
func (s *Stream) Array(elemTypeID int32, elems ...func(*Stream)) *Stream {
	s.Tag(portable.TagArray)
	s.w.Int32(elemTypeID)
	return s.values(elems)
}

// Collection writes a collection holding the values written by each element.
func (s *Stream) Collection(kind byte, elems ...func(*Stream)) *Stream {
	s.Tag(portable.TagCollection)
	s.w.Int32(int32(len(elems)))
	s.w.Uint8(kind)
	for _, e := range elems {
		e(s)
	}
	return s
}

// Dictionary writes a dictionary from alternating key and value writers.
func (s *Stream) Dictionary(kind byte, pairs ...func(*Stream)) *Stream {
	s.Tag(portable.TagDictionary)
	s.w.Int32(int32(len(pairs) / 2))
	s.w.Uint8(kind)
	for _, e := range pairs {
		e(s)
	}
	return s
}

// MapEntry writes a key value pair.
func (s *Stream) MapEntry(key, value func(*Stream)) *Stream {
	s.Tag(portable.TagMapEntry)
	key(s)
	value(s)
	return s
}

// Handle writes a reference to the object starting at target.
func (s *Stream) Handle(target int) *Stream {
	pos := s.Pos()
	s.Tag(portable.TagHandle)
	s.w.Int32(int32(pos - target))
	return s
}

// Wrapped writes the object written by object in wrapped form, preceded by
// prefix within the wrapped data.
func (s *Stream) Wrapped(prefix []byte, object func(*Stream)) *Stream {
	s.Tag(portable.TagWrapped)
	at := s.Pos()
	s.w.Int32(0)
	s.w.Data(prefix)
	object(s)
	s.w.PutInt32(at, int32(s.Pos()-at-4))
	s.w.Int32(int32(len(prefix)))
	return s
}

// Object writes a user object of the given type.
func (s *Stream) Object(typeID int32, build func(*Object)) *Stream {
	return s.object(true, typeID, build)
}

// SystemObject writes a system object of the given type.
func (s *Stream) SystemObject(typeID int32, build func(*Object)) *Stream {
	return s.object(false, typeID, build)
}

// Object writes the body of a full object.
type Object struct {
	s     *Stream
	start int
	raw   int
}

// Start returns the position of the object header.
func (o *Object) Start() int { return o.start }

// Hash sets the identity hash in the object header.
func (o *Object) Hash(v int32) *Object {
	o.s.w.PutInt32(o.start+portable.OffsetHash, v)
	return o
}

// Field writes a field whose id is derived from name.
func (o *Object) Field(name string, value func(*Stream)) *Object {
	return o.FieldID(portable.HashID(name), value)
}

// FieldID writes a field with an explicit id.
func (o *Object) FieldID(id int32, value func(*Stream)) *Object {
	w := o.s.w
	w.Int32(id)
	at := w.Len()
	w.Int32(0)
	value(o.s)
	w.PutInt32(at, int32(w.Len()-at-4))
	return o
}

// Raw starts the raw section and writes values to it.
func (o *Object) Raw(values func(*Raw)) *Object {
	o.raw = o.s.Pos()
	values(&Raw{o.s})
	return o
}

// Raw writes untagged primitives and tagged values.
type Raw struct {
	*Stream
}

func (r *Raw) RawBool(v bool) *Raw   { r.w.Bool(v); return r }
func (r *Raw) RawInt32(v int32) *Raw { r.w.Int32(v); return r }
func (r *Raw) RawInt64(v int64) *Raw { r.w.Int64(v); return r }

func (s *Stream) object(user bool, typeID int32, build func(*Object)) *Stream {
	w := s.w
	start := s.Pos()
	w.Uint8(portable.TagFull)
	w.Uint8(portable.ProtocolVersion)
	w.Bool(user)
	w.Int32(typeID)
	w.Int32(0) // hash
	w.Int32(0) // length
	w.Int32(0) // raw offset
	o := &Object{s: s, start: start, raw: -1}
	if build != nil {
		build(o)
	}
	end := s.Pos()
	raw := o.raw
	if raw < 0 {
		raw = end
	}
	w.PutInt32(start+portable.OffsetLength, int32(end-start))
	w.PutInt32(start+portable.OffsetRaw, int32(raw-start))
	return s
}

func (s *Stream) values(elems []func(*Stream)) *Stream {
	s.w.Int32(int32(len(elems)))
	for _, e := range elems {
		e(s)
	}
	return s
}

func (s *Stream) rawString(v string) *Stream {
	s.w.Int32(int32(len(v)))
	s.w.Data([]byte(v))
	return s
}
