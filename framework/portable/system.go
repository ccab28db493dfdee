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
	"math/big"
	"reflect"
	"sync"
	"time"

	"github.com/Rudiarius/ignite/core/data/binary"
	"github.com/google/uuid"
)

// SystemReader decodes the value following tag. The tag has already been
// consumed.
type SystemReader func(r *Reader, tag byte) (interface{}, error)

var (
	systemMutex   sync.RWMutex
	systemReaders = map[byte]SystemReader{}
)

// RegisterSystemReader replaces the default reader for tag.
func RegisterSystemReader(tag byte, read SystemReader) {
	systemMutex.Lock()
	defer systemMutex.Unlock()
	systemReaders[tag] = read
}

func (r *Reader) systemReader(tag byte) SystemReader {
	if r.m != nil {
		if read, ok := r.m.System[tag]; ok {
			return read
		}
	}
	systemMutex.RLock()
	defer systemMutex.RUnlock()
	return systemReaders[tag]
}

func value[T any](read func(binary.Reader) T) SystemReader {
	return func(r *Reader, _ byte) (interface{}, error) { return read(r.in), nil }
}

func checked[T any](read func(*Reader) (T, error)) SystemReader {
	return func(r *Reader, _ byte) (interface{}, error) {
		v, err := read(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func init() {
	for tag, read := range map[byte]SystemReader{
		TagByte:           value(binary.Reader.Uint8),
		TagShort:          value(binary.Reader.Int16),
		TagInt:            value(binary.Reader.Int32),
		TagLong:           value(binary.Reader.Int64),
		TagFloat:          value(binary.Reader.Float32),
		TagDouble:         value(binary.Reader.Float64),
		TagChar:           value(binary.Reader.Uint16),
		TagBool:           value(binary.Reader.Bool),
		TagString:         checked(readString),
		TagGUID:           value(readGUID),
		TagDate:           value(readDate),
		TagTimestamp:      value(readTimestamp),
		TagDecimal:        checked(readDecimal),
		TagEnum:           value(readEnum),
		TagByteArray:      checked(primitives(1, binary.Reader.Uint8)),
		TagShortArray:     checked(primitives(2, binary.Reader.Int16)),
		TagIntArray:       checked(primitives(4, binary.Reader.Int32)),
		TagLongArray:      checked(primitives(8, binary.Reader.Int64)),
		TagFloatArray:     checked(primitives(4, binary.Reader.Float32)),
		TagDoubleArray:    checked(primitives(8, binary.Reader.Float64)),
		TagCharArray:      checked(primitives(2, binary.Reader.Uint16)),
		TagBoolArray:      checked(primitives(1, binary.Reader.Bool)),
		TagStringArray:    checked(elements(TagString, readString)),
		TagGUIDArray:      checked(elements(TagGUID, pointer(readGUID))),
		TagDateArray:      checked(elements(TagDate, pointer(readDate))),
		TagTimestampArray: checked(elements(TagTimestamp, pointer(readTimestamp))),
		TagDecimalArray:   checked(elements(TagDecimal, readDecimal)),
		TagEnumArray:      checked(readEnumArray),
		TagArray:          checked(readObjectArray),
		TagCollection:     checked(readCollection),
		TagDictionary:     checked(readDictionary),
		TagMapEntry:       checked(readMapEntry),
	} {
		systemReaders[tag] = read
	}
}

func readString(r *Reader) (string, error) {
	in := r.in
	pos := in.Position()
	n := int(in.Int32())
	if n < 0 || n > binary.Remaining(in) {
		return "", malformed(pos, "String length %d exceeds the stream", n)
	}
	return string(in.Bytes(n)), nil
}

func readGUID(in binary.Reader) uuid.UUID {
	var u uuid.UUID
	msb, lsb := uint64(in.Int64()), uint64(in.Int64())
	for i := 0; i < 8; i++ {
		u[i] = byte(msb >> (56 - 8*i))
		u[8+i] = byte(lsb >> (56 - 8*i))
	}
	return u
}

func readDate(in binary.Reader) time.Time {
	return time.UnixMilli(in.Int64()).UTC()
}

func readTimestamp(in binary.Reader) time.Time {
	millis := in.Int64()
	return fromTimestamp(millis, in.Int32())
}

func readEnum(in binary.Reader) Enum {
	typeID := in.Int32()
	return Enum{TypeID: typeID, Ordinal: in.Int32()}
}

func readDecimal(r *Reader) (*Decimal, error) {
	in := r.in
	pos := in.Position()
	scale := in.Int32()
	n := int(in.Int32())
	if n < 0 || n > binary.Remaining(in) {
		return nil, malformed(pos, "Decimal magnitude length %d exceeds the stream", n)
	}
	mag := in.Bytes(n)
	neg := len(mag) > 0 && mag[0]&0x80 != 0
	if neg {
		mag[0] &^= 0x80
	}
	v := new(big.Int).SetBytes(mag)
	if neg {
		v.Neg(v)
	}
	return &Decimal{Unscaled: v, Scale: scale}, nil
}

func pointer[T any](read func(binary.Reader) T) func(*Reader) (*T, error) {
	return func(r *Reader) (*T, error) {
		v := read(r.in)
		return &v, nil
	}
}

// count reads an element count and checks that at least size bytes per
// element remain in the stream.
func count(r *Reader, size int) (int, error) {
	in := r.in
	pos := in.Position()
	n := int(in.Int32())
	if err := in.Error(); err != nil {
		return 0, truncated(pos, err)
	}
	if n < 0 || n*size > binary.Remaining(in) {
		return 0, malformed(pos, "Element count %d exceeds the stream", n)
	}
	return n, nil
}

func primitives[T any](size int, read func(binary.Reader) T) func(*Reader) ([]T, error) {
	return func(r *Reader) ([]T, error) {
		n, err := count(r, size)
		if err != nil {
			return nil, err
		}
		out := make([]T, n)
		for i := range out {
			out[i] = read(r.in)
		}
		return out, nil
	}
}

// elements reads an array of tag prefixed values, leaving null elements as
// the zero value.
func elements[T any](tag byte, read func(*Reader) (T, error)) func(*Reader) ([]T, error) {
	return func(r *Reader) ([]T, error) {
		n, err := count(r, 1)
		if err != nil {
			return nil, err
		}
		out := make([]T, n)
		for i := range out {
			pos := r.in.Position()
			switch t := r.in.Uint8(); t {
			case TagNull:
			case tag:
				if out[i], err = read(r); err != nil {
					return nil, err
				}
			default:
				return nil, badTag(pos, t, "Expected array element tag %d", tag)
			}
		}
		return out, nil
	}
}

func readEnumArray(r *Reader) ([]*Enum, error) {
	r.in.Int32() // element type id
	return elements(TagEnum, pointer(readEnum))(r)
}

func readObjects(r *Reader, n int) ([]interface{}, error) {
	out := make([]interface{}, n)
	for i := range out {
		v, err := r.dispatch(true)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func readObjectArray(r *Reader) ([]interface{}, error) {
	r.in.Int32() // element type id
	n, err := count(r, 1)
	if err != nil {
		return nil, err
	}
	return readObjects(r, n)
}

func readCollection(r *Reader) ([]interface{}, error) {
	n, err := count(r, 1)
	if err != nil {
		return nil, err
	}
	r.in.Uint8() // kind
	return readObjects(r, n)
}

func readDictionary(r *Reader) (map[interface{}]interface{}, error) {
	n, err := count(r, 2)
	if err != nil {
		return nil, err
	}
	r.in.Uint8() // kind
	out := make(map[interface{}]interface{}, n)
	for i := 0; i < n; i++ {
		pos := r.in.Position()
		k, err := r.dispatch(true)
		if err != nil {
			return nil, err
		}
		if k != nil && !reflect.TypeOf(k).Comparable() {
			return nil, misuse(pos, "Dictionary key of type %T cannot be used as a map key", k)
		}
		v, err := r.dispatch(true)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func readMapEntry(r *Reader) (MapEntry, error) {
	k, err := r.dispatch(true)
	if err != nil {
		return MapEntry{}, err
	}
	v, err := r.dispatch(true)
	if err != nil {
		return MapEntry{}, err
	}
	return MapEntry{Key: k, Value: v}, nil
}

// TimeHolderTypeID is the system type id of the boxed time value.
const TimeHolderTypeID int32 = 2001

// SystemDescriptors returns the descriptors of the system types understood
// by the decoder.
func SystemDescriptors() []*Descriptor {
	return []*Descriptor{{
		UserType: false,
		TypeID:   TimeHolderTypeID,
		TypeName: "TimeHolder",
		Type:     reflect.TypeOf(time.Time{}),
		Serializer: SystemSerializer{Read: func(r *Reader) (interface{}, error) {
			raw := r.GetRawReader()
			millis := raw.ReadInt64()
			nanos := raw.ReadInt32()
			return &timeHolder{fromTimestamp(millis, nanos)}, r.Error()
		}},
	}}
}
