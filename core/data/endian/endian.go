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

// Package endian implements the binary Reader and Writer interfaces over
// in-memory byte slices with a fixed byte order.
package endian

import (
	eb "encoding/binary"
	"io"
	"math"

	"github.com/Rudiarius/ignite/core/data/binary"
	"github.com/pkg/errors"
)

// ErrSeekRange is returned when a Seek would leave the cursor outside of the
// data.
var ErrSeekRange = errors.New("Seek out of range")

// Reader creates a binary.Reader that reads from data with the specified byte
// order. The Reader does not copy data; Array returns the same slice.
func Reader(data []byte, order eb.ByteOrder) binary.Reader {
	return &reader{data: data, byteOrder: order}
}

// LittleEndian is shorthand for Reader(data, encoding/binary.LittleEndian),
// the byte order of the portable stream format.
func LittleEndian(data []byte) binary.Reader {
	return Reader(data, eb.LittleEndian)
}

// Writer creates a binary.Writer that appends to an in-memory buffer with the
// specified byte order.
func Writer(order eb.ByteOrder) *BufferWriter {
	return &BufferWriter{byteOrder: order}
}

type reader struct {
	data      []byte
	pos       int
	byteOrder eb.ByteOrder
	err       error
}

// BufferWriter is a binary.Writer that collects its output in memory.
type BufferWriter struct {
	data      []byte
	tmp       [8]byte
	byteOrder eb.ByteOrder
	err       error
}

var _ binary.Writer = (*BufferWriter)(nil)

func (r *reader) Position() int { return r.pos }
func (r *reader) Len() int      { return len(r.data) }
func (r *reader) Array() []byte { return r.data }

func (r *reader) Seek(offset int, whence int) int {
	if r.err != nil {
		return r.pos
	}
	target := offset
	if whence == io.SeekCurrent {
		target += r.pos
	}
	if target < 0 || target > len(r.data) {
		r.err = errors.Wrapf(ErrSeekRange, "seek to %d (length %d)", target, len(r.data))
		return r.pos
	}
	r.pos = target
	return r.pos
}

// next returns the next n bytes and advances the cursor, or nil if the
// reader is in an error state or there are not enough bytes.
func (r *reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = errors.Wrapf(io.ErrUnexpectedEOF, "reading %d bytes at %d (length %d)", n, r.pos, len(r.data))
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) Data(p []byte) {
	if b := r.next(len(p)); b != nil {
		copy(p, b)
	}
}

func (r *reader) Bytes(n int) []byte {
	b := r.next(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (r *reader) Bool() bool { return r.Uint8() != 0 }

func (r *reader) Int8() int8 { return int8(r.Uint8()) }

func (r *reader) Uint8() uint8 {
	if b := r.next(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) Int16() int16 { return int16(r.Uint16()) }

func (r *reader) Uint16() uint16 {
	if b := r.next(2); b != nil {
		return r.byteOrder.Uint16(b)
	}
	return 0
}

func (r *reader) Int32() int32 { return int32(r.Uint32()) }

func (r *reader) Uint32() uint32 {
	if b := r.next(4); b != nil {
		return r.byteOrder.Uint32(b)
	}
	return 0
}

func (r *reader) Int64() int64 { return int64(r.Uint64()) }

func (r *reader) Uint64() uint64 {
	if b := r.next(8); b != nil {
		return r.byteOrder.Uint64(b)
	}
	return 0
}

func (r *reader) Float32() float32 { return math.Float32frombits(r.Uint32()) }

func (r *reader) Float64() float64 { return math.Float64frombits(r.Uint64()) }

func (r *reader) Error() error { return r.err }

func (r *reader) SetError(err error) {
	if r.err != nil {
		return
	}
	r.err = err
}

func (r *reader) ClearError() error {
	err := r.err
	r.err = nil
	return err
}

// Bytes returns the bytes written so far. The slice aliases the writer's
// buffer until the next write.
func (w *BufferWriter) Bytes() []byte { return w.data }

// Len returns the number of bytes written so far.
func (w *BufferWriter) Len() int { return len(w.data) }

func (w *BufferWriter) Data(data []byte) {
	if w.err != nil {
		return
	}
	w.data = append(w.data, data...)
}

func (w *BufferWriter) Bool(v bool) {
	if v {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
}

func (w *BufferWriter) Int8(v int8) { w.Uint8(uint8(v)) }

func (w *BufferWriter) Uint8(v uint8) {
	w.tmp[0] = v
	w.Data(w.tmp[:1])
}

func (w *BufferWriter) Int16(v int16) { w.Uint16(uint16(v)) }

func (w *BufferWriter) Uint16(v uint16) {
	w.byteOrder.PutUint16(w.tmp[:], v)
	w.Data(w.tmp[:2])
}

func (w *BufferWriter) Int32(v int32) {
	w.byteOrder.PutUint32(w.tmp[:], uint32(v))
	w.Data(w.tmp[:4])
}

func (w *BufferWriter) Int64(v int64) {
	w.byteOrder.PutUint64(w.tmp[:], uint64(v))
	w.Data(w.tmp[:8])
}

func (w *BufferWriter) Float32(v float32) {
	w.byteOrder.PutUint32(w.tmp[:], math.Float32bits(v))
	w.Data(w.tmp[:4])
}

func (w *BufferWriter) Float64(v float64) {
	w.byteOrder.PutUint64(w.tmp[:], math.Float64bits(v))
	w.Data(w.tmp[:8])
}

// PutInt32 overwrites the 4 bytes at offset with v. It is used to back-patch
// length fields once the size of the data that follows is known.
func (w *BufferWriter) PutInt32(offset int, v int32) {
	if w.err != nil {
		return
	}
	if offset < 0 || offset+4 > len(w.data) {
		w.err = errors.Wrapf(ErrSeekRange, "patch at %d (length %d)", offset, len(w.data))
		return
	}
	w.byteOrder.PutUint32(w.data[offset:], uint32(v))
}

func (w *BufferWriter) Error() error { return w.err }

func (w *BufferWriter) SetError(err error) {
	if w.err != nil {
		return
	}
	w.err = err
}
