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
	"context"
	"fmt"
	"io"

	"github.com/Rudiarius/ignite/core/data/endian"
)

// Wrapped is a user object kept in its encoded form. It either references
// the buffer it was decoded from or, when detached, owns a copy of its bytes.
type Wrapped struct {
	data     []byte
	start    int
	length   int
	typeID   int32
	hash     int32
	detached bool
}

// TypeID returns the type id from the object header.
func (w *Wrapped) TypeID() int32 { return w.typeID }

// HashCode returns the identity hash from the object header.
func (w *Wrapped) HashCode() int32 { return w.hash }

// Len returns the encoded length of the object.
func (w *Wrapped) Len() int { return w.length }

// Offset returns the position of the object in Data.
func (w *Wrapped) Offset() int { return w.start }

// Data returns the buffer holding the object.
func (w *Wrapped) Data() []byte { return w.data }

// Bytes returns the encoded object.
func (w *Wrapped) Bytes() []byte { return w.data[w.start : w.start+w.length] }

// Detached returns true if the object owns its bytes.
func (w *Wrapped) Detached() bool { return w.detached }

func (w *Wrapped) String() string {
	return fmt.Sprintf("Wrapped{typeId: %d, len: %d, offset: %d}", w.typeID, w.length, w.start)
}

// Deserialize decodes the object into its registered type.
func (w *Wrapped) Deserialize(ctx context.Context, m *Marshaller, opts ...Option) (interface{}, error) {
	opts = append([]Option{WithMode(FullDeserialize)}, opts...)
	r := m.NewReader(ctx, endian.LittleEndian(w.data), append(opts, WithOffset(w.start))...)
	return r.Deserialize(true)
}

// Field decodes a single named field of the object without decoding the rest
// of it.
func (w *Wrapped) Field(ctx context.Context, m *Marshaller, name string, opts ...Option) (interface{}, error) {
	r := m.NewReader(ctx, endian.LittleEndian(w.data), opts...)
	return r.ReadWrappedField(w, name)
}

// ReadWrappedField decodes the named field of w, which must reference the
// reader's buffer.
func (r *Reader) ReadWrappedField(w *Wrapped, name string) (interface{}, error) {
	in := r.in
	pos := w.start
	in.Seek(pos+OffsetUserType, io.SeekStart)
	userType := in.Bool()
	in.Seek(pos+OffsetRaw, io.SeekStart)
	rawOffset := in.Int32()
	if err := in.Error(); err != nil {
		return nil, truncated(pos, err)
	}
	if rawOffset < HeaderLength || int(rawOffset) > w.length {
		return nil, malformed(pos, "Invalid raw offset %d", rawOffset)
	}
	desc := r.resolve(userType, w.typeID)
	if desc == nil {
		desc = &Descriptor{UserType: userType, TypeID: w.typeID}
	}
	r.push(frame{typeID: w.typeID, pos: pos, rawOffset: int(rawOffset), end: pos + w.length, fields: newTracker(desc)})
	defer r.pop()
	in.Seek(pos+HeaderLength, io.SeekStart)

	r.depth++
	var v interface{}
	if r.seekNamed(name) {
		var err error
		if v, err = r.dispatch(true); err != nil {
			r.fail(err)
		}
	}
	r.depth--
	if err := r.err.Reset(); err != nil {
		return nil, err
	}
	return v, nil
}
