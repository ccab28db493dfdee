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
	eb "encoding/binary"
	"fmt"
	"io"
	"reflect"

	"github.com/Rudiarius/ignite/core/data/binary"
	"github.com/Rudiarius/ignite/core/data/endian"
	"github.com/Rudiarius/ignite/core/fault"
	"github.com/Rudiarius/ignite/core/log"
)

// Builder receives wrapped objects and cached field values while decoding in
// a builder context.
type Builder interface {
	// TryCachedField returns a previously cached value for the object at pos.
	TryCachedField(pos int) (interface{}, bool)
	// CacheField records the value decoded for the object at pos.
	CacheField(pos int, value interface{})
	// Child returns the value to use for a wrapped object decoded while the
	// reader is forcing wrapped results.
	Child(w *Wrapped) interface{}
}

// Marshaller holds the configuration shared by all the readers it creates.
// A Marshaller may be used concurrently.
type Marshaller struct {
	// Types resolves object headers to descriptors.
	Types Resolver
	// System overrides the readers used for built in value tags.
	System map[byte]SystemReader
	// Mode is the initial mode of new readers.
	Mode Mode
}

// Option configures a Reader.
type Option func(*Reader)

// WithMode sets the initial mode of the reader.
func WithMode(m Mode) Option { return func(r *Reader) { r.mode = m } }

// WithBuilder attaches a builder to the reader.
func WithBuilder(b Builder) Option { return func(r *Reader) { r.builder = b } }

// WithOffset moves the cursor to offset before reading.
func WithOffset(offset int) Option {
	return func(r *Reader) { r.in.Seek(offset, io.SeekStart) }
}

// Reader holds the state of a single decode: the cursor, the stack of
// objects being read, the handle table and the current mode.
// A Reader must not be used concurrently.
type Reader struct {
	ctx     context.Context
	m       *Marshaller
	in      binary.Reader
	builder Builder
	mode    Mode
	detach  bool
	frames  []frame
	handles handles
	depth   int
	err     fault.One
}

// NewReader returns a reader decoding from in.
func (m *Marshaller) NewReader(ctx context.Context, in binary.Reader, opts ...Option) *Reader {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &Reader{ctx: ctx, m: m, in: in, mode: m.Mode}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Unmarshal decodes a single value of type T from the start of data.
func Unmarshal[T any](ctx context.Context, m *Marshaller, data []byte, opts ...Option) (T, error) {
	r := m.NewReader(ctx, endian.LittleEndian(data), opts...)
	return Deserialize[T](r)
}

// Deserialize decodes the value at the cursor as a T.
// A null value is only accepted when T can hold nil, or is a string which
// then decodes as "". A pointer T receives a copy of a decoded value of its
// element type, so *string or *time.Time describe nullable values.
func Deserialize[T any](r *Reader) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()
	pos := r.in.Position()
	v, err := r.Deserialize(nilable(t) || t.Kind() == reflect.String)
	if err != nil || v == nil {
		return zero, err
	}
	if out, ok := v.(T); ok {
		return out, nil
	}
	if out, ok := boxed[T](t, v); ok {
		return out, nil
	}
	err = misuse(pos, "Decoded %T is not assignable to %v", v, t)
	if r.depth > 0 {
		r.err.Collect(err)
	}
	return zero, err
}

// boxed returns a pointer T to a copy of v when v holds T's element type.
func boxed[T any](t reflect.Type, v interface{}) (T, bool) {
	var zero T
	if t.Kind() != reflect.Ptr || reflect.TypeOf(v) != t.Elem() {
		return zero, false
	}
	p := reflect.New(t.Elem())
	p.Elem().Set(reflect.ValueOf(v))
	out, ok := p.Interface().(T)
	return out, ok
}

// Deserialize decodes the value at the cursor. If nullable is false a null
// value is an error.
// A top level call leaves no decode state behind: the handle table and the
// error state of the reader and its cursor are reset when it returns.
func (r *Reader) Deserialize(nullable bool) (interface{}, error) {
	pos := r.in.Position()
	r.depth++
	v, err := r.dispatch(nullable)
	r.depth--
	if err != nil {
		r.err.Collect(err)
	}
	if r.depth > 0 {
		return v, err
	}
	r.handles = handles{}
	streamErr := r.in.ClearError()
	if err := r.err.Reset(); err != nil {
		return nil, err
	}
	if streamErr != nil {
		return nil, truncated(pos, streamErr)
	}
	return v, nil
}

// Context returns the context the reader was created with.
func (r *Reader) Context() context.Context { return r.ctx }

// Stream returns the underlying cursor.
func (r *Reader) Stream() binary.Reader { return r.in }

// Mode returns the current mode.
func (r *Reader) Mode() Mode { return r.mode }

// Builder returns the attached builder, or nil.
func (r *Reader) Builder() Builder { return r.builder }

// DetachNext makes the next value decoded in wrapped form own a copy of its
// bytes instead of referencing the input buffer.
func (r *Reader) DetachNext() { r.detach = true }

// Error returns the error recorded by the named or raw read methods.
func (r *Reader) Error() error { return r.err.First() }

// fail records err so the object being read fails as a whole.
func (r *Reader) fail(err error) { r.err.Collect(err) }

// switchMode sets the mode and returns a function restoring the prior one.
func (r *Reader) switchMode(m Mode) func() {
	prev := r.mode
	r.mode = m
	return func() { r.mode = prev }
}

func (r *Reader) resolve(userType bool, typeID int32) *Descriptor {
	if r.m == nil || r.m.Types == nil {
		return nil
	}
	return r.m.Types.Resolve(userType, typeID)
}

func (r *Reader) dispatch(nullable bool) (interface{}, error) {
	if err := r.err.First(); err != nil {
		return nil, err
	}
	in := r.in
	pos := in.Position()
	tag := in.Uint8()
	if err := in.Error(); err != nil {
		return nil, truncated(pos, err)
	}
	detach := r.detach
	r.detach = false

	switch tag {
	case TagNull:
		if !nullable {
			return nil, misuse(pos, "Null value for a type that cannot be nil")
		}
		return nil, nil
	case TagHandle:
		return r.readHandle(pos, nullable)
	case TagFull:
		return r.readFull(pos, detach)
	case TagWrapped:
		return r.readWrapped(pos, detach, nullable)
	}
	read := r.systemReader(tag)
	if read == nil {
		return nil, badTag(pos, tag, "Unknown type tag")
	}
	v, err := read(r, tag)
	if err == nil {
		if err = in.Error(); err != nil {
			err = truncated(pos, err)
		}
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// seekTo moves the cursor to pos even when it is in an error state, which
// is kept.
func seekTo(in binary.Reader, pos int) {
	err := in.ClearError()
	in.Seek(pos, io.SeekStart)
	if err != nil {
		in.SetError(err)
	}
}

// qualifiedName returns the package qualified name of t, without pointers.
func qualifiedName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

func (d *Descriptor) unknown(pos int, typeID int32) *DecodeError {
	err := &DecodeError{Kind: ErrUnknownType, Pos: pos, TypeID: typeID}
	if d != nil {
		err.TypeName = d.TypeName
		err.Msg = "type has no decodable target"
	}
	return err
}

func (r *Reader) readFull(pos int, detach bool) (interface{}, error) {
	in := r.in
	version := in.Uint8()
	if err := in.Error(); err != nil {
		return nil, truncated(pos, err)
	}
	if version != ProtocolVersion {
		return nil, badTag(pos, version, "Unsupported protocol version %d", version)
	}
	userType := in.Bool()
	typeID := in.Int32()
	in.Int32() // hash
	length := in.Int32()
	rawOffset := in.Int32()
	if err := in.Error(); err != nil {
		return nil, truncated(pos, err)
	}
	if length < HeaderLength || pos+int(length) > in.Len() ||
		rawOffset < HeaderLength || rawOffset > length {
		return nil, malformed(pos, "Invalid object header: length %d, raw offset %d", length, rawOffset)
	}
	end := pos + int(length)
	defer seekTo(in, end)

	if v, ok := r.handles.get(pos); ok {
		return v, nil
	}

	if userType && r.mode == ForceWrapped {
		w := r.wrap(pos, int(length), typeID, detach)
		var v interface{} = w
		if r.builder != nil {
			v = r.builder.Child(w)
		}
		if err := r.handles.add(pos, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	desc := r.resolve(userType, typeID)
	if desc == nil || desc.Type == nil {
		return nil, desc.unknown(pos, typeID)
	}

	r.push(frame{typeID: typeID, pos: pos, rawOffset: int(rawOffset), end: end, fields: newTracker(desc)})
	defer r.pop()

	var obj interface{}
	switch s := desc.Serializer.(type) {
	case SystemSerializer:
		v, err := s.Read(r)
		if err != nil {
			return nil, r.wrapErr(pos, err)
		}
		obj = v
	case UserSerializer:
		v, err := desc.instantiate()
		if err != nil {
			return nil, &DecodeError{Kind: ErrInstantiation, Pos: pos, TypeID: typeID, TypeName: qualifiedName(desc.Type), Err: err}
		}
		if err := r.handles.add(pos, v); err != nil {
			return nil, err
		}
		if err := s.Read(v, r); err != nil {
			return nil, r.wrapErr(pos, err)
		}
		obj = v
	default:
		return nil, misuse(pos, "Type %s has no serializer", desc.Name())
	}
	if err := r.err.First(); err != nil {
		return nil, err
	}
	if err := in.Error(); err != nil {
		return nil, truncated(pos, err)
	}
	r.top().fields.update(r.ctx)
	return unwrapHolder(obj), nil
}

// wrapErr gives errors returned by serializers a position, leaving decode
// errors untouched.
func (r *Reader) wrapErr(pos int, err error) error {
	if _, ok := err.(*DecodeError); ok {
		return err
	}
	if _, ok := err.(fault.Const); ok {
		return &DecodeError{Kind: ErrInvalidUsage, Pos: pos, Err: err}
	}
	return &DecodeError{Kind: ErrMalformed, Pos: pos, Msg: "serializer failed", Err: err}
}

func (r *Reader) readHandle(pos int, nullable bool) (interface{}, error) {
	in := r.in
	back := in.Int32()
	if err := in.Error(); err != nil {
		return nil, truncated(pos, err)
	}
	target := pos - int(back)
	ret := in.Position()
	defer seekTo(in, ret)

	if r.builder != nil {
		if v, ok := r.builder.TryCachedField(target); ok {
			return v, nil
		}
	}
	v, ok := r.handles.get(target)
	if !ok {
		if back <= 0 || target < 0 {
			return nil, malformed(pos, "Handle to %d does not point back", target)
		}
		log.D(r.ctx, "Resolving handle at %d to unread object at %d", pos, target)
		in.Seek(target, io.SeekStart)
		val, err := r.dispatch(nullable)
		if err != nil {
			return nil, err
		}
		v = val
	}
	if r.builder != nil {
		r.builder.CacheField(target, v)
	}
	return v, nil
}

func (r *Reader) readWrapped(pos int, detach bool, nullable bool) (interface{}, error) {
	in := r.in
	length := int(in.Int32())
	data := in.Position()
	if err := in.Error(); err != nil {
		return nil, truncated(pos, err)
	}
	if length < 0 || data+length+4 > in.Len() {
		return nil, malformed(pos, "Wrapped object length %d exceeds the stream", length)
	}
	in.Seek(length, io.SeekCurrent)
	offset := int(in.Int32())
	ret := in.Position()
	defer seekTo(in, ret)
	if offset < 0 || offset >= length {
		return nil, malformed(pos, "Wrapped object offset %d outside of %d bytes", offset, length)
	}
	start := data + offset

	if r.mode == FullDeserialize {
		in.Seek(start, io.SeekStart)
		defer r.switchMode(KeepWrapped)()
		return r.dispatch(nullable)
	}

	in.Seek(start, io.SeekStart)
	if tag := in.Uint8(); tag != TagFull {
		return nil, badTag(start, tag, "Wrapped data does not hold an object")
	}
	in.Seek(start+OffsetTypeID, io.SeekStart)
	typeID := in.Int32()
	in.Seek(start+OffsetLength, io.SeekStart)
	objLen := int(in.Int32())
	if err := in.Error(); err != nil {
		return nil, truncated(start, err)
	}
	if objLen < HeaderLength || start+objLen > data+length {
		return nil, malformed(start, "Wrapped object length %d exceeds its data", objLen)
	}
	return r.wrap(start, objLen, typeID, detach), nil
}

func (r *Reader) wrap(pos, length int, typeID int32, detach bool) *Wrapped {
	buf := r.in.Array()
	hash := int32(eb.LittleEndian.Uint32(buf[pos+OffsetHash:]))
	w := &Wrapped{data: buf, start: pos, length: length, typeID: typeID, hash: hash}
	if detach {
		w.data = append([]byte(nil), buf[pos:pos+length]...)
		w.start = 0
		w.detached = true
	}
	return w
}

func (r *Reader) String() string {
	return fmt.Sprintf("portable.Reader{pos: %d, mode: %v, depth: %d}", r.in.Position(), r.mode, len(r.frames))
}
