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

package portable_test

import (
	"errors"
	"io"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/Rudiarius/ignite/core/assert"
	"github.com/Rudiarius/ignite/core/data/endian"
	"github.com/Rudiarius/ignite/core/log"
	"github.com/Rudiarius/ignite/framework/portable"
	"github.com/Rudiarius/ignite/framework/portable/test"
	"github.com/google/uuid"
)

type Node struct {
	Name  string
	Value int32
	Next  *Node
	Mode  portable.Mode
}

func (n *Node) ReadPortable(r *portable.Reader) error {
	n.Mode = r.Mode()
	n.Name = r.ReadString("name")
	n.Value = r.ReadInt32("value")
	n.Next = portable.ReadObject[*Node](r, "next")
	return nil
}

// Box holds whatever its field decodes to.
type Box struct {
	Inner interface{}
}

func (b *Box) ReadPortable(r *portable.Reader) error {
	b.Inner = r.ReadObject("inner")
	return nil
}

type Pair struct {
	Left, Right *Node
}

func (p *Pair) ReadPortable(r *portable.Reader) error {
	p.Right = portable.ReadObject[*Node](r, "right")
	p.Left = portable.ReadObject[*Node](r, "left")
	return nil
}

type Rawish struct {
	ID   int32
	Tail string
	Bad  int32
}

func (v *Rawish) ReadPortable(r *portable.Reader) error {
	raw := r.GetRawReader()
	v.ID = raw.ReadInt32()
	v.Tail = raw.ReadString()
	if v.ID < 0 {
		v.Bad = r.ReadInt32("bad")
	}
	return nil
}

type Tagged struct {
	Name    string    `portable:"label"`
	Count   int64     `portable:"count"`
	Ratio   float64   `portable:"ratio"`
	Flags   []bool    `portable:"flags"`
	Created time.Time `portable:"created"`
	ID      uuid.UUID `portable:"id"`
	Friends []*Node   `portable:"friends"`
	Skipped string    `portable:"-"`
	hidden  int
}

var (
	nodeID   = portable.HashID("Node")
	pairID   = portable.HashID("Pair")
	rawishID = portable.HashID("Rawish")
	taggedID = portable.HashID("Tagged")
	brokenID = portable.HashID("Broken")
	boxID    = portable.HashID("Box")
)

type types map[int32]*portable.Descriptor

func (t types) Resolve(userType bool, typeID int32) *portable.Descriptor { return t[typeID] }

func marshaller() *portable.Marshaller {
	t := types{
		nodeID:   {UserType: true, TypeID: nodeID, TypeName: "Node", Type: reflect.TypeOf(Node{}), Serializer: portable.Unmarshalling()},
		pairID:   {UserType: true, TypeID: pairID, TypeName: "Pair", Type: reflect.TypeOf(Pair{}), Serializer: portable.Unmarshalling()},
		rawishID: {UserType: true, TypeID: rawishID, TypeName: "Rawish", Type: reflect.TypeOf(Rawish{}), Serializer: portable.Unmarshalling()},
		taggedID: {UserType: true, TypeID: taggedID, TypeName: "Tagged", Type: reflect.TypeOf(Tagged{}), Serializer: portable.Reflective()},
		brokenID: {UserType: true, TypeID: brokenID, TypeName: "Broken", Type: reflect.TypeOf(Node{}),
			New: func() (interface{}, error) { return nil, errors.New("no room") }, Serializer: portable.Unmarshalling()},
		boxID: {UserType: true, TypeID: boxID, TypeName: "Box", Type: reflect.TypeOf(Box{}), Serializer: portable.Unmarshalling()},
		7:     {UserType: true, TypeID: 7, TypeName: "Ghost"},
	}
	for _, d := range portable.SystemDescriptors() {
		t[d.TypeID] = d
	}
	return &portable.Marshaller{Types: t}
}

func node(name string, value int32, next func(*test.Stream)) func(*test.Stream) {
	return func(s *test.Stream) {
		s.Object(nodeID, func(o *test.Object) {
			o.Field("name", func(s *test.Stream) { s.String(name) })
			o.Field("value", func(s *test.Stream) { s.Int32(value) })
			if next != nil {
				o.Field("next", next)
			}
		})
	}
}

func build(f func(*test.Stream)) []byte {
	s := test.New()
	f(s)
	return s.Bytes()
}

func decodeError(err error) *portable.DecodeError {
	var d *portable.DecodeError
	if errors.As(err, &d) {
		return d
	}
	return nil
}

func TestSystemValues(t *testing.T) {
	ctx := log.Testing(t)
	m := marshaller()
	guid := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	when := time.Date(2021, 3, 4, 5, 6, 7, 8009, time.UTC)
	for _, tc := range []struct {
		name   string
		data   func(*test.Stream)
		expect interface{}
	}{
		{"uint8", func(s *test.Stream) { s.Uint8(200) }, uint8(200)},
		{"int16", func(s *test.Stream) { s.Int16(-3) }, int16(-3)},
		{"char", func(s *test.Stream) { s.Char('x') }, uint16('x')},
		{"int32", func(s *test.Stream) { s.Int32(42) }, int32(42)},
		{"int64", func(s *test.Stream) { s.Int64(-1 << 40) }, int64(-1 << 40)},
		{"float32", func(s *test.Stream) { s.Float32(1.5) }, float32(1.5)},
		{"float64", func(s *test.Stream) { s.Float64(-2.25) }, float64(-2.25)},
		{"bool", func(s *test.Stream) { s.Bool(true) }, true},
		{"string", func(s *test.Stream) { s.String("héllo") }, "héllo"},
		{"guid", func(s *test.Stream) { s.GUID(guid) }, guid},
		{"date", func(s *test.Stream) { s.Date(when) }, when.Truncate(time.Millisecond)},
		{"timestamp", func(s *test.Stream) { s.Timestamp(when) }, when},
		{"enum", func(s *test.Stream) { s.Enum(9, 2) }, portable.Enum{TypeID: 9, Ordinal: 2}},
		{"bytes", func(s *test.Stream) { s.ByteArray(1, 2, 3) }, []byte{1, 2, 3}},
		{"ints", func(s *test.Stream) { s.Int32Array(4, -5) }, []int32{4, -5}},
		{"longs", func(s *test.Stream) { s.Int64Array(1 << 33) }, []int64{1 << 33}},
		{"doubles", func(s *test.Stream) { s.Float64Array(0.5) }, []float64{0.5}},
		{"bools", func(s *test.Stream) { s.BoolArray(true, false) }, []bool{true, false}},
		{"empty ints", func(s *test.Stream) { s.Int32Array() }, []int32{}},
		{"strings", func(s *test.Stream) {
			a := "a"
			s.StringArray(&a, nil)
		}, []string{"a", ""}},
		{"collection", func(s *test.Stream) {
			s.Collection(portable.CollectionArrayList,
				func(s *test.Stream) { s.Int32(1) },
				func(s *test.Stream) { s.Null() },
				func(s *test.Stream) { s.String("x") })
		}, []interface{}{int32(1), nil, "x"}},
		{"array", func(s *test.Stream) {
			s.Array(-1, func(s *test.Stream) { s.Bool(false) })
		}, []interface{}{false}},
		{"dictionary", func(s *test.Stream) {
			s.Dictionary(portable.DictionaryHash,
				func(s *test.Stream) { s.String("k") },
				func(s *test.Stream) { s.Int64(3) })
		}, map[interface{}]interface{}{"k": int64(3)}},
		{"map entry", func(s *test.Stream) {
			s.MapEntry(
				func(s *test.Stream) { s.Int32(1) },
				func(s *test.Stream) { s.String("one") })
		}, portable.MapEntry{Key: int32(1), Value: "one"}},
		{"time holder", func(s *test.Stream) {
			s.SystemObject(portable.TimeHolderTypeID, func(o *test.Object) {
				o.Raw(func(r *test.Raw) { r.RawInt64(when.UnixMilli()).RawInt32(8009) })
			})
		}, when},
	} {
		got, err := portable.Unmarshal[interface{}](ctx, m, build(tc.data))
		assert.For(ctx, "%s err", tc.name).ThatError(err).Succeeded()
		assert.For(ctx, tc.name).That(got).DeepEquals(tc.expect)
	}
}

func TestDecimal(t *testing.T) {
	ctx := log.Testing(t)
	m := marshaller()
	for _, tc := range []struct {
		unscaled int64
		scale    int32
		expect   string
	}{
		{12345, 2, "123.45"},
		{-12345, 2, "-123.45"},
		{0, 0, "0"},
		{255, 0, "255"},
		{-128, 1, "-12.8"},
	} {
		data := build(func(s *test.Stream) { s.Decimal(big.NewInt(tc.unscaled), tc.scale) })
		got, err := portable.Unmarshal[*portable.Decimal](ctx, m, data)
		assert.For(ctx, "err").ThatError(err).Succeeded()
		assert.For(ctx, "decimal %d", tc.unscaled).ThatString(got.String()).Equals(tc.expect)
	}
}

func TestNull(t *testing.T) {
	ctx := log.Testing(t)
	m := marshaller()
	data := build(func(s *test.Stream) { s.Null() })

	n, err := portable.Unmarshal[*Node](ctx, m, data)
	assert.For(ctx, "nullable err").ThatError(err).Succeeded()
	assert.For(ctx, "nullable").That(n).IsNil()

	_, err = portable.Unmarshal[int32](ctx, m, data)
	assert.For(ctx, "non-nullable").ThatError(err).Is(portable.ErrInvalidUsage)

	s := test.New().Null().Null().String("x").Int32(9)
	r := m.NewReader(ctx, endian.LittleEndian(s.Bytes()))
	p, err := portable.Deserialize[*string](r)
	assert.For(ctx, "nullable string err").ThatError(err).Succeeded()
	assert.For(ctx, "nullable string").That(p).IsNil()
	assert.For(ctx, "one byte").ThatInteger(r.Stream().Position()).Equals(1)
	str, err := portable.Deserialize[string](r)
	assert.For(ctx, "string err").ThatError(err).Succeeded()
	assert.For(ctx, "string").ThatString(str).Equals("")
	assert.For(ctx, "two bytes").ThatInteger(r.Stream().Position()).Equals(2)
	p, err = portable.Deserialize[*string](r)
	assert.For(ctx, "present string err").ThatError(err).Succeeded()
	assert.For(ctx, "present string").ThatString(*p).Equals("x")
	i, err := portable.Deserialize[*int32](r)
	assert.For(ctx, "boxed int err").ThatError(err).Succeeded()
	assert.For(ctx, "boxed int").That(*i).Equals(int32(9))
}

func TestUnknownTag(t *testing.T) {
	ctx := log.Testing(t)
	_, err := portable.Unmarshal[interface{}](ctx, marshaller(), []byte{200})
	assert.For(ctx, "err").ThatError(err).Is(portable.ErrMalformed)
	d := decodeError(err)
	assert.For(ctx, "decode error").That(d).IsNotNil()
	assert.For(ctx, "pos").ThatInteger(d.Pos).Equals(0)
	assert.For(ctx, "tag").That(d.Tag).Equals(byte(200))
}

func TestTruncated(t *testing.T) {
	ctx := log.Testing(t)
	m := marshaller()
	data := build(node("alpha", 1, nil))
	for _, n := range []int{1, 5, portable.HeaderLength, len(data) - 1} {
		_, err := portable.Unmarshal[*Node](ctx, m, data[:n])
		assert.For(ctx, "truncated to %d", n).ThatError(err).Is(portable.ErrMalformed)
	}
	_, err := portable.Unmarshal[int64](ctx, m, []byte{portable.TagLong, 1, 2})
	assert.For(ctx, "short long").ThatError(err).Is(portable.ErrMalformed)
}

func TestObject(t *testing.T) {
	ctx := log.Testing(t)
	n, err := portable.Unmarshal[*Node](ctx, marshaller(), build(node("alpha", 12, nil)))
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "name").ThatString(n.Name).Equals("alpha")
	assert.For(ctx, "value").ThatInteger(int(n.Value)).Equals(12)
	assert.For(ctx, "next").That(n.Next).IsNil()
}

func TestFieldOrderIndependence(t *testing.T) {
	ctx := log.Testing(t)
	data := build(func(s *test.Stream) {
		s.Object(nodeID, func(o *test.Object) {
			o.Field("next", func(s *test.Stream) { s.Null() })
			o.Field("value", func(s *test.Stream) { s.Int32(5) })
			o.Field("name", func(s *test.Stream) { s.String("beta") })
		})
	})
	n, err := portable.Unmarshal[*Node](ctx, marshaller(), data)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "node").That(*n).DeepEquals(Node{Name: "beta", Value: 5})
}

func TestAbsentField(t *testing.T) {
	ctx := log.Testing(t)
	data := build(func(s *test.Stream) {
		s.Object(nodeID, func(o *test.Object) {
			o.Field("name", func(s *test.Stream) { s.String("gamma") })
		})
	})
	n, err := portable.Unmarshal[*Node](ctx, marshaller(), data)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "name").ThatString(n.Name).Equals("gamma")
	assert.For(ctx, "value").ThatInteger(int(n.Value)).Equals(0)
}

func TestNullField(t *testing.T) {
	ctx := log.Testing(t)
	data := build(func(s *test.Stream) {
		s.Object(nodeID, func(o *test.Object) {
			o.Field("name", func(s *test.Stream) { s.Null() })
			o.Field("value", func(s *test.Stream) { s.Null() })
		})
	})
	n, err := portable.Unmarshal[*Node](ctx, marshaller(), data)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "node").That(*n).DeepEquals(Node{})
}

func TestTagMismatch(t *testing.T) {
	ctx := log.Testing(t)
	data := build(func(s *test.Stream) {
		s.Object(nodeID, func(o *test.Object) {
			o.Field("value", func(s *test.Stream) { s.String("not a number") })
		})
	})
	_, err := portable.Unmarshal[*Node](ctx, marshaller(), data)
	assert.For(ctx, "err").ThatError(err).Is(portable.ErrMalformed)
}

func TestSelfReference(t *testing.T) {
	ctx := log.Testing(t)
	data := build(node("self", 1, func(s *test.Stream) { s.Handle(0) }))
	n, err := portable.Unmarshal[*Node](ctx, marshaller(), data)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "next").That(n.Next).IsSameAs(n)
}

func TestCycle(t *testing.T) {
	ctx := log.Testing(t)
	data := build(node("a", 1, node("b", 2, func(s *test.Stream) { s.Handle(0) })))
	a, err := portable.Unmarshal[*Node](ctx, marshaller(), data)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	b := a.Next
	assert.For(ctx, "b").That(b).IsNotNil()
	assert.For(ctx, "b.name").ThatString(b.Name).Equals("b")
	assert.For(ctx, "b.next").That(b.Next).IsSameAs(a)
}

func TestSharedReference(t *testing.T) {
	ctx := log.Testing(t)
	data := build(func(s *test.Stream) {
		s.Object(pairID, func(o *test.Object) {
			var shared int
			o.Field("left", func(s *test.Stream) {
				shared = s.Pos()
				node("shared", 3, nil)(s)
			})
			o.Field("right", func(s *test.Stream) { s.Handle(shared) })
		})
	})
	r := marshaller().NewReader(ctx, endian.LittleEndian(data))
	p, err := portable.Deserialize[*Pair](r)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	// Right is read first, so its handle resolves an object that has not
	// been decoded yet.
	assert.For(ctx, "right").That(p.Right).IsNotNil()
	assert.For(ctx, "same").That(p.Left).IsSameAs(p.Right)
	assert.For(ctx, "handles cleared").ThatInteger(r.Handles()).Equals(0)
}

func TestHandlesPerTopLevelDecode(t *testing.T) {
	ctx := log.Testing(t)
	s := test.New()
	node("first", 1, nil)(s)
	s.Handle(0)
	r := marshaller().NewReader(ctx, endian.LittleEndian(s.Bytes()))
	first, err := portable.Deserialize[*Node](r)
	assert.For(ctx, "first err").ThatError(err).Succeeded()
	assert.For(ctx, "handles").ThatInteger(r.Handles()).Equals(0)
	// The handle is resolved within its own decode, so it reads the object
	// again instead of returning the earlier instance.
	again, err := portable.Deserialize[*Node](r)
	assert.For(ctx, "again err").ThatError(err).Succeeded()
	assert.For(ctx, "name").ThatString(again.Name).Equals("first")
	assert.For(ctx, "fresh instance").That(again).NotEquals(first)
	assert.For(ctx, "pos").ThatInteger(r.Stream().Position()).Equals(len(s.Bytes()))
}

func TestCursorAfterValue(t *testing.T) {
	ctx := log.Testing(t)
	s := test.New()
	node("first", 1, func(s *test.Stream) { s.Handle(0) })(s)
	end := s.Pos()
	s.Int32(77)
	r := marshaller().NewReader(ctx, endian.LittleEndian(s.Bytes()))

	_, err := portable.Deserialize[*Node](r)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "pos").ThatInteger(r.Stream().Position()).Equals(end)
	v, err := portable.Deserialize[int32](r)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "next value").That(v).Equals(int32(77))
}

func TestRaw(t *testing.T) {
	ctx := log.Testing(t)
	data := build(func(s *test.Stream) {
		s.Object(rawishID, func(o *test.Object) {
			o.Field("bad", func(s *test.Stream) { s.Int32(1) })
			o.Raw(func(r *test.Raw) { r.RawInt32(99).String("tail") })
		})
	})
	v, err := portable.Unmarshal[*Rawish](ctx, marshaller(), data)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "id").That(v.ID).Equals(int32(99))
	assert.For(ctx, "tail").ThatString(v.Tail).Equals("tail")
}

func TestNamedAfterRaw(t *testing.T) {
	ctx := log.Testing(t)
	data := build(func(s *test.Stream) {
		s.Object(rawishID, func(o *test.Object) {
			o.Field("bad", func(s *test.Stream) { s.Int32(1) })
			o.Raw(func(r *test.Raw) { r.RawInt32(-1).String("tail") })
		})
	})
	_, err := portable.Unmarshal[*Rawish](ctx, marshaller(), data)
	assert.For(ctx, "err").ThatError(err).Is(portable.ErrInvalidUsage)
}

func TestUnknownType(t *testing.T) {
	ctx := log.Testing(t)
	m := marshaller()

	_, err := portable.Unmarshal[interface{}](ctx, m, build(func(s *test.Stream) { s.Object(12345, nil) }))
	assert.For(ctx, "unregistered").ThatError(err).Is(portable.ErrUnknownType)

	_, err = portable.Unmarshal[interface{}](ctx, m, build(func(s *test.Stream) { s.Object(7, nil) }))
	assert.For(ctx, "no target").ThatError(err).Is(portable.ErrUnknownType)
	d := decodeError(err)
	assert.For(ctx, "typeId").That(d.TypeID).Equals(int32(7))
	assert.For(ctx, "typeName").ThatString(d.TypeName).Equals("Ghost")
	assert.For(ctx, "pos").ThatInteger(d.Pos).Equals(0)

	var nested int
	data := build(node("outer", 1, func(s *test.Stream) {
		nested = s.Pos()
		s.Object(7, nil)
	}))
	_, err = portable.Unmarshal[*Node](ctx, m, data)
	assert.For(ctx, "nested").ThatError(err).Is(portable.ErrUnknownType)
	assert.For(ctx, "nested pos").ThatInteger(decodeError(err).Pos).Equals(nested)
}

func TestInstantiation(t *testing.T) {
	ctx := log.Testing(t)
	_, err := portable.Unmarshal[interface{}](ctx, marshaller(), build(func(s *test.Stream) { s.Object(brokenID, nil) }))
	assert.For(ctx, "err").ThatError(err).Is(portable.ErrInstantiation)
	assert.For(ctx, "message").ThatString(err.Error()).Contains("no room")
	name := decodeError(err).TypeName
	assert.For(ctx, "qualified name").ThatString(name).Equals("github.com/Rudiarius/ignite/framework/portable_test.Node")
}

func TestBadVersion(t *testing.T) {
	ctx := log.Testing(t)
	data := build(node("v", 1, nil))
	data[portable.OffsetVersion] = 2
	_, err := portable.Unmarshal[*Node](ctx, marshaller(), data)
	assert.For(ctx, "err").ThatError(err).Is(portable.ErrMalformed)
	assert.For(ctx, "version").That(decodeError(err).Tag).Equals(byte(2))

	_, err = portable.Unmarshal[*Node](ctx, marshaller(), []byte{portable.TagFull, 9, 1})
	assert.For(ctx, "short header").ThatError(err).Is(portable.ErrMalformed)
	d := decodeError(err)
	assert.For(ctx, "tag").That(d.Tag).Equals(byte(9))
	assert.For(ctx, "not truncation").ThatString(d.Msg).Contains("version")
}

func TestCursorAfterFailedObject(t *testing.T) {
	ctx := log.Testing(t)
	s := test.New()
	node("outer", 1, func(s *test.Stream) { s.Object(7, nil) })(s)
	end := s.Pos()
	s.Int32(77)
	r := marshaller().NewReader(ctx, endian.LittleEndian(s.Bytes()))
	_, err := portable.Deserialize[*Node](r)
	assert.For(ctx, "err").ThatError(err).Is(portable.ErrUnknownType)
	assert.For(ctx, "pos").ThatInteger(r.Stream().Position()).Equals(end)
	v, err := portable.Deserialize[int32](r)
	assert.For(ctx, "next err").ThatError(err).Succeeded()
	assert.For(ctx, "next").That(v).Equals(int32(77))
}

func TestWrappedFailureRestoresMode(t *testing.T) {
	ctx := log.Testing(t)
	s := test.New()
	s.Wrapped([]byte{0}, func(s *test.Stream) { s.Object(7, nil) })
	end := s.Pos()
	s.Int32(5)
	r := marshaller().NewReader(ctx, endian.LittleEndian(s.Bytes()))
	_, err := r.Deserialize(true)
	assert.For(ctx, "err").ThatError(err).Is(portable.ErrUnknownType)
	assert.For(ctx, "mode").That(r.Mode()).Equals(portable.FullDeserialize)
	assert.For(ctx, "pos").ThatInteger(r.Stream().Position()).Equals(end)
	v, err := portable.Deserialize[int32](r)
	assert.For(ctx, "next err").ThatError(err).Succeeded()
	assert.For(ctx, "next").That(v).Equals(int32(5))
	n, err := portable.Unmarshal[*Node](ctx, marshaller(), build(node("after", 2, nil)))
	assert.For(ctx, "fresh err").ThatError(err).Succeeded()
	assert.For(ctx, "top mode").That(n.Mode).Equals(portable.FullDeserialize)
}

func TestNestedWrapped(t *testing.T) {
	ctx := log.Testing(t)
	data := build(func(s *test.Stream) {
		s.Wrapped([]byte{7}, func(s *test.Stream) {
			s.Object(boxID, func(o *test.Object) {
				o.Field("inner", func(s *test.Stream) { s.Wrapped(nil, node("deep", 3, nil)) })
			})
		})
	})
	r := marshaller().NewReader(ctx, endian.LittleEndian(data))
	b, err := portable.Deserialize[*Box](r)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	w, ok := b.Inner.(*portable.Wrapped)
	assert.For(ctx, "inner stays wrapped").ThatBoolean(ok).IsTrue()
	assert.For(ctx, "inner type").That(w.TypeID()).Equals(nodeID)
	assert.For(ctx, "mode after").That(r.Mode()).Equals(portable.FullDeserialize)
	assert.For(ctx, "pos").ThatInteger(r.Stream().Position()).Equals(len(data))
}

func TestWrappedFullDeserialize(t *testing.T) {
	ctx := log.Testing(t)
	data := build(func(s *test.Stream) { s.Wrapped([]byte{0xff, 0xfe}, node("inner", 4, nil)) })
	r := marshaller().NewReader(ctx, endian.LittleEndian(data))
	n, err := portable.Deserialize[*Node](r)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "name").ThatString(n.Name).Equals("inner")
	assert.For(ctx, "mode while reading").That(n.Mode).Equals(portable.KeepWrapped)
	assert.For(ctx, "mode after").That(r.Mode()).Equals(portable.FullDeserialize)
	assert.For(ctx, "pos").ThatInteger(r.Stream().Position()).Equals(len(data))
}

func TestKeepWrapped(t *testing.T) {
	ctx := log.Testing(t)
	m := marshaller()
	var start int
	data := build(func(s *test.Stream) {
		s.Wrapped([]byte{1, 2, 3}, func(s *test.Stream) {
			start = s.Pos()
			node("kept", 8, nil)(s)
		})
	})
	r := m.NewReader(ctx, endian.LittleEndian(data), portable.WithMode(portable.KeepWrapped))
	w, err := portable.Deserialize[*portable.Wrapped](r)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "typeId").That(w.TypeID()).Equals(nodeID)
	assert.For(ctx, "offset").ThatInteger(w.Offset()).Equals(start)
	assert.For(ctx, "detached").ThatBoolean(w.Detached()).IsFalse()
	assert.For(ctx, "pos").ThatInteger(r.Stream().Position()).Equals(len(data))

	v, err := w.Deserialize(ctx, m)
	assert.For(ctx, "deserialize err").ThatError(err).Succeeded()
	assert.For(ctx, "deserialized").That(v.(*Node).Name).Equals("kept")

	r = m.NewReader(ctx, endian.LittleEndian(data), portable.WithMode(portable.KeepWrapped))
	r.DetachNext()
	d, err := portable.Deserialize[*portable.Wrapped](r)
	assert.For(ctx, "detach err").ThatError(err).Succeeded()
	assert.For(ctx, "detached").ThatBoolean(d.Detached()).IsTrue()
	assert.For(ctx, "bytes").ThatSlice(d.Bytes()).Equals(w.Bytes())
	data[start+portable.HeaderLength+8] = 'X'
	assert.For(ctx, "copy").That(d.Bytes()).DeepNotEquals(w.Bytes())
}

func TestForceWrapped(t *testing.T) {
	ctx := log.Testing(t)
	m := marshaller()
	data := build(func(s *test.Stream) {
		s.Object(nodeID, func(o *test.Object) {
			o.Hash(0x1234)
			o.Field("name", func(s *test.Stream) { s.String("forced") })
			o.Field("value", func(s *test.Stream) { s.Int32(3) })
		})
	})
	w, err := portable.Unmarshal[*portable.Wrapped](ctx, m, data, portable.WithMode(portable.ForceWrapped))
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "len").ThatInteger(w.Len()).Equals(len(data))
	assert.For(ctx, "hash").That(w.HashCode()).Equals(int32(0x1234))

	name, err := w.Field(ctx, m, "name")
	assert.For(ctx, "field err").ThatError(err).Succeeded()
	assert.For(ctx, "name").That(name).Equals("forced")
	missing, err := w.Field(ctx, m, "missing")
	assert.For(ctx, "missing err").ThatError(err).Succeeded()
	assert.For(ctx, "missing").That(missing).IsNil()
}

func TestStructureLearning(t *testing.T) {
	ctx := log.Testing(t)
	m := marshaller()
	desc := m.Types.Resolve(true, nodeID)
	_, err := portable.Unmarshal[*Node](ctx, m, build(node("s", 1, nil)))
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "learned").That(desc.Structure().Names()).DeepEquals([]string{"name", "value", "next"})

	learned := desc.Structure()
	_, err = portable.Unmarshal[*Node](ctx, m, build(node("t", 2, nil)))
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "unchanged").That(desc.Structure()).IsSameAs(learned)
}

func TestReflective(t *testing.T) {
	ctx := log.Testing(t)
	guid := uuid.New()
	when := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	data := build(func(s *test.Stream) {
		s.Object(taggedID, func(o *test.Object) {
			o.Field("label", func(s *test.Stream) { s.String("tagged") })
			o.Field("count", func(s *test.Stream) { s.Int64(10) })
			o.Field("ratio", func(s *test.Stream) { s.Float64(0.25) })
			o.Field("flags", func(s *test.Stream) { s.BoolArray(true) })
			o.Field("created", func(s *test.Stream) { s.Timestamp(when) })
			o.Field("id", func(s *test.Stream) { s.GUID(guid) })
			o.Field("friends", func(s *test.Stream) {
				s.Collection(portable.CollectionArrayList, node("f", 1, nil), func(s *test.Stream) { s.Null() })
			})
			o.Field("Skipped", func(s *test.Stream) { s.String("nope") })
		})
	})
	v, err := portable.Unmarshal[*Tagged](ctx, marshaller(), data)
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "name").ThatString(v.Name).Equals("tagged")
	assert.For(ctx, "count").That(v.Count).Equals(int64(10))
	assert.For(ctx, "ratio").That(v.Ratio).Equals(0.25)
	assert.For(ctx, "flags").ThatSlice(v.Flags).Equals([]bool{true})
	assert.For(ctx, "created").That(v.Created).DeepEquals(when)
	assert.For(ctx, "id").That(v.ID).Equals(guid)
	assert.For(ctx, "friends").ThatSlice(v.Friends).IsLength(2)
	assert.For(ctx, "friend").ThatString(v.Friends[0].Name).Equals("f")
	assert.For(ctx, "null friend").That(v.Friends[1]).IsNil()
	assert.For(ctx, "skipped").ThatString(v.Skipped).Equals("")
}

func TestSystemReaderOverride(t *testing.T) {
	ctx := log.Testing(t)
	m := marshaller()
	m.System = map[byte]portable.SystemReader{
		portable.TagInt: func(r *portable.Reader, tag byte) (interface{}, error) {
			return int64(r.Stream().Int32()) * 2, nil
		},
	}
	v, err := portable.Unmarshal[int64](ctx, m, build(func(s *test.Stream) { s.Int32(21) }))
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "value").That(v).Equals(int64(42))
}

func TestWrongType(t *testing.T) {
	ctx := log.Testing(t)
	_, err := portable.Unmarshal[string](ctx, marshaller(), build(func(s *test.Stream) { s.Int32(1) }))
	assert.For(ctx, "err").ThatError(err).Is(portable.ErrInvalidUsage)
}

func TestReaderReuseAfterError(t *testing.T) {
	ctx := log.Testing(t)
	s := test.New()
	s.Tag(250)
	next := s.Pos()
	s.String("after")
	r := marshaller().NewReader(ctx, endian.LittleEndian(s.Bytes()))
	_, err := r.Deserialize(true)
	assert.For(ctx, "first").ThatError(err).Is(portable.ErrMalformed)
	r.Stream().Seek(next, io.SeekStart)
	v, err := portable.Deserialize[string](r)
	assert.For(ctx, "second err").ThatError(err).Succeeded()
	assert.For(ctx, "second").ThatString(v).Equals("after")
}

func TestReaderReuseAfterTruncation(t *testing.T) {
	ctx := log.Testing(t)
	r := marshaller().NewReader(ctx, endian.LittleEndian([]byte{portable.TagLong, 1, 2}))
	_, err := portable.Deserialize[int64](r)
	assert.For(ctx, "truncated").ThatError(err).Is(portable.ErrMalformed)
	assert.For(ctx, "stream error cleared").ThatError(r.Stream().Error()).Succeeded()
	assert.For(ctx, "seek").ThatInteger(r.Stream().Seek(0, io.SeekStart)).Equals(0)
	_, err = portable.Deserialize[int64](r)
	assert.For(ctx, "same failure").ThatError(err).Is(portable.ErrMalformed)

	data := build(node("whole", 1, nil))
	data = append(data, build(node("cut", 2, nil))[:portable.HeaderLength+3]...)
	r = marshaller().NewReader(ctx, endian.LittleEndian(data))
	_, err = portable.Deserialize[*Node](r)
	assert.For(ctx, "whole").ThatError(err).Succeeded()
	_, err = portable.Deserialize[*Node](r)
	assert.For(ctx, "cut").ThatError(err).Is(portable.ErrMalformed)
	r.Stream().Seek(0, io.SeekStart)
	n, err := portable.Deserialize[*Node](r)
	assert.For(ctx, "reread err").ThatError(err).Succeeded()
	assert.For(ctx, "reread").ThatString(n.Name).Equals("whole")
}

func TestModeNames(t *testing.T) {
	ctx := log.Testing(t)
	for _, m := range []portable.Mode{portable.FullDeserialize, portable.KeepWrapped, portable.ForceWrapped} {
		got, err := portable.ParseMode(m.String())
		assert.For(ctx, "err").ThatError(err).Succeeded()
		assert.For(ctx, "mode").That(got).Equals(m)
	}
	_, err := portable.ParseMode("sideways")
	assert.For(ctx, "bad").ThatError(err).Failed()
}

func TestHashID(t *testing.T) {
	ctx := log.Testing(t)
	assert.For(ctx, "empty").That(portable.HashID("")).Equals(int32(0))
	assert.For(ctx, "a").That(portable.HashID("a")).Equals(int32(97))
	assert.For(ctx, "case").That(portable.HashID("Name")).Equals(portable.HashID("name"))
	assert.For(ctx, "name").That(portable.HashID("name")).Equals(int32(3373707))
}
