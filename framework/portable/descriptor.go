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
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Serializer is the reading strategy of a Descriptor. It is either a
// UserSerializer or a SystemSerializer.
type Serializer interface {
	isSerializer()
}

// UserSerializer populates an instance created by the Reader. The instance is
// registered for handle resolution before Read is called, so references back
// to the object from within its own fields resolve to the same instance.
type UserSerializer struct {
	Read func(obj interface{}, r *Reader) error
}

// SystemSerializer constructs and returns the whole value itself.
type SystemSerializer struct {
	Read func(r *Reader) (interface{}, error)
}

func (UserSerializer) isSerializer()   {}
func (SystemSerializer) isSerializer() {}

// Unmarshaler is implemented by types that read their own fields.
type Unmarshaler interface {
	ReadPortable(r *Reader) error
}

// Unmarshalling is the UserSerializer for types that implement Unmarshaler.
func Unmarshalling() UserSerializer {
	return UserSerializer{Read: func(obj interface{}, r *Reader) error {
		u, ok := obj.(Unmarshaler)
		if !ok {
			return misuse(r.in.Position(), "%T does not implement Unmarshaler", obj)
		}
		return u.ReadPortable(r)
	}}
}

// Resolver maps the (userType, typeId) pair of an object header to the
// descriptor used to decode it. It returns nil for unknown types.
type Resolver interface {
	Resolve(userType bool, typeID int32) *Descriptor
}

// Descriptor holds everything needed to decode one type.
type Descriptor struct {
	// UserType is false for the types built into the format.
	UserType bool
	// TypeID is the identifier written in object headers.
	TypeID int32
	// TypeName is the name the type was registered with.
	TypeName string
	// Type is the Go type that is decoded into. A nil Type marks a type that
	// is known by id but cannot be decoded.
	Type reflect.Type
	// New creates a new instance. If nil, a pointer to a new zero value of
	// Type is used.
	New func() (interface{}, error)
	// Serializer decodes the type's fields.
	Serializer Serializer
	// FieldID maps a field name to its id. If nil, HashID is used.
	FieldID func(name string) int32

	mu        sync.RWMutex
	structure *Structure
}

// HashID returns the default identifier for a type or field name: the 31
// multiplier string hash of the lower case name.
func HashID(name string) int32 {
	h := int32(0)
	for _, c := range strings.ToLower(name) {
		h = 31*h + int32(c)
	}
	return h
}

// TypeNameOf returns the name a Go type is registered under by default.
func TypeNameOf(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Name returns a printable name for the descriptor.
func (d *Descriptor) Name() string {
	switch {
	case d.TypeName != "":
		return d.TypeName
	case d.Type != nil:
		return d.Type.String()
	default:
		return fmt.Sprintf("type<%d>", d.TypeID)
	}
}

func (d *Descriptor) fieldID(name string) int32 {
	if d.FieldID != nil {
		return d.FieldID(name)
	}
	return HashID(name)
}

// Seed sets the initial field order of the type.
func (d *Descriptor) Seed(fields ...string) {
	s := &Structure{}
	for _, f := range fields {
		s = s.with(f, d.fieldID(f))
	}
	d.mu.Lock()
	d.structure = s
	d.mu.Unlock()
}

// Structure returns the current field order of the type, or nil if nothing
// has been learned yet.
func (d *Descriptor) Structure() *Structure {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.structure
}

func (d *Descriptor) instantiate() (obj interface{}, err error) {
	if d.New != nil {
		return d.New()
	}
	t := d.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil, fmt.Errorf("Cannot create an instance of %v", d.Type)
	}
	return reflect.New(t).Interface(), nil
}
