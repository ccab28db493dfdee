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

// Package registry maps the type ids found in portable object headers to the
// descriptors used to decode them.
package registry

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/Rudiarius/ignite/core/log"
	"github.com/Rudiarius/ignite/framework/portable"
)

type key struct {
	user bool
	id   int32
}

// Namespace represents a mapping of type identifiers to their descriptors.
type Namespace struct {
	mutex     sync.RWMutex
	fallbacks []*Namespace
	types     map[key]*portable.Descriptor
	aliases   map[key]key
}

var _ portable.Resolver = (*Namespace)(nil)

var (
	// Global is the default global Namespace object. It holds the system
	// types understood by the decoder.
	Global = NewNamespace()
)

func init() {
	for _, d := range portable.SystemDescriptors() {
		Global.AddSystem(d)
	}
}

// NewNamespace creates a new namespace layered on top of the specified fallback.
func NewNamespace(fallbacks ...*Namespace) *Namespace {
	return &Namespace{
		fallbacks: fallbacks,
		types:     map[key]*portable.Descriptor{},
		aliases:   map[key]key{},
	}
}

// Add a new type to the Namespace.
func (n *Namespace) Add(d *portable.Descriptor) {
	if d == nil {
		panic(fmt.Errorf("Attempt to add nil descriptor to registry"))
	}
	k := key{d.UserType, d.TypeID}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if _, found := n.types[k]; found {
		panic(fmt.Errorf("Type %d (%s) already present", d.TypeID, d.Name()))
	}
	n.types[k] = d
}

// AddSystem adds a system type to the Namespace.
func (n *Namespace) AddSystem(d *portable.Descriptor) {
	d.UserType = false
	n.Add(d)
}

// TypeOption customizes the descriptor built by AddType.
type TypeOption func(*portable.Descriptor)

// Name overrides the registered type name, and so the derived type id.
func Name(name string) TypeOption {
	return func(d *portable.Descriptor) {
		d.TypeName = name
		d.TypeID = portable.HashID(name)
	}
}

// ID overrides the type id.
func ID(id int32) TypeOption { return func(d *portable.Descriptor) { d.TypeID = id } }

// Fields seeds the expected field order of the type.
func Fields(names ...string) TypeOption {
	return func(d *portable.Descriptor) { d.Seed(names...) }
}

// FieldIDs overrides the field name to id mapping.
func FieldIDs(f func(name string) int32) TypeOption {
	return func(d *portable.Descriptor) { d.FieldID = f }
}

// Serializer overrides the serializer chosen for the type.
func Serializer(s portable.Serializer) TypeOption {
	return func(d *portable.Descriptor) { d.Serializer = s }
}

// Factory overrides how instances of the type are created.
func Factory(f func() (interface{}, error)) TypeOption {
	return func(d *portable.Descriptor) { d.New = f }
}

// Describe returns the descriptor of the user type of obj. The type id is
// derived from the type name. Types implementing portable.Unmarshaler read
// themselves, all others are read by field name through reflection.
func Describe(obj interface{}, opts ...TypeOption) *portable.Descriptor {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := portable.TypeNameOf(t)
	d := &portable.Descriptor{
		UserType: true,
		TypeID:   portable.HashID(name),
		TypeName: name,
		Type:     t,
	}
	if reflect.PtrTo(t).Implements(reflect.TypeOf((*portable.Unmarshaler)(nil)).Elem()) {
		d.Serializer = portable.Unmarshalling()
	} else {
		d.Serializer = portable.Reflective()
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// AddType adds the user type of obj to the Namespace, returning its
// descriptor.
func (n *Namespace) AddType(obj interface{}, opts ...TypeOption) *portable.Descriptor {
	d := Describe(obj, opts...)
	n.Add(d)
	return d
}

// Register adds the user types of each of objs to the Namespace.
func (n *Namespace) Register(ctx context.Context, objs ...interface{}) {
	for _, obj := range objs {
		d := n.AddType(obj)
		log.D(ctx, "Registered %s as type %d", d.Name(), d.TypeID)
	}
}

// AddAlias makes the user type id from resolve to the type with id to, if
// there is no type registered as from.
func (n *Namespace) AddAlias(to, from int32) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.aliases[key{true, from}] = key{true, to}
}

// AddFallbacks appends new Namespaces to the fallback list of this Namespace.
func (n *Namespace) AddFallbacks(fallbacks ...*Namespace) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.fallbacks = append(n.fallbacks, fallbacks...)
}

// Resolve looks up a descriptor by type id in the Namespace.
// If there is no match, it will return nil.
func (n *Namespace) Resolve(userType bool, typeID int32) *portable.Descriptor {
	return n.lookup(key{userType, typeID})
}

func (n *Namespace) lookup(k key) *portable.Descriptor {
	n.mutex.RLock()
	d, found := n.types[k]
	fallbacks := n.fallbacks
	alias, aliased := n.aliases[k]
	n.mutex.RUnlock()
	if found {
		return d
	}
	for _, f := range fallbacks {
		if d := f.lookup(k); d != nil {
			return d
		}
	}
	if aliased {
		return n.lookup(alias)
	}
	return nil
}

// Count returns the number of entries reachable through this namespace.
// Because it sums the counts of the namespaces it depends on, this may be
// more than the number of unique keys.
func (n *Namespace) Count() int {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	size := len(n.types)
	for _, f := range n.fallbacks {
		size += f.Count()
	}
	return size
}

// Visit invokes the visitor for every descriptor reachable through this
// namespace.
// The visitor maybe be called with the same id more than once if it is present
// in multiple namespaces.
func (n *Namespace) Visit(visitor func(*portable.Descriptor)) {
	n.VisitDirect(visitor)
	n.mutex.RLock()
	fallbacks := n.fallbacks
	n.mutex.RUnlock()
	for _, f := range fallbacks {
		f.Visit(visitor)
	}
}

// VisitDirect invokes the visitor for every descriptor directly in this namespace.
func (n *Namespace) VisitDirect(visitor func(*portable.Descriptor)) {
	n.mutex.RLock()
	types := make([]*portable.Descriptor, 0, len(n.types))
	for _, d := range n.types {
		types = append(types, d)
	}
	n.mutex.RUnlock()
	for _, d := range types {
		visitor(d)
	}
}
