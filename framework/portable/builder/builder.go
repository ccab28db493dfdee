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

// Package builder provides lazy, field at a time access to wrapped portable
// objects, with local field overrides.
package builder

import (
	"context"
	"sort"

	"github.com/Rudiarius/ignite/core/data/endian"
	"github.com/Rudiarius/ignite/core/log"
	"github.com/Rudiarius/ignite/framework/portable"
)

// Builder is a view over a wrapped object. Nested user objects read through
// a Builder are returned as child Builders sharing the same cache, so
// references between objects resolve to the same Builder.
type Builder struct {
	ctx       context.Context
	m         *portable.Marshaller
	obj       *portable.Wrapped
	parent    *Builder
	cache     map[int]interface{}
	overrides map[string]interface{}
}

var _ portable.Builder = (*Builder)(nil)

// New returns a Builder for the wrapped object w.
func New(ctx context.Context, m *portable.Marshaller, w *portable.Wrapped) *Builder {
	b := &Builder{ctx: ctx, m: m, obj: w, cache: map[int]interface{}{}}
	b.cache[w.Offset()] = b
	return b
}

// Wrapped returns the object the builder reads from.
func (b *Builder) Wrapped() *portable.Wrapped { return b.obj }

// Parent returns the builder this builder was created by, or nil.
func (b *Builder) Parent() *Builder { return b.parent }

// TryCachedField implements portable.Builder.
func (b *Builder) TryCachedField(pos int) (interface{}, bool) {
	v, ok := b.cache[pos]
	return v, ok
}

// CacheField implements portable.Builder.
func (b *Builder) CacheField(pos int, v interface{}) { b.cache[pos] = v }

// Child implements portable.Builder.
func (b *Builder) Child(w *portable.Wrapped) interface{} {
	if c, ok := b.cache[w.Offset()]; ok {
		return c
	}
	c := &Builder{
		ctx:    b.ctx,
		m:      b.m,
		obj:    w,
		parent: b,
		cache:  b.cache,
	}
	b.cache[w.Offset()] = c
	return c
}

// Field returns the value of the named field. Overridden fields return their
// override. Nested user objects are returned as *Builder.
func (b *Builder) Field(name string) (interface{}, error) {
	if v, ok := b.overrides[name]; ok {
		return v, nil
	}
	ctx := log.Enter(b.ctx, "Builder.Field")
	r := b.m.NewReader(ctx, endian.LittleEndian(b.obj.Data()),
		portable.WithMode(portable.ForceWrapped), portable.WithBuilder(b))
	return r.ReadWrappedField(b.obj, name)
}

// SetField overrides the named field.
func (b *Builder) SetField(name string, v interface{}) {
	if b.overrides == nil {
		b.overrides = map[string]interface{}{}
	}
	b.overrides[name] = v
}

// RemoveField drops the override of the named field.
func (b *Builder) RemoveField(name string) { delete(b.overrides, name) }

// Fields returns the names of the overridden fields, sorted.
func (b *Builder) Fields() []string {
	out := make([]string, 0, len(b.overrides))
	for name := range b.overrides {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Deserialize decodes the whole object into its registered type, ignoring
// overrides.
func (b *Builder) Deserialize() (interface{}, error) {
	return b.obj.Deserialize(b.ctx, b.m)
}
