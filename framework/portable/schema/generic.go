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

package schema

import (
	"github.com/Rudiarius/ignite/core/data/record"
	"github.com/Rudiarius/ignite/framework/portable"
)

// Field is a named value of a Generic object.
type Field struct {
	Name  string
	Value interface{}
}

// Generic is an object decoded from a schema type definition.
type Generic struct {
	Type   string
	Fields []Field
	Raw    []byte
}

// Get returns the value of the named field.
func (g *Generic) Get(name string) (interface{}, bool) {
	for _, f := range g.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

var _ record.Named = (*Generic)(nil)

// RecordType implements record.Named.
func (g *Generic) RecordType() string { return g.Type }

// RecordFields implements record.Named. The raw section, if any, is
// reported as the field "$raw".
func (g *Generic) RecordFields() ([]string, []interface{}) {
	names := make([]string, 0, len(g.Fields)+1)
	values := make([]interface{}, 0, len(g.Fields)+1)
	for _, f := range g.Fields {
		names = append(names, f.Name)
		values = append(values, f.Value)
	}
	if g.Raw != nil {
		names = append(names, "$raw")
		values = append(values, g.Raw)
	}
	return names, values
}

func (g *Generic) read(t Type, r *portable.Reader) error {
	g.Fields = make([]Field, 0, len(t.Fields))
	for _, name := range t.Fields {
		v := r.ReadObject(name)
		if r.Error() != nil {
			return nil
		}
		g.Fields = append(g.Fields, Field{Name: name, Value: v})
	}
	if t.Raw {
		g.Raw = r.GetRawReader().ReadRemaining()
	}
	return nil
}
