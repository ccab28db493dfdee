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

// Package schema loads type definitions from YAML or TOML files and registers
// them as Generic types, so streams can be decoded without Go types for
// their objects.
package schema

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Rudiarius/ignite/core/log"
	"github.com/Rudiarius/ignite/framework/portable"
	"github.com/Rudiarius/ignite/framework/portable/registry"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Type is the definition of one object type.
type Type struct {
	Name   string   `yaml:"name" toml:"name"`
	ID     *int32   `yaml:"id,omitempty" toml:"id,omitempty"`
	Fields []string `yaml:"fields" toml:"fields"`
	// Raw is set if objects of the type carry a raw section.
	Raw bool `yaml:"raw,omitempty" toml:"raw,omitempty"`
}

// TypeID returns the explicit id of the type, or the one derived from its name.
func (t Type) TypeID() int32 {
	if t.ID != nil {
		return *t.ID
	}
	return portable.HashID(t.Name)
}

// File is the content of a schema file.
type File struct {
	Types []Type `yaml:"types" toml:"types"`
}

// Format is a schema file encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatOf returns the format of the file at path, by extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("Unknown schema file extension %q", filepath.Ext(path))
}

// Parse decodes a schema file.
func Parse(data []byte, format Format) (*File, error) {
	f := &File{}
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(f); err != nil {
			return nil, errors.Wrap(err, "Parsing yaml schema")
		}
	case TOML:
		meta, err := toml.Decode(string(data), f)
		if err != nil {
			return nil, errors.Wrap(err, "Parsing toml schema")
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("Unknown schema keys %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("Unsupported schema format %q", format)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads and parses the schema file at path from fs.
func Load(fs afero.Fs, path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "Reading schema %s", path)
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "Loading schema %s", path)
	}
	return f, nil
}

func (f *File) validate() error {
	seen := map[int32]string{}
	for _, t := range f.Types {
		if t.Name == "" {
			return fmt.Errorf("Schema type without a name")
		}
		id := t.TypeID()
		if other, dup := seen[id]; dup {
			return fmt.Errorf("Types %s and %s share type id %d", other, t.Name, id)
		}
		seen[id] = t.Name
	}
	return nil
}

// Register adds every type of f to n as a Generic type.
func (f *File) Register(ctx context.Context, n *registry.Namespace) {
	for _, t := range f.Types {
		d := t.Descriptor()
		n.Add(d)
		log.D(ctx, "Registered schema type %s as %d with %d fields", t.Name, d.TypeID, len(t.Fields))
	}
}

// Descriptor returns the descriptor decoding objects of the type as *Generic.
func (t Type) Descriptor() *portable.Descriptor {
	d := &portable.Descriptor{
		UserType: true,
		TypeID:   t.TypeID(),
		TypeName: t.Name,
		Type:     reflect.TypeOf(Generic{}),
		New:      func() (interface{}, error) { return &Generic{Type: t.Name}, nil },
		Serializer: portable.UserSerializer{Read: func(obj interface{}, r *portable.Reader) error {
			return obj.(*Generic).read(t, r)
		}},
	}
	d.Seed(t.Fields...)
	return d
}
