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

// Package record writes streams of decoded values in a choice of text
// formats.
package record

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// Kind is a record output format.
type Kind string

const (
	// JSON writes one indented JSON document per record.
	JSON = Kind("json")
	// YAML writes a YAML document stream.
	YAML = Kind("yaml")
	// Text writes google.protobuf.Value messages in proto text format,
	// separated by a separator line.
	Text = Kind("pbtxt")
	// ProtoJSON writes google.protobuf.Value messages in the protobuf JSON
	// mapping.
	ProtoJSON = Kind("pbjson")
)

// Writer writes records to an output.
type Writer interface {
	// Write converts record with Plain and writes it.
	Write(ctx context.Context, record interface{}) error
}

// fileType implements output for a specific Kind.
type fileType interface {
	Ext() string
	Open(ctx context.Context, w io.Writer) (Writer, error)
}

var (
	// fileTypes holds the map of handlers for the various kinds.
	fileTypes = map[Kind]fileType{
		JSON:      jsonFileType{},
		YAML:      yamlFileType{},
		Text:      pbtxtFileType{},
		ProtoJSON: pbjsonFileType{},
	}
)

// Kinds returns the supported kinds, sorted.
func Kinds() []Kind {
	out := make([]Kind, 0, len(fileTypes))
	for k := range fileTypes {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseKind returns the kind with the given name or file extension.
func ParseKind(name string) (Kind, error) {
	name = strings.TrimPrefix(strings.ToLower(name), ".")
	if name == "yml" {
		name = "yaml"
	}
	if _, ok := fileTypes[Kind(name)]; ok {
		return Kind(name), nil
	}
	return "", fmt.Errorf("Unknown record kind %q, expected one of %v", name, Kinds())
}

// KindOf returns the kind matching the extension of path.
func KindOf(path string) (Kind, error) { return ParseKind(filepath.Ext(path)) }

// Ext returns the file extension used for the kind.
func (k Kind) Ext() string {
	if ft, ok := fileTypes[k]; ok {
		return ft.Ext()
	}
	return ""
}

// NewWriter returns a Writer of the given kind writing to w.
func NewWriter(ctx context.Context, w io.Writer, kind Kind) (Writer, error) {
	ft, ok := fileTypes[kind]
	if !ok {
		return nil, fmt.Errorf("Unknown record kind %q", kind)
	}
	return ft.Open(ctx, w)
}
