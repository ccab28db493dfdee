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

package record

import (
	"context"
	"io"

	"github.com/Rudiarius/ignite/core/log"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/known/structpb"
)

// pbtxtFileType is an implementation of fileType that writes records in proto text format.
type pbtxtFileType struct{}

// pbjsonFileType is an implementation of fileType that writes records in the
// proto json mapping.
type pbjsonFileType struct{}

type protoHandler struct {
	w         io.Writer
	marshal   func(*structpb.Value) ([]byte, error)
	separator string
}

const (
	pbtxtSeparator     = "===================="
	pbtxtSeparatorLine = "\n " + pbtxtSeparator + "\n"
)

func (pbtxtFileType) Ext() string { return ".pbtxt" }

func (pbtxtFileType) Open(ctx context.Context, w io.Writer) (Writer, error) {
	opts := prototext.MarshalOptions{Multiline: true, Indent: "  "}
	return &protoHandler{
		w:         w,
		marshal:   func(v *structpb.Value) ([]byte, error) { return opts.Marshal(v) },
		separator: pbtxtSeparatorLine,
	}, nil
}

func (pbjsonFileType) Ext() string { return ".pbjson" }

func (pbjsonFileType) Open(ctx context.Context, w io.Writer) (Writer, error) {
	opts := protojson.MarshalOptions{Multiline: true, Indent: "  "}
	return &protoHandler{
		w:         w,
		marshal:   func(v *structpb.Value) ([]byte, error) { return opts.Marshal(v) },
		separator: "\n",
	}, nil
}

// Value converts record to a google.protobuf.Value.
func Value(record interface{}) (*structpb.Value, error) {
	v, err := structpb.NewValue(Plain(record))
	if err != nil {
		return nil, errors.Wrap(err, "Converting record to a proto value")
	}
	return v, nil
}

func (h *protoHandler) Write(ctx context.Context, record interface{}) error {
	v, err := Value(record)
	if err != nil {
		return log.Err(ctx, err, "Cannot write proto record")
	}
	data, err := h.marshal(v)
	if err != nil {
		return err
	}
	if _, err := h.w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(h.w, h.separator)
	return err
}
