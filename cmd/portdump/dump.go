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

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Rudiarius/ignite/core/data/endian"
	"github.com/Rudiarius/ignite/core/data/record"
	"github.com/Rudiarius/ignite/core/log"
	"github.com/Rudiarius/ignite/framework/portable"
	"github.com/Rudiarius/ignite/framework/portable/registry"
	"github.com/Rudiarius/ignite/framework/portable/schema"
	"github.com/spf13/afero"
)

// dump decodes the values of the file at path and writes them to out.
func dump(ctx context.Context, fs afero.Fs, path string, f *flags, out io.Writer) error {
	kind, err := record.ParseKind(f.Format)
	if err != nil {
		return err
	}
	mode, err := portable.ParseMode(f.Mode)
	if err != nil {
		return err
	}
	types := registry.NewNamespace(registry.Global)
	if f.Schema != "" {
		s, err := schema.Load(fs, f.Schema)
		if err != nil {
			return err
		}
		s.Register(ctx, types)
		log.I(ctx, "Loaded %d types from %s", len(s.Types), f.Schema)
	}

	data, err := readInput(ctx, fs, path)
	if err != nil {
		return err
	}
	if f.offset < 0 || f.offset > len(data) {
		return fmt.Errorf("Offset %d outside of the %d byte input", f.offset, len(data))
	}

	w, err := record.NewWriter(ctx, out, kind)
	if err != nil {
		return err
	}
	m := &portable.Marshaller{Types: types, Mode: mode}
	r := m.NewReader(ctx, endian.LittleEndian(data), portable.WithOffset(f.offset))
	count := 0
	for r.Stream().Position() < len(data) {
		pos := r.Stream().Position()
		v, err := r.Deserialize(true)
		if err != nil {
			return log.Errf(ctx, err, "Decoding value %d at offset %d", count, pos)
		}
		if err := w.Write(ctx, v); err != nil {
			return err
		}
		count++
		if !f.all {
			break
		}
	}
	log.I(ctx, "Decoded %d values from %s", count, path)
	return nil
}
