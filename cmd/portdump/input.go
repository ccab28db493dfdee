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
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/Rudiarius/ignite/core/log"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// readInput returns the content of path, decompressed when it starts with
// a gzip or zstd magic number.
func readInput(ctx context.Context, fs afero.Fs, path string) ([]byte, error) {
	if ok, err := afero.Exists(fs, path); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("Input file %s does not exist", path)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "Reading %s", path)
	}
	return decompress(ctx, data)
}

func decompress(ctx context.Context, data []byte) ([]byte, error) {
	var rd io.ReadCloser
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		g, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, log.Err(ctx, err, "Opening gzip input")
		}
		log.D(ctx, "Input is gzip compressed")
		rd = g
	case bytes.HasPrefix(data, zstdMagic):
		z, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, log.Err(ctx, err, "Opening zstd input")
		}
		log.D(ctx, "Input is zstd compressed")
		rd = z.IOReadCloser()
	default:
		return data, nil
	}
	defer rd.Close()
	out, err := io.ReadAll(rd)
	if err != nil {
		return nil, log.Err(ctx, err, "Decompressing input")
	}
	log.D(ctx, "Decompressed %d bytes to %d", len(data), len(out))
	return out, nil
}
