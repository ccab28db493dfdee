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
	"encoding/json"
	"io"
)

// jsonFileType is an implementation of fileType that writes records in json format.
type jsonFileType struct{}

type jsonHandler struct {
	encoder *json.Encoder
}

func (jsonFileType) Ext() string { return ".json" }

func (jsonFileType) Open(ctx context.Context, w io.Writer) (Writer, error) {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return &jsonHandler{encoder: e}, nil
}

func (h *jsonHandler) Write(ctx context.Context, record interface{}) error {
	return h.encoder.Encode(Plain(record))
}
