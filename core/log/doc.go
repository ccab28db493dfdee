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

// Package log provides context bound logging for the portable decoder and
// its tools.
//
// A logger is never passed around directly. Handlers, filters, tags and
// values are attached to a context.Context and the package level functions
// (D, I, W, E, F) pick them up from there:
//
//	ctx = log.PutHandler(ctx, log.Normal.Handler(log.Std()))
//	ctx = log.V{"file": path}.Bind(ctx)
//	log.I(ctx, "Decoded %d objects", n)
package log
