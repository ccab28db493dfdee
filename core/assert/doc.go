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

// Package assert is a fluent assertion library for the decoder tests.
//
// The usual entry point is assert.For(ctx, "title"), where ctx is a context
// returned by log.Testing(t):
//
//	ctx := log.Testing(t)
//	got, err := portable.Unmarshal[int32](ctx, m, data)
//	assert.For(ctx, "err").ThatError(err).Succeeded()
//	assert.For(ctx, "value").That(got).Equals(int32(3))
package assert
