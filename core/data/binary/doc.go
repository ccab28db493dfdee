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

// Package binary declares the primitive value Reader and Writer interfaces
// used by the portable decoder.
//
// A Reader is a seekable cursor: the object decoder frequently looks ahead
// (to locate a named field, or to peek at a wrapped object) and then returns
// to a position it recorded earlier, so Position and Seek are part of the
// contract alongside the fixed-width value decoders.
//
// Both interfaces use sticky errors. Once a read or write fails, all further
// operations are no-ops returning zero values and Error reports the first
// failure.
package binary
