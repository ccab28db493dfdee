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

package portable

import (
	"bytes"
	"fmt"

	"github.com/Rudiarius/ignite/core/fault"
)

// The kinds of decode failure. Every error returned by a Reader satisfies
// errors.Is against exactly one of these.
const (
	// ErrMalformed is returned for unknown tags, version mismatches and
	// truncated or inconsistent data.
	ErrMalformed = fault.Const("Malformed portable stream")
	// ErrUnknownType is returned when an object's type id has no descriptor,
	// or the descriptor has no target type.
	ErrUnknownType = fault.Const("Unknown portable type")
	// ErrInstantiation is returned when an instance of the target type could
	// not be created.
	ErrInstantiation = fault.Const("Failed to create type instance")
	// ErrInvalidUsage is returned when a reader is used incorrectly, such as
	// reading a named field after switching to the raw reader.
	ErrInvalidUsage = fault.Const("Invalid portable reader usage")
)

// DecodeError describes a decode failure at a position in the stream.
type DecodeError struct {
	Kind     fault.Const // One of the Err constants.
	Pos      int         // Stream position of the value being decoded.
	Tag      byte        // The offending tag, if HasTag.
	HasTag   bool        // Whether Tag is set.
	TypeID   int32       // The type id, for type related failures.
	TypeName string      // The type name, if known.
	Msg      string      // Additional detail.
	Err      error       // The underlying cause, if any.
}

func (e *DecodeError) Error() string {
	b := &bytes.Buffer{}
	b.WriteString(string(e.Kind))
	fmt.Fprintf(b, " [pos=%d", e.Pos)
	if e.HasTag {
		fmt.Fprintf(b, ", tag=%d", e.Tag)
	}
	if e.Kind == ErrUnknownType || e.Kind == ErrInstantiation {
		fmt.Fprintf(b, ", typeId=%d", e.TypeID)
		if e.TypeName != "" {
			fmt.Fprintf(b, ", typeName=%s", e.TypeName)
		}
	}
	b.WriteString("]")
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is the kind of this error.
func (e *DecodeError) Is(target error) bool {
	k, ok := target.(fault.Const)
	return ok && k == e.Kind
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error { return e.Err }

// Cause returns the underlying cause, or the error itself if there is none.
// It makes github.com/pkg/errors.Cause stop at the first decode error.
func (e *DecodeError) Cause() error {
	if e.Err == nil {
		return e
	}
	return e.Err
}

func malformed(pos int, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: ErrMalformed, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func badTag(pos int, tag byte, format string, args ...interface{}) *DecodeError {
	err := malformed(pos, format, args...)
	err.Tag, err.HasTag = tag, true
	return err
}

func misuse(pos int, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: ErrInvalidUsage, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func truncated(pos int, cause error) *DecodeError {
	return &DecodeError{Kind: ErrMalformed, Pos: pos, Msg: "truncated stream", Err: cause}
}
