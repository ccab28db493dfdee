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

// Package fault holds the error primitives shared by the decoder packages.
package fault

// Const is the type for constant error values.
// Error kinds are declared as Const values so that they can be compared with
// errors.Is after being wrapped with position information.
type Const string

// Error implements error for Const returning the string value of the const.
func (e Const) Error() string { return string(e) }

// InvalidErrorType is the error returned by From when the type is not an error.
const InvalidErrorType = Const("Invalid type for error")

// From converts from any value to an error safely.
// If the value is a nil, an untyped nil is returned.
// If the value is not nil, but does not implement error, InvalidErrorType
// is returned.
func From(value interface{}) error {
	switch err := value.(type) {
	case nil:
		return nil
	case error:
		return err
	default:
		return InvalidErrorType
	}
}

type (
	// List is the type for a list of errors.
	List []error
	// One is the type for something that keeps only the first error it is
	// given. Readers use it to hold their sticky error state.
	One struct{ err error }
)

// First returns the first error added to it.
func (l *List) First() error {
	if len(*l) == 0 {
		return nil
	}
	return (*l)[0]
}

// Collect adds an error to the list. nil errors are ignored.
func (l *List) Collect(err error) {
	if err != nil {
		*l = append(*l, err)
	}
}

// First returns the first error collected.
func (o *One) First() error {
	return o.err
}

// Collect stores err if no error has been stored yet.
func (o *One) Collect(err error) {
	if o.err != nil {
		return
	}
	o.err = err
}

// Reset drops the stored error and returns it.
func (o *One) Reset() error {
	err := o.err
	o.err = nil
	return err
}
