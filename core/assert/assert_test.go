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

package assert_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Rudiarius/ignite/core/assert"
	pkgerrors "github.com/pkg/errors"
)

type recorder struct{ errors []string }

func (r *recorder) Error(args ...interface{}) { r.errors = append(r.errors, args[0].(string)) }

func TestPassingAssertionsAreSilent(t *testing.T) {
	r := &recorder{}
	a := assert.To(r)
	x := 3
	a.For("equals").That(3).Equals(3)
	a.For("deep").That([]int{1, 2}).DeepEquals([]int{1, 2})
	a.For("nil").That((*int)(nil)).IsNil()
	a.For("same").That(&x).IsSameAs(&x)
	a.For("bool").ThatBoolean(true).IsTrue()
	a.For("int").ThatInteger(4).IsAtLeast(4)
	a.For("within").ThatInteger(4).IsWithin(0, 5)
	a.For("string").ThatString("portable").HasPrefix("port")
	a.For("error").ThatError(nil).Succeeded()
	if len(r.errors) != 0 {
		t.Errorf("Unexpected failures: %v", r.errors)
	}
}

func TestFailingAssertionsReport(t *testing.T) {
	r := &recorder{}
	a := assert.To(r)
	x, y := 3, 3
	a.For("equals").That(3).Equals(4)
	a.For("same").That(&x).IsSameAs(&y)
	a.For("failed").ThatError(nil).Failed()
	a.For("message").ThatError(errors.New("a")).HasMessage("b")
	a.For("offset").ThatInteger(5).IsWithin(0, 5)
	if len(r.errors) != 5 {
		t.Fatalf("Expected 5 failures, got %v", r.errors)
	}
	if !strings.HasPrefix(r.errors[0], "Error:equals") {
		t.Errorf("Unexpected failure text %q", r.errors[0])
	}
}

func TestErrorChains(t *testing.T) {
	r := &recorder{}
	a := assert.To(r)
	root := errors.New("root")
	wrapped := pkgerrors.Wrap(root, "context")
	a.For("cause").ThatError(wrapped).HasCause(root)
	a.For("is").ThatError(wrapped).Is(root)
	if len(r.errors) != 0 {
		t.Errorf("Unexpected failures: %v", r.errors)
	}
}

func TestWriterTarget(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.To(buf).For("decoded").ThatString("abc").Equals("abd")
	if !strings.Contains(buf.String(), "decoded") {
		t.Errorf("Expected the failure in the writer, got %q", buf.String())
	}
}
