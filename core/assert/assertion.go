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

package assert

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"
	"unicode"
)

// Assertion is the type for the start of an assertion line.
// You construct an assertion from an Output using assert.For.
type Assertion struct {
	out *bytes.Buffer
	to  Output
}

// pretty writes a value to the output buffer, quoting strings and errors
// and printing byte slices as hex.
func (a Assertion) pretty(value interface{}) {
	switch value := value.(type) {
	case error:
		fmt.Fprintf(a.out, "`%v`", value)
	case string:
		fmt.Fprintf(a.out, "`%s`", value)
	case []byte:
		fmt.Fprintf(a.out, "[% x]", value)
	default:
		fmt.Fprintf(a.out, "%+v", value)
	}
}

// line writes values joined by tabs, then starts a new indented line.
func (a *Assertion) line(raw bool, values ...interface{}) *Assertion {
	for i, v := range values {
		if i != 0 {
			a.out.WriteString("\t")
		}
		if raw {
			fmt.Fprint(a.out, v)
		} else {
			a.pretty(v)
		}
	}
	a.out.WriteString("\n    ")
	return a
}

// Println prints the values pretty printed and then starts a new indented
// line.
func (a *Assertion) Println(values ...interface{}) *Assertion { return a.line(false, values...) }

// Printf writes a formatted unquoted string to the output buffer.
func (a *Assertion) Printf(format string, args ...interface{}) *Assertion {
	fmt.Fprintf(a.out, format, args...)
	return a
}

// Add appends a key value pair to the output buffer.
func (a *Assertion) Add(key string, values ...interface{}) *Assertion {
	a.out.WriteString(key)
	a.out.WriteString("\t\t")
	return a.line(false, values...)
}

// Got adds the standard "Got" entry to the output buffer.
func (a *Assertion) Got(values ...interface{}) *Assertion { return a.Add("Got", values...) }

func (a *Assertion) expect(raw bool, op string, values ...interface{}) *Assertion {
	a.out.WriteString("Expect\t")
	a.out.WriteString(op)
	a.out.WriteString("\t")
	return a.line(raw, values...)
}

// Expect adds the standard "Expect" entry to the output buffer.
func (a *Assertion) Expect(op string, values ...interface{}) *Assertion {
	return a.expect(false, op, values...)
}

// ExpectRaw adds the standard "Expect" entry to the output buffer, without pretty printing.
func (a *Assertion) ExpectRaw(op string, values ...interface{}) *Assertion {
	return a.expect(true, op, values...)
}

// Compare adds both the "Got" and "Expect" entries to the output buffer, with the operator being
// prepended to the expect list.
func (a *Assertion) Compare(value interface{}, op string, expect ...interface{}) *Assertion {
	return a.Got(value).Expect(op, expect...)
}

// CompareRaw is like Compare except it does not push the values through the pretty printer.
func (a *Assertion) CompareRaw(value interface{}, op string, expect ...interface{}) *Assertion {
	return a.Got(value).ExpectRaw(op, expect...)
}

// Test reports the pending output as an error if the condition is not true.
func (a *Assertion) Test(condition bool) bool {
	if !condition {
		a.commit()
	}
	return condition
}

// TestDeepEqual adds the entries for Got and Expect, then tests if they are the
// same using reflect.DeepEqual.
// reflect.DeepEqual terminates on cyclic graphs, which decoded object graphs
// frequently are.
func (a *Assertion) TestDeepEqual(value, expect interface{}) bool {
	return a.Compare(value, "deep ==", expect).Test(reflect.DeepEqual(value, expect))
}

// TestDeepNotEqual adds the entries for Got and Expect, then tests that they
// differ using reflect.DeepEqual.
func (a *Assertion) TestDeepNotEqual(value, expect interface{}) bool {
	return a.Compare(value, "deep !=", expect).Test(!reflect.DeepEqual(value, expect))
}

// commit aligns the output columns and writes them to the output as an error.
func (a Assertion) commit() {
	buf := &bytes.Buffer{}
	tabs := tabwriter.NewWriter(buf, 1, 4, 1, ' ', tabwriter.StripEscape)
	tabs.Write(a.out.Bytes())
	tabs.Flush()
	a.to.Error("Error:" + strings.TrimRightFunc(buf.String(), unicode.IsSpace))
}
