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

// OnInteger is the result of calling ThatInteger on an Assertion.
// It provides numeric assertion tests for sizes, counts and stream offsets.
type OnInteger struct {
	Assertion
	value int
}

// ThatInteger returns an OnInteger for integer based assertions.
func (a Assertion) ThatInteger(value int) OnInteger {
	return OnInteger{Assertion: a, value: value}
}

func (o OnInteger) check(op string, expect int, ok bool) bool {
	return o.Compare(o.value, op, expect).Test(ok)
}

// Equals asserts that the supplied integer is equal to the expected integer.
func (o OnInteger) Equals(expect int) bool { return o.check("==", expect, o.value == expect) }

// NotEquals asserts that the supplied integer is not equal to the test integer.
func (o OnInteger) NotEquals(test int) bool { return o.check("!=", test, o.value != test) }

// IsAtLeast asserts that the integer is at least the supplied minimum.
func (o OnInteger) IsAtLeast(min int) bool { return o.check(">=", min, o.value >= min) }

// IsAtMost asserts that the integer is at most the supplied maximum.
func (o OnInteger) IsAtMost(max int) bool { return o.check("<=", max, o.value <= max) }

// IsWithin asserts that the integer lies in the half open range [start, end),
// as an offset into a buffer of end bytes would.
func (o OnInteger) IsWithin(start, end int) bool {
	if o.value < start {
		return o.check(">=", start, false)
	}
	return o.check("<", end, o.value < end)
}
