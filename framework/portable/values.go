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
	"math/big"
	"time"
)

// Decimal is an arbitrary precision decimal number: Unscaled × 10^-Scale.
type Decimal struct {
	Unscaled *big.Int
	Scale    int32
}

// NewDecimal returns the Decimal unscaled × 10^-scale.
func NewDecimal(unscaled int64, scale int32) *Decimal {
	return &Decimal{Unscaled: big.NewInt(unscaled), Scale: scale}
}

// Rat returns the exact value of d as a rational.
func (d *Decimal) Rat() *big.Rat {
	r := new(big.Rat).SetInt(d.Unscaled)
	if d.Scale == 0 {
		return r
	}
	scale := d.Scale
	if scale < 0 {
		scale = -scale
	}
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	if d.Scale > 0 {
		return r.Quo(r, new(big.Rat).SetInt(pow))
	}
	return r.Mul(r, new(big.Rat).SetInt(pow))
}

func (d *Decimal) String() string {
	if d == nil || d.Unscaled == nil {
		return "<nil>"
	}
	if d.Scale <= 0 {
		return d.Rat().FloatString(0)
	}
	return d.Rat().FloatString(int(d.Scale))
}

// Enum is an enumeration value: the ordinal of a constant of the enum type
// identified by TypeID.
type Enum struct {
	TypeID  int32
	Ordinal int32
}

// MapEntry is a single key value pair.
type MapEntry struct {
	Key   interface{}
	Value interface{}
}

// holder is implemented by the private wrapper types used to carry a value
// through the object path of the format. Decoded holders are replaced by the
// value they hold.
type holder interface {
	held() interface{}
}

type timeHolder struct{ t time.Time }

func (h *timeHolder) held() interface{} { return h.t }

func unwrapHolder(v interface{}) interface{} {
	if h, ok := v.(holder); ok {
		return h.held()
	}
	return v
}

func fromTimestamp(millis int64, nanos int32) time.Time {
	return time.UnixMilli(millis).Add(time.Duration(nanos)).UTC()
}
