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

import "fmt"

// Mode controls how nested user objects are materialized.
type Mode int

const (
	// FullDeserialize builds instances of the registered target types.
	FullDeserialize Mode = iota
	// KeepWrapped keeps objects that were written in wrapped form wrapped,
	// but fully deserializes everything else.
	KeepWrapped
	// ForceWrapped returns every user object as a *Wrapped without invoking
	// its reader.
	ForceWrapped
)

func (m Mode) String() string {
	switch m {
	case FullDeserialize:
		return "FullDeserialize"
	case KeepWrapped:
		return "KeepWrapped"
	case ForceWrapped:
		return "ForceWrapped"
	default:
		return fmt.Sprintf("Mode<%d>", int(m))
	}
}

// ParseMode returns the Mode with the given name.
func ParseMode(name string) (Mode, error) {
	for _, m := range []Mode{FullDeserialize, KeepWrapped, ForceWrapped} {
		if m.String() == name {
			return m, nil
		}
	}
	switch name {
	case "full":
		return FullDeserialize, nil
	case "keep":
		return KeepWrapped, nil
	case "force", "wrapped":
		return ForceWrapped, nil
	}
	return FullDeserialize, fmt.Errorf("Unknown mode %q", name)
}
