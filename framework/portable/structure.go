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
	"context"

	"github.com/Rudiarius/ignite/core/log"
)

// Structure is an ordered list of the field names of a type, paired with
// their ids. A published Structure is never modified.
type Structure struct {
	names []string
	ids   []int32
}

// Len returns the number of fields in the structure.
func (s *Structure) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns a copy of the field names in order.
func (s *Structure) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

func (s *Structure) with(name string, id int32) *Structure {
	out := &Structure{
		names: make([]string, 0, s.Len()+1),
		ids:   make([]int32, 0, s.Len()+1),
	}
	if s != nil {
		out.names = append(out.names, s.names...)
		out.ids = append(out.ids, s.ids...)
	}
	out.names = append(out.names, name)
	out.ids = append(out.ids, id)
	return out
}

func (s *Structure) equals(o *Structure) bool {
	if s.Len() != o.Len() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if s.names[i] != o.names[i] {
			return false
		}
	}
	return true
}

// tracker follows the field requests of one object read, answering from
// the descriptor's expected structure while the requests match it.
type tracker struct {
	desc     *Descriptor
	expected *Structure
	actual   *Structure
	diverged bool
}

func newTracker(d *Descriptor) *tracker {
	return &tracker{desc: d, expected: d.Structure()}
}

func (t *tracker) fieldID(name string) int32 {
	idx := t.actual.Len()
	var id int32
	if !t.diverged && idx < t.expected.Len() && t.expected.names[idx] == name {
		id = t.expected.ids[idx]
	} else {
		t.diverged = true
		id = t.desc.fieldID(name)
	}
	t.actual = t.actual.with(name, id)
	return id
}

// update publishes the observed field order if it differs from, or extends,
// the expected one. A structure published concurrently by another reader
// wins if it was replaced after this read began.
func (t *tracker) update(ctx context.Context) {
	if t.actual.Len() == 0 || (!t.diverged && t.actual.Len() <= t.expected.Len()) {
		return
	}
	d := t.desc
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.structure != t.expected || d.structure.equals(t.actual) {
		return
	}
	d.structure = t.actual
	log.D(ctx, "Structure of %s updated to %v", d.Name(), t.actual.names)
}
