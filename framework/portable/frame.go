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

// frame is the state of one object read in progress.
type frame struct {
	typeID    int32
	pos       int // stream position of the object header
	rawOffset int // offset of the raw section from pos
	end       int // stream position after the object
	raw       bool
	fields    *tracker
}

func (f frame) fieldsStart() int { return f.pos + HeaderLength }
func (f frame) fieldsEnd() int   { return f.pos + f.rawOffset }

func (r *Reader) push(f frame) { r.frames = append(r.frames, f) }

func (r *Reader) pop() { r.frames = r.frames[:len(r.frames)-1] }

func (r *Reader) top() *frame {
	if len(r.frames) == 0 {
		return nil
	}
	return &r.frames[len(r.frames)-1]
}

// markRaw locks the current object out of named reads.
func (r *Reader) markRaw() {
	if f := r.top(); f != nil {
		r.frames[len(r.frames)-1] = frame{
			typeID:    f.typeID,
			pos:       f.pos,
			rawOffset: f.rawOffset,
			end:       f.end,
			raw:       true,
			fields:    f.fields,
		}
	}
}

// handles maps stream positions of objects to their decoded values.
type handles struct {
	slots []interface{}
	index map[int]int
}

func (h *handles) get(pos int) (interface{}, bool) {
	i, ok := h.index[pos]
	if !ok {
		return nil, false
	}
	return h.slots[i], true
}

func (h *handles) add(pos int, v interface{}) error {
	if h.index == nil {
		h.index = map[int]int{}
	}
	if _, dup := h.index[pos]; dup {
		return malformed(pos, "Object at %d decoded twice", pos)
	}
	h.index[pos] = len(h.slots)
	h.slots = append(h.slots, v)
	return nil
}

// Handles returns the number of objects registered for handle resolution.
func (r *Reader) Handles() int { return len(r.handles.slots) }
