// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package replace

import (
	"sync"
	"time"

	"github.com/walteh/retext/pkg/uiprobe"
)

// DefaultHistoryCapacity bounds the undo history. Records can reference large
// text, so the history must not grow without bound over a long session.
const DefaultHistoryCapacity = 50

// 🧾 UndoRecord captures one successful replacement so it can be reversed.
// Start is the rune offset of Replacement within the value written, or -1
// when the committing strategy could not observe offsets (clipboard paste).
// All marks a replace-all-occurrences commit.
type UndoRecord struct {
	Original    string
	Replacement string
	Start       int
	All         bool
	CapturedAt  time.Time
	Target      TargetDescriptor
}

// 🎯 TargetDescriptor is an opaque description of the element a replacement
// was committed to: enough to attempt restoration, not guaranteed sufficient
// if the host application state has since changed.
type TargetDescriptor struct {
	App  uiprobe.AppInfo
	Role string
}

// 📚 History is a bounded ordered sequence of undo records, oldest evicted
// first. It is owned exclusively by the replacement engine; tests construct
// isolated instances rather than sharing ambient state.
type History struct {
	mu       sync.Mutex
	records  []UndoRecord
	capacity int
}

// 🏭 NewHistory creates a history with the given capacity (<= 0 means
// DefaultHistoryCapacity)
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

// Push appends a record, evicting the oldest when full
func (h *History) Push(rec UndoRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) >= h.capacity {
		h.records = h.records[len(h.records)-h.capacity+1:]
	}
	h.records = append(h.records, rec)
}

// Pop removes and returns the most recent record
func (h *History) Pop() (UndoRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) == 0 {
		return UndoRecord{}, false
	}
	rec := h.records[len(h.records)-1]
	h.records = h.records[:len(h.records)-1]
	return rec, true
}

// Len returns the number of stored records
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

// CanUndo reports whether a record is available
func (h *History) CanUndo() bool {
	return h.Len() > 0
}

// Clear empties the history. Called on session boundaries, never
// automatically on success, so successive operations remain undoable.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
}

// Capacity returns the configured capacity
func (h *History) Capacity() int {
	return h.capacity
}
