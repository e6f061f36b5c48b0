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

package selection

import (
	"time"

	"github.com/walteh/retext/pkg/uiprobe"
)

// 📸 Snapshot is one observed selection state: what text was selected, where,
// and in which application, at one point in time. Immutable once created;
// superseded by the next snapshot or a cleared event. Text is never empty —
// empty selections are reported as cleared, not as a snapshot.
type Snapshot struct {
	Text       string
	App        uiprobe.AppInfo
	Bounds     uiprobe.Rect
	CapturedAt time.Time
}

// 🏷️ EventKind classifies a monitor event
type EventKind int

const (
	// EventChanged reports a new non-empty selection
	EventChanged EventKind = iota

	// EventCleared reports that the previous selection became empty,
	// emitted exactly once per transition
	EventCleared

	// EventPermissionRequired reports that introspection access is denied,
	// emitted once; the monitor does not poll while denied
	EventPermissionRequired
)

// String returns the kind's name
func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "selection-changed"
	case EventCleared:
		return "selection-cleared"
	case EventPermissionRequired:
		return "permission-required"
	}
	return "unknown"
}

// 📨 Event is one monitor notification. Snapshot is set only for EventChanged.
type Event struct {
	Kind     EventKind
	Snapshot *Snapshot
}
