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

// Package diff computes human-reviewable change segments between an original
// text and a candidate replacement. The engine is presentation-agnostic: it
// returns an ordered segment sequence (insertion order = document order) and
// callers choose a rendering (side-by-side, unified, inline).
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// 🏷️ Kind classifies one segment of comparison output
type Kind int

const (
	Unchanged Kind = iota
	Inserted
	Deleted
	Modified
)

// String returns the kind's name
func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Inserted:
		return "inserted"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	}
	return "unknown"
}

// 📐 Segment is one contiguous unit of comparison output. Line is the
// segment's line index within its source document (the original for deleted
// segments, the candidate otherwise); word-level segments carry -1.
type Segment struct {
	Kind Kind
	Text string
	Line int
}

// Lines computes a minimal-edit-distance line diff of original against
// candidate: LCS over the two line sequences (O(n·m) table, O(n+m)
// backtrack), then a simultaneous walk classifying each line. Ties between
// equal-length subsequences are broken by always preferring the earliest
// original line, so repeated runs on identical input produce identical
// output.
func Lines(original, candidate string) []Segment {
	a := strings.Split(original, "\n")
	b := strings.Split(candidate, "\n")

	// lcs[i][j] = length of the LCS of a[i:] and b[j:]
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	segments := make([]Segment, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			segments = append(segments, Segment{Kind: Unchanged, Text: b[j], Line: j})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			segments = append(segments, Segment{Kind: Deleted, Text: a[i], Line: i})
			i++
		default:
			segments = append(segments, Segment{Kind: Inserted, Text: b[j], Line: j})
			j++
		}
	}
	for ; i < len(a); i++ {
		segments = append(segments, Segment{Kind: Deleted, Text: a[i], Line: i})
	}
	for ; j < len(b); j++ {
		segments = append(segments, Segment{Kind: Inserted, Text: b[j], Line: j})
	}
	return segments
}

// Inline computes a word-level diff of two short strings via diffmatchpatch
// with semantic cleanup. This upgrades the coarse whole-string fallback to a
// real sub-line diff; diffmatchpatch is deterministic for identical inputs.
// Segments carry Line -1.
func Inline(original, candidate string) []Segment {
	if original == candidate {
		return []Segment{{Kind: Unchanged, Text: original, Line: -1}}
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, candidate, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		seg := Segment{Text: d.Text, Line: -1}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			seg.Kind = Unchanged
		case diffmatchpatch.DiffInsert:
			seg.Kind = Inserted
		case diffmatchpatch.DiffDelete:
			seg.Kind = Deleted
		}
		segments = append(segments, seg)
	}
	return segments
}

// Coalesced pairs each run of deleted lines immediately followed by an
// equal-length run of inserted lines into Modified segments carrying the new
// text. This is a rendering convenience: the result no longer satisfies the
// reconstruction properties of the raw sequence.
func Coalesced(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for i := 0; i < len(segments); {
		if segments[i].Kind != Deleted {
			out = append(out, segments[i])
			i++
			continue
		}
		del := i
		for del < len(segments) && segments[del].Kind == Deleted {
			del++
		}
		ins := del
		for ins < len(segments) && segments[ins].Kind == Inserted {
			ins++
		}
		if del-i == ins-del {
			for k := del; k < ins; k++ {
				out = append(out, Segment{Kind: Modified, Text: segments[k].Text, Line: segments[k].Line})
			}
		} else {
			out = append(out, segments[i:ins]...)
		}
		i = ins
	}
	return out
}
