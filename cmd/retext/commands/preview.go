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

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/walteh/retext/pkg/diff"
	"gitlab.com/tozd/go/errors"
)

// The three preview layouts consume the same segment sequence; they differ
// only in arrangement, never in computed content.

// renderPreview dispatches on the requested view name
func renderPreview(w io.Writer, segments []diff.Segment, view string) error {
	switch view {
	case "unified", "":
		renderUnified(w, segments)
	case "side-by-side":
		renderSideBySide(w, segments)
	case "inline":
		renderInline(w, segments)
	default:
		return errors.Errorf("unknown preview view %q", view)
	}
	return nil
}

// renderUnified prints a single interleaved column with per-segment markers.
// Delete/insert pairs of equal length collapse into modified rows.
func renderUnified(w io.Writer, segments []diff.Segment) {
	for _, seg := range diff.Coalesced(segments) {
		switch seg.Kind {
		case diff.Unchanged:
			fmt.Fprintf(w, "  %s\n", seg.Text)
		case diff.Deleted:
			fmt.Fprintf(w, "%s\n", color.New(color.FgRed).Sprintf("- %s", seg.Text))
		case diff.Inserted:
			fmt.Fprintf(w, "%s\n", color.New(color.FgGreen).Sprintf("+ %s", seg.Text))
		case diff.Modified:
			fmt.Fprintf(w, "%s\n", color.New(color.FgBlue).Sprintf("~ %s", seg.Text))
		}
	}
}

// renderSideBySide prints original and candidate as two parallel columns
func renderSideBySide(w io.Writer, segments []diff.Segment) {
	var left, right []string
	for _, seg := range segments {
		switch seg.Kind {
		case diff.Unchanged:
			left = append(left, seg.Text)
			right = append(right, seg.Text)
		case diff.Deleted:
			left = append(left, color.New(color.FgRed).Sprint(seg.Text))
		case diff.Inserted, diff.Modified:
			right = append(right, color.New(color.FgGreen).Sprint(seg.Text))
		}
	}
	panels := pterm.Panels{{
		{Data: strings.Join(left, "\n")},
		{Data: strings.Join(right, "\n")},
	}}
	rendered, err := pterm.DefaultPanel.WithPanels(panels).WithPadding(4).Srender()
	if err != nil {
		// Fall back to the unified layout rather than losing the preview.
		renderUnified(w, segments)
		return
	}
	fmt.Fprint(w, rendered)
}

// renderInline prints segment-by-segment with coloring and no line structure
func renderInline(w io.Writer, segments []diff.Segment) {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case diff.Unchanged:
			b.WriteString(seg.Text)
		case diff.Deleted:
			b.WriteString(color.New(color.FgRed, color.CrossedOut).Sprint(seg.Text))
		case diff.Inserted, diff.Modified:
			b.WriteString(color.New(color.FgGreen).Sprint(seg.Text))
		}
	}
	fmt.Fprintln(w, b.String())
}
