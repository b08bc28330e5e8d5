package output

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffLine is a single line of a computed diff.
// Kind is '+' for additions, '-' for deletions, ' ' for unchanged context.
type DiffLine struct {
	Kind rune   `json:"kind"`
	Text string `json:"text"`
}

// DiffLines computes a line-oriented diff between before and after.
// Used by plan and dry-run previews to show what a managed block would become.
func DiffLines(before, after string) []DiffLine {
	if before == after {
		return nil
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []DiffLine
	for _, d := range diffs {
		kind := ' '
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = '+'
		case diffmatchpatch.DiffDelete:
			kind = '-'
		case diffmatchpatch.DiffEqual:
			kind = ' '
		}
		for _, line := range splitDiffChunk(d.Text) {
			out = append(out, DiffLine{Kind: kind, Text: line})
		}
	}
	return out
}

// FormatDiff renders a diff as plain prefixed text, one line per entry.
func FormatDiff(lines []DiffLine) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteRune(l.Kind)
		sb.WriteByte(' ')
		sb.WriteString(l.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// CountChanges returns the number of added and removed lines in a diff.
func CountChanges(lines []DiffLine) (added, removed int) {
	for _, l := range lines {
		switch l.Kind {
		case '+':
			added++
		case '-':
			removed++
		}
	}
	return added, removed
}

// PrintDiff writes a diff with +/- prefixes, colored on a TTY.
// No-op in JSON mode; structured output carries the diff lines instead.
func (p *Printer) PrintDiff(lines []DiffLine) {
	if p.json {
		return
	}
	for _, l := range lines {
		rendered := fmt.Sprintf("%c %s", l.Kind, l.Text)
		switch l.Kind {
		case '+':
			rendered = p.styles.Success.Render(rendered)
		case '-':
			rendered = p.styles.Error.Render(rendered)
		default:
			rendered = p.styles.Muted.Render(rendered)
		}
		mustWrite(fmt.Fprintln(p.w, rendered))
	}
}

// splitDiffChunk splits a multi-line diff chunk into individual lines,
// dropping the trailing empty segment a final newline produces.
func splitDiffChunk(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
