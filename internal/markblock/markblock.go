// Package markblock manages marker-delimited text blocks inside
// configuration files.
//
// A managed block is bounded by two sentinel lines (the start and end
// markers). Install replaces the block wholesale and appends it at the end
// of the file; content outside the markers is never touched. A file carrying
// more than one copy of a marker pair is invalid state and is rejected as a
// conflict instead of guessed at.
package markblock

import (
	"errors"
	"os"
	"strings"

	"github.com/rigup-dev/rigup/internal/output"
)

// Sentinel errors for invalid block state. Both surface as conflicts
// (exit code 3) with the offending path in the message.
var (
	ErrDuplicateBlock    = errors.New("duplicate managed block markers")
	ErrUnterminatedBlock = errors.New("start marker without matching end marker")
)

// Install adds or replaces the managed block in the file at path.
//
// If the file contains the start marker, the existing block (start through
// end, inclusive) is deleted first. The block is then appended at the end:
// a blank separator line, the start marker, blockLines in order, the end
// marker. A missing file is created. blockLines may be empty.
func Install(path, start, end string, blockLines []string) error {
	if err := validateMarkers(start, end); err != nil {
		return err
	}

	text, err := readIfExists(path)
	if err != nil {
		return err
	}

	if Contains(text, start) {
		res, scanErr := scan(text, start, end)
		if scanErr != nil {
			return conflict(path, scanErr)
		}
		text = strings.Join(res.kept, "\n")
	}

	base := strings.TrimRight(text, "\n")
	block := renderBlock(start, blockLines, end)

	var next string
	if base == "" {
		next = "\n" + block + "\n"
	} else {
		next = base + "\n\n" + block + "\n"
	}

	if err := os.WriteFile(path, []byte(next), 0o644); err != nil {
		return output.NewSystemErrorWithCause("cannot write "+path, err)
	}
	return nil
}

// Remove deletes the managed block from the file at path.
// A missing file or absent block is a no-op. Returns true when the file
// was rewritten. The blank separator Install added is cleaned up; a file
// left with nothing but whitespace is truncated to empty.
func Remove(path, start, end string) (bool, error) {
	if err := validateMarkers(start, end); err != nil {
		return false, err
	}

	text, err := readIfExists(path)
	if err != nil {
		return false, err
	}
	if !Contains(text, start) {
		return false, nil
	}

	res, scanErr := scan(text, start, end)
	if scanErr != nil {
		return false, conflict(path, scanErr)
	}

	remaining := strings.Join(res.kept, "\n")
	for strings.Contains(remaining, "\n\n\n") {
		remaining = strings.ReplaceAll(remaining, "\n\n\n", "\n\n")
	}
	if strings.TrimSpace(remaining) == "" {
		remaining = ""
	} else {
		remaining = strings.TrimRight(remaining, "\n") + "\n"
	}

	if err := os.WriteFile(path, []byte(remaining), 0o644); err != nil {
		return false, output.NewSystemErrorWithCause("cannot write "+path, err)
	}
	return true, nil
}

// Extract returns the lines between the markers (markers excluded).
// ok is false when content holds no block.
func Extract(content, start, end string) (lines []string, ok bool, err error) {
	if err := validateMarkers(start, end); err != nil {
		return nil, false, err
	}
	if !Contains(content, start) {
		return nil, false, nil
	}
	res, scanErr := scan(content, start, end)
	if scanErr != nil {
		return nil, false, scanErr
	}
	return res.body, true, nil
}

// ExtractFile is Extract against a file. A missing file reads as no block.
func ExtractFile(path, start, end string) (lines []string, ok bool, err error) {
	text, err := readIfExists(path)
	if err != nil {
		return nil, false, err
	}
	lines, ok, scanErr := Extract(text, start, end)
	if scanErr != nil {
		return nil, false, conflict(path, scanErr)
	}
	return lines, ok, nil
}

// Contains reports whether content has a line matching the start marker.
// Matching is whole-line after whitespace trimming, so a marker embedded
// inside a longer line does not count as a managed block.
func Contains(content, start string) bool {
	want := strings.TrimSpace(start)
	if want == "" {
		return false
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == want {
			return true
		}
	}
	return false
}

// ContainsFile is Contains against a file. Unreadable files read as false.
func ContainsFile(path, start string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return Contains(string(content), start)
}

// scanResult splits content into lines outside the block and the block body.
type scanResult struct {
	kept []string
	body []string
}

// scan walks content line by line, separating the single managed block from
// everything else. Returns ErrDuplicateBlock when a second block or a nested
// start marker is seen, ErrUnterminatedBlock when the end marker never comes.
func scan(content, start, end string) (scanResult, error) {
	startT := strings.TrimSpace(start)
	endT := strings.TrimSpace(end)

	var res scanResult
	inside := false
	blocks := 0

	for _, line := range strings.Split(content, "\n") {
		t := strings.TrimSpace(line)

		if inside {
			if t == endT {
				inside = false
				blocks++
				continue
			}
			if t == startT {
				return scanResult{}, ErrDuplicateBlock
			}
			res.body = append(res.body, line)
			continue
		}

		if t == startT {
			if blocks > 0 {
				return scanResult{}, ErrDuplicateBlock
			}
			inside = true
			continue
		}
		res.kept = append(res.kept, line)
	}

	if inside {
		return scanResult{}, ErrUnterminatedBlock
	}
	return res, nil
}

// renderBlock joins the markers and body into the text that lands in the file.
func renderBlock(start string, blockLines []string, end string) string {
	parts := make([]string, 0, len(blockLines)+2)
	parts = append(parts, start)
	parts = append(parts, blockLines...)
	parts = append(parts, end)
	return strings.Join(parts, "\n")
}

// validateMarkers rejects empty sentinel lines.
func validateMarkers(start, end string) error {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return output.NewUserError("block markers must be non-empty")
	}
	return nil
}

// readIfExists returns the file content, or "" for a missing file.
func readIfExists(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", output.NewSystemErrorWithCause("cannot read "+path, err)
	}
	return string(content), nil
}

// conflict wraps a scan sentinel with the offending path, keeping the
// sentinel reachable through errors.Is and the conflict exit code.
func conflict(path string, sentinel error) *output.ExitError {
	return &output.ExitError{
		Code:    output.ExitConflict,
		Message: path + ": " + sentinel.Error(),
		Cause:   sentinel,
	}
}
