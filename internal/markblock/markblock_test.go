package markblock

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rigup-dev/rigup/internal/output"
)

const (
	startMarker = "# === X START ==="
	endMarker   = "# === X END ==="
)

// writeFile writes content to a temp file and returns its path.
func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

// readFile reads a file and fails the test on error.
func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read test file: %v", err)
	}
	return string(content)
}

func TestInstall(t *testing.T) {
	tests := []struct {
		name    string
		before  string
		block   []string
		want    string
		missing bool // start from a non-existent file
	}{
		{
			name:   "replaces existing block and moves it to the end",
			before: "foo\n# === X START ===\nold\n# === X END ===\nbar\n",
			block:  []string{"new"},
			want:   "foo\nbar\n\n# === X START ===\nnew\n# === X END ===\n",
		},
		{
			name:    "missing file gets separator line plus block",
			missing: true,
			block:   []string{"new"},
			want:    "\n# === X START ===\nnew\n# === X END ===\n",
		},
		{
			name:   "empty file treated like missing",
			before: "",
			block:  []string{"new"},
			want:   "\n# === X START ===\nnew\n# === X END ===\n",
		},
		{
			name:   "fresh append after existing content",
			before: "alias ll='ls -l'\n",
			block:  []string{"export PATH=$HOME/.local/bin:$PATH"},
			want:   "alias ll='ls -l'\n\n# === X START ===\nexport PATH=$HOME/.local/bin:$PATH\n# === X END ===\n",
		},
		{
			name:   "empty block lines render adjacent markers",
			before: "keep\n",
			block:  nil,
			want:   "keep\n\n# === X START ===\n# === X END ===\n",
		},
		{
			name:   "multi-line block preserved in order",
			before: "top\n",
			block:  []string{"one", "two", "three"},
			want:   "top\n\n# === X START ===\none\ntwo\nthree\n# === X END ===\n",
		},
		{
			name:   "unrelated blank runs outside the block stay intact",
			before: "a\n\n\nb\n",
			block:  []string{"x"},
			want:   "a\n\n\nb\n\n# === X START ===\nx\n# === X END ===\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path string
			if tt.missing {
				path = filepath.Join(t.TempDir(), "target.txt")
			} else {
				path = writeFile(t, tt.before)
			}

			if err := Install(path, startMarker, endMarker, tt.block); err != nil {
				t.Fatalf("Install() error = %v", err)
			}

			got := readFile(t, path)
			if got != tt.want {
				t.Errorf("file content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstall_Idempotent(t *testing.T) {
	path := writeFile(t, "foo\nbar\n")
	block := []string{"line A", "line B"}

	if err := Install(path, startMarker, endMarker, block); err != nil {
		t.Fatalf("first Install() error = %v", err)
	}
	first := readFile(t, path)

	if err := Install(path, startMarker, endMarker, block); err != nil {
		t.Fatalf("second Install() error = %v", err)
	}
	second := readFile(t, path)

	if first != second {
		t.Errorf("double install not idempotent:\nfirst:  %q\nsecond: %q", first, second)
	}

	if strings.Count(second, startMarker) != 1 {
		t.Errorf("expected exactly one start marker, got %d", strings.Count(second, startMarker))
	}
}

func TestInstall_UpdatedContentReplacesOld(t *testing.T) {
	path := writeFile(t, "prefix\n")

	if err := Install(path, startMarker, endMarker, []string{"v1"}); err != nil {
		t.Fatalf("Install(v1) error = %v", err)
	}
	if err := Install(path, startMarker, endMarker, []string{"v2"}); err != nil {
		t.Fatalf("Install(v2) error = %v", err)
	}

	got := readFile(t, path)
	if strings.Contains(got, "v1") {
		t.Errorf("old block content still present: %q", got)
	}
	if !strings.Contains(got, "v2") {
		t.Errorf("new block content missing: %q", got)
	}
	if strings.Count(got, startMarker) != 1 {
		t.Errorf("expected exactly one block, got %d start markers", strings.Count(got, startMarker))
	}
}

func TestInstall_PreservesSurroundingContent(t *testing.T) {
	before := "# user settings\nexport EDITOR=nvim\n\n# === X START ===\nold\n# === X END ===\nalias v=nvim\n"
	path := writeFile(t, before)

	if err := Install(path, startMarker, endMarker, []string{"new"}); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	got := readFile(t, path)
	for _, keep := range []string{"# user settings", "export EDITOR=nvim", "alias v=nvim"} {
		if !strings.Contains(got, keep) {
			t.Errorf("surrounding content %q lost: %q", keep, got)
		}
	}
}

func TestInstall_EmptyMarkersRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.txt")

	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"empty start", "", endMarker},
		{"empty end", startMarker, ""},
		{"whitespace start", "   ", endMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Install(path, tt.start, tt.end, []string{"x"})
			if err == nil {
				t.Fatal("expected error for empty marker")
			}
			if code := output.GetExitCode(err); code != output.ExitUserError {
				t.Errorf("exit code = %d, want %d", code, output.ExitUserError)
			}
		})
	}
}

func TestInstall_DuplicateBlockRejected(t *testing.T) {
	before := "# === X START ===\na\n# === X END ===\nmiddle\n# === X START ===\nb\n# === X END ===\n"
	path := writeFile(t, before)

	err := Install(path, startMarker, endMarker, []string{"new"})
	if err == nil {
		t.Fatal("expected error for duplicate blocks")
	}
	if !errors.Is(err, ErrDuplicateBlock) {
		t.Errorf("errors.Is(err, ErrDuplicateBlock) = false, err = %v", err)
	}
	if code := output.GetExitCode(err); code != output.ExitConflict {
		t.Errorf("exit code = %d, want %d", code, output.ExitConflict)
	}

	// The file must be left untouched on conflict.
	if got := readFile(t, path); got != before {
		t.Errorf("file modified despite conflict:\ngot:  %q\nwant: %q", got, before)
	}
}

func TestInstall_NestedStartRejected(t *testing.T) {
	before := "# === X START ===\n# === X START ===\n# === X END ===\n"
	path := writeFile(t, before)

	err := Install(path, startMarker, endMarker, []string{"x"})
	if !errors.Is(err, ErrDuplicateBlock) {
		t.Errorf("errors.Is(err, ErrDuplicateBlock) = false, err = %v", err)
	}
}

func TestInstall_UnterminatedBlockRejected(t *testing.T) {
	path := writeFile(t, "before\n# === X START ===\ndangling\n")

	err := Install(path, startMarker, endMarker, []string{"x"})
	if err == nil {
		t.Fatal("expected error for unterminated block")
	}
	if !errors.Is(err, ErrUnterminatedBlock) {
		t.Errorf("errors.Is(err, ErrUnterminatedBlock) = false, err = %v", err)
	}
	if code := output.GetExitCode(err); code != output.ExitConflict {
		t.Errorf("exit code = %d, want %d", code, output.ExitConflict)
	}
}

func TestInstall_MarkerInsideLongerLineIgnored(t *testing.T) {
	// A marker embedded in a longer line is unrelated content, not a block.
	before := "echo '# === X START === is a marker'\n"
	path := writeFile(t, before)

	if err := Install(path, startMarker, endMarker, []string{"x"}); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	got := readFile(t, path)
	if !strings.Contains(got, "echo '# === X START === is a marker'") {
		t.Errorf("embedded-marker line modified: %q", got)
	}
	if strings.Count(got, "# === X END ===") != 1 {
		t.Errorf("expected one real end marker, got: %q", got)
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name        string
		before      string
		want        string
		wantChanged bool
	}{
		{
			name:        "removes block and separator",
			before:      "foo\nbar\n\n# === X START ===\nx\n# === X END ===\n",
			want:        "foo\nbar\n",
			wantChanged: true,
		},
		{
			name:        "block only leaves empty file",
			before:      "\n# === X START ===\nx\n# === X END ===\n",
			want:        "",
			wantChanged: true,
		},
		{
			name:        "absent block is a no-op",
			before:      "foo\nbar\n",
			want:        "foo\nbar\n",
			wantChanged: false,
		},
		{
			name:        "mid-file block removed",
			before:      "a\n# === X START ===\nx\n# === X END ===\nb\n",
			want:        "a\nb\n",
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.before)

			changed, err := Remove(path, startMarker, endMarker)
			if err != nil {
				t.Fatalf("Remove() error = %v", err)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}

			if got := readFile(t, path); got != tt.want {
				t.Errorf("file content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemove_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.txt")

	changed, err := Remove(path, startMarker, endMarker)
	if err != nil {
		t.Fatalf("Remove() on missing file error = %v", err)
	}
	if changed {
		t.Error("changed = true for missing file, want false")
	}
}

func TestRemove_DuplicateBlockRejected(t *testing.T) {
	before := "# === X START ===\na\n# === X END ===\n# === X START ===\nb\n# === X END ===\n"
	path := writeFile(t, before)

	_, err := Remove(path, startMarker, endMarker)
	if !errors.Is(err, ErrDuplicateBlock) {
		t.Errorf("errors.Is(err, ErrDuplicateBlock) = false, err = %v", err)
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantOK  bool
		wantErr error
	}{
		{
			name:    "returns interior lines only",
			content: "a\n# === X START ===\none\ntwo\n# === X END ===\nb\n",
			want:    []string{"one", "two"},
			wantOK:  true,
		},
		{
			name:    "empty block body",
			content: "# === X START ===\n# === X END ===\n",
			want:    nil,
			wantOK:  true,
		},
		{
			name:    "no block",
			content: "a\nb\n",
			wantOK:  false,
		},
		{
			name:    "duplicate block errors",
			content: "# === X START ===\na\n# === X END ===\n# === X START ===\nb\n# === X END ===\n",
			wantErr: ErrDuplicateBlock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Extract(tt.content, startMarker, endMarker)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("lines = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractFile_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.txt")

	lines, ok, err := ExtractFile(path, startMarker, endMarker)
	if err != nil {
		t.Fatalf("ExtractFile() error = %v", err)
	}
	if ok || lines != nil {
		t.Errorf("missing file should read as no block, got ok=%v lines=%v", ok, lines)
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"marker on own line", "a\n# === X START ===\nb\n", true},
		{"marker with surrounding whitespace", "  # === X START ===  \n", true},
		{"marker embedded in longer line", "echo '# === X START ==='\n", false},
		{"no marker", "a\nb\n", false},
		{"empty content", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.content, startMarker); got != tt.want {
				t.Errorf("Contains() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContainsFile(t *testing.T) {
	path := writeFile(t, "x\n# === X START ===\ny\n# === X END ===\n")
	if !ContainsFile(path, startMarker) {
		t.Error("ContainsFile() = false for file with block")
	}

	missing := filepath.Join(t.TempDir(), "nope.txt")
	if ContainsFile(missing, startMarker) {
		t.Error("ContainsFile() = true for missing file")
	}
}
