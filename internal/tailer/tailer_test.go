package tailer

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
}

func poll(t *testing.T, tl *Tailer) []string {
	t.Helper()
	lines, err := tl.Poll()
	if err != nil {
		t.Fatalf("Poll error: %v", err)
	}
	return lines
}

func TestPoll_NewLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, path, "old1\nold2\n")

	tl := Open(path, false)

	// Live tailing starts at end of file: nothing to read yet.
	if lines := poll(t, tl); lines != nil {
		t.Fatalf("initial poll = %v, want nil", lines)
	}

	appendFile(t, path, "new1\nnew2\n")
	lines := poll(t, tl)
	if len(lines) != 2 || lines[0] != "new1" || lines[1] != "new2" {
		t.Errorf("got %v, want [new1 new2]", lines)
	}

	// Nothing new: poll is a no-op.
	if lines := poll(t, tl); lines != nil {
		t.Errorf("repeat poll = %v, want nil", lines)
	}
}

func TestPoll_FromStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, path, "line1\nline2\n")

	tl := Open(path, true)
	lines := poll(t, tl)
	if len(lines) != 2 || lines[0] != "line1" || lines[1] != "line2" {
		t.Errorf("got %v, want [line1 line2]", lines)
	}
}

func TestPoll_PartialLineBuffered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	tl := Open(path, true)

	appendFile(t, path, "complete\nparti")
	lines := poll(t, tl)
	if len(lines) != 1 || lines[0] != "complete" {
		t.Fatalf("got %v, want [complete]", lines)
	}

	appendFile(t, path, "al line\n")
	lines = poll(t, tl)
	if len(lines) != 1 || lines[0] != "partial line" {
		t.Errorf("got %v, want [partial line]", lines)
	}
}

func TestPoll_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	tl := Open(path, false)

	// File does not exist yet: silent no-op.
	if lines := poll(t, tl); lines != nil {
		t.Fatalf("got %v, want nil", lines)
	}

	writeFile(t, path, "first\n")
	lines := poll(t, tl)
	if len(lines) != 1 || lines[0] != "first" {
		t.Errorf("got %v, want [first]", lines)
	}
}

func TestPoll_TruncationResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, path, "a\nb\nc\n")

	tl := Open(path, true)
	if got := len(poll(t, tl)); got != 3 {
		t.Fatalf("got %d lines, want 3", got)
	}

	// Rotation: new, shorter file replaces the old one.
	writeFile(t, path, "x\n")
	lines := poll(t, tl)
	if len(lines) != 1 || lines[0] != "x" {
		t.Errorf("got %v, want [x]", lines)
	}
	if tl.Position().Offset != 2 {
		t.Errorf("offset = %d, want 2", tl.Position().Offset)
	}
}

func TestPoll_TruncationDropsPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	tl := Open(path, true)

	appendFile(t, path, "stale fragment without newline")
	poll(t, tl)

	writeFile(t, path, "fresh\n")
	lines := poll(t, tl)
	if len(lines) != 1 || lines[0] != "fresh" {
		t.Errorf("got %v, want [fresh]", lines)
	}
}

func TestPoll_CRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, path, "one\r\ntwo\r\n")

	tl := Open(path, true)
	lines := poll(t, tl)
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("got %v, want [one two]", lines)
	}
}

func TestPoll_IncrementalMatchesSingleRead(t *testing.T) {
	dir := t.TempDir()
	content := "l1\nl2\nl3\nl4\nl5\n"

	// Incremental: write and poll in chunks.
	incPath := filepath.Join(dir, "inc.log")
	incTailer := Open(incPath, true)
	var incremental []string
	for _, chunk := range []string{"l1\nl2", "\nl3\n", "l4\nl5\n"} {
		appendFile(t, incPath, chunk)
		incremental = append(incremental, poll(t, incTailer)...)
	}

	// One-shot: whole file in a single poll.
	oncePath := filepath.Join(dir, "once.log")
	writeFile(t, oncePath, content)
	oneShot := poll(t, Open(oncePath, true))

	if len(incremental) != len(oneShot) {
		t.Fatalf("incremental %v, one-shot %v", incremental, oneShot)
	}
	for i := range oneShot {
		if incremental[i] != oneShot[i] {
			t.Errorf("line %d: incremental %q, one-shot %q", i, incremental[i], oneShot[i])
		}
	}
}

func TestOpen_LiveOffsetAtEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, path, "existing\n")

	tl := Open(path, false)
	if tl.Position().Offset != 9 {
		t.Errorf("offset = %d, want 9", tl.Position().Offset)
	}
}
