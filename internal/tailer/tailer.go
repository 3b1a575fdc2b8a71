// Package tailer provides incremental, offset-tracking reads of a
// growing chat log file.
//
// The game client appends to chat.log continuously and occasionally
// flushes mid-line. The tailer therefore never emits a partial line:
// trailing bytes without a line break are buffered and prefixed to the
// next poll's read.
package tailer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Position identifies how far into a log file the tailer has read.
type Position struct {
	Path   string
	Offset int64
}

// Tailer reads newly appended complete lines from a single file.
// It is not safe for concurrent use; the watcher is its only caller.
type Tailer struct {
	path    string
	offset  int64
	partial []byte
}

// Open creates a Tailer for path. With fromStart set the first Poll
// reads from the beginning of the file (full replay); otherwise the
// offset starts at the current end of file (live tailing). A missing
// file is not an error: polling is a no-op until the file appears.
func Open(path string, fromStart bool) *Tailer {
	t := &Tailer{path: path}
	if fromStart {
		return t
	}
	if info, err := os.Stat(path); err == nil {
		t.offset = info.Size()
	}
	return t
}

// Position returns the current read position.
func (t *Tailer) Position() Position {
	return Position{Path: t.path, Offset: t.offset}
}

// Poll returns the complete lines appended since the last successful
// poll. It is idempotent and non-duplicating: each appended line is
// returned exactly once, in file order.
//
// Truncation or rotation (file shrinking below the stored offset)
// resets the offset to zero; lines from a rotated file may then be
// re-emitted, which downstream consumers must tolerate. A missing file
// yields (nil, nil).
func (t *Tailer) Poll() ([]string, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", t.path, err)
	}

	size := info.Size()
	if size < t.offset {
		// Rotated or truncated: start over. Any buffered fragment
		// belonged to the old file and is dropped.
		t.offset = 0
		t.partial = nil
	}
	if size == t.offset {
		return nil, nil
	}

	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", t.path, err)
	}

	buf := make([]byte, size-t.offset)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read %s: %w", t.path, err)
	}
	t.offset += int64(n)

	data := append(t.partial, buf[:n]...)
	lines, rest := splitLines(data)
	t.partial = rest
	return lines, nil
}

// splitLines splits data at line breaks, returning complete lines and
// the trailing fragment (bytes after the last break, if any).
func splitLines(data []byte) ([]string, []byte) {
	var lines []string
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := data[:i]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if len(line) > 0 {
			// The client writes UTF-8 but occasionally emits garbage
			// bytes; decode lossily rather than dropping the line.
			lines = append(lines, strings.ToValidUTF8(string(line), "�"))
		}
		data = data[i+1:]
	}
	if len(data) == 0 {
		return lines, nil
	}
	rest := make([]byte, len(data))
	copy(rest, data)
	return lines, rest
}
