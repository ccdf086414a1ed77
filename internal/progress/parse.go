// Package progress renders a live terminal view over two kinds of
// long-running work: pg_basebackup streaming a base backup, and a
// restored cluster replaying WAL during recovery. It is a single-purpose
// sibling of a full interactive menu system: one model, driven by events
// fed from a parsing io.Writer or a poll loop, not a whole TUI.
package progress

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
)

// Event describes one update to report to the view.
type Event struct {
	// Message is the human-readable status line.
	Message string

	// Percent is the completion estimate in [0, 100]. Negative means
	// unknown (render an indeterminate spinner instead of a bar).
	Percent float64
}

// basebackupPercent matches pg_basebackup --progress output lines, e.g.
// "12345/67890 kB (42%)" or "12345/67890 kB (42%), 1/1 tablespace".
var basebackupPercent = regexp.MustCompile(`\((\d+)%\)`)

// BaseBackupWriter is an io.Writer that parses pg_basebackup's --progress
// stderr stream and forwards each update to onEvent. pg_basebackup writes
// progress updates separated by carriage returns rather than newlines, so
// lines are split on either.
type BaseBackupWriter struct {
	onEvent func(Event)
	buf     []byte
}

// NewBaseBackupWriter returns a writer that calls onEvent for every
// progress line it parses out of pg_basebackup's stderr.
func NewBaseBackupWriter(onEvent func(Event)) *BaseBackupWriter {
	return &BaseBackupWriter{onEvent: onEvent}
}

func (w *BaseBackupWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := indexAny(w.buf, '\r', '\n')
		if i < 0 {
			break
		}
		line := w.buf[:i]
		w.buf = w.buf[i+1:]
		w.emit(string(line))
	}
	return len(p), nil
}

func (w *BaseBackupWriter) emit(line string) {
	if line == "" {
		return
	}
	percent := -1.0
	if m := basebackupPercent.FindStringSubmatch(line); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			percent = float64(n)
		}
	}
	w.onEvent(Event{Message: line, Percent: percent})
}

func indexAny(b []byte, chars ...byte) int {
	for i, c := range b {
		for _, want := range chars {
			if c == want {
				return i
			}
		}
	}
	return -1
}

// ScanLines is a convenience for feeding a plain newline-delimited stream
// (used by tests and by any future line-oriented source) through the same
// Event shape as BaseBackupWriter.
func ScanLines(r io.Reader, onEvent func(Event)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		percent := -1.0
		if m := basebackupPercent.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				percent = float64(n)
			}
		}
		onEvent(Event{Message: line, Percent: percent})
	}
	return scanner.Err()
}
