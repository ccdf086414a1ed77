package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RunBaseBackup drives work (expected to invoke pg_basebackup with its
// stderr wired to the io.Writer passed through) while rendering its
// --progress output as a live bar. It blocks until work returns.
func RunBaseBackup(title string, work func(stderr io.Writer) error) error {
	events := make(chan Event, 16)
	result := make(chan error, 1)

	go func() {
		writer := NewBaseBackupWriter(func(e Event) { events <- e })
		err := work(writer)
		close(events)
		result <- err
	}()

	model := New(title, events, result)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}
	return finalErr(final)
}

// finalErr extracts the outcome recorded by the model's doneMsg handler
// once the program has exited.
func finalErr(final tea.Model) error {
	if m, ok := final.(Model); ok {
		return m.err
	}
	return nil
}

// RunCopy drives a Model off a file-tree copy reporting (copied, total)
// byte counts, the shape restore's directory copy already produces.
func RunCopy(title string, work func(onProgress func(copied, total int64)) error) error {
	events := make(chan Event, 16)
	result := make(chan error, 1)

	go func() {
		err := work(func(copied, total int64) {
			percent := -1.0
			if total > 0 {
				percent = float64(copied) / float64(total) * 100
			}
			events <- Event{Message: fmt.Sprintf("%d/%d bytes", copied, total), Percent: percent}
		})
		close(events)
		result <- err
	}()

	model := New(title, events, result)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}
	return finalErr(final)
}

// PollFunc reports whether the watched condition is satisfied yet, along
// with a status line describing the current state.
type PollFunc func(ctx context.Context) (done bool, message string, err error)

// RunPoll drives a Model off of a polling function instead of a byte
// stream, for watching a restored cluster shut itself down at the end of
// recovery rather than parsing a subprocess's output.
func RunPoll(ctx context.Context, title string, interval time.Duration, poll PollFunc) error {
	events := make(chan Event, 16)
	result := make(chan error, 1)

	go func() {
		defer close(events)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			done, message, err := poll(ctx)
			if err != nil {
				result <- err
				return
			}
			events <- Event{Message: message, Percent: -1}
			if done {
				result <- nil
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				result <- ctx.Err()
				return
			}
		}
	}()

	model := New(title, events, result)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}
	return finalErr(final)
}
