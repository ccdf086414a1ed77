package progress

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderBarClampsPercent(t *testing.T) {
	if got := renderBar(150); !strings.Contains(got, "100%") {
		t.Errorf("renderBar(150) = %q, want clamped to 100%%", got)
	}
	if got := renderBar(-10); !strings.Contains(got, "0%") {
		t.Errorf("renderBar(-10) = %q, want clamped to 0%%", got)
	}
}

func TestModelUpdateTracksLatestEvent(t *testing.T) {
	events := make(chan Event, 1)
	result := make(chan error, 1)
	m := New("backup", events, result)

	updated, _ := m.Update(eventMsg{Message: "copying base/1/1247", Percent: 42})
	mm := updated.(Model)

	if mm.message != "copying base/1/1247" {
		t.Errorf("message = %q", mm.message)
	}
	if mm.percent != 42 {
		t.Errorf("percent = %v, want 42", mm.percent)
	}
}

func TestModelUpdateRecordsDoneOutcome(t *testing.T) {
	events := make(chan Event, 1)
	result := make(chan error, 1)
	m := New("restore", events, result)

	wantErr := errors.New("boom")
	updated, _ := m.Update(doneMsg{err: wantErr})
	mm := updated.(Model)

	if !mm.done {
		t.Fatal("expected done=true")
	}
	if mm.err != wantErr {
		t.Errorf("err = %v, want %v", mm.err, wantErr)
	}
	if !strings.Contains(mm.View(), "failed") {
		t.Errorf("View() = %q, want to mention failure", mm.View())
	}
}

func TestModelViewShowsSuccessWhenDoneWithoutError(t *testing.T) {
	events := make(chan Event, 1)
	result := make(chan error, 1)
	m := New("backup", events, result)

	updated, _ := m.Update(doneMsg{})
	view := updated.(Model).View()
	if !strings.Contains(view, "done") {
		t.Errorf("View() = %q, want to mention completion", view)
	}
}
