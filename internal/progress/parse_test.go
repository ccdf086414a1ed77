package progress

import (
	"strings"
	"testing"
)

func TestBaseBackupWriterParsesPercent(t *testing.T) {
	var got []Event
	w := NewBaseBackupWriter(func(e Event) { got = append(got, e) })

	_, err := w.Write([]byte("12345/67890 kB (18%), 0/1 tablespace\r34567/67890 kB (50%), 0/1 tablespace\n"))
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(got), got)
	}
	if got[0].Percent != 18 {
		t.Errorf("first event percent = %v, want 18", got[0].Percent)
	}
	if got[1].Percent != 50 {
		t.Errorf("second event percent = %v, want 50", got[1].Percent)
	}
}

func TestBaseBackupWriterUnparseableLineKeepsMessage(t *testing.T) {
	var got []Event
	w := NewBaseBackupWriter(func(e Event) { got = append(got, e) })

	if _, err := w.Write([]byte("waiting for checkpoint\n")); err != nil {
		t.Fatal(err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].Percent != -1 {
		t.Errorf("percent = %v, want -1 (unknown)", got[0].Percent)
	}
	if got[0].Message != "waiting for checkpoint" {
		t.Errorf("message = %q", got[0].Message)
	}
}

func TestBaseBackupWriterSkipsEmptyLines(t *testing.T) {
	var got []Event
	w := NewBaseBackupWriter(func(e Event) { got = append(got, e) })

	if _, err := w.Write([]byte("\r\r\n")); err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d events, want 0", len(got))
	}
}

func TestScanLinesParsesPercent(t *testing.T) {
	var got []Event
	err := ScanLines(strings.NewReader("step one\nstep two (75%)\n"), func(e Event) {
		got = append(got, e)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[1].Percent != 75 {
		t.Errorf("percent = %v, want 75", got[1].Percent)
	}
}
