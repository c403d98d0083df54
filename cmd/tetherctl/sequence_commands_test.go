package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadScheduleFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.txt")
	if err := os.WriteFile(path, []byte("nightly: 02:00 rollup\n"), 0o600); err != nil {
		t.Fatalf("write schedule: %v", err)
	}

	got, err := readSchedule(path, strings.NewReader(""))
	if err != nil {
		t.Fatalf("read schedule: %v", err)
	}
	if got != "nightly: 02:00 rollup\n" {
		t.Fatalf("unexpected schedule %q", got)
	}
}

func TestReadScheduleFromStdin(t *testing.T) {
	got, err := readSchedule("-", strings.NewReader("hourly: */1h probe\n"))
	if err != nil {
		t.Fatalf("read schedule: %v", err)
	}
	if got != "hourly: */1h probe\n" {
		t.Fatalf("unexpected schedule %q", got)
	}
}

func TestWriteSequenceList(t *testing.T) {
	var out bytes.Buffer
	writeSequenceList(&out, "started", []string{"nightly", "hourly"})
	if out.String() != "started nightly, hourly\n" {
		t.Fatalf("unexpected listing %q", out.String())
	}

	out.Reset()
	writeSequenceList(&out, "stopped", nil)
	if out.String() != "stopped none\n" {
		t.Fatalf("unexpected empty listing %q", out.String())
	}
}
