package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestLogWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "security", "audit.log")

	l := New()
	l.Init(&Options{Path: path})
	defer l.Close()

	l.Log(EventBlockedSender, map[string]any{"senderPrefix": "1555***"})
	l.Log(EventHardeningInit, map[string]any{"singleUser": true})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening audit log: %v", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line %q is not valid JSON: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventBlockedSender {
		t.Errorf("first event type = %q, want %q", events[0].Type, EventBlockedSender)
	}
	if events[0].Detail["senderPrefix"] != "1555***" {
		t.Errorf("first event detail = %v", events[0].Detail)
	}
	if events[0].ID == "" {
		t.Error("event ID is empty")
	}
	if _, err := time.Parse(time.RFC3339Nano, events[0].Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC 3339: %v", events[0].Timestamp, err)
	}
}

func TestFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "sec", "audit.log")

	l := New()
	l.Init(&Options{Path: path})
	defer l.Close()
	l.Log(EventHardeningInit, nil)

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log file: %v", err)
	}
	if got := fi.Mode().Perm(); got != 0o600 {
		t.Errorf("log file mode = %o, want 0600", got)
	}
	di, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("stat log dir: %v", err)
	}
	if got := di.Mode().Perm(); got != 0o700 {
		t.Errorf("log dir mode = %o, want 0700", got)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	l := New()
	l.Init(&Options{Path: first})
	defer l.Close()
	l.Init(&Options{Path: second})

	if got := l.Path(); got != first {
		t.Errorf("Path() after second Init = %q, want %q", got, first)
	}
	if _, err := os.Stat(second); !os.IsNotExist(err) {
		t.Error("second Init opened a new file; Init must be a no-op when initialized")
	}
}

func TestFileOpenFailureDegradesSilently(t *testing.T) {
	// Parent "directory" is a regular file, so the file sink cannot open.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	var got []Event
	l := New()
	l.Init(&Options{
		Path: filepath.Join(blocker, "audit.log"),
		Sink: func(ev Event) { got = append(got, ev) },
	})
	defer l.Close()

	l.Log(EventHardeningError, map[string]any{"step": "network"})

	if l.Path() != "" {
		t.Errorf("Path() = %q, want empty when file sink unavailable", l.Path())
	}
	if len(got) != 1 {
		t.Fatalf("in-memory sink received %d events, want 1", len(got))
	}
	if got[0].Type != EventHardeningError {
		t.Errorf("sink event type = %q, want %q", got[0].Type, EventHardeningError)
	}
}

func TestLogBeforeInitIsDropped(t *testing.T) {
	l := New()
	l.Log(EventBlockedSender, nil) // must not panic
	if l.Active() {
		t.Error("Active() = true before Init")
	}
}

func TestCloseIsSafe(t *testing.T) {
	l := New()
	l.Close()
	l.Close()

	dir := t.TempDir()
	l.Init(&Options{Path: filepath.Join(dir, "audit.log")})
	l.Close()
	l.Close()
	if l.Active() {
		t.Error("Active() = true after Close")
	}
	l.Log(EventBlockedSender, nil) // must not panic after Close
}

func TestSinkOnly(t *testing.T) {
	var count int
	l := New()
	l.Init(&Options{Path: filepath.Join(t.TempDir(), "a.log"), Sink: func(Event) { count++ }})
	defer l.Close()

	for i := 0; i < 3; i++ {
		l.Log(EventRateLimited, map[string]any{"key": "auth:1.2.3.4"})
	}
	if count != 3 {
		t.Errorf("sink invoked %d times, want 3", count)
	}
}
