package fsmon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/audit"
)

func newChannelRecorder(t *testing.T) (*audit.Logger, chan audit.Event) {
	t.Helper()
	events := make(chan audit.Event, 16)
	l := audit.New()
	l.Init(&audit.Options{
		Path: filepath.Join(t.TempDir(), "audit.log"),
		Sink: func(ev audit.Event) { events <- ev },
	})
	t.Cleanup(l.Close)
	return l, events
}

func TestRecordsSensitiveFileAccess(t *testing.T) {
	watched := t.TempDir()
	log, events := newChannelRecorder(t)

	m := New(log)
	if err := m.Install(&Options{ExtraPaths: []string{watched}, StateDir: t.TempDir(), Enforce: true}); err != nil {
		t.Fatalf("Install: %v", err)
	}
	defer m.Uninstall()

	target := filepath.Join(watched, "id_rsa")
	if err := os.WriteFile(target, []byte("key material"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Type != audit.EventSensitiveFileAccess {
			t.Errorf("event type = %q, want %q", ev.Type, audit.EventSensitiveFileAccess)
		}
		if ev.Detail["path"] != target {
			t.Errorf("event path = %v, want %q", ev.Detail["path"], target)
		}
		if ev.Detail["enforced"] != true {
			t.Errorf("event enforced = %v, want true", ev.Detail["enforced"])
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no audit event for write in watched directory")
	}
}

func TestWatchAddsPathAtRuntime(t *testing.T) {
	log, events := newChannelRecorder(t)
	m := New(log)
	if err := m.Install(&Options{StateDir: t.TempDir()}); err != nil {
		t.Fatalf("Install: %v", err)
	}
	defer m.Uninstall()

	extra := t.TempDir()
	if err := m.Watch(extra); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := os.WriteFile(filepath.Join(extra, "token"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Type != audit.EventSensitiveFileAccess {
			t.Errorf("event type = %q", ev.Type)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no audit event for runtime-added path")
	}
}

func TestMissingPathsAreSkipped(t *testing.T) {
	m := New(nil)
	err := m.Install(&Options{
		ExtraPaths: []string{"/nonexistent/surely/absent"},
		StateDir:   filepath.Join(t.TempDir(), "absent"),
	})
	if err != nil {
		t.Fatalf("Install with missing paths failed: %v", err)
	}
	if !m.IsActive() {
		t.Error("IsActive() = false after Install")
	}
	m.Uninstall()
	if m.IsActive() {
		t.Error("IsActive() = true after Uninstall")
	}
	m.Uninstall() // second call must be safe
}

func TestWatchOnInactiveMonitorIsNoop(t *testing.T) {
	m := New(nil)
	if err := m.Watch(t.TempDir()); err != nil {
		t.Errorf("Watch on inactive monitor = %v, want nil", err)
	}
}
