// Package audit is the append-only sink for every security-relevant decision
// the guard layer makes. Events are written one JSON object per line to a
// file that only the owning user can read, optionally mirrored to an
// in-memory sink for tests and to a logrus logger for operational visibility.
//
// Logging must never take the gateway down: file-open and write failures are
// swallowed, degrading to whatever sinks remain.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/nanoid"
)

// EventType identifies the decision an event records.
type EventType string

// The event types written to the audit log. The network and filesystem types
// are emitted by the monitor collaborators through the orchestrator.
const (
	EventBlockedSender       EventType = "blocked_sender"
	EventBlockedCommand      EventType = "blocked_command"
	EventRateLimited         EventType = "rate_limited"
	EventBlockedNetwork      EventType = "blocked_network"
	EventAllowedNetwork      EventType = "allowed_network"
	EventSensitiveFileAccess EventType = "sensitive_file_access"
	EventHardeningInit       EventType = "hardening_init"
	EventHardeningError      EventType = "hardening_error"
)

// Event is one audit record. Events are only ever appended; there is no
// update or delete.
type Event struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Type      EventType      `json:"type"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// Options configures Init.
type Options struct {
	// Path of the log file. Defaults to security/audit.log under the
	// state directory.
	Path string

	// Sink receives every event in memory. Used by tests and by callers
	// that forward events elsewhere.
	Sink func(Event)

	// Mirror, when set, receives every event as a structured logrus entry.
	Mirror *logrus.Logger

	// SentryDSN, when set, reports hardening_error events to Sentry.
	SentryDSN string
}

// Logger is the audit event sink. Create one with New and wire it into the
// guards at startup; there is no hidden process-wide instance.
type Logger struct {
	mu          sync.Mutex
	initialized bool
	file        *os.File
	path        string
	sink        func(Event)
	mirror      *logrus.Logger
	sentry      bool

	now func() time.Time
}

// New returns an uninitialized Logger. Events logged before Init are
// delivered to no sink and dropped silently.
func New() *Logger {
	return &Logger{now: time.Now}
}

// DefaultPath is where the audit log lives when no path is configured:
// ~/.openclaw/security/audit.log.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "openclaw", "security", "audit.log")
	}
	return filepath.Join(home, ".openclaw", "security", "audit.log")
}

// Init opens the file sink and registers the optional in-memory sink. It is
// idempotent: a second call while initialized is a no-op. A file that cannot
// be opened disables the file sink silently; the in-memory sink keeps
// working, because this log may be the only record of an active attack and
// half a log beats no log.
func (l *Logger) Init(opts *Options) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.initialized {
		return
	}
	if opts == nil {
		opts = &Options{}
	}
	l.initialized = true
	l.sink = opts.Sink
	l.mirror = opts.Mirror

	path := opts.Path
	if path == "" {
		path = DefaultPath()
	}

	// The log contains partially-redacted identifiers: owner-only
	// permissions on both the directory and the file.
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err == nil {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err == nil {
			l.file = f
			l.path = path
		}
	}

	if opts.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              opts.SentryDSN,
			AttachStacktrace: true,
		}); err == nil {
			l.sentry = true
		}
	}
}

// Log appends one event. It never fails and never blocks the caller's
// decision path on sink errors.
func (l *Logger) Log(t EventType, detail map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev := Event{
		ID:        nanoid.Must(12),
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
		Type:      t,
		Detail:    detail,
	}

	if l.file != nil {
		if raw, err := json.Marshal(ev); err == nil {
			// Stream errors are swallowed; the next write tries again.
			_, _ = l.file.Write(append(raw, '\n'))
		}
	}
	if l.sink != nil {
		l.sink(ev)
	}
	if l.mirror != nil {
		l.mirror.WithFields(logrus.Fields{
			"event_id": ev.ID,
			"type":     string(ev.Type),
			"detail":   ev.Detail,
		}).Info("security event")
	}
	if l.sentry && t == EventHardeningError {
		sentry.CaptureMessage(fmt.Sprintf("hardening error: %v", detail))
	}
}

// Close ends the file stream and clears registered sinks. Safe to call
// multiple times, including on a Logger that was never initialized.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
	l.path = ""
	l.sink = nil
	l.mirror = nil
	l.initialized = false
}

// Path returns the active log file path, or the empty string when the file
// sink is not open.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Active reports whether Init has run and not been undone by Close.
func (l *Logger) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initialized
}
