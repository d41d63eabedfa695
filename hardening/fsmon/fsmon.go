// Package fsmon watches credential material on disk. Installed, it places
// fsnotify watches on a fixed set of sensitive paths (SSH keys, cloud
// credentials, the gateway's own state directory) plus any configured extras
// and records every touch as a sensitive_file_access audit event.
//
// The monitor observes; it never blocks filesystem access.
package fsmon

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/audit"
)

// Options configures Install.
type Options struct {
	// ExtraPaths are watched in addition to the built-in sensitive set.
	ExtraPaths []string

	// StateDir is the gateway state directory whose credential files are
	// watched. Defaults to ~/.openclaw.
	StateDir string

	// Enforce marks emitted events as enforced so the host can act on them.
	// The watcher itself only observes; it cannot block a filesystem access
	// that has already happened.
	Enforce bool
}

// Monitor is the sensitive-file watcher.
type Monitor struct {
	mu      sync.Mutex
	active  bool
	watcher *fsnotify.Watcher
	done    chan struct{}
	enforce bool

	log *audit.Logger
}

// New returns an inactive Monitor reporting to log.
func New(log *audit.Logger) *Monitor {
	return &Monitor{log: log}
}

// defaultSensitivePaths returns the built-in watch set. Paths that do not
// exist are skipped at install time.
func defaultSensitivePaths(stateDir string) []string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	if stateDir == "" && home != "" {
		stateDir = filepath.Join(home, ".openclaw")
	}

	paths := []string{
		"/etc/passwd",
		"/etc/shadow",
		"/etc/sudoers",
	}
	if home != "" {
		paths = append(paths,
			filepath.Join(home, ".ssh"),
			filepath.Join(home, ".aws"),
			filepath.Join(home, ".gnupg"),
			filepath.Join(home, ".netrc"),
			filepath.Join(home, ".config", "gcloud"),
		)
	}
	if stateDir != "" {
		paths = append(paths, filepath.Join(stateDir, "credentials"))
	}
	return paths
}

// Install arms the monitor. Watch targets that do not exist or cannot be
// watched are skipped rather than failing the install; a monitor with zero
// live watches is still considered active, because the set of existing paths
// can change underneath us. Install on an active monitor is a no-op.
func (m *Monitor) Install(opts *Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return nil
	}
	if opts == nil {
		opts = &Options{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	paths := append(defaultSensitivePaths(opts.StateDir), opts.ExtraPaths...)
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		// Watch errors on individual paths are tolerated.
		_ = watcher.Add(p)
	}

	m.watcher = watcher
	m.done = make(chan struct{})
	m.enforce = opts.Enforce
	m.active = true
	go m.run(watcher, m.done)
	return nil
}

// Uninstall stops the watcher. Safe to call on an inactive monitor.
func (m *Monitor) Uninstall() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}
	_ = m.watcher.Close()
	<-m.done
	m.watcher = nil
	m.done = nil
	m.active = false
}

// IsActive reports whether the monitor is armed.
func (m *Monitor) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Watch adds one more path at runtime. No-op when the monitor is inactive.
func (m *Monitor) Watch(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return nil
	}
	return m.watcher.Add(path)
}

func (m *Monitor) run(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if m.log != nil {
				m.log.Log(audit.EventSensitiveFileAccess, map[string]any{
					"path":     ev.Name,
					"op":       ev.Op.String(),
					"enforced": m.enforce,
				})
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
			// Watcher errors are transient; keep draining.
		}
	}
}
