// Package hardening orchestrates the gateway's optional security layer:
// the audit log, the single-user enforcer, and the network and filesystem
// monitors. Initialization is best-effort by design. A monitor that fails
// to arm is recorded and skipped; the guards that did arm stay up.
package hardening

import (
	"os"
	"strings"
	"sync"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/audit"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/config"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/hardening/fsmon"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/hardening/netmon"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/sandbox"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/singleuser"
)

// EnvToggle is the environment variable that enables hardening when the
// configuration leaves it unset.
const EnvToggle = "OPENCLAW_HARDENING"

// IsEnabled decides whether the hardening layer should come up. An explicit
// configuration value wins in both directions; only when the configuration
// is silent does the OPENCLAW_HARDENING environment variable decide.
func IsEnabled(cfg *config.Hardening) bool {
	if cfg != nil && cfg.Enabled != nil {
		return *cfg.Enabled
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvToggle))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// NetworkMonitor is the outbound traffic guard the orchestrator manages.
type NetworkMonitor interface {
	Install(*netmon.Options) error
	Uninstall()
	IsActive() bool
}

// FileMonitor is the sensitive-file watcher the orchestrator manages.
type FileMonitor interface {
	Install(*fsmon.Options) error
	Uninstall()
	IsActive() bool
}

// Status reports which guards are currently armed.
type Status struct {
	Active         bool   `json:"active"`
	SingleUser     bool   `json:"singleUser"`
	NetworkMonitor bool   `json:"networkMonitor"`
	FSMonitor      bool   `json:"fsMonitor"`
	LogPath        string `json:"logPath,omitempty"`
}

// Options configures Init.
type Options struct {
	Config   *config.Hardening
	StateDir string

	// AuditSink receives every audit event in memory, in addition to the
	// file sink. Used by tests and event forwarders.
	AuditSink func(audit.Event)
}

// Orchestrator wires the guards together and owns their lifecycle.
type Orchestrator struct {
	mu          sync.Mutex
	initialized bool

	log      *audit.Logger
	enforcer *singleuser.Enforcer
	netMon   NetworkMonitor
	fsMon    FileMonitor
}

// New builds an Orchestrator around a fresh audit logger and enforcer and
// the real monitors.
func New() *Orchestrator {
	log := audit.New()
	return &Orchestrator{
		log:      log,
		enforcer: singleuser.New(log),
		netMon:   netmon.New(log),
		fsMon:    fsmon.New(log),
	}
}

// newWith injects collaborators. Test hook.
func newWith(log *audit.Logger, enforcer *singleuser.Enforcer, nm NetworkMonitor, fm FileMonitor) *Orchestrator {
	return &Orchestrator{log: log, enforcer: enforcer, netMon: nm, fsMon: fm}
}

// Init brings the guards up in dependency order: the audit log first so
// every later step can report into it, then the single-user enforcer, then
// the monitors. Failures are isolated: a guard that cannot arm produces a
// hardening_error event and the remaining guards still come up. Init never
// returns an error for partial activation; inspect Status for the outcome.
// Calling Init on an initialized orchestrator is a no-op.
func (o *Orchestrator) Init(opts *Options) Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.initialized {
		return o.statusLocked()
	}
	if opts == nil {
		opts = &Options{}
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Hardening{}
	}

	// Disabled hardening is a full no-op: nothing opens, nothing arms, and
	// the returned status is all-false.
	if !IsEnabled(cfg) {
		return Status{}
	}

	o.log.Init(&audit.Options{
		Path:      cfg.AuditLogPath,
		Sink:      opts.AuditSink,
		SentryDSN: cfg.SentryDSN,
	})

	if cfg.AllowedSenderHash != "" {
		if err := o.enforcer.Init(cfg.AllowedSenderHash); err != nil {
			o.log.Log(audit.EventHardeningError, map[string]any{
				"step":  "singleuser",
				"error": err.Error(),
			})
		}
	}

	if nc := cfg.Network; nc != nil && (len(nc.AllowedDomains) > 0 || len(nc.ExtraAllowedSuffixes) > 0) {
		err := o.netMon.Install(&netmon.Options{
			AllowedDomains:       nc.AllowedDomains,
			ExtraAllowedSuffixes: nc.ExtraAllowedSuffixes,
			LogAllowed:           nc.LogAllowed,
			Enforce:              nc.Enforce,
		})
		if err != nil {
			o.log.Log(audit.EventHardeningError, map[string]any{
				"step":  "network",
				"error": err.Error(),
			})
		}
	}

	fsOpts := fsmon.Options{StateDir: opts.StateDir}
	if cfg.FS != nil {
		fsOpts.ExtraPaths = cfg.FS.ExtraSensitivePaths
		fsOpts.Enforce = cfg.FS.Enforce
	}
	if err := o.fsMon.Install(&fsOpts); err != nil {
		o.log.Log(audit.EventHardeningError, map[string]any{
			"step":  "fs",
			"error": err.Error(),
		})
	}

	o.initialized = true
	st := o.statusLocked()
	o.log.Log(audit.EventHardeningInit, map[string]any{
		"singleUser":     st.SingleUser,
		"networkMonitor": st.NetworkMonitor,
		"fsMonitor":      st.FSMonitor,
	})
	return st
}

// Teardown disarms every guard and closes the audit log. Safe to call on an
// orchestrator that was never initialized, and safe to call twice.
func (o *Orchestrator) Teardown() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.netMon.Uninstall()
	o.fsMon.Uninstall()
	o.log.Close()
	o.initialized = false
}

// Status reports the live state of each guard; it is recomputed on every
// call rather than cached from Init, so a monitor torn down out-of-band
// shows up immediately.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.statusLocked()
}

func (o *Orchestrator) statusLocked() Status {
	return Status{
		Active:         o.initialized,
		SingleUser:     o.enforcer.IsActive(),
		NetworkMonitor: o.netMon.IsActive(),
		FSMonitor:      o.fsMon.IsActive(),
		LogPath:        o.log.Path(),
	}
}

// Audit exposes the orchestrator's audit logger for the guards that live
// outside this package, such as the rate-limit middleware.
func (o *Orchestrator) Audit() *audit.Logger {
	return o.log
}

// Enforcer exposes the single-user enforcer for the message intake path.
func (o *Orchestrator) Enforcer() *singleuser.Enforcer {
	return o.enforcer
}

// CommandEvaluator returns a sandbox evaluator whose denials are recorded as
// blocked_command audit events.
func (o *Orchestrator) CommandEvaluator() *sandbox.Evaluator {
	e := sandbox.NewEvaluator()
	e.OnDeny = func(r sandbox.Result) {
		o.log.Log(audit.EventBlockedCommand, map[string]any{
			"command":        r.Command,
			"primaryCommand": r.PrimaryCommand,
			"reason":         r.Reason,
		})
	}
	return e
}
