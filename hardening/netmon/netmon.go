// Package netmon supervises outbound HTTP traffic. Installed, it wraps the
// process-wide default transport with a guard that checks every request's
// host against a domain allowlist, records the verdict in the audit log, and
// refuses disallowed connections when enforcement is on.
package netmon

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/audit"
)

// Options configures Install.
type Options struct {
	// AllowedDomains lists the hosts outbound requests may reach. An entry
	// matches its exact host and all subdomains; a leading "*." is accepted
	// and means the same thing. An empty list allows nothing.
	AllowedDomains []string

	// ExtraAllowedSuffixes lists domain suffixes allowed in addition to the
	// domains above, e.g. ".telegram.org". A host matches when it ends with
	// the suffix; a bare "telegram.org" entry is treated as ".telegram.org"
	// and also matches the apex host itself.
	ExtraAllowedSuffixes []string

	// LogAllowed also records requests that pass the allowlist.
	LogAllowed bool

	// Enforce refuses disallowed requests. When false the monitor only
	// observes and records.
	Enforce bool

	// Base is the transport to wrap. Defaults to the current
	// http.DefaultTransport.
	Base http.RoundTripper
}

// Monitor is the outbound network guard. The zero value is inactive; wire an
// audit logger with New and arm it with Install.
type Monitor struct {
	mu       sync.Mutex
	active   bool
	saved    http.RoundTripper
	patched  bool
	domains  []string
	suffixes []string
	logAll   bool
	enforce  bool

	log *audit.Logger
}

// New returns an inactive Monitor reporting to log.
func New(log *audit.Logger) *Monitor {
	return &Monitor{log: log}
}

// Install arms the monitor. When opts.Base is nil the guard replaces
// http.DefaultTransport so that every client built on it is covered;
// Uninstall restores the original. Install on an active monitor is a no-op.
func (m *Monitor) Install(opts *Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return nil
	}
	if opts == nil {
		opts = &Options{}
	}

	m.domains = normalizeDomains(opts.AllowedDomains)
	m.suffixes = normalizeSuffixes(opts.ExtraAllowedSuffixes)
	m.logAll = opts.LogAllowed
	m.enforce = opts.Enforce

	base := opts.Base
	if base == nil {
		m.saved = http.DefaultTransport
		base = http.DefaultTransport
		http.DefaultTransport = &guardedTransport{monitor: m, base: base}
		m.patched = true
	}
	m.active = true
	return nil
}

// Uninstall disarms the monitor and restores the transport it replaced.
// Safe to call on an inactive monitor.
func (m *Monitor) Uninstall() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}
	if m.patched {
		http.DefaultTransport = m.saved
		m.saved = nil
		m.patched = false
	}
	m.active = false
}

// IsActive reports whether the monitor is armed.
func (m *Monitor) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Transport wraps base with the monitor's guard for callers that build their
// own http.Client instead of relying on the default transport.
func (m *Monitor) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &guardedTransport{monitor: m, base: base}
}

// Check evaluates a host against the allowlist and records the verdict.
// The port, if present, is ignored.
func (m *Monitor) Check(host string) bool {
	m.mu.Lock()
	domains := m.domains
	suffixes := m.suffixes
	logAll := m.logAll
	enforce := m.enforce
	active := m.active
	m.mu.Unlock()

	if !active {
		return true
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	allowed := hostAllowed(host, domains, suffixes)
	if allowed {
		if logAll && m.log != nil {
			m.log.Log(audit.EventAllowedNetwork, m.detail(host))
		}
		return true
	}

	if m.log != nil {
		d := m.detail(host)
		d["enforced"] = enforce
		m.log.Log(audit.EventBlockedNetwork, d)
	}
	return !enforce
}

func (m *Monitor) detail(host string) map[string]any {
	d := map[string]any{"host": host}
	if registered, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		d["registeredDomain"] = registered
	}
	return d
}

type guardedTransport struct {
	monitor *Monitor
	base    http.RoundTripper
}

func (t *guardedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.monitor.Check(req.URL.Host) {
		return nil, fmt.Errorf("netmon: outbound request to %q refused by domain allowlist", req.URL.Host)
	}
	return t.base.RoundTrip(req)
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(d, "*.")
		d = strings.TrimSuffix(d, ".")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// normalizeSuffixes lowercases suffixes and gives each a leading dot, so
// "telegram.org" and "*.telegram.org" both become ".telegram.org".
func normalizeSuffixes(suffixes []string) []string {
	out := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		s = strings.TrimPrefix(s, "*.")
		s = strings.TrimSuffix(s, ".")
		s = "." + strings.TrimPrefix(s, ".")
		if s != "." {
			out = append(out, s)
		}
	}
	return out
}

func hostAllowed(host string, domains, suffixes []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	for _, s := range suffixes {
		if strings.HasSuffix(host, s) || host == strings.TrimPrefix(s, ".") {
			return true
		}
	}
	return false
}
