// Package singleuser pins the gateway to exactly one operator identity.
// The enforcer never holds the raw identifier: it is configured with a
// SHA-256 digest and compares the digest of every inbound sender against it.
//
// The enforcer fails closed. Before Init succeeds, or after a failed Init,
// every authorization check is denied.
package singleuser

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/audit"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/crypto"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/masking"
)

// Enforcer gates inbound messages on a single allowed sender identity.
type Enforcer struct {
	mu         sync.RWMutex
	allowedSum string
	active     bool

	log *audit.Logger
}

// New returns an inactive Enforcer reporting denials to log. A nil log
// disables audit reporting but not enforcement.
func New(log *audit.Logger) *Enforcer {
	return &Enforcer{log: log}
}

// Init arms the enforcer with the SHA-256 hex digest of the allowed sender.
// The digest must be 64 lowercase hex characters; anything else leaves the
// enforcer inactive and denying everything. Once armed the digest is fixed
// for the enforcer's lifetime: rotating it requires restarting the guard, so
// a second Init returns an error. Successful arming is recorded in the audit
// log with only the first eight characters of the digest.
func (e *Enforcer) Init(allowedHash string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return errors.New("singleuser: already initialized; restart the guard to rotate the allowed identity")
	}
	normalized := strings.TrimSpace(allowedHash)
	if !crypto.ValidSha256Hex(normalized) {
		e.allowedSum = ""
		e.active = false
		return fmt.Errorf("singleuser: allowed hash must be 64 lowercase hex characters, got %d bytes", len(normalized))
	}
	e.allowedSum = normalized
	e.active = true
	if e.log != nil {
		e.log.Log(audit.EventHardeningInit, map[string]any{
			"component":  "singleuser",
			"hashPrefix": normalized[:8],
		})
	}
	return nil
}

// IsAuthorized reports whether identifier hashes to the configured digest.
// An inactive enforcer denies every identifier, including the empty one.
// Denials are written to the audit log with the identifier masked and only
// the first eight characters of its digest.
func (e *Enforcer) IsAuthorized(identifier string) bool {
	e.mu.RLock()
	allowed := e.allowedSum
	active := e.active
	e.mu.RUnlock()

	if !active {
		e.report(identifier, "enforcer not initialized")
		return false
	}

	sum := crypto.Sha256Hex(identifier)
	if !crypto.ConstantTimeEqual(sum, allowed) {
		e.report(identifier, "identity mismatch")
		return false
	}
	return true
}

// IsActive reports whether Init has succeeded.
func (e *Enforcer) IsActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// report logs a blocked sender. The raw identifier never reaches the log:
// only its masked form and a short digest prefix for correlation.
func (e *Enforcer) report(identifier, reason string) {
	if e.log == nil {
		return
	}
	e.log.Log(audit.EventBlockedSender, map[string]any{
		"sender":     masking.Value(identifier),
		"hashPrefix": crypto.Sha256Hex(identifier)[:8],
		"reason":     reason,
	})
}

// reset disarms the enforcer. Test hook.
func (e *Enforcer) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.allowedSum = ""
	e.active = false
}
