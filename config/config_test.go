package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openclaw.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWithPath(t *testing.T) {
	path := writeConfig(t, `
app_name: claw-gw
logger:
  level: debug
security:
  hardening:
    enabled: true
    allowed_sender_hash: 5994471abb01112afcc18159f6cc74b4f511b99806da59b3caf5a9c173cacfc5
    network:
      allowed_domains:
        - api.telegram.org
        - "*.whatsapp.net"
      extra_allowed_suffixes:
        - .telegram.org
      enforce: false
    fs:
      enforce: true
  sandbox:
    mode: strict
    workspace_dir: /srv/claw
    extra_allowed: [jq]
    allow_network: false
  ratelimit:
    auth:
      max: 3
      window: 30s
`)
	cfg, err := LoadWithPath(path)
	if err != nil {
		t.Fatalf("LoadWithPath: %v", err)
	}
	if cfg.AppName != "claw-gw" {
		t.Errorf("AppName = %q", cfg.AppName)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q", cfg.Logger.Level)
	}
	h := cfg.Security.Hardening
	if h.Enabled == nil || !*h.Enabled {
		t.Error("hardening.enabled should be true")
	}
	if len(h.AllowedSenderHash) != 64 {
		t.Errorf("allowed_sender_hash = %q", h.AllowedSenderHash)
	}
	if len(h.Network.AllowedDomains) != 2 || h.Network.Enforce {
		t.Errorf("network config = %+v", h.Network)
	}
	if len(h.Network.ExtraAllowedSuffixes) != 1 || h.Network.ExtraAllowedSuffixes[0] != ".telegram.org" {
		t.Errorf("network suffixes = %+v", h.Network.ExtraAllowedSuffixes)
	}
	if !h.FS.Enforce {
		t.Error("fs.enforce should be true")
	}
	sb := cfg.Security.Sandbox
	if sb.Mode != "strict" || sb.WorkspaceDir != "/srv/claw" {
		t.Errorf("sandbox config = %+v", sb)
	}
	if sb.AllowNetwork == nil || *sb.AllowNetwork {
		t.Error("sandbox.allow_network should be false")
	}
	if sb.AllowPackageManagers != nil {
		t.Error("sandbox.allow_package_managers should be unset")
	}
	rl := cfg.Security.RateLimit
	if rl.Auth.Max != 3 || rl.Auth.Window != 30*time.Second {
		t.Errorf("ratelimit.auth = %+v", rl.Auth)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadWithPath(writeConfig(t, "app_name: x\n"))
	if err != nil {
		t.Fatalf("LoadWithPath: %v", err)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("default logger level = %q, want info", cfg.Logger.Level)
	}
	if cfg.Security.Sandbox.Mode != "standard" {
		t.Errorf("default sandbox mode = %q, want standard", cfg.Security.Sandbox.Mode)
	}
	if cfg.Security.Hardening.Enabled != nil {
		t.Error("hardening.enabled should default to unset")
	}
	if !cfg.Security.Hardening.Network.Enforce {
		t.Error("network.enforce should default to true")
	}
	rl := cfg.Security.RateLimit
	if rl.Auth.Max != 5 || rl.Auth.Window != time.Minute {
		t.Errorf("default auth rule = %+v", rl.Auth)
	}
	if rl.Pairing.Max != 3 || rl.Pairing.Window != 10*time.Minute {
		t.Errorf("default pairing rule = %+v", rl.Pairing)
	}
	if cfg.StateDir == "" {
		t.Error("StateDir should have a default")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("OPENCLAW_SECURITY_SANDBOX_MODE", "permissive")
	cfg, err := LoadWithPath(writeConfig(t, "security:\n  sandbox:\n    mode: standard\n"))
	if err != nil {
		t.Fatalf("LoadWithPath: %v", err)
	}
	if cfg.Security.Sandbox.Mode != "permissive" {
		t.Errorf("sandbox mode = %q, want env override permissive", cfg.Security.Sandbox.Mode)
	}
}

func TestInvalidSandboxModeRejected(t *testing.T) {
	_, err := LoadWithPath(writeConfig(t, "security:\n  sandbox:\n    mode: lenient\n"))
	if err == nil {
		t.Fatal("invalid sandbox mode accepted")
	}
}

func TestMissingExplicitFileFails(t *testing.T) {
	if _, err := LoadWithPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing explicit config file accepted")
	}
}
