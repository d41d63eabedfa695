package config

import (
	"time"

	"github.com/spf13/viper"
)

// Security groups the guard-layer configuration.
type Security struct {
	Hardening *Hardening
	Sandbox   *Sandbox
	RateLimit *RateLimit
}

// Hardening configures the security orchestrator and its monitors.
type Hardening struct {
	// Enabled is a tri-state: nil means not configured, in which case the
	// OPENCLAW_HARDENING environment variable decides.
	Enabled           *bool
	AllowedSenderHash string
	AuditLogPath      string
	SentryDSN         string
	Network           *NetworkMonitor
	FS                *FSMonitor
}

// NetworkMonitor configures outbound network supervision.
type NetworkMonitor struct {
	AllowedDomains       []string
	ExtraAllowedSuffixes []string
	LogAllowed           bool
	Enforce              bool
}

// FSMonitor configures sensitive-file access supervision.
type FSMonitor struct {
	ExtraSensitivePaths []string
	Enforce             bool
}

// Sandbox configures command evaluation.
type Sandbox struct {
	Mode                 string `validate:"omitempty,oneof=disabled strict standard permissive"`
	WorkspaceDir         string
	ExtraAllowed         []string
	ExtraBlocked         []string
	AllowNetwork         *bool
	AllowPackageManagers *bool
}

// RateLimitRule is one named limit: at most Max operations per Window.
type RateLimitRule struct {
	Max    float64       `validate:"gt=0"`
	Window time.Duration `validate:"gt=0"`
}

// RateLimit configures the keyed limiters and the optional shared Redis
// backend for multi-instance deployments.
type RateLimit struct {
	RedisAddr     string
	RedisPassword string
	Auth          *RateLimitRule
	Connection    *RateLimitRule
	Request       *RateLimitRule
	Pairing       *RateLimitRule
}

func getSecurityConfig(v *viper.Viper) *Security {
	return &Security{
		Hardening: &Hardening{
			Enabled:           getBoolPtr(v, "security.hardening.enabled"),
			AllowedSenderHash: v.GetString("security.hardening.allowed_sender_hash"),
			AuditLogPath:      v.GetString("security.hardening.audit_log_path"),
			SentryDSN:         v.GetString("security.hardening.sentry_dsn"),
			Network: &NetworkMonitor{
				AllowedDomains:       v.GetStringSlice("security.hardening.network.allowed_domains"),
				ExtraAllowedSuffixes: v.GetStringSlice("security.hardening.network.extra_allowed_suffixes"),
				LogAllowed:           getBoolOrDefault(v, "security.hardening.network.log_allowed", false),
				Enforce:              getBoolOrDefault(v, "security.hardening.network.enforce", true),
			},
			FS: &FSMonitor{
				ExtraSensitivePaths: v.GetStringSlice("security.hardening.fs.extra_sensitive_paths"),
				Enforce:             getBoolOrDefault(v, "security.hardening.fs.enforce", false),
			},
		},
		Sandbox: &Sandbox{
			Mode:                 getStringOrDefault(v, "security.sandbox.mode", "standard"),
			WorkspaceDir:         v.GetString("security.sandbox.workspace_dir"),
			ExtraAllowed:         v.GetStringSlice("security.sandbox.extra_allowed"),
			ExtraBlocked:         v.GetStringSlice("security.sandbox.extra_blocked"),
			AllowNetwork:         getBoolPtr(v, "security.sandbox.allow_network"),
			AllowPackageManagers: getBoolPtr(v, "security.sandbox.allow_package_managers"),
		},
		RateLimit: &RateLimit{
			RedisAddr:     v.GetString("security.ratelimit.redis.addr"),
			RedisPassword: v.GetString("security.ratelimit.redis.password"),
			Auth:          getRuleOrDefault(v, "security.ratelimit.auth", 5, time.Minute),
			Connection:    getRuleOrDefault(v, "security.ratelimit.connection", 10, time.Minute),
			Request:       getRuleOrDefault(v, "security.ratelimit.request", 120, time.Minute),
			Pairing:       getRuleOrDefault(v, "security.ratelimit.pairing", 3, 10*time.Minute),
		},
	}
}

func getRuleOrDefault(v *viper.Viper, prefix string, max float64, window time.Duration) *RateLimitRule {
	return &RateLimitRule{
		Max:    getFloat64OrDefault(v, prefix+".max", max),
		Window: getDurationOrDefault(v, prefix+".window", window),
	}
}
