// Package config provides centralized configuration management for the
// gateway guard layer using Viper with support for multiple formats,
// environment variables, and hot-reloading.
//
// # Configuration Loading
//
// Load configuration from the default search paths:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Load with custom path:
//
//	cfg, err := config.LoadWithPath("./openclaw.yaml")
//
// # Configuration Format
//
// Supports YAML, JSON, and TOML formats. Example YAML:
//
//	logger:
//	  level: info
//	  format: text
//
//	security:
//	  hardening:
//	    enabled: true
//	    allowed_sender_hash: 5994471abb01112afcc18159f6cc74b4f511b99806da59b3caf5a9c173cacfc5
//	    network:
//	      allowed_domains: [api.telegram.org, "*.whatsapp.net"]
//	  sandbox:
//	    mode: standard
//	    workspace_dir: /home/claw/workspace
//	  ratelimit:
//	    auth: {max: 5, window: 1m}
//
// # Environment Variables
//
// Override config values with OPENCLAW_-prefixed environment variables using
// underscores:
//
//	export OPENCLAW_SECURITY_HARDENING_ENABLED=true
//	export OPENCLAW_SECURITY_SANDBOX_MODE=strict
//
// Environment variables take precedence over file configuration.
//
// # Hot Reloading
//
// Watch the configuration file for changes:
//
//	config.Watch(func(cfg *config.Config) {
//	    log.Println("Configuration reloaded")
//	})
package config
