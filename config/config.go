package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var (
	config *Config
	mu     sync.Mutex
	v      *viper.Viper

	validate = validator.New()
)

// Config represents the gateway configuration.
type Config struct {
	AppName  string
	StateDir string
	Logger   *Logger
	Security *Security
	Viper    *viper.Viper
}

func init() {
	v = viper.New()
}

// Load loads the configuration from the default search paths.
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath loads the configuration from the given file. An empty path
// falls back to openclaw.{yaml,json,toml} in /etc/openclaw, ~/.openclaw and
// the working directory. Environment variables prefixed with OPENCLAW_
// override file values (OPENCLAW_SECURITY_HARDENING_ENABLED and so on). A
// missing config file is not an error: every setting has a default or an
// environment override.
func LoadWithPath(configPath string) (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("openclaw")
		v.AddConfigPath("/etc/openclaw")
		v.AddConfigPath("$HOME/.openclaw")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("OPENCLAW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		AppName:  getStringOrDefault(v, "app_name", "openclaw"),
		StateDir: getStringOrDefault(v, "state_dir", defaultStateDir()),
		Logger:   getLoggerConfig(v),
		Security: getSecurityConfig(v),
		Viper:    v,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config = cfg
	return cfg, nil
}

// Reload reloads the configuration from the file.
func Reload() error {
	newConfig, err := LoadWithPath(v.ConfigFileUsed())
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	mu.Lock()
	config = newConfig
	mu.Unlock()
	return nil
}

// Watch watches the configuration file and reloads it when it changes.
func Watch(callback func(*Config)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := Reload(); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
			return
		}
		callback(config)
	})
}

// defaultStateDir is ~/.openclaw, falling back to the temp dir when the home
// directory cannot be resolved.
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "openclaw")
	}
	return filepath.Join(home, ".openclaw")
}
