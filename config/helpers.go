package config

import (
	"time"

	"github.com/spf13/viper"
)

// getDurationOrDefault returns duration from config or default value
func getDurationOrDefault(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	if v.IsSet(key) {
		return v.GetDuration(key)
	}
	return defaultValue
}

// getFloat64OrDefault returns float64 from config or default value
func getFloat64OrDefault(v *viper.Viper, key string, defaultValue float64) float64 {
	if v.IsSet(key) {
		return v.GetFloat64(key)
	}
	return defaultValue
}

// getStringOrDefault returns string from config or default value
func getStringOrDefault(v *viper.Viper, key string, defaultValue string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return defaultValue
}

// getBoolOrDefault returns bool from config or default value
func getBoolOrDefault(v *viper.Viper, key string, defaultValue bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return defaultValue
}

// getBoolPtr returns the bool at key, or nil when the key is not set.
// Used for tri-state flags where "unset" behaves differently from false.
func getBoolPtr(v *viper.Viper, key string) *bool {
	if v.IsSet(key) {
		b := v.GetBool(key)
		return &b
	}
	return nil
}
