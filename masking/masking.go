// Package masking obscures credential material in outbound config and
// diagnostic payloads. Any value about to be serialized to a remote client
// goes through Sensitive first so that tokens, passwords and API keys never
// leave the process in the clear.
//
// Masking is pure: inputs are never mutated and well-formed JSON-like data
// never causes an error or panic.
package masking

import (
	"encoding/json"
	"strings"
)

// sensitiveKeys are the lowercased field names whose string values get
// masked. Both camelCase and snake_case spellings collapse to entries here.
var sensitiveKeys = map[string]struct{}{
	"token":          {},
	"password":       {},
	"passwd":         {},
	"secret":         {},
	"apikey":         {},
	"api_key":        {},
	"apisecret":      {},
	"api_secret":     {},
	"accesstoken":    {},
	"access_token":   {},
	"refreshtoken":   {},
	"refresh_token":  {},
	"authtoken":      {},
	"auth_token":     {},
	"bottoken":       {},
	"bot_token":      {},
	"webhooksecret":  {},
	"webhook_secret": {},
	"tokenfile":      {},
	"token_file":     {},
	"privatekey":     {},
	"private_key":    {},
	"clientsecret":   {},
	"client_secret":  {},
	"credential":     {},
	"credentials":    {},
}

// Value masks a single secret string. Strings shorter than six characters
// are fully masked because a prefix would reveal too much; longer ones keep
// their first four characters for operator recognition.
func Value(s string) string {
	if len(s) < 6 {
		return "***"
	}
	return s[:4] + "***"
}

// Sensitive returns a deep copy of v with every string sitting under a
// sensitive key replaced by its masked form. Maps and slices are walked
// recursively; structs are converted through their JSON representation first.
// Nils and primitives pass through unchanged, as do empty strings at
// sensitive keys (nothing to mask).
func Sensitive(v any) any {
	return walk("", v)
}

func walk(key string, v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if isSensitiveKey(key) && val != "" {
			return Value(val)
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = walk(k, inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			// Elements keep the enclosing key so []string values under a
			// sensitive key are masked too.
			out[i] = walk(key, inner)
		}
		return out
	case bool, float64, int, int32, int64, float32, json.Number:
		return val
	default:
		// Structs, typed maps and the rest: round-trip through JSON into
		// the generic shape, then walk that. Unmarshalable values pass
		// through unchanged rather than failing the caller.
		raw, err := json.Marshal(val)
		if err != nil {
			return val
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return val
		}
		switch generic.(type) {
		case map[string]any, []any:
			return walk(key, generic)
		default:
			return val
		}
	}
}

// isSensitiveKey compares the lowercased key name against the fixed set.
func isSensitiveKey(key string) bool {
	if key == "" {
		return false
	}
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}
