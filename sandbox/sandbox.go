// Package sandbox decides whether a shell command string may be executed by
// an autonomous agent. It classifies every command reachable through pipes,
// separators and substitutions against fixed allow/block sets, with four
// modes ordered by permissiveness: disabled, strict, standard, permissive.
//
// Evaluation is pure: the sandbox never executes, kills or modifies anything.
// A denial is a normal typed result carrying the specific command or path
// that triggered it, so operators can audit decisions.
package sandbox

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Mode selects how much the sandbox allows.
type Mode string

const (
	// ModeDisabled passes every command through unchanged.
	ModeDisabled Mode = "disabled"
	// ModeStrict uses the smallest allowlist and enforces the workspace
	// path restriction.
	ModeStrict Mode = "strict"
	// ModeStandard adds common developer tools to the strict allowlist.
	ModeStandard Mode = "standard"
	// ModePermissive allows everything except the always-blocked set.
	ModePermissive Mode = "permissive"
)

// Valid reports whether m is one of the four modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeDisabled, ModeStrict, ModeStandard, ModePermissive:
		return true
	}
	return false
}

// Config tunes a single evaluation. It is passed per call and never stored.
type Config struct {
	Mode Mode

	// WorkspaceDir, when set in strict mode, restricts absolute paths in the
	// command to the workspace plus a few safe prefixes.
	WorkspaceDir string

	// ExtraAllowed adds command names to the allowlist. In permissive mode
	// it re-allows members of the always-blocked set.
	ExtraAllowed []string

	// ExtraBlocked adds command names to the blocklist. A block-set match
	// always wins over an allow-set match.
	ExtraBlocked []string

	// AllowNetwork includes the network command set. Defaults to true.
	AllowNetwork *bool

	// AllowPackageManagers includes the package-manager set. Defaults to true.
	AllowPackageManagers *bool
}

// Result is the outcome of one evaluation. On rejection Reason names the
// specific command or path that triggered the decision.
type Result struct {
	Allowed        bool   `json:"allowed"`
	Reason         string `json:"reason,omitempty"`
	Command        string `json:"command"`
	PrimaryCommand string `json:"primaryCommand,omitempty"`
}

// Evaluator classifies command strings. The zero value is not usable; create
// one with NewEvaluator.
type Evaluator struct {
	tokenizer Tokenizer

	// OnDeny, when set, is invoked for every rejection. Evaluation has no
	// other side effects.
	OnDeny func(Result)
}

// NewEvaluator creates an Evaluator with the default heuristic tokenizer.
// A custom Tokenizer may be supplied to replace it.
func NewEvaluator(tokenizer ...Tokenizer) *Evaluator {
	tk := Tokenizer(heuristicTokenizer{})
	if len(tokenizer) > 0 && tokenizer[0] != nil {
		tk = tokenizer[0]
	}
	return &Evaluator{tokenizer: tk}
}

// defaultEvaluator backs the package-level Evaluate convenience.
var defaultEvaluator = NewEvaluator()

// Evaluate classifies command with the default evaluator.
func Evaluate(command string, cfg Config) Result {
	return defaultEvaluator.Evaluate(command, cfg)
}

// Evaluate classifies command under cfg.
func (e *Evaluator) Evaluate(command string, cfg Config) Result {
	res := e.evaluate(command, cfg)
	if !res.Allowed && e.OnDeny != nil {
		e.OnDeny(res)
	}
	return res
}

func (e *Evaluator) evaluate(command string, cfg Config) Result {
	res := Result{
		Command:        command,
		PrimaryCommand: e.tokenizer.PrimaryCommand(command),
	}

	if cfg.Mode == ModeDisabled {
		res.Allowed = true
		return res
	}
	if !cfg.Mode.Valid() {
		res.Reason = fmt.Sprintf("unknown sandbox mode %q", cfg.Mode)
		return res
	}

	commands := e.tokenizer.AllCommands(command)
	extraAllowed := lowerSet(cfg.ExtraAllowed)
	extraBlocked := lowerSet(cfg.ExtraBlocked)

	if cfg.Mode == ModePermissive {
		// Only the always-blocked set applies; the workspace path
		// restriction is deliberately not enforced here.
		for _, name := range commands {
			lower := strings.ToLower(name)
			if inSet(alwaysBlocked, lower) && !inSet(extraAllowed, lower) {
				res.Reason = fmt.Sprintf("command %q is always blocked", name)
				return res
			}
		}
		res.Allowed = true
		return res
	}

	allowed := e.allowSet(cfg)
	for _, name := range commands {
		lower := strings.ToLower(name)
		if inSet(alwaysBlocked, lower) || inSet(extraBlocked, lower) {
			res.Reason = fmt.Sprintf("command %q is blocked", name)
			return res
		}
		if !inSet(allowed, lower) && !inSet(extraAllowed, lower) {
			// Fail closed: unknown commands are denied in strict and
			// standard modes.
			res.Reason = fmt.Sprintf("command %q is not in the allowlist", name)
			return res
		}
	}

	if cfg.Mode == ModeStrict && cfg.WorkspaceDir != "" {
		if path, ok := offendingPath(command, cfg.WorkspaceDir); !ok {
			res.Reason = fmt.Sprintf("path %q is outside the workspace", path)
			return res
		}
	}

	res.Allowed = true
	return res
}

// allowSet assembles the applicable allowlist for strict/standard modes.
func (e *Evaluator) allowSet(cfg Config) map[string]struct{} {
	s := make(map[string]struct{}, len(alwaysAllowed)+len(devTools)+len(packageManagers)+len(networkCommands))
	for name := range alwaysAllowed {
		s[name] = struct{}{}
	}
	if cfg.Mode != ModeStrict {
		for name := range devTools {
			s[name] = struct{}{}
		}
	}
	if cfg.AllowPackageManagers == nil || *cfg.AllowPackageManagers {
		for name := range packageManagers {
			s[name] = struct{}{}
		}
	}
	if cfg.AllowNetwork == nil || *cfg.AllowNetwork {
		for name := range networkCommands {
			s[name] = struct{}{}
		}
	}
	return s
}

// absPathRe finds absolute-path-looking tokens in a command string.
var absPathRe = regexp.MustCompile(`(?:^|[\s"'=:,(])(/[^\s"':,)]*)`)

// allowedPathPrefixes are always acceptable regardless of the workspace.
var allowedPathPrefixes = []string{"/dev/", "/tmp", "/home/", "/users/", "/private/tmp"}

// offendingPath scans command for absolute paths and returns the first one
// outside the workspace and the safe prefixes, with ok=false. ok=true means
// every path is acceptable.
func offendingPath(command, workspaceDir string) (string, bool) {
	workspace, err := filepath.Abs(workspaceDir)
	if err != nil {
		workspace = workspaceDir
	}
	workspaceLower := strings.ToLower(filepath.ToSlash(workspace))

	for _, m := range absPathRe.FindAllStringSubmatch(command, -1) {
		p := m[1]
		// "//host" after a scheme's colon is the authority part of a URL,
		// not a filesystem path.
		if strings.HasPrefix(p, "//") {
			continue
		}
		lower := strings.ToLower(p)
		if pathHasPrefix(lower, workspaceLower) {
			continue
		}
		ok := false
		for _, prefix := range allowedPathPrefixes {
			if pathHasPrefix(lower, strings.TrimSuffix(prefix, "/")) {
				ok = true
				break
			}
		}
		if !ok {
			return p, false
		}
	}
	return "", true
}

// pathHasPrefix reports whether p equals prefix or sits underneath it.
func pathHasPrefix(p, prefix string) bool {
	if prefix == "" {
		return false
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// lowerSet lowercases names into a membership set.
func lowerSet(names []string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[strings.ToLower(n)] = struct{}{}
	}
	return s
}
