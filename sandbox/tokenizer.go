package sandbox

import (
	"regexp"
	"strings"
)

// Tokenizer extracts command names from a shell command string. The default
// implementation is heuristic, not a shell grammar; it sits behind this
// interface so it can be swapped for a real parser without touching the
// allow/block logic.
type Tokenizer interface {
	// PrimaryCommand returns the base name of the first binary the command
	// string would execute, after stripping environment assignments and
	// privilege/env wrappers. Empty when no command can be identified.
	PrimaryCommand(command string) string

	// AllCommands returns the base names of every command reachable through
	// pipes, separators and substitutions, de-duplicated in first-seen order.
	// Compound strings like "a && rm -rf /" are fully inspected this way
	// rather than only their first segment.
	AllCommands(command string) []string
}

// heuristicTokenizer is the default regex-based Tokenizer.
type heuristicTokenizer struct{}

// NewTokenizer returns the default heuristic tokenizer.
func NewTokenizer() Tokenizer {
	return heuristicTokenizer{}
}

var (
	// KEY=value environment assignment, optionally quoted.
	envAssignRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=('[^']*'|"[^"]*"|\S*)$`)

	// Boundaries between command segments: pipes, separators, background
	// ampersands, subshell parens, command substitution.
	segmentRe = regexp.MustCompile("[|;&()`]+|\\$\\(")
)

// PrimaryCommand implements Tokenizer.
func (heuristicTokenizer) PrimaryCommand(command string) string {
	fields := strings.Fields(strings.TrimSpace(command))
	i := 0

	// Leading KEY=value assignments.
	for i < len(fields) && envAssignRe.MatchString(fields[i]) {
		i++
	}

	// A privilege wrapper and its flags.
	if i < len(fields) {
		switch baseName(fields[i]) {
		case "sudo", "doas":
			i++
			for i < len(fields) && (strings.HasPrefix(fields[i], "-") || envAssignRe.MatchString(fields[i])) {
				i++
			}
		}
	}

	// An env invocation with its flags and inline assignments.
	if i < len(fields) && baseName(fields[i]) == "env" {
		i++
		for i < len(fields) && (strings.HasPrefix(fields[i], "-") || envAssignRe.MatchString(fields[i])) {
			i++
		}
	}

	if i >= len(fields) {
		return ""
	}

	tok := fields[i]
	// Cut at the first shell operator inside the token ("ls|wc" -> "ls"),
	// dropping any leading operators ("(cd" -> "cd").
	tok = strings.TrimLeft(tok, "|;&()`$")
	if idx := strings.IndexAny(tok, "|;&()`"); idx >= 0 {
		tok = tok[:idx]
	}
	return baseName(tok)
}

// AllCommands implements Tokenizer.
func (t heuristicTokenizer) AllCommands(command string) []string {
	segments := segmentRe.Split(command, -1)
	var out []string
	seen := make(map[string]struct{}, len(segments))
	for _, seg := range segments {
		name := t.PrimaryCommand(seg)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// baseName strips directory components and surrounding quotes from a command
// token, handling both path separators.
func baseName(tok string) string {
	tok = strings.Trim(tok, `"'`)
	if i := strings.LastIndexAny(tok, `/\`); i >= 0 {
		tok = tok[i+1:]
	}
	return tok
}
