package adapter

import (
	"os"
	"regexp"
	"strings"

	"github.com/boshu2/taskboard/internal/types"
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;?]*[ -/]*[@-~]")

// StatusPatterns holds the three prioritized regex families used to
// classify a pane capture. Each can be overridden independently via
// environment variable at process start; an invalid override falls back to
// its hardcoded default rather than panicking.
type StatusPatterns struct {
	Waiting *regexp.Regexp
	Running *regexp.Regexp
	Idle    *regexp.Regexp
}

const (
	defaultRunningPattern = `(?i)(thinking|executing|processing|esc\s+to\s+interrupt|\bworking\b|\bloading\b)`
	defaultWaitingPattern = `(?i)(press\s+enter\s+to\s+continue|continue\?\s*\[y/n\]|confirm|yes/no|allow\s+once|allow\s+always)`
	defaultIdlePattern    = `(?i)(i['’]?m\s+ready|what\s+would\s+you\s+like\s+to\s+do\?|(^|\s)>\s*$|(^|\s)\$\s*$)`
)

// LoadStatusPatterns reads AGENT_STATUS_RUNNING_RE / _WAITING_RE / _IDLE_RE
// from the environment, falling back to the builtin defaults whenever the
// variable is unset, blank, or does not compile as a regex. The environment
// is read on each call.
func LoadStatusPatterns() StatusPatterns {
	return StatusPatterns{
		Running: compileOrDefault("AGENT_STATUS_RUNNING_RE", defaultRunningPattern),
		Waiting: compileOrDefault("AGENT_STATUS_WAITING_RE", defaultWaitingPattern),
		Idle:    compileOrDefault("AGENT_STATUS_IDLE_RE", defaultIdlePattern),
	}
}

// PatternsFromOverride builds a StatusPatterns from three override strings,
// one per family, falling back to the builtin default for any blank or
// non-compiling entry. Used by internal/config when a status-patterns file
// is configured (§4.1: "externally overridable").
func PatternsFromOverride(running, waiting, idle string) StatusPatterns {
	return StatusPatterns{
		Running: compileOrFallback(running, defaultRunningPattern),
		Waiting: compileOrFallback(waiting, defaultWaitingPattern),
		Idle:    compileOrFallback(idle, defaultIdlePattern),
	}
}

func compileOrFallback(value, fallback string) *regexp.Regexp {
	if v := strings.TrimSpace(value); v != "" {
		if re, err := regexp.Compile(v); err == nil {
			return re
		}
	}
	return regexp.MustCompile(fallback)
}

func compileOrDefault(envKey, fallback string) *regexp.Regexp {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		if re, err := regexp.Compile(v); err == nil {
			return re
		}
	}
	return regexp.MustCompile(fallback)
}

// StripANSI removes terminal escape sequences from a pane capture.
func StripANSI(content string) string {
	return ansiPattern.ReplaceAllString(content, "")
}

// tailLines collapses content to its last n non-empty, trimmed lines,
// preserving their original order.
func tailLines(content string, n int) string {
	lines := strings.Split(content, "\n")
	var nonEmpty []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			nonEmpty = append(nonEmpty, trimmed)
		}
	}
	if len(nonEmpty) > n {
		nonEmpty = nonEmpty[len(nonEmpty)-n:]
	}
	return strings.Join(nonEmpty, "\n")
}

// ClassifyPane classifies a raw pane capture into an observed status. ANSI
// sequences are stripped and the capture is collapsed to its last 30
// non-empty trimmed lines before the waiting > running > idle priority
// regexes are tried; empty output or an obvious disconnect phrase means the
// agent process is gone (dead). An unmatched non-empty tail defaults to idle.
func ClassifyPane(patterns StatusPatterns, paneOutput string) types.ObservedStatus {
	tail := tailLines(StripANSI(paneOutput), 30)

	if tail == "" || strings.Contains(tail, "connection refused") || strings.Contains(tail, "no server running") {
		return types.StatusDead
	}
	switch {
	case patterns.Waiting.MatchString(tail):
		return types.StatusWaiting
	case patterns.Running.MatchString(tail):
		return types.StatusRunning
	case patterns.Idle.MatchString(tail):
		return types.StatusIdle
	default:
		return types.StatusIdle
	}
}
