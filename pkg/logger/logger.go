// Package logger provides namespaced debug logging controlled by the DEBUG
// environment variable, in the style of the npm debug package.
//
//	DEBUG=*                      every namespace
//	DEBUG=compose:*              every namespace under compose
//	DEBUG=registry:client,linter:app
//	DEBUG=*,-registry:*          everything except the registry client
//
// Namespaces are colored when stderr is a terminal and DEBUG_COLORS is not "0".
package logger

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/getumbrel/umbrel-linter/pkg/timeutil"
	"github.com/getumbrel/umbrel-linter/pkg/tty"
)

// Logger writes debug lines for a single namespace.
type Logger struct {
	namespace string
	enabled   bool
	color     string

	mu      sync.Mutex
	lastLog time.Time
}

var (
	patterns    = parsePatterns(os.Getenv("DEBUG"))
	debugColors = os.Getenv("DEBUG_COLORS") != "0"
	isTTY       = tty.IsStderrTerminal()

	outMu  sync.Mutex
	output io.Writer = os.Stderr

	palette = []string{
		"\033[38;5;33m",
		"\033[38;5;35m",
		"\033[38;5;166m",
		"\033[38;5;125m",
		"\033[38;5;37m",
		"\033[38;5;161m",
		"\033[38;5;136m",
		"\033[38;5;63m",
	}
)

const colorReset = "\033[0m"

// New creates a logger for namespace. Whether it is enabled is decided once,
// from the DEBUG value seen at process start.
func New(namespace string) *Logger {
	return &Logger{
		namespace: namespace,
		enabled:   patterns.match(namespace),
		color:     colorFor(namespace),
		lastLog:   time.Now(),
	}
}

// SetOutput redirects every logger to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := output
	output = w
	return prev
}

// Enabled reports whether the namespace matched DEBUG.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Printf logs a formatted line followed by the time elapsed since the
// previous line of the same namespace.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.emit(fmt.Sprintf(format, args...))
}

// Print logs its operands like fmt.Sprint.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.emit(fmt.Sprint(args...))
}

func (l *Logger) emit(message string) {
	l.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(l.lastLog)
	l.lastLog = now
	l.mu.Unlock()

	ns := l.namespace
	if l.color != "" {
		ns = l.color + ns + colorReset
	}

	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintf(output, "%s %s +%s\n", ns, message, timeutil.FormatDuration(elapsed))
}

func colorFor(namespace string) string {
	if !debugColors || !isTTY {
		return ""
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(namespace))
	return palette[h.Sum32()%uint32(len(palette))]
}

// patternSet is the parsed form of a DEBUG value.
type patternSet struct {
	include []string
	exclude []string
}

func parsePatterns(value string) patternSet {
	var set patternSet
	for raw := range strings.SplitSeq(value, ",") {
		p := strings.TrimSpace(raw)
		if p == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(p, "-"); ok {
			set.exclude = append(set.exclude, rest)
			continue
		}
		set.include = append(set.include, p)
	}
	return set
}

// match applies exclusions first; an excluded namespace is never enabled.
func (s patternSet) match(namespace string) bool {
	for _, p := range s.exclude {
		if matchPattern(namespace, p) {
			return false
		}
	}
	for _, p := range s.include {
		if matchPattern(namespace, p) {
			return true
		}
	}
	return false
}

// matchPattern supports a single "*" wildcard anywhere in the pattern.
func matchPattern(namespace, pattern string) bool {
	if pattern == "*" || pattern == namespace {
		return true
	}
	prefix, suffix, found := strings.Cut(pattern, "*")
	if !found {
		return false
	}
	return len(namespace) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(namespace, prefix) &&
		strings.HasSuffix(namespace, suffix)
}
