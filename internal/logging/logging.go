// Package logging is the levelled stderr logger shared by the CLI and the
// web server.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	mu      sync.Mutex
	out     io.Writer = os.Stderr
	verbose bool

	debugColor = color.New(color.FgHiBlack)
	infoColor  = color.New(color.FgCyan)
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed, color.Bold)
)

// SetDebug enables Debugf output.
func SetDebug(on bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = on
}

// SetOutput redirects log output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func logf(c *color.Color, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = c.Fprintf(out, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// Debugf logs only when debug output is enabled.
func Debugf(format string, args ...any) {
	mu.Lock()
	on := verbose
	mu.Unlock()
	if on {
		logf(debugColor, "·", format, args...)
	}
}

// Infof logs progress.
func Infof(format string, args ...any) { logf(infoColor, "ℹ", format, args...) }

// Successf logs a completed action.
func Successf(format string, args ...any) { logf(okColor, "✓", format, args...) }

// Warnf logs a recoverable problem.
func Warnf(format string, args ...any) { logf(warnColor, "⚠ Warning:", format, args...) }

// Errorf logs a failure without exiting.
func Errorf(format string, args ...any) { logf(errColor, "✗ Error:", format, args...) }

// Fatal logs err and exits with status 1.
func Fatal(err error) {
	Errorf("%v", err)
	os.Exit(1)
}
