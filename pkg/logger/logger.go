// Package logger provides the verbosity-counted logger used by the CLI:
// --verbose raises the level, --quiet lowers it, default is 1.
package logger

import (
	"fmt"
	"io"
	"os"
)

// Logger prints messages whose level does not exceed the configured
// verbosity. Level 1 is normal progress output, level 2 is debug detail.
type Logger struct {
	Verbosity int
	Out       io.Writer
	Err       io.Writer
}

// New creates a logger writing to stdout/stderr.
func New(verbosity int) *Logger {
	return &Logger{
		Verbosity: verbosity,
		Out:       os.Stdout,
		Err:       os.Stderr,
	}
}

// Logf prints when the logger's verbosity is at least level.
func (l *Logger) Logf(level int, format string, args ...any) {
	if l.Verbosity >= level {
		fmt.Fprintf(l.Out, format+"\n", args...)
	}
}

// Infof prints at normal verbosity.
func (l *Logger) Infof(format string, args ...any) {
	l.Logf(1, format, args...)
}

// Debugf prints at debug verbosity.
func (l *Logger) Debugf(format string, args ...any) {
	l.Logf(2, format, args...)
}

// Errorf always prints, to stderr.
func (l *Logger) Errorf(format string, args ...any) {
	fmt.Fprintf(l.Err, "ERROR: "+format+"\n", args...)
}
