// Package obslog carries the ambient logging conventions used across
// the command-line tools: a panic-safe writer that tees to a log file
// and stderr, plus a commit-buffered writer for tests.
package obslog

import (
	"io"
	"log"
	"os"
	"runtime/debug"
)

// PanicSafeLogger tees log output to a file and stderr, and can be
// flushed explicitly before a panic unwinds past main.
type PanicSafeLogger struct {
	f  *os.File
	mw io.Writer
}

var std *PanicSafeLogger

// NewPanicSafeLogger returns a logger that tees to f and stderr, and
// records it as the process-wide logger FlushLogger flushes. It does
// not change log's output; callers pass it to log.SetOutput.
func NewPanicSafeLogger(f *os.File) *PanicSafeLogger {
	std = &PanicSafeLogger{
		f:  f,
		mw: io.MultiWriter(f, os.Stderr),
	}
	return std
}

func (l *PanicSafeLogger) Write(p []byte) (n int, err error) {
	return l.mw.Write(p)
}

// Flush syncs the underlying log file to disk.
func (l *PanicSafeLogger) Flush() error {
	return l.f.Sync()
}

// FlushLogger flushes the installed process-wide logger, if any.
func FlushLogger() error {
	if std == nil {
		return nil
	}
	return std.Flush()
}

// LogPanic records a recovered panic and its stack trace, then flushes
// the log so the record survives process exit.
func LogPanic(err any) {
	log.Printf("panicked with %v\n%s\n", err, string(debug.Stack()))
	_ = FlushLogger()
}
