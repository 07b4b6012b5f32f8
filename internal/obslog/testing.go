package obslog

import (
	"testing"
	"unsafe"
)

// NewTestingLogger returns a CommitLogger that routes committed lines
// through tb.Log, for tests that want driver/bridge diagnostic output
// in their test log without touching a real file.
func NewTestingLogger(tb testing.TB) *CommitLogger {
	return &CommitLogger{
		Committer: func(p []byte) {
			line := *(*string)(unsafe.Pointer(&p))
			tb.Log(line)
		},
	}
}
