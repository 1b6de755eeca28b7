// Package monitoring routes xosa's diagnostic log lines.
package monitoring

import (
	"log"
	"sync/atomic"
)

// LogFunc formats and emits one diagnostic line.
type LogFunc func(format string, v ...interface{})

var current atomic.Pointer[LogFunc]

func init() {
	SetLogger(log.Printf)
}

// Logf emits a line through the installed logger. Safe to call from the loop,
// broker callbacks and HTTP handlers while another goroutine swaps loggers.
func Logf(format string, v ...interface{}) {
	(*current.Load())(format, v...)
}

// SetLogger installs f and returns the logger it replaced. A nil f mutes
// output.
func SetLogger(f LogFunc) LogFunc {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	prev := current.Swap(&f)
	if prev == nil {
		return nil
	}
	return *prev
}
