// Package monitoring holds the package-level diagnostic logger and the
// counters the perception core exposes to observability tooling.
package monitoring

import (
	"fmt"
	"log"
	"sync"
)

var logMu sync.RWMutex

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	logMu.Lock()
	defer logMu.Unlock()
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Component returns a logger that prefixes every line with "[name] ".
// The package logger is looked up on each call so SetLogger takes effect
// for loggers created earlier.
func Component(name string) func(format string, v ...interface{}) {
	prefix := fmt.Sprintf("[%s] ", name)
	return func(format string, v ...interface{}) {
		logMu.RLock()
		logf := Logf
		logMu.RUnlock()
		logf(prefix+format, v...)
	}
}
