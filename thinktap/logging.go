package thinktap

import (
	"os"

	"github.com/charmbracelet/log"
)

// logger is the package-level logger. Defaults to warn level so the
// library stays quiet inside a host application; hosts that want the
// interception diagnostics (compat fallbacks, dropped thought forwards)
// can install their own instance via SetLogger.
var logger = newDefaultLogger()

func newDefaultLogger() *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{Prefix: "thinktap"})
	l.SetLevel(log.WarnLevel)
	return l
}

// SetLogger replaces the package logger. Passing nil restores the default.
func SetLogger(l *log.Logger) {
	if l == nil {
		logger = newDefaultLogger()
		return
	}
	logger = l
}
