// Package logx provides a small structured-logging wrapper used by the adf
// and cmd packages so they don't each reach for logrus directly.
package logx

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the subset of logging operations the rest of this module needs.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// std wraps a *logrus.Logger writing to stderr with a text formatter.
type std struct {
	l *logrus.Logger
}

var defaultLogger = newStd()

func newStd() *std {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &std{l: l}
}

// SetVerbose raises the default logger to debug level when v is true.
func SetVerbose(v bool) {
	if v {
		defaultLogger.l.SetLevel(logrus.DebugLevel)
	} else {
		defaultLogger.l.SetLevel(logrus.InfoLevel)
	}
}

// Default returns the package-wide logger used when callers don't supply
// their own.
func Default() Logger { return defaultLogger }

func (s *std) Debugf(format string, args ...interface{}) { s.l.Debugf(format, args...) }
func (s *std) Infof(format string, args ...interface{})  { s.l.Infof(format, args...) }
func (s *std) Warnf(format string, args ...interface{})  { s.l.Warnf(format, args...) }
func (s *std) Errorf(format string, args ...interface{}) { s.l.Errorf(format, args...) }

// Nop is a Logger that discards everything, useful for tests.
type Nop struct{}

func (Nop) Debugf(string, ...interface{}) {}
func (Nop) Infof(string, ...interface{})  {}
func (Nop) Warnf(string, ...interface{})  {}
func (Nop) Errorf(string, ...interface{}) {}
