// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package blog provides the decoder's gated logging facility: a thin
// wrapper that can be switched on or off at runtime and that delegates to
// a pluggable LogProvider, defaulting to a logrus-backed implementation.
package blog

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// LogProvider is the decoder's logging interface: Critical, Error, Warn
// and Debug severities only.
type LogProvider interface {
	Critical(format string, v ...interface{})
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Blog gates calls to a LogProvider behind an atomic enable flag, so a
// Decoder can carry a logger unconditionally and have callers turn it on
// only when they want the noise.
type Blog struct {
	provider LogProvider
	// has is 1 when log output is enabled, 0 when disabled.
	has uint32
}

// New builds a Blog with the default logrus-backed provider, labelling
// every line with prefix.
func New(prefix string) Blog {
	return Blog{
		provider: newLogrusProvider(prefix),
	}
}

// LogMode enables or disables log output.
func (sf *Blog) LogMode(enable bool) {
	if enable {
		atomic.StoreUint32(&sf.has, 1)
	} else {
		atomic.StoreUint32(&sf.has, 0)
	}
}

// SetLogProvider replaces the underlying provider.
func (sf *Blog) SetLogProvider(p LogProvider) {
	if p != nil {
		sf.provider = p
	}
}

// Critical logs a CRITICAL level message.
func (sf Blog) Critical(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Critical(format, v...)
	}
}

// Error logs an ERROR level message.
func (sf Blog) Error(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Error(format, v...)
	}
}

// Warn logs a WARN level message.
func (sf Blog) Warn(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Warn(format, v...)
	}
}

// Debug logs a DEBUG level message.
func (sf Blog) Debug(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Debug(format, v...)
	}
}

// logrusProvider is the default LogProvider, backed by a logrus.Logger
// with a fixed text field identifying the component.
type logrusProvider struct {
	log *logrus.Entry
}

var _ LogProvider = logrusProvider{}

func newLogrusProvider(prefix string) logrusProvider {
	l := logrus.New()
	return logrusProvider{log: l.WithField("component", prefix)}
}

func (sf logrusProvider) Critical(format string, v ...interface{}) {
	sf.log.Errorf("[CRITICAL] "+format, v...)
}

func (sf logrusProvider) Error(format string, v ...interface{}) {
	sf.log.Errorf(format, v...)
}

func (sf logrusProvider) Warn(format string, v ...interface{}) {
	sf.log.Warnf(format, v...)
}

func (sf logrusProvider) Debug(format string, v ...interface{}) {
	sf.log.Debugf(format, v...)
}
