// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package logging wraps logrus the same way the teacher's log package wraps
// it: a small Logger interface so call sites never import logrus directly,
// plus a per-run correlation id attached to every entry.
package logging

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger is the narrow surface the rest of the module logs through.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
}

type logger struct {
	entry *logrus.Entry
}

// New returns a Logger writing through a fresh logrus.Logger, tagged with a
// freshly generated run correlation id.
func New() Logger {
	base := logrus.New()
	return &logger{entry: base.WithField("run", uuid.NewString())}
}

// NewWithRunID returns a Logger tagged with an explicit run id, for callers
// (tests, for instance) that want a stable id across a sequence
// of log statements spanning multiple calls into the pipeline.
func NewWithRunID(base *logrus.Logger, runID string) Logger {
	if base == nil {
		base = logrus.New()
	}
	return &logger{entry: base.WithField("run", runID)}
}

func (l *logger) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logger) Warn(args ...interface{})                  { l.entry.Warn(args...) }
func (l *logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logger) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *logger) WithField(key string, value interface{}) Logger {
	return &logger{entry: l.entry.WithField(key, value)}
}

// Noop returns a Logger that discards everything, for tests that don't want
// log output on the wire.
func Noop() Logger {
	base := logrus.New()
	base.SetOutput(discard{})
	return &logger{entry: base.WithField("run", "noop")}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
