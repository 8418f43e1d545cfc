// Package logger provides a small structured-logging facade over logrus.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logger used throughout the compiler.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
}

type logger struct {
	entry *logrus.Entry
}

// New creates a logger writing text-formatted entries to stdout at the given level.
func New(level string) Logger {
	return NewWithWriter(level, os.Stdout, "text")
}

// NewJSON creates a logger writing JSON-formatted entries to stdout.
func NewJSON(level string) Logger {
	return NewWithWriter(level, os.Stdout, "json")
}

// NewWithWriter creates a logger with a custom writer and format ("text" or "json").
func NewWithWriter(level string, writer *os.File, format string) Logger {
	l := logrus.New()
	l.SetOutput(writer)
	l.SetLevel(parseLevel(level))

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &logger{entry: logrus.NewEntry(l)}
}

// NewFromConfig creates a logger based on a level/format pair, matching the
// project's config schema.
func NewFromConfig(level, format string) Logger {
	if format == "json" {
		return NewJSON(level)
	}
	return New(level)
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (l *logger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *logger) Error(args ...interface{}) { l.entry.Error(args...) }
func (l *logger) Fatal(args ...interface{}) { l.entry.Fatal(args...) }

func (l *logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *logger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

func (l *logger) WithField(key string, value interface{}) Logger {
	return &logger{entry: l.entry.WithField(key, value)}
}

func (l *logger) WithFields(fields map[string]interface{}) Logger {
	return &logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logger) WithError(err error) Logger {
	return &logger{entry: l.entry.WithError(err)}
}

// noopLogger discards everything; used in tests that don't care about output.
type noopLogger struct{}

func (noopLogger) Debug(args ...interface{})                       {}
func (noopLogger) Info(args ...interface{})                        {}
func (noopLogger) Warn(args ...interface{})                        {}
func (noopLogger) Error(args ...interface{})                       {}
func (noopLogger) Fatal(args ...interface{})                       {}
func (noopLogger) Debugf(format string, args ...interface{})       {}
func (noopLogger) Infof(format string, args ...interface{})        {}
func (noopLogger) Warnf(format string, args ...interface{})        {}
func (noopLogger) Errorf(format string, args ...interface{})       {}
func (noopLogger) Fatalf(format string, args ...interface{})       {}
func (n noopLogger) WithField(key string, value interface{}) Logger  { return n }
func (n noopLogger) WithFields(fields map[string]interface{}) Logger { return n }
func (n noopLogger) WithError(err error) Logger                      { return n }

// NewNoop returns a logger that discards everything, for tests.
func NewNoop() Logger { return noopLogger{} }
