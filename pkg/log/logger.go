// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"unicode/utf8"
)

type Logger interface {
	Trace(msg string, fields ...Fields)
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(err error, msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	Panic(msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

type Fields map[string]any

// Common field keys.
const (
	ModuleField    = "module"
	RequestIDField = "request_id"
	RecordsField   = "records"
	WorkersField   = "workers"
)

// Redacted holds a value that may contain personal data. It is never written
// to the log output, only its length is.
type Redacted string

func (r Redacted) String() string {
	return fmt.Sprintf("[redacted %d chars]", utf8.RuneCountInString(string(r)))
}

func (r Redacted) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

type NoopLogger struct{}

func (l *NoopLogger) Trace(msg string, fields ...Fields)            {}
func (l *NoopLogger) Debug(msg string, fields ...Fields)            {}
func (l *NoopLogger) Info(msg string, fields ...Fields)             {}
func (l *NoopLogger) Warn(err error, msg string, fields ...Fields)  {}
func (l *NoopLogger) Error(err error, msg string, fields ...Fields) {}
func (l *NoopLogger) Panic(msg string, fields ...Fields)            {}
func (l *NoopLogger) WithFields(fields Fields) Logger {
	return l
}

func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

// NewLogger will return the logger on input if not nil, or a noop logger
// otherwise.
func NewLogger(l Logger) Logger {
	if l == nil {
		return &NoopLogger{}
	}
	return l
}

// NewModuleLogger returns the logger on input (or a noop logger) tagged with
// the module name.
func NewModuleLogger(l Logger, module string) Logger {
	return NewLogger(l).WithFields(Fields{ModuleField: module})
}

// MergeFields combines the field maps on input. Later maps take precedence
// on duplicate keys.
func MergeFields(fieldMaps ...Fields) Fields {
	size := 0
	for _, f := range fieldMaps {
		size += len(f)
	}
	merged := make(Fields, size)
	for _, f := range fieldMaps {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}
