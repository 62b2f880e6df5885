// SPDX-License-Identifier: Apache-2.0

package zerolog

import (
	"time"

	"github.com/rs/zerolog"

	loglib "github.com/xataio/anonymiser/pkg/log"
)

// Logger adapts a zerolog logger to the loglib.Logger interface.
type Logger struct {
	zerologger *zerolog.Logger
	fields     loglib.Fields
}

// values longer than this are truncated, bulk payloads would otherwise make
// the log unreadable
const maxValueBytes = 10000

func NewLogger(zl *zerolog.Logger) *Logger {
	return &Logger{
		zerologger: zl,
	}
}

func (l *Logger) Trace(msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Trace(), msg, fields)
}

func (l *Logger) Debug(msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Info(), msg, fields)
}

func (l *Logger) Warn(err error, msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Warn().Err(err), msg, fields)
}

func (l *Logger) Error(err error, msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Error().Err(err), msg, fields)
}

func (l *Logger) Panic(msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Panic(), msg, fields)
}

func (l *Logger) WithFields(fields loglib.Fields) loglib.Logger {
	return &Logger{
		zerologger: l.zerologger,
		fields:     loglib.MergeFields(l.fields, fields),
	}
}

// write adds the call fields first and the logger fields last, so the logger
// fields win on duplicate keys. A nil event means the level is disabled.
func (l *Logger) write(event *zerolog.Event, msg string, fields []loglib.Fields) {
	if event == nil {
		return
	}
	for _, m := range fields {
		event = addFields(event, m)
	}
	addFields(event, l.fields).Msg(msg)
}

func addFields(event *zerolog.Event, fields loglib.Fields) *zerolog.Event {
	for key, value := range fields {
		switch v := value.(type) {
		case loglib.Redacted:
			event = event.Stringer(key, v)
		case string:
			event = event.Str(key, truncate(v))
		case int:
			event = event.Int(key, v)
		case int64:
			event = event.Int64(key, v)
		case uint64:
			event = event.Uint64(key, v)
		case bool:
			event = event.Bool(key, v)
		case float64:
			event = event.Float64(key, v)
		case error:
			event = event.AnErr(key, v)
		case []byte:
			event = event.Bytes(key, []byte(truncate(string(v))))
		case time.Time:
			event = event.Time(key, v)
		case time.Duration:
			event = event.Dur(key, v)
		case []string:
			event = event.Strs(key, v)
		default:
			event = event.Any(key, v)
		}
	}
	return event
}

func truncate(s string) string {
	if len(s) > maxValueBytes {
		return s[:maxValueBytes]
	}
	return s
}
