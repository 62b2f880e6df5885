// SPDX-License-Identifier: Apache-2.0

package zerolog

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	loglib "github.com/xataio/anonymiser/pkg/log"
	zerologlib "github.com/xataio/anonymiser/pkg/log/zerolog"

	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// LogLevel defaults to info.
	LogLevel string
	// Format is either "console" (default) or "json".
	Format string
	// Output defaults to stderr. Stdout is kept free for command output.
	Output io.Writer
}

const (
	ConsoleFormat = "console"
	JSONFormat    = "json"

	serviceField = "service"
	serviceName  = "anonymiser"
)

var (
	ErrInvalidLevel  = errors.New("invalid log level")
	ErrInvalidFormat = errors.New("invalid log format")
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.ErrorFieldName = "error.message"
	zerolog.ErrorStackFieldName = "error.stack"
	// zerolog already emits the level, the logr v-level is redundant
	zerologr.VerbosityFieldName = ""

	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return path.Base(file) + ":" + strconv.Itoa(line)
	}
}

// SetGlobalLogger routes the stdlib log package and the zerolog global
// loggers to the logger on input, so dependencies log through it too.
func SetGlobalLogger(logger *zerolog.Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)

	log.Logger = *logger
	zerolog.DefaultContextLogger = logger
}

func NewStdLogger(l *zerolog.Logger) loglib.Logger {
	return zerologlib.NewLogger(l)
}

// NewLogger creates a logger emitting a timestamp, the caller and the service
// name, plus the stack trace of errors carrying one.
//
// Trace logs are limited to 100 per minute. Debug logs are sampled, every
// 5th log is kept once the limit of 1000 debug logs per minute is reached.
func NewLogger(config *Config) (*zerolog.Logger, error) {
	level, err := config.level()
	if err != nil {
		return nil, err
	}
	out, err := config.writer()
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(out).
		Sample(zerolog.LevelSampler{
			TraceSampler: &zerolog.BurstSampler{
				Burst:  100,
				Period: time.Minute,
			},
			DebugSampler: &zerolog.BurstSampler{
				Burst:       1000,
				Period:      time.Minute,
				NextSampler: &zerolog.BasicSampler{N: 5},
			},
		}).
		With().
		Timestamp().
		Caller().
		Stack().
		Str(serviceField, serviceName).
		Logger().
		Level(level)

	return &logger, nil
}

func (c *Config) level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, c.LogLevel)
	}
	return level, nil
}

func (c *Config) writer() (io.Writer, error) {
	out := c.Output
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(c.Format) {
	case "", ConsoleFormat:
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339Nano,
		}, nil
	case JSONFormat:
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q, must be one of %s, %s", ErrInvalidFormat, c.Format, ConsoleFormat, JSONFormat)
	}
}
