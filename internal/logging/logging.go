// Package logging wraps zerolog into the structured logger used across the
// engine: every log line carries a timestamp, level, component name, and
// (where applicable) a request or mission ID for correlation.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level is the closed set of supported log levels.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the wire shape of log output.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config configures a Logger.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger is a named structured logger. The zero value is not usable; build
// one with New.
type Logger struct {
	zl zerolog.Logger
}

// New builds a root Logger from cfg. Output defaults to stdout, level
// defaults to info, and format defaults to JSON — the shape expected by
// downstream log aggregation.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var out io.Writer = cfg.Output
	if cfg.Format == FormatText {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(out).With().Timestamp().Logger()
	zl = zl.Level(levelToZerolog(cfg.Level))

	return &Logger{zl: zl}
}

func levelToZerolog(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Named returns a child logger tagged with a "component" field. Use one
// Named logger per subsystem (risk, planner, allocator, ...) so every line
// it emits can be traced back to its origin.
func (l *Logger) Named(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

// WithMission returns a child logger tagged with a mission ID, so every
// line emitted during a planning cycle can be correlated back to it.
func (l *Logger) WithMission(missionID string) *Logger {
	return &Logger{zl: l.zl.With().Str("mission_id", missionID).Logger()}
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) { l.emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields map[string]interface{})  { l.emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields map[string]interface{})  { l.emit(l.zl.Warn(), msg, fields) }

func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	ev := l.zl.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	l.emit(ev, msg, fields)
}

func (l *Logger) emit(ev *zerolog.Event, msg string, fields map[string]interface{}) {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
