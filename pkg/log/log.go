// Package log creates the structured loggers used by the services and the
// command line tool. Loggers are passed to components explicitly.
package log

import (
	"io"
	"os"
	"strings"

	// Packages
	zap "go.uber.org/zap"
	zapcore "go.uber.org/zap/zapcore"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Log level names
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "lvl",
	NameKey:        "name",
	CallerKey:      "caller",
	MessageKey:     "message",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Logger is the logger passed to components
type Logger = zap.SugaredLogger

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a console logger writing to w at the named level. An unknown
// level name logs at info. When w is nil, stderr is used.
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(w),
			zap.NewAtomicLevelAt(ParseLevel(level)),
		),
		zap.AddCaller(),
	).Sugar()
}

// Nop returns a logger which discards everything
func Nop() *Logger {
	return zap.NewNop().Sugar()
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ParseLevel returns the zap level for a level name
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn, "warning":
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
