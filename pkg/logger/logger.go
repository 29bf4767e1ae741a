package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Leveled logger used across the portal service.
// - Debug/Info/Warn/Error/Fatal variants and Init(level)
// - JSON lines by default, human-readable output when LOG_FORMAT=console

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stdout
	format           = "json"
	level  Level     = LevelInfo
	zl     zerolog.Logger
)

func init() {
	rebuild()
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level = LevelDebug
	case "warn", "warning":
		level = LevelWarn
	case "error":
		level = LevelError
	case "fatal":
		level = LevelFatal
	default:
		level = LevelInfo
	}
	rebuild()
}

// SetFormat switches between "json" and "console" output.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.EqualFold(strings.TrimSpace(f), "console") {
		format = "console"
	} else {
		format = "json"
	}
	rebuild()
}

// SetOutput redirects log output; used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
	rebuild()
}

// rebuild must be called with mu held.
func rebuild() {
	zerolog.TimeFieldFormat = time.RFC3339
	var w io.Writer = out
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	zl = zerolog.New(w).Level(toZerolog(level)).With().Timestamp().Logger()
}

func toZerolog(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelFatal:
		return zerolog.FatalLevel
	}
	return zerolog.InfoLevel
}

// L returns the underlying structured logger for call sites that attach fields.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := zl
	return &l
}

func Debugf(format string, v ...interface{}) { L().Debug().Msgf(format, v...) }
func Infof(format string, v ...interface{})  { L().Info().Msgf(format, v...) }
func Warnf(format string, v ...interface{})  { L().Warn().Msgf(format, v...) }
func Errorf(format string, v ...interface{}) { L().Error().Msgf(format, v...) }

func Fatalf(format string, v ...interface{}) {
	L().WithLevel(zerolog.FatalLevel).Msgf(format, v...)
	os.Exit(1)
}

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) {
	L().Info().Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}
