// Package logx is a thin structured-logging facade over zerolog. The rest of
// the codebase logs through this package so the backing logger can be swapped
// or silenced in tests.
package logx

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var defaultLogger zerolog.Logger

func init() {
	defaultLogger = newFromEnv()
}

func newFromEnv() zerolog.Logger {
	var out = zerolog.New(os.Stderr)
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "console") {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	logger := out.With().Timestamp().Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// SetLevel adjusts the level of the default logger ("debug", "info", ...).
func SetLevel(name string) {
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	defaultLogger = defaultLogger.Level(level)
}

// SetDefaultLogger replaces the backing logger (used by tests).
func SetDefaultLogger(l zerolog.Logger) {
	defaultLogger = l
}

func Debug(msg string)                          { defaultLogger.Debug().Msg(msg) }
func Info(msg string)                           { defaultLogger.Info().Msg(msg) }
func Warn(msg string)                           { defaultLogger.Warn().Msg(msg) }
func Error(msg string)                          { defaultLogger.Error().Msg(msg) }
func Fatal(msg string)                          { defaultLogger.Fatal().Msg(msg) }
func Debugf(format string, args ...interface{}) { defaultLogger.Debug().Msgf(format, args...) }
func Infof(format string, args ...interface{})  { defaultLogger.Info().Msgf(format, args...) }
func Warnf(format string, args ...interface{})  { defaultLogger.Warn().Msgf(format, args...) }
func Errorf(format string, args ...interface{}) { defaultLogger.Error().Msgf(format, args...) }
func Fatalf(format string, args ...interface{}) { defaultLogger.Fatal().Msgf(format, args...) }
