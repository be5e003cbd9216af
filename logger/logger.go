// Package logger provides the process-wide structured logger used across
// quantcore. It wraps zerolog behind a small set of printf-style helpers so
// call sites never import zerolog directly.
package logger

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log zerolog.Logger
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
}

// UseJSON switches the logger to line-delimited JSON output, for production
// deployments where logs are shipped to an aggregator.
func UseJSON() {
	mu.Lock()
	defer mu.Unlock()
	log = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// SetLevel parses a level string ("debug", "info", "warn", "error") and
// applies it; unknown levels are ignored.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	log = log.Level(lvl)
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debugf(format string, args ...interface{}) {
	current().Debug().Msgf(format, args...)
}

func Info(args ...interface{}) {
	l := current().Info()
	if len(args) == 1 {
		if s, ok := args[0].(string); ok {
			l.Msg(s)
			return
		}
	}
	l.Msgf("%v", args...)
}

func Infof(format string, args ...interface{}) {
	current().Info().Msgf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	current().Warn().Msgf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	current().Error().Msgf(format, args...)
}
