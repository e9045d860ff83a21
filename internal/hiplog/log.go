// Package hiplog centralizes zerolog setup so every package in the
// pipeline logs through the same configured writer.
package hiplog

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339

	if lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("HIPINDEX_LOG_LEVEL"))); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if strings.EqualFold(os.Getenv("HIPINDEX_LOG_FORMAT"), "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// For returns a child logger tagged with the given component name, the
// same "component" field convention the teacher's metrics and provider
// code attaches to its loggers.
func For(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
