// Package log builds the zerolog logger the commands share. All
// diagnostic output goes to stderr so stdout stays clean for reports
// and YAML output.
package log

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kstrohbeck/maestro/internal/config"
)

// FromConfig builds a logger from the config's level and format.
func FromConfig(conf config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(conf.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", conf.Level)
	}

	switch strings.ToLower(conf.Format) {
	case "json":
		return zerolog.
			New(os.Stderr).
			With().
			Timestamp().
			Logger().
			Level(level), nil
	case "console":
		return zerolog.
			New(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: time.RFC3339,
			}).
			With().
			Timestamp().
			Logger().
			Level(level), nil
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", conf.Format)
	}
}

// Default is the logger used before the config is loaded.
func Default() zerolog.Logger {
	return zerolog.
		New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).
		With().
		Timestamp().
		Logger().
		Level(zerolog.InfoLevel)
}
