// Package logging builds the logrus loggers used by the goPass binaries.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options selects level, output format and destination.
type Options struct {
	Level  string
	Format string // "json" or "text"
	Output io.Writer
}

// New returns a configured logger. An unknown level falls back to info and
// logs a warning; an unknown format falls back to text.
func New(opts Options) *logrus.Logger {
	logger := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	switch strings.ToLower(opts.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
		if opts.Level != "" {
			logger.WithField("level", opts.Level).Warn("invalid log level, defaulting to info")
		}
	} else {
		logger.SetLevel(level)
	}

	return logger
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
