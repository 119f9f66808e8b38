package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	logFormatPlain = "plain"
	logFormatText  = "text"
	logFormatJSON  = "json"
)

// newConsoleWriter parses the log format and wraps w accordingly.
func newConsoleWriter(w io.Writer, format string) (io.Writer, error) {
	switch strings.ToLower(format) {
	case logFormatPlain, logFormatText:
		return &zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    strings.EqualFold(format, logFormatPlain),
			TimeFormat: time.RFC3339,
			FormatLevel: func(i any) string {
				if ll, ok := i.(string); ok {
					return strings.ToUpper(ll)
				}

				return "????"
			},
		}, nil

	case logFormatJSON:
		return w, nil

	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	out, err := newConsoleWriter(w, format)
	if err != nil {
		return zerolog.Nop(), err
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
