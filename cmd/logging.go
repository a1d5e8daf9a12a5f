package cmd

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// setupLogger returns a console logger writing to w. verbose forces debug.
func setupLogger(level string, verbose bool, w io.Writer) zerolog.Logger {
	lvl := zerolog.WarnLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn", "warning":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(lvl).
		With().Timestamp().Logger()
}
