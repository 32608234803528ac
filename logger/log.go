// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package logger

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogOutputWriter is the default output writer for all loggers
var LogOutputWriter io.Writer = os.Stderr

// SetWriter configures a log writer for the global logger
func SetWriter(w io.Writer) {
	log.Logger = log.Output(w)
}

// UseJSONLogging switches the global logger to plain JSON output,
// which is what we want when the tool runs inside an automation job
func UseJSONLogging(w io.Writer) {
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// CliLogger configures the console writer with color support
func CliLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: LogOutputWriter, TimeFormat: "15:04:05"})
}

// CliNoColorLogger configures the console writer without colors
func CliNoColorLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: LogOutputWriter, TimeFormat: "15:04:05", NoColor: true})
}

// CliCompactLogger auto-detects whether the output supports colors
func CliCompactLogger(w io.Writer) {
	LogOutputWriter = w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		CliLogger()
		return
	}
	CliNoColorLogger()
}

// Set will set up the logger with the provided level. Invalid levels
// fall back to info.
func Set(level string) {
	switch strings.ToLower(level) {
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	default:
		log.Warn().Str("level", level).Msg("unknown log level, defaulting to info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// GetEnvLogLevel returns the log level set via environment variables
func GetEnvLogLevel() (string, bool) {
	if level, ok := os.LookupEnv("FABRICOPS_LOG_LEVEL"); ok {
		return level, true
	}
	if _, ok := os.LookupEnv("DEBUG"); ok {
		return "debug", true
	}
	if _, ok := os.LookupEnv("TRACE"); ok {
		return "trace", true
	}
	return "", false
}

// InitTestEnv will set all log configurations for a test environment
// verbose and colorful
func InitTestEnv() {
	Set("debug")
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
