package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process-wide logger built by Setup.
type Options struct {
	// Verbose enables trace-level output. Quiet restricts output to
	// warnings and errors. Verbose wins if both are set by mistake.
	Verbose bool
	Quiet   bool

	// File is the path of the rotating log file. Empty disables the
	// file sink and logs to the console only.
	File string

	// MaxSizeMB, MaxBackups and MaxAgeDays control rotation of the
	// file sink. Zero values fall back to lumberjack's defaults.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Level returns the zerolog level the options select.
func (o Options) Level() zerolog.Level {
	switch {
	case o.Verbose:
		return zerolog.TraceLevel
	case o.Quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup builds the root logger: a console sink (pretty-printed when
// stderr is a terminal) plus an optional rotating file sink. It also
// installs the result as zerolog's global logger so the placeholder
// context and any stray log calls share the same destination.
func Setup(o Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.DurationFieldUnit = time.Millisecond

	writers := []io.Writer{consoleWriter()}

	if o.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
			Compress:   true,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(o.Level()).
		With().Timestamp().Logger()

	log.Logger = logger
	return logger
}

// consoleWriter returns a human-readable writer when stderr is a
// terminal and plain JSON output otherwise (e.g. when piped to a file
// or another process).
func consoleWriter() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return os.Stderr
}
