package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFilename = "wallet.log"

// Options configures New.
type Options struct {
	Level   string    // trace, debug, info, warn, error; unknown values mean warn
	Out     io.Writer // console destination, defaults to os.Stderr
	FileDir string    // when set, also write JSON lines to a rotating file here
}

// New builds a zerolog logger writing human-readable lines to the console and,
// optionally, JSON to a rotating file.
func New(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var w io.Writer = zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.DateTime,
	}

	if opts.FileDir != "" {
		fileLogger := &lumberjack.Logger{
			Filename:   filepath.Join(opts.FileDir, logFilename),
			MaxSize:    5, // megabytes
			MaxAge:     3,
			MaxBackups: 3,
		}
		w = zerolog.MultiLevelWriter(w, fileLogger)
	}

	level := ParseLevel(opts.Level)
	l := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()

	if level <= zerolog.DebugLevel {
		l = l.With().Caller().Logger()
	}
	return l
}

// ParseLevel maps a level name to a zerolog level, defaulting to warn so the
// CLI stays quiet unless asked.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning", "":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
