package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Level names accepted by Setup.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// ParseLevel maps a level name to a charm log level. Unknown names map to
// info.
func ParseLevel(level string) log.Level {
	switch level {
	case DebugLevel:
		return log.DebugLevel
	case WarnLevel:
		return log.WarnLevel
	case ErrorLevel:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New builds a logger writing to w, as text or JSON.
func New(w io.Writer, level string, json bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           ParseLevel(level),
	})
	if json {
		l.SetFormatter(log.JSONFormatter)
	}
	return l
}

// Setup installs the default logger used by every package.
func Setup(level string, json bool) {
	log.SetDefault(New(os.Stderr, level, json))
}
