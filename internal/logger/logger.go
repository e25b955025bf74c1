// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// L is the global logger. It logs at info level to stderr until InitLogger is called.
var L = logrus.New()

// InitLogger configures L. Call it once at startup, after loading config.
// format is "json" or "text"; anything else falls back to text.
func InitLogger(levelStr, format string) {
	Configure(L, os.Stdout, levelStr, format)
	L.WithFields(logrus.Fields{
		"level":  L.GetLevel().String(),
		"format": strings.ToLower(format),
	}).Info("Logger initialized")
}

// Configure applies level and format to l and directs its output to out.
func Configure(l *logrus.Logger, out io.Writer, levelStr, format string) {
	l.SetOutput(out)

	level, err := logrus.ParseLevel(strings.TrimSpace(levelStr))
	if err != nil {
		level = logrus.InfoLevel
		l.WithField("configuredLevel", levelStr).Warn("Invalid LOG_LEVEL specified, defaulting to INFO")
	}
	l.SetLevel(level)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
		return
	}
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
