// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup applies level and format ("json" or "text") to the standard
// logrus logger and directs it to stdout.  An unknown level falls back
// to info.
func Setup(level, format string) {
	Configure(logrus.StandardLogger(), os.Stdout, level, format)
}

// Configure applies the settings to l.
func Configure(l *logrus.Logger, out io.Writer, level, format string) {
	l.SetOutput(out)
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
}
