// Package logging builds the diagnostic logger. Logs always go to standard
// error because standard output carries the JSON result.
package logging

import (
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level, or an unknown one, is configured.
const DefaultLevel = logrus.WarnLevel

// New returns a logger writing text records to w at the given level name.
// Unknown level names fall back to DefaultLevel and are reported once at
// warning level.
func New(w io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl := DefaultLevel
	if s := strings.TrimSpace(level); s != "" {
		parsed, err := logrus.ParseLevel(s)
		if err != nil {
			log.WithField("level", s).Warn("unknown log level, using warn")
		} else {
			lvl = parsed
		}
	}
	log.SetLevel(lvl)
	return log
}

// ForRun returns an entry tagged with a fresh run id so the records of one
// invocation can be picked out of a shared log.
func ForRun(log *logrus.Logger) *logrus.Entry {
	return log.WithField("run", uuid.NewString()[:8])
}
