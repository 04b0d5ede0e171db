// Package logging builds the application logger and names the structured
// fields used across packages.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// FldVersion is the version number of the application
	FldVersion = "ver"
	// FldComponent names the subsystem writing the entry
	FldComponent = "component"
	// FldRequestID is the per-request correlation id
	FldRequestID = "request_id"
	// FldUser is the ID of the user involved in the entry
	FldUser = "user"
	// FldEvent is the ID of an event
	FldEvent = "event"
	// FldArtist is the ID of an artist
	FldArtist = "artist"
	// FldImage is the ID of an event image
	FldImage = "image"
	// FldPath is a file system path
	FldPath = "path"
	// FldDriver is the SQL driver name
	FldDriver = "driver"
	// FldQueue is a message queue name
	FldQueue = "queue"
	// FldCount is a number of affected items
	FldCount = "count"
)

// New returns a root entry writing to stderr. format is "text" or "json";
// an unparsable level falls back to info.
func New(level, format string) *logrus.Entry {
	return NewWithOutput(os.Stderr, level, format)
}

// NewWithOutput is New with an explicit writer.
func NewWithOutput(w io.Writer, level, format string) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(w)
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logrus.NewEntry(l)
}

// Discard returns an entry that drops everything. Used by tests.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
