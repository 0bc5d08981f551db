package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level uint8

// Same ordering as logrus: the lower the value, the more severe.
const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

var disabled bool

func init() {
	// Filtering is done per module, let everything reach logrus.
	logrus.SetLevel(logrus.DebugLevel)
}

// SetOutput sets the destination of all logs.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// Disable turns off all logging, including warnings and errors.
func Disable() {
	disabled = true
}
