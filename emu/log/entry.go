package log

import (
	"gopkg.in/Sirupsen/logrus.v0"
)

// Entry is the printf-style counterpart of EntryZ. Its zero value is usable,
// disabled levels cost a single mask check.
type Entry struct {
	mod    Module
	fields logrus.Fields
}

// WithField returns a copy of entry with an additional field.
func (entry Entry) WithField(key string, value any) Entry {
	fields := make(logrus.Fields, len(entry.fields)+1)
	for k, v := range entry.fields {
		fields[k] = v
	}
	fields[key] = value
	return Entry{mod: entry.mod, fields: fields}
}

func (entry Entry) logf(lvl Level, format string, args ...any) {
	if !entry.mod.Enabled(lvl) {
		return
	}

	e := logrus.StandardLogger().WithField("_mod", entry.mod.String())
	if len(entry.fields) != 0 {
		e = e.WithFields(entry.fields)
	}

	switch lvl {
	case DebugLevel:
		e.Debugf(format, args...)
	case InfoLevel:
		e.Infof(format, args...)
	case WarnLevel:
		e.Warnf(format, args...)
	case ErrorLevel:
		e.Errorf(format, args...)
	case FatalLevel:
		e.Fatalf(format, args...)
	}
}

func (entry Entry) Debugf(format string, args ...any) { entry.logf(DebugLevel, format, args...) }
func (entry Entry) Infof(format string, args ...any)  { entry.logf(InfoLevel, format, args...) }
func (entry Entry) Warnf(format string, args ...any)  { entry.logf(WarnLevel, format, args...) }
func (entry Entry) Errorf(format string, args ...any) { entry.logf(ErrorLevel, format, args...) }
func (entry Entry) Fatalf(format string, args ...any) { entry.logf(FatalLevel, format, args...) }
