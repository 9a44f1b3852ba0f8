package logx

import "github.com/rs/zerolog"

// Fields is a set of structured fields attached to a log entry.
type Fields map[string]interface{}

// Entry is a logger with fields pre-attached. Entries are cheap to build and
// are meant to be used once for a single log line.
type Entry struct {
	fields Fields
	err    error
}

// WithField starts an entry with a single field.
func WithField(key string, value interface{}) *Entry {
	return &Entry{fields: Fields{key: value}}
}

// WithFields starts an entry with a set of fields.
func WithFields(fields Fields) *Entry {
	return &Entry{fields: fields}
}

// WithError starts an entry carrying an error field.
func WithError(err error) *Entry {
	return &Entry{err: err}
}

// WithField adds a field to the entry.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	if e.fields == nil {
		e.fields = make(Fields)
	}
	e.fields[key] = value
	return e
}

// WithFields adds a set of fields to the entry.
func (e *Entry) WithFields(fields Fields) *Entry {
	if e.fields == nil {
		e.fields = make(Fields, len(fields))
	}
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithError attaches an error to the entry.
func (e *Entry) WithError(err error) *Entry {
	e.err = err
	return e
}

func (e *Entry) Debug(msg string) { e.decorate(defaultLogger.Debug()).Msg(msg) }
func (e *Entry) Info(msg string)  { e.decorate(defaultLogger.Info()).Msg(msg) }
func (e *Entry) Warn(msg string)  { e.decorate(defaultLogger.Warn()).Msg(msg) }
func (e *Entry) Error(msg string) { e.decorate(defaultLogger.Error()).Msg(msg) }

func (e *Entry) Debugf(format string, args ...interface{}) {
	e.decorate(defaultLogger.Debug()).Msgf(format, args...)
}

func (e *Entry) Infof(format string, args ...interface{}) {
	e.decorate(defaultLogger.Info()).Msgf(format, args...)
}

func (e *Entry) Warnf(format string, args ...interface{}) {
	e.decorate(defaultLogger.Warn()).Msgf(format, args...)
}

func (e *Entry) Errorf(format string, args ...interface{}) {
	e.decorate(defaultLogger.Error()).Msgf(format, args...)
}

func (e *Entry) decorate(ev *zerolog.Event) *zerolog.Event {
	if e.err != nil {
		ev = ev.Err(e.err)
	}
	for k, v := range e.fields {
		ev = ev.Interface(k, v)
	}
	return ev
}
