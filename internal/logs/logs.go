package logs

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// BackendWriter pairs an io.Writer with the minimum level it accepts.
type BackendWriter struct {
	w        io.Writer
	minLevel Level
}

// NewAllLevelsBackendWriter writes every level to w.
func NewAllLevelsBackendWriter(w io.Writer) *BackendWriter {
	return &BackendWriter{w: w, minLevel: LevelTrace}
}

// NewErrorBackendWriter writes only Error and above to w.
func NewErrorBackendWriter(w io.Writer) *BackendWriter {
	return &BackendWriter{w: w, minLevel: LevelError}
}

// Backend is the shared sink every subsystem Logger writes through.
type Backend struct {
	writers []*BackendWriter
	mtx     sync.Mutex
	closed  bool
}

// NewBackend creates a logging backend that fans writes out to writers.
func NewBackend(writers []*BackendWriter) *Backend {
	return &Backend{writers: writers}
}

func (b *Backend) write(level Level, tag, format string, args []interface{}) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.closed {
		return
	}
	line := fmt.Sprintf("%s [%s] %s %s\n",
		time.Now().UTC().Format("2006-01-02 15:04:05.000"),
		level, tag, fmt.Sprintf(format, args...))
	for _, bw := range b.writers {
		if level < bw.minLevel {
			continue
		}
		_, _ = bw.w.Write([]byte(line))
	}
}

// Close marks the backend closed; subsequent writes are dropped.
func (b *Backend) Close() error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.closed = true
	return nil
}

// Logger returns a tagged logger bound to this backend.
func (b *Backend) Logger(tag string) *Logger {
	lg := &Logger{backend: b, tag: tag}
	lg.level.Store(uint32(LevelInfo))
	return lg
}

// Logger is a subsystem-tagged front-end onto a Backend.
type Logger struct {
	backend *Backend
	tag     string
	level   atomic.Uint32
}

// SetLevel sets the minimum level this logger emits.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(uint32(level))
}

// Level returns the current minimum emitted level.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// Backend returns the backend this logger writes through.
func (l *Logger) Backend() *Backend {
	return l.backend
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.backend.write(level, l.tag, format, args)
}

// Tracef logs at trace level.
func (l *Logger) Tracef(format string, args ...interface{}) { l.logf(LevelTrace, format, args...) }

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...interface{}) { l.logf(LevelInfo, format, args...) }

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.logf(LevelWarn, format, args...) }

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }

// Criticalf logs at critical level.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.logf(LevelCritical, format, args...)
}

// stdoutBackend is a convenience backend used when no rotator is configured
// yet (mirrors the teacher's pre-InitLogRotators behavior of writing to
// stdout only).
var stdoutBackend = NewBackend([]*BackendWriter{NewAllLevelsBackendWriter(os.Stdout)})

// NewStdoutLogger returns a Logger bound to the package's stdout-only backend.
func NewStdoutLogger(tag string) *Logger {
	return stdoutBackend.Logger(tag)
}
