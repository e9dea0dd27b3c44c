package logger

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// Logger writes leveled entries tagged with a subsystem name to a Backend.
type Logger struct {
	level   uint32
	tag     string
	backend *Backend
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32(&l.level))
}

// SetLevel changes the logging level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32(&l.level, uint32(level))
}

// Backend returns the backend this logger writes to.
func (l *Logger) Backend() *Backend {
	return l.backend
}

// Tracef formats and writes a trace level entry.
func (l *Logger) Tracef(format string, args ...interface{}) { l.writef(LevelTrace, format, args...) }

// Debugf formats and writes a debug level entry.
func (l *Logger) Debugf(format string, args ...interface{}) { l.writef(LevelDebug, format, args...) }

// Infof formats and writes an info level entry.
func (l *Logger) Infof(format string, args ...interface{}) { l.writef(LevelInfo, format, args...) }

// Warnf formats and writes a warning level entry.
func (l *Logger) Warnf(format string, args ...interface{}) { l.writef(LevelWarn, format, args...) }

// Errorf formats and writes an error level entry.
func (l *Logger) Errorf(format string, args ...interface{}) { l.writef(LevelError, format, args...) }

// Criticalf formats and writes a critical level entry.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.writef(LevelCritical, format, args...)
}

// Trace writes a trace level entry made of args.
func (l *Logger) Trace(args ...interface{}) { l.write(LevelTrace, args...) }

// Debug writes a debug level entry made of args.
func (l *Logger) Debug(args ...interface{}) { l.write(LevelDebug, args...) }

// Info writes an info level entry made of args.
func (l *Logger) Info(args ...interface{}) { l.write(LevelInfo, args...) }

// Warn writes a warning level entry made of args.
func (l *Logger) Warn(args ...interface{}) { l.write(LevelWarn, args...) }

// Error writes an error level entry made of args.
func (l *Logger) Error(args ...interface{}) { l.write(LevelError, args...) }

// Critical writes a critical level entry made of args.
func (l *Logger) Critical(args ...interface{}) { l.write(LevelCritical, args...) }

func (l *Logger) writef(level Level, format string, args ...interface{}) {
	if level < l.Level() || !l.backend.IsRunning() {
		return
	}
	l.backend.write(level, l.format(level, fmt.Sprintf(format, args...)))
}

func (l *Logger) write(level Level, args ...interface{}) {
	if level < l.Level() || !l.backend.IsRunning() {
		return
	}
	l.backend.write(level, l.format(level, fmt.Sprint(args...)))
}

// format builds "2006-01-02 15:04:05.000 [LVL] TAG: [file:line] message\n".
func (l *Logger) format(level Level, message string) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	buf.WriteString(" [")
	buf.WriteString(level.String())
	buf.WriteString("] ")
	buf.WriteString(l.tag)
	buf.WriteString(": ")

	if l.backend.flag&(LogFlagShortFile|LogFlagLongFile) != 0 {
		_, file, line, ok := runtime.Caller(3)
		if !ok {
			file, line = "???", 0
		} else if l.backend.flag&LogFlagShortFile != 0 {
			file = file[strings.LastIndex(file, "/")+1:]
		}
		fmt.Fprintf(buf, "%s:%d ", file, line)
	}

	buf.WriteString(message)
	if !strings.HasSuffix(message, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// stderrWriter adapts os.Stderr to a WriteCloser that is never closed.
type stderrWriter struct{}

func (stderrWriter) Write(p []byte) (int, error) { return os.Stderr.Write(p) }
func (stderrWriter) Close() error                { return nil }
