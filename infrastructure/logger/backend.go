package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

// defaultFlags holds the output flags read from the LOGFLAGS environment
// variable. It is a package variable rather than an init() product because
// it is consumed by other package-level variable initializers.
var defaultFlags = flagsFromEnv()

// Flags that modify the way a Backend formats entries.
const (
	// LogFlagLongFile prefixes every entry with the full path and line of
	// the logging callsite, e.g. /a/b/c/main.go:123.
	LogFlagLongFile uint32 = 1 << iota

	// LogFlagShortFile prefixes every entry with the file name and line of
	// the logging callsite, e.g. main.go:123. Takes precedence over
	// LogFlagLongFile.
	LogFlagShortFile
)

func flagsFromEnv() (flags uint32) {
	for _, f := range strings.Split(os.Getenv("LOGFLAGS"), ",") {
		switch strings.TrimSpace(f) {
		case "longfile":
			flags |= LogFlagLongFile
		case "shortfile":
			flags |= LogFlagShortFile
		}
	}
	return flags
}

const (
	entriesBuffer = 512

	defaultThresholdKB = 100 * 1000 // 100 MB per file before rolling
	defaultMaxRolls    = 8
)

type logEntry struct {
	log   []byte
	level Level
}

type logWriter interface {
	io.WriteCloser
	LogLevel() Level
}

type leveledWriter struct {
	io.WriteCloser
	level Level
}

func (lw leveledWriter) LogLevel() Level {
	return lw.level
}

// Backend fans log entries out to a set of writers, each with its own
// minimum level. All loggers created from a backend share its single writing
// goroutine, so entries are never interleaved.
type Backend struct {
	flag      uint32
	isRunning uint32
	writers   []logWriter
	writeChan chan logEntry
	done      sync.WaitGroup
	closeOnce sync.Once
}

// NewBackendWithFlags creates a Backend using the given formatting flags
// instead of the ones from LOGFLAGS.
func NewBackendWithFlags(flags uint32) *Backend {
	return &Backend{flag: flags, writeChan: make(chan logEntry, entriesBuffer)}
}

// NewBackend creates a new logger backend.
func NewBackend() *Backend {
	return NewBackendWithFlags(defaultFlags)
}

// AddLogFile adds a rotated log file receiving every entry at or above
// logLevel. The file and its directory are created if missing.
func (b *Backend) AddLogFile(logFile string, logLevel Level) error {
	return b.AddLogFileWithCustomRotator(logFile, logLevel, defaultThresholdKB, defaultMaxRolls)
}

// AddLogWriter adds an arbitrary writer receiving every entry at or above
// logLevel.
func (b *Backend) AddLogWriter(writer io.WriteCloser, logLevel Level) error {
	if b.IsRunning() {
		return errors.New("cannot add a writer to a running logger backend")
	}
	b.writers = append(b.writers, leveledWriter{WriteCloser: writer, level: logLevel})
	return nil
}

// AddLogFileWithCustomRotator is like AddLogFile but with explicit rotation
// thresholds.
func (b *Backend) AddLogFileWithCustomRotator(logFile string, logLevel Level, thresholdKB int64, maxRolls int) error {
	if b.IsRunning() {
		return errors.New("cannot add a log file to a running logger backend")
	}
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", logDir)
		}
	}
	r, err := rotator.New(logFile, thresholdKB, false, maxRolls)
	if err != nil {
		return errors.Wrapf(err, "failed to create file rotator for %s", logFile)
	}
	b.writers = append(b.writers, leveledWriter{WriteCloser: r, level: logLevel})
	return nil
}

// Run starts the writing goroutine. It must be called at most once.
func (b *Backend) Run() error {
	if !atomic.CompareAndSwapUint32(&b.isRunning, 0, 1) {
		return errors.New("the logger backend is already running")
	}
	b.done.Add(1)
	go func() {
		defer b.done.Done()
		defer func() {
			if err := recover(); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Fatal error in logger.Backend goroutine: %+v\n", err)
				_, _ = fmt.Fprintf(os.Stderr, "Goroutine stacktrace: %s\n", debug.Stack())
			}
		}()
		for entry := range b.writeChan {
			for _, writer := range b.writers {
				if entry.level >= writer.LogLevel() {
					_, _ = writer.Write(entry.log)
				}
			}
		}
	}()
	return nil
}

// IsRunning returns whether Run has been called.
func (b *Backend) IsRunning() bool {
	return atomic.LoadUint32(&b.isRunning) != 0
}

// Close flushes pending entries and closes all writers.
func (b *Backend) Close() {
	b.closeOnce.Do(func() {
		close(b.writeChan)
		b.done.Wait()
		for _, writer := range b.writers {
			_ = writer.Close()
		}
	})
}

// Logger returns a new logger for the given subsystem. It is created with
// LevelInfo; entries are dropped until the backend is running.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{level: uint32(LevelInfo), tag: subsystemTag, backend: b}
}

func (b *Backend) write(level Level, entry []byte) {
	if !b.IsRunning() {
		return
	}
	defer func() {
		// The channel may be closed by a concurrent Close.
		_ = recover()
	}()
	b.writeChan <- logEntry{log: entry, level: level}
}
