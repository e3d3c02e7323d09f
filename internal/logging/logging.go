// Package logging provides the levelled, logfmt-encoded logger shared by
// every tessera component.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-logfmt/logfmt"
)

// Level represents the severity level of a log record.
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for general informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ValidLevels lists the level names accepted by ParseLevel.
func ValidLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ParseLevel parses a string into a Level. Unknown names map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes one logfmt record per call.
//
// Derived loggers (WithField, WithComponent) share the parent's output and
// lock, so records from different components never interleave.
type Logger struct {
	mu       *sync.Mutex
	level    *Level
	output   io.Writer
	prefix   string
	fields   []any
	disabled bool
	now      func() time.Time
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum level to output.
	Level Level
	// Output is where records are written. Defaults to os.Stderr.
	Output io.Writer
	// Prefix is emitted as the "app" key of every record.
	Prefix string
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
		Prefix: "tessera",
	}
}

// New creates a new logger with the given configuration.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	level := cfg.Level
	return &Logger{
		mu:     &sync.Mutex{},
		level:  &level,
		output: cfg.Output,
		prefix: cfg.Prefix,
		now:    time.Now,
	}
}

// WithField returns a new logger with the given key/value appended to every
// record.
func (l *Logger) WithField(key string, value any) *Logger {
	if l == nil || l.mu == nil {
		return Null
	}
	fields := make([]any, 0, len(l.fields)+2)
	fields = append(fields, l.fields...)
	fields = append(fields, key, value)

	return &Logger{
		mu:       l.mu,
		level:    l.level,
		output:   l.output,
		prefix:   l.prefix,
		fields:   fields,
		disabled: l.disabled,
		now:      l.now,
	}
}

// WithComponent returns a new logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel sets the minimum level for this logger and all loggers derived
// from the same root.
func (l *Logger) SetLevel(level Level) {
	if l == nil || l.mu == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.level = level
}

// Enabled reports whether records at level would be written.
func (l *Logger) Enabled(level Level) bool {
	if l == nil || l.mu == nil || l.disabled {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= *l.level
}

// Debug logs a debug record. keyvals are alternating keys and values.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.log(LevelDebug, msg, keyvals)
}

// Info logs an info record.
func (l *Logger) Info(msg string, keyvals ...any) {
	l.log(LevelInfo, msg, keyvals)
}

// Warn logs a warning record.
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.log(LevelWarn, msg, keyvals)
}

// Error logs an error record.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.log(LevelError, msg, keyvals)
}

func (l *Logger) log(level Level, msg string, keyvals []any) {
	if l == nil || l.mu == nil || l.disabled {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if level < *l.level {
		return
	}

	record := make([]any, 0, 8+len(l.fields)+len(keyvals))
	record = append(record,
		"ts", l.now().Format("2006-01-02T15:04:05.000"),
		"level", level.String(),
	)
	if l.prefix != "" {
		record = append(record, "app", l.prefix)
	}
	record = append(record, l.fields...)
	record = append(record, "msg", msg)
	record = append(record, keyvals...)
	if len(keyvals)%2 != 0 {
		record = append(record, nil)
	}

	enc := logfmt.NewEncoder(l.output)
	// Unsupported values are rendered by logfmt as errors in place; a
	// failed write has nowhere else to go.
	_ = enc.EncodeKeyvals(record...)
	_ = enc.EndRecord()
}

// Null is a logger that discards all output.
var Null = &Logger{disabled: true}

var (
	defaultLogger     *Logger
	defaultLoggerOnce sync.Once
	defaultMu         sync.RWMutex
)

// Get returns the process-wide logger, creating a default one on first use.
func Get() *Logger {
	defaultLoggerOnce.Do(func() {
		defaultMu.Lock()
		if defaultLogger == nil {
			defaultLogger = New(DefaultConfig())
		}
		defaultMu.Unlock()
	})
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Set replaces the process-wide logger.
// Should be called early in startup.
func Set(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// OrDefault returns l, or the process-wide logger when l is nil.
func OrDefault(l *Logger) *Logger {
	if l == nil {
		return Get()
	}
	return l
}
