// Package log provides structured logging for skins.
// It keeps a small category-based API on top of a zap core and is only
// enabled when a log file is configured (--debug flag or SKINS_DEBUG env).
package log

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}

// ParseLevel maps a config string to a Level. Unknown values map to LevelDebug.
func ParseLevel(s string) Level {
	switch s {
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

// Category groups related log messages.
type Category string

const (
	CatConfig   Category = "config"   // Configuration loading/saving
	CatRegistry Category = "registry" // Skin declarations and instance mounts
	CatTheme    Category = "theme"    // Theme loading, validation and activation
	CatVariant  Category = "variant"  // Variant declarations and evaluation
	CatCascade  Category = "cascade"  // Token resolution
	CatEngine   Category = "engine"   // Snapshot recompute and delivery
	CatFile     Category = "file"     // Theme file parsing
	CatWatcher  Category = "watcher"  // File watcher events
	CatCache    Category = "cache"    // cache operations
	CatBaseline Category = "baseline" // Baseline database
	CatUI       Category = "ui"       // Playground updates
)

// Logger provides structured logging.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	zl      *zap.Logger
	level   zap.AtomicLevel
	enabled bool
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the global logger writing to path.
// Returns a cleanup function that flushes and closes the log file.
func Init(path string) (func(), error) {
	var initErr error
	once.Do(func() {
		defaultLogger, initErr = newLogger(path)
	})
	if initErr != nil {
		return nil, initErr
	}
	if defaultLogger == nil {
		return nil, fmt.Errorf("logger initialization failed or already attempted")
	}
	return func() {
		if defaultLogger != nil {
			_ = defaultLogger.zl.Sync()
			if defaultLogger.file != nil {
				_ = defaultLogger.file.Close()
			}
		}
	}, nil
}

func newLogger(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is user-controlled debug log path
	if err != nil {
		return nil, err
	}
	return newWithSyncer(zapcore.AddSync(f), f), nil
}

func newWithSyncer(ws zapcore.WriteSyncer, f *os.File) *Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05")

	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(ws), level)

	return &Logger{
		file:    f,
		zl:      zap.New(core).Named("skins"),
		level:   level,
		enabled: true,
	}
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.enabled = enabled
		defaultLogger.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if defaultLogger != nil {
		defaultLogger.level.SetLevel(level.zapLevel())
	}
}

// Named returns a zap logger scoped to name for packages that take a
// *zap.Logger directly. It is a no-op logger when logging is not initialized.
func Named(name string) *zap.Logger {
	if defaultLogger == nil {
		return zap.NewNop()
	}
	return defaultLogger.zl.Named(name)
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := defaultLogger
	if l == nil {
		return
	}
	l.mu.Lock()
	enabled := l.enabled
	l.mu.Unlock()
	if !enabled {
		return
	}

	zfields := make([]zap.Field, 0, len(fields)/2+2)
	zfields = append(zfields, zap.String("cat", string(cat)))
	for i := 0; i+1 < len(fields); i += 2 {
		zfields = append(zfields, zap.Any(fmt.Sprint(fields[i]), fields[i+1]))
	}
	// Odd field count: keep the orphan key visible.
	if len(fields)%2 != 0 {
		zfields = append(zfields, zap.String(fmt.Sprint(fields[len(fields)-1]), "<missing>"))
	}

	if ce := l.zl.Check(level.zapLevel(), msg); ce != nil {
		ce.Write(zfields...)
	}
}
