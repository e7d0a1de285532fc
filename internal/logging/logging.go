package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Component keys used with With("component", ...).
const (
	CompRegistry  = "registry"
	CompLifecycle = "lifecycle"
	CompRemote    = "remote"
	CompWorkspace = "workspace"
	CompRunner    = "runner"
	CompWorker    = "worker"
	CompHealth    = "health"
)

var (
	// Logger is the global structured logger
	Logger *slog.Logger

	// Verbose enables debug logging
	Verbose bool

	mu         sync.Mutex
	fileWriter *lumberjack.Logger
)

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Setup configures the logger based on verbosity and output preferences
func Setup(verbose bool, jsonOutput bool, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	Verbose = verbose

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if w == nil {
		w = os.Stderr
	}

	Logger = newLogger(w, level, jsonOutput)
}

// FileConfig describes a rotating log file.
type FileConfig struct {
	Path       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// SetupFile sends structured logs to a rotating file in addition to w.
// Records below the configured file level are dropped from the file only.
func SetupFile(cfg FileConfig, verbose bool, jsonOutput bool, w io.Writer) {
	if cfg.Path == "" {
		Setup(verbose, jsonOutput, w)
		return
	}

	mu.Lock()
	defer mu.Unlock()

	Verbose = verbose
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 14
	}

	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	level := ParseLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}

	// The file always gets JSON so it can be grepped by component.
	Logger = slog.New(&teeHandler{
		primary: newLogger(w, consoleLevel(verbose), jsonOutput).Handler(),
		file:    slog.NewJSONHandler(fileWriter, &slog.HandlerOptions{Level: level}),
	})
}

// Close flushes and closes the rotating log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

// ParseLevel maps "debug", "info", "warn", "error" to a slog level.
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func consoleLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func newLogger(w io.Writer, level slog.Level, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if jsonOutput {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// With returns a logger with additional attributes
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}
