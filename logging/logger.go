package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Config holds logging configuration
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// Logger wraps slog.Logger with SharePoint and catalog helpers.
type Logger struct {
	*slog.Logger
	// file is the log file opened for Config.Output, if any. Only the
	// logger returned by NewLogger owns it.
	file io.Closer
}

// NewLogger creates a structured logger writing to the configured output.
// When Output names a file the caller should Close the logger on exit.
func NewLogger(cfg *Config) *Logger {
	w := outputFor(cfg.Output)
	l := NewLoggerTo(w, cfg)
	if f, ok := w.(*os.File); ok && f != os.Stdout && f != os.Stderr {
		l.file = f
	}
	return l
}

// Close releases the log file opened by NewLogger. It is a no-op for the
// standard streams and for derived loggers.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// NewLoggerTo creates a logger that writes to w, ignoring cfg.Output.
func NewLoggerTo(w io.Writer, cfg *Config) *Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String("timestamp", a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		handler = slog.NewTextHandler(w, handlerOpts)
	default:
		handler = slog.NewJSONHandler(w, handlerOpts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel maps a level name onto slog; unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

func outputFor(name string) io.Writer {
	switch strings.ToLower(name) {
	case "stdout":
		return os.Stdout
	case "stderr", "":
		return os.Stderr
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stderr
	}
	return f
}

// WithComponent adds component context to logger
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component)}
}

// WithSite scopes the logger to a SharePoint site.
func (l *Logger) WithSite(siteURL string) *Logger {
	return &Logger{Logger: l.Logger.With("site_url", siteURL)}
}

// WithList scopes the logger to a list.
func (l *Logger) WithList(listID, title string) *Logger {
	return &Logger{Logger: l.Logger.With("list_id", listID, "list_title", title)}
}

// WithSnapshot scopes the logger to a catalog snapshot.
func (l *Logger) WithSnapshot(snapshotID int64) *Logger {
	return &Logger{Logger: l.Logger.With("snapshot_id", snapshotID)}
}

// Request logs an outgoing SharePoint REST call at debug level.
func (l *Logger) Request(method, url string, args ...any) {
	finalArgs := []any{"subsystem", "sharepoint", "method", method, "url", url}
	finalArgs = append(finalArgs, args...)
	l.Logger.Debug("sharepoint request", finalArgs...)
}

// Performance logs performance metrics
func (l *Logger) Performance(operation string, duration time.Duration, attrs ...slog.Attr) {
	args := []any{"operation", operation, "duration_ms", duration.Milliseconds()}
	for _, attr := range attrs {
		args = append(args, attr.Key, attr.Value)
	}
	l.Logger.Info("performance", args...)
}

// Database logs catalog events
func (l *Logger) Database(msg string, args ...any) {
	finalArgs := []any{"subsystem", "database"}
	finalArgs = append(finalArgs, args...)
	l.Logger.Debug(msg, finalArgs...)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
}

// Default returns the default logger instance
func Default() *Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(DefaultConfig())
	}
	return defaultLogger
}

func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}
