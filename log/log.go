package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/config"
)

// Key constants
const (
	VersionKey = "version"
)

type Logger struct {
	*logrus.Logger
	version string
	logFile *os.File
	logPath string
}

var (
	standardLogger *Logger
	once           sync.Once
)

// StandardLogger returns the singleton logger instance
func StandardLogger() *Logger {
	once.Do(func() {
		standardLogger = &Logger{
			Logger: logrus.New(),
		}
		standardLogger.SetFormatter(&logrus.JSONFormatter{})
	})
	return standardLogger
}

// SetVersion sets the version for logging
func (l *Logger) SetVersion(v string) {
	l.version = v
}

// Init initializes the logger with the given configuration
func (l *Logger) Init(c *config.Logger) (func(), error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	l.SetLevel(level)

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{})
	}

	switch c.Output {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "stderr":
		l.SetOutput(os.Stderr)
	case "file":
		l.logPath = c.OutputFile
		if l.logPath != "" {
			if err := l.setupLogFile(); err != nil {
				return nil, err
			}
			go l.periodicLogRotation()
		}
	}

	// Return cleanup function
	return func() {
		if l.logFile != nil {
			_ = l.logFile.Close()
		}
	}, nil
}

func (l *Logger) setupLogFile() error {
	if err := os.MkdirAll(filepath.Dir(l.logPath), 0o755); err != nil {
		return err
	}
	return l.rotateLog()
}

func (l *Logger) rotateLog() error {
	if l.logFile != nil {
		if err := l.logFile.Close(); err != nil {
			return err
		}
	}

	logFilePath := fmt.Sprintf("%s.%s.log", strings.TrimSuffix(l.logPath, ".log"), time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}

	l.logFile = f
	l.SetOutput(l.logFile)
	return nil
}

func (l *Logger) periodicLogRotation() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := l.rotateLog(); err != nil {
			l.Logger.Errorf("Error rotating log: %v", err)
		}
	}
}

// entryFromContext creates a new log entry with fields from context
func (l *Logger) entryFromContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}

	requestID := getRequestID(ctx)
	if requestID != "" {
		fields[requestIDKey] = requestID
	}

	if l.version != "" {
		fields[VersionKey] = l.version
	}

	return l.WithFields(fields)
}

// Log methods
func (l *Logger) log(ctx context.Context, level logrus.Level, args ...any) {
	l.entryFromContext(ctx).Log(level, args...)
}

func (l *Logger) logf(ctx context.Context, level logrus.Level, format string, args ...any) {
	l.entryFromContext(ctx).Logf(level, format, args...)
}

func (l *Logger) Trace(ctx context.Context, args ...any) {
	l.log(ctx, logrus.TraceLevel, args...)
}
func (l *Logger) Debug(ctx context.Context, args ...any) {
	l.log(ctx, logrus.DebugLevel, args...)
}
func (l *Logger) Info(ctx context.Context, args ...any) {
	l.log(ctx, logrus.InfoLevel, args...)
}
func (l *Logger) Warn(ctx context.Context, args ...any) {
	l.log(ctx, logrus.WarnLevel, args...)
}
func (l *Logger) Error(ctx context.Context, args ...any) {
	l.log(ctx, logrus.ErrorLevel, args...)
}
func (l *Logger) Fatal(ctx context.Context, args ...any) {
	l.log(ctx, logrus.FatalLevel, args...)
}

func (l *Logger) Tracef(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.TraceLevel, format, args...)
}
func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.DebugLevel, format, args...)
}
func (l *Logger) Infof(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.InfoLevel, format, args...)
}
func (l *Logger) Warnf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.WarnLevel, format, args...)
}
func (l *Logger) Errorf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.ErrorLevel, format, args...)
}
func (l *Logger) Fatalf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.FatalLevel, format, args...)
}

// SetOutput sets the output destination for the logger
func (l *Logger) SetOutput(out io.Writer) {
	l.Logger.SetOutput(out)
}

// AddHook adds a hook to the logger
func (l *Logger) AddHook(hook logrus.Hook) {
	l.Logger.AddHook(hook)
}

// Exported functions for backward compatibility

func SetVersion(v string)                   { StandardLogger().SetVersion(v) }
func Init(c *config.Logger) (func(), error) { return StandardLogger().Init(c) }

func EntryWithFields(ctx context.Context, fields logrus.Fields) *logrus.Entry {
	entry := StandardLogger().entryFromContext(ctx)
	return entry.WithFields(fields)
}

func Trace(ctx context.Context, args ...any) { StandardLogger().Trace(ctx, args...) }
func Debug(ctx context.Context, args ...any) { StandardLogger().Debug(ctx, args...) }
func Info(ctx context.Context, args ...any)  { StandardLogger().Info(ctx, args...) }
func Warn(ctx context.Context, args ...any)  { StandardLogger().Warn(ctx, args...) }
func Error(ctx context.Context, args ...any) { StandardLogger().Error(ctx, args...) }
func Fatal(ctx context.Context, args ...any) { StandardLogger().Fatal(ctx, args...) }

func Tracef(ctx context.Context, format string, args ...any) {
	StandardLogger().Tracef(ctx, format, args...)
}
func Debugf(ctx context.Context, format string, args ...any) {
	StandardLogger().Debugf(ctx, format, args...)
}
func Infof(ctx context.Context, format string, args ...any) {
	StandardLogger().Infof(ctx, format, args...)
}
func Warnf(ctx context.Context, format string, args ...any) {
	StandardLogger().Warnf(ctx, format, args...)
}
func Errorf(ctx context.Context, format string, args ...any) {
	StandardLogger().Errorf(ctx, format, args...)
}
func Fatalf(ctx context.Context, format string, args ...any) {
	StandardLogger().Fatalf(ctx, format, args...)
}

func SetOutput(out io.Writer)  { StandardLogger().SetOutput(out) }
func AddHook(hook logrus.Hook) { StandardLogger().AddHook(hook) }
