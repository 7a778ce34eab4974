package gwlog

import (
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// DebugLevel level
	DebugLevel Level = Level(zap.DebugLevel)
	// InfoLevel level
	InfoLevel Level = Level(zap.InfoLevel)
	// WarnLevel level
	WarnLevel Level = Level(zap.WarnLevel)
	// ErrorLevel level
	ErrorLevel Level = Level(zap.ErrorLevel)
	// PanicLevel level
	PanicLevel Level = Level(zap.PanicLevel)
	// FatalLevel level
	FatalLevel Level = Level(zap.FatalLevel)

	// Debugf logs formatted debug message
	Debugf logFormatFunc
	// Infof logs formatted info message
	Infof logFormatFunc
	// Warnf logs formatted warn message
	Warnf logFormatFunc
	// Errorf logs formatted error message
	Errorf logFormatFunc
	Panicf logFormatFunc
	Fatalf logFormatFunc
	Fatal  func(args ...interface{})
	Panic  func(args ...interface{})
)

type logFormatFunc func(format string, args ...interface{})

// Level is type of log levels
type Level zapcore.Level

func (lv Level) String() string {
	return zapcore.Level(lv).String()
}

var (
	lock         sync.Mutex
	level        = zap.NewAtomicLevelAt(zap.DebugLevel)
	outputWriter io.Writer = os.Stderr
	source       string
	logger       *zap.Logger
	sugar        *zap.SugaredLogger
)

func init() {
	rebuild()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		MessageKey:     "message",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// rebuild must be called with lock held, or from init
func rebuild() {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(outputWriter), level)
	logger = zap.New(core, zap.AddCaller())
	if source != "" {
		logger = logger.With(zap.String("source", source))
	}
	setSugar(logger.Sugar())
}

// SetSource sets the component name (engine/world/tool) of gwlog module
func SetSource(comp string) {
	lock.Lock()
	source = comp
	rebuild()
	lock.Unlock()
}

func setSugar(sugar_ *zap.SugaredLogger) {
	sugar = sugar_
	Debugf = sugar.Debugf
	Infof = sugar.Infof
	Warnf = sugar.Warnf
	Errorf = sugar.Errorf
	Panicf = sugar.Panicf
	Panic = sugar.Panic
	Fatalf = sugar.Fatalf
	Fatal = sugar.Fatal
}

// SetLevel sets the log level
func SetLevel(lv Level) {
	level.SetLevel(zapcore.Level(lv))
}

// GetLevel returns the current log level
func GetLevel() Level {
	return Level(level.Level())
}

// TraceError prints the stack and error
func TraceError(format string, args ...interface{}) {
	Errorf(format+"\n%s", append(args, debug.Stack())...)
}

// SetOutput sets the output writer
func SetOutput(out io.Writer) {
	lock.Lock()
	outputWriter = out
	rebuild()
	lock.Unlock()
}

// GetOutput returns the output writer
func GetOutput() io.Writer {
	return outputWriter
}

// Sync flushes buffered log entries
func Sync() error {
	return logger.Sync()
}

// ParseLevel converts string to Levels
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "panic":
		return PanicLevel
	case "fatal":
		return FatalLevel
	}
	Errorf("ParseLevel: unknown level: %s", s)
	return DebugLevel
}
