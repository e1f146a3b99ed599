package log

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Level represents the severity level of a log message.
type Level int

// Log levels.
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name, case-insensitively. An empty or unknown
// string yields InfoLevel and a non-nil error for the unknown case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, errUnknownLevel(s)
	}
}

type errUnknownLevel string

func (e errUnknownLevel) Error() string { return "log: unknown level " + string(e) }

// Fields is a map of field names to values.
type Fields map[string]interface{}

// Entry represents a single log entry.
type Entry struct {
	Level     Level
	Message   string
	Fields    Fields
	Timestamp time.Time
	Caller    string
	Error     error
}

// Logger is the structured logging interface used throughout the module.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
	With(fields ...Field) Logger
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger

	SetLevel(level Level)
	GetLevel() Level
}

// Formatter formats a log entry into bytes.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Output writes a formatted log entry somewhere.
type Output interface {
	Write(entry *Entry, formattedEntry []byte) error
	Close() error
}

// LoggerOption configures a logger at construction time.
type LoggerOption func(*BaseLogger)

// BaseLogger implements Logger on top of a formatter/outputs pipeline.
type BaseLogger struct {
	level      Level
	fields     Fields
	formatter  Formatter
	outputs    []Output
	slogLogger *slog.Logger
}

// NewLogger creates a new logger with the given options.
func NewLogger(options ...LoggerOption) Logger {
	logger := &BaseLogger{
		level:     InfoLevel,
		fields:    Fields{},
		formatter: &JSONFormatter{},
		outputs:   []Output{},
	}
	for _, option := range options {
		option(logger)
	}
	if len(logger.outputs) == 0 {
		logger.outputs = append(logger.outputs, NewConsoleOutput())
	}
	logger.slogLogger = slog.New(newBridgeHandler(logger))
	return logger
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) { l.level = level }
}

// WithFormatter sets the log formatter.
func WithFormatter(formatter Formatter) LoggerOption {
	return func(l *BaseLogger) { l.formatter = formatter }
}

// WithOutput adds an output to the logger.
func WithOutput(output Output) LoggerOption {
	return func(l *BaseLogger) { l.outputs = append(l.outputs, output) }
}

func (b *BaseLogger) log(level Level, msg string, fields ...Field) {
	if level < b.level {
		return
	}
	b.slogLogger.LogAttrs(context.Background(), toSlogLevel(level), msg, attrsFromFieldSlice(fields)...)
}

func (b *BaseLogger) Debug(msg string, fields ...Field) { b.log(DebugLevel, msg, fields...) }
func (b *BaseLogger) Info(msg string, fields ...Field)  { b.log(InfoLevel, msg, fields...) }
func (b *BaseLogger) Warn(msg string, fields ...Field)  { b.log(WarnLevel, msg, fields...) }
func (b *BaseLogger) Error(msg string, fields ...Field) { b.log(ErrorLevel, msg, fields...) }
func (b *BaseLogger) Fatal(msg string, fields ...Field) { b.log(FatalLevel, msg, fields...) }

func (b *BaseLogger) clone() *BaseLogger {
	nf := make(Fields, len(b.fields))
	for k, v := range b.fields {
		nf[k] = v
	}
	nb := &BaseLogger{level: b.level, fields: nf, formatter: b.formatter, outputs: b.outputs}
	nb.slogLogger = slog.New(newBridgeHandler(nb).withAttrs(attrsFromMap(nf)))
	return nb
}

func (b *BaseLogger) WithField(key string, value interface{}) Logger {
	nb := b.clone()
	nb.fields[key] = value
	return nb.rebuild()
}

func (b *BaseLogger) WithFields(fields Fields) Logger {
	nb := b.clone()
	for k, v := range fields {
		nb.fields[k] = v
	}
	return nb.rebuild()
}

func (b *BaseLogger) WithError(err error) Logger {
	return b.WithField("error", err)
}

func (b *BaseLogger) With(fields ...Field) Logger {
	nb := b.clone()
	for _, f := range fields {
		nb.fields[f.Key] = f.Value
	}
	return nb.rebuild()
}

func (b *BaseLogger) WithContext(ctx context.Context) Logger {
	return b.WithFields(Fields(ContextExtractor(ctx)))
}

func (b *BaseLogger) WithComponent(component string) Logger {
	return b.WithField(ComponentKey, component)
}

// rebuild refreshes the slog logger after fields changed via the map, since
// clone() built it from the pre-mutation snapshot.
func (b *BaseLogger) rebuild() Logger {
	b.slogLogger = slog.New(newBridgeHandler(b).withAttrs(attrsFromMap(b.fields)))
	return b
}

func (b *BaseLogger) SetLevel(level Level) { b.level = level }
func (b *BaseLogger) GetLevel() Level      { return b.level }

// Context keys for propagating logging context.
const (
	RequestIDKey = "request_id"
	TraceIDKey   = "trace_id"
	SpanIDKey    = "span_id"
	ComponentKey = "component"
	OperationKey = "operation"
)

// ContextExtractor extracts well-known logging fields from a context.Context.
func ContextExtractor(ctx context.Context) Fields {
	if ctx == nil {
		return Fields{}
	}
	fields := Fields{}
	for _, k := range []string{RequestIDKey, TraceIDKey, SpanIDKey, ComponentKey, OperationKey} {
		if v := ctx.Value(k); v != nil {
			fields[k] = v
		}
	}
	return fields
}
