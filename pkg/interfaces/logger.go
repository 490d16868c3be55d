package interfaces

import "context"

// LoggerProvider hands out loggers by module name, for example
// "webedit.save". A go-logger root satisfies it through the gologger adapter.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// Logger is the leveled contract every save path component logs through.
// Messages are event names such as "save.pipeline.failed" followed by
// key/value pairs.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger is implemented by loggers that can bind fields to every
// later entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
