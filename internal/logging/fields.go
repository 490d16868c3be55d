package logging

import (
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// Ensure never returns nil.
func Ensure(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}

// WithFields attaches the non-nil entries of fields when logger implements
// interfaces.FieldsLogger. Other loggers are returned as is.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	kept := make(map[string]any, len(fields))
	for key, value := range fields {
		if key == "" || value == nil {
			continue
		}
		kept[key] = value
	}
	if len(kept) == 0 {
		return logger
	}
	return fieldsLogger.WithFields(kept)
}

// WithItemContext tags logger with the coordinates of the item being saved.
func WithItemContext(logger interfaces.Logger, itemID, language string, version int) interfaces.Logger {
	fields := map[string]any{}
	if itemID != "" {
		fields["item_id"] = itemID
	}
	if language != "" {
		fields["language"] = language
	}
	if version > 0 {
		fields["version"] = version
	}
	return WithFields(logger, fields)
}
