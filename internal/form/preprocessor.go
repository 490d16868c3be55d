package form

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-webedit/internal/fieldtypes"
	"github.com/goliatone/go-webedit/internal/logging"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// Preprocessor normalises field values posted to the server call endpoint
// before they reach the save pipeline. It shares the rule table used by the
// change-set builder.
type Preprocessor struct {
	items  interfaces.ItemResolver
	rules  *fieldtypes.Rules
	logger interfaces.Logger
}

// NewPreprocessor constructs a preprocessor. A nil rules table uses the
// default rules.
func NewPreprocessor(items interfaces.ItemResolver, rules *fieldtypes.Rules, logger interfaces.Logger) *Preprocessor {
	if rules == nil {
		rules = fieldtypes.NewRules()
	}
	return &Preprocessor{items: items, rules: rules, logger: logging.Ensure(logger)}
}

// FixValues rewrites every field entry of values in place. Items or fields
// that cannot be resolved keep their submitted value.
func (p *Preprocessor) FixValues(ctx context.Context, values map[string]string, env fieldtypes.Env) error {
	if p.items == nil || len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		if IsFieldKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, raw := range keys {
		key, err := ParseKey(raw)
		if err != nil {
			p.logger.Warn("form.servercall.malformed", "key", raw, "error", err)
			continue
		}
		item, err := p.items.GetLatestItem(ctx, key.ItemID)
		if err != nil {
			if errors.Is(err, interfaces.ErrContentItemNotFound) {
				continue
			}
			return fmt.Errorf("form: resolve item %s: %w", key.ItemID, err)
		}
		field := item.Field(key.FieldID)
		if field == nil {
			continue
		}
		values[raw] = p.rules.Normalize(field.TypeKey, values[raw], env)
	}
	return nil
}
