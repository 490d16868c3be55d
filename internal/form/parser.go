package form

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/goliatone/go-webedit/internal/logging"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// Parser turns a posted editor form into submitted field descriptors.
type Parser struct {
	sessions interfaces.SessionStore
	logger   interfaces.Logger
}

// NewParser constructs a parser. sessions resolves flds_ keys and may be nil,
// in which case those keys are skipped.
func NewParser(sessions interfaces.SessionStore, logger interfaces.Logger) *Parser {
	return &Parser{sessions: sessions, logger: logging.Ensure(logger)}
}

// ParseFields decodes every field key in values, in key order. Malformed keys
// and session keys without a stored value are skipped. The complete form key
// becomes the descriptor's control id.
func (p *Parser) ParseFields(ctx context.Context, values url.Values) ([]interfaces.SubmittedField, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		if IsFieldKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	fields := make([]interfaces.SubmittedField, 0, len(keys))
	for _, raw := range keys {
		key, err := ParseKey(raw)
		if err == nil && !key.Complete() {
			err = fmt.Errorf("%w: %q missing language or version", ErrKeyMalformed, raw)
		}
		if err != nil {
			p.logger.Warn("form.field.malformed", "key", raw, "error", err)
			continue
		}

		value := values.Get(raw)
		if key.Session {
			resolved, ok, err := p.sessionValue(ctx, value)
			if err != nil {
				return nil, err
			}
			if !ok {
				p.logger.Warn("form.field.session_missing", "key", raw)
				continue
			}
			value = resolved
		}

		fields = append(fields, interfaces.SubmittedField{
			ItemID:    key.ItemID,
			Language:  key.Language,
			Version:   key.Version,
			FieldID:   key.FieldID,
			Value:     value,
			ControlID: raw,
			Revision:  key.Revision,
		})
	}
	return fields, nil
}

func (p *Parser) sessionValue(ctx context.Context, sessionKey string) (string, bool, error) {
	if p.sessions == nil || sessionKey == "" {
		return "", false, nil
	}
	value, err := p.sessions.Get(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, interfaces.ErrSessionValueNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("form: load session value: %w", err)
	}
	return value, true, nil
}
