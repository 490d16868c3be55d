package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// FieldPrefix marks a form key carrying the field value inline.
	FieldPrefix = "fld_"
	// SessionFieldPrefix marks a form key whose value is a session key.
	SessionFieldPrefix = "flds_"
	// LayoutKey holds the JSON layout payload.
	LayoutKey = "scLayout"
	// ValidatorsKey names the slot the resolved validators are stored under.
	ValidatorsKey = "scValidatorsKey"
)

// ErrKeyMalformed is returned for field keys that cannot be decoded.
var ErrKeyMalformed = errors.New("form: malformed field key")

// Key is a decoded field key of the form
// fld_<item>_<field>_<language>_<version>[_<revision>][$suffix].
type Key struct {
	Raw      string
	ItemID   uuid.UUID
	FieldID  uuid.UUID
	Language string
	Version  int
	Revision string
	// Session is set for flds_ keys.
	Session bool
}

// IsFieldKey reports whether key names a submitted field.
func IsFieldKey(key string) bool {
	return strings.HasPrefix(key, FieldPrefix) || strings.HasPrefix(key, SessionFieldPrefix)
}

// ParseKey decodes a field key. Only the item and field ids are mandatory so
// that server call keys, which may omit the language and version, decode too.
func ParseKey(raw string) (Key, error) {
	key := Key{Raw: raw}
	body := raw
	switch {
	case strings.HasPrefix(body, SessionFieldPrefix):
		key.Session = true
		body = strings.TrimPrefix(body, SessionFieldPrefix)
	case strings.HasPrefix(body, FieldPrefix):
		body = strings.TrimPrefix(body, FieldPrefix)
	default:
		return Key{}, fmt.Errorf("%w: %q", ErrKeyMalformed, raw)
	}
	if idx := strings.IndexByte(body, '$'); idx >= 0 {
		body = body[:idx]
	}

	parts := strings.SplitN(body, "_", 5)
	if len(parts) < 2 {
		return Key{}, fmt.Errorf("%w: %q", ErrKeyMalformed, raw)
	}
	var err error
	if key.ItemID, err = DecodeID(parts[0]); err != nil {
		return Key{}, fmt.Errorf("%w: %q item id: %v", ErrKeyMalformed, raw, err)
	}
	if key.FieldID, err = DecodeID(parts[1]); err != nil {
		return Key{}, fmt.Errorf("%w: %q field id: %v", ErrKeyMalformed, raw, err)
	}
	if len(parts) > 2 {
		key.Language = parts[2]
	}
	if len(parts) > 3 && parts[3] != "" {
		if key.Version, err = strconv.Atoi(parts[3]); err != nil {
			return Key{}, fmt.Errorf("%w: %q version: %v", ErrKeyMalformed, raw, err)
		}
	}
	if len(parts) > 4 {
		key.Revision = parts[4]
	}
	return key, nil
}

// Complete reports whether the key addresses a specific language and version.
func (k Key) Complete() bool {
	return k.Language != "" && k.Version > 0
}

// DecodeID accepts a short id (32 hex digits) or a canonical UUID.
func DecodeID(value string) (uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if len(value) != 32 && len(value) != 36 && len(value) != 38 {
		return uuid.Nil, fmt.Errorf("unexpected id length %d", len(value))
	}
	return uuid.Parse(value)
}

// EncodeShortID renders id as 32 upper case hex digits.
func EncodeShortID(id uuid.UUID) string {
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
}
