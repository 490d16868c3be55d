package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-webedit/internal/fieldtypes"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// Error codes carried by FieldError.
const (
	CodeIntegerInvalid  = "FIELD_INTEGER_INVALID"
	CodeNumberInvalid   = "FIELD_NUMBER_INVALID"
	CodePatternMismatch = "FIELD_PATTERN_MISMATCH"
)

// ErrPatternInvalid reports a configured validation regex that does not compile.
var ErrPatternInvalid = errors.New("validation: field pattern invalid")

const patternMatchTimeout = 2 * time.Second

// FieldError is a user facing validation failure for one submitted value.
type FieldError struct {
	Code      string
	Message   string
	Value     string
	FieldID   string
	FieldName string
}

func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// FieldValidator runs the type syntax and regex checks applied while building
// a change set.
type FieldValidator struct {
	enabled  bool
	locales  *Locales
	patterns sync.Map
}

// FieldValidatorOption customises a FieldValidator.
type FieldValidatorOption func(*FieldValidator)

// WithSyntaxChecks toggles integer/number syntax checks.
func WithSyntaxChecks(enabled bool) FieldValidatorOption {
	return func(v *FieldValidator) {
		v.enabled = enabled
	}
}

// WithLocales replaces the locale separator table.
func WithLocales(locales *Locales) FieldValidatorOption {
	return func(v *FieldValidator) {
		if locales != nil {
			v.locales = locales
		}
	}
}

// NewFieldValidator constructs a validator with syntax checks enabled.
func NewFieldValidator(opts ...FieldValidatorOption) *FieldValidator {
	v := &FieldValidator{
		enabled: true,
		locales: DefaultLocales(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// SyntaxEnabled reports whether type syntax checks run.
func (v *FieldValidator) SyntaxEnabled() bool {
	return v != nil && v.enabled
}

// CheckSyntax validates integer and number values using the separators of
// locale. Empty values always pass; other field types are not checked.
func (v *FieldValidator) CheckSyntax(field *interfaces.ContentField, value, locale string) error {
	if !v.SyntaxEnabled() || field == nil || value == "" {
		return nil
	}
	format := v.locales.Lookup(locale)

	var rule ozzo.Rule
	switch fieldtypes.Key(field.TypeKey) {
	case fieldtypes.TypeInteger:
		rule = ozzo.NewStringRuleWithError(format.IsInteger,
			ozzo.NewError(CodeIntegerInvalid, fmt.Sprintf("\"%s\" is not a valid integer.", value)))
	case fieldtypes.TypeNumber:
		rule = ozzo.NewStringRuleWithError(format.IsNumber,
			ozzo.NewError(CodeNumberInvalid, fmt.Sprintf("\"%s\" is not a valid number.", value)))
	default:
		return nil
	}

	if err := ozzo.Validate(value, rule); err != nil {
		return toFieldError(err, field, value)
	}
	return nil
}

// CheckPattern evaluates the field's configured regex against value. Items
// that are template parts or standard values holders are exempt.
func (v *FieldValidator) CheckPattern(item *interfaces.ContentItem, field *interfaces.ContentField, value string) error {
	if field == nil || strings.TrimSpace(field.ValidationRegex) == "" {
		return nil
	}
	if item != nil && (item.IsMasterPart || item.IsStandardValues) {
		return nil
	}

	re, err := v.compile(field.ValidationRegex)
	if err != nil {
		return fmt.Errorf("%w: field %s: %v", ErrPatternInvalid, field.ID, err)
	}
	ok, err := re.MatchString(value)
	if err != nil {
		return fmt.Errorf("validation: match field %s pattern: %w", field.ID, err)
	}
	if ok {
		return nil
	}

	message := strings.TrimSpace(field.ValidationMessage)
	if message == "" {
		message = fmt.Sprintf("\"%s\" does not match the format required by the \"%s\" field.", value, fieldLabel(field))
	}
	return &FieldError{
		Code:      CodePatternMismatch,
		Message:   message,
		Value:     value,
		FieldID:   field.ID.String(),
		FieldName: field.Name,
	}
}

func (v *FieldValidator) compile(pattern string) (*regexp2.Regexp, error) {
	if cached, ok := v.patterns.Load(pattern); ok {
		return cached.(*regexp2.Regexp), nil
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = patternMatchTimeout
	actual, _ := v.patterns.LoadOrStore(pattern, re)
	return actual.(*regexp2.Regexp), nil
}

func toFieldError(err error, field *interfaces.ContentField, value string) error {
	var objErr ozzo.Error
	if !errors.As(err, &objErr) {
		return err
	}
	return &FieldError{
		Code:      objErr.Code(),
		Message:   objErr.Error(),
		Value:     value,
		FieldID:   field.ID.String(),
		FieldName: field.Name,
	}
}

func fieldLabel(field *interfaces.ContentField) string {
	if name := strings.TrimSpace(field.Name); name != "" {
		return name
	}
	return field.ID.String()
}
