package validation

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-webedit/pkg/interfaces"
)

func field(typeKey string) *interfaces.ContentField {
	return &interfaces.ContentField{ID: uuid.New(), Name: "Count", TypeKey: typeKey}
}

func TestCheckSyntaxInteger(t *testing.T) {
	v := NewFieldValidator()
	f := field("integer")

	for _, ok := range []string{"", "42", "-7", "+3", " 12 ", "9223372036854775807"} {
		assert.NoError(t, v.CheckSyntax(f, ok, "en"), "value %q", ok)
	}

	err := v.CheckSyntax(f, "abc", "en")
	require.Error(t, err)
	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, CodeIntegerInvalid, fieldErr.Code)
	assert.Equal(t, `"abc" is not a valid integer.`, fieldErr.Message)
	assert.Equal(t, "abc", fieldErr.Value)
	assert.Equal(t, f.ID.String(), fieldErr.FieldID)

	for _, bad := range []string{"1,000", "4.5", "9223372036854775808", "--1"} {
		assert.Error(t, v.CheckSyntax(f, bad, "en"), "value %q", bad)
	}
}

func TestCheckSyntaxNumberUsesLocaleDecimal(t *testing.T) {
	v := NewFieldValidator()
	f := field("Number")

	assert.NoError(t, v.CheckSyntax(f, "3.25", "en-US"))
	assert.NoError(t, v.CheckSyntax(f, "1e3", "en"))
	assert.NoError(t, v.CheckSyntax(f, "3,25", "de-DE"))
	assert.Error(t, v.CheckSyntax(f, "3.25", "de-DE"))
	assert.NoError(t, v.CheckSyntax(f, "3.25", "xx-unknown"))

	err := v.CheckSyntax(f, "NaN", "en")
	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, CodeNumberInvalid, fieldErr.Code)
	assert.Equal(t, `"NaN" is not a valid number.`, fieldErr.Message)
}

func TestCheckSyntaxDisabledOrOtherTypes(t *testing.T) {
	disabled := NewFieldValidator(WithSyntaxChecks(false))
	assert.NoError(t, disabled.CheckSyntax(field("integer"), "abc", "en"))

	enabled := NewFieldValidator()
	assert.NoError(t, enabled.CheckSyntax(field("single-line text"), "abc", "en"))
	assert.NoError(t, enabled.CheckSyntax(nil, "abc", "en"))
}

func TestCheckPattern(t *testing.T) {
	v := NewFieldValidator()
	f := field("single-line text")
	f.ValidationRegex = `^\d{3}-\d{4}$`
	item := &interfaces.ContentItem{ID: uuid.New()}

	assert.NoError(t, v.CheckPattern(item, f, "555-1234"))

	err := v.CheckPattern(item, f, "nope")
	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, CodePatternMismatch, fieldErr.Code)
	assert.Contains(t, fieldErr.Message, `"nope"`)
	assert.Contains(t, fieldErr.Message, `"Count"`)

	f.ValidationMessage = "Phone number required"
	err = v.CheckPattern(item, f, "nope")
	require.Error(t, err)
	assert.Equal(t, "Phone number required", err.Error())
}

func TestCheckPatternSkipsStructuralItems(t *testing.T) {
	v := NewFieldValidator()
	f := field("text")
	f.ValidationRegex = `^x$`

	assert.NoError(t, v.CheckPattern(&interfaces.ContentItem{IsMasterPart: true}, f, "y"))
	assert.NoError(t, v.CheckPattern(&interfaces.ContentItem{IsStandardValues: true}, f, "y"))
}

func TestCheckPatternSupportsExtendedSyntax(t *testing.T) {
	v := NewFieldValidator()
	f := field("text")
	f.ValidationRegex = `^(?!admin$)\w+$`

	assert.NoError(t, v.CheckPattern(nil, f, "editor"))
	assert.Error(t, v.CheckPattern(nil, f, "admin"))
}

func TestCheckPatternInvalidRegex(t *testing.T) {
	v := NewFieldValidator()
	f := field("text")
	f.ValidationRegex = `(`

	err := v.CheckPattern(nil, f, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPatternInvalid)
	var fieldErr *FieldError
	assert.False(t, errors.As(err, &fieldErr))
}
