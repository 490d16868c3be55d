package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// ValidatorsMode selects where resolved validators are reported in the editor.
type ValidatorsMode string

const (
	ValidatorsModeValidateButton ValidatorsMode = "validate_button"
	ValidatorsModeValidatorBar   ValidatorsMode = "validator_bar"
	ValidatorsModeWorkflow       ValidatorsMode = "workflow"
	ValidatorsModeGutter         ValidatorsMode = "gutter"
)

// Validator describes one validation rule bound to a field. ItemID/FieldID may
// be empty for item-level validators, which are never bound to a control.
type Validator struct {
	Name              string    `json:"name"`
	Text              string    `json:"text,omitempty"`
	ItemID            uuid.UUID `json:"item_id"`
	Language          string    `json:"language,omitempty"`
	Version           int       `json:"version,omitempty"`
	FieldID           uuid.UUID `json:"field_id"`
	ControlToValidate string    `json:"control_to_validate,omitempty"`
}

// ValidatorSet is the outcome of validator resolution for one save request.
type ValidatorSet struct {
	Key        string         `json:"key,omitempty"`
	Mode       ValidatorsMode `json:"mode,omitempty"`
	Validators []Validator    `json:"validators"`
}

// ValidatorRegistry supplies the validators that apply to the edited fields.
type ValidatorRegistry interface {
	ResolveValidators(ctx context.Context, item *ContentItem, fields []Reference) (ValidatorSet, error)
}
