package webeditcmd

import (
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/internal/webedit"
)

const (
	saveItemMessageType   = "webedit.item.save"
	queryStateMessageType = "webedit.item.query_state"
)

// SaveResultCallback receives the outcome of a save. It is invoked
// synchronously from the handler.
type SaveResultCallback func(webedit.Result)

// StateCallback receives the computed command state.
type StateCallback func(webedit.State)

// ItemRef addresses one item language/version.
type ItemRef struct {
	ID       uuid.UUID `json:"id"`
	Language string    `json:"language"`
	Version  int       `json:"version"`
}

// SaveItemCommand saves the fields posted by the inline editor for one item.
type SaveItemCommand struct {
	// Item is the command target; its fields may also appear in Form under other items.
	Item ItemRef `json:"item"`
	// Form is the posted editor form, including fld_/flds_ keys, scLayout and scValidatorsKey.
	Form url.Values `json:"form"`
	// RequestURL is the absolute URL of the editor page, used for link repair.
	RequestURL string `json:"request_url,omitempty"`
	// LegacyBrowser enables the encoded tilde link fixups.
	LegacyBrowser bool `json:"legacy_browser,omitempty"`
	// Culture is the editor UI culture used for numeric validation.
	Culture string `json:"culture,omitempty"`
	// Parameters are command parameters such as postaction.
	Parameters     map[string]string  `json:"parameters,omitempty"`
	ResultCallback SaveResultCallback `json:"-"`
}

// Type implements command.Message.
func (SaveItemCommand) Type() string { return saveItemMessageType }

// Validate checks the target item and request URL.
func (m SaveItemCommand) Validate() error {
	errs := validation.Errors{}
	if err := validateRef(m.Item); err != nil {
		errs["item"] = err
	}
	if strings.TrimSpace(m.RequestURL) != "" {
		if err := validation.Validate(m.RequestURL, is.URL); err != nil {
			errs["request_url"] = validation.NewError("webedit.item.save.request_url_invalid", "request_url must be an absolute URL")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// QueryStateCommand computes whether the save command is available for the
// supplied items.
type QueryStateCommand struct {
	Items          []ItemRef     `json:"items"`
	Query          url.Values    `json:"query,omitempty"`
	ResultCallback StateCallback `json:"-"`
}

// Type implements command.Message.
func (QueryStateCommand) Type() string { return queryStateMessageType }

// Validate rejects malformed item references. An empty list is valid and
// reports a hidden state.
func (m QueryStateCommand) Validate() error {
	for _, ref := range m.Items {
		if err := validateRef(ref); err != nil {
			return validation.Errors{"items": err}
		}
	}
	return nil
}

func validateRef(ref ItemRef) error {
	return validation.ValidateStruct(&ref,
		validation.Field(&ref.ID, validation.By(func(value any) error {
			if value.(uuid.UUID) == uuid.Nil {
				return validation.NewError("webedit.item.id_required", "item id is required")
			}
			return nil
		})),
		validation.Field(&ref.Language, validation.Required.ErrorObject(
			validation.NewError("webedit.item.language_required", "item language is required"))),
		validation.Field(&ref.Version, validation.Required.ErrorObject(versionInvalid), validation.Min(1).ErrorObject(versionInvalid)),
	)
}

var versionInvalid = validation.NewError("webedit.item.version_invalid", "item version must be positive")
