package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/internal/delta"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// DefaultStandardValuesName is the item name of type default value holders.
const DefaultStandardValuesName = "__Standard Values"

// ErrLayoutFieldUnset is returned when appending without a layout field id.
var ErrLayoutFieldUnset = errors.New("layout: layout field id not configured")

// Appender adds the submitted layout to a delta document.
type Appender struct {
	fieldID            uuid.UUID
	standardValuesName string
}

// NewAppender builds an appender for the layout field fieldID.
func NewAppender(fieldID uuid.UUID, standardValuesName string) *Appender {
	name := strings.TrimSpace(standardValuesName)
	if name == "" {
		name = DefaultStandardValuesName
	}
	return &Appender{fieldID: fieldID, standardValuesName: name}
}

// FieldID reports the layout field identifier.
func (a *Appender) FieldID() uuid.UUID {
	return a.fieldID
}

// Append converts payload to the stored format and puts it on doc. Items other
// than standard values holders store the diff against the field's standard
// value. The entry is written even when the diff is empty. An empty payload
// means no layout was submitted and leaves doc untouched.
func (a *Appender) Append(doc *delta.Document, item *interfaces.ContentItem, payload string) (bool, error) {
	if strings.TrimSpace(payload) == "" || item == nil {
		return false, nil
	}
	if a.fieldID == uuid.Nil {
		return false, ErrLayoutFieldUnset
	}

	submitted, err := ParseJSON(payload)
	if err != nil {
		return false, err
	}

	var value string
	if a.isStandardValues(item) {
		value, err = submitted.XML()
	} else {
		value, err = a.diffAgainstStandard(item, submitted)
	}
	if err != nil {
		return false, err
	}

	if _, err := doc.Put(interfaces.DeltaEntry{
		ItemID:   item.ID,
		Language: item.Language,
		Version:  item.Version,
		FieldID:  a.fieldID,
		Value:    value,
	}); err != nil {
		return false, fmt.Errorf("layout: append entry: %w", err)
	}
	return true, nil
}

func (a *Appender) isStandardValues(item *interfaces.ContentItem) bool {
	return item.IsStandardValues || item.Name == a.standardValuesName
}

func (a *Appender) diffAgainstStandard(item *interfaces.ContentItem, submitted Layout) (string, error) {
	var standard string
	if field := item.Field(a.fieldID); field != nil {
		standard = field.StandardValue
	}
	base, err := ParseXML(standard)
	if err != nil {
		return "", fmt.Errorf("standard layout of item %s: %w", item.ID, err)
	}
	return Diff(submitted, base).XML()
}
