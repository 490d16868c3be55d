package interfaces

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrContentItemNotFound is returned (or matched via errors.Is) by repositories
// when an item cannot be resolved for the requested language and version.
var ErrContentItemNotFound = errors.New("content item not found")

// ItemRepository resolves content items for the inline editing save path.
// Implementations are read-only from the editor's point of view; all writes
// flow through a SavePipeline.
type ItemRepository interface {
	GetItem(ctx context.Context, id uuid.UUID, language string, version int) (*ContentItem, error)
}

// ItemResolver is an optional extension used by hooks that only know the item
// identifier (the server-call preprocessor). Implementations return the latest
// version in the default language.
type ItemResolver interface {
	GetLatestItem(ctx context.Context, id uuid.UUID) (*ContentItem, error)
}

// ContentItem is a language/version specific view of a repository item.
type ContentItem struct {
	ID         uuid.UUID
	Name       string
	TemplateID uuid.UUID
	Language   string
	Version    int
	Revision   string

	// IsStandardValues marks the type-level default-value holder.
	IsStandardValues bool
	// IsMasterPart marks structural template parts (template/branch definitions).
	IsMasterPart bool

	Fields map[uuid.UUID]*ContentField
}

// ContentField is the current state of one field on an item.
type ContentField struct {
	ID                    uuid.UUID
	Name                  string
	TypeKey               string
	Value                 string
	StandardValue         string
	ContainsStandardValue bool
	ValidationRegex       string
	ValidationMessage     string
}

// Field returns the field with the supplied identifier or nil.
func (i *ContentItem) Field(id uuid.UUID) *ContentField {
	if i == nil || i.Fields == nil {
		return nil
	}
	return i.Fields[id]
}

// FieldValue returns the current value of a field, empty when absent.
func (i *ContentItem) FieldValue(id uuid.UUID) string {
	if field := i.Field(id); field != nil {
		return field.Value
	}
	return ""
}

// Reference identifies a field on a specific item language/version.
type Reference struct {
	ItemID   uuid.UUID `json:"item_id"`
	Language string    `json:"language"`
	Version  int       `json:"version"`
	FieldID  uuid.UUID `json:"field_id"`
}

// SubmittedField is one field value posted by the inline editor.
type SubmittedField struct {
	ItemID    uuid.UUID
	Language  string
	Version   int
	FieldID   uuid.UUID
	Value     string
	ControlID string
	Revision  string
}

// Reference returns the field reference targeted by the submission.
func (f SubmittedField) Reference() Reference {
	return Reference{
		ItemID:   f.ItemID,
		Language: f.Language,
		Version:  f.Version,
		FieldID:  f.FieldID,
	}
}
