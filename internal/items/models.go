package items

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var rowNamespace = uuid.MustParse("6f1c2d8e-3b7a-4c55-9e0d-2a4b8c6e1f37")

// ItemRecord stores one language/version of an item.
type ItemRecord struct {
	bun.BaseModel `bun:"table:webedit_items,alias:wi"`

	ID               uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ItemID           uuid.UUID `bun:"item_id,notnull,type:uuid" json:"item_id"`
	Name             string    `bun:"name,notnull" json:"name"`
	TemplateID       uuid.UUID `bun:"template_id,notnull,type:uuid" json:"template_id"`
	Language         string    `bun:"language,notnull" json:"language"`
	Version          int       `bun:"version,notnull" json:"version"`
	Revision         string    `bun:"revision" json:"revision,omitempty"`
	IsStandardValues bool      `bun:"is_standard_values,notnull,default:false" json:"is_standard_values"`
	IsMasterPart     bool      `bun:"is_master_part,notnull,default:false" json:"is_master_part"`
	CreatedAt        time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// TemplateFieldRecord describes a field declared by a template, including the
// standard value inherited by items that do not override it.
type TemplateFieldRecord struct {
	bun.BaseModel `bun:"table:webedit_template_fields,alias:wtf"`

	ID                uuid.UUID `bun:",pk,type:uuid" json:"id"`
	TemplateID        uuid.UUID `bun:"template_id,notnull,type:uuid" json:"template_id"`
	Name              string    `bun:"name,notnull" json:"name"`
	TypeKey           string    `bun:"type_key,notnull" json:"type_key"`
	StandardValue     string    `bun:"standard_value" json:"standard_value,omitempty"`
	ValidationRegex   string    `bun:"validation_regex" json:"validation_regex,omitempty"`
	ValidationMessage string    `bun:"validation_message" json:"validation_message,omitempty"`
	SortOrder         int       `bun:"sort_order,notnull,default:0" json:"sort_order"`
}

// FieldValueRecord is an item level override of a template field.
type FieldValueRecord struct {
	bun.BaseModel `bun:"table:webedit_field_values,alias:wfv"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ItemID    uuid.UUID `bun:"item_id,notnull,type:uuid" json:"item_id"`
	Language  string    `bun:"language,notnull" json:"language"`
	Version   int       `bun:"version,notnull" json:"version"`
	FieldID   uuid.UUID `bun:"field_id,notnull,type:uuid" json:"field_id"`
	Value     string    `bun:"value" json:"value"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Models lists the tables owned by the bun store, in creation order.
func Models() []any {
	return []any{
		(*ItemRecord)(nil),
		(*TemplateFieldRecord)(nil),
		(*FieldValueRecord)(nil),
	}
}

// EnsureSchema creates the store tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("items: create table %T: %w", model, err)
		}
	}
	return nil
}

// ItemRowID derives the row id of an item language/version.
func ItemRowID(itemID uuid.UUID, language string, version int) uuid.UUID {
	return uuid.NewSHA1(rowNamespace, []byte(fmt.Sprintf("item|%s|%s|%d", itemID, language, version)))
}

// FieldValueRowID derives the row id of a field override.
func FieldValueRowID(itemID uuid.UUID, language string, version int, fieldID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(rowNamespace, []byte(fmt.Sprintf("value|%s|%s|%d|%s", itemID, language, version, fieldID)))
}
