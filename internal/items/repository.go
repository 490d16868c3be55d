package items

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewItemRepository creates a repository for ItemRecord rows.
func NewItemRepository(db *bun.DB) repository.Repository[*ItemRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ItemRecord]{
		NewRecord: func() *ItemRecord { return &ItemRecord{} },
		GetID: func(r *ItemRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *ItemRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *ItemRecord) string {
			return r.ID.String()
		},
	})
}

// NewTemplateFieldRepository creates a repository for TemplateFieldRecord rows.
func NewTemplateFieldRepository(db *bun.DB) repository.Repository[*TemplateFieldRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*TemplateFieldRecord]{
		NewRecord: func() *TemplateFieldRecord { return &TemplateFieldRecord{} },
		GetID: func(r *TemplateFieldRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *TemplateFieldRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *TemplateFieldRecord) string {
			return r.ID.String()
		},
	})
}

// NewFieldValueRepository creates a repository for FieldValueRecord rows.
func NewFieldValueRepository(db *bun.DB) repository.Repository[*FieldValueRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*FieldValueRecord]{
		NewRecord: func() *FieldValueRecord { return &FieldValueRecord{} },
		GetID: func(r *FieldValueRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *FieldValueRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *FieldValueRecord) string {
			return r.ID.String()
		},
	})
}
