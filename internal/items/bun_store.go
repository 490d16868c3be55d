package items

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-webedit/pkg/interfaces"
)

const itemNamespace = "webedit_item"

// BunStore implements Store over bun with optional caching of item rows.
// Template fields and overrides are always read from the database.
type BunStore struct {
	items           repository.Repository[*ItemRecord]
	itemsBase       repository.Repository[*ItemRecord]
	fields          repository.Repository[*TemplateFieldRecord]
	values          repository.Repository[*FieldValueRecord]
	cacheService    cache.CacheService
	cachePrefix     string
	defaultLanguage string
}

// NewBunStore creates a store without caching.
func NewBunStore(db *bun.DB, defaultLanguage string) *BunStore {
	return NewBunStoreWithCache(db, defaultLanguage, nil, nil)
}

// NewBunStoreWithCache creates a store whose item lookups go through the
// supplied cache service.
func NewBunStoreWithCache(db *bun.DB, defaultLanguage string, cacheService cache.CacheService, serializer cache.KeySerializer) *BunStore {
	base := NewItemRepository(db)
	items := base
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		items = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(itemNamespace)
	}
	return &BunStore{
		items:           items,
		itemsBase:       base,
		fields:          NewTemplateFieldRepository(db),
		values:          NewFieldValueRepository(db),
		cacheService:    svc,
		cachePrefix:     prefix,
		defaultLanguage: strings.TrimSpace(defaultLanguage),
	}
}

// CreateItem inserts an item language/version. The row id is derived from the
// item id, language and version.
func (s *BunStore) CreateItem(ctx context.Context, record *ItemRecord) (*ItemRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("items: item record required")
	}
	record.ID = ItemRowID(record.ItemID, record.Language, record.Version)
	created, err := s.items.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateTemplateField inserts a template field definition.
func (s *BunStore) CreateTemplateField(ctx context.Context, record *TemplateFieldRecord) (*TemplateFieldRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("items: template field record required")
	}
	created, err := s.fields.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *BunStore) GetItem(ctx context.Context, id uuid.UUID, language string, version int) (*interfaces.ContentItem, error) {
	key := itemKey(id, language, version)
	record, err := s.items.GetByID(ctx, ItemRowID(id, language, version).String())
	if err != nil {
		return nil, mapRepositoryError(err, "item", key)
	}
	return s.assemble(ctx, record)
}

func (s *BunStore) GetLatestItem(ctx context.Context, id uuid.UUID) (*interfaces.ContentItem, error) {
	records, _, err := s.itemsBase.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.item_id = ?", id).
				OrderExpr("?TableAlias.version DESC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "item", id.String())
	}

	candidates := make([]*interfaces.ContentItem, 0, len(records))
	for _, record := range records {
		candidates = append(candidates, recordToItem(record))
	}
	latest := pickLatest(candidates, s.defaultLanguage)
	if latest == nil {
		return nil, &NotFoundError{Resource: "item", Key: id.String()}
	}
	return s.GetItem(ctx, latest.ID, latest.Language, latest.Version)
}

func (s *BunStore) WriteFields(ctx context.Context, write Write) error {
	key := itemKey(write.ItemID, write.Language, write.Version)
	record, err := s.itemsBase.GetByID(ctx, ItemRowID(write.ItemID, write.Language, write.Version).String())
	if err != nil {
		return mapRepositoryError(err, "item", key)
	}

	known, err := s.templateFields(ctx, record.TemplateID)
	if err != nil {
		return err
	}
	declared := make(map[uuid.UUID]struct{}, len(known))
	for _, field := range known {
		declared[field.ID] = struct{}{}
	}
	for fieldID := range write.Values {
		if _, ok := declared[fieldID]; !ok {
			return &NotFoundError{Resource: "field", Key: fieldID.String()}
		}
	}

	now := time.Now().UTC()
	for fieldID, value := range write.Values {
		if err := s.upsertValue(ctx, write, fieldID, value, now); err != nil {
			return err
		}
	}

	if write.Revision != "" {
		record.Revision = write.Revision
	}
	record.UpdatedAt = now
	if _, err := s.itemsBase.Update(ctx, record); err != nil {
		return fmt.Errorf("item repository error: %w", err)
	}
	return s.InvalidateCache(ctx)
}

// InvalidateCache drops cached item rows.
func (s *BunStore) InvalidateCache(ctx context.Context) error {
	if s.cacheService == nil || s.cachePrefix == "" {
		return nil
	}
	return s.cacheService.DeleteByPrefix(ctx, s.cachePrefix)
}

func (s *BunStore) upsertValue(ctx context.Context, write Write, fieldID uuid.UUID, value string, now time.Time) error {
	rowID := FieldValueRowID(write.ItemID, write.Language, write.Version, fieldID)
	existing, err := s.values.GetByID(ctx, rowID.String())
	if err != nil {
		if !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return mapRepositoryError(err, "field_value", rowID.String())
		}
		_, err = s.values.Create(ctx, &FieldValueRecord{
			ID:        rowID,
			ItemID:    write.ItemID,
			Language:  write.Language,
			Version:   write.Version,
			FieldID:   fieldID,
			Value:     value,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("field_value repository error: %w", err)
		}
		return nil
	}
	existing.Value = value
	existing.UpdatedAt = now
	if _, err := s.values.Update(ctx, existing); err != nil {
		return fmt.Errorf("field_value repository error: %w", err)
	}
	return nil
}

func (s *BunStore) templateFields(ctx context.Context, templateID uuid.UUID) ([]*TemplateFieldRecord, error) {
	records, _, err := s.fields.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.template_id = ?", templateID).
				OrderExpr("?TableAlias.sort_order ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "template_field", templateID.String())
	}
	return records, nil
}

func (s *BunStore) assemble(ctx context.Context, record *ItemRecord) (*interfaces.ContentItem, error) {
	templateFields, err := s.templateFields(ctx, record.TemplateID)
	if err != nil {
		return nil, err
	}
	overrides, _, err := s.values.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.item_id = ?", record.ItemID).
				Where("?TableAlias.language = ?", record.Language).
				Where("?TableAlias.version = ?", record.Version)
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "field_value", record.ItemID.String())
	}
	byField := make(map[uuid.UUID]string, len(overrides))
	for _, override := range overrides {
		byField[override.FieldID] = override.Value
	}

	item := recordToItem(record)
	for _, tf := range templateFields {
		field := &interfaces.ContentField{
			ID:                tf.ID,
			Name:              tf.Name,
			TypeKey:           tf.TypeKey,
			StandardValue:     tf.StandardValue,
			ValidationRegex:   tf.ValidationRegex,
			ValidationMessage: tf.ValidationMessage,
		}
		if value, ok := byField[tf.ID]; ok {
			field.Value = value
		} else {
			field.Value = tf.StandardValue
			field.ContainsStandardValue = true
		}
		item.Fields[tf.ID] = field
	}
	return item, nil
}

func recordToItem(record *ItemRecord) *interfaces.ContentItem {
	return &interfaces.ContentItem{
		ID:               record.ItemID,
		Name:             record.Name,
		TemplateID:       record.TemplateID,
		Language:         record.Language,
		Version:          record.Version,
		Revision:         record.Revision,
		IsStandardValues: record.IsStandardValues,
		IsMasterPart:     record.IsMasterPart,
		Fields:           make(map[uuid.UUID]*interfaces.ContentField),
	}
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func cachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}
