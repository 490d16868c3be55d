package items_test

import (
	"context"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-webedit/internal/items"
	"github.com/goliatone/go-webedit/pkg/testsupport"
)

func newBunDB(t *testing.T) *bun.DB {
	t.Helper()
	db := testsupport.NewBunSQLite(t)
	if err := items.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

type seeded struct {
	itemID   uuid.UUID
	template uuid.UUID
	title    uuid.UUID
	count    uuid.UUID
}

func seed(t *testing.T, store *items.BunStore) seeded {
	t.Helper()
	ctx := context.Background()
	s := seeded{itemID: uuid.New(), template: uuid.New(), title: uuid.New(), count: uuid.New()}

	fields := []*items.TemplateFieldRecord{
		{ID: s.title, TemplateID: s.template, Name: "Title", TypeKey: "single-line text", StandardValue: "Untitled", SortOrder: 1},
		{ID: s.count, TemplateID: s.template, Name: "Count", TypeKey: "integer", StandardValue: "0", ValidationRegex: `^\d+$`, SortOrder: 2},
	}
	for _, field := range fields {
		if _, err := store.CreateTemplateField(ctx, field); err != nil {
			t.Fatalf("create template field: %v", err)
		}
	}
	for _, version := range []int{1, 2} {
		if _, err := store.CreateItem(ctx, &items.ItemRecord{
			ItemID:     s.itemID,
			Name:       "Home",
			TemplateID: s.template,
			Language:   "en",
			Version:    version,
			Revision:   "rev-1",
		}); err != nil {
			t.Fatalf("create item: %v", err)
		}
	}
	return s
}

func TestBunStoreAssemblesStandardValues(t *testing.T) {
	ctx := context.Background()
	store := items.NewBunStore(newBunDB(t), "en")
	s := seed(t, store)

	item, err := store.GetItem(ctx, s.itemID, "en", 1)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	title := item.Field(s.title)
	if title == nil || title.Value != "Untitled" || !title.ContainsStandardValue {
		t.Fatalf("expected inherited title, got %+v", title)
	}
	if count := item.Field(s.count); count == nil || count.ValidationRegex != `^\d+$` || count.TypeKey != "integer" {
		t.Fatalf("expected count field metadata, got %+v", count)
	}
}

func TestBunStoreWriteFields(t *testing.T) {
	ctx := context.Background()
	store := items.NewBunStore(newBunDB(t), "en")
	s := seed(t, store)

	write := items.Write{ItemID: s.itemID, Language: "en", Version: 1, Values: map[uuid.UUID]string{s.title: "Hello"}, Revision: "rev-2"}
	if err := store.WriteFields(ctx, write); err != nil {
		t.Fatalf("write: %v", err)
	}
	write.Values[s.title] = "Hello again"
	write.Revision = "rev-3"
	if err := store.WriteFields(ctx, write); err != nil {
		t.Fatalf("second write: %v", err)
	}

	item, err := store.GetItem(ctx, s.itemID, "en", 1)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.Revision != "rev-3" {
		t.Fatalf("expected revision rev-3, got %s", item.Revision)
	}
	if title := item.Field(s.title); title.Value != "Hello again" || title.ContainsStandardValue {
		t.Fatalf("expected override, got %+v", title)
	}

	other, err := store.GetItem(ctx, s.itemID, "en", 2)
	if err != nil {
		t.Fatalf("get version 2: %v", err)
	}
	if other.FieldValue(s.title) != "Untitled" {
		t.Fatalf("expected version 2 untouched, got %q", other.FieldValue(s.title))
	}

	err = store.WriteFields(ctx, items.Write{ItemID: s.itemID, Language: "en", Version: 1, Values: map[uuid.UUID]string{uuid.New(): "x"}})
	if !items.IsNotFound(err) {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestBunStoreNotFoundAndLatest(t *testing.T) {
	ctx := context.Background()
	store := items.NewBunStore(newBunDB(t), "en")
	s := seed(t, store)

	if _, err := store.GetItem(ctx, s.itemID, "da", 1); !items.IsNotFound(err) {
		t.Fatalf("expected not found for missing language, got %v", err)
	}

	latest, err := store.GetLatestItem(ctx, s.itemID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Version != 2 {
		t.Fatalf("expected latest version 2, got %d", latest.Version)
	}
	if _, err := store.GetLatestItem(ctx, uuid.New()); !items.IsNotFound(err) {
		t.Fatalf("expected not found for unknown item, got %v", err)
	}
}

func TestBunStoreWithCacheReadsItems(t *testing.T) {
	ctx := context.Background()
	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}

	store := items.NewBunStoreWithCache(newBunDB(t), "en", cacheService, repocache.NewDefaultKeySerializer())
	s := seed(t, store)

	for range 2 {
		item, err := store.GetItem(ctx, s.itemID, "en", 1)
		if err != nil {
			t.Fatalf("get item: %v", err)
		}
		if item.Name != "Home" || len(item.Fields) != 2 {
			t.Fatalf("unexpected cached item %+v", item)
		}
	}
	if err := store.InvalidateCache(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
}
