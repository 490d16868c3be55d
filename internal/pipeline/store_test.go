package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/internal/items"
	"github.com/goliatone/go-webedit/internal/pipeline"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

func seed(store *items.MemoryStore, name, revision string, fields ...uuid.UUID) *interfaces.ContentItem {
	item := &interfaces.ContentItem{
		ID:       uuid.New(),
		Name:     name,
		Language: "en",
		Version:  1,
		Revision: revision,
		Fields:   map[uuid.UUID]*interfaces.ContentField{},
	}
	for _, id := range fields {
		item.Fields[id] = &interfaces.ContentField{ID: id, TypeKey: "single-line text", ContainsStandardValue: true}
	}
	store.Put(item)
	return item
}

func fixedRevision(rev string) pipeline.Option {
	return pipeline.WithRevisionGenerator(func() string { return rev })
}

func TestStartWritesEntriesAndBumpsRevision(t *testing.T) {
	store := items.NewMemoryStore("en")
	title, body := uuid.New(), uuid.New()
	item := seed(store, "Home", "rev-1", title, body)

	result, err := pipeline.NewStorePipeline(store, fixedRevision("rev-2")).Start(context.Background(), []interfaces.DeltaEntry{
		{ItemID: item.ID, Language: "en", Version: 1, FieldID: title, ItemRevision: "rev-1", Value: "Hello"},
		{ItemID: item.ID, Language: "en", Version: 1, FieldID: body, Value: "<r/>"},
	}, interfaces.SaveOptions{PipelineName: "saveUI"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if result.Error != "" {
		t.Fatalf("unexpected alert %q", result.Error)
	}

	saved, err := store.GetItem(context.Background(), item.ID, "en", 1)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if saved.Revision != "rev-2" {
		t.Fatalf("expected revision bump, got %q", saved.Revision)
	}
	if saved.FieldValue(title) != "Hello" || saved.FieldValue(body) != "<r/>" {
		t.Fatalf("unexpected values %+v", saved.Fields)
	}
	if saved.Field(title).ContainsStandardValue {
		t.Fatalf("expected written field to hold its own value")
	}
}

func TestStartReportsRevisionConflictWithoutWriting(t *testing.T) {
	store := items.NewMemoryStore("en")
	title := uuid.New()
	first := seed(store, "First", "rev-1", title)
	second := seed(store, "Second", "rev-9", title)

	result, err := pipeline.NewStorePipeline(store).Start(context.Background(), []interfaces.DeltaEntry{
		{ItemID: first.ID, Language: "en", Version: 1, FieldID: title, ItemRevision: "rev-1", Value: "A"},
		{ItemID: second.ID, Language: "en", Version: 1, FieldID: title, ItemRevision: "rev-1", Value: "B"},
	}, interfaces.SaveOptions{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.Contains(result.Error, "Second") {
		t.Fatalf("expected conflict alert naming the item, got %q", result.Error)
	}
	saved, _ := store.GetItem(context.Background(), first.ID, "en", 1)
	if saved.FieldValue(title) != "" || saved.Revision != "rev-1" {
		t.Fatalf("expected no writes after conflict, got %+v", saved)
	}
}

func TestStartReportsMissingItem(t *testing.T) {
	store := items.NewMemoryStore("en")

	result, err := pipeline.NewStorePipeline(store).Start(context.Background(), []interfaces.DeltaEntry{
		{ItemID: uuid.New(), Language: "en", Version: 1, FieldID: uuid.New(), Value: "A"},
	}, interfaces.SaveOptions{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if result.Error == "" {
		t.Fatalf("expected alert for missing item")
	}
}

func TestStartPropagatesUnknownFields(t *testing.T) {
	store := items.NewMemoryStore("en")
	item := seed(store, "Home", "")

	_, err := pipeline.NewStorePipeline(store).Start(context.Background(), []interfaces.DeltaEntry{
		{ItemID: item.ID, Language: "en", Version: 1, FieldID: uuid.New(), Value: "A"},
	}, interfaces.SaveOptions{})
	if !items.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestStartRequiresStore(t *testing.T) {
	_, err := pipeline.NewStorePipeline(nil).Start(context.Background(), nil, interfaces.SaveOptions{})
	if !errors.Is(err, pipeline.ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}
