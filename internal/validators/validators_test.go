package validators_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/internal/session"
	"github.com/goliatone/go-webedit/internal/validators"
	"github.com/goliatone/go-webedit/pkg/interfaces"
	"github.com/goliatone/go-webedit/pkg/testsupport"
)

type stubRegistry struct {
	set    interfaces.ValidatorSet
	err    error
	gotRef []interfaces.Reference
}

func (s *stubRegistry) ResolveValidators(_ context.Context, _ *interfaces.ContentItem, fields []interfaces.Reference) (interfaces.ValidatorSet, error) {
	s.gotRef = fields
	return s.set, s.err
}

func TestResolveBindsControls(t *testing.T) {
	item := &interfaces.ContentItem{ID: uuid.New(), Name: "Home", Language: "en", Version: 1}
	title, body := uuid.New(), uuid.New()
	registry := &stubRegistry{set: interfaces.ValidatorSet{
		Mode: interfaces.ValidatorsModeValidatorBar,
		Validators: []interfaces.Validator{
			{Name: "required", ItemID: item.ID, FieldID: title},
			{Name: "max-length", ItemID: item.ID, FieldID: body, Language: "en"},
			{Name: "item-level", ItemID: item.ID},
			{Name: "other-language", ItemID: item.ID, FieldID: title, Language: "da"},
		},
	}}
	fields := []validators.Field{
		{Ref: interfaces.Reference{ItemID: item.ID, Language: "en", Version: 1, FieldID: title}, ControlID: "fld_title_a"},
		{Ref: interfaces.Reference{ItemID: item.ID, Language: "en", Version: 1, FieldID: title}, ControlID: "fld_title_b"},
		{Ref: interfaces.Reference{ItemID: item.ID, Language: "en", Version: 1, FieldID: body}},
	}

	set := validators.NewResolver(registry, nil).Resolve(context.Background(), item, fields)

	if set.Mode != interfaces.ValidatorsModeValidatorBar || len(set.Validators) != 4 {
		t.Fatalf("unexpected set %+v", set)
	}
	if got := set.Validators[0].ControlToValidate; got != "fld_title_a" {
		t.Fatalf("expected first matching control, got %q", got)
	}
	for _, v := range set.Validators[1:] {
		if v.ControlToValidate != "" {
			t.Fatalf("expected %s to stay unbound, got %q", v.Name, v.ControlToValidate)
		}
	}
	if len(registry.gotRef) != 3 {
		t.Fatalf("expected registry to see every field, got %d", len(registry.gotRef))
	}
	if registry.set.Validators[0].ControlToValidate != "" {
		t.Fatalf("expected registry result not to be mutated")
	}
}

func TestResolveFailureLogsAndDegrades(t *testing.T) {
	logger := testsupport.NewRecordingLogger()
	item := &interfaces.ContentItem{ID: uuid.New(), Name: "Home", Language: "en", Version: 2}
	registry := &stubRegistry{
		set: interfaces.ValidatorSet{Mode: interfaces.ValidatorsModeGutter},
		err: errors.New("registry offline"),
	}

	set := validators.NewResolver(registry, logger).Resolve(context.Background(), item, nil)

	if len(set.Validators) != 0 || set.Mode != interfaces.ValidatorsModeGutter {
		t.Fatalf("expected empty set keeping mode, got %+v", set)
	}
	entry, ok := logger.Find("save.validators.failed")
	if !ok || entry.Level != "error" {
		t.Fatalf("expected error log, got %+v", logger.Entries())
	}
	if entry.Fields["item_id"] != item.ID.String() || entry.Fields["language"] != "en" || entry.Fields["version"] != 2 {
		t.Fatalf("expected item context fields, got %+v", entry.Fields)
	}
}

func TestResolveWithoutRegistry(t *testing.T) {
	set := validators.NewResolver(nil, nil).Resolve(context.Background(), &interfaces.ContentItem{}, nil)
	if len(set.Validators) != 0 {
		t.Fatalf("expected empty set, got %+v", set)
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := validators.NewStore(session.NewMemoryStore(), 20*time.Minute)

	saved, err := store.Save(ctx, "abc123", interfaces.ValidatorSet{
		Mode:       interfaces.ValidatorsModeValidatorBar,
		Validators: []interfaces.Validator{{Name: "required", FieldID: uuid.New(), ControlToValidate: "fld_x"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Key != "abc123" {
		t.Fatalf("expected key to be stamped, got %q", saved.Key)
	}

	loaded, err := store.Load(ctx, "abc123")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Key != "abc123" || len(loaded.Validators) != 1 || loaded.Validators[0].ControlToValidate != "fld_x" {
		t.Fatalf("unexpected loaded set %+v", loaded)
	}

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, interfaces.ErrSessionValueNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
