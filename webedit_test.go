package webedit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-webedit"
	"github.com/goliatone/go-webedit/internal/di"
	"github.com/goliatone/go-webedit/internal/form"
	"github.com/goliatone/go-webedit/internal/items"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

func newModule(t *testing.T, opts ...di.Option) *webedit.Module {
	t.Helper()
	cfg := webedit.DefaultConfig()
	cfg.Logging.Provider = "noop"
	module, err := webedit.New(cfg, opts...)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := webedit.DefaultConfig()
	cfg.Session.Provider = "redis"
	if _, err := webedit.New(cfg); !errors.Is(err, webedit.ErrSessionRedisURLRequired) {
		t.Fatalf("expected ErrSessionRedisURLRequired, got %v", err)
	}
}

func TestModuleNormalize(t *testing.T) {
	module := newModule(t)

	cases := map[string][2]string{
		"single-line text": {"<b>Hi</b> &amp; bye", "Hi & bye"},
		"integer":          {"<p>42</p>", "42"},
		"unknown":          {"<b>kept</b>", "<b>kept</b>"},
	}
	for typeKey, tc := range cases {
		if got := module.Normalize(typeKey, tc[0]); got != tc[1] {
			t.Fatalf("%s: expected %q, got %q", typeKey, tc[1], got)
		}
	}
}

func TestModuleSaveAndQueryState(t *testing.T) {
	store := items.NewMemoryStore("en")
	titleID := uuid.New()
	item := &interfaces.ContentItem{
		ID:       uuid.New(),
		Name:     "Home",
		Language: "en",
		Version:  1,
		Revision: "rev-1",
		Fields: map[uuid.UUID]*interfaces.ContentField{
			titleID: {ID: titleID, Name: "Title", TypeKey: "single-line text", Value: "Old"},
		},
	}
	store.Put(item)
	module := newModule(t, di.WithItemStore(store))
	ctx := context.Background()

	values := url.Values{}
	values.Set("fld_"+form.EncodeShortID(item.ID)+"_"+form.EncodeShortID(titleID)+"_en_1_rev-1", "<i>New</i>")
	pageURL, _ := url.Parse("http://example.com/home")

	result, err := module.Save(ctx, webedit.SaveRequest{
		Context: webedit.CommandContext{Items: []*interfaces.ContentItem{item}},
		Form:    values,
		URL:     pageURL,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !result.Executed || result.Alert != "" {
		t.Fatalf("unexpected result %+v", result)
	}
	saved, err := store.GetItem(ctx, item.ID, "en", 1)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got := saved.FieldValue(titleID); got != "New" {
		t.Fatalf("expected New, got %q", got)
	}

	if state := module.QueryState(webedit.CommandContext{Items: []*interfaces.ContentItem{item}}); state != webedit.StateEnabled {
		t.Fatalf("expected enabled, got %s", state)
	}
	if state := module.QueryState(webedit.CommandContext{}); state != webedit.StateHidden {
		t.Fatalf("expected hidden, got %s", state)
	}
}

func TestModuleHandlerServesState(t *testing.T) {
	module := newModule(t)
	handler, err := module.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webedit/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
