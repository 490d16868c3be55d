package di

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/internal/form"
	"github.com/goliatone/go-webedit/internal/items"
	"github.com/goliatone/go-webedit/internal/logging/gologger"
	"github.com/goliatone/go-webedit/internal/runtimeconfig"
	"github.com/goliatone/go-webedit/internal/session"
	"github.com/goliatone/go-webedit/pkg/interfaces"
	"github.com/goliatone/go-webedit/pkg/testsupport"
)

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.WebEdit.MediaPrefix = ""

	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrMediaPrefixRequired) {
		t.Fatalf("expected ErrMediaPrefixRequired, got %v", err)
	}
}

func TestNewContainerDefaultsToMemoryStores(t *testing.T) {
	registry := &recordingRegistry{}
	container, err := NewContainer(runtimeconfig.DefaultConfig(), WithCommandRegistry(registry))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if _, ok := container.ItemStore().(*items.MemoryStore); !ok {
		t.Fatalf("expected memory item store, got %T", container.ItemStore())
	}
	if _, ok := container.SessionStore().(*session.MemoryStore); !ok {
		t.Fatalf("expected memory session store, got %T", container.SessionStore())
	}
	if _, ok := container.LoggerProvider().(*gologger.Provider); !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
	if len(registry.handlers) != 2 {
		t.Fatalf("expected two registered handlers, got %d", len(registry.handlers))
	}
	if container.Builder().Rules() != container.Rules() {
		t.Fatalf("expected builder and container to share rules")
	}
}

func TestNewContainerNoopLoggerProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "noop"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.LoggerProvider() != nil {
		t.Fatalf("expected no logger provider, got %T", container.LoggerProvider())
	}
}

func TestContainerEditorSavesThroughConfiguredRules(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "noop"
	cfg.WebEdit.ServerURL = "https://cms.example.com"

	store := items.NewMemoryStore("en")
	titleID := uuid.New()
	bodyID := uuid.New()
	item := &interfaces.ContentItem{
		ID:       uuid.New(),
		Name:     "Home",
		Language: "en",
		Version:  1,
		Revision: "rev-1",
		Fields: map[uuid.UUID]*interfaces.ContentField{
			titleID: {ID: titleID, Name: "Title", TypeKey: "single-line text"},
			bodyID:  {ID: bodyID, Name: "Body", TypeKey: "rich text"},
		},
	}
	store.Put(item)

	container, err := NewContainer(cfg, WithItemStore(store))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	mux := http.NewServeMux()
	if err := container.EditorAPI().Register(mux); err != nil {
		t.Fatalf("register: %v", err)
	}

	prefix := "fld_" + form.EncodeShortID(item.ID) + "_"
	values := url.Values{}
	values.Set("item", item.ID.String())
	values.Set("language", "en")
	values.Set("version", "1")
	values.Set(prefix+form.EncodeShortID(titleID)+"_en_1_rev-1", "<b>Welcome</b>")
	values.Set(prefix+form.EncodeShortID(bodyID)+"_en_1_rev-1", `<a href="https://cms.example.com/~/link.aspx?id=2">x</a>`)

	req := httptest.NewRequest(http.MethodPost, "/webedit/save", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	saved, err := store.GetItem(context.Background(), item.ID, "en", 1)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got := saved.FieldValue(titleID); got != "Welcome" {
		t.Fatalf("expected title Welcome, got %q", got)
	}
	if got := saved.FieldValue(bodyID); got != `<a href="/~/link.aspx?id=2">x</a>` {
		t.Fatalf("expected relative link, got %q", got)
	}
}

func TestNewContainerBunSQLiteStore(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "noop"
	cfg.Storage.Provider = "bun"
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = testsupport.MemoryDSN("di_container")
	cfg.Cache.Enabled = true

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	store, ok := container.ItemStore().(*items.BunStore)
	if !ok {
		t.Fatalf("expected bun item store, got %T", container.ItemStore())
	}
	if _, err := store.GetItem(context.Background(), uuid.New(), "en", 1); !items.IsNotFound(err) {
		t.Fatalf("expected not found from empty schema, got %v", err)
	}
}

func TestNewContainerRedisSessions(t *testing.T) {
	server := miniredis.RunT(t)

	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "noop"
	cfg.Session.Provider = "redis"
	cfg.Session.RedisURL = "redis://" + server.Addr()

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if _, ok := container.SessionStore().(*session.RedisStore); !ok {
		t.Fatalf("expected redis session store, got %T", container.SessionStore())
	}
	ctx := context.Background()
	if err := container.SessionStore().Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !server.Exists("webedit:k") {
		t.Fatalf("expected prefixed key in redis, keys=%v", server.Keys())
	}
}

func TestNewContainerRedisUnavailable(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "noop"
	cfg.Session.Provider = "redis"
	cfg.Session.RedisURL = "redis://127.0.0.1:1"

	if _, err := NewContainer(cfg); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestWithBunDBUsesSuppliedHandle(t *testing.T) {
	db, err := OpenBunDB(runtimeconfig.StorageConfig{Driver: "sqlite", DSN: testsupport.MemoryDSN("di_handle")})
	if err != nil {
		t.Fatalf("open bun db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "noop"
	container, err := NewContainer(cfg, WithBunDB(db))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if _, ok := container.ItemStore().(*items.BunStore); !ok {
		t.Fatalf("expected bun item store, got %T", container.ItemStore())
	}
	if err := container.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("expected supplied handle to stay open, got %v", err)
	}
}

func TestOpenBunDBRejectsUnknownDriver(t *testing.T) {
	_, err := OpenBunDB(runtimeconfig.StorageConfig{Driver: "mysql", DSN: "x"})
	if !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
	if _, err := OpenBunDB(runtimeconfig.StorageConfig{}); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}
