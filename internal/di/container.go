package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-webedit/internal/changeset"
	webeditcmd "github.com/goliatone/go-webedit/internal/commands/webedit"
	"github.com/goliatone/go-webedit/internal/fieldtypes"
	"github.com/goliatone/go-webedit/internal/form"
	webedithttp "github.com/goliatone/go-webedit/internal/http"
	"github.com/goliatone/go-webedit/internal/items"
	"github.com/goliatone/go-webedit/internal/layout"
	"github.com/goliatone/go-webedit/internal/linkrepair"
	"github.com/goliatone/go-webedit/internal/logging"
	"github.com/goliatone/go-webedit/internal/logging/gologger"
	"github.com/goliatone/go-webedit/internal/pipeline"
	"github.com/goliatone/go-webedit/internal/runtimeconfig"
	"github.com/goliatone/go-webedit/internal/session"
	"github.com/goliatone/go-webedit/internal/validation"
	"github.com/goliatone/go-webedit/internal/validators"
	"github.com/goliatone/go-webedit/internal/webedit"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// Container wires the save path from runtime configuration. Every collaborator
// can be replaced through an Option before the container is finalised.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider    interfaces.LoggerProvider
	bunDB             *bun.DB
	cacheService      repocache.CacheService
	keySerializer     repocache.KeySerializer
	store             items.Store
	sessions          interfaces.SessionStore
	validatorRegistry interfaces.ValidatorRegistry
	savePipeline      interfaces.SavePipeline
	commandRegistry   webeditcmd.CommandRegistry
	designPolicy      webedit.DesignPolicy

	rules        *fieldtypes.Rules
	builder      *changeset.Builder
	saver        *webedit.Saver
	handlers     *webeditcmd.HandlerSet
	preprocessor *form.Preprocessor
	editor       *webedithttp.EditorAPI

	closers []func() error
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB binds the bun item store to an existing database handle.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service used by the bun store.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithItemStore overrides the configured item store.
func WithItemStore(store items.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithSessionStore overrides the configured session store.
func WithSessionStore(store interfaces.SessionStore) Option {
	return func(c *Container) {
		c.sessions = store
	}
}

// WithValidatorRegistry supplies the host validator registry.
func WithValidatorRegistry(registry interfaces.ValidatorRegistry) Option {
	return func(c *Container) {
		c.validatorRegistry = registry
	}
}

// WithSavePipeline replaces the default store pipeline.
func WithSavePipeline(p interfaces.SavePipeline) Option {
	return func(c *Container) {
		c.savePipeline = p
	}
}

// WithCommandRegistry registers the command handlers with a host registry.
func WithCommandRegistry(reg webeditcmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithDesignPolicy overrides the layout permission check.
func WithDesignPolicy(policy webedit.DesignPolicy) Option {
	return func(c *Container) {
		c.designPolicy = policy
	}
}

// NewContainer validates cfg and builds the save path.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	ctx := context.Background()
	steps := []func(context.Context) error{
		c.configureLoggerProvider,
		c.configureCacheDefaults,
		c.configureStore,
		c.configureSessions,
		c.configureSavePath,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLoggerProvider(context.Context) error {
	if c.loggerProvider != nil {
		return nil
	}
	provider := strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider))
	switch provider {
	case "", "noop":
		return nil
	case "console", "gologger":
		format := c.Config.Logging.Format
		if provider == "console" {
			format = "console"
		}
		p, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: logger provider: %w", err)
		}
		c.loggerProvider = p
		return nil
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, provider)
	}
}

func (c *Container) configureCacheDefaults(context.Context) error {
	if !c.Config.Cache.Enabled {
		return nil
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if ttl := c.Config.Cache.DefaultTTL; ttl > 0 {
			cfg.TTL = ttl
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: cache service: %w", err)
		}
		c.cacheService = service
	}

	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureStore(ctx context.Context) error {
	if c.store != nil {
		return nil
	}

	if c.bunDB == nil && strings.EqualFold(strings.TrimSpace(c.Config.Storage.Provider), "bun") {
		db, err := OpenBunDB(c.Config.Storage)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.closers = append(c.closers, db.Close)
	}

	if c.bunDB == nil {
		c.store = items.NewMemoryStore(c.Config.DefaultLocale)
		return nil
	}

	if err := items.EnsureSchema(ctx, c.bunDB); err != nil {
		return err
	}
	c.store = items.NewBunStoreWithCache(c.bunDB, c.Config.DefaultLocale, c.cacheService, c.keySerializer)
	return nil
}

func (c *Container) configureSessions(ctx context.Context) error {
	if c.sessions != nil {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Session.Provider)) {
	case "redis":
		store, err := session.NewRedisStore(ctx, c.Config.Session.RedisURL, c.Config.Session.KeyPrefix)
		if err != nil {
			return fmt.Errorf("di: session store: %w", err)
		}
		c.sessions = store
		c.closers = append(c.closers, store.Close)
	default:
		c.sessions = session.NewMemoryStore()
	}
	return nil
}

func (c *Container) configureSavePath(context.Context) error {
	cfg := c.Config.WebEdit
	provider := c.loggerProvider

	rewriter := linkrepair.New(linkrepair.Options{
		LinkPrefix:  cfg.LinkPrefix,
		MediaPrefix: cfg.MediaPrefix,
		ServerURL:   cfg.ServerURL,
	})
	c.rules = fieldtypes.NewRules(fieldtypes.WithRewriter(rewriter))

	c.builder = changeset.NewBuilder(c.store,
		changeset.WithRules(c.rules),
		changeset.WithValidator(validation.NewFieldValidator(validation.WithSyntaxChecks(cfg.ValidationEnabled))),
		changeset.WithRuntimeValues(session.NewRuntimeValues(c.sessions, validatorsTTL(cfg.ValidatorsTTL))),
		changeset.WithLogger(logging.ChangesetLogger(provider)),
	)

	if c.savePipeline == nil {
		c.savePipeline = pipeline.NewStorePipeline(c.store, pipeline.WithLogger(logging.PipelineLogger(provider)))
	}

	saveLogger := logging.SaveLogger(provider)
	saverOpts := []webedit.Option{
		webedit.WithParser(form.NewParser(c.sessions, logging.FormLogger(provider))),
		webedit.WithValidatorResolver(validators.NewResolver(c.validatorRegistry, saveLogger)),
		webedit.WithValidatorStore(validators.NewStore(c.sessions, validatorsTTL(cfg.ValidatorsTTL))),
		webedit.WithPipelineName(cfg.PipelineName),
		webedit.WithCompareModeParam(cfg.CompareModeParam),
		webedit.WithEditingDisabled(cfg.EditingDisabled),
		webedit.WithLogger(saveLogger),
	}
	if layoutField := cfg.LayoutFieldID; layoutField != uuid.Nil {
		saverOpts = append(saverOpts, webedit.WithLayoutAppender(layout.NewAppender(layoutField, cfg.StandardValuesName)))
	}
	if c.designPolicy != nil {
		saverOpts = append(saverOpts, webedit.WithDesignPolicy(c.designPolicy))
	}
	c.saver = webedit.NewSaver(c.builder, c.savePipeline, saverOpts...)

	handlers, err := webeditcmd.RegisterWebEditCommands(c.commandRegistry, c.saver, c.store, provider)
	if err != nil {
		return fmt.Errorf("di: register commands: %w", err)
	}
	c.handlers = handlers

	c.preprocessor = form.NewPreprocessor(c.store, c.rules, logging.FormLogger(provider))
	c.editor = webedithttp.NewEditorAPI(
		webedithttp.WithBasePath(c.Config.HTTP.BasePath),
		webedithttp.WithSaveHandler(handlers.Save),
		webedithttp.WithQueryStateHandler(handlers.QueryState),
		webedithttp.WithPreprocessor(c.preprocessor),
		webedithttp.WithLogger(logging.HTTPLogger(provider)),
	)
	return nil
}

func validatorsTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return webedit.DefaultValidatorsTTL
	}
	return ttl
}

// Close releases connections opened by the container. Handles supplied
// through options are left to their owners.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// LoggerProvider returns the configured provider, nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// ItemStore returns the item store behind the save path.
func (c *Container) ItemStore() items.Store {
	return c.store
}

// SessionStore returns the session store.
func (c *Container) SessionStore() interfaces.SessionStore {
	return c.sessions
}

// Rules returns the shared field type rules.
func (c *Container) Rules() *fieldtypes.Rules {
	return c.rules
}

// Builder returns the change-set builder.
func (c *Container) Builder() *changeset.Builder {
	return c.builder
}

// Saver returns the save orchestrator.
func (c *Container) Saver() *webedit.Saver {
	return c.saver
}

// Handlers returns the command handlers.
func (c *Container) Handlers() *webeditcmd.HandlerSet {
	return c.handlers
}

// Preprocessor returns the server-call preprocessor.
func (c *Container) Preprocessor() *form.Preprocessor {
	return c.preprocessor
}

// EditorAPI returns the HTTP adapter.
func (c *Container) EditorAPI() *webedithttp.EditorAPI {
	return c.editor
}
