package webedit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/internal/changeset"
	"github.com/goliatone/go-webedit/internal/form"
	"github.com/goliatone/go-webedit/internal/layout"
	"github.com/goliatone/go-webedit/internal/linkrepair"
	"github.com/goliatone/go-webedit/internal/logging"
	"github.com/goliatone/go-webedit/internal/permissions"
	"github.com/goliatone/go-webedit/internal/validators"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

const (
	DefaultPipelineName     = "saveUI"
	DefaultCompareModeParam = "sc_ce"
	DefaultValidatorsTTL    = 20 * time.Minute

	// PostActionParam is the command parameter forwarded as the pipeline post action.
	PostActionParam = "postaction"
)

var (
	ErrBuilderRequired  = errors.New("webedit: change-set builder required")
	ErrPipelineRequired = errors.New("webedit: save pipeline required")
)

// State is the availability of the save command.
type State string

const (
	StateHidden   State = "hidden"
	StateDisabled State = "disabled"
	StateEnabled  State = "enabled"
)

// CommandContext is what the command layer knows about the invocation.
type CommandContext struct {
	Items      []*interfaces.ContentItem
	Parameters map[string]string
	Query      url.Values
}

func (c CommandContext) single() (*interfaces.ContentItem, bool) {
	if len(c.Items) != 1 || c.Items[0] == nil {
		return nil, false
	}
	return c.Items[0], true
}

// Request is one save invocation. A nil Form means no editor page is
// attached and the save is skipped.
type Request struct {
	Context       CommandContext
	Form          url.Values
	URL           *url.URL
	LegacyBrowser bool
	// Culture is the editor UI culture, for example "en-US".
	Culture string
}

// Result reports what a save did. Alert, when set, is the single message to
// show the editor.
type Result struct {
	Executed   bool
	Alert      string
	PipelineID string
	Fields     []changeset.FieldResult
	Validators interfaces.ValidatorSet
}

// DesignPolicy decides whether the caller may change item structure.
type DesignPolicy func(ctx context.Context, item *interfaces.ContentItem) bool

// Saver is the save command.
type Saver struct {
	parser           *form.Parser
	builder          *changeset.Builder
	layout           *layout.Appender
	resolver         *validators.Resolver
	validatorStore   *validators.Store
	pipeline         interfaces.SavePipeline
	canDesign        DesignPolicy
	pipelineName     string
	compareModeParam string
	editingDisabled  bool
	ids              func() uuid.UUID
	logger           interfaces.Logger
}

// Option configures a Saver.
type Option func(*Saver)

func WithParser(parser *form.Parser) Option {
	return func(s *Saver) {
		if parser != nil {
			s.parser = parser
		}
	}
}

func WithLayoutAppender(appender *layout.Appender) Option {
	return func(s *Saver) {
		s.layout = appender
	}
}

func WithValidatorResolver(resolver *validators.Resolver) Option {
	return func(s *Saver) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

func WithValidatorStore(store *validators.Store) Option {
	return func(s *Saver) {
		s.validatorStore = store
	}
}

// WithDesignPolicy overrides the layout permission check.
func WithDesignPolicy(policy DesignPolicy) Option {
	return func(s *Saver) {
		if policy != nil {
			s.canDesign = policy
		}
	}
}

func WithPipelineName(name string) Option {
	return func(s *Saver) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.pipelineName = trimmed
		}
	}
}

func WithCompareModeParam(param string) Option {
	return func(s *Saver) {
		if trimmed := strings.TrimSpace(param); trimmed != "" {
			s.compareModeParam = trimmed
		}
	}
}

// WithEditingDisabled hides the command globally.
func WithEditingDisabled(disabled bool) Option {
	return func(s *Saver) {
		s.editingDisabled = disabled
	}
}

func WithIDGenerator(generator func() uuid.UUID) Option {
	return func(s *Saver) {
		if generator != nil {
			s.ids = generator
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Saver) {
		s.logger = logging.Ensure(logger)
	}
}

// NewSaver constructs the save command around a builder and pipeline.
func NewSaver(builder *changeset.Builder, pipeline interfaces.SavePipeline, opts ...Option) *Saver {
	s := &Saver{
		builder:          builder,
		pipeline:         pipeline,
		canDesign:        permissions.CanDesignItem,
		pipelineName:     DefaultPipelineName,
		compareModeParam: DefaultCompareModeParam,
		ids:              uuid.New,
		logger:           logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.parser == nil {
		s.parser = form.NewParser(nil, s.logger)
	}
	if s.resolver == nil {
		s.resolver = validators.NewResolver(nil, s.logger)
	}
	return s
}

// Execute runs the save path for one item: parse, build the change set,
// append the layout, resolve and bind validators, then start the pipeline.
// Value validation failures come back as Result.Alert with a nil error;
// errors are reserved for infrastructure and malformed layout payloads.
func (s *Saver) Execute(ctx context.Context, req Request) (Result, error) {
	if req.Form == nil {
		return Result{}, nil
	}
	item, ok := req.Context.single()
	if !ok {
		return Result{}, nil
	}
	if s.builder == nil {
		return Result{}, ErrBuilderRequired
	}
	if s.pipeline == nil {
		return Result{}, ErrPipelineRequired
	}
	logger := logging.WithItemContext(s.logger, item.ID.String(), item.Language, item.Version)

	fields, err := s.parser.ParseFields(ctx, req.Form)
	if err != nil {
		return Result{}, err
	}

	built, err := s.builder.Build(ctx, changeset.Request{
		Fields:  fields,
		Link:    linkrepair.Request{URL: req.URL, LegacyBrowser: req.LegacyBrowser},
		Culture: req.Culture,
	})
	if err != nil {
		if message, ok := changeset.UserMessage(err); ok {
			logger.Info("save.validation.failed", "error", err)
			return Result{Executed: true, Alert: message}, nil
		}
		return Result{}, err
	}

	if s.layout != nil && s.canDesign(ctx, item) {
		if _, err := s.layout.Append(built.Delta, item, req.Form.Get(form.LayoutKey)); err != nil {
			return Result{}, fmt.Errorf("webedit: append layout: %w", err)
		}
	}

	set := s.resolver.Resolve(ctx, item, built.Bindings())
	if key := strings.TrimSpace(req.Form.Get(form.ValidatorsKey)); key != "" {
		set.Key = key
		if s.validatorStore != nil {
			if stored, err := s.validatorStore.Save(ctx, key, set); err != nil {
				logger.Error("save.validators.store_failed", "key", key, "error", err)
			} else {
				set = stored
			}
		}
	}

	opts := interfaces.SaveOptions{
		PipelineID:         form.EncodeShortID(s.ids()),
		PipelineName:       s.pipelineName,
		SaveAnimation:      false,
		PostAction:         req.Context.Parameters[PostActionParam],
		PolicyBasedLocking: true,
		CustomData:         map[string]any{"showvalidationdetails": true},
	}
	logger.Info("save.pipeline.started", "pipeline_id", opts.PipelineID, "pipeline", opts.PipelineName, "entries", built.Delta.Len())

	saved, err := s.pipeline.Start(ctx, built.Delta.Entries(), opts)
	if err != nil {
		return Result{}, fmt.Errorf("webedit: start pipeline: %w", err)
	}
	if saved.Error != "" {
		logger.Warn("save.pipeline.alert", "pipeline_id", opts.PipelineID, "alert", saved.Error)
	}

	return Result{
		Executed:   true,
		Alert:      saved.Error,
		PipelineID: opts.PipelineID,
		Fields:     built.Fields,
		Validators: set,
	}, nil
}

// QueryState reports whether the command is available for the context.
func (s *Saver) QueryState(cmd CommandContext) State {
	if _, ok := cmd.single(); !ok {
		return StateHidden
	}
	if s.editingDisabled {
		return StateHidden
	}
	if cmd.Query.Get(s.compareModeParam) == "1" {
		return StateDisabled
	}
	return StateEnabled
}
