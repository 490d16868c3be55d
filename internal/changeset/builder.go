package changeset

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-webedit/internal/delta"
	"github.com/goliatone/go-webedit/internal/fieldtypes"
	"github.com/goliatone/go-webedit/internal/linkrepair"
	"github.com/goliatone/go-webedit/internal/logging"
	"github.com/goliatone/go-webedit/internal/validation"
	"github.com/goliatone/go-webedit/internal/validators"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// ErrRepositoryRequired is returned when a builder has no item repository.
var ErrRepositoryRequired = errors.New("changeset: item repository required")

// Outcome describes what processing one submission did to the delta document.
type Outcome int

const (
	// NoEntry means the value matched storage; the document is unchanged.
	NoEntry Outcome = iota
	// EntryAdded means a new entry was created.
	EntryAdded
	// EntryUpdated means an existing entry received the value.
	EntryUpdated
)

func (o Outcome) String() string {
	switch o {
	case EntryAdded:
		return "entry_added"
	case EntryUpdated:
		return "entry_updated"
	default:
		return "no_entry"
	}
}

// FieldResult is the normalised outcome of one submitted field.
type FieldResult struct {
	Ref             interfaces.Reference
	Value           string
	IsStandardValue bool
	ControlID       string
	Outcome         Outcome
}

// Result is the product of a successful build.
type Result struct {
	Delta  *delta.Document
	Fields []FieldResult
}

// Bindings returns the change mapping consumed by validator resolution.
func (r Result) Bindings() []validators.Field {
	out := make([]validators.Field, 0, len(r.Fields))
	for _, field := range r.Fields {
		out = append(out, validators.Field{Ref: field.Ref, ControlID: field.ControlID})
	}
	return out
}

// Request is one batch of submitted fields.
type Request struct {
	Fields []interfaces.SubmittedField
	Link   linkrepair.Request
	// Culture is the editor UI culture used to parse numbers. Empty falls
	// back to the language of each item.
	Culture string
}

// RuntimeValueRecorder receives the normalised value of every field that came
// from an identified editor control.
type RuntimeValueRecorder interface {
	Record(ctx context.Context, controlID, value string) error
}

// Builder turns submitted fields into a delta document.
type Builder struct {
	repo      interfaces.ItemRepository
	rules     *fieldtypes.Rules
	validator *validation.FieldValidator
	runtime   RuntimeValueRecorder
	logger    interfaces.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithRules sets the field type rule table.
func WithRules(rules *fieldtypes.Rules) Option {
	return func(b *Builder) {
		if rules != nil {
			b.rules = rules
		}
	}
}

// WithValidator sets the field validator.
func WithValidator(v *validation.FieldValidator) Option {
	return func(b *Builder) {
		if v != nil {
			b.validator = v
		}
	}
}

// WithRuntimeValues sets the runtime validation value recorder.
func WithRuntimeValues(recorder RuntimeValueRecorder) Option {
	return func(b *Builder) {
		b.runtime = recorder
	}
}

// WithLogger sets the builder logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Builder) {
		b.logger = logging.Ensure(logger)
	}
}

// NewBuilder constructs a builder reading items from repo.
func NewBuilder(repo interfaces.ItemRepository, opts ...Option) *Builder {
	b := &Builder{
		repo:      repo,
		rules:     fieldtypes.NewRules(),
		validator: validation.NewFieldValidator(),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Rules exposes the rule table so other hook points normalise identically.
func (b *Builder) Rules() *fieldtypes.Rules {
	return b.rules
}

// Build processes req.Fields in order. The first validation failure aborts the
// whole build and no document is returned; the error carries a
// *validation.FieldError (see UserMessage). Stale references are skipped.
func (b *Builder) Build(ctx context.Context, req Request) (Result, error) {
	if b.repo == nil {
		return Result{}, ErrRepositoryRequired
	}

	doc := delta.New()
	results := make([]FieldResult, 0, len(req.Fields))
	env := fieldtypes.Env{Link: req.Link}

	for _, submitted := range req.Fields {
		result, ok, err := b.process(ctx, doc, submitted, env, req.Culture)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			continue
		}
		results = append(results, result)

		if submitted.ControlID != "" && b.runtime != nil {
			if err := b.runtime.Record(ctx, submitted.ControlID, result.Value); err != nil {
				b.logger.Warn("changeset.runtime_value.failed", "control_id", submitted.ControlID, "error", err)
			}
		}
	}

	return Result{Delta: doc, Fields: results}, nil
}

func (b *Builder) process(ctx context.Context, doc *delta.Document, submitted interfaces.SubmittedField, env fieldtypes.Env, culture string) (FieldResult, bool, error) {
	logger := logging.WithItemContext(b.logger, submitted.ItemID.String(), submitted.Language, submitted.Version)

	item, ok, err := b.resolve(ctx, submitted)
	if err != nil || !ok {
		if !ok && err == nil {
			logger.Debug("changeset.field.skipped", "field_id", submitted.FieldID, "reason", "item_not_found")
		}
		return FieldResult{}, false, err
	}
	field := item.Field(submitted.FieldID)
	if field == nil {
		logger.Debug("changeset.field.skipped", "field_id", submitted.FieldID, "reason", "field_not_found")
		return FieldResult{}, false, nil
	}

	value := b.rules.Normalize(field.TypeKey, submitted.Value, env)
	result := FieldResult{
		Ref:       submitted.Reference(),
		Value:     value,
		ControlID: submitted.ControlID,
	}

	if culture == "" {
		culture = item.Language
	}
	if err := b.validator.CheckSyntax(field, value, culture); err != nil {
		return FieldResult{}, false, failure(err)
	}

	if value == field.Value {
		err := b.validator.CheckPattern(item, field, value)
		switch {
		case errors.Is(err, validation.ErrPatternInvalid):
			logger.Error("changeset.pattern.invalid", "field_id", field.ID, "field_name", field.Name, "error", err)
		case err != nil:
			return FieldResult{}, false, failure(err)
		}
		result.IsStandardValue = field.ContainsStandardValue
		result.Outcome = NoEntry
		return result, true, nil
	}

	if _, found := doc.Lookup(result.Ref); found {
		fresh, ok, err := b.resolve(ctx, submitted)
		if err != nil || !ok {
			return FieldResult{}, false, err
		}
		if value == fresh.FieldValue(submitted.FieldID) || value == "" {
			result.Outcome = NoEntry
			return result, true, nil
		}
		doc.SetValue(result.Ref, value)
		result.Outcome = EntryUpdated
		logger.Debug("changeset.entry.updated", "field_id", submitted.FieldID)
		return result, true, nil
	}

	if _, err := doc.Put(interfaces.DeltaEntry{
		ItemID:       submitted.ItemID,
		Language:     submitted.Language,
		Version:      submitted.Version,
		FieldID:      submitted.FieldID,
		ItemRevision: submitted.Revision,
		Value:        value,
	}); err != nil {
		return FieldResult{}, false, fmt.Errorf("changeset: add entry: %w", err)
	}
	result.Outcome = EntryAdded
	logger.Debug("changeset.entry.added", "field_id", submitted.FieldID)
	return result, true, nil
}

func (b *Builder) resolve(ctx context.Context, submitted interfaces.SubmittedField) (*interfaces.ContentItem, bool, error) {
	item, err := b.repo.GetItem(ctx, submitted.ItemID, submitted.Language, submitted.Version)
	if err != nil {
		if errors.Is(err, interfaces.ErrContentItemNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("changeset: resolve item %s: %w", submitted.ItemID, err)
	}
	if item == nil {
		return nil, false, nil
	}
	return item, true, nil
}
