package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/internal/items"
	"github.com/goliatone/go-webedit/internal/logging"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// ErrStoreRequired is returned when the pipeline has no item store.
var ErrStoreRequired = errors.New("pipeline: item store required")

// RevisionGenerator produces the revision stamped on written items.
type RevisionGenerator func() string

// Option configures a StorePipeline.
type Option func(*StorePipeline)

// WithRevisionGenerator overrides revision generation.
func WithRevisionGenerator(generator RevisionGenerator) Option {
	return func(p *StorePipeline) {
		if generator != nil {
			p.revision = generator
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *StorePipeline) {
		p.logger = logging.Ensure(logger)
	}
}

// StorePipeline is the default persistence pipeline. It applies delta entries
// straight to the item store, one write per item language/version.
type StorePipeline struct {
	store    items.Store
	revision RevisionGenerator
	logger   interfaces.Logger
}

var _ interfaces.SavePipeline = (*StorePipeline)(nil)

// NewStorePipeline constructs a pipeline writing to store.
func NewStorePipeline(store items.Store, opts ...Option) *StorePipeline {
	p := &StorePipeline{
		store:    store,
		revision: uuid.NewString,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

type target struct {
	itemID   uuid.UUID
	language string
	version  int
}

type group struct {
	target   target
	revision string
	values   map[uuid.UUID]string
}

// Start checks every targeted item before writing any of them. Conflicts are
// reported through SaveResult.Error; the returned error is reserved for store
// failures.
func (p *StorePipeline) Start(ctx context.Context, entries []interfaces.DeltaEntry, opts interfaces.SaveOptions) (interfaces.SaveResult, error) {
	if p.store == nil {
		return interfaces.SaveResult{}, ErrStoreRequired
	}
	logger := logging.WithFields(p.logger, map[string]any{
		"pipeline_id":   opts.PipelineID,
		"pipeline_name": opts.PipelineName,
	})

	groups := groupEntries(entries)
	for _, g := range groups {
		item, err := p.store.GetItem(ctx, g.target.itemID, g.target.language, g.target.version)
		if err != nil {
			if items.IsNotFound(err) {
				logger.Warn("pipeline.item.missing", "item_id", g.target.itemID)
				return interfaces.SaveResult{Error: "The item you are editing no longer exists."}, nil
			}
			return interfaces.SaveResult{}, fmt.Errorf("pipeline: load item %s: %w", g.target.itemID, err)
		}
		if g.revision != "" && item.Revision != "" && g.revision != item.Revision {
			logger.Info("pipeline.revision.conflict", "item_id", item.ID, "expected", g.revision, "actual", item.Revision)
			return interfaces.SaveResult{
				Error: fmt.Sprintf("The item \"%s\" has been modified by another user. Reload the page to see the latest changes.", item.Name),
			}, nil
		}
	}

	for _, g := range groups {
		write := items.Write{
			ItemID:   g.target.itemID,
			Language: g.target.language,
			Version:  g.target.version,
			Values:   g.values,
			Revision: p.revision(),
		}
		if err := p.store.WriteFields(ctx, write); err != nil {
			return interfaces.SaveResult{}, fmt.Errorf("pipeline: write item %s: %w", g.target.itemID, err)
		}
		logger.Debug("pipeline.item.saved", "item_id", g.target.itemID, "language", g.target.language, "version", g.target.version, "fields", len(g.values))
	}
	return interfaces.SaveResult{}, nil
}

// groupEntries folds entries per item language/version in first seen order.
// The first non-empty revision of a group is the one checked.
func groupEntries(entries []interfaces.DeltaEntry) []*group {
	index := make(map[target]*group)
	var ordered []*group
	for _, entry := range entries {
		key := target{entry.ItemID, entry.Language, entry.Version}
		g, ok := index[key]
		if !ok {
			g = &group{target: key, values: make(map[uuid.UUID]string)}
			index[key] = g
			ordered = append(ordered, g)
		}
		if g.revision == "" {
			g.revision = entry.ItemRevision
		}
		g.values[entry.FieldID] = entry.Value
	}
	return ordered
}
