package webeditcmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-webedit/internal/commands"
	"github.com/goliatone/go-webedit/internal/logging"
	"github.com/goliatone/go-webedit/internal/webedit"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

const slowSaveThreshold = 2 * time.Second

const (
	saveOperation       = "webedit.save_item"
	queryStateOperation = "webedit.query_state"
)

var (
	_ command.Commander[SaveItemCommand]   = (*SaveItemHandler)(nil)
	_ command.Commander[QueryStateCommand] = (*QueryStateHandler)(nil)
)

// SaveItemHandler runs the save command through the shared handler foundation.
type SaveItemHandler struct {
	inner *commands.Handler[SaveItemCommand]
}

// NewSaveItemHandler binds the handler to saver. Items referenced by the
// command are loaded from repo.
func NewSaveItemHandler(saver *webedit.Saver, repo interfaces.ItemRepository, logger interfaces.Logger, opts ...commands.HandlerOption[SaveItemCommand]) *SaveItemHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg SaveItemCommand) error {
		items, err := resolveItems(ctx, repo, []ItemRef{msg.Item})
		if err != nil {
			return err
		}
		var requestURL *url.URL
		if raw := strings.TrimSpace(msg.RequestURL); raw != "" {
			if requestURL, err = url.Parse(raw); err != nil {
				return fmt.Errorf("webedit command: parse request url: %w", err)
			}
		}

		result, err := saver.Execute(ctx, webedit.Request{
			Context: webedit.CommandContext{
				Items:      items,
				Parameters: msg.Parameters,
			},
			Form:          msg.Form,
			URL:           requestURL,
			LegacyBrowser: msg.LegacyBrowser,
			Culture:       msg.Culture,
		})
		if err != nil {
			return err
		}
		if result.Executed {
			logging.WithFields(baseLogger, map[string]any{
				"pipeline_id": result.PipelineID,
				"fields":      len(result.Fields),
				"validators":  len(result.Validators.Validators),
				"alerted":     result.Alert != "",
			}).Info("webedit.command.save_item.completed")
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SaveItemCommand]{
		commands.WithLogger[SaveItemCommand](baseLogger),
		commands.WithOperation[SaveItemCommand](saveOperation),
		commands.WithMessageFields(func(msg SaveItemCommand) map[string]any {
			return map[string]any{
				"item_id":  msg.Item.ID,
				"language": msg.Item.Language,
				"version":  msg.Item.Version,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SaveItemCommand](nil, slowSaveThreshold)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SaveItemHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SaveItemCommand].
func (h *SaveItemHandler) Execute(ctx context.Context, msg SaveItemCommand) error {
	return h.inner.Execute(ctx, msg)
}

// QueryStateHandler reports the save command state.
type QueryStateHandler struct {
	inner *commands.Handler[QueryStateCommand]
}

// NewQueryStateHandler binds the handler to saver.
func NewQueryStateHandler(saver *webedit.Saver, repo interfaces.ItemRepository, logger interfaces.Logger, opts ...commands.HandlerOption[QueryStateCommand]) *QueryStateHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg QueryStateCommand) error {
		items, err := resolveItems(ctx, repo, msg.Items)
		if err != nil {
			return err
		}
		state := saver.QueryState(webedit.CommandContext{Items: items, Query: msg.Query})
		if msg.ResultCallback != nil {
			msg.ResultCallback(state)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[QueryStateCommand]{
		commands.WithLogger[QueryStateCommand](baseLogger),
		commands.WithOperation[QueryStateCommand](queryStateOperation),
		commands.WithMessageFields(func(msg QueryStateCommand) map[string]any {
			return map[string]any{"items": len(msg.Items)}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &QueryStateHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[QueryStateCommand].
func (h *QueryStateHandler) Execute(ctx context.Context, msg QueryStateCommand) error {
	return h.inner.Execute(ctx, msg)
}

// resolveItems loads refs in order. Missing items resolve to nil entries so
// the saver treats the context as having no valid target.
func resolveItems(ctx context.Context, repo interfaces.ItemRepository, refs []ItemRef) ([]*interfaces.ContentItem, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	out := make([]*interfaces.ContentItem, 0, len(refs))
	for _, ref := range refs {
		item, err := repo.GetItem(ctx, ref.ID, ref.Language, ref.Version)
		if err != nil {
			if errors.Is(err, interfaces.ErrContentItemNotFound) {
				out = append(out, nil)
				continue
			}
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
