package webeditcmd

import (
	"errors"

	"github.com/goliatone/go-webedit/internal/commands"
	"github.com/goliatone/go-webedit/internal/webedit"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

var (
	// ErrSaverRequired is returned when registering without a saver.
	ErrSaverRequired = errors.New("webedit command: saver is nil")
	// ErrRepositoryRequired is returned when a handler has no item repository.
	ErrRepositoryRequired = errors.New("webedit command: item repository is nil")
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterWebEditCommands.
type HandlerSet struct {
	Save       *SaveItemHandler
	QueryState *QueryStateHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	saveHandlerOpts  []commands.HandlerOption[SaveItemCommand]
	stateHandlerOpts []commands.HandlerOption[QueryStateCommand]
}

// WithSaveHandlerOptions forwards options to the SaveItemHandler constructor.
func WithSaveHandlerOptions(opts ...commands.HandlerOption[SaveItemCommand]) Option {
	return func(cfg *options) {
		cfg.saveHandlerOpts = append(cfg.saveHandlerOpts, opts...)
	}
}

// WithQueryStateHandlerOptions forwards options to the QueryStateHandler constructor.
func WithQueryStateHandlerOptions(opts ...commands.HandlerOption[QueryStateCommand]) Option {
	return func(cfg *options) {
		cfg.stateHandlerOpts = append(cfg.stateHandlerOpts, opts...)
	}
}

// RegisterWebEditCommands builds the inline editing handlers and registers
// them with reg when one is supplied.
func RegisterWebEditCommands(reg CommandRegistry, saver *webedit.Saver, repo interfaces.ItemRepository, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if saver == nil {
		return nil, ErrSaverRequired
	}
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	set := &HandlerSet{
		Save:       NewSaveItemHandler(saver, repo, commands.CommandLogger(provider, saveItemMessageType), cfg.saveHandlerOpts...),
		QueryState: NewQueryStateHandler(saver, repo, commands.CommandLogger(provider, queryStateMessageType), cfg.stateHandlerOpts...),
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Save); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.QueryState); err != nil {
			return nil, err
		}
	}
	return set, nil
}
