package webedit

import (
	"context"
	"net/http"

	"github.com/goliatone/go-webedit/internal/di"
	"github.com/goliatone/go-webedit/internal/fieldtypes"
	"github.com/goliatone/go-webedit/internal/linkrepair"
	"github.com/goliatone/go-webedit/internal/webedit"
)

// SaveRequest exports the save orchestrator request.
type SaveRequest = webedit.Request

// SaveResult exports the save orchestrator result.
type SaveResult = webedit.Result

// CommandContext exports the inputs of a state query.
type CommandContext = webedit.CommandContext

// State exports the editor command state.
type State = webedit.State

const (
	StateHidden   = webedit.StateHidden
	StateDisabled = webedit.StateDisabled
	StateEnabled  = webedit.StateEnabled
)

// Module represents the top level inline editing runtime.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Save runs one inline editing save.
func (m *Module) Save(ctx context.Context, req SaveRequest) (SaveResult, error) {
	return m.container.Saver().Execute(ctx, req)
}

// QueryState reports whether the save command is offered for the selection.
func (m *Module) QueryState(cmd CommandContext) State {
	return m.container.Saver().QueryState(cmd)
}

// Normalize applies the configured field type rules to value.
func (m *Module) Normalize(typeKey, value string) string {
	return m.container.Rules().Normalize(typeKey, value, fieldtypes.Env{Link: linkrepair.Request{}})
}

// Handler returns a mux serving the editor endpoints under the configured base path.
func (m *Module) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := m.container.EditorAPI().Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

// Close releases connections opened for the module.
func (m *Module) Close() error {
	return m.container.Close()
}
