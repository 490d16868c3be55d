package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	webeditcmd "github.com/goliatone/go-webedit/internal/commands/webedit"
	"github.com/goliatone/go-webedit/internal/fieldtypes"
	"github.com/goliatone/go-webedit/internal/form"
	"github.com/goliatone/go-webedit/internal/linkrepair"
	"github.com/goliatone/go-webedit/internal/logging"
	"github.com/goliatone/go-webedit/internal/permissions"
	"github.com/goliatone/go-webedit/internal/webedit"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// DefaultBasePath is where the editor routes mount unless overridden.
const DefaultBasePath = "/webedit"

// LegacyBrowserFunc reports whether a request comes from a browser that
// encodes the tilde of site relative prefixes.
type LegacyBrowserFunc func(*http.Request) bool

// EditorAPI registers the inline editor endpoints.
type EditorAPI struct {
	basePath      string
	save          *webeditcmd.SaveItemHandler
	state         *webeditcmd.QueryStateHandler
	preprocessor  *form.Preprocessor
	legacyBrowser LegacyBrowserFunc
	logger        interfaces.Logger
}

// EditorOption mutates the EditorAPI configuration.
type EditorOption func(*EditorAPI)

// NewEditorAPI constructs an EditorAPI instance.
func NewEditorAPI(opts ...EditorOption) *EditorAPI {
	api := &EditorAPI{
		basePath:      DefaultBasePath,
		legacyBrowser: legacyBrowserParam,
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base path (defaults to "/webedit").
func WithBasePath(path string) EditorOption {
	return func(api *EditorAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithSaveHandler wires the save command handler.
func WithSaveHandler(handler *webeditcmd.SaveItemHandler) EditorOption {
	return func(api *EditorAPI) {
		api.save = handler
	}
}

// WithQueryStateHandler wires the state command handler.
func WithQueryStateHandler(handler *webeditcmd.QueryStateHandler) EditorOption {
	return func(api *EditorAPI) {
		api.state = handler
	}
}

// WithPreprocessor wires the server call preprocessor.
func WithPreprocessor(preprocessor *form.Preprocessor) EditorOption {
	return func(api *EditorAPI) {
		api.preprocessor = preprocessor
	}
}

// WithLegacyBrowserDetector sets the capability check for the tilde quirk.
func WithLegacyBrowserDetector(fn LegacyBrowserFunc) EditorOption {
	return func(api *EditorAPI) {
		if fn != nil {
			api.legacyBrowser = fn
		}
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger interfaces.Logger) EditorOption {
	return func(api *EditorAPI) {
		api.logger = logging.Ensure(logger)
	}
}

// Register attaches the editor endpoints to the provided mux.
func (api *EditorAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: editor api is nil")
	}

	base := joinPath(api.basePath, "")
	mux.HandleFunc("POST "+joinPath(base, "save"), api.handleSave)
	mux.HandleFunc("GET "+joinPath(base, "state"), api.handleState)
	mux.HandleFunc("POST "+joinPath(base, "servercall"), api.handleServerCall)
	return nil
}

type saveResponse struct {
	Executed   bool                     `json:"executed"`
	Alert      string                   `json:"alert,omitempty"`
	PipelineID string                   `json:"pipeline_id,omitempty"`
	Validators *interfaces.ValidatorSet `json:"validators,omitempty"`
}

func (api *EditorAPI) handleSave(w http.ResponseWriter, r *http.Request) {
	if api.save == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	if err := r.ParseForm(); err != nil {
		badRequest(w, "invalid form")
		return
	}
	ref, err := itemRef(r.Form, r.Form.Get("item"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if !requireItemPermission(w, r, permissions.ItemsEdit, ref.ID) {
		return
	}

	var result webedit.Result
	err = api.save.Execute(r.Context(), webeditcmd.SaveItemCommand{
		Item:          ref,
		Form:          r.PostForm,
		RequestURL:    pageURL(r),
		LegacyBrowser: api.legacyBrowser(r),
		Culture:       editorCulture(r),
		Parameters: map[string]string{
			webedit.PostActionParam: r.Form.Get(webedit.PostActionParam),
		},
		ResultCallback: func(res webedit.Result) { result = res },
	})
	if err != nil {
		api.logger.Error("http.save.failed", "item_id", ref.ID, "error", err)
		writeError(w, err)
		return
	}

	resp := saveResponse{
		Executed:   result.Executed,
		Alert:      result.Alert,
		PipelineID: result.PipelineID,
	}
	if result.Executed && result.Alert == "" {
		resp.Validators = &result.Validators
	}
	writeJSON(w, http.StatusOK, resp)
}

type stateResponse struct {
	State webedit.State `json:"state"`
}

func (api *EditorAPI) handleState(w http.ResponseWriter, r *http.Request) {
	if api.state == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	query := r.URL.Query()
	refs := make([]webeditcmd.ItemRef, 0, len(query["item"]))
	for _, raw := range query["item"] {
		ref, err := itemRef(query, raw)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		refs = append(refs, ref)
	}

	var state webedit.State
	err := api.state.Execute(r.Context(), webeditcmd.QueryStateCommand{
		Items:          refs,
		Query:          query,
		ResultCallback: func(s webedit.State) { state = s },
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: state})
}

type serverCallRequest struct {
	Fields        map[string]string `json:"fields"`
	PageURL       string            `json:"page_url,omitempty"`
	LegacyBrowser bool              `json:"legacy_browser,omitempty"`
}

type serverCallResponse struct {
	Fields map[string]string `json:"fields"`
}

func (api *EditorAPI) handleServerCall(w http.ResponseWriter, r *http.Request) {
	if api.preprocessor == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	if !requireItemPermission(w, r, permissions.ItemsEdit, uuid.Nil) {
		return
	}
	var req serverCallRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if req.Fields == nil {
		req.Fields = map[string]string{}
	}

	link := linkrepair.Request{LegacyBrowser: req.LegacyBrowser || api.legacyBrowser(r)}
	raw := strings.TrimSpace(req.PageURL)
	if raw == "" {
		raw = pageURL(r)
	}
	if parsed, err := url.Parse(raw); err == nil {
		link.URL = parsed
	}

	if err := api.preprocessor.FixValues(r.Context(), req.Fields, fieldtypes.Env{Link: link}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, serverCallResponse{Fields: req.Fields})
}

// legacyBrowserParam reads the legacy_browser flag sent by the editor script.
func legacyBrowserParam(r *http.Request) bool {
	return parseBoolParam(r.URL.Query().Get("legacy_browser"), false)
}

func itemRef(values url.Values, rawID string) (webeditcmd.ItemRef, error) {
	id, err := parseItemID(rawID)
	if err != nil {
		return webeditcmd.ItemRef{}, fmt.Errorf("invalid item id: %w", err)
	}
	return webeditcmd.ItemRef{
		ID:       id,
		Language: strings.TrimSpace(values.Get("language")),
		Version:  parseIntParam(values.Get("version"), 0),
	}, nil
}

// editorCulture is the UI culture of the editor: the culture form value, or
// the preferred Accept-Language tag.
func editorCulture(r *http.Request) string {
	if culture := strings.TrimSpace(r.FormValue("culture")); culture != "" {
		return culture
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}

// pageURL is the absolute URL of the editor page. The page_url parameter wins
// over the request's own URL.
func pageURL(r *http.Request) string {
	if raw := strings.TrimSpace(r.FormValue("page_url")); raw != "" {
		return raw
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: r.URL.RawQuery}).String()
}
