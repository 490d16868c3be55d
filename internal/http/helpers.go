package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/internal/form"
	"github.com/goliatone/go-webedit/internal/layout"
	"github.com/goliatone/go-webedit/internal/permissions"
	"github.com/goliatone/go-webedit/internal/validation"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

type errorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message,omitempty"`
	Issues  []validation.ValidationIssue `json:"issues,omitempty"`
}

// errorRule maps a class of save path errors to a response. Rules are tried
// in order; the first match wins.
type errorRule struct {
	match  func(error) bool
	status int
	code   string
	issues bool
}

var errorRules = []errorRule{
	{match: isAny(interfaces.ErrContentItemNotFound), status: http.StatusNotFound, code: "not_found"},
	{match: isAny(permissions.ErrPermissionDenied), status: http.StatusForbidden, code: "forbidden"},
	{match: isAny(layout.ErrLayoutMalformed, validation.ErrSchemaValidation), status: http.StatusUnprocessableEntity, code: "validation_failed", issues: true},
	{match: isAny(form.ErrKeyMalformed), status: http.StatusBadRequest, code: "bad_request"},
	{match: func(err error) bool { return goerrors.IsCategory(err, goerrors.CategoryValidation) }, status: http.StatusBadRequest, code: "bad_request"},
}

func isAny(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}
	for _, rule := range errorRules {
		if !rule.match(err) {
			continue
		}
		resp := errorResponse{Error: rule.code, Message: err.Error()}
		if rule.issues {
			resp.Issues = validation.Issues(err)
		}
		return rule.status, resp
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
}

func joinPath(base, suffix string) string {
	segments := make([]string, 0, 2)
	for _, part := range []string{base, suffix} {
		if trimmed := strings.Trim(strings.TrimSpace(part), "/"); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return "/" + strings.Join(segments, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

// parseItemID accepts canonical ids and the 32 digit short form used in form keys.
func parseItemID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("item id required")
	}
	return form.DecodeID(trimmed)
}

func parseIntParam(value string, defaultValue int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolParam(value string, defaultValue bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

// requireItemPermission writes a 403 and returns false when the request
// principal lacks permission for itemID. A nil itemID checks the unscoped grant.
func requireItemPermission(w http.ResponseWriter, r *http.Request, permission string, itemID uuid.UUID) bool {
	if err := permissions.RequireItem(r.Context(), permission, itemID); err != nil {
		writeError(w, err)
		return false
	}
	return true
}
