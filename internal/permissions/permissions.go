// Package permissions gates inline editing by the principal stored on the
// request context. Grants are colon separated tokens such as "items:edit".
// A grant covers every narrower token, so "items:edit" also allows
// "items:edit:<item id>", and a trailing "*" matches any remainder.
package permissions

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/pkg/interfaces"
)

const (
	// ItemsEdit allows inline field edits.
	ItemsEdit = "items:edit"
	// ItemsDesign allows structural layout edits.
	ItemsDesign = "items:design"
)

var ErrPermissionDenied = errors.New("permissions: denied")

// Error reports the permission that was missing.
type Error struct {
	Permission string
	ItemID     uuid.UUID
}

func (e Error) Error() string {
	if strings.TrimSpace(e.Permission) == "" {
		return "permission denied"
	}
	msg := "permission denied: " + e.Permission
	if e.ItemID != uuid.Nil {
		msg += " on item " + e.ItemID.String()
	}
	return msg
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

// Checker decides whether a normalised permission token is granted.
type Checker interface {
	Allowed(permission string) bool
}

type CheckerFunc func(permission string) bool

func (fn CheckerFunc) Allowed(permission string) bool {
	return fn(permission)
}

// Permissioner is the host principal contract. It is asked about each grant
// that could cover a permission, broadest last.
type Permissioner interface {
	HasPermission(permission string) bool
}

// Set is a static grant list.
type Set map[string]struct{}

func NewSet(grants ...string) Set {
	set := Set{}
	for _, grant := range grants {
		if normalized := normalize(grant); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

func (s Set) Allowed(permission string) bool {
	if len(s) == 0 {
		return false
	}
	for _, candidate := range coveringGrants(permission) {
		if _, ok := s[candidate]; ok {
			return true
		}
	}
	return false
}

// Scoped narrows permission to one item.
func Scoped(permission string, itemID uuid.UUID) string {
	base := normalize(permission)
	if base == "" || itemID == uuid.Nil {
		return base
	}
	return base + ":" + itemID.String()
}

type contextKey string

const checkerKey contextKey = "webedit.permissions.checker"

// WithChecker stores a permission checker on the context.
func WithChecker(ctx context.Context, checker Checker) context.Context {
	if ctx == nil || checker == nil {
		return ctx
	}
	return context.WithValue(ctx, checkerKey, checker)
}

// WithPermissions stores a static grant list on the context.
func WithPermissions(ctx context.Context, grants ...string) context.Context {
	if ctx == nil || len(grants) == 0 {
		return ctx
	}
	return WithChecker(ctx, NewSet(grants...))
}

// WithPermissioner stores a host principal on the context.
func WithPermissioner(ctx context.Context, principal Permissioner) context.Context {
	if ctx == nil || principal == nil {
		return ctx
	}
	return WithChecker(ctx, CheckerFunc(func(permission string) bool {
		for _, candidate := range coveringGrants(permission) {
			if principal.HasPermission(candidate) {
				return true
			}
		}
		return false
	}))
}

// CheckerFromContext returns the configured permission checker if available.
func CheckerFromContext(ctx context.Context) Checker {
	if ctx == nil {
		return nil
	}
	checker, _ := ctx.Value(checkerKey).(Checker)
	return checker
}

// Allowed reports whether permission is granted. Contexts without a checker
// allow everything.
func Allowed(ctx context.Context, permission string) bool {
	normalized := normalize(permission)
	if normalized == "" {
		return true
	}
	checker := CheckerFromContext(ctx)
	if checker == nil {
		return true
	}
	return checker.Allowed(normalized)
}

// Require returns an Error when permission is not granted.
func Require(ctx context.Context, permission string) error {
	return RequireItem(ctx, permission, uuid.Nil)
}

// RequireItem returns an Error when permission is not granted for itemID.
func RequireItem(ctx context.Context, permission string, itemID uuid.UUID) error {
	if Allowed(ctx, Scoped(permission, itemID)) {
		return nil
	}
	return Error{Permission: normalize(permission), ItemID: itemID}
}

// CanEditItem reports whether the context may change fields of item.
func CanEditItem(ctx context.Context, item *interfaces.ContentItem) bool {
	if item == nil {
		return false
	}
	return Allowed(ctx, Scoped(ItemsEdit, item.ID))
}

// CanDesignItem reports whether the context may change the layout of item.
func CanDesignItem(ctx context.Context, item *interfaces.ContentItem) bool {
	if item == nil {
		return false
	}
	return Allowed(ctx, Scoped(ItemsDesign, item.ID))
}

// coveringGrants lists the grants that allow permission, narrowest first:
// "items:edit:x" is covered by itself, "items:edit:*", "items:edit",
// "items:*", "items" and "*".
func coveringGrants(permission string) []string {
	normalized := normalize(permission)
	if normalized == "" {
		return nil
	}
	parts := strings.Split(normalized, ":")
	out := make([]string, 0, 2*len(parts)+1)
	out = append(out, normalized)
	for i := len(parts) - 1; i > 0; i-- {
		prefix := strings.Join(parts[:i], ":")
		out = append(out, prefix+":*", prefix)
	}
	return append(out, "*")
}

func normalize(permission string) string {
	return strings.ToLower(strings.TrimSpace(permission))
}
