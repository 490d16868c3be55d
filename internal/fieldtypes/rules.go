package fieldtypes

import (
	"html"
	"regexp"
	"runtime"
	"strings"

	"github.com/goliatone/go-webedit/internal/linkrepair"
)

// Built-in field type keys.
const (
	TypeHTML           = "html"
	TypeRichText       = "rich text"
	TypeText           = "text"
	TypeSingleLineText = "single-line text"
	TypeInteger        = "integer"
	TypeNumber         = "number"
	TypeMultiLineText  = "multi-line text"
	TypeMemo           = "memo"
	TypeWordDocument   = "word document"
)

var lineBreakTag = regexp.MustCompile(`(?i)<\s*br\s*/?\s*>`)

// Env carries request scoped inputs consumed by transforms.
type Env struct {
	Link linkrepair.Request
}

// Transform normalises one raw value.
type Transform func(value string, env Env) string

// Rules maps field type keys to normalisation transforms. The zero value is
// not usable; construct with NewRules.
type Rules struct {
	transforms map[string]Transform
	links      *linkrepair.Rewriter
	newline    string
}

// Option customises a rule table.
type Option func(*Rules)

// WithRewriter sets the link rewriter used by rich text transforms.
func WithRewriter(rewriter *linkrepair.Rewriter) Option {
	return func(r *Rules) {
		if rewriter != nil {
			r.links = rewriter
		}
	}
}

// WithNewline overrides the platform newline used for word documents.
func WithNewline(newline string) Option {
	return func(r *Rules) {
		if newline != "" {
			r.newline = newline
		}
	}
}

// WithTransform registers or replaces the transform for a type key.
func WithTransform(typeKey string, fn Transform) Option {
	return func(r *Rules) {
		key := Key(typeKey)
		if key == "" {
			return
		}
		if fn == nil {
			delete(r.transforms, key)
			return
		}
		r.transforms[key] = fn
	}
}

// NewRules builds the default rule table.
func NewRules(opts ...Option) *Rules {
	r := &Rules{
		transforms: make(map[string]Transform),
		links:      linkrepair.New(linkrepair.Options{}),
		newline:    platformNewline(),
	}
	r.transforms[TypeHTML] = r.richText
	r.transforms[TypeRichText] = r.richText
	r.transforms[TypeText] = plainText
	r.transforms[TypeSingleLineText] = plainText
	r.transforms[TypeInteger] = numeric
	r.transforms[TypeNumber] = numeric
	r.transforms[TypeMultiLineText] = multiLine
	r.transforms[TypeMemo] = multiLine
	r.transforms[TypeWordDocument] = r.wordDocument

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Key canonicalises a type key for lookups.
func Key(typeKey string) string {
	return strings.ToLower(strings.TrimSpace(typeKey))
}

// Has reports whether a transform is registered for typeKey.
func (r *Rules) Has(typeKey string) bool {
	if r == nil {
		return false
	}
	_, ok := r.transforms[Key(typeKey)]
	return ok
}

// Normalize applies the transform registered for typeKey. Unknown types pass
// through unchanged. Both the change-set builder and the server-call
// preprocessor route through here.
func (r *Rules) Normalize(typeKey, value string, env Env) string {
	if r == nil {
		return value
	}
	fn, ok := r.transforms[Key(typeKey)]
	if !ok {
		return value
	}
	return fn(value, env)
}

// Rewriter exposes the link rewriter bound to the table.
func (r *Rules) Rewriter() *linkrepair.Rewriter {
	if r == nil {
		return nil
	}
	return r.links
}

func (r *Rules) richText(value string, env Env) string {
	return r.links.Repair(strings.TrimRight(value, " "), env.Link)
}

func (r *Rules) wordDocument(value string, _ Env) string {
	return strings.NewReplacer("\r\n", r.newline, "\n\r", r.newline, "\n", r.newline).Replace(value)
}

// plainText strips markup and decodes entities until the value is stable, so
// encoded markup such as "&lt;b&gt;" cannot survive a second pass.
func plainText(value string, _ Env) string {
	current := value
	for range len(value) + 1 {
		next := html.UnescapeString(StripTags(current))
		if next == current {
			break
		}
		current = next
	}
	return current
}

func numeric(value string, _ Env) string {
	return StripTags(value)
}

func multiLine(value string, _ Env) string {
	return StripTags(lineBreakTag.ReplaceAllString(value, "\r\n"))
}

func platformNewline() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
