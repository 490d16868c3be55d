// Package linkrepair rewrites link and media URLs that the in-browser editor
// expanded for display back to their storage-canonical relative form.
package linkrepair

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	// DefaultLinkPrefix is the site-relative prefix of internal item links.
	DefaultLinkPrefix = "~/link.aspx?"
	// DefaultMediaPrefix is the site-relative prefix of media library links.
	DefaultMediaPrefix = "~/media/"

	encodedTilde = "%7E"
)

// absoluteAttr matches an attribute value inside a tag that starts with an
// absolute http(s) URL. The serverurl group covers scheme, host, and port.
var absoluteAttr = regexp.MustCompile(`(?i)<[^>]+?="(?P<serverurl>https?://[a-z0-9.-]+(:[0-9]+)?)(.+?)"`)

// Options configures the prefixes recognised by the rewriter.
type Options struct {
	LinkPrefix  string
	MediaPrefix string
	// ServerURL overrides the scheme and host derived from the request URL,
	// for hosts served behind a proxy.
	ServerURL string
}

// Request carries the per-request inputs of a rewrite.
type Request struct {
	// URL is the absolute URL of the page being edited.
	URL *url.URL
	// LegacyBrowser is set for clients that percent-encode the tilde of
	// site-relative prefixes when serialising editable regions.
	LegacyBrowser bool
}

// Rewriter is safe for concurrent use; it holds no per-request state.
type Rewriter struct {
	linkPrefix  string
	mediaPrefix string
	serverURL   string
	spaced      []*regexp.Regexp
}

// New builds a rewriter. Empty prefixes fall back to the defaults.
func New(opts Options) *Rewriter {
	linkPrefix := strings.TrimSpace(opts.LinkPrefix)
	if linkPrefix == "" {
		linkPrefix = DefaultLinkPrefix
	}
	mediaPrefix := strings.TrimSpace(opts.MediaPrefix)
	if mediaPrefix == "" {
		mediaPrefix = DefaultMediaPrefix
	}

	r := &Rewriter{
		linkPrefix:  linkPrefix,
		mediaPrefix: mediaPrefix,
		serverURL:   strings.TrimRight(strings.TrimSpace(opts.ServerURL), "/"),
	}
	for _, prefix := range []string{linkPrefix, mediaPrefix} {
		r.spaced = append(r.spaced, spacedPrefixPattern(prefix))
	}
	return r
}

// LinkPrefix reports the configured internal link prefix.
func (r *Rewriter) LinkPrefix() string { return r.linkPrefix }

// MediaPrefix reports the configured media prefix.
func (r *Rewriter) MediaPrefix() string { return r.mediaPrefix }

// Repair returns value with editor-expanded URLs made server relative. It does
// no network access and is idempotent for values without absolute URL markup.
func (r *Rewriter) Repair(value string, req Request) string {
	if req.LegacyBrowser {
		value = strings.ReplaceAll(value, encodeTilde(r.linkPrefix), r.linkPrefix)
		value = strings.ReplaceAll(value, encodeTilde(r.mediaPrefix), r.mediaPrefix)
	}

	if req.URL == nil {
		return value
	}
	cut := strings.LastIndex(req.URL.Path, "/")
	if cut < 0 {
		return value
	}
	currentPath := req.URL.Path[:cut]
	serverURL := r.serverURL
	if serverURL == "" {
		serverURL = ServerURL(req.URL)
	}

	value = relativize(value, serverURL, currentPath)

	for _, pattern := range r.spaced {
		for {
			next := pattern.ReplaceAllString(value, "${1}${2}")
			if next == value {
				break
			}
			value = next
		}
	}
	return value
}

// ServerURL renders scheme://host[:port] of u without a trailing slash.
func ServerURL(u *url.URL) string {
	if u == nil || u.Host == "" {
		return ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + u.Host
}

func relativize(value, serverURL, currentPath string) string {
	matches := absoluteAttr.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return value
	}
	group := absoluteAttr.SubexpIndex("serverurl")

	var b strings.Builder
	b.Grow(len(value))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		gs, ge := m[2*group], m[2*group+1]
		b.WriteString(value[last:start])

		match := value[start:end]
		if serverURL != "" && hasPrefixFold(value[gs:ge], serverURL) {
			match = value[start:gs] + value[ge:end]
		}
		if currentPath != "" {
			match = strings.ReplaceAll(match, currentPath, "")
		}
		b.WriteString(match)
		last = end
	}
	b.WriteString(value[last:])
	return b.String()
}

// spacedPrefixPattern matches an attribute value whose prefix was serialised
// with surrounding spaces or a stray slash, e.g. href=" / ~/link.aspx?".
func spacedPrefixPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(<[^>]*?=["']?)(?: +/? *|/ +)(` + regexp.QuoteMeta(prefix) + `)`)
}

func encodeTilde(prefix string) string {
	return strings.ReplaceAll(prefix, "~", encodedTilde)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
