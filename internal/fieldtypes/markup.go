package fieldtypes

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// StripTags removes markup constructs (elements, comments, doctypes) from
// value while keeping text bytes exactly as written. Entities are left
// encoded. Stripping repeats until no markup token remains, which covers
// tags nested inside raw text elements such as <script> or <title>.
func StripTags(value string) string {
	if !strings.ContainsRune(value, '<') {
		return value
	}
	for {
		next, changed := stripPass(value)
		if !changed {
			return next
		}
		value = next
	}
}

// ContainsMarkup reports whether value still carries a markup token.
func ContainsMarkup(value string) bool {
	if !strings.ContainsRune(value, '<') {
		return false
	}
	_, changed := stripPass(value)
	return changed
}

// stripPass drops complete markup tokens. A construct the tokenizer had to
// cut short at the end of input (no closing '>') is text, as are any bytes
// left unread when tokenizing stops.
func stripPass(value string) (string, bool) {
	tokenizer := html.NewTokenizer(strings.NewReader(value))
	var out strings.Builder
	out.Grow(len(value))
	consumed := 0
	changed := false
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if consumed < len(value) {
				out.WriteString(value[consumed:])
			}
			return out.String(), changed
		}
		raw := tokenizer.Raw()
		consumed += len(raw)
		if tt == html.TextToken || !bytes.HasSuffix(raw, []byte(">")) {
			out.Write(raw)
			continue
		}
		changed = true
	}
}
