package fieldtypes

import (
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-webedit/internal/linkrepair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTable(t *testing.T) {
	rules := NewRules(WithNewline("\n"))

	cases := []struct {
		name     string
		typeKey  string
		input    string
		expected string
	}{
		{"single line strips then decodes", TypeSingleLineText, "<b>Hello</b> World", "Hello World"},
		{"text decodes entities", TypeText, "Tom &amp; Jerry", "Tom & Jerry"},
		{"text removes encoded markup", TypeText, "&lt;i&gt;quoted&lt;/i&gt;", "quoted"},
		{"text keeps bare angle", TypeText, "a &lt; b", "a < b"},
		{"integer strips tags only", TypeInteger, "<p>42</p>", "42"},
		{"number keeps formatting", TypeNumber, "<span>1,234.50</span>", "1,234.50"},
		{"integer keeps entities", TypeInteger, "4&#50;", "4&#50;"},
		{"multi line break variants", TypeMultiLineText, "a<br>b<BR/>c<br />d<Br  / >e", "a\r\nb\r\nc\r\nd\r\ne"},
		{"memo strips remaining tags", TypeMemo, "<div>one<br>two</div>", "one\r\ntwo"},
		{"word document line endings", TypeWordDocument, "a\r\nb\n\rc\nd", "a\nb\nc\nd"},
		{"html trims trailing spaces", TypeHTML, "<p>x</p>   ", "<p>x</p>"},
		{"html keeps leading spaces", TypeRichText, "  <p>x</p>", "  <p>x</p>"},
		{"unknown passes through", "checkbox", "<b>1</b>", "<b>1</b>"},
		{"type key is case insensitive", " Single-Line Text ", "<i>x</i>", "x"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, rules.Normalize(tc.typeKey, tc.input, Env{}))
		})
	}
}

func TestPlainTextIsIdempotent(t *testing.T) {
	rules := NewRules()
	inputs := []string{
		"<b>Hello</b> World",
		"&lt;b&gt;bold&lt;/b&gt;",
		"&amp;lt;script&amp;gt;x",
		"<script>alert('<b>x</b>')</script>",
		"<title><i>t</i></title>after",
		"plain",
		"",
		"5 < 6 &gt; 4",
		"<!-- note -->visible<!DOCTYPE html>",
	}
	for _, key := range []string{TypeText, TypeSingleLineText} {
		for _, input := range inputs {
			once := rules.Normalize(key, input, Env{})
			twice := rules.Normalize(key, once, Env{})
			assert.Equal(t, once, twice, "input %q", input)
			assert.False(t, ContainsMarkup(once), "markup left in %q", once)
		}
	}
}

func TestMultiLineLeavesNoTags(t *testing.T) {
	rules := NewRules()
	out := rules.Normalize(TypeMultiLineText, "<p>first<BR>second<br/>third</p><br >", Env{})

	assert.Equal(t, "first\r\nsecond\r\nthird\r\n", out)
	assert.False(t, ContainsMarkup(out))

	assert.Equal(t, "a<b\r\nc", rules.Normalize(TypeMultiLineText, "a<b<br>c", Env{}))
}

func TestStrippingKeepsTextAfterUnterminatedTags(t *testing.T) {
	rules := NewRules()

	assert.Equal(t, "Use x<y for ordering", rules.Normalize(TypeSingleLineText, "Use x<y for ordering", Env{}))
	assert.Equal(t, "Hello <World", rules.Normalize(TypeText, "<b>Hello</b> <World", Env{}))
	assert.Equal(t, "4<2", rules.Normalize(TypeInteger, "<p>4</p><2", Env{}))
	assert.Equal(t, "a<b\r\nc", rules.Normalize(TypeMultiLineText, "a<b<br>c", Env{}))
	assert.Equal(t, "a<b\r\nc", rules.Normalize(TypeMemo, "a<b<BR/>c", Env{}))
}

func TestRichTextRepairsLinks(t *testing.T) {
	rules := NewRules(WithRewriter(linkrepair.New(linkrepair.Options{})))
	u, err := url.Parse("http://current-server/sitecore/edit.aspx")
	require.NoError(t, err)

	out := rules.Normalize(TypeRichText, `<a href="http://current-server/link.aspx?id=1">x</a>  `, Env{Link: linkrepair.Request{URL: u}})
	assert.Equal(t, `<a href="/link.aspx?id=1">x</a>`, out)
}

func TestWithTransformOverridesAndRemoves(t *testing.T) {
	rules := NewRules(
		WithTransform("checkbox", func(value string, _ Env) string { return strings.ToUpper(value) }),
		WithTransform(TypeMemo, nil),
	)

	assert.True(t, rules.Has("CHECKBOX"))
	assert.Equal(t, "ON", rules.Normalize("checkbox", "on", Env{}))
	assert.False(t, rules.Has(TypeMemo))
	assert.Equal(t, "a<br>b", rules.Normalize(TypeMemo, "a<br>b", Env{}))
}

func TestNilRulesPassThrough(t *testing.T) {
	var rules *Rules
	assert.Equal(t, "<b>x</b>", rules.Normalize(TypeText, "<b>x</b>", Env{}))
	assert.False(t, rules.Has(TypeText))
}
