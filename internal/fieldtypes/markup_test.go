package fieldtypes

import "testing"

func TestStripTags(t *testing.T) {
	cases := map[string]string{
		"":                             "",
		"no markup":                    "no markup",
		"<b>bold</b> text":             "bold text",
		"a <em class=\"x\">b</em> c":   "a b c",
		"keep &amp; entities <i>x</i>": "keep &amp; entities x",
		"<!-- c -->after":              "after",
		"<style>p{}</style>body":       "p{}body",
		"line\r\n<br>next":             "line\r\nnext",
		"1 < 2":                        "1 < 2",
		"Use x<y for ordering":         "Use x<y for ordering",
		"Hello <World":                 "Hello <World",
		"a<b":                          "a<b",
		"<b>x</b> then a<b":            "x then a<b",
		"open <!-- comment":            "open <!-- comment",
	}
	for input, want := range cases {
		if got := StripTags(input); got != want {
			t.Fatalf("StripTags(%q): expected %q, got %q", input, want, got)
		}
	}
}

func TestContainsMarkup(t *testing.T) {
	if ContainsMarkup("1 < 2") {
		t.Fatalf("expected bare angle bracket to be treated as text")
	}
	if ContainsMarkup("a<b") {
		t.Fatalf("expected unterminated tag to be treated as text")
	}
	if !ContainsMarkup("x<br/>") {
		t.Fatalf("expected markup to be detected")
	}
}
