package validation

import (
	"testing"

	"golang.org/x/text/language"
)

func TestLocalesLookup(t *testing.T) {
	locales := DefaultLocales()

	cases := map[string]string{
		"":      ".",
		"en":    ".",
		"en-GB": ".",
		"de":    ",",
		"da-DK": ",",
		"fr_CA": ",",
		"bogus": ".",
	}
	for locale, want := range cases {
		if got := locales.Lookup(locale).Decimal; got != want {
			t.Fatalf("Lookup(%q): expected %q, got %q", locale, want, got)
		}
	}
}

func TestNewLocalesCustomTable(t *testing.T) {
	locales := NewLocales(map[language.Tag]NumberFormat{
		language.MustParse("de-CH"): {Decimal: "."},
	})
	if got := locales.Lookup("de-CH").Decimal; got != "." {
		t.Fatalf("expected swiss german to use '.', got %q", got)
	}
}

func TestNilLocales(t *testing.T) {
	var locales *Locales
	if got := locales.Lookup("de"); got != Invariant {
		t.Fatalf("expected invariant format, got %+v", got)
	}
}
