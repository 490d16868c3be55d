package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

var (
	integerSyntax = regexp.MustCompile(`^[+-]?[0-9]+$`)
	numberSyntax  = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
)

// NumberFormat describes the separators used to parse numbers for a locale.
type NumberFormat struct {
	Decimal string
}

// Invariant is used when a locale is unknown.
var Invariant = NumberFormat{Decimal: "."}

// IsInteger reports whether value parses as a 64-bit integer. Surrounding
// whitespace and a leading sign are accepted; group separators are not.
func (NumberFormat) IsInteger(value string) bool {
	trimmed := strings.TrimFunc(value, unicode.IsSpace)
	if !integerSyntax.MatchString(trimmed) {
		return false
	}
	_, err := strconv.ParseInt(trimmed, 10, 64)
	return err == nil
}

// IsNumber reports whether value parses as a finite float using the locale
// decimal separator. An exponent is accepted; group separators are not.
func (f NumberFormat) IsNumber(value string) bool {
	trimmed := strings.TrimFunc(value, unicode.IsSpace)
	decimal := f.Decimal
	if decimal == "" {
		decimal = Invariant.Decimal
	}
	if decimal != "." {
		if strings.Contains(trimmed, ".") {
			return false
		}
		trimmed = strings.Replace(trimmed, decimal, ".", 1)
	}
	if !numberSyntax.MatchString(trimmed) {
		return false
	}
	_, err := strconv.ParseFloat(trimmed, 64)
	return err == nil
}

// Locales resolves a language tag to a NumberFormat.
type Locales struct {
	matcher language.Matcher
	formats []NumberFormat
}

// DefaultLocales returns the built-in separator table.
func DefaultLocales() *Locales {
	comma := NumberFormat{Decimal: ","}
	return NewLocales(map[language.Tag]NumberFormat{
		language.English:    Invariant,
		language.Japanese:   Invariant,
		language.Chinese:    Invariant,
		language.Korean:     Invariant,
		language.German:     comma,
		language.French:     comma,
		language.Spanish:    comma,
		language.Italian:    comma,
		language.Dutch:      comma,
		language.Portuguese: comma,
		language.Danish:     comma,
		language.Swedish:    comma,
		language.Norwegian:  comma,
		language.Finnish:    comma,
		language.Polish:     comma,
		language.Russian:    comma,
		language.Turkish:    comma,
	})
}

// NewLocales builds a table from explicit tag formats. English is always the
// fallback entry.
func NewLocales(formats map[language.Tag]NumberFormat) *Locales {
	tags := []language.Tag{language.English}
	list := []NumberFormat{Invariant}
	if format, ok := formats[language.English]; ok {
		list[0] = format
	}
	for tag, format := range formats {
		if tag == language.English {
			continue
		}
		tags = append(tags, tag)
		list = append(list, format)
	}
	return &Locales{
		matcher: language.NewMatcher(tags),
		formats: list,
	}
}

// Lookup returns the format for locale, or Invariant when nothing matches.
func (l *Locales) Lookup(locale string) NumberFormat {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if l == nil || locale == "" {
		return Invariant
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Invariant
	}
	_, index, confidence := l.matcher.Match(tag)
	if confidence == language.No || index < 0 || index >= len(l.formats) {
		return Invariant
	}
	return l.formats[index]
}
