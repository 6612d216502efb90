package catalog

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syntrixbase/showroom/pkg/model"
)

// nameField is the document field prefix search runs against.
const nameField = "name"

// rangeSentinel is the largest code point. Appended to a prefix it yields an
// exclusive upper bound above every string that starts with the prefix.
const rangeSentinel = string(utf8.MaxRune)

// NormalizePrefix upper-cases a search prefix using full Unicode case mapping,
// so "straße" becomes "STRASSE".
func NormalizePrefix(prefix string) string {
	// Casers are stateful and must not be shared across goroutines.
	return cases.Upper(language.Und).String(prefix)
}

// PrefixRange returns the half-open range [lo, hi) matching every string with
// the normalized prefix.
func PrefixRange(prefix string) (lo, hi string) {
	p := NormalizePrefix(prefix)
	return p, p + rangeSentinel
}

func prefixFilters(prefix string) model.Filters {
	lo, hi := PrefixRange(prefix)
	return model.Filters{
		{Field: nameField, Op: model.OpGte, Value: lo},
		{Field: nameField, Op: model.OpLt, Value: hi},
	}
}
