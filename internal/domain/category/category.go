// Package category maps the provider's transaction taxonomy onto the
// internal category set used everywhere else in the application.
package category

import "strings"

// Category is an internal transaction category. The set is fixed; the
// provider's much larger taxonomy is collapsed onto it at sync time.
type Category string

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Shopping      Category = "shopping"
	Entertainment Category = "entertainment"
	Utilities     Category = "utilities"
	Medical       Category = "medical"
	Education     Category = "education"
	Other         Category = "other"
)

// providerMapping collapses provider category names onto internal categories.
// Keys are upper-case; both the underscore and space spellings the provider
// has been observed to send are listed.
var providerMapping = map[string]Category{
	"FOOD_AND_DRINK": Food,
	"FOOD AND DRINK": Food,
	"TRAVEL":         Transport,
	"TRANSPORTATION": Transport,
	"TRANSFER":       Other,
	"PAYMENT":        Other,
	"SHOPPING":       Shopping,
	"ENTERTAINMENT":  Entertainment,
	"UTILITIES":      Utilities,
	"MEDICAL":        Medical,
	"HEALTHCARE":     Medical,
	"EDUCATION":      Education,
}

// inverseMapping translates internal categories back to the provider's
// primary taxonomy name. Used only to build outbound filter queries, so it
// does not need to be total; callers pass unmapped values through unchanged.
var inverseMapping = map[Category]string{
	Food:          "FOOD_AND_DRINK",
	Transport:     "TRAVEL",
	Shopping:      "SHOPPING",
	Entertainment: "ENTERTAINMENT",
	Utilities:     "UTILITIES",
	Medical:       "MEDICAL",
	Education:     "EDUCATION",
	Other:         "PAYMENT",
}

var internalSet = func() map[Category]struct{} {
	set := make(map[Category]struct{})
	for _, c := range []Category{Food, Transport, Shopping, Entertainment, Utilities, Medical, Education, Other} {
		set[c] = struct{}{}
	}
	return set
}()

// ToInternal translates a provider category name to an internal category.
// The match is case-insensitive and total: any unrecognized input, including
// the empty string, maps to Other. Raw provider category strings are never
// stored; everything goes through this function first.
func ToInternal(providerCategory string) Category {
	if c, ok := providerMapping[strings.ToUpper(strings.TrimSpace(providerCategory))]; ok {
		return c
	}
	return Other
}

// ToProvider translates an internal category to the provider's taxonomy name
// for outbound filter queries. Values outside the internal set pass through
// unchanged.
func ToProvider(c Category) string {
	if name, ok := inverseMapping[c]; ok {
		return name
	}
	return string(c)
}

// IsInternal reports whether s names a valid internal category.
func IsInternal(s string) bool {
	_, ok := internalSet[Category(s)]
	return ok
}

func (c Category) String() string {
	return string(c)
}
