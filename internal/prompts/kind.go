// Package prompts builds the natural-language queries sent to the
// text-generation service. Each query asks for one line per ingredient in the
// format the parser package reads.
package prompts

import "strings"

// Kind selects the query template for a classification subject.
type Kind string

const (
	// KindMeat treats the subject as a single-ingredient meat product.
	KindMeat Kind = "meat"
	// KindBranded names a known multi-ingredient product with a short descriptor.
	KindBranded Kind = "branded"
	KindGeneric Kind = "generic"
	KindBarcode Kind = "barcode"
	// KindList asks for the classification of a batch of ingredient names.
	KindList Kind = "list"
)

var meatKeywords = []string{"pork", "beef", "chicken", "lamb", "fish", "sausage", "meat"}

// brands pairs lowercase name fragments with the descriptor added to their query.
var brands = []struct {
	keyword    string
	descriptor string
}{
	{"kitkat", "a chocolate wafer bar"},
	{"kit kat", "a chocolate wafer bar"},
}

// Detect picks the template for a product lookup. A blank name falls back to
// the barcode template.
func Detect(name string) Kind {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case lower == "":
		return KindBarcode
	case containsAny(lower, meatKeywords):
		return KindMeat
	case brandDescriptor(lower) != "":
		return KindBranded
	default:
		return KindGeneric
	}
}

func brandDescriptor(lower string) string {
	for _, b := range brands {
		if strings.Contains(lower, b.keyword) {
			return b.descriptor
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
