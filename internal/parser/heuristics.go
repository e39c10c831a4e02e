package parser

import (
	"strings"

	"github.com/JaimeStill/halalcheck/internal/status"
)

const maxNameLength = 50

// Substrings that mark a line as prose around the answer rather than a name.
var noiseMarkers = []string{
	"since",
	"database",
	"estimated",
	"always check",
	"certification",
	"important considerations",
	"mushbooh means",
	"processing methods",
	" and ",
}

var bulletMarkers = []string{"*", "-", "•"}

var singleIngredientKeywords = []string{
	"pork", "beef", "chicken", "lamb", "fish", "milk", "egg", "honey",
}

func invalidName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	if len([]rune(name)) > maxNameLength {
		return true
	}

	lower := strings.ToLower(name)
	for _, b := range bulletMarkers {
		if strings.HasPrefix(lower, b) {
			return true
		}
	}
	for _, m := range noiseMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func isSentinel(line string) bool {
	return strings.EqualFold(line, NoIngredients) || strings.EqualFold(line, NoData)
}

func singleIngredient(subject string) bool {
	return containsAny(strings.ToLower(subject), singleIngredientKeywords...)
}

// singleIngredientStatus assumes halal slaughter for the permitted meats.
func singleIngredientStatus(subject string) status.Status {
	lower := strings.ToLower(subject)
	switch {
	case containsAny(lower, "pork", "pig"):
		return status.Haram
	case containsAny(lower, "chicken", "beef", "lamb", "fish"):
		return status.Halal
	default:
		return status.Mushbooh
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
