// Package status defines the halal classification values shared by products,
// ingredients, and votes, along with the rules that combine them.
package status

import (
	"encoding/json"
	"errors"
	"strings"
)

// Status is a halal classification value.
type Status string

// Classification values. Unknown marks unresolved or insufficient data.
const (
	Halal    Status = "Halal"
	Haram    Status = "Haram"
	Mushbooh Status = "Mushbooh"
	Unknown  Status = "Unknown"
)

// ErrInvalid indicates a value outside the classification domain.
var ErrInvalid = errors.New("invalid status")

var all = []Status{Halal, Haram, Mushbooh, Unknown}

// Parse matches s case-insensitively against the classification values.
func Parse(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, v := range all {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", ErrInvalid
}

// ParseVote is Parse restricted to the values a vote or parsed line may carry.
func ParseVote(s string) (Status, error) {
	v, err := Parse(s)
	if err != nil || !v.Votable() {
		return "", ErrInvalid
	}
	return v, nil
}

// Votable reports whether s is one of Halal, Haram, or Mushbooh.
func (s Status) Votable() bool {
	return s == Halal || s == Haram || s == Mushbooh
}

// UnmarshalJSON accepts any casing of a known value.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := Parse(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
