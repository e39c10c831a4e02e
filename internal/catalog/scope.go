package catalog

import (
	"slices"
	"strings"

	"github.com/JaimeStill/halalcheck/internal/status"
)

// NoCountry is the placeholder an otherwise empty country set holds.
const NoCountry = "None"

// Scope records which countries classify an ingredient as Halal, Haram, or
// Mushbooh. A country appears in at most one of the three sets.
type Scope struct {
	HalalIn    []string `json:"halal_in"`
	HaramIn    []string `json:"haram_in"`
	MushboohIn []string `json:"mushbooh_in"`
}

// NewScope returns a scope placing country in the set matching s.
func NewScope(country string, s status.Status) Scope {
	var sc Scope
	sc.Apply(country, s)
	return sc
}

// Apply merges an observed (country, status) pair, clearing any earlier
// placement of country while leaving other countries untouched. An Unknown
// status removes the country from every set. A blank country only restores
// the placeholders.
func (sc *Scope) Apply(country string, s status.Status) {
	country = strings.TrimSpace(country)

	sets := []*[]string{&sc.HalalIn, &sc.HaramIn, &sc.MushboohIn}

	for _, set := range sets {
		*set = slices.DeleteFunc(*set, func(c string) bool {
			return c == NoCountry || (country != "" && strings.EqualFold(c, country))
		})
	}

	if target := sc.set(s); target != nil && country != "" {
		*target = append(*target, country)
	}

	for _, set := range sets {
		if len(*set) == 0 {
			*set = []string{NoCountry}
		}
	}
}

// Countries returns the real countries recorded for s, without the placeholder.
func (sc Scope) Countries(s status.Status) []string {
	target := sc.set(s)
	if target == nil {
		return nil
	}
	return slices.DeleteFunc(slices.Clone(*target), func(c string) bool {
		return c == NoCountry
	})
}

func (sc *Scope) set(s status.Status) *[]string {
	switch s {
	case status.Halal:
		return &sc.HalalIn
	case status.Haram:
		return &sc.HaramIn
	case status.Mushbooh:
		return &sc.MushboohIn
	}
	return nil
}

func (sc Scope) clone() Scope {
	return Scope{
		HalalIn:    slices.Clone(sc.HalalIn),
		HaramIn:    slices.Clone(sc.HaramIn),
		MushboohIn: slices.Clone(sc.MushboohIn),
	}
}
