package status

import "slices"

// Aggregate folds item statuses into one. The most restrictive value wins:
// any Haram yields Haram, then any Mushbooh yields Mushbooh, and only a
// non-empty list made entirely of Halal yields Halal. Everything else,
// including the empty list, is Unknown.
func Aggregate(items []Status) Status {
	if len(items) == 0 {
		return Unknown
	}
	if slices.Contains(items, Haram) {
		return Haram
	}
	if slices.Contains(items, Mushbooh) {
		return Mushbooh
	}
	for _, s := range items {
		if s != Halal {
			return Unknown
		}
	}
	return Halal
}

// Plurality returns the value cast most often. votes must be in the order
// they were cast; among tied counts the value whose first vote came earliest
// wins. ok is false when votes is empty.
func Plurality(votes []Status) (winner Status, ok bool) {
	counts := make(map[Status]int)
	order := make([]Status, 0, 3)

	for _, v := range votes {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	best := 0
	for _, v := range order {
		if counts[v] > best {
			winner, best = v, counts[v]
		}
	}
	return winner, best > 0
}
