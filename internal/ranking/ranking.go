// Package ranking extracts bounded windows from ranked tables such as Elo
// ratings, league standings and fantasy leaderboards.
package ranking

import "strings"

// DefaultWindowSize is the number of rows shown around a requested position.
const DefaultWindowSize = 6

// Entry is a row of a ranked table. Rank is 1-based.
type Entry interface {
	Rank() int
	Label() string
}

// WindowAround returns a contiguous sub-slice of at most size entries that
// contains the entry at targetRank (1-based position in entries). Targets
// outside [1, len(entries)] are clamped.
func WindowAround[E any](entries []E, targetRank, size int) []E {
	if size <= 0 {
		size = DefaultWindowSize
	}
	n := len(entries)
	if n <= size {
		return entries
	}

	target := min(max(targetRank, 1), n) - 1
	half := size / 2

	switch {
	case target < half:
		return entries[:size]
	case target >= n-(half-1):
		return entries[n-size:]
	default:
		start := min(max(target-half, 0), n-size)
		return entries[start : start+size]
	}
}

// FindRankByLabel returns the rank of the first entry whose label contains
// needle, ignoring case. ok is false when nothing matches.
func FindRankByLabel[E Entry](entries []E, needle string) (rank int, ok bool) {
	needle = strings.ToLower(needle)
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Label()), needle) {
			return e.Rank(), true
		}
	}
	return 0, false
}

// Search returns every entry whose label contains needle, ignoring case,
// in table order.
func Search[E Entry](entries []E, needle string) []E {
	needle = strings.ToLower(needle)
	var out []E
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Label()), needle) {
			out = append(out, e)
		}
	}
	return out
}

// Top returns the first n entries.
func Top[E any](entries []E, n int) []E {
	if n < 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// PositionOf returns the 1-based slice position of the entry with the
// given rank. Rank and position differ when the table has ties or gaps.
func PositionOf[E Entry](entries []E, rank int) (int, bool) {
	for i, e := range entries {
		if e.Rank() == rank {
			return i + 1, true
		}
	}
	return 0, false
}
