// Package search provides a simple, deterministic, concurrency-safe in-memory
// index over canonical place names (states, local government areas). It backs
// the conversation flow's search-list widgets and must reproduce the widget's
// ranking exactly for UI parity:
//
//   - case- and diacritic-insensitive substring match
//   - exact-prefix matches ranked before other substring matches
//   - alphabetical order within each rank
//   - suggestion list capped, with a count of the remaining matches
//
// The index is immutable after construction and safe for concurrent use.
// No logging in the library; callers decide how/what to log.
package search

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics so "oyo" matches "Ọyọ".
// Transformers carry state, so the chain is built per call rather than shared.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold())
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// Index is a read-only name index. Build it with NewIndex.
type Index struct {
	names  []string // canonical casing, sorted alphabetically
	folded []string // case/diacritic-folded twin of names, same order
}

// NewIndex builds an Index from canonical names. Blank entries and duplicates
// (after folding) are dropped; the survivor keeps the first casing seen.
func NewIndex(names []string) *Index {
	seen := make(map[string]struct{}, len(names))
	keep := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := Fold(n)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, n)
	}
	sort.Strings(keep)
	folded := make([]string, len(keep))
	for i, n := range keep {
		folded[i] = Fold(n)
	}
	return &Index{names: keep, folded: folded}
}

// Len returns the number of indexed names.
func (ix *Index) Len() int { return len(ix.names) }

// Names returns a copy of the canonical name list (alphabetical).
func (ix *Index) Names() []string {
	out := make([]string, len(ix.names))
	copy(out, ix.names)
	return out
}

// Search returns up to limit matches for q plus the count of matches beyond
// the cap. An empty or whitespace query matches nothing; zero matches is a
// valid "no results" outcome, not an error. limit <= 0 applies no cap.
func (ix *Index) Search(q string, limit int) (matches []string, remaining int) {
	q = Fold(q)
	if q == "" {
		return nil, 0
	}

	var prefix, substr []string
	for i, fn := range ix.folded {
		switch {
		case strings.HasPrefix(fn, q):
			prefix = append(prefix, ix.names[i])
		case strings.Contains(fn, q):
			substr = append(substr, ix.names[i])
		}
	}
	// names is sorted, so both groups are already alphabetical.
	all := append(prefix, substr...)
	if limit > 0 && len(all) > limit {
		return all[:limit], len(all) - limit
	}
	return all, 0
}

// Match classifies q as a canonical name. It succeeds on an exact
// case-insensitive match, or when exactly one indexed name matches q as a
// substring. Ambiguous or unmatched input returns ok=false; callers should
// fall back to Suggest.
func (ix *Index) Match(q string) (string, bool) {
	fq := Fold(q)
	if fq == "" {
		return "", false
	}
	for i, fn := range ix.folded {
		if fn == fq {
			return ix.names[i], true
		}
	}
	all, remaining := ix.Search(q, 2)
	if remaining == 0 && len(all) == 1 {
		return all[0], true
	}
	return "", false
}

// Suggest satisfies the flow engine's matcher contract; it is Search under
// the interface's name.
func (ix *Index) Suggest(q string, limit int) ([]string, int) {
	return ix.Search(q, limit)
}
