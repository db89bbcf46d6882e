// Package utils holds tiny helpers shared across layers; nothing in here
// knows about the domain.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// valid integer. Query-string paging params come through here, so a garbled
// "page=abc" degrades to the default instead of an error.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
