package store

import "strings"

// normalizeKey produces the lowercase lookup key used for team rows.
func normalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
