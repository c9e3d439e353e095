package render

import "strings"

// KeyExcluder drops label and annotation keys from dynamic column
// derivation. Patterns support wildcards:
//   - "prefix*" matches keys starting with "prefix"
//   - "*suffix" matches keys ending with "suffix"
//   - "*contains*" matches keys containing "contains"
//   - "exact" matches keys exactly
//
// Clusters decorate resources with bookkeeping keys (for example
// kubectl.kubernetes.io/last-applied-configuration) that would dominate
// a per-key table; excluding them keeps the lens readable.
type KeyExcluder []string

// Excludes reports whether the key matches any pattern.
func (x KeyExcluder) Excludes(key string) bool {
	for _, pattern := range x {
		if matchesPattern(key, pattern) {
			return true
		}
	}
	return false
}

// Prune returns kv without the excluded keys. The input map is never
// mutated; with no patterns the map is returned as is.
func (x KeyExcluder) Prune(kv map[string]string) map[string]string {
	if len(x) == 0 || len(kv) == 0 {
		return kv
	}

	pruned := make(map[string]string, len(kv))
	for key, value := range kv {
		if !x.Excludes(key) {
			pruned[key] = value
		}
	}
	return pruned
}

// matchesPattern checks if a key matches a wildcard pattern.
func matchesPattern(key, pattern string) bool {
	// No wildcard - exact match
	if !strings.Contains(pattern, "*") {
		return key == pattern
	}

	// *contains* - contains match
	if strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") {
		return strings.Contains(key, strings.Trim(pattern, "*"))
	}

	// *suffix - ends with match
	if strings.HasPrefix(pattern, "*") {
		return strings.HasSuffix(key, strings.TrimPrefix(pattern, "*"))
	}

	// prefix* - starts with match
	return strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))
}
