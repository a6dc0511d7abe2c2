// Package heuristics holds the best-effort text extraction used when
// normalizing postings: location splitting, remote/hybrid flags, salary
// ranges and description cleanup.
package heuristics

import "strings"

// SplitLocations splits a Greenhouse location string on ';', trims each
// part and drops empty ones. The result is never nil.
func SplitLocations(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	for _, part := range strings.Split(raw, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DetectRemoteHybrid reports whether the raw location mentions "remote"
// and/or "hybrid", case-insensitively. The flags are independent.
func DetectRemoteHybrid(raw string) (isRemote, isHybrid bool) {
	lower := strings.ToLower(raw)
	return strings.Contains(lower, "remote"), strings.Contains(lower, "hybrid")
}
