package parse

import (
	"regexp"
	"strings"
)

var citySuffixRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// StripCitySuffix removes a trailing parenthetical suffix such as
// " (Jakarta)" from a display label. The search UI sends display strings,
// not identifiers, so filter values arrive in this decorated form.
func StripCitySuffix(s string) string {
	return strings.TrimSpace(citySuffixRe.ReplaceAllString(s, ""))
}

// ResolutionState tags the outcome of resolving a display name back to an
// identifier.
type ResolutionState int

const (
	NotFound ResolutionState = iota
	Resolved
	Ambiguous
)

// Resolution is the result of a name-to-identifier lookup. Name matching is
// a compatibility shim for clients that cannot send ids; Ambiguous reports
// duplicate names instead of silently picking one, though ID always carries
// the first match for callers that keep the legacy behavior.
type Resolution struct {
	State      ResolutionState
	ID         int64
	Candidates []int64
}

// ResolveIDs classifies the id set produced by an exact stripped-name match.
func ResolveIDs(ids []int64) Resolution {
	switch len(ids) {
	case 0:
		return Resolution{State: NotFound}
	case 1:
		return Resolution{State: Resolved, ID: ids[0]}
	default:
		return Resolution{State: Ambiguous, ID: ids[0], Candidates: ids}
	}
}
