package scan

import (
	"regexp"
	"strings"
)

// ticketRegex matches a ticket key at the start of what remains of a
// branch name once its prefix is stripped: letters, hyphen, digits.
// Anything after the key is ignored.
var ticketRegex = regexp.MustCompile(`(?i)^([a-z]+-[0-9]+)`)

// MatchPrefix returns the first configured prefix the branch name starts
// with. ok is false when none match, which excludes the branch from the
// scan entirely.
func MatchPrefix(branch string, prefixes []string) (prefix string, ok bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(branch, p) {
			return p, true
		}
	}
	return "", false
}

// ExtractTicket pulls a ticket key out of a branch name given its matched
// prefix. Keys are normalized to uppercase so "feature/abc-12-cleanup"
// and "feature/ABC-12-cleanup" resolve the same ticket. ok is false when
// the name carries no recognizable key directly after the prefix.
func ExtractTicket(branch, prefix string) (key string, ok bool) {
	rest := strings.TrimPrefix(branch, prefix)
	if rest == branch {
		return "", false
	}
	m := ticketRegex.FindStringSubmatch(rest)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}
