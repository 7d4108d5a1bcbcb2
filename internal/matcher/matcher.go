// Package matcher decides whether a candidate's base name matches a rule in
// the configured pattern set.
package matcher

import (
	"strings"

	"github.com/vscan/vscan-backup-file-detector/internal/models"
	"github.com/vscan/vscan-backup-file-detector/internal/rules"
)

// Matcher tests candidate base names against an ordered rule set.
// Matching is case-insensitive and purely functional: no side effects, and
// malformed names (no extension, a name that is only the suffix, a literal
// "~") are evaluated like any other.
type Matcher struct {
	set rules.Set
}

// New creates a Matcher over the given rule set.
func New(set rules.Set) *Matcher {
	return &Matcher{set: set}
}

// Match returns the first rule, in set order, whose suffix matches the
// candidate's base name. The boolean reports whether any rule matched.
func (m *Matcher) Match(c models.Candidate) (rules.Rule, bool) {
	name := strings.ToLower(c.Name)
	for _, r := range m.set.Rules() {
		if strings.HasSuffix(name, r.Suffix) {
			return r, true
		}
	}
	return rules.Rule{}, false
}
