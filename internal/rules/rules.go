// Package rules holds the pattern set of backup-file naming conventions.
//
// A Set is an immutable, ordered list of suffix rules fixed at startup.
// Ordering matters: the matcher evaluates rules in set order and the first
// match wins, so the default set is deterministic and documented in Default.
package rules

import (
	"strings"

	"github.com/vscan/vscan-backup-file-detector/internal/scanerr"
)

// Rule identifies one backup-file naming convention by filename suffix.
// Suffix comparison is case-insensitive and the stored suffix is always
// lowercase.
type Rule struct {
	// Suffix is the lowercase filename suffix, including any leading dot
	// (".bak"). A bare "~" is a valid suffix with no dot.
	Suffix string `json:"suffix"`

	// Reason is a short human-readable explanation attached to findings.
	Reason string `json:"reason"`
}

// Set is an immutable ordered sequence of rules.
type Set struct {
	rules []Rule
}

// Default returns the canonical rule set, in evaluation order:
//
//	.bak .swp ~ .old .orig .tmp .backup .save
//
// The set covers editor backup and swap files, manual copies, and the
// suffixes commonly left behind by deployment scripts.
func Default() Set {
	return Set{rules: []Rule{
		{Suffix: ".bak", Reason: "backup copy"},
		{Suffix: ".swp", Reason: "vim swap file"},
		{Suffix: "~", Reason: "editor backup file"},
		{Suffix: ".old", Reason: "superseded copy"},
		{Suffix: ".orig", Reason: "merge/patch original"},
		{Suffix: ".tmp", Reason: "temporary file"},
		{Suffix: ".backup", Reason: "backup copy"},
		{Suffix: ".save", Reason: "editor save file"},
	}}
}

// FromSuffixes builds a Set from user-supplied suffixes, replacing the
// default set. Suffixes are trimmed and lowercased; empty entries are
// dropped. A leading dot is not added automatically because suffixes like
// "~" legitimately have none. An input that yields no rules is a usage
// error.
func FromSuffixes(suffixes []string) (Set, error) {
	var rs []Rule
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		rs = append(rs, Rule{Suffix: s, Reason: "custom suffix"})
	}
	if len(rs) == 0 {
		return Set{}, scanerr.Usage(scanerr.ErrEmptyRuleSet)
	}
	return Set{rules: rs}, nil
}

// Rules returns the rules in evaluation order. The returned slice is a copy;
// mutating it does not affect the set.
func (s Set) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of rules in the set.
func (s Set) Len() int {
	return len(s.rules)
}

// Suffixes returns the suffixes in evaluation order.
func (s Set) Suffixes() []string {
	out := make([]string, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Suffix
	}
	return out
}
