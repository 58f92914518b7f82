// Package textutil provides the string normalization used for fuzzy
// company matching. Matching is substring containment of the normalized
// query inside the normalized haystack, so the same transform must be
// applied to both sides.
package textutil

import (
	"regexp"
	"strings"
)

// domainSuffixRe matches a trailing TLD: either a two-part country-style
// suffix (.co.uk, .com.au) or a single trailing label (.com, .org, .io).
var domainSuffixRe = regexp.MustCompile(`(\.(?:co|com|org|net|ac|gov)\.[a-z]{2}|\.[a-z]{2,})$`)

var normalizeReplacer = strings.NewReplacer(
	" ", "",
	"-", "",
	"_", "",
	".", "",
)

// Normalize lower-cases s and strips spaces, hyphens, underscores, and
// dots. Idempotent.
func Normalize(s string) string {
	return normalizeReplacer.Replace(strings.ToLower(s))
}

// StripDomainSuffix removes a trailing TLD suffix from a domain string,
// so "acme.co.uk" and "acme-corp.com" both reduce to their registrable
// label(s). Intended for domain-typed inputs only; names pass through
// Normalize directly.
func StripDomainSuffix(domain string) string {
	return domainSuffixRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(domain)), "")
}

// NormalizeDomain strips the TLD suffix and then normalizes, yielding
// the form compared against normalized company names.
func NormalizeDomain(domain string) string {
	return Normalize(StripDomainSuffix(domain))
}
