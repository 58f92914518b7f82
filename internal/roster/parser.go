// Package roster reads the vendor roster and parses its free-text
// client lists into typed entries.
package roster

import (
	"strings"

	"github.com/proven-connections/connections-cli/internal/model"
)

// ParseClientList turns one roster cell into typed client entries.
// The cell is a comma-separated mix of "Name (domain)" tokens, bare
// names, and bare domains. Absent or empty input yields an empty list;
// parsing never fails.
func ParseClientList(raw string) []model.ClientEntry {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var entries []model.ClientEntry
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if entry, ok := parseToken(token); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// parseToken classifies a single token. Returns false when the token
// yields neither a name nor a domain.
func parseToken(token string) (model.ClientEntry, bool) {
	open := strings.Index(token, "(")
	closing := strings.Index(token, ")")

	if open >= 0 && closing >= 0 {
		name := strings.TrimSpace(token[:open])
		identifier := ""
		if closing > open {
			identifier = strings.TrimSpace(token[open+1 : closing])
		}

		// Malformed source data shows up as "Name ()" or "Name (nan)";
		// keep the name, discard the identifier.
		if identifier == "" || strings.EqualFold(identifier, "nan") {
			if name == "" {
				return model.ClientEntry{}, false
			}
			return model.ClientEntry{Name: name}, true
		}
		return model.ClientEntry{Name: name, Domain: identifier}, true
	}

	if strings.Contains(token, ".") {
		return model.ClientEntry{Domain: token}, true
	}

	return model.ClientEntry{Name: token}, true
}
