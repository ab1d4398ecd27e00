package repository

import "github.com/google/uuid"

// uuidArg returns id in canonical form, or false when it is not a UUID.
// Callers treat a non-UUID as matching nothing.
func uuidArg(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// uuidArgs keeps the ids that parse, canonical and deduplicated
func uuidArgs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		c, ok := uuidArg(id)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
