package intake

import "strings"

// Separator joins multi-select items at the persistence boundary.
const Separator = "; "

// StringToArray splits a semicolon-delimited string, trimming each item and
// dropping empty ones. Order is preserved.
func StringToArray(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ArrayToString joins items with Separator.
func ArrayToString(items []string) string {
	return strings.Join(items, Separator)
}
