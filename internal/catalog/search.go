package catalog

import "strings"

// Matches reports whether item's name or description contains query,
// ignoring case. Every implementation and the local filter share this rule.
func Matches(item Item, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(item.Name), q) ||
		strings.Contains(strings.ToLower(item.Description), q)
}

// ValidateQuery rejects search text that is empty after trimming.
// Callers run it before SearchItems.
func ValidateQuery(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrBlankQuery
	}
	return nil
}

// filterItems returns the items that satisfy keep, preserving order.
func filterItems(items []Item, keep func(Item) bool) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
