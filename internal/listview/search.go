package listview

import "strings"

// Filter returns the items whose searchable fields contain query,
// case-insensitively. An empty query returns every item. The input slice is
// never modified.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	if query == "" {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	needle := strings.ToLower(query)
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields(item) {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
