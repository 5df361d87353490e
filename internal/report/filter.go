package report

import (
	"sort"
	"strings"

	"hisab/internal/core"
)

// CategoryAll is the sentinel meaning "no category filter".
const CategoryAll = "All"

// Filter narrows a table for listing. Month is a string prefix match on the
// Date field, so "2024" and "2024-03" both work. Category is an exact match
// unless empty or CategoryAll. Search is a case-insensitive substring test
// against all fields of the row concatenated.
type Filter struct {
	Month    string
	Category string
	Search   string
}

// Apply returns the rows matching the filter, preserving table order.
func Apply(rows []core.Transaction, f Filter) []core.Transaction {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]core.Transaction, 0, len(rows))
	for _, tx := range rows {
		if f.Month != "" && !strings.HasPrefix(tx.Date, f.Month) {
			continue
		}
		if f.Category != "" && f.Category != CategoryAll && tx.Category != f.Category {
			continue
		}
		if search != "" && !strings.Contains(tx.SearchText(), search) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Months returns the sorted unique YYYY-MM prefixes of the Date column, for
// the dashboard month dropdown.
func Months(rows []core.Transaction) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tx := range rows {
		m := tx.Date
		if len(m) > 7 {
			m = m[:7]
		}
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Categories returns the sorted unique category names in the table.
func Categories(rows []core.Transaction) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tx := range rows {
		if tx.Category == "" {
			continue
		}
		if _, ok := seen[tx.Category]; ok {
			continue
		}
		seen[tx.Category] = struct{}{}
		out = append(out, tx.Category)
	}
	sort.Strings(out)
	return out
}

// Recent returns up to n rows ordered by the Date string descending. The sort
// is stable, so rows sharing a date keep their table order.
func Recent(rows []core.Transaction, n int) []core.Transaction {
	out := make([]core.Transaction, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
