// Package report contains the pure aggregation functions over a loaded
// transaction table. Nothing in here touches storage; every function takes
// rows and returns derived values, and an empty table always yields zeroed
// aggregates rather than an error.
package report

import (
	"sort"

	"hisab/internal/core"
)

// Summary holds the income/expense totals for a table plus the highest
// spending category. TopCategory is empty when there are no expense rows or
// every expense category sums to zero.
type Summary struct {
	Income      float64 `json:"income"`
	Expense     float64 `json:"expense"`
	Balance     float64 `json:"balance"`
	TopCategory string  `json:"top_category,omitempty"`
	TopValue    float64 `json:"top_value"`
}

// CategoryTotal is an amount aggregated under one category name.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Summarize computes the table summary. The top expense category is the
// grouped expense sum with the largest total; ties resolve to the category
// that sorts first by name, which keeps the result deterministic.
func Summarize(rows []core.Transaction) Summary {
	var s Summary
	for _, tx := range rows {
		switch tx.Type {
		case core.TypeIncome:
			s.Income += tx.Amount
		case core.TypeExpense:
			s.Expense += tx.Amount
		}
	}
	s.Balance = s.Income - s.Expense

	for _, ct := range ExpenseByCategory(rows) {
		if ct.Total > s.TopValue {
			s.TopCategory = ct.Category
			s.TopValue = ct.Total
		}
	}
	return s
}

// ExpenseByCategory groups expense rows by category and sums their amounts.
// Pairs come back sorted descending by total, ties ascending by name; the
// ordering feeds both the pie chart and the summary's top-category pick.
func ExpenseByCategory(rows []core.Transaction) []CategoryTotal {
	totals := make(map[string]float64)
	for _, tx := range rows {
		if tx.Type == core.TypeExpense {
			totals[tx.Category] += tx.Amount
		}
	}
	out := make([]CategoryTotal, 0, len(totals))
	for cat, total := range totals {
		out = append(out, CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}
