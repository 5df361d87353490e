package report

import (
	"math"
	"sort"
	"strings"
	"time"

	"hisab/internal/core"
)

// investmentKeywords flags a row as an investment when any of them appears in
// its category, case-insensitively.
var investmentKeywords = []string{"invest", "sip", "mf", "fund", "stock"}

// dateLayouts are tried in order when parsing the free-form Date field.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01",
}

// MonthTotal is one calendar-month bucket of an investment series.
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// InvestmentRow pairs an investment transaction with its positional index in
// the full table, so callers can edit or delete it by position.
type InvestmentRow struct {
	Index       int              `json:"index"`
	Transaction core.Transaction `json:"transaction"`
}

// InvestmentReport is the full investment analysis for a table: the monthly
// series ascending by month, the overall total and per-bucket average, the
// per-category breakdown descending by total, and the ten most recent
// investment rows by parsed date.
type InvestmentReport struct {
	Series         []MonthTotal       `json:"series"`
	Total          float64            `json:"total"`
	MonthlyAverage float64            `json:"monthly_average"`
	ByCategory     []CategoryTotal    `json:"by_category"`
	Recent         []core.Transaction `json:"recent"`
}

// IsInvestment reports whether a category names an investment.
func IsInvestment(category string) bool {
	c := strings.ToLower(category)
	for _, kw := range investmentKeywords {
		if strings.Contains(c, kw) {
			return true
		}
	}
	return false
}

// Investments returns the investment rows of a table along with their
// positional indices into the full table.
func Investments(rows []core.Transaction) []InvestmentRow {
	var out []InvestmentRow
	for i, tx := range rows {
		if IsInvestment(tx.Category) {
			out = append(out, InvestmentRow{Index: i, Transaction: tx})
		}
	}
	return out
}

// AnalyzeInvestments buckets investment rows by calendar month. Rows whose
// Date does not parse as a calendar date are dropped from the analysis.
func AnalyzeInvestments(rows []core.Transaction) InvestmentReport {
	type dated struct {
		tx   core.Transaction
		when time.Time
	}
	var inv []dated
	for _, tx := range rows {
		if !IsInvestment(tx.Category) {
			continue
		}
		when, ok := parseDate(tx.Date)
		if !ok {
			continue
		}
		inv = append(inv, dated{tx: tx, when: when})
	}

	var rep InvestmentReport
	if len(inv) == 0 {
		return rep
	}

	byMonth := make(map[string]float64)
	byCat := make(map[string]float64)
	for _, d := range inv {
		month := d.when.Format("2006-01")
		byMonth[month] += d.tx.Amount
		byCat[d.tx.Category] += d.tx.Amount
		rep.Total += d.tx.Amount
	}

	for month, total := range byMonth {
		rep.Series = append(rep.Series, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(rep.Series, func(i, j int) bool {
		return rep.Series[i].Month < rep.Series[j].Month
	})
	rep.MonthlyAverage = round2(rep.Total / float64(len(rep.Series)))

	for cat, total := range byCat {
		rep.ByCategory = append(rep.ByCategory, CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(rep.ByCategory, func(i, j int) bool {
		if rep.ByCategory[i].Total != rep.ByCategory[j].Total {
			return rep.ByCategory[i].Total > rep.ByCategory[j].Total
		}
		return rep.ByCategory[i].Category < rep.ByCategory[j].Category
	})

	sort.SliceStable(inv, func(i, j int) bool {
		return inv[i].when.After(inv[j].when)
	})
	limit := len(inv)
	if limit > 10 {
		limit = 10
	}
	rep.Recent = make([]core.Transaction, 0, limit)
	for _, d := range inv[:limit] {
		rep.Recent = append(rep.Recent, d.tx)
	}
	return rep
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
