package core

import (
	"strconv"
	"strings"
)

const (
	TypeIncome     TxType = "income"
	TypeExpense    TxType = "expense"
	TypeInvestment TxType = "investment"
)

type (
	// TxType is the transaction kind. Income, expense and investment are the
	// conventional values; anything else is carried through as-is after
	// normalization so that unknown labels are preserved rather than rejected.
	TxType string

	// Transaction is one row of the ledger. Date and Category are free-form
	// strings; Amount is a plain float as stored in the file.
	Transaction struct {
		Date     string  `json:"date"`
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
		Type     TxType  `json:"type"`
	}
)

// NormalizeType trims and lower-cases a raw type label.
func NormalizeType(s string) TxType {
	return TxType(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether the type is one of the three conventional kinds.
func (t TxType) Known() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeInvestment:
		return true
	}
	return false
}

func (t TxType) String() string {
	return string(t)
}

// Record returns the transaction as a CSV record in canonical column order.
func (tx Transaction) Record() []string {
	return []string{tx.Date, tx.Category, FormatAmount(tx.Amount), string(tx.Type)}
}

// SearchText returns the row flattened to a single lower-cased string, used
// for substring search across all fields.
func (tx Transaction) SearchText() string {
	return strings.ToLower(tx.Date + " " + tx.Category + " " + FormatAmount(tx.Amount) + " " + string(tx.Type))
}

// FormatAmount renders an amount for storage. Whole values keep one decimal
// place so that a zero amount is written as "0.0" rather than "0".
func FormatAmount(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
