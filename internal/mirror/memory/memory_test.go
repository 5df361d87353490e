package memory

import (
	"context"
	"testing"

	"hisab/internal/core"
)

func TestStore_Replace(t *testing.T) {
	s := New()
	ctx := context.Background()

	if rows := s.Rows(); len(rows) != 0 {
		t.Fatalf("new store should be empty, got %d rows", len(rows))
	}

	first := []core.Transaction{
		{Date: "2024-01-01", Category: "Salary", Amount: 1000, Type: core.TypeIncome},
		{Date: "2024-01-02", Category: "Food", Amount: 150, Type: core.TypeExpense},
	}
	if err := s.Replace(ctx, first); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if rows := s.Rows(); len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}

	second := []core.Transaction{
		{Date: "2024-02-01", Category: "SIP", Amount: 200, Type: core.TypeInvestment},
	}
	if err := s.Replace(ctx, second); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	rows := s.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows after second replace, want 1", len(rows))
	}
	if rows[0].Category != "SIP" {
		t.Errorf("Category = %q, want %q", rows[0].Category, "SIP")
	}
}

func TestStore_RowsReturnsCopy(t *testing.T) {
	s := New()
	if err := s.Replace(context.Background(), []core.Transaction{
		{Date: "2024-01-01", Category: "Rent", Amount: 500, Type: core.TypeExpense},
	}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	rows := s.Rows()
	rows[0].Category = "Mutated"

	if got := s.Rows()[0].Category; got != "Rent" {
		t.Errorf("internal snapshot mutated through returned slice: %q", got)
	}
}
