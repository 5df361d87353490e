package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/report"
	"hisab/internal/store"
)

type recordingPublisher struct {
	messages []*amqp.ChangeMessage
	err      error
}

func (p *recordingPublisher) PublishChange(_ context.Context, msg *amqp.ChangeMessage) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func newTracker(t *testing.T, events EventPublisher) *Tracker {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "transactions.csv"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	return NewTracker(s, events)
}

func seedTracker(t *testing.T, tr *Tracker, rows []core.Transaction) {
	t.Helper()
	for _, tx := range rows {
		if err := tr.AddTransaction(context.Background(), tx); err != nil {
			t.Fatalf("AddTransaction() error = %v", err)
		}
	}
}

func TestTracker_AddTransactionPublishesChange(t *testing.T) {
	pub := &recordingPublisher{}
	tr := newTracker(t, pub)
	ctx := context.Background()

	if err := tr.AddTransaction(ctx, core.Transaction{
		Date: "2024-01-15", Category: "Food", Amount: 150, Type: core.TypeExpense,
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	if pub.messages[0].Op != amqp.OpAppend {
		t.Errorf("Op = %q, want %q", pub.messages[0].Op, amqp.OpAppend)
	}
	if pub.messages[0].Index != 0 {
		t.Errorf("Index = %d, want 0", pub.messages[0].Index)
	}
}

func TestTracker_AddTransactionSurvivesPublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	tr := newTracker(t, pub)
	ctx := context.Background()

	if err := tr.AddTransaction(ctx, core.Transaction{
		Date: "2024-01-15", Category: "Food", Amount: 150, Type: core.TypeExpense,
	}); err != nil {
		t.Fatalf("AddTransaction() should not fail when publish fails, got %v", err)
	}

	res := tr.ListTransactions(ctx, report.Filter{})
	if len(res.Rows) != 1 {
		t.Errorf("got %d rows, want 1", len(res.Rows))
	}
}

func TestTracker_NilPublisherIsValid(t *testing.T) {
	tr := newTracker(t, nil)
	ctx := context.Background()

	if err := tr.AddTransaction(ctx, core.Transaction{
		Date: "2024-01-15", Category: "Food", Amount: 150, Type: core.TypeExpense,
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if err := tr.DeleteTransaction(ctx, 0); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
}

func TestTracker_AddInvestmentForcesType(t *testing.T) {
	tr := newTracker(t, nil)
	ctx := context.Background()

	if err := tr.AddInvestment(ctx, core.Transaction{
		Date: "2024-03-01", Category: "SIP", Amount: 200, Type: core.TypeExpense,
	}); err != nil {
		t.Fatalf("AddInvestment() error = %v", err)
	}

	res := tr.ListTransactions(ctx, report.Filter{})
	if len(res.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(res.Rows))
	}
	if res.Rows[0].Type != core.TypeInvestment {
		t.Errorf("Type = %q, want %q", res.Rows[0].Type, core.TypeInvestment)
	}
}

func TestTracker_ListTransactions(t *testing.T) {
	tr := newTracker(t, nil)
	ctx := context.Background()
	seedTracker(t, tr, []core.Transaction{
		{Date: "2024-01-01", Category: "Salary", Amount: 1000, Type: core.TypeIncome},
		{Date: "2024-01-10", Category: "Food", Amount: 150, Type: core.TypeExpense},
		{Date: "2024-02-01", Category: "Rent", Amount: 500, Type: core.TypeExpense},
	})

	t.Run("unfiltered", func(t *testing.T) {
		res := tr.ListTransactions(ctx, report.Filter{})
		if len(res.Rows) != 3 {
			t.Fatalf("got %d rows, want 3", len(res.Rows))
		}
		if res.Summary.Balance != 350 {
			t.Errorf("Balance = %v, want 350", res.Summary.Balance)
		}
		if len(res.Months) != 2 {
			t.Errorf("Months = %v, want 2 entries", res.Months)
		}
		if len(res.Categories) != 3 {
			t.Errorf("Categories = %v, want 3 entries", res.Categories)
		}
	})

	t.Run("month filter narrows summary", func(t *testing.T) {
		res := tr.ListTransactions(ctx, report.Filter{Month: "2024-02"})
		if len(res.Rows) != 1 {
			t.Fatalf("got %d rows, want 1", len(res.Rows))
		}
		if res.Summary.Expense != 500 {
			t.Errorf("Expense = %v, want 500", res.Summary.Expense)
		}
		if res.Summary.Income != 0 {
			t.Errorf("Income = %v, want 0", res.Summary.Income)
		}
	})
}

func TestTracker_EditAndDelete(t *testing.T) {
	pub := &recordingPublisher{}
	tr := newTracker(t, pub)
	ctx := context.Background()
	seedTracker(t, tr, []core.Transaction{
		{Date: "2024-01-01", Category: "Food", Amount: 100, Type: core.TypeExpense},
		{Date: "2024-01-02", Category: "Rent", Amount: 500, Type: core.TypeExpense},
	})

	if err := tr.EditTransaction(ctx, 0, core.Transaction{
		Date: "2024-01-01", Category: "Groceries", Amount: 120, Type: core.TypeExpense,
	}); err != nil {
		t.Fatalf("EditTransaction() error = %v", err)
	}
	if err := tr.DeleteTransaction(ctx, 1); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	res := tr.ListTransactions(ctx, report.Filter{})
	if len(res.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(res.Rows))
	}
	if res.Rows[0].Category != "Groceries" {
		t.Errorf("Category = %q, want %q", res.Rows[0].Category, "Groceries")
	}

	ops := []string{}
	for _, m := range pub.messages {
		ops = append(ops, m.Op)
	}
	want := []string{amqp.OpAppend, amqp.OpAppend, amqp.OpUpdate, amqp.OpDelete}
	if len(ops) != len(want) {
		t.Fatalf("published ops %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, ops[i], want[i])
		}
	}
}

func TestTracker_EditDeleteOutOfRange(t *testing.T) {
	tr := newTracker(t, nil)
	ctx := context.Background()

	if err := tr.DeleteTransaction(ctx, 0); !errors.Is(err, store.ErrRowNotFound) {
		t.Errorf("DeleteTransaction() error = %v, want ErrRowNotFound", err)
	}
	if err := tr.EditTransaction(ctx, 5, core.Transaction{}); !errors.Is(err, store.ErrRowNotFound) {
		t.Errorf("EditTransaction() error = %v, want ErrRowNotFound", err)
	}
}

func TestTracker_InvestmentReport(t *testing.T) {
	tr := newTracker(t, nil)
	ctx := context.Background()
	seedTracker(t, tr, []core.Transaction{
		{Date: "2024-03-01", Category: "SIP", Amount: 150, Type: core.TypeInvestment},
		{Date: "2024-03-15", Category: "Index Fund", Amount: 50, Type: core.TypeInvestment},
		{Date: "2024-01-10", Category: "Food", Amount: 150, Type: core.TypeExpense},
	})

	rep := tr.InvestmentReport(ctx)
	if rep.Total != 200 {
		t.Errorf("Total = %v, want 200", rep.Total)
	}
	if len(rep.Series) != 1 || rep.Series[0].Month != "2024-03" {
		t.Errorf("Series = %v, want single 2024-03 bucket", rep.Series)
	}

	inv := tr.Investments(ctx)
	if len(inv) != 2 {
		t.Fatalf("got %d investment rows, want 2", len(inv))
	}
	if inv[0].Index != 0 || inv[1].Index != 1 {
		t.Errorf("indices = %d,%d, want 0,1", inv[0].Index, inv[1].Index)
	}
}

func TestTracker_ChartData(t *testing.T) {
	tr := newTracker(t, nil)
	ctx := context.Background()
	seedTracker(t, tr, []core.Transaction{
		{Date: "2024-01-01", Category: "Salary", Amount: 1000, Type: core.TypeIncome},
		{Date: "2024-01-10", Category: "Food", Amount: 150, Type: core.TypeExpense},
		{Date: "2024-01-12", Category: "Rent", Amount: 500, Type: core.TypeExpense},
	})

	t.Run("expense categories", func(t *testing.T) {
		data, err := tr.ChartData(ctx, ChartExpenseCategories, report.Filter{})
		if err != nil {
			t.Fatalf("ChartData() error = %v", err)
		}
		if len(data.Labels) != 2 || data.Labels[0] != "Rent" {
			t.Errorf("Labels = %v, want [Rent Food]", data.Labels)
		}
		if len(data.Values) != 2 || data.Values[0] != 500 {
			t.Errorf("Values = %v, want [500 150]", data.Values)
		}
	})

	t.Run("income vs expense", func(t *testing.T) {
		data, err := tr.ChartData(ctx, ChartIncomeVsExpense, report.Filter{})
		if err != nil {
			t.Fatalf("ChartData() error = %v", err)
		}
		if data.Values[0] != 1000 || data.Values[1] != 650 {
			t.Errorf("Values = %v, want [1000 650]", data.Values)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		if _, err := tr.ChartData(ctx, "pie-of-doom", report.Filter{}); !errors.Is(err, ErrUnknownChart) {
			t.Errorf("error = %v, want ErrUnknownChart", err)
		}
	})
}
