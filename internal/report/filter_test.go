package report

import (
	"reflect"
	"testing"

	"hisab/internal/core"
)

func TestApplyCategoryAllReturnsEverything(t *testing.T) {
	rows := fixtureRows()
	got := Apply(rows, Filter{Category: CategoryAll})
	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("Category=All should be a no-op filter, got %+v", got)
	}
}

func TestApplyMonthPrefix(t *testing.T) {
	rows := fixtureRows()

	got := Apply(rows, Filter{Month: "2024-01"})
	if len(got) != 3 {
		t.Fatalf("month 2024-01: expected 3 rows, got %d", len(got))
	}

	// A bare year works as a prefix too.
	got = Apply(rows, Filter{Month: "2024"})
	if len(got) != 4 {
		t.Fatalf("month 2024: expected 4 rows, got %d", len(got))
	}

	got = Apply(rows, Filter{Month: "2023"})
	if len(got) != 0 {
		t.Fatalf("month 2023: expected 0 rows, got %d", len(got))
	}
}

func TestApplyCategoryExact(t *testing.T) {
	got := Apply(fixtureRows(), Filter{Category: "Food"})
	if len(got) != 2 {
		t.Fatalf("expected 2 Food rows, got %d", len(got))
	}
	for _, tx := range got {
		if tx.Category != "Food" {
			t.Fatalf("unexpected row %+v", tx)
		}
	}
}

func TestApplySearchMatchesAnyField(t *testing.T) {
	rows := fixtureRows()

	// Matches the category, case-insensitively.
	if got := Apply(rows, Filter{Search: "rent"}); len(got) != 1 {
		t.Fatalf("search rent: expected 1 row, got %d", len(got))
	}
	// Matches the type field.
	if got := Apply(rows, Filter{Search: "INCOME"}); len(got) != 1 {
		t.Fatalf("search INCOME: expected 1 row, got %d", len(got))
	}
	// Matches the amount's string form.
	if got := Apply(rows, Filter{Search: "500"}); len(got) != 1 {
		t.Fatalf("search 500: expected 1 row, got %d", len(got))
	}
	if got := Apply(rows, Filter{Search: "nothing-here"}); len(got) != 0 {
		t.Fatalf("search miss: expected 0 rows, got %d", len(got))
	}
}

func TestApplyCombinedFilters(t *testing.T) {
	got := Apply(fixtureRows(), Filter{Month: "2024-01", Category: "Food", Search: "100"})
	if len(got) != 1 || got[0].Amount != 100 {
		t.Fatalf("combined filter = %+v", got)
	}
}

func TestMonths(t *testing.T) {
	got := Months(fixtureRows())
	want := []string{"2024-01", "2024-02"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Months = %v, want %v", got, want)
	}
}

func TestMonthsTruncatesFullDates(t *testing.T) {
	rows := []core.Transaction{
		{Date: "2024-03-15"},
		{Date: "2024-03-20"},
	}
	got := Months(rows)
	if !reflect.DeepEqual(got, []string{"2024-03"}) {
		t.Fatalf("Months = %v", got)
	}
}

func TestCategories(t *testing.T) {
	got := Categories(fixtureRows())
	want := []string{"Food", "Job", "Rent"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Categories = %v, want %v", got, want)
	}
}

func TestRecentOrdersByDateDescending(t *testing.T) {
	rows := []core.Transaction{
		{Date: "2024-01-01", Category: "a"},
		{Date: "2024-03-01", Category: "b"},
		{Date: "2024-02-01", Category: "c"},
	}
	got := Recent(rows, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Category != "b" || got[1].Category != "c" {
		t.Fatalf("Recent = %+v", got)
	}
	// The input must not be reordered.
	if rows[0].Category != "a" {
		t.Fatal("Recent mutated its input")
	}
}
