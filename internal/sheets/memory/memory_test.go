package memory

import (
	"context"
	"testing"

	"wedplan/internal/core"
)

func TestExporter_ReplacesTables(t *testing.T) {
	ctx := context.Background()
	e := New()
	w := core.Wedding{ID: "0123456789abcdef"}

	if err := e.ExportGuests(ctx, w, []core.Guest{{Name: "Luca"}, {Name: "Anna"}}); err != nil {
		t.Fatal(err)
	}
	if err := e.ExportGuests(ctx, w, []core.Guest{{Name: "Marta"}}); err != nil {
		t.Fatal(err)
	}

	rows, ok := e.Table("Guests 01234567")
	if !ok {
		t.Fatal("guest table not written")
	}
	if len(rows) != 2 || rows[1][0] != "Marta" {
		t.Fatalf("expected the second export to replace the first, got %v", rows)
	}
	if e.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", e.Writes())
	}
}

func TestExporter_Expenses(t *testing.T) {
	e := New()
	w := core.Wedding{ID: "abcdef0123456789"}
	expenses := []core.Expense{
		{BudgetCategoryID: "c1", Title: "Flowers", Amount: core.Money{Cents: 1050}, Date: core.NewDate(2026, 5, 2), Status: core.ExpensePending},
	}

	if err := e.ExportExpenses(context.Background(), w, expenses, map[string]string{"c1": "Decor"}); err != nil {
		t.Fatal(err)
	}
	rows, ok := e.Table("Expenses abcdef01")
	if !ok || len(rows) != 2 {
		t.Fatalf("unexpected table %v", rows)
	}
	if rows[1][1] != "Decor" || rows[1][3] != "10.50" {
		t.Errorf("unexpected row %v", rows[1])
	}
	if _, ok := e.Table("Guests abcdef01"); ok {
		t.Error("guest table should not exist")
	}
}
