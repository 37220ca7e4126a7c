package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"wedplan/internal/core"
	"wedplan/internal/services"
)

func TestRender(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	w := core.Wedding{ID: "w1", BrideName: "Anna", GroomName: "Marco", WeddingDate: core.NewDate(2026, 9, 12), Budget: core.Money{Cents: 2000000}}
	venue := core.BudgetCategory{ID: "c1", WeddingID: "w1", Name: "Venue", Budgeted: core.Money{Cents: 800000}, Color: "#3b82f6"}
	expenses := []core.Expense{{ID: "e1", BudgetCategoryID: "c1", Title: "Deposit", Amount: core.Money{Cents: 250050}, Date: core.NewDate(2026, 5, 1), Status: core.ExpensePaid, UpdatedAt: now}}
	tasks := []core.Task{
		{ID: "t1", Title: "Book band", Status: core.TaskTodo, Priority: core.PriorityHigh, DueDate: core.NewDate(2026, 7, 1)},
		{ID: "t2", Title: "Pick venue", Status: core.TaskCompleted, Priority: core.PriorityMedium},
	}
	guests := []core.Guest{{ID: "g1", Name: "Luca", InviteStatus: core.InviteConfirmed, MembersCount: 2, UpdatedAt: now}}

	dash := core.BuildDashboard(w, guests, []core.BudgetCategory{venue}, expenses, tasks, now)
	data := Data{
		Dashboard: dash,
		Budget: services.BudgetOverview{
			Summary:    dash.Budget,
			Categories: []core.BudgetCategory{venue},
			Expenses:   expenses,
		},
		Tasks: core.GroupTasks(tasks),
	}

	var buf bytes.Buffer
	if err := Render(&buf, Rose, data); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Anna & Marco", "103 days to go", "1 of 1", "Venue", "€2,500.50", "Book band", "Pick venue", "50.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, "░░░░"},
		{50, "██░░"},
		{100, "████"},
		{250, "████"},
		{-10, "░░░░"},
	}
	for _, tt := range tests {
		if got := bar(tt.percent, 4); got != tt.want {
			t.Errorf("bar(%v) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestMoney(t *testing.T) {
	if got := Money(core.Money{Cents: 123450}); got != "€1,234.50" {
		t.Errorf("Money() = %q", got)
	}
	if got := Money(core.Money{Cents: -100}); got != "-€1.00" {
		t.Errorf("Money() = %q", got)
	}
}
