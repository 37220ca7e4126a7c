package core

import (
	"testing"
	"time"
)

func TestSummarizeGuests(t *testing.T) {
	cases := []struct {
		name   string
		guests []Guest
		want   GuestSummary
	}{
		{"empty", nil, GuestSummary{}},
		{
			name: "mixed",
			guests: []Guest{
				{InviteStatus: InviteConfirmed, MembersCount: 3},
				{InviteStatus: InviteConfirmed, MembersCount: 1},
				{InviteStatus: InvitePending, MembersCount: 2},
				{InviteStatus: InviteDeclined, MembersCount: 4},
			},
			want: GuestSummary{Total: 4, Confirmed: 2, Pending: 1, Declined: 1, TotalAttendees: 4},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SummarizeGuests(tc.guests)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			if got.Confirmed+got.Pending+got.Declined != got.Total {
				t.Fatalf("status counts do not partition total: %+v", got)
			}
			if got.TotalAttendees < got.Confirmed {
				t.Fatalf("attendees below confirmed: %+v", got)
			}
		})
	}
}

func TestFilterGuests(t *testing.T) {
	guests := []Guest{
		{Name: "Anna Rossi", Side: SideBride, Group: "Family", InviteStatus: InviteConfirmed},
		{Name: "Luca Bianchi", Side: SideGroom, Group: "Work", InviteStatus: InvitePending},
		{Name: "Sara Verdi", Side: SideGroom, Group: "Family", InviteStatus: InviteConfirmed, Email: "sara@example.com"},
	}
	cases := []struct {
		name   string
		filter GuestFilter
		want   int
	}{
		{"no filter", GuestFilter{}, 3},
		{"confirmed", GuestFilter{Status: InviteConfirmed}, 2},
		{"groom side", GuestFilter{Side: SideGroom}, 2},
		{"search group", GuestFilter{Search: "family"}, 2},
		{"search email", GuestFilter{Search: "SARA@"}, 1},
		{"combined", GuestFilter{Status: InviteConfirmed, Side: SideGroom}, 1},
		{"no match", GuestFilter{Search: "zzz"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FilterGuests(guests, tc.filter); len(got) != tc.want {
				t.Fatalf("got %d guests, want %d", len(got), tc.want)
			}
		})
	}
}

func TestSummarizeBudget(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	categories := []BudgetCategory{
		{ID: "venue", Name: "Venue", Budgeted: Money{Cents: 100000}},
		{ID: "flowers", Name: "Flowers", Budgeted: Money{Cents: 20000}},
	}
	expenses := []Expense{
		{BudgetCategoryID: "venue", Amount: Money{Cents: 30000}, Date: NewDate(2026, 3, 1)},
		{BudgetCategoryID: "venue", Amount: Money{Cents: 20000}, Date: NewDate(2025, 10, 31)},
		{BudgetCategoryID: "venue", Amount: Money{Cents: 999}, Date: NewDate(2025, 9, 30)}, // outside window
		{BudgetCategoryID: "other-wedding", Amount: Money{Cents: 5000}, Date: NewDate(2026, 3, 2)},
	}

	s := SummarizeBudget(Money{Cents: 200000}, categories, expenses, now)

	if len(s.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(s.Categories))
	}
	if s.Categories[0].Spent.Cents != 50999 {
		t.Errorf("venue spent = %d", s.Categories[0].Spent.Cents)
	}
	if s.Categories[1].Spent.Cents != 0 {
		t.Errorf("flowers spent = %d, want 0", s.Categories[1].Spent.Cents)
	}
	if s.Categories[0].Remaining.Cents != 100000-50999 {
		t.Errorf("venue remaining = %d", s.Categories[0].Remaining.Cents)
	}
	if s.TotalSpent.Cents != 50999 {
		t.Errorf("total spent = %d", s.TotalSpent.Cents)
	}
	if s.TotalSpent.Add(s.Remaining) != s.TotalBudget {
		t.Errorf("spent + remaining != budget: %+v", s)
	}
	if s.AvgPerCategory.Cents != 25500 {
		t.Errorf("avg per category = %d, want 25500", s.AvgPerCategory.Cents)
	}

	wantMonths := []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}
	if len(s.MonthlySpending) != MonthsOfSpending {
		t.Fatalf("expected %d months, got %d", MonthsOfSpending, len(s.MonthlySpending))
	}
	for i, m := range s.MonthlySpending {
		if m.Month != wantMonths[i] {
			t.Errorf("month %d = %s, want %s", i, m.Month, wantMonths[i])
		}
	}
	if s.MonthlySpending[0].Amount.Cents != 20000 || s.MonthlySpending[0].Year != 2025 {
		t.Errorf("october = %+v", s.MonthlySpending[0])
	}
	if s.MonthlySpending[5].Amount.Cents != 30000 {
		t.Errorf("march = %+v", s.MonthlySpending[5])
	}
	if s.MonthlySpending[2].Amount.Cents != 0 {
		t.Errorf("december should be zero, got %+v", s.MonthlySpending[2])
	}
}

func TestSummarizeBudgetScenario(t *testing.T) {
	categories := []BudgetCategory{{ID: "1", Name: "Venue", Budgeted: Money{Cents: 100000}}}
	expenses := []Expense{
		{BudgetCategoryID: "1", Amount: Money{Cents: 30000}},
		{BudgetCategoryID: "1", Amount: Money{Cents: 20000}},
	}
	s := SummarizeBudget(Money{Cents: 100000}, categories, expenses, time.Now())
	if s.Categories[0].Spent.Cents != 50000 || s.TotalSpent.Cents != 50000 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Categories[0].PercentUsed != 50 {
		t.Fatalf("percent used = %v", s.Categories[0].PercentUsed)
	}
}

func TestSummarizeBudgetEmpty(t *testing.T) {
	s := SummarizeBudget(Money{Cents: 500}, nil, nil, time.Now())
	if s.AvgPerCategory.Cents != 0 || s.TotalSpent.Cents != 0 || s.Remaining.Cents != 500 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if len(s.MonthlySpending) != MonthsOfSpending {
		t.Fatalf("expected %d months, got %d", MonthsOfSpending, len(s.MonthlySpending))
	}
	if s.Categories == nil {
		t.Fatal("categories should be an empty slice")
	}
}

func TestTrailingMonthsEndOfMonth(t *testing.T) {
	// March 31st must not skip February.
	got := trailingMonths(time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC), 3)
	want := []time.Month{time.January, time.February, time.March}
	for i, m := range got {
		if m.Month() != want[i] {
			t.Fatalf("month %d = %s, want %s", i, m.Month(), want[i])
		}
	}
}

func TestGroupTasks(t *testing.T) {
	tasks := []Task{
		{ID: "a", Status: TaskTodo},
		{ID: "b", Status: TaskTodo},
		{ID: "c", Status: TaskCompleted},
	}
	b := GroupTasks(tasks)
	want := TaskStats{Total: 3, Completed: 1, InProgress: 0, Todo: 2, CompletionPercentage: 33.3}
	if b.Stats != want {
		t.Fatalf("got %+v, want %+v", b.Stats, want)
	}
	if b.InProgress == nil || len(b.InProgress) != 0 {
		t.Fatal("in_progress bucket must be present and empty")
	}
	if len(b.Todo)+len(b.InProgress)+len(b.Completed) != b.Stats.Total {
		t.Fatal("buckets do not partition tasks")
	}
}

func TestGroupTasksEmpty(t *testing.T) {
	b := GroupTasks(nil)
	if b.Stats.CompletionPercentage != 0 || b.Stats.Total != 0 {
		t.Fatalf("unexpected stats %+v", b.Stats)
	}
	if b.Todo == nil || b.InProgress == nil || b.Completed == nil {
		t.Fatal("buckets must never be nil")
	}
}

func TestGroupTasksOrdersByDueDate(t *testing.T) {
	tasks := []Task{
		{ID: "undated", Status: TaskTodo},
		{ID: "late", Status: TaskTodo, DueDate: NewDate(2026, 5, 1)},
		{ID: "early", Status: TaskTodo, DueDate: NewDate(2026, 1, 1)},
		{ID: "bogus", Status: "archived"},
	}
	b := GroupTasks(tasks)
	got := make([]string, 0, len(b.Todo))
	for _, task := range b.Todo {
		got = append(got, task.ID)
	}
	want := []string{"early", "late", "undated", "bogus"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCompletionPercentage(t *testing.T) {
	cases := []struct {
		completed, total int
		want             float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{3, 3, 100},
		{1, 8, 12.5},
	}
	for _, tc := range cases {
		if got := CompletionPercentage(tc.completed, tc.total); got != tc.want {
			t.Errorf("%d/%d = %v, want %v", tc.completed, tc.total, got, tc.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 6, 1, 18, 30, 0, 0, time.UTC)
	cases := []struct {
		name string
		date Date
		want int
	}{
		{"future", NewDate(2026, 6, 20), 19},
		{"today", NewDate(2026, 6, 1), 0},
		{"past", NewDate(2025, 6, 1), 0},
		{"unset", Date{}, 0},
	}
	for _, tc := range cases {
		if got := DaysUntil(tc.date, now); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestRecentActivity(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	guests := []Guest{{Name: "old guest", UpdatedAt: base}}
	expenses := []Expense{{Title: "newest", UpdatedAt: base.Add(3 * time.Hour)}}
	tasks := []Task{
		{Title: "middle", UpdatedAt: base.Add(2 * time.Hour)},
		{Title: "older", UpdatedAt: base.Add(time.Hour)},
	}
	got := RecentActivity(guests, expenses, tasks, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Title != "newest" || got[0].Kind != "expense" || got[2].Title != "older" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	w := Wedding{BrideName: "Anna", GroomName: "Marco", WeddingDate: NewDate(2026, 6, 11), Budget: Money{Cents: 1000}}
	d := BuildDashboard(w,
		[]Guest{{InviteStatus: InviteConfirmed, MembersCount: 2}},
		nil, nil,
		[]Task{{Status: TaskCompleted}},
		now)
	if d.DaysUntilWedding != 10 {
		t.Errorf("days until = %d", d.DaysUntilWedding)
	}
	if d.Guests.Confirmed != 1 || d.Tasks.CompletionPercentage != 100 {
		t.Errorf("unexpected dashboard %+v", d)
	}
	if d.Budget.Remaining.Cents != 1000 {
		t.Errorf("remaining = %d", d.Budget.Remaining.Cents)
	}
}
