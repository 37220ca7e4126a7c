package core

import (
	"sort"
	"time"
)

// RecentActivityLimit is how many activity entries the dashboard shows.
const RecentActivityLimit = 5

// DaysUntil counts calendar days from now's day to date, never below 0.
func DaysUntil(date Date, now time.Time) int {
	if date.IsEmpty() {
		return 0
	}
	today := DateOf(now)
	days := int(date.Sub(today.Time).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Activity is one recently touched record.
type Activity struct {
	Kind   string    `json:"kind"`
	Title  string    `json:"title"`
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// RecentActivity merges guests, expenses and tasks by last update, newest
// first, and keeps at most limit entries.
func RecentActivity(guests []Guest, expenses []Expense, tasks []Task, limit int) []Activity {
	out := make([]Activity, 0, len(guests)+len(expenses)+len(tasks))
	for _, g := range guests {
		out = append(out, Activity{Kind: "guest", Title: g.Name, Status: string(g.InviteStatus), At: g.UpdatedAt})
	}
	for _, e := range expenses {
		out = append(out, Activity{Kind: "expense", Title: e.Title, Status: string(e.Status), At: e.UpdatedAt})
	}
	for _, t := range tasks {
		out = append(out, Activity{Kind: "task", Title: t.Title, Status: string(t.Status), At: t.UpdatedAt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Dashboard is the landing page view of one wedding.
type Dashboard struct {
	Wedding          Wedding       `json:"wedding"`
	DaysUntilWedding int           `json:"days_until_wedding"`
	Guests           GuestSummary  `json:"guests"`
	Tasks            TaskStats     `json:"tasks"`
	Budget           BudgetSummary `json:"budget"`
	RecentActivity   []Activity    `json:"recent_activity"`
}

// BuildDashboard runs every aggregator over one wedding's records.
func BuildDashboard(w Wedding, guests []Guest, categories []BudgetCategory, expenses []Expense, tasks []Task, now time.Time) Dashboard {
	return Dashboard{
		Wedding:          w,
		DaysUntilWedding: DaysUntil(w.WeddingDate, now),
		Guests:           SummarizeGuests(guests),
		Tasks:            GroupTasks(tasks).Stats,
		Budget:           SummarizeBudget(w.Budget, categories, expenses, now),
		RecentActivity:   RecentActivity(guests, expenses, tasks, RecentActivityLimit),
	}
}
