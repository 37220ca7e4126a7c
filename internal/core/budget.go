package core

import "time"

// MonthsOfSpending is the length of the trailing spending window.
const MonthsOfSpending = 6

// CategorySpend is a category with what has been spent against it.
type CategorySpend struct {
	BudgetCategory
	Spent       Money   `json:"spent"`
	Remaining   Money   `json:"remaining"`
	PercentUsed float64 `json:"percent_used"`
}

// MonthAmount is the spending of one calendar month.
type MonthAmount struct {
	Month  string `json:"month"`
	Year   int    `json:"year"`
	Amount Money  `json:"amount"`
}

// BudgetSummary is the budget page's aggregated view.
type BudgetSummary struct {
	Categories      []CategorySpend `json:"categories"`
	MonthlySpending []MonthAmount   `json:"monthly_spending"`
	TotalBudget     Money           `json:"total_budget"`
	TotalSpent      Money           `json:"total_spent"`
	Remaining       Money           `json:"remaining"`
	AvgPerCategory  Money           `json:"avg_per_category"`
}

// SummarizeBudget computes per-category spend, the trailing six months of
// spending ending with the month of now, and overall totals.
// Expenses whose category is not among categories are ignored.
func SummarizeBudget(budget Money, categories []BudgetCategory, expenses []Expense, now time.Time) BudgetSummary {
	spent := make(map[string]Money, len(categories))
	for _, c := range categories {
		spent[c.ID] = Money{}
	}

	months := trailingMonths(now, MonthsOfSpending)
	index := make(map[[2]int]int, len(months))
	for i, m := range months {
		index[[2]int{m.Year(), int(m.Month())}] = i
	}
	monthly := make([]MonthAmount, len(months))
	for i, m := range months {
		monthly[i] = MonthAmount{Month: m.Format("Jan"), Year: m.Year()}
	}

	for _, e := range expenses {
		total, ok := spent[e.BudgetCategoryID]
		if !ok {
			continue
		}
		spent[e.BudgetCategoryID] = total.Add(e.Amount)
		if e.Date.IsEmpty() {
			continue
		}
		if i, ok := index[[2]int{e.Date.Year(), int(e.Date.Month())}]; ok {
			monthly[i].Amount = monthly[i].Amount.Add(e.Amount)
		}
	}

	summary := BudgetSummary{
		Categories:      make([]CategorySpend, 0, len(categories)),
		MonthlySpending: monthly,
		TotalBudget:     budget,
	}
	for _, c := range categories {
		s := spent[c.ID]
		summary.Categories = append(summary.Categories, CategorySpend{
			BudgetCategory: c,
			Spent:          s,
			Remaining:      c.Budgeted.Sub(s),
			PercentUsed:    s.Percent(c.Budgeted),
		})
		summary.TotalSpent = summary.TotalSpent.Add(s)
	}
	summary.Remaining = summary.TotalBudget.Sub(summary.TotalSpent)
	summary.AvgPerCategory = summary.TotalSpent.DivRound(len(categories))
	return summary
}

// trailingMonths returns the first day of the n months ending with now's
// month, oldest first.
func trailingMonths(now time.Time, n int) []time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = first.AddDate(0, i-(n-1), 0)
	}
	return out
}

// CategoryTitles maps category id to its display title.
func CategoryTitles(categories []BudgetCategory) map[string]string {
	out := make(map[string]string, len(categories))
	for _, c := range categories {
		out[c.ID] = c.DisplayTitle()
	}
	return out
}
