// Package sheets defines the spreadsheet export ports and the table layout
// shared by every adapter.
package sheets

import (
	"context"
	"sort"
	"strings"

	"wedplan/internal/core"
)

// Ports for outbound adapters. Each export replaces the whole table of one
// wedding.
type (
	GuestExporter interface {
		ExportGuests(ctx context.Context, w core.Wedding, guests []core.Guest) error
	}

	ExpenseExporter interface {
		ExportExpenses(ctx context.Context, w core.Wedding, expenses []core.Expense, categoryTitles map[string]string) error
	}

	Exporter interface {
		GuestExporter
		ExpenseExporter
	}
)

var (
	GuestHeader   = []any{"Name", "Email", "Phone", "Side", "Group", "Role", "Status", "Members", "Dietary"}
	ExpenseHeader = []any{"Date", "Category", "Title", "Amount", "Status"}
)

// TabTitle names a wedding's tab, e.g. "Guests 1a2b3c4d", so that several
// weddings can share one spreadsheet.
func TabTitle(base string, w core.Wedding) string {
	id := strings.ReplaceAll(w.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return base
	}
	return base + " " + id
}

// GuestRows renders the guest table, header first, guests sorted by name.
func GuestRows(guests []core.Guest) [][]any {
	sorted := append([]core.Guest(nil), guests...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	rows := make([][]any, 0, len(sorted)+1)
	rows = append(rows, GuestHeader)
	for _, g := range sorted {
		rows = append(rows, []any{
			g.Name,
			g.Email,
			g.Phone,
			core.Label(string(g.Side)),
			g.Group,
			g.Role,
			core.Label(string(g.InviteStatus)),
			g.MembersCount,
			g.DietaryRestrictions,
		})
	}
	return rows
}

// ExpenseRows renders the expense ledger, header first, oldest first.
// Amounts are decimal strings with two places.
func ExpenseRows(expenses []core.Expense, categoryTitles map[string]string) [][]any {
	sorted := append([]core.Expense(nil), expenses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	rows := make([][]any, 0, len(sorted)+1)
	rows = append(rows, ExpenseHeader)
	for _, e := range sorted {
		rows = append(rows, []any{
			e.Date.String(),
			categoryTitles[e.BudgetCategoryID],
			e.Title,
			e.Amount.String(),
			core.Label(string(e.Status)),
		})
	}
	return rows
}
