// Package memory keeps exported tables in process, for development without
// Google credentials and for tests.
package memory

import (
	"context"
	"sync"

	"wedplan/internal/core"
	"wedplan/internal/sheets"
)

type Exporter struct {
	mu     sync.Mutex
	tables map[string][][]any
	writes int
}

var _ sheets.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{tables: map[string][][]any{}}
}

func (e *Exporter) ExportGuests(_ context.Context, w core.Wedding, guests []core.Guest) error {
	e.put(sheets.TabTitle("Guests", w), sheets.GuestRows(guests))
	return nil
}

func (e *Exporter) ExportExpenses(_ context.Context, w core.Wedding, expenses []core.Expense, categoryTitles map[string]string) error {
	e.put(sheets.TabTitle("Expenses", w), sheets.ExpenseRows(expenses, categoryTitles))
	return nil
}

func (e *Exporter) put(tab string, rows [][]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tables[tab] = rows
	e.writes++
}

// Table returns a copy of the rows last written to tab, header included.
func (e *Exporter) Table(tab string) ([][]any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, ok := e.tables[tab]
	if !ok {
		return nil, false
	}
	return append([][]any(nil), rows...), true
}

// Writes counts exports since creation.
func (e *Exporter) Writes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writes
}
