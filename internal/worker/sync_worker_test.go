package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"wedplan/internal/amqp"
	"wedplan/internal/core"
	"wedplan/internal/services"
	sheetsmem "wedplan/internal/sheets/memory"
)

type stubLoader struct {
	data  services.WeddingData
	err   error
	calls int
}

func (l *stubLoader) LoadByID(_ context.Context, weddingID string) (services.WeddingData, error) {
	l.calls++
	if l.err != nil {
		return services.WeddingData{}, l.err
	}
	if weddingID != l.data.Wedding.ID {
		return services.WeddingData{}, fmt.Errorf("load wedding %s: %w", weddingID, core.ErrNotFound)
	}
	return l.data, nil
}

type failingExporter struct{ *sheetsmem.Exporter }

func (failingExporter) ExportGuests(context.Context, core.Wedding, []core.Guest) error {
	return errors.New("quota exceeded")
}

const weddingID = "11111111-2222-3333-4444-555555555555"

func fixture() *stubLoader {
	return &stubLoader{data: services.WeddingData{
		Wedding:    core.Wedding{ID: weddingID},
		Guests:     []core.Guest{{Name: "Luca"}},
		Categories: []core.BudgetCategory{{ID: "c1", Name: "venue", Title: "Venue"}},
		Expenses:   []core.Expense{{BudgetCategoryID: "c1", Title: "Deposit", Amount: core.Money{Cents: 1000}}},
	}}
}

func TestSyncWorker_Handle(t *testing.T) {
	tests := []struct {
		name         string
		event        amqp.EventType
		wantGuests   bool
		wantExpenses bool
	}{
		{"guest change", amqp.GuestUpdated, true, false},
		{"expense change", amqp.ExpenseCreated, false, true},
		{"category change", amqp.CategoryDeleted, false, true},
		{"wedding change", amqp.WeddingUpdated, true, true},
		{"task change", amqp.TaskUpdated, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := fixture()
			exporter := sheetsmem.New()
			w := NewSyncWorker(loader, exporter)

			if err := w.Handle(context.Background(), amqp.NewEvent(tt.event, weddingID, "x")); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			_, gotGuests := exporter.Table("Guests 11111111")
			expRows, gotExpenses := exporter.Table("Expenses 11111111")
			if gotGuests != tt.wantGuests || gotExpenses != tt.wantExpenses {
				t.Fatalf("guests=%v expenses=%v, want %v %v", gotGuests, gotExpenses, tt.wantGuests, tt.wantExpenses)
			}
			if gotExpenses && expRows[1][1] != "Venue" {
				t.Errorf("category title not resolved: %v", expRows[1])
			}
			if !tt.wantGuests && !tt.wantExpenses && loader.calls != 0 {
				t.Errorf("loader should not be called for %s", tt.event)
			}
		})
	}
}

func TestSyncWorker_MissingWeddingIsDropped(t *testing.T) {
	exporter := sheetsmem.New()
	w := NewSyncWorker(fixture(), exporter)

	if err := w.Handle(context.Background(), amqp.NewEvent(amqp.GuestCreated, "gone", "g1")); err != nil {
		t.Fatalf("expected nil for a deleted wedding, got %v", err)
	}
	if exporter.Writes() != 0 {
		t.Errorf("nothing should be exported")
	}
}

func TestSyncWorker_ErrorsAreReturned(t *testing.T) {
	loader := fixture()
	loader.err = errors.New("database is locked")
	w := NewSyncWorker(loader, sheetsmem.New())
	if err := w.Handle(context.Background(), amqp.NewEvent(amqp.GuestCreated, weddingID, "g1")); err == nil {
		t.Fatal("expected store error to be returned for requeue")
	}

	w = NewSyncWorker(fixture(), failingExporter{sheetsmem.New()})
	err := w.Handle(context.Background(), amqp.NewEvent(amqp.WeddingUpdated, weddingID, weddingID))
	if err == nil {
		t.Fatal("expected export error")
	}
}
