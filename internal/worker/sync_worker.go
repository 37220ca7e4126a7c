package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"wedplan/internal/amqp"
	"wedplan/internal/core"
	"wedplan/internal/services"
	"wedplan/internal/sheets"
)

// Loader reads every record of one wedding.
type Loader interface {
	LoadByID(ctx context.Context, weddingID string) (services.WeddingData, error)
}

// SyncWorker mirrors a wedding's guests and expenses into the spreadsheet
// whenever a change event arrives.
type SyncWorker struct {
	loader   Loader
	exporter sheets.Exporter
}

func NewSyncWorker(loader Loader, exporter sheets.Exporter) *SyncWorker {
	return &SyncWorker{loader: loader, exporter: exporter}
}

// tables reports which tables an event invalidates.
func tables(t amqp.EventType) (guests, expenses bool) {
	switch t.Entity() {
	case "guest":
		return true, false
	case "category", "expense":
		return false, true
	case "wedding":
		return true, true
	}
	return false, false
}

// Handle processes one event. A returned error makes the consumer requeue the
// message.
func (w *SyncWorker) Handle(ctx context.Context, e amqp.Event) error {
	guests, expenses := tables(e.Type)
	if !guests && !expenses {
		slog.DebugContext(ctx, "Event does not affect exported sheets",
			"component", "worker",
			"event_type", string(e.Type),
			"wedding_id", e.WeddingID)
		return nil
	}

	slog.InfoContext(ctx, "Processing change event",
		"component", "worker",
		"event_type", string(e.Type),
		"wedding_id", e.WeddingID,
		"entity_id", e.EntityID)

	err := w.Export(ctx, e.WeddingID, guests, expenses)
	if errors.Is(err, core.ErrNotFound) {
		// The wedding is gone; retrying cannot succeed.
		slog.WarnContext(ctx, "Wedding not found, dropping event",
			"component", "worker",
			"wedding_id", e.WeddingID,
			"event_type", string(e.Type))
		return nil
	}
	return err
}

// Export rewrites the selected tables of one wedding.
func (w *SyncWorker) Export(ctx context.Context, weddingID string, guests, expenses bool) error {
	data, err := w.loader.LoadByID(ctx, weddingID)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if guests {
		g.Go(func() error {
			if err := w.exporter.ExportGuests(gctx, data.Wedding, data.Guests); err != nil {
				return fmt.Errorf("export guests: %w", err)
			}
			return nil
		})
	}
	if expenses {
		g.Go(func() error {
			titles := core.CategoryTitles(data.Categories)
			if err := w.exporter.ExportExpenses(gctx, data.Wedding, data.Expenses, titles); err != nil {
				return fmt.Errorf("export expenses: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "Sheet export failed",
			"component", "worker",
			"wedding_id", weddingID,
			"error", err)
		return err
	}

	slog.InfoContext(ctx, "Wedding exported",
		"component", "worker",
		"wedding_id", weddingID,
		"guests", len(data.Guests),
		"expenses", len(data.Expenses))
	return nil
}
