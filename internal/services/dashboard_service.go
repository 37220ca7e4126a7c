package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"wedplan/internal/core"
	"wedplan/internal/storage"
)

// WeddingData is every record of one wedding.
type WeddingData struct {
	Wedding    core.Wedding
	Guests     []core.Guest
	Categories []core.BudgetCategory
	Expenses   []core.Expense
	Tasks      []core.Task
}

// DashboardService assembles read models spanning all collections.
type DashboardService struct {
	base
	store storage.Store
}

func NewDashboardService(store storage.Store) *DashboardService {
	return &DashboardService{base: newBase(nil), store: store}
}

// Load reads the wedding's guests, categories, expenses and tasks
// concurrently.
func (s *DashboardService) Load(ctx context.Context, w core.Wedding) (WeddingData, error) {
	ctx, span := startSpan(ctx, "DashboardService.Load", w.ID)

	data := WeddingData{Wedding: w}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Guests, err = s.store.ListGuests(gctx, w.ID)
		return err
	})
	g.Go(func() (err error) {
		data.Categories, err = s.store.ListCategories(gctx, w.ID)
		return err
	})
	g.Go(func() (err error) {
		data.Expenses, err = s.store.ListExpenses(gctx, w.ID)
		return err
	})
	g.Go(func() (err error) {
		data.Tasks, err = s.store.ListTasks(gctx, w.ID)
		return err
	})
	if err := endSpan(span, g.Wait()); err != nil {
		return WeddingData{}, fmt.Errorf("load wedding %s: %w", w.ID, err)
	}
	return data, nil
}

// LoadByID resolves the wedding first; used by the sync worker.
func (s *DashboardService) LoadByID(ctx context.Context, weddingID string) (WeddingData, error) {
	w, err := s.store.GetWedding(ctx, weddingID)
	if err != nil {
		return WeddingData{}, fmt.Errorf("load wedding %s: %w", weddingID, err)
	}
	return s.Load(ctx, w)
}

// Dashboard builds the landing page view.
func (s *DashboardService) Dashboard(ctx context.Context, w core.Wedding) (core.Dashboard, error) {
	data, err := s.Load(ctx, w)
	if err != nil {
		return core.Dashboard{}, err
	}
	return core.BuildDashboard(data.Wedding, data.Guests, data.Categories, data.Expenses, data.Tasks, s.now()), nil
}
