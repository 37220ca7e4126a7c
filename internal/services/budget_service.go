package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"wedplan/internal/amqp"
	"wedplan/internal/core"
	"wedplan/internal/storage"
)

// BudgetOverview is the budget page: aggregates plus the expense ledger,
// newest first, each row labelled with its category title.
type BudgetOverview struct {
	Summary        core.BudgetSummary    `json:"summary"`
	Categories     []core.BudgetCategory `json:"categories"`
	Expenses       []core.Expense        `json:"expenses"`
	CategoryTitles map[string]string     `json:"category_titles"`
}

type BudgetService struct {
	base
	store storage.BudgetStore
}

func NewBudgetService(store storage.BudgetStore, events Publisher) *BudgetService {
	return &BudgetService{base: newBase(events), store: store}
}

// Overview loads categories and expenses concurrently and aggregates them
// against the wedding budget.
func (s *BudgetService) Overview(ctx context.Context, w core.Wedding) (BudgetOverview, error) {
	ctx, span := startSpan(ctx, "BudgetService.Overview", w.ID)

	var (
		categories []core.BudgetCategory
		expenses   []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.store.ListCategories(gctx, w.ID)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpenses(gctx, w.ID)
		return err
	})
	if err := endSpan(span, g.Wait()); err != nil {
		return BudgetOverview{}, fmt.Errorf("budget overview: %w", err)
	}

	ledger := make([]core.Expense, len(expenses))
	copy(ledger, expenses)
	sortExpensesNewestFirst(ledger)

	return BudgetOverview{
		Summary:        core.SummarizeBudget(w.Budget, categories, expenses, s.now()),
		Categories:     categories,
		Expenses:       ledger,
		CategoryTitles: core.CategoryTitles(categories),
	}, nil
}

// Categories lists the wedding's categories in store order.
func (s *BudgetService) Categories(ctx context.Context, weddingID string) ([]core.BudgetCategory, error) {
	return s.store.ListCategories(ctx, weddingID)
}

// Category returns the category when it belongs to weddingID.
func (s *BudgetService) Category(ctx context.Context, weddingID, id string) (core.BudgetCategory, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.BudgetCategory{}, err
	}
	if c.WeddingID != weddingID {
		return core.BudgetCategory{}, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *BudgetService) CreateCategory(ctx context.Context, weddingID string, in core.BudgetCategory) (core.BudgetCategory, error) {
	c := normalizeCategory(in)
	if err := c.Validate(); err != nil {
		return core.BudgetCategory{}, err
	}
	now := s.now()
	c.ID = core.NewID()
	c.WeddingID = weddingID
	c.CreatedAt, c.UpdatedAt = now, now
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.BudgetCategory{}, fmt.Errorf("create category: %w", err)
	}
	s.publish(ctx, amqp.CategoryCreated, weddingID, c.ID)
	return c, nil
}

func (s *BudgetService) UpdateCategory(ctx context.Context, weddingID, id string, in core.BudgetCategory) (core.BudgetCategory, error) {
	existing, err := s.Category(ctx, weddingID, id)
	if err != nil {
		return core.BudgetCategory{}, err
	}
	c := normalizeCategory(in)
	if err := c.Validate(); err != nil {
		return core.BudgetCategory{}, err
	}
	c.ID = existing.ID
	c.WeddingID = existing.WeddingID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now()
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.BudgetCategory{}, fmt.Errorf("update category: %w", err)
	}
	s.publish(ctx, amqp.CategoryUpdated, weddingID, c.ID)
	return c, nil
}

// DeleteCategory removes the category together with its expenses.
func (s *BudgetService) DeleteCategory(ctx context.Context, weddingID, id string) error {
	ctx, span := startSpan(ctx, "BudgetService.DeleteCategory", weddingID)
	if _, err := s.Category(ctx, weddingID, id); err != nil {
		return endSpan(span, err)
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return endSpan(span, fmt.Errorf("delete category: %w", err))
	}
	s.publish(ctx, amqp.CategoryDeleted, weddingID, id)
	return endSpan(span, nil)
}

// Expense returns the expense when its category belongs to weddingID.
func (s *BudgetService) Expense(ctx context.Context, weddingID, id string) (core.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if _, err := s.Category(ctx, weddingID, e.BudgetCategoryID); err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	return e, nil
}

func (s *BudgetService) CreateExpense(ctx context.Context, weddingID string, in core.Expense) (core.Expense, error) {
	ctx, span := startSpan(ctx, "BudgetService.CreateExpense", weddingID)
	e, err := s.createExpense(ctx, weddingID, in)
	return e, endSpan(span, err)
}

func (s *BudgetService) createExpense(ctx context.Context, weddingID string, in core.Expense) (core.Expense, error) {
	e := normalizeExpense(in)
	if e.Status == "" {
		e.Status = core.ExpensePending
	}
	if err := s.validateExpense(ctx, weddingID, e); err != nil {
		return core.Expense{}, err
	}
	now := s.now()
	e.ID = core.NewID()
	e.CreatedAt, e.UpdatedAt = now, now
	if err := s.store.CreateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.publish(ctx, amqp.ExpenseCreated, weddingID, e.ID)
	return e, nil
}

func (s *BudgetService) UpdateExpense(ctx context.Context, weddingID, id string, in core.Expense) (core.Expense, error) {
	existing, err := s.Expense(ctx, weddingID, id)
	if err != nil {
		return core.Expense{}, err
	}
	e := normalizeExpense(in)
	if err := s.validateExpense(ctx, weddingID, e); err != nil {
		return core.Expense{}, err
	}
	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = s.now()
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.publish(ctx, amqp.ExpenseUpdated, weddingID, e.ID)
	return e, nil
}

func (s *BudgetService) DeleteExpense(ctx context.Context, weddingID, id string) error {
	if _, err := s.Expense(ctx, weddingID, id); err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, amqp.ExpenseDeleted, weddingID, id)
	return nil
}

// validateExpense checks the fields and that the target category is one of
// the wedding's.
func (s *BudgetService) validateExpense(ctx context.Context, weddingID string, e core.Expense) error {
	verrs := core.ValidationErrors{}
	merge(verrs, e.Validate())
	if e.BudgetCategoryID != "" {
		if _, err := s.Category(ctx, weddingID, e.BudgetCategoryID); err != nil {
			verrs.Add("budget_category_id", "must be one of your budget categories")
		}
	}
	return verrs.Err()
}

func normalizeCategory(c core.BudgetCategory) core.BudgetCategory {
	c.Name = strings.TrimSpace(c.Name)
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Color = strings.TrimSpace(c.Color)
	if c.Title == "" {
		c.Title = c.Name
	}
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	return c
}

func normalizeExpense(e core.Expense) core.Expense {
	e.BudgetCategoryID = strings.TrimSpace(e.BudgetCategoryID)
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	return e
}

func sortExpensesNewestFirst(expenses []core.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date.Time)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}
