package kvdb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"wedplan/internal/core"
)

// Guests

func (s *Store) CreateGuest(ctx context.Context, g core.Guest) error {
	_, span := tracer.Start(ctx, "CreateGuest")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return putDoc(tx, bucketGuests, g.ID, g)
	})
	if err != nil {
		return fail(span, fmt.Errorf("create guest: %w", err))
	}
	slog.InfoContext(ctx, "Guest saved to kvdb", "guest_id", g.ID, "wedding_id", g.WeddingID)
	return nil
}

func (s *Store) GetGuest(ctx context.Context, id string) (core.Guest, error) {
	_, span := tracer.Start(ctx, "GetGuest")
	defer span.End()

	var g core.Guest
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		g, err = getDoc[core.Guest](tx, bucketGuests, id)
		return err
	})
	if err != nil {
		return core.Guest{}, fail(span, fmt.Errorf("get guest %s: %w", id, err))
	}
	return g, nil
}

func (s *Store) UpdateGuest(ctx context.Context, g core.Guest) error {
	_, span := tracer.Start(ctx, "UpdateGuest")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return replaceDoc(tx, bucketGuests, g.ID, g)
	})
	if err != nil {
		return fail(span, fmt.Errorf("update guest %s: %w", g.ID, err))
	}
	return nil
}

func (s *Store) DeleteGuest(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "DeleteGuest")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return deleteDoc(tx, bucketGuests, id)
	})
	if err != nil {
		return fail(span, fmt.Errorf("delete guest %s: %w", id, err))
	}
	slog.InfoContext(ctx, "Guest deleted from kvdb", "guest_id", id)
	return nil
}

func (s *Store) ListGuests(ctx context.Context, weddingID string) ([]core.Guest, error) {
	_, span := tracer.Start(ctx, "ListGuests")
	defer span.End()

	var guests []core.Guest
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		guests, err = listDocs(tx, bucketGuests, func(g core.Guest) bool { return g.WeddingID == weddingID })
		return err
	})
	if err != nil {
		return nil, fail(span, fmt.Errorf("list guests: %w", err))
	}
	sortByCreation(guests, func(g core.Guest) (time.Time, string) { return g.CreatedAt, g.ID })
	return guests, nil
}

// Budget categories

func (s *Store) CreateCategory(ctx context.Context, c core.BudgetCategory) error {
	_, span := tracer.Start(ctx, "CreateCategory")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return putDoc(tx, bucketCategories, c.ID, c)
	})
	if err != nil {
		return fail(span, fmt.Errorf("create category: %w", err))
	}
	slog.InfoContext(ctx, "Budget category saved to kvdb", "category_id", c.ID, "wedding_id", c.WeddingID)
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (core.BudgetCategory, error) {
	_, span := tracer.Start(ctx, "GetCategory")
	defer span.End()

	var c core.BudgetCategory
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		c, err = getDoc[core.BudgetCategory](tx, bucketCategories, id)
		return err
	})
	if err != nil {
		return core.BudgetCategory{}, fail(span, fmt.Errorf("get category %s: %w", id, err))
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.BudgetCategory) error {
	_, span := tracer.Start(ctx, "UpdateCategory")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return replaceDoc(tx, bucketCategories, c.ID, c)
	})
	if err != nil {
		return fail(span, fmt.Errorf("update category %s: %w", c.ID, err))
	}
	return nil
}

// DeleteCategory removes the category and its expenses in one transaction.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "DeleteCategory")
	defer span.End()

	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := deleteDoc(tx, bucketCategories, id); err != nil {
			return err
		}
		orphans, err := listDocs(tx, bucketExpenses, func(e core.Expense) bool { return e.BudgetCategoryID == id })
		if err != nil {
			return err
		}
		b := tx.Bucket([]byte(bucketExpenses))
		for _, e := range orphans {
			if err := b.Delete([]byte(e.ID)); err != nil {
				return err
			}
		}
		removed = len(orphans)
		return nil
	})
	if err != nil {
		return fail(span, fmt.Errorf("delete category %s: %w", id, err))
	}
	span.AddEvent("cascade")
	slog.InfoContext(ctx, "Budget category deleted from kvdb", "category_id", id, "expenses_removed", removed)
	return nil
}

func (s *Store) ListCategories(ctx context.Context, weddingID string) ([]core.BudgetCategory, error) {
	_, span := tracer.Start(ctx, "ListCategories")
	defer span.End()

	var categories []core.BudgetCategory
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		categories, err = listDocs(tx, bucketCategories, func(c core.BudgetCategory) bool { return c.WeddingID == weddingID })
		return err
	})
	if err != nil {
		return nil, fail(span, fmt.Errorf("list categories: %w", err))
	}
	sortByCreation(categories, func(c core.BudgetCategory) (time.Time, string) { return c.CreatedAt, c.ID })
	return categories, nil
}

// Expenses

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) error {
	_, span := tracer.Start(ctx, "CreateExpense")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketCategories)).Get([]byte(e.BudgetCategoryID)) == nil {
			return core.ErrNotFound
		}
		return putDoc(tx, bucketExpenses, e.ID, e)
	})
	if err != nil {
		return fail(span, fmt.Errorf("create expense: %w", err))
	}
	slog.InfoContext(ctx, "Expense saved to kvdb",
		"expense_id", e.ID,
		"category_id", e.BudgetCategoryID,
		"amount_cents", e.Amount.Cents)
	return nil
}

func (s *Store) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	_, span := tracer.Start(ctx, "GetExpense")
	defer span.End()

	var e core.Expense
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		e, err = getDoc[core.Expense](tx, bucketExpenses, id)
		return err
	})
	if err != nil {
		return core.Expense{}, fail(span, fmt.Errorf("get expense %s: %w", id, err))
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, e core.Expense) error {
	_, span := tracer.Start(ctx, "UpdateExpense")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketCategories)).Get([]byte(e.BudgetCategoryID)) == nil {
			return core.ErrNotFound
		}
		return replaceDoc(tx, bucketExpenses, e.ID, e)
	})
	if err != nil {
		return fail(span, fmt.Errorf("update expense %s: %w", e.ID, err))
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "DeleteExpense")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return deleteDoc(tx, bucketExpenses, id)
	})
	if err != nil {
		return fail(span, fmt.Errorf("delete expense %s: %w", id, err))
	}
	slog.InfoContext(ctx, "Expense deleted from kvdb", "expense_id", id)
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, weddingID string) ([]core.Expense, error) {
	_, span := tracer.Start(ctx, "ListExpenses")
	defer span.End()

	var expenses []core.Expense
	err := s.db.View(func(tx *bolt.Tx) error {
		categories, err := listDocs(tx, bucketCategories, func(c core.BudgetCategory) bool { return c.WeddingID == weddingID })
		if err != nil {
			return err
		}
		owned := make(map[string]struct{}, len(categories))
		for _, c := range categories {
			owned[c.ID] = struct{}{}
		}
		expenses, err = listDocs(tx, bucketExpenses, func(e core.Expense) bool {
			_, ok := owned[e.BudgetCategoryID]
			return ok
		})
		return err
	})
	if err != nil {
		return nil, fail(span, fmt.Errorf("list expenses: %w", err))
	}
	sortByCreation(expenses, func(e core.Expense) (time.Time, string) { return e.CreatedAt, e.ID })
	return expenses, nil
}

// Tasks

func (s *Store) CreateTask(ctx context.Context, t core.Task) error {
	_, span := tracer.Start(ctx, "CreateTask")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return putDoc(tx, bucketTasks, t.ID, t)
	})
	if err != nil {
		return fail(span, fmt.Errorf("create task: %w", err))
	}
	slog.InfoContext(ctx, "Task saved to kvdb", "task_id", t.ID, "wedding_id", t.WeddingID)
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (core.Task, error) {
	_, span := tracer.Start(ctx, "GetTask")
	defer span.End()

	var t core.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		t, err = getDoc[core.Task](tx, bucketTasks, id)
		return err
	})
	if err != nil {
		return core.Task{}, fail(span, fmt.Errorf("get task %s: %w", id, err))
	}
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, t core.Task) error {
	_, span := tracer.Start(ctx, "UpdateTask")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return replaceDoc(tx, bucketTasks, t.ID, t)
	})
	if err != nil {
		return fail(span, fmt.Errorf("update task %s: %w", t.ID, err))
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "DeleteTask")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return deleteDoc(tx, bucketTasks, id)
	})
	if err != nil {
		return fail(span, fmt.Errorf("delete task %s: %w", id, err))
	}
	slog.InfoContext(ctx, "Task deleted from kvdb", "task_id", id)
	return nil
}

func (s *Store) ListTasks(ctx context.Context, weddingID string) ([]core.Task, error) {
	_, span := tracer.Start(ctx, "ListTasks")
	defer span.End()

	var tasks []core.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		tasks, err = listDocs(tx, bucketTasks, func(t core.Task) bool { return t.WeddingID == weddingID })
		return err
	})
	if err != nil {
		return nil, fail(span, fmt.Errorf("list tasks: %w", err))
	}
	sortByCreation(tasks, func(t core.Task) (time.Time, string) { return t.CreatedAt, t.ID })
	return tasks, nil
}
