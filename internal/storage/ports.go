// Package storage defines the persistence ports of the planner and the
// SQLite implementation. Document and in-memory implementations live in
// the kvdb and memory subpackages.
//
// Lookups by id return core.ErrNotFound (possibly wrapped) when the record
// does not exist. Listing methods are scoped to one wedding and return
// records ordered by creation time.
package storage

import (
	"context"

	"wedplan/internal/core"
)

type (
	UserStore interface {
		// CreateUser fails with core.ErrEmailTaken when the email is in use.
		CreateUser(ctx context.Context, u core.User) error
		GetUser(ctx context.Context, id string) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		// CreateAccount stores a new user and their wedding together: either
		// both records exist afterwards or neither does.
		CreateAccount(ctx context.Context, u core.User, w core.Wedding) error
	}

	WeddingStore interface {
		CreateWedding(ctx context.Context, w core.Wedding) error
		GetWedding(ctx context.Context, id string) (core.Wedding, error)
		GetWeddingByUser(ctx context.Context, userID string) (core.Wedding, error)
		UpdateWedding(ctx context.Context, w core.Wedding) error
	}

	GuestStore interface {
		CreateGuest(ctx context.Context, g core.Guest) error
		GetGuest(ctx context.Context, id string) (core.Guest, error)
		UpdateGuest(ctx context.Context, g core.Guest) error
		DeleteGuest(ctx context.Context, id string) error
		ListGuests(ctx context.Context, weddingID string) ([]core.Guest, error)
	}

	BudgetStore interface {
		CreateCategory(ctx context.Context, c core.BudgetCategory) error
		GetCategory(ctx context.Context, id string) (core.BudgetCategory, error)
		UpdateCategory(ctx context.Context, c core.BudgetCategory) error
		// DeleteCategory removes the category and all of its expenses.
		DeleteCategory(ctx context.Context, id string) error
		ListCategories(ctx context.Context, weddingID string) ([]core.BudgetCategory, error)

		CreateExpense(ctx context.Context, e core.Expense) error
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id string) error
		// ListExpenses returns the expenses of every category of the wedding.
		ListExpenses(ctx context.Context, weddingID string) ([]core.Expense, error)
	}

	TaskStore interface {
		CreateTask(ctx context.Context, t core.Task) error
		GetTask(ctx context.Context, id string) (core.Task, error)
		UpdateTask(ctx context.Context, t core.Task) error
		DeleteTask(ctx context.Context, id string) error
		ListTasks(ctx context.Context, weddingID string) ([]core.Task, error)
	}

	// Store is a complete persistence backend.
	Store interface {
		UserStore
		WeddingStore
		GuestStore
		BudgetStore
		TaskStore
		Ping(ctx context.Context) error
		Close() error
	}
)
