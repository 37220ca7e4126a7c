// Package storagetest is a conformance suite shared by every storage backend.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"wedplan/internal/core"
	"wedplan/internal/storage"
)

var base = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

// Run exercises s through the storage.Store contract. s must be empty.
func Run(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()

	owner, wedding := seedWedding(t, ctx, s, "anna@example.com")
	_, other := seedWedding(t, ctx, s, "other@example.com")

	t.Run("ping", func(t *testing.T) {
		if err := s.Ping(ctx); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})

	t.Run("users", func(t *testing.T) {
		got, err := s.GetUserByEmail(ctx, "ANNA@example.com")
		if err != nil {
			t.Fatalf("get by email: %v", err)
		}
		if got.ID != owner.ID || got.PasswordHash != owner.PasswordHash {
			t.Fatalf("unexpected user %+v", got)
		}
		dup := owner
		dup.ID = core.NewID()
		dup.Email = "Anna@Example.com"
		if err := s.CreateUser(ctx, dup); !errors.Is(err, core.ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
		if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("accounts", func(t *testing.T) {
		u := core.User{
			ID:           core.NewID(),
			Name:         "Giulia",
			Email:        "giulia@example.com",
			PasswordHash: "$2a$10$hash",
			CreatedAt:    base,
			UpdatedAt:    base,
		}
		clash := wedding
		clash.UserID = u.ID
		if err := s.CreateAccount(ctx, u, clash); err == nil {
			t.Fatal("expected error when the wedding cannot be stored")
		}
		if _, err := s.GetUserByEmail(ctx, u.Email); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("user must not outlive a failed account write, got %v", err)
		}

		w := clash
		w.ID = core.NewID()
		if err := s.CreateAccount(ctx, u, w); err != nil {
			t.Fatalf("create account: %v", err)
		}
		got, err := s.GetWeddingByUser(ctx, u.ID)
		if err != nil || got.ID != w.ID {
			t.Fatalf("wedding by user = %+v (%v), want %s", got, err, w.ID)
		}

		dup := u
		dup.ID = core.NewID()
		dupWedding := w
		dupWedding.ID = core.NewID()
		dupWedding.UserID = dup.ID
		if err := s.CreateAccount(ctx, dup, dupWedding); !errors.Is(err, core.ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
		if _, err := s.GetWedding(ctx, dupWedding.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("wedding of a rejected account must not be stored, got %v", err)
		}
	})

	t.Run("weddings", func(t *testing.T) {
		got, err := s.GetWeddingByUser(ctx, owner.ID)
		if err != nil {
			t.Fatalf("get by user: %v", err)
		}
		if got.ID != wedding.ID || !got.WeddingDate.Equal(wedding.WeddingDate.Time) {
			t.Fatalf("unexpected wedding %+v", got)
		}
		got.Budget = core.Money{Cents: 2500000}
		got.GroomName = "Marco Bianchi"
		if err := s.UpdateWedding(ctx, got); err != nil {
			t.Fatalf("update: %v", err)
		}
		reloaded, err := s.GetWedding(ctx, wedding.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if reloaded.Budget.Cents != 2500000 || reloaded.GroomName != "Marco Bianchi" {
			t.Fatalf("update not persisted: %+v", reloaded)
		}
		missing := got
		missing.ID = "missing"
		if err := s.UpdateWedding(ctx, missing); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("guests", func(t *testing.T) {
		first := guest(wedding.ID, "Luca", 0)
		second := guest(wedding.ID, "Anna", 1)
		foreign := guest(other.ID, "Stranger", 2)
		for _, g := range []core.Guest{second, first, foreign} {
			if err := s.CreateGuest(ctx, g); err != nil {
				t.Fatalf("create guest: %v", err)
			}
		}

		list, err := s.ListGuests(ctx, wedding.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
			t.Fatalf("unexpected list %+v", list)
		}

		first.InviteStatus = core.InviteConfirmed
		first.MembersCount = 3
		if err := s.UpdateGuest(ctx, first); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := s.GetGuest(ctx, first.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.InviteStatus != core.InviteConfirmed || got.MembersCount != 3 || got.Group != "Family" {
			t.Fatalf("unexpected guest %+v", got)
		}

		if err := s.DeleteGuest(ctx, first.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.GetGuest(ctx, first.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := s.DeleteGuest(ctx, first.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("budget", func(t *testing.T) {
		venue := category(wedding.ID, "Venue", 0)
		flowers := category(wedding.ID, "Flowers", 1)
		foreign := category(other.ID, "Other", 2)
		for _, c := range []core.BudgetCategory{venue, flowers, foreign} {
			if err := s.CreateCategory(ctx, c); err != nil {
				t.Fatalf("create category: %v", err)
			}
		}
		expenses := []core.Expense{
			expense(venue.ID, 30000, 0),
			expense(venue.ID, 20000, 1),
			expense(flowers.ID, 5000, 2),
			expense(foreign.ID, 100, 3),
		}
		for _, e := range expenses {
			if err := s.CreateExpense(ctx, e); err != nil {
				t.Fatalf("create expense: %v", err)
			}
		}

		list, err := s.ListExpenses(ctx, wedding.ID)
		if err != nil {
			t.Fatalf("list expenses: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 expenses, got %d", len(list))
		}
		if !list[0].Date.Equal(expenses[0].Date.Time) || list[0].Amount.Cents != 30000 {
			t.Fatalf("unexpected first expense %+v", list[0])
		}

		moved := expenses[2]
		moved.BudgetCategoryID = venue.ID
		moved.Status = core.ExpensePaid
		if err := s.UpdateExpense(ctx, moved); err != nil {
			t.Fatalf("update expense: %v", err)
		}

		flowers.Budgeted = core.Money{Cents: 90000}
		if err := s.UpdateCategory(ctx, flowers); err != nil {
			t.Fatalf("update category: %v", err)
		}
		got, err := s.GetCategory(ctx, flowers.ID)
		if err != nil || got.Budgeted.Cents != 90000 {
			t.Fatalf("category update not persisted: %+v (%v)", got, err)
		}

		if err := s.DeleteCategory(ctx, venue.ID); err != nil {
			t.Fatalf("delete category: %v", err)
		}
		for _, e := range []core.Expense{expenses[0], expenses[1], moved} {
			if _, err := s.GetExpense(ctx, e.ID); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expense %s should be removed with its category, got %v", e.ID, err)
			}
		}
		cats, err := s.ListCategories(ctx, wedding.ID)
		if err != nil {
			t.Fatalf("list categories: %v", err)
		}
		if len(cats) != 1 || cats[0].ID != flowers.ID {
			t.Fatalf("unexpected categories %+v", cats)
		}
		if err := s.DeleteExpense(ctx, expenses[3].ID); err != nil {
			t.Fatalf("delete expense: %v", err)
		}
	})

	t.Run("tasks", func(t *testing.T) {
		dated := task(wedding.ID, "Book venue", 0)
		dated.DueDate = core.NewDate(2026, 3, 1)
		undated := task(wedding.ID, "Choose music", 1)
		for _, tk := range []core.Task{dated, undated, task(other.ID, "Foreign", 2)} {
			if err := s.CreateTask(ctx, tk); err != nil {
				t.Fatalf("create task: %v", err)
			}
		}

		list, err := s.ListTasks(ctx, wedding.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(list))
		}
		if !list[0].DueDate.Equal(dated.DueDate.Time) || !list[1].DueDate.IsEmpty() {
			t.Fatalf("due dates not round-tripped: %+v", list)
		}

		undated.Status = core.TaskCompleted
		if err := s.UpdateTask(ctx, undated); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := s.GetTask(ctx, undated.ID)
		if err != nil || got.Status != core.TaskCompleted {
			t.Fatalf("update not persisted: %+v (%v)", got, err)
		}
		if err := s.DeleteTask(ctx, dated.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.GetTask(ctx, dated.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func seedWedding(t *testing.T, ctx context.Context, s storage.Store, email string) (core.User, core.Wedding) {
	t.Helper()
	u := core.User{
		ID:           core.NewID(),
		Name:         "Anna",
		Email:        email,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    base,
		UpdatedAt:    base,
	}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	w := core.Wedding{
		ID:          core.NewID(),
		UserID:      u.ID,
		BrideName:   "Anna",
		GroomName:   "Marco",
		WeddingDate: core.NewDate(2026, 9, 12),
		Budget:      core.Money{Cents: 2000000},
		CreatedAt:   base,
		UpdatedAt:   base,
	}
	if err := s.CreateWedding(ctx, w); err != nil {
		t.Fatalf("create wedding: %v", err)
	}
	return u, w
}

func at(n int) time.Time {
	return base.Add(time.Duration(n) * time.Minute)
}

func guest(weddingID, name string, n int) core.Guest {
	return core.Guest{
		ID:           core.NewID(),
		WeddingID:    weddingID,
		Name:         name,
		Side:         core.SideBride,
		Group:        "Family",
		Role:         "Friend",
		InviteStatus: core.InvitePending,
		MembersCount: 1,
		CreatedAt:    at(n),
		UpdatedAt:    at(n),
	}
}

func category(weddingID, name string, n int) core.BudgetCategory {
	return core.BudgetCategory{
		ID:        core.NewID(),
		WeddingID: weddingID,
		Name:      name,
		Title:     name,
		Budgeted:  core.Money{Cents: 100000},
		Color:     core.DefaultCategoryColor,
		CreatedAt: at(n),
		UpdatedAt: at(n),
	}
}

func expense(categoryID string, cents int64, n int) core.Expense {
	return core.Expense{
		ID:               core.NewID(),
		BudgetCategoryID: categoryID,
		Title:            "Payment",
		Amount:           core.Money{Cents: cents},
		Date:             core.NewDate(2026, 1, 1+n),
		Status:           core.ExpensePending,
		CreatedAt:        at(n),
		UpdatedAt:        at(n),
	}
}

func task(weddingID, title string, n int) core.Task {
	return core.Task{
		ID:        core.NewID(),
		WeddingID: weddingID,
		Title:     title,
		Status:    core.TaskTodo,
		Priority:  core.PriorityMedium,
		CreatedAt: at(n),
		UpdatedAt: at(n),
	}
}
