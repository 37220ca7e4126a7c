// Package memory is a process-local backend used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"wedplan/internal/core"
	"wedplan/internal/storage"
)

type Store struct {
	mu         sync.RWMutex
	users      map[string]core.User
	weddings   map[string]core.Wedding
	guests     map[string]core.Guest
	categories map[string]core.BudgetCategory
	expenses   map[string]core.Expense
	tasks      map[string]core.Task
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:      map[string]core.User{},
		weddings:   map[string]core.Wedding{},
		guests:     map[string]core.Guest{},
		categories: map[string]core.BudgetCategory{},
		expenses:   map[string]core.Expense{},
		tasks:      map[string]core.Task{},
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func get[T any](m map[string]T, kind, id string) (T, error) {
	v, ok := m[id]
	if !ok {
		return v, fmt.Errorf("get %s %s: %w", kind, id, core.ErrNotFound)
	}
	return v, nil
}

func replace[T any](m map[string]T, kind, id string, v T) error {
	if _, ok := m[id]; !ok {
		return fmt.Errorf("update %s %s: %w", kind, id, core.ErrNotFound)
	}
	m[id] = v
	return nil
}

func remove[T any](m map[string]T, kind, id string) error {
	if _, ok := m[id]; !ok {
		return fmt.Errorf("delete %s %s: %w", kind, id, core.ErrNotFound)
	}
	delete(m, id)
	return nil
}

func collect[T any](m map[string]T, keep func(T) bool, key func(T) (time.Time, string)) []T {
	out := []T{}
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, idi := key(out[i])
		tj, idj := key(out[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return idi < idj
	})
	return out
}

// Users

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return core.ErrEmailTaken
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(s.users, "user", id)
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return core.User{}, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

// CreateAccount checks both records before storing either.
func (s *Store) CreateAccount(_ context.Context, u core.User, w core.Wedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return core.ErrEmailTaken
		}
	}
	if _, ok := s.weddings[w.ID]; ok {
		return fmt.Errorf("create account: wedding %s already exists", w.ID)
	}
	s.users[u.ID] = u
	s.weddings[w.ID] = w
	return nil
}

// Weddings

func (s *Store) CreateWedding(_ context.Context, w core.Wedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.weddings[w.ID]; ok {
		return fmt.Errorf("create wedding: %s already exists", w.ID)
	}
	s.weddings[w.ID] = w
	return nil
}

func (s *Store) GetWedding(_ context.Context, id string) (core.Wedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(s.weddings, "wedding", id)
}

func (s *Store) GetWeddingByUser(_ context.Context, userID string) (core.Wedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := collect(s.weddings,
		func(w core.Wedding) bool { return w.UserID == userID },
		func(w core.Wedding) (time.Time, string) { return w.CreatedAt, w.ID })
	if len(found) == 0 {
		return core.Wedding{}, fmt.Errorf("get wedding for user %s: %w", userID, core.ErrNotFound)
	}
	return found[0], nil
}

func (s *Store) UpdateWedding(_ context.Context, w core.Wedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.weddings, "wedding", w.ID, w)
}

// Guests

func (s *Store) CreateGuest(_ context.Context, g core.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guests[g.ID] = g
	return nil
}

func (s *Store) GetGuest(_ context.Context, id string) (core.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(s.guests, "guest", id)
}

func (s *Store) UpdateGuest(_ context.Context, g core.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.guests, "guest", g.ID, g)
}

func (s *Store) DeleteGuest(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.guests, "guest", id)
}

func (s *Store) ListGuests(_ context.Context, weddingID string) ([]core.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.guests,
		func(g core.Guest) bool { return g.WeddingID == weddingID },
		func(g core.Guest) (time.Time, string) { return g.CreatedAt, g.ID }), nil
}

// Budget

func (s *Store) CreateCategory(_ context.Context, c core.BudgetCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (core.BudgetCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(s.categories, "category", id)
}

func (s *Store) UpdateCategory(_ context.Context, c core.BudgetCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.categories, "category", c.ID, c)
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := remove(s.categories, "category", id); err != nil {
		return err
	}
	for eid, e := range s.expenses {
		if e.BudgetCategoryID == id {
			delete(s.expenses, eid)
		}
	}
	return nil
}

func (s *Store) ListCategories(_ context.Context, weddingID string) ([]core.BudgetCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.categories,
		func(c core.BudgetCategory) bool { return c.WeddingID == weddingID },
		func(c core.BudgetCategory) (time.Time, string) { return c.CreatedAt, c.ID }), nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[e.BudgetCategoryID]; !ok {
		return fmt.Errorf("create expense: category %s: %w", e.BudgetCategoryID, core.ErrNotFound)
	}
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(s.expenses, "expense", id)
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[e.BudgetCategoryID]; !ok {
		return fmt.Errorf("update expense: category %s: %w", e.BudgetCategoryID, core.ErrNotFound)
	}
	return replace(s.expenses, "expense", e.ID, e)
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.expenses, "expense", id)
}

func (s *Store) ListExpenses(_ context.Context, weddingID string) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.expenses,
		func(e core.Expense) bool { return s.categories[e.BudgetCategoryID].WeddingID == weddingID },
		func(e core.Expense) (time.Time, string) { return e.CreatedAt, e.ID }), nil
}

// Tasks

func (s *Store) CreateTask(_ context.Context, t core.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	return nil
}

func (s *Store) GetTask(_ context.Context, id string) (core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(s.tasks, "task", id)
}

func (s *Store) UpdateTask(_ context.Context, t core.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.tasks, "task", t.ID, t)
}

func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.tasks, "task", id)
}

func (s *Store) ListTasks(_ context.Context, weddingID string) ([]core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.tasks,
		func(t core.Task) bool { return t.WeddingID == weddingID },
		func(t core.Task) (time.Time, string) { return t.CreatedAt, t.ID }), nil
}
