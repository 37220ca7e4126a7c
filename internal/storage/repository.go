package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wedplan/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db *sql.DB
}

var _ Store = (*SQLiteRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatDate(d core.Date) sql.NullString {
	if d.IsEmpty() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDate(s sql.NullString) core.Date {
	if !s.Valid {
		return core.Date{}
	}
	d, err := core.ParseDate(s.String)
	if err != nil {
		return core.Date{}
	}
	return d
}

// exec runs a write that must touch exactly one row.
func (r *SQLiteRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

// Users

const userColumns = `id, name, email, password_hash, created_at, updated_at`

func scanUser(s rowScanner) (core.User, error) {
	var u core.User
	var created, updated string
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created, &updated); err != nil {
		return core.User{}, err
	}
	u.CreatedAt, u.UpdatedAt = parseTime(created), parseTime(updated)
	return u, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertUser(ctx context.Context, ex execer, u core.User) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, formatTime(u.CreatedAt), formatTime(u.UpdatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return core.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	if err := insertUser(ctx, r.db, u); err != nil {
		return err
	}
	slog.InfoContext(ctx, "User saved to SQLite", "user_id", u.ID)
	return nil
}

// CreateAccount inserts the user and the wedding in one transaction.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, u core.User, w core.Wedding) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin account transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertUser(ctx, tx, u); err != nil {
		return err
	}
	if err := insertWedding(ctx, tx, w); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit account: %w", err)
	}
	slog.InfoContext(ctx, "Account saved to SQLite", "user_id", u.ID, "wedding_id", w.ID)
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return core.User{}, fmt.Errorf("get user %s: %w", id, notFound(err))
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", notFound(err))
	}
	return u, nil
}

// Weddings

const weddingColumns = `id, user_id, bride_name, groom_name, wedding_date, budget_cents, created_at, updated_at`

func scanWedding(s rowScanner) (core.Wedding, error) {
	var w core.Wedding
	var date sql.NullString
	var created, updated string
	if err := s.Scan(&w.ID, &w.UserID, &w.BrideName, &w.GroomName, &date, &w.Budget.Cents, &created, &updated); err != nil {
		return core.Wedding{}, err
	}
	w.WeddingDate = parseDate(date)
	w.CreatedAt, w.UpdatedAt = parseTime(created), parseTime(updated)
	return w, nil
}

func insertWedding(ctx context.Context, ex execer, w core.Wedding) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO weddings (`+weddingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.BrideName, w.GroomName, formatDate(w.WeddingDate), w.Budget.Cents,
		formatTime(w.CreatedAt), formatTime(w.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create wedding: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateWedding(ctx context.Context, w core.Wedding) error {
	if err := insertWedding(ctx, r.db, w); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Wedding saved to SQLite", "wedding_id", w.ID, "user_id", w.UserID)
	return nil
}

func (r *SQLiteRepository) GetWedding(ctx context.Context, id string) (core.Wedding, error) {
	w, err := scanWedding(r.db.QueryRowContext(ctx, `SELECT `+weddingColumns+` FROM weddings WHERE id = ?`, id))
	if err != nil {
		return core.Wedding{}, fmt.Errorf("get wedding %s: %w", id, notFound(err))
	}
	return w, nil
}

func (r *SQLiteRepository) GetWeddingByUser(ctx context.Context, userID string) (core.Wedding, error) {
	w, err := scanWedding(r.db.QueryRowContext(ctx,
		`SELECT `+weddingColumns+` FROM weddings WHERE user_id = ? ORDER BY created_at LIMIT 1`, userID))
	if err != nil {
		return core.Wedding{}, fmt.Errorf("get wedding for user %s: %w", userID, notFound(err))
	}
	return w, nil
}

func (r *SQLiteRepository) UpdateWedding(ctx context.Context, w core.Wedding) error {
	err := r.exec(ctx,
		`UPDATE weddings SET bride_name = ?, groom_name = ?, wedding_date = ?, budget_cents = ?, updated_at = ? WHERE id = ?`,
		w.BrideName, w.GroomName, formatDate(w.WeddingDate), w.Budget.Cents, formatTime(w.UpdatedAt), w.ID)
	if err != nil {
		return fmt.Errorf("update wedding %s: %w", w.ID, err)
	}
	return nil
}

// Guests

const guestColumns = `id, wedding_id, name, email, phone, side, guest_group, role, invite_status,
	members_count, dietary_restrictions, created_at, updated_at`

func scanGuest(s rowScanner) (core.Guest, error) {
	var g core.Guest
	var created, updated string
	if err := s.Scan(&g.ID, &g.WeddingID, &g.Name, &g.Email, &g.Phone, &g.Side, &g.Group, &g.Role,
		&g.InviteStatus, &g.MembersCount, &g.DietaryRestrictions, &created, &updated); err != nil {
		return core.Guest{}, err
	}
	g.CreatedAt, g.UpdatedAt = parseTime(created), parseTime(updated)
	return g, nil
}

func (r *SQLiteRepository) CreateGuest(ctx context.Context, g core.Guest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO guests (`+guestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.WeddingID, g.Name, g.Email, g.Phone, g.Side, g.Group, g.Role, g.InviteStatus,
		g.MembersCount, g.DietaryRestrictions, formatTime(g.CreatedAt), formatTime(g.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create guest: %w", err)
	}
	slog.InfoContext(ctx, "Guest saved to SQLite", "guest_id", g.ID, "wedding_id", g.WeddingID)
	return nil
}

func (r *SQLiteRepository) GetGuest(ctx context.Context, id string) (core.Guest, error) {
	g, err := scanGuest(r.db.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE id = ?`, id))
	if err != nil {
		return core.Guest{}, fmt.Errorf("get guest %s: %w", id, notFound(err))
	}
	return g, nil
}

func (r *SQLiteRepository) UpdateGuest(ctx context.Context, g core.Guest) error {
	err := r.exec(ctx,
		`UPDATE guests SET name = ?, email = ?, phone = ?, side = ?, guest_group = ?, role = ?,
			invite_status = ?, members_count = ?, dietary_restrictions = ?, updated_at = ?
		WHERE id = ?`,
		g.Name, g.Email, g.Phone, g.Side, g.Group, g.Role, g.InviteStatus, g.MembersCount,
		g.DietaryRestrictions, formatTime(g.UpdatedAt), g.ID)
	if err != nil {
		return fmt.Errorf("update guest %s: %w", g.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteGuest(ctx context.Context, id string) error {
	if err := r.exec(ctx, `DELETE FROM guests WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete guest %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Guest deleted from SQLite", "guest_id", id)
	return nil
}

func (r *SQLiteRepository) ListGuests(ctx context.Context, weddingID string) ([]core.Guest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE wedding_id = ? ORDER BY created_at, id`, weddingID)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()

	guests := []core.Guest{}
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guest: %w", err)
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

// Budget categories

const categoryColumns = `id, wedding_id, name, title, description, budgeted_cents, color, created_at, updated_at`

func scanCategory(s rowScanner) (core.BudgetCategory, error) {
	var c core.BudgetCategory
	var created, updated string
	if err := s.Scan(&c.ID, &c.WeddingID, &c.Name, &c.Title, &c.Description, &c.Budgeted.Cents, &c.Color,
		&created, &updated); err != nil {
		return core.BudgetCategory{}, err
	}
	c.CreatedAt, c.UpdatedAt = parseTime(created), parseTime(updated)
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.BudgetCategory) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.WeddingID, c.Name, c.Title, c.Description, c.Budgeted.Cents, c.Color,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Budget category saved to SQLite", "category_id", c.ID, "wedding_id", c.WeddingID)
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.BudgetCategory, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM budget_categories WHERE id = ?`, id))
	if err != nil {
		return core.BudgetCategory{}, fmt.Errorf("get category %s: %w", id, notFound(err))
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.BudgetCategory) error {
	err := r.exec(ctx,
		`UPDATE budget_categories SET name = ?, title = ?, description = ?, budgeted_cents = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Title, c.Description, c.Budgeted.Cents, c.Color, formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update category %s: %w", c.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE budget_category_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expenses of category %s: %w", id, err)
	}
	removed, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM budget_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete category %s: %w", id, core.ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete category: %w", err)
	}

	slog.InfoContext(ctx, "Budget category deleted from SQLite", "category_id", id, "expenses_removed", removed)
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, weddingID string) ([]core.BudgetCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM budget_categories WHERE wedding_id = ? ORDER BY created_at, id`, weddingID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.BudgetCategory{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Expenses

const expenseColumns = `id, budget_category_id, title, description, amount_cents, date, status, created_at, updated_at`

func scanExpense(s rowScanner) (core.Expense, error) {
	var e core.Expense
	var date sql.NullString
	var created, updated string
	if err := s.Scan(&e.ID, &e.BudgetCategoryID, &e.Title, &e.Description, &e.Amount.Cents, &date, &e.Status,
		&created, &updated); err != nil {
		return core.Expense{}, err
	}
	e.Date = parseDate(date)
	e.CreatedAt, e.UpdatedAt = parseTime(created), parseTime(updated)
	return e, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.BudgetCategoryID, e.Title, e.Description, e.Amount.Cents, formatDate(e.Date), e.Status,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved to SQLite",
		"expense_id", e.ID,
		"category_id", e.BudgetCategoryID,
		"amount_cents", e.Amount.Cents)
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, notFound(err))
	}
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	err := r.exec(ctx,
		`UPDATE expenses SET budget_category_id = ?, title = ?, description = ?, amount_cents = ?, date = ?,
			status = ?, updated_at = ?
		WHERE id = ?`,
		e.BudgetCategoryID, e.Title, e.Description, e.Amount.Cents, formatDate(e.Date), e.Status,
		formatTime(e.UpdatedAt), e.ID)
	if err != nil {
		return fmt.Errorf("update expense %s: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	if err := r.exec(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Expense deleted from SQLite", "expense_id", id)
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, weddingID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.budget_category_id, e.title, e.description, e.amount_cents, e.date, e.status,
			e.created_at, e.updated_at
		FROM expenses e
		JOIN budget_categories c ON c.id = e.budget_category_id
		WHERE c.wedding_id = ?
		ORDER BY e.created_at, e.id`, weddingID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// Tasks

const taskColumns = `id, wedding_id, title, description, status, priority, due_date, created_at, updated_at`

func scanTask(s rowScanner) (core.Task, error) {
	var t core.Task
	var due sql.NullString
	var created, updated string
	if err := s.Scan(&t.ID, &t.WeddingID, &t.Title, &t.Description, &t.Status, &t.Priority, &due,
		&created, &updated); err != nil {
		return core.Task{}, err
	}
	t.DueDate = parseDate(due)
	t.CreatedAt, t.UpdatedAt = parseTime(created), parseTime(updated)
	return t, nil
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, t core.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.WeddingID, t.Title, t.Description, t.Status, t.Priority, formatDate(t.DueDate),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	slog.InfoContext(ctx, "Task saved to SQLite", "task_id", t.ID, "wedding_id", t.WeddingID)
	return nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (core.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return core.Task{}, fmt.Errorf("get task %s: %w", id, notFound(err))
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, t core.Task) error {
	err := r.exec(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, updated_at = ?
		WHERE id = ?`,
		t.Title, t.Description, t.Status, t.Priority, formatDate(t.DueDate), formatTime(t.UpdatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	if err := r.exec(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Task deleted from SQLite", "task_id", id)
	return nil
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, weddingID string) ([]core.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE wedding_id = ? ORDER BY created_at, id`, weddingID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []core.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
