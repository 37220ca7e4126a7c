package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	InvitePending   InviteStatus = "pending"
	InviteConfirmed InviteStatus = "confirmed"
	InviteDeclined  InviteStatus = "declined"

	SideBride Side = "bride"
	SideGroom Side = "groom"

	ExpensePaid    ExpenseStatus = "paid"
	ExpensePending ExpenseStatus = "pending"
	ExpenseOverdue ExpenseStatus = "overdue"

	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"

	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultCategoryColor is used when a category is saved without a color.
const DefaultCategoryColor = "#3b82f6"

type (
	InviteStatus  string
	Side          string
	ExpenseStatus string
	TaskStatus    string
	Priority      string

	User struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}

	Wedding struct {
		ID          string    `json:"id"`
		UserID      string    `json:"user_id"`
		BrideName   string    `json:"bride_name"`
		GroomName   string    `json:"groom_name"`
		WeddingDate Date      `json:"wedding_date"`
		Budget      Money     `json:"budget"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	Guest struct {
		ID                  string       `json:"id"`
		WeddingID           string       `json:"wedding_id"`
		Name                string       `json:"name"`
		Email               string       `json:"email"`
		Phone               string       `json:"phone"`
		Side                Side         `json:"side"`
		Group               string       `json:"group"`
		Role                string       `json:"role"`
		InviteStatus        InviteStatus `json:"invite_status"`
		MembersCount        int          `json:"members_count"`
		DietaryRestrictions string       `json:"dietary_restrictions"`
		CreatedAt           time.Time    `json:"created_at"`
		UpdatedAt           time.Time    `json:"updated_at"`
	}

	BudgetCategory struct {
		ID          string    `json:"id"`
		WeddingID   string    `json:"wedding_id"`
		Name        string    `json:"name"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Budgeted    Money     `json:"budgeted"`
		Color       string    `json:"color"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	Expense struct {
		ID               string        `json:"id"`
		BudgetCategoryID string        `json:"budget_category_id"`
		Title            string        `json:"title"`
		Description      string        `json:"description"`
		Amount           Money         `json:"amount"`
		Date             Date          `json:"date"`
		Status           ExpenseStatus `json:"status"`
		CreatedAt        time.Time     `json:"created_at"`
		UpdatedAt        time.Time     `json:"updated_at"`
	}

	Task struct {
		ID          string     `json:"id"`
		WeddingID   string     `json:"wedding_id"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Status      TaskStatus `json:"status"`
		Priority    Priority   `json:"priority"`
		DueDate     Date       `json:"due_date"`
		CreatedAt   time.Time  `json:"created_at"`
		UpdatedAt   time.Time  `json:"updated_at"`
	}
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrNoWedding          = errors.New("user has no wedding")
)

var (
	InviteStatuses  = []InviteStatus{InvitePending, InviteConfirmed, InviteDeclined}
	Sides           = []Side{SideBride, SideGroom}
	ExpenseStatuses = []ExpenseStatus{ExpensePaid, ExpensePending, ExpenseOverdue}
	TaskStatuses    = []TaskStatus{TaskTodo, TaskInProgress, TaskCompleted}
	Priorities      = []Priority{PriorityLow, PriorityMedium, PriorityHigh}
)

// NewID returns a random record identifier.
func NewID() string {
	return uuid.NewString()
}

func (s InviteStatus) Valid() bool {
	return s == InvitePending || s == InviteConfirmed || s == InviteDeclined
}

func (s Side) Valid() bool {
	return s == SideBride || s == SideGroom
}

func (s ExpenseStatus) Valid() bool {
	return s == ExpensePaid || s == ExpensePending || s == ExpenseOverdue
}

func (s TaskStatus) Valid() bool {
	return s == TaskTodo || s == TaskInProgress || s == TaskCompleted
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Label turns an enum value like "in_progress" into "In progress".
func Label(v string) string {
	v = strings.ReplaceAll(v, "_", " ")
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}

// CoupleName renders "Bride & Groom".
func (w Wedding) CoupleName() string {
	return strings.TrimSpace(w.BrideName) + " & " + strings.TrimSpace(w.GroomName)
}

// DisplayTitle falls back to the name when no title was given.
func (c BudgetCategory) DisplayTitle() string {
	if strings.TrimSpace(c.Title) != "" {
		return c.Title
	}
	return c.Name
}
