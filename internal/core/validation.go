package core

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen     = 255
	maxPhoneLen    = 20
	maxColorLen    = 7
	MinPasswordLen = 8
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidationErrors maps a field name to the first problem found with it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has an error.
func (v ValidationErrors) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// Err returns nil when no errors were recorded.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
		return false
	}
	return true
}

func (v ValidationErrors) maxLen(field, value string, n int) {
	if utf8.RuneCountInString(value) > n {
		v.Add(field, fmt.Sprintf("must not exceed %d characters", n))
	}
}

func (v ValidationErrors) email(field, value string, required bool) {
	if strings.TrimSpace(value) == "" {
		if required {
			v.Add(field, "is required")
		}
		return
	}
	v.maxLen(field, value, maxNameLen)
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.Add(field, "must be a valid email address")
	}
}

func (u User) Validate() error {
	v := ValidationErrors{}
	if v.required("name", u.Name) {
		v.maxLen("name", u.Name, maxNameLen)
	}
	v.email("email", u.Email, true)
	return v.Err()
}

// ValidatePassword checks a new password and its confirmation.
func ValidatePassword(password, confirmation string) error {
	v := ValidationErrors{}
	switch {
	case password == "":
		v.Add("password", "is required")
	case utf8.RuneCountInString(password) < MinPasswordLen:
		v.Add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLen))
	case password != confirmation:
		v.Add("password", "confirmation does not match")
	}
	return v.Err()
}

func (w Wedding) Validate() error {
	v := ValidationErrors{}
	if v.required("bride_name", w.BrideName) {
		v.maxLen("bride_name", w.BrideName, maxNameLen)
	}
	if v.required("groom_name", w.GroomName) {
		v.maxLen("groom_name", w.GroomName, maxNameLen)
	}
	if w.WeddingDate.IsEmpty() {
		v.Add("wedding_date", "is required")
	}
	if w.Budget.Cents < 0 {
		v.Add("budget", "must be at least 0")
	}
	return v.Err()
}

func (g Guest) Validate() error {
	v := ValidationErrors{}
	if v.required("name", g.Name) {
		v.maxLen("name", g.Name, maxNameLen)
	}
	v.email("email", g.Email, false)
	v.maxLen("phone", g.Phone, maxPhoneLen)
	if !g.Side.Valid() {
		v.Add("side", "must be bride or groom")
	}
	if v.required("group", g.Group) {
		v.maxLen("group", g.Group, maxNameLen)
	}
	if v.required("role", g.Role) {
		v.maxLen("role", g.Role, maxNameLen)
	}
	if !g.InviteStatus.Valid() {
		v.Add("invite_status", "must be pending, confirmed or declined")
	}
	if g.MembersCount < 1 {
		v.Add("members_count", "must be at least 1")
	}
	return v.Err()
}

func (c BudgetCategory) Validate() error {
	v := ValidationErrors{}
	if v.required("name", c.Name) {
		v.maxLen("name", c.Name, maxNameLen)
	}
	v.maxLen("title", c.Title, maxNameLen)
	if c.Budgeted.Cents < 0 {
		v.Add("budgeted", "must be at least 0")
	}
	if c.Color != "" {
		v.maxLen("color", c.Color, maxColorLen)
		if !hexColor.MatchString(c.Color) {
			v.Add("color", "must be a hex color like #aabbcc")
		}
	}
	return v.Err()
}

func (e Expense) Validate() error {
	v := ValidationErrors{}
	v.required("budget_category_id", e.BudgetCategoryID)
	if v.required("title", e.Title) {
		v.maxLen("title", e.Title, maxNameLen)
	}
	if err := e.Amount.Validate(); err != nil {
		v.Add("amount", "must be greater than 0")
	}
	if e.Date.IsEmpty() {
		v.Add("date", "is required")
	}
	if !e.Status.Valid() {
		v.Add("status", "must be paid, pending or overdue")
	}
	return v.Err()
}

func (t Task) Validate() error {
	v := ValidationErrors{}
	if v.required("title", t.Title) {
		v.maxLen("title", t.Title, maxNameLen)
	}
	if !t.Status.Valid() {
		v.Add("status", "must be todo, in_progress or completed")
	}
	if !t.Priority.Valid() {
		v.Add("priority", "must be low, medium or high")
	}
	return v.Err()
}
