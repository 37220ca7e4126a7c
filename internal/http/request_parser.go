// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may be form-encoded (classic forms and HTMX) or JSON; handlers read
// both through the same accessors.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"wedplan/internal/core"
	"wedplan/internal/services"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

var errBadBody = errors.New("request body could not be parsed")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error

	// Problems met while converting fields, keyed by field name.
	errs core.ValidationErrors
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
		errs:        core.ValidationErrors{},
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// ParseRequest reads and parses the body in one step.
func ParseRequest(r *http.Request) (*RequestBodyParser, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, errBadBody
	}
	return p, nil
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.Contains(p.contentType, "application/json") || trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Has reports whether the key was sent at all, even empty or null.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// Raw returns the value untouched, for secrets such as passwords.
func (p *RequestBodyParser) Raw(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// Int parses key as an integer. Empty yields def; garbage is recorded as a
// field error.
func (p *RequestBodyParser) Int(key string, def int) int {
	v := p.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs.Add(key, "must be a whole number")
		return def
	}
	return n
}

// Money parses key as a decimal amount. Empty yields zero.
func (p *RequestBodyParser) Money(key string) core.Money {
	v := p.Get(key)
	if v == "" {
		return core.Money{}
	}
	m, err := core.ParseMoney(v)
	if err != nil {
		p.errs.Add(key, "must be a valid amount")
		return core.Money{}
	}
	return m
}

// Date parses key as YYYY-MM-DD. Empty yields the zero date.
func (p *RequestBodyParser) Date(key string) core.Date {
	d, err := core.ParseDate(p.Get(key))
	if err != nil {
		p.errs.Add(key, "must be a date like 2026-06-20")
		return core.Date{}
	}
	return d
}

// Err returns the conversion problems as core.ValidationErrors, or nil.
func (p *RequestBodyParser) Err() error {
	return p.errs.Err()
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters except tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// Record readers shared by create and update handlers.

func parseGuest(p *RequestBodyParser) core.Guest {
	return core.Guest{
		Name:                p.Get("name"),
		Email:               p.Get("email"),
		Phone:               p.Get("phone"),
		Side:                core.Side(p.Get("side")),
		Group:               p.Get("group"),
		Role:                p.Get("role"),
		InviteStatus:        core.InviteStatus(p.Get("invite_status")),
		MembersCount:        p.Int("members_count", 0),
		DietaryRestrictions: p.Get("dietary_restrictions"),
	}
}

func parseCategory(p *RequestBodyParser) core.BudgetCategory {
	return core.BudgetCategory{
		Name:        p.Get("name"),
		Title:       p.Get("title"),
		Description: p.Get("description"),
		Budgeted:    p.Money("budgeted"),
		Color:       p.Get("color"),
	}
}

func parseExpense(p *RequestBodyParser) core.Expense {
	return core.Expense{
		BudgetCategoryID: p.Get("budget_category_id"),
		Title:            p.Get("title"),
		Description:      p.Get("description"),
		Amount:           p.Money("amount"),
		Date:             p.Date("date"),
		Status:           core.ExpenseStatus(p.Get("status")),
	}
}

func parseTask(p *RequestBodyParser) core.Task {
	return core.Task{
		Title:       p.Get("title"),
		Description: p.Get("description"),
		Status:      core.TaskStatus(p.Get("status")),
		Priority:    core.Priority(p.Get("priority")),
		DueDate:     p.Date("due_date"),
	}
}

// parseTaskPatch keeps only the fields present in the body.
func parseTaskPatch(p *RequestBodyParser) services.TaskPatch {
	var in services.TaskPatch
	if p.Has("title") {
		v := p.Get("title")
		in.Title = &v
	}
	if p.Has("description") {
		v := p.Get("description")
		in.Description = &v
	}
	if p.Has("status") {
		v := core.TaskStatus(p.Get("status"))
		in.Status = &v
	}
	if p.Has("priority") {
		v := core.Priority(p.Get("priority"))
		in.Priority = &v
	}
	if p.Has("due_date") {
		v := p.Date("due_date")
		in.DueDate = &v
	}
	return in
}

func parseSettings(p *RequestBodyParser) services.WeddingSettings {
	return services.WeddingSettings{
		BrideName:   p.Get("bride_name"),
		GroomName:   p.Get("groom_name"),
		WeddingDate: p.Date("wedding_date"),
		Budget:      p.Money("budget"),
	}
}

func parseRegistration(p *RequestBodyParser) services.Registration {
	return services.Registration{
		Name:                 p.Get("name"),
		Email:                p.Get("email"),
		Password:             p.Raw("password"),
		PasswordConfirmation: p.Raw("password_confirmation"),
		BrideName:            p.Get("bride_name"),
		GroomName:            p.Get("groom_name"),
		WeddingDate:          p.Date("wedding_date"),
		Budget:               p.Money("budget"),
	}
}
