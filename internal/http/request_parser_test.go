package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wedplan/internal/core"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	p, err := ParseRequest(req)
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	return p
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, "application/json", `{"id": "123", "name": "  test ", "amount": 42.5, "active": true, "note": null}`)

	if !p.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	tests := map[string]string{"id": "123", "name": "test", "amount": "42.5", "active": "true", "note": "", "missing": ""}
	for key, want := range tests {
		if got := p.Get(key); got != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}
	if !p.Has("note") || p.Has("missing") {
		t.Error("Has() should report keys sent as null and skip absent ones")
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "id=456&name=form+test&password=+spaced+")

	if p.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if got := p.Get("name"); got != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", got)
	}
	if got := p.Raw("password"); got != " spaced " {
		t.Errorf("Raw('password') = %q, want untrimmed value", got)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	p := newParser(t, "", "")
	if val := p.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
	if p.Has("nonexistent") {
		t.Error("Has() on empty body should be false")
	}
}

func TestParseRequest_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"name": `))
	req.Header.Set("Content-Type", "application/json")
	if _, err := ParseRequest(req); !errors.Is(err, errBadBody) {
		t.Fatalf("expected errBadBody, got %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput(" a\x00b\tc\n "); got != "ab\tc" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}

func TestRequestBodyParser_Conversions(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"valid values", `{"n": "4", "amount": "12.30", "date": "2026-09-12"}`, ""},
		{"bad integer", `{"n": "four"}`, "n"},
		{"bad amount", `{"amount": "12,30.1"}`, "amount"},
		{"bad date", `{"date": "12/09/2026"}`, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, "application/json", tt.body)
			p.Int("n", 1)
			p.Money("amount")
			p.Date("date")

			err := p.Err()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Err() = %v, want nil", err)
				}
				return
			}
			var verrs core.ValidationErrors
			if !errors.As(err, &verrs) || verrs[tt.wantField] == "" {
				t.Fatalf("expected an error on %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestRequestBodyParser_Defaults(t *testing.T) {
	p := newParser(t, "application/json", `{}`)
	if got := p.Int("members_count", 1); got != 1 {
		t.Errorf("Int() = %d, want default 1", got)
	}
	if got := p.Money("budget"); got.Cents != 0 {
		t.Errorf("Money() = %v, want zero", got)
	}
	if got := p.Date("due_date"); !got.IsEmpty() {
		t.Errorf("Date() = %v, want empty", got)
	}
}

func TestParseTaskPatch(t *testing.T) {
	p := newParser(t, "application/json", `{"title": "Send invitations", "due_date": ""}`)
	patch := parseTaskPatch(p)

	if patch.Title == nil || *patch.Title != "Send invitations" {
		t.Errorf("Title = %v", patch.Title)
	}
	if patch.DueDate == nil || !patch.DueDate.IsEmpty() {
		t.Errorf("DueDate should be present and cleared, got %v", patch.DueDate)
	}
	if patch.Status != nil || patch.Priority != nil || patch.Description != nil {
		t.Errorf("absent fields should stay nil: %+v", patch)
	}
}

func TestParseExpense(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "budget_category_id=c1&title=Flowers&amount=350.75&date=2026-05-02&status=paid")
	e := parseExpense(p)
	if err := p.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if e.BudgetCategoryID != "c1" || e.Amount.Cents != 35075 || e.Status != core.ExpensePaid || e.Date.String() != "2026-05-02" {
		t.Fatalf("unexpected expense %+v", e)
	}
}
