package http

import (
	"net/http"

	"wedplan/internal/core"
	applog "wedplan/internal/log"
)

// expenseForm is the expense editor: the record plus the categories it may move to.
type expenseForm struct {
	core.Expense
	Categories []core.BudgetCategory
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request, a auth) {
	ov, err := s.svc.Budget.Overview(r.Context(), a.Wedding)
	if err != nil {
		s.respondError(w, r, applog.OpList, err)
		return
	}
	s.respond(w, r, "budget.html", "budget_section", ov, newPage(a, "Budget", "budget"))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, a auth) {
	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	in := parseCategory(p)
	if err := p.Err(); err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	c, err := s.svc.Budget.CreateCategory(r.Context(), a.Wedding.ID, in)
	if err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	s.logChange(r, applog.ComponentBudget, applog.OpCreate, a, applog.FieldCategoryID, c.ID)
	s.respondChanged(w, r, http.StatusCreated, "budget", "Category added", c)
}

// handleCategory returns one category, or its edit form for htmx.
func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request, a auth) {
	c, err := s.svc.Budget.Category(r.Context(), a.Wedding.ID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, applog.OpRead, err)
		return
	}
	if wantsJSON(r) {
		NewHTMXResponse().BodyJSON(c).Write(w)
		return
	}
	page := newPage(a, "Edit category", "budget")
	page.Data = c
	s.render(w, r, http.StatusOK, "category_form", page)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, a auth) {
	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	in := parseCategory(p)
	if err := p.Err(); err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	c, err := s.svc.Budget.UpdateCategory(r.Context(), a.Wedding.ID, r.PathValue("id"), in)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	s.logChange(r, applog.ComponentBudget, applog.OpUpdate, a, applog.FieldCategoryID, c.ID)
	s.respondChanged(w, r, http.StatusOK, "budget", "Category updated", c)
}

// handleDeleteCategory also removes the category's expenses.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, a auth) {
	id := r.PathValue("id")
	if err := s.svc.Budget.DeleteCategory(r.Context(), a.Wedding.ID, id); err != nil {
		s.respondError(w, r, applog.OpDelete, err)
		return
	}
	s.logChange(r, applog.ComponentBudget, applog.OpDelete, a, applog.FieldCategoryID, id)
	s.respondChanged(w, r, http.StatusOK, "budget", "Category removed", nil)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, a auth) {
	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	in := parseExpense(p)
	if err := p.Err(); err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	e, err := s.svc.Budget.CreateExpense(r.Context(), a.Wedding.ID, in)
	if err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	s.logChange(r, applog.ComponentBudget, applog.OpCreate, a, applog.FieldExpenseID, e.ID)
	s.respondChanged(w, r, http.StatusCreated, "budget", "Expense recorded", e)
}

// handleExpense returns one expense, or its edit form for htmx.
func (s *Server) handleExpense(w http.ResponseWriter, r *http.Request, a auth) {
	e, err := s.svc.Budget.Expense(r.Context(), a.Wedding.ID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, applog.OpRead, err)
		return
	}
	if wantsJSON(r) {
		NewHTMXResponse().BodyJSON(e).Write(w)
		return
	}
	categories, err := s.svc.Budget.Categories(r.Context(), a.Wedding.ID)
	if err != nil {
		s.respondError(w, r, applog.OpRead, err)
		return
	}
	page := newPage(a, "Edit expense", "budget")
	page.Data = expenseForm{Expense: e, Categories: categories}
	s.render(w, r, http.StatusOK, "expense_form", page)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request, a auth) {
	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	in := parseExpense(p)
	if err := p.Err(); err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	e, err := s.svc.Budget.UpdateExpense(r.Context(), a.Wedding.ID, r.PathValue("id"), in)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	s.logChange(r, applog.ComponentBudget, applog.OpUpdate, a, applog.FieldExpenseID, e.ID)
	s.respondChanged(w, r, http.StatusOK, "budget", "Expense updated", e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, a auth) {
	id := r.PathValue("id")
	if err := s.svc.Budget.DeleteExpense(r.Context(), a.Wedding.ID, id); err != nil {
		s.respondError(w, r, applog.OpDelete, err)
		return
	}
	s.logChange(r, applog.ComponentBudget, applog.OpDelete, a, applog.FieldExpenseID, id)
	s.respondChanged(w, r, http.StatusOK, "budget", "Expense removed", nil)
}
