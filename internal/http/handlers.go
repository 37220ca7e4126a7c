package http

import (
	"context"
	"errors"
	"net/http"

	"wedplan/internal/core"
	applog "wedplan/internal/log"
)

// pageData is the root value of every page template.
type pageData struct {
	Title   string
	Active  string
	User    core.User
	Wedding core.Wedding
	Data    any
	Errors  core.ValidationErrors
	Form    map[string]string
	Choices choices
}

// choices feed the select inputs.
type choices struct {
	Sides           []core.Side
	InviteStatuses  []core.InviteStatus
	ExpenseStatuses []core.ExpenseStatus
	TaskStatuses    []core.TaskStatus
	Priorities      []core.Priority
}

var formChoices = choices{
	Sides:           core.Sides,
	InviteStatuses:  core.InviteStatuses,
	ExpenseStatuses: core.ExpenseStatuses,
	TaskStatuses:    core.TaskStatuses,
	Priorities:      core.Priorities,
}

func newPage(a auth, title, active string) pageData {
	return pageData{
		Title:   title,
		Active:  active,
		User:    a.User,
		Wedding: a.Wedding,
		Choices: formChoices,
	}
}

// formFailed answers a rejected form. Full-page forms are rendered again
// with the errors next to the submitted values.
func (s *Server) formFailed(w http.ResponseWriter, r *http.Request, page string, data pageData, errs core.ValidationErrors) {
	switch {
	case wantsJSON(r):
		JSONValidationError(errs).Write(w)
	case isHTMX(r):
		UnprocessableEntityError(errs).Write(w)
	default:
		data.Errors = errs
		s.render(w, r, http.StatusUnprocessableEntity, page, data)
	}
}

// navigate sends the browser to url after a successful auth form.
func navigate(w http.ResponseWriter, r *http.Request, url string, v any) {
	switch {
	case wantsJSON(r):
		NewHTMXResponse().BodyJSON(v).Write(w)
	case isHTMX(r):
		NewHTMXResponse().Redirect(url).Write(w)
	default:
		http.Redirect(w, r, url, http.StatusSeeOther)
	}
}

func (s *Server) logChange(r *http.Request, component, op string, a auth, idField, id string) {
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogChange(r.Context(), component, op, a.Wedding.ID, idField, id)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := s.currentAuth(r.Context(), r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", pageData{Title: "Log in"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpLogin, err)
		return
	}
	email := p.Get("email")
	form := pageData{Title: "Log in", Form: map[string]string{"email": email}}

	user, err := s.svc.Accounts.Authenticate(ctx, email, p.Raw("password"))
	if errors.Is(err, core.ErrInvalidCredentials) {
		s.formFailed(w, r, "login.html", form, core.ValidationErrors{"email": "does not match our records"})
		return
	}
	if err != nil {
		s.respondError(w, r, applog.OpLogin, err)
		return
	}
	wedding, err := s.svc.Accounts.WeddingFor(ctx, user.ID)
	if err != nil {
		s.respondError(w, r, applog.OpLogin, err)
		return
	}
	if err := s.startSession(w, r, user, wedding); err != nil {
		s.respondError(w, r, applog.OpLogin, err)
		return
	}
	navigate(w, r, "/dashboard", map[string]any{"user": user, "wedding": wedding})
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", pageData{Title: "Create your wedding"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpRegister, err)
		return
	}
	in := parseRegistration(p)
	form := pageData{Title: "Create your wedding", Form: map[string]string{
		"name":         in.Name,
		"email":        in.Email,
		"bride_name":   in.BrideName,
		"groom_name":   in.GroomName,
		"wedding_date": p.Get("wedding_date"),
		"budget":       p.Get("budget"),
	}}

	var verrs core.ValidationErrors
	if err := p.Err(); err != nil {
		errors.As(err, &verrs)
		s.formFailed(w, r, "register.html", form, verrs)
		return
	}

	user, wedding, err := s.svc.Accounts.Register(ctx, in)
	switch {
	case errors.Is(err, core.ErrEmailTaken):
		s.formFailed(w, r, "register.html", form, core.ValidationErrors{"email": "has already been taken"})
		return
	case errors.As(err, &verrs):
		s.formFailed(w, r, "register.html", form, verrs)
		return
	case err != nil:
		s.respondError(w, r, applog.OpRegister, err)
		return
	}

	if err := s.startSession(w, r, user, wedding); err != nil {
		s.respondError(w, r, applog.OpRegister, err)
		return
	}
	if wantsJSON(r) {
		NewHTMXResponse().Status(http.StatusCreated).BodyJSON(map[string]any{"user": user, "wedding": wedding}).Write(w)
		return
	}
	navigate(w, r, "/dashboard", nil)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r)
	navigate(w, r, "/login", map[string]string{"message": "Logged out."})
}
