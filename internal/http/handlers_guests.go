package http

import (
	"net/http"

	"wedplan/internal/core"
	applog "wedplan/internal/log"
)

func (s *Server) handleGuests(w http.ResponseWriter, r *http.Request, a auth) {
	q := r.URL.Query()
	f := core.GuestFilter{
		Status: core.InviteStatus(q.Get("status")),
		Side:   core.Side(q.Get("side")),
		Search: q.Get("q"),
	}
	list, err := s.svc.Guests.List(r.Context(), a.Wedding.ID, f)
	if err != nil {
		s.respondError(w, r, applog.OpList, err)
		return
	}
	s.respond(w, r, "guests.html", "guest_section", list, newPage(a, "Guests", "guests"))
}

// handleGuest returns one guest, or its edit form for htmx.
func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request, a auth) {
	g, err := s.svc.Guests.Get(r.Context(), a.Wedding.ID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, applog.OpRead, err)
		return
	}
	if wantsJSON(r) {
		NewHTMXResponse().BodyJSON(g).Write(w)
		return
	}
	page := newPage(a, "Edit guest", "guests")
	page.Data = g
	s.render(w, r, http.StatusOK, "guest_form", page)
}

func (s *Server) handleCreateGuest(w http.ResponseWriter, r *http.Request, a auth) {
	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	in := parseGuest(p)
	if err := p.Err(); err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	g, err := s.svc.Guests.Create(r.Context(), a.Wedding.ID, in)
	if err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	s.logChange(r, applog.ComponentGuests, applog.OpCreate, a, applog.FieldGuestID, g.ID)
	s.respondChanged(w, r, http.StatusCreated, "guests", "Guest added", g)
}

func (s *Server) handleUpdateGuest(w http.ResponseWriter, r *http.Request, a auth) {
	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	in := parseGuest(p)
	if err := p.Err(); err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	g, err := s.svc.Guests.Update(r.Context(), a.Wedding.ID, r.PathValue("id"), in)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	s.logChange(r, applog.ComponentGuests, applog.OpUpdate, a, applog.FieldGuestID, g.ID)
	s.respondChanged(w, r, http.StatusOK, "guests", "Guest updated", g)
}

func (s *Server) handleDeleteGuest(w http.ResponseWriter, r *http.Request, a auth) {
	id := r.PathValue("id")
	if err := s.svc.Guests.Delete(r.Context(), a.Wedding.ID, id); err != nil {
		s.respondError(w, r, applog.OpDelete, err)
		return
	}
	s.logChange(r, applog.ComponentGuests, applog.OpDelete, a, applog.FieldGuestID, id)
	s.respondChanged(w, r, http.StatusOK, "guests", "Guest removed", nil)
}
