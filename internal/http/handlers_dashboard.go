package http

import (
	"net/http"

	applog "wedplan/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, a auth) {
	d, err := s.svc.Dashboard.Dashboard(r.Context(), a.Wedding)
	if err != nil {
		s.respondError(w, r, applog.OpRead, err)
		return
	}
	s.respond(w, r, "dashboard.html", "", d, newPage(a, "Dashboard", "dashboard"))
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, a auth) {
	s.respond(w, r, "settings.html", "", a.Wedding, newPage(a, "Settings", "settings"))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request, a auth) {
	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	in := parseSettings(p)
	if err := p.Err(); err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	updated, err := s.svc.Accounts.UpdateSettings(r.Context(), a.Wedding.ID, in)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	s.logChange(r, applog.ComponentDashboard, applog.OpUpdate, a, applog.FieldWeddingID, updated.ID)
	s.respondChanged(w, r, http.StatusOK, "settings", "Settings saved", updated)
}
