package http

import (
	"net/http"

	"wedplan/internal/core"
	applog "wedplan/internal/log"
)

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request, a auth) {
	board, err := s.svc.Tasks.Board(r.Context(), a.Wedding.ID)
	if err != nil {
		s.respondError(w, r, applog.OpList, err)
		return
	}
	s.respond(w, r, "tasks.html", "task_section", board, newPage(a, "Tasks", "tasks"))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, a auth) {
	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	in := parseTask(p)
	if err := p.Err(); err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	t, err := s.svc.Tasks.Create(r.Context(), a.Wedding.ID, in)
	if err != nil {
		s.respondError(w, r, applog.OpCreate, err)
		return
	}
	s.logChange(r, applog.ComponentTasks, applog.OpCreate, a, applog.FieldTaskID, t.ID)
	s.respondChanged(w, r, http.StatusCreated, "tasks", "Task added", t)
}

// handleTask returns one task, or its edit form for htmx.
func (s *Server) handleTask(w http.ResponseWriter, r *http.Request, a auth) {
	t, err := s.svc.Tasks.Get(r.Context(), a.Wedding.ID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, applog.OpRead, err)
		return
	}
	if wantsJSON(r) {
		NewHTMXResponse().BodyJSON(t).Write(w)
		return
	}
	page := newPage(a, "Edit task", "tasks")
	page.Data = t
	s.render(w, r, http.StatusOK, "task_form", page)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, a auth) {
	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	in := parseTask(p)
	if err := p.Err(); err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	t, err := s.svc.Tasks.Update(r.Context(), a.Wedding.ID, r.PathValue("id"), in)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	s.logChange(r, applog.ComponentTasks, applog.OpUpdate, a, applog.FieldTaskID, t.ID)
	s.respondChanged(w, r, http.StatusOK, "tasks", "Task updated", t)
}

// handlePatchTask changes only the fields present in the body.
func (s *Server) handlePatchTask(w http.ResponseWriter, r *http.Request, a auth) {
	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	patch := parseTaskPatch(p)
	if err := p.Err(); err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	t, err := s.svc.Tasks.Patch(r.Context(), a.Wedding.ID, r.PathValue("id"), patch)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	s.logChange(r, applog.ComponentTasks, applog.OpUpdate, a, applog.FieldTaskID, t.ID)
	s.respondChanged(w, r, http.StatusOK, "tasks", "Task updated", t)
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request, a auth) {
	p, err := ParseRequest(r)
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	t, err := s.svc.Tasks.SetStatus(r.Context(), a.Wedding.ID, r.PathValue("id"), core.TaskStatus(p.Get("status")))
	if err != nil {
		s.respondError(w, r, applog.OpUpdate, err)
		return
	}
	s.logChange(r, applog.ComponentTasks, applog.OpUpdate, a, applog.FieldTaskID, t.ID)
	s.respondChanged(w, r, http.StatusOK, "tasks", "Moved to "+core.Label(string(t.Status)), t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, a auth) {
	id := r.PathValue("id")
	if err := s.svc.Tasks.Delete(r.Context(), a.Wedding.ID, id); err != nil {
		s.respondError(w, r, applog.OpDelete, err)
		return
	}
	s.logChange(r, applog.ComponentTasks, applog.OpDelete, a, applog.FieldTaskID, id)
	s.respondChanged(w, r, http.StatusOK, "tasks", "Task removed", nil)
}
