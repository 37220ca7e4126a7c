package http

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"wedplan/internal/core"
	applog "wedplan/internal/log"
)

// wantsJSON reports whether the client asked for JSON instead of HTML.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// formatMoney renders an amount as "€1,234.50".
func formatMoney(m core.Money) string {
	s := humanize.FormatFloat("#,###.##", m.Decimal().Abs().InexactFloat64())
	if m.Cents < 0 {
		return "-€" + s
	}
	return "€" + s
}

// formatDate renders a date as "Sep 12, 2026", or a dash when empty.
func formatDate(d core.Date) string {
	if d.IsEmpty() {
		return "—"
	}
	return d.Format("Jan 2, 2006")
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":   formatMoney,
		"date":    formatDate,
		"isodate": func(d core.Date) string { return d.String() },
		"label":   func(v any) string { return core.Label(fmt.Sprint(v)) },
		"badge":   func(v any) core.Badge { return core.BadgeFor(fmt.Sprint(v)) },
		"ago":     func(t time.Time) string { return humanize.Time(t) },
		"percent": func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
		"width": func(f float64) float64 {
			if f > 100 {
				return 100
			}
			if f < 0 {
				return 0
			}
			return f
		},
		"str": func(v any) string { return fmt.Sprint(v) },
	}
}

// parseTemplates loads every page and fragment from fsys.
func parseTemplates(fsys fs.FS) (*template.Template, error) {
	return template.New("").Funcs(templateFuncs()).ParseFS(fsys, "templates/*.html")
}

// render executes a named template into a buffer first so that a template
// error never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			"template", name, applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			"template", name,
			applog.FieldError, err)
		InternalServerError("Error rendering page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// respond writes v as JSON or renders the page, or only its fragment for
// htmx requests.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, page, fragment string, v any, data pageData) {
	if wantsJSON(r) {
		NewHTMXResponse().BodyJSON(v).Write(w)
		return
	}
	data.Data = v
	if isHTMX(r) && fragment != "" && r.Header.Get("HX-Target") != "" {
		s.render(w, r, http.StatusOK, fragment, data)
		return
	}
	s.render(w, r, http.StatusOK, page, data)
}

// respondChanged acknowledges a mutation. JSON clients get the record;
// htmx gets triggers that reload section; classic forms are redirected.
func (s *Server) respondChanged(w http.ResponseWriter, r *http.Request, status int, section, message string, v any) {
	switch {
	case wantsJSON(r):
		if v == nil {
			v = map[string]string{"message": message}
		}
		NewHTMXResponse().Status(status).BodyJSON(v).Write(w)
	case isHTMX(r):
		NewHTMXResponse().
			Status(status).
			TriggerChanged(section).
			TriggerFormReset().
			TriggerSuccessNotification(message).
			Write(w)
	default:
		http.Redirect(w, r, "/"+section, http.StatusSeeOther)
	}
}

// respondError maps service errors onto status codes.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verrs core.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		if wantsJSON(r) {
			JSONValidationError(verrs).Write(w)
		} else {
			UnprocessableEntityError(verrs).Write(w)
		}
	case errors.Is(err, errBadBody):
		s.respondStatus(w, r, http.StatusBadRequest, "Malformed request body.")
	case errors.Is(err, core.ErrNotFound):
		s.respondStatus(w, r, http.StatusNotFound, "Not found.")
	default:
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, applog.ErrorTypeInternal, applog.ComponentHTTP, op)
		s.respondStatus(w, r, http.StatusInternalServerError, "Server Error")
	}
}

func (s *Server) respondStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		JSONErrorResponse(status, message).Write(w)
		return
	}
	ErrorResponse(status, message).Write(w)
}
