package http

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"wedplan/internal/cache"
	"wedplan/internal/core"
	applog "wedplan/internal/log"
	"wedplan/internal/middleware/security"
)

const sessionCookie = "wedplan_session"

// session is the server-side state behind a session cookie.
type session struct {
	UserID    string
	WeddingID string
	CreatedAt time.Time
}

// auth is what authenticated handlers receive.
type auth struct {
	Token   string
	User    core.User
	Wedding core.Wedding
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func newSessionStore(size int, ttl time.Duration) *cache.LRUCache[session] {
	return cache.NewSlidingCache[session](size, ttl)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user core.User, wedding core.Wedding) error {
	token, err := newSessionToken()
	if err != nil {
		return err
	}
	s.sessions.Set(token, session{UserID: user.ID, WeddingID: wedding.ID, CreatedAt: time.Now().UTC()})
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
	applog.FromContext(r.Context()).WithComponent(applog.ComponentSession).InfoContext(r.Context(), "Session started",
		applog.FieldUserID, user.ID,
		applog.FieldWeddingID, wedding.ID)
	return nil
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

var errNoSession = errors.New("no session")

// currentAuth resolves the cookie to the user and their wedding. Sessions of
// users whose records vanished are dropped.
func (s *Server) currentAuth(ctx context.Context, r *http.Request) (auth, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return auth{}, errNoSession
	}
	sess, ok := s.sessions.Get(c.Value)
	if !ok {
		return auth{}, errNoSession
	}

	user, err := s.svc.Accounts.User(ctx, sess.UserID)
	if errors.Is(err, core.ErrNotFound) {
		s.sessions.Delete(c.Value)
		return auth{}, errNoSession
	}
	if err != nil {
		return auth{}, err
	}
	wedding, err := s.svc.Accounts.WeddingFor(ctx, user.ID)
	if errors.Is(err, core.ErrNoWedding) {
		s.sessions.Delete(c.Value)
		return auth{}, errNoSession
	}
	if err != nil {
		return auth{}, err
	}
	return auth{Token: c.Value, User: user, Wedding: wedding}, nil
}

// authHandler runs h with the signed-in user and a bounded context.
type authHandler func(w http.ResponseWriter, r *http.Request, a auth)

// Responses are marked uncacheable.
func (s *Server) authed(h authHandler) http.Handler {
	return security.NoStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		r = r.WithContext(ctx)

		a, err := s.currentAuth(ctx, r)
		if errors.Is(err, errNoSession) {
			s.unauthenticated(w, r)
			return
		}
		if err != nil {
			s.respondError(w, r, applog.OpRead, err)
			return
		}

		logger := applog.FromContext(ctx).With(applog.FieldUserID, a.User.ID, applog.FieldWeddingID, a.Wedding.ID)
		h(w, r.WithContext(applog.WithLogger(ctx, logger)), a)
	}))
}

func (s *Server) unauthenticated(w http.ResponseWriter, r *http.Request) {
	switch {
	case wantsJSON(r):
		JSONErrorResponse(http.StatusUnauthorized, "Unauthenticated.").Write(w)
	case isHTMX(r):
		NewHTMXResponse().Status(http.StatusUnauthorized).Redirect("/login").Write(w)
	default:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
