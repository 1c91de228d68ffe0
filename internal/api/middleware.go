package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/perfura/storefront/internal/app"
	"github.com/rs/zerolog"
)

const (
	themeCookie     = "perfura-dark-mode"
	colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"
)

type contextKey int

const stateKey contextKey = iota

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(recorder, r)

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", recorder.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

// clientState attaches the caller's state to the request, issuing a session
// cookie to first-time clients.
func (s *Server) clientState(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(s.session.CookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				sid = c.Value
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     s.session.CookieName,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.session.SecureOnly,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set("Accept-CH", colorSchemeHint)

		state := s.registry.Get(r.Context(), sid, prefersDark(r))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), stateKey, state)))
	})
}

func stateFrom(r *http.Request) *app.State {
	return r.Context().Value(stateKey).(*app.State)
}

// prefersDark reads the saved theme, falling back to the client's reported
// color scheme.
func prefersDark(r *http.Request) bool {
	if c, err := r.Cookie(themeCookie); err == nil {
		if dark, err := strconv.ParseBool(c.Value); err == nil {
			return dark
		}
	}
	return strings.Trim(r.Header.Get(colorSchemeHint), `" `) == "dark"
}

func setThemeCookie(w http.ResponseWriter, dark bool, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    strconv.FormatBool(dark),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireAdmin accepts requests carrying "Authorization: Bearer <admin token>".
// Without a configured token the operator routes do not exist.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			http.NotFound(w, r)
			return
		}

		fields := strings.Fields(r.Header.Get("Authorization"))
		if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") ||
			subtle.ConstantTimeCompare([]byte(fields[1]), []byte(s.adminToken)) != 1 {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
