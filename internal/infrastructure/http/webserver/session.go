package webserver

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/infrastructure/config"
)

type sessionKey struct{}

// SessionIDFromContext returns the browser session id set by the session
// middleware, or "" outside a request
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// SessionManager issues the cookie that identifies a browser session.
// The cookie only carries an opaque id; draft data lives server side.
type SessionManager struct {
	cookieName string
	ttl        time.Duration
	secure     bool
	logger     *zap.Logger
}

// NewSessionManager creates a session manager from the session config
func NewSessionManager(cfg config.SessionConfig, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
		logger:     logger.Named("session"),
	}
}

// Middleware attaches the session id to the request context, issuing a
// new cookie when the request has none or carries an invalid one
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.read(r)
		if !ok {
			id = uuid.NewString()
			m.write(w, id)
			m.logger.Debug("New session issued", zap.String("session_id", id))
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionManager) read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}

	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (m *SessionManager) write(w http.ResponseWriter, id string) {
	cookie := &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if m.ttl > 0 {
		cookie.MaxAge = int(m.ttl.Seconds())
		cookie.Expires = time.Now().Add(m.ttl)
	}

	http.SetCookie(w, cookie)
}
