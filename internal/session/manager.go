package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dashmed/dashmed/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Session keys used across the application.
const (
	KeyDoctorID      = "doctor_id"
	KeyDoctorName    = "doctor_name"
	KeyDoctorEmail   = "doctor_email"
	KeyEmailVerified = "email_verified"
)

const contextKey = "session"

// Session is the per-request view of a server-side session. Mutations are
// flushed back to the store at the end of the request.
type Session struct {
	id        string
	data      map[string]string
	dirty     bool
	destroyed bool
}

// NewDetached returns a session that lives only in memory for the current
// request, used when the store is unreachable. Tests also build sessions
// with it.
func NewDetached() *Session {
	return &Session{data: map[string]string{}}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *Session) Set(key, value string) {
	s.data[key] = value
	s.dirty = true
}

func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.dirty = true
	}
}

// DoctorID returns the authenticated doctor's id, or 0 when the session is
// anonymous.
func (s *Session) DoctorID() uint {
	raw, ok := s.data[KeyDoctorID]
	if !ok {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func (s *Session) IsAuthenticated() bool {
	return s.DoctorID() != 0
}

// Manager binds the session store to the cookie layer and exposes the
// login and logout transitions.
type Manager struct {
	store        Store
	cookieName   string
	cookieSecure bool
}

func NewManager(store Store, cookieName string, cookieSecure bool) *Manager {
	return &Manager{
		store:        store,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
	}
}

// Middleware loads the session named by the request cookie, creating a
// fresh anonymous one when the cookie is absent or stale, and flushes any
// mutation back to the store once the handler chain completes.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := m.load(c)
		c.Set(contextKey, sess)

		c.Next()

		m.save(c, sess)
	}
}

func (m *Manager) load(c *gin.Context) *Session {
	if id, err := c.Cookie(m.cookieName); err == nil && id != "" {
		data, err := m.store.Get(c.Request.Context(), id)
		if err == nil {
			return &Session{id: id, data: data}
		}
		if !errors.Is(err, ErrNotFound) {
			logger.GetLogger().Error("Failed to load session", zap.Error(err))
		}
	}

	id, err := m.store.New(c.Request.Context(), map[string]string{})
	if err != nil {
		logger.GetLogger().Error("Failed to create session", zap.Error(err))
		return NewDetached()
	}
	m.setCookie(c, id)
	return &Session{id: id, data: map[string]string{}}
}

func (m *Manager) save(c *gin.Context, sess *Session) {
	if sess.id == "" || sess.destroyed {
		return
	}
	if !sess.dirty {
		return
	}
	if err := m.store.Set(c.Request.Context(), sess.id, sess.data); err != nil {
		logger.GetLogger().Error("Failed to persist session", zap.Error(err))
	}
	sess.dirty = false
}

// LoginAs rotates the session id and records the doctor identity. Rotation
// prevents fixation: a pre-auth id handed to the browser never becomes an
// authenticated one.
func (m *Manager) LoginAs(ctx context.Context, c *gin.Context, sess *Session, doctorID uint, doctorName, email string) error {
	oldID := sess.id
	sess.data[KeyDoctorID] = strconv.FormatUint(uint64(doctorID), 10)
	sess.data[KeyDoctorName] = doctorName
	sess.data[KeyDoctorEmail] = email
	sess.data[KeyEmailVerified] = "1"

	newID, err := m.store.New(ctx, sess.data)
	if err != nil {
		return err
	}
	if oldID != "" {
		if err := m.store.Destroy(ctx, oldID); err != nil {
			logger.GetLogger().Error("Failed to destroy pre-login session", zap.Error(err))
		}
	}
	sess.id = newID
	sess.dirty = false
	m.setCookie(c, newID)
	return nil
}

// Logout destroys the session server-side and expires the cookie.
func (m *Manager) Logout(ctx context.Context, c *gin.Context, sess *Session) error {
	if sess.id != "" {
		if err := m.store.Destroy(ctx, sess.id); err != nil {
			return err
		}
	}
	sess.destroyed = true
	sess.data = map[string]string{}
	m.clearCookie(c)
	return nil
}

func (m *Manager) setCookie(c *gin.Context, id string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromContext returns the session attached by Middleware. It panics when
// the middleware is not installed, which is a wiring bug.
func FromContext(c *gin.Context) *Session {
	return c.MustGet(contextKey).(*Session)
}
