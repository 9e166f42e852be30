package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"
)

// Refresher is the session-refresh collaborator consumed by the tenant
// router. Given the request's cookies it returns the authenticated
// identity (nil when anonymous) and the cookie set to forward onto
// whichever response is ultimately written. Losing those cookies breaks
// authentication persistence, so callers must apply them on every
// response variant.
type Refresher interface {
	Refresh(ctx context.Context, r *http.Request) (*Identity, []*http.Cookie, error)
}

// RefresherFunc adapts a function to the Refresher interface.
type RefresherFunc func(ctx context.Context, r *http.Request) (*Identity, []*http.Cookie, error)

func (f RefresherFunc) Refresh(ctx context.Context, r *http.Request) (*Identity, []*http.Cookie, error) {
	return f(ctx, r)
}

// Config holds cookie-backed session manager settings.
type Config struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"attabl_session"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	Secure     bool          `env:"SESSION_SECURE_COOKIES" envDefault:"true"`
}

// Manager is a cookie-token session manager with sliding expiry. Every
// Refresh re-issues the cookie with a fresh deadline, which is why the
// router must propagate returned cookies on all branches.
type Manager struct {
	store  Store
	config Config
}

// NewManager creates a session manager backed by the given store.
// A nil store falls back to the in-memory implementation.
func NewManager(store Store, cfg Config) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "attabl_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	return &Manager{store: store, config: cfg}
}

// Refresh implements Refresher. A missing, unknown, or expired token
// yields a nil identity and no cookies; it is never an error the router
// would fail a request over.
func (m *Manager) Refresh(ctx context.Context, r *http.Request) (*Identity, []*http.Cookie, error) {
	c, err := r.Cookie(m.config.CookieName)
	if err != nil || c.Value == "" {
		return nil, nil, nil
	}

	sess, err := m.store.Get(ctx, c.Value)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if sess.IsExpired() {
		_ = m.store.Delete(ctx, sess.Token)
		return nil, nil, nil
	}

	// Sliding expiry: extend and re-issue the cookie.
	sess.ExpiresAt = time.Now().Add(m.config.TTL)
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, nil, err
	}

	return sess.Identity, []*http.Cookie{m.cookie(sess.Token)}, nil
}

// Authenticate creates an authenticated session and returns the cookie
// to set on the response.
func (m *Manager) Authenticate(ctx context.Context, identity Identity) (*http.Cookie, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		Token:     token,
		Identity:  &identity,
		ExpiresAt: now.Add(m.config.TTL),
		CreatedAt: now,
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return m.cookie(token), nil
}

// Logout destroys the session behind the request's cookie and returns
// an expired cookie to clear it client-side.
func (m *Manager) Logout(ctx context.Context, r *http.Request) (*http.Cookie, error) {
	if c, err := r.Cookie(m.config.CookieName); err == nil && c.Value != "" {
		if err := m.store.Delete(ctx, c.Value); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
	}
	expired := m.cookie("")
	expired.MaxAge = -1
	return expired, nil
}

func (m *Manager) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     m.config.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrFailedToGenerateToken, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
