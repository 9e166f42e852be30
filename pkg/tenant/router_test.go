package tenant_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thefrankalbert/attabl/pkg/session"
	"github.com/thefrankalbert/attabl/pkg/tenant"
)

// stubRefresher returns a fixed identity and cookie set.
type stubRefresher struct {
	identity *session.Identity
	cookies  []*http.Cookie
	err      error
}

func (s *stubRefresher) Refresh(ctx context.Context, r *http.Request) (*session.Identity, []*http.Cookie, error) {
	return s.identity, s.cookies, s.err
}

var refreshedCookie = &http.Cookie{Name: "attabl_session", Value: "tok123", Path: "/"}

func TestDecideRewrite(t *testing.T) {
	t.Parallel()

	rt := tenant.NewRouter(&stubRefresher{cookies: []*http.Cookie{refreshedCookie}})

	r := httptest.NewRequest(http.MethodGet, "http://radisson.example.com/admin?tab=menu", nil)
	r.Host = "radisson.example.com"

	d := rt.Decide(r)
	assert.Equal(t, tenant.DecisionRewrite, d.Kind)
	assert.Equal(t, "radisson", d.Slug)
	assert.Equal(t, "/sites/radisson/admin", d.Path)
	require.Len(t, d.Cookies, 1, "rewrite decision must carry refreshed cookies")
}

func TestDecideWWWIsPlatform(t *testing.T) {
	t.Parallel()

	rt := tenant.NewRouter(&stubRefresher{})

	r := httptest.NewRequest(http.MethodGet, "http://www.example.com/pricing", nil)
	r.Host = "www.example.com"

	d := rt.Decide(r)
	assert.Equal(t, tenant.DecisionPass, d.Kind)
	assert.Empty(t, d.Slug)
}

func TestDecideProtectedRedirect(t *testing.T) {
	t.Parallel()

	rt := tenant.NewRouter(&stubRefresher{cookies: []*http.Cookie{refreshedCookie}})

	r := httptest.NewRequest(http.MethodGet, "http://example.com/admin", nil)
	r.Host = "example.com"

	d := rt.Decide(r)
	assert.Equal(t, tenant.DecisionRedirect, d.Kind)
	assert.Equal(t, "/login?redirect=%2Fadmin", d.Location)
	require.Len(t, d.Cookies, 1, "redirect decision must carry refreshed cookies")
}

func TestDecideProtectedAuthenticated(t *testing.T) {
	t.Parallel()

	identity := &session.Identity{UserID: uuid.New()}
	rt := tenant.NewRouter(&stubRefresher{identity: identity})

	r := httptest.NewRequest(http.MethodGet, "http://example.com/admin", nil)
	r.Host = "example.com"

	d := rt.Decide(r)
	assert.Equal(t, tenant.DecisionPass, d.Kind)
	assert.Same(t, identity, d.Identity)
}

func TestDecideDirectSitesPath(t *testing.T) {
	t.Parallel()

	rt := tenant.NewRouter(&stubRefresher{})

	r := httptest.NewRequest(http.MethodGet, "http://example.com/sites/radisson/menu", nil)
	r.Host = "example.com"

	d := rt.Decide(r)
	assert.Equal(t, tenant.DecisionPass, d.Kind, "explicit sites path is not rewritten")
	assert.Equal(t, "radisson", d.Slug)
}

func TestDecideRefreshFailureIsAnonymous(t *testing.T) {
	t.Parallel()

	rt := tenant.NewRouter(&stubRefresher{err: errors.New("auth service down")})

	r := httptest.NewRequest(http.MethodGet, "http://example.com/admin", nil)
	r.Host = "example.com"

	d := rt.Decide(r)
	assert.Equal(t, tenant.DecisionRedirect, d.Kind, "refresh failure means not logged in")
}

func TestMiddlewareRewrite(t *testing.T) {
	t.Parallel()

	rt := tenant.NewRouter(&stubRefresher{cookies: []*http.Cookie{refreshedCookie}})

	var gotPath, gotSlug string
	handler := rt.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSlug, _ = tenant.SlugFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "http://radisson.example.com/admin", nil)
	r.Host = "radisson.example.com"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, "/sites/radisson/admin", gotPath)
	assert.Equal(t, "radisson", gotSlug)
	assert.Equal(t, "radisson", w.Header().Get("x-tenant-slug"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "tok123", cookies[0].Value)
}

func TestMiddlewareRedirectForwardsCookies(t *testing.T) {
	t.Parallel()

	rt := tenant.NewRouter(&stubRefresher{cookies: []*http.Cookie{refreshedCookie}})

	handler := rt.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on redirect")
	}))

	r := httptest.NewRequest(http.MethodGet, "http://example.com/admin", nil)
	r.Host = "example.com"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirect=%2Fadmin", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1, "session cookies survive the redirect")
	assert.Equal(t, "tok123", cookies[0].Value)
}

// stubProvider serves one tenant and counts lookups.
type stubProvider struct {
	t     *tenant.Tenant
	calls int
}

func (p *stubProvider) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	p.calls++
	if p.t != nil && p.t.Slug == slug {
		return p.t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func TestMiddlewareLoadsTenantThroughCache(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{t: &tenant.Tenant{
		ID:       uuid.New(),
		Slug:     "radisson",
		Name:     "Radisson",
		PlanTier: "premium",
		Status:   "active",
		Active:   true,
	}}
	cache := tenant.NewMemoryCache(10)
	t.Cleanup(func() { _ = cache.Close() })

	rt := tenant.NewRouter(&stubRefresher{},
		tenant.WithProvider(provider),
		tenant.WithCache(cache, time.Minute),
	)

	var loaded *tenant.Tenant
	handler := rt.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loaded, _ = tenant.FromContext(r.Context())
	}))

	for range 3 {
		r := httptest.NewRequest(http.MethodGet, "http://radisson.example.com/menu", nil)
		r.Host = "radisson.example.com"
		handler.ServeHTTP(httptest.NewRecorder(), r)
	}

	require.NotNil(t, loaded)
	assert.Equal(t, "Radisson", loaded.Name)
	assert.Equal(t, 1, provider.calls, "subsequent requests hit the cache")
}

func TestMiddlewareBlocksDeactivatedTenant(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{t: &tenant.Tenant{
		ID:       uuid.New(),
		Slug:     "radisson",
		Name:     "Radisson",
		PlanTier: "premium",
		Status:   "active",
		Active:   false,
	}}

	rt := tenant.NewRouter(&stubRefresher{cookies: []*http.Cookie{refreshedCookie}},
		tenant.WithProvider(provider),
	)

	handler := rt.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a deactivated tenant")
	}))

	r := httptest.NewRequest(http.MethodGet, "http://radisson.example.com/menu", nil)
	r.Host = "radisson.example.com"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1, "session cookies survive the 404")
}

func TestMiddlewareLookupFailureDegrades(t *testing.T) {
	t.Parallel()

	rt := tenant.NewRouter(&stubRefresher{}, tenant.WithProvider(&stubProvider{}))

	var slug string
	var hasRecord bool
	handler := rt.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug, _ = tenant.SlugFromContext(r.Context())
		_, hasRecord = tenant.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "http://ghost.example.com/menu", nil)
	r.Host = "ghost.example.com"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code, "lookup failure never fails the request")
	assert.Equal(t, "ghost", slug)
	assert.False(t, hasRecord)
}
