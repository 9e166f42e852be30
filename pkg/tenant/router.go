package tenant

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thefrankalbert/attabl/pkg/session"
)

// SlugHeader is set on rewritten responses so downstream layers can read
// the tenant identity without re-deriving it from the host.
const SlugHeader = "x-tenant-slug"

// SitesPrefix is the tenant-scoped path segment requests are rewritten to.
const SitesPrefix = "/sites"

// DefaultProtectedPrefixes are the platform paths that require an
// authenticated session.
var DefaultProtectedPrefixes = []string{"/admin", "/account", "/onboarding"}

// DecisionKind classifies the routing outcome for a request.
type DecisionKind int

const (
	// DecisionPass serves the request as-is (platform context).
	DecisionPass DecisionKind = iota
	// DecisionRewrite rewrites the path to a tenant-scoped route.
	DecisionRewrite
	// DecisionRedirect sends the client to the login page.
	DecisionRedirect
)

// Decision is the routing outcome for one request. Every variant carries
// the cookie set produced by the session refresh step; whoever writes the
// response must apply Cookies or authentication persistence silently breaks.
type Decision struct {
	Kind     DecisionKind
	Slug     string // resolved tenant slug, "" for platform context
	Path     string // rewritten path (DecisionRewrite only)
	Location string // redirect target (DecisionRedirect only)
	Identity *session.Identity
	Cookies  []*http.Cookie
}

// Router maps inbound requests to routing decisions: subdomain requests
// are rewritten to tenant-scoped paths, platform requests are gated on
// authentication for protected prefixes.
type Router struct {
	refresher   session.Refresher
	provider    Provider
	cache       Cache
	cacheTTL    time.Duration
	protected   []string
	loginPath   string
	log         *slog.Logger
	pathResolve Resolver
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithProvider enables tenant record loading for rewritten requests.
func WithProvider(p Provider) RouterOption {
	return func(rt *Router) { rt.provider = p }
}

// WithCache sets the tenant cache used in front of the provider.
func WithCache(c Cache, ttl time.Duration) RouterOption {
	return func(rt *Router) {
		rt.cache = c
		if ttl > 0 {
			rt.cacheTTL = ttl
		}
	}
}

// WithProtectedPrefixes overrides the protected platform path prefixes.
func WithProtectedPrefixes(prefixes ...string) RouterOption {
	return func(rt *Router) { rt.protected = prefixes }
}

// WithLoginPath overrides the redirect target for unauthenticated access.
func WithLoginPath(path string) RouterOption {
	return func(rt *Router) { rt.loginPath = path }
}

// WithLogger sets the router's logger.
func WithLogger(log *slog.Logger) RouterOption {
	return func(rt *Router) { rt.log = log }
}

// NewRouter creates a tenant router. The refresher is the session
// collaborator; its failures are treated as "not logged in", never as
// request failures.
func NewRouter(refresher session.Refresher, opts ...RouterOption) *Router {
	rt := &Router{
		refresher:   refresher,
		cacheTTL:    5 * time.Minute,
		protected:   DefaultProtectedPrefixes,
		loginPath:   "/login",
		log:         slog.Default(),
		pathResolve: NewPathResolver(SitesPrefix),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Decide computes the routing decision for a request. It performs the
// single upstream session-refresh call and never fails the request:
// hostname parsing degrades to platform context and refresh errors
// degrade to anonymous.
func (rt *Router) Decide(r *http.Request) Decision {
	identity, cookies, err := rt.refresher.Refresh(r.Context(), r)
	if err != nil {
		rt.log.WarnContext(r.Context(), "session refresh failed, treating as anonymous", "error", err)
		identity, cookies = nil, nil
	}

	d := Decision{Kind: DecisionPass, Identity: identity, Cookies: cookies}

	// The leading www label means the platform site, not a tenant.
	if slug := Subdomain(r.Host); slug != "" && slug != "www" {
		d.Kind = DecisionRewrite
		d.Slug = slug
		d.Path = SitesPrefix + "/" + slug + r.URL.Path
		return d
	}

	// Direct tenant-scoped access on the platform domain: attach the
	// slug without rewriting.
	if slug := rt.pathResolve(r); slug != "" {
		d.Slug = slug
		return d
	}

	if rt.isProtected(r.URL.Path) && identity == nil {
		d.Kind = DecisionRedirect
		d.Location = rt.loginPath + "?redirect=" + url.QueryEscape(r.URL.Path)
		return d
	}

	return d
}

func (rt *Router) isProtected(path string) bool {
	for _, prefix := range rt.protected {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware applies routing decisions: it forwards refreshed session
// cookies on every branch, rewrites tenant-scoped requests, attaches the
// slug (and the tenant record when a provider is configured) to the
// request context, and redirects unauthenticated protected-path access.
func (rt *Router) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := rt.Decide(r)

		// Cookie forwarding is the correctness hazard here: all
		// response variants carry the refreshed session cookies.
		for _, c := range d.Cookies {
			http.SetCookie(w, c)
		}

		ctx := r.Context()
		if d.Identity != nil {
			ctx = session.WithIdentity(ctx, d.Identity)
		}

		switch d.Kind {
		case DecisionRedirect:
			http.Redirect(w, r.WithContext(ctx), d.Location, http.StatusFound)
			return

		case DecisionRewrite:
			w.Header().Set(SlugHeader, d.Slug)
			r.URL.Path = d.Path
			r.URL.RawPath = ""
		}

		if d.Slug != "" {
			ctx = WithSlug(ctx, d.Slug)
			if t := rt.load(ctx, d.Slug); t != nil {
				// Deactivated tenants keep their data but their site
				// is gone from the outside.
				if !t.Active {
					rt.log.InfoContext(ctx, "blocked deactivated tenant",
						"slug", d.Slug, "error", ErrInactiveTenant)
					http.NotFound(w, r.WithContext(ctx))
					return
				}
				ctx = WithTenant(ctx, t)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// load fetches the tenant record through the cache. Lookup failures are
// logged and degrade to slug-only context rather than failing the request.
func (rt *Router) load(ctx context.Context, slug string) *Tenant {
	if rt.provider == nil {
		return nil
	}

	if rt.cache != nil {
		if t, ok := rt.cache.Get(ctx, slug); ok {
			return t
		}
	}

	t, err := rt.provider.GetBySlug(ctx, slug)
	if err != nil {
		rt.log.WarnContext(ctx, "tenant lookup failed", "slug", slug, "error", err)
		return nil
	}

	if rt.cache != nil {
		rt.cache.Set(ctx, slug, t, rt.cacheTTL)
	}
	return t
}
