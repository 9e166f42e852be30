package tenant

import (
	"net/http"
	"regexp"
	"strings"
)

// MaxSlugLength keeps slugs DNS-compatible (a single label).
const MaxSlugLength = 63

// slugPattern ensures DNS-safe slugs: alphanumeric start, hyphens allowed.
var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// localSuffix is the local-development hostname convention: the label
// preceding a bare "localhost" is the tenant slug.
const localSuffix = ".localhost"

// IsValidSlug reports whether s is usable as a tenant routing slug.
func IsValidSlug(s string) bool {
	return s != "" && len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}

// Subdomain extracts the tenant slug from a raw Host header value.
//
// It is a pure function: no I/O, deterministic, and it never fails —
// malformed hosts degrade to "" (platform context) rather than erroring,
// so the worst case is serving the marketing experience. The literal
// "www" label is returned as-is; the router treats it as no tenant.
//
// The canonical site is assumed to be a two-label root domain
// (e.g. example.com); deeper canonical domains would mis-resolve their
// first label as a slug.
func Subdomain(host string) string {
	if host == "" {
		return ""
	}

	// Strip the port suffix.
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	host = strings.ToLower(strings.TrimSpace(host))

	// Local development: "radisson.localhost" -> "radisson",
	// bare "localhost" -> platform context.
	if host == "localhost" {
		return ""
	}
	if strings.HasSuffix(host, localSuffix) {
		label := strings.TrimSuffix(host, localSuffix)
		if parts := strings.Split(label, "."); len(parts) > 0 {
			label = parts[len(parts)-1]
		}
		if !IsValidSlug(label) {
			return ""
		}
		return label
	}

	parts := strings.Split(host, ".")
	// Two labels is the root domain; fewer is malformed. Neither has a tenant.
	if len(parts) <= 2 {
		return ""
	}

	slug := parts[0]
	if slug != "www" && !IsValidSlug(slug) {
		return ""
	}
	return slug
}

// Resolver extracts a tenant slug from an HTTP request.
// Returns empty string if no tenant is found.
type Resolver func(r *http.Request) string

// NewSubdomainResolver resolves the slug from the request's Host header.
func NewSubdomainResolver() Resolver {
	return func(r *http.Request) string {
		return Subdomain(r.Host)
	}
}

// NewPathResolver resolves the slug from a path of the form
// /{prefix}/{slug}/..., used for direct tenant-scoped access on the
// platform domain.
func NewPathResolver(prefix string) Resolver {
	prefix = "/" + strings.Trim(prefix, "/") + "/"
	return func(r *http.Request) string {
		if !strings.HasPrefix(r.URL.Path, prefix) {
			return ""
		}
		rest := strings.TrimPrefix(r.URL.Path, prefix)
		slug, _, _ := strings.Cut(rest, "/")
		if !IsValidSlug(slug) {
			return ""
		}
		return slug
	}
}

// NewCompositeResolver tries resolvers in order, returning the first
// non-empty slug.
func NewCompositeResolver(resolvers ...Resolver) Resolver {
	return func(r *http.Request) string {
		for _, resolve := range resolvers {
			if slug := resolve(r); slug != "" {
				return slug
			}
		}
		return ""
	}
}
