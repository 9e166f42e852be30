package tenant

import (
	"context"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// slugKey keys the routing slug separately from the loaded record, since
// the slug is always available while the record depends on a provider.
type slugKey struct{}

// WithTenant adds a tenant record to the context.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tenant record from the context.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok && t != nil
}

// WithSlug adds the resolved routing slug to the context.
func WithSlug(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, slugKey{}, slug)
}

// SlugFromContext retrieves the routing slug from the context.
func SlugFromContext(ctx context.Context) (string, bool) {
	slug, ok := ctx.Value(slugKey{}).(string)
	return slug, ok && slug != ""
}

// LoggerExtractor returns a logger context extractor that annotates log
// records with the tenant slug.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if slug, ok := SlugFromContext(ctx); ok {
			return slog.String("tenant", slug), true
		}
		return slog.Attr{}, false
	}
}
