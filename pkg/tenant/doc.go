// Package tenant implements subdomain-based multi-tenant request routing.
//
// The resolver derives a tenant slug from the Host header; the router
// turns that into one of three decisions: rewrite to a tenant-scoped
// path, redirect unauthenticated access to protected platform paths, or
// pass through. All decisions forward the cookie set produced by the
// session refresh collaborator.
//
// Resolution never fails a request: malformed hosts degrade to the
// platform context, and session or tenant lookup failures degrade to
// anonymous or slug-only context.
package tenant
