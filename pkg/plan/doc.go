// Package plan implements the subscription plan enforcement engine.
//
// The engine is a pure function library over three tenant fields (tier,
// status, trial deadline). It derives the effective plan, resolves
// resource caps and feature flags from a static catalog, and exposes
// the predicates server-side guards branch on before mutating data.
//
// Every call is independent and reads wall-clock time at most once, so
// the package is safe under any concurrency model. Nothing here performs
// I/O; counting resource usage and enforcing status transitions belong
// to the callers.
package plan
