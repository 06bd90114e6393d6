// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (errors.go, session.go, command.go, action.go, backend.go)
// with shared types and cross-cutting interfaces. No goroutines or I/O here - just contracts.
// Keeps session, backend and transport packages free of import cycles.
package domain
