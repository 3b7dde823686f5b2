package http

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Store    BookStore
	Database Pinger

	// Optional collaborators; nil disables the feature.
	Auditor  BookAuditor
	AuditLog AuditReader
	Sessions SessionStore

	// Task queue (optional) and the retention handed to on-demand sweeps
	TaskQueue          TaskQueue
	AuditRetentionDays int

	// Views overrides the embedded HTML templates (tests).
	Views ViewRenderer

	// CSRF protection is enabled when a secret is given.
	CSRFSecret    []byte
	SecureCookies bool

	// StaticPath serves assets from disk; empty uses the embedded stylesheet.
	StaticPath string

	// Title of the book listing page
	LibraryTitle string

	// Application info
	Version string
}
