// Package security holds the HTTP hardening layer of the catalog: security
// headers, CSRF protection for the HTML forms, request IDs, and the
// session manager that carries one-shot flash messages across redirects.
package security
