// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore: Book persistence with tagged results (internal/services/interfaces.go)
//   - Pinger: Database reachability for /health (internal/http/stores.go)
//
// ## Side Channels
//
//   - BookAuditor: Records successful book mutations (internal/http/stores.go)
//   - AuditReader: Read access to the audit trail (internal/http/audit.go)
//   - SessionStore: Session middleware plus flash messages (internal/http/stores.go)
//   - ViewRenderer: HTML rendering, swapped for a recorder in tests (internal/http/views.go)
//
// ## Background Work
//
//   - TaskQueue: Enqueue and inspect tasks over HTTP (internal/http/tasks.go)
//   - CleanupEnqueuer: What the cron scheduler needs (internal/scheduler/audit_cleanup.go)
//   - AuditEventCleaner: What the retention task needs (internal/tasks/cleanup_audit.go)
//
// # Store Results
//
// Single-book store calls return services.BookResult instead of (value, error):
//
//	result := store.GetBook(ctx, id)
//	switch result.Kind {
//	case services.ResultOK:       // result.Book
//	case services.ResultInvalid:  // result.Errors, one per field
//	case services.ResultNotFound:
//	case services.ResultFailed:   // result.Err
//	}
//
// Handlers forward unexpected kinds to the catch-all with result.Cause().
//
// # Adding a New Store Backend
//
//  1. Implement services.BookStore:
//
//     type MongoRepository struct { coll *mongo.Collection }
//
//     func (r *MongoRepository) GetBook(ctx context.Context, id string) services.BookResult
//
//  2. Run the same validation as the GORM repository (books.Validate) before writes.
//
//  3. Add a compile-time check to checks.go:
//
//     var _ services.BookStore = (*MongoRepository)(nil)
//
//  4. Pass it as RouterConfig.Store in entrypoint.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
