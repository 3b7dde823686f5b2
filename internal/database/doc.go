// Package database provides the data access layer for the catalog.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (SQLite or PostgreSQL) and migrations
//	├── books/           # Book CRUD and search, implements services.BookStore
//	└── audit/           # Audit trail of book changes
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
//	result := booksRepo.GetBook(ctx, "42")
//
// # Drivers
//
// SQLite is the default and keeps everything in one file. PostgreSQL is
// selected with DATABASE_DRIVER=postgres and DATABASE_DSN. Search uses the
// driver's LIKE collation, so it is case-insensitive on SQLite (ASCII) and
// case-sensitive on PostgreSQL.
package database
