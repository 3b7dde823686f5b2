package config

const (
	// DefaultDatabasePath is the default path for the SQLite catalog database
	DefaultDatabasePath = "./library.db"

	// DefaultLibraryTitle is shown on the book listing page
	DefaultLibraryTitle = "My SQL Library"
)
