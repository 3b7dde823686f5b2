package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	auditRepo "github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/services"
)

// SeedCommand loads books from a JSON file into the catalog.
type SeedCommand struct {
	FilePath     string
	Driver       string
	DatabasePath string
	DSN          string
	Verbose      bool
	DryRun       bool
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to a JSON array of books (required)")
	fs.StringVar(&cmd.Driver, "driver", string(config.DriverSQLite), "Database driver: sqlite or postgres")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the SQLite catalog database")
	fs.StringVar(&cmd.DSN, "dsn", "", "PostgreSQL connection string (with -driver postgres)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every book as it is processed")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the file without writing to the database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create books from a JSON file. Each entry is an object with\n")
		fmt.Fprintf(os.Stderr, "\"title\", \"author\", \"genre\" and \"year\" keys. Entries that fail\n")
		fmt.Fprintf(os.Stderr, "validation are reported and skipped.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s seed -file books.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s seed -file books.json -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *SeedCommand) Run() error {
	fmt.Println("Seed Books")
	fmt.Println("==========")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("seed file not found: %s", cmd.FilePath)
		}
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer file.Close()

	fmt.Printf("File: %s\n", cmd.FilePath)

	records, err := LoadSeedRecords(file)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d books\n", len(records))
	if len(records) == 0 {
		return nil
	}

	if cmd.DryRun {
		report, err := CheckSeedRecords(records)
		if err != nil {
			return err
		}
		cmd.printReport(report, "Would create")
		return nil
	}

	db, err := database.NewDatabase(config.Database{
		Driver: config.DatabaseDriver(cmd.Driver),
		Path:   cmd.DatabasePath,
		DSN:    cmd.DSN,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	defer auditService.Wait()

	report, err := SeedBooks(context.Background(), books.NewRepository(db.DB), records)
	auditService.LogSeed(fmt.Sprintf("Seeded %d books from %s (%d skipped)",
		report.Created, cmd.FilePath, len(report.Rejected)), err)
	if err != nil {
		return err
	}

	cmd.printReport(report, "Created")
	return nil
}

func (cmd *SeedCommand) printReport(report SeedReport, verb string) {
	if cmd.Verbose {
		fmt.Println("\n=== Books ===")
		for _, title := range report.Accepted {
			fmt.Printf("  + %s\n", title)
		}
	}

	if len(report.Rejected) > 0 {
		fmt.Println("\n=== Skipped ===")
		for _, r := range report.Rejected {
			fmt.Printf("  #%d %q\n", r.Index+1, r.Title)
			for _, fe := range r.Errors {
				fmt.Printf("      %s: %s\n", fe.Field, fe.Message)
			}
		}
	}

	fmt.Printf("\n%s %d books, skipped %d\n", verb, report.Created, len(report.Rejected))
}

// SeedRecord is one entry of a seed file.
type SeedRecord struct {
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Genre  string   `json:"genre"`
	Year   seedYear `json:"year"`
}

// Attributes converts the record to the form a BookStore accepts.
func (r SeedRecord) Attributes() services.Attributes {
	return services.Attributes{
		"title":  r.Title,
		"author": r.Author,
		"genre":  r.Genre,
		"year":   string(r.Year),
	}
}

// seedYear accepts both 1965 and "1965".
type seedYear string

func (y *seedYear) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = seedYear(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("year must be a number or a string: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("year must be a whole number, got %s", n)
	}
	*y = seedYear(n.String())
	return nil
}

// LoadSeedRecords decodes a JSON array of books.
func LoadSeedRecords(r io.Reader) ([]SeedRecord, error) {
	var records []SeedRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return records, nil
}

// SeedRejection describes a record that failed validation.
type SeedRejection struct {
	Index  int
	Title  string
	Errors []services.FieldError
}

// SeedReport summarises a seed run.
type SeedReport struct {
	Created  int
	Accepted []string
	Rejected []SeedRejection
}

// SeedBooks creates every record through store. Invalid records are
// skipped; a store failure stops the run and is returned with the
// partial report.
func SeedBooks(ctx context.Context, store services.BookStore, records []SeedRecord) (SeedReport, error) {
	var report SeedReport
	for i, record := range records {
		result := store.CreateBook(ctx, record.Attributes())
		switch result.Kind {
		case services.ResultOK:
			report.Created++
			report.Accepted = append(report.Accepted, result.Book.Title)
		case services.ResultInvalid:
			report.Rejected = append(report.Rejected, SeedRejection{Index: i, Title: record.Title, Errors: result.Errors})
		default:
			return report, fmt.Errorf("seed book #%d: %w", i+1, result.Cause())
		}
	}
	return report, nil
}

// CheckSeedRecords validates records without a database. Created counts
// the records that would be written.
func CheckSeedRecords(records []SeedRecord) (SeedReport, error) {
	var report SeedReport
	for i, record := range records {
		fieldErrors, err := books.Validate(record.Attributes())
		if err != nil {
			return report, fmt.Errorf("validate book #%d: %w", i+1, err)
		}
		if len(fieldErrors) > 0 {
			report.Rejected = append(report.Rejected, SeedRejection{Index: i, Title: record.Title, Errors: fieldErrors})
			continue
		}
		report.Created++
		report.Accepted = append(report.Accepted, record.Title)
	}
	return report, nil
}
