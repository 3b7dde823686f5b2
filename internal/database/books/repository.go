// Package books provides database operations for the book catalog.
//
// # Interface Implementation
//
//	var _ services.BookStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	result := repo.GetBook(ctx, "123")
package books

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const searchClause = `title LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\' OR year LIKE ? ESCAPE '\' OR genre LIKE ? ESCAPE '\'`

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListBooks returns every book in insertion order.
func (r *Repository) ListBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order("id ASC").Find(&books).Error
	return books, err
}

// SearchBooks returns books whose title, author, year or genre contains term.
func (r *Repository) SearchBooks(ctx context.Context, term string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + likeEscaper.Replace(term) + "%"
	err := r.db.WithContext(ctx).
		Where(searchClause, pattern, pattern, pattern, pattern).
		Order("id ASC").
		Find(&books).Error
	return books, err
}

// GetBook looks a book up by its path identifier. Identifiers that cannot
// name a stored book are reported as not found.
func (r *Repository) GetBook(ctx context.Context, id string) services.BookResult {
	bookID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || bookID <= 0 {
		return services.NotFound()
	}

	var book entities.Book
	err = r.db.WithContext(ctx).First(&book, bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.NotFound()
	}
	if err != nil {
		return services.Failed(fmt.Errorf("get book %d: %w", bookID, err))
	}
	return services.Found(&book)
}

// CreateBook validates and inserts a book built from attrs.
func (r *Repository) CreateBook(ctx context.Context, attrs services.Attributes) services.BookResult {
	book := entities.BuildBook(attrs)

	fieldErrors, err := validateBook(book)
	if err != nil {
		return services.Failed(fmt.Errorf("validate book: %w", err))
	}
	if len(fieldErrors) > 0 {
		return services.Invalid(fieldErrors)
	}

	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return services.Failed(fmt.Errorf("create book: %w", err))
	}
	return services.Found(book)
}

// UpdateBook overwrites the submitted fields of book. The passed book is
// left untouched when validation fails.
func (r *Repository) UpdateBook(ctx context.Context, book *entities.Book, attrs services.Attributes) services.BookResult {
	updated := *book
	updated.Assign(attrs)

	fieldErrors, err := validateBook(&updated)
	if err != nil {
		return services.Failed(fmt.Errorf("validate book: %w", err))
	}
	if len(fieldErrors) > 0 {
		return services.Invalid(fieldErrors)
	}

	if err := r.db.WithContext(ctx).Save(&updated).Error; err != nil {
		return services.Failed(fmt.Errorf("update book %d: %w", book.ID, err))
	}
	*book = updated
	return services.Found(book)
}

// DeleteBook permanently removes book.
func (r *Repository) DeleteBook(ctx context.Context, book *entities.Book) error {
	if err := r.db.WithContext(ctx).Delete(&entities.Book{}, book.ID).Error; err != nil {
		return fmt.Errorf("delete book %d: %w", book.ID, err)
	}
	return nil
}
