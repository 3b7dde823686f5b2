package services

import (
	"context"
	"net/url"

	"github.com/mrlokans/library/internal/entities"
)

// BookStore is the persistence boundary for books.
// Every method may block on the underlying database.
type BookStore interface {
	ListBooks(ctx context.Context) ([]entities.Book, error)
	SearchBooks(ctx context.Context, term string) ([]entities.Book, error)
	GetBook(ctx context.Context, id string) BookResult
	CreateBook(ctx context.Context, attrs Attributes) BookResult
	UpdateBook(ctx context.Context, book *entities.Book, attrs Attributes) BookResult
	DeleteBook(ctx context.Context, book *entities.Book) error
}

// Attributes is a submitted form, one value per field.
// Handlers pass it through untouched; the store decides which keys it knows.
type Attributes map[string]string

// AttributesFromForm keeps the first value of every submitted field.
func AttributesFromForm(form url.Values) Attributes {
	attrs := make(Attributes, len(form))
	for key, values := range form {
		if len(values) > 0 {
			attrs[key] = values[0]
		}
	}
	return attrs
}
