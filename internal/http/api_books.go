package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

// BookListResponse is the JSON shape of GET /api/books.
type BookListResponse struct {
	Books []entities.Book `json:"books"`
	Count int             `json:"count"`
	Query string          `json:"query,omitempty"`
}

// BooksAPIController exposes a read-only JSON view of the catalog.
type BooksAPIController struct {
	store services.BookStore
}

func NewBooksAPIController(store services.BookStore) *BooksAPIController {
	return &BooksAPIController{store: store}
}

// GetBooks returns all books, or those matching ?q= when given.
func (ac *BooksAPIController) GetBooks(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	var (
		books []entities.Book
		err   error
	)
	if query == "" {
		books, err = ac.store.ListBooks(c.Request.Context())
	} else {
		books, err = ac.store.SearchBooks(c.Request.Context(), query)
	}
	if err != nil {
		respondInternalError(c, err, "api list books")
		return
	}

	if books == nil {
		books = []entities.Book{}
	}
	c.JSON(http.StatusOK, BookListResponse{Books: books, Count: len(books), Query: query})
}

// GetBook returns one book by id.
func (ac *BooksAPIController) GetBook(c *gin.Context) {
	result := ac.store.GetBook(c.Request.Context(), c.Param("id"))
	switch result.Kind {
	case services.ResultOK:
		c.JSON(http.StatusOK, result.Book)
	case services.ResultNotFound:
		respondNotFound(c, "book")
	default:
		respondInternalError(c, result.Cause(), "api get book")
	}
}
