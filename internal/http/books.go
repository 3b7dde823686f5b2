package http

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/security"
	"github.com/mrlokans/library/internal/services"
)

const (
	titleNewBook      = "Make a new book"
	titleInvalidNew   = "New book"
	titleInvalidEdit  = "Edit book"
	titleBookNotFound = "Sorry! Book not found!"
	searchTitlePrefix = "Search: "
)

// BooksController serves the server-rendered /books pages.
type BooksController struct {
	store     services.BookStore
	views     ViewRenderer
	listTitle string

	flash   FlashWriter
	auditor BookAuditor
}

func NewBooksController(store services.BookStore, views ViewRenderer, listTitle string) *BooksController {
	return &BooksController{
		store:     store,
		views:     views,
		listTitle: listTitle,
	}
}

// WithFlash enables the confirmation message shown after a redirect.
func (bc *BooksController) WithFlash(flash FlashWriter) *BooksController {
	bc.flash = flash
	return bc
}

// WithAuditor records create, update and delete in the audit trail.
func (bc *BooksController) WithAuditor(auditor BookAuditor) *BooksController {
	bc.auditor = auditor
	return bc
}

// RegisterRoutes mounts the handlers on a /books group.
func (bc *BooksController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", bc.List)
	group.GET("/", bc.List)
	group.POST("/search", bc.Search)
	group.GET("/new", bc.New)
	group.POST("/new", bc.Create)
	group.GET("/:id", bc.Detail)
	group.POST("/:id/edit", bc.Update)
	group.POST("/:id/delete", bc.Delete)
}

// List renders every book in store order.
func (bc *BooksController) List(c *gin.Context) {
	books, err := bc.store.ListBooks(c.Request.Context())
	if err != nil {
		fail(c, fmt.Errorf("list books: %w", err))
		return
	}

	bc.views.Render(c, http.StatusOK, ViewBookIndex, gin.H{
		"books": books,
		"title": bc.listTitle,
	})
}

// Search renders the books whose title, author, year or genre contain the
// submitted term. An empty term renders the full list and stops there.
func (bc *BooksController) Search(c *gin.Context) {
	term := c.PostForm("search")
	if term == "" {
		bc.List(c)
		return
	}

	books, err := bc.store.SearchBooks(c.Request.Context(), term)
	if err != nil {
		fail(c, fmt.Errorf("search books: %w", err))
		return
	}

	bc.views.Render(c, http.StatusOK, ViewBookIndex, gin.H{
		"books":  books,
		"search": term,
		"title":  searchTitlePrefix + term,
	})
}

// New renders the empty creation form.
func (bc *BooksController) New(c *gin.Context) {
	bc.views.Render(c, http.StatusOK, ViewBookNew, gin.H{
		"book":  &entities.Book{},
		"title": titleNewBook,
	})
}

// Create stores the submitted book and redirects to it, or redisplays the
// form with the submitted values and per-field errors.
func (bc *BooksController) Create(c *gin.Context) {
	attrs, err := formAttributes(c)
	if err != nil {
		fail(c, err)
		return
	}

	result := bc.store.CreateBook(c.Request.Context(), attrs)
	switch result.Kind {
	case services.ResultOK:
		bc.afterChange(c, entities.AuditEventCreate, result.Book, "Book was successfully created.")
		c.Redirect(http.StatusFound, bookPath(result.Book))
	case services.ResultInvalid:
		bc.views.Render(c, http.StatusOK, ViewBookNew, gin.H{
			"book":   entities.BuildBook(attrs),
			"errors": result.Errors,
			"title":  titleInvalidNew,
		})
	default:
		fail(c, fmt.Errorf("create book: %w", result.Cause()))
	}
}

// Detail renders one book. Any lookup failure, including a store error,
// shows the friendly not-found page with 200.
func (bc *BooksController) Detail(c *gin.Context) {
	result := bc.store.GetBook(c.Request.Context(), c.Param("id"))
	if result.Kind != services.ResultOK {
		if result.Kind == services.ResultFailed {
			log.Printf("Failed to load book %q: %v", c.Param("id"), result.Err)
		}
		bc.views.Render(c, http.StatusOK, ViewBookNotFound, gin.H{
			"title": titleBookNotFound,
		})
		return
	}

	bc.views.Render(c, http.StatusOK, ViewBookShow, gin.H{
		"book":  result.Book,
		"title": result.Book.Title,
	})
}

// Update applies the submitted fields to an existing book.
//
// Unlike Detail, a missing book is a bare 404 here and in Delete: the
// friendly page is only for readers following a link.
func (bc *BooksController) Update(c *gin.Context) {
	found := bc.store.GetBook(c.Request.Context(), c.Param("id"))
	switch found.Kind {
	case services.ResultOK:
	case services.ResultNotFound:
		c.AbortWithStatus(http.StatusNotFound)
		return
	default:
		fail(c, fmt.Errorf("load book: %w", found.Cause()))
		return
	}

	attrs, err := formAttributes(c)
	if err != nil {
		fail(c, err)
		return
	}

	result := bc.store.UpdateBook(c.Request.Context(), found.Book, attrs)
	switch result.Kind {
	case services.ResultOK:
		bc.afterChange(c, entities.AuditEventUpdate, result.Book, "Book was successfully updated.")
		c.Redirect(http.StatusFound, bookPath(result.Book))
	case services.ResultInvalid:
		book := entities.BuildBook(attrs)
		book.ID = found.Book.ID
		bc.views.Render(c, http.StatusOK, ViewBookEdit, gin.H{
			"book":   book,
			"errors": result.Errors,
			"title":  titleInvalidEdit,
		})
	default:
		fail(c, fmt.Errorf("update book: %w", result.Cause()))
	}
}

// Delete permanently removes a book and returns to the listing.
func (bc *BooksController) Delete(c *gin.Context) {
	found := bc.store.GetBook(c.Request.Context(), c.Param("id"))
	switch found.Kind {
	case services.ResultOK:
	case services.ResultNotFound:
		c.AbortWithStatus(http.StatusNotFound)
		return
	default:
		fail(c, fmt.Errorf("load book: %w", found.Cause()))
		return
	}

	if err := bc.store.DeleteBook(c.Request.Context(), found.Book); err != nil {
		fail(c, fmt.Errorf("delete book: %w", err))
		return
	}

	bc.afterChange(c, entities.AuditEventDelete, found.Book, "Book was deleted.")
	c.Redirect(http.StatusFound, "/books")
}

func (bc *BooksController) afterChange(c *gin.Context, event entities.AuditEventType, book *entities.Book, message string) {
	if bc.flash != nil {
		bc.flash.PutFlash(c.Request.Context(), message)
	}
	if bc.auditor != nil {
		bc.auditor.LogBookChange(event, book, audit.RequestMeta{
			RequestID: security.GetRequestID(c),
			IPAddress: c.ClientIP(),
		})
	}
}

func formAttributes(c *gin.Context) (services.Attributes, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	return services.AttributesFromForm(c.Request.PostForm), nil
}

func bookPath(book *entities.Book) string {
	return fmt.Sprintf("/books/%d", book.ID)
}
