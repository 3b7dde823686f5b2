package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/security"
	"github.com/mrlokans/library/internal/services"
)

const testTitle = "My SQL Library"

func init() {
	gin.SetMode(gin.TestMode)
}

type booksHarness struct {
	store   *fakeStore
	views   *recordingRenderer
	flash   *fakeFlash
	auditor *fakeAuditor
	router  *gin.Engine
}

func newBooksHarness(store *fakeStore) *booksHarness {
	return newBooksHarnessWith(store, store)
}

func newBooksHarnessWith(fake *fakeStore, store services.BookStore) *booksHarness {
	h := &booksHarness{
		store:   fake,
		views:   &recordingRenderer{},
		flash:   &fakeFlash{},
		auditor: &fakeAuditor{},
	}

	controller := NewBooksController(store, h.views, testTitle).
		WithFlash(h.flash).
		WithAuditor(h.auditor)

	h.router = gin.New()
	h.router.Use(security.RequestIDMiddleware())
	h.router.Use(FailureMiddleware())
	controller.RegisterRoutes(h.router.Group("/books"))
	return h
}

func (h *booksHarness) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *booksHarness) get(target string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	return h.do(req)
}

func (h *booksHarness) post(target string, form url.Values) *httptest.ResponseRecorder {
	return h.do(formRequest(http.MethodPost, target, form))
}

func catalog() []entities.Book {
	return []entities.Book{
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", Year: "1937"},
		{Title: "Emma", Author: "Jane Austen", Genre: "Romance", Year: "1815"},
		{Title: "Neuromancer", Author: "William Gibson", Genre: "Cyberpunk", Year: "1984"},
		{Title: "Walden", Author: "Henry Thoreau", Genre: "Essay", Year: "1854"},
	}
}

func titlesOf(data gin.H) []string {
	books, _ := data["books"].([]entities.Book)
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestBooksController_List(t *testing.T) {
	t.Run("renders all books with the library title", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		w := h.get("/books/")

		assert.Equal(t, http.StatusOK, w.Code)
		call := h.views.last()
		assert.Equal(t, ViewBookIndex, call.view)
		assert.Equal(t, testTitle, call.data["title"])
		assert.Equal(t, []string{"The Hobbit", "Emma", "Neuromancer", "Walden"}, titlesOf(call.data))
	})

	t.Run("mounted without trailing slash", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		w := h.get("/books")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, ViewBookIndex, h.views.last().view)
	})

	t.Run("empty store renders an empty list", func(t *testing.T) {
		h := newBooksHarness(newFakeStore())

		w := h.get("/books/")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, titlesOf(h.views.last().data))
	})

	t.Run("store error is a 500 with the raw error", func(t *testing.T) {
		store := newFakeStore()
		store.listErr = errStoreDown
		h := newBooksHarness(store)

		w := h.get("/books/")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "database is locked")
		assert.Empty(t, h.views.calls)
	})
}

func TestBooksController_Search(t *testing.T) {
	t.Run("empty term renders the full list once", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		w := h.post("/books/search", url.Values{"search": {""}})

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, h.views.calls, 1)
		call := h.views.last()
		assert.Equal(t, ViewBookIndex, call.view)
		assert.Equal(t, testTitle, call.data["title"])
		assert.Len(t, titlesOf(call.data), 4)
		assert.Equal(t, 1, h.store.count("ListBooks"))
		assert.Equal(t, 0, h.store.count("SearchBooks"))
	})

	t.Run("empty term matches List", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		h.get("/books/")
		listed := titlesOf(h.views.last().data)
		h.post("/books/search", url.Values{"search": {""}})
		searched := titlesOf(h.views.last().data)

		assert.Equal(t, listed, searched)
	})

	t.Run("missing field behaves like an empty term", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		w := h.post("/books/search", url.Values{})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, h.store.count("SearchBooks"))
	})

	t.Run("matches any of title, author, year or genre", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		cases := map[string][]string{
			"Hobbit": {"The Hobbit"},
			"Austen": {"Emma"},
			"punk":   {"Neuromancer"},
			"185":    {"Walden"},
			"an":     {"The Hobbit", "Emma", "Neuromancer"},
		}
		for term, want := range cases {
			w := h.post("/books/search", url.Values{"search": {term}})

			assert.Equal(t, http.StatusOK, w.Code, term)
			call := h.views.last()
			assert.Equal(t, ViewBookIndex, call.view)
			assert.Equal(t, "Search: "+term, call.data["title"])
			assert.Equal(t, want, titlesOf(call.data), term)
		}
	})

	t.Run("no matches renders an empty list", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		w := h.post("/books/search", url.Values{"search": {"Dostoevsky"}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, titlesOf(h.views.last().data))
		assert.Equal(t, "Search: Dostoevsky", h.views.last().data["title"])
	})

	t.Run("store error is a 500 with the raw error", func(t *testing.T) {
		store := newFakeStore(catalog()...)
		store.searchErr = errStoreDown
		h := newBooksHarness(store)

		w := h.post("/books/search", url.Values{"search": {"Emma"}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "database is locked")
		assert.Empty(t, h.views.calls)
	})
}

func TestBooksController_New(t *testing.T) {
	h := newBooksHarness(newFakeStore())

	w := h.get("/books/new")

	assert.Equal(t, http.StatusOK, w.Code)
	call := h.views.last()
	assert.Equal(t, ViewBookNew, call.view)
	assert.Equal(t, "Make a new book", call.data["title"])
	assert.Empty(t, h.store.calls)
}

func TestBooksController_Create(t *testing.T) {
	t.Run("redirects to the new book", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		w := h.post("/books/new", url.Values{
			"title": {"Dune"}, "author": {"Frank Herbert"}, "genre": {"Science Fiction"}, "year": {"1965"},
		})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/books/5", w.Header().Get("Location"))
		assert.Equal(t, []string{"Book was successfully created."}, h.flash.messages)
		require.Len(t, h.auditor.calls, 1)
		assert.Equal(t, entities.AuditEventCreate, h.auditor.calls[0].event)
		assert.Equal(t, uint(5), h.auditor.calls[0].bookID)
		assert.NotEmpty(t, h.auditor.calls[0].meta.RequestID)
	})

	t.Run("round trips through Detail", func(t *testing.T) {
		h := newBooksHarness(newFakeStore())
		submitted := url.Values{
			"title": {"Dune"}, "author": {"Frank Herbert"}, "genre": {"Science Fiction"}, "year": {"1965"},
		}

		w := h.post("/books/new", submitted)
		require.Equal(t, http.StatusFound, w.Code)

		w = h.get(w.Header().Get("Location"))
		assert.Equal(t, http.StatusOK, w.Code)
		call := h.views.last()
		require.Equal(t, ViewBookShow, call.view)
		book := call.data["book"].(*entities.Book)
		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, "Frank Herbert", book.Author)
		assert.Equal(t, "Science Fiction", book.Genre)
		assert.Equal(t, "1965", book.Year)
		assert.Equal(t, "Dune", call.data["title"])
	})

	t.Run("missing title redisplays the form with the input", func(t *testing.T) {
		h := newBooksHarness(newFakeStore())

		w := h.post("/books/new", url.Values{
			"author": {"Anonymous"}, "genre": {"Poetry"}, "year": {"1200"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		call := h.views.last()
		assert.Equal(t, ViewBookNew, call.view)
		assert.Equal(t, "New book", call.data["title"])

		book := call.data["book"].(*entities.Book)
		assert.Zero(t, book.ID)
		assert.Empty(t, book.Title)
		assert.Equal(t, "Anonymous", book.Author)
		assert.Equal(t, "Poetry", book.Genre)
		assert.Equal(t, "1200", book.Year)

		errs := call.data["errors"].([]services.FieldError)
		require.Len(t, errs, 1)
		assert.Equal(t, "title", errs[0].Field)

		assert.Empty(t, h.flash.messages)
		assert.Empty(t, h.auditor.calls)
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		store := newFakeStore()
		store.createErr = errStoreDown
		h := newBooksHarness(store)

		w := h.post("/books/new", url.Values{"title": {"Dune"}, "author": {"Frank Herbert"}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "database is locked")
	})

	t.Run("unexpected result kind is a 500", func(t *testing.T) {
		fake := newFakeStore()
		h := newBooksHarnessWith(fake, unknownKindStore{fake})

		w := h.post("/books/new", url.Values{"title": {"Dune"}, "author": {"Frank Herbert"}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "unexpected store result")
	})
}

func TestBooksController_Detail(t *testing.T) {
	t.Run("renders the book", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		w := h.get("/books/2")

		assert.Equal(t, http.StatusOK, w.Code)
		call := h.views.last()
		assert.Equal(t, ViewBookShow, call.view)
		assert.Equal(t, "Emma", call.data["title"])
	})

	for _, id := range []string{"99", "abc", "0"} {
		t.Run("unknown id "+id+" renders the not-found page", func(t *testing.T) {
			h := newBooksHarness(newFakeStore(catalog()...))

			w := h.get("/books/" + id)

			assert.Equal(t, http.StatusOK, w.Code)
			call := h.views.last()
			assert.Equal(t, ViewBookNotFound, call.view)
			assert.Equal(t, "Sorry! Book not found!", call.data["title"])
		})
	}

	t.Run("store failure also renders the not-found page", func(t *testing.T) {
		store := newFakeStore(catalog()...)
		store.getErr = errStoreDown
		h := newBooksHarness(store)

		w := h.get("/books/1")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, ViewBookNotFound, h.views.last().view)
	})
}

func TestBooksController_Update(t *testing.T) {
	t.Run("redirects to the updated book", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		w := h.post("/books/2/edit", url.Values{"title": {"Emma (annotated)"}})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/books/2", w.Header().Get("Location"))

		h.get("/books/2")
		book := h.views.last().data["book"].(*entities.Book)
		assert.Equal(t, "Emma (annotated)", book.Title)
		assert.Equal(t, "Jane Austen", book.Author)

		assert.Equal(t, []string{"Book was successfully updated."}, h.flash.messages)
		require.Len(t, h.auditor.calls, 1)
		assert.Equal(t, entities.AuditEventUpdate, h.auditor.calls[0].event)
	})

	t.Run("unknown id is a bare 404 without mutation", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		w := h.post("/books/99/edit", url.Values{"title": {"Ghost"}, "author": {"Nobody"}})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Empty(t, h.views.calls)
		assert.Equal(t, 0, h.store.count("UpdateBook"))
		assert.Empty(t, h.auditor.calls)
	})

	t.Run("validation failure renders the edit view with the path id", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		w := h.post("/books/3/edit", url.Values{"title": {""}, "author": {"W. Gibson"}, "genre": {"Noir"}})

		assert.Equal(t, http.StatusOK, w.Code)
		call := h.views.last()
		assert.Equal(t, ViewBookEdit, call.view)
		assert.Equal(t, "Edit book", call.data["title"])

		book := call.data["book"].(*entities.Book)
		assert.Equal(t, uint(3), book.ID)
		assert.Empty(t, book.Title)
		assert.Equal(t, "W. Gibson", book.Author)
		assert.Equal(t, "Noir", book.Genre)

		errs := call.data["errors"].([]services.FieldError)
		require.NotEmpty(t, errs)
		assert.Equal(t, "title", errs[0].Field)

		h.get("/books/3")
		assert.Equal(t, "Neuromancer", h.views.last().data["title"])
	})

	t.Run("lookup failure is a 500", func(t *testing.T) {
		store := newFakeStore(catalog()...)
		store.getErr = errStoreDown
		h := newBooksHarness(store)

		w := h.post("/books/1/edit", url.Values{"title": {"X"}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "database is locked")
	})

	t.Run("save failure is a 500", func(t *testing.T) {
		store := newFakeStore(catalog()...)
		store.updateErr = errStoreDown
		h := newBooksHarness(store)

		w := h.post("/books/1/edit", url.Values{"title": {"X"}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "database is locked")
	})
}

func TestBooksController_Delete(t *testing.T) {
	t.Run("removes the book and redirects to the list", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		w := h.post("/books/1/delete", nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/books", w.Header().Get("Location"))
		assert.Equal(t, []string{"Book was deleted."}, h.flash.messages)
		require.Len(t, h.auditor.calls, 1)
		assert.Equal(t, entities.AuditEventDelete, h.auditor.calls[0].event)
		assert.Equal(t, uint(1), h.auditor.calls[0].bookID)

		w = h.get("/books/1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, ViewBookNotFound, h.views.last().view)
	})

	t.Run("unknown id is a bare 404 and idempotent", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		for i := 0; i < 2; i++ {
			w := h.post("/books/99/delete", nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Empty(t, w.Body.String())
		}
		assert.Equal(t, 0, h.store.count("DeleteBook"))
		assert.Empty(t, h.auditor.calls)
	})

	t.Run("deleting twice answers 404 the second time", func(t *testing.T) {
		h := newBooksHarness(newFakeStore(catalog()...))

		assert.Equal(t, http.StatusFound, h.post("/books/4/delete", nil).Code)
		assert.Equal(t, http.StatusNotFound, h.post("/books/4/delete", nil).Code)
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		store := newFakeStore(catalog()...)
		store.deleteErr = errStoreDown
		h := newBooksHarness(store)

		w := h.post("/books/1/delete", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "database is locked")
		assert.Empty(t, h.flash.messages)
	})
}

func TestBooksController_WithoutOptionalCollaborators(t *testing.T) {
	views := &recordingRenderer{}
	controller := NewBooksController(newFakeStore(), views, testTitle)

	router := gin.New()
	router.Use(FailureMiddleware())
	controller.RegisterRoutes(router.Group("/books"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, formRequest(http.MethodPost, "/books/new", url.Values{"title": {"Dune"}, "author": {"Frank Herbert"}}))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/books/1", w.Header().Get("Location"))
}
