package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

// fakeStore is an in-memory services.BookStore that records every call.
type fakeStore struct {
	mu     sync.Mutex
	books  []entities.Book
	nextID uint
	calls  []string

	listErr   error
	searchErr error
	getErr    error
	createErr error
	updateErr error
	deleteErr error
}

var _ services.BookStore = (*fakeStore)(nil)

func newFakeStore(books ...entities.Book) *fakeStore {
	s := &fakeStore{nextID: 1}
	for _, b := range books {
		b.ID = s.nextID
		s.nextID++
		s.books = append(s.books, b)
	}
	return s
}

func (s *fakeStore) record(call string) {
	s.calls = append(s.calls, call)
}

func (s *fakeStore) count(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (s *fakeStore) ListBooks(ctx context.Context) ([]entities.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ListBooks")
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]entities.Book(nil), s.books...), nil
}

func (s *fakeStore) SearchBooks(ctx context.Context, term string) ([]entities.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SearchBooks")
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	var out []entities.Book
	for _, b := range s.books {
		if strings.Contains(b.Title, term) || strings.Contains(b.Author, term) ||
			strings.Contains(b.Year, term) || strings.Contains(b.Genre, term) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) GetBook(ctx context.Context, id string) services.BookResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("GetBook")
	if s.getErr != nil {
		return services.Failed(s.getErr)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return services.NotFound()
	}
	for i := range s.books {
		if uint64(s.books[i].ID) == n {
			book := s.books[i]
			return services.Found(&book)
		}
	}
	return services.NotFound()
}

func validate(book *entities.Book) []services.FieldError {
	var errs []services.FieldError
	if book.Title == "" {
		errs = append(errs, services.FieldError{Field: "title", Message: `Please provide a value for "Title"`})
	}
	if book.Author == "" {
		errs = append(errs, services.FieldError{Field: "author", Message: `Please provide a value for "Author"`})
	}
	return errs
}

func (s *fakeStore) CreateBook(ctx context.Context, attrs services.Attributes) services.BookResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("CreateBook")
	book := entities.BuildBook(attrs)
	if errs := validate(book); len(errs) > 0 {
		return services.Invalid(errs)
	}
	if s.createErr != nil {
		return services.Failed(s.createErr)
	}
	book.ID = s.nextID
	s.nextID++
	s.books = append(s.books, *book)
	return services.Found(book)
}

func (s *fakeStore) UpdateBook(ctx context.Context, book *entities.Book, attrs services.Attributes) services.BookResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("UpdateBook")
	updated := *book
	updated.Assign(attrs)
	if errs := validate(&updated); len(errs) > 0 {
		return services.Invalid(errs)
	}
	if s.updateErr != nil {
		return services.Failed(s.updateErr)
	}
	for i := range s.books {
		if s.books[i].ID == updated.ID {
			s.books[i] = updated
		}
	}
	*book = updated
	return services.Found(book)
}

func (s *fakeStore) DeleteBook(ctx context.Context, book *entities.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("DeleteBook")
	if s.deleteErr != nil {
		return s.deleteErr
	}
	kept := s.books[:0]
	for _, b := range s.books {
		if b.ID != book.ID {
			kept = append(kept, b)
		}
	}
	s.books = kept
	return nil
}

// unknownKindStore answers every single-book call with a kind handlers
// do not expect.
type unknownKindStore struct {
	*fakeStore
}

func (s unknownKindStore) CreateBook(ctx context.Context, attrs services.Attributes) services.BookResult {
	return services.NotFound()
}

// rendered is one call to recordingRenderer.Render.
type rendered struct {
	status int
	view   string
	data   gin.H
}

// recordingRenderer captures render calls and writes the view name as body.
type recordingRenderer struct {
	calls []rendered
}

func (r *recordingRenderer) Render(c *gin.Context, status int, view string, data gin.H) {
	r.calls = append(r.calls, rendered{status: status, view: view, data: data})
	c.String(status, view)
}

func (r *recordingRenderer) last() rendered {
	if len(r.calls) == 0 {
		return rendered{}
	}
	return r.calls[len(r.calls)-1]
}

type fakeFlash struct {
	messages []string
}

func (f *fakeFlash) PutFlash(ctx context.Context, message string) {
	f.messages = append(f.messages, message)
}

type auditCall struct {
	event  entities.AuditEventType
	bookID uint
	meta   audit.RequestMeta
}

type fakeAuditor struct {
	calls []auditCall
}

func (f *fakeAuditor) LogBookChange(eventType entities.AuditEventType, book *entities.Book, meta audit.RequestMeta) {
	f.calls = append(f.calls, auditCall{event: eventType, bookID: book.ID, meta: meta})
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error {
	return p.err
}

var errStoreDown = errors.New("database is locked")

func formRequest(method, target string, form url.Values) *http.Request {
	req, _ := http.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
