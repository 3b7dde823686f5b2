package audit

import (
	"log"
	"sync"
	"time"

	"github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/entities"
)

// RequestMeta identifies the request that caused an event.
type RequestMeta struct {
	RequestID string
	IPAddress string
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an audit event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until all pending asynchronous events are written.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogBookChange records a create, update or delete of a book.
func (s *Service) LogBookChange(eventType entities.AuditEventType, book *entities.Book, meta RequestMeta) {
	bookID := book.ID
	event := &entities.AuditEvent{
		EventType:   eventType,
		Action:      "book_" + string(eventType),
		Description: describe(eventType, book),
		EntityType:  "book",
		EntityID:    &bookID,
		RequestID:   meta.RequestID,
		IPAddress:   meta.IPAddress,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogSeed records the outcome of a bulk seed run.
func (s *Service) LogSeed(description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSeed,
		Action:      "book_seed",
		Description: truncate(description, 500),
		EntityType:  "book",
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func describe(eventType entities.AuditEventType, book *entities.Book) string {
	var verb string
	switch eventType {
	case entities.AuditEventCreate:
		verb = "Created"
	case entities.AuditEventUpdate:
		verb = "Updated"
	case entities.AuditEventDelete:
		verb = "Deleted"
	default:
		verb = "Changed"
	}
	return truncate(verb+" book: "+book.Title+" by "+book.Author, 500)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// GetEvents returns a page of events, most recent first, and the total count.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// GetEventsForBook returns the history of one book, most recent first.
func (s *Service) GetEventsForBook(bookID uint) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForBook(bookID)
}
