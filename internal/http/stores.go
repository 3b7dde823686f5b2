package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

// Store dependencies of the controllers. The book store itself is
// services.BookStore; everything here is optional side-channel wiring.

// BookStore is re-exported so router callers need only this package.
type BookStore = services.BookStore

// FlashWriter leaves a message for the next rendered page.
type FlashWriter interface {
	PutFlash(ctx context.Context, message string)
}

// BookAuditor records successful book mutations.
type BookAuditor interface {
	LogBookChange(eventType entities.AuditEventType, book *entities.Book, meta audit.RequestMeta)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionStore is the session layer: a gin middleware plus flash access.
type SessionStore interface {
	FlashWriter
	FlashReader
	SessionLoadSave() gin.HandlerFunc
}
