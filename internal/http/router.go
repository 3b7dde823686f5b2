package http

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/security"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(security.RequestIDMiddleware())
	router.Use(security.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(security.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(security.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.SessionLoadSave())
	}

	router.Use(FailureMiddleware())

	views := cfg.Views
	if views == nil {
		router.SetHTMLTemplate(template.Must(LoadTemplates()))
		var flash FlashReader
		if cfg.Sessions != nil {
			flash = cfg.Sessions
		}
		views = NewHTMLRenderer(flash)
	}

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	} else {
		router.StaticFS("/static", http.FS(StaticFiles()))
	}

	title := cfg.LibraryTitle
	if title == "" {
		title = config.DefaultLibraryTitle
	}

	books := NewBooksController(cfg.Store, views, title)
	if cfg.Sessions != nil {
		books.WithFlash(cfg.Sessions)
	}
	if cfg.Auditor != nil {
		books.WithAuditor(cfg.Auditor)
	}
	booksAPI := NewBooksAPIController(cfg.Store)
	health := NewHealthController(cfg.Database, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/books")
	})

	books.RegisterRoutes(router.Group("/books"))

	// Read-only JSON API
	router.GET("/api/books", booksAPI.GetBooks)
	router.GET("/api/books/:id", booksAPI.GetBook)

	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog)
		router.GET("/api/audit", auditController.GetAuditEvents)
		router.GET("/api/books/:id/history", auditController.GetBookHistory)
	}

	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.AuditRetentionDays)
		router.POST("/api/tasks/audit-cleanup", tasksController.RunAuditCleanup)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
