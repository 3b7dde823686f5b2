package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	auditRepo "github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/database/books"
	http_controllers "github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/security"
	"github.com/mrlokans/library/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Stop background work only after in-flight requests have drained.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// app holds everything Run wires together.
type app struct {
	router     *gin.Engine
	db         *database.Database
	audit      *audit.Service
	taskClient *tasks.Client
	scheduler  *scheduler.AuditCleanupScheduler
	cancel     context.CancelFunc
}

func newApp(cfg *config.Config, version string) (*app, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &app{db: db}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	bookRepo := books.NewRepository(db.DB)
	a.audit = audit.NewService(auditRepo.NewRepository(db.DB))

	routerCfg := http_controllers.RouterConfig{
		Store:              bookRepo,
		Database:           db,
		Auditor:            a.audit,
		AuditLog:           a.audit,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		SecureCookies:      cfg.Security.SecureCookies,
		StaticPath:         staticPath(cfg.UI.StaticPath),
		LibraryTitle:       cfg.UI.LibraryTitle,
		Version:            version,
	}

	sqlDB, err := db.SQLDB()
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessions, err := security.NewSessionManager(sqlDB, db.Driver, cfg.Security)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}
	routerCfg.Sessions = sessions

	if cfg.Security.CSRFEnabled {
		secret, generated, err := security.ResolveSecret(cfg.Security.SessionSecret)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
		}
		if generated {
			log.Printf("Generated session secret (set SESSION_SECRET to persist)")
		}
		routerCfg.CSRFSecret = secret
	} else {
		log.Printf("WARNING: CSRF protection is disabled")
	}

	if cfg.Tasks.Enabled {
		a.taskClient, err = tasks.NewClient(taskQueuePath(cfg.Database), tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		a.taskClient.Register(tasks.NewCleanupAuditEventsQueue(a.audit))
		a.taskClient.Start(ctx)
		routerCfg.TaskQueue = a.taskClient

		a.scheduler = scheduler.NewAuditCleanupScheduler(a.taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := a.scheduler.Start(ctx); err != nil {
			a.close(ctx)
			return nil, err
		}
	} else {
		log.Printf("Task queue disabled; audit cleanup will not run")
	}

	a.router = http_controllers.NewRouter(routerCfg)
	return a, nil
}

// close releases resources in reverse start order.
func (a *app) close(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.taskClient != nil {
		a.taskClient.Stop(ctx)
	}
	a.cancel()
	if a.taskClient != nil {
		if err := a.taskClient.Close(); err != nil {
			log.Printf("Error closing task client: %v", err)
		}
	}
	a.audit.Wait()
	if err := a.db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Library v%s", version)

	a, err := newApp(cfg, version)
	if err != nil {
		log.Fatalf("%v", err)
	}

	Serve(a.router, cfg, a.close)
}

// staticPath falls back to the embedded assets when the directory is missing.
func staticPath(path string) string {
	if path == "" {
		return ""
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		log.Printf("Static directory %s not found, serving embedded assets", path)
		return ""
	}
	return path
}

// taskQueuePath places the queue database next to the SQLite catalog.
func taskQueuePath(db config.Database) string {
	if db.Driver == config.DriverPostgres || db.Path == "" {
		return config.DefaultDatabasePath
	}
	return db.Path
}
