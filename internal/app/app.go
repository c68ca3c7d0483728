package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	_ "sheetdesk/docs"
	"sheetdesk/internal/config"
	"sheetdesk/internal/handlers"
	"sheetdesk/internal/logging"
	"sheetdesk/internal/middleware"
	"sheetdesk/internal/pdf"
	"sheetdesk/internal/realtime"
	"sheetdesk/internal/records"
	"sheetdesk/internal/repositories"
	"sheetdesk/internal/routes"
	"sheetdesk/internal/services"
	"sheetdesk/internal/sheets"
)

// App is the wired service. The database handle is opened lazily, so
// commands that never touch it do not need a reachable server.
type App struct {
	Config *config.Config
	DB     *sql.DB

	Auth   services.AuthService
	Users  services.UserService
	Assign services.AssignService

	Handler http.Handler
	log     zerolog.Logger
}

func New(cfg *config.Config) (*App, error) {
	l := logging.Component("app")

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	logRepo := repositories.NewSubmissionLogRepository(db)

	// === Sheets ===
	hc := &http.Client{Timeout: cfg.Sheets.Timeout}
	script := sheets.NewScriptClient(cfg.Sheets.ScriptURL, cfg.Sheets.DriveFolderID, hc)
	script.DryRun = cfg.Sheets.DryRun
	export := sheets.NewExportClient(cfg.Sheets.ExportBaseURL, cfg.Sheets.SpreadsheetID, hc)
	names := cfg.Sheets.Names
	src := sheets.Routed{
		Default: script,
		Routes: map[string]sheets.Source{
			names.Master:      export,
			names.WorkingDays: export,
		},
	}

	// === Services ===
	today := services.ClockIn(cfg.Location())
	cache := records.NewViewCache()
	hub := realtime.NewSheetHub()
	dispatcher := services.NewDispatcher(script, logRepo, cache, hub, cfg.Sheets.DispatchBatchSize)
	reports := pdf.NewDocumentGenerator(cfg.Files.ReportDir, cfg.Files.FontPath)

	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService := services.NewUserService(userRepo, authService)

	var email services.EmailService
	if cfg.Email.SMTPHost != "" {
		email = services.NewEmailService(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPUser, cfg.Email.SMTPPassword, cfg.Email.FromEmail)
	}
	// on error the returned service still logs messages instead of sending
	telegram, err := services.NewTelegramService(cfg.Telegram.Token, cfg.Telegram.DryRun)
	if err != nil {
		l.Warn().Err(err).Msg("[app][telegram][log-only]")
	}
	notifier := services.NewNotifier(email, telegram, cfg.Notify)

	attendance := services.NewAttendanceService(src, names.Office, names.Site)
	score := services.NewScoreService(src, names.Scoring, reports)
	quick := services.NewQuickTaskService(src, names.UniqueTask)
	checklist := services.NewChecklistService(src, names.Checklist, names.ChecklistDone, cache, dispatcher, today)
	projects := services.NewProjectService(src, names.Checklist, names.Delegation, reports, today)
	assign := services.NewAssignService(src, services.AssignSheets{
		Master:      names.Master,
		WorkingDays: names.WorkingDays,
		Checklist:   names.Checklist,
		Delegation:  names.Delegation,
	}, dispatcher, notifier, today)

	// === Gin ===
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.AccessLog())

	routes.SetupRoutes(router, authService, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Pages:     handlers.NewPagesHandler(attendance, score, quick),
		Checklist: handlers.NewChecklistHandler(checklist),
		Projects:  handlers.NewProjectHandler(projects),
		Assign:    handlers.NewAssignHandler(assign),
		Realtime:  handlers.NewRealtimeHandler(hub),

		Submissions: handlers.NewSubmissionsHandler(logRepo),
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
	})

	return &App{
		Config:  cfg,
		DB:      db,
		Auth:    authService,
		Users:   userService,
		Assign:  assign,
		Handler: c.Handler(router),
		log:     l,
	}, nil
}

// Migrate creates the tables the service owns.
func (a *App) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return repositories.EnsureSchema(ctx, a.DB)
}

// Serve runs the HTTP server until ctx is cancelled, then drains it.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Msg("[app][serve][start]")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.log.Info().Msg("[app][serve][shutdown]")
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if err := a.DB.Close(); err != nil {
		a.log.Warn().Err(err).Msg("[app][db][close][err]")
	}
}
