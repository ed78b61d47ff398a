package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"skima/internal/domain/audit"
	"skima/internal/domain/auth"
	"skima/internal/domain/evolution"
	"skima/internal/domain/skills"
	"skima/internal/platform/config"
	"skima/internal/platform/db"
	"skima/internal/platform/jobs"
	"skima/internal/platform/metrics"
	"skima/internal/transport/http/api"
	audithandler "skima/internal/transport/http/handlers/audit"
	authhandler "skima/internal/transport/http/handlers/auth"
	evolutionhandler "skima/internal/transport/http/handlers/evolution"
	skillshandler "skima/internal/transport/http/handlers/skills"
	"skima/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *db.DB
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// New opens the database, prepares the schema and builds the router. The
// returned App owns the connection; call Close when done.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := NewLogger(cfg)

	conn, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app := &App{Config: cfg, DB: conn, Logger: logger}
	if err := app.init(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config
	if err := db.Migrate(ctx, a.DB); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, a.DB, cfg); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	secret, generated, err := auth.ResolveSecret(cfg.JWTSecret, secretFile(cfg))
	if err != nil {
		return err
	}
	if generated {
		a.Logger.Warn("generated a new jwt secret; set jwt_secret to pin it", "file", secretFile(cfg))
	}

	skillSvc := skills.NewService(skills.NewStore(a.DB), skills.DBTransactor{DB: a.DB}, a.Logger)
	if cfg.RoleProfilesFile != "" {
		raw, err := os.ReadFile(cfg.RoleProfilesFile)
		if err != nil {
			return fmt.Errorf("role profiles: %w", err)
		}
		n, err := skillSvc.ImportRoleProfilesYAML(ctx, raw)
		if err != nil {
			return fmt.Errorf("role profiles %s: %w", cfg.RoleProfilesFile, err)
		}
		a.Logger.Info("role profiles imported", "file", cfg.RoleProfilesFile, "profiles", n)
	}

	a.Metrics = metrics.New()
	evoSvc := evolution.NewService(evolution.NewStore(a.DB), a.Logger, a.Metrics)
	a.Jobs = jobs.New(a.DB, cfg, evoSvc, a.Metrics)

	auditSvc := audit.New(a.DB)
	authSvc := auth.NewService(auth.NewStore(a.DB), secret, cfg.TokenTTL)
	company := cfg.CompanyName
	if sys, err := auth.NewStore(a.DB).SystemConfig(ctx); err == nil && sys.CompanyName != "" {
		company = sys.CompanyName
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Logger, a.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(secret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.PingContext(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.Handle("/metrics", a.Metrics.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		loginLimit := middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute)
		authhandler.NewHandler(authSvc, loginLimit).RegisterRoutes(r)
		evolutionhandler.NewHandler(evoSvc, a.Jobs, company, a.Logger).RegisterRoutes(r)
		skillshandler.NewHandler(skillSvc, auditSvc, a.Logger).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
		})
	})

	if dir := strings.TrimSpace(cfg.FrontendDir); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			router.Mount("/", spaHandler{staticPath: dir, indexPath: "index.html"})
		} else {
			a.Logger.Info("frontend directory not found; serving api only", "dir", dir)
		}
	}

	a.Router = router
	return nil
}

// Run serves HTTP and the snapshot scheduler until ctx is cancelled, then
// drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if err := a.Jobs.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("skima server listening", "addr", a.Config.Addr, "environment", a.Config.Environment)
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
	a.Logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func NewLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// secretFile is jwt_secret_file, or .jwt_secret beside a SQLite database.
func secretFile(cfg config.Config) string {
	if cfg.JWTSecretFile != "" {
		return cfg.JWTSecretFile
	}
	dialect, dsn, err := db.ParseURL(cfg.DatabaseURL)
	if err != nil || dialect != db.DialectSQLite {
		return filepath.Join("data", ".jwt_secret")
	}
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return filepath.Join("data", ".jwt_secret")
	}
	return filepath.Join(filepath.Dir(path), ".jwt_secret")
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if err == nil || os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
