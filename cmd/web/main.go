// cmd/web/main.go
//
// CRM – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (.env → conf/crm.yaml → CRM_ env, vault: refs resolved).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Open the MySQL pool, then apply component migrations when
//     database.migrate is set.
//
//  4. Init every registered component with shared Deps and mount its
//     routes on one chi router.
//
//  5. Expose Prometheus /metrics endpoint.
//
//  6. Serve until SIGINT or SIGTERM, then drain in-flight requests.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/crm/internal/component"
	"github.com/yanizio/crm/internal/config"
	"github.com/yanizio/crm/internal/database"
	"github.com/yanizio/crm/internal/form"
	"github.com/yanizio/crm/internal/logger"
	"github.com/yanizio/crm/internal/middleware"
	"github.com/yanizio/crm/internal/server"

	_ "github.com/yanizio/crm/components/crm" // sector dialog
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("crm: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logDir := cfg.Log.Dir
	if !filepath.IsAbs(logDir) {
		logDir = filepath.Join(cfg.Paths.Root, logDir)
	}
	logOut, err := logger.New(logDir, cfg.Log.Level, runningInTTY())
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Database connect and migrate ────────────────────────────────
	//
	db, err := database.Open(ctx, database.Options{
		DSN:      cfg.Database.DSN,
		Password: cfg.Database.Password,
		MaxOpen:  cfg.Database.MaxOpen,
		MaxIdle:  cfg.Database.MaxIdle,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	logOut.Infow("database online", "max_open", cfg.Database.MaxOpen)

	if cfg.Database.Migrate {
		for _, c := range component.All() {
			if fsys := c.Migrations(); fsys != nil {
				if err := database.Migrate(ctx, db.DB, fsys); err != nil {
					return err
				}
				logOut.Infow("migrations checked", "component", c.Name())
			}
		}
	}

	tokens, err := form.NewTokens(cfg.CSRF.Key)
	if err != nil {
		return err
	}

	//
	// ── 2.  Router: shared middleware → components → metrics ──────────
	//
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(logOut))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)
	r.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS))

	deps := component.Deps{DB: db, Log: logOut, Config: cfg, Tokens: tokens}
	for _, c := range component.All() {
		if err := c.Init(deps); err != nil {
			return err
		}
		mount(r, c.Routes())
		logOut.Infow("component mounted", "component", c.Name())
	}

	r.Handle("/metrics", promhttp.Handler())

	//
	// ── 3.  Serve until signalled ───────────────────────────────────────
	//
	zap.S().Infow("crm starting", "addr", cfg.HTTP.ListenAddr)
	return server.Run(ctx, server.New(cfg.HTTP.ListenAddr, r))
}

// mount copies every route of sub onto r so several components can share
// the root path.
func mount(r chi.Router, sub chi.Router) {
	_ = chi.Walk(sub, func(method, route string, h http.Handler, mws ...func(http.Handler) http.Handler) error {
		r.With(mws...).Method(method, route, h)
		return nil
	})
}
