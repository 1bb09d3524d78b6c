package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/kardianos/service"
	"github.com/zhaobenny/stayboard/internal/parser"
	"github.com/zhaobenny/stayboard/server/internal/config"
	"github.com/zhaobenny/stayboard/server/internal/database"
	"github.com/zhaobenny/stayboard/server/internal/handlers"
	"github.com/zhaobenny/stayboard/server/internal/middleware"
	"github.com/zhaobenny/stayboard/server/internal/templates"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

// program implements service.Interface around the HTTP server
type program struct {
	cfg     *config.Config
	logger  *slog.Logger
	srv     *http.Server
	cleanup func()
}

func (p *program) Start(s service.Service) error {
	srv, cleanup, err := newServer(p.cfg, p.logger)
	if err != nil {
		return err
	}
	p.srv, p.cleanup = srv, cleanup

	go func() {
		p.logger.Info("starting stayboard-server",
			"addr", srv.Addr,
			"session_store", p.cfg.SessionStore,
			"input_encoding", p.cfg.InputEncoding,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	if p.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	p.logger.Info("shutting down")
	err := p.srv.Shutdown(ctx)
	p.cleanup()
	return err
}

// newServer wires the session store, templates, handlers and middleware.
// cleanup releases the session database once the server has stopped.
func newServer(cfg *config.Config, logger *slog.Logger) (*http.Server, func(), error) {
	cleanup := func() {}

	sessionMgr := scs.New()
	sessionMgr.Lifetime = cfg.SessionLifetime
	sessionMgr.Cookie.Name = "stayboard_session"
	sessionMgr.Cookie.Secure = cfg.SecureCookies
	sessionMgr.Cookie.SameSite = http.SameSiteLaxMode

	var db *database.DB
	switch cfg.SessionStore {
	case config.StoreSQLite:
		var err error
		db, err = database.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		store := sqlite3store.New(db.DB)
		sessionMgr.Store = store
		cleanup = func() {
			store.StopCleanup()
			db.Close()
		}
		logger.Info("using sqlite session store", "db_path", cfg.DBPath)
	default:
		sessionMgr.Store = memstore.New()
	}

	tmpl, err := templates.Parse()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	h := handlers.New(sessionMgr, tmpl, logger, handlers.Options{
		Parser:         parser.Options{Columns: cfg.Columns, Encoding: cfg.Encoding()},
		CurrencyUnit:   cfg.CurrencyUnit,
		DayUnit:        cfg.DayUnit,
		MaxUploadBytes: cfg.MaxUploadBytes,
		DB:             db,
	})
	uploadLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.UploadRate), cfg.UploadBurst)

	var handler http.Handler = h.Routes(uploadLimiter.Limit)
	handler = sessionMgr.LoadAndSave(handler)
	handler = middleware.RequestLogger(logger)(handler)
	handler = middleware.SecurityHeaders(handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	return srv, cleanup, nil
}
