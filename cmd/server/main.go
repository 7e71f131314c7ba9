package main // Entry point of the recommender HTTP service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/event-space-recommender/internal/catalog"
	"github.com/iliyamo/event-space-recommender/internal/config"
	"github.com/iliyamo/event-space-recommender/internal/database"
	"github.com/iliyamo/event-space-recommender/internal/extract"
	"github.com/iliyamo/event-space-recommender/internal/handler"
	"github.com/iliyamo/event-space-recommender/internal/logger"
	"github.com/iliyamo/event-space-recommender/internal/middleware"
	"github.com/iliyamo/event-space-recommender/internal/queue"
	"github.com/iliyamo/event-space-recommender/internal/repository"
	"github.com/iliyamo/event-space-recommender/internal/router"
	"github.com/iliyamo/event-space-recommender/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "event-space-recommender")
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// MySQL is optional unless the catalog lives there
	var repo *repository.RoomRepo
	if cfg.DBConfigured() {
		db, err := openDB(ctx, cfg)
		switch {
		case err == nil:
			defer db.Close()
			repo = repository.NewRoomRepo(db)
		case cfg.CatalogSource == config.SourceMySQL:
			return fmt.Errorf("database: %w", err)
		default:
			log.Warn("database unavailable, catalog imports are not persisted", zap.Error(err))
		}
	}

	load := catalogLoader(cfg, repo, log)
	cat, source, err := load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	for _, is := range cat.Issues() {
		log.Warn("catalog row skipped", zap.Int("row", is.Row), zap.String("name", is.Name), zap.String("reason", is.Reason))
	}
	log.Info("catalog loaded", zap.String("source", source), zap.String("version", cat.Version()), zap.Int("rooms", cat.Len()))
	store := catalog.NewStore(cat)
	version := func() string {
		if c := store.Load(); c != nil {
			return c.Version()
		}
		return ""
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	qcfg := config.LoadQueueConfig()
	events := service.NewPublisher(qcfg, log)
	if qcfg.Enabled {
		consumer := queue.NewConsumer(qcfg, cfg.AuditDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(logger.RequestLogger(log))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, version, log)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)

	rh := &handler.RecommendHandler{Store: store, Events: events, Log: log}
	dh := &handler.DocumentHandler{Recommender: rh, Extractor: extract.DefaultExtractor(), MaxUpload: handler.DefaultMaxUpload}
	ah := &handler.AdminHandler{Store: store, Load: load, Events: events, Log: log}
	if repo != nil {
		ah.Repo = repo
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, admin endpoints reject every request")
	}

	router.RegisterRoutes(e, store)
	router.RegisterCatalog(e, &handler.CatalogHandler{Store: store}, cache)
	router.RegisterRecommend(e, rh, dh, cache, limiter)
	router.RegisterAdmin(e, ah, cfg.JWTSecret)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// catalogLoader reads the catalog from MySQL when that is the configured
// source and it holds an import; otherwise from the chart file.
func catalogLoader(cfg config.Config, repo *repository.RoomRepo, log *zap.Logger) handler.CatalogLoader {
	return func(ctx context.Context) (*catalog.Catalog, string, error) {
		if cfg.CatalogSource == config.SourceMySQL && repo != nil {
			rooms, err := repo.LoadAll(ctx)
			switch {
			case err == nil:
				cat, err := catalog.New(rooms)
				return cat, string(config.SourceMySQL), err
			case errors.Is(err, repository.ErrEmptyCatalog):
				log.Warn("no rooms stored yet, falling back to chart file", zap.String("path", cfg.CatalogPath))
			default:
				return nil, string(config.SourceMySQL), err
			}
		}
		cat, err := catalog.LoadFile(cfg.CatalogPath)
		return cat, string(config.SourceFile), err
	}
}
