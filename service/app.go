package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"yatube/app/blobstore"
	"yatube/app/cache"
	"yatube/app/config"
	"yatube/app/controllers"
	"yatube/app/identity"
	"yatube/app/logger"
	"yatube/app/metrics"
	"yatube/app/repositories"
	"yatube/app/routes"
	"yatube/app/services"
	"yatube/app/views"

	"go.uber.org/zap"
)

// shutdownGrace bounds how long in-flight requests may run after a signal.
var shutdownGrace = 10 * time.Second

// App is a fully wired blog instance.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Repo    *repositories.Repository
	Metrics *metrics.Metrics
	Handler http.Handler

	closers []func() error
}

// NewApp opens storage, picks the cache and blob backends and builds the
// router.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	repo, err := openRepository(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	app := &App{Config: cfg, Logger: log, Repo: repo, Metrics: metrics.New()}
	app.closers = append(app.closers, repo.Close)

	blobs, err := newBlobStore(cfg, repo)
	if err != nil {
		app.Close()
		return nil, err
	}

	store, err := app.newCacheStore()
	if err != nil {
		app.Close()
		return nil, err
	}

	renderer, err := views.New(cfg.Server.BasePath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load templates: %w", err)
	}

	deps := &controllers.Deps{
		Posts:    services.NewPostService(repo.Posts(), repo.Groups(), repo.Users(), blobs),
		Comments: services.NewCommentService(repo.Comments(), repo.Posts(), repo.Users()),
		Follows:  services.NewFollowService(repo.Follows()),
		Users:    services.NewUserService(repo.Users()).WithBlobs(repo.Posts(), blobs),
		Blobs:    blobs,
		Cache:    cache.New(store, log, app.Metrics),
		CacheTTL: cfg.CacheTTL(),
		PageSize: cfg.Feed.PageSize,
		Views:    renderer,
		Identity: identity.New(identity.Options{
			Key:      cfg.Session.Key,
			Secure:   cfg.Session.Secure,
			MaxAge:   cfg.Session.MaxAge,
			LoginURL: renderer.URL("/auth/login/"),
		}, repo.Users(), log),
		Logger: log,
	}

	app.Handler = routes.SetupRoutes(deps, app.Metrics, routes.Options{
		BasePath: cfg.Server.BasePath,
		Dev:      cfg.Server.Mode == "dev",
	})
	return app, nil
}

func newBlobStore(cfg *config.Config, repo *repositories.Repository) (blobstore.Store, error) {
	if cfg.Blob.Backend != "s3" {
		return blobstore.NewBadgerStore(repo.DB()), nil
	}
	s3, err := blobstore.NewS3Store(blobstore.S3Config{
		Endpoint:  cfg.Blob.S3Endpoint,
		AccessKey: cfg.Blob.S3AccessKey,
		SecretKey: cfg.Blob.S3SecretKey,
		UseSSL:    cfg.Blob.S3UseSSL,
		Bucket:    cfg.Blob.S3Bucket,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("s3 bucket %s: %w", cfg.Blob.S3Bucket, err)
	}
	return s3, nil
}

func (a *App) newCacheStore() (cache.Store, error) {
	if a.Config.Cache.Backend != "redis" {
		return cache.NewMemoryStore(nil), nil
	}
	rs := newRedisStore(a.Config)
	a.closers = append(a.closers, rs.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		// The listing cache renders on every request while redis is down.
		a.Logger.Warn("redis unreachable, listing cache degraded",
			zap.String("addr", a.Config.Cache.RedisAddr), zap.Error(err))
	}
	return rs, nil
}

func newRedisStore(cfg *config.Config) *cache.RedisStore {
	return cache.NewRedisStore(cache.RedisOptions{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
		Prefix:   cfg.Cache.RedisPrefix,
	})
}

// Close releases everything NewApp opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Server returns the HTTP server for the configured address.
func (a *App) Server() *http.Server {
	return &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      a.Handler,
		ReadTimeout:  a.Config.ReadTimeout(),
		WriteTimeout: a.Config.WriteTimeout(),
	}
}

// RunAppServer starts the blog and blocks until SIGINT or SIGTERM.
func RunAppServer(cfg *config.Config) int {
	log, err := logger.New(cfg.Log, cfg.Server.Mode)
	if err != nil {
		fmt.Printf("Failed to set up logging: %v\n", err)
		return 1
	}
	defer log.Sync()

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		fmt.Printf("Failed to start: %v\n", err)
		return 1
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := app.Server()
	log.Info("starting yatube",
		zap.String("addr", srv.Addr),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("mode", cfg.Server.Mode),
		zap.String("cache", cfg.Cache.Backend),
		zap.String("blobs", cfg.Blob.Backend))
	fmt.Printf("Serving on %s\n", srv.Addr)

	if err := listenAndServe(ctx, srv, log); err != nil {
		log.Error("server error", zap.Error(err))
		return 1
	}
	log.Info("server stopped")
	return 0
}

// listenAndServe runs srv until ctx is done, then shuts it down gracefully.
func listenAndServe(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
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

	log.Info("shutting down", zap.Duration("grace", shutdownGrace))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
