package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/asaulyak/goit-pythonweb-hw-012/internal/cache"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/config"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/metrics"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/middleware"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/notify"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/password"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/rest"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/router"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/service"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/store"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/token"
)

func run(ctx context.Context) error {
	slog.Info("starting contacts service")

	cfg := config.FromEnv()
	db, err := store.NewPostgresDB(store.PostgresConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DB:       cfg.DB.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer db.Close()

	pgs := store.NewPostgresStore(db)

	snapshots, err := newCache(cfg)
	if err != nil {
		return fmt.Errorf("failed to create identity cache: %w", err)
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return fmt.Errorf("failed to create notifier: %w", err)
	}

	hasher := password.NewHasher()
	issuer := token.NewIssuer(token.IssuerConfig{
		Secret:     token.NewSecretString(cfg.JWT.Secret),
		DefaultTTL: cfg.JWT.TTL,
	})

	resolver := service.NewResolver(
		service.WithResolverTokens(issuer),
		service.WithResolverStore(pgs),
		service.WithResolverCache(snapshots),
	)
	auth := service.NewAuth(
		service.WithAuthStore(pgs),
		service.WithAuthHasher(hasher),
		service.WithAuthTokens(issuer),
		service.WithAuthNotifier(notifier),
		service.WithAuthHost(cfg.HTTP.Host),
	)
	contacts := service.NewContacts(
		service.WithContactsStore(pgs),
		service.WithContactsHasher(hasher),
		service.WithContactsNotifier(notifier),
		service.WithContactsHost(cfg.HTTP.Host),
	)

	m := metrics.New()

	rt := router.New()
	rt.Use(middleware.Recover(), middleware.Log(), m.Instrument())
	rt.Handle("GET /metrics", m.Handler())
	rt.Handle("/", rest.NewAPI(auth, contacts, resolver, db))

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		Handler:      rt,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func newCache(cfg config.Config) (cache.Cache, error) {
	if cfg.Cache.RedisHost != "" {
		return cache.NewRedis(cache.RedisConfig{
			Host:     cfg.Cache.RedisHost,
			Port:     cfg.Cache.RedisPort,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		}), nil
	}

	return cache.NewRistretto(cache.RistrettoConfig{
		MaxKeys: cfg.Cache.MaxKeys,
		TTL:     cfg.Cache.TTL,
	})
}

func newNotifier(cfg config.Config) (notify.Notifier, error) {
	if cfg.Mail.Host == "" {
		slog.Warn("MAIL_HOST not set, emails will only be logged")
		return notify.NewLog(), nil
	}

	return notify.NewSMTP(notify.SMTPConfig{
		Host:       cfg.Mail.Host,
		User:       cfg.Mail.User,
		Password:   cfg.Mail.Password,
		From:       cfg.Mail.From,
		FromName:   cfg.Mail.FromName,
		SkipVerify: cfg.Mail.SkipVerify,
	})
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("contacts service terminated with error", "error", err)
		os.Exit(1)
	}
}
