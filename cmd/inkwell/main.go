package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dukerupert/inkwell/internal/backup"
	"github.com/dukerupert/inkwell/internal/config"
	"github.com/dukerupert/inkwell/internal/database"
	"github.com/dukerupert/inkwell/internal/handler"
	"github.com/dukerupert/inkwell/internal/logging"
	"github.com/dukerupert/inkwell/internal/middleware"
	"github.com/dukerupert/inkwell/internal/server"
)

func main() {
	restoreKey := flag.String("restore", "", "restore the database from this backup key and exit")
	flag.Parse()

	cfg, err := config.LoadAPI()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if *restoreKey != "" {
		mgr := backup.NewManager(backupConfig(cfg.Backup), nil, logger.With("component", "backup"))
		if err := mgr.Restore(context.Background(), *restoreKey, cfg.DBPath); err != nil {
			slog.Error("restore failed", "key", *restoreKey, "error", err)
			os.Exit(1)
		}
		slog.Info("database restored", "key", *restoreKey, "path", cfg.DBPath)
		return
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	memLimiter := middleware.NewRateLimiter()
	var limiter middleware.Limiter = memLimiter
	if cfg.RedisURL != "" {
		rdb, err := connectRedis(cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, rate limiting in memory", "error", err)
		} else {
			defer rdb.Close()
			limiter = middleware.NewRedisLimiter(rdb, logger.With("component", "ratelimit"))
			slog.Info("rate limiting via redis")
		}
	}

	var google handler.GoogleProvider
	if cfg.Google.Enabled() {
		google = handler.NewGoogleClient(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.CallbackURL)
	} else {
		slog.Info("google sign-in disabled")
	}

	srv, err := server.New(db, cfg, limiter, google, logger)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	backups := backup.NewManager(backupConfig(cfg.Backup), db, logger.With("component", "backup"))
	if cfg.Backup.Enabled() {
		backups.Start(cleanupCtx)
		slog.Info("database backups enabled", "bucket", cfg.Backup.Bucket, "interval", cfg.Backup.Interval)
	}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				memLimiter.Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("inkwell api starting", "addr", ":"+cfg.Port, "graphql", "/graphql")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	backups.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func backupConfig(b config.Backup) backup.Config {
	return backup.Config{
		S3: backup.S3Config{
			Endpoint:  b.Endpoint,
			Bucket:    b.Bucket,
			Region:    b.Region,
			AccessKey: b.AccessKey,
			SecretKey: b.SecretKey,
		},
		Prefix:     b.Prefix,
		Interval:   b.Interval,
		Retention:  b.Retention,
		Passphrase: b.Passphrase,
	}
}

func connectRedis(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}
