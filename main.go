package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/DuaShare/controllers"
	"github.com/DuaShare/initializers"
	"github.com/DuaShare/middlewares"
	"github.com/DuaShare/services"
	"github.com/DuaShare/stores"
	"github.com/DuaShare/supabase"
)

func main() {
	initializers.LoadEnv()

	cfg, err := initializers.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	initializers.ConfigureLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg *initializers.Config) error {
	var supa *supabase.Client
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		client, err := supabase.New(supabase.Config{URL: cfg.SupabaseURL, APIKey: cfg.SupabaseKey})
		if err != nil {
			return err
		}
		supa = client
	}

	store, err := openStore(cfg, supa)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}()

	registry, redisClient, err := openSessionRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	auth, err := buildAuthenticator(ctx, cfg, store, supa)
	if err != nil {
		return err
	}

	notifier := buildNotificationTrigger(ctx, cfg)
	defer notifier.Wait()

	feed := services.NewPrayerFeed(store)
	sessions := services.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, registry)

	router := gin.New()
	router.Use(gin.Recovery(), middlewares.RequestLogger())
	controllers.RegisterRoutes(router, controllers.Routes{
		Prayers:  controllers.NewPrayerController(store, feed, notifier),
		Admin:    controllers.NewAdminController(auth, sessions, store, feed, cfg.CookieSecure),
		Sessions: sessions,
		Limiter:  middlewares.NewRateLimiter(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"port": cfg.Port, "store": cfg.StoreDriver, "auth": cfg.AdminAuthMode}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func openStore(cfg *initializers.Config, supa *supabase.Client) (stores.Store, error) {
	switch cfg.StoreDriver {
	case initializers.StoreMemory:
		log.Warn("using in-memory store, prayers are lost on restart")
		return stores.NewMemoryStore(), nil
	case initializers.StoreSupabase:
		return stores.NewSupabaseStore(supa), nil
	default:
		db, raw, err := initializers.ConnectDB(cfg.DBURL)
		if err != nil {
			return nil, err
		}
		if cfg.RunMigrations {
			if err := initializers.RunMigrations(raw); err != nil {
				raw.Close()
				return nil, err
			}
			log.Info("database migrations applied")
		}
		return stores.NewPostgresStore(db, raw), nil
	}
}

func openSessionRegistry(ctx context.Context, cfg *initializers.Config) (services.SessionRegistry, *redis.Client, error) {
	if cfg.SessionStore != initializers.SessionStoreRedis {
		return services.NewMemorySessionRegistry(), nil, nil
	}

	client, err := initializers.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return services.NewRedisSessionRegistry(client), client, nil
}

func buildAuthenticator(ctx context.Context, cfg *initializers.Config, users stores.UserStore, supa *supabase.Client) (services.Authenticator, error) {
	switch cfg.AdminAuthMode {
	case initializers.AuthModeUsers:
		if cfg.AdminPassword != "" {
			if err := services.SeedAdminUser(ctx, users, cfg.AdminUsername, cfg.AdminPassword); err != nil {
				return nil, fmt.Errorf("seed admin user: %w", err)
			}
		}
		return services.NewUserAuthenticator(users), nil
	case initializers.AuthModeSupabase:
		return services.NewSupabaseAuthenticator(supa, cfg.AdminEmail), nil
	default:
		return services.NewPasswordAuthenticator(cfg.AdminPassword, cfg.AdminPasswordHash), nil
	}
}

func buildNotificationTrigger(ctx context.Context, cfg *initializers.Config) *services.NotificationTrigger {
	var notifiers []services.PrayerNotifier

	if email := services.NewEmailNotifier(cfg.ResendAPIKey, cfg.NotifyEmailFrom, cfg.NotifyEmailTo); email != nil {
		notifiers = append(notifiers, email)
	}

	if cfg.FirebaseEnabled {
		push, err := services.NewPushNotifier(ctx, cfg.FirebaseCredentialsPath, cfg.PushTopic)
		if err != nil {
			log.WithError(err).Warn("push notifications disabled")
		} else {
			notifiers = append(notifiers, push)
		}
	}

	return services.NewNotificationTrigger(notifiers...)
}
