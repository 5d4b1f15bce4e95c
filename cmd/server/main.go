// Command server runs the vowline API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	clienthandler "vowline/internal/client/handler"
	clientmetrics "vowline/internal/client/metrics"
	clientservice "vowline/internal/client/service"
	clientstore "vowline/internal/client/store"
	identityhandler "vowline/internal/identity/handler"
	identitymetrics "vowline/internal/identity/metrics"
	identityservice "vowline/internal/identity/service"
	identitystore "vowline/internal/identity/store"
	"vowline/internal/identity/token"
	integrationshandler "vowline/internal/integrations/handler"
	integrationsservice "vowline/internal/integrations/service"
	notehandler "vowline/internal/note/handler"
	noteservice "vowline/internal/note/service"
	notestore "vowline/internal/note/store"
	notificationhandler "vowline/internal/notification/handler"
	notificationmetrics "vowline/internal/notification/metrics"
	notificationservice "vowline/internal/notification/service"
	notificationstore "vowline/internal/notification/store"
	"vowline/internal/notification/worker"
	"vowline/internal/platform/config"
	"vowline/internal/platform/httpserver"
	"vowline/internal/platform/kafka"
	"vowline/internal/platform/logger"
	"vowline/internal/platform/mailer"
	"vowline/internal/platform/metrics"
	"vowline/internal/platform/postgres"
	platformredis "vowline/internal/platform/redis"
	taskhandler "vowline/internal/task/handler"
	taskservice "vowline/internal/task/service"
	taskstore "vowline/internal/task/store"
	tenanthandler "vowline/internal/tenant/handler"
	tenantmetrics "vowline/internal/tenant/metrics"
	tenantservice "vowline/internal/tenant/service"
	tenantstore "vowline/internal/tenant/store"
	transport "vowline/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	producer, err := kafka.NewProducer(ctx, cfg.Kafka, log)
	if err != nil {
		log.Warn("kafka unavailable, event emission disabled", "error", err)
	}

	var mail identityservice.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTP(cfg.SMTP)
	} else {
		mail = mailer.NewLog(log)
	}

	tokens, err := token.NewService([]byte(cfg.Auth.JWTSigningKey), cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL)
	if err != nil {
		return fmt.Errorf("configure token service: %w", err)
	}

	// Stores.
	tenants := tenantstore.NewPostgres(db)
	clients := clientstore.NewPostgres(db)
	tasks := taskstore.NewPostgres(db)
	notes := notestore.NewPostgres(db)
	users := identitystore.NewUserPostgres(db)
	notifications := notificationstore.NewPostgres(db)

	var sessions identityservice.SessionStore
	if redisClient != nil {
		sessions = identitystore.NewSessionRedis(redisClient.Client)
	} else {
		log.Warn("redis not configured, using in-memory sessions")
		sessions = identitystore.NewSessionMemory()
	}

	logos, err := tenantstore.NewDiskLogoStore(cfg.LogoDir)
	if err != nil {
		return fmt.Errorf("prepare logo storage: %w", err)
	}

	// Metrics.
	platformMetrics := metrics.New()

	// Notification fan-out worker.
	fanout := worker.New(notifications, users, 256,
		worker.WithLogger(log),
		worker.WithMetrics(notificationmetrics.New()),
		worker.WithMailer(mail),
		worker.WithPublisher(producer),
	)

	// Services.
	identitySvc := identityservice.New(users, sessions, tokens, clients, tenants,
		identityservice.Config{
			SessionTTL:       cfg.Auth.SessionTTL,
			ResetTokenTTL:    cfg.Auth.ResetTokenTTL,
			MaxLoginFailures: cfg.Auth.MaxLoginFailures,
			LockoutDuration:  cfg.Auth.LockoutDuration,
		},
		identityservice.WithLogger(log),
		identityservice.WithMetrics(identitymetrics.New()),
		identityservice.WithMailer(mail),
		identityservice.WithProfileDirectory(clients),
	)
	tenantSvc := tenantservice.New(tenants,
		tenantservice.WithLogger(log),
		tenantservice.WithMetrics(tenantmetrics.New()),
		tenantservice.WithLogoStore(logos),
	)
	clientSvc := clientservice.New(clients, tenants,
		clientservice.WithLogger(log),
		clientservice.WithMetrics(clientmetrics.New()),
	)
	taskSvc := taskservice.New(tasks, clients,
		taskservice.WithLogger(log),
		taskservice.WithEvents(fanout),
	)
	noteSvc := noteservice.New(notes, clients,
		noteservice.WithLogger(log),
		noteservice.WithEvents(fanout),
	)
	notificationSvc := notificationservice.New(notifications,
		notificationservice.WithLogger(log),
	)
	integrationsSvc := integrationsservice.New(cfg.Upstream,
		integrationsservice.WithLogger(log),
	)

	router := transport.New(transport.Deps{
		Logger:       log,
		Metrics:      platformMetrics,
		Resolver:     identitySvc,
		Identity:     identityhandler.New(identitySvc, log, cfg.SecureCookies),
		Tenant:       tenanthandler.New(tenantSvc, log),
		Client:       clienthandler.New(clientSvc, log),
		Task:         taskhandler.New(taskSvc, log),
		Note:         notehandler.New(noteSvc, log),
		Notification: notificationhandler.New(notificationSvc, log),
		Integrations: integrationshandler.New(integrationsSvc),
		LogoDir:      cfg.LogoDir,
		Timeout:      30 * time.Second,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := fanout.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := producer.Close(shutdownCtx); err != nil {
			log.Warn("kafka close failed", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
