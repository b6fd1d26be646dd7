package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yoockh/recruitportal/config"
	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/api/handlers"
	"github.com/yoockh/recruitportal/internal/api/middleware"
	"github.com/yoockh/recruitportal/internal/api/routes"
	"github.com/yoockh/recruitportal/internal/feed"
	"github.com/yoockh/recruitportal/internal/identity"
	"github.com/yoockh/recruitportal/internal/logger"
	"github.com/yoockh/recruitportal/internal/mailer"
	mongorepo "github.com/yoockh/recruitportal/internal/repositories/mongo"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/services"
	"github.com/yoockh/recruitportal/internal/storage"
	"github.com/yoockh/recruitportal/internal/workers"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	settings, err := config.LoadSettings()
	if err != nil {
		log.WithError(err).Fatal("config error")
	}

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init error")
	}
	log.Info("PostgreSQL connected")
	if os.Getenv("AUTO_MIGRATE") == "true" {
		if err := config.Migrate(config.PostgresDB); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
	}

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init error")
	}
	log.Info("Redis connected")

	var events mongorepo.EventRepository
	if os.Getenv("MONGO_URI") != "" {
		if err := config.InitMongo(); err != nil {
			log.WithError(err).Fatal("MongoDB init error")
		}
		if err := config.EnsureMongoIndexes(); err != nil {
			log.WithError(err).Warn("mongo index setup failed")
		}
		events = mongorepo.NewEventRepo(config.MongoDatabase())
		log.Info("MongoDB connected")
	} else {
		log.Warn("MONGO_URI not set; pipeline history disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := pgrepo.NewStore(config.PostgresDB)
	if err := store.Users().EnsureRoles(ctx, roleNames()); err != nil {
		log.WithError(err).Fatal("failed to seed roles")
	}

	var uploader *storage.GCSUploader
	if settings.GCSBucket != "" {
		uploader, err = storage.NewGCSUploader(ctx, settings.GCSBucket)
		if err != nil {
			log.WithError(err).Fatal("GCS init error")
		}
		defer uploader.Close()
	} else {
		log.Warn("GCS_BUCKET not set; application uploads are disabled")
	}

	token := identity.TokenConfig{
		Secret:   settings.JWTSecret,
		Issuer:   settings.JWTIssuer,
		Audience: settings.JWTAudience,
		TTL:      settings.JWTTTL,
	}
	var idp identity.Provider
	if settings.AuthProvider == "local" {
		idp = identity.NewLocalProvider(store.Users(), token)
	} else {
		idp = identity.NewGoTrueProvider(identity.GoTrueConfig{
			URL:            settings.SupabaseURL,
			AnonKey:        settings.SupabaseAnonKey,
			ServiceRoleKey: settings.SupabaseServiceKey,
		})
	}

	notes := feed.NewRedisFeed(config.RedisClient, "")
	publisher := &workers.RedisPublisher{Redis: config.RedisClient}

	appDeps := services.ApplicationDeps{Store: store, Events: events, Feed: notes, Logger: log}
	if uploader != nil {
		appDeps.Uploader = uploader
		appDeps.Signer = uploader
	}
	apps := services.NewApplicationService(appDeps)
	pipe := services.NewPipelineService(services.PipelineDeps{
		Store:  store,
		Events: events,
		Outbox: publisher,
		Feed:   notes,
		Logger: log,
		AppURL: settings.AppURL,
	})
	users := services.NewUserService(store.Users(), idp, log)
	slots := services.NewSlotService(store, nil)

	if settings.MailEnabled() {
		pool := &workers.EmailWorkerPool{
			Redis: config.RedisClient,
			Dispatcher: &workers.Dispatcher{
				Outbox: store.Outbox(),
				Notifier: mailer.NewSMTPNotifier(mailer.SMTPConfig{
					Host:        settings.SMTPHost,
					Port:        settings.SMTPPort,
					Username:    settings.SMTPUsername,
					Password:    settings.SMTPPassword,
					From:        settings.SMTPFrom,
					ImplicitTLS: settings.SMTPImplicitTLS,
				}, mailer.Branding{
					Organization: settings.Organization,
					Program:      settings.Program,
					SenderName:   settings.SenderName,
				}),
				Limiter:     rate.NewLimiter(settings.SMTPRateLimit(), 1),
				MaxAttempts: settings.EmailMaxAttempts,
				Logger:      log,
			},
			NumWorkers: settings.EmailWorkers,
			Logger:     log,
		}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Fatal("email workers failed to start")
		}
		log.WithField("workers", settings.EmailWorkers).Info("email workers started")
	} else {
		log.Warn("SMTP_HOST not set; candidate emails stay queued in the outbox")
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.MaxMultipartMemory = 12 << 20

	routes.RegisterRoutes(r, routes.Deps{
		Token:               token,
		Principals:          users,
		Limiter:             middleware.NewRedisLimiter(config.RedisClient, log),
		ApplicationsPerHour: settings.ApplicationsPerHour,

		Auth:          handlers.NewAuthHandler(users),
		Applications:  handlers.NewApplicationHandler(apps),
		Booking:       handlers.NewBookingHandler(slots, pipe),
		Candidates:    handlers.NewCandidateHandler(apps, pipe),
		Slots:         handlers.NewSlotHandler(slots),
		Interviews:    handlers.NewInterviewHandler(services.NewInterviewService(store.Interviews()), pipe),
		Notifications: handlers.NewNotificationHandler(services.NewNotificationService(store.Notifications()), notes, settings.AllowedOrigin, log),
		Users:         handlers.NewUserHandler(users),
		Dashboard:     handlers.NewDashboardHandler(services.NewDashboardService(store, nil)),
		Outbox:        handlers.NewOutboxHandler(services.NewOutboxService(store.Outbox(), publisher, log)),
	})

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", settings.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	_ = config.RedisClient.Close()
	if config.MongoClient != nil {
		_ = config.MongoClient.Disconnect(shutdownCtx)
	}
	log.WithFields(logrus.Fields{"signal": ctx.Err()}).Info("stopped")
}

func roleNames() []string {
	out := make([]string, 0, len(access.AllRoles))
	for _, r := range access.AllRoles {
		out = append(out, string(r))
	}
	return out
}
