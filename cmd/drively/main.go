package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"drively/internal/app/commands"
	checkoutapp "drively/internal/app/handlers/checkout"
	"drively/internal/app/middleware"
	appoutbox "drively/internal/app/outbox"
	authsvc "drively/internal/app/services/auth"
	domainbooking "drively/internal/domain/booking"
	"drively/internal/infra/bookingsvc"
	"drively/internal/infra/broker/kafka"
	"drively/internal/infra/config"
	"drively/internal/infra/db/mongo"
	ginserver "drively/internal/infra/http/gin"
	"drively/internal/infra/navigation"
	"drively/internal/infra/notify"
	"drively/internal/infra/obs"
	infraoutbox "drively/internal/infra/outbox"
	"drively/internal/infra/payment"
	"drively/internal/infra/security"
	"drively/internal/infra/storage/memory"
	"drively/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := cfg.CarsFixtures
	if fixturesPath == "" {
		fixturesPath = filepath.Join("data", "cars.json")
	}
	if _, err := os.Stat(fixturesPath); err == nil {
		count, err := app.cars.LoadFixtures(ctx, fixturesPath)
		if err != nil {
			logger.Warn("car fixtures load failed", "error", err, "path", fixturesPath)
		} else {
			logger.Info("car fixtures imported", "count", count, "path", fixturesPath)
		}
	} else {
		logger.Info("car fixtures file not found, skipping", "path", fixturesPath)
	}

	go app.checkouts.Janitor(ctx, cfg.CheckoutTTL, time.Minute, logger)

	go func() {
		// the provider may boot after us
		for {
			if err := app.payments.Handshake(ctx); err == nil {
				return
			} else if logger != nil {
				logger.Debug("payment provider not ready", "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}()

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		if app.producer != nil {
			if err := app.producer.Close(); err != nil {
				logger.Error("kafka producer close failed", "error", err)
			}
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers  ginserver.Handlers
	cars      *memory.CarRepository
	checkouts *memory.CheckoutStore
	payments  *payment.Client
	producer  *kafka.Producer
	worker    *infraoutbox.Worker
	ready     func() error
}

func buildApplication(cfg config.Config, logger *slog.Logger) (*application, error) {
	carsRepo := memory.NewCarRepository()
	checkoutStore := memory.NewCheckoutStore()
	usersRepo := memory.NewUserRepository()
	authSessions := memory.NewAuthSessionStore()
	outboxStore := memory.NewOutboxStore()

	var bookingRepo domainbooking.Repository = memory.NewBookingRepository()
	var idStore middleware.IdempotencyStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	ready := func() error { return nil }
	if cfg.StoreMode == "mongo" {
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		bookingRepo = mongo.NewBookingRepository(client.DB)
		idStore = mongo.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
	}

	var images s3.ImageResolver = s3.NoopResolver{}
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Warn("object store unavailable, car images disabled", "error", err)
		} else {
			images = client
		}
	}

	payClient := &payment.Client{
		HTTP:    &http.Client{Timeout: cfg.PaymentTimeout},
		BaseURL: cfg.PaymentAPIBase,
		APIKey:  cfg.PaymentAPIKey,
		Logger:  logger,
	}

	notifier := notify.NewFeedNotifier(logger)
	registry := navigation.NewRegistry()
	encoder := appoutbox.JSONEventEncoder{}
	authService := &authsvc.Service{
		Users:      usersRepo,
		Sessions:   authSessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	bookingCreator := &bookingsvc.Creator{Bookings: bookingRepo}

	bus := commands.NewInMemoryBus()
	startHandler := &checkoutapp.StartCheckoutHandler{
		Cars:         carsRepo,
		Sessions:     checkoutStore,
		Interceptors: registry,
		Outbox:       outboxStore,
		Encoder:      encoder,
	}
	commands.RegisterHandler(bus, checkoutapp.StartCheckoutCommand{}.Key(), startHandler)

	draftHandler := &checkoutapp.UpdateDraftHandler{Sessions: checkoutStore}
	commands.RegisterHandler(bus, checkoutapp.SetDatesCommand{}.Key(),
		commands.HandlerFunc[checkoutapp.SetDatesCommand, *checkoutapp.DraftResult](draftHandler.HandleSetDates))
	commands.RegisterHandler(bus, checkoutapp.SetAddOnCommand{}.Key(),
		commands.HandlerFunc[checkoutapp.SetAddOnCommand, *checkoutapp.DraftResult](draftHandler.HandleSetAddOn))
	commands.RegisterHandler(bus, checkoutapp.SetLocationsCommand{}.Key(),
		commands.HandlerFunc[checkoutapp.SetLocationsCommand, *checkoutapp.DraftResult](draftHandler.HandleSetLocations))
	commands.RegisterHandler(bus, checkoutapp.SetSpecialRequestsCommand{}.Key(),
		commands.HandlerFunc[checkoutapp.SetSpecialRequestsCommand, *checkoutapp.DraftResult](draftHandler.HandleSetSpecialRequests))

	continueHandler := &checkoutapp.ContinueToPaymentHandler{
		Sessions: checkoutStore,
		Payments: payClient,
		Provider: payClient,
		Notifier: notifier,
		Outbox:   outboxStore,
		Encoder:  encoder,
		Logger:   logger,
	}
	commands.RegisterHandler(bus, checkoutapp.ContinueToPaymentCommand{}.Key(), continueHandler)

	reviewHandler := &checkoutapp.ReviewCheckoutHandler{Sessions: checkoutStore}
	commands.RegisterHandler(bus, checkoutapp.ReviewCheckoutCommand{}.Key(), reviewHandler)

	confirmHandler := &checkoutapp.ConfirmBookingHandler{
		Sessions: checkoutStore,
		Bookings: bookingCreator,
		Notifier: notifier,
		Outbox:   outboxStore,
		Encoder:  encoder,
		Logger:   logger,
	}
	commands.RegisterHandler(bus, checkoutapp.ConfirmBookingCommand{}.Key(), confirmHandler)

	cancelHandler := &checkoutapp.CancelCheckoutHandler{
		Sessions: checkoutStore,
		Outbox:   outboxStore,
		Encoder:  encoder,
	}
	commands.RegisterHandler(bus, checkoutapp.CancelCheckoutCommand{}.Key(), cancelHandler)

	busWithMiddleware := middleware.ChainCommands(
		bus,
		middleware.Logging(logger),
		middleware.Idempotency(idStore, nil),
	)

	var producer *kafka.Producer
	var worker *infraoutbox.Worker
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Warn("kafka unavailable, events stay queued", "error", err)
		} else {
			producer = p
			worker = &infraoutbox.Worker{
				Store:       outboxStore,
				Producer:    producer,
				Logger:      logger,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		}
	}

	authMW := ginserver.AuthMiddleware{Service: authService, Logger: logger}
	handlers := ginserver.Handlers{
		Checkout: ginserver.CheckoutHandler{
			Commands: busWithMiddleware,
			Sessions: checkoutStore,
		},
		Cars: ginserver.CarsHandler{
			Cars:   carsRepo,
			Images: images,
			Logger: logger,
		},
		Auth: ginserver.AuthHandler{Service: authService, Logger: logger},
		Me: ginserver.MeHandler{
			Bookings: bookingRepo,
			Notifier: notifier,
		},
		AuthMiddleware: authMW.Handle,
	}

	return &application{
		handlers:  handlers,
		cars:      carsRepo,
		checkouts: checkoutStore,
		payments:  payClient,
		producer:  producer,
		worker:    worker,
		ready:     ready,
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
