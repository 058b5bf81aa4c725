package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/eventosu/config"
	"github.com/Eursukkul/eventosu/internal/consumer"
	"github.com/Eursukkul/eventosu/internal/handler"
	"github.com/Eursukkul/eventosu/internal/middleware"
	"github.com/Eursukkul/eventosu/internal/repository"
	"github.com/Eursukkul/eventosu/internal/service"
	"github.com/Eursukkul/eventosu/pkg/database"
	"github.com/Eursukkul/eventosu/pkg/rabbitmq"
	"github.com/Eursukkul/eventosu/pkg/redisdb"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("invalid timezone: %v", err)
	}

	docs, closeStore := openDocumentStore(cfg)
	defer closeStore()

	// Broker is optional: without RABBITMQ_URL nothing is published.
	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer p.Close()
		publisher = p
	}

	// Repository
	eventRepo := repository.NewEventRepository(docs)

	// Services
	eventSvc := service.NewEventService(eventRepo, publisher, loc)
	registrationSvc := service.NewRegistrationService(eventRepo, publisher)
	console := service.NewAttendeeConsole(eventRepo, publisher)
	eventSvc.Subscribe(console)
	registrationSvc.Subscribe(console)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := eventSvc.EnsureSeeded(ctx); err != nil {
		log.Fatalf("failed to seed events: %v", err)
	}
	if err := console.Initialize(ctx); err != nil {
		log.Fatalf("failed to load attendees: %v", err)
	}
	cancel()

	// RabbitMQ consumer: import events announced by other services
	if cfg.SyncEvents && cfg.RabbitURL != "" {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewEventConsumer(eventSvc).Start(msgs)
	}

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "eventosu", "store": cfg.StoreBackend})
	})

	events := e.Group("/api/v1/events")
	handler.NewEventHandler(eventSvc).RegisterRoutes(events)
	handler.NewRegistrationHandler(registrationSvc).RegisterRoutes(events)
	handler.NewAttendeeHandler(console).RegisterRoutes(e.Group("/api/v1/attendees"))

	go func() {
		log.Printf("EventosU starting on :%s (store: %s)", cfg.ServerPort, cfg.StoreBackend)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openDocumentStore connects the backend selected by STORE_BACKEND.
func openDocumentStore(cfg *config.Config) (repository.DocumentRepository, func()) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client, err := redisdb.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		return repository.NewRedisDocumentRepository(client), func() { client.Close() }
	case config.BackendMemory:
		log.Println("[EventStore] using in-memory store, data is lost on restart")
		return repository.NewMemoryDocumentRepository(), func() {}
	default:
		db, err := database.NewPostgresDB(cfg.DSN())
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		return repository.NewGormDocumentRepository(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
	}
}
