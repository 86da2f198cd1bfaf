package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"race-service/internal/config"
	"race-service/internal/db"
	"race-service/internal/handlers"
	"race-service/internal/middleware"
	"race-service/internal/observability"
	"race-service/internal/rabbitmq"
	"race-service/internal/repositories"
	"race-service/internal/telemetry"
	"race-service/internal/ws"
	"race-service/pkg/jwt"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}

	if cfg.Otel.Enabled {
		shutdown, err := observability.SetupTracing(context.Background(), "race-service", cfg.Otel.Endpoint)
		if err != nil {
			logger.WithError(err).Fatal("failed to setup tracing")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	database, err := db.Connect(cfg.DB, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to db")
	}

	eventsPublisher, err := observability.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		logger.WithError(err).Warn("ws event publishing disabled")
	} else {
		observability.SetPublisher(eventsPublisher)
		defer eventsPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
	defer auditPublisher.Close()
	logger.WithField("mode", rabbitmq.PublisherMode(auditPublisher)).Info("audit publisher ready")

	audit := telemetry.NewAuditEmitter(auditPublisher, "audit_log.race", "race-service", cfg.Server.Environment, logger)

	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	eventRepo := repositories.NewEventRepo(database)
	enrollmentRepo := repositories.NewEnrollmentRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	hub := ws.NewHub(logger)

	eventHandler := handlers.NewEventHandler(eventRepo)
	enrollmentHandler := handlers.NewEnrollmentHandler(eventRepo, enrollmentRepo, hub, audit)
	messageHandler := handlers.NewMessageHandler(eventRepo, messageRepo, hub)

	raceWS := ws.NewRaceWebSocketHandler(hub, eventRepo)
	chatWS := ws.NewChatWebSocketHandler(hub, eventRepo, messageRepo, tokens)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("race-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(tokens)
	officialOnly := middleware.RequireRole(middleware.RoleOfficial, middleware.RoleOrganizer)
	organizerOnly := middleware.RequireRole(middleware.RoleOrganizer)

	// Public: the race-status view is unauthenticated.
	router.GET("/events/:event_id", eventHandler.GetEvent)
	router.GET("/events/:event_id/enrollments", enrollmentHandler.ListEnrollments)

	router.POST("/events", authMiddleware, organizerOnly, eventHandler.CreateEvent)
	router.POST("/events/:event_id/enrollments", authMiddleware, organizerOnly, enrollmentHandler.Enroll)
	router.POST("/events/:event_id/enrollments/:dorsal/status", authMiddleware, officialOnly, enrollmentHandler.UpdateStatus)

	router.GET("/events/:event_id/messages", authMiddleware, messageHandler.GetEventMessages)
	router.POST("/events/:event_id/messages", authMiddleware, messageHandler.PostEventMessage)

	router.GET("/ws/race-status/:event_id", raceWS.Handle)
	router.GET("/ws/chat/:event_id", chatWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, tokens, cfg.Server.DebugRoutes)

	logger.WithField("port", cfg.Server.Port).Info("race service listening")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
