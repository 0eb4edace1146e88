package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lectoria/lectoria-api/internal/config"
	"github.com/lectoria/lectoria-api/internal/database"
	"github.com/lectoria/lectoria-api/internal/handler"
	"github.com/lectoria/lectoria-api/internal/middleware"
	"github.com/lectoria/lectoria-api/internal/models"
	"github.com/lectoria/lectoria-api/internal/repository"
	"github.com/lectoria/lectoria-api/internal/router"
	"github.com/lectoria/lectoria-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Actor{}, &models.Course{}, &models.CourseAssignment{}, &models.AuditRecord{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, actor directory cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NatsURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NatsURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not set, audit events will not be published")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	actorRepo := repository.NewActorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewCourseAssignmentRepository(db)
	auditRepo := repository.NewAuditRecordRepository(db)

	directory := service.NewDirectoryService(actorRepo, redisClient, cfg.DirectoryCacheTTL, logger)
	auditService := service.NewAuditService(auditRepo, natsConn, cfg.AuditSubject, logger)
	permissionService := service.NewPermissionService(directory, assignmentRepo, logger)
	guard := service.NewContentFieldGuard()
	courseService := service.NewCourseService(courseRepo, permissionService, directory, guard, auditService, validate, logger)
	assignmentService := service.NewCourseAssignmentService(assignmentRepo, courseRepo, permissionService, directory, auditService, validate, logger)

	authzHandler := handler.NewAuthzHandler(permissionService, assignmentService, validate, logger)
	courseHandler := handler.NewCourseHandler(courseService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	auditHandler := handler.NewAuditHandler(auditService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthzHandler:      authzHandler,
		CourseHandler:     courseHandler,
		AssignmentHandler: assignmentHandler,
		AuditHandler:      auditHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
