package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"csshub/backend/config"
	"csshub/backend/middleware"
	"csshub/backend/quiz"
	"csshub/backend/repository"
	"csshub/backend/routes"
	"csshub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Attempt counters older than this are useless: quotas only look at today.
const counterRetention = 7 * 24 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{
		Format:       cfg.LogFormat,
		EnableColors: cfg.LogFormat == "text",
	})

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatalf("Error initializing database: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName: "CSS Hub",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "Retry-After",
	}))
	app.Use(middleware.LoggingMiddleware(logger, cfg.LogFormat))

	// Setup routes
	service := routes.NewQuizService(db, cfg, logger)
	routes.SetupRoutes(app, db, cfg, service, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeCounters(ctx, repository.NewQuizStore(db), logger)

	go func() {
		<-ctx.Done()
		logger.Println("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
	}()

	// Start server
	logger.Printf("Listening on :%s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}

// purgeCounters deletes stale attempt counters once a day.
func purgeCounters(ctx context.Context, store *repository.QuizStore, logger *log.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		before := quiz.Day(time.Now().Add(-counterRetention))
		n, err := store.PurgeAttemptCounters(ctx, before)
		if err != nil {
			logger.Printf("Purge attempt counters: %v", err)
		} else if n > 0 {
			logger.Printf("Purged %d attempt counters before %s", n, before)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
