package routes

import (
	"log"
	"time"

	"csshub/backend/config"
	"csshub/backend/controllers"
	"csshub/backend/middleware"
	"csshub/backend/quiz"
	"csshub/backend/repository"
	"csshub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// NewQuizService wires the quiz engine to the database with limits and
// defaults taken from the config.
func NewQuizService(db *gorm.DB, cfg *config.Config, logger *log.Logger) *quiz.Service {
	return quiz.NewService(repository.NewQuizStore(db), quiz.Options{
		Limits: quiz.TierLimits{
			Anonymous: cfg.Quiz.AnonDailyLimit,
			Free:      cfg.Quiz.FreeDailyLimit,
		},
		Defaults: quiz.SettingsDefaults{
			QuestionsPerTest: cfg.Quiz.QuestionsPerTest,
			TimePerQuestion:  cfg.Quiz.TimePerQuestion,
		},
		Logger: logger,
	})
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, service *quiz.Service, logger *log.Logger) {
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db)
	optionalAuth := middleware.OptionalAuth(db, cfg)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	auth := app.Group("/api/auth", limiter.New(limiter.Config{
		Max:        cfg.AuthRateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.Error(c, fiber.StatusTooManyRequests, fiber.ErrTooManyRequests)
		},
	}))
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Get("/api/user/logins", authMiddleware, userController.GetLoginHistory)

	// Quiz routes, open to guests
	quizController := controllers.NewQuizController(db, cfg, service, logger)
	quizGroup := app.Group("/api/quiz", optionalAuth)
	quizGroup.Get("/limit", quizController.GetLimit)
	quizGroup.Get("/leaderboard", quizController.GetLeaderboard)
	quizGroup.Get("/history", authMiddleware, quizController.GetHistory)
	quizGroup.Get("/:category/test", quizController.GenerateTest)
	quizGroup.Post("/:category/submit", quizController.SubmitTest)

	// Gallery routes
	galleryController := controllers.NewGalleryController(db, cfg)
	gallery := app.Group("/api/gallery")
	gallery.Get("/", galleryController.ListPublic)
	gallery.Get("/mine", authMiddleware, galleryController.ListMine)
	gallery.Post("/", authMiddleware, galleryController.CreateItem)
	gallery.Get("/:id", optionalAuth, galleryController.GetItem)
	gallery.Put("/:id", authMiddleware, galleryController.UpdateItem)
	gallery.Delete("/:id", optionalAuth, authMiddleware, galleryController.DeleteItem)

	// Forum routes
	forumController := controllers.NewForumController(db, cfg)
	forum := app.Group("/api/forum")
	forum.Get("/threads", forumController.ListThreads)
	forum.Get("/threads/:id", forumController.GetThread)
	forum.Post("/threads", authMiddleware, forumController.CreateThread)
	forum.Post("/threads/:id/posts", authMiddleware, forumController.CreatePost)
	forum.Delete("/posts/:id", optionalAuth, authMiddleware, forumController.DeletePost)
	forum.Post("/posts/:id/report", authMiddleware, forumController.ReportPost)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)

	adminQuizController := controllers.NewAdminQuizController(db, cfg, service)
	admin.Get("/quiz/questions", adminQuizController.ListQuestions)
	admin.Post("/quiz/questions", adminQuizController.CreateQuestion)
	admin.Get("/quiz/questions/:id", adminQuizController.ReviewQuestion)
	admin.Put("/quiz/questions/:id", adminQuizController.UpdateQuestion)
	admin.Delete("/quiz/questions/:id", adminQuizController.DeleteQuestion)
	admin.Get("/quiz/settings", adminQuizController.GetSettings)
	admin.Put("/quiz/settings", adminQuizController.UpdateSettings)
	admin.Get("/quiz/stats", adminQuizController.GetStats)

	admin.Get("/gallery/queue", galleryController.ModerationQueue)
	admin.Post("/gallery/:id/approve", galleryController.ApproveItem)
	admin.Post("/gallery/:id/reject", galleryController.RejectItem)

	admin.Put("/forum/threads/:id", forumController.UpdateThreadFlags)
	admin.Get("/forum/reports", forumController.ListReports)
	admin.Post("/forum/reports/:id/resolve", forumController.ResolveReport)
}
