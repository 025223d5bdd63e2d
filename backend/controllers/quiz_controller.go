package controllers

import (
	"errors"
	"log"
	"strings"

	"csshub/backend/config"
	"csshub/backend/middleware"
	"csshub/backend/models"
	"csshub/backend/quiz"
	"csshub/backend/repository"
	"csshub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Service *quiz.Service
	Store   *repository.QuizStore
	Logger  *log.Logger
}

func NewQuizController(db *gorm.DB, cfg *config.Config, service *quiz.Service, logger *log.Logger) *QuizController {
	return &QuizController{
		DB:      db,
		Cfg:     cfg,
		Service: service,
		Store:   repository.NewQuizStore(db),
		Logger:  logger,
	}
}

type SubmitTestRequest struct {
	Language    string        `json:"language"`
	Answers     []quiz.Answer `json:"answers" validate:"required,min=1,dive"`
	TimeTaken   int           `json:"time_taken" validate:"min=0"`
	DisplayName string        `json:"display_name" validate:"max=64"`
}

// GetLimit godoc
// @Summary Remaining tests today
// @Description Quota status for the caller (token or client IP)
// @Tags quiz
// @Produce json
// @Success 200 {object} quiz.LimitStatus
// @Failure 500 {object} utils.ErrorResponse
// @Router /quiz/limit [get]
func (qc *QuizController) GetLimit(c *fiber.Ctx) error {
	status, err := qc.Service.CheckLimit(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return qc.quizError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, status)
}

// GenerateTest godoc
// @Summary Get a test
// @Description Returns the active test for this category and language, or generates a new one and consumes one attempt
// @Tags quiz
// @Produce json
// @Param category path string true "Category or all"
// @Param lang query string false "en or ru" default(en)
// @Success 200 {object} quiz.TestPayload
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Router /quiz/{category}/test [get]
func (qc *QuizController) GenerateTest(c *fiber.Ctx) error {
	lang := strings.ToLower(c.Query("lang", quiz.LangEN))
	category := strings.ToLower(c.Params("category"))

	test, err := qc.Service.GenerateTest(c.UserContext(), category, lang, middleware.Identity(c))
	if err != nil {
		return qc.quizError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, test)
}

// SubmitTest godoc
// @Summary Submit answers
// @Description Scores the answers, records the result and closes the active test
// @Tags quiz
// @Accept json
// @Produce json
// @Param category path string true "Category or all"
// @Param input body SubmitTestRequest true "Answers"
// @Success 200 {object} quiz.SubmitResult
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /quiz/{category}/submit [post]
func (qc *QuizController) SubmitTest(c *fiber.Ctx) error {
	var input SubmitTestRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationErrors(err))
	}

	requestID := uuid.NewString()
	id := middleware.Identity(c)
	result, err := qc.Service.SubmitTest(c.UserContext(), quiz.Submission{
		Identity:    id,
		Category:    strings.ToLower(c.Params("category")),
		Language:    strings.ToLower(input.Language),
		Answers:     input.Answers,
		TimeTaken:   input.TimeTaken,
		DisplayName: input.DisplayName,
	})
	if err != nil {
		qc.Logger.Printf("submit %s rejected for %s: %v", requestID, id, err)
		return qc.quizError(c, err)
	}

	qc.Logger.Printf("submit %s stored result %d for %s", requestID, result.Result.ID, id)
	return utils.Success(c, fiber.StatusOK, result)
}

// GetLeaderboard godoc
// @Summary Leaderboard
// @Description Best result per player, ranked by score then time
// @Tags quiz
// @Produce json
// @Param category query string false "Category or all" default(all)
// @Param limit query int false "1..100" default(10)
// @Success 200 {array} quiz.RankedEntry
// @Failure 400 {object} utils.ErrorResponse
// @Router /quiz/leaderboard [get]
func (qc *QuizController) GetLeaderboard(c *fiber.Ctx) error {
	category := strings.ToLower(c.Query("category", quiz.AllCategories))
	entries, err := qc.Service.ListLeaderboard(c.UserContext(), category, c.QueryInt("limit", quiz.DefaultLeaderboardLimit))
	if err != nil {
		return qc.quizError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, entries)
}

// GetHistory godoc
// @Summary Own quiz history
// @Description Totals, best and average percentage and the latest results of the authenticated user
// @Tags quiz
// @Produce json
// @Param limit query int false "Recent results to include" default(20)
// @Success 200 {object} models.HistoryOverview
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quiz/history [get]
func (qc *QuizController) GetHistory(c *fiber.Ctx) error {
	userID := currentUserID(c)

	results, err := qc.Store.FindResults(c.UserContext(), quiz.ResultFilter{
		UserID: &userID,
		Order:  quiz.OrderRecent,
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not fetch results")
	}

	overview := models.HistoryOverview{
		TotalTests:  int64(len(results)),
		PerCategory: map[string]int64{},
	}
	var sum int
	for _, r := range results {
		p := quiz.Percentage(r.Score, r.TotalQuestions)
		sum += p
		overview.BestPercent = max(overview.BestPercent, p)
		overview.PerCategory[r.Category]++
	}
	if len(results) > 0 {
		overview.AvgPercent = float64(sum) / float64(len(results))
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	overview.RecentResult = results[:min(limit, len(results))]
	if overview.RecentResult == nil {
		overview.RecentResult = []models.QuizResult{}
	}

	return utils.Success(c, fiber.StatusOK, overview)
}

func (qc *QuizController) quizError(c *fiber.Ctx, err error) error {
	var limitErr *quiz.RateLimitError
	switch {
	case errors.As(err, &limitErr):
		return utils.TooManyRequests(c, err.Error(), limitErr.ResetAt, fiber.Map{
			"limit":    limitErr.Limit,
			"reset_at": limitErr.ResetAt,
		})
	case errors.Is(err, quiz.ErrNoContent):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, quiz.ErrQuestionsNotFound),
		errors.Is(err, quiz.ErrInvalidCategory),
		errors.Is(err, quiz.ErrInvalidLanguage),
		errors.Is(err, quiz.ErrInvalidSubmission):
		return utils.BadRequest(c, err.Error())
	default:
		qc.Logger.Printf("quiz %s %s failed: %v", c.Method(), c.Path(), err)
		return utils.InternalServerError(c, "Internal server error")
	}
}
