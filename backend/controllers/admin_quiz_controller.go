package controllers

import (
	"errors"
	"strings"

	"csshub/backend/config"
	"csshub/backend/models"
	"csshub/backend/quiz"
	"csshub/backend/repository"
	"csshub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminQuizController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Service *quiz.Service
	Store   *repository.QuizStore
}

func NewAdminQuizController(db *gorm.DB, cfg *config.Config, service *quiz.Service) *AdminQuizController {
	return &AdminQuizController{
		DB:      db,
		Cfg:     cfg,
		Service: service,
		Store:   repository.NewQuizStore(db),
	}
}

type QuestionRequest struct {
	Category           string   `json:"category" validate:"required"`
	Difficulty         string   `json:"difficulty"`
	TextEn             string   `json:"text_en"`
	TextRu             string   `json:"text_ru"`
	AnswersEn          []string `json:"answers_en" validate:"omitempty,min=2,max=8,dive,required"`
	AnswersRu          []string `json:"answers_ru" validate:"omitempty,min=2,max=8,dive,required"`
	CorrectAnswerIndex int      `json:"correct_answer_index" validate:"min=0"`
	ExplanationEn      string   `json:"explanation_en"`
	ExplanationRu      string   `json:"explanation_ru"`
}

type SettingsRequest struct {
	QuestionsPerTest int `json:"questions_per_test" validate:"min=5,max=100"`
	TimePerQuestion  int `json:"time_per_question" validate:"min=10,max=300"`
}

// check enforces what validate tags cannot express: at least one language,
// text and answers present together, and a correct index valid in every language.
func (r *QuestionRequest) check() map[string]string {
	problems := map[string]string{}
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.Difficulty = strings.ToLower(strings.TrimSpace(r.Difficulty))
	if r.Difficulty == "" {
		r.Difficulty = "medium"
	}

	if !quiz.ValidCategory(r.Category) {
		problems["category"] = "oneof=" + strings.Join(quiz.Categories(), " ")
	}
	if !quiz.ValidDifficulty(r.Difficulty) {
		problems["difficulty"] = "oneof=easy medium hard"
	}

	hasEn := strings.TrimSpace(r.TextEn) != ""
	hasRu := strings.TrimSpace(r.TextRu) != ""
	if !hasEn && !hasRu {
		problems["text_en"] = "required_without=text_ru"
	}
	if hasEn != (len(r.AnswersEn) > 0) {
		problems["answers_en"] = "required_with=text_en"
	}
	if hasRu != (len(r.AnswersRu) > 0) {
		problems["answers_ru"] = "required_with=text_ru"
	}
	if len(r.AnswersEn) > 0 && len(r.AnswersRu) > 0 && len(r.AnswersEn) != len(r.AnswersRu) {
		problems["answers_ru"] = "len=answers_en"
	}
	for _, answers := range [][]string{r.AnswersEn, r.AnswersRu} {
		if len(answers) > 0 && r.CorrectAnswerIndex >= len(answers) {
			problems["correct_answer_index"] = "lt=answers"
		}
	}
	return problems
}

func (r *QuestionRequest) apply(q *models.Question) {
	q.Category = r.Category
	q.Difficulty = r.Difficulty
	q.TextEn = strings.TrimSpace(r.TextEn)
	q.TextRu = strings.TrimSpace(r.TextRu)
	q.AnswersEn = r.AnswersEn
	q.AnswersRu = r.AnswersRu
	q.CorrectAnswerIndex = r.CorrectAnswerIndex
	q.ExplanationEn = r.ExplanationEn
	q.ExplanationRu = r.ExplanationRu
}

func (ac *AdminQuizController) parseQuestion(c *fiber.Ctx) (*QuestionRequest, error) {
	var input QuestionRequest
	if err := c.BodyParser(&input); err != nil {
		return nil, utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return nil, utils.ValidationError(c, validationErrors(err))
	}
	if problems := input.check(); len(problems) > 0 {
		return nil, utils.ValidationError(c, problems)
	}
	return &input, nil
}

// ListQuestions godoc
// @Summary List questions
// @Description Paginated question bank with answer keys, filterable by category and difficulty
// @Tags admin
// @Produce json
// @Param category query string false "Category"
// @Param difficulty query string false "easy|medium|hard"
// @Param search query string false "Text search in both languages"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /admin/quiz/questions [get]
func (ac *AdminQuizController) ListQuestions(c *fiber.Ctx) error {
	page, pageSize := utils.PageParams(c)

	filter := func() *gorm.DB {
		query := ac.DB.Model(&models.Question{})
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", strings.ToLower(category))
		}
		if difficulty := c.Query("difficulty"); difficulty != "" {
			query = query.Where("difficulty = ?", strings.ToLower(difficulty))
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(text_en) LIKE ? OR LOWER(text_ru) LIKE ?", like, like)
		}
		return query
	}

	var total int64
	filter().Count(&total)

	var questions []models.Question
	if err := filter().Order("id").
		Offset(utils.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&questions).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch questions")
	}

	return utils.Paginate(c, questions, total, page, pageSize)
}

// CreateQuestion godoc
// @Summary Create question
// @Tags admin
// @Accept json
// @Produce json
// @Param input body QuestionRequest true "Question in one or both languages"
// @Success 201 {object} models.Question
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/quiz/questions [post]
func (ac *AdminQuizController) CreateQuestion(c *fiber.Ctx) error {
	input, err := ac.parseQuestion(c)
	if input == nil {
		return err
	}

	question := models.Question{AuthorID: currentUserID(c)}
	input.apply(&question)
	if err := ac.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	return utils.Created(c, question)
}

// UpdateQuestion godoc
// @Summary Update question
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param input body QuestionRequest true "Full question"
// @Success 200 {object} models.Question
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/quiz/questions/{id} [put]
func (ac *AdminQuizController) UpdateQuestion(c *fiber.Ctx) error {
	questionID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var question models.Question
	if err := ac.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	input, err := ac.parseQuestion(c)
	if input == nil {
		return err
	}

	input.apply(&question)
	if err := ac.DB.Save(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not update question")
	}

	return utils.Success(c, fiber.StatusOK, question)
}

// DeleteQuestion godoc
// @Summary Delete question
// @Description Soft delete; stored results keep their scores
// @Tags admin
// @Param id path int true "Question ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/quiz/questions/{id} [delete]
func (ac *AdminQuizController) DeleteQuestion(c *fiber.Ctx) error {
	questionID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	res := ac.DB.Delete(&models.Question{}, questionID)
	if res.Error != nil {
		return utils.InternalServerError(c, "Could not delete question")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Question not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReviewQuestion godoc
// @Summary Review question
// @Description Question projected to one language with its answer key, as an author would check it
// @Tags admin
// @Produce json
// @Param id path int true "Question ID"
// @Param lang query string false "en or ru" default(en)
// @Success 200 {object} quiz.LocalizedQuestion
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/quiz/questions/{id} [get]
func (ac *AdminQuizController) ReviewQuestion(c *fiber.Ctx) error {
	questionID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}
	lang := strings.ToLower(c.Query("lang", quiz.LangEN))
	if !quiz.ValidLanguage(lang) {
		return utils.BadRequest(c, quiz.ErrInvalidLanguage.Error())
	}

	var question models.Question
	if err := ac.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, quiz.Project(question, lang, true))
}

// GetSettings godoc
// @Summary Quiz settings
// @Description Effective settings; defaults when none were saved
// @Tags admin
// @Produce json
// @Success 200 {object} models.QuizSettings
// @Security ApiKeyAuth
// @Router /admin/quiz/settings [get]
func (ac *AdminQuizController) GetSettings(c *fiber.Ctx) error {
	settings, err := ac.Service.Settings(c.UserContext())
	if err != nil {
		return utils.InternalServerError(c, "Could not load settings")
	}
	return utils.Success(c, fiber.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary Update quiz settings
// @Description Applies to tests generated afterwards; active tests keep their expiry
// @Tags admin
// @Accept json
// @Produce json
// @Param input body SettingsRequest true "Settings"
// @Success 200 {object} models.QuizSettings
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/quiz/settings [put]
func (ac *AdminQuizController) UpdateSettings(c *fiber.Ctx) error {
	var input SettingsRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationErrors(err))
	}

	settings := models.QuizSettings{
		QuestionsPerTest: input.QuestionsPerTest,
		TimePerQuestion:  input.TimePerQuestion,
	}
	if err := ac.Store.SaveSettings(c.UserContext(), &settings); err != nil {
		return utils.InternalServerError(c, "Could not save settings")
	}

	return utils.Success(c, fiber.StatusOK, settings)
}

// GetStats godoc
// @Summary Platform statistics
// @Description Counts across the platform and quiz results per category
// @Tags admin
// @Produce json
// @Success 200 {object} models.PlatformStats
// @Security ApiKeyAuth
// @Router /admin/quiz/stats [get]
func (ac *AdminQuizController) GetStats(c *fiber.Ctx) error {
	var stats models.PlatformStats

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{ac.DB.Model(&models.User{}), &stats.TotalUsers},
		{ac.DB.Model(&models.Question{}), &stats.TotalQuestions},
		{ac.DB.Model(&models.QuizResult{}), &stats.TotalResults},
		{ac.DB.Model(&models.SavedItem{}).Where("status = ?", models.StatusPending), &stats.PendingItems},
		{ac.DB.Model(&models.ForumReport{}).Where("status = ?", models.ReportPending), &stats.OpenReports},
	}
	for _, cnt := range counts {
		if err := cnt.query.Count(cnt.dest).Error; err != nil {
			return utils.InternalServerError(c, "Could not count platform data")
		}
	}
	err := ac.DB.Model(&models.AttemptCounter{}).
		Where("day = ?", quiz.Day(timeNow())).
		Select("COALESCE(SUM(count), 0)").
		Scan(&stats.AttemptsToday).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not count attempts")
	}

	err = ac.DB.Model(&models.QuizResult{}).
		Select(`category,
			COUNT(*) AS attempts,
			COUNT(DISTINCT user_id) AS players,
			AVG(score) AS avg_score,
			AVG(score * 100.0 / NULLIF(total_questions, 0)) AS avg_percent,
			AVG(time_taken) AS avg_time_taken`).
		Group("category").
		Order("category").
		Scan(&stats.ResultsPerGroup).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not aggregate results")
	}
	if stats.ResultsPerGroup == nil {
		stats.ResultsPerGroup = []models.CategoryStats{}
	}

	return utils.Success(c, fiber.StatusOK, stats)
}
