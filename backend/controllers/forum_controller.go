package controllers

import (
	"errors"
	"strings"
	"time"

	"csshub/backend/config"
	"csshub/backend/middleware"
	"csshub/backend/models"
	"csshub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ForumController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewForumController(db *gorm.DB, cfg *config.Config) *ForumController {
	return &ForumController{DB: db, Cfg: cfg}
}

type CreateThreadRequest struct {
	Title string `json:"title" validate:"required,min=3,max=200"`
	Body  string `json:"body" validate:"required,max=20000"`
}

type CreatePostRequest struct {
	Body string `json:"body" validate:"required,max=20000"`
}

type ReportPostRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ThreadFlagsRequest struct {
	Pinned *bool `json:"pinned"`
	Locked *bool `json:"locked"`
}

type ResolveReportRequest struct {
	DeletePost bool `json:"delete_post"`
}

// ListThreads godoc
// @Summary List forum threads
// @Description Pinned threads first, then by latest activity
// @Tags forum
// @Produce json
// @Param search query string false "Title search"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.PaginatedResponse
// @Router /forum/threads [get]
func (fc *ForumController) ListThreads(c *fiber.Ctx) error {
	page, pageSize := utils.PageParams(c)
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	filter := func() *gorm.DB {
		query := fc.DB.Model(&models.ForumThread{})
		if search != "" {
			query = query.Where("LOWER(title) LIKE ?", "%"+search+"%")
		}
		return query
	}

	var total int64
	filter().Count(&total)

	var threads []models.ForumThread
	if err := filter().Order("pinned DESC").
		Order("updated_at DESC").
		Offset(utils.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&threads).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch threads")
	}

	return utils.Paginate(c, threads, total, page, pageSize)
}

// CreateThread godoc
// @Summary Start a thread
// @Tags forum
// @Accept json
// @Produce json
// @Param input body CreateThreadRequest true "Thread"
// @Success 201 {object} models.ForumThread
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /forum/threads [post]
func (fc *ForumController) CreateThread(c *fiber.Ctx) error {
	var input CreateThreadRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Title = strings.TrimSpace(input.Title)
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationErrors(err))
	}

	author, err := fc.author(c)
	if author == nil {
		return err
	}

	thread := models.ForumThread{
		AuthorID:   author.ID,
		AuthorName: author.PublicName(),
		Title:      input.Title,
		Body:       input.Body,
	}
	if err := fc.DB.Create(&thread).Error; err != nil {
		return utils.InternalServerError(c, "Could not create thread")
	}

	return utils.Created(c, thread)
}

// GetThread godoc
// @Summary Get thread with posts
// @Tags forum
// @Produce json
// @Param id path int true "Thread ID"
// @Success 200 {object} models.ForumThread
// @Failure 404 {object} utils.ErrorResponse
// @Router /forum/threads/{id} [get]
func (fc *ForumController) GetThread(c *fiber.Ctx) error {
	threadID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid thread ID")
	}

	var thread models.ForumThread
	err = fc.DB.Preload("Posts", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&thread, threadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Thread not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, thread)
}

// CreatePost godoc
// @Summary Reply to a thread
// @Tags forum
// @Accept json
// @Produce json
// @Param id path int true "Thread ID"
// @Param input body CreatePostRequest true "Post"
// @Success 201 {object} models.ForumPost
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /forum/threads/{id}/posts [post]
func (fc *ForumController) CreatePost(c *fiber.Ctx) error {
	threadID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid thread ID")
	}

	var input CreatePostRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Body = strings.TrimSpace(input.Body)
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationErrors(err))
	}

	var thread models.ForumThread
	if err := fc.DB.First(&thread, threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Thread not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if thread.Locked {
		return utils.Conflict(c, "Thread is locked")
	}

	author, err := fc.author(c)
	if author == nil {
		return err
	}

	post := models.ForumPost{
		ThreadID:   thread.ID,
		AuthorID:   author.ID,
		AuthorName: author.PublicName(),
		Body:       input.Body,
	}
	err = fc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		// поднимаем тред в списке
		return tx.Model(&thread).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not create post")
	}

	return utils.Created(c, post)
}

// DeletePost godoc
// @Summary Delete a post
// @Description Authors can delete their own posts, admins any post
// @Tags forum
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /forum/posts/{id} [delete]
func (fc *ForumController) DeletePost(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	var post models.ForumPost
	if err := fc.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Post not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if post.AuthorID != currentUserID(c) && !middleware.IsAdmin(c) {
		return utils.Forbidden(c, "You can only delete your own posts")
	}

	if err := fc.DB.Delete(&post).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete post")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReportPost godoc
// @Summary Report a post
// @Tags forum
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param input body ReportPostRequest true "Reason"
// @Success 201 {object} models.ForumReport
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /forum/posts/{id}/report [post]
func (fc *ForumController) ReportPost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid post ID")
	}

	var input ReportPostRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Reason = strings.TrimSpace(input.Reason)
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationErrors(err))
	}

	var exists int64
	fc.DB.Model(&models.ForumPost{}).Where("id = ?", postID).Count(&exists)
	if exists == 0 {
		return utils.NotFound(c, "Post not found")
	}

	var open int64
	fc.DB.Model(&models.ForumReport{}).
		Where("post_id = ? AND reported_by = ? AND status = ?", postID, userID, models.ReportPending).
		Count(&open)
	if open > 0 {
		return utils.Conflict(c, "You already reported this post")
	}

	report := models.ForumReport{
		PostID:     postID,
		ReportedBy: userID,
		Reason:     input.Reason,
		Status:     models.ReportPending,
	}
	if err := fc.DB.Create(&report).Error; err != nil {
		return utils.InternalServerError(c, "Could not create report")
	}

	return utils.Created(c, report)
}

// UpdateThreadFlags godoc
// @Summary Pin or lock a thread
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Thread ID"
// @Param input body ThreadFlagsRequest true "Flags to change"
// @Success 200 {object} models.ForumThread
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/forum/threads/{id} [put]
func (fc *ForumController) UpdateThreadFlags(c *fiber.Ctx) error {
	threadID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid thread ID")
	}

	var input ThreadFlagsRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var thread models.ForumThread
	if err := fc.DB.First(&thread, threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Thread not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	updates := map[string]interface{}{}
	if input.Pinned != nil {
		updates["pinned"] = *input.Pinned
		thread.Pinned = *input.Pinned
	}
	if input.Locked != nil {
		updates["locked"] = *input.Locked
		thread.Locked = *input.Locked
	}
	if len(updates) == 0 {
		return utils.BadRequest(c, "Nothing to update")
	}
	if err := fc.DB.Model(&thread).Updates(updates).Error; err != nil {
		return utils.InternalServerError(c, "Could not update thread")
	}

	return utils.Success(c, fiber.StatusOK, thread)
}

// ListReports godoc
// @Summary List reports
// @Tags admin
// @Produce json
// @Param status query string false "pending|resolved" default(pending)
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /admin/forum/reports [get]
func (fc *ForumController) ListReports(c *fiber.Ctx) error {
	page, pageSize := utils.PageParams(c)
	status := c.Query("status", models.ReportPending)

	var total int64
	fc.DB.Model(&models.ForumReport{}).Where("status = ?", status).Count(&total)

	var reports []models.ForumReport
	if err := fc.DB.Where("status = ?", status).
		Order("created_at ASC").
		Offset(utils.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&reports).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch reports")
	}

	return utils.Paginate(c, reports, total, page, pageSize)
}

// ResolveReport godoc
// @Summary Resolve a report
// @Description Closes every open report on the same post, optionally deleting the post
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param input body ResolveReportRequest false "Resolution"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/forum/reports/{id}/resolve [post]
func (fc *ForumController) ResolveReport(c *fiber.Ctx) error {
	reportID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid report ID")
	}

	var input ResolveReportRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return utils.BadRequest(c, "Cannot parse JSON")
		}
	}

	var report models.ForumReport
	if err := fc.DB.First(&report, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Report not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var resolved int64
	err = fc.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ForumReport{}).
			Where("post_id = ? AND status = ?", report.PostID, models.ReportPending).
			Update("status", models.ReportResolved)
		if res.Error != nil {
			return res.Error
		}
		resolved = res.RowsAffected
		if input.DeletePost {
			return tx.Delete(&models.ForumPost{}, report.PostID).Error
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not resolve report")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"post_id":      report.PostID,
		"resolved":     resolved,
		"post_deleted": input.DeletePost,
	})
}

func (fc *ForumController) author(c *fiber.Ctx) (*models.User, error) {
	var user models.User
	if err := fc.DB.First(&user, currentUserID(c)).Error; err != nil {
		return nil, utils.NotFound(c, "User not found")
	}
	return &user, nil
}
