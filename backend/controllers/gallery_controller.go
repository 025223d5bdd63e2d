package controllers

import (
	"errors"
	"strings"

	"csshub/backend/config"
	"csshub/backend/middleware"
	"csshub/backend/models"
	"csshub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GalleryController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewGalleryController(db *gorm.DB, cfg *config.Config) *GalleryController {
	return &GalleryController{DB: db, Cfg: cfg}
}

type SaveItemRequest struct {
	Title  string         `json:"title" validate:"required,max=120"`
	Tool   string         `json:"tool" validate:"required,oneof=gradient box-shadow text-shadow border-radius flexbox grid transform filter animation clip-path"`
	CSS    string         `json:"css" validate:"required,max=20000"`
	Params datatypes.JSON `json:"params"`
	Public bool           `json:"public"`
}

type ModerationRequest struct {
	Note string `json:"note" validate:"max=500"`
}

func (r *SaveItemRequest) check() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Tool = strings.ToLower(strings.TrimSpace(r.Tool))
	return validate.Struct(r)
}

// Public items wait for moderation again after every change.
func statusFor(public bool) string {
	if public {
		return models.StatusPending
	}
	return models.StatusPrivate
}

// CreateItem godoc
// @Summary Save tool output
// @Description Saves generated CSS; public items go to the moderation queue
// @Tags gallery
// @Accept json
// @Produce json
// @Param input body SaveItemRequest true "Item"
// @Success 201 {object} models.SavedItem
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /gallery [post]
func (gc *GalleryController) CreateItem(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var input SaveItemRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := input.check(); err != nil {
		return utils.ValidationError(c, validationErrors(err))
	}

	var user models.User
	if err := gc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	item := models.SavedItem{
		OwnerID:   userID,
		OwnerName: user.PublicName(),
		Title:     input.Title,
		Tool:      input.Tool,
		CSS:       input.CSS,
		Params:    input.Params,
		Public:    input.Public,
		Status:    statusFor(input.Public),
	}
	if err := gc.DB.Create(&item).Error; err != nil {
		return utils.InternalServerError(c, "Could not save item")
	}

	return utils.Created(c, item)
}

// ListPublic godoc
// @Summary Public gallery
// @Description Approved public items, newest first
// @Tags gallery
// @Produce json
// @Param tool query string false "Tool"
// @Param search query string false "Title search"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.PaginatedResponse
// @Router /gallery [get]
func (gc *GalleryController) ListPublic(c *fiber.Ctx) error {
	page, pageSize := utils.PageParams(c)
	tool := strings.ToLower(c.Query("tool"))
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	filter := func() *gorm.DB {
		query := gc.DB.Model(&models.SavedItem{}).
			Where("public = ? AND status = ?", true, models.StatusApproved)
		if tool != "" {
			query = query.Where("tool = ?", tool)
		}
		if search != "" {
			query = query.Where("LOWER(title) LIKE ?", "%"+search+"%")
		}
		return query
	}

	var total int64
	filter().Count(&total)

	var items []models.SavedItem
	if err := filter().Order("created_at DESC").
		Offset(utils.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch gallery")
	}

	return utils.Paginate(c, items, total, page, pageSize)
}

// ListMine godoc
// @Summary Own saved items
// @Tags gallery
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /gallery/mine [get]
func (gc *GalleryController) ListMine(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page, pageSize := utils.PageParams(c)

	var total int64
	gc.DB.Model(&models.SavedItem{}).Where("owner_id = ?", userID).Count(&total)

	var items []models.SavedItem
	if err := gc.DB.Where("owner_id = ?", userID).
		Order("updated_at DESC").
		Offset(utils.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch items")
	}

	return utils.Paginate(c, items, total, page, pageSize)
}

// GetItem godoc
// @Summary Get saved item
// @Description Approved public items are visible to everyone, others only to the owner and admins
// @Tags gallery
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.SavedItem
// @Failure 404 {object} utils.ErrorResponse
// @Router /gallery/{id} [get]
func (gc *GalleryController) GetItem(c *fiber.Ctx) error {
	item, err := gc.findItem(c)
	if item == nil {
		return err
	}

	visible := item.Public && item.Status == models.StatusApproved
	if !visible && item.OwnerID != currentUserID(c) && !middleware.IsAdmin(c) {
		return utils.NotFound(c, "Item not found")
	}

	return utils.Success(c, fiber.StatusOK, item)
}

// UpdateItem godoc
// @Summary Update saved item
// @Tags gallery
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param input body SaveItemRequest true "Item"
// @Success 200 {object} models.SavedItem
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /gallery/{id} [put]
func (gc *GalleryController) UpdateItem(c *fiber.Ctx) error {
	item, err := gc.findItem(c)
	if item == nil {
		return err
	}
	if item.OwnerID != currentUserID(c) {
		return utils.Forbidden(c, "You can only edit your own items")
	}

	var input SaveItemRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := input.check(); err != nil {
		return utils.ValidationError(c, validationErrors(err))
	}

	item.Title = input.Title
	item.Tool = input.Tool
	item.CSS = input.CSS
	item.Params = input.Params
	item.Public = input.Public
	item.Status = statusFor(input.Public)
	item.ModerationNote = ""
	item.ModeratedBy = nil
	if err := gc.DB.Save(item).Error; err != nil {
		return utils.InternalServerError(c, "Could not update item")
	}

	return utils.Success(c, fiber.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete saved item
// @Tags gallery
// @Param id path int true "Item ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /gallery/{id} [delete]
func (gc *GalleryController) DeleteItem(c *fiber.Ctx) error {
	item, err := gc.findItem(c)
	if item == nil {
		return err
	}
	if item.OwnerID != currentUserID(c) && !middleware.IsAdmin(c) {
		return utils.Forbidden(c, "You can only delete your own items")
	}

	if err := gc.DB.Delete(item).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete item")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ModerationQueue godoc
// @Summary Moderation queue
// @Description Public items waiting for review, oldest first
// @Tags admin
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /admin/gallery/queue [get]
func (gc *GalleryController) ModerationQueue(c *fiber.Ctx) error {
	page, pageSize := utils.PageParams(c)

	var total int64
	gc.DB.Model(&models.SavedItem{}).Where("status = ?", models.StatusPending).Count(&total)

	var items []models.SavedItem
	if err := gc.DB.Where("status = ?", models.StatusPending).
		Order("updated_at ASC").
		Offset(utils.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch queue")
	}

	return utils.Paginate(c, items, total, page, pageSize)
}

// ApproveItem godoc
// @Summary Approve item
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param input body ModerationRequest false "Note"
// @Success 200 {object} models.SavedItem
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/gallery/{id}/approve [post]
func (gc *GalleryController) ApproveItem(c *fiber.Ctx) error {
	return gc.moderate(c, models.StatusApproved)
}

// RejectItem godoc
// @Summary Reject item
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param input body ModerationRequest false "Reason shown to the owner"
// @Success 200 {object} models.SavedItem
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/gallery/{id}/reject [post]
func (gc *GalleryController) RejectItem(c *fiber.Ctx) error {
	return gc.moderate(c, models.StatusRejected)
}

func (gc *GalleryController) moderate(c *fiber.Ctx, status string) error {
	var input ModerationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return utils.BadRequest(c, "Cannot parse JSON")
		}
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationErrors(err))
	}

	item, err := gc.findItem(c)
	if item == nil {
		return err
	}
	if item.Status != models.StatusPending {
		return utils.Conflict(c, "Item is not waiting for moderation")
	}

	adminID := currentUserID(c)
	item.Status = status
	item.ModerationNote = strings.TrimSpace(input.Note)
	item.ModeratedBy = &adminID
	if err := gc.DB.Save(item).Error; err != nil {
		return utils.InternalServerError(c, "Could not update item")
	}

	return utils.Success(c, fiber.StatusOK, item)
}

// findItem writes the error response itself and returns nil when the item cannot be used.
func (gc *GalleryController) findItem(c *fiber.Ctx) (*models.SavedItem, error) {
	itemID, err := paramID(c, "id")
	if err != nil {
		return nil, utils.BadRequest(c, "Invalid item ID")
	}

	var item models.SavedItem
	if err := gc.DB.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound(c, "Item not found")
		}
		return nil, utils.InternalServerError(c, "Could not query database")
	}
	return &item, nil
}
