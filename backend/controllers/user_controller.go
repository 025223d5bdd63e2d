package controllers

import (
	"strings"

	"csshub/backend/config"
	"csshub/backend/models"
	"csshub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

type UpdateUserRequest struct {
	Username    string  `json:"username" validate:"omitempty,min=3,max=32"`
	Email       string  `json:"email" validate:"omitempty,email"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=64"`
	OldPassword string  `json:"old_password"`
	NewPassword string  `json:"new_password" validate:"omitempty,min=8,max=72"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile with quiz totals
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	var testsTaken, savedItems int64
	uc.DB.Model(&models.QuizResult{}).Where("user_id = ?", userID).Count(&testsTaken)
	uc.DB.Model(&models.SavedItem{}).Where("owner_id = ?", userID).Count(&savedItems)

	profile := userSummary(user)
	profile["public_name"] = user.PublicName()
	profile["created_at"] = user.CreatedAt
	profile["tests_taken"] = testsTaken
	profile["saved_items"] = savedItems

	return utils.Success(c, fiber.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates username, email, display name or password
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Profile update data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var input UpdateUserRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationErrors(err))
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.Username != "" && input.Username != user.Username {
		var taken int64
		uc.DB.Model(&models.User{}).Where("username = ? AND id <> ?", input.Username, user.ID).Count(&taken)
		if taken > 0 {
			return utils.Conflict(c, "Username already taken")
		}
		user.Username = input.Username
	}

	if input.Email != "" && input.Email != user.Email {
		var taken int64
		uc.DB.Model(&models.User{}).Where("email = ? AND id <> ?", input.Email, user.ID).Count(&taken)
		if taken > 0 {
			return utils.Conflict(c, "Email already taken")
		}
		user.Email = input.Email
	}

	// Пустая строка сбрасывает имя, на лидерборде будет username
	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
	}

	if input.NewPassword != "" {
		if input.OldPassword == "" {
			return utils.BadRequest(c, "Old password is required to set new password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.Unauthorized(c, "Invalid old password")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, userSummary(user))
}

// GetLoginHistory godoc
// @Summary Get login history
// @Description Returns the authenticated user's last logins, newest first
// @Tags users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.PaginatedResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/logins [get]
func (uc *UserController) GetLoginHistory(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page, pageSize := utils.PageParams(c)

	var total int64
	uc.DB.Model(&models.LoginHistory{}).Where("user_id = ?", userID).Count(&total)

	var history []models.LoginHistory
	if err := uc.DB.Where("user_id = ?", userID).
		Order("login_time DESC").
		Offset(utils.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&history).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch login history")
	}

	return utils.Paginate(c, history, total, page, pageSize)
}
