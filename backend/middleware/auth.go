package middleware

import (
	"errors"

	"csshub/backend/config"
	"csshub/backend/models"
	"csshub/backend/quiz"
	"csshub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Ключи c.Locals, которые выставляют middleware этого пакета
const (
	LocalUserID   = "userID"
	LocalUser     = "user"
	LocalIdentity = "identity"
)

func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware. The role is read from the
// database on every request so a demoted admin loses access immediately.
func AdminMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "Unauthorized")
			}
			return utils.InternalServerError(c, "Could not query database")
		}
		if user.Role != models.RoleAdmin {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}

		c.Locals(LocalUser, &user)
		return c.Next()
	}
}

// OptionalAuth resolves who is calling. Requests without a token are anonymous
// and keyed by client IP; a token that is present but invalid is rejected.
func OptionalAuth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !utils.HasToken(c) {
			c.Locals(LocalIdentity, quiz.Anonymous(c.IP()))
			return c.Next()
		}

		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.Select("id", "role", "tier").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "Unauthorized")
			}
			return utils.InternalServerError(c, "Could not query database")
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUser, &user)
		c.Locals(LocalIdentity, quiz.Authenticated(user.ID, user.Tier))
		return c.Next()
	}
}

// IsAdmin works after AdminMiddleware or OptionalAuth.
func IsAdmin(c *fiber.Ctx) bool {
	user, ok := c.Locals(LocalUser).(*models.User)
	return ok && user.Role == models.RoleAdmin
}

func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id > 0
}

// Identity falls back to an anonymous identity when OptionalAuth did not run.
func Identity(c *fiber.Ctx) quiz.Identity {
	if id, ok := c.Locals(LocalIdentity).(quiz.Identity); ok {
		return id
	}
	return quiz.Anonymous(c.IP())
}
