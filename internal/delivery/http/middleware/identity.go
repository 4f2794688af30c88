package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/pkg/utils"
)

// Заголовки, которые проставляет auth-шлюз перед сервисом
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Роли пользователей
const (
	RolePilot    = "pilot"
	RoleReviewer = "reviewer"
)

const (
	localUserID   = "user_id"
	localUserRole = "user_role"
)

// Identity достает пользователя из заголовков шлюза. Без X-User-ID запрос отклоняется.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		if userID == "" {
			return utils.SendError(c, errors.ErrUnauthorized)
		}

		role := strings.ToLower(strings.TrimSpace(c.Get(HeaderUserRole)))
		if role == "" {
			role = RolePilot
		}

		c.Locals(localUserID, userID)
		c.Locals(localUserRole, role)
		return c.Next()
	}
}

// RequireRole пропускает только пользователей с указанной ролью
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserRole(c) != role {
			return utils.SendError(c, errors.ErrForbidden)
		}
		return c.Next()
	}
}

// UserID - идентификатор пользователя, проставленный Identity
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

// UserRole - роль пользователя, проставленная Identity
func UserRole(c *fiber.Ctx) string {
	role, _ := c.Locals(localUserRole).(string)
	return role
}

// IsReviewer - запрос от ревьюера
func IsReviewer(c *fiber.Ctx) bool {
	return UserRole(c) == RoleReviewer
}
