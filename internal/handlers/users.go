package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/josanv1n/DIZA-FOOD/internal/database"
	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

// UserResponse is an account as shown to admins, with its last login
type UserResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	LastLogin *time.Time  `json:"lastLogin"`
}

// GetUsers handles fetching all users (admin only)
func GetUsers(repo *database.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		users, err := repo.List(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "error fetching users", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
		}

		response := make([]UserResponse, 0, len(users))
		for _, user := range users {
			entry := UserResponse{ID: user.ID, Username: user.Username, Role: user.Role}
			logs, err := repo.LoginLogs(ctx, user.ID, 1)
			if err != nil {
				return err
			}
			if len(logs) > 0 {
				entry.LastLogin = &logs[0].Timestamp
			}
			response = append(response, entry)
		}

		return c.JSON(response)
	}
}
