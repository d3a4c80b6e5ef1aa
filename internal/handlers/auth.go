package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/josanv1n/DIZA-FOOD/internal/database"
	"github.com/josanv1n/DIZA-FOOD/internal/middleware"
	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

type AuthHandler struct {
	Users  *database.UserRepository
	Secret []byte
	TTL    time.Duration
}

func NewAuthHandler(users *database.UserRepository, secret []byte, ttl time.Duration) *AuthHandler {
	return &AuthHandler{Users: users, Secret: secret, TTL: ttl}
}

// Login handles PIN login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	user, err := h.Users.Login(ctx, req.Username, req.PIN)
	if errors.Is(err, database.ErrInvalidCredentials) {
		slog.InfoContext(ctx, "login rejected", "username", req.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid Credentials",
		})
	}
	if err != nil {
		slog.ErrorContext(ctx, "login failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	token, err := middleware.GenerateJWT(h.Secret, *user, h.TTL)
	if err != nil {
		slog.ErrorContext(ctx, "error generating JWT", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error generating authentication token",
		})
	}

	slog.InfoContext(ctx, "login", "user_id", user.ID, "role", user.Role)
	return c.JSON(models.LoginResponse{Token: token, User: *user})
}

// GetProfile returns the current user's profile and their latest logins
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, _, err := middleware.GetUserFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	ctx := c.UserContext()
	user, err := h.Users.FindByID(ctx, userID)
	if errors.Is(err, database.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if err != nil {
		return err
	}

	logs, err := h.Users.LoginLogs(ctx, userID, 5)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user":         user,
		"recentLogins": logs,
	})
}
