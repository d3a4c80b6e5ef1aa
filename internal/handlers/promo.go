package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/josanv1n/DIZA-FOOD/internal/database"
)

type PromoRequest struct {
	Content string `json:"content" validate:"max=500"`
}

func GetPromo(repo *database.PromoRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		promo, err := repo.Get(c.UserContext())
		if err != nil {
			slog.ErrorContext(c.UserContext(), "error fetching promo", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch promo"})
		}
		return c.JSON(promo)
	}
}

func UpdatePromo(repo *database.PromoRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req PromoRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if err := repo.Update(c.UserContext(), req.Content); err != nil {
			slog.ErrorContext(c.UserContext(), "error updating promo", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update promo"})
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
