package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/josanv1n/DIZA-FOOD/internal/cache"
	"github.com/josanv1n/DIZA-FOOD/internal/database"
	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

// MenuRequest defines the structure for creating a menu item
type MenuRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Category string `json:"category" validate:"required"`
	Price    int64  `json:"price" validate:"gt=0,lte=100000000"`
}

// GetMenu handles fetching the public menu
func GetMenu(menu *cache.MenuCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := menu.List(c.UserContext())
		if err != nil {
			slog.ErrorContext(c.UserContext(), "error fetching menu", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch menu"})
		}
		if items == nil {
			items = []models.MenuItem{}
		}
		return c.JSON(items)
	}
}

// CreateMenuItem handles adding a menu item (admin only)
func CreateMenuItem(repo *database.MenuRepository, menu *cache.MenuCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req MenuRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		category, ok := models.ParseCategory(req.Category)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Category must be FOOD or DRINK"})
		}

		ctx := c.UserContext()
		item, err := repo.Create(ctx, req.Name, category, req.Price)
		if err != nil {
			slog.ErrorContext(ctx, "error creating menu item", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create menu item"})
		}
		menu.Invalidate(ctx)

		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// DeleteMenuItem handles removing a menu item (admin only)
func DeleteMenuItem(repo *database.MenuRepository, menu *cache.MenuCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		err := repo.Delete(ctx, c.Params("id"))
		if errors.Is(err, database.ErrMenuNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Menu item not found"})
		}
		if err != nil {
			slog.ErrorContext(ctx, "error deleting menu item", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete menu item"})
		}
		menu.Invalidate(ctx)

		return c.JSON(fiber.Map{"message": "Menu item deleted successfully"})
	}
}
