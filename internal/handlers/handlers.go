package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/josanv1n/DIZA-FOOD/internal/cache"
	"github.com/josanv1n/DIZA-FOOD/internal/database"
	"github.com/josanv1n/DIZA-FOOD/internal/ledger"
	"github.com/josanv1n/DIZA-FOOD/internal/middleware"
	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

var validate = validator.New()

// Deps is everything the HTTP layer needs, wired once in main.
type Deps struct {
	Users     *database.UserRepository
	Menu      *database.MenuRepository
	MenuCache *cache.MenuCache
	Promo     *database.PromoRepository
	Committer *ledger.Committer
	Reader    *ledger.Reader

	JWTSecret []byte
	JWTTTL    time.Duration
	Location  *time.Location
}

// Register mounts every route under /api/v1.
func Register(app *fiber.App, d Deps) {
	if d.Location == nil {
		d.Location = time.Local
	}
	authHandler := NewAuthHandler(d.Users, d.JWTSecret, d.JWTTTL)

	api := app.Group("/api/v1")

	// === PUBLIC ROUTES ===
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "Running", "message": "API Ready"})
	})
	api.Get("/menu", GetMenu(d.MenuCache))
	api.Get("/promo", GetPromo(d.Promo))
	api.Post("/login", authHandler.Login)

	// === PROTECTED ROUTES (JWT) ===
	protected := api.Group("", middleware.JWTProtected(d.JWTSecret))
	protected.Get("/me", authHandler.GetProfile)

	// Cashier
	pos := protected.Group("/pos", middleware.RoleProtected(models.RoleUser, models.RoleAdmin))
	pos.Post("/checkout/preview", PreviewCheckout(d.Menu))
	pos.Post("/transactions", CreateTransaction(d.Committer, d.Menu))

	// Admin
	admin := protected.Group("/admin", middleware.RoleProtected(models.RoleAdmin))
	admin.Post("/menu", CreateMenuItem(d.Menu, d.MenuCache))
	admin.Delete("/menu/:id", DeleteMenuItem(d.Menu, d.MenuCache))
	admin.Put("/promo", UpdatePromo(d.Promo))
	admin.Get("/users", GetUsers(d.Users))

	// Manager
	manager := protected.Group("", middleware.RoleProtected(models.RoleManager, models.RoleAdmin))
	manager.Get("/transactions", GetTransactions(d.Reader))
	manager.Get("/transactions/:id", GetTransaction(d.Reader))
	manager.Get("/reports/daily", GetDailyReport(d.Reader, d.Location))
	manager.Get("/reports/daily/export", ExportDailyReport(d.Reader, d.Location))
}

// ErrorHandler renders every unhandled error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		slog.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// bindJSON parses and validates the request body.
func bindJSON(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return "Validation failed: " + strings.Join(parts, ", ")
}
