package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/josanv1n/DIZA-FOOD/internal/database"
	"github.com/josanv1n/DIZA-FOOD/internal/ledger"
	"github.com/josanv1n/DIZA-FOOD/internal/middleware"
	"github.com/josanv1n/DIZA-FOOD/internal/models"
	"github.com/josanv1n/DIZA-FOOD/internal/pos"
)

// LineItemRequest is one cart line as sent by the register. Only menuId and
// quantity are trusted; name and price come from the menu.
type LineItemRequest struct {
	MenuID   string `json:"menuId" validate:"required"`
	MenuName string `json:"menuName"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity" validate:"gte=1,lte=999"`
	Subtotal int64  `json:"subtotal"`
}

// TransactionRequest is the checkout payload. Discount and cashReceived
// accept numbers or the raw text typed into the register.
type TransactionRequest struct {
	UserID        string            `json:"userId"`
	TotalAmount   *int64            `json:"totalAmount"`
	Discount      any               `json:"discount"`
	FinalAmount   *int64            `json:"finalAmount"`
	PaymentMethod string            `json:"paymentMethod"`
	Remark        string            `json:"remark" validate:"max=255"`
	CashReceived  any               `json:"cashReceived"`
	LineItems     []LineItemRequest `json:"lineItems" validate:"max=100,dive"`
	Details       []LineItemRequest `json:"details" validate:"max=100,dive"`
}

func (r *TransactionRequest) lines() []LineItemRequest {
	if len(r.LineItems) > 0 {
		return r.LineItems
	}
	return r.Details
}

type checkoutInput struct {
	cart    *pos.Cart
	summary pos.Summary
	method  models.PaymentMethod
}

// buildCheckout rebuilds the cart from the menu and derives the summary.
// It answers the request itself on any client error and returns ok=false.
func buildCheckout(c *fiber.Ctx, menu *database.MenuRepository, req *TransactionRequest) (checkoutInput, bool, error) {
	method := models.PaymentCash
	if strings.TrimSpace(req.PaymentMethod) != "" {
		m, ok := models.ParsePaymentMethod(req.PaymentMethod)
		if !ok {
			return checkoutInput{}, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Payment method must be CASH, TRANSFER or QRIS",
			})
		}
		method = m
	}

	ctx := c.UserContext()
	cart := pos.NewCart()
	for _, li := range req.lines() {
		item, err := menu.FindByID(ctx, li.MenuID)
		if errors.Is(err, database.ErrMenuNotFound) {
			return checkoutInput{}, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("Menu item %s not found", li.MenuID),
			})
		}
		if err != nil {
			return checkoutInput{}, false, err
		}
		cart.Add(*item)
		cart.AdjustQuantity(item.ID, li.Quantity-1)
	}

	subtotal, err := cart.CheckedSubtotal()
	if err != nil {
		return checkoutInput{}, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Sale amount out of range",
		})
	}

	summary := pos.Calculate(
		subtotal,
		ledger.SafeString(req.Discount),
		method,
		ledger.SafeString(req.CashReceived),
	)
	return checkoutInput{cart: cart, summary: summary, method: method}, true, nil
}

// PreviewCheckout prices a cart without committing it
func PreviewCheckout(menu *database.MenuRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req TransactionRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		in, ok, err := buildCheckout(c, menu, &req)
		if !ok {
			return err
		}

		lines := in.cart.Lines()
		out := make([]fiber.Map, 0, len(lines))
		for _, l := range lines {
			out = append(out, fiber.Map{
				"menuId":   l.Item.ID,
				"menuName": l.Item.Name,
				"price":    l.Item.Price,
				"quantity": l.Quantity,
				"subtotal": l.Subtotal(),
			})
		}
		return c.JSON(fiber.Map{
			"summary":   in.summary,
			"lineItems": out,
			"itemCount": in.cart.ItemCount(),
		})
	}
}

// CreateTransaction commits a sale
func CreateTransaction(committer *ledger.Committer, menu *database.MenuRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cashierID, _, err := middleware.GetUserFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		var req TransactionRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if len(req.lines()) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cart is empty"})
		}

		in, ok, err := buildCheckout(c, menu, &req)
		if !ok {
			return err
		}
		if in.method == models.PaymentCash && req.CashReceived == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cashReceived is required for CASH payments"})
		}
		if req.TotalAmount != nil && *req.TotalAmount != in.summary.Subtotal {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":       "Total does not match current menu prices",
				"totalAmount": in.summary.Subtotal,
			})
		}
		if req.FinalAmount != nil && *req.FinalAmount != in.summary.FinalTotal {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":       "Final amount does not match current menu prices",
				"finalAmount": in.summary.FinalTotal,
			})
		}

		ctx := c.UserContext()
		tx, err := committer.Commit(ctx, in.cart, ledger.Checkout{
			CashierID:     cashierID,
			Discount:      in.summary.Discount,
			PaymentMethod: in.method,
			CashReceived:  in.summary.CashReceived,
			Remark:        req.Remark,
		})
		switch {
		case err == nil:
		case errors.Is(err, ledger.ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cart is empty"})
		case errors.Is(err, ledger.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Sale amount out of range"})
		case errors.Is(err, ledger.ErrInsufficientCash):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":       "insufficient cash",
				"finalAmount": in.summary.FinalTotal,
			})
		case errors.Is(err, ledger.ErrInvalidPaymentMethod):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment method must be CASH, TRANSFER or QRIS"})
		default:
			slog.ErrorContext(ctx, "error creating transaction", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save transaction"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":          tx.ID,
			"success":     true,
			"finalAmount": tx.FinalAmount,
			"change":      in.summary.Change,
			"transaction": tx,
		})
	}
}

// GetTransactions returns the recent transaction window, newest first
func GetTransactions(reader *ledger.Reader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		txs, err := reader.Recent(c.UserContext())
		if err != nil {
			slog.ErrorContext(c.UserContext(), "error fetching transactions", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transactions"})
		}
		if txs == nil {
			txs = []models.Transaction{}
		}
		return c.JSON(txs)
	}
}

// GetTransaction returns one transaction with its line items
func GetTransaction(reader *ledger.Reader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tx, err := reader.Get(c.UserContext(), c.Params("id"))
		if errors.Is(err, ledger.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
		}
		if err != nil {
			slog.ErrorContext(c.UserContext(), "error fetching transaction", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transaction"})
		}
		return c.JSON(tx)
	}
}
