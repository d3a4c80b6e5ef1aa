package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
	"github.com/josanv1n/DIZA-FOOD/internal/pos"
)

const (
	defaultCommitTimeout = 10 * time.Second
	maxCommitAttempts    = 3
)

// Checkout carries everything about a sale that is not in the cart.
// Discount and CashReceived are already-coerced amounts.
type Checkout struct {
	CashierID     string
	Discount      int64
	PaymentMethod models.PaymentMethod
	CashReceived  int64
	Remark        string
}

type Committer struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
	newID   func(time.Time) string
	logger  *slog.Logger
}

type CommitterOption func(*Committer)

// WithCommitTimeout bounds each commit, store round-trips included.
func WithCommitTimeout(d time.Duration) CommitterOption {
	return func(c *Committer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithClock(now func() time.Time) CommitterOption {
	return func(c *Committer) { c.now = now }
}

func WithIDGenerator(gen func(time.Time) string) CommitterOption {
	return func(c *Committer) { c.newID = gen }
}

func WithCommitLogger(l *slog.Logger) CommitterOption {
	return func(c *Committer) { c.logger = l }
}

func NewCommitter(store Store, opts ...CommitterOption) *Committer {
	c := &Committer{
		store:   store,
		timeout: defaultCommitTimeout,
		now:     time.Now,
		newID:   NewTransactionID,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewTransactionID returns "TX-<unix millis>-<8 hex chars>". The fixed-width
// millisecond prefix keeps ids sortable by commit time; the random suffix
// separates commits landing in the same millisecond.
func NewTransactionID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("TX-%013d-%s", t.UnixMilli(), suffix)
}

// Commit validates the sale, builds the transaction and persists it. Every
// rule is checked before the store is touched. The cart is only read, so on
// failure the caller still has it for a retry; on success the caller is
// expected to clear it.
func (c *Committer) Commit(ctx context.Context, cart *pos.Cart, co Checkout) (*models.Transaction, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	method, ok := models.ParsePaymentMethod(string(co.PaymentMethod))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, co.PaymentMethod)
	}
	if strings.TrimSpace(co.CashierID) == "" {
		return nil, ErrMissingCashier
	}
	co.PaymentMethod = method

	subtotal, err := cart.CheckedSubtotal()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if subtotal <= 0 {
		return nil, fmt.Errorf("%w: subtotal %d", ErrInvalidAmount, subtotal)
	}

	final := pos.FinalTotal(subtotal, co.Discount)
	if !pos.CanCommit(method, co.CashReceived, final) {
		return nil, ErrInsufficientCash
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	now := c.now()
	var lastErr error
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		tx := BuildTransaction(cart, co, c.newID(now), now)
		err := c.store.SaveTransaction(ctx, tx)
		if err == nil {
			c.logger.InfoContext(ctx, "transaction committed",
				"id", tx.ID,
				"cashier", tx.UserID,
				"final_amount", tx.FinalAmount,
				"payment_method", tx.PaymentMethod,
				"lines", len(tx.Details),
			)
			return tx, nil
		}
		lastErr = err
		if !errors.Is(err, ErrDuplicateID) {
			break
		}
		c.logger.WarnContext(ctx, "transaction id collision, retrying", "id", tx.ID, "attempt", attempt)
	}

	c.logger.ErrorContext(ctx, "transaction commit failed", "cashier", co.CashierID, "error", lastErr)
	return nil, fmt.Errorf("%w: %w", ErrCommitFailed, lastErr)
}

// BuildTransaction freezes the cart into a transaction header and its detail
// rows. Totals are derived from the lines, never taken from the caller.
func BuildTransaction(cart *pos.Cart, co Checkout, id string, at time.Time) *models.Transaction {
	lines := cart.Lines()
	details := make([]models.TransactionDetail, 0, len(lines))
	var total int64
	for _, l := range lines {
		sub := l.Subtotal()
		total += sub
		details = append(details, models.TransactionDetail{
			TransactionID: id,
			MenuID:        l.Item.ID,
			MenuName:      l.Item.Name,
			Price:         l.Item.Price,
			Quantity:      l.Quantity,
			Subtotal:      sub,
		})
	}

	discount := max(0, co.Discount)
	return &models.Transaction{
		ID:            id,
		Date:          at,
		UserID:        co.CashierID,
		TotalAmount:   total,
		Discount:      discount,
		FinalAmount:   pos.FinalTotal(total, discount),
		PaymentMethod: co.PaymentMethod,
		Remark:        strings.TrimSpace(co.Remark),
		Details:       details,
	}
}
