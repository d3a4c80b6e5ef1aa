// Package ledger persists finished sales and reads them back for reporting.
//
// The Committer turns a cart into an immutable Transaction and writes it
// through a Store as one atomic unit. The Reader fetches recent rows and
// reconciles whatever shape the store hands back into canonical
// Transactions, and BuildDailyReport aggregates them per calendar day.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInsufficientCash     = errors.New("insufficient cash")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrMissingCashier       = errors.New("cashier identity is required")
	ErrInvalidAmount        = errors.New("invalid sale amount")
	ErrCommitFailed         = errors.New("transaction commit failed")

	// ErrDuplicateID is returned by a Store when the transaction id is
	// already taken. The Committer retries with a fresh id.
	ErrDuplicateID = errors.New("duplicate transaction id")

	ErrNotFound = errors.New("transaction not found")
)

// RawRow is a transaction row as the store returned it, before
// reconciliation. Keys may be snake_case or camelCase and values may be any
// scalar type.
type RawRow map[string]any

// Store is the persistence boundary of the ledger.
type Store interface {
	// SaveTransaction writes the header and every detail row atomically:
	// either all rows are committed or none are.
	SaveTransaction(ctx context.Context, tx *models.Transaction) error

	// RecentTransactions returns up to limit header rows, newest first.
	RecentTransactions(ctx context.Context, limit int) ([]RawRow, error)

	// TransactionsBetween returns every header row with from <= date < to,
	// newest first.
	TransactionsBetween(ctx context.Context, from, to time.Time) ([]RawRow, error)

	// FindTransaction returns one transaction with its details, or
	// ErrNotFound.
	FindTransaction(ctx context.Context, id string) (*models.Transaction, error)
}
