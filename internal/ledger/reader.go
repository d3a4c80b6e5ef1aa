package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

// DefaultWindow caps how many transactions one ledger read returns.
const DefaultWindow = 100

type Reader struct {
	store   Store
	window  int
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

type ReaderOption func(*Reader)

func WithWindow(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.window = n
		}
	}
}

func WithReadTimeout(d time.Duration) ReaderOption {
	return func(r *Reader) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithReaderClock(now func() time.Time) ReaderOption {
	return func(r *Reader) { r.now = now }
}

func WithReaderLogger(l *slog.Logger) ReaderOption {
	return func(r *Reader) { r.logger = l }
}

func NewReader(store Store, opts ...ReaderOption) *Reader {
	r := &Reader{
		store:   store,
		window:  DefaultWindow,
		timeout: 10 * time.Second,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recent returns the newest transactions, newest first, reconciled to the
// canonical shape. Rows that needed defaults are kept and logged. Only a
// store failure is an error; commits landing after the read are simply not
// included.
func (r *Reader) Recent(ctx context.Context) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.store.RecentTransactions(ctx, r.window)
	if err != nil {
		return nil, fmt.Errorf("ledger: read recent transactions: %w", err)
	}
	return r.reconcile(ctx, rows), nil
}

// Day returns every transaction of the calendar day containing day in loc,
// newest first. Unlike Recent it is not limited by the window.
func (r *Reader) Day(ctx context.Context, day time.Time, loc *time.Location) ([]models.Transaction, error) {
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	y, m, d := day.In(loc).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	rows, err := r.store.TransactionsBetween(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("ledger: read transactions of %s: %w", from.Format(DateLayout), err)
	}
	return r.reconcile(ctx, rows), nil
}

func (r *Reader) reconcile(ctx context.Context, rows []RawRow) []models.Transaction {
	now := r.now()
	out := make([]models.Transaction, 0, len(rows))
	for i, row := range rows {
		tx, defaulted := Normalize(row, now)
		if len(defaulted) > 0 {
			r.logger.WarnContext(ctx, "ledger row reconciled with defaults",
				"row", i,
				"id", tx.ID,
				"fields", defaulted,
			)
		}
		out = append(out, tx)
	}
	return out
}

// Get returns one transaction with its detail lines.
func (r *Reader) Get(ctx context.Context, id string) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.store.FindTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ledger: find transaction %q: %w", id, err)
	}
	return tx, nil
}
