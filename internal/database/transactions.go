package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/josanv1n/DIZA-FOOD/internal/ledger"
	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

const pgUniqueViolation = "23505"

// TransactionStore is the GORM implementation of ledger.Store.
type TransactionStore struct {
	db *gorm.DB
}

func NewTransactionStore(db *gorm.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// SaveTransaction inserts the header and every detail row inside one
// database transaction; any failure rolls the whole sale back.
func (s *TransactionStore) SaveTransaction(ctx context.Context, t *models.Transaction) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Header
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}

		// 2. Detail rows
		for i := range t.Details {
			t.Details[i].TransactionID = t.ID
			if err := tx.Create(&t.Details[i]).Error; err != nil {
				return fmt.Errorf("detail %d (%s): %w", i, t.Details[i].MenuID, err)
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateID, t.ID)
		}
		return fmt.Errorf("database: save transaction %s: %w", t.ID, err)
	}
	return nil
}

// RecentTransactions returns raw header rows, newest first. Rows are handed
// back untyped for the ledger reconciler.
func (s *TransactionStore) RecentTransactions(ctx context.Context, limit int) ([]ledger.RawRow, error) {
	var rows []map[string]any
	err := s.db.WithContext(ctx).
		Table("transactions").
		Order("date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("database: recent transactions: %w", err)
	}

	return rawRows(rows), nil
}

// TransactionsBetween returns the raw header rows dated in [from, to),
// newest first.
func (s *TransactionStore) TransactionsBetween(ctx context.Context, from, to time.Time) ([]ledger.RawRow, error) {
	var rows []map[string]any
	err := s.db.WithContext(ctx).
		Table("transactions").
		Where("date >= ? AND date < ?", from, to).
		Order("date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("database: transactions between %s and %s: %w", from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}
	return rawRows(rows), nil
}

func rawRows(rows []map[string]any) []ledger.RawRow {
	out := make([]ledger.RawRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ledger.RawRow(r))
	}
	return out
}

func (s *TransactionStore) FindTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	err := s.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: find transaction %s: %w", id, err)
	}
	return &t, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
