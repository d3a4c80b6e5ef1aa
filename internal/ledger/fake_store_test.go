package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

// memStore stages every write and only publishes it when the whole
// transaction went through, mimicking BEGIN/COMMIT/ROLLBACK.
type memStore struct {
	mu         sync.Mutex
	headers    map[string]models.Transaction
	details    map[string][]models.TransactionDetail
	calls      int
	rangeCalls int

	// failOnDetail makes the write fail after this many detail rows; -1
	// disables it.
	failOnDetail int
	saveErrs     []error
	rows         []RawRow
	readErr      error
	block        bool
}

func newMemStore() *memStore {
	return &memStore{
		headers:      map[string]models.Transaction{},
		details:      map[string][]models.TransactionDetail{},
		failOnDetail: -1,
	}
}

var errDiskFull = errors.New("disk full")

func (s *memStore) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if len(s.saveErrs) > 0 {
		err := s.saveErrs[0]
		s.saveErrs = s.saveErrs[1:]
		return err
	}
	if _, taken := s.headers[tx.ID]; taken {
		return ErrDuplicateID
	}

	var staged []models.TransactionDetail
	for i, d := range tx.Details {
		if i == s.failOnDetail {
			// rollback: nothing staged is published
			return errDiskFull
		}
		staged = append(staged, d)
	}

	header := *tx
	header.Details = nil
	s.headers[tx.ID] = header
	s.details[tx.ID] = staged
	return nil
}

func (s *memStore) RecentTransactions(_ context.Context, limit int) ([]RawRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.rows != nil {
		return s.rows, nil
	}

	txs := s.sortedLocked(func(models.Transaction) bool { return true })
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return toRows(txs), nil
}

func (s *memStore) TransactionsBetween(_ context.Context, from, to time.Time) ([]RawRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	s.rangeCalls++
	return toRows(s.sortedLocked(func(tx models.Transaction) bool {
		return !tx.Date.Before(from) && tx.Date.Before(to)
	})), nil
}

func (s *memStore) sortedLocked(keep func(models.Transaction) bool) []models.Transaction {
	txs := make([]models.Transaction, 0, len(s.headers))
	for _, tx := range s.headers {
		if keep(tx) {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
	return txs
}

func toRows(txs []models.Transaction) []RawRow {
	rows := make([]RawRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, RawRow{
			"id":             tx.ID,
			"date":           tx.Date,
			"user_id":        tx.UserID,
			"total_amount":   tx.TotalAmount,
			"discount":       tx.Discount,
			"final_amount":   tx.FinalAmount,
			"payment_method": string(tx.PaymentMethod),
			"remark":         tx.Remark,
		})
	}
	return rows
}

func (s *memStore) FindTransaction(_ context.Context, id string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.headers[id]
	if !ok {
		return nil, ErrNotFound
	}
	tx.Details = s.details[id]
	return &tx, nil
}

func (s *memStore) rowCount(id string) (headers, details int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.headers[id]; ok {
		headers = 1
	}
	return headers, len(s.details[id])
}
