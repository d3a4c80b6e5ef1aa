package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

var ErrMenuNotFound = errors.New("menu item not found")

type MenuRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db, now: time.Now}
}

// List returns the whole menu sorted by name.
func (r *MenuRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("database: list menu: %w", err)
	}
	for i := range items {
		if c, ok := models.ParseCategory(string(items[i].Category)); ok {
			items[i].Category = c
		}
	}
	return items, nil
}

func (r *MenuRepository) FindByID(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMenuNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: find menu %s: %w", id, err)
	}
	if c, ok := models.ParseCategory(string(item.Category)); ok {
		item.Category = c
	}
	return &item, nil
}

// NewMenuID is the creation time in unix millis plus 8 random hex digits,
// so items created in the same millisecond still get distinct ids.
func NewMenuID(t time.Time) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Create stores a new menu item under a NewMenuID id.
func (r *MenuRepository) Create(ctx context.Context, name string, category models.Category, price int64) (*models.MenuItem, error) {
	item := models.MenuItem{
		ID:       NewMenuID(r.now()),
		Name:     strings.TrimSpace(name),
		Category: category,
		Price:    price,
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("database: create menu: %w", err)
	}
	return &item, nil
}

// Delete removes a menu item. Past transactions keep their own copy of the
// name and price, so history is unaffected.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.MenuItem{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("database: delete menu %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMenuNotFound
	}
	return nil
}
