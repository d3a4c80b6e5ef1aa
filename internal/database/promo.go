package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

// The stall runs a single promo banner.
const promoID = "p1"

type PromoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

// Get returns the promo, or an empty inactive one when none exists yet.
func (r *PromoRepository) Get(ctx context.Context) (models.PromoText, error) {
	var p models.PromoText
	err := r.db.WithContext(ctx).Order("id ASC").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PromoText{Content: "", Active: false}, nil
	}
	if err != nil {
		return models.PromoText{}, fmt.Errorf("database: get promo: %w", err)
	}
	return p, nil
}

// Update replaces the promo text, creating the row on first use.
func (r *PromoRepository) Update(ctx context.Context, content string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PromoText{}).Where("id = ?", promoID).Update("content", content)
		if result.Error != nil {
			return fmt.Errorf("database: update promo: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			return nil
		}
		if err := tx.Create(&models.PromoText{ID: promoID, Content: content, Active: true}).Error; err != nil {
			return fmt.Errorf("database: create promo: %w", err)
		}
		return nil
	})
}
