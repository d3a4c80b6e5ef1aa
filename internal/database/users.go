package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type UserRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// Login matches the username case-insensitively and the PIN exactly, then
// records a login log entry. A failed log write does not fail the login.
func (r *UserRepository) Login(ctx context.Context, username, pin string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?) AND pin = ?", strings.TrimSpace(username), pin).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("database: login: %w", err)
	}

	now := r.now()
	entry := models.LoginLog{
		ID:        fmt.Sprintf("log-%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		UserID:    user.ID,
		Timestamp: now,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		slog.WarnContext(ctx, "failed to write login log", "user_id", user.ID, "error", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: find user %s: %w", id, err)
	}
	return &user, nil
}

// LoginLogs returns the latest login entries for a user, newest first.
func (r *UserRepository) LoginLogs(ctx context.Context, userID string, limit int) ([]models.LoginLog, error) {
	var logs []models.LoginLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("database: login logs: %w", err)
	}
	return logs, nil
}

// List returns every account ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("database: list users: %w", err)
	}
	return users, nil
}
