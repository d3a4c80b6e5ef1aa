package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

const menuKey = "menu:all"

type MenuSource interface {
	List(ctx context.Context) ([]models.MenuItem, error)
}

// MenuCache serves the public menu from the store and falls back to the
// source on a miss. Store failures are logged and never fail a request.
type MenuCache struct {
	src   MenuSource
	store Store
	ttl   time.Duration
}

func NewMenuCache(src MenuSource, store Store, ttl time.Duration) *MenuCache {
	if store == nil {
		store = Nop{}
	}
	return &MenuCache{src: src, store: store, ttl: ttl}
}

func (m *MenuCache) List(ctx context.Context) ([]models.MenuItem, error) {
	raw, ok, err := m.store.Load(ctx, menuKey)
	if err != nil {
		slog.WarnContext(ctx, "menu cache read failed", "error", err)
	}
	if ok {
		var items []models.MenuItem
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		slog.WarnContext(ctx, "menu cache entry corrupt, reloading", "key", menuKey)
	}

	items, err := m.src.List(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(items); err == nil {
		if err := m.store.Save(ctx, menuKey, b, m.ttl); err != nil {
			slog.WarnContext(ctx, "menu cache write failed", "error", err)
		}
	}
	return items, nil
}

// Invalidate drops the cached menu; call it after every menu change.
func (m *MenuCache) Invalidate(ctx context.Context) {
	if err := m.store.Drop(ctx, menuKey); err != nil {
		slog.WarnContext(ctx, "menu cache invalidate failed", "error", err)
	}
}
