package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"cloudbite/internal/models"
	"cloudbite/internal/storage"
)

const (
	catalogCachePrefix   = "catalog:"
	catalogCategoriesKey = "catalog:categories"
	catalogMenuItemsKey  = "catalog:menu-items"
	catalogMenuItemsTTL  = 5 * time.Minute
	catalogCategoriesTTL = 30 * time.Minute
)

// CatalogService fronts the storage's catalog reads with an optional redis
// read-through cache. Admin writes pass through and invalidate. A nil client
// degrades to plain storage access.
type CatalogService struct {
	store storage.Storage
	cache *redis.Client
}

func NewCatalogService(store storage.Storage, cache *redis.Client) *CatalogService {
	return &CatalogService{store: store, cache: cache}
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(payload, dest) == nil
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if payload, err := json.Marshal(value); err == nil {
		_ = s.cache.Set(ctx, key, payload, ttl)
	}
}

func (s *CatalogService) invalidate(ctx context.Context, itemIDs ...string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, catalogCategoriesKey, catalogMenuItemsKey)
	for _, id := range itemIDs {
		_ = s.cache.Del(ctx, fmt.Sprintf("%smenu-item:%s", catalogCachePrefix, id))
	}
}

// -- Reads --

func (s *CatalogService) GetCategories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if s.cacheGet(ctx, catalogCategoriesKey, &cached) {
		return cached, nil
	}

	categories, err := s.store.GetCategories()
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, catalogCategoriesKey, categories, catalogCategoriesTTL)
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (models.Category, error) {
	return s.store.GetCategory(id)
}

// GetMenuItems only caches the unfiltered listing; filtered queries are cheap
// in-memory scans and too variable to key usefully.
func (s *CatalogService) GetMenuItems(ctx context.Context, filters storage.MenuItemFilters) ([]models.MenuItem, error) {
	if !filters.IsZero() {
		return s.store.GetMenuItems(filters)
	}

	var cached []models.MenuItem
	if s.cacheGet(ctx, catalogMenuItemsKey, &cached) {
		return cached, nil
	}

	items, err := s.store.GetMenuItems(filters)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, catalogMenuItemsKey, items, catalogMenuItemsTTL)
	return items, nil
}

func (s *CatalogService) GetMenuItemWithCategory(ctx context.Context, id string) (models.MenuItemWithCategory, error) {
	key := fmt.Sprintf("%smenu-item:%s", catalogCachePrefix, id)

	var cached models.MenuItemWithCategory
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	item, err := s.store.GetMenuItemWithCategory(id)
	if err != nil {
		return models.MenuItemWithCategory{}, err
	}
	s.cacheSet(ctx, key, item, catalogMenuItemsTTL)
	return item, nil
}

// -- Admin writes --

func (s *CatalogService) CreateCategory(ctx context.Context, category models.Category) (models.Category, error) {
	created, err := s.store.CreateCategory(category)
	if err != nil {
		return models.Category{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) (models.Category, error) {
	updated, err := s.store.UpdateCategory(id, patch)
	if err != nil {
		return models.Category{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) CreateMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	created, err := s.store.CreateMenuItem(item)
	if err != nil {
		return models.MenuItem{}, err
	}
	s.invalidate(ctx, created.ID)
	return created, nil
}

func (s *CatalogService) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (models.MenuItem, error) {
	updated, err := s.store.UpdateMenuItem(id, patch)
	if err != nil {
		return models.MenuItem{}, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

func (s *CatalogService) DeleteMenuItem(ctx context.Context, id string) error {
	if err := s.store.DeleteMenuItem(id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}
