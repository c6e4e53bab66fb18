package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"abstract-review-api/models"

	"gorm.io/gorm"
)

// CategoryDirectory is the read-only lookup from a category to its reviewer
// pool. It is supplied by event configuration and never mutated here. A
// lookup for an unknown category fails closed with ErrCategoryNotFound.
type CategoryDirectory interface {
	GetCategory(eventID, categoryID int) (*models.Category, error)
	ListCategories(eventID int) ([]models.Category, error)
}

type categoryCacheEntry struct {
	category  *models.Category
	fetchedAt time.Time
}

// GormCategoryDirectory reads categories from the database with a short TTL
// cache; category configuration changes rarely compared to how often the
// auto-assignment sweep reads it.
type GormCategoryDirectory struct {
	db *gorm.DB

	mu    sync.RWMutex
	cache map[string]*categoryCacheEntry
	ttl   time.Duration
}

func NewGormCategoryDirectory(db *gorm.DB) *GormCategoryDirectory {
	return &GormCategoryDirectory{
		db:    db,
		cache: make(map[string]*categoryCacheEntry),
		ttl:   5 * time.Minute,
	}
}

func categoryCacheKey(eventID, categoryID int) string {
	return fmt.Sprintf("%d:%d", eventID, categoryID)
}

func (d *GormCategoryDirectory) GetCategory(eventID, categoryID int) (*models.Category, error) {
	key := categoryCacheKey(eventID, categoryID)

	d.mu.RLock()
	entry := d.cache[key]
	d.mu.RUnlock()

	if entry != nil && time.Since(entry.fetchedAt) < d.ttl {
		return entry.category, nil
	}

	var category models.Category
	err := d.db.Preload("Reviewers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).
		Where("category_id = ? AND event_id = ? AND delete_at IS NULL", categoryID, eventID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to load category %d: %w", categoryID, err)
	}

	d.mu.Lock()
	d.cache[key] = &categoryCacheEntry{category: &category, fetchedAt: time.Now()}
	d.mu.Unlock()

	return &category, nil
}

func (d *GormCategoryDirectory) ListCategories(eventID int) ([]models.Category, error) {
	var categories []models.Category
	err := d.db.Preload("Reviewers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).
		Where("event_id = ? AND delete_at IS NULL", eventID).
		Order("category_id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load categories for event %d: %w", eventID, err)
	}
	return categories, nil
}

// ClearCache invalidates cached categories, for use after admin edits.
func (d *GormCategoryDirectory) ClearCache() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache = make(map[string]*categoryCacheEntry)
}
