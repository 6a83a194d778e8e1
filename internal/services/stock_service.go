// Package services – StockService
//
// This file implements the StockService, which governs the admin-facing
// inventory lifecycle: provisioning credential bundles with media
// attachments, availability summaries, listings, and guarded deletion.
// Claiming an item for sale is not here: that belongs to the purchase
// transaction in OrderService.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/docastore/store-backend/internal/domain"
	"github.com/docastore/store-backend/internal/repo"
)

// StockService implements admin inventory management.
type StockService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Provision inserts a new unused stock item with its media references,
// atomically. The type must be a known catalog code.
func (s *StockService) Provision(ctx context.Context, itemType, email, password, tutorial string, images []string) (*domain.StockItem, error) {
	if _, ok := domain.ProductByCode(itemType); !ok {
		return nil, ErrUnknownProduct
	}
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidStockPayload
	}

	var item *domain.StockItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		it, err := repo.CreateStock(ctx, tx, itemType, email, password, tutorial)
		if err != nil {
			return err
		}
		for _, fileID := range images {
			if err := repo.AddStockImage(ctx, tx, it.ID, fileID); err != nil {
				return err
			}
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repo.GetStock(ctx, s.DB, item.ID)
}

// Get returns a stock item with its images, or ErrStockNotFound.
func (s *StockService) Get(ctx context.Context, id int64) (*domain.StockItem, error) {
	it, err := repo.GetStock(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrStockNotFound
	}
	return it, err
}

// Summary returns available counts per stock type, in catalog order.
func (s *StockService) Summary(ctx context.Context) (map[string]int64, error) {
	return repo.StockSummary(ctx, s.DB, domain.StockTypes())
}

// ListByType returns up to limit items of a type for the admin panel,
// newest first, used items included.
func (s *StockService) ListByType(ctx context.Context, itemType string, limit int) ([]domain.StockItem, error) {
	if _, ok := domain.ProductByCode(itemType); !ok {
		return nil, ErrUnknownProduct
	}
	return repo.ListStockByType(ctx, s.DB, itemType, limit)
}

// Delete removes an unused-or-unsold stock item and its images. Items
// referenced by an order link are refused with ErrStockLinked.
func (s *StockService) Delete(ctx context.Context, id int64) error {
	err := repo.DeleteStock(ctx, s.DB, id)
	switch {
	case errors.Is(err, repo.ErrStockLinked):
		return ErrStockLinked
	case errors.Is(err, repo.ErrNotFound):
		return ErrStockNotFound
	}
	return err
}
