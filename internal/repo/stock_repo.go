// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the StockItem
// model and its media attachments.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/docastore/store-backend/internal/domain"
)

// ErrStockLinked is returned when deletion is refused because the stock item
// is referenced by a completed order's link.
var ErrStockLinked = errors.New("stock item linked to an order")

// CreateStock inserts a new, unused stock item.
func CreateStock(ctx context.Context, db *gorm.DB, itemType, email, password, tutorial string) (*domain.StockItem, error) {
	it := &domain.StockItem{
		Type:     itemType,
		Email:    email,
		Password: password,
		Tutorial: tutorial,
		Used:     false,
	}
	if err := db.WithContext(ctx).Create(it).Error; err != nil {
		return nil, err
	}
	return it, nil
}

// AddStockImage attaches a media reference to a stock item.
func AddStockImage(ctx context.Context, db *gorm.DB, stockID int64, fileID string) error {
	img := &domain.StockImage{StockID: stockID, FileID: fileID}
	return db.WithContext(ctx).Create(img).Error
}

// GetStockImages returns the media references attached to a stock item.
func GetStockImages(ctx context.Context, db *gorm.DB, stockID int64) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.StockImage{}).
		Where("stock_id = ?", stockID).
		Order("id ASC").
		Pluck("file_id", &out).Error
	return out, err
}

// GetStock fetches a stock item by id with its images, or ErrNotFound.
func GetStock(ctx context.Context, db *gorm.DB, id int64) (*domain.StockItem, error) {
	var it domain.StockItem
	if err := db.WithContext(ctx).Preload("Images").Where("id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// ClaimStock atomically claims the oldest unused item of the given type and
// returns it with images loaded, or ErrNotFound when the type is sold out.
//
// The claim is a single conditional UPDATE (used = 0 -> 1 guarded by
// used = 0) so that two concurrent purchasers can never be handed the same
// item; when a candidate is snatched between the select and the update, the
// next candidate is tried. When called inside a transaction, a rollback
// releases the claim.
func ClaimStock(ctx context.Context, db *gorm.DB, itemType string) (*domain.StockItem, error) {
	for {
		var it domain.StockItem
		err := db.WithContext(ctx).
			Where("type = ? AND used = ?", itemType, false).
			Order("id ASC").
			First(&it).Error
		if err != nil {
			return nil, err
		}

		res := db.WithContext(ctx).
			Model(&domain.StockItem{}).
			Where("id = ? AND used = ?", it.ID, false).
			Update("used", true)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			// Lost this candidate to a concurrent claim; try the next one.
			continue
		}

		it.Used = true
		if err := db.WithContext(ctx).
			Where("stock_id = ?", it.ID).
			Order("id ASC").
			Find(&it.Images).Error; err != nil {
			return nil, err
		}
		return &it, nil
	}
}

// CountAvailableStock returns the number of unused items of the given type.
func CountAvailableStock(ctx context.Context, db *gorm.DB, itemType string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.StockItem{}).
		Where("type = ? AND used = ?", itemType, false).
		Count(&total).Error
	return total, err
}

// StockSummary returns the available count per stock type, for dashboards.
func StockSummary(ctx context.Context, db *gorm.DB, types []string) (map[string]int64, error) {
	out := make(map[string]int64, len(types))
	for _, t := range types {
		n, err := CountAvailableStock(ctx, db, t)
		if err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, nil
}

// ListStockByType returns up to limit items of a type, newest first, used or
// not, for the admin listing/deletion flow.
func ListStockByType(ctx context.Context, db *gorm.DB, itemType string, limit int) ([]domain.StockItem, error) {
	var out []domain.StockItem
	q := db.WithContext(ctx).
		Where("type = ?", itemType).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// DeleteStock removes a stock item and its images. Items referenced by an
// order link are refused with ErrStockLinked rather than leaving the order
// with a dangling pointer. Returns ErrNotFound when the item does not exist.
func DeleteStock(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var linked int64
		if err := tx.Model(&domain.OrderStock{}).Where("stock_id = ?", id).Count(&linked).Error; err != nil {
			return err
		}
		if linked > 0 {
			return ErrStockLinked
		}
		if err := tx.Where("stock_id = ?", id).Delete(&domain.StockImage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.StockItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
