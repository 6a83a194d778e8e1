// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order model
// and the order-to-stock link, plus the aggregate sales queries used by the
// admin dashboard.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/docastore/store-backend/internal/domain"
)

// OrderDetails is an order joined with its (possibly absent) stock link.
// StockID is nil for legacy orders created before linking existed, or when
// the link was never written after a crash mid-purchase.
type OrderDetails struct {
	domain.Order
	StockID *int64 `json:"stock_id,omitempty"`
}

// CreateOrder inserts a completed order capturing category, labels, and
// price at this instant. Intended to run inside the purchase transaction.
func CreateOrder(ctx context.Context, db *gorm.DB, userID int64, category, typeCode, typeLabel string, price float64) (*domain.Order, error) {
	o := &domain.Order{
		UserID:    userID,
		Category:  category,
		TypeCode:  typeCode,
		TypeLabel: typeLabel,
		Price:     price,
		Status:    domain.OrderStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

// LinkOrderStock writes (or overwrites) the link between an order and the
// stock item it delivered. The order id is the primary key, so the write is
// an idempotent upsert: at most one item per order.
func LinkOrderStock(ctx context.Context, db *gorm.DB, orderID, stockID int64) error {
	link := &domain.OrderStock{OrderID: orderID, StockID: stockID}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stock_id"}),
		}).
		Create(link).Error
}

// CountUserOrders returns the total number of orders placed by a user.
func CountUserOrders(ctx context.Context, db *gorm.DB, userID int64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListUserOrdersPage returns a page of a user's orders, most recent first.
// The caller computes offset and limit (e.g., (page-1)*pageSize).
func ListUserOrdersPage(ctx context.Context, db *gorm.DB, userID int64, offset, limit int) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetOrderDetails fetches an order by id, enforcing ownership, together with
// the linked stock id when a link exists. Returns ErrNotFound when the order
// is missing or not owned by userID.
func GetOrderDetails(ctx context.Context, db *gorm.DB, orderID, userID int64) (*OrderDetails, error) {
	var o domain.Order
	if err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error; err != nil {
		return nil, err
	}

	det := &OrderDetails{Order: o}
	var link domain.OrderStock
	err := db.WithContext(ctx).Where("order_id = ?", orderID).First(&link).Error
	switch {
	case err == nil:
		det.StockID = &link.StockID
	case errors.Is(err, gorm.ErrRecordNotFound):
		// legacy order, no link
	default:
		return nil, err
	}
	return det, nil
}

// SalesStats returns the total number of orders and the revenue they
// produced, for the admin dashboard. An empty orders table yields zeros.
func SalesStats(ctx context.Context, db *gorm.DB) (count int64, revenue float64, err error) {
	if err = db.WithContext(ctx).Model(&domain.Order{}).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	err = db.WithContext(ctx).
		Raw("SELECT COALESCE(SUM(price), 0) FROM orders").
		Scan(&revenue).Error
	return count, revenue, err
}

// ListRecentOrders returns the newest limit orders across all users.
func ListRecentOrders(ctx context.Context, db *gorm.DB, limit int) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
