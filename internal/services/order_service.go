// Package services – OrderService
//
// This file implements the OrderService, which owns the purchase state
// machine and the order history reads. A purchase is one database
// transaction: claim stock, conditionally debit, record the order, link the
// delivered item. Each step that can refuse does so before any durable
// mutation survives (the rollback releases a claimed item), so a failed
// purchase leaves no trace.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/docastore/store-backend/internal/domain"
	"github.com/docastore/store-backend/internal/repo"
	"github.com/docastore/store-backend/internal/utils"
)

// DefaultOrdersPageSize matches the transport's history keyboard layout.
const DefaultOrdersPageSize = 5

// PurchaseResult is everything the transport needs to deliver a completed
// purchase: the immutable order, the claimed credential payload with its
// media, and the buyer's balance after the debit.
type PurchaseResult struct {
	Order      *domain.Order
	Item       *domain.StockItem
	NewBalance float64
}

// OrderService implements purchases and order history.
type OrderService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Purchase sells one item of the catalog product identified by productCode
// to userID.
//
// Sequence, inside a single transaction:
//  1. resolve the product from the static catalog (ErrUnknownProduct);
//  2. claim the oldest unused stock item via an atomic conditional update
//     (ErrOutOfStock when none) — two concurrent buyers can never claim the
//     same item;
//  3. conditionally debit the price in one guarded UPDATE
//     (ErrInsufficientBalance when the balance is short) — the rollback
//     releases the claimed item, so a failed debit never reserves stock;
//  4. insert the completed order, capturing price and labels;
//  5. link the order to the delivered item.
//
// Either precondition failure short-circuits with no state changed.
func (s *OrderService) Purchase(ctx context.Context, userID int64, productCode string) (*PurchaseResult, error) {
	product, ok := domain.ProductByCode(productCode)
	if !ok {
		return nil, ErrUnknownProduct
	}

	var result PurchaseResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetUserByID(ctx, tx, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		item, err := repo.ClaimStock(ctx, tx, product.Code)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrOutOfStock
			}
			return err
		}

		debited, err := repo.DebitBalance(ctx, tx, userID, product.Price)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientBalance
		}

		order, err := repo.CreateOrder(ctx, tx, userID, product.Category, product.Code, product.Label, product.Price)
		if err != nil {
			return err
		}
		if err := repo.LinkOrderStock(ctx, tx, order.ID, item.ID); err != nil {
			return err
		}

		buyer, err := repo.GetUserByID(ctx, tx, userID)
		if err != nil {
			return err
		}

		result = PurchaseResult{Order: order, Item: item, NewBalance: buyer.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CountOrders returns the total number of orders a user has placed.
func (s *OrderService) CountOrders(ctx context.Context, userID int64) (int64, error) {
	return repo.CountUserOrders(ctx, s.DB, userID)
}

// OrdersPage returns one page of a user's order history, most recent first,
// together with the total count for pagination metadata.
func (s *OrderService) OrdersPage(ctx context.Context, userID int64, page, pageSize int) ([]domain.Order, int64, error) {
	_, size, offset := utils.PageWindow(page, pageSize, DefaultOrdersPageSize)

	total, err := repo.CountUserOrders(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Order{}, 0, nil
	}
	items, err := repo.ListUserOrdersPage(ctx, s.DB, userID, offset, size)
	return items, total, err
}

// OrderDetails returns one order with its linked stock id, enforcing
// ownership. Legacy orders surface a nil stock id.
func (s *OrderService) OrderDetails(ctx context.Context, orderID, userID int64) (*repo.OrderDetails, error) {
	det, err := repo.GetOrderDetails(ctx, s.DB, orderID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return det, err
}

// SalesStats returns order count and revenue for the admin dashboard.
func (s *OrderService) SalesStats(ctx context.Context) (count int64, revenue float64, err error) {
	return repo.SalesStats(ctx, s.DB)
}

// RecentOrders returns the newest limit orders across all users.
func (s *OrderService) RecentOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	return repo.ListRecentOrders(ctx, s.DB, limit)
}
