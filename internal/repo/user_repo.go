// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Balance invariants:
//   - All balance mutations are relative (balance ± delta). The only
//     absolute write is the zero initialization at creation.
//   - DebitBalance is a single conditional UPDATE guarded by
//     balance >= amount, closing the double-spend race under concurrent
//     purchases by the same user.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/docastore/store-backend/internal/domain"
)

// FormatDocCode derives the human-displayable account code from an internal
// user id, zero-padded to five digits ("DOC-00042").
func FormatDocCode(id int64) string {
	return fmt.Sprintf("DOC-%05d", id)
}

// GetOrCreateUser looks up a user by external chat identity, creating a
// zero-balance row with a freshly derived doc code when absent.
//
// Creation is conflict-safe: the external id carries a unique index, and a
// concurrent first-contact race resolves by re-fetching the winning row, so
// at most one user row ever exists per external identity and the doc code is
// stable across calls.
func GetOrCreateUser(ctx context.Context, db *gorm.DB, externalID int64) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("external_id = ?", externalID).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		nu := domain.User{ExternalID: externalID, CreatedAt: time.Now().UTC()}
		if err := tx.Create(&nu).Error; err != nil {
			return err
		}
		nu.DocCode = FormatDocCode(nu.ID)
		if err := tx.Model(&domain.User{}).Where("id = ?", nu.ID).
			Update("doc_code", nu.DocCode).Error; err != nil {
			return err
		}
		u = nu
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the first-contact race; the winner's row is authoritative.
			if err := db.WithContext(ctx).Where("external_id = ?", externalID).First(&u).Error; err != nil {
				return nil, err
			}
			return &u, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetUserByID fetches a user by internal id, or ErrNotFound.
func GetUserByID(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByDocCode fetches a user by account code, or ErrNotFound.
func GetUserByDocCode(ctx context.Context, db *gorm.DB, docCode string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("doc_code = ?", docCode).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByExternalID fetches a user by external chat identity, or ErrNotFound.
func GetUserByExternalID(ctx context.Context, db *gorm.DB, externalID int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("external_id = ?", externalID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// AddBalance applies an unconditional relative adjustment to a user's
// balance. Used for admin credits and recharge credits; no lower-bound check.
// Returns ErrNotFound when the user does not exist.
func AddBalance(ctx context.Context, db *gorm.DB, userID int64, delta float64) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddBalanceByDocCode credits a user identified by account code and returns
// the updated row, or ErrNotFound when the code matches no user.
func AddBalanceByDocCode(ctx context.Context, db *gorm.DB, docCode string, delta float64) (*domain.User, error) {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("doc_code = ?", docCode).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return GetUserByDocCode(ctx, db, docCode)
}

// DebitBalance conditionally debits amount from a user's balance. The check
// and the write are one atomic UPDATE (balance = balance - ? guarded by
// balance >= ?), never read-then-write. It reports whether the debit applied.
func DebitBalance(ctx context.Context, db *gorm.DB, userID int64, amount float64) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// TotalClientBalance returns the sum of all user balances, for the admin
// dashboard. An empty users table yields 0.
func TotalClientBalance(ctx context.Context, db *gorm.DB) (float64, error) {
	var total float64
	err := db.WithContext(ctx).
		Raw("SELECT COALESCE(SUM(balance), 0) FROM users").
		Scan(&total).Error
	return total, err
}
