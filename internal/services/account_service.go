// Package services – AccountService
//
// This file implements the AccountService, the ledger owner for per-user
// balances, loyalty points, and account codes. Users are created lazily on
// first contact; balance mutations are always relative and the conditional
// debit used by purchases lives in the repo as a single atomic UPDATE.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/docastore/store-backend/internal/domain"
	"github.com/docastore/store-backend/internal/repo"
)

// AccountService provides account lookup, lazy creation, and credit
// operations over the user ledger.
type AccountService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// GetOrCreate resolves a user by external chat identity, creating a
// zero-balance account with a fresh DOC code on first contact. Safe under
// concurrent first-contact races: at most one row per identity, and the
// account code is stable across calls.
func (s *AccountService) GetOrCreate(ctx context.Context, externalID int64) (*domain.User, error) {
	return repo.GetOrCreateUser(ctx, s.DB, externalID)
}

// GetByDocCode resolves a user by account code, or ErrUserNotFound.
func (s *AccountService) GetByDocCode(ctx context.Context, docCode string) (*domain.User, error) {
	u, err := repo.GetUserByDocCode(ctx, s.DB, docCode)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByID resolves a user by internal id, or ErrUserNotFound.
func (s *AccountService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := repo.GetUserByID(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByExternalID resolves a user by external identity without creating one,
// or ErrUserNotFound.
func (s *AccountService) GetByExternalID(ctx context.Context, externalID int64) (*domain.User, error) {
	u, err := repo.GetUserByExternalID(ctx, s.DB, externalID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// CreditByDocCode applies a trusted admin credit to the user holding the
// given account code and returns the updated row. Amount must be positive;
// there is no upper bound (admin credits are trusted).
func (s *AccountService) CreditByDocCode(ctx context.Context, docCode string, amount float64) (*domain.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	u, err := repo.AddBalanceByDocCode(ctx, s.DB, docCode, amount)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// TotalClientBalance returns the sum of all customer balances, for the admin
// dashboard.
func (s *AccountService) TotalClientBalance(ctx context.Context) (float64, error) {
	return repo.TotalClientBalance(ctx, s.DB)
}
