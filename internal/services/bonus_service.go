// Package services – BonusService
//
// This file implements the BonusService, the single read/write point for the
// global recharge bonus percent. Routing every reader through this service
// keeps the moment a percent is sampled unambiguous: recharge creation
// captures it onto the Recharge row, reconciliation prefers the captured
// value (see ReconcileService).
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/docastore/store-backend/internal/repo"
)

// BonusService owns the recharge bonus policy scalar.
type BonusService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Percent returns the bonus percent currently in effect, 0 when unset.
func (s *BonusService) Percent(ctx context.Context) (float64, error) {
	return repo.GetBonusPercent(ctx, s.DB)
}

// SetPercent overwrites the bonus percent. Values outside [0, 200] are
// rejected with ErrInvalidBonusPercent; the store itself only persists.
func (s *BonusService) SetPercent(ctx context.Context, value float64) error {
	if value < 0 || value > 200 {
		return ErrInvalidBonusPercent
	}
	return repo.SetBonusPercent(ctx, s.DB, value)
}
