// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the single-row config accessors for the
// recharge bonus percent.
package repo

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/docastore/store-backend/internal/domain"
)

// GetBonusPercent reads the global recharge bonus percent. An absent or
// unparseable row yields 0, never an error from bad data.
func GetBonusPercent(ctx context.Context, db *gorm.DB) (float64, error) {
	var entry domain.ConfigEntry
	err := db.WithContext(ctx).
		Where("key = ?", domain.BonusPercentKey).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(entry.Value, 64)
	if err != nil {
		return 0, nil
	}
	return v, nil
}

// SetBonusPercent overwrites the global recharge bonus percent in place
// (insert-or-update-on-conflict on the fixed key). Range validation is the
// caller's responsibility; this function only persists.
func SetBonusPercent(ctx context.Context, db *gorm.DB, value float64) error {
	entry := &domain.ConfigEntry{
		Key:   domain.BonusPercentKey,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(entry).Error
}
