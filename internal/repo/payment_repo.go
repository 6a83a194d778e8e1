// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the
// ProcessedPayment model used to implement exactly-once crediting of
// gateway payment notifications.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/docastore/store-backend/internal/domain"
)

// CreateProcessedPayment inserts the write-once dedup record for a gateway
// payment and returns ErrDuplicate when the payment id was already recorded.
//
// The insert-and-detect-conflict is atomic (a plain INSERT against the unique
// index), never a separate existence check followed by an insert, so two
// concurrent deliveries of the same payment id resolve to exactly one winner.
func CreateProcessedPayment(ctx context.Context, db *gorm.DB, paymentID, status, statusDetail string, amount float64, externalReference string) (*domain.ProcessedPayment, error) {
	p := &domain.ProcessedPayment{
		PaymentID:         paymentID,
		Status:            status,
		StatusDetail:      statusDetail,
		Amount:            amount,
		ExternalReference: externalReference,
		CreatedAt:         time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

// GetProcessedPayment fetches a dedup record by gateway payment id, or
// ErrNotFound.
func GetProcessedPayment(ctx context.Context, db *gorm.DB, paymentID string) (*domain.ProcessedPayment, error) {
	var p domain.ProcessedPayment
	if err := db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
