// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Recharge
// model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/docastore/store-backend/internal/domain"
)

// CreateRecharge inserts a pending recharge row capturing the bonus percent
// and the derived amounts in effect at creation time. Balance is untouched;
// only the reconciler credits it, upon confirmed payment.
func CreateRecharge(ctx context.Context, db *gorm.DB, userID int64, amount, bonusPercent, bonusAmount, finalCredit float64) (*domain.Recharge, error) {
	r := &domain.Recharge{
		UserID:       userID,
		Amount:       amount,
		BonusPercent: bonusPercent,
		BonusAmount:  bonusAmount,
		FinalCredit:  finalCredit,
		Status:       domain.RechargeStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// SetRechargeMessageID records the transport message that displayed the PIX
// QR code, so the reconciler can edit it once the payment is approved.
// Returns ErrNotFound when the recharge does not exist.
func SetRechargeMessageID(ctx context.Context, db *gorm.DB, rechargeID, messageID int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Recharge{}).
		Where("id = ?", rechargeID).
		Update("message_id", messageID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetLastRechargeByDocCode returns the most recent recharge for the user
// holding the given account code, or ErrNotFound.
func GetLastRechargeByDocCode(ctx context.Context, db *gorm.DB, docCode string) (*domain.Recharge, error) {
	var r domain.Recharge
	err := db.WithContext(ctx).
		Joins("JOIN users ON users.id = recharges.user_id").
		Where("users.doc_code = ?", docCode).
		Order("recharges.id DESC").
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}
