// Package services – RechargeService
//
// This file implements the RechargeService, which turns a top-up request
// into a pending Recharge row plus a PIX payment at the gateway. The bonus
// percent in effect right now is captured onto the row together with the
// exact bonus and final credit amounts, so the reconciler later honors what
// the user was shown. Creating a recharge never touches the balance.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/docastore/store-backend/internal/domain"
	"github.com/docastore/store-backend/internal/gateway"
	"github.com/docastore/store-backend/internal/repo"
)

// PaymentCreator is the slice of the gateway client the recharge flow needs.
type PaymentCreator interface {
	CreatePIXPayment(ctx context.Context, amount float64, description, externalReference string) (*gateway.PIXPayment, error)
}

// RechargeOffer is a created recharge plus the PIX payload to display.
type RechargeOffer struct {
	Recharge *domain.Recharge
	Payment  *gateway.PIXPayment
}

// RechargeService creates recharges and records their QR message reference.
type RechargeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Gateway creates PIX payments carrying the user's account code as the
	// external reference.
	Gateway PaymentCreator
}

// Create persists a pending recharge for userID and requests the matching
// PIX payment. The bonus percent is read once, here, and captured on the
// row: bonus_amount = amount * percent/100, final_credit = amount + bonus.
//
// Gateway failures surface as ErrGatewayUnavailable; the pending row they
// leave behind is inert (nothing credits without an approved payment).
func (s *RechargeService) Create(ctx context.Context, userID int64, amount float64) (*RechargeOffer, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	user, err := repo.GetUserByID(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	percent, err := repo.GetBonusPercent(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	amt := decimal.NewFromFloat(amount)
	bonus := amt.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100))
	final := amt.Add(bonus)

	rec, err := repo.CreateRecharge(ctx, s.DB, userID, amount, percent,
		bonus.InexactFloat64(), final.InexactFloat64())
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Recarga %s - R$ %.2f", user.DocCode, amount)
	payment, err := s.Gateway.CreatePIXPayment(ctx, amount, description, user.DocCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	return &RechargeOffer{Recharge: rec, Payment: payment}, nil
}

// AttachMessage records the transport message that displayed the PIX QR
// code, set once shortly after creation and read once by the reconciler.
func (s *RechargeService) AttachMessage(ctx context.Context, rechargeID, messageID int64) error {
	err := repo.SetRechargeMessageID(ctx, s.DB, rechargeID, messageID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrRechargeNotFound
	}
	return err
}
