// Package services – ReconcileService
//
// This file implements the payment reconciler: the component that turns
// asynchronous gateway notifications into ledger credits, exactly once per
// real-world payment. The notification payload is never trusted; the gateway
// is queried for authoritative status and amount. The ProcessedPayment
// unique index is the sole idempotency guard, and the dedup insert and the
// balance credit share one transaction so a failure can never strand a dedup
// row without its credit.
package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/docastore/store-backend/internal/domain"
	"github.com/docastore/store-backend/internal/gateway"
	"github.com/docastore/store-backend/internal/notify"
	"github.com/docastore/store-backend/internal/repo"
)

// Outcome classifies what a notification amounted to. Every outcome except
// OutcomeCredited is a no-op on the ledger.
type Outcome string

const (
	// OutcomeIgnored: no payment id was present in the notification.
	OutcomeIgnored Outcome = "ignored"
	// OutcomePending: the payment has not reached the approved terminal
	// state; the gateway will re-notify on later transitions.
	OutcomePending Outcome = "pending"
	// OutcomeDuplicate: this payment id was already handled.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeUnmatched: approved payment, but its reference matches no
	// user; recorded as processed and escalated for manual reconciliation.
	OutcomeUnmatched Outcome = "unmatched"
	// OutcomeCredited: first delivery of an approved payment; the balance
	// was credited.
	OutcomeCredited Outcome = "credited"
)

// PaymentFetcher is the slice of the gateway client the reconciler needs.
type PaymentFetcher interface {
	GetPayment(ctx context.Context, paymentID string) (*gateway.PaymentDetails, error)
}

// ReconcileService credits balances for approved gateway payments.
type ReconcileService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Gateway fetches authoritative payment details.
	Gateway PaymentFetcher
	// Notifier announces credited payments; nil disables announcements.
	// Notification failures never fail the credit.
	Notifier notify.Notifier
}

// ProcessNotification handles one inbound payment notification carrying
// paymentID (possibly empty when the webhook could not extract one).
//
// Algorithm:
//  1. empty payment id → OutcomeIgnored;
//  2. fetch authoritative details (ErrGatewayUnavailable on failure, no
//     state mutated, safe to redeliver);
//  3. not approved+accredited → OutcomePending;
//  4. in one transaction: insert the ProcessedPayment dedup row (conflict →
//     OutcomeDuplicate), resolve the user by the payment's external
//     reference, and apply the credit. A storage failure rolls the dedup
//     row back, so a retried notification can still succeed; conversely the
//     dedup row only ever commits together with its credit.
//  5. an approved payment whose reference matches no user commits the dedup
//     row alone and returns OutcomeUnmatched with ErrUnknownReference —
//     money is marked processed so redelivery cannot double-credit, and the
//     case is escalated instead of silently swallowed.
//
// The credit honors the bonus captured on the user's latest recharge when
// its requested amount equals the paid amount; otherwise the live policy
// percent is applied. After commit the Notifier is invoked with the stored
// QR message reference, best-effort.
func (s *ReconcileService) ProcessNotification(ctx context.Context, paymentID string) (Outcome, error) {
	if paymentID == "" {
		return OutcomeIgnored, nil
	}

	details, err := s.Gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return OutcomeIgnored, errors.Join(ErrGatewayUnavailable, err)
	}
	if !details.Approved() {
		log.Debug().
			Str("payment_id", paymentID).
			Str("status", details.Status).
			Str("status_detail", details.StatusDetail).
			Msg("payment not approved yet")
		return OutcomePending, nil
	}

	amount := details.TransactionAmount
	var (
		user       *domain.User
		lastRec    *domain.Recharge
		percent    decimal.Decimal
		bonus      decimal.Decimal
		credit     decimal.Decimal
		newBalance float64
		unmatched  bool
	)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := repo.CreateProcessedPayment(ctx, tx, paymentID,
			details.Status, details.StatusDetail, amount.InexactFloat64(), details.ExternalReference)
		if err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrDuplicatePayment
			}
			return err
		}

		if details.ExternalReference == "" {
			unmatched = true
			return nil // commit the dedup row alone
		}
		user, err = repo.GetUserByDocCode(ctx, tx, details.ExternalReference)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				unmatched = true
				return nil // commit the dedup row alone
			}
			return err
		}

		// Prefer the bonus captured at recharge creation; it is what the
		// user was shown. Fall back to the live policy when no recharge
		// matches the paid amount.
		lastRec, err = repo.GetLastRechargeByDocCode(ctx, tx, details.ExternalReference)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		if lastRec != nil && decimal.NewFromFloat(lastRec.Amount).Equal(amount) {
			percent = decimal.NewFromFloat(lastRec.BonusPercent)
			bonus = decimal.NewFromFloat(lastRec.BonusAmount)
			credit = decimal.NewFromFloat(lastRec.FinalCredit)
		} else {
			p, err := repo.GetBonusPercent(ctx, tx)
			if err != nil {
				return err
			}
			percent = decimal.NewFromFloat(p)
			bonus = amount.Mul(percent).Div(decimal.NewFromInt(100))
			credit = amount.Add(bonus)
		}

		if err := repo.AddBalance(ctx, tx, user.ID, credit.InexactFloat64()); err != nil {
			return err
		}
		updated, err := repo.GetUserByID(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		newBalance = updated.Balance
		return nil
	})
	if errors.Is(err, ErrDuplicatePayment) {
		log.Info().Str("payment_id", paymentID).Msg("payment already processed, ignoring")
		return OutcomeDuplicate, nil
	}
	if err != nil {
		return OutcomeIgnored, err
	}
	if unmatched {
		log.Error().
			Str("payment_id", paymentID).
			Str("external_reference", details.ExternalReference).
			Str("amount", amount.String()).
			Msg("approved payment matches no user; manual reconciliation required")
		return OutcomeUnmatched, ErrUnknownReference
	}

	log.Info().
		Str("payment_id", paymentID).
		Str("doc_code", user.DocCode).
		Str("amount", amount.String()).
		Str("credit", credit.String()).
		Msg("payment credited")

	if s.Notifier != nil {
		var messageID int64
		if lastRec != nil {
			messageID = lastRec.MessageID
		}
		approval := notify.Approval{
			ExternalID:   user.ExternalID,
			MessageID:    messageID,
			DocCode:      user.DocCode,
			Amount:       amount.InexactFloat64(),
			BonusPercent: percent.InexactFloat64(),
			BonusAmount:  bonus.InexactFloat64(),
			Credit:       credit.InexactFloat64(),
			NewBalance:   newBalance,
		}
		if err := s.Notifier.PaymentApproved(ctx, approval); err != nil {
			log.Warn().Err(err).Str("payment_id", paymentID).Msg("approval notification failed")
		}
	}
	return OutcomeCredited, nil
}
