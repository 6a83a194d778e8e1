// Package notify abstracts the delivery-layer side effect emitted after a
// payment is credited: telling the buyer (ideally by editing the message that
// displayed the PIX QR code) and the operators. The chat transport owns the
// concrete implementation; the engine only depends on the interface, and a
// credit never fails because a notification could not be delivered.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/docastore/store-backend/internal/utils"
)

// Approval carries everything a transport needs to announce a credited
// payment. MessageID is the stored QR-code message reference, 0 when none
// was recorded (the transport should then send a fresh message).
type Approval struct {
	ExternalID   int64
	MessageID    int64
	DocCode      string
	Amount       float64
	BonusPercent float64
	BonusAmount  float64
	Credit       float64
	NewBalance   float64
}

// Notifier delivers payment-approval announcements. Implementations must be
// safe for concurrent use.
type Notifier interface {
	PaymentApproved(ctx context.Context, a Approval) error
}

// LogNotifier is the fallback Notifier used when no transport is wired: it
// records the announcement in the structured log and nothing else.
type LogNotifier struct{}

// PaymentApproved logs the approval with the formatted amounts the transport
// would have shown.
func (LogNotifier) PaymentApproved(_ context.Context, a Approval) error {
	log.Info().
		Int64("external_id", a.ExternalID).
		Int64("message_id", a.MessageID).
		Str("doc_code", a.DocCode).
		Str("amount", utils.FormatBRL(a.Amount)).
		Str("bonus", utils.FormatBRL(a.BonusAmount)).
		Str("bonus_percent", utils.FormatPercent(a.BonusPercent)).
		Str("credit", utils.FormatBRL(a.Credit)).
		Str("new_balance", utils.FormatBRL(a.NewBalance)).
		Msg("payment approved")
	return nil
}
