// Payment webhook handler.
//
// Mercado Pago has shipped three notification shapes over the years and all
// of them still arrive in production:
//  1. query parameters `id` + `topic=payment` (legacy IPN),
//  2. query parameters `data.id` + `type=payment`,
//  3. a JSON body `{"type":"payment","data":{"id":"..."}}`.
//
// The payload is treated purely as a pointer: only the payment id is
// extracted, and the reconciler fetches the authoritative status and amount
// from the gateway before touching any state. Responses are chosen for the
// gateway's retry behavior: 2xx stops redelivery, non-2xx provokes it.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docastore/store-backend/internal/http/middleware"
	"github.com/docastore/store-backend/internal/services"
)

// webhookBody is the JSON notification shape (format 3).
type webhookBody struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Data   struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// extractPaymentID pulls the gateway payment id out of whichever notification
// format arrived. Returns "" when the notification is not about a payment or
// carries no id.
func extractPaymentID(c *gin.Context) string {
	// Format 1: ?id=123&topic=payment
	if id := c.Query("id"); id != "" {
		if c.Query("topic") == "payment" {
			return id
		}
	}
	// Format 2: ?data.id=123&type=payment
	if id := c.Query("data.id"); id != "" {
		if c.Query("type") == "payment" {
			return id
		}
	}
	// Format 3: JSON body
	var body webhookBody
	if err := c.ShouldBindJSON(&body); err == nil {
		if id := body.Data.ID.String(); id != "" {
			return id
		}
	}
	return ""
}

// PaymentWebhook ingests one gateway payment notification.
//
// Status codes:
//   - 200 for every terminal outcome (credited, duplicate, pending, ignored,
//     unmatched) so the gateway stops redelivering;
//   - 502 when the gateway lookup failed, provoking a redelivery that can
//     still succeed (nothing was recorded);
//   - 500 for storage failures, same reasoning.
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	paymentID := extractPaymentID(c)

	outcome, err := h.reconciler.ProcessNotification(c.Request.Context(), paymentID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownReference):
			// Already escalated by the reconciler; acknowledge so the
			// gateway stops retrying a payment no retry can fix.
		case errors.Is(err, services.ErrGatewayUnavailable):
			fail(c, http.StatusBadGateway, ErrCodeGatewayUnavailable, "payment lookup failed")
			return
		default:
			middleware.LoggerFrom(c).Error().Err(err).
				Str("payment_id", paymentID).
				Msg("payment notification failed")
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "notification processing failed")
			return
		}
	}

	ok(c, http.StatusOK, gin.H{"outcome": outcome})
}
