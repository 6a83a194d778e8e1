// Package gateway implements the Mercado Pago client used to create PIX
// payment requests and to fetch authoritative payment details when a webhook
// notification arrives. The notification payload itself is never trusted for
// amount or status; GetPayment is the source of truth.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gateway terminal states. A payment is only credited when both match.
const (
	StatusApproved         = "approved"
	StatusDetailAccredited = "accredited"
)

// ErrUnavailable indicates the gateway call failed or returned a non-success
// status. No local state is mutated when it is returned.
var ErrUnavailable = errors.New("payment gateway unavailable")

// DefaultBaseURL is the production Mercado Pago API endpoint.
const DefaultBaseURL = "https://api.mercadopago.com"

// Client is a minimal Mercado Pago REST client scoped to PIX payments.
type Client struct {
	// BaseURL of the API, overridable for tests.
	BaseURL string
	// AccessToken is the bearer credential.
	AccessToken string
	// NotificationURL receives webhook pushes for payments created here.
	NotificationURL string
	// PayerEmail is attached to created payments (the gateway requires one).
	PayerEmail string
	// HTTPClient defaults to a 15s-timeout client when nil.
	HTTPClient *http.Client
}

// NewClient builds a Client against the production API.
func NewClient(accessToken, notificationURL, payerEmail string) *Client {
	return &Client{
		BaseURL:         DefaultBaseURL,
		AccessToken:     accessToken,
		NotificationURL: notificationURL,
		PayerEmail:      payerEmail,
		HTTPClient:      &http.Client{Timeout: 15 * time.Second},
	}
}

// PIXPayment is the displayable result of a created PIX payment request.
type PIXPayment struct {
	ID           string `json:"id"`
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	TicketURL    string `json:"ticket_url"`
}

// PaymentDetails are the authoritative details of a payment as reported by
// the gateway.
type PaymentDetails struct {
	ID                string
	Status            string
	StatusDetail      string
	TransactionAmount decimal.Decimal
	ExternalReference string
}

// Approved reports whether the payment reached the terminal accredited state.
func (d *PaymentDetails) Approved() bool {
	return d.Status == StatusApproved && d.StatusDetail == StatusDetailAccredited
}

type createPaymentRequest struct {
	TransactionAmount float64      `json:"transaction_amount"`
	Description       string       `json:"description"`
	PaymentMethodID   string       `json:"payment_method_id"`
	Payer             paymentPayer `json:"payer"`
	ExternalReference string       `json:"external_reference"`
	NotificationURL   string       `json:"notification_url,omitempty"`
}

type paymentPayer struct {
	Email string `json:"email"`
}

type paymentResponse struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	StatusDetail       string      `json:"status_detail"`
	TransactionAmount  json.Number `json:"transaction_amount"`
	ExternalReference  string      `json:"external_reference"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CreatePIXPayment creates a PIX payment for amount, carrying
// externalReference (the buyer's account code) so the later notification can
// be traced back to the user. Returns the copy-paste code, the QR image and
// the gateway payment id.
func (c *Client) CreatePIXPayment(ctx context.Context, amount float64, description, externalReference string) (*PIXPayment, error) {
	body := createPaymentRequest{
		TransactionAmount: amount,
		Description:       description,
		PaymentMethodID:   "pix",
		Payer:             paymentPayer{Email: c.PayerEmail},
		ExternalReference: externalReference,
		NotificationURL:   c.NotificationURL,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	// The gateway rejects retried creates without an idempotency key.
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	var resp paymentResponse
	if err := c.do(req, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return &PIXPayment{
		ID:           resp.ID.String(),
		QRCode:       resp.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: resp.PointOfInteraction.TransactionData.QRCodeBase64,
		TicketURL:    resp.PointOfInteraction.TransactionData.TicketURL,
	}, nil
}

// GetPayment fetches authoritative payment details by gateway payment id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	var resp paymentResponse
	if err := c.do(req, http.StatusOK, &resp); err != nil {
		return nil, err
	}

	amount := decimal.Zero
	if resp.TransactionAmount != "" {
		amount, err = decimal.NewFromString(resp.TransactionAmount.String())
		if err != nil {
			return nil, fmt.Errorf("%w: bad transaction_amount %q", ErrUnavailable, resp.TransactionAmount)
		}
	}
	return &PaymentDetails{
		ID:                resp.ID.String(),
		Status:            resp.Status,
		StatusDetail:      resp.StatusDetail,
		TransactionAmount: amount,
		ExternalReference: resp.ExternalReference,
	}, nil
}

// do executes the request and decodes a JSON body, mapping transport errors
// and unexpected statuses to ErrUnavailable.
func (c *Client) do(req *http.Request, want int, out any) error {
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != want && res.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, res.StatusCode, snippet)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return nil
}
