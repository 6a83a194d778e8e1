package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreatePIXPayment_Success(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payments" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		if r.Header.Get("X-Idempotency-Key") == "" {
			t.Errorf("missing idempotency key")
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": 123456789,
			"status": "pending",
			"point_of_interaction": {"transaction_data": {
				"qr_code": "copy-paste-code",
				"qr_code_base64": "aW1n",
				"ticket_url": "https://mp/ticket"
			}}
		}`))
	}))
	defer srv.Close()

	c := NewClient("tok", "https://example.com/mp/webhook", "payer@store.test")
	c.BaseURL = srv.URL

	p, err := c.CreatePIXPayment(context.Background(), 100.0, "Recarga DOC-00001", "DOC-00001")
	if err != nil {
		t.Fatalf("CreatePIXPayment: %v", err)
	}
	if p.ID != "123456789" || p.QRCode != "copy-paste-code" || p.TicketURL != "https://mp/ticket" {
		t.Fatalf("unexpected payment: %+v", p)
	}
	if gotBody["payment_method_id"] != "pix" || gotBody["external_reference"] != "DOC-00001" {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
	if gotBody["notification_url"] != "https://example.com/mp/webhook" {
		t.Fatalf("notification url not sent: %v", gotBody)
	}
}

func TestCreatePIXPayment_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	c := NewClient("tok", "", "payer@store.test")
	c.BaseURL = srv.URL

	if _, err := c.CreatePIXPayment(context.Background(), 50, "d", "DOC-00001"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGetPayment_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/987" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"id": 987,
			"status": "approved",
			"status_detail": "accredited",
			"transaction_amount": 100.5,
			"external_reference": "DOC-00042"
		}`))
	}))
	defer srv.Close()

	c := NewClient("tok", "", "payer@store.test")
	c.BaseURL = srv.URL

	d, err := c.GetPayment(context.Background(), "987")
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if !d.Approved() {
		t.Fatalf("expected approved payment: %+v", d)
	}
	if !d.TransactionAmount.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("amount mismatch: %s", d.TransactionAmount)
	}
	if d.ExternalReference != "DOC-00042" {
		t.Fatalf("reference mismatch: %q", d.ExternalReference)
	}
}

func TestGetPayment_Unreachable(t *testing.T) {
	c := NewClient("tok", "", "payer@store.test")
	c.BaseURL = "http://127.0.0.1:0"

	if _, err := c.GetPayment(context.Background(), "1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestApproved_RequiresBothFields(t *testing.T) {
	d := &PaymentDetails{Status: StatusApproved, StatusDetail: "pending_review"}
	if d.Approved() {
		t.Fatalf("approved without accredited detail must not pass")
	}
	d.StatusDetail = StatusDetailAccredited
	if !d.Approved() {
		t.Fatalf("approved+accredited must pass")
	}
}
