package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/docastore/store-backend/internal/domain"
	"github.com/docastore/store-backend/internal/gateway"
)

func TestRechargeService_Create_CapturesBonus(t *testing.T) {
	db := newServiceDB(t)
	accounts := &AccountService{DB: db}
	bonuses := &BonusService{DB: db}
	fake := &fakePaymentCreator{payment: &gateway.PIXPayment{
		ID:     "12345",
		QRCode: "00020126pix-payload",
	}}
	svc := &RechargeService{DB: db, Gateway: fake}
	ctx := context.Background()

	user, _ := accounts.GetOrCreate(ctx, 557001)
	if err := bonuses.SetPercent(ctx, 20); err != nil {
		t.Fatalf("set bonus: %v", err)
	}

	offer, err := svc.Create(ctx, user.ID, 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec := offer.Recharge
	if rec.Status != domain.RechargeStatusPending {
		t.Fatalf("expected pending recharge, got %q", rec.Status)
	}
	if rec.BonusPercent != 20 || rec.BonusAmount != 20 || rec.FinalCredit != 120 {
		t.Fatalf("bonus not captured: %+v", rec)
	}
	if offer.Payment.QRCode == "" {
		t.Fatalf("expected PIX payload")
	}

	// The gateway call carries the account code as the reference and a
	// human-readable description.
	if fake.lastReference != user.DocCode {
		t.Fatalf("expected reference %s, got %s", user.DocCode, fake.lastReference)
	}
	if want := fmt.Sprintf("Recarga %s - R$ 100.00", user.DocCode); fake.lastDescription != want {
		t.Fatalf("expected description %q, got %q", want, fake.lastDescription)
	}
	if fake.lastAmount != 100 {
		t.Fatalf("expected amount 100, got %v", fake.lastAmount)
	}

	// Creating a recharge never credits anything.
	u, _ := accounts.GetByID(ctx, user.ID)
	if u.Balance != 0 {
		t.Fatalf("balance must stay zero until the payment is approved, got %v", u.Balance)
	}
}

func TestRechargeService_Create_ZeroBonus(t *testing.T) {
	db := newServiceDB(t)
	accounts := &AccountService{DB: db}
	fake := &fakePaymentCreator{payment: &gateway.PIXPayment{ID: "1"}}
	svc := &RechargeService{DB: db, Gateway: fake}
	ctx := context.Background()

	user, _ := accounts.GetOrCreate(ctx, 557002)
	offer, err := svc.Create(ctx, user.ID, 50)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if offer.Recharge.BonusAmount != 0 || offer.Recharge.FinalCredit != 50 {
		t.Fatalf("expected no bonus by default, got %+v", offer.Recharge)
	}
}

func TestRechargeService_Create_Invalid(t *testing.T) {
	db := newServiceDB(t)
	svc := &RechargeService{DB: db, Gateway: &fakePaymentCreator{}}
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount must be rejected, got %v", err)
	}
	if _, err := svc.Create(ctx, 1, -10); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount must be rejected, got %v", err)
	}
	if _, err := svc.Create(ctx, 999, 50); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user must be rejected, got %v", err)
	}
}

func TestRechargeService_Create_GatewayDown(t *testing.T) {
	db := newServiceDB(t)
	accounts := &AccountService{DB: db}
	fake := &fakePaymentCreator{err: gateway.ErrUnavailable}
	svc := &RechargeService{DB: db, Gateway: fake}
	ctx := context.Background()

	user, _ := accounts.GetOrCreate(ctx, 557003)
	if _, err := svc.Create(ctx, user.ID, 50); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}

	// The pending row left behind is inert: the balance is untouched.
	u, _ := accounts.GetByID(ctx, user.ID)
	if u.Balance != 0 {
		t.Fatalf("balance must be untouched, got %v", u.Balance)
	}
}

func TestRechargeService_AttachMessage(t *testing.T) {
	db := newServiceDB(t)
	accounts := &AccountService{DB: db}
	svc := &RechargeService{DB: db, Gateway: &fakePaymentCreator{payment: &gateway.PIXPayment{ID: "1"}}}
	ctx := context.Background()

	user, _ := accounts.GetOrCreate(ctx, 557004)
	offer, err := svc.Create(ctx, user.ID, 30)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.AttachMessage(ctx, offer.Recharge.ID, 777); err != nil {
		t.Fatalf("attach: %v", err)
	}
	var rec domain.Recharge
	if err := db.First(&rec, offer.Recharge.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if rec.MessageID != 777 {
		t.Fatalf("expected message id 777, got %d", rec.MessageID)
	}

	if err := svc.AttachMessage(ctx, 99999, 1); !errors.Is(err, ErrRechargeNotFound) {
		t.Fatalf("unknown recharge must be ErrRechargeNotFound, got %v", err)
	}
}
