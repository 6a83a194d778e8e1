package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/docastore/store-backend/internal/domain"
)

func TestCreateRecharge_CapturesBonus(t *testing.T) {
	db := newRepoDB(t, &domain.User{}, &domain.Recharge{})
	u, _ := GetOrCreateUser(context.Background(), db, 1)

	r, err := CreateRecharge(context.Background(), db, u.ID, 100, 50, 50, 150)
	if err != nil {
		t.Fatalf("CreateRecharge: %v", err)
	}
	if r.Status != domain.RechargeStatusPending {
		t.Fatalf("expected pending, got %q", r.Status)
	}
	if r.BonusPercent != 50 || r.BonusAmount != 50 || r.FinalCredit != 150 {
		t.Fatalf("captured amounts wrong: %+v", r)
	}

	// Creation must not touch the balance.
	got, _ := GetUserByID(context.Background(), db, u.ID)
	if got.Balance != 0 {
		t.Fatalf("recharge creation credited balance: %v", got.Balance)
	}
}

func TestSetRechargeMessageID(t *testing.T) {
	db := newRepoDB(t, &domain.User{}, &domain.Recharge{})
	u, _ := GetOrCreateUser(context.Background(), db, 1)
	r, _ := CreateRecharge(context.Background(), db, u.ID, 50, 0, 0, 50)

	if err := SetRechargeMessageID(context.Background(), db, r.ID, 424242); err != nil {
		t.Fatalf("SetRechargeMessageID: %v", err)
	}
	var got domain.Recharge
	if err := db.First(&got, "id = ?", r.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.MessageID != 424242 {
		t.Fatalf("expected message id stored, got %d", got.MessageID)
	}

	if err := SetRechargeMessageID(context.Background(), db, 9999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetLastRechargeByDocCode(t *testing.T) {
	db := newRepoDB(t, &domain.User{}, &domain.Recharge{})
	u, _ := GetOrCreateUser(context.Background(), db, 1)
	other, _ := GetOrCreateUser(context.Background(), db, 2)

	_, _ = CreateRecharge(context.Background(), db, u.ID, 50, 0, 0, 50)
	latest, _ := CreateRecharge(context.Background(), db, u.ID, 100, 50, 50, 150)
	_, _ = CreateRecharge(context.Background(), db, other.ID, 30, 0, 0, 30)

	r, err := GetLastRechargeByDocCode(context.Background(), db, u.DocCode)
	if err != nil {
		t.Fatalf("GetLastRechargeByDocCode: %v", err)
	}
	if r.ID != latest.ID || r.Amount != 100 {
		t.Fatalf("expected latest recharge %d, got %+v", latest.ID, r)
	}

	if _, err := GetLastRechargeByDocCode(context.Background(), db, "DOC-99999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
