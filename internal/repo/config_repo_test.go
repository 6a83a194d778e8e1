package repo

import (
	"context"
	"testing"

	"github.com/docastore/store-backend/internal/domain"
)

func TestGetBonusPercent_UnsetIsZero(t *testing.T) {
	db := newRepoDB(t, &domain.ConfigEntry{})

	got, err := GetBonusPercent(context.Background(), db)
	if err != nil || got != 0 {
		t.Fatalf("expected 0 for unset key, got %v err=%v", got, err)
	}
}

func TestGetBonusPercent_UnparseableIsZero(t *testing.T) {
	db := newRepoDB(t, &domain.ConfigEntry{})
	if err := db.Create(&domain.ConfigEntry{Key: domain.BonusPercentKey, Value: "not-a-number"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := GetBonusPercent(context.Background(), db)
	if err != nil || got != 0 {
		t.Fatalf("expected 0 for garbage value, got %v err=%v", got, err)
	}
}

func TestSetBonusPercent_Upsert(t *testing.T) {
	db := newRepoDB(t, &domain.ConfigEntry{})

	if err := SetBonusPercent(context.Background(), db, 50); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, _ := GetBonusPercent(context.Background(), db)
	if got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}

	if err := SetBonusPercent(context.Background(), db, 12.5); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = GetBonusPercent(context.Background(), db)
	if got != 12.5 {
		t.Fatalf("expected 12.5 after overwrite, got %v", got)
	}

	var count int64
	db.Model(&domain.ConfigEntry{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected single config row, got %d", count)
	}
}
