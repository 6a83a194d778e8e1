package repo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/docastore/store-backend/internal/domain"
)

func TestCreateProcessedPayment_FirstTime(t *testing.T) {
	db := newRepoDB(t, &domain.ProcessedPayment{})

	p, err := CreateProcessedPayment(context.Background(), db, "pay-1", "approved", "accredited", 100, "DOC-00001")
	if err != nil {
		t.Fatalf("CreateProcessedPayment: %v", err)
	}
	if p.ID == 0 || p.PaymentID != "pay-1" {
		t.Fatalf("unexpected record: %+v", p)
	}

	got, err := GetProcessedPayment(context.Background(), db, "pay-1")
	if err != nil {
		t.Fatalf("GetProcessedPayment: %v", err)
	}
	if got.Amount != 100 || got.ExternalReference != "DOC-00001" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestCreateProcessedPayment_DuplicateIsSignal(t *testing.T) {
	db := newRepoDB(t, &domain.ProcessedPayment{})

	if _, err := CreateProcessedPayment(context.Background(), db, "pay-1", "approved", "accredited", 100, "DOC-00001"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := CreateProcessedPayment(context.Background(), db, "pay-1", "approved", "accredited", 100, "DOC-00001")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	var count int64
	db.Model(&domain.ProcessedPayment{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 dedup row, got %d", count)
	}
}

func TestCreateProcessedPayment_ConcurrentDeliveries(t *testing.T) {
	db := newFullDB(t)

	const deliveries = 6
	var firsts int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := CreateProcessedPayment(context.Background(), db, "pay-raced", "approved", "accredited", 100, "DOC-00001")
			if err == nil {
				mu.Lock()
				firsts++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrDuplicate) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if firsts != 1 {
		t.Fatalf("expected exactly one first-time insert, got %d", firsts)
	}
}

func TestGetProcessedPayment_NotFound(t *testing.T) {
	db := newRepoDB(t, &domain.ProcessedPayment{})
	if _, err := GetProcessedPayment(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
