package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/docastore/store-backend/internal/gateway"
	"github.com/docastore/store-backend/internal/notify"
	"github.com/docastore/store-backend/internal/repo"
)

// newServiceDB opens a throwaway SQLite database with the full schema,
// limited to one pooled connection so concurrent transactions serialize the
// way the single-writer production deployment does.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	db.Exec("PRAGMA busy_timeout=5000;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fakePaymentCreator records the last PIX creation request and returns a
// canned payload or error.
type fakePaymentCreator struct {
	payment *gateway.PIXPayment
	err     error

	lastAmount      float64
	lastDescription string
	lastReference   string
}

func (f *fakePaymentCreator) CreatePIXPayment(_ context.Context, amount float64, description, externalReference string) (*gateway.PIXPayment, error) {
	f.lastAmount = amount
	f.lastDescription = description
	f.lastReference = externalReference
	if f.err != nil {
		return nil, f.err
	}
	return f.payment, nil
}

// fakePaymentFetcher serves payment details by id.
type fakePaymentFetcher struct {
	details map[string]*gateway.PaymentDetails
	err     error
}

func (f *fakePaymentFetcher) GetPayment(_ context.Context, paymentID string) (*gateway.PaymentDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[paymentID]
	if !ok {
		return nil, gateway.ErrUnavailable
	}
	return d, nil
}

// recordingNotifier collects approvals, safe for concurrent use.
type recordingNotifier struct {
	mu        sync.Mutex
	approvals []notify.Approval
	err       error
}

func (n *recordingNotifier) PaymentApproved(_ context.Context, a notify.Approval) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approvals = append(n.approvals, a)
	return n.err
}

func (n *recordingNotifier) all() []notify.Approval {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Approval, len(n.approvals))
	copy(out, n.approvals)
	return out
}
