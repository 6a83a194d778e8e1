package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/docastore/store-backend/internal/domain"
)

func TestCreateStock_And_Images(t *testing.T) {
	db := newRepoDB(t, &domain.StockItem{}, &domain.StockImage{})

	it, err := CreateStock(context.Background(), db, domain.TypeAmazonDigital, "a@b.c", "secret", "use it wisely")
	if err != nil {
		t.Fatalf("CreateStock: %v", err)
	}
	if it.ID == 0 || it.Used {
		t.Fatalf("unexpected item: %+v", it)
	}

	if err := AddStockImage(context.Background(), db, it.ID, "file-1"); err != nil {
		t.Fatalf("AddStockImage: %v", err)
	}
	if err := AddStockImage(context.Background(), db, it.ID, "file-2"); err != nil {
		t.Fatalf("AddStockImage: %v", err)
	}

	imgs, err := GetStockImages(context.Background(), db, it.ID)
	if err != nil {
		t.Fatalf("GetStockImages: %v", err)
	}
	if len(imgs) != 2 || imgs[0] != "file-1" || imgs[1] != "file-2" {
		t.Fatalf("unexpected images: %v", imgs)
	}

	full, err := GetStock(context.Background(), db, it.ID)
	if err != nil {
		t.Fatalf("GetStock: %v", err)
	}
	if len(full.Images) != 2 {
		t.Fatalf("expected preloaded images, got %+v", full.Images)
	}
}

func TestClaimStock_OldestFirst(t *testing.T) {
	db := newRepoDB(t, &domain.StockItem{}, &domain.StockImage{})

	first, _ := CreateStock(context.Background(), db, domain.TypeAmazonDigital, "first@x", "p", "t")
	_, _ = CreateStock(context.Background(), db, domain.TypeAmazonDigital, "second@x", "p", "t")
	_, _ = CreateStock(context.Background(), db, domain.TypeAmazonMix, "other@x", "p", "t")

	it, err := ClaimStock(context.Background(), db, domain.TypeAmazonDigital)
	if err != nil {
		t.Fatalf("ClaimStock: %v", err)
	}
	if it.ID != first.ID {
		t.Fatalf("expected oldest item %d, got %d", first.ID, it.ID)
	}
	if !it.Used {
		t.Fatalf("claimed item must be flagged used")
	}

	// The claim must be durable, not just in-memory.
	got, _ := GetStock(context.Background(), db, it.ID)
	if !got.Used {
		t.Fatalf("claim not persisted")
	}
}

func TestClaimStock_SoldOut(t *testing.T) {
	db := newRepoDB(t, &domain.StockItem{}, &domain.StockImage{})

	if _, err := ClaimStock(context.Background(), db, domain.TypeAmazonPrime); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// A used item does not count as available.
	it, _ := CreateStock(context.Background(), db, domain.TypeAmazonPrime, "x@x", "p", "t")
	if _, err := ClaimStock(context.Background(), db, domain.TypeAmazonPrime); err != nil {
		t.Fatalf("claim fresh item: %v", err)
	}
	if _, err := ClaimStock(context.Background(), db, domain.TypeAmazonPrime); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected sold out after claim of %d, got %v", it.ID, err)
	}
}

func TestClaimStock_NeverClaimsSameItemTwice(t *testing.T) {
	db := newFullDB(t)

	_, _ = CreateStock(context.Background(), db, domain.TypeAmazonDigital, "only@x", "p", "t")

	first, err := ClaimStock(context.Background(), db, domain.TypeAmazonDigital)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := ClaimStock(context.Background(), db, domain.TypeAmazonDigital); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second claim must find nothing, got %v", err)
	}
	if !first.Used {
		t.Fatalf("first claim must mark used")
	}
}

func TestCountAndSummary(t *testing.T) {
	db := newRepoDB(t, &domain.StockItem{}, &domain.StockImage{})

	_, _ = CreateStock(context.Background(), db, domain.TypeAmazonDigital, "a@x", "p", "t")
	_, _ = CreateStock(context.Background(), db, domain.TypeAmazonDigital, "b@x", "p", "t")
	used, _ := CreateStock(context.Background(), db, domain.TypeAmazonDigital, "c@x", "p", "t")
	db.Model(&domain.StockItem{}).Where("id = ?", used.ID).Update("used", true)

	n, err := CountAvailableStock(context.Background(), db, domain.TypeAmazonDigital)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 available, got %d err=%v", n, err)
	}

	sum, err := StockSummary(context.Background(), db, domain.StockTypes())
	if err != nil {
		t.Fatalf("StockSummary: %v", err)
	}
	if sum[domain.TypeAmazonDigital] != 2 || sum[domain.TypeAmazonMix] != 0 {
		t.Fatalf("unexpected summary: %v", sum)
	}
}

func TestListStockByType_NewestFirstLimited(t *testing.T) {
	db := newRepoDB(t, &domain.StockItem{}, &domain.StockImage{})

	var last int64
	for i := 0; i < 4; i++ {
		it, _ := CreateStock(context.Background(), db, domain.TypeAmazonMix, "x@x", "p", "t")
		last = it.ID
	}

	items, err := ListStockByType(context.Background(), db, domain.TypeAmazonMix, 3)
	if err != nil {
		t.Fatalf("ListStockByType: %v", err)
	}
	if len(items) != 3 || items[0].ID != last {
		t.Fatalf("expected 3 items newest first, got %+v", items)
	}
}

func TestDeleteStock_RemovesImages(t *testing.T) {
	db := newRepoDB(t, &domain.StockItem{}, &domain.StockImage{}, &domain.OrderStock{})

	it, _ := CreateStock(context.Background(), db, domain.TypeAmazonDigital, "a@x", "p", "t")
	_ = AddStockImage(context.Background(), db, it.ID, "f1")

	if err := DeleteStock(context.Background(), db, it.ID); err != nil {
		t.Fatalf("DeleteStock: %v", err)
	}
	if _, err := GetStock(context.Background(), db, it.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected item gone, got %v", err)
	}
	imgs, _ := GetStockImages(context.Background(), db, it.ID)
	if len(imgs) != 0 {
		t.Fatalf("expected images gone, got %v", imgs)
	}

	if err := DeleteStock(context.Background(), db, it.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on re-delete, got %v", err)
	}
}

func TestDeleteStock_RefusedWhenLinked(t *testing.T) {
	db := newRepoDB(t, &domain.StockItem{}, &domain.StockImage{}, &domain.OrderStock{})

	it, _ := CreateStock(context.Background(), db, domain.TypeAmazonDigital, "a@x", "p", "t")
	if err := db.Create(&domain.OrderStock{OrderID: 10, StockID: it.ID}).Error; err != nil {
		t.Fatalf("seed link: %v", err)
	}

	if err := DeleteStock(context.Background(), db, it.ID); !errors.Is(err, ErrStockLinked) {
		t.Fatalf("expected ErrStockLinked, got %v", err)
	}
	if _, err := GetStock(context.Background(), db, it.ID); err != nil {
		t.Fatalf("linked item must survive: %v", err)
	}
}
