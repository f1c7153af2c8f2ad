package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

type stubProductStore struct {
	product Product
	err     error
	calls   int
}

func (s *stubProductStore) GetProduct(_ context.Context, _ int64) (Product, error) {
	s.calls++
	if s.err != nil {
		return Product{}, s.err
	}
	return s.product, nil
}

func TestBaseUnitPrice(t *testing.T) {
	p := Product{RetailPrice: 12.5, PackPrice: 280, AllowRetailSale: true}
	retail, err := p.BaseUnitPrice(rules.UnitRetail)
	if err != nil || retail != 12.5 {
		t.Fatalf("retail = %v, %v", retail, err)
	}
	pack, err := p.BaseUnitPrice(rules.UnitPack)
	if err != nil || pack != 280 {
		t.Fatalf("pack = %v, %v", pack, err)
	}
}

func TestBaseUnitPriceRetailNotAllowed(t *testing.T) {
	p := Product{RetailPrice: 12.5, PackPrice: 280}
	if _, err := p.BaseUnitPrice(rules.UnitRetail); !errors.Is(err, ErrRetailNotAllowed) {
		t.Fatalf("expected ErrRetailNotAllowed, got %v", err)
	}
}

func TestServiceCacheAside(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	store := &stubProductStore{product: Product{ID: 7, Name: "Rice 25kg", PackPrice: 1350, RetailPrice: 56, AllowRetailSale: true}}
	svc := &Service{Store: store, Cache: NewCache(client, time.Minute)}

	ctx := context.Background()
	first, err := svc.Product(ctx, 7)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := svc.Product(ctx, 7)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if first != second {
		t.Fatalf("cache returned a different product: %#v vs %#v", first, second)
	}
	if store.calls != 1 {
		t.Fatalf("store hit %d times, want 1 (second read served from cache)", store.calls)
	}

	if err := svc.Invalidate(ctx, 7); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.Product(ctx, 7); err != nil {
		t.Fatalf("read after invalidate: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("store hit %d times after invalidate, want 2", store.calls)
	}
}

func TestServiceWorksWithoutCache(t *testing.T) {
	store := &stubProductStore{product: Product{ID: 1, PackPrice: 10}}
	svc := &Service{Store: store}
	if _, err := svc.Product(context.Background(), 1); err != nil {
		t.Fatalf("read without cache: %v", err)
	}
}
