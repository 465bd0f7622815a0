package memory

import (
	"context"
	"testing"
	"time"

	"github.com/antonrybakov/ordersaga/internal/domain"
)

func sampleOrder(id, buyerID string, at time.Time) domain.Order {
	return domain.Order{
		ID:      id,
		BuyerID: buyerID,
		Status:  domain.OrderStatusPending,
		Items: []domain.OrderItem{{
			ID:        id + "-item-1",
			ProductID: "p1",
			Name:      "box",
			Price:     10,
			Quantity:  1,
		}},
		OrderDate: at,
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	created, err := repo.Create(ctx, sampleOrder("order-1", "buyer-1", now))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "order-1" {
		t.Fatalf("expected id preserved, got %q", created.ID)
	}

	got, err := repo.Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BuyerID != "buyer-1" || len(got.Items) != 1 {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestCreate_GeneratesMissingIDs(t *testing.T) {
	repo := NewOrderRepository()
	order := sampleOrder("", "buyer-1", time.Now().UTC())
	order.Items[0].ID = ""

	created, err := repo.Create(context.Background(), order)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated order id")
	}
	if created.Items[0].ID == "" {
		t.Fatal("expected generated item id")
	}
}

func TestGet_UnknownOrder(t *testing.T) {
	repo := NewOrderRepository()
	_, err := repo.Get(context.Background(), "missing")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestStoredOrderIsIsolatedFromCaller(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	order := sampleOrder("order-1", "buyer-1", time.Now().UTC())
	if _, err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Мутация слайса вызывающего не должна задевать сохранённую копию.
	order.Items[0].Name = "mutated"
	got, err := repo.Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Items[0].Name != "box" {
		t.Fatalf("stored order mutated through caller slice: %q", got.Items[0].Name)
	}
}

func TestListByBuyer_SortedByDateDesc(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	base := time.Now().UTC()

	for i, id := range []string{"order-old", "order-new", "order-mid"} {
		at := base.Add(time.Duration(i) * time.Minute)
		if id == "order-new" {
			at = base.Add(time.Hour)
		}
		if _, err := repo.Create(ctx, sampleOrder(id, "buyer-1", at)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if _, err := repo.Create(ctx, sampleOrder("other", "buyer-2", base)); err != nil {
		t.Fatalf("create other: %v", err)
	}

	orders, err := repo.ListByBuyer(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	if orders[0].ID != "order-new" {
		t.Fatalf("expected newest first, got %s", orders[0].ID)
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].OrderDate.After(orders[i-1].OrderDate) {
			t.Fatal("orders not sorted by date descending")
		}
	}
}

func TestUpdate(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	order := sampleOrder("order-1", "buyer-1", time.Now().UTC())
	if _, err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create: %v", err)
	}

	order.Status = domain.OrderStatusConfirmed
	updated, err := repo.Update(ctx, order)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", updated.Status)
	}

	order.ID = "missing"
	if _, err := repo.Update(ctx, order); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, sampleOrder("order-1", "buyer-1", time.Now().UTC())); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, "order-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "order-1"); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "order-1"); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError on double delete, got %v", err)
	}
}
