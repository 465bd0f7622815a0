package order

import (
	"context"
	"testing"

	"github.com/antonrybakov/ordersaga/internal/client/buyer"
	"github.com/antonrybakov/ordersaga/internal/client/product"
	"github.com/antonrybakov/ordersaga/internal/domain"
	"github.com/antonrybakov/ordersaga/internal/storage/memory"
)

func newFixture() (*Service, *buyer.Mock, *product.Mock, domain.OrderRepository) {
	buyers := buyer.NewMock()
	buyers.Buyers["buyer-1"] = domain.Buyer{
		ID:        "buyer-1",
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "ivan@example.com",
	}

	products := product.NewMock()
	products.Products["p1"] = domain.Product{ID: "p1", Name: "box", Description: "cardboard box", Price: 10.5}
	products.Products["p2"] = domain.Product{ID: "p2", Name: "crate", Description: "wooden crate", Price: 99}

	repo := memory.NewOrderRepository()
	return NewService(repo, buyers, products, nil), buyers, products, repo
}

func TestCreatePendingOrder_SnapshotsCatalogData(t *testing.T) {
	svc, _, _, _ := newFixture()

	req := CreateRequest{Items: []ItemRequest{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}}
	order, err := svc.CreatePendingOrder(context.Background(), req, "buyer-1")
	if err != nil {
		t.Fatalf("CreatePendingOrder: %v", err)
	}

	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected PENDING, got %s", order.Status)
	}
	if order.ID == "" {
		t.Fatal("expected generated order id")
	}
	if order.Buyer.Email != "ivan@example.com" {
		t.Fatalf("expected buyer attached, got %+v", order.Buyer)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}

	first := order.Items[0]
	if first.ProductID != "p1" || first.Name != "box" || first.Price != 10.5 || first.Quantity != 2 {
		t.Fatalf("expected p1 snapshot with qty 2, got %+v", first)
	}
	if first.Description != "cardboard box" {
		t.Fatalf("expected description snapshot, got %q", first.Description)
	}
	second := order.Items[1]
	if second.ProductID != "p2" || second.Price != 99 || second.Quantity != 1 {
		t.Fatalf("expected p2 snapshot with qty 1, got %+v", second)
	}
	if first.ID == "" || second.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct item ids, got %q and %q", first.ID, second.ID)
	}
}

func TestCreatePendingOrder_DeduplicatesCatalogRequest(t *testing.T) {
	svc, _, products, _ := newFixture()

	req := CreateRequest{Items: []ItemRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p1", Quantity: 3},
	}}
	order, err := svc.CreatePendingOrder(context.Background(), req, "buyer-1")
	if err != nil {
		t.Fatalf("CreatePendingOrder: %v", err)
	}

	if len(products.GetCalls) != 1 {
		t.Fatalf("expected one catalog call, got %d", len(products.GetCalls))
	}
	if ids := products.GetCalls[0]; len(ids) != 1 || ids[0] != "p1" {
		t.Fatalf("expected deduplicated ids [p1], got %v", ids)
	}
	// Обе позиции сохраняются, даже если указывают на один товар.
	if len(order.Items) != 2 {
		t.Fatalf("expected both items kept, got %d", len(order.Items))
	}
}

func TestCreatePendingOrder_UnknownBuyerShortCircuits(t *testing.T) {
	svc, _, products, repo := newFixture()

	req := CreateRequest{Items: []ItemRequest{{ProductID: "p1", Quantity: 1}}}
	_, err := svc.CreatePendingOrder(context.Background(), req, "ghost")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(products.GetCalls) != 0 {
		t.Fatal("expected catalog not called for unknown buyer")
	}
	orders, err := repo.ListByBuyer(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("ListByBuyer: %v", err)
	}
	if len(orders) != 0 {
		t.Fatal("expected no order persisted")
	}
}

func TestCreatePendingOrder_MissingProductFailsWholeOrder(t *testing.T) {
	svc, _, _, repo := newFixture()

	req := CreateRequest{Items: []ItemRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "absent", Quantity: 1},
	}}
	_, err := svc.CreatePendingOrder(context.Background(), req, "buyer-1")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err.Error() != "product not found: absent" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	orders, err := repo.ListByBuyer(context.Background(), "buyer-1")
	if err != nil {
		t.Fatalf("ListByBuyer: %v", err)
	}
	if len(orders) != 0 {
		t.Fatal("expected partial order not persisted")
	}
}

func TestRead_RefetchesLiveBuyer(t *testing.T) {
	svc, buyers, _, _ := newFixture()

	req := CreateRequest{Items: []ItemRequest{{ProductID: "p1", Quantity: 1}}}
	created, err := svc.CreatePendingOrder(context.Background(), req, "buyer-1")
	if err != nil {
		t.Fatalf("CreatePendingOrder: %v", err)
	}

	// Справочник обновился — чтение возвращает свежий снапшот, не кэш.
	buyers.Buyers["buyer-1"] = domain.Buyer{ID: "buyer-1", FirstName: "Ivan", LastName: "Sidorov", Email: "new@example.com"}

	got, err := svc.Read(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Buyer.Email != "new@example.com" || got.Buyer.LastName != "Sidorov" {
		t.Fatalf("expected live buyer snapshot, got %+v", got.Buyer)
	}
	// Create + Read — по одному обращению в справочник на каждое.
	if len(buyers.GetCalls) != 2 {
		t.Fatalf("expected 2 directory calls, got %d", len(buyers.GetCalls))
	}
}

func TestReadAllByBuyer_NoBuyerFetch(t *testing.T) {
	svc, buyers, _, _ := newFixture()

	req := CreateRequest{Items: []ItemRequest{{ProductID: "p1", Quantity: 1}}}
	if _, err := svc.CreatePendingOrder(context.Background(), req, "buyer-1"); err != nil {
		t.Fatalf("CreatePendingOrder: %v", err)
	}
	callsAfterCreate := len(buyers.GetCalls)

	orders, err := svc.ReadAllByBuyer(context.Background(), "buyer-1")
	if err != nil {
		t.Fatalf("ReadAllByBuyer: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if len(buyers.GetCalls) != callsAfterCreate {
		t.Fatal("expected list operation not to hit the buyer directory")
	}
}

func TestUpdateOrderStatus_NoTransitionValidation(t *testing.T) {
	svc, _, _, _ := newFixture()

	req := CreateRequest{Items: []ItemRequest{{ProductID: "p1", Quantity: 1}}}
	created, err := svc.CreatePendingOrder(context.Background(), req, "buyer-1")
	if err != nil {
		t.Fatalf("CreatePendingOrder: %v", err)
	}

	// Любой валидный статус принимается из любого текущего: переходы не проверяются.
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusConfirmed,
		domain.OrderStatusPending,
		domain.OrderStatusCanceled,
		domain.OrderStatusFailed,
	} {
		updated, err := svc.UpdateOrderStatus(context.Background(), created.ID, status)
		if err != nil {
			t.Fatalf("UpdateOrderStatus(%s): %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected %s, got %s", status, updated.Status)
		}
	}
}

func TestUpdateOrderStatus_UnknownOrder(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.UpdateOrderStatus(context.Background(), "missing", domain.OrderStatusConfirmed)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDelete_RemovesOrder(t *testing.T) {
	svc, _, _, _ := newFixture()

	req := CreateRequest{Items: []ItemRequest{{ProductID: "p1", Quantity: 1}}}
	created, err := svc.CreatePendingOrder(context.Background(), req, "buyer-1")
	if err != nil {
		t.Fatalf("CreatePendingOrder: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Read(context.Background(), created.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError on double delete, got %v", err)
	}
}
