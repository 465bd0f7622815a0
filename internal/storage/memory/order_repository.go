package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/antonrybakov/ordersaga/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет новый заказ, присваивая идентификаторы при необходимости.
func (r *orderRepositoryInMemory) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.NewString()
		}
	}

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[order.ID] = cloneOrder(order)
	return order, nil
}

// Get возвращает заказ или NotFoundError, если его нет.
func (r *orderRepositoryInMemory) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.NewNotFound("order", id)
	}
	return cloneOrder(order), nil
}

// ListByBuyer возвращает заказы покупателя, новые первыми.
func (r *orderRepositoryInMemory) ListByBuyer(_ context.Context, buyerID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.BuyerID != buyerID {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].OrderDate.Equal(result[j].OrderDate) {
			return result[i].OrderDate.After(result[j].OrderDate)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// Update перезаписывает существующий заказ.
func (r *orderRepositoryInMemory) Update(_ context.Context, order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[order.ID]; !ok {
		return domain.Order{}, domain.NewNotFound("order", order.ID)
	}
	r.items[order.ID] = cloneOrder(order)
	return order, nil
}

// Delete удаляет заказ вместе с позициями.
func (r *orderRepositoryInMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.NewNotFound("order", id)
	}
	delete(r.items, id)
	return nil
}

func cloneOrder(order domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return order
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
