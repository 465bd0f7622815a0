package product

import (
	"context"
	"sync"

	"github.com/antonrybakov/ordersaga/internal/domain"
)

// Mock — конфигурируемая заглушка ProductCatalog для тестов
// и локального запуска без Kafka.
type Mock struct {
	mu sync.Mutex

	Products      map[string]domain.Product
	GetErr        error
	ReserveResult domain.ReserveOutcome
	ReserveErr    error
	ReleaseResult domain.ReleaseOutcome
	ReleaseErr    error

	GetCalls     [][]string
	ReserveCalls [][]domain.ReserveStockItem
	ReleaseCalls [][]domain.ReserveStockItem
}

// NewMock возвращает mock с успешным сценарием по умолчанию:
// резервирование и снятие резерва проходят, каталог пуст.
func NewMock() *Mock {
	return &Mock{
		Products:      make(map[string]domain.Product),
		ReserveResult: domain.StockReserved{},
		ReleaseResult: domain.StockReleased{},
	}
}

// GetProducts возвращает настроенные товары по запрошенным id;
// отсутствующие id молча пропускаются, как делает реальный каталог.
func (m *Mock) GetProducts(_ context.Context, ids []string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, ids)
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.Products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// ReserveStock возвращает заранее настроенный исход и считает вызовы.
func (m *Mock) ReserveStock(_ context.Context, items []domain.ReserveStockItem) (domain.ReserveOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReserveCalls = append(m.ReserveCalls, items)
	return m.ReserveResult, m.ReserveErr
}

// ReleaseStock возвращает заранее настроенный исход и считает вызовы.
func (m *Mock) ReleaseStock(_ context.Context, items []domain.ReserveStockItem) (domain.ReleaseOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReleaseCalls = append(m.ReleaseCalls, items)
	return m.ReleaseResult, m.ReleaseErr
}

var _ domain.ProductCatalog = (*Mock)(nil)
