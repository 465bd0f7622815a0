package buyer

import (
	"context"
	"sync"

	"github.com/antonrybakov/ordersaga/internal/domain"
)

// Mock — конфигурируемая заглушка BuyerDirectory для тестов
// и локального запуска без Kafka.
type Mock struct {
	mu sync.Mutex

	Buyers map[string]domain.Buyer
	Err    error

	GetCalls []string
}

// NewMock возвращает mock с пустым справочником: любой запрос
// завершается NotFoundError, пока покупатели не добавлены.
func NewMock() *Mock {
	return &Mock{Buyers: make(map[string]domain.Buyer)}
}

// GetBuyer возвращает заранее настроенного покупателя или ошибку.
func (m *Mock) GetBuyer(_ context.Context, buyerID string) (domain.Buyer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, buyerID)
	if m.Err != nil {
		return domain.Buyer{}, m.Err
	}
	buyer, ok := m.Buyers[buyerID]
	if !ok {
		return domain.Buyer{}, domain.NewNotFound("buyer", buyerID)
	}
	return buyer, nil
}

var _ domain.BuyerDirectory = (*Mock)(nil)
