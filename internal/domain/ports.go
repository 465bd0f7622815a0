package domain

import "context"

// BuyerDirectory описывает взаимодействие со справочником покупателей.
type BuyerDirectory interface {
	// GetBuyer возвращает снапшот покупателя или NotFoundError,
	// если справочник сообщил об отсутствии.
	GetBuyer(ctx context.Context, buyerID string) (Buyer, error)
}

// ProductCatalog описывает взаимодействие с каталогом товаров и складом.
type ProductCatalog interface {
	// GetProducts выполняет батч-запрос товаров. Список в ответе
	// не гарантирует ни порядок запроса, ни полноту: вызывающий обязан
	// индексировать по id и считать пропуск фатальным.
	GetProducts(ctx context.Context, ids []string) ([]Product, error)
	// ReserveStock резервирует сток под позиции заказа.
	ReserveStock(ctx context.Context, items []ReserveStockItem) (ReserveOutcome, error)
	// ReleaseStock снимает резерв; используется только компенсацией,
	// отказ обрабатывается вызывающим как нефатальный.
	ReleaseStock(ctx context.Context, items []ReserveStockItem) (ReleaseOutcome, error)
}

// SagaStep задаёт константы шагов для метрик и логов.
type SagaStep string

const (
	SagaStepCreate     SagaStep = "create"
	SagaStepReserve    SagaStep = "reserve"
	SagaStepConfirm    SagaStep = "confirm"
	SagaStepRelease    SagaStep = "release"
	SagaStepMarkFailed SagaStep = "mark_failed"
)
