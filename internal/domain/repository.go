package domain

import "context"

// OrderRepository описывает требования к хранилищу заказов.
// Транзакционная семантика принадлежит хранилищу: заказ и его позиции
// пишутся и удаляются атомарно.
type OrderRepository interface {
	// Create сохраняет новый заказ и возвращает его с присвоенным идентификатором.
	Create(ctx context.Context, order Order) (Order, error)
	// Get возвращает заказ с позициями или NotFoundError, если его нет.
	Get(ctx context.Context, id string) (Order, error)
	// ListByBuyer возвращает все заказы покупателя.
	ListByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	// Update перезаписывает заказ и возвращает сохранённое состояние.
	Update(ctx context.Context, order Order) (Order, error)
	// Delete удаляет заказ вместе с позициями или возвращает NotFoundError.
	Delete(ctx context.Context, id string) error
}
