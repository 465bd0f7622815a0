package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, резервирование стока ещё не подтверждено.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusConfirmed — сага завершилась успешно, заказ подтверждён.
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	// OrderStatusFailed — сага завершилась компенсацией, заказ помечен неуспешным.
	OrderStatusFailed OrderStatus = "FAILED"
	// OrderStatusCanceled — заказ отменён через прямой путь обновления статуса.
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// IsValid проверяет, что статус входит в закрытое множество значений.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusFailed, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// OrderItem представляет одну позицию заказа со снапшотом товара,
// зафиксированным в момент создания заказа. Позиция принадлежит заказу
// и удаляется вместе с ним.
type OrderItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — внешний идентификатор товара в каталоге.
	ProductID string
	// Name — имя товара на момент создания заказа, позже не перечитывается.
	Name string
	// Price — цена за единицу на момент создания заказа.
	Price float64
	// Description — описание товара на момент создания заказа.
	Description string
	// Quantity — количество единиц товара, минимум 1.
	Quantity int32
}

// Buyer — транзиентная проекция покупателя из справочника.
// Не персистится и не кэшируется: перечитывается при каждом чтении заказа.
type Buyer struct {
	ID        string `json:"buyer_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Product — транзиентная проекция товара из каталога.
type Product struct {
	ID          string  `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// ReserveStockItem — позиция запроса на резервирование или снятие резерва.
type ReserveStockItem struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

// Order агрегирует состояние заказа и его позиции. Статус выставляется
// в PENDING ровно один раз при создании; сага переводит его не более одного
// раза в CONFIRMED или FAILED. Прямой путь обновления статуса переходы
// не проверяет.
type Order struct {
	ID      string
	BuyerID string
	Status  OrderStatus
	// Buyer не персистится, подставляется при создании и чтении.
	Buyer     Buyer
	Items     []OrderItem
	OrderDate time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.BuyerID == "" {
		errs = append(errs, ErrBuyerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if !o.Status.IsValid() {
		errs = append(errs, ErrStatusInvalid)
	}

	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		if item.Quantity < 1 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Price < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	return errs
}

// ReserveItems строит список {productId, quantity} по позициям заказа
// для запроса к складу.
func (o *Order) ReserveItems() []ReserveStockItem {
	items := make([]ReserveStockItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ReserveStockItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return items
}
