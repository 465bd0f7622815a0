package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора покупателя.
	ErrBuyerRequired = errors.New("buyer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка значения статуса вне закрытого множества.
	ErrStatusInvalid = errors.New("order status is not valid")
	// Ошибка отсутствующего идентификатора товара в позиции.
	ErrItemProductRequired = errors.New("item product_id is required")
	// Ошибка при некорректном количестве товара (< 1).
	ErrItemQtyInvalid = errors.New("item quantity must be at least 1")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
)

// IsValidation проверяет, относится ли ошибка к нарушению инвариантов заказа.
func IsValidation(err error) bool {
	for _, sentinel := range []error{
		ErrBuyerRequired,
		ErrItemsRequired,
		ErrStatusInvalid,
		ErrItemProductRequired,
		ErrItemQtyInvalid,
		ErrItemPriceInvalid,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// NotFoundError сигнализирует об отсутствии ресурса (покупателя, заказа, товара).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFound создаёт NotFoundError для указанного ресурса.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound проверяет, относится ли ошибка к отсутствию ресурса.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// BusinessError — бизнес-отказ шага саги: неуспешное резервирование,
// неуспешное подтверждение, нераспознанная форма ответа. Запускает компенсацию.
type BusinessError struct {
	Reason string
}

func (e *BusinessError) Error() string {
	return e.Reason
}

// NewBusinessError создаёт BusinessError с причиной отказа.
func NewBusinessError(format string, args ...any) error {
	return &BusinessError{Reason: fmt.Sprintf(format, args...)}
}

// IsBusiness проверяет, является ли ошибка бизнес-отказом.
func IsBusiness(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

// TransportError — отказ транспортного слоя: ошибка публикации запроса
// или нечитаемый ответ. Для оркестрации обрабатывается как бизнес-отказ.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewTransportError оборачивает причину транспортного отказа.
func NewTransportError(cause error) error {
	return &TransportError{Cause: cause}
}

// IsTransport проверяет, является ли ошибка транспортным отказом.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
