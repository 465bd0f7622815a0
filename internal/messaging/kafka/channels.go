package kafka

// Именованные пары каналов запрос/ответ внешних сервисов.
// Каждому исходящему вызову клиента соответствует конверт в канале
// запросов и конверт в парном канале ответов.
const (
	TopicGetBuyerRequests  = "get-buyer-requests"
	TopicGetBuyerResponses = "get-buyer-responses"

	TopicGetProductsRequests  = "get-products-requests"
	TopicGetProductsResponses = "get-products-responses"

	TopicReserveStockRequests  = "reserve-stock-requests"
	TopicReserveStockResponses = "reserve-stock-responses"

	TopicReleaseStockRequests  = "release-stock-requests"
	TopicReleaseStockResponses = "release-stock-responses"
)

// Дискриминанты поля status в ответах склада.
const (
	StatusStockReserved          = "StockReserved"
	StatusStockReservationFailed = "StockReservationFailed"
	StatusStockReleased          = "StockReleased"
	StatusStockReleaseFailed     = "StockReleaseFailed"
)

// ErrorEnvelope — явный конверт ошибки в канале ответов:
// {"error":true, идентификатор, сообщение}.
type ErrorEnvelope struct {
	Error   bool   `json:"error"`
	BuyerID string `json:"buyer_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// StockEnvelope — конверт ответа склада; поле Status определяет,
// какую из двух форм результата несёт тело.
type StockEnvelope struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
