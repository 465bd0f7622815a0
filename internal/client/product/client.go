// Package product реализует клиент каталога товаров и склада: батч-чтение
// товаров, резервирование и снятие резерва. Три независимые пары каналов
// разделяют общий шаблон корреляции.
package product

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/antonrybakov/ordersaga/internal/correlate"
	"github.com/antonrybakov/ordersaga/internal/domain"
	"github.com/antonrybakov/ordersaga/internal/messaging/kafka"
)

type getProductsRequest struct {
	ProductIDs []string `json:"product_ids"`
}

type getProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type stockRequest struct {
	Items []domain.ReserveStockItem `json:"items"`
}

// Client выполняет вызовы каталога через FIFO-корреляцию: конверты
// этих каналов не несут ключа, ответы сопоставляются порядку отправки.
// Каждый вид вызова владеет собственной очередью ожиданий.
type Client struct {
	products *correlate.Queue[[]domain.Product]
	reserve  *correlate.Queue[domain.ReserveOutcome]
	release  *correlate.Queue[domain.ReleaseOutcome]
	logger   *log.Entry
}

// New создаёт клиент, публикующий запросы через переданный publisher.
func New(publisher correlate.Publisher, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.New().WithField("component", "product-client")
	}
	return &Client{
		products: correlate.NewQueue[[]domain.Product](publisher, kafka.TopicGetProductsRequests, logger),
		reserve:  correlate.NewQueue[domain.ReserveOutcome](publisher, kafka.TopicReserveStockRequests, logger),
		release:  correlate.NewQueue[domain.ReleaseOutcome](publisher, kafka.TopicReleaseStockRequests, logger),
		logger:   logger,
	}
}

// GetProducts выполняет батч-запрос товаров. Порядок и полнота списка
// в ответе не гарантируются: вызывающий индексирует по id сам.
func (c *Client) GetProducts(ctx context.Context, ids []string) ([]domain.Product, error) {
	c.logger.WithField("product_ids", ids).Info("requesting product details")
	return c.products.Send(getProductsRequest{ProductIDs: ids}).Await(ctx)
}

// ReserveStock запрашивает резервирование стока под позиции заказа.
func (c *Client) ReserveStock(ctx context.Context, items []domain.ReserveStockItem) (domain.ReserveOutcome, error) {
	c.logger.WithField("items", items).Info("requesting stock reservation")
	return c.reserve.Send(stockRequest{Items: items}).Await(ctx)
}

// ReleaseStock запрашивает снятие резерва; вызывается только компенсацией.
func (c *Client) ReleaseStock(ctx context.Context, items []domain.ReserveStockItem) (domain.ReleaseOutcome, error) {
	c.logger.WithField("items", items).Info("requesting stock release")
	return c.release.Send(stockRequest{Items: items}).Await(ctx)
}

// HandleProductsReply обрабатывает конверт из get-products-responses.
func (c *Client) HandleProductsReply(payload []byte) {
	var resp getProductsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		c.logger.WithError(err).Warn("failed to parse products response, dropping")
		return
	}
	c.products.Resolve(resp.Products)
}

// HandleReserveReply обрабатывает конверт из reserve-stock-responses.
// Нераспознанный дискриминант status — бизнес-отказ "unknown response",
// а не транспортная ошибка.
func (c *Client) HandleReserveReply(payload []byte) {
	var envelope kafka.StockEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		c.logger.WithError(err).Warn("failed to parse reserve stock response, dropping")
		return
	}

	switch envelope.Status {
	case kafka.StatusStockReserved:
		c.reserve.Resolve(domain.StockReserved{})
	case kafka.StatusStockReservationFailed:
		c.reserve.Resolve(domain.StockReservationFailed{Reason: envelope.Reason})
	default:
		c.logger.WithField("status", envelope.Status).Error("unknown reserve stock response")
		c.reserve.Reject(domain.NewBusinessError("unknown reserve stock response"))
	}
}

// HandleReleaseReply обрабатывает конверт из release-stock-responses.
func (c *Client) HandleReleaseReply(payload []byte) {
	var envelope kafka.StockEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		c.logger.WithError(err).Warn("failed to parse release stock response, dropping")
		return
	}

	switch envelope.Status {
	case kafka.StatusStockReleased:
		c.release.Resolve(domain.StockReleased{})
	case kafka.StatusStockReleaseFailed:
		c.release.Resolve(domain.StockReleaseFailed{Reason: envelope.Reason})
	default:
		c.logger.WithField("status", envelope.Status).Error("unknown release stock response")
		c.release.Reject(domain.NewBusinessError("unknown release stock response"))
	}
}

var _ domain.ProductCatalog = (*Client)(nil)
