// Package buyer реализует клиент справочника покупателей поверх
// асинхронной пары каналов get-buyer-requests/get-buyer-responses.
package buyer

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/antonrybakov/ordersaga/internal/correlate"
	"github.com/antonrybakov/ordersaga/internal/domain"
	"github.com/antonrybakov/ordersaga/internal/messaging/kafka"
)

type getBuyerRequest struct {
	BuyerID string `json:"buyer_id"`
}

// Client резолвит идентификатор покупателя в снапшот {id, имя, email}.
// Ответы коррелируются по buyer_id, который сервис эхом возвращает
// в теле ответа; реестр ожиданий принадлежит клиенту.
type Client struct {
	calls  *correlate.Registry[domain.Buyer]
	logger *log.Entry
}

// New создаёт клиент, публикующий запросы через переданный publisher.
func New(publisher correlate.Publisher, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.New().WithField("component", "buyer-client")
	}
	return &Client{
		calls:  correlate.NewRegistry[domain.Buyer](publisher, kafka.TopicGetBuyerRequests, logger),
		logger: logger,
	}
}

// GetBuyer отправляет один запрос на вызов и ждёт ответа справочника.
// Конверт ошибки от сервиса превращается в NotFoundError(buyerID).
func (c *Client) GetBuyer(ctx context.Context, buyerID string) (domain.Buyer, error) {
	c.logger.WithField("buyer_id", buyerID).Info("requesting buyer details")
	call := c.calls.Send(buyerID, getBuyerRequest{BuyerID: buyerID})
	buyer, err := call.Await(ctx)
	if err != nil {
		c.logger.WithError(err).WithField("buyer_id", buyerID).Error("failed to get buyer")
		return domain.Buyer{}, err
	}
	return buyer, nil
}

// HandleReply обрабатывает один конверт из канала ответов.
// Нечитаемый ответ отбрасывается с логом, слот остаётся ожидать.
func (c *Client) HandleReply(payload []byte) {
	var envelope kafka.ErrorEnvelope
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error {
		c.logger.WithFields(log.Fields{
			"buyer_id": envelope.BuyerID,
			"message":  envelope.Message,
		}).Warn("received error response for buyer")
		c.calls.Reject(envelope.BuyerID, domain.NewNotFound("buyer", envelope.BuyerID))
		return
	}

	var buyer domain.Buyer
	if err := json.Unmarshal(payload, &buyer); err != nil {
		c.logger.WithError(err).Warn("failed to parse buyer response, dropping")
		return
	}
	if buyer.ID == "" {
		c.logger.Warn("buyer response without buyer_id, dropping")
		return
	}

	c.calls.Resolve(buyer.ID, buyer)
}

var _ domain.BuyerDirectory = (*Client)(nil)
